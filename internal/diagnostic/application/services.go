package application

import (
	"context"
	"errors"

	"github.com/sngm3741/diagnostic-services/api/internal/diagnostic/domain"
)

// ErrSink wraps every failure returned by a SubmissionSink.
var ErrSink = errors.New("submission sink failed")

// CatalogRepository exposes read access to questionnaire catalogs.
type CatalogRepository interface {
	List(ctx context.Context) ([]domain.Catalog, error)
	FindByKey(ctx context.Context, key string) (*domain.Catalog, error)
}

// SubmissionSink appends one flat row per submission to an external store.
type SubmissionSink interface {
	AppendRow(ctx context.Context, row domain.SubmissionRow) error
}

// DiagnosticService describes the questionnaire use-cases.
type DiagnosticService interface {
	Catalogs(ctx context.Context) ([]domain.Catalog, error)
	Catalog(ctx context.Context, key string) (*domain.Catalog, error)
	Evaluate(ctx context.Context, key string, answers domain.Answers) (*domain.Evaluation, error)
	Submit(ctx context.Context, cmd SubmitCommand) (*domain.Submission, error)
}

// SubmitCommand contains inputs for a questionnaire submission.
// When Catalog is set it is used as-is and CatalogKey is ignored.
type SubmitCommand struct {
	CatalogKey string
	Catalog    *domain.Catalog
	Answers    domain.Answers
	Respondent domain.Respondent
}

// NopSink discards rows.
type NopSink struct{}

func (NopSink) AppendRow(context.Context, domain.SubmissionRow) error { return nil }
