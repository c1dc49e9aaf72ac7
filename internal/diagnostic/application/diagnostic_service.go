package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sngm3741/diagnostic-services/api/internal/diagnostic/domain"
)

type diagnosticService struct {
	catalogs CatalogRepository
	sink     SubmissionSink
	location *time.Location
	now      func() time.Time
}

// ServiceConfig defines dependencies required by the diagnostic service.
type ServiceConfig struct {
	Catalogs CatalogRepository
	Sink     SubmissionSink
	Location *time.Location
	Now      func() time.Time
}

// NewDiagnosticService creates a DiagnosticService. A nil Sink disables persistence.
func NewDiagnosticService(cfg ServiceConfig) DiagnosticService {
	sink := cfg.Sink
	if sink == nil {
		sink = NopSink{}
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &diagnosticService{
		catalogs: cfg.Catalogs,
		sink:     sink,
		location: loc,
		now:      now,
	}
}

func (s *diagnosticService) Catalogs(ctx context.Context) ([]domain.Catalog, error) {
	return s.catalogs.List(ctx)
}

func (s *diagnosticService) Catalog(ctx context.Context, key string) (*domain.Catalog, error) {
	return s.catalogs.FindByKey(ctx, strings.TrimSpace(key))
}

func (s *diagnosticService) Evaluate(ctx context.Context, key string, answers domain.Answers) (*domain.Evaluation, error) {
	catalog, err := s.Catalog(ctx, key)
	if err != nil {
		return nil, err
	}
	eval, err := catalog.Evaluate(answers)
	if err != nil {
		return nil, err
	}
	return &eval, nil
}

func (s *diagnosticService) Submit(ctx context.Context, cmd SubmitCommand) (*domain.Submission, error) {
	catalog := cmd.Catalog
	if catalog == nil {
		var err error
		if catalog, err = s.Catalog(ctx, cmd.CatalogKey); err != nil {
			return nil, err
		}
	}
	eval, err := catalog.Evaluate(cmd.Answers)
	if err != nil {
		return nil, err
	}

	submission := &domain.Submission{
		ID:          uuid.NewString(),
		CatalogKey:  catalog.Key,
		Respondent:  normalizeRespondent(cmd.Respondent),
		Evaluation:  eval,
		SubmittedAt: s.now().In(s.location),
	}

	if err := s.sink.AppendRow(ctx, submission.Row()); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSink, err)
	}
	return submission, nil
}

func normalizeRespondent(r domain.Respondent) domain.Respondent {
	return domain.Respondent{
		Name:        strings.TrimSpace(r.Name),
		Email:       strings.TrimSpace(r.Email),
		CompanyName: strings.TrimSpace(r.CompanyName),
		Industry:    strings.TrimSpace(r.Industry),
		Employees:   strings.TrimSpace(r.Employees),
		Role:        strings.TrimSpace(r.Role),
	}
}
