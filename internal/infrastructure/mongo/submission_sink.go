package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/sngm3741/diagnostic-services/api/internal/diagnostic/domain"
)

// SubmissionSink は回答結果を submissions コレクションへ 1 件ずつ追記する。
type SubmissionSink struct {
	submissions *mongo.Collection
}

// NewSubmissionSink は submissions コレクションを束縛した Sink を構築する。
func NewSubmissionSink(db *mongo.Database, collection string) *SubmissionSink {
	return &SubmissionSink{submissions: db.Collection(collection)}
}

// NewSubmissionSinkFromCollection は既存のコレクションハンドルから構築する。
func NewSubmissionSinkFromCollection(coll *mongo.Collection) *SubmissionSink {
	return &SubmissionSink{submissions: coll}
}

// AppendRow は 1 行分のドキュメントを挿入する。リトライはしない。
func (s *SubmissionSink) AppendRow(ctx context.Context, row domain.SubmissionRow) error {
	_, err := s.submissions.InsertOne(ctx, newSubmissionDocument(row))
	return err
}

// Ping は MongoDB への疎通を確認する。
func (s *SubmissionSink) Ping(ctx context.Context) error {
	return s.submissions.Database().Client().Ping(ctx, readpref.Primary())
}
