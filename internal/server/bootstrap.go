package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"github.com/sngm3741/diagnostic-services/api/internal/catalog"
	"github.com/sngm3741/diagnostic-services/api/internal/config"
	"github.com/sngm3741/diagnostic-services/api/internal/diagnostic/application"
	filesink "github.com/sngm3741/diagnostic-services/api/internal/infrastructure/file"
	mongodoc "github.com/sngm3741/diagnostic-services/api/internal/infrastructure/mongo"
	"github.com/sngm3741/diagnostic-services/api/internal/infrastructure/postgres"
	redissink "github.com/sngm3741/diagnostic-services/api/internal/infrastructure/redis"
	"github.com/sngm3741/diagnostic-services/api/internal/infrastructure/sheets"
)

// Pinger is implemented by sinks that can report connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Resources は起動時に生成する外部接続をまとめ、終了時にまとめて解放する。
type Resources struct {
	Catalogs   application.CatalogRepository
	Sink       application.SubmissionSink
	SinkDriver string

	mongoClient *mongo.Client
	logger      *zap.Logger
}

// ConnectMongo は Stable API v1 で MongoDB に接続し、Primary への ping で疎通を確認する。
func ConnectMongo(ctx context.Context, cfg config.MongoConfig) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	clientOptions := options.Client().ApplyURI(cfg.URI).SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1))
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("MongoDB 接続に失敗しました: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("MongoDB ping に失敗しました: %w", err)
	}
	return client, nil
}

// Bootstrap はカタログの読み込み元と送信先 Sink を設定に従って組み立てる。
// 既定カタログが存在しない場合は起動エラーとする。
func Bootstrap(ctx context.Context, cfg config.Config, logger *zap.Logger) (*Resources, error) {
	res := &Resources{SinkDriver: cfg.SinkDriver, logger: logger}

	if cfg.UsesMongo() {
		client, err := ConnectMongo(ctx, cfg.Mongo)
		if err != nil {
			return nil, err
		}
		res.mongoClient = client
	}

	catalogs, err := res.openCatalogs(cfg)
	if err != nil {
		res.Close(ctx)
		return nil, err
	}
	res.Catalogs = catalogs

	if _, err := catalogs.FindByKey(ctx, cfg.DefaultCatalog); err != nil {
		res.Close(ctx)
		return nil, fmt.Errorf("default catalog %q: %w", cfg.DefaultCatalog, err)
	}

	sink, err := res.openSink(ctx, cfg)
	if err != nil {
		res.Close(ctx)
		return nil, err
	}
	res.Sink = sink

	logger.Info("resources ready",
		zap.String("catalog_source", cfg.CatalogSource),
		zap.String("sink_driver", cfg.SinkDriver),
	)
	return res, nil
}

func (r *Resources) openCatalogs(cfg config.Config) (application.CatalogRepository, error) {
	if cfg.CatalogSource == config.CatalogSourceMongo {
		db := r.mongoClient.Database(cfg.Mongo.Database)
		return mongodoc.NewCatalogRepository(db, cfg.Mongo.CatalogCollection), nil
	}
	store, err := catalog.Load(cfg.CatalogDir)
	if err != nil {
		return nil, fmt.Errorf("load catalogs: %w", err)
	}
	return store, nil
}

func (r *Resources) openSink(ctx context.Context, cfg config.Config) (application.SubmissionSink, error) {
	switch cfg.SinkDriver {
	case config.SinkNone:
		return application.NopSink{}, nil
	case config.SinkSheets:
		sink, err := sheets.Open(ctx, sheets.Config{
			CredentialsJSON: []byte(cfg.Sheets.CredentialsJSON),
			SpreadsheetName: cfg.Sheets.SpreadsheetName,
			WorksheetIndex:  cfg.Sheets.WorksheetIndex,
		})
		if err != nil {
			return nil, fmt.Errorf("open sheets sink: %w", err)
		}
		r.logger.Info("sheets sink ready",
			zap.String("spreadsheet_id", sink.SpreadsheetID()),
			zap.String("worksheet", sink.SheetTitle()),
		)
		return sink, nil
	case config.SinkMongo:
		db := r.mongoClient.Database(cfg.Mongo.Database)
		return mongodoc.NewSubmissionSink(db, cfg.Mongo.SubmissionCollection), nil
	case config.SinkPostgres:
		sink, err := postgres.Open(ctx, cfg.Postgres.DSN, cfg.Postgres.Table)
		if err != nil {
			return nil, fmt.Errorf("open postgres sink: %w", err)
		}
		return sink, nil
	case config.SinkRedis:
		sink, err := redissink.Open(ctx, redissink.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Key:      cfg.Redis.Key,
		})
		if err != nil {
			return nil, fmt.Errorf("open redis sink: %w", err)
		}
		return sink, nil
	case config.SinkFile:
		sink, err := filesink.Open(cfg.File.Path)
		if err != nil {
			return nil, err
		}
		return sink, nil
	default:
		return nil, fmt.Errorf("unknown sink driver %q", cfg.SinkDriver)
	}
}

// Ping は Sink が Pinger を実装していれば疎通を確認する。
func (r *Resources) Ping(ctx context.Context) error {
	if p, ok := r.Sink.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

// Close は Sink と MongoDB クライアントをタイムアウト付きで閉じる。
func (r *Resources) Close(ctx context.Context) {
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var errs []error
	if c, ok := r.Sink.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close sink: %w", err))
		}
	}
	if r.mongoClient != nil {
		if err := r.mongoClient.Disconnect(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("MongoDB 切断時にエラー: %w", err))
		}
	}
	if err := errors.Join(errs...); err != nil && r.logger != nil {
		r.logger.Warn("resource shutdown failed", zap.Error(err))
	}
}
