package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/sngm3741/diagnostic-services/api/internal/catalog"
	"github.com/sngm3741/diagnostic-services/api/internal/config"
	"github.com/sngm3741/diagnostic-services/api/internal/diagnostic/domain"
	mongodoc "github.com/sngm3741/diagnostic-services/api/internal/infrastructure/mongo"
	"github.com/sngm3741/diagnostic-services/api/internal/logging"
	"github.com/sngm3741/diagnostic-services/api/internal/server"
)

type seedOptions struct {
	envName         string
	catalogDir      string
	dropCollections bool
	dryRun          bool
}

// catalogWriter は MongoDB のカタログコレクションへの書き込み口。
type catalogWriter interface {
	Drop(ctx context.Context) error
	Upsert(ctx context.Context, c domain.Catalog) error
}

func main() {
	opts := parseFlags()

	logger, err := logging.New("info", "console")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := loadEnvFiles(opts.envName); err != nil {
		logger.Fatal("環境変数の読み込みに失敗しました", zap.Error(err))
	}

	store, err := catalog.Load(opts.catalogDir)
	if err != nil {
		logger.Fatal("カタログの読み込みに失敗しました", zap.Error(err))
	}
	catalogs := store.All()

	if opts.dryRun {
		for _, c := range catalogs {
			logger.Info("dry-run", zap.String("key", c.Key), zap.Int("questions", len(c.Questions)))
		}
		return
	}

	mongoCfg := mongoConfigFromEnv()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	client, err := server.ConnectMongo(ctx, mongoCfg)
	if err != nil {
		logger.Fatal("MongoDB 接続に失敗しました", zap.Error(err))
	}
	defer func() {
		_ = client.Disconnect(context.Background())
	}()

	repo := mongodoc.NewCatalogRepository(client.Database(mongoCfg.Database), mongoCfg.CatalogCollection)
	if err := seed(ctx, repo, catalogs, opts.dropCollections, logger); err != nil {
		logger.Fatal("Seed に失敗しました", zap.Error(err))
	}
	logger.Info("Seed 完了",
		zap.Int("catalogs", len(catalogs)),
		zap.String("mongo", mongoCfg.URI),
		zap.String("database", mongoCfg.Database),
		zap.String("env", opts.envName),
	)
}

func parseFlags() seedOptions {
	var opts seedOptions
	flag.StringVar(&opts.envName, "env", "local", "env ディレクトリ内の env ファイル名 (例: local, staging)")
	flag.StringVar(&opts.catalogDir, "dir", os.Getenv("CATALOG_DIR"), "組み込みカタログを上書きする *.yaml のディレクトリ")
	flag.BoolVar(&opts.dropCollections, "drop", false, "既存カタログを削除してから投入する")
	flag.BoolVar(&opts.dryRun, "dry-run", false, "MongoDB へ接続せず投入対象のみ表示する")
	flag.Parse()
	return opts
}

func seed(ctx context.Context, repo catalogWriter, catalogs []domain.Catalog, drop bool, logger *zap.Logger) error {
	if drop {
		if err := repo.Drop(ctx); err != nil {
			return fmt.Errorf("コレクション削除に失敗しました: %w", err)
		}
		logger.Info("既存カタログを削除しました")
	}
	for _, c := range catalogs {
		if err := repo.Upsert(ctx, c); err != nil {
			return fmt.Errorf("カタログ %s の投入に失敗しました: %w", c.Key, err)
		}
		logger.Info("カタログを投入しました", zap.String("key", c.Key), zap.String("title", c.Title))
	}
	return nil
}

// loadEnvFiles は env/<name>.env と .env を存在するものだけ読み込む。先に読んだ値が優先される。
func loadEnvFiles(envName string) error {
	files := []string{
		filepath.Join("env", fmt.Sprintf("%s.env", envName)),
		".env",
	}
	for _, file := range files {
		if err := godotenv.Load(file); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return fmt.Errorf("%s: %w", file, err)
		}
	}
	return nil
}

// mongoConfigFromEnv は serve と同じ既定値で MongoDB の接続先を組み立てる。
func mongoConfigFromEnv() config.MongoConfig {
	return config.MongoConfig{
		URI:               envOrDefault("MONGO_URI", config.DefaultMongoURI),
		Database:          envOrDefault("MONGO_DB", config.DefaultMongoDatabase),
		CatalogCollection: envOrDefault("CATALOG_COLLECTION", config.DefaultCatalogCollection),
		Timeout:           config.DefaultMongoTimeout,
	}
}

func envOrDefault(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
