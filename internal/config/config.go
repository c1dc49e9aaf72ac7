package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Sink drivers accepted by SINK_DRIVER.
const (
	SinkNone     = "none"
	SinkSheets   = "sheets"
	SinkMongo    = "mongo"
	SinkPostgres = "postgres"
	SinkRedis    = "redis"
	SinkFile     = "file"
)

// Catalog sources accepted by CATALOG_SOURCE.
const (
	CatalogSourceFiles = "files"
	CatalogSourceMongo = "mongo"
)

// MongoDB defaults shared by the server and the seed command.
const (
	DefaultMongoURI          = "mongodb://mongo:27017"
	DefaultMongoDatabase     = "diagnostic"
	DefaultCatalogCollection = "catalogs"
	DefaultMongoTimeout      = 10 * time.Second
)

// MongoConfig groups MongoDB connection settings.
type MongoConfig struct {
	URI                  string
	Database             string
	CatalogCollection    string
	SubmissionCollection string
	Timeout              time.Duration
}

// SheetsConfig identifies the spreadsheet receiving submission rows.
type SheetsConfig struct {
	CredentialsJSON string
	SpreadsheetName string
	WorksheetIndex  int
}

// PostgresConfig defines the submissions table target.
type PostgresConfig struct {
	DSN   string
	Table string
}

// RedisConfig defines the list receiving submission rows.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Key      string
}

// FileConfig defines the local CSV file receiving submission rows.
type FileConfig struct {
	Path string
}

// Config holds runtime configuration shared across the application.
type Config struct {
	Addr           string
	Port           int
	LogLevel       string
	LogFormat      string
	Timezone       string
	AllowedOrigins []string
	DefaultCatalog string
	CatalogSource  string
	CatalogDir     string
	SinkDriver     string
	Mongo          MongoConfig
	Sheets         SheetsConfig
	Postgres       PostgresConfig
	Redis          RedisConfig
	File           FileConfig
}

// Load reads .env, an optional CONFIG_FILE and environment variables, applies defaults
// and validates the selected sink.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if file := strings.TrimSpace(os.Getenv("CONFIG_FILE")); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file %s: %w", file, err)
		}
	}

	port := v.GetInt("port")
	addr := strings.TrimSpace(v.GetString("http_addr"))
	if addr == "" {
		addr = ":" + strconv.Itoa(port)
	}

	cfg := Config{
		Addr:           addr,
		Port:           port,
		LogLevel:       strings.ToLower(strings.TrimSpace(v.GetString("log_level"))),
		LogFormat:      strings.ToLower(strings.TrimSpace(v.GetString("log_format"))),
		Timezone:       v.GetString("timezone"),
		AllowedOrigins: parseList(v.GetString("api_allowed_origins"), []string{"*"}),
		DefaultCatalog: strings.TrimSpace(v.GetString("diagnostic_catalog")),
		CatalogSource:  strings.ToLower(strings.TrimSpace(v.GetString("catalog_source"))),
		CatalogDir:     strings.TrimSpace(v.GetString("catalog_dir")),
		SinkDriver:     strings.ToLower(strings.TrimSpace(v.GetString("sink_driver"))),
		Mongo: MongoConfig{
			URI:                  v.GetString("mongo_uri"),
			Database:             v.GetString("mongo_db"),
			CatalogCollection:    v.GetString("catalog_collection"),
			SubmissionCollection: v.GetString("submission_collection"),
			Timeout:              v.GetDuration("mongo_connect_timeout"),
		},
		Sheets: SheetsConfig{
			CredentialsJSON: strings.TrimSpace(v.GetString("google_credentials_json")),
			SpreadsheetName: v.GetString("sheets_spreadsheet_name"),
			WorksheetIndex:  v.GetInt("sheets_worksheet_index"),
		},
		Postgres: PostgresConfig{
			DSN:   strings.TrimSpace(v.GetString("postgres_dsn")),
			Table: v.GetString("postgres_table"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("redis_addr"),
			Password: v.GetString("redis_password"),
			DB:       v.GetInt("redis_db"),
			Key:      v.GetString("redis_key"),
		},
		File: FileConfig{
			Path: v.GetString("submission_file"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", 5000)
	v.SetDefault("http_addr", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
	v.SetDefault("timezone", "UTC")
	v.SetDefault("api_allowed_origins", "*")
	v.SetDefault("diagnostic_catalog", "digital-transformation")
	v.SetDefault("catalog_source", CatalogSourceFiles)
	v.SetDefault("catalog_dir", "")
	v.SetDefault("sink_driver", SinkNone)
	v.SetDefault("mongo_uri", DefaultMongoURI)
	v.SetDefault("mongo_db", DefaultMongoDatabase)
	v.SetDefault("catalog_collection", DefaultCatalogCollection)
	v.SetDefault("submission_collection", "submissions")
	v.SetDefault("mongo_connect_timeout", DefaultMongoTimeout)
	v.SetDefault("google_credentials_json", "")
	v.SetDefault("sheets_spreadsheet_name", "Marketing Diagnostic App")
	v.SetDefault("sheets_worksheet_index", 0)
	v.SetDefault("postgres_dsn", "")
	v.SetDefault("postgres_table", "submissions")
	v.SetDefault("redis_addr", "localhost:6379")
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)
	v.SetDefault("redis_key", "diagnostic:submissions")
	v.SetDefault("submission_file", "assessments.txt")
}

// Validate checks that the selected sink and catalog source have what they need.
func (c Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port)
	}
	if c.DefaultCatalog == "" {
		return errors.New("DIAGNOSTIC_CATALOG must not be empty")
	}
	switch c.CatalogSource {
	case CatalogSourceFiles, CatalogSourceMongo:
	default:
		return fmt.Errorf("unknown CATALOG_SOURCE %q", c.CatalogSource)
	}

	switch c.SinkDriver {
	case SinkNone:
	case SinkSheets:
		if c.Sheets.CredentialsJSON == "" {
			return errors.New("GOOGLE_CREDENTIALS_JSON must be configured when SINK_DRIVER=sheets")
		}
		if strings.TrimSpace(c.Sheets.SpreadsheetName) == "" {
			return errors.New("SHEETS_SPREADSHEET_NAME must not be empty")
		}
		if c.Sheets.WorksheetIndex < 0 {
			return errors.New("SHEETS_WORKSHEET_INDEX must not be negative")
		}
	case SinkMongo:
		if strings.TrimSpace(c.Mongo.URI) == "" {
			return errors.New("MONGO_URI must be configured when SINK_DRIVER=mongo")
		}
	case SinkPostgres:
		if c.Postgres.DSN == "" {
			return errors.New("POSTGRES_DSN must be configured when SINK_DRIVER=postgres")
		}
	case SinkRedis:
		if strings.TrimSpace(c.Redis.Addr) == "" {
			return errors.New("REDIS_ADDR must be configured when SINK_DRIVER=redis")
		}
	case SinkFile:
		if strings.TrimSpace(c.File.Path) == "" {
			return errors.New("SUBMISSION_FILE must be configured when SINK_DRIVER=file")
		}
	default:
		return fmt.Errorf("unknown SINK_DRIVER %q", c.SinkDriver)
	}
	return nil
}

// UsesMongo reports whether any component needs a MongoDB client.
func (c Config) UsesMongo() bool {
	return c.SinkDriver == SinkMongo || c.CatalogSource == CatalogSourceMongo
}

func parseList(raw string, fallback []string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}

	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			values = append(values, part)
		}
	}

	if len(values) == 0 {
		return fallback
	}
	return values
}
