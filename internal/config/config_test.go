package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.Port)
	assert.Equal(t, ":5000", cfg.Addr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "digital-transformation", cfg.DefaultCatalog)
	assert.Equal(t, CatalogSourceFiles, cfg.CatalogSource)
	assert.Equal(t, SinkNone, cfg.SinkDriver)
	assert.Equal(t, "Marketing Diagnostic App", cfg.Sheets.SpreadsheetName)
	assert.Equal(t, 0, cfg.Sheets.WorksheetIndex)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Equal(t, 10*time.Second, cfg.Mongo.Timeout)
	assert.Equal(t, DefaultMongoURI, cfg.Mongo.URI)
	assert.Equal(t, DefaultMongoDatabase, cfg.Mongo.Database)
	assert.Equal(t, DefaultCatalogCollection, cfg.Mongo.CatalogCollection)
	assert.False(t, cfg.UsesMongo())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "8081")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("API_ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("SINK_DRIVER", "redis")
	t.Setenv("REDIS_ADDR", "cache:6379")
	t.Setenv("REDIS_KEY", "rows")
	t.Setenv("MONGO_CONNECT_TIMEOUT", "3s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8081", cfg.Addr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, SinkRedis, cfg.SinkDriver)
	assert.Equal(t, "cache:6379", cfg.Redis.Addr)
	assert.Equal(t, "rows", cfg.Redis.Key)
	assert.Equal(t, 3*time.Second, cfg.Mongo.Timeout)
}

func TestLoad_HTTPAddrWinsOverPort(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("HTTP_ADDR", "127.0.0.1:7000")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:7000", cfg.Addr)
	assert.Equal(t, 9000, cfg.Port)
}

func TestLoad_SheetsRequiresCredentials(t *testing.T) {
	t.Setenv("SINK_DRIVER", "sheets")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GOOGLE_CREDENTIALS_JSON")

	t.Setenv("GOOGLE_CREDENTIALS_JSON", `{"type":"service_account"}`)
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, SinkSheets, cfg.SinkDriver)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte("sink_driver: file\nsubmission_file: /tmp/rows.csv\ncatalog_source: mongo\n"), 0o644))
	t.Setenv("CONFIG_FILE", file)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, SinkFile, cfg.SinkDriver)
	assert.Equal(t, "/tmp/rows.csv", cfg.File.Path)
	assert.True(t, cfg.UsesMongo())
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{Port: 5000, DefaultCatalog: "x", CatalogSource: CatalogSourceFiles, SinkDriver: SinkNone}
	}

	tests := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{"bad port", func(c *Config) { c.Port = 0 }, "PORT"},
		{"empty catalog", func(c *Config) { c.DefaultCatalog = "" }, "DIAGNOSTIC_CATALOG"},
		{"unknown source", func(c *Config) { c.CatalogSource = "s3" }, "CATALOG_SOURCE"},
		{"unknown sink", func(c *Config) { c.SinkDriver = "kafka" }, "SINK_DRIVER"},
		{"postgres without dsn", func(c *Config) { c.SinkDriver = SinkPostgres }, "POSTGRES_DSN"},
		{"file without path", func(c *Config) { c.SinkDriver = SinkFile }, "SUBMISSION_FILE"},
		{"negative worksheet", func(c *Config) {
			c.SinkDriver = SinkSheets
			c.Sheets = SheetsConfig{CredentialsJSON: "{}", SpreadsheetName: "s", WorksheetIndex: -1}
		}, "SHEETS_WORKSHEET_INDEX"},
	}

	require.NoError(t, base().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			tt.mutate(&c)
			err := c.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
