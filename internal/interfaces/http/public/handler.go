package public

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/sngm3741/diagnostic-services/api/internal/diagnostic/application"
	"github.com/sngm3741/diagnostic-services/api/internal/metrics"
)

// Handler wires public HTTP endpoints to the diagnostic service.
type Handler struct {
	logger         *zap.Logger
	diagnostics    application.DiagnosticService
	defaultCatalog string
	metrics        *metrics.Metrics
	sinkDriver     string
}

// Config defines dependencies required by Handler.
type Config struct {
	Logger         *zap.Logger
	Diagnostics    application.DiagnosticService
	DefaultCatalog string
	Metrics        *metrics.Metrics
	SinkDriver     string
}

// NewHandler constructs a public HTTP handler set.
func NewHandler(cfg Config) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		logger:         logger,
		diagnostics:    cfg.Diagnostics,
		defaultCatalog: cfg.DefaultCatalog,
		metrics:        cfg.Metrics,
		sinkDriver:     cfg.SinkDriver,
	}
}

// Register mounts all public routes onto the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/", h.formHandler())
	r.Post("/submit", h.submitHandler())
	r.Get("/catalogs", h.catalogListHandler())
}
