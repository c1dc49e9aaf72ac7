package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/sngm3741/diagnostic-services/api/internal/config"
	"github.com/sngm3741/diagnostic-services/api/internal/diagnostic/application"
	"github.com/sngm3741/diagnostic-services/api/internal/interfaces/http/common"
	publichttp "github.com/sngm3741/diagnostic-services/api/internal/interfaces/http/public"
	"github.com/sngm3741/diagnostic-services/api/internal/metrics"
)

// Server は HTTP サーバーのライフサイクルを管理し、診断ハンドラへ依存注入するコンポジションルート。
type Server struct {
	logger         *zap.Logger
	resources      *Resources
	diagnostics    application.DiagnosticService
	metrics        *metrics.Metrics
	defaultCatalog string
	addr           string
	allowedOrigins []string
	now            func() time.Time
}

// New は Config と起動済みリソースからアプリケーションサービスとハンドラを組み立てた Server を返す。
func New(cfg config.Config, logger *zap.Logger, res *Resources, m *metrics.Metrics) *Server {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Warn("タイムゾーンの読み込みに失敗、UTC を使用します", zap.String("timezone", cfg.Timezone), zap.Error(err))
		loc = time.UTC
	}

	return &Server{
		logger:    logger,
		resources: res,
		diagnostics: application.NewDiagnosticService(application.ServiceConfig{
			Catalogs: res.Catalogs,
			Sink:     res.Sink,
			Location: loc,
		}),
		metrics:        m,
		defaultCatalog: cfg.DefaultCatalog,
		addr:           cfg.Addr,
		allowedOrigins: append([]string(nil), cfg.AllowedOrigins...),
		now:            time.Now,
	}
}

// Handler はミドルウェアとルーティングを組み立てる。
func (s *Server) Handler() http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(requestLogger(s.logger))
	router.Use(middleware.Recoverer)
	router.Use(withCORS(s.allowedOrigins))

	router.Get("/healthz", s.healthHandler())
	router.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	publicHandler := publichttp.NewHandler(publichttp.Config{
		Logger:         s.logger,
		Diagnostics:    s.diagnostics,
		DefaultCatalog: s.defaultCatalog,
		Metrics:        s.metrics,
		SinkDriver:     s.resources.SinkDriver,
	})
	publicHandler.Register(router)
	return router
}

// Run は HTTP サーバーを起動し、ctx の終了または OS シグナルで graceful shutdown する。
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP サーバー起動", zap.String("addr", s.addr))
		errChan <- httpServer.ListenAndServe()
	}()

	err := waitForShutdown(ctx, httpServer, errChan, s.logger)
	s.resources.Close(context.Background())
	return err
}

// requestLogger は chi の middleware.Logger を zap に置き換えたもの。
func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				logger.Info("request",
					zap.String("request_id", middleware.GetReqID(r.Context())),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", ww.Status()),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Duration("duration", time.Since(start)),
					zap.String("remote_addr", r.RemoteAddr),
				)
			}()
			next.ServeHTTP(ww, r)
		})
	}
}

// withCORS は許可されたオリジン情報をもとに CORS ヘッダーを付与するミドルウェアを返す。
func withCORS(origins []string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{})
	allowAll := false
	for _, origin := range origins {
		origin = strings.TrimSpace(origin)
		if origin == "" {
			continue
		}
		if origin == "*" {
			allowAll = true
			continue
		}
		allowed[origin] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := strings.TrimSpace(r.Header.Get("Origin"))
			if origin == "" || (!allowAll && !originAllowed(origin, allowed)) {
				if r.Method == http.MethodOptions {
					w.WriteHeader(http.StatusNoContent)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Accept,Content-Type")
			w.Header().Set("Access-Control-Max-Age", "300")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// originAllowed は指定された Origin が許可リストに含まれるか判定する。
func originAllowed(origin string, allowed map[string]struct{}) bool {
	if len(allowed) == 0 {
		return true
	}
	_, ok := allowed[origin]
	return ok
}

// healthHandler は Sink への疎通確認を行い、監視系からのヘルスチェック要求に応える。
func (s *Server) healthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := s.resources.Ping(ctx); err != nil {
			common.WriteJSON(s.logger, w, http.StatusServiceUnavailable, map[string]string{
				"status": "degraded",
				"sink":   s.resources.SinkDriver,
				"error":  err.Error(),
			})
			return
		}

		common.WriteJSON(s.logger, w, http.StatusOK, map[string]string{
			"status": "ok",
			"sink":   s.resources.SinkDriver,
			"time":   s.now().Format(time.RFC3339),
		})
	}
}

// waitForShutdown は ListenAndServe の終了、ctx の終了、OS シグナルを監視して graceful shutdown を行う。
func waitForShutdown(ctx context.Context, httpServer *http.Server, errChan <-chan error, logger *zap.Logger) error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case err := <-errChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("サーバーが異常終了", zap.Error(err))
			return err
		}
		return nil
	case sig := <-sigChan:
		logger.Info("シグナルを受信。サーバー停止処理を開始します。", zap.String("signal", sig.String()))
	case <-ctx.Done():
		logger.Info("コンテキスト終了。サーバー停止処理を開始します。")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("サーバー停止時にエラー", zap.Error(err))
		return err
	}
	return nil
}
