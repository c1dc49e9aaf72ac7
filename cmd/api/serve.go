package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sngm3741/diagnostic-services/api/internal/config"
	"github.com/sngm3741/diagnostic-services/api/internal/logging"
	"github.com/sngm3741/diagnostic-services/api/internal/metrics"
	"github.com/sngm3741/diagnostic-services/api/internal/server"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(parent context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("設定の読み込みに失敗しました: %w", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := server.Bootstrap(ctx, cfg, logger)
	if err != nil {
		logger.Error("起動に失敗しました", zap.Error(err))
		return err
	}

	app := server.New(cfg, logger, res, metrics.New())
	return app.Run(ctx)
}
