package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/FAOEuFMD/EuFMD-Nexus-sub000/internal/assessment"
	"github.com/FAOEuFMD/EuFMD-Nexus-sub000/internal/config"
	"github.com/FAOEuFMD/EuFMD-Nexus-sub000/internal/logging"
	"github.com/FAOEuFMD/EuFMD-Nexus-sub000/internal/rmt"
	"github.com/FAOEuFMD/EuFMD-Nexus-sub000/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "query-api config error: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New("query-api", cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "query-api logger error: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool, err := storage.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("database error", zap.Error(err))
	}
	defer dbPool.Close()

	if err := storage.RunMigrations(ctx, dbPool); err != nil {
		logger.Fatal("migration error", zap.Error(err))
	}

	repo := storage.NewRepository(dbPool)
	svc := assessment.NewService(repo, rmt.Default(), logger)

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           newRouter(repo, svc, logger, cfg.RequestTimeout),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	logger.Info("listening", zap.String("addr", cfg.HTTPAddr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server error", zap.Error(err))
	}
}
