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

	"github.com/FAOEuFMD/EuFMD-Nexus-sub000/internal/config"
	"github.com/FAOEuFMD/EuFMD-Nexus-sub000/internal/logging"
	"github.com/FAOEuFMD/EuFMD-Nexus-sub000/internal/mq"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ingest config error: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New("ingest", cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ingest logger error: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	submissions := mq.NewWriter(cfg.KafkaBrokers, cfg.KafkaTopicSubmissions)
	defer submissions.Close()

	assessments := mq.NewWriter(cfg.KafkaBrokers, cfg.KafkaTopicAssessments)
	defer assessments.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           newRouter(submissions, assessments, logger, cfg.RequestTimeout),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	logger.Info("listening",
		zap.String("addr", cfg.HTTPAddr),
		zap.String("submissions_topic", cfg.KafkaTopicSubmissions),
		zap.String("assessments_topic", cfg.KafkaTopicAssessments),
	)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server error", zap.Error(err))
	}
}
