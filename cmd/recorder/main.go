package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/FAOEuFMD/EuFMD-Nexus-sub000/internal/config"
	"github.com/FAOEuFMD/EuFMD-Nexus-sub000/internal/contracts"
	"github.com/FAOEuFMD/EuFMD-Nexus-sub000/internal/logging"
	"github.com/FAOEuFMD/EuFMD-Nexus-sub000/internal/mq"
	"github.com/FAOEuFMD/EuFMD-Nexus-sub000/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "recorder config error: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New("recorder", cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "recorder logger error: %v\n", err)
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

	reader := mq.NewReader(cfg.KafkaBrokers, cfg.KafkaTopicSubmissions, cfg.ConsumerGroupPrefix+"-recorder")
	defer reader.Close()

	logger.Info("consuming", zap.String("topic", cfg.KafkaTopicSubmissions))
	if err := mq.Consume[contracts.Submission](ctx, reader, logger, recordSubmission(repo, logger)); err != nil {
		logger.Fatal("consumer stopped", zap.Error(err))
	}
	logger.Info("shutting down")
}
