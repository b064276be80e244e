package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/FAOEuFMD/EuFMD-Nexus-sub000/internal/assessment"
	"github.com/FAOEuFMD/EuFMD-Nexus-sub000/internal/config"
	"github.com/FAOEuFMD/EuFMD-Nexus-sub000/internal/contracts"
	"github.com/FAOEuFMD/EuFMD-Nexus-sub000/internal/logging"
	"github.com/FAOEuFMD/EuFMD-Nexus-sub000/internal/mq"
	"github.com/FAOEuFMD/EuFMD-Nexus-sub000/internal/rmt"
	"github.com/FAOEuFMD/EuFMD-Nexus-sub000/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "risk-engine config error: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New("risk-engine", cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "risk-engine logger error: %v\n", err)
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

	svc := assessment.NewService(storage.NewRepository(dbPool), rmt.Default(), logger)

	reader := mq.NewReader(cfg.KafkaBrokers, cfg.KafkaTopicAssessments, cfg.ConsumerGroupPrefix+"-risk-engine")
	defer reader.Close()

	writer := mq.NewWriter(cfg.KafkaBrokers, cfg.KafkaTopicRisk)
	defer writer.Close()

	logger.Info("consuming",
		zap.String("topic", cfg.KafkaTopicAssessments),
		zap.String("publish_topic", cfg.KafkaTopicRisk),
	)
	if err := mq.Consume[contracts.AssessmentRequest](ctx, reader, logger, scoreRequest(svc, writer, logger)); err != nil {
		logger.Fatal("consumer stopped", zap.Error(err))
	}
	logger.Info("shutting down")
}
