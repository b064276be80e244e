package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/FAOEuFMD/EuFMD-Nexus-sub000/internal/assessment"
	"github.com/FAOEuFMD/EuFMD-Nexus-sub000/internal/contracts"
	"github.com/FAOEuFMD/EuFMD-Nexus-sub000/internal/mq"
)

type assessor interface {
	Assess(ctx context.Context, req contracts.AssessmentRequest) (contracts.AssessmentResult, error)
}

func scoreRequest(svc assessor, writer mq.MessageWriter, logger *zap.Logger) mq.Handler[contracts.AssessmentRequest] {
	return func(ctx context.Context, req contracts.AssessmentRequest) error {
		result, err := svc.Assess(ctx, req)
		if errors.Is(err, assessment.ErrUnknownCountry) {
			return mq.Permanent(fmt.Errorf("assess request %s: %w", req.ID, err))
		}
		if err != nil {
			return fmt.Errorf("assess request %s: %w", req.ID, err)
		}

		key := strconv.Itoa(result.TargetCountry.ID)
		if err := mq.PublishJSON(ctx, writer, key, result); err != nil {
			var kafkaErr kafka.Error
			if errors.As(err, &kafkaErr) && kafkaErr.Temporary() {
				logger.Warn("kafka temporary error", zap.String("request_id", req.ID), zap.Error(err))
			}
			return fmt.Errorf("publish result %s: %w", result.ID, err)
		}

		top := zap.Skip()
		if len(result.Rows) > 0 {
			row := result.Rows[0]
			top = zap.String("top", fmt.Sprintf("%s/%s=%.2f", row.SourceCountry, row.Disease, row.RiskScore))
		}
		logger.Info("risk scores published",
			zap.String("request_id", req.ID),
			zap.String("target", result.TargetCountry.ISO3),
			zap.Int("assessed_countries", result.Assessed),
			top,
		)
		return nil
	}
}
