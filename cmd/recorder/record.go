package main

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/FAOEuFMD/EuFMD-Nexus-sub000/internal/contracts"
	"github.com/FAOEuFMD/EuFMD-Nexus-sub000/internal/mq"
)

type submissionStore interface {
	SaveSubmission(ctx context.Context, sub contracts.Submission) (int, error)
}

// recordSubmission re-validates every submission before writing it. Invalid
// submissions are dropped; store errors are retried.
func recordSubmission(store submissionStore, logger *zap.Logger) mq.Handler[contracts.Submission] {
	return func(ctx context.Context, sub contracts.Submission) error {
		if err := sub.Validate(); err != nil {
			return mq.Permanent(err)
		}

		written, err := store.SaveSubmission(ctx, sub)
		if errors.Is(err, contracts.ErrInvalidSubmission) {
			return mq.Permanent(err)
		}
		if err != nil {
			return err
		}

		logger.Info("submission recorded",
			zap.String("id", sub.ID),
			zap.String("kind", string(sub.Kind)),
			zap.Int("user_id", sub.UserID),
			zap.Int("rows", written),
		)
		return nil
	}
}
