package mq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const (
	readRetryDelay       = 500 * time.Millisecond
	maxHandlerRetryDelay = 30 * time.Second
)

var handlerRetryDelay = 500 * time.Millisecond

func NewWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 250 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
		Async:        false,
	}
}

// NewReader joins groupID. CommitInterval is left at zero so CommitMessages
// is synchronous.
func NewReader(brokers []string, topic, groupID string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6,
		MaxWait:  time.Second,
	})
}

type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// MessageReader is the explicit-commit side of a consumer group reader.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
}

func PublishJSON(ctx context.Context, writer MessageWriter, key string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	return writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: body,
		Time:  time.Now().UTC(),
	})
}

func ParseMessageJSON[T any](msg kafka.Message) (T, error) {
	var payload T
	err := json.Unmarshal(msg.Value, &payload)
	return payload, err
}

// Handler processes one decoded message. A nil error or a Permanent error
// commits the message; any other error retries it.
type Handler[T any] func(ctx context.Context, payload T) error

type permanentError struct {
	err error
}

func (e permanentError) Error() string { return e.err.Error() }
func (e permanentError) Unwrap() error { return e.err }

// Permanent marks err as one that retrying cannot fix, so the message is
// committed and skipped.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return permanentError{err: err}
}

func IsPermanent(err error) bool {
	var p permanentError
	return errors.As(err, &p)
}

// Consume fetches JSON messages until ctx is cancelled and commits each one
// only once it has been handled. Fetch errors and transient handler errors
// back off and retry; undecodable messages are committed and skipped. A
// commit failure stops the consumer.
func Consume[T any](ctx context.Context, reader MessageReader, logger *zap.Logger, handle Handler[T]) error {
	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return nil
			}
			logger.Warn("kafka fetch failed", zap.Error(err))
			if !sleep(ctx, readRetryDelay) {
				return nil
			}
			continue
		}

		payload, err := ParseMessageJSON[T](msg)
		if err != nil {
			logger.Warn("kafka message decode failed",
				zap.String("topic", msg.Topic),
				zap.Int64("offset", msg.Offset),
				zap.Error(err),
			)
		} else if !handleWithRetry(ctx, msg, payload, logger, handle) {
			return nil
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("commit %s offset %d: %w", msg.Topic, msg.Offset, err)
		}
	}
}

// handleWithRetry returns false when ctx ends before the message is done.
func handleWithRetry[T any](ctx context.Context, msg kafka.Message, payload T, logger *zap.Logger, handle Handler[T]) bool {
	delay := handlerRetryDelay
	for attempt := 1; ; attempt++ {
		err := handle(ctx, payload)
		if err == nil {
			return true
		}
		if IsPermanent(err) {
			logger.Error("kafka message rejected",
				zap.String("topic", msg.Topic),
				zap.String("key", string(msg.Key)),
				zap.Int64("offset", msg.Offset),
				zap.Error(err),
			)
			return true
		}

		logger.Warn("kafka message handling failed, retrying",
			zap.String("topic", msg.Topic),
			zap.String("key", string(msg.Key)),
			zap.Int64("offset", msg.Offset),
			zap.Int("attempt", attempt),
			zap.Duration("backoff", delay),
			zap.Error(err),
		)
		if !sleep(ctx, delay) {
			return false
		}
		delay = min(delay*2, maxHandlerRetryDelay)
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}
