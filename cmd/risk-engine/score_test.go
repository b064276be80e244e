package main

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/FAOEuFMD/EuFMD-Nexus-sub000/internal/assessment"
	"github.com/FAOEuFMD/EuFMD-Nexus-sub000/internal/contracts"
	"github.com/FAOEuFMD/EuFMD-Nexus-sub000/internal/mq"
	"github.com/FAOEuFMD/EuFMD-Nexus-sub000/internal/rmt"
)

type stubAssessor struct {
	result contracts.AssessmentResult
	err    error
}

func (s stubAssessor) Assess(context.Context, contracts.AssessmentRequest) (contracts.AssessmentResult, error) {
	return s.result, s.err
}

type recordingWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func TestScoreRequestPublishesResult(t *testing.T) {
	svc := stubAssessor{result: contracts.AssessmentResult{
		ID:            "res-1",
		RequestID:     "req-1",
		TargetCountry: contracts.Country{ID: 12, ISO3: "BGR", NameUN: "Bulgaria"},
		Assessed:      1,
		Rows: []rmt.RiskScoreRow{
			{SourceCountry: "Türkiye", SourceCountryID: 2, Disease: rmt.FMD, RiskScore: 75},
		},
	}}
	writer := &recordingWriter{}

	err := scoreRequest(svc, writer, zap.NewNop())(context.Background(), contracts.AssessmentRequest{ID: "req-1", TargetCountryID: 12})
	require.NoError(t, err)

	require.Len(t, writer.msgs, 1)
	assert.Equal(t, "12", string(writer.msgs[0].Key))

	var got contracts.AssessmentResult
	require.NoError(t, json.Unmarshal(writer.msgs[0].Value, &got))
	assert.Equal(t, "req-1", got.RequestID)
	assert.Equal(t, 75.0, got.Rows[0].RiskScore)
}

func TestScoreRequestAssessError(t *testing.T) {
	writer := &recordingWriter{}
	svc := stubAssessor{err: assessment.ErrUnknownCountry}

	err := scoreRequest(svc, writer, zap.NewNop())(context.Background(), contracts.AssessmentRequest{ID: "req-2", TargetCountryID: 99})
	assert.ErrorIs(t, err, assessment.ErrUnknownCountry)
	assert.True(t, mq.IsPermanent(err))
	assert.Empty(t, writer.msgs)
}

func TestScoreRequestLoadErrorIsRetried(t *testing.T) {
	svc := stubAssessor{err: errors.New("load countries: connection refused")}

	err := scoreRequest(svc, &recordingWriter{}, zap.NewNop())(context.Background(), contracts.AssessmentRequest{ID: "req-4", TargetCountryID: 1})
	require.Error(t, err)
	assert.False(t, mq.IsPermanent(err))
}

func TestScoreRequestPublishError(t *testing.T) {
	writer := &recordingWriter{err: kafka.LeaderNotAvailable}
	svc := stubAssessor{result: contracts.AssessmentResult{ID: "res-3"}}

	err := scoreRequest(svc, writer, zap.NewNop())(context.Background(), contracts.AssessmentRequest{ID: "req-3"})
	assert.True(t, errors.Is(err, kafka.LeaderNotAvailable))
	assert.False(t, mq.IsPermanent(err))
}
