package main

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/FAOEuFMD/EuFMD-Nexus-sub000/internal/contracts"
	"github.com/FAOEuFMD/EuFMD-Nexus-sub000/internal/httpx"
	"github.com/FAOEuFMD/EuFMD-Nexus-sub000/internal/mq"
)

type levelsRequest struct {
	UserID  int                     `json:"user_id"`
	Records []contracts.LevelRecord `json:"records"`
}

type connectionsRequest struct {
	UserID          int                          `json:"user_id"`
	TargetCountryID int                          `json:"target_country_id"`
	Records         []contracts.ConnectionRecord `json:"records"`
}

type assessmentRequest struct {
	UserID           *int  `json:"user_id"`
	TargetCountryID  int   `json:"target_country_id"`
	SourceCountryIDs []int `json:"source_country_ids"`
}

type handlers struct {
	submissions mq.MessageWriter
	assessments mq.MessageWriter
	logger      *zap.Logger
	now         func() time.Time
}

func newRouter(submissions, assessments mq.MessageWriter, logger *zap.Logger, timeout time.Duration) http.Handler {
	h := &handlers{
		submissions: submissions,
		assessments: assessments,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(httpx.RequestLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(timeout))

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, map[string]any{"ok": true, "service": "ingest"})
	})

	router.Route("/v1/rmt-data", func(r chi.Router) {
		r.Post("/disease-status", h.postLevels(contracts.KindDiseaseStatus))
		r.Post("/mitigation-measures", h.postLevels(contracts.KindMitigationMeasures))
		r.Post("/connections", h.postConnections)
	})
	router.Post("/v1/assessments", h.postAssessment)

	return router
}

func (h *handlers) postLevels(kind contracts.SubmissionKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body levelsRequest
		if err := httpx.DecodeJSON(r, &body); err != nil {
			httpx.WriteError(w, http.StatusBadRequest, err)
			return
		}

		h.publishSubmission(w, r, contracts.Submission{
			Kind:   kind,
			UserID: body.UserID,
			Levels: body.Records,
		})
	}
}

func (h *handlers) postConnections(w http.ResponseWriter, r *http.Request) {
	var body connectionsRequest
	if err := httpx.DecodeJSON(r, &body); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err)
		return
	}

	h.publishSubmission(w, r, contracts.Submission{
		Kind:            contracts.KindConnections,
		UserID:          body.UserID,
		TargetCountryID: body.TargetCountryID,
		Connections:     body.Records,
	})
}

func (h *handlers) publishSubmission(w http.ResponseWriter, r *http.Request, sub contracts.Submission) {
	enrichSubmission(&sub, h.now())
	if err := sub.Validate(); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err)
		return
	}

	if err := mq.PublishJSON(r.Context(), h.submissions, sub.Key(), sub); err != nil {
		h.logger.Error("publish submission failed", zap.String("kind", string(sub.Kind)), zap.Error(err))
		httpx.WriteError(w, http.StatusInternalServerError, err)
		return
	}

	httpx.WriteJSON(w, http.StatusAccepted, map[string]any{
		"id":      sub.ID,
		"kind":    sub.Kind,
		"records": len(sub.Levels) + len(sub.Connections),
	})
}

func (h *handlers) postAssessment(w http.ResponseWriter, r *http.Request) {
	var body assessmentRequest
	if err := httpx.DecodeJSON(r, &body); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err)
		return
	}
	if body.TargetCountryID <= 0 {
		httpx.WriteError(w, http.StatusBadRequest, errors.New("target_country_id is required"))
		return
	}
	if body.UserID != nil && *body.UserID <= 0 {
		httpx.WriteError(w, http.StatusBadRequest, errors.New("user_id must be a positive integer"))
		return
	}
	for _, id := range body.SourceCountryIDs {
		if id <= 0 {
			httpx.WriteError(w, http.StatusBadRequest, errors.New("source_country_ids must be positive integers"))
			return
		}
	}

	req := contracts.AssessmentRequest{
		ID:               uuid.NewString(),
		Timestamp:        h.now(),
		UserID:           body.UserID,
		TargetCountryID:  body.TargetCountryID,
		SourceCountryIDs: body.SourceCountryIDs,
	}
	if err := mq.PublishJSON(r.Context(), h.assessments, req.Key(), req); err != nil {
		h.logger.Error("publish assessment request failed", zap.Int("target", req.TargetCountryID), zap.Error(err))
		httpx.WriteError(w, http.StatusInternalServerError, err)
		return
	}

	httpx.WriteJSON(w, http.StatusAccepted, req)
}

// enrichSubmission stamps an id and time and copies the batch owner onto
// every record.
func enrichSubmission(s *contracts.Submission, now time.Time) {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.Timestamp.IsZero() {
		s.Timestamp = now
	}
	for i := range s.Levels {
		user := s.UserID
		s.Levels[i].UserID = &user
		s.Levels[i].Date = strings.TrimSpace(s.Levels[i].Date)
		if s.Levels[i].Date == "" {
			s.Levels[i].Date = now.Format(time.DateOnly)
		}
	}
	for i := range s.Connections {
		s.Connections[i].TargetCountryID = s.TargetCountryID
	}
}
