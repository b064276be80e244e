package main

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/FAOEuFMD/EuFMD-Nexus-sub000/internal/assessment"
	"github.com/FAOEuFMD/EuFMD-Nexus-sub000/internal/contracts"
	"github.com/FAOEuFMD/EuFMD-Nexus-sub000/internal/httpx"
	"github.com/FAOEuFMD/EuFMD-Nexus-sub000/internal/report"
	"github.com/FAOEuFMD/EuFMD-Nexus-sub000/internal/storage"
)

type dataStore interface {
	assessment.Source
	Country(ctx context.Context, id int) (contracts.Country, error)
}

type handlers struct {
	store  dataStore
	svc    *assessment.Service
	logger *zap.Logger
}

func newRouter(store dataStore, svc *assessment.Service, logger *zap.Logger, timeout time.Duration) http.Handler {
	h := &handlers{store: store, svc: svc, logger: logger}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(httpx.RequestLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(timeout))

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, map[string]any{"ok": true, "service": "query-api"})
	})

	router.Get("/v1/countries", h.listCountries)
	router.Get("/v1/countries/{id}", h.getCountry)
	router.Get("/v1/pathways", h.pathways)
	router.Get("/v1/risk-scores", h.riskScores)

	router.Route("/v1/rmt-data", func(r chi.Router) {
		r.Get("/disease-status", h.diseaseStatus)
		r.Get("/mitigation-measures", h.mitigationMeasures)
		r.Get("/connections", h.connections)
	})

	return router
}

func (h *handlers) listCountries(w http.ResponseWriter, r *http.Request) {
	countries, err := h.store.ListCountries(r.Context())
	if err != nil {
		h.internalError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"items": countries})
}

func (h *handlers) getCountry(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		httpx.WriteError(w, http.StatusBadRequest, errors.New("id must be a positive integer"))
		return
	}
	country, err := h.store.Country(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			httpx.WriteError(w, http.StatusNotFound, err)
			return
		}
		h.internalError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, country)
}

func (h *handlers) diseaseStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := userParam(w, r)
	if !ok {
		return
	}
	records, err := h.store.DiseaseStatus(r.Context(), userID)
	if err != nil {
		h.internalError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"items": records})
}

func (h *handlers) mitigationMeasures(w http.ResponseWriter, r *http.Request) {
	userID, ok := userParam(w, r)
	if !ok {
		return
	}
	records, err := h.store.MitigationMeasures(r.Context(), userID)
	if err != nil {
		h.internalError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"items": records})
}

func (h *handlers) connections(w http.ResponseWriter, r *http.Request) {
	userID, ok := userParam(w, r)
	if !ok {
		return
	}
	target, ok := targetParam(w, r)
	if !ok {
		return
	}
	records, err := h.store.Connections(r.Context(), userID, target)
	if err != nil {
		h.internalError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"items": records})
}

func (h *handlers) pathways(w http.ResponseWriter, _ *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"items": report.EffectivenessTable(h.svc.Effectiveness()),
	})
}

func (h *handlers) riskScores(w http.ResponseWriter, r *http.Request) {
	userID, ok := userParam(w, r)
	if !ok {
		return
	}
	target, ok := targetParam(w, r)
	if !ok {
		return
	}
	sources, err := httpx.QueryIntList(r, "sources")
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err)
		return
	}

	result, err := h.svc.Assess(r.Context(), contracts.AssessmentRequest{
		ID:               middleware.GetReqID(r.Context()),
		Timestamp:        time.Now().UTC(),
		UserID:           userID,
		TargetCountryID:  target,
		SourceCountryIDs: sources,
	})
	if err != nil {
		if errors.Is(err, assessment.ErrUnknownCountry) {
			httpx.WriteError(w, http.StatusNotFound, err)
			return
		}
		h.internalError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, result)
}

func (h *handlers) internalError(w http.ResponseWriter, err error) {
	h.logger.Error("request failed", zap.Error(err))
	httpx.WriteError(w, http.StatusInternalServerError, err)
}

// userParam returns nil when no user_id is given, which selects the
// default data set.
func userParam(w http.ResponseWriter, r *http.Request) (*int, bool) {
	n, present, err := httpx.QueryInt(r, "user_id")
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err)
		return nil, false
	}
	if !present {
		return nil, true
	}
	return &n, true
}

func targetParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	n, present, err := httpx.QueryInt(r, "target")
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err)
		return 0, false
	}
	if !present {
		httpx.WriteError(w, http.StatusBadRequest, errors.New("target is required"))
		return 0, false
	}
	return n, true
}
