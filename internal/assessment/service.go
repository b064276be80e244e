package assessment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/FAOEuFMD/EuFMD-Nexus-sub000/internal/contracts"
	"github.com/FAOEuFMD/EuFMD-Nexus-sub000/internal/report"
	"github.com/FAOEuFMD/EuFMD-Nexus-sub000/internal/rmt"
)

var ErrUnknownCountry = errors.New("unknown country")

// Source is the read side of the RMT data store.
type Source interface {
	ListCountries(ctx context.Context) ([]contracts.Country, error)
	DiseaseStatus(ctx context.Context, userID *int) ([]contracts.LevelRecord, error)
	MitigationMeasures(ctx context.Context, userID *int) ([]contracts.LevelRecord, error)
	Connections(ctx context.Context, userID *int, targetCountryID int) ([]contracts.ConnectionRecord, error)
}

type Service struct {
	source Source
	engine *rmt.Engine
	logger *zap.Logger
	now    func() time.Time
}

func NewService(source Source, engine *rmt.Engine, logger *zap.Logger) *Service {
	if engine == nil {
		engine = rmt.Default()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		source: source,
		engine: engine,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) Effectiveness() rmt.EffectivenessMatrix {
	return s.engine.Effectiveness()
}

// Assess scores every requested source country against the target country.
func (s *Service) Assess(ctx context.Context, req contracts.AssessmentRequest) (contracts.AssessmentResult, error) {
	countries, err := s.source.ListCountries(ctx)
	if err != nil {
		return contracts.AssessmentResult{}, fmt.Errorf("load countries: %w", err)
	}

	target, ok := findCountry(countries, req.TargetCountryID)
	if !ok {
		return contracts.AssessmentResult{}, fmt.Errorf("target %d: %w", req.TargetCountryID, ErrUnknownCountry)
	}

	sources, err := sourceCountries(countries, req)
	if err != nil {
		return contracts.AssessmentResult{}, err
	}

	status, err := s.source.DiseaseStatus(ctx, req.UserID)
	if err != nil {
		return contracts.AssessmentResult{}, fmt.Errorf("load disease status: %w", err)
	}
	mitigation, err := s.source.MitigationMeasures(ctx, req.UserID)
	if err != nil {
		return contracts.AssessmentResult{}, fmt.Errorf("load mitigation measures: %w", err)
	}
	connections, err := s.source.Connections(ctx, req.UserID, req.TargetCountryID)
	if err != nil {
		return contracts.AssessmentResult{}, fmt.Errorf("load connections: %w", err)
	}

	in := BuildInputs(sources, status, mitigation, connections)
	rows := s.engine.CalculateRiskScores(in)

	assessed := len(rows) / len(rmt.Diseases)
	s.logger.Debug("assessment computed",
		zap.String("request_id", req.ID),
		zap.Int("target_country_id", target.ID),
		zap.Int("source_countries", len(sources)),
		zap.Int("assessed_countries", assessed),
	)

	return contracts.AssessmentResult{
		ID:            uuid.NewString(),
		RequestID:     req.ID,
		ComputedAt:    s.now(),
		TargetCountry: target,
		Assessed:      assessed,
		Rows:          rows,
		ByDisease:     report.GroupByDisease(rows),
		Levels:        report.Normalize(rows),
	}, nil
}

// BuildInputs keys the stored records by country for the engine. The target
// country is expected to be absent from sources already.
func BuildInputs(sources []contracts.Country, status, mitigation []contracts.LevelRecord, connections []contracts.ConnectionRecord) rmt.Inputs {
	in := rmt.Inputs{
		Connections:     make(map[rmt.CountryID]rmt.ConnectionRatings, len(connections)),
		DiseaseStatus:   make(map[rmt.CountryID]rmt.DiseaseLevels, len(status)),
		Mitigation:      make(map[rmt.CountryID]rmt.DiseaseLevels, len(mitigation)),
		SourceCountries: make([]rmt.Country, 0, len(sources)),
	}

	for _, c := range sources {
		in.SourceCountries = append(in.SourceCountries, rmt.Country{ID: rmt.CountryID(c.ID), Name: c.NameUN})
	}
	for _, rec := range status {
		in.DiseaseStatus[rmt.CountryID(rec.CountryID)] = rec.DiseaseLevels
	}
	for _, rec := range mitigation {
		in.Mitigation[rmt.CountryID(rec.CountryID)] = rec.DiseaseLevels
	}
	for _, rec := range connections {
		in.Connections[rmt.CountryID(rec.CountryID)] = rec.Ratings()
	}

	return in
}

func sourceCountries(countries []contracts.Country, req contracts.AssessmentRequest) ([]contracts.Country, error) {
	if len(req.SourceCountryIDs) == 0 {
		out := make([]contracts.Country, 0, len(countries))
		for _, c := range countries {
			if c.ID != req.TargetCountryID {
				out = append(out, c)
			}
		}
		return out, nil
	}

	out := make([]contracts.Country, 0, len(req.SourceCountryIDs))
	seen := make(map[int]bool, len(req.SourceCountryIDs))
	for _, id := range req.SourceCountryIDs {
		if id == req.TargetCountryID || seen[id] {
			continue
		}
		c, ok := findCountry(countries, id)
		if !ok {
			return nil, fmt.Errorf("source %d: %w", id, ErrUnknownCountry)
		}
		seen[id] = true
		out = append(out, c)
	}
	return out, nil
}

func findCountry(countries []contracts.Country, id int) (contracts.Country, bool) {
	for _, c := range countries {
		if c.ID == id {
			return c, true
		}
	}
	return contracts.Country{}, false
}
