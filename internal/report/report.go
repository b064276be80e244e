// Package report shapes engine output for consumers. Risk scores only rank
// within one disease, so everything here works per disease.
package report

import (
	"math"

	"github.com/FAOEuFMD/EuFMD-Nexus-sub000/internal/rmt"
)

type Band string

const (
	BandNone   Band = "none"
	BandLow    Band = "low"
	BandMedium Band = "medium"
	BandHigh   Band = "high"
)

// maxLevel is the top of the map colour scale.
const maxLevel = 3.0

type DiseaseGroup struct {
	Disease rmt.Disease        `json:"disease"`
	Rows    []rmt.RiskScoreRow `json:"rows"`
}

type LeveledRow struct {
	rmt.RiskScoreRow
	Level float64 `json:"level"`
	Band  Band    `json:"band"`
}

type EffectivenessRow struct {
	Pathway string `json:"pathway"`
	FMD     int    `json:"FMD"`
	PPR     int    `json:"PPR"`
	LSD     int    `json:"LSD"`
	RVF     int    `json:"RVF"`
	SPGP    int    `json:"SPGP"`
}

// GroupByDisease splits rows into one group per disease, keeping input order
// inside each group.
func GroupByDisease(rows []rmt.RiskScoreRow) []DiseaseGroup {
	groups := make([]DiseaseGroup, len(rmt.Diseases))
	for i, d := range rmt.Diseases {
		groups[i] = DiseaseGroup{Disease: d, Rows: []rmt.RiskScoreRow{}}
	}
	for _, row := range rows {
		if int(row.Disease) < 0 || int(row.Disease) >= len(groups) {
			continue
		}
		groups[row.Disease].Rows = append(groups[row.Disease].Rows, row)
	}
	return groups
}

// Normalize places each row on a 0-3 scale relative to the highest score of
// its disease.
func Normalize(rows []rmt.RiskScoreRow) []LeveledRow {
	maxByDisease := map[rmt.Disease]float64{}
	for _, row := range rows {
		if row.RiskScore > maxByDisease[row.Disease] {
			maxByDisease[row.Disease] = row.RiskScore
		}
	}

	out := make([]LeveledRow, 0, len(rows))
	for _, row := range rows {
		level := 0.0
		if m := maxByDisease[row.Disease]; m > 0 {
			level = round2(maxLevel * row.RiskScore / m)
		}
		out = append(out, LeveledRow{RiskScoreRow: row, Level: level, Band: bandFor(level)})
	}
	return out
}

func bandFor(level float64) Band {
	switch {
	case level <= 0:
		return BandNone
	case level <= 1:
		return BandLow
	case level <= 2:
		return BandMedium
	default:
		return BandHigh
	}
}

// EffectivenessTable renders the matrix one row per pathway for charts.
func EffectivenessTable(m rmt.EffectivenessMatrix) []EffectivenessRow {
	out := make([]EffectivenessRow, 0, len(rmt.Pathways))
	for _, p := range rmt.Pathways {
		out = append(out, EffectivenessRow{
			Pathway: p.DisplayName(),
			FMD:     m.Get(rmt.FMD, p),
			PPR:     m.Get(rmt.PPR, p),
			LSD:     m.Get(rmt.LSD, p),
			RVF:     m.Get(rmt.RVF, p),
			SPGP:    m.Get(rmt.SPGP, p),
		})
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
