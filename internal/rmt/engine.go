package rmt

import "sort"

// maxMitigation is the top of the mitigation scale. 4 - mitigation turns a
// well mitigated disease into a small multiplier.
const maxMitigation = 4

type CountryID int

type Country struct {
	ID   CountryID `json:"id"`
	Name string    `json:"name"`
}

// Inputs are the per-country records for one target country. Connections is
// optional per country; DiseaseStatus and Mitigation gate inclusion.
type Inputs struct {
	Connections     map[CountryID]ConnectionRatings
	DiseaseStatus   map[CountryID]DiseaseLevels
	Mitigation      map[CountryID]DiseaseLevels
	SourceCountries []Country
}

type PathwayContribution struct {
	Pathway         Pathway `json:"pathway"`
	Effectiveness   int     `json:"effectiveness"`
	ConnectionScore float64 `json:"connectionScore"`
	Weighted        float64 `json:"weighted"`
}

// RiskScoreRow is the score of one disease for one source country. Scores
// are only comparable between rows of the same disease.
type RiskScoreRow struct {
	SourceCountry      string                `json:"sourceCountry"`
	SourceCountryID    CountryID             `json:"sourceCountryId"`
	Disease            Disease               `json:"disease"`
	RiskScore          float64               `json:"riskScore"`
	DiseaseRisk        int                   `json:"diseaseRisk"`
	PathwayScore       float64               `json:"pathwayScore"`
	ConnectionStrength float64               `json:"connectionStrength"`
	Contributors       []PathwayContribution `json:"contributors"`
}

// Engine scores disease introduction risk against a fixed effectiveness table.
// It holds no other state and is safe for concurrent use.
type Engine struct {
	matrix EffectivenessMatrix
}

func NewEngine(matrix EffectivenessMatrix) *Engine {
	return &Engine{matrix: matrix}
}

var defaultEngine = NewEngine(defaultEffectiveness)

// Default returns the engine backed by the built-in effectiveness table.
func Default() *Engine {
	return defaultEngine
}

func (e *Engine) Effectiveness() EffectivenessMatrix {
	return e.matrix
}

// ScoreDiseaseRisk returns one risk value per disease for a country. A disease
// with no status, or status 0, scores 0 whatever the connections are.
func (e *Engine) ScoreDiseaseRisk(scores PathwayScores, status, mitigation DiseaseLevels) map[Disease]float64 {
	out := make(map[Disease]float64, diseaseCount)
	for _, d := range Diseases {
		out[d] = e.diseaseRisk(d, scores, status, mitigation)
	}
	return out
}

func (e *Engine) diseaseRisk(d Disease, scores PathwayScores, status, mitigation DiseaseLevels) float64 {
	diseaseValue := status.ValueOr(d, 0)
	if diseaseValue == 0 {
		return 0
	}
	mitigationValue := mitigation.ValueOr(d, 0)
	return float64(diseaseValue+(maxMitigation-mitigationValue)) * e.matrix.PathwaySum(d, scores)
}

// CalculateRiskScores scores every disease for every assessed source country
// and returns the rows by descending risk. Countries missing disease status
// or mitigation measures are left out; missing connections count as zero.
func (e *Engine) CalculateRiskScores(in Inputs) []RiskScoreRow {
	rows := make([]RiskScoreRow, 0, len(in.SourceCountries)*diseaseCount)

	for _, country := range in.SourceCountries {
		status, ok := in.DiseaseStatus[country.ID]
		if !ok {
			continue
		}
		mitigation, ok := in.Mitigation[country.ID]
		if !ok {
			continue
		}

		scores := ScorePathways(in.Connections[country.ID])
		strength := scores.Total()

		for _, d := range Diseases {
			rows = append(rows, RiskScoreRow{
				SourceCountry:      country.Name,
				SourceCountryID:    country.ID,
				Disease:            d,
				RiskScore:          e.diseaseRisk(d, scores, status, mitigation),
				DiseaseRisk:        status.ValueOr(d, 0),
				PathwayScore:       e.matrix.PathwaySum(d, scores),
				ConnectionStrength: strength,
				Contributors:       e.contributors(d, scores),
			})
		}
	}

	// SliceStable keeps country then disease emission order between equal scores.
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].RiskScore > rows[j].RiskScore
	})

	return rows
}

func (e *Engine) contributors(d Disease, scores PathwayScores) []PathwayContribution {
	out := make([]PathwayContribution, 0, pathwayCount)
	for _, p := range Pathways {
		eff := e.matrix.Get(d, p)
		weighted := float64(eff) * scores.Get(p)
		if weighted == 0 {
			continue
		}
		out = append(out, PathwayContribution{
			Pathway:         p,
			Effectiveness:   eff,
			ConnectionScore: scores.Get(p),
			Weighted:        weighted,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Weighted > out[j].Weighted
	})
	return out
}

// ScoreDiseaseRisk scores one country with the built-in effectiveness table.
func ScoreDiseaseRisk(scores PathwayScores, status, mitigation DiseaseLevels) map[Disease]float64 {
	return defaultEngine.ScoreDiseaseRisk(scores, status, mitigation)
}

// CalculateRiskScores runs the default engine over in.
func CalculateRiskScores(in Inputs) []RiskScoreRow {
	return defaultEngine.CalculateRiskScores(in)
}
