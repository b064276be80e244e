package rmt

// EffectivenessMatrix rates (0-3) how effectively each pathway transmits each
// disease. It is an array value, so every holder owns its own copy.
type EffectivenessMatrix [diseaseCount][pathwayCount]int

// Ratings used by the RMT-FAST pathway chart.
var defaultEffectiveness = EffectivenessMatrix{
	//         air vec wild prod live fomite
	FMD:  {2, 0, 1, 2, 3, 2},
	PPR:  {0, 0, 2, 0, 3, 2},
	LSD:  {0, 3, 0, 1, 3, 1},
	RVF:  {0, 3, 1, 2, 3, 0},
	SPGP: {0, 1, 0, 1, 3, 2},
}

// DefaultEffectiveness returns a copy of the built-in pathway effectiveness table.
func DefaultEffectiveness() EffectivenessMatrix {
	return defaultEffectiveness
}

func (m EffectivenessMatrix) Get(d Disease, p Pathway) int {
	if d < 0 || int(d) >= diseaseCount || p < 0 || int(p) >= pathwayCount {
		return 0
	}
	return m[d][p]
}

// PathwaySum is the effectiveness weighted sum of the pathway scores for d.
func (m EffectivenessMatrix) PathwaySum(d Disease, scores PathwayScores) float64 {
	sum := 0.0
	for _, p := range Pathways {
		sum += float64(m.Get(d, p)) * scores.Get(p)
	}
	return sum
}
