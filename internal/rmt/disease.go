package rmt

import (
	"encoding/json"
	"fmt"
)

// Disease is one of the five FAST diseases tracked by the risk monitoring tool.
type Disease int

const (
	FMD Disease = iota
	PPR
	LSD
	RVF
	SPGP

	diseaseCount = 5
)

// Diseases lists every disease in emission order.
var Diseases = [diseaseCount]Disease{FMD, PPR, LSD, RVF, SPGP}

var diseaseCodes = [diseaseCount]string{"FMD", "PPR", "LSD", "RVF", "SPGP"}

func (d Disease) String() string {
	if d < 0 || int(d) >= diseaseCount {
		return fmt.Sprintf("Disease(%d)", int(d))
	}
	return diseaseCodes[d]
}

func ParseDisease(code string) (Disease, error) {
	for i, c := range diseaseCodes {
		if c == code {
			return Disease(i), nil
		}
	}
	return 0, fmt.Errorf("unknown disease %q", code)
}

func (d Disease) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Disease) UnmarshalJSON(data []byte) error {
	var code string
	if err := json.Unmarshal(data, &code); err != nil {
		return err
	}
	parsed, err := ParseDisease(code)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// DiseaseLevels holds one nullable rating per disease. A nil field means the
// disease has not been assessed for that country.
//
// As disease status (0-3) a nil or zero level contributes no risk. As
// mitigation measures (0-4, higher is safer) a nil level counts as 0.
type DiseaseLevels struct {
	FMD  *int `json:"FMD"`
	PPR  *int `json:"PPR"`
	LSD  *int `json:"LSD"`
	RVF  *int `json:"RVF"`
	SPGP *int `json:"SPGP"`
}

func (l DiseaseLevels) Get(d Disease) *int {
	switch d {
	case FMD:
		return l.FMD
	case PPR:
		return l.PPR
	case LSD:
		return l.LSD
	case RVF:
		return l.RVF
	case SPGP:
		return l.SPGP
	default:
		return nil
	}
}

// ValueOr returns the level for d, or fallback when it is not assessed.
func (l DiseaseLevels) ValueOr(d Disease, fallback int) int {
	if v := l.Get(d); v != nil {
		return *v
	}
	return fallback
}

// Level is a convenience for building DiseaseLevels literals.
func Level(v int) *int {
	return &v
}
