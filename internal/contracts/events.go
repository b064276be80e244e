package contracts

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/FAOEuFMD/EuFMD-Nexus-sub000/internal/report"
	"github.com/FAOEuFMD/EuFMD-Nexus-sub000/internal/rmt"
)

var ErrInvalidSubmission = errors.New("invalid submission")

type SubmissionKind string

const (
	KindDiseaseStatus      SubmissionKind = "disease_status"
	KindMitigationMeasures SubmissionKind = "mitigation_measures"
	KindConnections        SubmissionKind = "connections"
)

const (
	maxDiseaseStatus = 3
	maxMitigation    = 4
	maxRating        = 3
	maxDensity       = 1
)

type Country struct {
	ID        int    `json:"id"`
	ISO3      string `json:"iso3"`
	NameUN    string `json:"name_un"`
	Subregion string `json:"subregion,omitempty"`
}

// LevelRecord is one country's disease status or mitigation measures row.
type LevelRecord struct {
	CountryID int `json:"country_id"`
	rmt.DiseaseLevels
	Date   string `json:"date,omitempty"`
	UserID *int   `json:"user_id,omitempty"`
}

// ConnectionRecord holds the connection ratings a user entered for one source
// country. Unrated fields are nil.
type ConnectionRecord struct {
	CountryID         int  `json:"country_id"`
	TargetCountryID   int  `json:"target_country_id,omitempty"`
	LiveAnimalContact *int `json:"liveAnimalContact"`
	LegalImport       *int `json:"legalImport"`
	Proximity         *int `json:"proximity"`
	IllegalImport     *int `json:"illegalImport"`
	Connection        *int `json:"connection"`
	LivestockDensity  *int `json:"livestockDensity"`
}

func (c ConnectionRecord) Ratings() rmt.ConnectionRatings {
	return rmt.ConnectionRatings{
		LiveAnimalContact: valueOrZero(c.LiveAnimalContact),
		LegalImport:       valueOrZero(c.LegalImport),
		Proximity:         valueOrZero(c.Proximity),
		IllegalImport:     valueOrZero(c.IllegalImport),
		Connection:        valueOrZero(c.Connection),
		LivestockDensity:  valueOrZero(c.LivestockDensity),
	}
}

type Submission struct {
	ID              string             `json:"id"`
	Timestamp       time.Time          `json:"timestamp"`
	Kind            SubmissionKind     `json:"kind"`
	UserID          int                `json:"user_id"`
	TargetCountryID int                `json:"target_country_id,omitempty"`
	Levels          []LevelRecord      `json:"levels,omitempty"`
	Connections     []ConnectionRecord `json:"connections,omitempty"`
}

func (s Submission) Key() string {
	return string(s.Kind) + "|" + strconv.Itoa(s.UserID)
}

// Validate enforces the rating ranges offered by the data entry forms.
func (s Submission) Validate() error {
	if s.UserID <= 0 {
		return fmt.Errorf("%w: user_id is required", ErrInvalidSubmission)
	}

	switch s.Kind {
	case KindDiseaseStatus:
		return validateLevels(s.Levels, maxDiseaseStatus)
	case KindMitigationMeasures:
		return validateLevels(s.Levels, maxMitigation)
	case KindConnections:
		if s.TargetCountryID <= 0 {
			return fmt.Errorf("%w: target_country_id is required", ErrInvalidSubmission)
		}
		if len(s.Connections) == 0 {
			return fmt.Errorf("%w: no connections", ErrInvalidSubmission)
		}
		for _, c := range s.Connections {
			if c.CountryID <= 0 {
				return fmt.Errorf("%w: country_id is required", ErrInvalidSubmission)
			}
			if c.CountryID == s.TargetCountryID {
				return fmt.Errorf("%w: country %d is the target country", ErrInvalidSubmission, c.CountryID)
			}
			ratings := []struct {
				name  string
				value *int
				max   int
			}{
				{"liveAnimalContact", c.LiveAnimalContact, maxRating},
				{"legalImport", c.LegalImport, maxRating},
				{"proximity", c.Proximity, maxRating},
				{"illegalImport", c.IllegalImport, maxRating},
				{"connection", c.Connection, maxRating},
				{"livestockDensity", c.LivestockDensity, maxDensity},
			}
			for _, r := range ratings {
				if err := checkRange(r.value, r.max); err != nil {
					return fmt.Errorf("%w: country %d %s %v", ErrInvalidSubmission, c.CountryID, r.name, err)
				}
			}
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidSubmission, s.Kind)
	}
}

func validateLevels(records []LevelRecord, max int) error {
	if len(records) == 0 {
		return fmt.Errorf("%w: no records", ErrInvalidSubmission)
	}
	for _, r := range records {
		if r.CountryID <= 0 {
			return fmt.Errorf("%w: country_id is required", ErrInvalidSubmission)
		}
		for _, d := range rmt.Diseases {
			if err := checkRange(r.Get(d), max); err != nil {
				return fmt.Errorf("%w: country %d %s %v", ErrInvalidSubmission, r.CountryID, d, err)
			}
		}
	}
	return nil
}

func checkRange(v *int, max int) error {
	if v == nil {
		return nil
	}
	if *v < 0 || *v > max {
		return fmt.Errorf("must be between 0 and %d, got %d", max, *v)
	}
	return nil
}

// AssessmentRequest asks for the risk of every source country towards one
// target country. An empty SourceCountryIDs means every known country.
type AssessmentRequest struct {
	ID               string    `json:"id"`
	Timestamp        time.Time `json:"timestamp"`
	UserID           *int      `json:"user_id,omitempty"`
	TargetCountryID  int       `json:"target_country_id"`
	SourceCountryIDs []int     `json:"source_country_ids,omitempty"`
}

func (r AssessmentRequest) Key() string {
	return strconv.Itoa(r.TargetCountryID)
}

type AssessmentResult struct {
	ID            string                `json:"id"`
	RequestID     string                `json:"request_id,omitempty"`
	ComputedAt    time.Time             `json:"computed_at"`
	TargetCountry Country               `json:"target_country"`
	Assessed      int                   `json:"assessed_countries"`
	Rows          []rmt.RiskScoreRow    `json:"rows"`
	ByDisease     []report.DiseaseGroup `json:"by_disease"`
	Levels        []report.LeveledRow   `json:"levels"`
}

func valueOrZero(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
