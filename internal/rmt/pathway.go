package rmt

import (
	"encoding/json"
	"fmt"
)

// Pathway is a transmission route from a source country into the target.
type Pathway int

const (
	Airborne Pathway = iota
	Vectorborne
	WildAnimals
	AnimalProduct
	LiveAnimal
	Fomite

	pathwayCount = 6
)

// Pathways lists every pathway in scoring order.
var Pathways = [pathwayCount]Pathway{Airborne, Vectorborne, WildAnimals, AnimalProduct, LiveAnimal, Fomite}

var (
	pathwayKeys  = [pathwayCount]string{"airborne", "vectorborne", "wildAnimals", "animalProduct", "liveAnimal", "fomite"}
	pathwayNames = [pathwayCount]string{"Airborne", "Vector-borne", "Wild Animals", "Animal Product", "Live Animal", "Fomite"}
)

func (p Pathway) String() string {
	if p < 0 || int(p) >= pathwayCount {
		return fmt.Sprintf("Pathway(%d)", int(p))
	}
	return pathwayKeys[p]
}

// DisplayName is the label used by charts and tables.
func (p Pathway) DisplayName() string {
	if p < 0 || int(p) >= pathwayCount {
		return p.String()
	}
	return pathwayNames[p]
}

func ParsePathway(key string) (Pathway, error) {
	for i, k := range pathwayKeys {
		if k == key {
			return Pathway(i), nil
		}
	}
	return 0, fmt.Errorf("unknown pathway %q", key)
}

func (p Pathway) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

func (p *Pathway) UnmarshalJSON(data []byte) error {
	var key string
	if err := json.Unmarshal(data, &key); err != nil {
		return err
	}
	parsed, err := ParsePathway(key)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// ConnectionRatings are the bilateral exchange ratings between the target and
// one source country. Every field is 0-3 except LivestockDensity, which is 0
// or 1. Values are not validated here.
type ConnectionRatings struct {
	LiveAnimalContact int `json:"liveAnimalContact"`
	LegalImport       int `json:"legalImport"`
	Proximity         int `json:"proximity"`
	IllegalImport     int `json:"illegalImport"`
	Connection        int `json:"connection"`
	LivestockDensity  int `json:"livestockDensity"`
}

// PathwayScores is the connection strength of each pathway for one country
// pair. The same scores apply to every disease.
type PathwayScores struct {
	Airborne      float64 `json:"airborne"`
	Vectorborne   float64 `json:"vectorborne"`
	WildAnimals   float64 `json:"wildAnimals"`
	AnimalProduct float64 `json:"animalProduct"`
	LiveAnimal    float64 `json:"liveAnimal"`
	Fomite        float64 `json:"fomite"`
}

func (s PathwayScores) Get(p Pathway) float64 {
	switch p {
	case Airborne:
		return s.Airborne
	case Vectorborne:
		return s.Vectorborne
	case WildAnimals:
		return s.WildAnimals
	case AnimalProduct:
		return s.AnimalProduct
	case LiveAnimal:
		return s.LiveAnimal
	case Fomite:
		return s.Fomite
	default:
		return 0
	}
}

// Total is the overall connection strength of the pair.
func (s PathwayScores) Total() float64 {
	return s.Airborne + s.Vectorborne + s.WildAnimals + s.AnimalProduct + s.LiveAnimal + s.Fomite
}

// ScorePathways turns raw connection ratings into pathway scores. The
// thresholds come from the connections sheet of the EuFMD RMT-FAST workbook.
func ScorePathways(r ConnectionRatings) PathwayScores {
	return PathwayScores{
		Airborne:      airborneScore(r.LivestockDensity, r.Proximity),
		Vectorborne:   vectorborneScore(r.LivestockDensity, r.Proximity, r.Connection),
		WildAnimals:   wildAnimalsScore(r.LivestockDensity, r.Proximity),
		AnimalProduct: animalProductScore(r.LegalImport, r.IllegalImport),
		LiveAnimal:    liveAnimalScore(r.LiveAnimalContact, r.Proximity),
		Fomite:        fomiteScore(r.Connection, r.Proximity),
	}
}

func airborneScore(density, proximity int) float64 {
	switch {
	case density > 0 && proximity > 1:
		return 2
	case proximity > 1:
		return 1
	default:
		return 0
	}
}

func vectorborneScore(density, proximity, connection int) float64 {
	switch {
	case (proximity > 1 && density > 0) || connection > 2:
		return 2
	case proximity > 1 || connection > 1:
		return 1.5
	case proximity == 1 || connection == 1:
		return 1
	default:
		return 0
	}
}

func wildAnimalsScore(density, proximity int) float64 {
	switch {
	case proximity == 3 && density > 0:
		return 2
	case proximity == 3 && density == 0:
		return 1
	default:
		return 0
	}
}

func animalProductScore(legal, illegal int) float64 {
	switch {
	case legal == 3 || illegal == 3:
		return 2
	case legal == 2 || illegal == 2:
		return 1.5
	case legal == 1 || illegal == 1:
		return 1
	default:
		return 0
	}
}

func liveAnimalScore(contact, proximity int) float64 {
	switch {
	case contact == 3:
		return 2
	case contact == 2:
		return 1.5
	case contact == 1 || proximity == 3:
		return 1
	default:
		return 0
	}
}

func fomiteScore(connection, proximity int) float64 {
	switch {
	case connection == 3:
		return 2
	case proximity > 1 || connection > 1:
		return 1.5
	case proximity == 1 || connection == 1:
		return 1
	default:
		return 0
	}
}
