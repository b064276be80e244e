package rmt

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScorePathwaysBorderCountry(t *testing.T) {
	scores := ScorePathways(ConnectionRatings{
		LiveAnimalContact: 3,
		Proximity:         3,
		LivestockDensity:  1,
	})

	assert.Equal(t, PathwayScores{
		Airborne:      2,
		Vectorborne:   2,
		WildAnimals:   2,
		AnimalProduct: 0,
		LiveAnimal:    2,
		Fomite:        1.5,
	}, scores)
}

func TestScorePathwaysNoConnection(t *testing.T) {
	assert.Equal(t, PathwayScores{}, ScorePathways(ConnectionRatings{}))
}

func TestAirborneBoundaries(t *testing.T) {
	cases := []struct {
		name      string
		density   int
		proximity int
		want      float64
	}{
		{"distant", 0, 0, 0},
		{"land vehicles only", 0, 1, 0},
		{"water crossing", 0, 2, 1},
		{"shared border", 0, 3, 1},
		{"dense but distant", 1, 1, 0},
		{"dense water crossing", 1, 2, 2},
		{"dense shared border", 1, 3, 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ScorePathways(ConnectionRatings{LivestockDensity: tc.density, Proximity: tc.proximity})
			assert.Equal(t, tc.want, got.Airborne)
		})
	}
}

func TestVectorborneBoundaries(t *testing.T) {
	cases := []struct {
		name       string
		density    int
		proximity  int
		connection int
		want       float64
	}{
		{"nothing", 0, 0, 0, 0},
		{"proximity one", 0, 1, 0, 1},
		{"connection one", 0, 0, 1, 1},
		{"proximity two", 0, 2, 0, 1.5},
		{"connection two", 0, 0, 2, 1.5},
		{"connection three", 0, 0, 3, 2},
		{"dense near", 1, 2, 0, 2},
		{"dense far", 1, 1, 0, 1},
		{"dense and connected", 1, 0, 2, 1.5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ScorePathways(ConnectionRatings{
				LivestockDensity: tc.density,
				Proximity:        tc.proximity,
				Connection:       tc.connection,
			})
			assert.Equal(t, tc.want, got.Vectorborne)
		})
	}
}

func TestWildAnimalsBoundaries(t *testing.T) {
	cases := []struct {
		density   int
		proximity int
		want      float64
	}{
		{0, 2, 0},
		{1, 2, 0},
		{0, 3, 1},
		{1, 3, 2},
	}
	for _, tc := range cases {
		got := ScorePathways(ConnectionRatings{LivestockDensity: tc.density, Proximity: tc.proximity})
		assert.Equal(t, tc.want, got.WildAnimals, "density=%d proximity=%d", tc.density, tc.proximity)
	}
}

func TestAnimalProductBoundaries(t *testing.T) {
	cases := []struct {
		legal   int
		illegal int
		want    float64
	}{
		{0, 0, 0},
		{1, 0, 1},
		{0, 1, 1},
		{2, 0, 1.5},
		{1, 2, 1.5},
		{3, 0, 2},
		{0, 3, 2},
		{2, 3, 2},
	}
	for _, tc := range cases {
		got := ScorePathways(ConnectionRatings{LegalImport: tc.legal, IllegalImport: tc.illegal})
		assert.Equal(t, tc.want, got.AnimalProduct, "legal=%d illegal=%d", tc.legal, tc.illegal)
	}
}

func TestLiveAnimalBoundaries(t *testing.T) {
	cases := []struct {
		contact   int
		proximity int
		want      float64
	}{
		{0, 0, 0},
		{0, 2, 0},
		{0, 3, 1},
		{1, 0, 1},
		{2, 0, 1.5},
		{2, 3, 1.5},
		{3, 0, 2},
	}
	for _, tc := range cases {
		got := ScorePathways(ConnectionRatings{LiveAnimalContact: tc.contact, Proximity: tc.proximity})
		assert.Equal(t, tc.want, got.LiveAnimal, "contact=%d proximity=%d", tc.contact, tc.proximity)
	}
}

func TestFomiteBoundaries(t *testing.T) {
	cases := []struct {
		connection int
		proximity  int
		want       float64
	}{
		{0, 0, 0},
		{1, 0, 1},
		{0, 1, 1},
		{2, 0, 1.5},
		{0, 2, 1.5},
		{0, 3, 1.5},
		{3, 0, 2},
	}
	for _, tc := range cases {
		got := ScorePathways(ConnectionRatings{Connection: tc.connection, Proximity: tc.proximity})
		assert.Equal(t, tc.want, got.Fomite, "connection=%d proximity=%d", tc.connection, tc.proximity)
	}
}

// allRatings enumerates every valid combination of connection ratings.
func allRatings() []ConnectionRatings {
	var out []ConnectionRatings
	for contact := 0; contact <= 3; contact++ {
		for legal := 0; legal <= 3; legal++ {
			for proximity := 0; proximity <= 3; proximity++ {
				for illegal := 0; illegal <= 3; illegal++ {
					for connection := 0; connection <= 3; connection++ {
						for density := 0; density <= 1; density++ {
							out = append(out, ConnectionRatings{
								LiveAnimalContact: contact,
								LegalImport:       legal,
								Proximity:         proximity,
								IllegalImport:     illegal,
								Connection:        connection,
								LivestockDensity:  density,
							})
						}
					}
				}
			}
		}
	}
	return out
}

func TestScorePathwaysMonotonic(t *testing.T) {
	bumps := []struct {
		name string
		max  int
		bump func(*ConnectionRatings) *int
	}{
		{"liveAnimalContact", 3, func(r *ConnectionRatings) *int { return &r.LiveAnimalContact }},
		{"legalImport", 3, func(r *ConnectionRatings) *int { return &r.LegalImport }},
		{"proximity", 3, func(r *ConnectionRatings) *int { return &r.Proximity }},
		{"illegalImport", 3, func(r *ConnectionRatings) *int { return &r.IllegalImport }},
		{"connection", 3, func(r *ConnectionRatings) *int { return &r.Connection }},
		{"livestockDensity", 1, func(r *ConnectionRatings) *int { return &r.LivestockDensity }},
	}

	for _, b := range bumps {
		t.Run(b.name, func(t *testing.T) {
			for _, base := range allRatings() {
				field := b.bump(&base)
				if *field >= b.max {
					continue
				}
				before := ScorePathways(base)
				raised := base
				*b.bump(&raised)++
				after := ScorePathways(raised)

				for _, p := range Pathways {
					require.GreaterOrEqual(t, after.Get(p), before.Get(p), "%s decreased for %+v -> %+v", p, base, raised)
				}
			}
		})
	}
}

func TestScorePathwaysNonNegative(t *testing.T) {
	for _, r := range allRatings() {
		scores := ScorePathways(r)
		for _, p := range Pathways {
			require.GreaterOrEqual(t, scores.Get(p), 0.0)
			require.LessOrEqual(t, scores.Get(p), 2.0)
		}
	}
}

func TestPathwayScoresTotal(t *testing.T) {
	scores := PathwayScores{Airborne: 1, Vectorborne: 1.5, WildAnimals: 2, AnimalProduct: 0, LiveAnimal: 1, Fomite: 1.5}
	assert.Equal(t, 7.0, scores.Total())
}

func TestPathwayJSON(t *testing.T) {
	raw, err := json.Marshal(WildAnimals)
	require.NoError(t, err)
	assert.JSONEq(t, `"wildAnimals"`, string(raw))

	var p Pathway
	require.NoError(t, json.Unmarshal([]byte(`"fomite"`), &p))
	assert.Equal(t, Fomite, p)

	assert.Error(t, json.Unmarshal([]byte(`"waterborne"`), &p))
	assert.Equal(t, "Vector-borne", Vectorborne.DisplayName())
}
