package storage

import (
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FAOEuFMD/EuFMD-Nexus-sub000/internal/contracts"
	"github.com/FAOEuFMD/EuFMD-Nexus-sub000/internal/rmt"
)

func TestMigrationNamesSorted(t *testing.T) {
	names, err := migrationNames()
	require.NoError(t, err)
	require.NotEmpty(t, names)

	assert.Equal(t, "001_rmt.sql", names[0])
	assert.IsNonDecreasing(t, names)
}

func TestMigrationCreatesRMTTables(t *testing.T) {
	body, err := migrationFS.ReadFile("sql/001_rmt.sql")
	require.NoError(t, err)

	for _, table := range []string{"countries", "disease_status", "mitigation_measures", "connections"} {
		assert.Contains(t, string(body), "CREATE TABLE IF NOT EXISTS "+table)
	}
}

func TestLevelTable(t *testing.T) {
	table, err := levelTable(contracts.KindDiseaseStatus)
	require.NoError(t, err)
	assert.Equal(t, "disease_status", table)

	table, err = levelTable(contracts.KindMitigationMeasures)
	require.NoError(t, err)
	assert.Equal(t, "mitigation_measures", table)

	_, err = levelTable(contracts.KindConnections)
	assert.Error(t, err)
}

func TestSubmissionBatchLevels(t *testing.T) {
	batch, err := submissionBatch(contracts.Submission{
		Kind:   contracts.KindMitigationMeasures,
		UserID: 7,
		Levels: []contracts.LevelRecord{
			{CountryID: 2, DiseaseLevels: rmt.DiseaseLevels{FMD: rmt.Level(4)}, Date: "2024-05-01"},
			{CountryID: 3},
		},
	})
	require.NoError(t, err)
	require.Equal(t, 2, batch.Len())

	first := batch.QueuedQueries[0]
	assert.True(t, strings.Contains(first.SQL, "INSERT INTO mitigation_measures"))
	require.Len(t, first.Arguments, 8)
	assert.Equal(t, 2, first.Arguments[0])
	assert.Equal(t, 7, first.Arguments[1])
	assert.Equal(t, 4, *first.Arguments[2].(*int))
	assert.Equal(t, "2024-05-01", first.Arguments[7])
}

func TestSubmissionBatchConnections(t *testing.T) {
	batch, err := submissionBatch(contracts.Submission{
		Kind:            contracts.KindConnections,
		UserID:          7,
		TargetCountryID: 1,
		Connections: []contracts.ConnectionRecord{
			{CountryID: 2, Proximity: rmt.Level(3)},
			{CountryID: 3},
			{CountryID: 4},
		},
	})
	require.NoError(t, err)
	require.Equal(t, 3, batch.Len())

	args := batch.QueuedQueries[0].Arguments
	assert.True(t, strings.Contains(batch.QueuedQueries[0].SQL, "INSERT INTO connections"))
	assert.Equal(t, []any{7, 1, 2}, args[:3])
	assert.Equal(t, 3, *args[5].(*int))
}

func TestSubmissionBatchUnknownKind(t *testing.T) {
	_, err := submissionBatch(contracts.Submission{Kind: "vaccination"})
	assert.ErrorIs(t, err, contracts.ErrInvalidSubmission)
}

func TestClassify(t *testing.T) {
	fk := &pgconn.PgError{Code: "23503", Message: "violates foreign key constraint"}
	assert.ErrorIs(t, classify(fk), contracts.ErrInvalidSubmission)

	check := &pgconn.PgError{Code: "23514", Message: "violates check constraint"}
	assert.ErrorIs(t, classify(check), contracts.ErrInvalidSubmission)

	deadlock := &pgconn.PgError{Code: "40P01", Message: "deadlock detected"}
	assert.NotErrorIs(t, classify(deadlock), contracts.ErrInvalidSubmission)

	down := errors.New("connection refused")
	assert.Equal(t, down, classify(down))
}
