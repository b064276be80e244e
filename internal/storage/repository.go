package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/FAOEuFMD/EuFMD-Nexus-sub000/internal/contracts"
)

var ErrNotFound = errors.New("not found")

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) ListCountries(ctx context.Context) ([]contracts.Country, error) {
	rows, err := r.pool.Query(ctx, `
        SELECT id, iso3, name_un, subregion
        FROM countries
        ORDER BY name_un ASC
    `)
	if err != nil {
		return nil, fmt.Errorf("query countries: %w", err)
	}
	defer rows.Close()

	countries := make([]contracts.Country, 0, 64)
	for rows.Next() {
		var c contracts.Country
		if err := rows.Scan(&c.ID, &c.ISO3, &c.NameUN, &c.Subregion); err != nil {
			return nil, fmt.Errorf("scan country: %w", err)
		}
		countries = append(countries, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate countries: %w", err)
	}

	return countries, nil
}

func (r *Repository) Country(ctx context.Context, id int) (contracts.Country, error) {
	var c contracts.Country
	err := r.pool.QueryRow(ctx, `
        SELECT id, iso3, name_un, subregion FROM countries WHERE id = $1
    `, id).Scan(&c.ID, &c.ISO3, &c.NameUN, &c.Subregion)
	if errors.Is(err, pgx.ErrNoRows) {
		return contracts.Country{}, fmt.Errorf("country %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return contracts.Country{}, fmt.Errorf("query country: %w", err)
	}
	return c, nil
}

// DiseaseStatus returns the user's own disease status rows, or the default
// rows when the user has entered none.
func (r *Repository) DiseaseStatus(ctx context.Context, userID *int) ([]contracts.LevelRecord, error) {
	return r.userOrDefaultLevels(ctx, contracts.KindDiseaseStatus, userID)
}

// MitigationMeasures follows the same user-or-default rule as DiseaseStatus.
func (r *Repository) MitigationMeasures(ctx context.Context, userID *int) ([]contracts.LevelRecord, error) {
	return r.userOrDefaultLevels(ctx, contracts.KindMitigationMeasures, userID)
}

func (r *Repository) userOrDefaultLevels(ctx context.Context, kind contracts.SubmissionKind, userID *int) ([]contracts.LevelRecord, error) {
	table, err := levelTable(kind)
	if err != nil {
		return nil, err
	}

	if userID != nil {
		records, err := r.queryLevels(ctx, table, `WHERE user_id = $1`, *userID)
		if err != nil {
			return nil, err
		}
		if len(records) > 0 {
			return records, nil
		}
	}

	return r.queryLevels(ctx, table, `WHERE user_id IS NULL`)
}

func (r *Repository) queryLevels(ctx context.Context, table, where string, args ...any) ([]contracts.LevelRecord, error) {
	rows, err := r.pool.Query(ctx, `
        SELECT country_id, user_id, fmd, ppr, lsd, rvf, spgp, date
        FROM `+table+` `+where+`
        ORDER BY country_id ASC
    `, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()

	records := make([]contracts.LevelRecord, 0, 64)
	for rows.Next() {
		var rec contracts.LevelRecord
		if err := rows.Scan(
			&rec.CountryID,
			&rec.UserID,
			&rec.FMD,
			&rec.PPR,
			&rec.LSD,
			&rec.RVF,
			&rec.SPGP,
			&rec.Date,
		); err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", table, err)
	}

	return records, nil
}

// Connections are only ever user specific; there are no default ratings.
func (r *Repository) Connections(ctx context.Context, userID *int, targetCountryID int) ([]contracts.ConnectionRecord, error) {
	if userID == nil {
		return []contracts.ConnectionRecord{}, nil
	}

	rows, err := r.pool.Query(ctx, `
        SELECT country_id, target_country_id, live_animal_contact, legal_import, proximity,
               illegal_import, connection, livestock_density
        FROM connections
        WHERE user_id = $1
          AND target_country_id = $2
        ORDER BY country_id ASC
    `, *userID, targetCountryID)
	if err != nil {
		return nil, fmt.Errorf("query connections: %w", err)
	}
	defer rows.Close()

	records := make([]contracts.ConnectionRecord, 0, 64)
	for rows.Next() {
		var rec contracts.ConnectionRecord
		if err := rows.Scan(
			&rec.CountryID,
			&rec.TargetCountryID,
			&rec.LiveAnimalContact,
			&rec.LegalImport,
			&rec.Proximity,
			&rec.IllegalImport,
			&rec.Connection,
			&rec.LivestockDensity,
		); err != nil {
			return nil, fmt.Errorf("scan connection: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate connections: %w", err)
	}

	return records, nil
}

const upsertLevelSQL = `
    INSERT INTO %s
        (country_id, user_id, fmd, ppr, lsd, rvf, spgp, date)
    VALUES
        ($1, $2, $3, $4, $5, $6, $7, $8)
    ON CONFLICT (country_id, (COALESCE(user_id, 0))) DO UPDATE
    SET fmd = EXCLUDED.fmd,
        ppr = EXCLUDED.ppr,
        lsd = EXCLUDED.lsd,
        rvf = EXCLUDED.rvf,
        spgp = EXCLUDED.spgp,
        date = EXCLUDED.date,
        updated_at = NOW()
`

const upsertConnectionSQL = `
    INSERT INTO connections
        (user_id, target_country_id, country_id, live_animal_contact, legal_import,
         proximity, illegal_import, connection, livestock_density)
    VALUES
        ($1, $2, $3, $4, $5, $6, $7, $8, $9)
    ON CONFLICT (user_id, target_country_id, country_id) DO UPDATE
    SET live_animal_contact = EXCLUDED.live_animal_contact,
        legal_import = EXCLUDED.legal_import,
        proximity = EXCLUDED.proximity,
        illegal_import = EXCLUDED.illegal_import,
        connection = EXCLUDED.connection,
        livestock_density = EXCLUDED.livestock_density,
        updated_at = NOW()
`

// SaveSubmission writes a validated submission as one batch in one
// transaction and returns the number of rows written. Rows the schema
// rejects, such as an unknown country, wrap contracts.ErrInvalidSubmission.
func (r *Repository) SaveSubmission(ctx context.Context, sub contracts.Submission) (int, error) {
	batch, err := submissionBatch(sub)
	if err != nil {
		return 0, fmt.Errorf("save %s submission: %w", sub.Kind, err)
	}

	err = pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		results := tx.SendBatch(ctx, batch)
		for i := 0; i < batch.Len(); i++ {
			if _, err := results.Exec(); err != nil {
				_ = results.Close()
				return fmt.Errorf("row %d: %w", i, classify(err))
			}
		}
		return results.Close()
	})
	if err != nil {
		return 0, fmt.Errorf("save %s submission: %w", sub.Kind, err)
	}
	return batch.Len(), nil
}

func submissionBatch(sub contracts.Submission) (*pgx.Batch, error) {
	batch := &pgx.Batch{}
	switch sub.Kind {
	case contracts.KindDiseaseStatus, contracts.KindMitigationMeasures:
		table, err := levelTable(sub.Kind)
		if err != nil {
			return nil, err
		}
		query := fmt.Sprintf(upsertLevelSQL, table)
		for _, rec := range sub.Levels {
			batch.Queue(query, rec.CountryID, sub.UserID, rec.FMD, rec.PPR, rec.LSD, rec.RVF, rec.SPGP, rec.Date)
		}
	case contracts.KindConnections:
		for _, rec := range sub.Connections {
			batch.Queue(upsertConnectionSQL, sub.UserID, sub.TargetCountryID, rec.CountryID,
				rec.LiveAnimalContact, rec.LegalImport, rec.Proximity, rec.IllegalImport,
				rec.Connection, rec.LivestockDensity)
		}
	default:
		return nil, fmt.Errorf("%w: unknown kind %q", contracts.ErrInvalidSubmission, sub.Kind)
	}
	return batch, nil
}

// classify marks integrity and data errors as invalid input. Anything else
// is left as is so callers can retry.
func classify(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && (strings.HasPrefix(pgErr.Code, "22") || strings.HasPrefix(pgErr.Code, "23")) {
		return fmt.Errorf("%w: %s", contracts.ErrInvalidSubmission, pgErr.Message)
	}
	return err
}

func levelTable(kind contracts.SubmissionKind) (string, error) {
	switch kind {
	case contracts.KindDiseaseStatus:
		return "disease_status", nil
	case contracts.KindMitigationMeasures:
		return "mitigation_measures", nil
	default:
		return "", fmt.Errorf("no level table for %q", kind)
	}
}
