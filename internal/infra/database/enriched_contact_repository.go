package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/agencyos/enrich-api/internal/entity"
)

const enrichedContactsSchema = `
	CREATE TABLE IF NOT EXISTS enriched_contacts (
		id           BIGSERIAL PRIMARY KEY,
		email        TEXT NOT NULL UNIQUE,
		first_name   TEXT,
		last_name    TEXT,
		company_name TEXT,
		job_title    TEXT,
		provider     TEXT NOT NULL,
		lookup_count INTEGER NOT NULL DEFAULT 1,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)
`

type EnrichedContactRepository struct {
	DB *sql.DB
}

func NewEnrichedContactRepository(db *sql.DB) *EnrichedContactRepository {
	return &EnrichedContactRepository{DB: db}
}

func (r *EnrichedContactRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.DB.ExecContext(ctx, enrichedContactsSchema)
	return err
}

// Upsert records a lookup; repeated lookups of the same email bump lookup_count.
func (r *EnrichedContactRepository) Upsert(ctx context.Context, c *entity.EnrichedContact) error {
	query := `
		INSERT INTO enriched_contacts (email, first_name, last_name, company_name, job_title, provider, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (email)
		DO UPDATE SET
			first_name = COALESCE(EXCLUDED.first_name, enriched_contacts.first_name),
			last_name = COALESCE(EXCLUDED.last_name, enriched_contacts.last_name),
			company_name = COALESCE(EXCLUDED.company_name, enriched_contacts.company_name),
			job_title = COALESCE(EXCLUDED.job_title, enriched_contacts.job_title),
			provider = EXCLUDED.provider,
			lookup_count = enriched_contacts.lookup_count + 1,
			updated_at = NOW()
		RETURNING id, lookup_count, created_at, updated_at
	`

	return r.DB.QueryRowContext(
		ctx,
		query,
		c.Email,
		nullString(c.FirstName),
		nullString(c.LastName),
		nullString(c.CompanyName),
		nullString(c.JobTitle),
		c.Provider,
	).Scan(
		&c.ID,
		&c.LookupCount,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
}

// PruneStale deletes contacts not looked up since cutoff.
func (r *EnrichedContactRepository) PruneStale(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM enriched_contacts WHERE updated_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
