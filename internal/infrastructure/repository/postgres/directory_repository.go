package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/rudradey/campus-companion/internal/core/domain"
)

// DirectoryRepository answers structured contact and location lookups.
// Entity terms come pre-normalized from the routing layer; matching is a
// case-insensitive substring scan across the searchable columns, which
// is plenty for a directory of a few hundred rows.
type DirectoryRepository struct {
	db *sql.DB
}

func NewDirectoryRepository(db *sql.DB) *DirectoryRepository {
	return &DirectoryRepository{db: db}
}

const maxDirectoryRows = 5

func (r *DirectoryRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026082802)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS contacts (
	id SERIAL PRIMARY KEY,
	name TEXT NOT NULL,
	role TEXT NOT NULL DEFAULT '',
	department TEXT NOT NULL DEFAULT '',
	phone TEXT NOT NULL DEFAULT '',
	email TEXT NOT NULL DEFAULT '',
	UNIQUE (name, department)
);

CREATE TABLE IF NOT EXISTS locations (
	id SERIAL PRIMARY KEY,
	name TEXT NOT NULL,
	building TEXT NOT NULL DEFAULT '',
	floor TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	UNIQUE (name, building)
);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *DirectoryRepository) LookupContacts(ctx context.Context, entities []string) ([]domain.ContactRecord, error) {
	pattern, ok := entityPattern(entities)
	if !ok {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `
SELECT name, role, department, phone, email
FROM contacts
WHERE name ILIKE $1 OR role ILIKE $1 OR department ILIKE $1
ORDER BY name
LIMIT $2
`, pattern, maxDirectoryRows)
	if err != nil {
		return nil, fmt.Errorf("query contacts: %w", err)
	}
	defer rows.Close()

	var records []domain.ContactRecord
	for rows.Next() {
		var record domain.ContactRecord
		if err := rows.Scan(&record.Name, &record.Role, &record.Department, &record.Phone, &record.Email); err != nil {
			return nil, fmt.Errorf("scan contact: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate contacts: %w", err)
	}
	return records, nil
}

func (r *DirectoryRepository) LookupLocations(ctx context.Context, entities []string) ([]domain.LocationRecord, error) {
	pattern, ok := entityPattern(entities)
	if !ok {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `
SELECT name, building, floor, description
FROM locations
WHERE name ILIKE $1 OR building ILIKE $1 OR description ILIKE $1
ORDER BY name
LIMIT $2
`, pattern, maxDirectoryRows)
	if err != nil {
		return nil, fmt.Errorf("query locations: %w", err)
	}
	defer rows.Close()

	var records []domain.LocationRecord
	for rows.Next() {
		var record domain.LocationRecord
		if err := rows.Scan(&record.Name, &record.Building, &record.Floor, &record.Description); err != nil {
			return nil, fmt.Errorf("scan location: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate locations: %w", err)
	}
	return records, nil
}

func (r *DirectoryRepository) UpsertContact(ctx context.Context, record domain.ContactRecord) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO contacts (name, role, department, phone, email)
VALUES ($1,$2,$3,$4,$5)
ON CONFLICT (name, department) DO UPDATE
SET role = EXCLUDED.role, phone = EXCLUDED.phone, email = EXCLUDED.email
`, record.Name, record.Role, record.Department, record.Phone, record.Email)
	if err != nil {
		return fmt.Errorf("upsert contact: %w", err)
	}
	return nil
}

func (r *DirectoryRepository) UpsertLocation(ctx context.Context, record domain.LocationRecord) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO locations (name, building, floor, description)
VALUES ($1,$2,$3,$4)
ON CONFLICT (name, building) DO UPDATE
SET floor = EXCLUDED.floor, description = EXCLUDED.description
`, record.Name, record.Building, record.Floor, record.Description)
	if err != nil {
		return fmt.Errorf("upsert location: %w", err)
	}
	return nil
}

// entityPattern joins entity terms into one ILIKE pattern. Multi-word
// entities keep word order, so "roy canteen" matches "Roy Canteen".
func entityPattern(entities []string) (string, bool) {
	var terms []string
	for _, entity := range entities {
		entity = strings.TrimSpace(entity)
		if entity != "" {
			terms = append(terms, entity)
		}
	}
	if len(terms) == 0 {
		return "", false
	}
	return "%" + strings.Join(terms, "%") + "%", true
}
