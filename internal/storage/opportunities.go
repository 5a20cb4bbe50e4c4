package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/claude/athletconnect/internal/catalog"
	"github.com/claude/athletconnect/internal/models"
)

const opportunityColumns = `id, title, organization, type, sport, location, deadline,
	description, requirements, applied`

func scanOpportunity(row pgx.Row) (models.Opportunity, error) {
	var o models.Opportunity
	err := row.Scan(&o.ID, &o.Title, &o.Organization, &o.Type, &o.Sport, &o.Location, &o.Deadline,
		&o.Description, &o.Requirements, &o.Applied)
	return o, err
}

func (db *DB) Opportunities(ctx context.Context) ([]models.Opportunity, error) {
	rows, err := db.Pool.Query(ctx, `SELECT `+opportunityColumns+` FROM opportunities ORDER BY position, id`)
	if err != nil {
		return nil, fmt.Errorf("querying opportunities: %w", err)
	}
	defer rows.Close()

	var result []models.Opportunity
	for rows.Next() {
		o, err := scanOpportunity(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning opportunity: %w", err)
		}
		result = append(result, o)
	}
	return result, rows.Err()
}

// ApplyOpportunity marks an opportunity as applied and returns it.
func (db *DB) ApplyOpportunity(ctx context.Context, id string) (*models.Opportunity, error) {
	o, err := scanOpportunity(db.Pool.QueryRow(ctx,
		`UPDATE opportunities SET applied = TRUE WHERE id = $1 RETURNING `+opportunityColumns, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, catalog.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("applying to opportunity: %w", err)
	}
	return &o, nil
}
