package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/claude/athletconnect/internal/catalog"
	"github.com/claude/athletconnect/internal/models"
)

const testColumns = `id, name, description, duration, equipment, instructions, icon`

func scanTest(row pgx.Row) (models.FitnessTest, error) {
	var t models.FitnessTest
	err := row.Scan(&t.ID, &t.Name, &t.Description, &t.Duration, &t.Equipment, &t.Instructions, &t.Icon)
	return t, err
}

// Tests returns the available fitness tests in catalog order.
func (db *DB) Tests(ctx context.Context) ([]models.FitnessTest, error) {
	rows, err := db.Pool.Query(ctx, `SELECT `+testColumns+` FROM fitness_tests ORDER BY position, id`)
	if err != nil {
		return nil, fmt.Errorf("querying tests: %w", err)
	}
	defer rows.Close()

	var result []models.FitnessTest
	for rows.Next() {
		t, err := scanTest(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning test: %w", err)
		}
		result = append(result, t)
	}
	return result, rows.Err()
}

func (db *DB) Test(ctx context.Context, id string) (*models.FitnessTest, error) {
	t, err := scanTest(db.Pool.QueryRow(ctx, `SELECT `+testColumns+` FROM fitness_tests WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, catalog.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying test: %w", err)
	}
	return &t, nil
}
