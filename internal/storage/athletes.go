package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/claude/athletconnect/internal/catalog"
	"github.com/claude/athletconnect/internal/models"
)

const athleteColumns = `id, name, age, sport, location, profile_picture, cover_photo,
	height, weight, personal_bests, achievements, videos, verified, following`

func scanAthlete(row pgx.Row) (models.Athlete, error) {
	var a models.Athlete
	err := row.Scan(&a.ID, &a.Name, &a.Age, &a.Sport, &a.Location, &a.ProfilePicture, &a.CoverPhoto,
		&a.Height, &a.Weight, &a.PersonalBests, &a.Achievements, &a.Videos, &a.Verified, &a.Following)
	return a, err
}

// Athlete returns one athlete with its test history.
func (db *DB) Athlete(ctx context.Context, id string) (*models.Athlete, error) {
	a, err := scanAthlete(db.Pool.QueryRow(ctx,
		`SELECT `+athleteColumns+` FROM athletes WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, catalog.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying athlete: %w", err)
	}

	results, err := db.testResults(ctx, id)
	if err != nil {
		return nil, err
	}
	a.TestResults = results[id]
	return &a, nil
}

// Athletes returns every athlete in catalog order.
func (db *DB) Athletes(ctx context.Context) ([]models.Athlete, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT `+athleteColumns+` FROM athletes ORDER BY position, id`)
	if err != nil {
		return nil, fmt.Errorf("querying athletes: %w", err)
	}
	defer rows.Close()

	var athletes []models.Athlete
	for rows.Next() {
		a, err := scanAthlete(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning athlete: %w", err)
		}
		athletes = append(athletes, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	results, err := db.testResults(ctx, "")
	if err != nil {
		return nil, err
	}
	return attachResults(athletes, results), nil
}

// Leaderboard ranks athletes the same way the fixture provider does.
func (db *DB) Leaderboard(ctx context.Context, sport, region string) ([]models.Athlete, error) {
	athletes, err := db.Athletes(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.RankLeaderboard(athletes, sport, region), nil
}

// Login is a placeholder: any non-empty email and password sign in as the
// first athlete.
func (db *DB) Login(ctx context.Context, email, password string) (*models.Athlete, error) {
	if email == "" || password == "" {
		return nil, catalog.ErrInvalidCredentials
	}
	var id string
	err := db.Pool.QueryRow(ctx, `SELECT id FROM athletes ORDER BY position, id LIMIT 1`).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, catalog.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying first athlete: %w", err)
	}
	return db.Athlete(ctx, id)
}

// RecordResult appends a completed test result to an athlete's history.
func (db *DB) RecordResult(ctx context.Context, athleteID string, r models.TestResult) error {
	tag, err := db.Pool.Exec(ctx,
		`INSERT INTO test_results (athlete_id, test_name, score, unit, date, percentile)
		 SELECT $1, $2, $3, $4, $5, $6
		 WHERE EXISTS (SELECT 1 FROM athletes WHERE id = $1)`,
		athleteID, r.TestName, r.Score, r.Unit, r.Date, r.Percentile)
	if err != nil {
		return fmt.Errorf("inserting test result: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

// testResults loads test history keyed by athlete id, oldest first. An empty
// athleteID loads every athlete's history.
func (db *DB) testResults(ctx context.Context, athleteID string) (map[string][]models.TestResult, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT athlete_id, test_name, score, unit, date, percentile
		 FROM test_results
		 WHERE $1 = '' OR athlete_id = $1
		 ORDER BY athlete_id, id`, athleteID)
	if err != nil {
		return nil, fmt.Errorf("querying test results: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]models.TestResult)
	for rows.Next() {
		var id string
		var r models.TestResult
		if err := rows.Scan(&id, &r.TestName, &r.Score, &r.Unit, &r.Date, &r.Percentile); err != nil {
			return nil, fmt.Errorf("scanning test result: %w", err)
		}
		out[id] = append(out[id], r)
	}
	return out, rows.Err()
}

func attachResults(athletes []models.Athlete, results map[string][]models.TestResult) []models.Athlete {
	for i := range athletes {
		athletes[i].TestResults = results[athletes[i].ID]
	}
	return athletes
}
