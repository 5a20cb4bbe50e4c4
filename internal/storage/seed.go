package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/claude/athletconnect/internal/catalog"
)

// SeedFixtures inserts the seed catalog. Rows that already exist are left
// untouched, so seeding an existing database only adds what is missing.
// Returns the number of athletes inserted.
func (db *DB) SeedFixtures(ctx context.Context, s *catalog.Seed) (int, error) {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("beginning seed transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	inserted := 0
	for i, a := range s.Athletes {
		tag, err := tx.Exec(ctx,
			`INSERT INTO athletes (id, position, name, age, sport, location, profile_picture, cover_photo,
			 height, weight, personal_bests, achievements, videos, verified, following)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
			 ON CONFLICT DO NOTHING`,
			a.ID, i, a.Name, a.Age, a.Sport, a.Location, a.ProfilePicture, a.CoverPhoto,
			a.Height, a.Weight, nonNilMap(a.PersonalBests), nonNil(a.Achievements), nonNil(a.Videos),
			a.Verified, a.Following)
		if err != nil {
			return 0, fmt.Errorf("seeding athlete %s: %w", a.ID, err)
		}
		if tag.RowsAffected() == 0 {
			continue
		}
		inserted++

		if len(a.TestResults) == 0 {
			continue
		}
		batch := &pgx.Batch{}
		for _, r := range a.TestResults {
			batch.Queue(`INSERT INTO test_results (athlete_id, test_name, score, unit, date, percentile)
				VALUES ($1,$2,$3,$4,$5,$6)`,
				a.ID, r.TestName, r.Score, r.Unit, r.Date, r.Percentile)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return 0, fmt.Errorf("seeding results for athlete %s: %w", a.ID, err)
		}
	}

	for i, t := range s.Tests {
		if _, err := tx.Exec(ctx,
			`INSERT INTO fitness_tests (id, position, name, description, duration, equipment, instructions, icon)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
			 ON CONFLICT DO NOTHING`,
			t.ID, i, t.Name, t.Description, t.Duration, nonNil(t.Equipment), nonNil(t.Instructions), t.Icon); err != nil {
			return 0, fmt.Errorf("seeding test %s: %w", t.ID, err)
		}
	}

	for i, o := range s.Opportunities {
		if _, err := tx.Exec(ctx,
			`INSERT INTO opportunities (id, position, title, organization, type, sport, location, deadline,
			 description, requirements, applied)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
			 ON CONFLICT DO NOTHING`,
			o.ID, i, o.Title, o.Organization, string(o.Type), o.Sport, o.Location, o.Deadline,
			o.Description, nonNil(o.Requirements), o.Applied); err != nil {
			return 0, fmt.Errorf("seeding opportunity %s: %w", o.ID, err)
		}
	}

	for i, c := range s.Conversations {
		m := c.LastMessage
		if _, err := tx.Exec(ctx,
			`INSERT INTO conversations (id, position, participant_ids, message_id, sender_id, sender_name,
			 content, sent_at, read, unread_count)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
			 ON CONFLICT DO NOTHING`,
			c.ID, i, nonNil(c.ParticipantIDs), m.ID, m.SenderID, m.SenderName,
			m.Content, m.Timestamp, m.Read, c.UnreadCount); err != nil {
			return 0, fmt.Errorf("seeding conversation %s: %w", c.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("committing seed: %w", err)
	}
	return inserted, nil
}

// nonNil avoids NULL in NOT NULL array columns; pgx encodes a nil slice as NULL.
func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nonNilMap(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}
