package storage

import (
	"context"
	"fmt"

	"github.com/claude/athletconnect/internal/models"
)

// Conversations returns every conversation with its participants resolved.
func (db *DB) Conversations(ctx context.Context) ([]models.Conversation, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, participant_ids, message_id, sender_id, sender_name, content, sent_at, read, unread_count
		 FROM conversations ORDER BY position, id`)
	if err != nil {
		return nil, fmt.Errorf("querying conversations: %w", err)
	}
	defer rows.Close()

	var convs []models.Conversation
	for rows.Next() {
		var c models.Conversation
		m := &c.LastMessage
		if err := rows.Scan(&c.ID, &c.ParticipantIDs, &m.ID, &m.SenderID, &m.SenderName, &m.Content,
			&m.Timestamp, &m.Read, &c.UnreadCount); err != nil {
			return nil, fmt.Errorf("scanning conversation: %w", err)
		}
		convs = append(convs, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	athletes, err := db.Athletes(ctx)
	if err != nil {
		return nil, err
	}
	return resolveParticipants(convs, athletes), nil
}

// resolveParticipants fills Participants from ParticipantIDs. Unknown ids are skipped.
func resolveParticipants(convs []models.Conversation, athletes []models.Athlete) []models.Conversation {
	byID := make(map[string]models.Athlete, len(athletes))
	for _, a := range athletes {
		byID[a.ID] = a
	}
	for i := range convs {
		convs[i].Participants = make([]models.Athlete, 0, len(convs[i].ParticipantIDs))
		for _, id := range convs[i].ParticipantIDs {
			if a, ok := byID[id]; ok {
				convs[i].Participants = append(convs[i].Participants, a)
			}
		}
	}
	return convs
}
