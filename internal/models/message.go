package models

import "time"

type Message struct {
	ID         string    `json:"id" yaml:"id"`
	SenderID   string    `json:"sender_id" yaml:"sender_id"`
	SenderName string    `json:"sender_name" yaml:"sender_name"`
	Content    string    `json:"content" yaml:"content"`
	Timestamp  time.Time `json:"timestamp" yaml:"timestamp"`
	Read       bool      `json:"read" yaml:"read"`
}

// Conversation is a thread between athletes. Participants is resolved from
// ParticipantIDs when read through a catalog provider.
type Conversation struct {
	ID             string    `json:"id" yaml:"id"`
	ParticipantIDs []string  `json:"participant_ids" yaml:"participant_ids"`
	Participants   []Athlete `json:"participants" yaml:"-"`
	LastMessage    Message   `json:"last_message" yaml:"last_message"`
	UnreadCount    int       `json:"unread_count" yaml:"unread_count"`
}
