package domain

import (
	"time"
)

// Attempt is an archived simulator run that reached a full checklist.
type Attempt struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	SessionID  string    `json:"session_id"`
	Issue      string    `json:"issue"`
	Turns      int       `json:"turns"`
	ResolvedAt time.Time `json:"resolved_at"`
}

// ArchivedMessage is one committed message written to the transcript archive.
type ArchivedMessage struct {
	SessionID string    `json:"session_id"`
	UserID    string    `json:"user_id"`
	Page      Page      `json:"page"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
