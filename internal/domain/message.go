// Package domain contains core domain types for the training pages.
package domain

// Role tags the author of a message.
type Role string

const (
	// RoleSystem carries the hidden instruction that frames a conversation.
	RoleSystem Role = "system"
	// RoleUser is the trainee.
	RoleUser Role = "user"
	// RoleAssistant is the model reply.
	RoleAssistant Role = "assistant"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	default:
		return false
	}
}

// Message is a single role-tagged chat entry.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}
