package domain

import (
	"time"
)

// Page identifies which training page a session belongs to.
type Page string

const (
	PageChat      Page = "chat"
	PageSimulator Page = "simulator"
	PageManual    Page = "manual"
)

// State is the position of a session in its turn cycle.
type State string

const (
	StateAwaitingUserInput  State = "awaiting_user_input"
	StateAwaitingCompletion State = "awaiting_completion"
	StateResolved           State = "resolved"
)

// Session holds conversation state for one visitor on one page.
type Session struct {
	ID        string
	Page      Page
	Messages  []Message
	Scenario  *Scenario
	Checklist Checklist
	Turns     int
	State     State
	// Celebrated is set the first time the checklist completes so the
	// success signal is only surfaced once.
	Celebrated bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Append adds a message to the end of the history.
func (s *Session) Append(role Role, content string) {
	s.Messages = append(s.Messages, Message{Role: role, Content: content})
	s.UpdatedAt = time.Now()
}

// Transcript returns the messages a visitor sees. The leading system
// instruction is never part of it.
func (s *Session) Transcript() []Message {
	msgs := s.Messages
	if len(msgs) > 0 && msgs[0].Role == RoleSystem {
		msgs = msgs[1:]
	}
	out := make([]Message, len(msgs))
	copy(out, msgs)
	return out
}

// History returns a copy of every message, system instruction included.
func (s *Session) History() []Message {
	out := make([]Message, len(s.Messages))
	copy(out, s.Messages)
	return out
}

// Busy reports whether a completion is in flight for this session.
func (s *Session) Busy() bool {
	return s.State == StateAwaitingCompletion
}

// Clone returns a deep copy safe to hand outside the owning service.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	c.Messages = s.History()
	c.Checklist = s.Checklist.Clone()
	if s.Scenario != nil {
		sc := *s.Scenario
		c.Scenario = &sc
	}
	return &c
}
