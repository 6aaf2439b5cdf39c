// Package chat implements the general assistant page: a conversation that
// keeps its full history and forwards it to the completion service.
package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/ashureev/ajiwai-labs/internal/domain"
	"github.com/ashureev/ajiwai-labs/internal/llm"
	"github.com/ashureev/ajiwai-labs/internal/metrics"
	"github.com/ashureev/ajiwai-labs/internal/store"
	"github.com/google/uuid"
)

// SystemPrompt seeds every chat session.
const SystemPrompt = "あなたは優秀なアシスタントです。"

// Service owns chat sessions.
type Service struct {
	mu        sync.Mutex
	sessions  *store.SessionStore
	completer llm.Completer
	archive   store.Repository
	metrics   *metrics.Metrics
}

// NewService creates a chat service. archive and m may be nil.
func NewService(sessions *store.SessionStore, completer llm.Completer, archive store.Repository, m *metrics.Metrics) *Service {
	return &Service{
		sessions:  sessions,
		completer: completer,
		archive:   archive,
		metrics:   m,
	}
}

// GetOrInit returns a snapshot of the session for key.
func (s *Service) GetOrInit(key string) *domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getOrInitLocked(key).Clone()
}

func (s *Service) getOrInitLocked(key string) *domain.Session {
	if sess, ok := s.sessions.Get(key); ok {
		return sess
	}

	sess := &domain.Session{
		ID:        uuid.NewString(),
		Page:      domain.PageChat,
		State:     domain.StateAwaitingUserInput,
		CreatedAt: time.Now(),
	}
	sess.Append(domain.RoleSystem, SystemPrompt)
	s.sessions.Put(key, sess)
	return sess
}

// Send appends input, asks for a reply over the whole history and commits
// both. Nothing is committed when the completion fails.
func (s *Service) Send(ctx context.Context, userID, key, input string) (string, *domain.Session, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", nil, domain.ErrEmptyInput
	}

	s.mu.Lock()
	sess := s.getOrInitLocked(key)
	if sess.Busy() {
		s.mu.Unlock()
		return "", nil, domain.ErrTurnInProgress
	}
	payload := append(sess.History(), domain.Message{Role: domain.RoleUser, Content: input})
	sessionID := sess.ID
	sess.State = domain.StateAwaitingCompletion
	s.mu.Unlock()

	reply, err := llm.CompleteRecovered(ctx, s.completer, payload)

	s.mu.Lock()
	cur, ok := s.sessions.Get(key)
	if !ok || cur.ID != sessionID {
		s.mu.Unlock()
		if err != nil {
			return "", nil, fmt.Errorf("chat turn: %w", err)
		}
		return "", nil, domain.ErrSessionReset
	}
	cur.State = domain.StateAwaitingUserInput
	if err != nil {
		s.mu.Unlock()
		return "", nil, fmt.Errorf("chat turn: %w", err)
	}

	cur.Append(domain.RoleUser, input)
	cur.Append(domain.RoleAssistant, reply)
	cur.Turns++
	s.sessions.Put(key, cur)
	snapshot := cur.Clone()
	s.mu.Unlock()

	s.metrics.RecordTurn(string(domain.PageChat))
	store.ArchiveTurn(ctx, s.archive, userID, snapshot,
		domain.Message{Role: domain.RoleUser, Content: input},
		domain.Message{Role: domain.RoleAssistant, Content: reply},
	)
	slog.Debug("Chat turn committed", "user_id", userID, "session_id", snapshot.ID, "turns", snapshot.Turns)

	return reply, snapshot, nil
}

// Reset discards the chat session for key.
func (s *Service) Reset(key string) {
	s.mu.Lock()
	existed := s.sessions.Delete(key)
	s.mu.Unlock()

	if existed {
		s.metrics.RecordReset(string(domain.PageChat))
	}
}
