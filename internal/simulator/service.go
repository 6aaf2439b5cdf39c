package simulator

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

// TurnResult is the outcome of one committed submission.
type TurnResult struct {
	Reply   string
	Session *domain.Session
	// JustResolved is true only on the turn that first completed the checklist.
	JustResolved bool
}

// Service owns simulator sessions. Mutation is serialised by mu and the
// completion call runs outside it.
type Service struct {
	mu        sync.Mutex
	sessions  *store.SessionStore
	catalog   *Catalog
	completer llm.Completer
	archive   store.Repository
	metrics   *metrics.Metrics
}

// NewService creates a simulator service. archive and m may be nil.
func NewService(sessions *store.SessionStore, catalog *Catalog, completer llm.Completer, archive store.Repository, m *metrics.Metrics) *Service {
	return &Service{
		sessions:  sessions,
		catalog:   catalog,
		completer: completer,
		archive:   archive,
		metrics:   m,
	}
}

// GetOrInit returns a snapshot of the session for key, creating one with a
// freshly drawn scenario when none exists.
func (s *Service) GetOrInit(key string) *domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getOrInitLocked(key).Clone()
}

func (s *Service) getOrInitLocked(key string) *domain.Session {
	if sess, ok := s.sessions.Get(key); ok {
		return sess
	}

	sc := s.catalog.Pick()
	now := time.Now()
	sess := &domain.Session{
		ID:        uuid.NewString(),
		Page:      domain.PageSimulator,
		Scenario:  &sc,
		Checklist: domain.NewChecklist(),
		State:     domain.StateAwaitingUserInput,
		CreatedAt: now,
	}
	sess.Append(domain.RoleSystem, SystemPrompt(sc))
	sess.Append(domain.RoleAssistant, sc.OpeningLine)
	s.sessions.Put(key, sess)

	slog.Info("Simulator session started", "session_id", sess.ID, "issue", sc.Issue)
	return sess
}

// Submit runs one turn: the checklist is updated from input, the customer
// replies, and both messages are committed. On any failure the session is
// left exactly as it was.
func (s *Service) Submit(ctx context.Context, userID, key, input string) (*TurnResult, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, domain.ErrEmptyInput
	}

	s.mu.Lock()
	sess := s.getOrInitLocked(key)
	if sess.Busy() {
		s.mu.Unlock()
		return nil, domain.ErrTurnInProgress
	}

	checklist := sess.Checklist.Clone()
	checklist.Merge(Check(input))
	payload := composePayload(sess.History(), input, checklist)

	sessionID := sess.ID
	prevState := sess.State
	sess.State = domain.StateAwaitingCompletion
	s.mu.Unlock()

	reply, err := llm.CompleteRecovered(ctx, s.completer, payload)

	s.mu.Lock()
	cur, ok := s.sessions.Get(key)
	if !ok || cur.ID != sessionID {
		s.mu.Unlock()
		slog.Info("Discarding reply for reset simulator session", "session_id", sessionID)
		if err != nil {
			return nil, fmt.Errorf("simulator turn: %w", err)
		}
		return nil, domain.ErrSessionReset
	}
	if err != nil {
		cur.State = prevState
		s.mu.Unlock()
		return nil, fmt.Errorf("simulator turn: %w", err)
	}

	cur.Append(domain.RoleUser, input)
	cur.Append(domain.RoleAssistant, reply)
	cur.Checklist = checklist
	cur.Turns++

	justResolved := false
	if checklist.Complete() {
		cur.State = domain.StateResolved
		if !cur.Celebrated {
			cur.Celebrated = true
			justResolved = true
		}
	} else {
		cur.State = domain.StateAwaitingUserInput
	}
	s.sessions.Put(key, cur)
	snapshot := cur.Clone()
	s.mu.Unlock()

	s.metrics.RecordTurn(string(domain.PageSimulator))
	store.ArchiveTurn(ctx, s.archive, userID, snapshot,
		domain.Message{Role: domain.RoleUser, Content: input},
		domain.Message{Role: domain.RoleAssistant, Content: reply},
	)

	if justResolved {
		s.metrics.RecordResolution()
		store.ArchiveAttempt(ctx, s.archive, &domain.Attempt{
			ID:         uuid.NewString(),
			UserID:     userID,
			SessionID:  snapshot.ID,
			Issue:      snapshot.Scenario.Issue,
			Turns:      snapshot.Turns,
			ResolvedAt: time.Now(),
		})
		slog.Info("Simulator session resolved",
			"user_id", userID,
			"session_id", snapshot.ID,
			"turns", snapshot.Turns)
	}

	return &TurnResult{Reply: reply, Session: snapshot, JustResolved: justResolved}, nil
}

// Reset discards the session for key. The next access draws a new scenario.
// A reply still in flight for the old session is dropped.
func (s *Service) Reset(key string) {
	s.mu.Lock()
	existed := s.sessions.Delete(key)
	s.mu.Unlock()

	if existed {
		s.metrics.RecordReset(string(domain.PageSimulator))
	}
}

// Attempts lists the user's recent resolved attempts from the archive.
func (s *Service) Attempts(ctx context.Context, userID string, limit int) ([]*domain.Attempt, error) {
	if s.archive == nil {
		return []*domain.Attempt{}, nil
	}
	attempts, err := s.archive.ListAttempts(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	return attempts, nil
}
