// Package store provides session state and transcript archive persistence.
package store

import (
	"context"
	"time"

	"github.com/ashureev/ajiwai-labs/internal/domain"
)

// Repository archives committed turns and simulator attempts for review.
// It is never used to restore live sessions.
type Repository interface {
	// AppendMessages writes committed messages in order.
	AppendMessages(ctx context.Context, msgs []domain.ArchivedMessage) error

	// RecordAttempt stores a simulator run that reached a full checklist.
	RecordAttempt(ctx context.Context, attempt *domain.Attempt) error

	// ListAttempts returns the most recent attempts for a user, newest first.
	ListAttempts(ctx context.Context, userID string, limit int) ([]*domain.Attempt, error)

	// PruneBefore deletes archived rows older than cutoff.
	PruneBefore(ctx context.Context, cutoff time.Time) (messages int64, attempts int64, err error)

	// Ping verifies database connectivity.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}

// Nop is a Repository that discards everything. Used when the archive is disabled.
type Nop struct{}

func (Nop) AppendMessages(context.Context, []domain.ArchivedMessage) error {
	return nil
}

func (Nop) RecordAttempt(context.Context, *domain.Attempt) error {
	return nil
}

func (Nop) ListAttempts(context.Context, string, int) ([]*domain.Attempt, error) {
	return []*domain.Attempt{}, nil
}

func (Nop) PruneBefore(context.Context, time.Time) (int64, int64, error) {
	return 0, 0, nil
}

func (Nop) Ping(context.Context) error {
	return nil
}

func (Nop) Close() error {
	return nil
}

var _ Repository = Nop{}
