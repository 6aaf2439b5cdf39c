package store

import (
	"context"
	"log/slog"
	"time"

	"github.com/ashureev/ajiwai-labs/internal/domain"
)

const archiveWriteTimeout = 5 * time.Second

// ArchiveTurn writes committed messages for a session. Failures are logged
// and never reach the caller; the live session is already committed.
func ArchiveTurn(ctx context.Context, repo Repository, userID string, sess *domain.Session, msgs ...domain.Message) {
	if repo == nil || len(msgs) == 0 {
		return
	}

	now := time.Now()
	rows := make([]domain.ArchivedMessage, 0, len(msgs))
	for _, m := range msgs {
		rows = append(rows, domain.ArchivedMessage{
			SessionID: sess.ID,
			UserID:    userID,
			Page:      sess.Page,
			Role:      m.Role,
			Content:   m.Content,
			CreatedAt: now,
		})
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), archiveWriteTimeout)
	defer cancel()

	if err := repo.AppendMessages(ctx, rows); err != nil {
		slog.Warn("Failed to archive turn",
			"user_id", userID,
			"session_id", sess.ID,
			"page", sess.Page,
			"error", err)
	}
}

// ArchiveAttempt records a resolved simulator attempt, logging failures.
func ArchiveAttempt(ctx context.Context, repo Repository, attempt *domain.Attempt) {
	if repo == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), archiveWriteTimeout)
	defer cancel()

	if err := repo.RecordAttempt(ctx, attempt); err != nil {
		slog.Warn("Failed to archive attempt",
			"user_id", attempt.UserID,
			"session_id", attempt.SessionID,
			"error", err)
	}
}
