package store

import (
	"context"
	"errors"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ashureev/ajiwai-labs/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "archive.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteAppendMessages(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()
	now := time.Now()

	err := s.AppendMessages(ctx, []domain.ArchivedMessage{
		{SessionID: "s1", UserID: "u1", Page: domain.PageChat, Role: domain.RoleUser, Content: "Hello", CreatedAt: now},
		{SessionID: "s1", UserID: "u1", Page: domain.PageChat, Role: domain.RoleAssistant, Content: "こんにちは", CreatedAt: now},
	})
	require.NoError(t, err)

	n, err := s.CountMessages(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, s.AppendMessages(ctx, nil))
}

func TestSQLiteAttemptsNewestFirst(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()
	base := time.Now().Add(-time.Hour)

	for i, issue := range []string{"first", "second", "third"} {
		require.NoError(t, s.RecordAttempt(ctx, &domain.Attempt{
			ID:         issue,
			UserID:     "u1",
			SessionID:  "s" + issue,
			Issue:      issue,
			Turns:      i + 1,
			ResolvedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}
	require.NoError(t, s.RecordAttempt(ctx, &domain.Attempt{
		ID: "other", UserID: "u2", SessionID: "x", Issue: "other", Turns: 1, ResolvedAt: base,
	}))

	got, err := s.ListAttempts(ctx, "u1", 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "third", got[0].Issue)
	assert.Equal(t, "second", got[1].Issue)
	assert.Equal(t, 3, got[0].Turns)

	none, err := s.ListAttempts(ctx, "nobody", 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSQLitePruneBefore(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()
	old := time.Now().Add(-48 * time.Hour)
	fresh := time.Now()

	require.NoError(t, s.AppendMessages(ctx, []domain.ArchivedMessage{
		{SessionID: "s1", UserID: "u1", Page: domain.PageChat, Role: domain.RoleUser, Content: "old", CreatedAt: old},
		{SessionID: "s1", UserID: "u1", Page: domain.PageChat, Role: domain.RoleUser, Content: "new", CreatedAt: fresh},
	}))
	require.NoError(t, s.RecordAttempt(ctx, &domain.Attempt{
		ID: "a1", UserID: "u1", SessionID: "s1", Issue: "x", Turns: 2, ResolvedAt: old,
	}))

	msgs, attempts, err := s.PruneBefore(ctx, time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), msgs)
	assert.Equal(t, int64(1), attempts)

	n, err := s.CountMessages(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSessionStoreBasics(t *testing.T) {
	s := NewSessionStore(2, time.Hour)
	a := &domain.Session{ID: "a"}
	b := &domain.Session{ID: "b"}
	c := &domain.Session{ID: "c"}

	s.Put("a", a)
	s.Put("b", b)
	got, ok := s.Get("a")
	require.True(t, ok)
	assert.Same(t, a, got)

	// "b" is least recently used after the Get above.
	s.Put("c", c)
	_, ok = s.Get("b")
	assert.False(t, ok)
	assert.Equal(t, 2, s.Len())

	assert.True(t, s.Delete("a"))
	assert.False(t, s.Delete("a"))
	assert.Equal(t, 1, s.Len())
}

func TestSessionStoreExpires(t *testing.T) {
	s := NewSessionStore(10, 20*time.Millisecond)
	s.Put("a", &domain.Session{ID: "a"})

	require.Eventually(t, func() bool {
		_, ok := s.Get("a")
		return !ok
	}, time.Second, 10*time.Millisecond)
}

type pruneCounter struct {
	Nop
	calls atomic.Int32
	err   error
}

func (p *pruneCounter) PruneBefore(context.Context, time.Time) (int64, int64, error) {
	p.calls.Add(1)
	return 0, 0, p.err
}

func TestRetentionWorkerPrunesAndCallsBack(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repo := &pruneCounter{}
	var sweeps atomic.Int32
	startRetentionWorker(ctx, repo, time.Hour, 5*time.Millisecond, func() { sweeps.Add(1) })

	require.Eventually(t, func() bool {
		return repo.calls.Load() > 0 && sweeps.Load() > 0
	}, time.Second, 5*time.Millisecond)
}

func TestRetentionWorkerZeroRetentionSkipsPrune(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repo := &pruneCounter{err: errors.New("should not be called")}
	var sweeps atomic.Int32
	startRetentionWorker(ctx, repo, 0, 5*time.Millisecond, func() { sweeps.Add(1) })

	require.Eventually(t, func() bool { return sweeps.Load() > 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(0), repo.calls.Load())
}
