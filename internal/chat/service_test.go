package chat

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ashureev/ajiwai-labs/internal/domain"
	"github.com/ashureev/ajiwai-labs/internal/llm"
	"github.com/ashureev/ajiwai-labs/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCompleter struct {
	reply    string
	err      error
	received []domain.Message
}

func (s *stubCompleter) Complete(_ context.Context, msgs []domain.Message) (string, error) {
	s.received = msgs
	return s.reply, s.err
}

func newService(c llm.Completer) *Service {
	return NewService(store.NewSessionStore(10, time.Hour), c, nil, nil)
}

func TestHelloProducesThreeMessages(t *testing.T) {
	c := &stubCompleter{reply: "こんにちは！何かお手伝いできますか？"}
	svc := newService(c)

	reply, sess, err := svc.Send(context.Background(), "u", "k", "Hello")
	require.NoError(t, err)
	assert.NotEmpty(t, reply)

	require.Len(t, sess.Messages, 3)
	assert.Equal(t, domain.RoleSystem, sess.Messages[0].Role)
	assert.Equal(t, SystemPrompt, sess.Messages[0].Content)
	assert.Equal(t, domain.Message{Role: domain.RoleUser, Content: "Hello"}, sess.Messages[1])
	assert.Equal(t, domain.RoleAssistant, sess.Messages[2].Role)
	assert.NotEmpty(t, sess.Messages[2].Content)
}

func TestSystemMessageSentButNotRendered(t *testing.T) {
	c := &stubCompleter{reply: "ok"}
	svc := newService(c)

	_, sess, err := svc.Send(context.Background(), "u", "k", "Hello")
	require.NoError(t, err)

	require.NotEmpty(t, c.received)
	assert.Equal(t, domain.RoleSystem, c.received[0].Role)
	for _, m := range sess.Transcript() {
		assert.NotEqual(t, domain.RoleSystem, m.Role)
	}
	assert.Len(t, sess.Transcript(), 2)
}

func TestHistoryIsForwarded(t *testing.T) {
	c := &stubCompleter{reply: "ok"}
	svc := newService(c)
	ctx := context.Background()

	_, _, err := svc.Send(ctx, "u", "k", "first")
	require.NoError(t, err)
	_, _, err = svc.Send(ctx, "u", "k", "second")
	require.NoError(t, err)

	require.Len(t, c.received, 4)
	assert.Equal(t, "first", c.received[1].Content)
	assert.Equal(t, "second", c.received[3].Content)
}

func TestFailureDoesNotMutate(t *testing.T) {
	c := &stubCompleter{err: errors.New("unauthorized")}
	svc := newService(c)

	_, _, err := svc.Send(context.Background(), "u", "k", "Hello")
	require.Error(t, err)

	sess := svc.GetOrInit("k")
	assert.Len(t, sess.Messages, 1)
	assert.Equal(t, 0, sess.Turns)
	assert.False(t, sess.Busy())
}

// panicOnce panics on its first call and replies normally afterwards.
type panicOnce struct {
	calls int
}

func (p *panicOnce) Complete(context.Context, []domain.Message) (string, error) {
	p.calls++
	if p.calls == 1 {
		panic("provider exploded")
	}
	return "ok", nil
}

func TestPanicDuringCompletionReleasesSession(t *testing.T) {
	svc := newService(&panicOnce{})

	_, _, err := svc.Send(context.Background(), "u", "k", "Hello")
	require.ErrorIs(t, err, llm.ErrCompletionPanicked)

	sess := svc.GetOrInit("k")
	assert.False(t, sess.Busy())
	assert.Len(t, sess.Messages, 1)

	reply, sess, err := svc.Send(context.Background(), "u", "k", "Hello again")
	require.NoError(t, err)
	assert.Equal(t, "ok", reply)
	assert.Equal(t, 1, sess.Turns)
}

func TestResetStartsOver(t *testing.T) {
	svc := newService(&stubCompleter{reply: "ok"})
	ctx := context.Background()

	_, first, err := svc.Send(ctx, "u", "k", "Hello")
	require.NoError(t, err)

	svc.Reset("k")
	fresh := svc.GetOrInit("k")
	assert.NotEqual(t, first.ID, fresh.ID)
	assert.Len(t, fresh.Messages, 1)
}

func TestSessionsAreIsolatedByKey(t *testing.T) {
	svc := newService(&stubCompleter{reply: "ok"})

	_, _, err := svc.Send(context.Background(), "u", "a", "Hello")
	require.NoError(t, err)

	assert.Len(t, svc.GetOrInit("b").Messages, 1)
}
