package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/ashureev/ajiwai-labs/internal/domain"
)

// ErrCompletionPanicked is returned by CompleteRecovered when the provider
// call panicked.
var ErrCompletionPanicked = errors.New("completion panicked")

// CompleteRecovered calls c and turns a panic into an error, so callers
// holding per-session state can roll it back on the ordinary failure path.
func CompleteRecovered(ctx context.Context, c Completer, messages []domain.Message) (reply string, err error) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Completion panicked", "panic", r, "stack", string(debug.Stack()))
			reply, err = "", fmt.Errorf("%w: %v", ErrCompletionPanicked, r)
		}
	}()
	return c.Complete(ctx, messages)
}
