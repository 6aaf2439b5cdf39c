package llm

import (
	"context"
	"fmt"

	"github.com/ashureev/ajiwai-labs/internal/domain"
)

// Mock is an offline Completer for local development.
type Mock struct{}

// NewMock creates a mock completer.
func NewMock() *Mock {
	return &Mock{}
}

// Complete echoes the latest user message.
func (m *Mock) Complete(ctx context.Context, messages []domain.Message) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == domain.RoleUser {
			return fmt.Sprintf("（モック応答）「%s」を受け取りました。", messages[i].Content), nil
		}
	}
	return "（モック応答）こんにちは。", nil
}
