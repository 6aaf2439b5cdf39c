package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/ashureev/ajiwai-labs/internal/config"
	"github.com/ashureev/ajiwai-labs/internal/domain"
)

const conversationStart = "（会話開始）"

// AnthropicClient talks to the Anthropic Messages API.
type AnthropicClient struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

// NewAnthropicClient creates a client from configuration.
func NewAnthropicClient(cfg config.LLMConfig) (*AnthropicClient, error) {
	if cfg.AnthropicAPIKey == "" {
		return nil, fmt.Errorf("anthropic: api key is required")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.AnthropicAPIKey),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &AnthropicClient{
		client:    anthropic.NewClient(opts...),
		model:     cfg.ChatModel,
		maxTokens: int64(cfg.MaxTokens),
	}, nil
}

// Complete sends the conversation. System messages move to the top-level
// system field.
func (c *AnthropicClient) Complete(ctx context.Context, messages []domain.Message) (string, error) {
	system, turns := splitAnthropicMessages(messages)

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: c.maxTokens,
		Messages:  turns,
	}
	if len(system) > 0 {
		params.System = system
	}

	msg, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("anthropic complete: %w", err)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if b, ok := block.AsAny().(anthropic.TextBlock); ok {
			sb.WriteString(b.Text)
		}
	}
	if sb.Len() == 0 {
		return "", ErrEmptyCompletion
	}
	return sb.String(), nil
}

// splitAnthropicMessages separates system text and merges consecutive
// same-role turns, which the Messages API requires to alternate.
func splitAnthropicMessages(messages []domain.Message) ([]anthropic.TextBlockParam, []anthropic.MessageParam) {
	var system []anthropic.TextBlockParam
	type turn struct {
		role  domain.Role
		parts []string
	}
	var turns []turn

	for _, msg := range messages {
		switch msg.Role {
		case domain.RoleSystem:
			system = append(system, anthropic.TextBlockParam{Text: msg.Content})
		case domain.RoleUser, domain.RoleAssistant:
			if n := len(turns); n > 0 && turns[n-1].role == msg.Role {
				turns[n-1].parts = append(turns[n-1].parts, msg.Content)
				continue
			}
			turns = append(turns, turn{role: msg.Role, parts: []string{msg.Content}})
		}
	}

	// The Messages API needs the first turn to come from the user. The
	// simulator history opens with the customer speaking.
	if len(turns) > 0 && turns[0].role == domain.RoleAssistant {
		turns = append([]turn{{role: domain.RoleUser, parts: []string{conversationStart}}}, turns...)
	}

	result := make([]anthropic.MessageParam, 0, len(turns))
	for _, t := range turns {
		block := anthropic.NewTextBlock(strings.Join(t.parts, "\n\n"))
		if t.role == domain.RoleUser {
			result = append(result, anthropic.NewUserMessage(block))
		} else {
			result = append(result, anthropic.NewAssistantMessage(block))
		}
	}
	return system, result
}
