package manual

import (
	"context"
	"fmt"
	"strings"

	"github.com/ashureev/ajiwai-labs/internal/domain"
	"github.com/ashureev/ajiwai-labs/internal/llm"
	"github.com/ashureev/ajiwai-labs/internal/metrics"
)

// NoRecordPhrase is the answer the shop manager gives when the excerpt does
// not cover the question.
const NoRecordPhrase = "マニュアルには記載がありません"

// DefaultTopK is how many chunks are retrieved per question.
const DefaultTopK = 3

const contextSeparator = "\n\n"

const systemPromptTemplate = `あなたは『牛めし処 あじわい亭』のベテラン店長です。
以下の【マニュアルの抜粋】に基づいて、新人スタッフの質問に答えてください。

# ルール
- マニュアルに書いてあることだけを答えてください。
- マニュアルにないことは「%s」と答えてください。
- 優しく、わかりやすく教えてください。

# 【マニュアルの抜粋】
%s
`

// Result is one answered question.
type Result struct {
	Answer  string
	Context string
	Chunks  []Chunk
}

// Service answers questions. It keeps no per-visitor state.
type Service struct {
	retriever Retriever
	completer llm.Completer
	metrics   *metrics.Metrics
	topK      int
}

// NewService creates a manual search service.
func NewService(retriever Retriever, completer llm.Completer, m *metrics.Metrics) *Service {
	m.SetIndexChunks(retriever.Len())
	return &Service{
		retriever: retriever,
		completer: completer,
		metrics:   m,
		topK:      DefaultTopK,
	}
}

// SystemPrompt builds the instruction constraining the answer to context.
func SystemPrompt(context string) string {
	return fmt.Sprintf(systemPromptTemplate, NoRecordPhrase, context)
}

// Retrieve returns the top chunks for question and the joined context block.
func (s *Service) Retrieve(ctx context.Context, question string) ([]Chunk, string, error) {
	chunks, err := s.retriever.Search(ctx, question, s.topK)
	s.metrics.RecordRetrieval(s.retriever.Backend(), err)
	if err != nil {
		return nil, "", fmt.Errorf("retrieve manual chunks: %w", err)
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	return chunks, strings.Join(texts, contextSeparator), nil
}

// Answer retrieves context for question and asks the shop manager persona.
func (s *Service) Answer(ctx context.Context, question string) (*Result, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, domain.ErrEmptyInput
	}

	chunks, block, err := s.Retrieve(ctx, question)
	if err != nil {
		return nil, err
	}

	answer, err := s.completer.Complete(ctx, []domain.Message{
		{Role: domain.RoleSystem, Content: SystemPrompt(block)},
		{Role: domain.RoleUser, Content: question},
	})
	if err != nil {
		return nil, fmt.Errorf("answer from manual: %w", err)
	}

	s.metrics.RecordTurn(string(domain.PageManual))
	return &Result{Answer: answer, Context: block, Chunks: chunks}, nil
}

// Len returns the number of indexed chunks.
func (s *Service) Len() int {
	return s.retriever.Len()
}
