// Package manual answers staff questions from the shop manual using
// retrieval-augmented prompting.
package manual

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/ashureev/ajiwai-labs/internal/config"
	"github.com/ashureev/ajiwai-labs/internal/llm"
)

// ErrEmptyManual is returned when the manual yields no chunks.
var ErrEmptyManual = errors.New("manual has no content")

// Chunk is one indexed piece of the manual. ID is its position in the corpus.
type Chunk struct {
	ID   int    `json:"id"`
	Text string `json:"text"`
}

// Retriever returns the k chunks most related to a query. Results are never
// filtered by relevance: when the corpus has at least k chunks, k are returned.
type Retriever interface {
	Search(ctx context.Context, query string, k int) ([]Chunk, error)
	Len() int
	Backend() string
}

// LoadChunks reads and splits the manual at path.
func LoadChunks(path string) ([]Chunk, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manual: %w", err)
	}

	texts := NewSplitter().Split(string(data))
	if len(texts) == 0 {
		return nil, ErrEmptyManual
	}

	chunks := make([]Chunk, len(texts))
	for i, t := range texts {
		chunks[i] = Chunk{ID: i, Text: t}
	}
	return chunks, nil
}

// Build loads the manual and indexes it with the configured backend.
// The vector backend needs an embedder.
func Build(ctx context.Context, cfg config.ManualConfig, embedder llm.Embedder) (Retriever, error) {
	chunks, err := LoadChunks(cfg.Path)
	if err != nil {
		return nil, err
	}

	var r Retriever
	switch cfg.Backend {
	case config.RetrievalVector:
		if embedder == nil {
			return nil, fmt.Errorf("vector retrieval needs an embeddings provider")
		}
		r, err = NewVectorIndex(ctx, chunks, embedder)
	case config.RetrievalLexical:
		r, err = NewLexicalIndex(chunks)
	default:
		return nil, fmt.Errorf("unsupported retrieval backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("build %s index: %w", cfg.Backend, err)
	}

	slog.Info("Manual indexed", "path", cfg.Path, "backend", r.Backend(), "chunks", r.Len())
	return r, nil
}

// fill appends corpus-order chunks not already in picked until it holds k.
func fill(picked []Chunk, corpus []Chunk, k int) []Chunk {
	if len(picked) >= k {
		return picked[:k]
	}
	seen := make(map[int]bool, len(picked))
	for _, c := range picked {
		seen[c.ID] = true
	}
	for _, c := range corpus {
		if len(picked) >= k {
			break
		}
		if !seen[c.ID] {
			picked = append(picked, c)
		}
	}
	return picked
}
