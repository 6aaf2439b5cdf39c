package manual

import (
	"context"
	"fmt"
	"strconv"

	"github.com/ashureev/ajiwai-labs/internal/config"
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/lang/cjk"
)

const textField = "text"

// LexicalIndex ranks chunks with an in-memory bleve index using CJK bigrams.
// It needs no embeddings provider.
type LexicalIndex struct {
	chunks []Chunk
	index  bleve.Index
}

// NewLexicalIndex indexes chunks in memory.
func NewLexicalIndex(chunks []Chunk) (*LexicalIndex, error) {
	mapping := bleve.NewIndexMapping()
	mapping.DefaultAnalyzer = cjk.AnalyzerName

	idx, err := bleve.NewMemOnly(mapping)
	if err != nil {
		return nil, fmt.Errorf("create bleve index: %w", err)
	}

	batch := idx.NewBatch()
	for _, c := range chunks {
		if err := batch.Index(strconv.Itoa(c.ID), map[string]interface{}{textField: c.Text}); err != nil {
			return nil, fmt.Errorf("index chunk %d: %w", c.ID, err)
		}
	}
	if err := idx.Batch(batch); err != nil {
		return nil, fmt.Errorf("commit bleve batch: %w", err)
	}

	return &LexicalIndex{chunks: chunks, index: idx}, nil
}

// Search runs a match query. When fewer than k chunks match, the result is
// padded with the earliest unmatched chunks.
func (l *LexicalIndex) Search(ctx context.Context, query string, k int) ([]Chunk, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	q := bleve.NewMatchQuery(query)
	q.SetField(textField)
	req := bleve.NewSearchRequestOptions(q, k, 0, false)

	res, err := l.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("bleve search: %w", err)
	}

	picked := make([]Chunk, 0, k)
	for _, hit := range res.Hits {
		id, err := strconv.Atoi(hit.ID)
		if err != nil || id < 0 || id >= len(l.chunks) {
			continue
		}
		picked = append(picked, l.chunks[id])
	}
	return fill(picked, l.chunks, k), nil
}

// Len returns the number of indexed chunks.
func (l *LexicalIndex) Len() int { return len(l.chunks) }

// Backend returns the backend name.
func (l *LexicalIndex) Backend() string { return config.RetrievalLexical }

// Close releases the bleve index.
func (l *LexicalIndex) Close() error { return l.index.Close() }
