package manual

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/ashureev/ajiwai-labs/internal/config"
	"github.com/ashureev/ajiwai-labs/internal/llm"
	"github.com/viterin/vek/vek32"
)

// VectorIndex ranks chunks by cosine similarity of their embeddings.
// Vectors are normalised at build time so ranking is a dot product.
type VectorIndex struct {
	chunks   []Chunk
	vectors  [][]float32
	embedder llm.Embedder
}

// NewVectorIndex embeds every chunk once.
func NewVectorIndex(ctx context.Context, chunks []Chunk, embedder llm.Embedder) (*VectorIndex, error) {
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	vectors, err := embedder.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("embed chunks: got %d vectors for %d chunks", len(vectors), len(chunks))
	}

	for i := range vectors {
		vectors[i] = normalize(vectors[i])
	}

	return &VectorIndex{chunks: chunks, vectors: vectors, embedder: embedder}, nil
}

// Search embeds the query and returns the k nearest chunks.
func (v *VectorIndex) Search(ctx context.Context, query string, k int) ([]Chunk, error) {
	qv, err := v.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(qv) != 1 {
		return nil, fmt.Errorf("embed query: got %d vectors", len(qv))
	}
	q := normalize(qv[0])

	type scored struct {
		idx   int
		score float32
	}
	scores := make([]scored, 0, len(v.chunks))
	for i, vec := range v.vectors {
		if len(vec) != len(q) {
			return nil, fmt.Errorf("embedding dimension mismatch: chunk %d has %d, query has %d", i, len(vec), len(q))
		}
		scores = append(scores, scored{idx: i, score: vek32.Dot(q, vec)})
	}
	sort.SliceStable(scores, func(a, b int) bool { return scores[a].score > scores[b].score })

	if k > len(scores) {
		k = len(scores)
	}
	out := make([]Chunk, k)
	for i := 0; i < k; i++ {
		out[i] = v.chunks[scores[i].idx]
	}
	return out, nil
}

// Len returns the number of indexed chunks.
func (v *VectorIndex) Len() int { return len(v.chunks) }

// Backend returns the backend name.
func (v *VectorIndex) Backend() string { return config.RetrievalVector }

func normalize(vec []float32) []float32 {
	norm := float32(math.Sqrt(float64(vek32.Dot(vec, vec))))
	if norm == 0 {
		return vec
	}
	return vek32.DivNumber(vec, norm)
}
