// Package retriever joins query embedding, index search, and metadata
// lookup into scored passages with provenance.
package retriever

import (
	"context"
	"fmt"
	"strings"

	"ragpipe/internal/domain"
)

// Retriever answers natural-language questions with the k nearest indexed
// passages. It keeps the index's own ordering and does not re-rank.
type Retriever struct {
	embedder domain.Embedder
	index    domain.VectorIndex
}

// New wires a retriever around an embedder and an index.
func New(embedder domain.Embedder, index domain.VectorIndex) *Retriever {
	return &Retriever{embedder: embedder, index: index}
}

// Retrieve embeds the question, queries the index, and joins ordinals back
// to chunk metadata. A hit whose ordinal has no metadata means the index
// and metadata store have diverged, which fails the whole call rather than
// returning a partial passage. Zero passages is a valid result.
func (r *Retriever) Retrieve(ctx context.Context, question string, k int) ([]domain.RetrievedPassage, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", domain.ErrInvalidArgument, k)
	}
	if strings.TrimSpace(question) == "" {
		return nil, fmt.Errorf("%w: empty question", domain.ErrInvalidArgument)
	}
	vectors, err := r.embedder.Embed(ctx, []string{question})
	if err != nil {
		return nil, fmt.Errorf("embedding question: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("%w: expected 1 query vector, got %d", domain.ErrProvider, len(vectors))
	}
	hits, err := r.index.Search(vectors[0], k)
	if err != nil {
		return nil, fmt.Errorf("searching index: %w", err)
	}
	passages := make([]domain.RetrievedPassage, 0, len(hits))
	for _, hit := range hits {
		chunk, ok := r.index.ChunkAt(hit.Ordinal)
		if !ok {
			return nil, fmt.Errorf("%w: ordinal %d has no chunk metadata", domain.ErrIndexConsistency, hit.Ordinal)
		}
		passages = append(passages, domain.RetrievedPassage{Chunk: chunk, Score: hit.Score})
	}
	return passages, nil
}
