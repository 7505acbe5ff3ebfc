package domain

import "context"

// Chunker splits documents into chunks suitable for retrieval indexing.
type Chunker interface {
	Chunk(document Document) ([]Chunk, error)
}

// Embedder converts free text into fixed-length numeric vectors, one per
// input and order-preserving. Embedding must be a pure function of the text
// and model configuration, regardless of how inputs are batched.
type Embedder interface {
	Name() string
	Dimension() int
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// TextGenerator produces answer text from a fully constructed prompt.
// A single call carries no conversation state.
type TextGenerator interface {
	Name() string
	Complete(ctx context.Context, prompt string) (string, error)
}

// SearchHit is one nearest-neighbor match: the entry's insertion ordinal
// and its score under the index metric.
type SearchHit struct {
	Ordinal int
	Score   float32
}

// VectorIndex stores (vector, chunk) pairs in insertion order and answers
// exact k-nearest-neighbor queries. Ordinals are append-only and stable for
// the lifetime of the index; they join search hits back to chunk metadata.
type VectorIndex interface {
	Add(vectors [][]float32, chunks []Chunk) error
	Search(query []float32, k int) ([]SearchHit, error)
	ChunkAt(ordinal int) (Chunk, bool)
	Size() int
	Metric() string
	Save(dir string) error
	Load(dir string) error
}
