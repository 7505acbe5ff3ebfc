package retriever

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragpipe/internal/domain"
)

// --- Mock implementations ---

// mockEmbedder implements domain.Embedder for testing.
type mockEmbedder struct {
	vectors [][]float32
	err     error
}

func (m *mockEmbedder) Name() string   { return "mock" }
func (m *mockEmbedder) Dimension() int { return 2 }

func (m *mockEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.vectors != nil {
		return m.vectors, nil
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0}
	}
	return out, nil
}

// mockIndex implements domain.VectorIndex for testing.
type mockIndex struct {
	hits      []domain.SearchHit
	chunks    map[int]domain.Chunk
	searchErr error
}

func (m *mockIndex) Add(_ [][]float32, _ []domain.Chunk) error { return nil }

func (m *mockIndex) Search(_ []float32, k int) ([]domain.SearchHit, error) {
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	if k > len(m.hits) {
		return m.hits, nil
	}
	return m.hits[:k], nil
}

func (m *mockIndex) ChunkAt(ordinal int) (domain.Chunk, bool) {
	c, ok := m.chunks[ordinal]
	return c, ok
}

func (m *mockIndex) Size() int         { return len(m.chunks) }
func (m *mockIndex) Metric() string    { return "inner_product" }
func (m *mockIndex) Save(string) error { return nil }
func (m *mockIndex) Load(string) error { return nil }

func TestRetrieveRejectsNonPositiveK(t *testing.T) {
	r := New(&mockEmbedder{}, &mockIndex{})
	_, err := r.Retrieve(context.Background(), "question", 0)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestRetrieveRejectsEmptyQuestion(t *testing.T) {
	r := New(&mockEmbedder{}, &mockIndex{})
	_, err := r.Retrieve(context.Background(), "   ", 3)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestRetrievePropagatesProviderError(t *testing.T) {
	wantErr := errors.New("model unreachable")
	r := New(&mockEmbedder{err: wantErr}, &mockIndex{})
	_, err := r.Retrieve(context.Background(), "question", 3)
	assert.ErrorIs(t, err, wantErr)
}

func TestRetrieveJoinsHitsToChunks(t *testing.T) {
	idx := &mockIndex{
		hits: []domain.SearchHit{{Ordinal: 1, Score: 0.9}, {Ordinal: 0, Score: 0.4}},
		chunks: map[int]domain.Chunk{
			0: {ChunkID: "d:0", Text: "zeroth"},
			1: {ChunkID: "d:1", Text: "first"},
		},
	}
	r := New(&mockEmbedder{}, idx)

	passages, err := r.Retrieve(context.Background(), "question", 2)
	require.NoError(t, err)
	require.Len(t, passages, 2)
	assert.Equal(t, "d:1", passages[0].Chunk.ChunkID)
	assert.Equal(t, float32(0.9), passages[0].Score)
	assert.Equal(t, "d:0", passages[1].Chunk.ChunkID)
}

func TestRetrieveFailsOnMetadataDesync(t *testing.T) {
	idx := &mockIndex{
		hits:   []domain.SearchHit{{Ordinal: 7, Score: 0.5}},
		chunks: map[int]domain.Chunk{},
	}
	r := New(&mockEmbedder{}, idx)

	_, err := r.Retrieve(context.Background(), "question", 1)
	assert.ErrorIs(t, err, domain.ErrIndexConsistency)
}

func TestRetrieveEmptyIndexReturnsNoPassages(t *testing.T) {
	r := New(&mockEmbedder{}, &mockIndex{})
	passages, err := r.Retrieve(context.Background(), "question", 5)
	require.NoError(t, err)
	assert.Empty(t, passages)
}
