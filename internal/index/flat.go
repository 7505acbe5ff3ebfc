// Package index implements an exact (brute-force) nearest-neighbor vector
// index with append-only ordinals and file-pair persistence. Exact search
// is sufficient at the corpus scale this system targets; an approximate
// structure could replace it behind the same contract.
package index

import (
	"encoding/gob"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"ragpipe/internal/domain"
)

// Supported distance metrics.
const (
	MetricL2           = "l2"
	MetricInnerProduct = "inner_product"
)

// Names of the persisted pair. Both files must be present and consistent
// for a load to succeed.
const (
	vectorsFile = "vectors.gob"
	chunksFile  = "chunks.json"
)

// Flat is a brute-force vector index. Entries are kept in insertion order;
// an entry's slice position is its ordinal, the join key between search
// hits and chunk metadata.
type Flat struct {
	mu      sync.RWMutex
	metric  string
	dim     int
	vectors [][]float32
	chunks  []domain.Chunk
}

// NewFlat creates an empty index using the given metric. The dimension is
// fixed by the first batch of vectors added or loaded.
func NewFlat(metric string) (*Flat, error) {
	switch metric {
	case MetricL2, MetricInnerProduct:
	case "":
		metric = MetricInnerProduct
	default:
		return nil, fmt.Errorf("%w: unknown metric %q", domain.ErrInvalidArgument, metric)
	}
	return &Flat{metric: metric}, nil
}

// Add appends a batch of (vector, chunk) pairs. The batch becomes visible
// to readers atomically. Vectors from a different embedding configuration
// (wrong dimension) are rejected before anything is appended.
func (f *Flat) Add(vectors [][]float32, chunks []domain.Chunk) error {
	if len(vectors) != len(chunks) {
		return fmt.Errorf("%w: %d vectors for %d chunks", domain.ErrInvalidArgument, len(vectors), len(chunks))
	}
	if len(vectors) == 0 {
		return nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	dim := f.dim
	if dim == 0 {
		dim = len(vectors[0])
		if dim == 0 {
			return fmt.Errorf("%w: empty vector", domain.ErrInvalidArgument)
		}
	}
	for i, v := range vectors {
		if len(v) != dim {
			return fmt.Errorf("%w: vector %d has dimension %d, index has %d", domain.ErrInvalidArgument, i, len(v), dim)
		}
	}
	f.dim = dim
	f.vectors = append(f.vectors, vectors...)
	f.chunks = append(f.chunks, chunks...)
	return nil
}

// Search returns up to k hits ordered best-first under the configured
// metric. Ties are broken by insertion ordinal, earlier wins, so results
// are deterministic. Searching an empty index returns no hits.
func (f *Flat) Search(query []float32, k int) ([]domain.SearchHit, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", domain.ErrInvalidArgument, k)
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	if len(f.vectors) == 0 {
		return nil, nil
	}
	if len(query) != f.dim {
		return nil, fmt.Errorf("%w: query has dimension %d, index has %d", domain.ErrInvalidArgument, len(query), f.dim)
	}
	hits := make([]domain.SearchHit, len(f.vectors))
	for i, v := range f.vectors {
		hits[i] = domain.SearchHit{Ordinal: i, Score: f.score(query, v)}
	}
	lowerIsBetter := f.metric == MetricL2
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			if lowerIsBetter {
				return hits[i].Score < hits[j].Score
			}
			return hits[i].Score > hits[j].Score
		}
		return hits[i].Ordinal < hits[j].Ordinal
	})
	if k > len(hits) {
		k = len(hits)
	}
	return hits[:k], nil
}

func (f *Flat) score(q, v []float32) float32 {
	switch f.metric {
	case MetricL2:
		var sum float32
		for i := range q {
			d := q[i] - v[i]
			sum += d * d
		}
		return sum
	default:
		var sum float32
		for i := range q {
			sum += q[i] * v[i]
		}
		return sum
	}
}

// ChunkAt returns the chunk metadata stored at the given ordinal.
func (f *Flat) ChunkAt(ordinal int) (domain.Chunk, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if ordinal < 0 || ordinal >= len(f.chunks) {
		return domain.Chunk{}, false
	}
	return f.chunks[ordinal], true
}

// Size returns the current entry count.
func (f *Flat) Size() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.vectors)
}

// Metric reports the configured distance metric.
func (f *Flat) Metric() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.metric
}

type persistedVectors struct {
	Metric  string
	Dim     int
	Vectors [][]float32
}

// Save writes the vector set and the parallel metadata store to dir as a
// matched pair of files.
func (f *Flat) Save(dir string) error {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	vf, err := os.Create(filepath.Join(dir, vectorsFile))
	if err != nil {
		return err
	}
	defer vf.Close()
	if err := gob.NewEncoder(vf).Encode(persistedVectors{Metric: f.metric, Dim: f.dim, Vectors: f.vectors}); err != nil {
		return err
	}
	data, err := json.MarshalIndent(f.chunks, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, chunksFile), data, 0o644)
}

// Load restores a previously saved pair from dir, replacing the current
// contents. A missing file, a corrupt file, or a count mismatch between the
// two files fails with ErrIndexLoad and leaves the index untouched.
func (f *Flat) Load(dir string) error {
	vf, err := os.Open(filepath.Join(dir, vectorsFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: missing %s in %s", domain.ErrIndexLoad, vectorsFile, dir)
		}
		return fmt.Errorf("%w: %v", domain.ErrIndexLoad, err)
	}
	defer vf.Close()
	var pv persistedVectors
	if err := gob.NewDecoder(vf).Decode(&pv); err != nil {
		return fmt.Errorf("%w: corrupt %s: %v", domain.ErrIndexLoad, vectorsFile, err)
	}
	data, err := os.ReadFile(filepath.Join(dir, chunksFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: missing %s in %s", domain.ErrIndexLoad, chunksFile, dir)
		}
		return fmt.Errorf("%w: %v", domain.ErrIndexLoad, err)
	}
	var chunks []domain.Chunk
	if err := json.Unmarshal(data, &chunks); err != nil {
		return fmt.Errorf("%w: corrupt %s: %v", domain.ErrIndexLoad, chunksFile, err)
	}
	if len(pv.Vectors) != len(chunks) {
		return fmt.Errorf("%w: %d vectors but %d chunks; the pair was not saved together",
			domain.ErrIndexLoad, len(pv.Vectors), len(chunks))
	}
	switch pv.Metric {
	case MetricL2, MetricInnerProduct:
	default:
		return fmt.Errorf("%w: unknown metric %q in %s", domain.ErrIndexLoad, pv.Metric, vectorsFile)
	}
	for i, v := range pv.Vectors {
		if len(v) != pv.Dim {
			return fmt.Errorf("%w: vector %d has dimension %d, expected %d", domain.ErrIndexLoad, i, len(v), pv.Dim)
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.metric = pv.Metric
	f.dim = pv.Dim
	f.vectors = pv.Vectors
	f.chunks = chunks
	return nil
}
