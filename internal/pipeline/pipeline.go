// Package pipeline composes chunking, embedding, indexing, retrieval,
// context assembly, and generation into the three entry points the request
// layer consumes: Ingest, SaveIndex/LoadIndex, and Answer.
package pipeline

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"ragpipe/internal/assembler"
	"ragpipe/internal/domain"
	"ragpipe/internal/generator"
	"ragpipe/internal/retriever"
)

// Config holds the orchestration knobs. IndexDir is the single persistence
// configuration point; the index writes its file pair underneath it.
type Config struct {
	TopK            int
	MaxContextChars int
	IndexDir        string
}

// Pipeline owns the vector index and wires the components together.
// Answer calls are read-only and may run concurrently; Ingest, SaveIndex
// and LoadIndex mutate shared state and are serialized against each other.
type Pipeline struct {
	chunker   domain.Chunker
	embedder  domain.Embedder
	index     domain.VectorIndex
	retriever *retriever.Retriever
	generator *generator.Generator
	cfg       Config
	log       *log.Logger

	// writeMu serializes ingest against save/load. Readers go through the
	// index's own lock and never observe a partially appended batch.
	writeMu sync.Mutex
}

// New assembles a pipeline. The generator may be nil for ingest-only use;
// Answer then fails with ErrInvalidArgument.
func New(chunker domain.Chunker, embedder domain.Embedder, index domain.VectorIndex, gen *generator.Generator, cfg Config, logger *log.Logger) *Pipeline {
	if cfg.TopK <= 0 {
		cfg.TopK = 5
	}
	if cfg.MaxContextChars <= 0 {
		cfg.MaxContextChars = 4000
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Pipeline{
		chunker:   chunker,
		embedder:  embedder,
		index:     index,
		retriever: retriever.New(embedder, index),
		generator: gen,
		cfg:       cfg,
		log:       logger,
	}
}

// Ingest chunks and embeds the documents, then appends everything to the
// index as one atomic batch, preserving document order then chunk order.
// Nothing is committed if embedding fails or times out. Re-ingesting an
// existing document id appends new chunks alongside the old ones; the
// pipeline does not deduplicate or version documents. Returns the number
// of chunks added; zero documents or all-empty texts is not an error.
func (p *Pipeline) Ingest(ctx context.Context, documents []domain.Document) (int, error) {
	var chunks []domain.Chunk
	var texts []string
	for _, doc := range documents {
		cs, err := p.chunker.Chunk(doc)
		if err != nil {
			return 0, fmt.Errorf("chunking document %s: %w", doc.ID, err)
		}
		for _, c := range cs {
			chunks = append(chunks, c)
			texts = append(texts, c.Text)
		}
	}
	if len(chunks) == 0 {
		p.log.Info("nothing to ingest", "documents", len(documents))
		return 0, nil
	}
	vectors, err := p.embedder.Embed(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embedding %d chunks: %w", len(chunks), err)
	}
	p.writeMu.Lock()
	defer p.writeMu.Unlock()
	if err := p.index.Add(vectors, chunks); err != nil {
		return 0, fmt.Errorf("indexing %d chunks: %w", len(chunks), err)
	}
	p.log.Info("ingested documents", "documents", len(documents), "chunks", len(chunks), "index_size", p.index.Size())
	return len(chunks), nil
}

// SaveIndex persists the in-memory index to the configured directory. Kept
// separate from Ingest so callers can batch many ingests before one save.
func (p *Pipeline) SaveIndex() error {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()
	if err := p.index.Save(p.cfg.IndexDir); err != nil {
		return fmt.Errorf("saving index to %s: %w", p.cfg.IndexDir, err)
	}
	p.log.Info("index saved", "dir", p.cfg.IndexDir, "entries", p.index.Size())
	return nil
}

// LoadIndex restores the persisted pair from the configured directory.
func (p *Pipeline) LoadIndex() error {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()
	if err := p.index.Load(p.cfg.IndexDir); err != nil {
		return err
	}
	p.log.Info("index loaded", "dir", p.cfg.IndexDir, "entries", p.index.Size())
	return nil
}

// IndexSize reports the current entry count.
func (p *Pipeline) IndexSize() int { return p.index.Size() }

// Answer retrieves the k most relevant passages, assembles them into a
// bounded context, and asks the generator for an answer. k <= 0 selects the
// configured default. Zero retrieved passages is not an error: the
// generator runs in no-context mode and says so in the answer. Sources are
// reported per passage in retrieval order, duplicates included.
func (p *Pipeline) Answer(ctx context.Context, question string, k int) (domain.QueryResult, error) {
	if p.generator == nil {
		return domain.QueryResult{}, fmt.Errorf("%w: no generator configured", domain.ErrInvalidArgument)
	}
	if k <= 0 {
		k = p.cfg.TopK
	}
	passages, err := p.retriever.Retrieve(ctx, question, k)
	if err != nil {
		return domain.QueryResult{}, fmt.Errorf("answer %q: %w", question, err)
	}
	contextBlock, err := assembler.Assemble(passages, p.cfg.MaxContextChars)
	if err != nil {
		return domain.QueryResult{}, fmt.Errorf("answer %q: %w", question, err)
	}
	answer, err := p.generator.Generate(ctx, question, contextBlock)
	if err != nil {
		return domain.QueryResult{}, fmt.Errorf("answer %q: %w", question, err)
	}
	sources := make([]domain.Source, 0, len(passages))
	for _, passage := range passages {
		sources = append(sources, domain.Source{
			Title:     passage.Chunk.Title,
			SourceURL: passage.Chunk.SourceURL,
			Score:     passage.Score,
		})
	}
	p.log.Info("answered question", "passages", len(passages), "context_chars", len(contextBlock))
	return domain.QueryResult{Question: question, Answer: answer, Sources: sources}, nil
}
