package pipeline

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragpipe/internal/chunker"
	"ragpipe/internal/domain"
	"ragpipe/internal/embedding/hashing"
	"ragpipe/internal/generator"
	"ragpipe/internal/index"
)

// echoModel answers with a canned string and records the prompt it saw.
type echoModel struct {
	answer  string
	prompts []string
}

func (m *echoModel) Name() string { return "echo" }

func (m *echoModel) Complete(_ context.Context, prompt string) (string, error) {
	m.prompts = append(m.prompts, prompt)
	return m.answer, nil
}

func newTestPipeline(t *testing.T, model *echoModel) *Pipeline {
	t.Helper()
	ch, err := chunker.NewWindowChunker(100, 0)
	require.NoError(t, err)
	emb, err := hashing.NewEmbedder(64)
	require.NoError(t, err)
	idx, err := index.NewFlat(index.MetricInnerProduct)
	require.NoError(t, err)
	gen := generator.New(model, 0, time.Millisecond)
	logger := log.New(io.Discard)
	return New(ch, emb, idx, gen, Config{TopK: 5, MaxContextChars: 4000, IndexDir: t.TempDir()}, logger)
}

func saltMarchDoc() domain.Document {
	return domain.Document{
		ID:        "doc1",
		Title:     "Salt March",
		SourceURL: "https://example.com/salt-march",
		Text:      "Gandhi led the Salt March in 1930 to Dandi.",
	}
}

func TestIngestThenAnswerSingleDocument(t *testing.T) {
	model := &echoModel{answer: "Gandhi led the Salt March."}
	p := newTestPipeline(t, model)

	n, err := p.Ingest(context.Background(), []domain.Document{saltMarchDoc()})
	require.NoError(t, err)
	assert.Equal(t, 1, n, "a 44-char text under a 100-char window is exactly one chunk")
	assert.Equal(t, 1, p.IndexSize())

	res, err := p.Answer(context.Background(), "Who led the Salt March?", 1)
	require.NoError(t, err)
	assert.Equal(t, "Who led the Salt March?", res.Question)
	assert.NotEmpty(t, res.Answer)
	require.Len(t, res.Sources, 1)
	assert.Equal(t, "Salt March", res.Sources[0].Title)
	assert.Equal(t, "https://example.com/salt-march", res.Sources[0].SourceURL)

	require.Len(t, model.prompts, 1)
	assert.Contains(t, model.prompts[0], "Gandhi led the Salt March in 1930 to Dandi.")
	assert.Contains(t, model.prompts[0], "Who led the Salt March?")
}

func TestAnswerWithEmptyIndexRunsNoContextMode(t *testing.T) {
	model := &echoModel{answer: "No supporting evidence was found in the indexed documents."}
	p := newTestPipeline(t, model)

	n, err := p.Ingest(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, n)

	res, err := p.Answer(context.Background(), "anything", 5)
	require.NoError(t, err)
	assert.NotEmpty(t, res.Answer)
	assert.Empty(t, res.Sources)

	require.Len(t, model.prompts, 1)
	assert.Contains(t, model.prompts[0], "No supporting passages were found")
}

func TestAnswerUsesDefaultKWhenUnset(t *testing.T) {
	model := &echoModel{answer: "ok"}
	p := newTestPipeline(t, model)

	_, err := p.Ingest(context.Background(), []domain.Document{saltMarchDoc()})
	require.NoError(t, err)

	res, err := p.Answer(context.Background(), "Who led the Salt March?", 0)
	require.NoError(t, err)
	assert.Len(t, res.Sources, 1)
}

func TestIngestAccumulatesAndKeepsDuplicateTexts(t *testing.T) {
	model := &echoModel{answer: "ok"}
	p := newTestPipeline(t, model)

	text := "The Salt Act prohibited Indians from collecting or selling salt."
	docs := []domain.Document{
		{ID: "a", Title: "A", SourceURL: "https://example.com/a", Text: text},
		{ID: "b", Title: "B", SourceURL: "https://example.com/b", Text: text},
	}
	n, err := p.Ingest(context.Background(), docs)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	res, err := p.Answer(context.Background(), "What did the Salt Act prohibit?", 2)
	require.NoError(t, err)
	require.Len(t, res.Sources, 2, "identical texts under different ids are independent chunks")
	assert.Equal(t, "A", res.Sources[0].Title, "tie on identical vectors breaks by insertion order")
	assert.Equal(t, "B", res.Sources[1].Title)
}

func TestReingestSameIDAppends(t *testing.T) {
	model := &echoModel{answer: "ok"}
	p := newTestPipeline(t, model)

	doc := saltMarchDoc()
	_, err := p.Ingest(context.Background(), []domain.Document{doc})
	require.NoError(t, err)
	_, err = p.Ingest(context.Background(), []domain.Document{doc})
	require.NoError(t, err)
	assert.Equal(t, 2, p.IndexSize(), "re-ingestion appends, it does not upsert")
}

func TestSaveThenLoadPreservesAnswers(t *testing.T) {
	model := &echoModel{answer: "Gandhi."}
	p := newTestPipeline(t, model)

	_, err := p.Ingest(context.Background(), []domain.Document{saltMarchDoc()})
	require.NoError(t, err)
	require.NoError(t, p.SaveIndex())

	require.NoError(t, p.LoadIndex())
	assert.Equal(t, 1, p.IndexSize())

	res, err := p.Answer(context.Background(), "Who led the Salt March?", 1)
	require.NoError(t, err)
	require.Len(t, res.Sources, 1)
	assert.Equal(t, "Salt March", res.Sources[0].Title)
}

func TestAnswerKLargerThanIndexReturnsAll(t *testing.T) {
	model := &echoModel{answer: "ok"}
	p := newTestPipeline(t, model)

	_, err := p.Ingest(context.Background(), []domain.Document{saltMarchDoc()})
	require.NoError(t, err)

	res, err := p.Answer(context.Background(), "Who led the Salt March?", 50)
	require.NoError(t, err)
	assert.Len(t, res.Sources, 1)
}

func TestIngestChunksLongDocumentInOrder(t *testing.T) {
	model := &echoModel{answer: "ok"}
	p := newTestPipeline(t, model)

	long := domain.Document{ID: "long", Title: "Long", Text: strings.Repeat("salt march history ", 30)}
	n, err := p.Ingest(context.Background(), []domain.Document{long})
	require.NoError(t, err)
	assert.Greater(t, n, 1)
	assert.Equal(t, n, p.IndexSize())
}

func TestAnswerWithoutGeneratorFails(t *testing.T) {
	ch, err := chunker.NewWindowChunker(100, 0)
	require.NoError(t, err)
	emb, err := hashing.NewEmbedder(16)
	require.NoError(t, err)
	idx, err := index.NewFlat(index.MetricInnerProduct)
	require.NoError(t, err)
	p := New(ch, emb, idx, nil, Config{IndexDir: t.TempDir()}, log.New(io.Discard))

	_, err = p.Answer(context.Background(), "q", 1)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}
