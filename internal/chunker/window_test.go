package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragpipe/internal/domain"
)

func TestNewWindowChunkerRejectsBadConfig(t *testing.T) {
	cases := []struct {
		name    string
		size    int
		overlap int
	}{
		{"zero size", 0, 0},
		{"negative size", -1, 0},
		{"negative overlap", 10, -1},
		{"overlap equals size", 10, 10},
		{"overlap exceeds size", 10, 11},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewWindowChunker(tc.size, tc.overlap)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrInvalidArgument)
		})
	}
}

func TestChunkEmptyTextProducesNoChunks(t *testing.T) {
	c, err := NewWindowChunker(100, 10)
	require.NoError(t, err)

	chunks, err := c.Chunk(domain.Document{ID: "d1"})
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestChunkShortTextProducesSingleChunk(t *testing.T) {
	c, err := NewWindowChunker(100, 0)
	require.NoError(t, err)

	doc := domain.Document{
		ID:        "doc1",
		Title:     "Salt March",
		SourceURL: "https://example.com/salt-march",
		Text:      "Gandhi led the Salt March in 1930 to Dandi.",
	}
	chunks, err := c.Chunk(doc)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, doc.Text, chunks[0].Text)
	assert.Equal(t, "doc1:0", chunks[0].ChunkID)
	assert.Equal(t, "doc1", chunks[0].DocumentID)
	assert.Equal(t, doc.Title, chunks[0].Title)
	assert.Equal(t, doc.SourceURL, chunks[0].SourceURL)
	assert.Equal(t, 0, chunks[0].Position)
}

func TestChunkWindowsOverlap(t *testing.T) {
	c, err := NewWindowChunker(10, 4)
	require.NoError(t, err)

	text := "abcdefghijklmnopqrstuvwxyz"
	chunks, err := c.Chunk(domain.Document{ID: "d", Text: text})
	require.NoError(t, err)
	require.True(t, len(chunks) > 1)

	for i := 1; i < len(chunks); i++ {
		prev := []rune(chunks[i-1].Text)
		tail := string(prev[len(prev)-4:])
		assert.True(t, strings.HasPrefix(chunks[i].Text, tail),
			"chunk %d should start with the previous chunk's last 4 characters", i)
		assert.Equal(t, i, chunks[i].Position)
	}
}

// Concatenating chunks with overlaps removed must reconstruct the text.
func TestChunkReconstruction(t *testing.T) {
	texts := []string{
		"Gandhi led the Salt March in 1930 to Dandi.",
		strings.Repeat("lorem ipsum dolor sit amet ", 40),
		"täst ünïcode テキスト with multibyte runes",
		"x",
	}
	configs := []struct{ size, overlap int }{
		{5, 0}, {10, 3}, {100, 50}, {7, 6},
	}
	for _, text := range texts {
		for _, cfg := range configs {
			c, err := NewWindowChunker(cfg.size, cfg.overlap)
			require.NoError(t, err)
			chunks, err := c.Chunk(domain.Document{ID: "d", Text: text})
			require.NoError(t, err)
			require.NotEmpty(t, chunks)

			var b strings.Builder
			for i, ch := range chunks {
				runes := []rune(ch.Text)
				if i == 0 {
					b.WriteString(ch.Text)
					continue
				}
				if len(runes) > cfg.overlap {
					b.WriteString(string(runes[cfg.overlap:]))
				}
			}
			assert.Equal(t, text, b.String(), "size=%d overlap=%d", cfg.size, cfg.overlap)
		}
	}
}

func TestChunkLastWindowMayBeShort(t *testing.T) {
	c, err := NewWindowChunker(10, 0)
	require.NoError(t, err)

	chunks, err := c.Chunk(domain.Document{ID: "d", Text: "abcdefghijklm"})
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, "abcdefghij", chunks[0].Text)
	assert.Equal(t, "klm", chunks[1].Text)
}
