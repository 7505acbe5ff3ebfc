package chunker

import (
	"fmt"
	"strconv"

	"ragpipe/internal/domain"
)

// WindowChunker splits document text into fixed-size character windows with
// trailing overlap. Splitting is position-based and may cut mid-word or
// mid-sentence; sentence-aware splitting is out of scope.
type WindowChunker struct {
	size    int
	overlap int
}

// NewWindowChunker validates the window configuration. Overlap must be
// smaller than the window size or the chunker would never advance.
func NewWindowChunker(size, overlap int) (*WindowChunker, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", domain.ErrInvalidArgument, size)
	}
	if overlap < 0 {
		return nil, fmt.Errorf("%w: overlap must not be negative, got %d", domain.ErrInvalidArgument, overlap)
	}
	if overlap >= size {
		return nil, fmt.Errorf("%w: overlap %d must be smaller than chunk size %d", domain.ErrInvalidArgument, overlap, size)
	}
	return &WindowChunker{size: size, overlap: overlap}, nil
}

// Chunk is a pure function of the document and configuration. Empty text
// produces zero chunks; text shorter than the window produces exactly one.
func (c *WindowChunker) Chunk(document domain.Document) ([]domain.Chunk, error) {
	text := []rune(document.Text)
	if len(text) == 0 {
		return nil, nil
	}
	step := c.size - c.overlap
	var chunks []domain.Chunk
	for start, pos := 0, 0; start < len(text); start, pos = start+step, pos+1 {
		end := start + c.size
		if end > len(text) {
			end = len(text)
		}
		chunks = append(chunks, domain.Chunk{
			ChunkID:    document.ID + ":" + strconv.Itoa(pos),
			DocumentID: document.ID,
			Title:      document.Title,
			SourceURL:  document.SourceURL,
			Text:       string(text[start:end]),
			Position:   pos,
		})
		if end == len(text) {
			break
		}
	}
	return chunks, nil
}
