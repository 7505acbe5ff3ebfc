// Package assembler formats retrieved passages into the bounded context
// block handed to the generator.
package assembler

import (
	"fmt"
	"strings"

	"ragpipe/internal/domain"
)

const (
	// separator keeps passages visually distinct inside the prompt.
	separator = "\n\n---\n\n"

	// TruncationMarker flags the one case where a passage is cut, so a
	// citation is not mistaken for the complete source.
	TruncationMarker = " [truncated]"
)

// Assemble concatenates passage texts in the given order, each prefixed by
// its source, until adding the next full passage would exceed maxChars.
// A passage that does not fit is omitted entirely, so every included
// passage is complete and attributable. The exception is when the very
// first passage alone exceeds the budget: it is truncated at a character
// boundary and flagged with TruncationMarker. Zero passages produce an
// empty context.
func Assemble(passages []domain.RetrievedPassage, maxChars int) (string, error) {
	if maxChars <= 0 {
		return "", fmt.Errorf("%w: max context chars must be positive, got %d", domain.ErrInvalidArgument, maxChars)
	}
	var b strings.Builder
	total := 0
	included := 0
	for _, p := range passages {
		block := formatPassage(p.Chunk)
		cost := len([]rune(block))
		if included > 0 {
			cost += len([]rune(separator))
		}
		if total+cost > maxChars {
			if included == 0 {
				return truncate(block, maxChars), nil
			}
			break
		}
		if included > 0 {
			b.WriteString(separator)
		}
		b.WriteString(block)
		total += cost
		included++
	}
	return b.String(), nil
}

func formatPassage(c domain.Chunk) string {
	return fmt.Sprintf("[%s | %s] %s", c.Title, c.SourceURL, c.Text)
}

func truncate(block string, maxChars int) string {
	runes := []rune(block)
	marker := []rune(TruncationMarker)
	if maxChars <= len(marker) {
		return string(runes[:maxChars])
	}
	return string(runes[:maxChars-len(marker)]) + TruncationMarker
}
