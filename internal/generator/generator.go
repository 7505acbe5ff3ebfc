// Package generator constructs the answer prompt and orchestrates calls to
// the external generative model.
package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ragpipe/internal/domain"
	"ragpipe/internal/util"
)

// answerTemplate grounds the model in the retrieved context only. The model
// is told to refuse rather than fabricate; whether the returned claims are
// actually supported is not verified here.
const answerTemplate = `Use only the following context to answer the question. Cite nothing that is not in the context. If you cannot answer the question based on the context, say "I don't have enough information to answer that question."

Context:
%s

Question: %s

Answer:`

// noContextTemplate is used when retrieval produced zero passages. The
// answer must state explicitly that no supporting evidence was found.
const noContextTemplate = `No supporting passages were found in the indexed documents for the question below. Begin your answer by stating that no supporting evidence was found in the indexed documents. Do not invent citations.

Question: %s

Answer:`

// Generator wraps an external text model with prompt construction and
// bounded retries.
type Generator struct {
	model      domain.TextGenerator
	maxRetries int
	retryDelay time.Duration
}

// New wires a generator around a text model. maxRetries bounds re-attempts
// after a failed or empty completion; retryDelay seeds the backoff.
func New(model domain.TextGenerator, maxRetries int, retryDelay time.Duration) *Generator {
	if maxRetries < 0 {
		maxRetries = 0
	}
	if retryDelay <= 0 {
		retryDelay = 2 * time.Second
	}
	return &Generator{model: model, maxRetries: maxRetries, retryDelay: retryDelay}
}

// Generate produces the answer text for a question given an assembled
// context block. An empty context selects no-context mode. Empty model
// output counts as a failure and is retried; exhausting retries fails with
// ErrGeneration. Timeouts are surfaced as ErrTimeout without retry, since
// the caller's deadline is already spent.
func (g *Generator) Generate(ctx context.Context, question, contextBlock string) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", fmt.Errorf("%w: empty question", domain.ErrInvalidArgument)
	}
	prompt := buildPrompt(question, contextBlock)

	var lastErr error
	for attempt := 0; attempt <= g.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", wrapCtxErr(ctx.Err())
			case <-time.After(util.Backoff(g.retryDelay, attempt)):
			}
		}
		answer, err := g.model.Complete(ctx, prompt)
		if err != nil {
			if errors.Is(err, domain.ErrTimeout) || errors.Is(err, context.Canceled) {
				return "", err
			}
			lastErr = err
			continue
		}
		if strings.TrimSpace(answer) == "" {
			lastErr = errors.New("model returned empty output")
			continue
		}
		return strings.TrimSpace(answer), nil
	}
	return "", fmt.Errorf("%w: after %d attempts: %v", domain.ErrGeneration, g.maxRetries+1, lastErr)
}

func buildPrompt(question, contextBlock string) string {
	if strings.TrimSpace(contextBlock) == "" {
		return fmt.Sprintf(noContextTemplate, question)
	}
	return fmt.Sprintf(answerTemplate, contextBlock, question)
}

func wrapCtxErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", domain.ErrTimeout, err)
	}
	return err
}
