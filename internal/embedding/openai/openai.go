// Package openai implements the embedding provider on the OpenAI
// embeddings API. Inputs are sliced into batches for throughput; the
// output is identical regardless of batch size.
package openai

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"ragpipe/internal/domain"
	"ragpipe/internal/util"
)

// Config configures the OpenAI embeddings client.
type Config struct {
	APIKeyEnv  string
	BaseURL    string
	Model      string
	BatchSize  int
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration
	// RequestsPerSecond throttles calls so concurrent pipeline operations
	// do not exhaust the provider quota.
	RequestsPerSecond float64
}

// Client is an Embedder backed by an OpenAI-compatible embeddings endpoint.
type Client struct {
	client     *openai.Client
	model      openai.EmbeddingModel
	batchSize  int
	timeout    time.Duration
	maxRetries int
	retryDelay time.Duration
	limiter    *rate.Limiter

	mu        sync.Mutex
	dimension int
}

// NewClient reads the API key from the configured environment variable and
// applies defaults for everything left unset.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKeyEnv == "" {
		cfg.APIKeyEnv = "OPENAI_API_KEY"
	}
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("missing API key in env %s", cfg.APIKeyEnv)
	}
	if cfg.Model == "" {
		cfg.Model = string(openai.SmallEmbedding3)
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 32
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	} else if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 2 * time.Second
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 2
	}
	clientCfg := openai.DefaultConfig(key)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &Client{
		client:     openai.NewClientWithConfig(clientCfg),
		model:      openai.EmbeddingModel(cfg.Model),
		batchSize:  cfg.BatchSize,
		timeout:    cfg.Timeout,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		limiter:    rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
	}, nil
}

// Name returns the identifier of this embedder implementation.
func (c *Client) Name() string { return "openai/" + string(c.model) }

// Dimension reports the vector dimensionality, known after the first call.
func (c *Client) Dimension() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dimension
}

// Embed returns one vector per input text, order-preserving.
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += c.batchSize {
		end := start + c.batchSize
		if end > len(texts) {
			end = len(texts)
		}
		vectors, err := c.embedBatch(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		out = append(out, vectors...)
	}
	return out, nil
}

func (c *Client) embedBatch(ctx context.Context, batch []string) ([][]float32, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, wrapCtxErr(ctx.Err())
			case <-time.After(util.Backoff(c.retryDelay, attempt)):
			}
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, wrapCtxErr(err)
		}
		vectors, err := c.request(ctx, batch)
		if err == nil {
			return vectors, nil
		}
		if errors.Is(err, domain.ErrTimeout) || errors.Is(err, context.Canceled) {
			return nil, err
		}
		lastErr = err
	}
	return nil, fmt.Errorf("%w: after %d attempts: %v", domain.ErrProvider, c.maxRetries+1, lastErr)
}

func (c *Client) request(ctx context.Context, batch []string) ([][]float32, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.CreateEmbeddings(callCtx, openai.EmbeddingRequestStrings{
		Input: batch,
		Model: c.model,
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: embeddings call exceeded %s", domain.ErrTimeout, c.timeout)
		}
		return nil, err
	}
	if len(resp.Data) != len(batch) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(batch), len(resp.Data))
	}
	vectors := make([][]float32, len(batch))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(batch) {
			return nil, fmt.Errorf("embedding index %d out of range", d.Index)
		}
		vectors[d.Index] = d.Embedding
	}
	for i, v := range vectors {
		if len(v) == 0 {
			return nil, fmt.Errorf("empty embedding for input %d", i)
		}
		if err := c.checkDimension(len(v)); err != nil {
			return nil, err
		}
	}
	return vectors, nil
}

// checkDimension pins the dimensionality on first use. A model change mid
// lifetime would silently corrupt the index, so it is rejected here.
func (c *Client) checkDimension(dim int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.dimension == 0 {
		c.dimension = dim
		return nil
	}
	if dim != c.dimension {
		return fmt.Errorf("embedding dimension changed from %d to %d", c.dimension, dim)
	}
	return nil
}

func wrapCtxErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", domain.ErrTimeout, err)
	}
	return err
}
