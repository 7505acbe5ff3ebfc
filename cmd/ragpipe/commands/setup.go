package commands

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"ragpipe/internal/chunker"
	"ragpipe/internal/config"
	"ragpipe/internal/domain"
	embhashing "ragpipe/internal/embedding/hashing"
	embopenai "ragpipe/internal/embedding/openai"
	"ragpipe/internal/generator"
	genopenai "ragpipe/internal/generator/openai"
	"ragpipe/internal/index"
	"ragpipe/internal/pipeline"
)

func newLogger() *log.Logger {
	return log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true, Prefix: "ragpipe"})
}

func loadConfig() (*config.AppConfig, error) {
	if cfgPath != "" {
		return config.Load(cfgPath)
	}
	cfg, _, err := config.LoadDefault()
	return cfg, err
}

// buildPipeline assembles the pipeline from config. The generator is only
// constructed when the command answers questions, so ingest-only runs do
// not require a generation API key.
func buildPipeline(withGenerator bool, logger *log.Logger) (*pipeline.Pipeline, *config.AppConfig, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}

	ch, err := chunker.NewWindowChunker(cfg.Chunker.Size, cfg.Chunker.Overlap)
	if err != nil {
		return nil, nil, err
	}

	var embedder domain.Embedder
	switch cfg.Embedder.Type {
	case "openai", "":
		o := cfg.Embedder.OpenAI
		if o == nil {
			return nil, nil, fmt.Errorf("openai embedder config missing")
		}
		embedder, err = embopenai.NewClient(embopenai.Config{
			APIKeyEnv:         o.APIKeyEnv,
			BaseURL:           o.BaseURL,
			Model:             o.Model,
			BatchSize:         o.BatchSize,
			Timeout:           time.Duration(o.TimeoutSecs) * time.Second,
			MaxRetries:        o.MaxRetries,
			RequestsPerSecond: o.RequestsPerSecond,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("openai embedder init failed: %w", err)
		}
	case "hashing":
		dim := 0
		if cfg.Embedder.Hashing != nil {
			dim = cfg.Embedder.Hashing.Dimension
		}
		embedder, err = embhashing.NewEmbedder(dim)
		if err != nil {
			return nil, nil, err
		}
	default:
		return nil, nil, fmt.Errorf("unknown embedder: %s", cfg.Embedder.Type)
	}

	idx, err := index.NewFlat(cfg.Index.Metric)
	if err != nil {
		return nil, nil, err
	}

	var gen *generator.Generator
	if withGenerator {
		model, err := genopenai.NewClient(genopenai.Config{
			APIKeyEnv:         cfg.Generator.APIKeyEnv,
			BaseURL:           cfg.Generator.BaseURL,
			Model:             cfg.Generator.Model,
			Timeout:           time.Duration(cfg.Generator.TimeoutSecs) * time.Second,
			MaxTokens:         cfg.Generator.MaxTokens,
			Temperature:       float32(cfg.Generator.Temperature),
			RequestsPerSecond: cfg.Generator.RequestsPerSecond,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("generator init failed: %w", err)
		}
		gen = generator.New(model, cfg.Generator.MaxRetries, 2*time.Second)
	}

	pipe := pipeline.New(ch, embedder, idx, gen, pipeline.Config{
		TopK:            cfg.Retrieval.TopK,
		MaxContextChars: cfg.Retrieval.MaxContextChars,
		IndexDir:        cfg.Index.Dir,
	}, logger)
	return pipe, cfg, nil
}

// loadIndexIfPresent restores a persisted index but tolerates its absence;
// querying an empty index is valid and answers in no-context mode.
func loadIndexIfPresent(pipe *pipeline.Pipeline, logger *log.Logger) error {
	err := pipe.LoadIndex()
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrIndexLoad) {
		logger.Warn("no usable persisted index; starting empty", "err", err)
		return nil
	}
	return err
}
