package openaiEmbedding

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/akolanti/GoRAG/internal/domain/faults"
	"github.com/akolanti/GoRAG/internal/rag/embedding"
	"github.com/akolanti/GoRAG/pkg/logger_i"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

type Config struct {
	APIKey    string
	Model     string
	Dimension int64
	BatchSize int
	// HTTPClient lets the caller share a pooled transport. Optional.
	HTTPClient *http.Client
}

type Client struct {
	api       openai.Client
	model     string
	dimension int64
	batchSize int
	logger    *logger_i.Logger
}

func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: openai api key is required", faults.ErrInvalidConfig)
	}
	if cfg.Model == "" || cfg.Dimension <= 0 {
		return nil, fmt.Errorf("%w: model %q dimension %d", faults.ErrInvalidConfig, cfg.Model, cfg.Dimension)
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}

	logger := logger_i.NewLogger("openai_embedding")
	logger.Info("OpenAI Embedding client created", "model", cfg.Model)
	return &Client{
		api:       openai.NewClient(opts...),
		model:     cfg.Model,
		dimension: cfg.Dimension,
		batchSize: cfg.BatchSize,
		logger:    logger,
	}, nil
}

func (c *Client) GetEmbedding(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, 0, len(texts))
	for _, batch := range embedding.Batches(texts, c.batchSize) {
		resp, err := c.api.Embeddings.New(ctx, openai.EmbeddingNewParams{
			Input:          openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: batch},
			Model:          openai.EmbeddingModel(c.model),
			Dimensions:     openai.Int(c.dimension),
			EncodingFormat: openai.EmbeddingNewParamsEncodingFormatFloat,
		})
		if err != nil {
			c.logger.Error("batch embedding call failed", "batch size", len(batch), "error", err)
			return nil, classify("embed batch", err)
		}
		if len(resp.Data) != len(batch) {
			return nil, faults.Permanent("embed batch",
				fmt.Errorf("provider returned %d embeddings for %d inputs", len(resp.Data), len(batch)))
		}

		// The API reports an index per datum; place by index so the
		// one-to-one ordering guarantee survives any response reordering.
		batchVectors := make([][]float32, len(batch))
		for _, datum := range resp.Data {
			if datum.Index < 0 || int(datum.Index) >= len(batch) {
				return nil, faults.Permanent("embed batch",
					fmt.Errorf("provider returned out-of-range index %d", datum.Index))
			}
			batchVectors[datum.Index] = toFloat32(datum.Embedding)
		}
		vectors = append(vectors, batchVectors...)
	}
	return vectors, nil
}

func toFloat32(values []float64) []float32 {
	out := make([]float32, len(values))
	for i, v := range values {
		out[i] = float32(v)
	}
	return out
}

func classify(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return err
	}

	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == http.StatusTooManyRequests,
			apiErr.StatusCode == http.StatusRequestTimeout,
			apiErr.StatusCode >= 500:
			return faults.Transient(op, err)
		default:
			return faults.Permanent(op, err)
		}
	}

	return faults.Transient(op, err)
}
