package googleEmbedding

import (
	"context"
	"errors"
	"fmt"

	"github.com/akolanti/GoRAG/internal/domain/faults"
	"github.com/akolanti/GoRAG/internal/rag/embedding"
	"github.com/akolanti/GoRAG/pkg/logger_i"
	"google.golang.org/genai"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Config is handed in explicitly at construction; this package never reads
// the process environment.
type Config struct {
	APIKey    string
	Model     string
	Dimension int32
	BatchSize int
}

type Client struct {
	genAi     *genai.Client
	model     string
	dimension int32
	batchSize int
	logger    *logger_i.Logger
}

func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: google embedding api key is required", faults.ErrInvalidConfig)
	}
	if cfg.Model == "" || cfg.Dimension <= 0 {
		return nil, fmt.Errorf("%w: model %q dimension %d", faults.ErrInvalidConfig, cfg.Model, cfg.Dimension)
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}

	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: cfg.APIKey})
	if err != nil {
		return nil, fmt.Errorf("creating google embedding client: %w", err)
	}

	logger := logger_i.NewLogger("google_embedding")
	logger.Info("Google Embedding client created", "model", cfg.Model)
	return &Client{
		genAi:     c,
		model:     cfg.Model,
		dimension: cfg.Dimension,
		batchSize: cfg.BatchSize,
		logger:    logger,
	}, nil
}

func (c *Client) GetEmbedding(ctx context.Context, text string) ([]float32, error) {
	result, err := c.doCall(ctx, getContent([]string{text}))
	if err != nil {
		c.logger.Error("embedding call failed", "error", err)
		return nil, classify("embed", err)
	}
	if len(result.Embeddings) != 1 {
		return nil, faults.Permanent("embed", fmt.Errorf("provider returned %d embeddings for 1 input", len(result.Embeddings)))
	}
	return result.Embeddings[0].Values, nil
}

// Embed returns one vector per input text, in input order. Requests are
// issued in batches of at most batchSize. No retries happen here.
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, 0, len(texts))
	for _, batch := range embedding.Batches(texts, c.batchSize) {
		result, err := c.doCall(ctx, getContent(batch))
		if err != nil {
			c.logger.Error("batch embedding call failed", "batch size", len(batch), "error", err)
			return nil, classify("embed batch", err)
		}
		if len(result.Embeddings) != len(batch) {
			return nil, faults.Permanent("embed batch",
				fmt.Errorf("provider returned %d embeddings for %d inputs", len(result.Embeddings), len(batch)))
		}
		for _, r := range result.Embeddings {
			vectors = append(vectors, r.Values)
		}
	}
	return vectors, nil
}

func (c *Client) doCall(ctx context.Context, content []*genai.Content) (*genai.EmbedContentResponse, error) {
	return c.genAi.Models.EmbedContent(ctx, c.model, content, &genai.EmbedContentConfig{
		OutputDimensionality: &c.dimension,
		TaskType:             "RETRIEVAL_DOCUMENT",
	})
}

func getContent(texts []string) []*genai.Content {
	contents := make([]*genai.Content, 0, len(texts))
	for _, text := range texts {
		contents = append(contents, &genai.Content{
			Parts: []*genai.Part{{Text: text}},
		})
	}
	return contents
}

// classify maps provider failures onto the shared taxonomy. Context errors
// pass through untouched so deadline handling stays with the caller.
func classify(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return err
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == 408 || apiErr.Code == 429 || apiErr.Code >= 500:
			return faults.Transient(op, err)
		case apiErr.Code >= 400:
			return faults.Permanent(op, err)
		}
	}

	if s, ok := status.FromError(err); ok {
		switch s.Code() {
		case codes.ResourceExhausted, codes.Unavailable, codes.DeadlineExceeded, codes.Aborted:
			return faults.Transient(op, err)
		case codes.InvalidArgument, codes.Unauthenticated, codes.PermissionDenied, codes.FailedPrecondition:
			return faults.Permanent(op, err)
		}
	}

	// anything else - connection resets, DNS failures - is worth a retry
	return faults.Transient(op, err)
}
