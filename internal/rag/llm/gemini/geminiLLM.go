package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/akolanti/GoRAG/internal/domain/faults"
	"github.com/akolanti/GoRAG/pkg/logger_i"
	"google.golang.org/genai"
)

type Config struct {
	APIKey string
	Model  string
	// SystemInstruction is the model-level persona. The retrieval grounding
	// instructions travel inside the assembled prompt instead, so they can
	// compete for the token budget like everything else.
	SystemInstruction string
	Temperature       float32
}

// Client calls the Gemini generateContent API. One instance is shared by
// all conversations; the underlying genai client pools its connections.
type Client struct {
	client *genai.Client
	cfg    Config
	logger *logger_i.Logger
}

func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.APIKey == "" || cfg.Model == "" {
		return nil, fmt.Errorf("gemini provider needs an API key and a model name: %w", faults.ErrInvalidConfig)
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: cfg.APIKey})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	logger := logger_i.NewLogger("llm_gemini")
	logger.Info("Gemini client created", "model", cfg.Model)
	return &Client{client: c, cfg: cfg, logger: logger}, nil
}

func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	contentConfig := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(c.cfg.Temperature),
	}
	if c.cfg.SystemInstruction != "" {
		contentConfig.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: c.cfg.SystemInstruction}},
		}
	}

	result, err := c.client.Models.GenerateContent(ctx, c.cfg.Model, genai.Text(prompt), contentConfig)
	if err != nil {
		return "", classify("generate content", err)
	}

	answer := result.Text()
	if answer == "" {
		// Safety blocks and empty candidates land here. Retrying the same
		// prompt would hit the same filter.
		return "", faults.Permanent("generate content", errors.New("model returned an empty response"))
	}
	return answer, nil
}

// classify maps provider failures onto the transient/permanent split.
// Context cancellation and deadlines pass through untouched except that a
// deadline is reported transient, since the same call can succeed later.
func classify(op string, err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return faults.Transient(op, err)
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == http.StatusTooManyRequests,
			apiErr.Code == http.StatusRequestTimeout,
			apiErr.Code >= 500:
			return faults.Transient(op, err)
		case apiErr.Code >= 400:
			return faults.Permanent(op, err)
		}
	}

	// Network-level failures without a status code. Assume the connection
	// can recover.
	return faults.Transient(op, err)
}
