package rag_test

import (
	"context"
	"strings"
	"sync"
)

// keywordEmbedder is a deterministic stand-in for a real embedding model.
// Each dimension counts one keyword, so texts about the same thing land
// close together and unrelated texts are orthogonal.
type keywordEmbedder struct {
	keywords []string
}

func newKeywordEmbedder() *keywordEmbedder {
	return &keywordEmbedder{keywords: []string{"sky", "grass", "blue", "green"}}
}

func (e *keywordEmbedder) GetEmbedding(ctx context.Context, text string) ([]float32, error) {
	lower := strings.ToLower(text)
	vector := make([]float32, len(e.keywords))
	for i, keyword := range e.keywords {
		vector[i] = float32(strings.Count(lower, keyword))
	}
	return vector, nil
}

func (e *keywordEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vector, err := e.GetEmbedding(ctx, text)
		if err != nil {
			return nil, err
		}
		vectors[i] = vector
	}
	return vectors, nil
}

type scriptedProvider struct {
	mu      sync.Mutex
	answer  string
	prompts []string
	fail    error
}

func (p *scriptedProvider) Generate(ctx context.Context, prompt string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail != nil {
		return "", p.fail
	}
	p.prompts = append(p.prompts, prompt)
	return p.answer, nil
}

func (p *scriptedProvider) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.prompts)
}

func (p *scriptedProvider) lastPrompt() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.prompts) == 0 {
		return ""
	}
	return p.prompts[len(p.prompts)-1]
}

type stubCache struct {
	mu     sync.Mutex
	answer string
	found  bool
	saved  int
}

func (c *stubCache) GetCachedAnswer(ctx context.Context, queryVector []float32) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.answer, c.found, nil
}

func (c *stubCache) SaveToCache(ctx context.Context, id string, vector []float32, answer string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.saved++
	return nil
}
