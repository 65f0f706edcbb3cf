package memoryDB

import (
	"context"
	"sync"
)

// AnswerCache is the in-memory semantic answer cache. Linear cosine scan
// over cached question vectors; a hit needs similarity above the cutoff.
type AnswerCache struct {
	mu      sync.RWMutex
	cutoff  float32
	entries []cacheEntry
}

type cacheEntry struct {
	id     string
	vector []float32
	answer string
}

func NewAnswerCache(cutoff float32) *AnswerCache {
	return &AnswerCache{cutoff: cutoff}
}

func (c *AnswerCache) GetCachedAnswer(_ context.Context, queryVector []float32) (string, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	best := -1
	var bestScore float32
	for i, entry := range c.entries {
		if len(entry.vector) != len(queryVector) {
			continue
		}
		score := cosine(queryVector, entry.vector)
		if best == -1 || score > bestScore {
			best, bestScore = i, score
		}
	}
	if best == -1 || bestScore < c.cutoff {
		return "", false, nil
	}
	return c.entries[best].answer, true, nil
}

func (c *AnswerCache) SaveToCache(_ context.Context, id string, vector []float32, answer string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	v := make([]float32, len(vector))
	copy(v, vector)
	c.entries = append(c.entries, cacheEntry{id: id, vector: v, answer: answer})
	return nil
}
