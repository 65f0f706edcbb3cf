package memoryDB

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/akolanti/GoRAG/internal/domain/commonModels"
	"github.com/akolanti/GoRAG/internal/domain/faults"
)

type Similarity string

const (
	Cosine       Similarity = "cosine"
	InnerProduct Similarity = "inner_product"
)

// Index is the in-process vector index: exact brute-force search, suitable
// for test substitution and small corpora. Single-writer/multi-reader via
// RWMutex keeps the slot/ID structures consistent.
type Index struct {
	mu         sync.RWMutex
	dimension  int
	similarity Similarity
	slots      []slot         // insertion order, the tie-break authority
	byId       map[string]int // chunk ID -> position in slots
}

type slot struct {
	id      string
	vector  []float32
	payload map[string]string
}

func NewIndex(dimension int, similarity Similarity) (*Index, error) {
	if dimension <= 0 {
		return nil, fmt.Errorf("%w: index dimension must be positive, got %d", faults.ErrInvalidConfig, dimension)
	}
	switch similarity {
	case Cosine, InnerProduct:
	case "":
		similarity = Cosine
	default:
		return nil, fmt.Errorf("%w: unknown similarity %q", faults.ErrInvalidConfig, similarity)
	}
	return &Index{
		dimension:  dimension,
		similarity: similarity,
		byId:       make(map[string]int),
	}, nil
}

// Insert upserts entries by chunk ID. The whole batch is validated before
// any entry lands, so a dimension mismatch never leaves a partial write.
// Replacing an existing ID keeps its original insertion slot.
func (ix *Index) Insert(_ context.Context, entries []commonModels.IndexEntry) error {
	for _, entry := range entries {
		if len(entry.Vector) != ix.dimension {
			return &faults.DimensionMismatchError{Want: ix.dimension, Got: len(entry.Vector)}
		}
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()
	for _, entry := range entries {
		vector := make([]float32, len(entry.Vector))
		copy(vector, entry.Vector)
		s := slot{id: entry.ChunkId, vector: vector, payload: entry.Payload}

		if pos, exists := ix.byId[entry.ChunkId]; exists {
			ix.slots[pos] = s
			continue
		}
		ix.byId[entry.ChunkId] = len(ix.slots)
		ix.slots = append(ix.slots, s)
	}
	return nil
}

func (ix *Index) Query(_ context.Context, vector []float32, k int) ([]commonModels.Match, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", faults.ErrInvalidConfig, k)
	}
	if len(vector) != ix.dimension {
		return nil, &faults.DimensionMismatchError{Want: ix.dimension, Got: len(vector)}
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()
	if len(ix.slots) == 0 {
		return nil, faults.ErrEmptyIndex
	}

	order := make([]int, len(ix.slots))
	scores := make([]float32, len(ix.slots))
	for i, s := range ix.slots {
		order[i] = i
		scores[i] = ix.score(vector, s.vector)
	}
	// stable sort: equal scores keep insertion order, earlier first
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	if k > len(order) {
		k = len(order)
	}
	matches := make([]commonModels.Match, 0, k)
	for _, pos := range order[:k] {
		matches = append(matches, commonModels.Match{
			ChunkId: ix.slots[pos].id,
			Score:   scores[pos],
		})
	}
	return matches, nil
}

func (ix *Index) Delete(_ context.Context, chunkId string) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	pos, exists := ix.byId[chunkId]
	if !exists {
		return nil
	}
	ix.slots = append(ix.slots[:pos], ix.slots[pos+1:]...)
	delete(ix.byId, chunkId)
	for i := pos; i < len(ix.slots); i++ {
		ix.byId[ix.slots[i].id] = i
	}
	return nil
}

// Payload returns the stored metadata for a chunk ID, if present.
func (ix *Index) Payload(chunkId string) (map[string]string, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	pos, exists := ix.byId[chunkId]
	if !exists {
		return nil, false
	}
	return ix.slots[pos].payload, true
}

func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.slots)
}

func (ix *Index) score(query, stored []float32) float32 {
	switch ix.similarity {
	case InnerProduct:
		return dot(query, stored)
	default:
		return cosine(query, stored)
	}
}

func dot(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

func cosine(a, b []float32) float32 {
	var sum, na, nb float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return float32(sum / (math.Sqrt(na) * math.Sqrt(nb)))
}
