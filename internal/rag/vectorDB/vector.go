package vectorDB

import (
	"context"

	"github.com/akolanti/GoRAG/internal/domain/commonModels"
)

// Index stores (vector, chunk metadata) pairs and answers nearest-neighbour
// queries. Implementations guarantee:
//   - Insert is idempotent per chunk ID: re-inserting replaces the entry.
//   - Insert rejects vectors whose dimension disagrees with the index
//     (faults.DimensionMismatchError).
//   - Query returns at most k matches, descending by score, ties broken by
//     insertion order (earlier first). Querying an empty index fails with
//     faults.ErrEmptyIndex.
//   - Delete is a no-op for unknown IDs.
//   - Concurrent readers are safe; writes are serialized per instance.
type Index interface {
	Insert(ctx context.Context, entries []commonModels.IndexEntry) error
	Query(ctx context.Context, vector []float32, k int) ([]commonModels.Match, error)
	Delete(ctx context.Context, chunkId string) error
}

// AnswerCache is the semantic answer cache: a looser vector lookup that
// short-circuits the pipeline when a near-identical question was answered
// before.
type AnswerCache interface {
	GetCachedAnswer(ctx context.Context, queryVector []float32) (string, bool, error)
	SaveToCache(ctx context.Context, id string, vector []float32, answer string) error
}
