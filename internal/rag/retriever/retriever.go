package retriever

import (
	"context"
	"fmt"

	"github.com/akolanti/GoRAG/internal/domain/commonModels"
	"github.com/akolanti/GoRAG/internal/domain/faults"
	"github.com/akolanti/GoRAG/internal/rag/embedding"
	"github.com/akolanti/GoRAG/internal/rag/vectorDB"
	"github.com/akolanti/GoRAG/pkg/logger_i"
)

// Retrieved pairs a resolved chunk with its similarity score.
type Retrieved struct {
	Chunk commonModels.Chunk
	Score float32
}

// Retriever turns a natural-language query into the top-k most similar
// chunks. It embeds the query, asks the index for neighbours and resolves
// the returned IDs back to chunk content. Errors from the embedder and the
// index are passed through untouched so the caller sees the original
// classification; the retriever never retries.
type Retriever struct {
	embedder   embedding.Embedder
	index      vectorDB.Index
	chunkStore commonModels.ChunkStore
	logger     *logger_i.Logger
}

func New(embedder embedding.Embedder, index vectorDB.Index, chunkStore commonModels.ChunkStore) (*Retriever, error) {
	if embedder == nil || index == nil || chunkStore == nil {
		return nil, fmt.Errorf("retriever requires an embedder, an index and a chunk store: %w", faults.ErrInvalidConfig)
	}
	return &Retriever{
		embedder:   embedder,
		index:      index,
		chunkStore: chunkStore,
		logger:     logger_i.NewLogger("Retriever"),
	}, nil
}

// Retrieve returns up to k chunks ranked by similarity to the query,
// best first. A chunk ID the index knows but the chunk store does not is
// an error: the two stores have diverged and serving a partial result
// would silently drop context.
func (r *Retriever) Retrieve(ctx context.Context, query string, k int) ([]Retrieved, error) {
	queryVector, err := r.embedder.GetEmbedding(ctx, query)
	if err != nil {
		return nil, err
	}

	matches, err := r.index.Query(ctx, queryVector, k)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, nil
	}

	ids := make([]string, len(matches))
	for i, match := range matches {
		ids[i] = match.ChunkId
	}

	chunks, err := r.chunkStore.GetChunks(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolving %d matched chunks: %w", len(ids), err)
	}
	if len(chunks) != len(matches) {
		return nil, fmt.Errorf("index returned %d matches but chunk store resolved %d", len(matches), len(chunks))
	}

	results := make([]Retrieved, len(matches))
	for i, match := range matches {
		results[i] = Retrieved{Chunk: chunks[i], Score: match.Score}
	}

	r.logger.Debug("retrieval complete", "matches", len(results), "topScore", results[0].Score)
	return results, nil
}
