package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/akolanti/GoRAG/internal/config"
	"github.com/akolanti/GoRAG/internal/data/redisStore"
	"github.com/akolanti/GoRAG/internal/domain/commonModels"
	"github.com/akolanti/GoRAG/pkg/logger_i"
)

// RedisChunkStore persists chunk content keyed by chunk ID so the retriever
// can resolve index matches back to text. Chunks never expire; the index
// decides their lifetime through Delete.
type RedisChunkStore struct {
	store  *redisStore.Store
	logger *logger_i.Logger
}

func GetRedisChunkStore(ctx context.Context) *RedisChunkStore {
	inner := redisStore.GetRedisStore(ctx, config.RedisChunkStore)
	if inner == nil {
		return nil
	}
	return &RedisChunkStore{
		store:  inner,
		logger: logger_i.NewLogger("ChunkStore"),
	}
}

func (s *RedisChunkStore) SaveChunks(ctx context.Context, chunks []commonModels.Chunk) error {
	for _, chunk := range chunks {
		data, err := json.Marshal(chunk)
		if err != nil {
			return err
		}
		if err := s.store.Set(ctx, chunkKey(chunk.ChunkId), data, 0); err != nil {
			return fmt.Errorf("save chunk %s: %w", chunk.ChunkId, err)
		}
	}
	return nil
}

func (s *RedisChunkStore) GetChunks(ctx context.Context, ids []string) ([]commonModels.Chunk, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = chunkKey(id)
	}
	values, err := s.store.GetMany(ctx, keys...)
	if err != nil {
		return nil, fmt.Errorf("load chunks: %w", err)
	}

	chunks := make([]commonModels.Chunk, 0, len(ids))
	for i, value := range values {
		if value == "" {
			return nil, fmt.Errorf("chunk %s not found in chunk store", ids[i])
		}
		var chunk commonModels.Chunk
		if err := json.Unmarshal([]byte(value), &chunk); err != nil {
			return nil, fmt.Errorf("corrupt chunk %s: %w", ids[i], err)
		}
		chunks = append(chunks, chunk)
	}
	return chunks, nil
}

func (s *RedisChunkStore) DeleteChunk(ctx context.Context, id string) {
	if err := s.store.Del(ctx, chunkKey(id)); err != nil {
		s.logger.Error("Error deleting chunk from Redis", "chunkId", id, "error", err)
	}
}

func chunkKey(id string) string {
	return "chunk:" + id
}

func TestChunkStore(store *redisStore.Store) *RedisChunkStore {
	return &RedisChunkStore{
		store:  store,
		logger: logger_i.NewLogger("test chunks"),
	}
}
