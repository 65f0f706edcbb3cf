package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/akolanti/GoRAG/internal/domain/commonModels"
)

type InMemoryChunkStore struct {
	chunkLock sync.RWMutex
	chunkMap  map[string]commonModels.Chunk
}

func InitChunkStore() *InMemoryChunkStore {
	return &InMemoryChunkStore{
		chunkMap: make(map[string]commonModels.Chunk),
	}
}

func (store *InMemoryChunkStore) SaveChunks(ctx context.Context, chunks []commonModels.Chunk) error {
	store.chunkLock.Lock()
	defer store.chunkLock.Unlock()
	for _, chunk := range chunks {
		store.chunkMap[chunk.ChunkId] = chunk
	}
	return nil
}

func (store *InMemoryChunkStore) GetChunks(ctx context.Context, ids []string) ([]commonModels.Chunk, error) {
	store.chunkLock.RLock()
	defer store.chunkLock.RUnlock()
	chunks := make([]commonModels.Chunk, 0, len(ids))
	for _, id := range ids {
		chunk, found := store.chunkMap[id]
		if !found {
			return nil, fmt.Errorf("chunk %s not found in chunk store", id)
		}
		chunks = append(chunks, chunk)
	}
	return chunks, nil
}

func (store *InMemoryChunkStore) DeleteChunk(ctx context.Context, id string) {
	store.chunkLock.Lock()
	defer store.chunkLock.Unlock()
	delete(store.chunkMap, id)
}
