package store

import (
	"context"
	"sync"

	"github.com/akolanti/GoRAG/internal/domain/commonModels"
)

type InMemorySessionStore struct {
	chatLock sync.RWMutex
	chatMap  map[string][]commonModels.Turn
}

func InitSessionStore() *InMemorySessionStore {
	return &InMemorySessionStore{
		chatMap: make(map[string][]commonModels.Turn),
	}
}

func (store *InMemorySessionStore) ValidateChatId(ctx context.Context, chatId string) bool {
	store.chatLock.RLock()
	defer store.chatLock.RUnlock()
	_, ok := store.chatMap[chatId]
	return ok
}

func (store *InMemorySessionStore) InitNewChat(ctx context.Context, chatId string) error {
	store.chatLock.Lock()
	defer store.chatLock.Unlock()
	if _, ok := store.chatMap[chatId]; !ok {
		store.chatMap[chatId] = make([]commonModels.Turn, 0)
	}
	return nil
}

func (store *InMemorySessionStore) AppendTurns(ctx context.Context, chatId string, turns []commonModels.Turn) error {
	store.chatLock.Lock()
	defer store.chatLock.Unlock()
	store.chatMap[chatId] = append(store.chatMap[chatId], turns...)
	return nil
}

func (store *InMemorySessionStore) GetHistory(ctx context.Context, chatId string) ([]commonModels.Turn, error) {
	store.chatLock.RLock()
	defer store.chatLock.RUnlock()
	history := store.chatMap[chatId]
	out := make([]commonModels.Turn, len(history))
	copy(out, history)
	return out, nil
}
