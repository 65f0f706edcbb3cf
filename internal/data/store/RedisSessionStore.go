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

// RedisSessionStore persists each conversation as a Redis list: one JSON
// turn per element, append-only, insertion order preserved.
type RedisSessionStore struct {
	store  *redisStore.Store
	logger *logger_i.Logger
}

func GetRedisSessionStore(ctx context.Context) *RedisSessionStore {
	inner := redisStore.GetRedisStore(ctx, config.RedisSessionStore)
	if inner == nil {
		return nil
	}
	return &RedisSessionStore{
		store:  inner,
		logger: logger_i.NewLogger("SessionStore"),
	}
}

func (s *RedisSessionStore) ValidateChatId(ctx context.Context, chatId string) bool {
	found, err := s.store.Exists(ctx, sessionKey(chatId))
	if err != nil {
		s.logger.Error("Error validating chat id", "chatId", chatId, "error", err)
		return false
	}
	return found
}

func (s *RedisSessionStore) InitNewChat(ctx context.Context, chatId string) error {
	// seed with an empty system turn marker so Exists() sees the chat
	marker, _ := json.Marshal(commonModels.Turn{Role: commonModels.RoleSystem, Content: ""})
	if err := s.store.ListPush(ctx, sessionKey(chatId), marker); err != nil {
		return fmt.Errorf("init chat %s: %w", chatId, err)
	}
	return s.store.Expire(ctx, sessionKey(chatId), config.RedisSessionStoreTTL)
}

func (s *RedisSessionStore) AppendTurns(ctx context.Context, chatId string, turns []commonModels.Turn) error {
	if len(turns) == 0 {
		return nil
	}
	values := make([]interface{}, 0, len(turns))
	for _, turn := range turns {
		data, err := json.Marshal(turn)
		if err != nil {
			return err
		}
		values = append(values, data)
	}
	if err := s.store.ListPush(ctx, sessionKey(chatId), values...); err != nil {
		return fmt.Errorf("append turns to chat %s: %w", chatId, err)
	}
	return s.store.Expire(ctx, sessionKey(chatId), config.RedisSessionStoreTTL)
}

func (s *RedisSessionStore) GetHistory(ctx context.Context, chatId string) ([]commonModels.Turn, error) {
	raw, err := s.store.ListGetAll(ctx, sessionKey(chatId))
	if err != nil {
		return nil, fmt.Errorf("load history for chat %s: %w", chatId, err)
	}

	turns := make([]commonModels.Turn, 0, len(raw))
	for _, item := range raw {
		var turn commonModels.Turn
		if err := json.Unmarshal([]byte(item), &turn); err != nil {
			s.logger.Error("Corrupt turn in session list", "chatId", chatId, "error", err)
			continue
		}
		if turn.Role == commonModels.RoleSystem && turn.Content == "" {
			continue // init marker
		}
		turns = append(turns, turn)
	}
	return turns, nil
}

func sessionKey(chatId string) string {
	return "session:" + chatId
}

func TestSessionStore(store *redisStore.Store) *RedisSessionStore {
	return &RedisSessionStore{
		store:  store,
		logger: logger_i.NewLogger("test session"),
	}
}
