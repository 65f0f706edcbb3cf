package qdrantDB

import (
	"context"
	"time"

	"github.com/qdrant/go-client/qdrant"
)

const (
	cacheCollection = "semantic-cache"
	cacheCutoff     = 0.97
)

// GetCachedAnswer checks whether a semantically equivalent question was
// answered before. The cutoff lives with the caller's config; 0.97 is a safe
// "same question" score for cosine distance.
func (s *Store) GetCachedAnswer(ctx context.Context, queryVector []float32) (string, bool, error) {
	result, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: cacheCollection,
		Query:          qdrant.NewQuery(queryVector...),
		Limit:          qdrant.PtrOf(uint64(1)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		s.logger.Error("Cache Query failed", "error", err)
		return "", false, err
	}
	if len(result) == 0 {
		return "", false, nil
	}

	if result[0].Score < cacheCutoff {
		return "", false, nil
	}

	s.logger.Debug("semantic cache hit", "score", result[0].Score)
	return result[0].Payload["answer"].GetStringValue(), true, nil
}

func (s *Store) SaveToCache(ctx context.Context, id string, vector []float32, answer string) error {
	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: cacheCollection,
		Points: []*qdrant.PointStruct{
			{
				Id:      qdrant.NewID(id),
				Vectors: qdrant.NewVectors(vector...),
				Payload: qdrant.NewValueMap(map[string]any{
					"answer":    answer,
					"timestamp": time.Now().Unix(),
				}),
			},
		},
	})
	if err != nil {
		s.logger.Error("Saving answer to cache failed", "error", err)
	}
	return err
}
