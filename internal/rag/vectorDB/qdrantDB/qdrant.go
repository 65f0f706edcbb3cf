package qdrantDB

import (
	"context"
	"errors"
	"fmt"

	"github.com/akolanti/GoRAG/internal/domain/commonModels"
	"github.com/akolanti/GoRAG/internal/domain/faults"
	"github.com/akolanti/GoRAG/pkg/logger_i"
	"github.com/qdrant/go-client/qdrant"
)

type Config struct {
	Host       string
	Port       int
	UseTLS     bool
	PoolSize   uint
	Collection string
	Dimension  int
}

// Store implements vectorDB.Index and vectorDB.AnswerCache on top of Qdrant.
// Dimension checks happen client-side so the contract matches the in-memory
// index; Qdrant enforces them again server-side.
type Store struct {
	client     *qdrant.Client
	collection string
	dimension  int
	logger     *logger_i.Logger
}

func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Collection == "" || cfg.Dimension <= 0 {
		return nil, fmt.Errorf("%w: collection %q dimension %d", faults.ErrInvalidConfig, cfg.Collection, cfg.Dimension)
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:     cfg.Host,
		Port:     cfg.Port,
		UseTLS:   cfg.UseTLS,
		PoolSize: cfg.PoolSize,
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant client: %w", err)
	}

	logger := logger_i.NewLogger("Qdrant")
	s := &Store{client: client, collection: cfg.Collection, dimension: cfg.Dimension, logger: logger}

	if err := s.ensureCollection(ctx, cfg.Collection); err != nil {
		return nil, fmt.Errorf("qdrant collection %q: %w", cfg.Collection, err)
	}
	if err := s.ensureCollection(ctx, cacheCollection); err != nil {
		return nil, fmt.Errorf("qdrant collection %q: %w", cacheCollection, err)
	}

	logger.Info("Qdrant store ready", "collection", cfg.Collection, "dimension", cfg.Dimension)
	return s, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) Insert(ctx context.Context, entries []commonModels.IndexEntry) error {
	for _, entry := range entries {
		if len(entry.Vector) != s.dimension {
			return &faults.DimensionMismatchError{Want: s.dimension, Got: len(entry.Vector)}
		}
	}

	points := make([]*qdrant.PointStruct, len(entries))
	for i, entry := range entries {
		payload := make(map[string]any, len(entry.Payload))
		for key, value := range entry.Payload {
			payload[key] = value
		}
		points[i] = &qdrant.PointStruct{
			Id:      qdrant.NewID(entry.ChunkId),
			Vectors: qdrant.NewVectors(entry.Vector...),
			Payload: qdrant.NewValueMap(payload),
		}
	}

	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collection,
		Points:         points,
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("qdrant upsert failed: %w", err)
	}
	return nil
}

func (s *Store) Query(ctx context.Context, vector []float32, k int) ([]commonModels.Match, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", faults.ErrInvalidConfig, k)
	}
	if len(vector) != s.dimension {
		return nil, &faults.DimensionMismatchError{Want: s.dimension, Got: len(vector)}
	}

	result, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(uint64(k)),
	})
	if err != nil {
		s.logger.Error("Error querying Qdrant: ", "error:", err)
		return nil, err
	}

	if len(result) == 0 {
		count, err := s.client.Count(ctx, &qdrant.CountPoints{
			CollectionName: s.collection,
			Exact:          qdrant.PtrOf(true),
		})
		if err != nil {
			return nil, err
		}
		if count == 0 {
			return nil, faults.ErrEmptyIndex
		}
		return nil, nil
	}

	matches := make([]commonModels.Match, 0, len(result))
	for _, hit := range result {
		matches = append(matches, commonModels.Match{
			ChunkId: hit.Id.GetUuid(),
			Score:   hit.Score,
		})
	}
	return matches, nil
}

func (s *Store) Delete(ctx context.Context, chunkId string) error {
	_, err := s.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: s.collection,
		Points:         qdrant.NewPointsSelector(qdrant.NewID(chunkId)),
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("qdrant delete failed: %w", err)
	}
	return nil
}

func (s *Store) ensureCollection(ctx context.Context, name string) error {
	if name == "" {
		return errors.New("empty collection name")
	}

	exists, err := s.client.CollectionExists(ctx, name)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	return s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: name,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(s.dimension),
			Distance: qdrant.Distance_Cosine,
		}),
	})
}
