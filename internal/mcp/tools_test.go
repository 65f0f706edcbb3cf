package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/akolanti/GoRAG/internal/domain/commonModels"
	"github.com/akolanti/GoRAG/internal/domain/faults"
	"github.com/akolanti/GoRAG/internal/rag/retriever"
)

type stubEmbedder struct{}

func (stubEmbedder) GetEmbedding(ctx context.Context, text string) ([]float32, error) {
	return []float32{1, 0}, nil
}

func (s stubEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0}
	}
	return out, nil
}

type stubIndex struct {
	matches []commonModels.Match
	err     error
}

func (s *stubIndex) Insert(ctx context.Context, entries []commonModels.IndexEntry) error {
	return nil
}

func (s *stubIndex) Query(ctx context.Context, vector []float32, k int) ([]commonModels.Match, error) {
	if s.err != nil {
		return nil, s.err
	}
	if k < len(s.matches) {
		return s.matches[:k], nil
	}
	return s.matches, nil
}

func (s *stubIndex) Delete(ctx context.Context, chunkId string) error { return nil }

type stubChunkStore struct{}

func (stubChunkStore) SaveChunks(ctx context.Context, chunks []commonModels.Chunk) error { return nil }

func (stubChunkStore) GetChunks(ctx context.Context, ids []string) ([]commonModels.Chunk, error) {
	chunks := make([]commonModels.Chunk, len(ids))
	for i, id := range ids {
		chunks[i] = commonModels.Chunk{ChunkId: id, DocName: "guide.pdf", Text: "text " + id}
	}
	return chunks, nil
}

func (stubChunkStore) DeleteChunk(ctx context.Context, id string) {}

func newTestServer(t *testing.T, index *stubIndex) *Server {
	t.Helper()
	r, err := retriever.New(stubEmbedder{}, index, stubChunkStore{})
	if err != nil {
		t.Fatalf("building retriever: %v", err)
	}
	s, err := NewServer(r, 3)
	if err != nil {
		t.Fatalf("building server: %v", err)
	}
	return s
}

func TestHandleRetrieve(t *testing.T) {
	index := &stubIndex{matches: []commonModels.Match{
		{ChunkId: "doc:0", Score: 0.9},
		{ChunkId: "doc:1", Score: 0.5},
	}}
	s := newTestServer(t, index)

	_, output, err := s.handleRetrieve(context.Background(), nil, RetrieveInput{Query: "q"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if output.Count != 2 {
		t.Fatalf("expected 2 chunks, got %d", output.Count)
	}
	if output.Chunks[0].ChunkId != "doc:0" || output.Chunks[0].Document != "guide.pdf" {
		t.Fatalf("wrong top chunk: %+v", output.Chunks[0])
	}
	if output.Chunks[0].Score != 0.9 {
		t.Fatalf("score lost: %+v", output.Chunks[0])
	}
}

func TestHandleRetrieveRespectsTopK(t *testing.T) {
	index := &stubIndex{matches: []commonModels.Match{
		{ChunkId: "doc:0", Score: 0.9},
		{ChunkId: "doc:1", Score: 0.5},
		{ChunkId: "doc:2", Score: 0.1},
	}}
	s := newTestServer(t, index)

	_, output, err := s.handleRetrieve(context.Background(), nil, RetrieveInput{Query: "q", TopK: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if output.Count != 1 {
		t.Fatalf("topK ignored, got %d chunks", output.Count)
	}
}

func TestHandleRetrieveEmptyIndex(t *testing.T) {
	s := newTestServer(t, &stubIndex{err: faults.ErrEmptyIndex})

	_, output, err := s.handleRetrieve(context.Background(), nil, RetrieveInput{Query: "q"})
	if err != nil {
		t.Fatalf("an empty index should not be a tool error: %v", err)
	}
	if len(output.Chunks) != 0 {
		t.Fatalf("expected no chunks, got %+v", output.Chunks)
	}
}

func TestHandleRetrievePropagatesFailures(t *testing.T) {
	s := newTestServer(t, &stubIndex{err: faults.Transient("query index", errors.New("down"))})

	_, _, err := s.handleRetrieve(context.Background(), nil, RetrieveInput{Query: "q"})
	if !faults.IsTransient(err) {
		t.Fatalf("expected transient error, got %v", err)
	}
}
