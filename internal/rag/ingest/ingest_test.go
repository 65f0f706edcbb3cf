package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/akolanti/GoRAG/internal/config"
	"github.com/akolanti/GoRAG/internal/domain/commonModels"
	"github.com/akolanti/GoRAG/internal/domain/faults"
	"github.com/akolanti/GoRAG/internal/rag/chunker"
)

type mockEmbedder struct {
	OnEmbed func(ctx context.Context, texts []string) ([][]float32, error)
}

func (m *mockEmbedder) GetEmbedding(ctx context.Context, text string) ([]float32, error) {
	vectors, err := m.OnEmbed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (m *mockEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	return m.OnEmbed(ctx, texts)
}

type recordingIndex struct {
	entries []commonModels.IndexEntry
	fail    error
}

func (r *recordingIndex) Insert(ctx context.Context, entries []commonModels.IndexEntry) error {
	if r.fail != nil {
		return r.fail
	}
	r.entries = append(r.entries, entries...)
	return nil
}

func (r *recordingIndex) Query(ctx context.Context, vector []float32, k int) ([]commonModels.Match, error) {
	return nil, faults.ErrEmptyIndex
}

func (r *recordingIndex) Delete(ctx context.Context, chunkId string) error { return nil }

type recordingChunkStore struct {
	saved []commonModels.Chunk
}

func (r *recordingChunkStore) SaveChunks(ctx context.Context, chunks []commonModels.Chunk) error {
	r.saved = append(r.saved, chunks...)
	return nil
}

func (r *recordingChunkStore) GetChunks(ctx context.Context, ids []string) ([]commonModels.Chunk, error) {
	return nil, errors.New("not implemented")
}

func (r *recordingChunkStore) DeleteChunk(ctx context.Context, id string) {}

func fixedEmbedder() *mockEmbedder {
	return &mockEmbedder{
		OnEmbed: func(ctx context.Context, texts []string) ([][]float32, error) {
			vectors := make([][]float32, len(texts))
			for i := range texts {
				vectors[i] = []float32{float32(len(texts[i])), 1}
			}
			return vectors, nil
		},
	}
}

func testPipeline(t *testing.T, e *mockEmbedder, index *recordingIndex, store *recordingChunkStore) *Pipeline {
	t.Helper()
	ch, err := chunker.New(chunker.Config{MaxChunkSize: 20, Overlap: 5})
	if err != nil {
		t.Fatalf("building chunker: %v", err)
	}
	p, err := NewPipeline(ch, e, index, store, 2)
	if err != nil {
		t.Fatalf("building pipeline: %v", err)
	}
	return p
}

func TestIngestDocumentIndexesEveryChunk(t *testing.T) {
	index := &recordingIndex{}
	store := &recordingChunkStore{}
	p := testPipeline(t, fixedEmbedder(), index, store)

	doc := commonModels.Document{Id: "doc-1", Name: "notes.txt", Text: "The sky is blue. Grass is green."}
	count, err := p.IngestDocument(context.Background(), doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count == 0 {
		t.Fatal("expected chunks to be indexed")
	}
	if len(index.entries) != count || len(store.saved) != count {
		t.Fatalf("index has %d entries, store has %d chunks, want %d each", len(index.entries), len(store.saved), count)
	}
	for i, entry := range index.entries {
		if entry.ChunkId != store.saved[i].ChunkId {
			t.Fatalf("entry %d id %q does not match stored chunk %q", i, entry.ChunkId, store.saved[i].ChunkId)
		}
		if entry.Payload["docId"] != "doc-1" || entry.Payload["docName"] != "notes.txt" {
			t.Fatalf("entry %d payload wrong: %v", i, entry.Payload)
		}
	}
}

func TestIngestDocumentEmptyDoc(t *testing.T) {
	index := &recordingIndex{}
	store := &recordingChunkStore{}
	p := testPipeline(t, fixedEmbedder(), index, store)

	count, err := p.IngestDocument(context.Background(), commonModels.Document{Id: "doc-1", Text: ""})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 0 || len(index.entries) != 0 || len(store.saved) != 0 {
		t.Fatalf("empty document must not index anything")
	}
}

func TestIngestDocumentPropagatesEmbedderError(t *testing.T) {
	wantErr := faults.Transient("embed batch", errors.New("quota"))
	e := &mockEmbedder{
		OnEmbed: func(ctx context.Context, texts []string) ([][]float32, error) {
			return nil, wantErr
		},
	}
	index := &recordingIndex{}
	p := testPipeline(t, e, index, &recordingChunkStore{})

	doc := commonModels.Document{Id: "doc-1", Text: strings.Repeat("words and more ", 10)}
	_, err := p.IngestDocument(context.Background(), doc)
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected embedder error passed through, got %v", err)
	}
	if len(index.entries) != 0 {
		t.Fatalf("nothing should reach the index when embedding fails")
	}
}

func TestIngestFilePlaintext(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(path, []byte("The sky is blue. Grass is green."), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	index := &recordingIndex{}
	store := &recordingChunkStore{}
	p := testPipeline(t, fixedEmbedder(), index, store)

	count, err := p.IngestFile(context.Background(), "doc-1", "notes.txt", path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count == 0 {
		t.Fatal("expected chunks from the file")
	}

	if !strings.HasPrefix(store.saved[0].Text, "The sky") {
		t.Fatalf("first chunk should start the document, got %q", store.saved[0].Text)
	}
	if !strings.HasSuffix(store.saved[len(store.saved)-1].Text, "green.") {
		t.Fatalf("last chunk should end the document, got %q", store.saved[len(store.saved)-1].Text)
	}
}

func TestIngestFileRejectsUnknownExtension(t *testing.T) {
	p := testPipeline(t, fixedEmbedder(), &recordingIndex{}, &recordingChunkStore{})
	_, err := p.IngestFile(context.Background(), "doc-1", "image", "/tmp/image.png")
	if !errors.Is(err, faults.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig for unknown extension, got %v", err)
	}
}

func TestGetDocType(t *testing.T) {
	tests := []struct {
		path string
		want commonModels.DocType
	}{
		{"report.pdf", commonModels.PDF},
		{"report.PDF", commonModels.PDF},
		{"notes.docx", commonModels.DOCX},
		{"notes.odt", commonModels.DOCX},
		{"notes.rtf", commonModels.DOCX},
		{"readme.txt", commonModels.TXT},
		{"readme.md", commonModels.TXT},
		{"image.png", commonModels.ERR},
		{"noextension", commonModels.ERR},
	}
	for _, tc := range tests {
		if got := getDocType(tc.path); got != tc.want {
			t.Errorf("getDocType(%q) = %s, want %s", tc.path, got, tc.want)
		}
	}
}

func TestNewPipelineValidation(t *testing.T) {
	ch, _ := chunker.New(chunker.Config{MaxChunkSize: config.MaxChunkSize, Overlap: config.ChunkOverlap})
	_, err := NewPipeline(ch, fixedEmbedder(), &recordingIndex{}, &recordingChunkStore{}, 0)
	if !errors.Is(err, faults.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig for zero batch size, got %v", err)
	}
	_, err = NewPipeline(nil, fixedEmbedder(), &recordingIndex{}, &recordingChunkStore{}, 10)
	if !errors.Is(err, faults.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig for nil chunker, got %v", err)
	}
}
