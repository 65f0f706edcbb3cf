package chunker

import (
	"errors"
	"strings"
	"testing"

	"github.com/akolanti/GoRAG/internal/domain/commonModels"
	"github.com/akolanti/GoRAG/internal/domain/faults"
)

func TestNew_ConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", Config{MaxChunkSize: 100, Overlap: 10}, false},
		{"zero overlap", Config{MaxChunkSize: 100, Overlap: 0}, false},
		{"zero size", Config{MaxChunkSize: 0, Overlap: 0}, true},
		{"negative size", Config{MaxChunkSize: -5, Overlap: 0}, true},
		{"overlap equals size", Config{MaxChunkSize: 20, Overlap: 20}, true},
		{"overlap above size", Config{MaxChunkSize: 20, Overlap: 25}, true},
		{"negative overlap", Config{MaxChunkSize: 20, Overlap: -1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg)
			if tt.wantErr {
				if !errors.Is(err, faults.ErrInvalidConfig) {
					t.Errorf("expected ErrInvalidConfig, got %v", err)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestSplit_Reconstruction(t *testing.T) {
	// Concatenating chunks with overlaps removed must reconstruct the document.
	tests := []struct {
		name string
		text string
		cfg  Config
	}{
		{"spec scenario", "The sky is blue. Grass is green.", Config{MaxChunkSize: 20, Overlap: 5}},
		{"no overlap", strings.Repeat("abcdefgh", 37), Config{MaxChunkSize: 16, Overlap: 0}},
		{"heavy overlap", strings.Repeat("x y z. ", 100), Config{MaxChunkSize: 50, Overlap: 40}},
		{"single chunk", "short", Config{MaxChunkSize: 1000, Overlap: 150}},
		{"exact fit", strings.Repeat("a", 20), Config{MaxChunkSize: 20, Overlap: 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.cfg)
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			doc := commonModels.Document{Id: "doc-1", Text: tt.text}
			chunks := c.Split(doc)
			if len(chunks) == 0 {
				t.Fatal("expected at least one chunk")
			}

			var sb strings.Builder
			for i, chunk := range chunks {
				if i == 0 {
					sb.WriteString(chunk.Text)
					continue
				}
				sb.WriteString(chunk.Text[tt.cfg.Overlap:])
			}
			if sb.String() != tt.text {
				t.Errorf("reconstruction mismatch:\ngot  %q\nwant %q", sb.String(), tt.text)
			}
		})
	}
}

func TestSplit_OffsetsAndOverlap(t *testing.T) {
	c, err := New(Config{MaxChunkSize: 20, Overlap: 5})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	doc := commonModels.Document{Id: "d", Text: "The sky is blue. Grass is green."}
	chunks := c.Split(doc)

	for i, chunk := range chunks {
		if chunk.Start < 0 || chunk.End > len(doc.Text) || chunk.Start >= chunk.End {
			t.Errorf("chunk %d has invalid offsets [%d, %d)", i, chunk.Start, chunk.End)
		}
		if doc.Text[chunk.Start:chunk.End] != chunk.Text {
			t.Errorf("chunk %d text does not match its offsets", i)
		}
		if i > 0 {
			prev := chunks[i-1]
			if prev.End-chunk.Start != 5 {
				t.Errorf("chunk %d overlaps previous by %d bytes, want 5", i, prev.End-chunk.Start)
			}
		}
	}
}

func TestSplit_EmptyDocument(t *testing.T) {
	c, _ := New(Config{MaxChunkSize: 20, Overlap: 5})
	chunks := c.Split(commonModels.Document{Id: "empty", Text: ""})
	if len(chunks) != 0 {
		t.Errorf("expected no chunks for empty document, got %d", len(chunks))
	}
}

func TestChunks_Restartable(t *testing.T) {
	c, _ := New(Config{MaxChunkSize: 10, Overlap: 2})
	doc := commonModels.Document{Id: "d", Text: strings.Repeat("hello ", 20)}
	seq := c.Chunks(doc)

	count := func() int {
		n := 0
		for range seq {
			n++
		}
		return n
	}
	first, second := count(), count()
	if first == 0 || first != second {
		t.Errorf("sequence not restartable: first pass %d, second pass %d", first, second)
	}

	// Early break must not panic or leak.
	for range seq {
		break
	}
}

func TestSplit_DeterministicIds(t *testing.T) {
	c, _ := New(Config{MaxChunkSize: 10, Overlap: 0})
	doc := commonModels.Document{Id: "doc-9", Text: "aaaaaaaaaabbbbbbbbbb"}
	chunks := c.Split(doc)
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if chunks[0].ChunkId != "doc-9:0" || chunks[1].ChunkId != "doc-9:1" {
		t.Errorf("unexpected chunk ids %q, %q", chunks[0].ChunkId, chunks[1].ChunkId)
	}
}
