package chunker

import (
	"fmt"
	"iter"
	"strconv"

	"github.com/akolanti/GoRAG/internal/domain/commonModels"
	"github.com/akolanti/GoRAG/internal/domain/faults"
)

// Config bounds the sliding window. Overlap is the number of bytes repeated
// between consecutive chunks.
type Config struct {
	MaxChunkSize int
	Overlap      int
}

// Chunker splits a document into fixed-stride windows that cover the text
// with no gaps. Concatenating the output with overlaps removed reconstructs
// the document exactly. Pure: no side effects, restartable.
type Chunker struct {
	cfg Config
}

func New(cfg Config) (*Chunker, error) {
	if cfg.MaxChunkSize <= 0 {
		return nil, fmt.Errorf("%w: max chunk size must be positive, got %d", faults.ErrInvalidConfig, cfg.MaxChunkSize)
	}
	if cfg.Overlap < 0 || cfg.Overlap >= cfg.MaxChunkSize {
		return nil, fmt.Errorf("%w: overlap %d must be in [0, %d)", faults.ErrInvalidConfig, cfg.Overlap, cfg.MaxChunkSize)
	}
	return &Chunker{cfg: cfg}, nil
}

// Chunks returns a lazy sequence over the document's chunks. Each returned
// sequence starts from the beginning, so ranging twice is safe.
// Offsets are byte offsets into doc.Text. Chunk IDs are deterministic
// ("<docID>:<seq>") so re-chunking the same document is idempotent downstream.
func (c *Chunker) Chunks(doc commonModels.Document) iter.Seq[commonModels.Chunk] {
	stride := c.cfg.MaxChunkSize - c.cfg.Overlap
	return func(yield func(commonModels.Chunk) bool) {
		text := doc.Text
		seq := 0
		for start := 0; start < len(text); start += stride {
			end := start + c.cfg.MaxChunkSize
			if end > len(text) {
				end = len(text)
			}
			chunk := commonModels.Chunk{
				ChunkId: doc.Id + ":" + strconv.Itoa(seq),
				DocId:   doc.Id,
				DocName: doc.Name,
				Text:    text[start:end],
				Start:   start,
				End:     end,
				Seq:     seq,
			}
			if !yield(chunk) {
				return
			}
			if end == len(text) {
				return
			}
			seq++
		}
	}
}

// Split materializes the full chunk sequence.
func (c *Chunker) Split(doc commonModels.Document) []commonModels.Chunk {
	var chunks []commonModels.Chunk
	for chunk := range c.Chunks(doc) {
		chunks = append(chunks, chunk)
	}
	return chunks
}
