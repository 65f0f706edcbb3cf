package ingest

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/akolanti/GoRAG/internal/domain/commonModels"
	"github.com/akolanti/GoRAG/internal/domain/faults"
	"github.com/akolanti/GoRAG/internal/domain/jobModel"
	"github.com/akolanti/GoRAG/internal/metrics"
	"github.com/akolanti/GoRAG/internal/rag/chunker"
	"github.com/akolanti/GoRAG/internal/rag/embedding"
	"github.com/akolanti/GoRAG/internal/rag/vectorDB"
	"github.com/akolanti/GoRAG/pkg/logger_i"
)

// rawPage is one extracted page of a source file before chunking.
type rawPage struct {
	Number  int    `json:"number"`
	Content string `json:"content"`
}

var logger = logger_i.NewLogger("Document Ingestion")

// Pipeline turns source files into indexed, retrievable chunks: extract
// text, split it, persist the chunks, embed them and insert the vectors.
// Chunks are saved to the chunk store before their vectors reach the index
// so the index never references an unresolvable ID.
type Pipeline struct {
	chunker    *chunker.Chunker
	embedder   embedding.Embedder
	index      vectorDB.Index
	chunkStore commonModels.ChunkStore
	batchSize  int
}

func NewPipeline(ch *chunker.Chunker, e embedding.Embedder, index vectorDB.Index, chunkStore commonModels.ChunkStore, batchSize int) (*Pipeline, error) {
	if ch == nil || e == nil || index == nil || chunkStore == nil {
		return nil, fmt.Errorf("ingestion pipeline is missing a dependency: %w", faults.ErrInvalidConfig)
	}
	if batchSize <= 0 {
		return nil, fmt.Errorf("ingestion batch size must be positive: %w", faults.ErrInvalidConfig)
	}
	return &Pipeline{
		chunker:    ch,
		embedder:   e,
		index:      index,
		chunkStore: chunkStore,
		batchSize:  batchSize,
	}, nil
}

// IngestDocument chunks and indexes an already-extracted document. Returns
// the number of chunks indexed. Embedding and index errors abort the run and
// pass through unchanged; batches already written stay written, re-ingesting
// the same document overwrites them chunk by chunk.
func (p *Pipeline) IngestDocument(ctx context.Context, doc commonModels.Document) (int, error) {
	chunks := p.chunker.Split(doc)
	if len(chunks) == 0 {
		logger.Info("document produced no chunks", "doc", doc.Id)
		return 0, nil
	}

	for start := 0; start < len(chunks); start += p.batchSize {
		end := min(start+p.batchSize, len(chunks))
		batch := chunks[start:end]

		if err := p.chunkStore.SaveChunks(ctx, batch); err != nil {
			return start, fmt.Errorf("saving chunk batch at %d: %w", start, err)
		}

		texts := make([]string, len(batch))
		for i, c := range batch {
			texts[i] = c.Text
		}
		vectors, err := p.embedder.Embed(ctx, texts)
		if err != nil {
			return start, err
		}

		entries := make([]commonModels.IndexEntry, len(batch))
		for i, c := range batch {
			entries[i] = commonModels.IndexEntry{
				ChunkId: c.ChunkId,
				Vector:  vectors[i],
				Payload: map[string]string{
					"docId":   c.DocId,
					"docName": c.DocName,
				},
			}
		}
		if err := p.index.Insert(ctx, entries); err != nil {
			return start, err
		}
	}

	metrics.AddIngestedChunks(len(chunks))
	logger.Info("document indexed", "doc", doc.Id, "chunks", len(chunks))
	return len(chunks), nil
}

// IngestFile extracts a file from disk and ingests its text. The file type
// is inferred from the extension.
func (p *Pipeline) IngestFile(ctx context.Context, docId string, docName string, path string) (int, error) {
	docType := getDocType(path)
	if docType == commonModels.ERR {
		return 0, fmt.Errorf("unsupported file type for %q: %w", path, faults.ErrInvalidConfig)
	}

	pages, err := extractText(path, docType)
	if err != nil {
		return 0, err
	}

	contents := make([]string, len(pages))
	for i, page := range pages {
		contents[i] = page.Content
	}

	doc := commonModels.Document{
		Id:          docId,
		Name:        docName,
		Text:        strings.Join(contents, "\n\n"),
		IngestedAt:  time.Now(),
		ContentType: docType,
	}
	return p.IngestDocument(ctx, doc)
}

// ProcessDocumentIngestion runs one ingestion job end to end and reports the
// outcome on the job itself. The uploaded temp file is removed afterwards,
// success or not.
func ProcessDocumentIngestion(ctx context.Context, job jobModel.Job, p *Pipeline) jobModel.Job {
	job.CurrentStep = jobModel.IngestProcessing

	count, err := p.IngestFile(ctx, job.Id, job.JobPayload.IngestFileName, job.JobPayload.IngestURL)
	if removeErr := os.Remove(job.JobPayload.IngestURL); removeErr != nil {
		logger.Warn("failed to remove uploaded file", "path", job.JobPayload.IngestURL, "error", removeErr)
	}
	if err != nil {
		logger.Error("ingestion failed", "jobId", job.Id, "error", err)
		job.Status = jobModel.JobStatusError
		job.Error.Message = "document ingestion failed"
		job.Error.Retry = faults.IsTransient(err)
		return job
	}

	job.Status = jobModel.JobStatusComplete
	job.CurrentStep = jobModel.Complete
	logger.Info("ingestion complete", "jobId", job.Id, "chunks", count)
	return job
}
