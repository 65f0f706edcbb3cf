package commonModels

import (
	"context"
	"time"
)

// Document is raw text plus a source identifier. Immutable once ingested.
type Document struct {
	Id          string    `json:"source_doc_id"`
	Name        string    `json:"doc_name"`
	Text        string    `json:"-"`
	IngestedAt  time.Time `json:"ingested_at"`
	ContentType DocType   `json:"content_type"`
}

// Chunk is a substring of a Document. Start and End are byte offsets into
// the source text, always valid within the document's length. Never mutated
// after creation by the chunker.
type Chunk struct {
	ChunkId string `json:"chunk_id"`
	DocId   string `json:"source_doc_id"`
	DocName string `json:"doc_name"`
	Text    string `json:"content"`
	Start   int    `json:"start"`
	End     int    `json:"end"`
	Seq     int    `json:"chunk_order"`
}

// IndexEntry is what the vector index owns: a chunk identifier, its
// embedding, and a metadata payload.
type IndexEntry struct {
	ChunkId string
	Vector  []float32
	Payload map[string]string
}

// Match is a single nearest-neighbour result.
type Match struct {
	ChunkId string
	Score   float32
}

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one (role, content) pair in a conversation.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

type DocType string

var (
	PDF  DocType = "PDF"
	DOCX DocType = "DOCX"
	TXT  DocType = "TXT"
	ERR  DocType = "ERROR"
)

// ChunkStore resolves chunk identifiers back to chunk content. The retriever
// only reads; ingestion writes.
type ChunkStore interface {
	SaveChunks(ctx context.Context, chunks []Chunk) error
	GetChunks(ctx context.Context, ids []string) ([]Chunk, error)
	DeleteChunk(ctx context.Context, id string)
}

// SessionStore persists the ordered turn log of a conversation between
// requests. Append-only: turns are never reordered or deleted.
type SessionStore interface {
	ValidateChatId(ctx context.Context, id string) bool
	InitNewChat(ctx context.Context, id string) error
	AppendTurns(ctx context.Context, id string, turns []Turn) error
	GetHistory(ctx context.Context, id string) ([]Turn, error)
}
