package mcp

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/akolanti/GoRAG/internal/domain/faults"
)

// RetrieveInput is the input schema for the retrieve tool.
type RetrieveInput struct {
	Query string `json:"query" jsonschema:"the question to find relevant document chunks for"`
	TopK  int    `json:"top_k,omitempty" jsonschema:"maximum number of chunks to return"`
}

// RetrieveOutput is the output schema for the retrieve tool.
type RetrieveOutput struct {
	Chunks []ChunkOutput `json:"chunks"`
	Count  int           `json:"count"`
}

// ChunkOutput is a single retrieved chunk.
type ChunkOutput struct {
	ChunkId  string  `json:"chunk_id"`
	Document string  `json:"document"`
	Text     string  `json:"text"`
	Score    float32 `json:"score"`
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "retrieve",
		Description: "Retrieve the document chunks most relevant to a question",
	}, s.handleRetrieve)
}

func (s *Server) handleRetrieve(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RetrieveInput,
) (*mcp.CallToolResult, RetrieveOutput, error) {
	topK := input.TopK
	if topK <= 0 {
		topK = s.topK
	}

	results, err := s.retriever.Retrieve(ctx, input.Query, topK)
	if err != nil {
		if errors.Is(err, faults.ErrEmptyIndex) {
			// Nothing ingested yet is a normal state for a fresh server.
			return nil, RetrieveOutput{Chunks: []ChunkOutput{}}, nil
		}
		return nil, RetrieveOutput{}, err
	}

	output := RetrieveOutput{
		Chunks: make([]ChunkOutput, len(results)),
		Count:  len(results),
	}
	for i, item := range results {
		document := item.Chunk.DocName
		if document == "" {
			document = item.Chunk.DocId
		}
		output.Chunks[i] = ChunkOutput{
			ChunkId:  item.Chunk.ChunkId,
			Document: document,
			Text:     item.Chunk.Text,
			Score:    item.Score,
		}
	}
	return nil, output, nil
}
