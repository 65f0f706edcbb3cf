package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/akolanti/GoRAG/internal/domain/faults"
	"github.com/akolanti/GoRAG/internal/rag/retriever"
	"github.com/akolanti/GoRAG/pkg/logger_i"
)

const version = "1.0.0"

// Server exposes the retrieval pipeline to MCP clients over stdio, so an
// agent can search the indexed documents without going through the HTTP API.
type Server struct {
	retriever *retriever.Retriever
	topK      int
	server    *mcp.Server
	logger    *logger_i.Logger
}

func NewServer(r *retriever.Retriever, defaultTopK int) (*Server, error) {
	if r == nil || defaultTopK <= 0 {
		return nil, fmt.Errorf("mcp server needs a retriever and a positive default topK: %w", faults.ErrInvalidConfig)
	}

	impl := &mcp.Implementation{
		Name:    "gorag",
		Version: version,
	}

	s := &Server{
		retriever: r,
		topK:      defaultTopK,
		server:    mcp.NewServer(impl, nil),
		logger:    logger_i.NewLogger("MCP Server"),
	}
	s.registerTools()
	return s, nil
}

// Run serves MCP over stdio until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("MCP server listening on stdio")
	return s.server.Run(ctx, &mcp.StdioTransport{})
}
