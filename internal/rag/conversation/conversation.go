package conversation

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/akolanti/GoRAG/internal/domain/commonModels"
	"github.com/akolanti/GoRAG/internal/domain/faults"
	"github.com/akolanti/GoRAG/internal/rag/assembler"
	"github.com/akolanti/GoRAG/internal/rag/llm"
	"github.com/akolanti/GoRAG/internal/rag/retriever"
	"github.com/akolanti/GoRAG/pkg/logger_i"
)

// Phase is where a conversation currently is inside a turn. Exposed for
// observability only; transitions are driven entirely by Turn.
type Phase string

const (
	PhaseIdle          Phase = "idle"
	PhaseRetrieving    Phase = "retrieving"
	PhaseAssembling    Phase = "assembling"
	PhaseAwaitingModel Phase = "awaiting_model"
)

type Config struct {
	Template    string
	TopK        int
	TokenBudget int
	// SessionStore is optional. When set, successful turns are persisted
	// after the in-memory history is updated; persistence failures are
	// logged, not surfaced, since the turn itself succeeded.
	SessionStore commonModels.SessionStore
}

// Result is one answered turn.
type Result struct {
	Answer  string
	Sources []commonModels.Chunk
}

// Conversation owns one append-only turn history and runs the
// retrieve/assemble/generate pipeline against it. A turn either completes
// fully, appending exactly the user and assistant turns, or leaves the
// history untouched. Concurrent Turn calls are serialized; callers queue.
type Conversation struct {
	id        string
	retriever *retriever.Retriever
	provider  llm.Provider
	cfg       Config

	mu      sync.Mutex
	history []commonModels.Turn
	phase   atomic.Value
	logger  *logger_i.Logger
}

func New(id string, r *retriever.Retriever, provider llm.Provider, cfg Config) (*Conversation, error) {
	if id == "" || r == nil || provider == nil {
		return nil, fmt.Errorf("conversation needs an id, a retriever and a provider: %w", faults.ErrInvalidConfig)
	}
	if cfg.TopK <= 0 || cfg.TokenBudget <= 0 {
		return nil, fmt.Errorf("topK and tokenBudget must be positive: %w", faults.ErrInvalidConfig)
	}
	c := &Conversation{
		id:        id,
		retriever: r,
		provider:  provider,
		cfg:       cfg,
		logger:    logger_i.NewLogger("Conversation").With("chatId", id),
	}
	c.phase.Store(PhaseIdle)
	return c, nil
}

// Resume seeds a conversation with previously persisted history, e.g. after
// a restart. The slice is copied.
func Resume(id string, r *retriever.Retriever, provider llm.Provider, cfg Config, history []commonModels.Turn) (*Conversation, error) {
	c, err := New(id, r, provider, cfg)
	if err != nil {
		return nil, err
	}
	c.history = append(c.history, history...)
	return c, nil
}

// Turn runs one full pipeline pass for the user's query. On any failure the
// conversation history is exactly as before the call; the caller may
// resubmit the same query, there is no internal retry.
func (c *Conversation) Turn(ctx context.Context, query string) (Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	defer c.phase.Store(PhaseIdle)

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	c.phase.Store(PhaseRetrieving)
	retrieved, err := c.retriever.Retrieve(ctx, query, c.cfg.TopK)
	if err != nil {
		return Result{}, err
	}

	c.phase.Store(PhaseAssembling)
	prompt := assembler.Assemble(c.cfg.Template, retrieved, c.history, query, c.cfg.TokenBudget)

	c.phase.Store(PhaseAwaitingModel)
	answer, err := c.provider.Generate(ctx, prompt)
	if err != nil {
		return Result{}, err
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	turns := []commonModels.Turn{
		{Role: commonModels.RoleUser, Content: query},
		{Role: commonModels.RoleAssistant, Content: answer},
	}
	c.history = append(c.history, turns...)

	if c.cfg.SessionStore != nil {
		if err := c.cfg.SessionStore.AppendTurns(ctx, c.id, turns); err != nil {
			c.logger.Warn("failed to persist turns", "error", err)
		}
	}

	sources := make([]commonModels.Chunk, len(retrieved))
	for i, item := range retrieved {
		sources[i] = item.Chunk
	}
	return Result{Answer: answer, Sources: sources}, nil
}

// History returns a copy of the turn log, oldest first.
func (c *Conversation) History() []commonModels.Turn {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]commonModels.Turn, len(c.history))
	copy(out, c.history)
	return out
}

// CurrentPhase reports where an in-flight turn is, or PhaseIdle between
// turns. Safe to call while another goroutine holds the turn.
func (c *Conversation) CurrentPhase() Phase {
	return c.phase.Load().(Phase)
}

func (c *Conversation) Id() string { return c.id }
