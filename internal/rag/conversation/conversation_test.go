package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/akolanti/GoRAG/internal/domain/commonModels"
	"github.com/akolanti/GoRAG/internal/domain/faults"
	"github.com/akolanti/GoRAG/internal/rag/retriever"
)

type mockEmbedder struct {
	OnGetEmbedding func(ctx context.Context, text string) ([]float32, error)
}

func (m *mockEmbedder) GetEmbedding(ctx context.Context, text string) ([]float32, error) {
	return m.OnGetEmbedding(ctx, text)
}

func (m *mockEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := m.OnGetEmbedding(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

type mockIndex struct {
	OnQuery func(ctx context.Context, vector []float32, k int) ([]commonModels.Match, error)
}

func (m *mockIndex) Insert(ctx context.Context, entries []commonModels.IndexEntry) error {
	return nil
}

func (m *mockIndex) Query(ctx context.Context, vector []float32, k int) ([]commonModels.Match, error) {
	return m.OnQuery(ctx, vector, k)
}

func (m *mockIndex) Delete(ctx context.Context, chunkId string) error { return nil }

type mockChunkStore struct{}

func (m *mockChunkStore) SaveChunks(ctx context.Context, chunks []commonModels.Chunk) error {
	return nil
}

func (m *mockChunkStore) GetChunks(ctx context.Context, ids []string) ([]commonModels.Chunk, error) {
	chunks := make([]commonModels.Chunk, len(ids))
	for i, id := range ids {
		chunks[i] = commonModels.Chunk{ChunkId: id, DocName: "doc", Text: "content of " + id}
	}
	return chunks, nil
}

func (m *mockChunkStore) DeleteChunk(ctx context.Context, id string) {}

type mockProvider struct {
	OnGenerate func(ctx context.Context, prompt string) (string, error)
}

func (m *mockProvider) Generate(ctx context.Context, prompt string) (string, error) {
	return m.OnGenerate(ctx, prompt)
}

func okRetriever(t *testing.T) *retriever.Retriever {
	t.Helper()
	embedder := &mockEmbedder{
		OnGetEmbedding: func(ctx context.Context, text string) ([]float32, error) {
			return []float32{1, 0}, nil
		},
	}
	index := &mockIndex{
		OnQuery: func(ctx context.Context, vector []float32, k int) ([]commonModels.Match, error) {
			return []commonModels.Match{{ChunkId: "doc:0", Score: 0.9}}, nil
		},
	}
	r, err := retriever.New(embedder, index, &mockChunkStore{})
	if err != nil {
		t.Fatalf("building retriever: %v", err)
	}
	return r
}

func testConfig() Config {
	return Config{Template: "be helpful", TopK: 3, TokenBudget: 2000}
}

func TestTurnAppendsExactlyOneExchange(t *testing.T) {
	provider := &mockProvider{
		OnGenerate: func(ctx context.Context, prompt string) (string, error) {
			return "the answer", nil
		},
	}
	c, err := New("chat-1", okRetriever(t), provider, testConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, err := c.Turn(context.Background(), "a question")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Answer != "the answer" {
		t.Fatalf("wrong answer: %q", result.Answer)
	}
	if len(result.Sources) != 1 || result.Sources[0].ChunkId != "doc:0" {
		t.Fatalf("sources not reported: %v", result.Sources)
	}

	history := c.History()
	if len(history) != 2 {
		t.Fatalf("expected exactly 2 turns, got %d", len(history))
	}
	if history[0].Role != commonModels.RoleUser || history[0].Content != "a question" {
		t.Fatalf("first appended turn wrong: %+v", history[0])
	}
	if history[1].Role != commonModels.RoleAssistant || history[1].Content != "the answer" {
		t.Fatalf("second appended turn wrong: %+v", history[1])
	}
}

func TestRetrievalFailureLeavesHistoryUnchanged(t *testing.T) {
	embedder := &mockEmbedder{
		OnGetEmbedding: func(ctx context.Context, text string) ([]float32, error) {
			return nil, faults.Transient("embed query", errors.New("quota"))
		},
	}
	r, _ := retriever.New(embedder, &mockIndex{}, &mockChunkStore{})
	provider := &mockProvider{
		OnGenerate: func(ctx context.Context, prompt string) (string, error) {
			t.Fatal("provider must not be called when retrieval fails")
			return "", nil
		},
	}
	c, _ := New("chat-1", r, provider, testConfig())

	_, err := c.Turn(context.Background(), "q")
	if !faults.IsTransient(err) {
		t.Fatalf("expected transient retrieval error, got %v", err)
	}
	if len(c.History()) != 0 {
		t.Fatalf("history must be unchanged after a failed turn")
	}
}

func TestModelFailureLeavesHistoryUnchanged(t *testing.T) {
	provider := &mockProvider{
		OnGenerate: func(ctx context.Context, prompt string) (string, error) {
			return "seed answer", nil
		},
	}
	c, _ := New("chat-1", okRetriever(t), provider, testConfig())

	if _, err := c.Turn(context.Background(), "first"); err != nil {
		t.Fatalf("seed turn failed: %v", err)
	}

	provider.OnGenerate = func(ctx context.Context, prompt string) (string, error) {
		return "", faults.Permanent("generate content", errors.New("blocked"))
	}
	_, err := c.Turn(context.Background(), "q")
	if !faults.IsPermanent(err) {
		t.Fatalf("expected permanent model error, got %v", err)
	}
	history := c.History()
	if len(history) != 2 || history[1].Content != "seed answer" {
		t.Fatalf("history must be unchanged after model failure: %+v", history)
	}
}

func TestCancelledContextLeavesHistoryUnchanged(t *testing.T) {
	provider := &mockProvider{
		OnGenerate: func(ctx context.Context, prompt string) (string, error) {
			return "answer", nil
		},
	}
	c, _ := New("chat-1", okRetriever(t), provider, testConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Turn(ctx, "q")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(c.History()) != 0 {
		t.Fatalf("history must be unchanged after cancellation")
	}
}

func TestHistoryFlowsIntoLaterPrompts(t *testing.T) {
	var prompts []string
	provider := &mockProvider{
		OnGenerate: func(ctx context.Context, prompt string) (string, error) {
			prompts = append(prompts, prompt)
			return fmt.Sprintf("answer %d", len(prompts)), nil
		},
	}
	c, _ := New("chat-1", okRetriever(t), provider, testConfig())

	if _, err := c.Turn(context.Background(), "first question"); err != nil {
		t.Fatalf("turn 1: %v", err)
	}
	if _, err := c.Turn(context.Background(), "second question"); err != nil {
		t.Fatalf("turn 2: %v", err)
	}

	if strings.Contains(prompts[0], "first question") && strings.Contains(prompts[0], "answer 1") {
		t.Fatalf("first prompt should not contain its own exchange:\n%s", prompts[0])
	}
	if !strings.Contains(prompts[1], "first question") || !strings.Contains(prompts[1], "answer 1") {
		t.Fatalf("second prompt missing prior exchange:\n%s", prompts[1])
	}
}

func TestConcurrentTurnsNeverInterleave(t *testing.T) {
	provider := &mockProvider{
		OnGenerate: func(ctx context.Context, prompt string) (string, error) {
			return "echo", nil
		},
	}
	c, _ := New("chat-1", okRetriever(t), provider, testConfig())

	const turns = 20
	var wg sync.WaitGroup
	for i := range turns {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.Turn(context.Background(), fmt.Sprintf("q%d", i)); err != nil {
				t.Errorf("turn failed: %v", err)
			}
		}()
	}
	wg.Wait()

	history := c.History()
	if len(history) != turns*2 {
		t.Fatalf("expected %d turns, got %d", turns*2, len(history))
	}
	for i := 0; i < len(history); i += 2 {
		if history[i].Role != commonModels.RoleUser || history[i+1].Role != commonModels.RoleAssistant {
			t.Fatalf("interleaved exchange at %d: %+v %+v", i, history[i], history[i+1])
		}
	}
}

func TestResumeSeedsHistory(t *testing.T) {
	var captured string
	provider := &mockProvider{
		OnGenerate: func(ctx context.Context, prompt string) (string, error) {
			captured = prompt
			return "ok", nil
		},
	}
	seed := []commonModels.Turn{
		{Role: commonModels.RoleUser, Content: "earlier question"},
		{Role: commonModels.RoleAssistant, Content: "earlier answer"},
	}
	c, err := Resume("chat-1", okRetriever(t), provider, testConfig(), seed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := c.Turn(context.Background(), "next"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(captured, "earlier question") {
		t.Fatalf("seeded history missing from prompt:\n%s", captured)
	}
	if len(c.History()) != 4 {
		t.Fatalf("expected 4 turns after resume + 1 exchange, got %d", len(c.History()))
	}
}

type recordingSessionStore struct {
	mu    sync.Mutex
	turns map[string][]commonModels.Turn
}

func (s *recordingSessionStore) ValidateChatId(ctx context.Context, id string) bool { return true }
func (s *recordingSessionStore) InitNewChat(ctx context.Context, id string) error   { return nil }

func (s *recordingSessionStore) AppendTurns(ctx context.Context, id string, turns []commonModels.Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.turns == nil {
		s.turns = make(map[string][]commonModels.Turn)
	}
	s.turns[id] = append(s.turns[id], turns...)
	return nil
}

func (s *recordingSessionStore) GetHistory(ctx context.Context, id string) ([]commonModels.Turn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.turns[id], nil
}

func TestSuccessfulTurnsArePersisted(t *testing.T) {
	provider := &mockProvider{
		OnGenerate: func(ctx context.Context, prompt string) (string, error) {
			return "stored answer", nil
		},
	}
	store := &recordingSessionStore{}
	cfg := testConfig()
	cfg.SessionStore = store
	c, _ := New("chat-9", okRetriever(t), provider, cfg)

	if _, err := c.Turn(context.Background(), "q"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	persisted, _ := store.GetHistory(context.Background(), "chat-9")
	if len(persisted) != 2 || persisted[1].Content != "stored answer" {
		t.Fatalf("turns not persisted: %+v", persisted)
	}
}

func TestNewValidatesConfig(t *testing.T) {
	provider := &mockProvider{OnGenerate: func(ctx context.Context, prompt string) (string, error) { return "", nil }}
	r := okRetriever(t)

	tests := []struct {
		name string
		run  func() error
	}{
		{"empty id", func() error { _, err := New("", r, provider, testConfig()); return err }},
		{"nil provider", func() error { _, err := New("c", r, nil, testConfig()); return err }},
		{"zero topK", func() error {
			cfg := testConfig()
			cfg.TopK = 0
			_, err := New("c", r, provider, cfg)
			return err
		}},
		{"zero budget", func() error {
			cfg := testConfig()
			cfg.TokenBudget = 0
			_, err := New("c", r, provider, cfg)
			return err
		}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.run(); !errors.Is(err, faults.ErrInvalidConfig) {
				t.Fatalf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}
