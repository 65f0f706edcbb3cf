package rag

import (
	"context"
	"sync"
	"time"

	"github.com/akolanti/GoRAG/internal/adapter/utils"
	"github.com/akolanti/GoRAG/internal/config"
	"github.com/akolanti/GoRAG/internal/domain/commonModels"
	"github.com/akolanti/GoRAG/internal/domain/jobModel"
	"github.com/akolanti/GoRAG/internal/metrics"
	"github.com/akolanti/GoRAG/internal/rag/conversation"
	"github.com/akolanti/GoRAG/internal/rag/embedding"
	"github.com/akolanti/GoRAG/internal/rag/ingest"
	"github.com/akolanti/GoRAG/internal/rag/llm"
	"github.com/akolanti/GoRAG/internal/rag/retriever"
	"github.com/akolanti/GoRAG/internal/rag/vectorDB"
	"github.com/akolanti/GoRAG/pkg/logger_i"
)

// Service is the only surface the worker sees. It hides the retriever, the
// conversations, the provider and the ingestion pipeline behind two
// job-shaped operations, so the worker stays decoupled from the pipeline.
type Service interface {
	ProcessRequest(ctx context.Context, job jobModel.Job) jobModel.Job
	IngestDocument(ctx context.Context, job jobModel.Job) jobModel.Job
}

type service struct {
	retriever *retriever.Retriever
	provider  llm.Provider
	embedder  embedding.Embedder
	pipeline  *ingest.Pipeline
	convCfg   conversation.Config

	// cache is optional: nil disables the semantic answer cache.
	cache vectorDB.AnswerCache

	mu            sync.Mutex
	conversations map[string]*conversation.Conversation

	logger *logger_i.Logger
}

type Deps struct {
	Retriever *retriever.Retriever
	Provider  llm.Provider
	Embedder  embedding.Embedder
	Pipeline  *ingest.Pipeline
	Cache     vectorDB.AnswerCache
	ConvCfg   conversation.Config
}

func NewService(deps Deps) Service {
	return &service{
		retriever:     deps.Retriever,
		provider:      deps.Provider,
		embedder:      deps.Embedder,
		pipeline:      deps.Pipeline,
		cache:         deps.Cache,
		convCfg:       deps.ConvCfg,
		conversations: make(map[string]*conversation.Conversation),
		logger:        logger_i.NewLogger("RAG Service"),
	}
}

func (s *service) ProcessRequest(ctx context.Context, job jobModel.Job) jobModel.Job {
	inMethodLogger := s.logger.With("traceId", job.TraceId, "jobId", job.Id)

	processContext, cancel := context.WithTimeout(ctx, config.ProviderCallTimeout)
	defer cancel()

	job.CurrentStep = jobModel.RAGCall

	// The query embedding is computed up front purely for the cache. The
	// retriever embeds again on a miss; two cheap embedding calls beat
	// threading a vector through the conversation API.
	queryVector, err := s.executeEmbeddingStep(processContext, inMethodLogger, &job)
	if err != nil {
		return s.jobError(job, err, "EMBEDDING_FAILURE")
	}

	cachedAnswer, found := s.executeCacheCheckStep(processContext, inMethodLogger, &job, queryVector)
	if found {
		metrics.RecordCacheHit()
		return returnOutput(job, cachedAnswer, nil)
	}

	conv, err := s.conversationFor(processContext, job)
	if err != nil {
		return s.jobError(job, err, "CONVERSATION_FAILURE")
	}

	result, err := s.executeTurnStep(processContext, inMethodLogger, &job, conv)
	if err != nil {
		return s.jobError(job, err, "TURN_FAILURE")
	}

	if s.cache != nil {
		go func() {
			saveCtx, saveCancel := context.WithTimeout(context.Background(), config.ProviderCallTimeout)
			defer saveCancel()
			if err := s.cache.SaveToCache(saveCtx, utils.GetNewUUID(), queryVector, result.Answer); err != nil {
				s.logger.Error("failed to save answer to cache", "error", err)
			}
		}()
	}

	return returnOutput(job, result.Answer, result.Sources)
}

func (s *service) IngestDocument(ctx context.Context, job jobModel.Job) jobModel.Job {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("document_ingestion", time.Since(start)) }()
	return ingest.ProcessDocumentIngestion(ctx, job, s.pipeline)
}

// conversationFor returns the live conversation for the job's chat,
// rebuilding it from the session store after a restart. Jobs without a chat
// id get a throwaway conversation keyed by the job id.
func (s *service) conversationFor(ctx context.Context, job jobModel.Job) (*conversation.Conversation, error) {
	chatId := job.ChatId
	if chatId == "" {
		chatId = job.Id
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if conv, ok := s.conversations[chatId]; ok {
		return conv, nil
	}

	var history []commonModels.Turn
	if s.convCfg.SessionStore != nil && s.convCfg.SessionStore.ValidateChatId(ctx, chatId) {
		persisted, err := s.convCfg.SessionStore.GetHistory(ctx, chatId)
		if err != nil {
			s.logger.Warn("could not load persisted history, starting fresh", "chatId", chatId, "error", err)
		} else {
			history = persisted
		}
	}

	conv, err := conversation.Resume(chatId, s.retriever, s.provider, s.convCfg, history)
	if err != nil {
		return nil, err
	}
	s.conversations[chatId] = conv
	return conv, nil
}
