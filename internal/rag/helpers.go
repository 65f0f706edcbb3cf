package rag

import (
	"context"
	"net/http"
	"time"

	"github.com/akolanti/GoRAG/internal/domain/commonModels"
	"github.com/akolanti/GoRAG/internal/domain/faults"
	"github.com/akolanti/GoRAG/internal/domain/jobModel"
	"github.com/akolanti/GoRAG/internal/metrics"
	"github.com/akolanti/GoRAG/internal/rag/conversation"
	"github.com/akolanti/GoRAG/pkg/logger_i"
)

func returnOutput(job jobModel.Job, answer string, sources []commonModels.Chunk) jobModel.Job {
	job.JobPayload.Answer = answer
	job.JobPayload.Sources = sourceNames(sources)
	job.CurrentStep = jobModel.Complete
	job.Status = jobModel.JobStatusComplete
	return job
}

// sourceNames flattens chunks to display names, deduplicated in rank order.
func sourceNames(sources []commonModels.Chunk) []string {
	var names []string
	seen := make(map[string]bool)
	for _, chunk := range sources {
		name := chunk.DocName
		if name == "" {
			name = chunk.ChunkId
		}
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	return names
}

func logOutput(job jobModel.Job, status jobModel.InternalStatus, log *logger_i.Logger) jobModel.Job {
	job.CurrentStep = status
	log.Debug("ProcessRequest", "currentStep", job.CurrentStep)
	return job
}

func (s *service) jobError(job jobModel.Job, err error, message string) jobModel.Job {
	s.logger.Error(message, "jobId", job.Id, "error", err)

	job.Error = jobModel.JobError{
		Code:    http.StatusInternalServerError,
		Message: "Internal Server Error",
		Retry:   faults.IsTransient(err),
	}
	job.Status = jobModel.JobStatusError
	job.CurrentStep = jobModel.Error
	return job
}

func (s *service) executeEmbeddingStep(ctx context.Context, log *logger_i.Logger, job *jobModel.Job) ([]float32, error) {
	*job = logOutput(*job, jobModel.EmbeddingAPICall, log)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("embedding", time.Since(start)) }()

	return s.embedder.GetEmbedding(ctx, job.JobPayload.Question)
}

func (s *service) executeCacheCheckStep(ctx context.Context, log *logger_i.Logger, job *jobModel.Job, queryVector []float32) (string, bool) {
	if s.cache == nil {
		return "", false
	}
	*job = logOutput(*job, jobModel.CacheCall, log)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("cache_lookup", time.Since(start)) }()

	// A cache failure is never worth failing the request over.
	answer, found, err := s.cache.GetCachedAnswer(ctx, queryVector)
	if err != nil {
		log.Warn("cache lookup failed", "error", err)
		return "", false
	}
	return answer, found
}

func (s *service) executeTurnStep(ctx context.Context, log *logger_i.Logger, job *jobModel.Job, conv *conversation.Conversation) (conversation.Result, error) {
	*job = logOutput(*job, jobModel.RetrieveCall, log)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("conversation_turn", time.Since(start)) }()

	result, err := conv.Turn(ctx, job.JobPayload.Question)
	if err != nil {
		return conversation.Result{}, err
	}
	*job = logOutput(*job, jobModel.LLMCall, log)
	return result, nil
}
