package handlers

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/akolanti/GoRAG/internal/api"
	"github.com/akolanti/GoRAG/internal/config"
	"github.com/akolanti/GoRAG/internal/domain/jobModel"
	"github.com/akolanti/GoRAG/internal/job"
	"github.com/akolanti/GoRAG/internal/metrics"
	"github.com/akolanti/GoRAG/pkg/logger_i"
)

var (
	handlerInstance *JobHandler //private singleton
	once            sync.Once
	logJH           *logger_i.Logger
)

type JobHandler struct {
	service *job.Service
}

func InitJobHandler(jobService *job.Service) {
	once.Do(func() {
		handlerInstance = &JobHandler{service: jobService}

		logJH = logger_i.NewLogger("JobHandler")
		logRH = logger_i.NewLogger("RequestHandler")
		logJH.Info("Starting job handler")
	})
}

// CreateNewJob turns accepted request data into a queued job. For a brand
// new chat the session is registered first so a fast follow-up request with
// the returned chat id passes validation.
func CreateNewJob(newJob newJobData) {
	logJH.Info("To create new job", "traceId", newJob.traceId, "job id", newJob.id)
	if newJob.isNewChat {
		handlerInstance.initNewChat(newJob.chatId, newJob.traceId)
	}
	handlerInstance.pushToJobChannel(newJob)
}

func GetJobStatus(id string, traceId string) (result jobModel.Job, isFound bool) {
	if handlerInstance == nil {
		return result, false
	}
	ctxC := context.WithValue(context.Background(), config.TRACE_ID_KEY, traceId)
	return handlerInstance.service.JobStore.GetJob(ctxC, id)
}

// ValidateChatRequest rejects empty messages and chat ids that were never
// issued by this server. An empty chat id is fine, it means "start fresh".
func ValidateChatRequest(chatReq api.ChatRequest) bool {
	if handlerInstance == nil {
		return false
	}
	if chatReq.Message == "" {
		return false
	}
	if chatReq.ChatID == "" {
		return true
	}
	return handlerInstance.service.SessionStore.ValidateChatId(context.Background(), chatReq.ChatID)
}

func (h *JobHandler) pushToJobChannel(newJob newJobData) {
	queued := jobModel.Job{
		Id:          newJob.id,
		TraceId:     newJob.traceId,
		CreatedTime: time.Now(),
		Status:      jobModel.JobStatusQueued,
	}

	if newJob.isDocumentIngest {
		queued.JobType = jobModel.JobTypeIngest
		queued.CurrentStep = jobModel.IngestInit
		queued.JobPayload.IngestFileName = newJob.documentName
		queued.JobPayload.IngestURL = newJob.documentSource
	} else {
		queued.JobType = jobModel.JobTypeQuery
		queued.CurrentStep = jobModel.UserQueryInit
		queued.ChatId = newJob.chatId
		queued.JobPayload.Question = newJob.message
	}

	metrics.IncrementJobsInQueue()

	//blocking send, backpressure is the overload protection
	h.service.JobChannel <- queued
	logJH.Info("Created new job")

	// Scale hints for the pool: one extra worker every N accepted requests,
	// and always one for an ingest since ingestion holds a worker for the
	// whole batch run. Idle workers retire on their own, so over-signaling
	// here is cheap.
	accurateCount := atomic.AddInt64(&h.service.RequestCount, 1)
	if accurateCount%config.RequestsPerNewWorkerCount == 0 || queued.JobType == jobModel.JobTypeIngest {
		metrics.StartDispatcherSignalCount()
		logJH.Debug("Signaling dispatcher", "request count", accurateCount)
		h.service.DispatcherChannel <- true
	}
}

func (h *JobHandler) initNewChat(chatId string, traceId string) {
	ctxC := context.WithValue(context.Background(), config.TRACE_ID_KEY, traceId)
	if err := h.service.SessionStore.InitNewChat(ctxC, chatId); err != nil {
		logJH.Error("Error initiating new chat", chatId, err)
	}
}
