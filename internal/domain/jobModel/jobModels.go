package jobModel

import (
	"context"
	"time"
)

// JobStatus is the externally visible lifecycle: QUEUED -> RUNNING -> COMPLETE/Error.
type JobStatus string

// InternalStatus tracks which pipeline step a running job is in. It exists
// for status polling and debugging, the workers never branch on it.
type InternalStatus string

type JobType string

const (
	JobStatusQueued   JobStatus = "QUEUED"
	JobStatusRunning  JobStatus = "RUNNING"
	JobStatusComplete JobStatus = "COMPLETE"
	JobStatusError    JobStatus = "Error"
)

const (
	UserQueryInit    InternalStatus = "Init"
	RAGCall          InternalStatus = "RAG"
	EmbeddingAPICall InternalStatus = "EmbeddingAPI"
	CacheCall        InternalStatus = "CacheCall"
	RetrieveCall     InternalStatus = "Retrieve"
	LLMCall          InternalStatus = "LLM"

	IngestInit       InternalStatus = "IngestInit"
	IngestProcessing InternalStatus = "IngestProcessing"

	Complete InternalStatus = "Complete"
	Error    InternalStatus = "Error"
)

const (
	JobTypeQuery  JobType = "Query"
	JobTypeIngest JobType = "Ingest"
)

// Job is the unit of work that flows from the HTTP handlers through the job
// channel to a worker, and the record the status endpoint reads back.
type Job struct {
	Id          string         `json:"id"`
	ChatId      string         `json:"chat_id"`
	TraceId     string         `json:"trace_id"`
	JobType     JobType        `json:"job_type"`
	JobPayload  JobPayload     `json:"job_payload"`
	Error       JobError       `json:"error,omitempty"`
	CreatedTime time.Time      `json:"created_time"`
	EndTime     time.Time      `json:"end_time,omitempty"`
	Status      JobStatus      `json:"status"`
	CurrentStep InternalStatus `json:"current_step"`
}

// JobError.Retry tells the caller whether resubmitting the same request can
// possibly succeed. It is derived from the fault classification, never set
// by hand.
type JobError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Retry   bool   `json:"retry"`
}

// JobPayload holds both directions of a job: the question or ingest source
// going in, the answer and source names coming out.
type JobPayload struct {
	Question string   `json:"question,omitempty"`
	Answer   string   `json:"answer,omitempty"`
	Sources  []string `json:"sources,omitempty"`

	IngestFileName string `json:"ingest_file_name,omitempty"`
	IngestURL      string `json:"ingest_url,omitempty"`
}

type JobStore interface {
	GetJob(ctx context.Context, jobId string) (Job, bool)
	SaveJob(ctx context.Context, job Job) error
	DeleteJob(ctx context.Context, jobID string)
}
