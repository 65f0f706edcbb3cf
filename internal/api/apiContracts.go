package api

import "time"

// Wire contracts for the HTTP surface. Internal job state is mapped into
// these through the adapter package so handlers never leak domain types.

type JobExternalStatus string

const (
	JobStatusError JobExternalStatus = "Error"
)

// ChatRequest starts a turn. An empty ChatID asks the server to open a new
// conversation and mint the id.
type ChatRequest struct {
	Message string `json:"message" validate:"required" `
	ChatID  string `json:"chatID,omitempty" `
}

// InitJobResponse is returned on 202 Accepted. Poll StatusURL for the result.
type InitJobResponse struct {
	Id        string `json:"id"`
	StatusURL string `json:"status_url"`
}

type JobResponse struct {
	Id        string            `json:"id" example:"job_cz109"`
	ChatId    string            `json:"chat_id" example:"chat_550"`
	Result    Result            `json:"result"`
	Error     *JobOutgoingError `json:"error,omitempty"`
	StartTime time.Time         `json:"start_time"`
	EndTime   time.Time         `json:"end_time,omitempty"`
}

type Result struct {
	Status              string       `json:"status"`
	RAGExternalResponse *RAGResponse `json:"rag_response,omitempty"`
}

// RAGResponse carries the model answer plus the document names the answer
// was grounded on, in retrieval rank order.
type RAGResponse struct {
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Sources  []string `json:"sources"`
}

type JobOutgoingError struct {
	Code    int    `json:"code" example:"400"`
	Message string `json:"message" example:"Job not found"`
	Retry   bool   `json:"can_retry" example:"false"`
}
