package adapter

import (
	"fmt"
	"time"

	"github.com/akolanti/GoRAG/internal/api"
	"github.com/akolanti/GoRAG/internal/domain/jobModel"
)

func ToInitJobResponse(id string) api.InitJobResponse {
	return api.InitJobResponse{
		Id:        id,
		StatusURL: fmt.Sprintf("status/%s", id),
	}
}

// ToAPIResponse maps internal job state to the external contract. The RAG
// payload and the error block are omitted from the JSON until they carry
// something.
func ToAPIResponse(job jobModel.Job) api.JobResponse {
	return api.JobResponse{
		Id:        job.Id,
		ChatId:    job.ChatId,
		StartTime: job.CreatedTime,
		EndTime:   job.EndTime,
		Result: api.Result{
			Status:              string(job.Status),
			RAGExternalResponse: toRAGResponse(job.JobPayload),
		},
		Error: toOutgoingError(job.Error),
	}
}

func toRAGResponse(payload jobModel.JobPayload) *api.RAGResponse {
	if payload.Answer == "" && len(payload.Sources) == 0 {
		return nil
	}
	return &api.RAGResponse{
		Question: payload.Question,
		Answer:   payload.Answer,
		Sources:  payload.Sources,
	}
}

func toOutgoingError(jobErr jobModel.JobError) *api.JobOutgoingError {
	if jobErr.Message == "" && jobErr.Code == 0 {
		return nil
	}
	return &api.JobOutgoingError{
		Code:    jobErr.Code,
		Message: jobErr.Message,
		Retry:   jobErr.Retry,
	}
}

// BadRequest builds the error-only response the handlers write when a
// request never becomes a job.
func BadRequest(id string, message string, code int) api.JobResponse {
	return api.JobResponse{
		Id:        id,
		StartTime: time.Time{},
		Result:    api.Result{Status: string(api.JobStatusError)},
		Error: &api.JobOutgoingError{
			Code:    code,
			Message: message,
			Retry:   false,
		},
	}
}
