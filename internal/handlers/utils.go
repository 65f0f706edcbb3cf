package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"

	"github.com/akolanti/GoRAG/internal/adapter"
	"github.com/akolanti/GoRAG/internal/adapter/utils"
	"github.com/akolanti/GoRAG/internal/api"
	"github.com/akolanti/GoRAG/internal/config"
	"github.com/akolanti/GoRAG/internal/domain/jobModel"
)

func writeJsonResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		// headers already went out, nothing left to do but log
		logRH.Error("Error encoding response: %v", err)
	}
}

func WriteErrorResponse(w http.ResponseWriter, httpCode int, id string, message string) {
	writeJsonResponse(w, httpCode, adapter.BadRequest(id, message, httpCode))
}

func validateId(id string, traceId string) (result jobModel.Job, isFound bool) {
	if id == "" {
		logRH.Warn("Empty Job ID")
		return jobModel.Job{}, false
	}
	return GetJobStatus(id, traceId)
}

func validateContext(ctx context.Context) bool {
	if ctx.Err() != nil {
		logRH.Warn("context error", ctx.Err())
		return false
	}
	return true
}

func getTargetDirectory() (string, string) {
	root, err := os.Getwd()
	if err != nil {
		return "", "Storage Error"
	}

	targetDir := filepath.Join(root, "temporary_data")
	if err := os.MkdirAll(targetDir, 0750); err != nil {
		return "", "Storage Error"
	}
	return targetDir, ""
}

// newChatJob minting rule: a request without a chat id opens a fresh
// conversation, so the id is generated here and the chat marked new.
func newChatJob(request *http.Request, requestData api.ChatRequest) newJobData {
	chatID := requestData.ChatID
	isNewChat := false
	if chatID == "" {
		chatID = utils.GetNewUUID()
		isNewChat = true
		logRH.Debug(" New Chat request : ", "chatID:", chatID)
	}

	return newJobData{
		id:        utils.GetNewUUID(),
		chatId:    chatID,
		message:   requestData.Message,
		isNewChat: isNewChat,
		traceId:   request.Context().Value(config.TRACE_ID_KEY).(string),
	}
}

func newIngestJob(request *http.Request, docName string, docPath string) newJobData {
	return newJobData{
		id:               utils.GetNewUUID(),
		traceId:          request.Context().Value(config.TRACE_ID_KEY).(string),
		isDocumentIngest: true,
		documentName:     docName,
		documentSource:   docPath,
	}
}

func acceptJob(w http.ResponseWriter, data newJobData) {
	CreateNewJob(data)
	writeJsonResponse(w, http.StatusAccepted, adapter.ToInitJobResponse(data.id))
}
