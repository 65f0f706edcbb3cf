package middleware

import (
	"net/http"
	"strconv"

	"github.com/akolanti/GoRAG/internal/handlers"
	"github.com/akolanti/GoRAG/internal/metrics"
	"github.com/akolanti/GoRAG/pkg/logger_i"
)

// Every route goes through the same pre-handler chain: trace injection,
// bearer auth, then the per-IP rate limit. The first check that rejects
// writes the error response; the handler itself never sees the request.

var (
	GetHandler        = Wrap(handlers.GetHandler)
	ChatHandler       = Wrap(handlers.ChatHandler)
	GetStatusHandler  = Wrap(handlers.GetStatusHandler)
	PostIngestHandler = Wrap(handlers.PostIngestHandler)
)

// rejection is a non-nil result from a check that stops the chain.
type rejection struct {
	httpCode     int
	errorMessage string
}

type check func(re *requestState) *rejection

var preHandlerChain = []check{injectTrace, authenticate, rateLimit}

type requestState struct {
	req    *http.Request
	logger *logger_i.Logger
}

func Wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &metrics.HttpStatusRecorder{ResponseWriter: w, Status: 200}
		re := &requestState{req: r, logger: logger_i.NewLogger("middleware")}
		re.logger.Info("New request received")

		for _, c := range preHandlerChain {
			if rej := c(re); rej != nil {
				re.logger.Warn("Request rejected", "httpCode", rej.httpCode, "errorMessage", rej.errorMessage, "IP", r.RemoteAddr)
				handlers.WriteErrorResponse(rec, rej.httpCode, "Your IP: "+r.RemoteAddr, rej.errorMessage)
				return
			}
		}

		next(rec, re.req)

		metrics.HttpRequestsTotal.WithLabelValues(r.URL.Path, strconv.Itoa(rec.Status)).Inc()
	}
}
