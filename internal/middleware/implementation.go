package middleware

import (
	"context"
	"crypto/subtle"
	"net"
	"net/http"
	"strings"

	"github.com/akolanti/GoRAG/internal/adapter/utils"
	"github.com/akolanti/GoRAG/internal/config"
	"github.com/akolanti/GoRAG/pkg/logger_i"
)

// injectTrace makes sure every request carries a trace id, minting one when
// the caller didn't send X-Trace-Id. The id rides the request context from
// here through the job store and the worker.
func injectTrace(re *requestState) *rejection {
	if re.req == nil {
		return &rejection{httpCode: http.StatusBadRequest, errorMessage: "request is empty"}
	}

	trace := re.req.Header.Get("X-Trace-Id")
	if trace == "" {
		trace = utils.GetNewUUID()
	}
	re.logger = re.logger.With("traceId", trace)

	ctx := context.WithValue(re.req.Context(), config.TRACE_ID_KEY, trace)
	re.req.Header.Set("X-Trace-Id", trace)
	re.req = re.req.WithContext(ctx)
	return nil
}

func authenticate(re *requestState) *rejection {
	if !IsValidBearerToken(re.req.Header.Get("Authorization"), re.logger) {
		return &rejection{httpCode: http.StatusUnauthorized, errorMessage: "invalid token - you sus bruh"}
	}
	re.logger.Debug("Authorized")
	return nil
}

func IsValidBearerToken(authHeader string, log *logger_i.Logger) bool {
	if config.NoAuthBypass {
		log.Error("--------------------------------------- auth bypass----------------------------------------------")
		return true
	}
	if authHeader == "" {
		log.Error("Empty authorization header")
		return false
	}
	token, found := strings.CutPrefix(authHeader, "Bearer ")
	if !found {
		log.Error("No Bearer header")
		return false
	}
	if subtle.ConstantTimeCompare([]byte(token), []byte(config.AuthToken)) != 1 {
		log.Error("Invalid authorization header")
		return false
	}
	return true
}

func rateLimit(re *requestState) *rejection {
	ip, _, err := net.SplitHostPort(re.req.RemoteAddr)
	if err != nil {
		ip = re.req.RemoteAddr
	}

	if !limiterInstance.GetLimiter(ip).Allow() {
		re.logger.Error("Too many requests", "Rate Limiter exceeded", ip)
		return &rejection{
			httpCode:     http.StatusTooManyRequests,
			errorMessage: "Rate limit exceeded. Slow down bruh",
		}
	}
	return nil
}
