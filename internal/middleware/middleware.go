package middleware

import (
	"net/http"
	"strconv"

	"docassist/internal/handlers"
	"docassist/internal/metrics"
	"docassist/pkg/logkit"
)

type requestResponseStruct struct {
	writer     http.ResponseWriter
	req        *http.Request
	badRequest failureStruct
	logger     *logkit.Logger
}

type failureStruct struct {
	isBadRequest bool
	httpCode     int
	errorMessage string
}

var HealthHandler = Wrap(handlers.GetHandler)

var CreateSessionHandler = Wrap(handlers.CreateSessionHandler)
var DeleteSessionHandler = Wrap(handlers.DeleteSessionHandler)
var ResetSessionHandler = Wrap(handlers.ResetSessionHandler)
var ChatHandler = Wrap(handlers.ChatHandler)
var PostIngestHandler = Wrap(handlers.PostIngestHandler)
var PostIngestTextHandler = Wrap(handlers.PostIngestTextHandler)
var GetHistoryHandler = Wrap(handlers.GetHistoryHandler)
var DeleteHistoryHandler = Wrap(handlers.DeleteHistoryHandler)

// Wrap runs the shared request plumbing (trace id, auth, rate limit) before
// the handler, and records request metrics after it.
func Wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &metrics.HttpStatusRecorder{ResponseWriter: w, Status: 200} //metrics
		re := processRequest(requestResponseStruct{req: r, writer: rec})

		if re.badRequest.isBadRequest {
			handleBadRequest(re)
			return
		}
		next(rec, re.req)

		metrics.HttpRequestsTotal.WithLabelValues(r.URL.Path, strconv.Itoa(rec.Status)).Inc() //metrics
	}
}

func processRequest(re requestResponseStruct) requestResponseStruct {
	re.logger = logkit.NewLogger("middleware")
	re.logger.Debug("New request received")

	re = injectTrace(re)
	re = authenticate(re)
	if re.badRequest.isBadRequest {
		return re //stop if auth fails
	}
	re = rateLimiter(re)
	return re
}
