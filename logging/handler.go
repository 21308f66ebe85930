package logging

import (
	"net/http"
	"time"
)

// FlowIdHeader carries the id correlating the log entries of a request.
const FlowIdHeader = "X-Flow-Id"

type handler struct {
	next http.Handler
}

// NewHandler wraps a handler and logs each served request in the
// access log.
func NewHandler(next http.Handler) http.Handler {
	return &handler{next: next}
}

func (h *handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	now := time.Now()

	lw := &loggingWriter{writer: w}
	h.next.ServeHTTP(lw, r)

	if lw.code == 0 {
		lw.code = http.StatusOK
	}

	flowId := r.Header.Get(FlowIdHeader)
	if flowId == "" {
		flowId = w.Header().Get(FlowIdHeader)
	}

	LogAccess(&AccessEntry{
		Request:      r,
		StatusCode:   lw.code,
		ResponseSize: lw.bytes,
		RequestTime:  now,
		Duration:     time.Since(now),
		FlowId:       flowId,
	})
}
