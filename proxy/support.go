package proxy

import (
	"net/http"

	"github.com/zalando/storefront/metrics"
)

// SupportRouting provides the routing state for the support handler.
type SupportRouting interface {
	Routing
	FirstLoad() <-chan struct{}
}

// NewSupport creates the handler of the support listener, serving
// /metrics, /routes and /healthz.
func NewSupport(rt SupportRouting, m metrics.Metrics) http.Handler {
	if m == nil {
		m = metrics.Void
	}

	mux := http.NewServeMux()
	m.RegisterHandler("/metrics", mux)

	mux.HandleFunc("GET /routes", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte(rt.Get().Tree()))
	})

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		select {
		case <-rt.FirstLoad():
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	})

	return mux
}
