package utils

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// statusRecorder captures the response status for request logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// LogRequests tags every request with an id and logs its outcome. The
// router applies it to matched routes; unmatched-route handlers need
// wrapping themselves.
func LogRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)

		log.Printf("[http] %s %s %d %s id=%s", r.Method, r.URL.RequestURI(), rec.status, time.Since(start).Round(time.Microsecond), requestID)
	})
}

// NewRouter constructs the base mux router with common routes. When ping is
// set, /health reports 503 while it fails.
func NewRouter(ping func(context.Context) error) *mux.Router {
	r := mux.NewRouter()

	r.Use(LogRequests)

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if ping != nil {
			if err := ping(r.Context()); err != nil {
				log.Printf("[http] health check failed: %v", err)
				w.WriteHeader(http.StatusServiceUnavailable)
				w.Write([]byte(`{"status":"unavailable"}`))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods(http.MethodGet)
	return r
}
