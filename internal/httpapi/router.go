// Package httpapi wires the Connect services and the plain HTTP endpoints
// onto one gorilla/mux router.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"

	"connectrpc.com/connect"
	"github.com/gorilla/mux"
	"github.com/mmynk/rachadinha/internal/auth"
	"github.com/mmynk/rachadinha/internal/metrics"
	"github.com/mmynk/rachadinha/internal/middleware"
)

// Summarizer renders share text for a session the caller owns.
type Summarizer interface {
	Summary(ctx context.Context, sessionID, participantID string) (string, error)
}

// Router serves /healthz, /metrics, /share/{sessionID} and any mounted Connect services.
type Router struct {
	router     *mux.Router
	summarizer Summarizer
	jwtManager *auth.JWTManager
	metrics    *metrics.Metrics
}

// New builds the router. m may be nil, in which case /metrics is not served.
func New(summarizer Summarizer, jwtManager *auth.JWTManager, m *metrics.Metrics) *Router {
	r := &Router{
		router:     mux.NewRouter(),
		summarizer: summarizer,
		jwtManager: jwtManager,
		metrics:    m,
	}
	r.setupRoutes()
	return r
}

func (r *Router) setupRoutes() {
	r.router.HandleFunc("/healthz", handleHealth).Methods("GET")
	if r.metrics != nil {
		r.router.Handle("/metrics", r.metrics.Handler()).Methods("GET")
	}

	// Protected endpoints
	protected := r.router.PathPrefix("/share").Subrouter()
	protected.Use(middleware.RequireAuthHTTP(r.jwtManager))
	protected.HandleFunc("/{session_id}", r.handleShare).Methods("GET")
}

// Mount routes every request under path to h, as returned by the api handler constructors.
func (r *Router) Mount(path string, h http.Handler) {
	r.router.PathPrefix(path).Handler(h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.router.ServeHTTP(w, req)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok\n"))
}

// handleShare returns the text summary of a session, or of one participant
// when the participant query parameter is set.
func (r *Router) handleShare(w http.ResponseWriter, req *http.Request) {
	sessionID := mux.Vars(req)["session_id"]
	participantID := req.URL.Query().Get("participant")

	text, err := r.summarizer.Summary(req.Context(), sessionID, participantID)
	if err != nil {
		status := httpStatus(connect.CodeOf(err))
		if status == http.StatusInternalServerError {
			slog.Error("Share summary failed", "session_id", sessionID, "error", err)
		}
		http.Error(w, http.StatusText(status), status)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(text))
}

func httpStatus(code connect.Code) int {
	switch code {
	case connect.CodeInvalidArgument:
		return http.StatusBadRequest
	case connect.CodeUnauthenticated:
		return http.StatusUnauthorized
	case connect.CodePermissionDenied:
		return http.StatusForbidden
	case connect.CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
