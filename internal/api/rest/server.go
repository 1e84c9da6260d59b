// Package rest serves the playlist duration report over plain HTTP.
package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/osa030/ytlength/internal/app/report"
	"github.com/osa030/ytlength/internal/infra/logger"
	"github.com/osa030/ytlength/internal/infra/telemetry"
)

// ErrFetchMessage is the only body a failed report request returns.
const ErrFetchMessage = "Error fetching playlist items"

// Reporter builds the report of one playlist.
type Reporter interface {
	Build(ctx context.Context, playlistID string) (*report.Report, error)
}

// Handler serves the report routes.
type Handler struct {
	reporter Reporter
	timeout  time.Duration
}

// NewHandler creates a new Handler. A non-positive timeout leaves the
// request context untouched.
func NewHandler(reporter Reporter, timeout time.Duration) *Handler {
	return &Handler{
		reporter: reporter,
		timeout:  timeout,
	}
}

// NewRouter builds the HTTP router with the middleware stack and all
// routes registered. Callers may mount further handlers on it.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(Recoverer)
	r.Use(RequestID)
	r.Use(Metrics)
	r.Use(Tracing(telemetry.ServiceName))
	r.Use(AccessLog)

	r.Get("/", h.Hello)
	r.Get("/api/{id}", h.GetPlaylistDuration)
	r.Get("/healthz", h.Healthz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}

// Hello answers the root liveness check.
func (h *Handler) Hello(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("Hello World!"))
}

// Healthz reports that the process is serving.
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

// GetPlaylistDuration writes the report for the playlist in the path.
// Every failure is logged and answered with the same fixed 500.
func (h *Handler) GetPlaylistDuration(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	playlistID := chi.URLParam(r, "id")
	log := logger.FromContext(ctx)

	rep, err := h.reporter.Build(ctx, playlistID)
	if err != nil {
		log.Error().Err(err).Str("playlist_id", playlistID).Msg("failed to build playlist report")
		writeFailure(w)
		return
	}

	body, err := json.Marshal(rep)
	if err != nil {
		log.Error().Err(err).Str("playlist_id", playlistID).Msg("failed to encode playlist report")
		writeFailure(w)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func writeFailure(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusInternalServerError)
	_, _ = w.Write([]byte(ErrFetchMessage))
}
