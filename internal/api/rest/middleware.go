package rest

import (
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"

	"github.com/osa030/ytlength/internal/infra/logger"
	"github.com/osa030/ytlength/internal/infra/metrics"
)

// HeaderRequestID is the header carrying the request correlation ID.
const HeaderRequestID = "X-Request-ID"

// Recoverer turns a handler panic into the plain-text 500 failure response
// and logs the stack.
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			buf := make([]byte, 8192)
			n := runtime.Stack(buf, false)

			// RequestID runs inside this handler, so the ID is only on the response
			reqID := w.Header().Get(HeaderRequestID)
			logger.FromContext(r.Context()).Error().
				Str("request_id", reqID).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Interface("panic", rec).
				Str("stack", string(buf[:n])).
				Msg("panic recovered in HTTP handler")

			// same body as any failed report; the ID stays in the header
			writeFailure(w)
		}()

		next.ServeHTTP(w, r)
	})
}

// RequestID reuses the caller's X-Request-ID or generates one, echoes it on
// the response and attaches it to the request logger.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get(HeaderRequestID)
		if reqID == "" {
			reqID = uuid.New().String()
		}
		w.Header().Set(HeaderRequestID, reqID)
		ctx := logger.WithRequestID(r.Context(), reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Metrics records request latency and in-flight requests, labelled by
// route pattern.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		metrics.HTTPRequestsInFlight.Inc()
		defer metrics.HTTPRequestsInFlight.Dec()

		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		metrics.HTTPRequestDuration.
			WithLabelValues(r.Method, routePattern(r), strconv.Itoa(status(ww))).
			Observe(time.Since(start).Seconds())
	})
}

// Tracing wraps the handler with an otelhttp server span.
func Tracing(serviceName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return otelhttp.NewHandler(next, serviceName,
			otelhttp.WithTracerProvider(otel.GetTracerProvider()),
			otelhttp.WithFilter(shouldTrace),
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				return r.Method + " " + r.URL.Path
			}),
		)
	}
}

// AccessLog writes one line per request to the request logger.
func AccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		logger.FromContext(r.Context()).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status(ww)).
			Int("bytes", ww.BytesWritten()).
			Dur("elapsed", time.Since(start)).
			Msg("http request")
	})
}

// shouldTrace skips health checks and scrapes.
func shouldTrace(r *http.Request) bool {
	switch r.URL.Path {
	case "/healthz", "/metrics":
		return false
	}
	return true
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}

func status(ww chimw.WrapResponseWriter) int {
	if ww.Status() == 0 {
		return http.StatusOK
	}
	return ww.Status()
}
