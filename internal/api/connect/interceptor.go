package connect

import (
	"context"
	"time"

	"connectrpc.com/connect"
	"github.com/google/uuid"

	"github.com/osa030/ytlength/internal/infra/logger"
)

// RequestIDHeader is the header carrying the request correlation ID.
const RequestIDHeader = "X-Request-ID"

// NewLoggingInterceptor creates an interceptor that makes sure the context
// logger carries a request ID and logs the outcome of every unary call.
func NewLoggingInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			reqID := logger.RequestID(ctx)
			if reqID == "" {
				reqID = req.Header().Get(RequestIDHeader)
				if reqID == "" {
					reqID = uuid.New().String()
				}
				ctx = logger.WithRequestID(ctx, reqID)
			}

			start := time.Now()
			resp, err := next(ctx, req)

			code := "ok"
			if err != nil {
				code = connect.CodeOf(err).String()
			}
			logger.FromContext(ctx).Info().
				Str("procedure", req.Spec().Procedure).
				Str("code", code).
				Dur("elapsed", time.Since(start)).
				Msg("rpc call")

			if resp != nil {
				resp.Header().Set(RequestIDHeader, reqID)
			}
			return resp, err
		}
	}
}
