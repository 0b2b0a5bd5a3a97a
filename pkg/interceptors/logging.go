package interceptors

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"connectrpc.com/connect"
)

// NewLoggingInterceptor logs one line per call with its outcome and duration.
func NewLoggingInterceptor(logger *slog.Logger) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			resp, err := next(ctx, req)

			attrs := []any{
				slog.String("procedure", req.Spec().Procedure),
				slog.Duration("duration", time.Since(start)),
				slog.String("peer", req.Peer().Addr),
			}
			if id, ok := RequestIDFromContext(ctx); ok {
				attrs = append(attrs, slog.String("request_id", id))
			}

			if err != nil {
				attrs = append(attrs, slog.String("code", connect.CodeOf(err).String()), slog.Any("error", err))
				level := slog.LevelWarn
				if connect.CodeOf(err) == connect.CodeInternal || connect.CodeOf(err) == connect.CodeUnknown {
					level = slog.LevelError
				}
				logger.Log(ctx, level, "rpc failed", attrs...)
				return resp, err
			}

			logger.InfoContext(ctx, "rpc completed", attrs...)
			return resp, nil
		}
	}
}

func asConnectError(err error) (*connect.Error, bool) {
	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		return connectErr, true
	}
	return nil, false
}
