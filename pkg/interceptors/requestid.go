package interceptors

import (
	"context"

	"connectrpc.com/connect"
	"github.com/google/uuid"
)

type requestIDKey struct{}

// NewRequestIDInterceptor propagates the request id found in header, generating one when the
// caller sent none, and echoes it back on the response.
func NewRequestIDInterceptor(header string) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			id := req.Header().Get(header)
			if id == "" {
				id = uuid.NewString()
			}
			ctx = context.WithValue(ctx, requestIDKey{}, id)

			resp, err := next(ctx, req)
			if resp != nil {
				resp.Header().Set(header, id)
			}
			if connectErr, ok := asConnectError(err); ok {
				connectErr.Meta().Set(header, id)
			}
			return resp, err
		}
	}
}

// RequestIDFromContext returns the request id stored by the request id interceptor.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDKey{}).(string)
	return id, ok && id != ""
}
