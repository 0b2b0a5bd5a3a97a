package interceptors

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"connectrpc.com/connect"
	"github.com/golang-jwt/jwt/v5"

	"github.com/FACorreiaa/smart-expense-tracker/internal/domain/common"
)

type userIDKey struct{}

var (
	errMissingToken = errors.New("missing bearer token")
	errInvalidToken = errors.New("invalid or expired token")
)

// NewAuthInterceptor validates HS256 bearer tokens and stores the "uid" claim in the
// context. Procedures listed in publicProcedures skip the check.
func NewAuthInterceptor(secret []byte, publicProcedures ...string) connect.UnaryInterceptorFunc {
	public := make(map[string]struct{}, len(publicProcedures))
	for _, p := range publicProcedures {
		public[p] = struct{}{}
	}

	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if _, ok := public[req.Spec().Procedure]; ok {
				return next(ctx, req)
			}

			token, ok := bearerToken(req.Header().Get("Authorization"))
			if !ok {
				return nil, connect.NewError(connect.CodeUnauthenticated, errMissingToken)
			}

			claims, err := ParseToken(secret, token)
			if err != nil {
				return nil, connect.NewError(connect.CodeUnauthenticated, errInvalidToken)
			}

			return next(WithUserID(ctx, claims.UserID), req)
		}
	}
}

// ParseToken verifies an HS256 token and returns its claims.
func ParseToken(secret []byte, token string) (*common.Claims, error) {
	if len(secret) == 0 {
		return nil, errors.New("jwt secret is not configured")
	}

	claims := &common.Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	if !parsed.Valid || claims.UserID == "" {
		return nil, errInvalidToken
	}
	return claims, nil
}

// SignToken issues an HS256 token carrying claims.
func SignToken(secret []byte, claims common.Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// WithUserID returns a context carrying the authenticated user id.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

// GetUserIDFromContext returns the user id set by the auth interceptor.
func GetUserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey{}).(string)
	return id, ok && id != ""
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
