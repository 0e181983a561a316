package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	dErrors "mintgate/pkg/domain-errors"
	"mintgate/pkg/platform/httputil"
	"mintgate/pkg/requestcontext"
)

// OperatorClaims are the JWT claims carried by an operator session token.
// Operators get read access to instrument state; state changes always require
// a signed request from a role holder.
type OperatorClaims struct {
	Operator string `json:"operator"`
	jwt.RegisteredClaims
}

type contextKeyOperator struct{}

// GetOperator retrieves the authenticated operator name from the context.
func GetOperator(ctx context.Context) string {
	if op, ok := ctx.Value(contextKeyOperator{}).(string); ok {
		return op
	}
	return ""
}

// IssueOperatorToken mints an HS256 session token for an operator. Used by
// provisioning tooling and tests.
func IssueOperatorToken(signingKey, operator string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := OperatorClaims{
		Operator: operator,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "mintgate",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(signingKey))
}

// RequireOperator validates the bearer token on read-only operator endpoints
// and injects the operator name into the request context.
func RequireOperator(signingKey string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok {
				logger.WarnContext(ctx, "operator access without bearer token",
					"path", r.URL.Path,
					"request_id", requestcontext.RequestID(ctx),
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "missing bearer token"))
				return
			}

			claims, err := parseOperatorToken(signingKey, token)
			if err != nil {
				logger.WarnContext(ctx, "operator token rejected",
					"error", err,
					"request_id", requestcontext.RequestID(ctx),
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid or expired token"))
				return
			}

			ctx = context.WithValue(ctx, contextKeyOperator{}, claims.Operator)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func parseOperatorToken(signingKey, tokenString string) (*OperatorClaims, error) {
	claims := &OperatorClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(signingKey), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse operator token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("operator token invalid")
	}
	if claims.Operator == "" {
		return nil, fmt.Errorf("operator token missing operator claim")
	}
	return claims, nil
}
