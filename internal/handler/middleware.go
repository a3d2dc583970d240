package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gastrohub/financas-go/internal/service"
	"go.uber.org/zap"
)

type contextKey string

const (
	storeIDKey contextKey = "storeID"
	userIDKey  contextKey = "userID"
)

// JWTAuthMiddleware validates Bearer tokens and injects the caller's store
// into context. Every data route below it is tenant-scoped by that store.
func JWTAuthMiddleware(verifier *service.TokenVerifier, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.Warn("auth: missing token",
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
				)
				writeError(w, http.StatusUnauthorized, "Token de autenticação não fornecido")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				logger.Warn("auth: invalid token format",
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
				)
				writeError(w, http.StatusUnauthorized, "Formato de token inválido")
				return
			}

			claims, err := verifier.ValidateAccessToken(parts[1])
			if err != nil {
				logger.Warn("auth: invalid or expired token",
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
					zap.Error(err),
				)
				writeError(w, http.StatusUnauthorized, err.Error())
				return
			}

			ctx := context.WithValue(r.Context(), storeIDKey, claims.StoreID)
			ctx = context.WithValue(ctx, userIDKey, claims.Sub)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// StoreIDFromContext extracts the authenticated store ID from context.
func StoreIDFromContext(ctx context.Context) string {
	v, _ := ctx.Value(storeIDKey).(string)
	return v
}

// UserIDFromContext extracts the authenticated user ID from context.
func UserIDFromContext(ctx context.Context) string {
	v, _ := ctx.Value(userIDKey).(string)
	return v
}
