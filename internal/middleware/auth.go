package middleware

import (
	"context"
	"net/http"
	"strings"

	"stock-backend/internal/apperrors"
	"stock-backend/internal/auth"
	"stock-backend/internal/logging"
	"stock-backend/pkg/utils"
)

type contextKey string

const UserIDKey contextKey = "user_id"
const UsernameKey contextKey = "username"

type AuthMiddleware struct {
	jwtManager *auth.JWTManager
}

func NewAuthMiddleware(jwtManager *auth.JWTManager) *AuthMiddleware {
	return &AuthMiddleware{jwtManager: jwtManager}
}

// Authenticate is a middleware that validates access tokens
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := BearerToken(r)
		if !ok {
			utils.Error(w, apperrors.ErrUnauthorized("Authorization header required"))
			return
		}

		claims, err := m.jwtManager.ValidateAccessToken(token)
		if err != nil {
			utils.Error(w, apperrors.ErrUnauthorized("Invalid or expired token"))
			return
		}

		ctx := context.WithValue(r.Context(), UserIDKey, claims.UserID)
		ctx = context.WithValue(ctx, UsernameKey, claims.Username)
		// tag the request logger with the caller
		ctx = logging.WithContext(ctx, logging.FromContext(ctx, nil).WithUser(claims.UserID, claims.Username))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// BearerToken extracts the token from "Authorization: Bearer <token>"
func BearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}

// GetUserIDFromContext extracts user ID from request context
func GetUserIDFromContext(ctx context.Context) (int, bool) {
	userID, ok := ctx.Value(UserIDKey).(int)
	return userID, ok
}

func GetUsernameFromContext(ctx context.Context) (string, bool) {
	username, ok := ctx.Value(UsernameKey).(string)
	return username, ok
}
