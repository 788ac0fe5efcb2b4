package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"stock-backend/internal/apperrors"
	"stock-backend/internal/logging"
	"stock-backend/pkg/utils"
)

func PanicRecovery(logger *logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logging.FromContext(r.Context(), logger).Error("panic recovered",
						"panic", fmt.Sprint(err),
						"method", r.Method,
						"path", r.URL.Path,
						"stack", string(debug.Stack()),
					)
					utils.Error(w, apperrors.ErrInternal(""))
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
