package middleware

import (
	"net/http"
	"runtime/debug"

	"go.uber.org/zap"

	"optysys-backend/pkg/utils"
)

// Recovery turns panics into a JSON 500 response instead of a dropped
// connection, and logs the stack.
func Recovery(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					log.Error("panic recovered",
						zap.Any("panic", rec),
						zap.String("method", r.Method),
						zap.String("path", r.URL.Path),
						zap.ByteString("stack", debug.Stack()),
					)
					utils.WriteInternalServerErrorResponse(w, "Internal server error occurred")
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
