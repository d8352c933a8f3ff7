package middleware

import (
	"context"
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// logUser carries the authenticated user id back up the chain. The logger
// runs before the authorization gate, so it cannot read the gate's derived
// context; instead it plants this holder and the gate fills it in.
type logUser struct {
	id string
}

const logUserKey ContextKey = "logUser"

// setLogUser records the authenticated user for the request log line
func setLogUser(ctx context.Context, userID string) {
	if holder, ok := ctx.Value(logUserKey).(*logUser); ok {
		holder.id = userID
	}
}

// Logger logs one structured line per request: method, path, status,
// duration, user (when authenticated) and client ip.
func Logger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			holder := &logUser{}
			r = r.WithContext(context.WithValue(r.Context(), logUserKey, holder))

			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
				zap.String("ip", clientIP(r)),
			}
			if holder.id != "" {
				fields = append(fields, zap.String("user", holder.id))
			}
			if reqID := chimiddleware.GetReqID(r.Context()); reqID != "" {
				fields = append(fields, zap.String("request_id", reqID))
			}

			switch {
			case ww.Status() >= 500:
				log.Error("request", fields...)
			case ww.Status() >= 400:
				log.Warn("request", fields...)
			default:
				log.Info("request", fields...)
			}
		})
	}
}

// clientIP resolves the client address behind proxies
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}
