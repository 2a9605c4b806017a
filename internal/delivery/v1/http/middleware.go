package http

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/DRSN-tech/inventory-backend/pkg/e"
	"github.com/DRSN-tech/inventory-backend/pkg/logger"
	"github.com/DRSN-tech/inventory-backend/pkg/ratelimit"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

const (
	requestIDHeader = "X-Request-ID"
	clientIDHeader  = "X-Client-ID"
)

type requestIDKey struct{}

// RateLimiter проверяет, укладывается ли очередной запрос клиента в лимит.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (*ratelimit.Result, error)
}

// RequestIDFromCtx возвращает идентификатор запроса, выставленный RequestID.
func RequestIDFromCtx(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// RequestID принимает X-Request-ID клиента или генерирует новый UUID.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}

		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

// Logging пишет в лог метод, путь, статус и длительность каждого запроса.
func Logging(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			log.With(
				"request_id", RequestIDFromCtx(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start).String(),
			).Infof("http request")
		})
	}
}

// RateLimit ограничивает частоту запросов клиента. При недоступности Redis запрос пропускается.
func RateLimit(limiter RateLimiter, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res, err := limiter.Allow(r.Context(), clientKey(r))
			if err != nil {
				log.Warnf("rate limiter unavailable: %v", err)
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(res.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(res.ResetAt.Unix(), 10))

			if !res.Allowed {
				retryAfter := int(time.Until(res.ResetAt).Seconds()) + 1
				if retryAfter < 1 {
					retryAfter = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				WriteError(w, e.ErrTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientKey берёт X-Client-ID, а без него IP клиента.
func clientKey(r *http.Request) string {
	if id := r.Header.Get(clientIDHeader); id != "" {
		return "client:" + id
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}

	return "ip:" + host
}
