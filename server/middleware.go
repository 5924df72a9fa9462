package server

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/juju/ratelimit"

	"github.com/quantalabs/analysis-api/apperrors"
	"github.com/quantalabs/analysis-api/config"
	"github.com/quantalabs/analysis-api/handlers"
	"github.com/quantalabs/analysis-api/logging"
	"github.com/quantalabs/analysis-api/metrics"
	"github.com/quantalabs/analysis-api/shutdown"
)

// statusWriter captures the response status code for metric labels.
type statusWriter struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusWriter) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}

// RequestTracker gates admission through the shutdown coordinator, times the
// request, and records the metric series once the response is determined.
//
// Rejected admissions increment only the error counter: no latency sample,
// no request count, and the rest of the pipeline never runs. For admitted
// requests the release is deferred, so the in-flight count is balanced on
// every exit path including panics.
func RequestTracker(coordinator *shutdown.Coordinator, registry *metrics.Registry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := coordinator.Admit(); err != nil {
				registry.ErrorsTotal.WithLabelValues(endpointLabel(r), apperrors.KindOf(err).String()).Inc()
				handlers.RespondError(w, r, err)
				return
			}
			defer coordinator.Release()

			// Panics still count as an internal error before the Recoverer
			// renders the 500.
			defer func() {
				if rec := recover(); rec != nil {
					registry.ErrorsTotal.WithLabelValues(endpointLabel(r), apperrors.KindInternal.String()).Inc()
					panic(rec)
				}
			}()

			ctx := apperrors.WithClassification(r.Context())
			r = r.WithContext(ctx)

			start := time.Now()
			ww := &statusWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(ww, r)

			endpoint := endpointLabel(r)
			if kind := apperrors.ClassifiedKind(ctx); kind != "" {
				registry.ErrorsTotal.WithLabelValues(endpoint, kind.String()).Inc()
				return
			}

			registry.RequestDuration.WithLabelValues(r.Method, endpoint).Observe(time.Since(start).Seconds())
			registry.RequestsTotal.WithLabelValues(r.Method, endpoint, strconv.Itoa(ww.statusCode)).Inc()
		})
	}
}

// endpointLabel prefers the chi route pattern so path parameters cannot
// explode label cardinality; before routing has happened it falls back to
// the raw path.
func endpointLabel(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}

// RealIPMiddleware extracts the real client IP from X-Forwarded-For
func RealIPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			// Take the first IP from the comma-separated list
			if idx := strings.Index(xff, ","); idx != -1 {
				xff = xff[:idx]
			}
			r.RemoteAddr = strings.TrimSpace(xff)
		}
		next.ServeHTTP(w, r)
	})
}

// RequestSizeMiddleware limits the size of request headers and body
func RequestSizeMiddleware(cfg *config.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if contentLength := r.Header.Get("Content-Length"); contentLength != "" {
				if length, err := strconv.ParseInt(contentLength, 10, 64); err == nil && length > cfg.MaxRequestBody {
					logging.Warn("Request body too large",
						"content_length", length,
						"max_allowed", cfg.MaxRequestBody,
						"remote_addr", r.RemoteAddr)

					handlers.RespondWithJSON(w, http.StatusRequestEntityTooLarge, map[string]any{
						"error":   http.StatusText(http.StatusRequestEntityTooLarge),
						"message": "request body too large",
						"code":    http.StatusRequestEntityTooLarge,
					})
					return
				}
			}

			headerSize := int64(0)
			for key, values := range r.Header {
				headerSize += int64(len(key))
				for _, value := range values {
					headerSize += int64(len(value))
				}
			}

			if headerSize > cfg.MaxHeaderSize {
				logging.Warn("Request headers too large",
					"header_size", headerSize,
					"max_allowed", cfg.MaxHeaderSize,
					"remote_addr", r.RemoteAddr)

				handlers.RespondWithJSON(w, http.StatusRequestHeaderFieldsTooLarge, map[string]any{
					"error":   http.StatusText(http.StatusRequestHeaderFieldsTooLarge),
					"message": "request headers too large",
					"code":    http.StatusRequestHeaderFieldsTooLarge,
				})
				return
			}

			// Hard cap on the actual body read, in case Content-Length lied
			r.Body = http.MaxBytesReader(w, r.Body, cfg.MaxRequestBody)

			next.ServeHTTP(w, r)
		})
	}
}

// RateLimiter manages per-client token buckets.
type RateLimiter struct {
	mu      sync.RWMutex
	clients map[string]*ratelimit.Bucket
	rate    float64
	burst   int64
}

// NewRateLimiter creates a rate limiter and starts its background cleanup.
func NewRateLimiter(rate float64, burst int64) *RateLimiter {
	rl := &RateLimiter{
		clients: make(map[string]*ratelimit.Bucket),
		rate:    rate,
		burst:   burst,
	}
	rl.cleanup()
	return rl
}

func (rl *RateLimiter) bucket(clientIP string) *ratelimit.Bucket {
	rl.mu.RLock()
	bucket, exists := rl.clients[clientIP]
	rl.mu.RUnlock()

	if !exists {
		rl.mu.Lock()
		if bucket, exists = rl.clients[clientIP]; !exists {
			bucket = ratelimit.NewBucketWithRate(rl.rate, rl.burst)
			rl.clients[clientIP] = bucket
		}
		rl.mu.Unlock()
	}

	return bucket
}

// cleanup periodically drops buckets that have refilled completely, i.e.
// clients idle long enough to not matter anymore.
func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(30 * time.Minute)
	go func() {
		for range ticker.C {
			rl.mu.Lock()
			for ip, bucket := range rl.clients {
				if bucket.Available() == bucket.Capacity() {
					delete(rl.clients, ip)
				}
			}
			rl.mu.Unlock()
		}
	}()
}

// Handler rejects clients that have exhausted their token bucket. The
// payload endpoint costs more tokens than the probes.
func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cost := tokenCost(r)

		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			host = r.RemoteAddr
		}

		if rl.bucket(host).TakeAvailable(cost) < cost {
			logging.Warn("Rate limit exceeded", "remote_addr", r.RemoteAddr, "path", r.URL.Path)

			w.Header().Set("Retry-After", "1")
			handlers.RespondWithJSON(w, http.StatusTooManyRequests, map[string]any{
				"error":   http.StatusText(http.StatusTooManyRequests),
				"message": "rate limit exceeded",
				"code":    http.StatusTooManyRequests,
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}

func tokenCost(r *http.Request) int64 {
	switch r.URL.Path {
	case "/payload":
		return 5
	default:
		return 1
	}
}
