package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/txgate/txgate/application/port/inbound"
	"github.com/txgate/txgate/infrastructure/http/response"
	"github.com/txgate/txgate/infrastructure/service/logger"
)

type RateLimitMiddleware struct {
	rateLimitService inbound.RateLimitService
	logger           logger.Logger
	limit            int
	window           time.Duration
	blockDuration    time.Duration
}

func NewRateLimitMiddleware(rateLimitService inbound.RateLimitService, log logger.Logger, limit int, window, blockDuration time.Duration) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		rateLimitService: rateLimitService,
		logger:           log,
		limit:            limit,
		window:           window,
		blockDuration:    blockDuration,
	}
}

// RateLimit throttles the transaction endpoint per client IP. Rate limit
// service errors fail open: a flaky Redis must not take the endpoint down.
func (m *RateLimitMiddleware) RateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		clientIP := GetClientIP(r)

		if m.rateLimitService == nil {
			next.ServeHTTP(w, r)
			return
		}

		key := fmt.Sprintf("tx:ip:%s", clientIP)

		isBlocked, err := m.rateLimitService.IsBlocked(ctx, key)
		if err != nil {
			m.logger.Error(ctx, "Failed to check block status", err, map[string]interface{}{
				"ip": clientIP,
			})
		}

		if isBlocked {
			logger.LogSecurityEvent(ctx, m.logger, "rate_limit_blocked", "MEDIUM", map[string]interface{}{
				"ip":   clientIP,
				"path": r.URL.Path,
			})

			w.Header().Set("Retry-After", fmt.Sprintf("%d", int(m.blockDuration.Seconds())))
			response.Error(w, http.StatusTooManyRequests, "Too many requests. Please try again later.")
			return
		}

		allowed, err := m.rateLimitService.CheckLimit(ctx, key, m.limit, m.window)
		if err != nil {
			m.logger.Error(ctx, "Failed to check rate limit", err, map[string]interface{}{
				"ip": clientIP,
			})
			allowed = true
		}

		if !allowed {
			if err := m.rateLimitService.Block(ctx, key, m.blockDuration, "Rate limit exceeded"); err != nil {
				m.logger.Error(ctx, "Failed to block IP", err, map[string]interface{}{
					"ip": clientIP,
				})
			}

			logger.LogSecurityEvent(ctx, m.logger, "rate_limit_exceeded", "HIGH", map[string]interface{}{
				"ip":   clientIP,
				"path": r.URL.Path,
			})

			w.Header().Set("Retry-After", fmt.Sprintf("%d", int(m.blockDuration.Seconds())))
			response.Error(w, http.StatusTooManyRequests, "Too many requests. Please try again later.")
			return
		}

		if err := m.rateLimitService.Increment(ctx, key, m.window); err != nil {
			m.logger.Error(ctx, "Failed to increment rate limit", err, map[string]interface{}{
				"ip": clientIP,
			})
		}

		next.ServeHTTP(w, r)
	})
}

// GetClientIP extracts the client IP from proxy headers or RemoteAddr.
func GetClientIP(r *http.Request) string {
	xff := r.Header.Get("X-Forwarded-For")
	if xff != "" {
		ips := strings.Split(xff, ",")
		if len(ips) > 0 {
			return strings.TrimSpace(ips[0])
		}
	}

	xri := r.Header.Get("X-Real-IP")
	if xri != "" {
		return xri
	}

	ip := r.RemoteAddr
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx]
	}

	return ip
}
