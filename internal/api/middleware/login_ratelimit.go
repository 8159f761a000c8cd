package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"
	"go.uber.org/zap"
)

// LoginRateLimit throttles credential-guessing on the login endpoint:
// requests per IP within the window, on top of the global limiter.
func LoginRateLimit(requests int, window time.Duration, logger *zap.Logger) func(http.Handler) http.Handler {
	return httprate.Limit(
		requests,
		window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			logger.Warn("login rate limit exceeded",
				zap.String("remote_addr", r.RemoteAddr),
				zap.String("user_agent", r.UserAgent()),
			)
			writeError(w, http.StatusTooManyRequests, "too many login attempts, try again later")
		}),
	)
}
