package middleware

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/shortloop/shortloop/internal/handlers"
	"github.com/shortloop/shortloop/internal/ratelimit"
	"go.uber.org/zap"
)

// RateLimiter gates every request through the fixed-window limiter. The
// identity is the authenticated user when available, else the client
// address, so authenticated traffic is limited per user rather than per
// address. A limiter backend outage fails open: the cache is an
// optimization, never a correctness dependency.
//
// Must run after RequestMeta so the identity is available.
func RateLimiter(api huma.API, limiter ratelimit.Limiter, logger *zap.Logger) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		if cfg := ratelimit.EndpointConfigFrom(ctx); cfg != nil && cfg.Disabled {
			next(ctx)

			return
		}

		meta := handlers.RequestMetaFromContext(ctx.Context())

		identity := ratelimit.IPIdentity(meta.ClientIP)
		if meta.UserID != "" {
			identity = ratelimit.UserIdentity(meta.UserID)
		}

		allowed, err := limiter.Allow(ctx.Context(), identity)
		if err != nil {
			logger.Warn("rate limiter unavailable, allowing request",
				zap.String("identity", identity.Key()),
				zap.Error(err),
			)
			next(ctx)

			return
		}

		if !allowed {
			_ = huma.WriteErr(api, ctx, http.StatusTooManyRequests, "rate limit exceeded")

			return
		}

		next(ctx)
	}
}
