package middleware

import (
	"net"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/shortloop/shortloop/internal/handlers"
)

type identityClaims struct {
	jwt.RegisteredClaims

	Admin bool `json:"adm,omitempty"`
}

// RequestMeta is a middleware that adds client IP, user agent, referrer, and
// the verified bearer identity to the request context. Token verification is
// consumption only; issuance lives elsewhere. An invalid token leaves the
// request anonymous rather than rejecting it, since redirects are public.
func RequestMeta(jwtSecret []byte) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		meta := handlers.RequestMeta{
			ClientIP:  clientIP(ctx),
			UserAgent: ctx.Header("User-Agent"),
			Referrer:  ctx.Header("Referer"),
		}

		if token := bearerToken(ctx.Header("Authorization")); token != "" && len(jwtSecret) > 0 {
			claims := &identityClaims{}

			parsed, err := jwt.ParseWithClaims(token, claims, func(_ *jwt.Token) (any, error) {
				return jwtSecret, nil
			}, jwt.WithValidMethods([]string{"HS256"}))
			if err == nil && parsed.Valid {
				meta.UserID = claims.Subject
				meta.Admin = claims.Admin
			}
		}

		newCtx := handlers.ContextWithRequestMeta(ctx.Context(), meta)
		ctx = huma.WithContext(ctx, newCtx)

		next(ctx)
	}
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}

	return strings.TrimSpace(header[len(prefix):])
}

// clientIP extracts the client IP from the request, considering proxies.
func clientIP(ctx huma.Context) string {
	// X-Forwarded-For may contain multiple IPs; the first is the client.
	if xff := ctx.Header("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}

		return strings.TrimSpace(xff)
	}

	if xri := ctx.Header("X-Real-IP"); xri != "" {
		return xri
	}

	host := ctx.RemoteAddr()

	ip, _, err := net.SplitHostPort(host)
	if err != nil {
		return host
	}

	return ip
}
