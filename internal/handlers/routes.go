package handlers

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/shortloop/shortloop/internal/ratelimit"
)

// RegisterRoutes registers all API routes.
func RegisterRoutes(api huma.API, links *LinkHandler, stats *StatsHandler, health *HealthHandler) {
	huma.Register(api, huma.Operation{
		Method:      http.MethodPost,
		Path:        "/shorten",
		Summary:     "Create short link",
		Description: "Shortens a URL, optionally with a custom code and an expiration time.",
		Tags:        []string{"Links"},
	}, links.Shorten)

	huma.Register(api, huma.Operation{
		Method:  http.MethodGet,
		Path:    "/links",
		Summary: "List own links",
		Tags:    []string{"Links"},
	}, links.MyLinks)

	huma.Register(api, huma.Operation{
		Method:  http.MethodGet,
		Path:    "/admin/links",
		Summary: "List all links",
		Tags:    []string{"Admin"},
	}, links.AdminLinks)

	huma.Register(api, huma.Operation{
		Method:        http.MethodDelete,
		Path:          "/links/{shortCode}",
		Summary:       "Delete link",
		Tags:          []string{"Links"},
		DefaultStatus: http.StatusNoContent,
	}, links.Delete)

	huma.Register(api, huma.Operation{
		Method:  http.MethodGet,
		Path:    "/{shortCode}/stats",
		Summary: "Link click stats",
		Tags:    []string{"Analytics"},
	}, stats.Get)

	huma.Register(api, huma.Operation{
		Method:      http.MethodGet,
		Path:        "/{shortCode}",
		Summary:     "Redirect to original URL",
		Description: "Redirects to the original URL and records a click event.",
		Tags:        []string{"Links"},
	}, links.Redirect)

	huma.Register(api, huma.Operation{
		Method:  http.MethodGet,
		Path:    "/healthz",
		Summary: "Health check",
		Tags:    []string{"Health"},
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{Disabled: true},
		},
	}, health.Check)
}
