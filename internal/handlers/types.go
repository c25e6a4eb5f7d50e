package handlers

import (
	"time"

	"github.com/shortloop/shortloop/internal/analytics"
)

// ShortenRequest is the request body for creating a short link.
type ShortenRequest struct {
	Body struct {
		LongURL         string     `doc:"The URL to shorten"                              example:"https://example.com/very/long/path" format:"uri" json:"longUrl"`
		CustomShortCode string     `doc:"Optional custom short code, used verbatim"       example:"abc123"                             json:"customShortCode,omitempty" maxLength:"64" pattern:"^[A-Za-z0-9_-]*$" required:"false"`
		ExpiresAt       *time.Time `doc:"Optional expiration time, must be in the future" json:"expiresAt,omitempty"                   required:"false"`
	}
}

// ShortenResponse is the response for a successfully created short link.
type ShortenResponse struct {
	Headers struct {
		Location string `doc:"The short URL location" header:"Location"`
	}
	Body struct {
		ShortCode string     `doc:"The short code"     example:"abc123"                             json:"shortCode"`
		ShortURL  string     `doc:"The full short URL" example:"http://localhost:8888/abc123"       json:"shortUrl"`
		LongURL   string     `doc:"The original URL"   example:"https://example.com/very/long/path" json:"longUrl"`
		ExpiresAt *time.Time `doc:"Expiration time"    json:"expiresAt,omitempty"`
	}
}

// RedirectRequest is the request for resolving a short code.
type RedirectRequest struct {
	Code string `doc:"The short code" example:"abc123" path:"shortCode"`
}

// RedirectResponse redirects the client to the original URL.
type RedirectResponse struct {
	Status  int
	Headers struct {
		Location string `doc:"The original URL" header:"Location"`
	}
}

// DeleteLinkRequest is the request for deleting a link.
type DeleteLinkRequest struct {
	Code string `doc:"The short code" example:"abc123" path:"shortCode"`
}

// StatsRequest is the request for a link's click stats.
type StatsRequest struct {
	Code string `doc:"The short code" example:"abc123" path:"shortCode"`
}

// StatsResponse carries the aggregated click stats for a link.
type StatsResponse struct {
	Body analytics.Stats
}

// LinkWithStats is a link enriched with its aggregated click stats.
type LinkWithStats struct {
	ShortCode string           `json:"shortCode"`
	LongURL   string           `json:"longUrl"`
	ExpiresAt *time.Time       `json:"expiresAt,omitempty"`
	CreatedAt time.Time        `json:"createdAt"`
	Stats     *analytics.Stats `json:"stats,omitempty"`
}

// ListLinksResponse is the response for link listings.
type ListLinksResponse struct {
	Body struct {
		Links []LinkWithStats `json:"links"`
	}
}
