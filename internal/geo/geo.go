package geo

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Resolver maps an IP address to an ISO 3166-1 alpha-2 country code. An
// empty result means the country could not be resolved; clicks without a
// country are simply excluded from country breakdowns.
type Resolver interface {
	CountryCode(ctx context.Context, ip string) string
}

const lookupTimeout = 2 * time.Second

type cacheItem struct {
	country string
	expires time.Time
}

// HTTPResolver resolves countries via the ipwho.is lookup service with an
// in-process TTL cache. Private and loopback addresses resolve to empty
// without a network call.
type HTTPResolver struct {
	client  *http.Client
	baseURL string
	ttl     time.Duration

	mu    sync.Mutex
	cache map[string]cacheItem
}

// NewHTTPResolver creates a new resolver caching results for ttl.
func NewHTTPResolver(ttl time.Duration) *HTTPResolver {
	return &HTTPResolver{
		client:  &http.Client{Timeout: lookupTimeout},
		baseURL: "https://ipwho.is",
		ttl:     ttl,
		cache:   make(map[string]cacheItem),
	}
}

func (r *HTTPResolver) CountryCode(ctx context.Context, ip string) string {
	if ip == "" || isPrivateIP(ip) {
		return ""
	}

	now := time.Now()

	r.mu.Lock()
	if item, ok := r.cache[ip]; ok && now.Before(item.expires) {
		r.mu.Unlock()

		return item.country
	}
	r.mu.Unlock()

	country := r.lookup(ctx, ip)

	r.mu.Lock()
	r.cache[ip] = cacheItem{country: country, expires: now.Add(r.ttl)}
	r.mu.Unlock()

	return country
}

func (r *HTTPResolver) lookup(ctx context.Context, ip string) string {
	ctx, cancel := context.WithTimeout(ctx, lookupTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"/"+ip, nil)
	if err != nil {
		return ""
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ""
	}

	var out struct {
		Success     bool   `json:"success"`
		CountryCode string `json:"country_code"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil || !out.Success {
		return ""
	}

	country := strings.ToUpper(strings.TrimSpace(out.CountryCode))
	if len(country) != 2 {
		return ""
	}

	return country
}

func isPrivateIP(ip string) bool {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return true
	}

	return parsed.IsLoopback() || parsed.IsPrivate() || parsed.IsLinkLocalUnicast()
}

// Noop always resolves to empty. Useful when geo lookups are disabled.
type Noop struct{}

func (Noop) CountryCode(context.Context, string) string { return "" }

// Compile-time checks.
var (
	_ Resolver = (*HTTPResolver)(nil)
	_ Resolver = Noop{}
)
