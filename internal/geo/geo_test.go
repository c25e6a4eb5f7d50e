package geo

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestResolver(t *testing.T, ttl time.Duration, handler http.HandlerFunc) (*HTTPResolver, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	resolver := NewHTTPResolver(ttl)
	resolver.baseURL = server.URL

	return resolver, server
}

func TestHTTPResolver_CountryCode(t *testing.T) {
	t.Run("resolves a public address", func(t *testing.T) {
		resolver, _ := newTestResolver(t, time.Hour, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/203.0.113.7", r.URL.Path)
			fmt.Fprint(w, `{"success":true,"country_code":"us"}`)
		})

		country := resolver.CountryCode(context.Background(), "203.0.113.7")

		assert.Equal(t, "US", country)
	})

	t.Run("caches lookups for the TTL", func(t *testing.T) {
		var calls atomic.Int64

		resolver, _ := newTestResolver(t, time.Hour, func(w http.ResponseWriter, _ *http.Request) {
			calls.Add(1)
			fmt.Fprint(w, `{"success":true,"country_code":"DE"}`)
		})

		for n := 0; n < 3; n++ {
			require.Equal(t, "DE", resolver.CountryCode(context.Background(), "203.0.113.7"))
		}

		assert.Equal(t, int64(1), calls.Load())
	})

	t.Run("failed lookups are cached too", func(t *testing.T) {
		var calls atomic.Int64

		resolver, _ := newTestResolver(t, time.Hour, func(w http.ResponseWriter, _ *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusInternalServerError)
		})

		for n := 0; n < 3; n++ {
			require.Empty(t, resolver.CountryCode(context.Background(), "203.0.113.7"))
		}

		assert.Equal(t, int64(1), calls.Load())
	})

	t.Run("unsuccessful responses resolve to empty", func(t *testing.T) {
		resolver, _ := newTestResolver(t, time.Hour, func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, `{"success":false}`)
		})

		assert.Empty(t, resolver.CountryCode(context.Background(), "203.0.113.7"))
	})

	t.Run("private and loopback addresses skip the network", func(t *testing.T) {
		var calls atomic.Int64

		resolver, _ := newTestResolver(t, time.Hour, func(w http.ResponseWriter, _ *http.Request) {
			calls.Add(1)
			fmt.Fprint(w, `{"success":true,"country_code":"US"}`)
		})

		for _, ip := range []string{"", "127.0.0.1", "10.0.0.1", "192.168.1.1", "169.254.1.1", "not-an-ip"} {
			assert.Empty(t, resolver.CountryCode(context.Background(), ip))
		}

		assert.Zero(t, calls.Load())
	})

	t.Run("rejects malformed country codes", func(t *testing.T) {
		resolver, _ := newTestResolver(t, time.Hour, func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, `{"success":true,"country_code":"USA"}`)
		})

		assert.Empty(t, resolver.CountryCode(context.Background(), "203.0.113.7"))
	})
}

func TestNoop(t *testing.T) {
	assert.Empty(t, Noop{}.CountryCode(context.Background(), "203.0.113.7"))
}
