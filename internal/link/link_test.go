package link_test

import (
	"testing"
	"time"

	"github.com/shortloop/shortloop/internal/link"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLink_Expired(t *testing.T) {
	now := time.Now()

	t.Run("nil expiry never expires", func(t *testing.T) {
		l := link.Link{Code: "abc123"}

		assert.False(t, l.Expired(now))
	})

	t.Run("future expiry is live", func(t *testing.T) {
		future := now.Add(time.Hour)
		l := link.Link{Code: "abc123", ExpiresAt: &future}

		assert.False(t, l.Expired(now))
	})

	t.Run("past expiry is expired", func(t *testing.T) {
		past := now.Add(-time.Hour)
		l := link.Link{Code: "abc123", ExpiresAt: &past}

		assert.True(t, l.Expired(now))
	})
}

func TestCacheKey(t *testing.T) {
	assert.Equal(t, "link:abc123", link.CacheKey("abc123"))
}

func TestNewCodeGenerator(t *testing.T) {
	t.Run("generates codes of the requested length", func(t *testing.T) {
		generate, err := link.NewCodeGenerator(7)
		require.NoError(t, err)

		code := generate()

		assert.Len(t, code, 7)
	})

	t.Run("codes are unique across calls", func(t *testing.T) {
		generate, err := link.NewCodeGenerator(7)
		require.NoError(t, err)

		seen := make(map[string]struct{})

		for n := 0; n < 100; n++ {
			code := generate()

			_, dup := seen[code]
			require.False(t, dup, "generated a duplicate code: %s", code)
			seen[code] = struct{}{}
		}
	})

	t.Run("rejects invalid length", func(t *testing.T) {
		_, err := link.NewCodeGenerator(0)

		assert.Error(t, err)
	})
}
