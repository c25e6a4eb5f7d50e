package link

import "time"

// Code represents a short link code.
type Code string

// Link represents a shortened link. Links are immutable once created except
// for deletion by their owner or an admin.
type Link struct {
	Code      Code
	LongURL   string
	OwnerID   string     // empty for anonymous links
	ExpiresAt *time.Time // nil means the link never expires
	CreatedAt time.Time
}

// Expired reports whether the link's expiration time has passed.
func (l *Link) Expired(now time.Time) bool {
	return l.ExpiresAt != nil && l.ExpiresAt.Before(now)
}

// CacheKey returns the cache key holding the resolved long URL for a code.
func CacheKey(code Code) string {
	return "link:" + string(code)
}
