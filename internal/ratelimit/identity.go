package ratelimit

import "fmt"

// Identity is the subject a limit applies to. Using the authenticated user
// when available and the client address otherwise changes the limiting
// granularity per request: per-user for authenticated traffic, per-address
// for anonymous traffic.
type Identity struct {
	Kind  string
	Value string
}

// UserIdentity limits by authenticated user id.
func UserIdentity(id string) Identity {
	return Identity{Kind: "user", Value: id}
}

// IPIdentity limits by client network address.
func IPIdentity(addr string) Identity {
	return Identity{Kind: "ip", Value: addr}
}

// Key returns the cache key holding this identity's window counter.
func (i Identity) Key() string {
	return fmt.Sprintf("rate-limit:%s:%s", i.Kind, i.Value)
}
