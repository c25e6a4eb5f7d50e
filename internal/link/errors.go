package link

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when no link exists for a code.
	ErrNotFound = errors.New("link not found")

	// ErrExpired is returned when a link exists but its expiration has
	// passed. It matches ErrNotFound under errors.Is so callers that do not
	// distinguish the two treat expired links as missing.
	ErrExpired = fmt.Errorf("%w: link expired", ErrNotFound)

	// ErrDuplicateCode is returned when a short code is already taken.
	ErrDuplicateCode = errors.New("short code already exists")

	// ErrInvalidExpiration is returned when an expiration time is not
	// strictly in the future.
	ErrInvalidExpiration = errors.New("expiration must be in the future")

	// ErrForbidden is returned when a requester tries to delete a link
	// owned by someone else.
	ErrForbidden = errors.New("link belongs to another user")

	// ErrUnavailable is returned when the durable store cannot be reached
	// or times out. Cache failures never produce it; the cache is an
	// optimization, not a dependency for correctness.
	ErrUnavailable = errors.New("dependency unavailable")
)
