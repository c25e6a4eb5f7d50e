package link

import "context"

// Repository defines durable storage for links. Implementations must enforce
// short code uniqueness at the storage layer as the final backstop against
// concurrent creates racing past the existence check.
type Repository interface {
	// Create persists a new link. Returns ErrDuplicateCode if the code is
	// already taken.
	Create(ctx context.Context, l *Link) error

	// FindByCode retrieves a link by its short code. Returns ErrNotFound
	// if no link exists for the code.
	FindByCode(ctx context.Context, code Code) (*Link, error)

	// FindByOwner retrieves all links created by the given owner.
	FindByOwner(ctx context.Context, ownerID string) ([]*Link, error)

	// FindAll retrieves every link.
	FindAll(ctx context.Context) ([]*Link, error)

	// Delete removes the link with the given code. Deleting a missing code
	// is not an error.
	Delete(ctx context.Context, code Code) error
}
