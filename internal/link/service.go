package link

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shortloop/shortloop/internal/cache"
	"go.uber.org/zap"
)

// generateAttempts bounds the regenerate loop when an auto-generated code
// collides. Custom codes are never regenerated.
const generateAttempts = 3

// CreateParams carries the inputs for creating a link.
type CreateParams struct {
	LongURL    string
	CustomCode Code // used verbatim when set
	ExpiresAt  *time.Time
	OwnerID    string
}

// Service orchestrates link creation, cache-aside resolution, and deletion.
// The cache is consulted first on reads and degraded around on failure;
// reads never fail because the cache is down.
type Service struct {
	repo         Repository
	cache        cache.Cache
	generateCode CodeGenerator
	cacheTTL     time.Duration
	timeout      time.Duration
	logger       *zap.Logger
}

// NewService creates a new link service. timeout bounds every dependency
// call so a hung cache or store cannot hang a request.
func NewService(
	repo Repository,
	c cache.Cache,
	generator CodeGenerator,
	cacheTTL time.Duration,
	timeout time.Duration,
	logger *zap.Logger,
) *Service {
	return &Service{
		repo:         repo,
		cache:        c,
		generateCode: generator,
		cacheTTL:     cacheTTL,
		timeout:      timeout,
		logger:       logger,
	}
}

// CreateLink creates a new link. A custom code is used verbatim and fails
// with ErrDuplicateCode on collision; auto-generated codes are regenerated
// up to generateAttempts times before giving up. The cache is populated
// best-effort after a successful persist.
func (s *Service) CreateLink(ctx context.Context, params CreateParams) (*Link, error) {
	var expiresAt *time.Time

	if params.ExpiresAt != nil {
		if !params.ExpiresAt.After(time.Now()) {
			return nil, ErrInvalidExpiration
		}

		expiresAt = params.ExpiresAt
	}

	code := params.CustomCode
	attempts := 1

	if code == "" {
		code = Code(s.generateCode())
		attempts = generateAttempts
	}

	var created *Link

	for n := 0; n < attempts; n++ {
		l := &Link{
			Code:      code,
			LongURL:   params.LongURL,
			OwnerID:   params.OwnerID,
			ExpiresAt: expiresAt,
			CreatedAt: time.Now(),
		}

		err := s.create(ctx, l)
		if err == nil {
			created = l

			break
		}

		if !errors.Is(err, ErrDuplicateCode) {
			return nil, err
		}

		if params.CustomCode != "" {
			return nil, ErrDuplicateCode
		}

		code = Code(s.generateCode())
	}

	if created == nil {
		return nil, ErrDuplicateCode
	}

	// Write-through is best-effort: a cache failure must not fail the create.
	cctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.cache.Set(cctx, CacheKey(created.Code), created.LongURL, s.cacheTTL); err != nil {
		s.logger.Warn("cache write failed after create",
			zap.String("code", string(created.Code)),
			zap.Error(err),
		)
	}

	return created, nil
}

func (s *Service) create(ctx context.Context, l *Link) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	_, err := s.repo.FindByCode(ctx, l.Code)
	if err == nil {
		return ErrDuplicateCode
	}

	if !errors.Is(err, ErrNotFound) {
		return s.unavailable("find link", err)
	}

	if err := s.repo.Create(ctx, l); err != nil {
		// Unique constraint is the backstop against creates racing past
		// the existence check.
		if errors.Is(err, ErrDuplicateCode) {
			return ErrDuplicateCode
		}

		return s.unavailable("create link", err)
	}

	return nil
}

// Resolve returns the long URL for a code using a cache-aside read. A cache
// hit returns immediately without re-checking expiry against the store; the
// staleness window is bounded by the cache TTL. On a miss the store is read,
// expiry is enforced, and the cache is repopulated fire-and-forget so a
// client disconnect does not abandon the write.
func (s *Service) Resolve(ctx context.Context, code Code) (string, error) {
	cctx, cancel := s.withTimeout(ctx)
	defer cancel()

	longURL, err := s.cache.Get(cctx, CacheKey(code))
	if err == nil {
		return longURL, nil
	}

	if !errors.Is(err, cache.ErrMiss) {
		s.logger.Warn("cache read failed, falling back to store",
			zap.String("code", string(code)),
			zap.Error(err),
		)
	}

	sctx, scancel := s.withTimeout(ctx)
	defer scancel()

	l, err := s.repo.FindByCode(sctx, code)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", ErrNotFound
		}

		return "", s.unavailable("find link", err)
	}

	if l.Expired(time.Now()) {
		return "", ErrExpired
	}

	go s.repopulate(l)

	return l.LongURL, nil
}

// repopulate refreshes the cache after a store hit. It runs detached with
// its own deadline so in-flight repopulation completes even when the request
// context is cancelled.
func (s *Service) repopulate(l *Link) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if err := s.cache.Set(ctx, CacheKey(l.Code), l.LongURL, s.cacheTTL); err != nil {
		s.logger.Debug("cache repopulation failed",
			zap.String("code", string(l.Code)),
			zap.Error(err),
		)
	}
}

// DeleteLink removes a link. When requesterID is set it must match the
// link's owner; callers with elevated privilege pass an empty requesterID to
// bypass the ownership check. Store deletion and cache eviction are
// independent best-effort steps; a stale cache entry self-heals at TTL
// expiry.
func (s *Service) DeleteLink(ctx context.Context, code Code, requesterID string) error {
	fctx, fcancel := s.withTimeout(ctx)
	defer fcancel()

	l, err := s.repo.FindByCode(fctx, code)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}

		return s.unavailable("find link", err)
	}

	if requesterID != "" && l.OwnerID != requesterID {
		return ErrForbidden
	}

	dctx, dcancel := s.withTimeout(ctx)
	defer dcancel()

	if err := s.repo.Delete(dctx, code); err != nil {
		return s.unavailable("delete link", err)
	}

	ectx, ecancel := s.withTimeout(ctx)
	defer ecancel()

	if err := s.cache.Delete(ectx, CacheKey(code)); err != nil {
		s.logger.Warn("cache eviction failed after delete",
			zap.String("code", string(code)),
			zap.Error(err),
		)
	}

	return nil
}

// UserLinks returns every link owned by the given user.
func (s *Service) UserLinks(ctx context.Context, ownerID string) ([]*Link, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	links, err := s.repo.FindByOwner(ctx, ownerID)
	if err != nil {
		return nil, s.unavailable("find links by owner", err)
	}

	return links, nil
}

// AllLinks returns every link. Intended for admin listings.
func (s *Service) AllLinks(ctx context.Context) ([]*Link, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	links, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, s.unavailable("find all links", err)
	}

	return links, nil
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

// unavailable logs the underlying store error and returns ErrUnavailable so
// dependency detail never reaches callers.
func (s *Service) unavailable(op string, err error) error {
	s.logger.Error("link store unavailable", zap.String("op", op), zap.Error(err))

	return fmt.Errorf("%w: %s", ErrUnavailable, op)
}
