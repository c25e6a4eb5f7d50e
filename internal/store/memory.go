package store

import (
	"context"
	"sort"
	"sync"

	"github.com/shortloop/shortloop/internal/link"
)

// MemoryLinkStore is an in-memory implementation of link.Repository. Used in
// tests and for running without a database.
type MemoryLinkStore struct {
	mu    sync.RWMutex
	links map[link.Code]link.Link
}

// NewMemoryLinkStore creates a new in-memory link store.
func NewMemoryLinkStore() *MemoryLinkStore {
	return &MemoryLinkStore{links: make(map[link.Code]link.Link)}
}

func (m *MemoryLinkStore) Create(_ context.Context, l *link.Link) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.links[l.Code]; exists {
		return link.ErrDuplicateCode
	}

	m.links[l.Code] = *l

	return nil
}

func (m *MemoryLinkStore) FindByCode(_ context.Context, code link.Code) (*link.Link, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	l, ok := m.links[code]
	if !ok {
		return nil, link.ErrNotFound
	}

	return &l, nil
}

func (m *MemoryLinkStore) FindByOwner(_ context.Context, ownerID string) ([]*link.Link, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var links []*link.Link

	for _, l := range m.links {
		if l.OwnerID == ownerID {
			cp := l
			links = append(links, &cp)
		}
	}

	sortLinks(links)

	return links, nil
}

func (m *MemoryLinkStore) FindAll(_ context.Context) ([]*link.Link, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	links := make([]*link.Link, 0, len(m.links))

	for _, l := range m.links {
		cp := l
		links = append(links, &cp)
	}

	sortLinks(links)

	return links, nil
}

func (m *MemoryLinkStore) Delete(_ context.Context, code link.Code) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.links, code)

	return nil
}

func sortLinks(links []*link.Link) {
	sort.Slice(links, func(i, j int) bool {
		return links[i].CreatedAt.After(links[j].CreatedAt)
	})
}

// Compile-time check.
var _ link.Repository = (*MemoryLinkStore)(nil)
