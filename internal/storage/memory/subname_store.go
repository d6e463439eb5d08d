package memory

import (
	"context"
	"sort"
	"sync"

	"omnirep/internal/domain"
	"omnirep/internal/storage"
)

// SubnameStore is an in-memory implementation of storage.SubnameStore.
type SubnameStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Subname // keyed by full name
}

// NewSubnameStore creates a new in-memory subname store.
func NewSubnameStore() *SubnameStore {
	return &SubnameStore{
		data: make(map[string]*domain.Subname),
	}
}

// Insert adds a new subname. Returns ErrDuplicateKey if name exists.
func (s *SubnameStore) Insert(_ context.Context, sub *domain.Subname) error {
	if sub == nil || sub.Name == "" || sub.Owner == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[sub.Name]; exists {
		return storage.ErrDuplicateKey
	}

	subCopy := *sub
	s.data[sub.Name] = &subCopy
	return nil
}

// GetByName retrieves a subname by full name. Returns ErrNotFound if not exists.
func (s *SubnameStore) GetByName(_ context.Context, name string) (*domain.Subname, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sub, exists := s.data[name]
	if !exists {
		return nil, storage.ErrNotFound
	}

	subCopy := *sub
	return &subCopy, nil
}

// GetByOwner retrieves all subnames owned by a wallet, ordered by name ASC.
func (s *SubnameStore) GetByOwner(_ context.Context, owner string) ([]*domain.Subname, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Subname
	for _, sub := range s.data {
		if sub.Owner == owner {
			subCopy := *sub
			result = append(result, &subCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})

	return result, nil
}

// Verify interface compliance at compile time.
var _ storage.SubnameStore = (*SubnameStore)(nil)
