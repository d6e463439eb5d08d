package memory

import (
	"context"
	"sync"

	"omnirep/internal/domain"
	"omnirep/internal/storage"
)

// GitHubConnectionStore is an in-memory implementation of storage.GitHubConnectionStore.
type GitHubConnectionStore struct {
	mu   sync.RWMutex
	data map[string]*domain.GitHubConnection // keyed by wallet address
}

// NewGitHubConnectionStore creates a new in-memory GitHub connection store.
func NewGitHubConnectionStore() *GitHubConnectionStore {
	return &GitHubConnectionStore{
		data: make(map[string]*domain.GitHubConnection),
	}
}

// Upsert stores the connection for its wallet address.
func (s *GitHubConnectionStore) Upsert(_ context.Context, c *domain.GitHubConnection) error {
	if c == nil || c.Address == "" || c.Username == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	connCopy := *c
	s.data[c.Address] = &connCopy
	return nil
}

// GetByAddress retrieves the connection for a wallet. Returns ErrNotFound if not exists.
func (s *GitHubConnectionStore) GetByAddress(_ context.Context, address string) (*domain.GitHubConnection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, exists := s.data[address]
	if !exists {
		return nil, storage.ErrNotFound
	}

	connCopy := *c
	return &connCopy, nil
}

// Delete removes the connection for a wallet. Returns ErrNotFound if not exists.
func (s *GitHubConnectionStore) Delete(_ context.Context, address string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[address]; !exists {
		return storage.ErrNotFound
	}
	delete(s.data, address)
	return nil
}

// Verify interface compliance at compile time.
var _ storage.GitHubConnectionStore = (*GitHubConnectionStore)(nil)
