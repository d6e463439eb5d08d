package memory

import (
	"context"
	"slices"
	"sort"
	"sync"

	"omnirep/internal/domain"
	"omnirep/internal/storage"
)

// CredentialStore is an in-memory implementation of storage.CredentialStore.
type CredentialStore struct {
	mu   sync.RWMutex
	data map[string]*domain.StoredCredential // keyed by cid
}

// NewCredentialStore creates a new in-memory credential store.
func NewCredentialStore() *CredentialStore {
	return &CredentialStore{
		data: make(map[string]*domain.StoredCredential),
	}
}

// Insert adds a new credential. Returns ErrDuplicateKey if cid exists.
func (s *CredentialStore) Insert(_ context.Context, c *domain.StoredCredential) error {
	if c == nil || c.CID == "" || len(c.Document) == 0 {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[c.CID]; exists {
		return storage.ErrDuplicateKey
	}

	s.data[c.CID] = cloneCredential(c)
	return nil
}

// GetByCID retrieves a credential by content id. Returns ErrNotFound if not exists.
func (s *CredentialStore) GetByCID(_ context.Context, cid string) (*domain.StoredCredential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, exists := s.data[cid]
	if !exists {
		return nil, storage.ErrNotFound
	}
	return cloneCredential(c), nil
}

// GetBySubject retrieves all credentials issued to a subject DID.
func (s *CredentialStore) GetBySubject(_ context.Context, subjectDID string) ([]*domain.StoredCredential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.StoredCredential
	for _, c := range s.data {
		if c.SubjectDID == subjectDID {
			result = append(result, cloneCredential(c))
		}
	}

	// Sort by issued_at ASC, cid ASC
	sort.Slice(result, func(i, j int) bool {
		if result[i].IssuedAt != result[j].IssuedAt {
			return result[i].IssuedAt < result[j].IssuedAt
		}
		return result[i].CID < result[j].CID
	})

	return result, nil
}

func cloneCredential(c *domain.StoredCredential) *domain.StoredCredential {
	credCopy := *c
	credCopy.Document = slices.Clone(c.Document)
	return &credCopy
}

// Verify interface compliance at compile time.
var _ storage.CredentialStore = (*CredentialStore)(nil)
