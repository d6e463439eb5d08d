package memory

import (
	"context"
	"slices"
	"sync"

	"omnirep/internal/domain"
	"omnirep/internal/storage"
)

// ReputationStore is an in-memory implementation of storage.ReputationStore.
type ReputationStore struct {
	mu   sync.RWMutex
	data map[string]*domain.ReputationData // keyed by address
}

// NewReputationStore creates a new in-memory reputation store.
func NewReputationStore() *ReputationStore {
	return &ReputationStore{
		data: make(map[string]*domain.ReputationData),
	}
}

// Upsert stores data as the latest result for its address.
func (s *ReputationStore) Upsert(_ context.Context, data *domain.ReputationData) error {
	if data == nil || data.Address == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[data.Address] = cloneReputation(data)
	return nil
}

// GetByAddress retrieves the latest result. Returns ErrNotFound if not exists.
func (s *ReputationStore) GetByAddress(_ context.Context, address string) (*domain.ReputationData, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, exists := s.data[address]
	if !exists {
		return nil, storage.ErrNotFound
	}
	return cloneReputation(data), nil
}

// cloneReputation copies data including the insight slices.
func cloneReputation(data *domain.ReputationData) *domain.ReputationData {
	dataCopy := *data
	dataCopy.Insights.Strengths = slices.Clone(data.Insights.Strengths)
	dataCopy.Insights.Improvements = slices.Clone(data.Insights.Improvements)
	dataCopy.Insights.NextMilestones = slices.Clone(data.Insights.NextMilestones)
	return &dataCopy
}

// Verify interface compliance at compile time.
var _ storage.ReputationStore = (*ReputationStore)(nil)
