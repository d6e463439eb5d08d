package memory

import (
	"context"
	"sort"
	"sync"

	"omnirep/internal/domain"
	"omnirep/internal/storage"
)

// ScoreHistoryStore is an in-memory implementation of storage.ScoreHistoryStore.
type ScoreHistoryStore struct {
	mu   sync.RWMutex
	data map[string]*domain.ScoreSnapshot // keyed by snapshot_id
}

// NewScoreHistoryStore creates a new in-memory score history store.
func NewScoreHistoryStore() *ScoreHistoryStore {
	return &ScoreHistoryStore{
		data: make(map[string]*domain.ScoreSnapshot),
	}
}

// Insert adds a new snapshot. Returns ErrDuplicateKey if snapshot_id exists.
func (s *ScoreHistoryStore) Insert(_ context.Context, snap *domain.ScoreSnapshot) error {
	if snap == nil || snap.SnapshotID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[snap.SnapshotID]; exists {
		return storage.ErrDuplicateKey
	}

	snapCopy := *snap
	s.data[snap.SnapshotID] = &snapCopy
	return nil
}

// GetByTimeRange retrieves snapshots for an address within [start, end] (inclusive).
func (s *ScoreHistoryStore) GetByTimeRange(_ context.Context, address string, start, end int64) ([]*domain.ScoreSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.ScoreSnapshot
	for _, snap := range s.data {
		if snap.Address == address && snap.RecordedAt >= start && snap.RecordedAt <= end {
			snapCopy := *snap
			result = append(result, &snapCopy)
		}
	}

	// Sort by recorded_at ASC
	sort.Slice(result, func(i, j int) bool {
		return result[i].RecordedAt < result[j].RecordedAt
	})

	return result, nil
}

// Verify interface compliance at compile time.
var _ storage.ScoreHistoryStore = (*ScoreHistoryStore)(nil)
