package memory

import (
	"context"
	"errors"
	"testing"

	"omnirep/internal/domain"
	"omnirep/internal/storage"
)

func TestScoreHistoryStore_InsertAndRange(t *testing.T) {
	store := NewScoreHistoryStore()
	ctx := context.Background()

	snaps := []*domain.ScoreSnapshot{
		{SnapshotID: "s3", Address: "0xa", TotalScore: 30, RecordedAt: 3000},
		{SnapshotID: "s1", Address: "0xa", TotalScore: 10, RecordedAt: 1000},
		{SnapshotID: "s2", Address: "0xa", TotalScore: 20, RecordedAt: 2000},
		{SnapshotID: "s4", Address: "0xa", TotalScore: 40, RecordedAt: 4000},
		{SnapshotID: "other", Address: "0xb", TotalScore: 99, RecordedAt: 2500},
	}
	for _, s := range snaps {
		if err := store.Insert(ctx, s); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	result, err := store.GetByTimeRange(ctx, "0xa", 2000, 3000)
	if err != nil {
		t.Fatalf("GetByTimeRange failed: %v", err)
	}

	if len(result) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(result))
	}
	if result[0].SnapshotID != "s2" || result[1].SnapshotID != "s3" {
		t.Errorf("unexpected order: %s, %s", result[0].SnapshotID, result[1].SnapshotID)
	}
}

func TestScoreHistoryStore_DuplicateKey(t *testing.T) {
	store := NewScoreHistoryStore()
	ctx := context.Background()

	s := &domain.ScoreSnapshot{SnapshotID: "dup", Address: "0xa", RecordedAt: 1}
	if err := store.Insert(ctx, s); err != nil {
		t.Fatalf("First insert failed: %v", err)
	}

	err := store.Insert(ctx, s)
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}
}

func TestScoreHistoryStore_EmptyRange(t *testing.T) {
	store := NewScoreHistoryStore()

	result, err := store.GetByTimeRange(context.Background(), "0xa", 0, 100)
	if err != nil {
		t.Fatalf("GetByTimeRange failed: %v", err)
	}
	if len(result) != 0 {
		t.Errorf("Expected no results, got %d", len(result))
	}
}

func TestScoreHistoryStore_InvalidInput(t *testing.T) {
	store := NewScoreHistoryStore()

	err := store.Insert(context.Background(), &domain.ScoreSnapshot{})
	if !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
}
