package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"omnirep/internal/domain"
	"omnirep/internal/storage"
)

func TestReputationStore_UpsertAndGet(t *testing.T) {
	store := NewReputationStore()
	ctx := context.Background()

	data := &domain.ReputationData{
		Address:    "0xabc",
		TotalScore: 88,
		Components: domain.Components{WalletScore: 100, SecurityScore: 55},
		Insights: domain.Insights{
			Strengths:  []string{"Strong on-chain presence"},
			Percentile: 10,
			TrustLevel: domain.TrustLevelLow,
		},
		LastUpdated: 1704067200000,
		Hash:        "1f2e",
	}

	if err := store.Upsert(ctx, data); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	got, err := store.GetByAddress(ctx, "0xabc")
	if err != nil {
		t.Fatalf("GetByAddress failed: %v", err)
	}

	if got.TotalScore != 88 {
		t.Errorf("TotalScore mismatch: got %d, want 88", got.TotalScore)
	}
	if got.Components != data.Components {
		t.Errorf("Components mismatch: got %+v, want %+v", got.Components, data.Components)
	}
	if got.Hash != "1f2e" {
		t.Errorf("Hash mismatch: got %s, want 1f2e", got.Hash)
	}
}

func TestReputationStore_UpsertReplaces(t *testing.T) {
	store := NewReputationStore()
	ctx := context.Background()

	_ = store.Upsert(ctx, &domain.ReputationData{Address: "0xabc", TotalScore: 10, LastUpdated: 1})
	_ = store.Upsert(ctx, &domain.ReputationData{Address: "0xabc", TotalScore: 20, LastUpdated: 2})

	got, err := store.GetByAddress(ctx, "0xabc")
	if err != nil {
		t.Fatalf("GetByAddress failed: %v", err)
	}
	if got.TotalScore != 20 || got.LastUpdated != 2 {
		t.Errorf("expected latest upsert to win, got %+v", got)
	}
}

func TestReputationStore_ReturnsCopies(t *testing.T) {
	store := NewReputationStore()
	ctx := context.Background()

	data := &domain.ReputationData{
		Address:  "0xabc",
		Insights: domain.Insights{Strengths: []string{"a"}},
	}
	_ = store.Upsert(ctx, data)

	// Mutate the caller's value after storing
	data.Insights.Strengths[0] = "mutated"

	got, _ := store.GetByAddress(ctx, "0xabc")
	if got.Insights.Strengths[0] != "a" {
		t.Errorf("stored value was mutated through caller slice: %v", got.Insights.Strengths)
	}

	got.Insights.Strengths[0] = "mutated again"
	again, _ := store.GetByAddress(ctx, "0xabc")
	if again.Insights.Strengths[0] != "a" {
		t.Errorf("stored value was mutated through returned slice: %v", again.Insights.Strengths)
	}
}

func TestReputationStore_NotFound(t *testing.T) {
	store := NewReputationStore()

	_, err := store.GetByAddress(context.Background(), "0xmissing")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestReputationStore_InvalidInput(t *testing.T) {
	store := NewReputationStore()
	ctx := context.Background()

	if err := store.Upsert(ctx, nil); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for nil, got %v", err)
	}
	if err := store.Upsert(ctx, &domain.ReputationData{}); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for empty address, got %v", err)
	}
}

func TestReputationStore_ConcurrentUpserts(t *testing.T) {
	store := NewReputationStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			_ = store.Upsert(ctx, &domain.ReputationData{
				Address:    fmt.Sprintf("0x%02d", id%10),
				TotalScore: id,
			})
			_, _ = store.GetByAddress(ctx, fmt.Sprintf("0x%02d", id%10))
		}(i)
	}
	wg.Wait()
}
