package memory

import (
	"context"
	"errors"
	"testing"

	"omnirep/internal/domain"
	"omnirep/internal/storage"
)

func TestSubnameStore_InsertAndGet(t *testing.T) {
	store := NewSubnameStore()
	ctx := context.Background()

	sub := &domain.Subname{
		Name:   "alice.omnirep.eth",
		Label:  "alice",
		Node:   "0x01",
		Owner:  "0xabc",
		DID:    "did:key:zalice",
		Expiry: 1767225600,
	}
	if err := store.Insert(ctx, sub); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	got, err := store.GetByName(ctx, "alice.omnirep.eth")
	if err != nil {
		t.Fatalf("GetByName failed: %v", err)
	}
	if *got != *sub {
		t.Errorf("Subname mismatch: got %+v, want %+v", got, sub)
	}

	if err := store.Insert(ctx, sub); !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}
}

func TestSubnameStore_GetByOwner(t *testing.T) {
	store := NewSubnameStore()
	ctx := context.Background()

	for _, name := range []string{"zed.omnirep.eth", "bob.omnirep.eth"} {
		if err := store.Insert(ctx, &domain.Subname{Name: name, Owner: "0xabc"}); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}
	_ = store.Insert(ctx, &domain.Subname{Name: "carol.omnirep.eth", Owner: "0xdef"})

	result, err := store.GetByOwner(ctx, "0xabc")
	if err != nil {
		t.Fatalf("GetByOwner failed: %v", err)
	}
	if len(result) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(result))
	}
	if result[0].Name != "bob.omnirep.eth" || result[1].Name != "zed.omnirep.eth" {
		t.Errorf("unexpected order: %s, %s", result[0].Name, result[1].Name)
	}
}

func TestSubnameStore_NotFound(t *testing.T) {
	store := NewSubnameStore()

	_, err := store.GetByName(context.Background(), "ghost.omnirep.eth")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}
