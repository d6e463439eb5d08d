package memory

import (
	"context"
	"errors"
	"testing"

	"omnirep/internal/domain"
	"omnirep/internal/storage"
)

func TestCredentialStore_InsertAndGet(t *testing.T) {
	store := NewCredentialStore()
	ctx := context.Background()

	c := &domain.StoredCredential{
		CID:          "QmTest1",
		CredentialID: "urn:uuid:1",
		SubjectDID:   "did:key:zsubject",
		IssuerDID:    "did:key:zissuer",
		Document:     []byte(`{"id":"urn:uuid:1"}`),
		IssuedAt:     1000,
	}
	if err := store.Insert(ctx, c); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	got, err := store.GetByCID(ctx, "QmTest1")
	if err != nil {
		t.Fatalf("GetByCID failed: %v", err)
	}
	if string(got.Document) != string(c.Document) {
		t.Errorf("Document mismatch: got %s", got.Document)
	}

	got.Document[0] = 'X'
	again, _ := store.GetByCID(ctx, "QmTest1")
	if again.Document[0] != '{' {
		t.Errorf("stored document was mutated through returned slice")
	}

	if err := store.Insert(ctx, c); !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}
}

func TestCredentialStore_GetBySubject(t *testing.T) {
	store := NewCredentialStore()
	ctx := context.Background()

	creds := []*domain.StoredCredential{
		{CID: "Qm2", SubjectDID: "did:key:za", Document: []byte("{}"), IssuedAt: 2000},
		{CID: "Qm1", SubjectDID: "did:key:za", Document: []byte("{}"), IssuedAt: 1000},
		{CID: "Qm3", SubjectDID: "did:key:zb", Document: []byte("{}"), IssuedAt: 1500},
	}
	for _, c := range creds {
		if err := store.Insert(ctx, c); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	result, err := store.GetBySubject(ctx, "did:key:za")
	if err != nil {
		t.Fatalf("GetBySubject failed: %v", err)
	}
	if len(result) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(result))
	}
	if result[0].CID != "Qm1" || result[1].CID != "Qm2" {
		t.Errorf("unexpected order: %s, %s", result[0].CID, result[1].CID)
	}
}

func TestCredentialStore_NotFoundAndInvalid(t *testing.T) {
	store := NewCredentialStore()
	ctx := context.Background()

	if _, err := store.GetByCID(ctx, "QmNope"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	if err := store.Insert(ctx, &domain.StoredCredential{CID: "Qm"}); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for empty document, got %v", err)
	}
}
