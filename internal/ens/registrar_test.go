package ens

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"omnirep/internal/ethereum"
	"omnirep/internal/storage"
	"omnirep/internal/storage/memory"
)

const (
	testOwner = "0x742d35Cc6634C0532925a3b844Bc454e4438f44e"
	testDID   = "did:key:z742d35cc6634c0532925a3b844bc454e"
)

var testNow = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func newTestRegistrar() *Registrar {
	return NewRegistrar(RegistrarOptions{
		Store: memory.NewSubnameStore(),
		Now:   func() time.Time { return testNow },
	})
}

func TestValidateLabel(t *testing.T) {
	tests := []struct {
		label   string
		want    string
		wantErr bool
	}{
		{"alice", "alice", false},
		{"Alice", "alice", false},
		{"a-b-c", "a-b-c", false},
		{"abc", "abc", false},
		{"007", "007", false},
		{strings.Repeat("a", 63), strings.Repeat("a", 63), false},
		{"ab", "", true},
		{strings.Repeat("a", 64), "", true},
		{"-abc", "", true},
		{"abc-", "", true},
		{"a_bc", "", true},
		{"al.ice", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			got, err := ValidateLabel(tt.label)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidLabel)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRegistrar_Register(t *testing.T) {
	ctx := context.Background()
	r := newTestRegistrar()

	sub, err := r.Register(ctx, "Alice", testOwner, testDID, 0)
	require.NoError(t, err)

	assert.Equal(t, "alice.omnirep.eth", sub.Name)
	assert.Equal(t, "alice", sub.Label)
	assert.Equal(t, ethereum.Namehash("alice.omnirep.eth").Hex(), sub.Node)
	assert.Equal(t, strings.ToLower(testOwner), sub.Owner)
	assert.Equal(t, testDID, sub.DID)
	assert.Equal(t, testNow.Unix()+2*yearSeconds, sub.Expiry)
	assert.Equal(t, testNow.UnixMilli(), sub.CreatedAt)
}

func TestRegistrar_RegisterYears(t *testing.T) {
	r := newTestRegistrar()

	sub, err := r.Register(context.Background(), "bob", testOwner, testDID, 5)
	require.NoError(t, err)
	assert.Equal(t, testNow.Unix()+5*yearSeconds, sub.Expiry)
}

func TestRegistrar_Taken(t *testing.T) {
	ctx := context.Background()
	r := newTestRegistrar()

	ok, err := r.Available(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = r.Register(ctx, "alice", testOwner, testDID, 1)
	require.NoError(t, err)

	ok, err = r.Available(ctx, "ALICE")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = r.Register(ctx, "alice", testOwner, testDID, 1)
	assert.ErrorIs(t, err, ErrTaken)
}

func TestRegistrar_InvalidInput(t *testing.T) {
	ctx := context.Background()
	r := newTestRegistrar()

	_, err := r.Register(ctx, "x", testOwner, testDID, 1)
	assert.ErrorIs(t, err, ErrInvalidLabel)

	_, err = r.Register(ctx, "valid", "0xnope", testDID, 1)
	assert.ErrorIs(t, err, ErrInvalidOwner)

	_, err = r.Available(ctx, "-bad")
	assert.ErrorIs(t, err, ErrInvalidLabel)
}

func TestRegistrar_ResolveDID(t *testing.T) {
	ctx := context.Background()
	r := newTestRegistrar()

	_, err := r.Register(ctx, "alice", testOwner, testDID, 1)
	require.NoError(t, err)
	_, err = r.Register(ctx, "nodid", testOwner, "", 1)
	require.NoError(t, err)

	did, err := r.ResolveDID(ctx, "Alice.OmniRep.eth")
	require.NoError(t, err)
	assert.Equal(t, testDID, did)

	_, err = r.ResolveDID(ctx, "nodid.omnirep.eth")
	assert.ErrorIs(t, err, ErrNoDID)

	_, err = r.ResolveDID(ctx, "missing.omnirep.eth")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestRegistrar_ByOwnerAndParent(t *testing.T) {
	ctx := context.Background()
	r := NewRegistrar(RegistrarOptions{Store: memory.NewSubnameStore(), Parent: "Example.ETH"})
	assert.Equal(t, "example.eth", r.Parent())

	for _, label := range []string{"zeta", "alpha"} {
		_, err := r.Register(ctx, label, testOwner, testDID, 1)
		require.NoError(t, err)
	}

	subs, err := r.ByOwner(ctx, testOwner)
	require.NoError(t, err)
	require.Len(t, subs, 2)
	assert.Equal(t, "alpha.example.eth", subs[0].Name)
	assert.Equal(t, "zeta.example.eth", subs[1].Name)
}
