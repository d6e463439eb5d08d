package identity

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"omnirep/internal/domain"
)

func TestDeriveDID(t *testing.T) {
	did, err := DeriveDID("0x742d35Cc6634C0532925a3b844Bc454e4438f44e")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(did.ID, DIDKeyPrefix))
	assert.Len(t, did.ID, len(DIDKeyPrefix)+32)
	assert.Len(t, did.PublicKey, 66)
	assert.Equal(t, did.PublicKey[2:34], strings.TrimPrefix(did.ID, DIDKeyPrefix))
	assert.Equal(t, "0x742d35cc6634c0532925a3b844bc454e4438f44e", did.Address)
}

func TestDeriveDID_CaseInsensitive(t *testing.T) {
	a, err := DeriveDID("0x742d35Cc6634C0532925a3b844Bc454e4438f44e")
	require.NoError(t, err)
	b, err := DeriveDID("0x742D35CC6634C0532925A3B844BC454E4438F44E")
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestDeriveDID_DistinctAddresses(t *testing.T) {
	a, err := DeriveDID("0x0000000000000000000000000000000000000001")
	require.NoError(t, err)
	b, err := DeriveDID("0x0000000000000000000000000000000000000002")
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
}

func TestDeriveDID_Invalid(t *testing.T) {
	for _, addr := range []string{"", "  ", "0x123", "not-an-address"} {
		_, err := DeriveDID(addr)
		assert.ErrorIs(t, err, ErrInvalidAddress, "address %q", addr)
	}
}

func TestScoreDigest(t *testing.T) {
	claim := ScoreClaim{
		Score:      742,
		Timestamp:  1700000000,
		Categories: map[string]int{"walletScore": 88, "githubScore": 100},
		Metadata:   map[string]any{"source": "test"},
	}

	digest, err := ScoreDigest(claim)
	require.NoError(t, err)
	assert.Len(t, digest, 66)
	assert.True(t, strings.HasPrefix(digest, "0x"))

	again, err := ScoreDigest(claim)
	require.NoError(t, err)
	assert.Equal(t, digest, again)

	assert.True(t, ValidateScoreDigest(digest, claim))
	assert.True(t, ValidateScoreDigest("0x"+strings.ToUpper(digest[2:]), claim))
}

func TestValidateScoreDigest_Tampered(t *testing.T) {
	claim := ScoreClaim{Score: 500, Timestamp: 1}
	digest, err := ScoreDigest(claim)
	require.NoError(t, err)

	tampered := claim
	tampered.Score = 501
	assert.False(t, ValidateScoreDigest(digest, tampered))
}

func TestScoreDigest_NilMapsMatchEmpty(t *testing.T) {
	a, err := ScoreDigest(ScoreClaim{Score: 1})
	require.NoError(t, err)
	b, err := ScoreDigest(ScoreClaim{Score: 1, Categories: map[string]int{}, Metadata: map[string]any{}})
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestClaimFromReputation(t *testing.T) {
	data := &domain.ReputationData{
		TotalScore: 600,
		Components: domain.Components{WalletScore: 88, GitHubScore: 120, SecurityScore: 55},
		Hash:       "1f2e",
	}

	claim := ClaimFromReputation(data, 1700000000)
	assert.Equal(t, 600, claim.Score)
	assert.Equal(t, int64(1700000000), claim.Timestamp)
	assert.Equal(t, 88, claim.Categories["walletScore"])
	assert.Equal(t, 120, claim.Categories["githubScore"])
	assert.Equal(t, 55, claim.Categories["securityScore"])
	assert.Len(t, claim.Categories, 6)
	assert.Equal(t, "1f2e", claim.Metadata["hash"])
}
