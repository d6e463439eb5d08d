// Package identity derives wallet-bound identifiers and score digests.
package identity

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// DIDKeyPrefix prefixes every did:key identifier.
const DIDKeyPrefix = "did:key:z"

// ErrInvalidAddress is returned for empty or malformed wallet addresses.
var ErrInvalidAddress = errors.New("invalid wallet address")

// DID is a deterministic identifier derived from a wallet address.
type DID struct {
	ID        string `json:"did"`
	PublicKey string `json:"publicKey"` // 0x keccak256 of the address bytes
	Address   string `json:"address"`
}

// DeriveDID maps address to a stable did:key identifier. The same address
// always yields the same DID regardless of hex case.
func DeriveDID(address string) (DID, error) {
	address = strings.TrimSpace(address)
	if address == "" || !common.IsHexAddress(address) {
		return DID{}, fmt.Errorf("derive did for %q: %w", address, ErrInvalidAddress)
	}

	addr := common.HexToAddress(address)
	hash := crypto.Keccak256Hash(addr.Bytes())
	hexHash := hash.Hex()

	return DID{
		ID:        DIDKeyPrefix + hexHash[2:34],
		PublicKey: hexHash,
		Address:   strings.ToLower(addr.Hex()),
	}, nil
}
