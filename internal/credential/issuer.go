// Package credential issues, signs and content-addresses W3C verifiable
// credentials carrying reputation score digests.
package credential

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"

	"omnirep/internal/identity"
)

// DefaultIssuerName is used when no issuer name is configured.
const DefaultIssuerName = "OmniRep Reputation System"

// ed25519Multicodec is the multicodec prefix for Ed25519 public keys.
var ed25519Multicodec = []byte{0xed, 0x01}

var (
	// ErrInvalidDID is returned when a did:key cannot be decoded to an Ed25519 key.
	ErrInvalidDID = errors.New("invalid ed25519 did:key")
	// ErrInvalidKey is returned for malformed private keys.
	ErrInvalidKey = errors.New("invalid ed25519 private key")
)

// Issuer signs credentials with an Ed25519 key.
type Issuer struct {
	key  ed25519.PrivateKey
	did  string
	name string
}

// NewIssuer creates an issuer from a 32-byte seed or 64-byte private key.
func NewIssuer(key []byte, name string) (*Issuer, error) {
	var priv ed25519.PrivateKey
	switch len(key) {
	case ed25519.SeedSize:
		priv = ed25519.NewKeyFromSeed(key)
	case ed25519.PrivateKeySize:
		priv = ed25519.PrivateKey(append([]byte(nil), key...))
	default:
		return nil, fmt.Errorf("%w: %d bytes", ErrInvalidKey, len(key))
	}
	if name == "" {
		name = DefaultIssuerName
	}

	return &Issuer{
		key:  priv,
		did:  DIDFromPublicKey(priv.Public().(ed25519.PublicKey)),
		name: name,
	}, nil
}

// GenerateIssuer creates an issuer with a fresh random key.
func GenerateIssuer(name string) (*Issuer, error) {
	seed := make([]byte, ed25519.SeedSize)
	if _, err := rand.Read(seed); err != nil {
		return nil, fmt.Errorf("generate issuer seed: %w", err)
	}
	return NewIssuer(seed, name)
}

// DID returns the issuer's did:key.
func (i *Issuer) DID() string { return i.did }

// Name returns the issuer's display name.
func (i *Issuer) Name() string { return i.name }

// VerificationMethod returns the key reference used in proofs.
func (i *Issuer) VerificationMethod() string {
	return i.did + "#" + strings.TrimPrefix(i.did, "did:key:")
}

func (i *Issuer) sign(payload []byte) []byte {
	return ed25519.Sign(i.key, payload)
}

// DIDFromPublicKey encodes pub as a did:key with a base58btc multibase value.
func DIDFromPublicKey(pub ed25519.PublicKey) string {
	buf := make([]byte, 0, len(ed25519Multicodec)+len(pub))
	buf = append(buf, ed25519Multicodec...)
	buf = append(buf, pub...)
	return identity.DIDKeyPrefix + base58.Encode(buf)
}

// PublicKeyFromDID decodes an Ed25519 did:key. A fragment after '#' is ignored.
// The key must be a valid compressed Edwards25519 point.
func PublicKeyFromDID(did string) (ed25519.PublicKey, error) {
	did, _, _ = strings.Cut(did, "#")
	encoded, ok := strings.CutPrefix(did, identity.DIDKeyPrefix)
	if !ok || encoded == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDID, did)
	}

	raw, err := base58.Decode(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDID, err)
	}
	if len(raw) != len(ed25519Multicodec)+ed25519.PublicKeySize ||
		raw[0] != ed25519Multicodec[0] || raw[1] != ed25519Multicodec[1] {
		return nil, fmt.Errorf("%w: not an ed25519 key", ErrInvalidDID)
	}

	pub := raw[len(ed25519Multicodec):]
	if _, err := new(edwards25519.Point).SetBytes(pub); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDID, err)
	}
	return ed25519.PublicKey(pub), nil
}
