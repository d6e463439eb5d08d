package credential

import (
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mr-tron/base58"

	"omnirep/internal/domain"
)

const (
	// ProofType is the only supported proof suite.
	ProofType = "Ed25519Signature2020"
	// ProofPurpose is the proof purpose for issued credentials.
	ProofPurpose = "assertionMethod"

	// Validity is how long an issued credential stays valid.
	Validity = 365 * 24 * time.Hour

	metadataVersion = "1.0.0"
	metadataNetwork = "ethereum"
	metadataIssuer  = "OmniRep"

	isoLayout = "2006-01-02T15:04:05.000Z"
)

var (
	ErrInvalidRequest    = errors.New("invalid credential request")
	ErrMalformed         = errors.New("malformed credential")
	ErrMissingProof      = errors.New("credential has no proof")
	ErrUnsupportedProof  = errors.New("unsupported proof type")
	ErrInvalidSignature  = errors.New("invalid credential signature")
	ErrExpired           = errors.New("credential expired")
	ErrIssuerKeyMismatch = errors.New("verification method does not belong to issuer")
)

// Request describes a credential to issue.
type Request struct {
	SubjectDID    string         `json:"subjectDid"`
	HashedScore   string         `json:"hashedScore"`
	Metadata      map[string]any `json:"metadata,omitempty"`
	IssuerAddress string         `json:"issuerAddress,omitempty"`
}

// Issue builds and signs a reputation credential. Caller metadata is merged
// first; the fixed issuance keys always win.
func (i *Issuer) Issue(req Request, now time.Time) (*domain.VerifiableCredential, error) {
	if req.SubjectDID == "" {
		return nil, fmt.Errorf("%w: subject did required", ErrInvalidRequest)
	}
	if req.HashedScore == "" {
		return nil, fmt.Errorf("%w: hashed score required", ErrInvalidRequest)
	}

	now = now.UTC()
	metadata := make(map[string]any, len(req.Metadata)+4)
	maps.Copy(metadata, req.Metadata)
	metadata["issuedBy"] = metadataIssuer
	metadata["version"] = metadataVersion
	metadata["network"] = metadataNetwork
	metadata["issuerAddress"] = req.IssuerAddress

	vc := &domain.VerifiableCredential{
		Context: []string{domain.CredentialsContextV1, domain.ReputationContextV1},
		ID:      "urn:uuid:" + uuid.NewString(),
		Type:    []string{domain.CredentialTypeVerifiable, domain.CredentialTypeReputation},
		Issuer: domain.CredentialIssuer{
			ID:   i.did,
			Name: i.name,
		},
		IssuanceDate:   now.Format(isoLayout),
		ExpirationDate: now.Add(Validity).Format(isoLayout),
		CredentialSubject: domain.CredentialSubject{
			ID:              req.SubjectDID,
			ReputationScore: req.HashedScore,
			Timestamp:       now.Unix(),
			Metadata:        metadata,
		},
	}

	payload, err := signingPayload(vc)
	if err != nil {
		return nil, err
	}
	vc.Proof = &domain.CredentialProof{
		Type:               ProofType,
		Created:            now.Format(isoLayout),
		VerificationMethod: i.VerificationMethod(),
		ProofPurpose:       ProofPurpose,
		ProofValue:         "z" + base58.Encode(i.sign(payload)),
	}
	return vc, nil
}

// Validate checks the W3C structural requirements.
func Validate(vc *domain.VerifiableCredential) error {
	switch {
	case vc == nil:
		return fmt.Errorf("%w: nil", ErrMalformed)
	case vc.ID == "":
		return fmt.Errorf("%w: missing id", ErrMalformed)
	case vc.Issuer.ID == "":
		return fmt.Errorf("%w: missing issuer", ErrMalformed)
	case vc.IssuanceDate == "":
		return fmt.Errorf("%w: missing issuanceDate", ErrMalformed)
	case vc.CredentialSubject.ID == "":
		return fmt.Errorf("%w: missing credentialSubject", ErrMalformed)
	case !slices.Contains(vc.Context, domain.CredentialsContextV1):
		return fmt.Errorf("%w: missing W3C context", ErrMalformed)
	case !slices.Contains(vc.Type, domain.CredentialTypeVerifiable):
		return fmt.Errorf("%w: missing %s type", ErrMalformed, domain.CredentialTypeVerifiable)
	}
	return nil
}

// Verify checks structure, expiry and the issuer's signature at now.
func Verify(vc *domain.VerifiableCredential, now time.Time) error {
	if err := Validate(vc); err != nil {
		return err
	}
	if vc.Proof == nil {
		return ErrMissingProof
	}
	if vc.Proof.Type != ProofType {
		return fmt.Errorf("%w: %s", ErrUnsupportedProof, vc.Proof.Type)
	}
	if vm, _, _ := strings.Cut(vc.Proof.VerificationMethod, "#"); vm != vc.Issuer.ID {
		return ErrIssuerKeyMismatch
	}

	if vc.ExpirationDate != "" {
		exp, err := time.Parse(time.RFC3339, vc.ExpirationDate)
		if err != nil {
			return fmt.Errorf("%w: expirationDate: %v", ErrMalformed, err)
		}
		if now.After(exp) {
			return ErrExpired
		}
	}

	pub, err := PublicKeyFromDID(vc.Issuer.ID)
	if err != nil {
		return err
	}

	encoded, ok := strings.CutPrefix(vc.Proof.ProofValue, "z")
	if !ok {
		return fmt.Errorf("%w: proofValue is not base58btc", ErrInvalidSignature)
	}
	sig, err := base58.Decode(encoded)
	if err != nil || len(sig) != ed25519.SignatureSize {
		return fmt.Errorf("%w: bad proofValue encoding", ErrInvalidSignature)
	}

	payload, err := signingPayload(vc)
	if err != nil {
		return err
	}
	if !ed25519.Verify(pub, payload, sig) {
		return ErrInvalidSignature
	}
	return nil
}

// CID returns the CIDv0 content address of the credential's canonical JSON.
func CID(vc *domain.VerifiableCredential) (string, error) {
	data, err := Canonical(vc)
	if err != nil {
		return "", err
	}
	return CIDFromBytes(data), nil
}

// CIDFromBytes returns the CIDv0 (sha2-256 multihash, base58) of data.
func CIDFromBytes(data []byte) string {
	sum := sha256.Sum256(data)
	mh := make([]byte, 0, 2+len(sum))
	mh = append(mh, 0x12, 0x20)
	mh = append(mh, sum[:]...)
	return base58.Encode(mh)
}

// Canonical returns the credential's canonical JSON encoding.
func Canonical(vc *domain.VerifiableCredential) ([]byte, error) {
	data, err := json.Marshal(vc)
	if err != nil {
		return nil, fmt.Errorf("marshal credential: %w", err)
	}
	return data, nil
}

// signingPayload is the canonical JSON of vc without its proof.
func signingPayload(vc *domain.VerifiableCredential) ([]byte, error) {
	unsigned := *vc
	unsigned.Proof = nil
	return Canonical(&unsigned)
}
