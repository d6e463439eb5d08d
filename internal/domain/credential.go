package domain

// Credential context and type constants.
const (
	CredentialsContextV1 = "https://www.w3.org/2018/credentials/v1"
	ReputationContextV1  = "https://omni-rep.eth/contexts/reputation/v1"

	CredentialTypeVerifiable = "VerifiableCredential"
	CredentialTypeReputation = "ReputationCredential"
)

// CredentialIssuer identifies the issuing party.
type CredentialIssuer struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CredentialSubject carries the reputation claim.
type CredentialSubject struct {
	ID              string         `json:"id"`              // subject DID
	ReputationScore string         `json:"reputationScore"` // hashed score
	Timestamp       int64          `json:"timestamp"`       // Unix seconds
	Metadata        map[string]any `json:"metadata"`
}

// CredentialProof is a detached Ed25519Signature2020 proof.
type CredentialProof struct {
	Type               string `json:"type"`
	Created            string `json:"created"`
	VerificationMethod string `json:"verificationMethod"`
	ProofPurpose       string `json:"proofPurpose"`
	ProofValue         string `json:"proofValue"`
}

// VerifiableCredential is a W3C VC data model v1 document.
type VerifiableCredential struct {
	Context           []string          `json:"@context"`
	ID                string            `json:"id"`
	Type              []string          `json:"type"`
	Issuer            CredentialIssuer  `json:"issuer"`
	IssuanceDate      string            `json:"issuanceDate"`
	ExpirationDate    string            `json:"expirationDate,omitempty"`
	CredentialSubject CredentialSubject `json:"credentialSubject"`
	Proof             *CredentialProof  `json:"proof,omitempty"`
}

// StoredCredential is a content-addressed credential record.
// Corresponds to credentials table in PostgreSQL.
type StoredCredential struct {
	CID          string // CIDv0 of Document, PRIMARY KEY
	CredentialID string // urn:uuid:...
	SubjectDID   string
	IssuerDID    string
	Document     []byte // canonical JSON of the signed credential
	IssuedAt     int64  // Unix ms
}
