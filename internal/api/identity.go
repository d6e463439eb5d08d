package api

import (
	"maps"
	"net/http"

	"omnirep/internal/credential"
	"omnirep/internal/domain"
	"omnirep/internal/ens"
	"omnirep/internal/identity"
	"omnirep/internal/service"
)

// GitHubConnectRequest is the body of POST /v1/github/connect.
type GitHubConnectRequest struct {
	Address  string `json:"address"`
	Username string `json:"username"`
}

func (s *Server) handleGitHubConnect(w http.ResponseWriter, r *http.Request) {
	var req GitHubConnectRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	addr, err := service.NormalizeAddress(req.Address)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	conn, err := s.github.Connect(r.Context(), addr, req.Username)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, conn)
}

func (s *Server) handleGitHubGet(w http.ResponseWriter, r *http.Request) {
	addr, err := service.NormalizeAddress(r.PathValue("address"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	conn, err := s.github.Get(r.Context(), addr)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, conn)
}

func (s *Server) handleGitHubDisconnect(w http.ResponseWriter, r *http.Request) {
	addr, err := service.NormalizeAddress(r.PathValue("address"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.github.Disconnect(r.Context(), addr); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DIDResponse is the JSON response for GET /v1/did/{address}.
type DIDResponse struct {
	identity.DID
	Subnames []*domain.Subname `json:"subnames,omitempty"`
}

func (s *Server) handleDID(w http.ResponseWriter, r *http.Request) {
	did, err := identity.DeriveDID(r.PathValue("address"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := DIDResponse{DID: did}
	if s.registrar != nil {
		subs, err := s.registrar.ByOwner(r.Context(), did.Address)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		resp.Subnames = subs
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// IssueCredentialRequest is the body of POST /v1/credentials.
type IssueCredentialRequest struct {
	Address  string         `json:"address"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// IssueCredentialResponse is the JSON response for POST /v1/credentials.
type IssueCredentialResponse struct {
	CID        string                       `json:"cid"`
	Credential *domain.VerifiableCredential `json:"credential"`
	Claim      identity.ScoreClaim          `json:"claim"`
}

// handleIssueCredential issues a credential committing to the address's
// current score digest.
func (s *Server) handleIssueCredential(w http.ResponseWriter, r *http.Request) {
	var req IssueCredentialRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	did, err := identity.DeriveDID(req.Address)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	data, err := s.rep.Get(r.Context(), did.Address)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	claim := identity.ClaimFromReputation(data, s.now().Unix())
	digest, err := identity.ScoreDigest(claim)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	metadata := make(map[string]any, len(req.Metadata)+3)
	maps.Copy(metadata, req.Metadata)
	metadata["totalScore"] = data.TotalScore
	metadata["trustLevel"] = data.Insights.TrustLevel
	metadata["percentile"] = data.Insights.Percentile

	vc, stored, err := s.creds.IssueAndPublish(r.Context(), credential.Request{
		SubjectDID:    did.ID,
		HashedScore:   digest,
		Metadata:      metadata,
		IssuerAddress: did.Address,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, IssueCredentialResponse{CID: stored.CID, Credential: vc, Claim: claim})
}

func (s *Server) handleGetCredential(w http.ResponseWriter, r *http.Request) {
	vc, err := s.creds.Get(r.Context(), r.PathValue("cid"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, vc)
}

// CredentialSummary is one entry of GET /v1/credentials.
type CredentialSummary struct {
	CID          string `json:"cid"`
	CredentialID string `json:"credentialId"`
	IssuerDID    string `json:"issuerDid"`
	IssuedAt     int64  `json:"issuedAt"`
}

func (s *Server) handleListCredentials(w http.ResponseWriter, r *http.Request) {
	subject := r.URL.Query().Get("subject")
	if subject == "" {
		s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "subject query parameter is required"})
		return
	}

	stored, err := s.creds.ListBySubject(r.Context(), subject)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	list := make([]CredentialSummary, 0, len(stored))
	for _, c := range stored {
		list = append(list, CredentialSummary{CID: c.CID, CredentialID: c.CredentialID, IssuerDID: c.IssuerDID, IssuedAt: c.IssuedAt})
	}
	s.writeJSON(w, http.StatusOK, list)
}

// VerifyResponse is the JSON response for POST /v1/credentials/verify.
type VerifyResponse struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

func (s *Server) handleVerifyCredential(w http.ResponseWriter, r *http.Request) {
	var vc domain.VerifiableCredential
	if err := decodeJSON(w, r, &vc); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := credential.Verify(&vc, s.now()); err != nil {
		s.writeJSON(w, http.StatusOK, VerifyResponse{Valid: false, Error: err.Error()})
		return
	}
	s.writeJSON(w, http.StatusOK, VerifyResponse{Valid: true})
}

// RegisterSubnameRequest is the body of POST /v1/ens/subnames.
type RegisterSubnameRequest struct {
	Label   string `json:"label"`
	Address string `json:"address"`
	Years   int    `json:"years,omitempty"`
}

func (s *Server) handleRegisterSubname(w http.ResponseWriter, r *http.Request) {
	var req RegisterSubnameRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	did, err := identity.DeriveDID(req.Address)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	sub, err := s.registrar.Register(r.Context(), req.Label, did.Address, did.ID, req.Years)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, sub)
}

func (s *Server) handleGetSubname(w http.ResponseWriter, r *http.Request) {
	sub, err := s.registrar.Resolve(r.Context(), r.PathValue("name"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, sub)
}

// AvailabilityResponse is the JSON response for GET /v1/ens/available/{label}.
type AvailabilityResponse struct {
	Name      string `json:"name"`
	Available bool   `json:"available"`
}

func (s *Server) handleAvailable(w http.ResponseWriter, r *http.Request) {
	label, err := ens.ValidateLabel(r.PathValue("label"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ok, err := s.registrar.Available(r.Context(), label)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, AvailabilityResponse{Name: s.registrar.FullName(label), Available: ok})
}
