package credential

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"omnirep/internal/domain"
	"omnirep/internal/observability"
	"omnirep/internal/storage"
)

// ServiceOptions configures a Service.
type ServiceOptions struct {
	Issuer *Issuer
	Store  storage.CredentialStore
	Logger *log.Logger
	Now    func() time.Time
}

// Service issues credentials and keeps them in content-addressed storage.
type Service struct {
	issuer *Issuer
	store  storage.CredentialStore
	logger *log.Logger
	now    func() time.Time
}

// NewService creates a new Service.
func NewService(opts ServiceOptions) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		issuer: opts.Issuer,
		store:  opts.Store,
		logger: logger,
		now:    now,
	}
}

// Issuer returns the service's issuer.
func (s *Service) Issuer() *Issuer {
	return s.issuer
}

// IssueAndPublish issues a credential for req and stores it.
func (s *Service) IssueAndPublish(ctx context.Context, req Request) (*domain.VerifiableCredential, *domain.StoredCredential, error) {
	vc, err := s.issuer.Issue(req, s.now())
	if err != nil {
		return nil, nil, err
	}
	stored, err := s.Publish(ctx, vc)
	if err != nil {
		return nil, nil, err
	}
	return vc, stored, nil
}

// Publish verifies vc and stores it under its CID. Publishing identical
// content twice returns the existing record.
func (s *Service) Publish(ctx context.Context, vc *domain.VerifiableCredential) (*domain.StoredCredential, error) {
	if err := Verify(vc, s.now()); err != nil {
		return nil, fmt.Errorf("publish credential: %w", err)
	}

	doc, err := Canonical(vc)
	if err != nil {
		return nil, err
	}

	issuedAt := s.now().UnixMilli()
	if t, err := time.Parse(time.RFC3339, vc.IssuanceDate); err == nil {
		issuedAt = t.UnixMilli()
	}

	stored := &domain.StoredCredential{
		CID:          CIDFromBytes(doc),
		CredentialID: vc.ID,
		SubjectDID:   vc.CredentialSubject.ID,
		IssuerDID:    vc.Issuer.ID,
		Document:     doc,
		IssuedAt:     issuedAt,
	}

	if err := s.store.Insert(ctx, stored); err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			return s.store.GetByCID(ctx, stored.CID)
		}
		return nil, fmt.Errorf("store credential %s: %w", stored.CID, err)
	}

	observability.RecordCredentialIssued()
	s.logger.Printf("published credential %s for %s as %s", vc.ID, stored.SubjectDID, stored.CID)
	return stored, nil
}

// Get loads and decodes the credential stored under cid.
func (s *Service) Get(ctx context.Context, cid string) (*domain.VerifiableCredential, error) {
	stored, err := s.store.GetByCID(ctx, cid)
	if err != nil {
		return nil, err
	}
	return Decode(stored)
}

// ListBySubject returns every credential stored for subjectDID.
func (s *Service) ListBySubject(ctx context.Context, subjectDID string) ([]*domain.StoredCredential, error) {
	return s.store.GetBySubject(ctx, subjectDID)
}

// Decode parses a stored credential document.
func Decode(stored *domain.StoredCredential) (*domain.VerifiableCredential, error) {
	var vc domain.VerifiableCredential
	if err := json.Unmarshal(stored.Document, &vc); err != nil {
		return nil, fmt.Errorf("decode credential %s: %w", stored.CID, err)
	}
	return &vc, nil
}
