package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"omnirep/internal/domain"
	"omnirep/internal/storage"
)

// CredentialStore implements storage.CredentialStore using PostgreSQL.
type CredentialStore struct {
	pool *Pool
}

// NewCredentialStore creates a new CredentialStore.
func NewCredentialStore(pool *Pool) *CredentialStore {
	return &CredentialStore{pool: pool}
}

// Compile-time interface check.
var _ storage.CredentialStore = (*CredentialStore)(nil)

// Insert adds a new credential. Returns ErrDuplicateKey if cid or credential_id exists.
func (s *CredentialStore) Insert(ctx context.Context, c *domain.StoredCredential) (err error) {
	if c == nil || c.CID == "" || len(c.Document) == 0 {
		return storage.ErrInvalidInput
	}
	defer func(start time.Time) { observe("credential_insert", start, err) }(time.Now())

	query := `
		INSERT INTO credentials (cid, credential_id, subject_did, issuer_did, document, issued_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err = s.pool.Exec(ctx, query,
		c.CID, c.CredentialID, c.SubjectDID, c.IssuerDID, c.Document, c.IssuedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert credential: %w", err)
	}
	return nil
}

// GetByCID retrieves a credential by content id. Returns ErrNotFound if not exists.
func (s *CredentialStore) GetByCID(ctx context.Context, cid string) (cred *domain.StoredCredential, err error) {
	defer func(start time.Time) { observe("credential_get", start, err) }(time.Now())

	query := `
		SELECT cid, credential_id, subject_did, issuer_did, document, issued_at
		FROM credentials
		WHERE cid = $1
	`

	cred, err = scanCredential(s.pool.QueryRow(ctx, query, cid))
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get credential by cid: %w", err)
	}
	return cred, nil
}

// GetBySubject retrieves all credentials issued to a subject DID.
func (s *CredentialStore) GetBySubject(ctx context.Context, subjectDID string) (creds []*domain.StoredCredential, err error) {
	defer func(start time.Time) { observe("credential_by_subject", start, err) }(time.Now())

	query := `
		SELECT cid, credential_id, subject_did, issuer_did, document, issued_at
		FROM credentials
		WHERE subject_did = $1
		ORDER BY issued_at ASC, cid ASC
	`

	rows, err := s.pool.Query(ctx, query, subjectDID)
	if err != nil {
		return nil, fmt.Errorf("get credentials by subject: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		c, err := scanCredential(rows)
		if err != nil {
			return nil, fmt.Errorf("scan credential row: %w", err)
		}
		creds = append(creds, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate credential rows: %w", err)
	}
	return creds, nil
}

func scanCredential(row pgx.Row) (*domain.StoredCredential, error) {
	var c domain.StoredCredential
	err := row.Scan(&c.CID, &c.CredentialID, &c.SubjectDID, &c.IssuerDID, &c.Document, &c.IssuedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
