package storage

import (
	"context"

	"omnirep/internal/domain"
)

// ReputationStore provides access to reputation_scores storage.
// Holds the latest scoring result per wallet address.
type ReputationStore interface {
	// Upsert stores data as the latest result for its address, replacing any previous one.
	Upsert(ctx context.Context, data *domain.ReputationData) error

	// GetByAddress retrieves the latest result. Returns ErrNotFound if not exists.
	GetByAddress(ctx context.Context, address string) (*domain.ReputationData, error)
}

// ScoreHistoryStore provides access to score_snapshots storage.
type ScoreHistoryStore interface {
	// Insert adds a new snapshot. Returns ErrDuplicateKey if snapshot_id exists.
	Insert(ctx context.Context, s *domain.ScoreSnapshot) error

	// GetByTimeRange retrieves snapshots for an address within [start, end] (inclusive),
	// ordered by recorded_at ASC.
	GetByTimeRange(ctx context.Context, address string, start, end int64) ([]*domain.ScoreSnapshot, error)
}

// GitHubConnectionStore provides access to github_connections storage.
type GitHubConnectionStore interface {
	// Upsert stores the connection for its wallet address.
	Upsert(ctx context.Context, c *domain.GitHubConnection) error

	// GetByAddress retrieves the connection for a wallet. Returns ErrNotFound if not exists.
	GetByAddress(ctx context.Context, address string) (*domain.GitHubConnection, error)

	// Delete removes the connection for a wallet. Returns ErrNotFound if not exists.
	Delete(ctx context.Context, address string) error
}

// CredentialStore provides access to credentials storage.
type CredentialStore interface {
	// Insert adds a new credential. Returns ErrDuplicateKey if cid exists.
	Insert(ctx context.Context, c *domain.StoredCredential) error

	// GetByCID retrieves a credential by content id. Returns ErrNotFound if not exists.
	GetByCID(ctx context.Context, cid string) (*domain.StoredCredential, error)

	// GetBySubject retrieves all credentials issued to a subject DID, ordered by issued_at ASC.
	GetBySubject(ctx context.Context, subjectDID string) ([]*domain.StoredCredential, error)
}

// SubnameStore provides access to ens_subnames storage.
type SubnameStore interface {
	// Insert adds a new subname. Returns ErrDuplicateKey if name exists.
	Insert(ctx context.Context, s *domain.Subname) error

	// GetByName retrieves a subname by full name. Returns ErrNotFound if not exists.
	GetByName(ctx context.Context, name string) (*domain.Subname, error)

	// GetByOwner retrieves all subnames owned by a wallet, ordered by name ASC.
	GetByOwner(ctx context.Context, owner string) ([]*domain.Subname, error)
}
