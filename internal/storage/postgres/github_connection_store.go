package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"omnirep/internal/domain"
	"omnirep/internal/storage"
)

// GitHubConnectionStore implements storage.GitHubConnectionStore using PostgreSQL.
type GitHubConnectionStore struct {
	pool *Pool
}

// NewGitHubConnectionStore creates a new GitHubConnectionStore.
func NewGitHubConnectionStore(pool *Pool) *GitHubConnectionStore {
	return &GitHubConnectionStore{pool: pool}
}

// Compile-time interface check.
var _ storage.GitHubConnectionStore = (*GitHubConnectionStore)(nil)

// Upsert stores the connection for its wallet address.
func (s *GitHubConnectionStore) Upsert(ctx context.Context, c *domain.GitHubConnection) (err error) {
	if c == nil || c.Address == "" || c.Username == "" {
		return storage.ErrInvalidInput
	}
	defer func(start time.Time) { observe("github_upsert", start, err) }(time.Now())

	activity, err := json.Marshal(c.Activity)
	if err != nil {
		return fmt.Errorf("marshal activity: %w", err)
	}

	query := `
		INSERT INTO github_connections (address, username, activity, connected, last_updated)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (address) DO UPDATE SET
			username     = EXCLUDED.username,
			activity     = EXCLUDED.activity,
			connected    = EXCLUDED.connected,
			last_updated = EXCLUDED.last_updated
	`

	_, err = s.pool.Exec(ctx, query, c.Address, c.Username, activity, c.Connected, c.LastUpdated)
	if err != nil {
		return fmt.Errorf("upsert github connection: %w", err)
	}
	return nil
}

// GetByAddress retrieves the connection for a wallet. Returns ErrNotFound if not exists.
func (s *GitHubConnectionStore) GetByAddress(ctx context.Context, address string) (conn *domain.GitHubConnection, err error) {
	defer func(start time.Time) { observe("github_get", start, err) }(time.Now())

	query := `
		SELECT address, username, activity, connected, last_updated
		FROM github_connections
		WHERE address = $1
	`

	var c domain.GitHubConnection
	var activity []byte
	err = s.pool.QueryRow(ctx, query, address).Scan(
		&c.Address, &c.Username, &activity, &c.Connected, &c.LastUpdated,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get github connection: %w", err)
	}

	if err := json.Unmarshal(activity, &c.Activity); err != nil {
		return nil, fmt.Errorf("unmarshal activity: %w", err)
	}
	return &c, nil
}

// Delete removes the connection for a wallet. Returns ErrNotFound if not exists.
func (s *GitHubConnectionStore) Delete(ctx context.Context, address string) (err error) {
	defer func(start time.Time) { observe("github_delete", start, err) }(time.Now())

	tag, err := s.pool.Exec(ctx, `DELETE FROM github_connections WHERE address = $1`, address)
	if err != nil {
		return fmt.Errorf("delete github connection: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}
