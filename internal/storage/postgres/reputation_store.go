package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"omnirep/internal/domain"
	"omnirep/internal/storage"
)

// ReputationStore implements storage.ReputationStore using PostgreSQL.
type ReputationStore struct {
	pool *Pool
}

// NewReputationStore creates a new ReputationStore.
func NewReputationStore(pool *Pool) *ReputationStore {
	return &ReputationStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ReputationStore = (*ReputationStore)(nil)

// Upsert stores data as the latest result for its address.
func (s *ReputationStore) Upsert(ctx context.Context, data *domain.ReputationData) (err error) {
	if data == nil || data.Address == "" {
		return storage.ErrInvalidInput
	}
	defer func(start time.Time) { observe("reputation_upsert", start, err) }(time.Now())

	insights, err := json.Marshal(data.Insights)
	if err != nil {
		return fmt.Errorf("marshal insights: %w", err)
	}

	query := `
		INSERT INTO reputation_scores (
			address, total_score,
			wallet_score, github_score, social_score, identity_score, activity_score, security_score,
			insights, hash, last_updated
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (address) DO UPDATE SET
			total_score    = EXCLUDED.total_score,
			wallet_score   = EXCLUDED.wallet_score,
			github_score   = EXCLUDED.github_score,
			social_score   = EXCLUDED.social_score,
			identity_score = EXCLUDED.identity_score,
			activity_score = EXCLUDED.activity_score,
			security_score = EXCLUDED.security_score,
			insights       = EXCLUDED.insights,
			hash           = EXCLUDED.hash,
			last_updated   = EXCLUDED.last_updated,
			updated_at     = now()
	`

	c := data.Components
	_, err = s.pool.Exec(ctx, query,
		data.Address,
		data.TotalScore,
		c.WalletScore, c.GitHubScore, c.SocialScore, c.IdentityScore, c.ActivityScore, c.SecurityScore,
		insights,
		data.Hash,
		data.LastUpdated,
	)
	if err != nil {
		return fmt.Errorf("upsert reputation: %w", err)
	}
	return nil
}

// GetByAddress retrieves the latest result. Returns ErrNotFound if not exists.
func (s *ReputationStore) GetByAddress(ctx context.Context, address string) (data *domain.ReputationData, err error) {
	defer func(start time.Time) { observe("reputation_get", start, err) }(time.Now())

	query := `
		SELECT address, total_score,
			wallet_score, github_score, social_score, identity_score, activity_score, security_score,
			insights, hash, last_updated
		FROM reputation_scores
		WHERE address = $1
	`

	data, err = scanReputation(s.pool.QueryRow(ctx, query, address))
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get reputation by address: %w", err)
	}
	return data, nil
}

// scanReputation scans a single row into a ReputationData.
func scanReputation(row pgx.Row) (*domain.ReputationData, error) {
	var d domain.ReputationData
	var insights []byte

	err := row.Scan(
		&d.Address,
		&d.TotalScore,
		&d.Components.WalletScore,
		&d.Components.GitHubScore,
		&d.Components.SocialScore,
		&d.Components.IdentityScore,
		&d.Components.ActivityScore,
		&d.Components.SecurityScore,
		&insights,
		&d.Hash,
		&d.LastUpdated,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(insights, &d.Insights); err != nil {
		return nil, fmt.Errorf("unmarshal insights: %w", err)
	}
	return &d, nil
}
