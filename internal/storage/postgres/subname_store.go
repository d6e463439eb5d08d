package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"omnirep/internal/domain"
	"omnirep/internal/storage"
)

// SubnameStore implements storage.SubnameStore using PostgreSQL.
type SubnameStore struct {
	pool *Pool
}

// NewSubnameStore creates a new SubnameStore.
func NewSubnameStore(pool *Pool) *SubnameStore {
	return &SubnameStore{pool: pool}
}

// Compile-time interface check.
var _ storage.SubnameStore = (*SubnameStore)(nil)

// Insert adds a new subname. Returns ErrDuplicateKey if name or node exists.
func (s *SubnameStore) Insert(ctx context.Context, sub *domain.Subname) (err error) {
	if sub == nil || sub.Name == "" || sub.Owner == "" {
		return storage.ErrInvalidInput
	}
	defer func(start time.Time) { observe("subname_insert", start, err) }(time.Now())

	query := `
		INSERT INTO ens_subnames (name, label, node, owner, did, expiry, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err = s.pool.Exec(ctx, query,
		sub.Name, sub.Label, sub.Node, sub.Owner, sub.DID, sub.Expiry, sub.CreatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert subname: %w", err)
	}
	return nil
}

// GetByName retrieves a subname by full name. Returns ErrNotFound if not exists.
func (s *SubnameStore) GetByName(ctx context.Context, name string) (sub *domain.Subname, err error) {
	defer func(start time.Time) { observe("subname_get", start, err) }(time.Now())

	query := `
		SELECT name, label, node, owner, did, expiry, created_at
		FROM ens_subnames
		WHERE name = $1
	`

	sub, err = scanSubname(s.pool.QueryRow(ctx, query, name))
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get subname by name: %w", err)
	}
	return sub, nil
}

// GetByOwner retrieves all subnames owned by a wallet, ordered by name ASC.
func (s *SubnameStore) GetByOwner(ctx context.Context, owner string) (subs []*domain.Subname, err error) {
	defer func(start time.Time) { observe("subname_by_owner", start, err) }(time.Now())

	query := `
		SELECT name, label, node, owner, did, expiry, created_at
		FROM ens_subnames
		WHERE owner = $1
		ORDER BY name ASC
	`

	rows, err := s.pool.Query(ctx, query, owner)
	if err != nil {
		return nil, fmt.Errorf("get subnames by owner: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		sub, err := scanSubname(rows)
		if err != nil {
			return nil, fmt.Errorf("scan subname row: %w", err)
		}
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate subname rows: %w", err)
	}
	return subs, nil
}

func scanSubname(row pgx.Row) (*domain.Subname, error) {
	var sub domain.Subname
	err := row.Scan(&sub.Name, &sub.Label, &sub.Node, &sub.Owner, &sub.DID, &sub.Expiry, &sub.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &sub, nil
}
