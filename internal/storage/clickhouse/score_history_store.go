package clickhouse

import (
	"context"
	"fmt"
	"time"

	"omnirep/internal/domain"
	"omnirep/internal/storage"
)

// ScoreHistoryStore implements storage.ScoreHistoryStore using ClickHouse.
type ScoreHistoryStore struct {
	conn *Conn
}

// NewScoreHistoryStore creates a new ScoreHistoryStore.
func NewScoreHistoryStore(conn *Conn) *ScoreHistoryStore {
	return &ScoreHistoryStore{conn: conn}
}

// Compile-time interface check.
var _ storage.ScoreHistoryStore = (*ScoreHistoryStore)(nil)

// Insert adds a new snapshot. Returns ErrDuplicateKey if snapshot_id exists.
// MergeTree does not enforce uniqueness, so the key is checked before insert.
func (s *ScoreHistoryStore) Insert(ctx context.Context, snap *domain.ScoreSnapshot) (err error) {
	if snap == nil || snap.SnapshotID == "" {
		return storage.ErrInvalidInput
	}
	defer func(start time.Time) { observe("snapshot_insert", start, err) }(time.Now())

	exists, err := s.exists(ctx, snap.SnapshotID)
	if err != nil {
		return fmt.Errorf("check exists: %w", err)
	}
	if exists {
		return storage.ErrDuplicateKey
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO score_snapshots (
			snapshot_id, address, total_score,
			wallet_score, github_score, social_score, identity_score, activity_score, security_score,
			percentile, trust_level, hash, recorded_at
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	c := snap.Components
	err = batch.Append(
		snap.SnapshotID, snap.Address, int32(snap.TotalScore),
		int32(c.WalletScore), int32(c.GitHubScore), int32(c.SocialScore),
		int32(c.IdentityScore), int32(c.ActivityScore), int32(c.SecurityScore),
		uint8(snap.Percentile), string(snap.TrustLevel), snap.Hash, uint64(snap.RecordedAt),
	)
	if err != nil {
		return fmt.Errorf("append to batch: %w", err)
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// GetByTimeRange retrieves snapshots for an address within [start, end] (inclusive).
func (s *ScoreHistoryStore) GetByTimeRange(ctx context.Context, address string, start, end int64) (snaps []*domain.ScoreSnapshot, err error) {
	defer func(t time.Time) { observe("snapshot_range", t, err) }(time.Now())

	if start < 0 {
		start = 0
	}
	if end < start {
		return nil, nil
	}

	query := `
		SELECT snapshot_id, address, total_score,
			wallet_score, github_score, social_score, identity_score, activity_score, security_score,
			percentile, trust_level, hash, recorded_at
		FROM score_snapshots
		WHERE address = ? AND recorded_at >= ? AND recorded_at <= ?
		ORDER BY recorded_at ASC
	`

	rows, err := s.conn.Query(ctx, query, address, uint64(start), uint64(end))
	if err != nil {
		return nil, fmt.Errorf("query by time range: %w", err)
	}
	defer rows.Close()

	return scanSnapshots(rows)
}

// exists checks if a snapshot with the given id exists.
func (s *ScoreHistoryStore) exists(ctx context.Context, snapshotID string) (bool, error) {
	var count uint64
	err := s.conn.QueryRow(ctx,
		`SELECT count(*) FROM score_snapshots WHERE snapshot_id = ?`, snapshotID,
	).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// chRows is the subset of driver.Rows used for scanning.
type chRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanSnapshots(rows chRows) ([]*domain.ScoreSnapshot, error) {
	var snaps []*domain.ScoreSnapshot

	for rows.Next() {
		var (
			snap                                           domain.ScoreSnapshot
			total, wallet, github, social, ident, act, sec int32
			percentile                                     uint8
			trust                                          string
			recordedAt                                     uint64
		)

		err := rows.Scan(
			&snap.SnapshotID, &snap.Address, &total,
			&wallet, &github, &social, &ident, &act, &sec,
			&percentile, &trust, &snap.Hash, &recordedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan snapshot row: %w", err)
		}

		snap.TotalScore = int(total)
		snap.Components = domain.Components{
			WalletScore:   int(wallet),
			GitHubScore:   int(github),
			SocialScore:   int(social),
			IdentityScore: int(ident),
			ActivityScore: int(act),
			SecurityScore: int(sec),
		}
		snap.Percentile = int(percentile)
		snap.TrustLevel = domain.TrustLevel(trust)
		snap.RecordedAt = int64(recordedAt)
		snaps = append(snaps, &snap)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshot rows: %w", err)
	}

	return snaps, nil
}
