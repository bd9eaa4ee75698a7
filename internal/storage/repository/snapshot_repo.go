package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrSnapshotNotFound is returned when no snapshot exists for a query and kind.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// Snapshot kinds, one per raw table.
const (
	KindMatchups   = "matchups"
	KindPopularity = "popularity"
	KindArchetypes = "archetypes"
)

// Snapshot is one cached raw payload as fetched from the stats backend.
type Snapshot struct {
	ID        string
	QueryKey  string
	Kind      string
	Payload   []byte
	FetchedAt time.Time
}

// SnapshotRepository caches raw table payloads per query.
type SnapshotRepository interface {
	// Save stores a new snapshot and returns its generated id.
	Save(ctx context.Context, queryKey, kind string, payload []byte) (string, error)

	// Latest returns the most recently fetched snapshot for queryKey and kind.
	Latest(ctx context.Context, queryKey, kind string) (*Snapshot, error)

	// Prune deletes all but the newest keep snapshots per query and kind.
	Prune(ctx context.Context, keep int) (int64, error)
}

type snapshotRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewSnapshotRepository creates a new snapshot repository.
func NewSnapshotRepository(db *sql.DB) SnapshotRepository {
	return &snapshotRepository{db: db, now: func() time.Time { return time.Now().UTC() }}
}

func (r *snapshotRepository) Save(ctx context.Context, queryKey, kind string, payload []byte) (string, error) {
	id := uuid.NewString()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO snapshots (id, query_key, kind, payload, fetched_at) VALUES (?, ?, ?, ?, ?)
	`, id, queryKey, kind, string(payload), r.now())
	if err != nil {
		return "", fmt.Errorf("failed to save %s snapshot: %w", kind, err)
	}
	return id, nil
}

func (r *snapshotRepository) Latest(ctx context.Context, queryKey, kind string) (*Snapshot, error) {
	var (
		s       Snapshot
		payload string
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, query_key, kind, payload, fetched_at FROM snapshots
		WHERE query_key = ? AND kind = ?
		ORDER BY fetched_at DESC, rowid DESC
		LIMIT 1
	`, queryKey, kind).Scan(&s.ID, &s.QueryKey, &s.Kind, &payload, &s.FetchedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s/%s", ErrSnapshotNotFound, queryKey, kind)
		}
		return nil, fmt.Errorf("failed to get %s snapshot: %w", kind, err)
	}
	s.Payload = []byte(payload)
	return &s, nil
}

func (r *snapshotRepository) Prune(ctx context.Context, keep int) (int64, error) {
	if keep < 1 {
		keep = 1
	}
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM snapshots WHERE rowid IN (
			SELECT rowid FROM (
				SELECT rowid, ROW_NUMBER() OVER (
					PARTITION BY query_key, kind ORDER BY fetched_at DESC, rowid DESC
				) AS rn FROM snapshots
			) WHERE rn > ?
		)
	`, keep)
	if err != nil {
		return 0, fmt.Errorf("failed to prune snapshots: %w", err)
	}
	return res.RowsAffected()
}
