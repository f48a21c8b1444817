package dataset

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrSnapshotUnavailable reports that no stored snapshot could be read, either
// because the table is missing or the named row does not exist.
var ErrSnapshotUnavailable = errors.New("dataset: snapshot unavailable")

const (
	pgUndefinedTable = "42P01"

	schemaSQL = `CREATE TABLE IF NOT EXISTS dataset_snapshots (
	name TEXT PRIMARY KEY,
	document JSONB NOT NULL,
	checksum TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`
	loadSQL    = `SELECT document FROM dataset_snapshots WHERE name = $1`
	publishSQL = `INSERT INTO dataset_snapshots (name, document, checksum, updated_at)
VALUES ($1, $2, $3, now())
ON CONFLICT (name) DO UPDATE SET document = EXCLUDED.document, checksum = EXCLUDED.checksum, updated_at = now()`
)

// Querier is satisfied by *pgxpool.Pool and pgx.Tx.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PGSource reads and writes dataset snapshots stored as JSONB.
type PGSource struct {
	db Querier
}

// NewPGSource constructs a snapshot source.
func NewPGSource(db Querier) *PGSource {
	return &PGSource{db: db}
}

// EnsureSchema creates the snapshot table when missing.
func (p *PGSource) EnsureSchema(ctx context.Context) error {
	if _, err := p.db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("dataset: ensure schema: %w", err)
	}
	return nil
}

// Load reads and validates the named snapshot.
func (p *PGSource) Load(ctx context.Context, name string) (*Store, error) {
	if p == nil || p.db == nil {
		return nil, ErrSnapshotUnavailable
	}
	var raw []byte
	if err := p.db.QueryRow(ctx, loadSQL, snapshotName(name)).Scan(&raw); err != nil {
		return nil, classify(err)
	}
	return Parse(raw)
}

// Publish validates raw and upserts it under name.
func (p *PGSource) Publish(ctx context.Context, name string, raw []byte) (*Store, error) {
	store, err := Parse(raw)
	if err != nil {
		return nil, err
	}
	if _, err := p.db.Exec(ctx, publishSQL, snapshotName(name), raw, store.Checksum()); err != nil {
		return nil, fmt.Errorf("dataset: publish snapshot: %w", err)
	}
	return store, nil
}

func snapshotName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "default"
	}
	return name
}

func classify(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrSnapshotUnavailable
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUndefinedTable {
		return fmt.Errorf("%w: %s", ErrSnapshotUnavailable, pgErr.Message)
	}
	return fmt.Errorf("dataset: load snapshot: %w", err)
}

// Origins reported by Resolve.
const (
	OriginPostgres = "postgres"
	OriginEmbedded = "embedded"
)

// Resolve loads the named snapshot and falls back to the embedded document
// when none is stored. Other load failures are returned.
func Resolve(ctx context.Context, src *PGSource, name string) (*Store, string, error) {
	store, err := src.Load(ctx, name)
	switch {
	case err == nil:
		return store, OriginPostgres, nil
	case !errors.Is(err, ErrSnapshotUnavailable):
		return nil, "", err
	}
	store, err = Embedded()
	if err != nil {
		return nil, "", err
	}
	return store, OriginEmbedded, nil
}
