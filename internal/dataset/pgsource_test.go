package dataset

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRow struct {
	raw []byte
	err error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*(dest[0].(*[]byte)) = r.raw
	return nil
}

type fakeQuerier struct {
	row      fakeRow
	execErr  error
	execSQL  []string
	execArgs [][]any
}

func (f *fakeQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return f.row
}

func (f *fakeQuerier) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.execSQL = append(f.execSQL, sql)
	f.execArgs = append(f.execArgs, args)
	return pgconn.NewCommandTag("INSERT 0 1"), f.execErr
}

func TestPGSourceLoadParsesSnapshot(t *testing.T) {
	src := NewPGSource(&fakeQuerier{row: fakeRow{raw: EmbeddedDocument()}})
	store, err := src.Load(context.Background(), "")
	require.NoError(t, err)
	assert.True(t, store.HasDomain("new_patients"))
}

func TestPGSourceLoadMissingRow(t *testing.T) {
	src := NewPGSource(&fakeQuerier{row: fakeRow{err: pgx.ErrNoRows}})
	_, err := src.Load(context.Background(), "default")
	assert.ErrorIs(t, err, ErrSnapshotUnavailable)
}

func TestPGSourceLoadUndefinedTable(t *testing.T) {
	src := NewPGSource(&fakeQuerier{row: fakeRow{err: &pgconn.PgError{Code: "42P01", Message: "relation does not exist"}}})
	_, err := src.Load(context.Background(), "default")
	assert.ErrorIs(t, err, ErrSnapshotUnavailable)
}

func TestPGSourceLoadOtherErrorsPropagate(t *testing.T) {
	boom := errors.New("connection reset")
	src := NewPGSource(&fakeQuerier{row: fakeRow{err: boom}})
	_, err := src.Load(context.Background(), "default")
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrSnapshotUnavailable)
}

func TestPGSourceNilIsUnavailable(t *testing.T) {
	var src *PGSource
	_, err := src.Load(context.Background(), "default")
	assert.ErrorIs(t, err, ErrSnapshotUnavailable)
}

func TestPGSourcePublishValidatesBeforeWrite(t *testing.T) {
	q := &fakeQuerier{}
	src := NewPGSource(q)

	_, err := src.Publish(context.Background(), "bad", []byte(`{"trends":{"x":{}}}`))
	require.Error(t, err)
	assert.Empty(t, q.execSQL)

	store, err := src.Publish(context.Background(), " nightly ", EmbeddedDocument())
	require.NoError(t, err)
	require.Len(t, q.execArgs, 1)
	assert.Equal(t, "nightly", q.execArgs[0][0])
	assert.Equal(t, store.Checksum(), q.execArgs[0][2])
}

func TestResolveFallsBackToEmbedded(t *testing.T) {
	store, origin, err := Resolve(context.Background(), nil, "default")
	require.NoError(t, err)
	assert.Equal(t, OriginEmbedded, origin)
	assert.True(t, store.HasDomain("new_patients"))

	src := NewPGSource(&fakeQuerier{row: fakeRow{err: pgx.ErrNoRows}})
	_, origin, err = Resolve(context.Background(), src, "default")
	require.NoError(t, err)
	assert.Equal(t, OriginEmbedded, origin)
}

func TestResolvePrefersSnapshot(t *testing.T) {
	src := NewPGSource(&fakeQuerier{row: fakeRow{raw: EmbeddedDocument()}})
	_, origin, err := Resolve(context.Background(), src, "default")
	require.NoError(t, err)
	assert.Equal(t, OriginPostgres, origin)

	boom := errors.New("connection reset")
	_, _, err = Resolve(context.Background(), NewPGSource(&fakeQuerier{row: fakeRow{err: boom}}), "default")
	assert.ErrorIs(t, err, boom)
}
