package journal

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entryAt(t0 time.Time, i int, op Operation) *Entry {
	e := NewEntry("sess", "127.0.0.1:5000", op, "file.txt")
	e.StartedAt = t0.Add(time.Duration(i) * time.Second)
	e.Bytes = int64(i)
	e.Success = true
	return e
}

// runStoreSuite checks the behaviour shared by every backend.
func runStoreSuite(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()
	t0 := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	require.NoError(t, s.Healthcheck(ctx))

	empty, err := s.Recent(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, empty)

	for i := 0; i < 5; i++ {
		op := OpPut
		if i%2 == 1 {
			op = OpGet
		}
		require.NoError(t, s.Record(ctx, entryAt(t0, i, op)))
	}

	recent, err := s.Recent(ctx, 3)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	assert.Equal(t, []int64{4, 3, 2}, []int64{recent[0].Bytes, recent[1].Bytes, recent[2].Bytes})
	assert.Equal(t, OpGet, recent[1].Operation)
	assert.Equal(t, "sess", recent[0].SessionID)
	assert.Equal(t, "127.0.0.1:5000", recent[0].ClientAddr)
	assert.True(t, recent[0].StartedAt.Equal(t0.Add(4*time.Second)))

	all, err := s.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func TestMemoryStore(t *testing.T) {
	runStoreSuite(t, NewMemoryStore(0))
}

func TestMemoryStoreWraps(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(3)
	t0 := time.Now()
	for i := 0; i < 7; i++ {
		require.NoError(t, s.Record(ctx, entryAt(t0, i, OpPut)))
	}

	got, err := s.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, int64(6), got[0].Bytes)
	assert.Equal(t, int64(4), got[2].Bytes)
}

func TestSQLiteStore(t *testing.T) {
	s, err := NewSQLiteStore(SQLiteConfig{Path: filepath.Join(t.TempDir(), "j", "journal.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	runStoreSuite(t, s)
}

func TestBadgerStore(t *testing.T) {
	s, err := NewBadgerStore(BadgerConfig{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	runStoreSuite(t, s)
}

func TestBadgerStoreOnDisk(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := NewBadgerStore(BadgerConfig{Dir: dir})
	require.NoError(t, err)
	require.NoError(t, s.Record(ctx, entryAt(time.Now(), 1, OpPut)))
	require.NoError(t, s.Close())

	s, err = NewBadgerStore(BadgerConfig{Dir: dir})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	got, err := s.Recent(ctx, 5)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestNewSelectsBackend(t *testing.T) {
	s, err := New(Config{})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	s, err = New(Config{Type: TypeBadger, Badger: BadgerConfig{InMemory: true}})
	require.NoError(t, err)
	assert.IsType(t, &BadgerStore{}, s)
	require.NoError(t, s.Close())

	_, err = New(Config{Type: "mongo"})
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestConfigErrors(t *testing.T) {
	_, err := NewSQLiteStore(SQLiteConfig{})
	assert.Error(t, err)

	_, err = NewPostgresStore(PostgresConfig{Host: "localhost"})
	assert.Error(t, err)

	_, err = NewBadgerStore(BadgerConfig{})
	assert.Error(t, err)
}

func TestEntryFinish(t *testing.T) {
	e := NewEntry("s", "c", OpPut, "a/b")
	require.NotEmpty(t, e.ID)
	assert.Equal(t, time.UTC, e.StartedAt.Location())

	e.Finish(42, nil)
	assert.True(t, e.Success)
	assert.Equal(t, int64(42), e.Bytes)
	assert.Empty(t, e.Error)

	e2 := NewEntry("s", "c", OpGet, "x")
	e2.Finish(3, errors.New("short write"))
	assert.False(t, e2.Success)
	assert.Equal(t, "short write", e2.Error)
	assert.NotEqual(t, e.ID, e2.ID)
}

func TestPostgresDSN(t *testing.T) {
	cfg := PostgresConfig{Host: "db", User: "u", Password: "p", Database: "x", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=x sslmode=disable", cfg.DSN())
}
