package store

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/lowerc/internal/compiler"
	"github.com/roach88/lowerc/internal/config"
	"github.com/roach88/lowerc/internal/ir"
	"github.com/roach88/lowerc/internal/testutil"
)

// createTestStore creates a new store in a temp directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// compileReport compiles prog in a deterministic session.
func compileReport(t *testing.T, id string, prog *ir.Program) *compiler.Report {
	t.Helper()
	sess, err := compiler.NewSession(config.Defaults(),
		compiler.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		compiler.WithSessionIDGenerator(testutil.NewFixedSessionGenerator(id)),
		compiler.WithClock(testutil.NewDeterministicClock()),
	)
	require.NoError(t, err)
	_ = sess.Compile(compiler.Task{Program: prog})
	return sess.Report()
}

func TestOpen_Pragmas(t *testing.T) {
	s := createTestStore(t)

	tests := map[string]string{
		"journal_mode": "wal",
		"synchronous":  "1",
		"busy_timeout": "5000",
		"foreign_keys": "1",
		"user_version": strconv.Itoa(schemaVersion()),
	}
	for name, want := range tests {
		got, err := s.pragma(name)
		require.NoError(t, err)
		assert.Equal(t, want, got, name)
	}
}

func TestOpen_Memory(t *testing.T) {
	s, err := Open(":memory:")
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.WriteReport(context.Background(), compileReport(t, "s-1", testutil.ShapesProgram())))
	sessions, err := s.ListSessions(context.Background())
	require.NoError(t, err)
	assert.Len(t, sessions, 1)
}

func TestMigrate_FromUnversioned(t *testing.T) {
	s := createTestStore(t)
	_, err := s.db.Exec("DROP INDEX idx_units_hash")
	require.NoError(t, err)
	_, err = s.db.Exec("PRAGMA user_version = 0")
	require.NoError(t, err)

	require.NoError(t, migrate(s.db))

	var n int
	require.NoError(t, s.db.QueryRow(
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'index' AND name = 'idx_units_hash'`).Scan(&n))
	assert.Equal(t, 1, n)
	v, err := s.pragma("user_version")
	require.NoError(t, err)
	assert.Equal(t, strconv.Itoa(schemaVersion()), v)
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	s1, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s1.WriteReport(context.Background(), compileReport(t, "s-1", testutil.ZooProgram(false))))
	require.NoError(t, s1.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()

	sessions, err := s2.ListSessions(context.Background())
	require.NoError(t, err)
	assert.Len(t, sessions, 1)
}

func TestWriteReport_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	want := compileReport(t, "s-1", testutil.ZooProgram(true))
	require.NotEmpty(t, want.Units)
	require.NoError(t, s.WriteReport(ctx, want))

	got, err := s.ReadReport(ctx, "s-1")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestWriteReport_FailedSession(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	b := testutil.NewProgram()
	b.Class("app.A", "app.Missing")
	want := compileReport(t, "bad", b.Build())
	require.True(t, want.Failed())
	require.NoError(t, s.WriteReport(ctx, want))

	got, err := s.ReadReport(ctx, "bad")
	require.NoError(t, err)
	assert.Equal(t, want.ErrorCode, got.ErrorCode)
	assert.Equal(t, want.Error, got.Error)
	assert.Equal(t, want.Validation, got.Validation)
	assert.Empty(t, got.Units)
}

func TestWriteReport_Idempotent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	r := compileReport(t, "s-1", testutil.ZooProgram(false))
	require.NoError(t, s.WriteReport(ctx, r))
	require.NoError(t, s.WriteReport(ctx, r))

	got, err := s.ReadReport(ctx, "s-1")
	require.NoError(t, err)
	assert.Equal(t, r.Units, got.Units)
}

func TestReadReport_NotFound(t *testing.T) {
	s := createTestStore(t)
	_, err := s.ReadReport(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.LatestSession(context.Background())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListSessions(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	empty, err := s.ListSessions(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)
	assert.NotNil(t, empty)

	first := compileReport(t, "s-b", testutil.ZooProgram(false))
	second := compileReport(t, "s-a", testutil.ShapesProgram())
	require.NoError(t, s.WriteReport(ctx, first))
	require.NoError(t, s.WriteReport(ctx, second))

	sessions, err := s.ListSessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 2)

	// Insertion order, not ID order.
	assert.Equal(t, "s-b", sessions[0].ID)
	assert.Equal(t, "s-a", sessions[1].ID)
	assert.Equal(t, len(first.Classes), sessions[0].Classes)
	assert.Equal(t, len(first.Units), sessions[0].Units)
	assert.Equal(t, first.ProgramHash, sessions[0].ProgramHash)

	latest, err := s.LatestSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, "s-a", latest)
}

func TestSessionsEmitting(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	a := compileReport(t, "s-1", testutil.ZooProgram(false))
	b := compileReport(t, "s-2", testutil.ZooProgram(false))
	require.NoError(t, s.WriteReport(ctx, a))
	require.NoError(t, s.WriteReport(ctx, b))

	runtime := a.Units[len(a.Units)-1]
	require.Equal(t, "rjava_crt.c", runtime.Name)

	ids, err := s.SessionsEmitting(ctx, runtime.Hash)
	require.NoError(t, err)
	assert.Equal(t, []string{"s-1", "s-2"}, ids)

	none, err := s.SessionsEmitting(ctx, "sha256:nope")
	require.NoError(t, err)
	assert.Empty(t, none)
}
