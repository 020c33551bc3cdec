package exec

import (
	"context"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/assert"

	"github.com/borealisdb/sqlgate/connect"
)

func newTestManager(t *testing.T) connect.Manager {
	t.Helper()
	// A file-backed database, because Simple closes its handle on every
	// release and an in-memory database would vanish with it.
	m := connect.NewSimple(&connect.Descriptor{Driver: "sqlite3", Database: filepath.Join(t.TempDir(), "widgets.db"), ConnectTimeoutSec: 5})
	ctx := context.Background()
	conn, err := m.Acquire(ctx, "")
	require.NoError(t, err)
	_, err = conn.ExecContext(ctx, "CREATE TABLE widgets (id INTEGER PRIMARY KEY AUTOINCREMENT, name TEXT, qty INTEGER)")
	require.NoError(t, err)
	return m
}

func TestExecuterInsertCapturesAffectedRowsAndLastInsertedId(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)

	e := New(m, "")
	e.Prepare(ctx, "INSERT INTO widgets (name, qty) VALUES (:name, :qty)")
	e.Bind("name", "bolt")
	e.Bind("qty", 10)

	require.True(t, e.Execute(ctx), e.Get())
	assert.EqualValues(t, 1, e.AffectedRows())
	id, ok := e.LastInsertedId()
	assert.True(t, ok)
	assert.Equal(t, "1", id)
}

func TestExecuterSelectFetchAllReturnsRowMaps(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)

	insert := New(m, "")
	insert.Prepare(ctx, "INSERT INTO widgets (name, qty) VALUES (:name, :qty)")
	insert.Bind("name", "bolt")
	insert.Bind("qty", 10)
	require.True(t, insert.Execute(ctx))

	e := New(m, "")
	e.Prepare(ctx, "SELECT name, qty FROM widgets WHERE name = :name")
	e.Bind("name", "bolt")
	require.True(t, e.Execute(ctx))

	rows, ok := e.FetchAll(ctx)
	require.True(t, ok)
	require.Len(t, rows, 1)
	assert.Equal(t, "bolt", rows[0]["name"])
}

func TestExecuterFetchOneOnEmptyResultReturnsFalse(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)

	e := New(m, "")
	e.Prepare(ctx, "SELECT name FROM widgets WHERE name = :name")
	e.Bind("name", "missing")
	require.True(t, e.Execute(ctx))

	_, ok := e.FetchOne(ctx)
	assert.False(t, ok)
}

func TestExecuterFetchColumnReturnsScalar(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)

	insert := New(m, "")
	insert.Prepare(ctx, "INSERT INTO widgets (name, qty) VALUES ('a', 1), ('b', 2)")
	require.True(t, insert.Execute(ctx))

	e := New(m, "")
	e.Prepare(ctx, "SELECT COUNT(*) FROM widgets")
	require.True(t, e.Execute(ctx))

	value, ok := e.FetchColumn(ctx)
	require.True(t, ok)
	assert.EqualValues(t, 2, value)
}

func TestExecuterPrepareRejectsEmptyQuery(t *testing.T) {
	m := newTestManager(t)
	e := New(m, "")
	e.Prepare(context.Background(), "")
	assert.NotNil(t, e.Get())
}

func TestExecuterSecureRollsBackAnOpenTransaction(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)
	require.True(t, m.BeginTransaction(ctx, ""))

	e := New(m, "")
	e.Prepare(ctx, "INSERT INTO widgets (name, qty) VALUES ('a', 1)")
	require.True(t, e.Execute(ctx))

	e.Secure(ctx, false)
	assert.False(t, m.InTransaction(""))

	count := New(m, "")
	count.Prepare(ctx, "SELECT COUNT(*) FROM widgets")
	require.True(t, count.Execute(ctx))
	value, ok := count.FetchColumn(ctx)
	require.True(t, ok)
	assert.EqualValues(t, 0, value)
}

func TestExecuterDuplicateKeyIsNormalized(t *testing.T) {
	ctx := context.Background()
	m := connect.NewSimple(&connect.Descriptor{Driver: "sqlite3", Database: filepath.Join(t.TempDir(), "widgets.db"), ConnectTimeoutSec: 5})
	conn, err := m.Acquire(ctx, "")
	require.NoError(t, err)
	_, err = conn.ExecContext(ctx, "CREATE TABLE widgets (id INTEGER PRIMARY KEY, name TEXT UNIQUE)")
	require.NoError(t, err)

	first := New(m, "")
	first.Prepare(ctx, "INSERT INTO widgets (id, name) VALUES (1, 'bolt')")
	require.True(t, first.Execute(ctx))

	second := New(m, "")
	second.Prepare(ctx, "INSERT INTO widgets (id, name) VALUES (2, 'bolt')")
	ok := second.Execute(ctx)
	assert.False(t, ok)
	require.NotNil(t, second.Get())
	assert.Contains(t, *second.Get(), "already exists")
}
