package query

import (
	"context"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/assert"

	"github.com/borealisdb/sqlgate/connect"
)

func newWidgetsAdapter(t *testing.T) *Adapter {
	t.Helper()
	// A file-backed database, because Simple closes its handle on every
	// release and an in-memory database would vanish with it.
	m := connect.NewSimple(&connect.Descriptor{Driver: "sqlite3", Database: filepath.Join(t.TempDir(), "widgets.db"), ConnectTimeoutSec: 5})
	ctx := context.Background()
	conn, err := m.Acquire(ctx, "")
	require.NoError(t, err)
	_, err = conn.ExecContext(ctx, "CREATE TABLE widgets (id INTEGER PRIMARY KEY AUTOINCREMENT, name TEXT, qty INTEGER)")
	require.NoError(t, err)
	return New(m, "")
}

func TestAdapterInsertReturnsNewId(t *testing.T) {
	a := newWidgetsAdapter(t)
	id, ok := a.Insert(context.Background(), "INSERT INTO widgets (name, qty) VALUES (:name, :qty)",
		map[string]any{"name": "bolt", "qty": 10})
	require.True(t, ok)
	require.NotNil(t, id)
	assert.Equal(t, 1, *id)
}

func TestAdapterUpdateReturnsAffectedRows(t *testing.T) {
	a := newWidgetsAdapter(t)
	ctx := context.Background()
	a.Insert(ctx, "INSERT INTO widgets (name, qty) VALUES (:name, :qty)", map[string]any{"name": "bolt", "qty": 10})

	n, ok := a.Update(ctx, "UPDATE widgets SET qty = :qty WHERE name = :name", map[string]any{"qty": 99, "name": "bolt"})
	require.True(t, ok)
	assert.Equal(t, 1, *n)
}

func TestAdapterDeleteOfMissingRowReturnsZeroNotFailure(t *testing.T) {
	a := newWidgetsAdapter(t)
	n, ok := a.Delete(context.Background(), "DELETE FROM widgets WHERE name = :name", map[string]any{"name": "nope"})
	require.True(t, ok)
	assert.Equal(t, 0, *n)
}

func TestAdapterSelectReturnsRowMaps(t *testing.T) {
	a := newWidgetsAdapter(t)
	ctx := context.Background()
	a.Insert(ctx, "INSERT INTO widgets (name, qty) VALUES (:name, :qty)", map[string]any{"name": "bolt", "qty": 10})

	rows, ok := a.Select(ctx, "SELECT name, qty FROM widgets", nil)
	require.True(t, ok)
	require.Len(t, rows, 1)
	assert.Equal(t, "bolt", rows[0]["name"])
}

type widgetDTO struct {
	Name string `json:"name"`
	Qty  int    `json:"qty"`
}

func TestSelectObjectsDecodesIntoTypedSlice(t *testing.T) {
	a := newWidgetsAdapter(t)
	ctx := context.Background()
	a.Insert(ctx, "INSERT INTO widgets (name, qty) VALUES (:name, :qty)", map[string]any{"name": "bolt", "qty": 10})

	items, ok := SelectObjects[widgetDTO](ctx, a, "SELECT name, qty FROM widgets", nil)
	require.True(t, ok)
	require.Len(t, items, 1)
	assert.Equal(t, "bolt", items[0].Name)
}

func TestAdapterSelectCountRejectsNonNumericResult(t *testing.T) {
	a := newWidgetsAdapter(t)
	ctx := context.Background()
	a.Insert(ctx, "INSERT INTO widgets (name, qty) VALUES (:name, :qty)", map[string]any{"name": "bolt", "qty": 10})

	n, ok := a.SelectCount(ctx, "SELECT name FROM widgets LIMIT 1", nil)
	assert.False(t, ok)
	assert.Nil(t, n)
}

func TestAdapterInsertIntoUsesBuilder(t *testing.T) {
	a := newWidgetsAdapter(t)
	id, ok := a.InsertInto(context.Background(), "widgets", map[string]any{"name": "bolt", "qty": 10})
	require.True(t, ok)
	assert.Equal(t, 1, *id)
}

func TestAdapterUpdateTableMergesWhereParams(t *testing.T) {
	a := newWidgetsAdapter(t)
	ctx := context.Background()
	id, ok := a.InsertInto(ctx, "widgets", map[string]any{"name": "bolt", "qty": 10})
	require.True(t, ok)

	n, ok := a.UpdateTable(ctx, "widgets", map[string]any{"qty": 42}, "id = :id", map[string]any{"id": *id})
	require.True(t, ok)
	assert.Equal(t, 1, *n)

	rows, ok := a.Select(ctx, "SELECT qty FROM widgets WHERE id = :id", map[string]any{"id": *id})
	require.True(t, ok)
	require.Len(t, rows, 1)
	assert.EqualValues(t, 42, rows[0]["qty"])
}

func TestAdapterSelectCountReturnsInt(t *testing.T) {
	a := newWidgetsAdapter(t)
	ctx := context.Background()
	a.Insert(ctx, "INSERT INTO widgets (name, qty) VALUES (:name, :qty)", map[string]any{"name": "bolt", "qty": 10})

	n, ok := a.SelectCount(ctx, "SELECT COUNT(*) FROM widgets", nil)
	require.True(t, ok)
	assert.Equal(t, 1, *n)
}
