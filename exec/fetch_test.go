package exec

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/assert"
)

type widgetRow struct {
	Name string `json:"name"`
	Qty  int    `json:"qty"`
}

func TestFetchAllObjectsDecodesRowsIntoTypedSlice(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)

	insert := New(m, "")
	insert.Prepare(ctx, "INSERT INTO widgets (name, qty) VALUES ('bolt', 10)")
	require.True(t, insert.Execute(ctx))

	e := New(m, "")
	e.Prepare(ctx, "SELECT name, qty FROM widgets")
	require.True(t, e.Execute(ctx))

	items, ok := FetchAllObjects[widgetRow](ctx, e)
	require.True(t, ok)
	require.Len(t, items, 1)
	assert.Equal(t, "bolt", items[0].Name)
	assert.Equal(t, 10, items[0].Qty)
}

func TestNormalizeScannedConvertsByteSliceToString(t *testing.T) {
	assert.Equal(t, "hi", normalizeScanned([]byte("hi")))
	assert.Equal(t, 7, normalizeScanned(7))
	assert.Nil(t, normalizeScanned(nil))
}
