package exec

import (
	"context"
	"encoding/json"
)

// FetchAll returns every remaining row as a map keyed by column name. All
// fetch operations require a prior successful Execute.
func (e *Executer) FetchAll(ctx context.Context) ([]map[string]any, bool) {
	if !e.executed || e.rows == nil {
		e.Set("Failed to fetch results", nil)
		return nil, false
	}

	rowsOut, err := scanRows(e.rows)
	e.finishFetch(ctx)
	if err != nil {
		e.Set("Failed to fetch results", nil)
		return nil, false
	}
	return rowsOut, true
}

// FetchOne returns the first remaining row, or false if the rowset is
// empty or a driver failure occurs.
func (e *Executer) FetchOne(ctx context.Context) (map[string]any, bool) {
	if !e.executed || e.rows == nil {
		e.Set("Failed to fetch results", nil)
		return nil, false
	}

	var row map[string]any
	if e.rows.Next() {
		var err error
		row, err = scanRow(e.rows)
		if err != nil {
			e.finishFetch(ctx)
			e.Set("Failed to fetch results", nil)
			return nil, false
		}
	}
	err := e.rows.Err()
	e.finishFetch(ctx)
	if err != nil {
		e.Set("Failed to fetch results", nil)
		return nil, false
	}
	if row == nil {
		return nil, false
	}
	return row, true
}

// FetchColumn returns the first column of the first remaining row as a
// single scalar.
func (e *Executer) FetchColumn(ctx context.Context) (any, bool) {
	if !e.executed || e.rows == nil {
		e.Set("Failed to fetch count result", nil)
		return nil, false
	}

	var value any
	found := false
	if e.rows.Next() {
		cols, err := e.rows.Columns()
		if err == nil && len(cols) > 0 {
			dest := make([]any, len(cols))
			for i := range dest {
				dest[i] = new(any)
			}
			if scanErr := e.rows.Scan(dest...); scanErr == nil {
				value = normalizeScanned(*(dest[0].(*any)))
				found = true
			} else {
				err = scanErr
			}
		}
		if err != nil {
			e.finishFetch(ctx)
			e.Set("Failed to fetch count result", nil)
			return nil, false
		}
	}
	err := e.rows.Err()
	e.finishFetch(ctx)
	if err != nil {
		e.Set("Failed to fetch count result", nil)
		return nil, false
	}
	if !found {
		return nil, false
	}
	return value, true
}

// finishFetch closes the cursor and releases the connection unless a
// transaction is active, per spec §4.3's fetch-contract release rule.
func (e *Executer) finishFetch(ctx context.Context) {
	e.closeCursor()
	if !e.manager.InTransaction(e.poolName) {
		e.releaseConnection()
	}
}

func scanRows(rows interface {
	Next() bool
	Columns() ([]string, error)
	Scan(dest ...any) error
	Err() error
}) ([]map[string]any, error) {
	out := make([]map[string]any, 0)
	for rows.Next() {
		row, err := scanRow(rows)
		if err != nil {
			return out, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func scanRow(rows interface {
	Columns() ([]string, error)
	Scan(dest ...any) error
}) (map[string]any, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	dest := make([]any, len(cols))
	for i := range dest {
		dest[i] = new(any)
	}
	if err := rows.Scan(dest...); err != nil {
		return nil, err
	}
	row := make(map[string]any, len(cols))
	for i, col := range cols {
		row[col] = normalizeScanned(*(dest[i].(*any)))
	}
	return row, nil
}

// normalizeScanned turns the []byte the MySQL/Postgres/SQLite drivers hand
// back for text-like columns into a plain string, so callers see the same
// shape regardless of dialect.
func normalizeScanned(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}

// FetchAllObjects decodes every remaining row into a slice of T, going
// through the same JSON round-trip the teacher's ConvertToPublic uses
// (scan into a map, marshal, unmarshal into the target type), satisfying
// spec §4.3's "rows-as-objects" fetch mode as a typed projection contract
// (spec §1 keeps full row-to-entity casting out of scope; this is only the
// contract point with a generic target type).
func FetchAllObjects[T any](ctx context.Context, e *Executer) ([]T, bool) {
	maps, ok := e.FetchAll(ctx)
	if !ok {
		return nil, false
	}
	out := make([]T, 0, len(maps))
	for _, m := range maps {
		buf, err := json.Marshal(m)
		if err != nil {
			e.Set("Failed to fetch results", nil)
			return nil, false
		}
		var item T
		if err := json.Unmarshal(buf, &item); err != nil {
			e.Set("Failed to fetch results", nil)
			return nil, false
		}
		out = append(out, item)
	}
	return out, true
}
