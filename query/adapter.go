// Package query implements the Higher-Level Query Adapter (C6): it wraps
// the Query Executer (C3) to expose insert/update/delete/select/
// selectCount with the normalized return contracts of spec.md §4.6.
package query

import (
	"context"
	"strconv"

	"github.com/borealisdb/sqlgate/connect"
	"github.com/borealisdb/sqlgate/dberrors"
	"github.com/borealisdb/sqlgate/exec"
)

// Adapter lazily constructs an Executer per call, per spec §4.6.
type Adapter struct {
	dberrors.State

	manager  connect.Manager
	poolName string
	builder  *Builder
}

// New creates an Adapter bound to manager and the named pool. The
// Builder's quote character is picked from the manager's own descriptor,
// so InsertInto/UpdateTable quote identifiers the way the active dialect
// expects without the caller having to know which driver is live.
func New(manager connect.Manager, poolName string) *Adapter {
	quote := "`"
	if cfg := manager.Stats().Config; cfg != nil && cfg.DriverName() != "mysql" {
		quote = `"`
	}
	return &Adapter{manager: manager, poolName: poolName, builder: NewBuilder(quote)}
}

// InsertInto builds and runs an INSERT statement from a column->value map,
// via Builder, reusing Insert's return contract.
func (a *Adapter) InsertInto(ctx context.Context, table string, values map[string]any) (*int, bool) {
	sql, params := a.builder.InsertStatement(table, values)
	return a.Insert(ctx, sql, params)
}

// UpdateTable builds and runs an UPDATE statement from a column->value map
// plus a caller-supplied WHERE clause (its own bind values must already be
// present in whereParams), via Builder, reusing Update's return contract.
func (a *Adapter) UpdateTable(ctx context.Context, table string, values map[string]any, whereClause string, whereParams map[string]any) (*int, bool) {
	sql := a.builder.UpdateStatement(table, values, whereClause)
	merged := make(map[string]any, len(values)+len(whereParams))
	for k, v := range values {
		merged[k] = v
	}
	for k, v := range whereParams {
		merged[k] = v
	}
	return a.Update(ctx, sql, merged)
}

func (a *Adapter) newExecuter() *exec.Executer {
	return exec.New(a.manager, a.poolName)
}

func (a *Adapter) bindAll(ex *exec.Executer, params map[string]any) {
	for name, value := range params {
		ex.Bind(name, value)
	}
}

func (a *Adapter) forwardError(ex *exec.Executer) {
	if msg := ex.Get(); msg != nil {
		a.Set(*msg, nil)
	}
}

// Insert executes sql and returns the new row's id as int. If the driver
// didn't report a usable id (0, absent, non-numeric) but at least one row
// was affected, it returns 1. Returns nil only on a logical or driver
// failure.
func (a *Adapter) Insert(ctx context.Context, sql string, params map[string]any) (*int, bool) {
	ex := a.newExecuter()
	ex.Prepare(ctx, sql)
	if msg := ex.Get(); msg != nil {
		a.Set(*msg, nil)
		return nil, false
	}
	a.bindAll(ex, params)

	if !ex.Execute(ctx) {
		a.forwardError(ex)
		return nil, false
	}
	a.Clear()

	if idStr, ok := ex.LastInsertedId(); ok {
		if n, err := strconv.Atoi(idStr); err == nil && n != 0 {
			return &n, true
		}
	}

	affected := ex.AffectedRows()
	if affected >= 1 {
		one := 1
		return &one, true
	}

	a.Set("Insert operation failed", nil)
	return nil, false
}

// Update executes sql and returns the number of affected rows. 0 is a
// legitimate result; nil only signals a driver error.
func (a *Adapter) Update(ctx context.Context, sql string, params map[string]any) (*int, bool) {
	return a.execAffected(ctx, sql, params)
}

// Delete executes sql and returns the number of affected rows, same
// semantics as Update.
func (a *Adapter) Delete(ctx context.Context, sql string, params map[string]any) (*int, bool) {
	return a.execAffected(ctx, sql, params)
}

func (a *Adapter) execAffected(ctx context.Context, sql string, params map[string]any) (*int, bool) {
	ex := a.newExecuter()
	ex.Prepare(ctx, sql)
	if msg := ex.Get(); msg != nil {
		a.Set(*msg, nil)
		return nil, false
	}
	a.bindAll(ex, params)

	if !ex.Execute(ctx) {
		a.forwardError(ex)
		return nil, false
	}
	a.Clear()
	n := int(ex.AffectedRows())
	return &n, true
}

// Select runs sql and returns every row as a map keyed by column name.
func (a *Adapter) Select(ctx context.Context, sql string, params map[string]any) ([]map[string]any, bool) {
	ex := a.newExecuter()
	ex.Prepare(ctx, sql)
	if msg := ex.Get(); msg != nil {
		a.Set(*msg, nil)
		return nil, false
	}
	a.bindAll(ex, params)

	if !ex.Execute(ctx) {
		a.forwardError(ex)
		return nil, false
	}
	rows, ok := ex.FetchAll(ctx)
	if !ok {
		a.forwardError(ex)
		return nil, false
	}
	a.Clear()
	return rows, true
}

// SelectObjects runs sql and decodes every row into T, the typed
// projection contract spec §1 carves out from full row-to-entity casting.
func SelectObjects[T any](ctx context.Context, a *Adapter, sql string, params map[string]any) ([]T, bool) {
	ex := a.newExecuter()
	ex.Prepare(ctx, sql)
	if msg := ex.Get(); msg != nil {
		a.Set(*msg, nil)
		return nil, false
	}
	a.bindAll(ex, params)

	if !ex.Execute(ctx) {
		a.forwardError(ex)
		return nil, false
	}
	items, ok := exec.FetchAllObjects[T](ctx, ex)
	if !ok {
		a.forwardError(ex)
		return nil, false
	}
	a.Clear()
	return items, true
}

// SelectCount runs sql expecting a single numeric scalar. A non-numeric
// result is a logical failure, not a driver error.
func (a *Adapter) SelectCount(ctx context.Context, sql string, params map[string]any) (*int, bool) {
	ex := a.newExecuter()
	ex.Prepare(ctx, sql)
	if msg := ex.Get(); msg != nil {
		a.Set(*msg, nil)
		return nil, false
	}
	a.bindAll(ex, params)

	if !ex.Execute(ctx) {
		a.forwardError(ex)
		return nil, false
	}
	value, ok := ex.FetchColumn(ctx)
	if !ok {
		a.forwardError(ex)
		return nil, false
	}

	n, ok := toInt(value)
	if !ok {
		a.Set("Count query did not return a numeric value", nil)
		return nil, false
	}
	a.Clear()
	return &n, true
}

func toInt(v any) (int, bool) {
	switch t := v.(type) {
	case int64:
		return int(t), true
	case int:
		return t, true
	case float64:
		return int(t), true
	case string:
		n, err := strconv.Atoi(t)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}
