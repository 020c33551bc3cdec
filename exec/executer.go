// Package exec implements the Query Execution Engine (C3): prepared
// statement lifecycle, typed parameter binding, result fetching, and the
// transactional vs. non-transactional release discipline of spec.md §4.3.
package exec

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
	"time"

	clog "github.com/pip-services3-gox/pip-services3-components-gox/log"

	"github.com/borealisdb/sqlgate/connect"
	"github.com/borealisdb/sqlgate/dberrors"
)

const maxQueryBytes = 1_000_000

// Executer is a session-scoped query executer: at most one live prepared
// statement slot at a time (spec §3's "Prepared statement slot" invariant).
type Executer struct {
	dberrors.State

	manager  connect.Manager
	poolName string
	logger   *clog.CompositeLogger

	conn *connect.Connection
	stmt *sql.Stmt
	rows *sql.Rows

	rawSQL     string
	paramOrder []string
	bindings   map[string]Value

	isSelect bool
	executed bool

	affected        int64
	lastInsertID    sql.NullString
	executionMillis float64
}

// New creates an Executer bound to manager, acquiring connections from the
// named pool (empty string means the default pool; ignored by Simple and
// Persistent).
func New(manager connect.Manager, poolName string) *Executer {
	return &Executer{manager: manager, poolName: poolName, logger: clog.NewCompositeLogger()}
}

// Prepare closes any previous statement's cursor, clears bindings, and
// prepares sqlText. Returns the Executer itself for fluent chaining; check
// LastError() for failure.
func (e *Executer) Prepare(ctx context.Context, sqlText string) *Executer {
	e.closeCursor()
	e.bindings = map[string]Value{}
	e.executed = false
	e.affected = 0
	e.lastInsertID = sql.NullString{}

	if sqlText == "" {
		e.Set("Query is empty", nil)
		return e
	}
	if len(sqlText) > maxQueryBytes {
		e.Set("Query exceeds maximum length", nil)
		return e
	}

	if e.conn == nil {
		conn, err := e.manager.Acquire(ctx, e.poolName)
		if err != nil {
			e.SetErr(err, nil)
			return e
		}
		e.conn = conn
	}

	numbered := false
	if cfg := e.manager.Stats().Config; cfg != nil {
		numbered = cfg.DriverName() == "pgx"
	}
	driverSQL, order := rewriteNamedParams(sqlText, numbered)
	stmt, err := e.conn.PrepareContext(ctx, driverSQL)
	if err != nil {
		e.Set("Error preparing statement: "+err.Error(), nil)
		return e
	}

	e.rawSQL = sqlText
	e.paramOrder = order
	e.stmt = stmt
	e.Clear()
	return e
}

// Bind assigns value (after type inference) to the named placeholder.
// Requires an active statement slot.
func (e *Executer) Bind(name string, value any) *Executer {
	if e.stmt == nil {
		e.Set("No statement prepared", nil)
		return e
	}
	e.bindings[name] = Infer(value)
	return e
}

func firstKeyword(sqlText string) string {
	trimmed := strings.TrimLeft(sqlText, " \t\r\n")
	end := strings.IndexAny(trimmed, " \t\r\n(")
	if end < 0 {
		end = len(trimmed)
	}
	return strings.ToUpper(trimmed[:end])
}

func operationFor(keyword string) dberrors.Operation {
	switch keyword {
	case "INSERT":
		return dberrors.OpInsert
	case "UPDATE":
		return dberrors.OpUpdate
	case "DELETE":
		return dberrors.OpDelete
	case "SELECT":
		return dberrors.OpSelect
	default:
		return dberrors.OpOther
	}
}

// Execute runs the prepared statement. Requires an active slot.
func (e *Executer) Execute(ctx context.Context) bool {
	if e.stmt == nil {
		e.Set("No statement prepared", nil)
		return false
	}

	args := make([]any, len(e.paramOrder))
	for i, name := range e.paramOrder {
		v, ok := e.bindings[name]
		if !ok {
			v = Value{Kind: KindNull}
		}
		args[i] = v.Raw()
	}

	keyword := firstKeyword(e.rawSQL)
	e.isSelect = keyword == "SELECT"

	start := time.Now()
	var err error
	if e.isSelect {
		e.rows, err = e.stmt.QueryContext(ctx, args...)
	} else {
		var res sql.Result
		res, err = e.stmt.ExecContext(ctx, args...)
		if err == nil {
			if n, aerr := res.RowsAffected(); aerr == nil {
				e.affected = n
			}
			if keyword == "INSERT" {
				if id, ierr := res.LastInsertId(); ierr == nil {
					e.lastInsertID = sql.NullString{String: strconv.FormatInt(id, 10), Valid: true}
				}
			}
		}
	}
	e.executionMillis = float64(time.Since(start).Microseconds()) / 1000.0

	if err != nil {
		// Route straight to the normalizer so the specialized duplicate/
		// foreign-key message wins over any generic wrapping (spec §9 Open
		// Question #1, decided in SPEC_FULL.md).
		norm := dberrors.Normalize("", err, operationFor(keyword))
		context := map[string]any{}
		if norm.Retryable {
			context["retryable"] = true
		}
		e.Set(norm.Message, context)
		if !e.manager.InTransaction(e.poolName) {
			e.releaseConnection()
		}
		return false
	}

	e.executed = true
	e.Clear()

	if !e.isSelect && !e.manager.InTransaction(e.poolName) {
		e.releaseConnection()
	}
	return true
}

// ExecutionMillis returns the wall-clock duration of the last Execute call.
func (e *Executer) ExecutionMillis() float64 { return e.executionMillis }

// AffectedRows returns the row count affected by the last non-select Execute.
func (e *Executer) AffectedRows() int64 { return e.affected }

// LastInsertedId returns the captured id from the last INSERT, or false
// (ok=false) if none was captured.
func (e *Executer) LastInsertedId() (string, bool) {
	if !e.lastInsertID.Valid {
		return "", false
	}
	return e.lastInsertID.String, true
}

// closeCursor closes any open rowset and forgets the current statement.
func (e *Executer) closeCursor() {
	if e.rows != nil {
		e.rows.Close()
		e.rows = nil
	}
	if e.stmt != nil {
		e.stmt.Close()
		e.stmt = nil
	}
}

func (e *Executer) releaseConnection() {
	if e.conn == nil {
		return
	}
	e.manager.Release(e.conn)
	e.conn = nil
}

// Secure is the idempotent teardown path: rollback if forced or a
// transaction is active, close the cursor, release the connection. It is
// guaranteed to run on session destruction and never surfaces an error —
// Rollback's own "No active transaction" failure is simply discarded.
func (e *Executer) Secure(ctx context.Context, forceRollback bool) {
	if forceRollback || e.manager.InTransaction(e.poolName) {
		e.manager.Rollback(ctx, e.poolName)
	}
	e.closeCursor()
	e.releaseConnection()
}
