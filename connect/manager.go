package connect

import (
	"context"
	"database/sql"

	clog "github.com/pip-services3-gox/pip-services3-components-gox/log"

	"github.com/borealisdb/sqlgate/dberrors"
)

// Connection is the backing connection handed out by a Manager. It wraps
// either a session-owned *sql.DB (Simple) or a pinned *sql.Conn (Persistent,
// Pooled) behind the same execer surface the Query Executer (C3) drives.
type Connection struct {
	db      *sql.DB
	conn    *sql.Conn
	poolKey string // which named pool this checkout belongs to (Pooled only)
}

func (c *Connection) execer() interface {
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
} {
	if c.conn != nil {
		return c.conn
	}
	return c.db
}

// PrepareContext prepares a statement against the held connection.
func (c *Connection) PrepareContext(ctx context.Context, query string) (*sql.Stmt, error) {
	return c.execer().PrepareContext(ctx, query)
}

// ExecContext runs a statement with no result set against the held
// connection — used by the Schema Reconciliation Engine (C7) for DDL.
func (c *Connection) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return c.execer().ExecContext(ctx, query, args...)
}

// QueryContext runs a statement returning rows against the held
// connection — used by C7's catalog probes.
func (c *Connection) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return c.execer().QueryContext(ctx, query, args...)
}

// Stats is the snapshot returned by Manager.Stats.
type Stats struct {
	Type          string
	Environment   Environment
	HasConnection bool
	InTransaction bool
	Initialized   bool
	Persistent    bool
	Config        *Descriptor
}

// Manager is the contract shared by the Simple, Persistent and Pooled
// variants of spec §4.2 — one interface, three implementations, per
// SPEC_FULL.md's "polymorphic managers" design note.
type Manager interface {
	Acquire(ctx context.Context, poolName string) (*Connection, error)
	Release(conn *Connection)

	BeginTransaction(ctx context.Context, poolName string) bool
	Commit(ctx context.Context, poolName string) bool
	Rollback(ctx context.Context, poolName string) bool
	InTransaction(poolName string) bool

	Disconnect(ctx context.Context)
	Stats() Stats
	LastError() *string
}

// newLogger builds the clog.CompositeLogger every variant holds.
func newLogger() *clog.CompositeLogger {
	return clog.NewCompositeLogger()
}

// errState is embedded by every variant for the shared lastError slot
// (spec §3).
type errState struct {
	dberrors.State
}

const defaultPoolName = "default"

func poolNameOrDefault(name string) string {
	if name == "" {
		return defaultPoolName
	}
	return name
}
