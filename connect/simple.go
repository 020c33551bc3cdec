package connect

import (
	"context"

	clog "github.com/pip-services3-gox/pip-services3-components-gox/log"

	"github.com/borealisdb/sqlgate/tx"
)

// Simple holds one connection, reused across Acquire calls until Release or
// Disconnect (spec §4.2). It models the classic one-connection-per-request
// caller: no pooling, no sharing with other sessions.
type Simple struct {
	errState
	descriptor *Descriptor
	logger     *clog.CompositeLogger
	txCoord    tx.Coordinator

	conn *Connection
}

// NewSimple creates a Simple manager for descriptor.
func NewSimple(descriptor *Descriptor) *Simple {
	return &Simple{descriptor: descriptor, logger: newLogger()}
}

func (m *Simple) Acquire(ctx context.Context, poolName string) (*Connection, error) {
	// poolName is advisory for Simple: a single session only ever has one
	// backing connection regardless of which name is passed.
	if m.conn != nil {
		return m.conn, nil
	}

	db, err := openAndPing(ctx, m.descriptor.DriverName(), m.descriptor.DSN(), m.descriptor.connectTimeout())
	if err != nil {
		m.SetErr(err, nil)
		return nil, err
	}
	db.SetMaxOpenConns(1)

	m.Clear()
	m.conn = &Connection{db: db}
	return m.conn, nil
}

func (m *Simple) Release(conn *Connection) {
	// Per SPEC_FULL's Open Question #3: releasing a connection this manager
	// does not currently hold is a no-op.
	if conn == nil || m.conn != conn {
		return
	}
	conn.db.Close()
	m.conn = nil
}

func (m *Simple) BeginTransaction(ctx context.Context, poolName string) bool {
	if m.txCoord.Active() {
		m.Set("Already in transaction", nil)
		return false
	}
	conn, err := m.Acquire(ctx, poolName)
	if err != nil {
		return false
	}
	if _, err := conn.execer().ExecContext(ctx, "BEGIN"); err != nil {
		m.SetErr(err, nil)
		return false
	}
	m.txCoord.Begin()
	m.Clear()
	return true
}

func (m *Simple) Commit(ctx context.Context, poolName string) bool {
	if !m.txCoord.Active() {
		m.Set("No active transaction", nil)
		return false
	}
	if _, err := m.conn.execer().ExecContext(ctx, "COMMIT"); err != nil {
		m.SetErr(err, nil)
		return false
	}
	m.txCoord.End()
	m.Release(m.conn)
	m.Clear()
	return true
}

func (m *Simple) Rollback(ctx context.Context, poolName string) bool {
	if !m.txCoord.Active() {
		m.Set("No active transaction", nil)
		return false
	}
	if _, err := m.conn.execer().ExecContext(ctx, "ROLLBACK"); err != nil {
		m.SetErr(err, nil)
		return false
	}
	m.txCoord.End()
	m.Release(m.conn)
	m.Clear()
	return true
}

func (m *Simple) InTransaction(poolName string) bool {
	return m.txCoord.Active()
}

func (m *Simple) Disconnect(ctx context.Context) {
	if m.txCoord.Active() {
		// Teardown must not throw: swallow the rollback error.
		_, _ = m.conn.execer().ExecContext(ctx, "ROLLBACK")
		m.txCoord.End()
	}
	if m.conn != nil {
		m.Release(m.conn)
	}
}

func (m *Simple) Stats() Stats {
	return Stats{
		Type:          "simple",
		HasConnection: m.conn != nil,
		InTransaction: m.txCoord.Active(),
		Initialized:   m.descriptor != nil,
		Persistent:    false,
		Config:        m.descriptor,
	}
}

func (m *Simple) LastError() *string { return m.Get() }
