package connect

import (
	"context"
	"database/sql"
	"sync"

	clog "github.com/pip-services3-gox/pip-services3-components-gox/log"

	"github.com/borealisdb/sqlgate/tx"
)

// poolRegistry is the one genuinely shared resource in the pooled variant
// (spec §5): a bounded *sql.DB per named source, mutex-serialized, that
// every Pooled session's Acquire/Release checks a connection in and out of.
var poolRegistry = struct {
	mu    sync.Mutex
	pools map[string]*sql.DB
}{pools: map[string]*sql.DB{}}

func getOrCreatePool(ctx context.Context, name string, d *Descriptor) (*sql.DB, error) {
	poolRegistry.mu.Lock()
	defer poolRegistry.mu.Unlock()

	if db, ok := poolRegistry.pools[name]; ok {
		return db, nil
	}

	db, err := openAndPing(ctx, d.DriverName(), d.DSN(), d.connectTimeout())
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(d.Max)
	db.SetMaxIdleConns(d.Min)
	db.SetConnMaxIdleTime(d.maxIdle())
	poolRegistry.pools[name] = db
	return db, nil
}

// ResetPoolRegistry closes and forgets every named pool (test hook, mirrors
// Manager.resetSingleton).
func ResetPoolRegistry() {
	poolRegistry.mu.Lock()
	defer poolRegistry.mu.Unlock()
	for _, db := range poolRegistry.pools {
		db.Close()
	}
	poolRegistry.pools = map[string]*sql.DB{}
}

// Pooled maintains a fixed pool per named source (spec §4.2). Each Pooled
// value represents one session: zero-or-one checked-out connection with a
// reference back to the pool it came from. Acquire blocks up to
// WaitTimeoutSec and fails with "Failed to get database connection" on
// timeout.
type Pooled struct {
	errState
	descriptor *Descriptor
	logger     *clog.CompositeLogger
	txCoord    tx.Coordinator

	conn *Connection
}

// NewPooled creates a Pooled manager for descriptor.
func NewPooled(descriptor *Descriptor) *Pooled {
	return &Pooled{descriptor: descriptor, logger: newLogger()}
}

func (m *Pooled) Acquire(ctx context.Context, poolName string) (*Connection, error) {
	if m.conn != nil {
		return m.conn, nil
	}
	name := poolNameOrDefault(poolName)

	db, err := getOrCreatePool(ctx, name, m.descriptor)
	if err != nil {
		m.SetErr(err, nil)
		return nil, err
	}

	waitCtx, cancel := context.WithTimeout(ctx, m.descriptor.waitTimeout())
	defer cancel()

	conn, err := db.Conn(waitCtx)
	if err != nil {
		m.Set("Failed to get database connection", map[string]any{"pool": name})
		return nil, err
	}

	m.Clear()
	m.conn = &Connection{conn: conn, poolKey: name}
	return m.conn, nil
}

func (m *Pooled) Release(conn *Connection) {
	if conn == nil || m.conn != conn {
		return
	}
	conn.conn.Close() // returns the connection to the named pool
	m.conn = nil
}

func (m *Pooled) BeginTransaction(ctx context.Context, poolName string) bool {
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

func (m *Pooled) Commit(ctx context.Context, poolName string) bool {
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

func (m *Pooled) Rollback(ctx context.Context, poolName string) bool {
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

func (m *Pooled) InTransaction(poolName string) bool {
	return m.txCoord.Active()
}

func (m *Pooled) Disconnect(ctx context.Context) {
	if m.txCoord.Active() {
		_, _ = m.conn.execer().ExecContext(ctx, "ROLLBACK")
		m.txCoord.End()
	}
	if m.conn != nil {
		m.Release(m.conn)
	}
}

func (m *Pooled) Stats() Stats {
	return Stats{
		Type:          "pooled",
		HasConnection: m.conn != nil,
		InTransaction: m.txCoord.Active(),
		Initialized:   m.descriptor != nil,
		Persistent:    false,
		Config:        m.descriptor,
	}
}

func (m *Pooled) LastError() *string { return m.Get() }
