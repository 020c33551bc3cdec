package connect

import (
	"context"
	"database/sql"
	"sync"

	clog "github.com/pip-services3-gox/pip-services3-components-gox/log"

	"github.com/borealisdb/sqlgate/tx"
)

// persistentRegistry holds the long-lived OS-level *sql.DB handles that
// Persistent sessions share, keyed by DSN. This is the Go analogue of a
// persistent-connection runtime handing the same underlying handle to
// every request in the process (spec §4.2, SPEC_FULL.md Open Question #2).
var persistentRegistry = struct {
	mu  sync.Mutex
	dbs map[string]*sql.DB
}{dbs: map[string]*sql.DB{}}

func acquirePersistentDB(ctx context.Context, d *Descriptor) (*sql.DB, error) {
	key := d.DriverName() + "|" + d.DSN()

	persistentRegistry.mu.Lock()
	defer persistentRegistry.mu.Unlock()

	if db, ok := persistentRegistry.dbs[key]; ok {
		return db, nil
	}

	db, err := openAndPing(ctx, d.DriverName(), d.DSN(), d.connectTimeout())
	if err != nil {
		return nil, err
	}
	persistentRegistry.dbs[key] = db
	return db, nil
}

// ResetPersistentRegistry closes and forgets every persistent handle (test
// hook, mirrors Manager.resetSingleton).
func ResetPersistentRegistry() {
	persistentRegistry.mu.Lock()
	defer persistentRegistry.mu.Unlock()
	for _, db := range persistentRegistry.dbs {
		db.Close()
	}
	persistentRegistry.dbs = map[string]*sql.DB{}
}

// Persistent requests a long-lived handle from the driver; the underlying
// *sql.DB may be shared across sessions by the driver layer (spec §4.2),
// while each session pins its own physical connection off it for the
// duration of that session. Release returns the pinned connection to the
// shared handle — the handle itself outlives the session.
type Persistent struct {
	errState
	descriptor *Descriptor
	logger     *clog.CompositeLogger
	txCoord    tx.Coordinator

	conn *Connection
}

// NewPersistent creates a Persistent manager for descriptor.
func NewPersistent(descriptor *Descriptor) *Persistent {
	return &Persistent{descriptor: descriptor, logger: newLogger()}
}

func (m *Persistent) Acquire(ctx context.Context, poolName string) (*Connection, error) {
	if m.conn != nil {
		return m.conn, nil
	}
	db, err := acquirePersistentDB(ctx, m.descriptor)
	if err != nil {
		m.SetErr(err, nil)
		return nil, err
	}
	// Pin one physical connection off the shared *sql.DB for the life of
	// this session, the same way Pooled.Acquire pins a *sql.Conn — without
	// this, BEGIN/COMMIT issued through the bare *sql.DB could each land on
	// a different physical connection and silently desync the transaction.
	conn, err := db.Conn(ctx)
	if err != nil {
		m.SetErr(err, nil)
		return nil, err
	}
	m.Clear()
	m.conn = &Connection{conn: conn}
	return m.conn, nil
}

func (m *Persistent) Release(conn *Connection) {
	if conn == nil || m.conn != conn {
		return
	}
	// The driver-level *sql.DB handle persists across sessions (spec §4.2);
	// only this session's pinned physical connection is returned to it.
	conn.conn.Close()
	m.conn = nil
}

func (m *Persistent) BeginTransaction(ctx context.Context, poolName string) bool {
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

func (m *Persistent) Commit(ctx context.Context, poolName string) bool {
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

func (m *Persistent) Rollback(ctx context.Context, poolName string) bool {
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

func (m *Persistent) InTransaction(poolName string) bool {
	return m.txCoord.Active()
}

func (m *Persistent) Disconnect(ctx context.Context) {
	if m.txCoord.Active() {
		_, _ = m.conn.execer().ExecContext(ctx, "ROLLBACK")
		m.txCoord.End()
	}
	if m.conn != nil {
		m.Release(m.conn)
	}
}

func (m *Persistent) Stats() Stats {
	return Stats{
		Type:          "persistent",
		HasConnection: m.conn != nil,
		InTransaction: m.txCoord.Active(),
		Initialized:   m.descriptor != nil,
		Persistent:    true,
		Config:        m.descriptor,
	}
}

func (m *Persistent) LastError() *string { return m.Get() }
