// Package tx implements the Transaction Coordinator (C5): the
// at-most-one-transaction-per-session state machine described in
// spec.md §4.5. It is embedded by every connect.Manager variant, which is
// the "single active transaction flag" collaborator gating C2's release
// decisions.
package tx

import "sync"

// Coordinator owns the in-transaction flag for one session. It never talks
// to the database itself — callers drive the actual BEGIN/COMMIT/ROLLBACK
// and only report the outcome here, keeping the state machine pure and
// trivially testable (spec §8's invariant about inTransaction).
type Coordinator struct {
	mu     sync.Mutex
	active bool
}

// Begin transitions IDLE -> ACTIVE. Returns false (already in transaction)
// if called while ACTIVE.
func (c *Coordinator) Begin() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active {
		return false
	}
	c.active = true
	return true
}

// End transitions ACTIVE -> IDLE unconditionally, used by commit, rollback,
// and forced-rollback-on-teardown alike. Returns false if it was already
// IDLE (no active transaction to end).
func (c *Coordinator) End() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.active {
		return false
	}
	c.active = false
	return true
}

// Active reports whether the session is currently ACTIVE.
func (c *Coordinator) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}
