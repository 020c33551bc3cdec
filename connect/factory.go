package connect

import (
	"context"
	"sync"
)

// singleton is the process-singleton manager slot. Per SPEC_FULL.md's
// design notes, the global slot is mutated only by Get and Reset — the
// factory from the teacher's build.DefaultMySqlFactory, generalized to pick
// among the three Manager variants instead of registering a single
// MySQL-only connection type.
var singleton struct {
	mu      sync.Mutex
	manager Manager
}

// Get returns the process-singleton Manager, constructing it on first call
// from the detected Environment and the descriptor loaded from env. Picking
// the variant: an explicit persistent-connections flag always wins;
// otherwise pooled-async environments get Pooled, embedded gets Simple
// (one-shot per-request handles suit SQLite), and synchronous gets Simple.
func Get(getenv Getenv, isCLI bool) Manager {
	singleton.mu.Lock()
	defer singleton.mu.Unlock()

	if singleton.manager != nil {
		return singleton.manager
	}

	descriptor := LoadDescriptorFromEnv(getenv, isCLI)
	env := NewDetector(getenv).Detect()

	singleton.manager = newManager(env, descriptor)
	return singleton.manager
}

func newManager(env Environment, descriptor *Descriptor) Manager {
	switch {
	case descriptor.Persistent:
		return NewPersistent(descriptor)
	case env == EnvPooledAsync:
		return NewPooled(descriptor)
	default:
		return NewSimple(descriptor)
	}
}

// Reset disconnects and clears the process-singleton slot (test hook, spec
// §4.2 resetSingleton).
func Reset(ctx context.Context) {
	singleton.mu.Lock()
	defer singleton.mu.Unlock()
	if singleton.manager != nil {
		singleton.manager.Disconnect(ctx)
		singleton.manager = nil
	}
}
