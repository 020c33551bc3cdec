// Package build wires the Connection Lifecycle Layer, Query Execution
// Engine, Transaction Coordinator and Schema Reconciliation Engine
// together through the pack's own IoC descriptors, the way the teacher's
// DefaultMysqlFactory registers MysqlConnection — generalized across the
// three connection-manager variants and the three dialects instead of
// one hardcoded driver.
package build

import (
	"os"

	cref "github.com/pip-services3-gox/pip-services3-commons-gox/refer"
	cbuild "github.com/pip-services3-gox/pip-services3-components-gox/build"

	"github.com/borealisdb/sqlgate/connect"
)

// DefaultFactory registers constructors for every connect.Manager variant
// behind the descriptors a pip-services-style IoC container resolves by.
type DefaultFactory struct {
	*cbuild.Factory
}

// NewDefaultFactory builds a factory with "simple", "persistent" and
// "pooled" connection descriptors registered for every dialect group
// ("*" matches mysql/postgres/sqlite since connect.Detector tells
// variants apart by driver name, not by descriptor).
func NewDefaultFactory() *DefaultFactory {
	f := &DefaultFactory{Factory: cbuild.NewFactory()}

	simpleDescriptor := cref.NewDescriptor("sqlgate", "connection", "simple", "*", "1.0")
	f.RegisterType(simpleDescriptor, func() *connect.Simple {
		return connect.NewSimple(connect.LoadDescriptorFromEnv(os.Getenv, false))
	})

	persistentDescriptor := cref.NewDescriptor("sqlgate", "connection", "persistent", "*", "1.0")
	f.RegisterType(persistentDescriptor, func() *connect.Persistent {
		return connect.NewPersistent(connect.LoadDescriptorFromEnv(os.Getenv, false))
	})

	pooledDescriptor := cref.NewDescriptor("sqlgate", "connection", "pooled", "*", "1.0")
	f.RegisterType(pooledDescriptor, func() *connect.Pooled {
		return connect.NewPooled(connect.LoadDescriptorFromEnv(os.Getenv, false))
	})

	return f
}

// New resolves a Manager for env directly, without going
// through the IoC container — the convenience path spec §4.2 describes
// for straight-line use ("Get(getenv, isCLI) Manager").
func New(getenv func(string) string, isCLI bool) connect.Manager {
	return connect.Get(getenv, isCLI)
}
