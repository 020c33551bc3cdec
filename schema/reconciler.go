package schema

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/borealisdb/sqlgate/dberrors"
)

// AppliedConstraint is the per-declared-constraint record spec §4.7
// names for getAppliedConstraints(): whether that declared constraint
// ended up applied (new DDL emitted, or already present and skipped, or
// a table-creation-time no-op) versus not applied: the entry that made
// Apply abort, and every entry after it.
type AppliedConstraint struct {
	Kind       Kind
	Applied    bool
	Descriptor Descriptor
}

// Reconciler is the Schema Reconciliation Engine (C7): it diffs a
// declared set of constraints against the live catalog for one table and
// applies whatever is missing, per spec §4.7.
type Reconciler struct {
	dberrors.State

	conn       querier
	dialect    Dialect
	schemaName string

	appliedMu sync.Mutex
	applied   map[string][]AppliedConstraint
	skipped   map[string]int
	failed    map[string]int
	tableErr  map[string]string
}

// New builds a Reconciler against conn using the dialect resolved for
// driverName (see DialectFor), reconciling tables in schemaName (the
// database/catalog/schema the driver's INFORMATION_SCHEMA view scopes to).
func New(conn querier, driverName, schemaName string) *Reconciler {
	return &Reconciler{
		conn:       conn,
		dialect:    DialectFor(driverName),
		schemaName: schemaName,
		applied:    map[string][]AppliedConstraint{},
		skipped:    map[string]int{},
		failed:     map[string]int{},
		tableErr:   map[string]string{},
	}
}

// Apply reconciles tableName's catalog state against declared, which may
// be a mix of Descriptorer values and other garbage: non-Descriptorer
// entries are silently skipped (spec §4.7 step 1). Unknown constraint
// kinds abort the whole call; everything that could be applied before the
// abort is still committed to the table's running summary. When
// removeObsolete is true, the catalog's own constraints/indexes that have
// no match in declared are dropped afterward.
func (r *Reconciler) Apply(ctx context.Context, tableName string, declared []any, removeObsolete bool) bool {
	descriptors := make([]Descriptor, 0, len(declared))
	for _, raw := range declared {
		d, ok := raw.(Descriptorer)
		if !ok {
			continue
		}
		descriptors = append(descriptors, d.ToDescriptor())
	}

	// Every declared constraint gets a record up front, Applied=false until
	// Apply actually reaches and processes it; entries past an abort point
	// stay false (spec §4.7's per-declared-constraint record).
	records := make([]AppliedConstraint, len(descriptors))
	for i, d := range descriptors {
		records[i] = AppliedConstraint{Kind: d.Kind, Descriptor: d}
	}

	fail := func(msg string) bool {
		r.appliedMu.Lock()
		r.applied[tableName] = records
		r.failed[tableName]++
		r.tableErr[tableName] = msg
		r.appliedMu.Unlock()
		r.Set(msg, nil)
		return false
	}

	existingConstraints, err := r.dialect.ExistingConstraints(ctx, r.conn, r.schemaName, tableName)
	if err != nil {
		return fail(fmt.Sprintf("Failed to read constraints for %s", tableName))
	}
	existingIndexes, err := r.dialect.ExistingIndexes(ctx, r.conn, r.schemaName, tableName)
	if err != nil {
		return fail(fmt.Sprintf("Failed to read indexes for %s", tableName))
	}

	haveConstraint := map[string]bool{}
	for _, c := range existingConstraints {
		haveConstraint[strings.ToLower(c.Name)] = true
	}
	haveIndex := map[string]bool{}
	for _, idx := range existingIndexes {
		haveIndex[strings.ToLower(idx.Name)] = true
	}

	seenNames := map[string]bool{}

	for i := range descriptors {
		d := descriptors[i]
		name := d.Name
		if name == "" {
			name = synthesizeName(tableName, d)
		}
		d.Name = name
		descriptors[i] = d
		records[i].Descriptor = d
		seenNames[strings.ToLower(name)] = true

		if d.Kind != KindPrimary && d.Kind != KindAutoIncrement {
			already := haveConstraint[strings.ToLower(name)] || haveIndex[strings.ToLower(name)]
			if already {
				r.skipped[tableName]++
				records[i].Applied = true
				continue
			}
		}

		stmt, err := r.dialect.DDL(tableName, d, name)
		if err != nil {
			return fail(err.Error())
		}
		if stmt == "" {
			// Table-creation-time-only constraint (primary key, auto
			// increment): nothing to reconcile after the fact.
			records[i].Applied = true
			continue
		}

		if _, err := r.conn.ExecContext(ctx, stmt); err != nil {
			return fail(fmt.Sprintf("Failed to apply %s constraint: %s", d.Kind, err.Error()))
		}
		records[i].Applied = true
	}

	r.appliedMu.Lock()
	r.applied[tableName] = records
	delete(r.tableErr, tableName)
	r.appliedMu.Unlock()

	if removeObsolete {
		if !r.dropObsolete(ctx, tableName, existingConstraints, existingIndexes, seenNames) {
			return false
		}
	}

	r.Clear()
	return true
}

func (r *Reconciler) dropObsolete(ctx context.Context, tableName string, constraints []ExistingConstraint, indexes []ExistingIndex, keep map[string]bool) bool {
	fail := func(msg string) bool {
		r.appliedMu.Lock()
		r.failed[tableName]++
		r.tableErr[tableName] = msg
		r.appliedMu.Unlock()
		r.Set(msg, nil)
		return false
	}
	for _, c := range constraints {
		if c.Kind == KindPrimary {
			continue
		}
		if keep[strings.ToLower(c.Name)] {
			continue
		}
		stmt := r.dialect.DropConstraintDDL(tableName, c.Name, c.Kind)
		if _, err := r.conn.ExecContext(ctx, stmt); err != nil {
			return fail(fmt.Sprintf("Failed to drop obsolete constraint %s on %s", c.Name, tableName))
		}
	}
	for _, idx := range indexes {
		if keep[strings.ToLower(idx.Name)] {
			continue
		}
		stmt := r.dialect.DropConstraintDDL(tableName, idx.Name, KindIndex)
		if _, err := r.conn.ExecContext(ctx, stmt); err != nil {
			return fail(fmt.Sprintf("Failed to drop obsolete index %s on %s", idx.Name, tableName))
		}
	}
	return true
}

// synthesizeName mirrors the convention most SQL engines' own generated
// names follow: <table>_<cols>_<kind>.
func synthesizeName(table string, d Descriptor) string {
	suffix := string(d.Kind)
	cols := strings.Join(d.Columns, "_")
	if cols == "" {
		cols = "x"
	}
	return fmt.Sprintf("%s_%s_%s", table, cols, suffix)
}

// GetAppliedConstraints returns the per-declared-constraint
// {kind, applied, descriptor} records (spec §4.7) from table's most
// recent Apply call.
func (r *Reconciler) GetAppliedConstraints(table string) []AppliedConstraint {
	r.appliedMu.Lock()
	defer r.appliedMu.Unlock()
	out := make([]AppliedConstraint, len(r.applied[table]))
	copy(out, r.applied[table])
	return out
}

// Summary is the {tableName, totalConstraints, constraintTypes, hasErrors,
// error} record spec §4.7 names for getSummary().
type Summary struct {
	TableName        string
	TotalConstraints int
	ConstraintTypes  map[Kind]int
	HasErrors        bool
	Error            *string
}

// GetSummary returns table's reconciliation summary from its most recent
// Apply call.
func (r *Reconciler) GetSummary(table string) Summary {
	r.appliedMu.Lock()
	defer r.appliedMu.Unlock()

	records := r.applied[table]
	types := map[Kind]int{}
	for _, rec := range records {
		types[rec.Kind]++
	}

	summary := Summary{
		TableName:        table,
		TotalConstraints: len(records),
		ConstraintTypes:  types,
	}
	if msg, ok := r.tableErr[table]; ok {
		summary.HasErrors = true
		summary.Error = &msg
	}
	return summary
}

// AllSummaries returns one Summary per table Apply has touched, sorted by
// table name for deterministic output — a supplemented multi-table view
// layered on top of spec §4.7's single-table getSummary() contract, since
// this Reconciler (unlike the spec's presumed one-table-scoped instance)
// reconciles many tables across its lifetime.
func (r *Reconciler) AllSummaries() []Summary {
	r.appliedMu.Lock()
	tables := make([]string, 0, len(r.applied))
	for t := range r.applied {
		tables = append(tables, t)
	}
	r.appliedMu.Unlock()
	sort.Strings(tables)

	out := make([]Summary, 0, len(tables))
	for _, t := range tables {
		out = append(out, r.GetSummary(t))
	}
	return out
}
