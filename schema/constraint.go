// Package schema implements the Constraint Model (C8) and the Schema
// Reconciliation Engine (C7) of spec.md §4.7/§4.8: a declarative
// constraint model reconciled against a live database catalog.
package schema

import "strings"

// Kind is the closed set of constraint kinds spec §3 allows.
type Kind string

const (
	KindUnique        Kind = "unique"
	KindIndex         Kind = "index"
	KindPrimary       Kind = "primary"
	KindAutoIncrement Kind = "autoIncrement"
	KindForeignKey    Kind = "foreignKey"
	KindCheck         Kind = "check"
	KindFulltext      Kind = "fulltext"
)

// Action is a referential action, normalized to upper-snake-case.
type Action string

const (
	ActionCascade  Action = "CASCADE"
	ActionRestrict Action = "RESTRICT"
	ActionSetNull  Action = "SET_NULL"
	ActionNoAction Action = "NO_ACTION"
)

// NormalizeAction accepts free-form input ("set null", "Cascade") and
// normalizes it to the closed Action set, defaulting to RESTRICT.
func NormalizeAction(raw string) Action {
	switch strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(raw), " ", "_")) {
	case "CASCADE":
		return ActionCascade
	case "SET_NULL":
		return ActionSetNull
	case "NO_ACTION":
		return ActionNoAction
	default:
		return ActionRestrict
	}
}

// Reference names the foreign table+column a foreignKey constraint points at.
type Reference struct {
	Table  string
	Column string
}

// Descriptor is the plain, value-typed constraint descriptor of spec §3.
type Descriptor struct {
	Kind       Kind
	Columns    []string
	Expression string
	Name       string
	OnDelete   Action
	OnUpdate   Action
	Unique     bool
	References *Reference
}

// Descriptorer is satisfied by every constraint builder. C7's reconciler
// filters its declared-constraint input to values satisfying this
// interface and silently skips everything else (spec §4.7 step 1).
type Descriptorer interface {
	ToDescriptor() Descriptor
}

// builder is the shared fluent base every constraint kind embeds.
type builder struct {
	d Descriptor
}

// Name sets an explicit constraint name, overriding the synthesized default.
func (b *builder) Name(name string) *builder {
	b.d.Name = name
	return b
}

// UniqueConstraint is returned by Unique(...).
type UniqueConstraint struct{ builder }

// Unique declares a UNIQUE constraint over cols.
func Unique(cols ...string) *UniqueConstraint {
	c := &UniqueConstraint{}
	c.d = Descriptor{Kind: KindUnique, Columns: cols, OnDelete: ActionRestrict, OnUpdate: ActionRestrict}
	return c
}

// Name overrides the synthesized constraint name.
func (c *UniqueConstraint) Name(name string) *UniqueConstraint { c.builder.Name(name); return c }

// ToDescriptor satisfies Descriptorer.
func (c *UniqueConstraint) ToDescriptor() Descriptor { return c.d }

// IndexConstraint is returned by Index(...).
type IndexConstraint struct{ builder }

// Index declares a (non-unique by default) index over cols.
func Index(cols ...string) *IndexConstraint {
	c := &IndexConstraint{}
	c.d = Descriptor{Kind: KindIndex, Columns: cols, OnDelete: ActionRestrict, OnUpdate: ActionRestrict}
	return c
}

func (c *IndexConstraint) Name(name string) *IndexConstraint { c.builder.Name(name); return c }

// Unique marks the index as UNIQUE.
func (c *IndexConstraint) Unique() *IndexConstraint {
	c.d.Unique = true
	return c
}

func (c *IndexConstraint) ToDescriptor() Descriptor { return c.d }

// PrimaryConstraint is returned by Primary(...). A table-creation-time
// no-op for the reconciler (spec §4.7 step 2).
type PrimaryConstraint struct{ builder }

func Primary(cols ...string) *PrimaryConstraint {
	c := &PrimaryConstraint{}
	c.d = Descriptor{Kind: KindPrimary, Columns: cols}
	return c
}

func (c *PrimaryConstraint) Name(name string) *PrimaryConstraint { c.builder.Name(name); return c }
func (c *PrimaryConstraint) ToDescriptor() Descriptor             { return c.d }

// AutoIncrementConstraint is returned by AutoIncrement(col). Also a
// table-creation-time no-op for the reconciler.
type AutoIncrementConstraint struct{ builder }

func AutoIncrement(col string) *AutoIncrementConstraint {
	c := &AutoIncrementConstraint{}
	c.d = Descriptor{Kind: KindAutoIncrement, Columns: []string{col}}
	return c
}

func (c *AutoIncrementConstraint) Name(name string) *AutoIncrementConstraint {
	c.builder.Name(name)
	return c
}
func (c *AutoIncrementConstraint) ToDescriptor() Descriptor { return c.d }

// ForeignKeyConstraint is returned by ForeignKey(col, "table.col").
type ForeignKeyConstraint struct{ builder }

// ForeignKey declares col as a foreign key referencing "table.column".
func ForeignKey(col string, references string) *ForeignKeyConstraint {
	c := &ForeignKeyConstraint{}
	table, refCol := splitReference(references)
	c.d = Descriptor{
		Kind:       KindForeignKey,
		Columns:    []string{col},
		References: &Reference{Table: table, Column: refCol},
		OnDelete:   ActionRestrict,
		OnUpdate:   ActionRestrict,
	}
	return c
}

func splitReference(ref string) (table, column string) {
	parts := strings.SplitN(ref, ".", 2)
	if len(parts) == 2 {
		return parts[0], parts[1]
	}
	return parts[0], ""
}

func (c *ForeignKeyConstraint) Name(name string) *ForeignKeyConstraint {
	c.builder.Name(name)
	return c
}

// OnDeleteCascade/.../OnUpdateXxx accept free-form action strings via
// On(Delete|Update) and the dedicated per-action helpers below, all
// normalized through NormalizeAction.
func (c *ForeignKeyConstraint) OnDelete(action string) *ForeignKeyConstraint {
	c.d.OnDelete = NormalizeAction(action)
	return c
}

func (c *ForeignKeyConstraint) OnUpdate(action string) *ForeignKeyConstraint {
	c.d.OnUpdate = NormalizeAction(action)
	return c
}

func (c *ForeignKeyConstraint) OnDeleteCascade() *ForeignKeyConstraint {
	c.d.OnDelete = ActionCascade
	return c
}

func (c *ForeignKeyConstraint) OnUpdateCascade() *ForeignKeyConstraint {
	c.d.OnUpdate = ActionCascade
	return c
}

func (c *ForeignKeyConstraint) OnDeleteSetNull() *ForeignKeyConstraint {
	c.d.OnDelete = ActionSetNull
	return c
}

func (c *ForeignKeyConstraint) OnUpdateSetNull() *ForeignKeyConstraint {
	c.d.OnUpdate = ActionSetNull
	return c
}

func (c *ForeignKeyConstraint) ToDescriptor() Descriptor { return c.d }

// CheckConstraint is returned by Check(expr).
type CheckConstraint struct{ builder }

func Check(expr string) *CheckConstraint {
	c := &CheckConstraint{}
	c.d = Descriptor{Kind: KindCheck, Expression: expr, OnDelete: ActionRestrict, OnUpdate: ActionRestrict}
	return c
}

func (c *CheckConstraint) Name(name string) *CheckConstraint { c.builder.Name(name); return c }
func (c *CheckConstraint) ToDescriptor() Descriptor           { return c.d }

// FulltextConstraint is returned by Fulltext(cols...).
type FulltextConstraint struct{ builder }

func Fulltext(cols ...string) *FulltextConstraint {
	c := &FulltextConstraint{}
	c.d = Descriptor{Kind: KindFulltext, Columns: cols, OnDelete: ActionRestrict, OnUpdate: ActionRestrict}
	return c
}

func (c *FulltextConstraint) Name(name string) *FulltextConstraint { c.builder.Name(name); return c }
func (c *FulltextConstraint) ToDescriptor() Descriptor               { return c.d }
