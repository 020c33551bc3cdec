package schema

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// querier is the subset of connect.Connection the catalog probes and DDL
// emission need — kept narrow so the reconciler can be driven by anything
// satisfying it (including a test double), while still matching
// connect.Connection's own ExecContext/QueryContext signatures exactly.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// ExistingConstraint and ExistingIndex are the catalog snapshot records of
// spec §3.
type ExistingConstraint struct {
	Name    string
	Kind    Kind
	Columns []string
}

type ExistingIndex struct {
	Name    string
	Columns []string
	Unique  bool
}

// Dialect emits DDL and probes the catalog the way spec §6 requires, one
// implementation per supported engine.
type Dialect interface {
	Name() string
	QuoteIdent(name string) string
	DDL(table string, d Descriptor, name string) (string, error)
	DropConstraintDDL(table, name string, kind Kind) string
	ExistingConstraints(ctx context.Context, q querier, schemaName, table string) ([]ExistingConstraint, error)
	ExistingIndexes(ctx context.Context, q querier, schemaName, table string) ([]ExistingIndex, error)
}

// DialectFor resolves a Dialect from a database/sql driver name
// (connect.Descriptor.DriverName()'s output), so the reconciler never has
// to special-case a raw driver string itself.
func DialectFor(driverName string) Dialect {
	switch driverName {
	case "pgx":
		return postgresDialect{}
	case "sqlite3":
		return sqliteDialect{}
	default:
		return mysqlDialect{}
	}
}

func joinCols(cols []string, quote func(string) string) string {
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = quote(c)
	}
	return strings.Join(quoted, ",")
}

func renderAction(a Action) string {
	return strings.ReplaceAll(string(a), "_", " ")
}

// --- MySQL -------------------------------------------------------------

type mysqlDialect struct{}

func (mysqlDialect) Name() string { return "mysql" }

func (mysqlDialect) QuoteIdent(name string) string { return "`" + name + "`" }

func (d mysqlDialect) DDL(table string, c Descriptor, name string) (string, error) {
	return genericAlterDDL(d, table, c, name)
}

func (d mysqlDialect) DropConstraintDDL(table, name string, kind Kind) string {
	return genericDropDDL(d, table, name, kind)
}

func (d mysqlDialect) ExistingConstraints(ctx context.Context, q querier, schemaName, table string) ([]ExistingConstraint, error) {
	query := `SELECT CONSTRAINT_NAME, CONSTRAINT_TYPE FROM INFORMATION_SCHEMA.TABLE_CONSTRAINTS
		WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ?`
	return queryConstraints(ctx, q, query, schemaName, table)
}

func (d mysqlDialect) ExistingIndexes(ctx context.Context, q querier, schemaName, table string) ([]ExistingIndex, error) {
	query := `SELECT INDEX_NAME, COLUMN_NAME, NON_UNIQUE FROM INFORMATION_SCHEMA.STATISTICS
		WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ? ORDER BY INDEX_NAME, SEQ_IN_INDEX`
	return queryIndexes(ctx, q, query, schemaName, table)
}

// --- PostgreSQL ----------------------------------------------------------

type postgresDialect struct{}

func (postgresDialect) Name() string { return "postgres" }

func (postgresDialect) QuoteIdent(name string) string { return `"` + name + `"` }

func (d postgresDialect) DDL(table string, c Descriptor, name string) (string, error) {
	return genericAlterDDL(d, table, c, name)
}

func (d postgresDialect) DropConstraintDDL(table, name string, kind Kind) string {
	return genericDropDDL(d, table, name, kind)
}

func (d postgresDialect) ExistingConstraints(ctx context.Context, q querier, schemaName, table string) ([]ExistingConstraint, error) {
	query := `SELECT constraint_name, constraint_type FROM information_schema.table_constraints
		WHERE table_schema = $1 AND table_name = $2`
	return queryConstraints(ctx, q, query, schemaName, table)
}

func (d postgresDialect) ExistingIndexes(ctx context.Context, q querier, schemaName, table string) ([]ExistingIndex, error) {
	query := `SELECT indexname, indexdef, false FROM pg_indexes WHERE schemaname = $1 AND tablename = $2`
	rows, err := q.QueryContext(ctx, query, schemaName, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]ExistingIndex, 0)
	for rows.Next() {
		var name, def string
		var isUnique bool
		if err := rows.Scan(&name, &def, &isUnique); err != nil {
			return out, err
		}
		out = append(out, ExistingIndex{Name: name, Unique: strings.Contains(strings.ToUpper(def), "UNIQUE")})
	}
	return out, rows.Err()
}

// --- SQLite --------------------------------------------------------------

// sqliteDialect has no ALTER TABLE ADD CONSTRAINT support: unique, index
// and fulltext are expressed as plain CREATE [UNIQUE] INDEX statements,
// primary/autoIncrement are no-ops, and foreignKey/check return an error
// (spec §6 is MySQL/Postgres-flavored DDL; SQLite's own schema model only
// has table-creation-time constraints plus indexes).
type sqliteDialect struct{}

func (sqliteDialect) Name() string { return "sqlite" }

func (sqliteDialect) QuoteIdent(name string) string { return `"` + name + `"` }

func (d sqliteDialect) DDL(table string, c Descriptor, name string) (string, error) {
	q := d.QuoteIdent
	switch c.Kind {
	case KindPrimary, KindAutoIncrement:
		return "", nil
	case KindUnique:
		return fmt.Sprintf("CREATE UNIQUE INDEX %s ON %s (%s)", q(name), q(table), joinCols(c.Columns, q)), nil
	case KindIndex:
		unique := ""
		if c.Unique {
			unique = "UNIQUE "
		}
		return fmt.Sprintf("CREATE %sINDEX %s ON %s (%s)", unique, q(name), q(table), joinCols(c.Columns, q)), nil
	case KindFulltext:
		return fmt.Sprintf("CREATE INDEX %s ON %s (%s)", q(name), q(table), joinCols(c.Columns, q)), nil
	case KindForeignKey, KindCheck:
		return "", fmt.Errorf("sqlite does not support adding %s constraints after table creation", c.Kind)
	default:
		return "", fmt.Errorf("Unknown constraint type: %s", c.Kind)
	}
}

func (sqliteDialect) DropConstraintDDL(table, name string, kind Kind) string {
	return fmt.Sprintf(`DROP INDEX "%s"`, name)
}

func (d sqliteDialect) ExistingConstraints(ctx context.Context, q querier, schemaName, table string) ([]ExistingConstraint, error) {
	return nil, nil
}

func (d sqliteDialect) ExistingIndexes(ctx context.Context, q querier, schemaName, table string) ([]ExistingIndex, error) {
	query := `SELECT name, "unique" FROM pragma_index_list(?)`
	rows, err := q.QueryContext(ctx, query, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]ExistingIndex, 0)
	for rows.Next() {
		var name string
		var isUnique int
		if err := rows.Scan(&name, &isUnique); err != nil {
			return out, err
		}
		out = append(out, ExistingIndex{Name: name, Unique: isUnique == 1})
	}
	return out, rows.Err()
}

// --- shared MySQL/Postgres ALTER-TABLE emission --------------------------

func genericAlterDDL(d Dialect, table string, c Descriptor, name string) (string, error) {
	q := d.QuoteIdent
	switch c.Kind {
	case KindPrimary, KindAutoIncrement:
		return "", nil
	case KindUnique:
		return fmt.Sprintf("ALTER TABLE %s ADD CONSTRAINT %s UNIQUE (%s)", q(table), q(name), joinCols(c.Columns, q)), nil
	case KindIndex:
		unique := ""
		if c.Unique {
			unique = "UNIQUE "
		}
		return fmt.Sprintf("CREATE %sINDEX %s ON %s (%s)", unique, q(name), q(table), joinCols(c.Columns, q)), nil
	case KindForeignKey:
		stmt := fmt.Sprintf("ALTER TABLE %s ADD CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s(%s)",
			q(table), q(name), joinCols(c.Columns, q), q(c.References.Table), q(c.References.Column))
		if c.OnDelete != "" && c.OnDelete != ActionRestrict {
			stmt += " ON DELETE " + renderAction(c.OnDelete)
		}
		if c.OnUpdate != "" && c.OnUpdate != ActionRestrict {
			stmt += " ON UPDATE " + renderAction(c.OnUpdate)
		}
		return stmt, nil
	case KindCheck:
		return fmt.Sprintf("ALTER TABLE %s ADD CONSTRAINT %s CHECK (%s)", q(table), q(name), c.Expression), nil
	case KindFulltext:
		return fmt.Sprintf("CREATE FULLTEXT INDEX %s ON %s (%s)", q(name), q(table), joinCols(c.Columns, q)), nil
	default:
		return "", fmt.Errorf("Unknown constraint type: %s", c.Kind)
	}
}

func genericDropDDL(d Dialect, table, name string, kind Kind) string {
	q := d.QuoteIdent
	if kind == KindIndex || kind == KindFulltext {
		return fmt.Sprintf("ALTER TABLE %s DROP INDEX %s", q(table), q(name))
	}
	return fmt.Sprintf("ALTER TABLE %s DROP CONSTRAINT %s", q(table), q(name))
}

func queryConstraints(ctx context.Context, q querier, query, schemaName, table string) ([]ExistingConstraint, error) {
	rows, err := q.QueryContext(ctx, query, schemaName, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]ExistingConstraint, 0)
	for rows.Next() {
		var name, ctype string
		if err := rows.Scan(&name, &ctype); err != nil {
			return out, err
		}
		out = append(out, ExistingConstraint{Name: name, Kind: kindFromConstraintType(ctype)})
	}
	return out, rows.Err()
}

func kindFromConstraintType(ctype string) Kind {
	switch strings.ToUpper(ctype) {
	case "UNIQUE":
		return KindUnique
	case "FOREIGN KEY":
		return KindForeignKey
	case "PRIMARY KEY":
		return KindPrimary
	case "CHECK":
		return KindCheck
	default:
		return KindIndex
	}
}

func queryIndexes(ctx context.Context, q querier, query, schemaName, table string) ([]ExistingIndex, error) {
	rows, err := q.QueryContext(ctx, query, schemaName, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byName := map[string]*ExistingIndex{}
	order := make([]string, 0)
	for rows.Next() {
		var name, col string
		var nonUnique int
		if err := rows.Scan(&name, &col, &nonUnique); err != nil {
			return nil, err
		}
		idx, ok := byName[name]
		if !ok {
			idx = &ExistingIndex{Name: name, Unique: nonUnique == 0}
			byName[name] = idx
			order = append(order, name)
		}
		idx.Columns = append(idx.Columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]ExistingIndex, 0, len(order))
	for _, name := range order {
		out = append(out, *byName[name])
	}
	return out, nil
}
