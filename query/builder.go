package query

import "strings"

// Builder turns column/value data into the (sql, params) pairs the Query
// Executer's bind contract needs, the way MysqlPersistence's
// GenerateColumns/GenerateParameters/GenerateSetParameters/QuoteIdentifier
// helpers did for the teacher's fluent INSERT/UPDATE statements — kept as
// the contract point those helpers actually served, not as a fluent
// SELECT/INSERT/UPDATE/DELETE query-builder surface (that stays out of
// scope).
type Builder struct {
	quote string
}

// NewBuilder creates a Builder that quotes identifiers with quoteChar
// ("`" for MySQL, `"` for Postgres/SQLite).
func NewBuilder(quoteChar string) *Builder {
	return &Builder{quote: quoteChar}
}

// QuoteIdentifier wraps value in the dialect's quote character unless
// already quoted.
func (b *Builder) QuoteIdentifier(value string) string {
	if value == "" {
		return value
	}
	if strings.HasPrefix(value, b.quote) {
		return value
	}
	return b.quote + value + b.quote
}

// GenerateColumns renders a comma-separated, quoted column list:
// "col1,col2,col3".
func (b *Builder) GenerateColumns(columns []string) string {
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = b.QuoteIdentifier(c)
	}
	return strings.Join(quoted, ",")
}

// GenerateParameters renders one named placeholder per name:
// ":col1,:col2,:col3" — the exec package's bind contract expects named
// parameters, not positional "?"/"$N" (those are a driver-level detail
// resolved later by rewriteNamedParams).
func (b *Builder) GenerateParameters(names []string) string {
	placeholders := make([]string, len(names))
	for i, n := range names {
		placeholders[i] = ":" + n
	}
	return strings.Join(placeholders, ",")
}

// GenerateSetParameters renders "col1=:col1,col2=:col2" for an UPDATE's
// SET clause.
func (b *Builder) GenerateSetParameters(columns []string) string {
	parts := make([]string, len(columns))
	for i, c := range columns {
		parts[i] = b.QuoteIdentifier(c) + "=:" + c
	}
	return strings.Join(parts, ",")
}

// InsertStatement composes a full INSERT INTO table (...) VALUES (...)
// statement plus the matching params map, from a column->value map.
func (b *Builder) InsertStatement(table string, values map[string]any) (string, map[string]any) {
	columns := make([]string, 0, len(values))
	for c := range values {
		columns = append(columns, c)
	}
	sql := "INSERT INTO " + b.QuoteIdentifier(table) +
		" (" + b.GenerateColumns(columns) + ") VALUES (" + b.GenerateParameters(columns) + ")"
	return sql, values
}

// UpdateStatement composes an UPDATE table SET ... WHERE <whereClause>
// statement. whereClause is caller-supplied SQL (e.g. "id = :id") with its
// own entries merged into values by the caller before binding.
func (b *Builder) UpdateStatement(table string, values map[string]any, whereClause string) string {
	columns := make([]string, 0, len(values))
	for c := range values {
		columns = append(columns, c)
	}
	sql := "UPDATE " + b.QuoteIdentifier(table) + " SET " + b.GenerateSetParameters(columns)
	if whereClause != "" {
		sql += " WHERE " + whereClause
	}
	return sql
}
