package connect

// Blank-importing each dialect's database/sql driver registers it under the
// name DriverName returns, the way the teacher blank-imports
// github.com/go-sql-driver/mysql for side effects only. mysql and sqlite3
// are also imported directly (for their error types) by dberrors, but pgx's
// database/sql adapter lives in its own stdlib subpackage and nothing else
// in this module imports it, so it is registered here explicitly.
import (
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
)
