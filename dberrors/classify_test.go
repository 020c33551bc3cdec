package dberrors

import (
	"errors"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
)

func TestClassifyDuplicateKey(t *testing.T) {
	assert.Equal(t, KindDuplicateKey, classify(driverFacts{sqlState: "23000", code: "1062"}))
	assert.Equal(t, KindDuplicateKey, classify(driverFacts{sqlState: "23505"}))
	assert.Equal(t, KindDuplicateKey, classify(driverFacts{code: "1555"}))
	assert.Equal(t, KindDuplicateKey, classify(driverFacts{message: "Duplicate entry '1' for key 'PRIMARY'"}))
}

func TestClassifyForeignKey(t *testing.T) {
	assert.Equal(t, KindForeignKey, classify(driverFacts{sqlState: "23000", code: "1451"}))
	assert.Equal(t, KindForeignKey, classify(driverFacts{sqlState: "23503"}))
	assert.Equal(t, KindForeignKey, classify(driverFacts{code: "787"}))
	assert.Equal(t, KindForeignKey, classify(driverFacts{message: "Cannot delete or update a parent row: a foreign key constraint fails"}))
}

func TestClassifyTransient(t *testing.T) {
	assert.Equal(t, KindTransient, classify(driverFacts{sqlState: "08006"}))
	assert.Equal(t, KindTransient, classify(driverFacts{message: "dial tcp: connection refused"}))
	assert.Equal(t, KindTransient, classify(driverFacts{message: "context deadline exceeded: timeout"}))
}

func TestClassifyOther(t *testing.T) {
	assert.Equal(t, KindOther, classify(driverFacts{message: "syntax error near SELECT"}))
}

func TestExtractMySQLError(t *testing.T) {
	err := &mysql.MySQLError{Number: 1062, Message: "Duplicate entry '1' for key 'PRIMARY'"}
	facts := extract(err)
	assert.Equal(t, "1062", facts.code)
	assert.Equal(t, "Duplicate entry '1' for key 'PRIMARY'", facts.message)
}

func TestExtractPostgresError(t *testing.T) {
	err := &pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"}
	facts := extract(err)
	assert.Equal(t, "23505", facts.sqlState)
}

func TestExtractSqliteError(t *testing.T) {
	err := sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrNoExtended(787)}
	facts := extract(err)
	assert.Equal(t, "787", facts.code)
}

func TestExtractFallsBackToPlainErrorMessage(t *testing.T) {
	facts := extract(errors.New("connection reset by peer"))
	assert.Equal(t, "connection reset by peer", facts.message)
}
