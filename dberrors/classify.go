package dberrors

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
)

// driverFacts is the (driverErrorCode, sqlState, message) triple the rest of
// spec §4.4's detection table is matched against. It is dialect-neutral:
// extract() fills it in from whichever of the three drivers produced err.
type driverFacts struct {
	code     string
	sqlState string
	message  string
}

func extract(err error) driverFacts {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		facts := driverFacts{
			code:    strconv.FormatUint(uint64(myErr.Number), 10),
			message: myErr.Message,
		}
		if myErr.SQLState != [5]byte{} {
			facts.sqlState = string(myErr.SQLState[:])
		}
		return facts
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return driverFacts{
			sqlState: pgErr.Code,
			message:  pgErr.Message,
		}
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return driverFacts{
			code:    strconv.Itoa(int(liteErr.ExtendedCode)),
			message: liteErr.Error(),
		}
	}

	return driverFacts{message: err.Error()}
}

var transientSQLStates = map[string]bool{
	"08000": true, "08001": true, "08003": true, "08004": true,
	"08006": true, "08007": true, "40001": true, "40P01": true,
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), needle)
}

func classify(f driverFacts) Kind {
	switch {
	case (f.sqlState == "23000" && f.code == "1062") ||
		f.sqlState == "23505" ||
		f.code == "1555" ||
		f.code == "2067" ||
		containsFold(f.message, "duplicate") ||
		containsFold(f.message, "already exists"):
		return KindDuplicateKey

	case (f.sqlState == "23000" && f.code == "1451") ||
		f.sqlState == "23503" ||
		f.code == "787" ||
		containsFold(f.message, "foreign key constraint") ||
		containsFold(f.message, "cannot delete"):
		return KindForeignKey

	case transientSQLStates[f.sqlState] ||
		containsFold(f.message, "connection") ||
		containsFold(f.message, "timeout") ||
		containsFold(f.message, "deadlock"):
		return KindTransient

	default:
		return KindOther
	}
}
