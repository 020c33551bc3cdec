package connect

import (
	"context"
	"database/sql"
	"math"
	"time"
)

// defaultDialRetries bounds how many times openAndPing retries a failed
// dial before giving up, grounded in MysqlConnection.Open's retry loop
// (the teacher's retries field), generalized across all three dialects.
const defaultDialRetries = 3

// openAndPing opens driverName/dsn and pings it, retrying on failure with
// MysqlConnection.waitForRetry's bounded exponential backoff
// (connectTimeout * attempt^2) until defaultDialRetries is exhausted or
// ctx is done.
func openAndPing(ctx context.Context, driverName, dsn string, connectTimeout time.Duration) (*sql.DB, error) {
	var lastErr error
	for attempt := 1; attempt <= defaultDialRetries; attempt++ {
		db, err := sql.Open(driverName, dsn)
		if err == nil {
			pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
			err = db.PingContext(pingCtx)
			cancel()
			if err == nil {
				return db, nil
			}
			db.Close()
		}
		lastErr = err

		if attempt == defaultDialRetries {
			break
		}
		if waitErr := waitForRetry(ctx, connectTimeout, attempt); waitErr != nil {
			return nil, waitErr
		}
	}
	return nil, lastErr
}

func waitForRetry(ctx context.Context, connectTimeout time.Duration, attempt int) error {
	waitMillis := float64(connectTimeout.Milliseconds()) * math.Pow(float64(attempt), 2)
	select {
	case <-time.After(time.Duration(waitMillis) * time.Millisecond):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
