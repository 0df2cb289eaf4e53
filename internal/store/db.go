package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// ErrUnavailable marks a failure to reach the store. Callers must surface it
// as a retryable error and never treat it as an empty result set.
var ErrUnavailable = errors.New("storage unavailable")

// ErrColumnMissing is returned by writes that need optional schema surface
// the connected database does not have. See Capabilities.
var ErrColumnMissing = errors.New("column missing")

func Open(ctx context.Context, databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetMaxIdleConns(10)
	db.SetMaxOpenConns(20)

	if err := db.PingContext(ctx); err != nil {
		return nil, wrap("ping db", err)
	}
	return db, nil
}

// wrap tags an error with its operation and marks connection-level failures
// as ErrUnavailable so callers can tell "store down" from "no rows".
func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	var netErr net.Error
	if errors.Is(err, driver.ErrBadConn) || errors.As(err, &netErr) {
		return fmt.Errorf("%s: %w: %v", op, ErrUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
