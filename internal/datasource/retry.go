package datasource

import (
	"context"
	"database/sql/driver"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

type retryPolicy int

const (
	// readRetry also retries timeouts; re-running a read cannot duplicate data.
	readRetry retryPolicy = iota
	// writeRetry retries only failures where nothing reached the server.
	writeRetry
)

func isTransient(err error, policy retryPolicy) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, driver.ErrBadConn) || pgconn.SafeToRetry(err) {
		return true
	}
	return policy == readRetry && pgconn.Timeout(err)
}

// withRetry runs fn and, on a transient failure, runs it exactly once more.
func withRetry[T any](ctx context.Context, s *Source, op string, policy retryPolicy, fn func(context.Context) (T, error)) (T, error) {
	value, err := fn(ctx)
	if err == nil || !isTransient(err, policy) || ctx.Err() != nil {
		return value, err
	}

	s.metrics.Retry(op)
	s.logger.Warn("retrying store operation", "component", "datasource", "operation", op, "error", err)
	return fn(ctx)
}

// IsTransient reports whether err is a connection-level store failure that
// the caller may try again later.
func IsTransient(err error) bool {
	return isTransient(err, readRetry)
}
