// Package safedb is the mandatory choke point for all database access.
//
// Every read and write in a service passes through one Gate so that SQL
// failures become a shared, observable degradation signal instead of being
// handled ad hoc per call site. On the first failure the gate marks the
// database failed on the shared health state, which flips the service into
// maintenance mode; from then on every gated call is refused without
// touching storage until an operator explicitly exits maintenance.
package safedb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mharte/caseflow/internal/pkg/health"
	"github.com/mharte/caseflow/internal/pkg/metrics"
)

// Sentinel errors returned by gated operations.
var (
	// ErrMaintenance is returned when the service is in maintenance mode.
	// No I/O was attempted.
	ErrMaintenance = errors.New("service in maintenance mode; refusing database operation")

	// ErrUnavailable is returned when an operation reached the database and
	// failed. The shared state has already been degraded as a side effect.
	ErrUnavailable = errors.New("database unavailable")
)

const defaultTimeout = 10 * time.Second

// Gate wraps the single embedded-database handle. One query is in flight at
// a time per process: the mutex serializes acquire-execute-release, which is
// a deliberate simplicity/safety trade-off for a single-file database.
type Gate struct {
	mu      sync.Mutex
	db      *sql.DB
	state   *health.State
	logger  *slog.Logger
	timeout time.Duration
}

// New creates a gate over db bound to the shared service state. timeout
// bounds every individual operation so a hung I/O call cannot hold the
// serializing lock forever; a timeout is treated exactly like a failure.
func New(db *sql.DB, state *health.State, logger *slog.Logger, timeout time.Duration) *Gate {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Gate{
		db:      db,
		state:   state,
		logger:  logger,
		timeout: timeout,
	}
}

// DB exposes the underlying handle for lifecycle management (Close).
func (g *Gate) DB() *sql.DB {
	return g.db
}

// QueryRow executes a query expected to return at most one row and scans it
// into dest. The found flag distinguishes "no row" from "row with NULL
// columns"; (false, nil) is not an error and does not degrade state.
func (g *Gate) QueryRow(ctx context.Context, label, query string, args []any, dest ...any) (bool, error) {
	if !g.state.IsOperational() {
		return false, g.refused(label)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	err := g.db.QueryRowContext(ctx, query, args...).Scan(dest...)
	if errors.Is(err, sql.ErrNoRows) {
		metrics.DBOperations.WithLabelValues(label, "ok").Inc()
		return false, nil
	}
	if err != nil {
		return false, g.failed(label, err)
	}

	metrics.DBOperations.WithLabelValues(label, "ok").Inc()
	return true, nil
}

// Query executes a multi-row query and invokes scan once per row. The scan
// callback must not retain the *sql.Rows.
//
// An error returned by the scan callback aborts the iteration and is
// propagated unchanged, without degrading state: only the query itself
// reaching the database and failing is a failure, same as fn errors under
// WithTx.
func (g *Gate) Query(ctx context.Context, label, query string, args []any, scan func(rows *sql.Rows) error) error {
	if !g.state.IsOperational() {
		return g.refused(label)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	rows, err := g.db.QueryContext(ctx, query, args...)
	if err != nil {
		return g.failed(label, err)
	}
	defer rows.Close()

	for rows.Next() {
		if err := scan(rows); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return g.failed(label, err)
	}

	metrics.DBOperations.WithLabelValues(label, "ok").Inc()
	return nil
}

// Exec executes a mutating statement and returns the affected-row count.
func (g *Gate) Exec(ctx context.Context, label, query string, args ...any) (int64, error) {
	if !g.state.IsOperational() {
		return 0, g.refused(label)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	res, err := g.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, g.failed(label, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, g.failed(label, err)
	}

	metrics.DBOperations.WithLabelValues(label, "ok").Inc()
	return affected, nil
}

// Insert executes an INSERT and returns the generated row id.
func (g *Gate) Insert(ctx context.Context, label, query string, args ...any) (int64, error) {
	if !g.state.IsOperational() {
		return 0, g.refused(label)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	res, err := g.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, g.failed(label, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, g.failed(label, err)
	}

	metrics.DBOperations.WithLabelValues(label, "ok").Inc()
	return id, nil
}

// BulkInsert executes one statement per row set inside a single transaction.
// Any row failure rolls back the whole batch and degrades state.
func (g *Gate) BulkInsert(ctx context.Context, label, query string, rowSets [][]any) error {
	return g.WithTx(ctx, label, func(tx *Tx) error {
		for _, args := range rowSets {
			if _, err := tx.Exec(query, args...); err != nil {
				return err
			}
		}
		return nil
	})
}

// WithTx runs fn inside one transaction under the gate. The serializing
// lock is held for the whole transaction, so a multi-statement sequence
// (read, locate, swap) cannot interleave with any other gated operation.
//
// Database errors raised inside fn through the Tx methods degrade state and
// roll the transaction back. A domain error returned by fn rolls back
// without degrading: negative outcomes are not failures.
func (g *Gate) WithTx(ctx context.Context, label string, fn func(tx *Tx) error) error {
	if !g.state.IsOperational() {
		return g.refused(label)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	tx, err := g.db.BeginTx(ctx, nil)
	if err != nil {
		return g.failed(label, err)
	}

	gtx := &Tx{gate: g, tx: tx, ctx: ctx, label: label}

	if err := fn(gtx); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return g.failed(label, err)
	}

	metrics.DBOperations.WithLabelValues(label, "ok").Inc()
	return nil
}

// Tx exposes gated statement execution inside a transaction. Failures
// reported by these methods have already been logged and have degraded the
// shared state; callers propagate them unchanged.
type Tx struct {
	gate  *Gate
	tx    *sql.Tx
	ctx   context.Context
	label string
}

// QueryRow scans at most one row within the transaction. The found flag has
// the same meaning as Gate.QueryRow.
func (t *Tx) QueryRow(query string, args []any, dest ...any) (bool, error) {
	err := t.tx.QueryRowContext(t.ctx, query, args...).Scan(dest...)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, t.gate.failed(t.label, err)
	}
	return true, nil
}

// Exec executes a mutating statement within the transaction.
func (t *Tx) Exec(query string, args ...any) (int64, error) {
	res, err := t.tx.ExecContext(t.ctx, query, args...)
	if err != nil {
		return 0, t.gate.failed(t.label, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, t.gate.failed(t.label, err)
	}
	return affected, nil
}

// Insert executes an INSERT within the transaction and returns the row id.
func (t *Tx) Insert(query string, args ...any) (int64, error) {
	res, err := t.tx.ExecContext(t.ctx, query, args...)
	if err != nil {
		return 0, t.gate.failed(t.label, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, t.gate.failed(t.label, err)
	}
	return id, nil
}

// refused records a call rejected by the maintenance gate. No SQL is issued.
func (g *Gate) refused(label string) error {
	metrics.DBOperations.WithLabelValues(label, "refused").Inc()
	return fmt.Errorf("%s: %w", label, ErrMaintenance)
}

// failed logs the failure exactly once, degrades the shared state and
// returns an error wrapping ErrUnavailable. The degradation is sticky.
func (g *Gate) failed(label string, err error) error {
	g.logger.Error("database operation failed",
		"label", label,
		"error", err,
	)
	g.state.MarkDatabaseFailed(err.Error())
	metrics.DBOperations.WithLabelValues(label, "failed").Inc()
	return fmt.Errorf("%s: %w: %w", label, ErrUnavailable, err)
}
