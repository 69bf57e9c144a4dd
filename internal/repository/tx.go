package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"golbucks/internal/model"
)

// Coordinator owns the unit-of-work boundary over a pgx pool. The open
// transaction travels inside the context, so a nested Atomic call joins
// the enclosing transaction instead of opening a second one. AfterCommit
// hooks registered during the unit of work run once the outermost
// transaction commits; on abort they are dropped with the rollback.
type Coordinator struct {
	pool        *pgxpool.Pool
	lockTimeout time.Duration
}

func NewCoordinator(pool *pgxpool.Pool, lockTimeout time.Duration) *Coordinator {
	return &Coordinator{pool: pool, lockTimeout: lockTimeout}
}

type txKey struct{}

type txState struct {
	tx    pgx.Tx
	after []func()
}

func txFrom(ctx context.Context) *txState {
	st, _ := ctx.Value(txKey{}).(*txState)
	return st
}

func (c *Coordinator) Atomic(ctx context.Context, fn func(ctx context.Context) error) error {
	if txFrom(ctx) != nil {
		return fn(ctx)
	}

	tx, err := c.pool.Begin(ctx)
	if err != nil {
		return classify(fmt.Errorf("begin transaction: %w", err))
	}
	defer tx.Rollback(context.Background()) //nolint:errcheck // no-op after commit

	if c.lockTimeout > 0 {
		// Blocked row locks fail with 55P03 instead of stalling the
		// request; callers treat that as retryable.
		if _, err := tx.Exec(ctx, fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", c.lockTimeout.Milliseconds())); err != nil {
			return classify(fmt.Errorf("set lock_timeout: %w", err))
		}
	}

	st := &txState{tx: tx}
	if err := fn(context.WithValue(ctx, txKey{}, st)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return classify(fmt.Errorf("commit transaction: %w", err))
	}

	for _, hook := range st.after {
		hook()
	}
	return nil
}

func (c *Coordinator) AfterCommit(ctx context.Context, fn func()) {
	if st := txFrom(ctx); st != nil {
		st.after = append(st.after, fn)
		return
	}
	fn()
}

// dbtx is satisfied by both pgxpool.Pool and pgx.Tx.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// db returns the transaction carried by ctx, or the pool for lock-free
// reads outside a unit of work.
func (c *Coordinator) db(ctx context.Context) dbtx {
	if st := txFrom(ctx); st != nil {
		return st.tx
	}
	return c.pool
}

// Postgres error codes that indicate contention rather than a business
// failure.
const (
	pgLockNotAvailable     = "55P03"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

// classify wraps contention and timeout failures in model.ErrTransient
// so callers can retry them; anything else passes through unchanged.
func classify(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgLockNotAvailable, pgSerializationFailure, pgDeadlockDetected:
			return fmt.Errorf("%w: %w", model.ErrTransient, err)
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", model.ErrTransient, err)
	}
	return err
}
