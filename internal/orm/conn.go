package orm

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Conn is the handle every mapping operation runs against. It wraps either
// the database or an open transaction and tracks how deeply savepoints are
// nested, so cascaded saves share the caller's transaction.
//
// A Conn is not safe for concurrent use; callers serialise access.
type Conn struct {
	db       *sqlx.DB
	executor DBExecutor // Current executor (DB or TX)
	tx       *sqlx.Tx
	depth    int

	middleware *middlewareManager
}

// NewConn creates a Conn on top of a database handle
func NewConn(db *sqlx.DB) *Conn {
	return &Conn{
		db:       db,
		executor: db,
	}
}

// NewTxConn creates a Conn inside a transaction the caller already opened.
// Saves through it use savepoints and never commit the transaction.
func NewTxConn(tx *sqlx.Tx) *Conn {
	return &Conn{
		executor: tx,
		tx:       tx,
		depth:    1,
	}
}

// withExecutor derives a Conn bound to tx at the given depth
func (c *Conn) withExecutor(tx *sqlx.Tx, depth int) *Conn {
	return &Conn{
		db:         c.db,
		executor:   tx,
		tx:         tx,
		depth:      depth,
		middleware: c.middleware,
	}
}

// Use appends statement middleware
func (c *Conn) Use(middleware ...QueryMiddleware) {
	if c.middleware == nil {
		c.middleware = newMiddlewareManager()
	}
	for _, m := range middleware {
		c.middleware.AddMiddleware(m)
	}
}

// Executor returns the current database executor
func (c *Conn) Executor() DBExecutor {
	return c.executor
}

// DB returns the underlying database, or nil for a Conn built from a transaction
func (c *Conn) DB() *sqlx.DB {
	return c.db
}

// InTransaction reports whether statements run inside a transaction
func (c *Conn) InTransaction() bool {
	return c.tx != nil
}

// Depth is the savepoint nesting depth; zero outside any transaction
func (c *Conn) Depth() int {
	return c.depth
}

// Savepoint runs fn inside a nestable transaction boundary. Outside a
// transaction it opens one; inside it issues SAVEPOINT. The boundary is
// released only when fn succeeds; on error or panic every change fn made is
// rolled back and the outer transaction stays usable.
func (c *Conn) Savepoint(ctx context.Context, fn func(*Conn) error) error {
	if c.tx == nil {
		return c.WithTransaction(ctx, fn)
	}

	name := fmt.Sprintf("sp_%d", c.depth)

	if err := c.execSavepoint(ctx, "SAVEPOINT "+name); err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = c.execSavepoint(ctx, "ROLLBACK TO SAVEPOINT "+name)
			_ = c.execSavepoint(ctx, "RELEASE SAVEPOINT "+name)
			panic(p)
		}
	}()

	if err := fn(c.withExecutor(c.tx, c.depth+1)); err != nil {
		if rbErr := c.execSavepoint(ctx, "ROLLBACK TO SAVEPOINT "+name); rbErr != nil {
			return fmt.Errorf("failed to rollback savepoint: %v (original error: %w)", rbErr, err)
		}
		if relErr := c.execSavepoint(ctx, "RELEASE SAVEPOINT "+name); relErr != nil {
			return fmt.Errorf("failed to release savepoint: %v (original error: %w)", relErr, err)
		}
		return err
	}

	return c.execSavepoint(ctx, "RELEASE SAVEPOINT "+name)
}

func (c *Conn) execSavepoint(ctx context.Context, stmt string) error {
	return c.run(ctx, OpSavepoint, "", stmt, nil, func(*MiddlewareContext) error {
		if _, err := c.tx.ExecContext(ctx, stmt); err != nil {
			return ParseError(err, string(OpSavepoint), "")
		}
		return nil
	})
}

// WithTransaction executes fn within a database transaction. When the Conn is
// already inside one, fn runs in it directly.
func (c *Conn) WithTransaction(ctx context.Context, fn func(*Conn) error) error {
	if c.tx != nil {
		return fn(c)
	}

	if c.db == nil {
		return fmt.Errorf("cannot start transaction: executor is not a database connection")
	}

	tx, err := c.db.BeginTxx(ctx, nil)
	if err != nil {
		return ParseError(fmt.Errorf("failed to begin transaction: %w", err), "begin", "")
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(c.withExecutor(tx, 1)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("failed to rollback transaction: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return ParseError(fmt.Errorf("failed to commit transaction: %w", err), "commit", "")
	}

	return nil
}
