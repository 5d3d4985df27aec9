package orm

import (
	"context"
	"fmt"
)

// Load fetches the row whose key matches key. It returns (nil, nil) when no
// row matches. A key predicate matching several rows means the schema or the
// predicate is wrong, and Load panics with *InvariantError.
func Load[T any, K any, PT Loadable[T, K]](ctx context.Context, conn *Conn, key K) (*T, error) {
	where := PT(new(T)).KeyPredicate(key)

	records, err := fetch[T, PT](ctx, conn, OpLoad, where)
	if err != nil {
		return nil, err
	}

	if len(records) == 0 {
		return nil, nil
	}
	return records[0], nil
}

// LoadBy fetches every row matching filter, in engine order
func LoadBy[T any, F any, PT LoadableBy[T, F]](ctx context.Context, conn *Conn, filter F) ([]*T, error) {
	table := PT(new(T)).TableName()

	where, err := PT(new(T)).FilterPredicate(filter)
	if err != nil {
		return nil, &Error{Op: string(OpLoadBy), Table: table, Err: err}
	}

	return fetch[T, PT](ctx, conn, OpLoadBy, where)
}

// Scan fetches every row of the table. Ordering is unspecified.
func Scan[T any, PT Scannable[T]](ctx context.Context, conn *Conn) ([]*T, error) {
	return fetch[T, PT](ctx, conn, OpScan, Condition{})
}

// Save writes record and its children atomically. The row is upserted inside
// a savepoint that is released only after the AfterSave hook succeeds, so a
// failure anywhere leaves the store as it was before the call. The caller
// must not modify record until Save returns.
func Save(ctx context.Context, conn *Conn, record Saveable) error {
	return conn.Savepoint(ctx, func(sp *Conn) error {
		return Upsert(ctx, sp, record)
	})
}

// Upsert writes record and runs its AfterSave hook without opening a
// savepoint of its own. Use it from AfterSave hooks, which already run
// inside one.
func Upsert(ctx context.Context, conn *Conn, record Saveable) error {
	table := record.TableName()
	exec := conn.Executor()

	query, args, err := upsertStatement(exec.DriverName(), table, record.KeyColumns(), record.DataColumns())
	if err != nil {
		return &Error{
			Op:    string(OpSave),
			Table: table,
			Err:   fmt.Errorf("failed to build upsert: %w", err),
		}
	}

	err = conn.run(ctx, OpSave, table, query, args, func(*MiddlewareContext) error {
		if _, err := exec.ExecContext(ctx, query, args...); err != nil {
			parsed := ParseError(err, string(OpSave), table)
			if ormErr, ok := parsed.(*Error); ok {
				ormErr.Query = query
				ormErr.Args = args
			}
			return parsed
		}
		return nil
	})
	if err != nil {
		return err
	}

	if hook, ok := record.(AfterSaver); ok {
		if err := hook.AfterSave(ctx, conn); err != nil {
			return ParseError(err, "after_save", table)
		}
	}

	return nil
}

// fetch runs a SELECT, decodes every row, closes the cursor and then runs
// AfterLoad hooks. Hooks issue their own statements on the same connection,
// so they must not run while the cursor is open.
func fetch[T any, PT Scannable[T]](ctx context.Context, conn *Conn, op OperationType, where Condition) ([]*T, error) {
	table := PT(new(T)).TableName()
	exec := conn.Executor()

	query, args, err := selectStatement(exec.DriverName(), table, where)
	if err != nil {
		return nil, &Error{
			Op:    string(op),
			Table: table,
			Err:   fmt.Errorf("failed to build select: %w", err),
		}
	}

	var records []*T
	err = conn.run(ctx, op, table, query, args, func(*MiddlewareContext) error {
		rows, err := exec.QueryxContext(ctx, query, args...)
		if err != nil {
			return ParseError(err, string(op), table)
		}
		defer rows.Close()

		for rows.Next() {
			if op == OpLoad && len(records) == 1 {
				panic(&InvariantError{Table: table, Query: query, Args: args})
			}

			record := new(T)
			if err := PT(record).DecodeRow(rows); err != nil {
				return decodeError(table, err)
			}
			records = append(records, record)
		}

		if err := rows.Err(); err != nil {
			return ParseError(err, string(op), table)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, record := range records {
		if hook, ok := any(record).(AfterLoader); ok {
			if err := hook.AfterLoad(ctx, conn); err != nil {
				return nil, ParseError(err, "after_load", table)
			}
		}
	}

	return records, nil
}
