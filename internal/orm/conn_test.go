package orm

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSavepointOutsideTransaction(t *testing.T) {
	ctx := context.Background()

	t.Run("commits on success", func(t *testing.T) {
		conn, mock := newMockConn(t)

		mock.ExpectBegin()
		mock.ExpectCommit()

		var depth int
		err := conn.Savepoint(ctx, func(sp *Conn) error {
			depth = sp.Depth()
			assert.True(t, sp.InTransaction())
			return nil
		})

		require.NoError(t, err)
		assert.Equal(t, 1, depth)
		assert.Equal(t, 0, conn.Depth())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back on error", func(t *testing.T) {
		conn, mock := newMockConn(t)
		boom := errors.New("boom")

		mock.ExpectBegin()
		mock.ExpectRollback()

		err := conn.Savepoint(ctx, func(*Conn) error { return boom })

		assert.ErrorIs(t, err, boom)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back and re-panics", func(t *testing.T) {
		conn, mock := newMockConn(t)

		mock.ExpectBegin()
		mock.ExpectRollback()

		assert.PanicsWithValue(t, "kaboom", func() {
			_ = conn.Savepoint(ctx, func(*Conn) error { panic("kaboom") })
		})
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestSavepointInsideTransaction(t *testing.T) {
	ctx := context.Background()

	t.Run("releases on success", func(t *testing.T) {
		conn, mock := newMockTxConn(t)

		mock.ExpectExec("SAVEPOINT sp_1").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("RELEASE SAVEPOINT sp_1").WillReturnResult(sqlmock.NewResult(0, 0))

		err := conn.Savepoint(ctx, func(sp *Conn) error {
			assert.Equal(t, 2, sp.Depth())
			return nil
		})

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back to the savepoint on error", func(t *testing.T) {
		conn, mock := newMockTxConn(t)
		boom := errors.New("boom")

		mock.ExpectExec("SAVEPOINT sp_1").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("ROLLBACK TO SAVEPOINT sp_1").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("RELEASE SAVEPOINT sp_1").WillReturnResult(sqlmock.NewResult(0, 0))

		err := conn.Savepoint(ctx, func(*Conn) error { return boom })

		assert.ErrorIs(t, err, boom)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("nested savepoints get distinct names", func(t *testing.T) {
		conn, mock := newMockTxConn(t)

		mock.ExpectExec("SAVEPOINT sp_1").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("SAVEPOINT sp_2").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("ROLLBACK TO SAVEPOINT sp_2").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("RELEASE SAVEPOINT sp_2").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("RELEASE SAVEPOINT sp_1").WillReturnResult(sqlmock.NewResult(0, 0))

		inner := errors.New("inner failed")
		err := conn.Savepoint(ctx, func(outer *Conn) error {
			nestedErr := outer.Savepoint(ctx, func(*Conn) error { return inner })
			assert.ErrorIs(t, nestedErr, inner)
			// the outer boundary survives the inner rollback
			return nil
		})

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns a failed release without rolling back", func(t *testing.T) {
		conn, mock := newMockTxConn(t)
		releaseErr := errors.New("release refused")

		mock.ExpectExec("SAVEPOINT sp_1").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("RELEASE SAVEPOINT sp_1").WillReturnError(releaseErr)

		err := conn.Savepoint(ctx, func(*Conn) error { return nil })

		assert.ErrorIs(t, err, releaseErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back to the savepoint on panic", func(t *testing.T) {
		conn, mock := newMockTxConn(t)

		mock.ExpectExec("SAVEPOINT sp_1").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("ROLLBACK TO SAVEPOINT sp_1").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("RELEASE SAVEPOINT sp_1").WillReturnResult(sqlmock.NewResult(0, 0))

		assert.Panics(t, func() {
			_ = conn.Savepoint(ctx, func(*Conn) error { panic("kaboom") })
		})
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestWithTransactionReusesOpenTransaction(t *testing.T) {
	conn, mock := newMockTxConn(t)

	var got *Conn
	err := conn.WithTransaction(context.Background(), func(tx *Conn) error {
		got = tx
		return nil
	})

	require.NoError(t, err)
	assert.Same(t, conn, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMiddlewareSeesEveryStatement(t *testing.T) {
	conn, mock := newMockTxConn(t)

	var ops []OperationType
	conn.Use(func(next QueryMiddlewareFunc) QueryMiddlewareFunc {
		return func(ctx *MiddlewareContext) error {
			ops = append(ops, ctx.Operation)
			return next(ctx)
		}
	})

	mock.ExpectExec("SAVEPOINT sp_1").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(widgetUpsert).WithArgs("w1", "gear").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("RELEASE SAVEPOINT sp_1").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, Save(context.Background(), conn, &widget{ID: "w1", Name: "gear"}))
	assert.Equal(t, []OperationType{OpSavepoint, OpSave, OpSavepoint}, ops)
	assert.NoError(t, mock.ExpectationsWereMet())
}
