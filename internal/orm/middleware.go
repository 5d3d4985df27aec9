package orm

import (
	"context"
	"time"

	"github.com/eleven-am/inventory/internal/logger"
)

// OperationType represents different types of database operations
type OperationType string

const (
	OpLoad      OperationType = "load"
	OpLoadBy    OperationType = "load_by"
	OpScan      OperationType = "scan"
	OpSave      OperationType = "save"
	OpSavepoint OperationType = "savepoint"
)

// MiddlewareContext contains information passed to middleware
type MiddlewareContext struct {
	Operation OperationType
	TableName string
	Query     string
	Args      []interface{}
	Depth     int
	StartTime time.Time
	Context   context.Context
}

// QueryMiddlewareFunc runs one statement
type QueryMiddlewareFunc func(ctx *MiddlewareContext) error

// QueryMiddleware wraps statement execution
type QueryMiddleware func(next QueryMiddlewareFunc) QueryMiddlewareFunc

// middlewareManager manages statement middleware
type middlewareManager struct {
	middleware []QueryMiddleware
}

func newMiddlewareManager() *middlewareManager {
	return &middlewareManager{
		middleware: make([]QueryMiddleware, 0),
	}
}

func (mm *middlewareManager) AddMiddleware(middleware QueryMiddleware) {
	mm.middleware = append(mm.middleware, middleware)
}

func (mm *middlewareManager) ExecuteMiddleware(ctx *MiddlewareContext, finalFunc QueryMiddlewareFunc) error {
	handler := finalFunc

	for i := len(mm.middleware) - 1; i >= 0; i-- {
		handler = mm.middleware[i](handler)
	}

	return handler(ctx)
}

// run executes finalFunc through the connection's middleware chain
func (c *Conn) run(ctx context.Context, op OperationType, table, query string, args []interface{}, finalFunc QueryMiddlewareFunc) error {
	mctx := &MiddlewareContext{
		Operation: op,
		TableName: table,
		Query:     query,
		Args:      args,
		Depth:     c.depth,
		StartTime: time.Now(),
		Context:   ctx,
	}

	if c.middleware == nil {
		return finalFunc(mctx)
	}

	return c.middleware.ExecuteMiddleware(mctx, finalFunc)
}

// LoggingMiddleware logs every statement at debug level
func LoggingMiddleware(log logger.Logger) QueryMiddleware {
	return func(next QueryMiddlewareFunc) QueryMiddlewareFunc {
		return func(ctx *MiddlewareContext) error {
			err := next(ctx)

			entry := log.WithFields(map[string]interface{}{
				"op":       string(ctx.Operation),
				"table":    ctx.TableName,
				"depth":    ctx.Depth,
				"duration": time.Since(ctx.StartTime).String(),
			})

			if err != nil {
				entry.Warn("statement failed", "sql", ctx.Query, "error", err.Error())
			} else {
				entry.Debug("exec", "sql", ctx.Query)
			}

			return err
		}
	}
}
