package orm

import (
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
)

// Column represents a type-safe database column reference. Entities declare
// their columns once as package-level values; statements never take column
// names from anywhere else.
type Column[T any] struct {
	Name  string
	Table string
}

// String returns the full column reference for SQL
func (c Column[T]) String() string {
	if c.Table != "" {
		return fmt.Sprintf("%s.%s", c.Table, c.Name)
	}
	return c.Name
}

// Set pairs the column with a value for an upsert
func (c Column[T]) Set(value T) Assignment {
	return Assignment{Column: c.Name, Value: value}
}

// Eq creates an equality condition
func (c Column[T]) Eq(value T) Condition {
	return Condition{squirrel.Eq{c.String(): value}}
}

// In creates an IN condition
func (c Column[T]) In(values ...T) Condition {
	interfaces := make([]interface{}, len(values))
	for i, v := range values {
		interfaces[i] = v
	}
	return Condition{squirrel.Eq{c.String(): interfaces}}
}

// IsNull creates an IS NULL condition
func (c Column[T]) IsNull() Condition {
	return Condition{squirrel.Eq{c.String(): nil}}
}

// IsNotNull creates an IS NOT NULL condition
func (c Column[T]) IsNotNull() Condition {
	return Condition{squirrel.NotEq{c.String(): nil}}
}

// Assignment is a column name bound to the value written on save
type Assignment struct {
	Column string
	Value  interface{}
}

// StringColumn provides string-specific operations
type StringColumn struct {
	Column[string]
}

// Contains creates a LIKE condition for substring matching
func (c StringColumn) Contains(substring string) Condition {
	return Condition{squirrel.Like{c.String(): "%" + substring + "%"}}
}

// NullStringColumn is a nullable text column
type NullStringColumn struct {
	Column[*string]
}

// Is compares against a concrete value, never matching NULL
func (c NullStringColumn) Is(value string) Condition {
	return Condition{squirrel.Eq{c.String(): value}}
}

// TimeColumn is a nullable timestamp column
type TimeColumn struct {
	Column[*time.Time]
}

// Before creates a condition for times before the given time
func (c TimeColumn) Before(t time.Time) Condition {
	return Condition{squirrel.Lt{c.String(): t}}
}

// BoolColumn provides boolean-specific operations
type BoolColumn struct {
	Column[bool]
}

// IsTrue creates a condition for true values
func (c BoolColumn) IsTrue() Condition {
	return c.Eq(true)
}

// Condition wraps squirrel conditions for type safety
type Condition struct {
	condition squirrel.Sqlizer
}

// Expr builds a raw condition. The SQL must be a constant written by the
// entity author; user input only ever travels through args.
func Expr(sql string, args ...interface{}) Condition {
	return Condition{squirrel.Expr(sql, args...)}
}

// IsZero reports whether the condition is empty
func (c Condition) IsZero() bool {
	return c.condition == nil
}

// ToSqlizer returns the underlying squirrel condition
func (c Condition) ToSqlizer() squirrel.Sqlizer {
	return c.condition
}

// And combines multiple conditions with AND
func And(conditions ...Condition) Condition {
	sqlizers := make([]squirrel.Sqlizer, len(conditions))
	for i, c := range conditions {
		sqlizers[i] = c.condition
	}
	return Condition{squirrel.And(sqlizers)}
}
