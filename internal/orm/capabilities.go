package orm

import "context"

// Decodable builds a value of T from one positioned row. Columns arrive in
// the table's physical order; no name lookup happens at decode time.
type Decodable[T any] interface {
	*T
	DecodeRow(row RowScanner) error
}

// Scannable entities can be enumerated in full
type Scannable[T any] interface {
	Decodable[T]
	TableName() string
}

// Loadable entities can be fetched by their key
type Loadable[T any, K any] interface {
	Scannable[T]
	// KeyPredicate binds key to the predicate that selects exactly one row
	KeyPredicate(key K) Condition
}

// LoadableBy entities can be fetched through a closed set of filter
// descriptors of type F
type LoadableBy[T any, F any] interface {
	Scannable[T]
	FilterPredicate(filter F) (Condition, error)
}

// Saveable entities describe the row they write. Key columns identify the
// row and are never overwritten; data columns are replaced on every save.
type Saveable interface {
	TableName() string
	KeyColumns() []Assignment
	DataColumns() []Assignment
}

// Obj is the full description of an entity. Anything satisfying it gets
// Load, LoadBy, Scan and Save through Repository with no SQL of its own.
type Obj[T any, K any, F any] interface {
	Loadable[T, K]
	LoadableBy[T, F]
	Saveable
}

// AfterLoader is implemented by entities that populate children after their
// own row is decoded
type AfterLoader interface {
	AfterLoad(ctx context.Context, conn *Conn) error
}

// AfterSaver is implemented by entities that persist children after their
// own row is written. It runs inside the caller's savepoint and must write
// children with Upsert, not Save.
type AfterSaver interface {
	AfterSave(ctx context.Context, conn *Conn) error
}
