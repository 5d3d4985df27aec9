package orm

import "context"

// Repository adapts any Obj into the four storage operations. It holds no
// state besides the connection, so it is cheap to rebind inside a
// transaction with WithConn.
type Repository[T any, K any, F any, PT Obj[T, K, F]] struct {
	conn *Conn
}

// NewRepository creates a repository for entity T keyed by K and filtered by F
func NewRepository[T any, K any, F any, PT Obj[T, K, F]](conn *Conn) *Repository[T, K, F, PT] {
	return &Repository[T, K, F, PT]{conn: conn}
}

// WithConn returns a repository bound to another handle, typically the one
// handed to a transaction callback
func (r *Repository[T, K, F, PT]) WithConn(conn *Conn) *Repository[T, K, F, PT] {
	return &Repository[T, K, F, PT]{conn: conn}
}

// Conn returns the handle the repository runs against
func (r *Repository[T, K, F, PT]) Conn() *Conn {
	return r.conn
}

// Get loads one record by key; nil when absent
func (r *Repository[T, K, F, PT]) Get(ctx context.Context, key K) (*T, error) {
	return Load[T, K, PT](ctx, r.conn, key)
}

// GetAll loads every record
func (r *Repository[T, K, F, PT]) GetAll(ctx context.Context) ([]*T, error) {
	return Scan[T, PT](ctx, r.conn)
}

// GetBy loads the records matching filter
func (r *Repository[T, K, F, PT]) GetBy(ctx context.Context, filter F) ([]*T, error) {
	return LoadBy[T, F, PT](ctx, r.conn, filter)
}

// Put upserts record and cascades to its children
func (r *Repository[T, K, F, PT]) Put(ctx context.Context, record PT) error {
	return Save(ctx, r.conn, record)
}
