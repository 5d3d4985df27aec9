package orm

import (
	"context"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
)

var widgetColumns = struct {
	ID   StringColumn
	Name StringColumn
}{
	ID:   StringColumn{Column: Column[string]{Name: "id"}},
	Name: StringColumn{Column: Column[string]{Name: "name"}},
}

type widgetFilter interface{ widgetFilter() }

type widgetsNamed struct{ Name string }

type widgetsUnknown struct{}

func (widgetsNamed) widgetFilter()   {}
func (widgetsUnknown) widgetFilter() {}

// widget is a minimal entity with optional hooks for exercising the
// generic operations against sqlmock.
type widget struct {
	ID   string
	Name string

	afterSave func(ctx context.Context, conn *Conn) error
}

// loadHook stands in for AfterLoad; loaded widgets are built by the
// operations, so the hook cannot live on the instance
var loadHook func(ctx context.Context, w *widget, conn *Conn) error

func (w *widget) TableName() string { return "widgets" }

func (w *widget) DecodeRow(row RowScanner) error {
	return row.Scan(&w.ID, &w.Name)
}

func (w *widget) KeyPredicate(id string) Condition {
	return widgetColumns.ID.Eq(id)
}

func (w *widget) FilterPredicate(filter widgetFilter) (Condition, error) {
	switch f := filter.(type) {
	case widgetsNamed:
		return widgetColumns.Name.Eq(f.Name), nil
	default:
		return Condition{}, fmt.Errorf("%w: %T", ErrUnknownFilter, filter)
	}
}

func (w *widget) KeyColumns() []Assignment {
	return []Assignment{widgetColumns.ID.Set(w.ID)}
}

func (w *widget) DataColumns() []Assignment {
	return []Assignment{widgetColumns.Name.Set(w.Name)}
}

func (w *widget) AfterLoad(ctx context.Context, conn *Conn) error {
	if loadHook != nil {
		return loadHook(ctx, w, conn)
	}
	return nil
}

func (w *widget) AfterSave(ctx context.Context, conn *Conn) error {
	if w.afterSave != nil {
		return w.afterSave(ctx, conn)
	}
	return nil
}

const (
	widgetSelectAll  = "SELECT * FROM widgets"
	widgetSelectByID = "SELECT * FROM widgets WHERE id = ?"
	widgetUpsert     = "INSERT INTO widgets (id,name) VALUES (?,?) ON CONFLICT (id) DO UPDATE SET name = excluded.name"
)

func newMockConn(t *testing.T) (*Conn, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return NewConn(sqlx.NewDb(db, "sqlmock")), mock
}

// newMockTxConn returns a Conn already inside a transaction
func newMockTxConn(t *testing.T) (*Conn, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	mock.ExpectBegin()
	tx, err := sqlx.NewDb(db, "sqlmock").Beginx()
	if err != nil {
		t.Fatalf("failed to begin: %v", err)
	}

	return NewTxConn(tx), mock
}
