package orm

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
)

func TestError(t *testing.T) {
	baseErr := errors.New("base error")
	ormErr := &Error{
		Op:    "save",
		Table: "items",
		Err:   baseErr,
	}

	t.Run("Error method", func(t *testing.T) {
		expected := "orm: save: table=items: base error"
		if ormErr.Error() != expected {
			t.Errorf("expected %q, got %q", expected, ormErr.Error())
		}
	})

	t.Run("Unwrap method", func(t *testing.T) {
		if errors.Unwrap(ormErr) != baseErr {
			t.Error("Unwrap should return base error")
		}
	})

	t.Run("Is method", func(t *testing.T) {
		if !errors.Is(ormErr, baseErr) {
			t.Error("Is should match base error")
		}
		if !errors.Is(ormErr, &Error{Op: "save"}) {
			t.Error("Is should match an *Error with the same Op")
		}
		if errors.Is(ormErr, ErrNotFound) {
			t.Error("Is should not match an unrelated sentinel")
		}
	})
}

func TestParseError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		op       string
		table    string
		wantType error
		wantMsg  string
	}{
		{
			name: "unique violation",
			err: &pq.Error{
				Code:       "23505",
				Message:    "duplicate key value violates unique constraint \"items_pkey\"",
				Constraint: "items_pkey",
			},
			op:       "save",
			table:    "items",
			wantType: ErrDuplicateKey,
			wantMsg:  "orm: save: table=items: constraint=items_pkey: duplicate key violation",
		},
		{
			name: "foreign key violation",
			err: &pq.Error{
				Code:       "23503",
				Message:    "insert or update on table \"tag_associations\" violates foreign key constraint",
				Constraint: "tag_associations_item_id_fkey",
			},
			op:       "save",
			table:    "tag_associations",
			wantType: ErrForeignKey,
			wantMsg:  "orm: save: table=tag_associations: constraint=tag_associations_item_id_fkey: foreign key violation",
		},
		{
			name: "not null violation",
			err: &pq.Error{
				Code:    "23502",
				Message: "null value in column \"value\" violates not-null constraint",
				Column:  "value",
			},
			op:       "save",
			table:    "tag_associations",
			wantType: ErrNotNull,
			wantMsg:  "orm: save: table=tag_associations: column=value: not null constraint violation",
		},
		{
			name:     "check violation",
			err:      &pq.Error{Code: "23514", Constraint: "items_check"},
			op:       "save",
			table:    "items",
			wantType: ErrCheckConstraint,
			wantMsg:  "orm: save: table=items: constraint=items_check: check constraint violation",
		},
		{
			name:     "connection exception class",
			err:      &pq.Error{Code: "08006"},
			op:       "load",
			table:    "items",
			wantType: ErrConnectionFailed,
			wantMsg:  "orm: load: table=items: database connection failed",
		},
		{
			name: "unclassified pq error",
			err: &pq.Error{
				Code:    "23P01",
				Message: "conflicting key value violates exclusion constraint \"reservation_overlap\"",
			},
			op:      "save",
			table:   "items",
			wantMsg: "orm: save: table=items: pq: conflicting key value violates exclusion constraint \"reservation_overlap\"",
		},
		{
			name:     "no rows error",
			err:      sql.ErrNoRows,
			op:       "load",
			table:    "items",
			wantType: ErrNotFound,
			wantMsg:  "orm: load: table=items: record not found",
		},
		{
			name:     "deadline exceeded",
			err:      fmt.Errorf("query: %w", context.DeadlineExceeded),
			op:       "scan",
			table:    "items",
			wantType: ErrTimeout,
			wantMsg:  "orm: scan: table=items: operation timeout",
		},
		{
			name:     "canceled",
			err:      context.Canceled,
			op:       "scan",
			table:    "items",
			wantType: ErrCanceled,
			wantMsg:  "orm: scan: table=items: operation canceled",
		},
		{
			name:     "connection refused text",
			err:      errors.New("dial tcp 127.0.0.1:5432: connect: connection refused"),
			op:       "load",
			table:    "items",
			wantType: ErrConnectionFailed,
			wantMsg:  "orm: load: table=items: database connection failed",
		},
		{
			name:    "plain error",
			err:     errors.New("some other error"),
			op:      "load",
			table:   "items",
			wantMsg: "orm: load: table=items: some other error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ParseError(tt.err, tt.op, tt.table)

			if _, ok := result.(*Error); !ok {
				t.Fatalf("expected *Error type, got %T", result)
			}
			if tt.wantType != nil && !errors.Is(result, tt.wantType) {
				t.Errorf("expected error type %v, got %v", tt.wantType, result)
			}
			if result.Error() != tt.wantMsg {
				t.Errorf("expected message %q, got %q", tt.wantMsg, result.Error())
			}
		})
	}

	t.Run("nil error", func(t *testing.T) {
		if ParseError(nil, "load", "items") != nil {
			t.Error("expected nil")
		}
	})

	t.Run("already parsed error is kept", func(t *testing.T) {
		original := &Error{Op: "save", Table: "tag_associations", Err: ErrForeignKey}
		wrapped := fmt.Errorf("cascade: %w", original)

		result := ParseError(wrapped, "after_save", "items")
		if result != wrapped {
			t.Errorf("expected the original error back, got %v", result)
		}
	})
}

func TestExtractSQLiteColumn(t *testing.T) {
	tests := []struct {
		msg  string
		want string
	}{
		{"UNIQUE constraint failed: items.id", "id"},
		{"NOT NULL constraint failed: tag_associations.value (1299)", "value"},
		{"UNIQUE constraint failed: tag_associations.item_id, tag_associations.key", "item_id"},
		{"FOREIGN KEY constraint failed", ""},
	}

	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			if got := extractSQLiteColumn(tt.msg); got != tt.want {
				t.Errorf("extractSQLiteColumn() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "timeout",
			err:  ParseError(context.DeadlineExceeded, "load", "items"),
			want: true,
		},
		{
			name: "connection failure",
			err:  ParseError(&pq.Error{Code: "08001"}, "load", "items"),
			want: true,
		},
		{
			name: "unique violation",
			err:  ParseError(&pq.Error{Code: "23505"}, "save", "items"),
			want: false,
		},
		{
			name: "plain error",
			err:  errors.New("some error"),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("IsRetryable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsConstraintError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"unique violation", &Error{Err: ErrDuplicateKey}, true},
		{"foreign key violation", &Error{Err: ErrForeignKey}, true},
		{"check violation", &Error{Err: ErrCheckConstraint}, true},
		{"not null violation", &Error{Err: ErrNotNull}, true},
		{"decode failure", decodeError("items", errors.New("bad")), false},
		{"plain error", errors.New("some error"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsConstraintError(tt.err); got != tt.want {
				t.Errorf("IsConstraintError() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDecodeError(t *testing.T) {
	cause := errors.New("converting NULL to bool is unsupported")
	err := decodeError("items", cause)

	if !IsDecodeError(err) {
		t.Error("expected IsDecodeError to be true")
	}
	if !errors.Is(err, cause) {
		t.Error("expected the scan error to stay reachable")
	}
}

func TestInvariantError(t *testing.T) {
	err := &InvariantError{Table: "items"}
	want := "orm: load: table=items: key lookup matched more than one row"
	if err.Error() != want {
		t.Errorf("expected %q, got %q", want, err.Error())
	}
}
