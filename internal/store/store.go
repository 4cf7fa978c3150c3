// Package store implements the record-store contract the rest of the service
// is written against: filtered CRUD over named collections with exact-equality
// matching. The Postgres implementation binds a generic collection to a table
// through a Schema, instantiated once per entity type.
package store

import (
	"context"
	"database/sql"
	"fmt"
)

// Order sorts a result set by one field, ascending unless Desc is set.
type Order struct {
	Field string
	Desc  bool
}

// Filter selects records by exact equality on every Where field. Zero Limit
// means no limit.
type Filter struct {
	Where   map[string]any
	OrderBy []Order
	Limit   int
	Offset  int
}

// Querier is the subset of database/sql shared by *sql.DB and *sql.Tx. A
// collection runs against either; WithTx rebinds it to a transaction.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// RowScanner abstracts *sql.Row and *sql.Rows for Schema.Scan.
type RowScanner interface {
	Scan(dest ...any) error
}

// Schema describes how records of type T map onto a table. Columns must list
// every column with "id" first; Scan and Values must agree with that order.
type Schema[T any] struct {
	Table   string
	Columns []string
	Scan    func(row RowScanner) (*T, error)
	Values  func(rec *T) []any
}

// Transact runs fn inside a transaction, committing on nil and rolling back
// on error or panic.
func Transact(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (s *Schema[T]) column(name string) (string, error) {
	for _, c := range s.Columns {
		if c == name {
			return c, nil
		}
	}
	return "", fmt.Errorf("store: unknown column %q in collection %s", name, s.Table)
}
