package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Collection is a Postgres-backed record collection for one entity type.
// Safe for concurrent use when bound to *sql.DB.
type Collection[T any] struct {
	q      Querier
	schema Schema[T]
}

// NewCollection binds schema to db and returns the collection.
func NewCollection[T any](db *sql.DB, schema Schema[T]) *Collection[T] {
	return &Collection[T]{q: db, schema: schema}
}

// WithTx returns a copy of the collection running on tx. Used to compose
// multiple collection operations into one atomic store operation.
func (c *Collection[T]) WithTx(tx *sql.Tx) *Collection[T] {
	return &Collection[T]{q: tx, schema: c.schema}
}

// Create inserts rec and returns the stored record.
func (c *Collection[T]) Create(ctx context.Context, rec *T) (*T, error) {
	cols := strings.Join(c.schema.Columns, ", ")
	placeholders := make([]string, len(c.schema.Columns))
	for i := range c.schema.Columns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING %s",
		c.schema.Table, cols, strings.Join(placeholders, ", "), cols)
	return c.schema.Scan(c.q.QueryRowContext(ctx, query, c.schema.Values(rec)...))
}

// FindByID returns the record with the given id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (c *Collection[T]) FindByID(ctx context.Context, id string) (*T, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = $1",
		strings.Join(c.schema.Columns, ", "), c.schema.Table)
	rec, err := c.schema.Scan(c.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return rec, nil
}

// FindAll returns every record matching the filter, in filter order.
func (c *Collection[T]) FindAll(ctx context.Context, f Filter) ([]*T, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s FROM %s", strings.Join(c.schema.Columns, ", "), c.schema.Table)
	args, err := c.appendWhere(&b, f.Where, nil)
	if err != nil {
		return nil, err
	}
	for i, o := range f.OrderBy {
		col, err := c.schema.column(o.Field)
		if err != nil {
			return nil, err
		}
		if i == 0 {
			b.WriteString(" ORDER BY ")
		} else {
			b.WriteString(", ")
		}
		b.WriteString(col)
		if o.Desc {
			b.WriteString(" DESC")
		} else {
			b.WriteString(" ASC")
		}
	}
	if f.Limit > 0 {
		fmt.Fprintf(&b, " LIMIT %d", f.Limit)
	}
	if f.Offset > 0 {
		fmt.Fprintf(&b, " OFFSET %d", f.Offset)
	}
	rows, err := c.q.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*T
	for rows.Next() {
		rec, err := c.schema.Scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Update applies the partial changes to the record with the given id and
// returns the updated record, or nil if no record matched.
func (c *Collection[T]) Update(ctx context.Context, id string, changes map[string]any) (*T, error) {
	sets, args, err := c.setClause(changes, 1)
	if err != nil {
		return nil, err
	}
	args = append(args, id)
	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = $%d RETURNING %s",
		c.schema.Table, sets, len(args), strings.Join(c.schema.Columns, ", "))
	rec, err := c.schema.Scan(c.q.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return rec, nil
}

// UpdateMany applies the partial changes to every record matching where and
// returns the number of records changed.
func (c *Collection[T]) UpdateMany(ctx context.Context, where map[string]any, changes map[string]any) (int64, error) {
	sets, args, err := c.setClause(changes, 1)
	if err != nil {
		return 0, err
	}
	var b strings.Builder
	fmt.Fprintf(&b, "UPDATE %s SET %s", c.schema.Table, sets)
	args, err = c.appendWhere(&b, where, args)
	if err != nil {
		return 0, err
	}
	res, err := c.q.ExecContext(ctx, b.String(), args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Delete removes the record with the given id. Deleting an absent record is
// not an error.
func (c *Collection[T]) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = $1", c.schema.Table)
	_, err := c.q.ExecContext(ctx, query, id)
	return err
}

// DeleteMany removes every record matching where and returns the number of
// records removed.
func (c *Collection[T]) DeleteMany(ctx context.Context, where map[string]any) (int64, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "DELETE FROM %s", c.schema.Table)
	args, err := c.appendWhere(&b, where, nil)
	if err != nil {
		return 0, err
	}
	res, err := c.q.ExecContext(ctx, b.String(), args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Count returns the number of records matching where.
func (c *Collection[T]) Count(ctx context.Context, where map[string]any) (int64, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "SELECT COUNT(*) FROM %s", c.schema.Table)
	args, err := c.appendWhere(&b, where, nil)
	if err != nil {
		return 0, err
	}
	var n int64
	if err := c.q.QueryRowContext(ctx, b.String(), args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// Exists reports whether any record matches where.
func (c *Collection[T]) Exists(ctx context.Context, where map[string]any) (bool, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "SELECT EXISTS(SELECT 1 FROM %s", c.schema.Table)
	args, err := c.appendWhere(&b, where, nil)
	if err != nil {
		return false, err
	}
	b.WriteString(")")
	var exists bool
	if err := c.q.QueryRowContext(ctx, b.String(), args...).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// appendWhere writes "WHERE a = $n AND b = $m" for every where field, in
// sorted field order so generated SQL is deterministic. Placeholder numbering
// continues from len(args).
func (c *Collection[T]) appendWhere(b *strings.Builder, where map[string]any, args []any) ([]any, error) {
	if len(where) == 0 {
		return args, nil
	}
	fields := make([]string, 0, len(where))
	for f := range where {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	for i, f := range fields {
		col, err := c.schema.column(f)
		if err != nil {
			return nil, err
		}
		if i == 0 {
			b.WriteString(" WHERE ")
		} else {
			b.WriteString(" AND ")
		}
		args = append(args, where[f])
		fmt.Fprintf(b, "%s = $%d", col, len(args))
	}
	return args, nil
}

// setClause builds "a = $n, b = $m" for changes, fields sorted, placeholders
// starting at start.
func (c *Collection[T]) setClause(changes map[string]any, start int) (string, []any, error) {
	if len(changes) == 0 {
		return "", nil, fmt.Errorf("store: empty changes for collection %s", c.schema.Table)
	}
	fields := make([]string, 0, len(changes))
	for f := range changes {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	var b strings.Builder
	var args []any
	for i, f := range fields {
		col, err := c.schema.column(f)
		if err != nil {
			return "", nil, err
		}
		if i > 0 {
			b.WriteString(", ")
		}
		args = append(args, changes[f])
		fmt.Fprintf(&b, "%s = $%d", col, start+i)
	}
	return b.String(), args, nil
}
