package store

import (
	"context"
	"database/sql"

	entsql "entgo.io/ent/dialect/sql"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// querier pairs a connection with the dialect used to build statements.
type querier struct {
	db      DBTX
	dialect string
}

func (q querier) builder() *entsql.DialectBuilder {
	return entsql.Dialect(q.dialect)
}

// sqlBuilder is anything ent can render to SQL.
type sqlBuilder interface {
	Query() (string, []any)
}

func (q querier) exec(ctx context.Context, b sqlBuilder) (sql.Result, error) {
	query, args := b.Query()
	return q.db.ExecContext(ctx, query, args...)
}

func (q querier) query(ctx context.Context, b sqlBuilder) (*sql.Rows, error) {
	query, args := b.Query()
	return q.db.QueryContext(ctx, query, args...)
}

func (q querier) queryRow(ctx context.Context, b sqlBuilder) *sql.Row {
	query, args := b.Query()
	return q.db.QueryRowContext(ctx, query, args...)
}
