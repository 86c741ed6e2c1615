package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	_ DB        = (*pgxpool.Pool)(nil)
	_ Queryable = (pgx.Tx)(nil)
)

// Queryable executes statements. The pool and an open transaction both satisfy it,
// so sqlc queries run unchanged inside and outside a transaction.
type Queryable interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// DB is the connection pool handed to repositories.
type DB interface {
	Queryable
	Begin(context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
}
