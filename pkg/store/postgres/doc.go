// Package postgres holds the PostgreSQL repositories: UserStore implements auth.UserStore and
// SessionStore implements session.Store. Both run on a pgxpool.Pool (or a pgx.Tx) through the
// DB interface. Token consumption is a single conditional UPDATE ... RETURNING, so concurrent
// uses of one token cannot both succeed.
//
// The schema ships as goose migrations embedded in Migrations:
//
//	if err := pg.Migrate(ctx, pool, cfg, postgres.Migrations, log); err != nil {
//		return err
//	}
package postgres

import (
	"context"
	"embed"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Migrations holds the schema; pass it to pg.Migrate with MigrationsDir "migrations".
//
//go:embed migrations/*.sql
var Migrations embed.FS

// DB is the subset of pgxpool.Pool and pgx.Tx the repositories use.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}
