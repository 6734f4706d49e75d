// Package pg bootstraps PostgreSQL for the service: a pgx/v5 connection pool with startup
// retries, goose migrations read from an fs.FS, a readiness probe and error classifiers.
//
// Usage:
//
//	var cfg pg.Config
//	if err := env.Parse(&cfg); err != nil {
//		return err
//	}
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, cfg, postgres.Migrations, log); err != nil {
//		return err
//	}
//
// Error helpers such as IsDuplicateKeyError and IsNotFoundError unwrap *pgconn.PgError and
// pgx.ErrNoRows so repositories can translate them into domain errors.
package pg
