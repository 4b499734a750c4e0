package sqlstore

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ariefcatur/booknest/internal/postgres"
)

// Connect opens a Store for one of the supported drivers. The pgx driver
// goes through a pgxpool; the others through database/sql directly.
func Connect(ctx context.Context, driver, dsn string, maxConns int32, log *slog.Logger) (*Store, error) {
	switch driver {
	case DriverPGX:
		pool, err := postgres.Connect(ctx, dsn, maxConns)
		if err != nil {
			return nil, fmt.Errorf("pgx connect: %w", err)
		}
		s := New(FromPool(pool), WithLogger(log))
		s.release = pool.Close
		return s, nil
	case DriverPostgres, DriverSQLite:
		db, err := Open(ctx, driver, dsn)
		if err != nil {
			return nil, fmt.Errorf("%s connect: %w", driver, err)
		}
		if driver == DriverPostgres && maxConns > 0 {
			db.SetMaxOpenConns(int(maxConns))
		}
		return New(db, WithLogger(log)), nil
	default:
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}
}
