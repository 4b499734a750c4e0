// Package sqlstore implements library.Store on a relational database.
// Queries are built with goqu and executed through sqlx, so the same code
// runs on Postgres (pgx or lib/pq) and on SQLite.
package sqlstore

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"strings"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"  // dialect registration
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // registers the "postgres" database/sql driver

	"github.com/ariefcatur/booknest/internal/library"
)

const (
	DriverPGX      = "pgx"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"

	dialectPostgres = "postgres"
	dialectSQLite   = "sqlite3"

	tableBook       = "book"
	tableCategory   = "category"
	tableCollection = "collection"
	tableMember     = "member"
	tableMembership = "membership"
	tableIssuance   = "issuance"
	tableAuditLog   = "audit_log"
)

type Store struct {
	db      *sqlx.DB
	q       sqlx.ExtContext
	d       goqu.DialectWrapper
	dialect string
	log     *slog.Logger
	// release frees resources owned beyond db, such as a pgx pool.
	release func()
}

var _ library.Store = (*Store)(nil)

type Option func(*Store)

// WithLogger logs every statement at debug level.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

func New(db *sqlx.DB, opts ...Option) *Store {
	dialect := dialectPostgres
	if db.DriverName() == DriverSQLite {
		dialect = dialectSQLite
	}
	s := &Store{
		db:      db,
		q:       db,
		d:       goqu.Dialect(dialect),
		dialect: dialect,
		log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Open connects through database/sql. Use FromPool for the pgx driver.
func Open(ctx context.Context, driver, dsn string) (*sqlx.DB, error) {
	if driver == DriverSQLite && !strings.Contains(dsn, "_foreign_keys") {
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		dsn += sep + "_foreign_keys=1&_busy_timeout=5000"
	}
	db, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, err
	}
	if driver == DriverSQLite {
		// a single writer avoids SQLITE_BUSY between pooled connections
		db.SetMaxOpenConns(1)
	}
	return db, nil
}

// FromPool exposes a pgx pool as a database/sql handle for sqlx.
func FromPool(pool *pgxpool.Pool) *sqlx.DB {
	return sqlx.NewDb(stdlib.OpenDBFromPool(pool), DriverPGX)
}

func (s *Store) Close() error {
	err := s.db.Close()
	if s.release != nil {
		s.release()
	}
	return err
}

func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fail("ping", err)
	}
	return nil
}

func (s *Store) ReadSnapshot(ctx context.Context, fn func(library.Store) error) error {
	var opts *sql.TxOptions
	if s.dialect == dialectPostgres {
		opts = &sql.TxOptions{ReadOnly: true, Isolation: sql.LevelRepeatableRead}
	}
	return s.inTx(ctx, opts, func(tx *Store) error { return fn(tx) })
}

func (s *Store) inTx(ctx context.Context, opts *sql.TxOptions, fn func(tx *Store) error) error {
	if _, nested := s.q.(*sqlx.Tx); nested {
		return fn(s)
	}
	tx, err := s.db.BeginTxx(ctx, opts)
	if err != nil {
		return fail("begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	txStore := *s
	txStore.q = tx
	if err := fn(&txStore); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fail("commit transaction", err)
	}
	return nil
}

type sqlBuilder interface {
	ToSQL() (string, []any, error)
}

func (s *Store) from(table any) *goqu.SelectDataset { return s.d.From(table).Prepared(true) }
func (s *Store) insert(table string) *goqu.InsertDataset {
	return s.d.Insert(table).Prepared(true)
}
func (s *Store) update(table string) *goqu.UpdateDataset {
	return s.d.Update(table).Prepared(true)
}
func (s *Store) delete(table string) *goqu.DeleteDataset {
	return s.d.Delete(table).Prepared(true)
}

func (s *Store) selectAll(ctx context.Context, dest any, b sqlBuilder) error {
	query, args, err := s.build(b)
	if err != nil {
		return err
	}
	return sqlx.SelectContext(ctx, s.q, dest, query, args...)
}

// getOne returns sql.ErrNoRows unchanged so callers can map it.
func (s *Store) getOne(ctx context.Context, dest any, b sqlBuilder) error {
	query, args, err := s.build(b)
	if err != nil {
		return err
	}
	return sqlx.GetContext(ctx, s.q, dest, query, args...)
}

func (s *Store) exec(ctx context.Context, b sqlBuilder) (int64, error) {
	query, args, err := s.build(b)
	if err != nil {
		return 0, err
	}
	res, err := s.q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *Store) build(b sqlBuilder) (string, []any, error) {
	query, args, err := b.ToSQL()
	if err != nil {
		return "", nil, err
	}
	s.log.Debug("executing sql", "query", query, "args", len(args))
	return query, args, nil
}

func (s *Store) count(ctx context.Context, ds *goqu.SelectDataset) (int, error) {
	var n int
	if err := s.getOne(ctx, &n, ds.Select(goqu.COUNT(goqu.Star()))); err != nil {
		return 0, err
	}
	return n, nil
}

func nullString(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func nullDate(d *library.Date) any {
	if d == nil {
		return nil
	}
	return d.String()
}
