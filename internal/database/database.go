package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrations embed.FS

// DB is a *sql.DB that knows which driver it talks to. Queries in this
// module are written with ? placeholders and passed through Rebind.
type DB struct {
	*sql.DB
	driver string
}

// Open connects to the database for the given driver and runs migrations.
// For sqlite the dsn is a file path; connection pragmas are appended unless
// the path already carries a query string.
func Open(driver, dsn string) (*DB, error) {
	var (
		sqlDB *sql.DB
		err   error
	)
	switch driver {
	case DriverSQLite:
		sqlDB, err = sql.Open("sqlite", sqliteDSN(dsn))
	case DriverPostgres:
		sqlDB, err = sql.Open("postgres", dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	db := &DB{DB: sqlDB, driver: driver}
	if err := db.migrate(context.Background()); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return db, nil
}

// sqliteDSN turns a bare path into a modernc DSN. Immediate transactions
// make concurrent writers queue on busy_timeout instead of failing on the
// read-to-write lock upgrade.
func sqliteDSN(path string) string {
	if strings.Contains(path, "?") {
		return path
	}
	return path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_txlock=immediate"
}

func (db *DB) migrate(ctx context.Context) error {
	dialect := goose.DialectSQLite3
	dir := "migrations/sqlite"
	if db.driver == DriverPostgres {
		dialect = goose.DialectPostgres
		dir = "migrations/postgres"
	}

	fsys, err := fs.Sub(migrations, dir)
	if err != nil {
		return fmt.Errorf("migrations fs: %w", err)
	}

	provider, err := goose.NewProvider(dialect, db.DB, fsys)
	if err != nil {
		return fmt.Errorf("goose provider: %w", err)
	}

	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

// Driver returns the driver name the DB was opened with.
func (db *DB) Driver() string {
	return db.driver
}

// Rebind rewrites ? placeholders into the driver's native form. Queries
// must not contain a literal ? in strings or comments.
func (db *DB) Rebind(query string) string {
	return sqlx.Rebind(sqlx.BindType(db.driver), query)
}

// WithTx runs fn inside a transaction bound to ctx. The transaction is
// committed only if fn returns nil; otherwise, or if ctx is cancelled, it is
// rolled back and the connection returned to the pool.
func (db *DB) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
