package cli

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"  // MySQL driver
	_ "github.com/jackc/pgx/v5/stdlib"  // PostgreSQL driver (pgx)
	_ "github.com/mattn/go-sqlite3"     // SQLite driver
	sqlscript "github.com/shibukawa/sqlscript"
)

// openDatabase opens a driver connection, applies the configured pool
// settings and verifies it with a ping.
func openDatabase(ctx context.Context, driver, connection string, pool sqlscript.PoolConfig) (*sql.DB, error) {
	db, err := sql.Open(normalizeSQLDriverName(driver), connection)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDatabaseConnection, err)
	}

	db.SetMaxOpenConns(pool.MaxOpenConns)
	db.SetMaxIdleConns(pool.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(pool.ConnMaxLifetime) * time.Second)

	if err := db.PingContext(ctx); err != nil {
		db.Close()

		return nil, fmt.Errorf("%w: %w", ErrDatabaseConnection, err)
	}

	return db, nil
}
