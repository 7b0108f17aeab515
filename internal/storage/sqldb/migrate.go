package sqldb

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrationFS embed.FS

// Migrate brings the schema up to date. It opens its own connection because
// closing a migrate instance also closes the database it was given.
func Migrate(driver, dsn string) error {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return fmt.Errorf("open migration connection: %w", err)
	}

	var target database.Driver
	switch driver {
	case DriverPostgres:
		target, err = postgres.WithInstance(db, &postgres.Config{})
	case DriverSQLite:
		target, err = sqlite.WithInstance(db, &sqlite.Config{})
	default:
		err = fmt.Errorf("unsupported driver %q", driver)
	}
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("migration driver: %w", err)
	}

	src, err := iofs.New(migrationFS, "migrations/"+driver)
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, driver, target)
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("migrate: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}
