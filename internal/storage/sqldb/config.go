package sqldb

import (
	"fmt"
	"strings"
	"time"
)

// Supported database/sql driver names
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds SQL connection settings
type Config struct {
	// URL selects the dialect: postgres://… or postgresql://… for PostgreSQL,
	// sqlite://path or file:path for SQLite
	URL string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DefaultConfig returns sensible defaults for SQL configuration
func DefaultConfig() Config {
	return Config{
		URL:             "sqlite://chess.db",
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: 30 * time.Minute,
	}
}

// sqlitePragmas are appended to every SQLite DSN
const sqlitePragmas = "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

// ParseURL maps a database URL to a driver name and driver-specific DSN
func ParseURL(url string) (driver, dsn string, err error) {
	switch {
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return DriverPostgres, url, nil
	case strings.HasPrefix(url, "sqlite://"):
		return DriverSQLite, withPragmas("file:" + strings.TrimPrefix(url, "sqlite://")), nil
	case strings.HasPrefix(url, "file:"):
		return DriverSQLite, withPragmas(url), nil
	}
	return "", "", fmt.Errorf("unsupported database url %q", url)
}

func withPragmas(dsn string) string {
	if strings.Contains(dsn, "?") {
		return dsn + "&" + sqlitePragmas
	}
	return dsn + "?" + sqlitePragmas
}
