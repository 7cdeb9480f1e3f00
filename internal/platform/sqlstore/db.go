package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/scry-trainer/internal/config"
	"github.com/phrazzld/scry-trainer/internal/redact"
	_ "modernc.org/sqlite" // registers the "sqlite" database/sql driver
)

// Supported values of config.DatabaseConfig.Driver.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

const (
	pgxDriverName    = "pgx"
	sqliteDriverName = "sqlite"

	defaultPingTimeout = 5 * time.Second
)

// ErrUnsupportedDriver is returned for a driver other than postgres or sqlite.
var ErrUnsupportedDriver = errors.New("unsupported database driver")

func init() {
	sqlx.BindDriver(sqliteDriverName, sqlx.QUESTION)
}

// Open connects to the database described by cfg and verifies the
// connection with a ping.
//
// SQLite connections get foreign keys and a busy timeout enabled, and are
// limited to one open connection unless cfg.MaxOpenConns says otherwise, so
// concurrent writers queue in the pool instead of failing with SQLITE_BUSY.
func Open(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*sqlx.DB, error) {
	if logger == nil {
		logger = slog.Default()
	}

	driverName, dsn, err := dataSource(cfg)
	if err != nil {
		return nil, err
	}

	db, err := sqlx.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	maxOpen := cfg.MaxOpenConns
	if maxOpen == 0 && cfg.Driver == DriverSQLite {
		maxOpen = 1
	}
	if maxOpen > 0 {
		db.SetMaxOpenConns(maxOpen)
	}

	pingCtx, cancel := context.WithTimeout(ctx, defaultPingTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("database connection established",
		slog.String("driver", cfg.Driver),
		slog.String("url", redact.DSN(cfg.URL)),
		slog.Int("max_open_conns", maxOpen))

	return db, nil
}

// dataSource resolves the database/sql driver name and connection string
// for cfg.
func dataSource(cfg config.DatabaseConfig) (string, string, error) {
	switch cfg.Driver {
	case DriverPostgres:
		return pgxDriverName, postgresDSN(cfg.URL), nil
	case DriverSQLite:
		return sqliteDriverName, sqliteDSN(cfg.URL), nil
	default:
		return "", "", fmt.Errorf("%w: %q", ErrUnsupportedDriver, cfg.Driver)
	}
}

// postgresDSN pins the session time zone to UTC so TIMESTAMP columns hold
// UTC wall-clock values. Keyword/value DSNs are passed through untouched.
func postgresDSN(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" {
		return raw
	}
	q := u.Query()
	if q.Get("timezone") == "" {
		q.Set("timezone", "UTC")
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// sqliteDSN appends the pragmas the schema relies on.
func sqliteDSN(raw string) string {
	pragmas := []string{
		"_pragma=foreign_keys(1)",
		"_pragma=busy_timeout(5000)",
	}
	sep := "?"
	if strings.Contains(raw, "?") {
		sep = "&"
	}
	return raw + sep + strings.Join(pragmas, "&")
}
