package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	_ "github.com/go-sql-driver/mysql" // mysql driver
)

type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string

	// ReadyTimeout bounds how long Open waits for the server to accept
	// connections. A freshly provisioned container can take a while to
	// finish initializing; zero means DefaultReadyTimeout.
	ReadyTimeout time.Duration
}

const DefaultReadyTimeout = 2 * time.Minute

func DSN(cfg Config) string {
	return fmt.Sprintf(
		"%s:%s@tcp(%s:%d)/%s?parseTime=true&multiStatements=true",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database,
	)
}

// Open connects to MySQL and pings until the server is ready. The handle
// is shared across all variants and iterations of a run; the engine issues
// statements on it strictly sequentially.
func Open(ctx context.Context, cfg Config) (*sql.DB, error) {
	db, err := sql.Open("mysql", DSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("can't open db connection: %w", err)
	}

	readyTimeout := cfg.ReadyTimeout
	if readyTimeout == 0 {
		readyTimeout = DefaultReadyTimeout
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = readyTimeout

	err = backoff.Retry(func() error {
		return db.PingContext(ctx)
	}, backoff.WithContext(bo, ctx))
	if err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("can't ping db: %w", err)
	}

	return db, nil
}
