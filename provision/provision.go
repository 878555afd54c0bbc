package provision

import (
	"context"
	"database/sql"

	"github.com/benchkit/sqlbench/database"
)

// Provisioner supplies a running, reachable MySQL instance and its
// connection handle. Start blocks until the instance accepts connections;
// Stop releases whatever Start created. The benchmark core never manages
// this lifecycle itself, it only consumes the handle.
type Provisioner interface {
	Start(ctx context.Context) (*sql.DB, error)
	Stop(ctx context.Context) error
}

// External connects to a database that something else already runs. Stop
// closes the handle and leaves the server alone.
type External struct {
	Conn database.Config

	db *sql.DB
}

func (e *External) Start(ctx context.Context) (*sql.DB, error) {
	db, err := database.Open(ctx, e.Conn)
	if err != nil {
		return nil, err
	}

	e.db = db

	return db, nil
}

func (e *External) Stop(context.Context) error {
	if e.db == nil {
		return nil
	}

	return e.db.Close()
}
