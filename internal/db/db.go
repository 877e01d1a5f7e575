package db

import (
	"context"
	"database/sql"

	"firstscoop-backend/internal/components/chrono"
)

type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	PrepareContext(context.Context, string) (*sql.Stmt, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

// New returns queries over db, timestamps written by them come from clock.
func New(db DBTX, clock chrono.TimeAPI) *Queries {
	return &Queries{db: db, clock: clock}
}

type Queries struct {
	db    DBTX
	clock chrono.TimeAPI
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{
		db:    tx,
		clock: q.clock,
	}
}
