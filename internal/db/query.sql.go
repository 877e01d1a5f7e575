package db

import (
	"context"

	"github.com/mazen160/go-random"
)

const createRun = `-- name: CreateRun :exec
insert into runs(id, menu_date, status, detail, created_at)
values (?, ?, ?, '', ?)
`

// CreateRun inserts a run with a fresh random id in the started state.
func (q *Queries) CreateRun(ctx context.Context, menuDate string) (Run, error) {
	id, err := random.String(12)
	if err != nil {
		return Run{}, err
	}
	run := Run{
		ID:        id,
		MenuDate:  menuDate,
		Status:    RunStarted,
		CreatedAt: q.clock.Now().Unix(),
	}
	_, err = q.db.ExecContext(ctx, createRun, run.ID, run.MenuDate, run.Status, run.CreatedAt)
	if err != nil {
		return Run{}, err
	}
	return run, nil
}

const finishRun = `-- name: FinishRun :exec
update runs set status = ?, detail = ? where id = ?
`

type FinishRunParams struct {
	Status string
	Detail string
	ID     string
}

func (q *Queries) FinishRun(ctx context.Context, arg FinishRunParams) error {
	_, err := q.db.ExecContext(ctx, finishRun, arg.Status, arg.Detail, arg.ID)
	return err
}

const getRun = `-- name: GetRun :one
select id, menu_date, status, detail, created_at from runs where id = ?
`

func (q *Queries) GetRun(ctx context.Context, id string) (Run, error) {
	row := q.db.QueryRowContext(ctx, getRun, id)
	var i Run
	err := row.Scan(
		&i.ID,
		&i.MenuDate,
		&i.Status,
		&i.Detail,
		&i.CreatedAt,
	)
	return i, err
}

const recordDelivery = `-- name: RecordDelivery :exec
insert into deliveries(run_id, recipient_hash, provider, ok, error, sent_at)
values (?, ?, ?, ?, ?, ?)
`

type RecordDeliveryParams struct {
	RunID         string
	RecipientHash string
	Provider      string
	Ok            bool
	Error         string
	SentAt        int64
}

func (q *Queries) RecordDelivery(ctx context.Context, arg RecordDeliveryParams) error {
	_, err := q.db.ExecContext(ctx, recordDelivery,
		arg.RunID,
		arg.RecipientHash,
		arg.Provider,
		arg.Ok,
		arg.Error,
		arg.SentAt,
	)
	return err
}

const listDeliveries = `-- name: ListDeliveries :many
select run_id, recipient_hash, provider, ok, error, sent_at from deliveries
where run_id = ?
order by rowid
`

func (q *Queries) ListDeliveries(ctx context.Context, runID string) ([]Delivery, error) {
	rows, err := q.db.QueryContext(ctx, listDeliveries, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Delivery
	for rows.Next() {
		var i Delivery
		if err := rows.Scan(
			&i.RunID,
			&i.RecipientHash,
			&i.Provider,
			&i.Ok,
			&i.Error,
			&i.SentAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
