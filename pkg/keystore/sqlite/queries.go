package sqlite

import (
	"context"
	"database/sql"
	"time"
)

type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

type KeyPress struct {
	Device      string
	Keycode     int64
	Keysym      string
	Count       int64
	LastPressed sql.NullTime
}

const recordPress = `
insert into key_presses (device, keycode, keysym, count, last_pressed)
values (?, ?, ?, 1, ?)
on conflict (device, keycode) do update
    set count        = count + 1,
        keysym       = excluded.keysym,
        last_pressed = excluded.last_pressed
`

type RecordPressParams struct {
	Device  string
	Keycode int64
	Keysym  string
	At      time.Time
}

func (q *Queries) RecordPress(ctx context.Context, arg RecordPressParams) error {
	_, err := q.db.ExecContext(ctx, recordPress, arg.Device, arg.Keycode, arg.Keysym, arg.At)
	return err
}

const getPressesForDevice = `
select device, keycode, keysym, count, last_pressed
from key_presses
where device = ?
order by keycode
`

func (q *Queries) GetPressesForDevice(ctx context.Context, device string) ([]KeyPress, error) {
	rows, err := q.db.QueryContext(ctx, getPressesForDevice, device)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []KeyPress
	for rows.Next() {
		var i KeyPress
		if err := rows.Scan(&i.Device, &i.Keycode, &i.Keysym, &i.Count, &i.LastPressed); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getDevices = `
select distinct device
from key_presses
order by device
`

func (q *Queries) GetDevices(ctx context.Context) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, getDevices)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []string
	for rows.Next() {
		var device string
		if err := rows.Scan(&device); err != nil {
			return nil, err
		}
		items = append(items, device)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const dumpTables = `
select sql
from sqlite_master
where type = 'table'
  and name not like 'sqlite_%'
  and name != 'schema_migrations'
order by name
`

func (q *Queries) DumpTables(ctx context.Context) ([]*string, error) {
	return q.dump(ctx, dumpTables)
}

const dumpRest = `
select sql
from sqlite_master
where type != 'table'
  and name not like 'sqlite_%'
  and tbl_name != 'schema_migrations'
order by name
`

func (q *Queries) DumpRest(ctx context.Context) ([]*string, error) {
	return q.dump(ctx, dumpRest)
}

func (q *Queries) dump(ctx context.Context, query string) ([]*string, error) {
	rows, err := q.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*string
	for rows.Next() {
		var statement *string
		if err := rows.Scan(&statement); err != nil {
			return nil, err
		}
		items = append(items, statement)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
