package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"codeberg.org/miketth/wlkbd/pkg/keystore/sqlite/migrations"
	"codeberg.org/miketth/wlkbd/pkg/wlkbd"
)

type PressStore struct {
	db      *sql.DB
	querier *Queries
	now     func() time.Time
}

func NewPressStore(filename string, log *zap.SugaredLogger) (*PressStore, error) {
	db, err := sql.Open("sqlite3", filename)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if err := migrations.Migrate(db, log); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return &PressStore{
		db:      db,
		querier: New(db),
		now:     time.Now,
	}, nil
}

func (s *PressStore) Close() error {
	return s.db.Close()
}

func (s *PressStore) RecordPress(device string, code uint32, sym string) error {
	if err := s.querier.RecordPress(context.Background(), RecordPressParams{
		Device:  device,
		Keycode: int64(code),
		Keysym:  sym,
		At:      s.now().UTC(),
	}); err != nil {
		return fmt.Errorf("sqlite upsert: %w", err)
	}

	return nil
}

func (s *PressStore) GetPresses(device string) (map[uint32]wlkbd.KeyPress, error) {
	presses, err := s.querier.GetPressesForDevice(context.Background(), device)
	if err != nil {
		return nil, fmt.Errorf("sqlite select: %w", err)
	}

	ret := make(map[uint32]wlkbd.KeyPress, len(presses))
	for _, press := range presses {
		ret[uint32(press.Keycode)] = wlkbd.KeyPress{
			Code:  uint32(press.Keycode),
			Sym:   press.Keysym,
			Count: int(press.Count),
		}
	}

	return ret, nil
}

func (s *PressStore) GetDevices() ([]string, error) {
	devices, err := s.querier.GetDevices(context.Background())
	if err != nil {
		return nil, fmt.Errorf("sqlite select: %w", err)
	}

	return devices, nil
}
