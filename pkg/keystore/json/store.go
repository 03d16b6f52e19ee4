package json

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"sync"
	"time"

	"codeberg.org/miketth/wlkbd/pkg/wlkbd"
)

const saveInterval = time.Minute

// PressStore keeps press counts in memory and writes them to a JSON file
// from SaveLooper.
type PressStore struct {
	presses map[string]map[uint32]wlkbd.KeyPress
	file    *os.File
	lock    sync.Mutex
	dirty   bool
}

func NewPressStore(filename string) (*PressStore, error) {
	file, err := os.OpenFile(filename, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}

	store := &PressStore{
		presses: make(map[string]map[uint32]wlkbd.KeyPress),
		file:    file,
	}

	if err := store.load(); err != nil {
		file.Close()
		return nil, fmt.Errorf("load: %w", err)
	}

	return store, nil
}

func (s *PressStore) Close() error {
	return s.file.Close()
}

func (s *PressStore) load() error {
	s.lock.Lock()
	defer s.lock.Unlock()

	_, err := s.file.Seek(0, 0)
	if err != nil {
		return fmt.Errorf("seek to start of file: %w", err)
	}

	dec := json.NewDecoder(s.file)
	err = dec.Decode(&s.presses)
	switch {
	case errors.Is(err, io.EOF):
		// new file
		return nil
	case err != nil:
		return fmt.Errorf("decode json: %w", err)
	}

	return nil
}

// Save writes the counts to the file if they changed since the last save.
func (s *PressStore) Save() error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if !s.dirty {
		return nil
	}

	_, err := s.file.Seek(0, 0)
	if err != nil {
		return fmt.Errorf("seek to start of file: %w", err)
	}

	err = s.file.Truncate(0)
	if err != nil {
		return fmt.Errorf("truncate file: %w", err)
	}

	enc := json.NewEncoder(s.file)
	err = enc.Encode(s.presses)
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}

	s.dirty = false

	return nil
}

// SaveLooper saves periodically and once more when ctx is done, then closes
// the file.
func (s *PressStore) SaveLooper(ctx context.Context) error {
	defer s.file.Close()

	for {
		select {
		case <-ctx.Done():
			err := s.Save()
			if err != nil {
				return fmt.Errorf("save: %w", err)
			}

			return ctx.Err()
		case <-time.After(saveInterval):
			err := s.Save()
			if err != nil {
				return fmt.Errorf("save: %w", err)
			}
		}
	}
}

func (s *PressStore) RecordPress(device string, code uint32, sym string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	keys, ok := s.presses[device]
	if !ok {
		keys = make(map[uint32]wlkbd.KeyPress)
		s.presses[device] = keys
	}

	press := keys[code]
	keys[code] = wlkbd.KeyPress{Code: code, Sym: sym, Count: press.Count + 1}
	s.dirty = true
	return nil
}

func (s *PressStore) GetPresses(device string) (map[uint32]wlkbd.KeyPress, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	out := make(map[uint32]wlkbd.KeyPress, len(s.presses[device]))
	for code, press := range s.presses[device] {
		out[code] = press
	}
	return out, nil
}

func (s *PressStore) GetDevices() ([]string, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	devices := make([]string, 0, len(s.presses))
	for device := range s.presses {
		devices = append(devices, device)
	}
	slices.Sort(devices)
	return devices, nil
}
