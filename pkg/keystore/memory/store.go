package memory

import (
	"slices"
	"sync"

	"codeberg.org/miketth/wlkbd/pkg/wlkbd"
)

type PressStore struct {
	presses map[string]map[uint32]wlkbd.KeyPress
	lock    sync.Mutex
}

func NewPressStore() *PressStore {
	return &PressStore{
		presses: make(map[string]map[uint32]wlkbd.KeyPress),
	}
}

func (s *PressStore) RecordPress(device string, code uint32, sym string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	recordPress(s.presses, device, code, sym)
	return nil
}

func (s *PressStore) GetPresses(device string) (map[uint32]wlkbd.KeyPress, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	return copyPresses(s.presses[device]), nil
}

func (s *PressStore) GetDevices() ([]string, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	return sortedDevices(s.presses), nil
}

func recordPress(presses map[string]map[uint32]wlkbd.KeyPress, device string, code uint32, sym string) {
	keys, ok := presses[device]
	if !ok {
		keys = make(map[uint32]wlkbd.KeyPress)
		presses[device] = keys
	}

	press := keys[code]
	press.Code = code
	press.Sym = sym
	press.Count++
	keys[code] = press
}

func copyPresses(keys map[uint32]wlkbd.KeyPress) map[uint32]wlkbd.KeyPress {
	out := make(map[uint32]wlkbd.KeyPress, len(keys))
	for code, press := range keys {
		out[code] = press
	}
	return out
}

func sortedDevices(presses map[string]map[uint32]wlkbd.KeyPress) []string {
	devices := make([]string, 0, len(presses))
	for device := range presses {
		devices = append(devices, device)
	}
	slices.Sort(devices)
	return devices
}
