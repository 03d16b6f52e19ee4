package wayland

import (
	"fmt"

	"github.com/rajveermalviya/go-wayland/wayland/client"
)

type seat struct {
	global  uint32
	version uint32
	label   string
	proxy   *client.Seat
	device  *device
}

func newSeat(global, version uint32, proxy *client.Seat) *seat {
	return &seat{
		global:  global,
		version: version,
		label:   fmt.Sprintf("seat-%d", global),
		proxy:   proxy,
	}
}

func (s *seat) release() error {
	if s.version < seatReleaseVersion {
		return nil
	}
	return s.proxy.Release()
}

// device is the wl_keyboard of a seat, used as the keyboard.Device handle.
type device struct {
	proxy  *client.Keyboard
	seat   *seat
	client *Client
}

func (d *device) Name() string {
	return d.seat.label
}

func (d *device) Release() error {
	if d.client.disconnected.Load() || d.seat.version < keyboardReleaseVersion {
		return nil
	}
	if err := d.proxy.Release(); err != nil {
		return fmt.Errorf("release wl_keyboard: %w", err)
	}
	return nil
}
