package wayland

import (
	"encoding/binary"

	"github.com/rajveermalviya/go-wayland/wayland/client"
)

const (
	maxSeatVersion = 5

	// wl_keyboard.release and wl_seat.release were added in these versions.
	keyboardReleaseVersion = 3
	seatReleaseVersion     = 5
)

func seatVersion(advertised uint32) uint32 {
	return min(advertised, maxSeatVersion)
}

func hasKeyboard(capabilities uint32) bool {
	return capabilities&uint32(client.SeatCapabilityKeyboard) != 0
}

// decodeKeys unpacks the wl_array of pressed keys sent with wl_keyboard.enter.
func decodeKeys(raw []byte) []uint32 {
	keys := make([]uint32, 0, len(raw)/4)
	for len(raw) >= 4 {
		keys = append(keys, binary.NativeEndian.Uint32(raw))
		raw = raw[4:]
	}
	return keys
}
