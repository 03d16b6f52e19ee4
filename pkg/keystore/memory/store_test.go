package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/miketth/wlkbd/pkg/wlkbd"
)

func TestPressStore(t *testing.T) {
	s := NewPressStore()

	require.NoError(t, s.RecordPress("seat1", 38, "a"))
	require.NoError(t, s.RecordPress("seat0", 38, "a"))
	require.NoError(t, s.RecordPress("seat0", 38, "A"))
	require.NoError(t, s.RecordPress("seat0", 65, "space"))

	devices, err := s.GetDevices()
	require.NoError(t, err)
	assert.Equal(t, []string{"seat0", "seat1"}, devices)

	presses, err := s.GetPresses("seat0")
	require.NoError(t, err)
	assert.Equal(t, map[uint32]wlkbd.KeyPress{
		38: {Code: 38, Sym: "A", Count: 2},
		65: {Code: 65, Sym: "space", Count: 1},
	}, presses)

	// returned maps are copies
	presses[38] = wlkbd.KeyPress{}
	again, err := s.GetPresses("seat0")
	require.NoError(t, err)
	assert.Equal(t, 2, again[38].Count)

	unknown, err := s.GetPresses("seat9")
	require.NoError(t, err)
	assert.Empty(t, unknown)
}
