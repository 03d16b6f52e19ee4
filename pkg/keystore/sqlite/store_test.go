package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"codeberg.org/miketth/wlkbd/pkg/wlkbd"
)

func newTestStore(t *testing.T, path string) *PressStore {
	t.Helper()

	s, err := NewPressStore(path, zaptest.NewLogger(t).Sugar())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestPressStore(t *testing.T) {
	s := newTestStore(t, filepath.Join(t.TempDir(), "presses.db"))

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

	unknown, err := s.GetPresses("seat9")
	require.NoError(t, err)
	assert.Empty(t, unknown)
}

func TestPressStoreReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "presses.db")

	first, err := NewPressStore(path, zaptest.NewLogger(t).Sugar())
	require.NoError(t, err)
	require.NoError(t, first.RecordPress("seat0", 9, "Escape"))
	require.NoError(t, first.Close())

	// migrations are already applied the second time
	second := newTestStore(t, path)
	presses, err := second.GetPresses("seat0")
	require.NoError(t, err)
	assert.Equal(t, 1, presses[9].Count)
}

func TestLastPressed(t *testing.T) {
	s := newTestStore(t, filepath.Join(t.TempDir(), "presses.db"))
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return at }

	require.NoError(t, s.RecordPress("seat0", 38, "a"))

	rows, err := s.querier.GetPressesForDevice(context.Background(), "seat0")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.True(t, rows[0].LastPressed.Valid)
	assert.True(t, at.Equal(rows[0].LastPressed.Time))
}

func TestDumpSchema(t *testing.T) {
	s := newTestStore(t, filepath.Join(t.TempDir(), "presses.db"))

	tables, err := s.querier.DumpTables(context.Background())
	require.NoError(t, err)
	require.Len(t, tables, 1)
	assert.Contains(t, *tables[0], "key_presses")

	rest, err := s.querier.DumpRest(context.Background())
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Contains(t, *rest[0], "key_presses_last_pressed")
}
