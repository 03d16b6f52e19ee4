package xkb

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/miketth/wlkbd/pkg/keyboard"
)

const (
	codeShiftL = 50
	codeA      = 38
)

func loadMinimal(t *testing.T) (*Context, keyboard.Keymap, keyboard.State) {
	t.Helper()

	text, err := os.ReadFile("testdata/minimal.xkb")
	require.NoError(t, err)
	// compositors send the keymap NUL terminated
	text = append(text, 0)

	ctx, err := NewContext(true)
	require.NoError(t, err)
	t.Cleanup(ctx.Close)

	km, err := ctx.NewKeymap(text)
	require.NoError(t, err)
	t.Cleanup(km.Close)

	st, err := km.NewState()
	require.NoError(t, err)
	t.Cleanup(st.Close)

	return ctx, km, st
}

func TestCompileMinimalKeymap(t *testing.T) {
	_, km, st := loadMinimal(t)

	assert.Equal(t, "English (US)", km.LayoutName(0))
	assert.Empty(t, km.LayoutName(5))
	assert.Equal(t, uint32(1), km.(*Keymap).NumLayouts())

	assert.Equal(t, uint32(0), st.Layout())
	assert.Equal(t, "a", st.KeySymName(codeA))
	assert.Equal(t, "a", st.KeyUTF8(codeA))
	assert.Equal(t, uint32(0x61), st.KeySym(codeA))
}

func TestShiftKey(t *testing.T) {
	_, _, st := loadMinimal(t)

	st.UpdateKey(codeShiftL, keyboard.KeyDown)
	assert.True(t, st.ModNameActive("Shift"))
	assert.Equal(t, "A", st.KeySymName(codeA))
	assert.Equal(t, "A", st.KeyUTF8(codeA))

	st.UpdateKey(codeShiftL, keyboard.KeyUp)
	assert.False(t, st.ModNameActive("Shift"))
	assert.Equal(t, "a", st.KeyUTF8(codeA))
}

func TestUpdateMask(t *testing.T) {
	_, _, st := loadMinimal(t)

	st.UpdateMask(1, 0, 0, 0, 0, 0)
	assert.True(t, st.ModNameActive("Shift"))
	assert.Equal(t, "S", st.KeyUTF8(39))

	st.UpdateMask(0, 0, 0, 0, 0, 0)
	assert.Equal(t, "s", st.KeyUTF8(39))
}

func TestUnknownModifierInactive(t *testing.T) {
	_, _, st := loadMinimal(t)

	assert.False(t, st.ModNameActive("NoSuchModifier"))
}

func TestUnmappedKey(t *testing.T) {
	_, _, st := loadMinimal(t)

	assert.Equal(t, uint32(0), st.KeySym(200))
	assert.Equal(t, "NoSymbol", st.KeySymName(200))
	assert.Empty(t, st.KeyUTF8(200))
}

func TestCompileErrors(t *testing.T) {
	ctx, err := NewContext(true)
	require.NoError(t, err)
	defer ctx.Close()

	_, err = ctx.NewKeymap(nil)
	assert.ErrorIs(t, err, ErrCompileKeymap)

	_, err = ctx.NewKeymap([]byte("xkb_keymap { this is not a keymap"))
	assert.ErrorIs(t, err, ErrCompileKeymap)
}

func TestKeysymName(t *testing.T) {
	assert.Equal(t, "Shift_L", KeysymName(0xffe1))
	assert.Equal(t, "Return", KeysymName(0xff0d))
}

func TestBackendNewContext(t *testing.T) {
	text, err := os.ReadFile("testdata/minimal.xkb")
	require.NoError(t, err)

	b := Backend{NoDefaultIncludes: true}
	ctx, err := b.NewContext()
	require.NoError(t, err)
	defer ctx.Close()

	km, err := ctx.NewKeymap(text)
	require.NoError(t, err)
	km.Close()
}
