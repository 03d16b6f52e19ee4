// Package xkb binds the parts of libxkbcommon needed to compile keymaps and
// track keyboard state.
package xkb

/*
#cgo pkg-config: xkbcommon
#include <stdlib.h>
#include <xkbcommon/xkbcommon.h>
*/
import "C"

import (
	"errors"
	"unsafe"

	"codeberg.org/miketth/wlkbd/pkg/keyboard"
)

var (
	ErrNewContext    = errors.New("xkb_context_new failed")
	ErrCompileKeymap = errors.New("keymap compilation failed")
	ErrNewState      = errors.New("xkb_state_new failed")
)

// Backend creates libxkbcommon contexts.
type Backend struct {
	// NoDefaultIncludes stops the context from searching the system xkb
	// directories. Keymaps sent by compositors are self-contained.
	NoDefaultIncludes bool
}

func (b Backend) NewContext() (keyboard.Context, error) {
	return NewContext(b.NoDefaultIncludes)
}

type Context struct {
	ptr *C.struct_xkb_context
}

func NewContext(noDefaultIncludes bool) (*Context, error) {
	flags := C.enum_xkb_context_flags(C.XKB_CONTEXT_NO_FLAGS)
	if noDefaultIncludes {
		flags = C.XKB_CONTEXT_NO_DEFAULT_INCLUDES
	}

	ptr := C.xkb_context_new(flags)
	if ptr == nil {
		return nil, ErrNewContext
	}

	return &Context{ptr: ptr}, nil
}

// NewKeymap compiles a text v1 keymap. A trailing NUL, as sent by
// compositors, is accepted.
func (c *Context) NewKeymap(text []byte) (keyboard.Keymap, error) {
	if len(text) == 0 {
		return nil, ErrCompileKeymap
	}

	buf := C.CBytes(text)
	defer C.free(buf)

	ptr := C.xkb_keymap_new_from_buffer(c.ptr, (*C.char)(buf), C.size_t(len(text)),
		C.XKB_KEYMAP_FORMAT_TEXT_V1, C.XKB_KEYMAP_COMPILE_NO_FLAGS)
	if ptr == nil {
		return nil, ErrCompileKeymap
	}

	return &Keymap{ptr: ptr}, nil
}

func (c *Context) Close() {
	if c.ptr != nil {
		C.xkb_context_unref(c.ptr)
		c.ptr = nil
	}
}

type Keymap struct {
	ptr *C.struct_xkb_keymap
}

func (k *Keymap) NewState() (keyboard.State, error) {
	ptr := C.xkb_state_new(k.ptr)
	if ptr == nil {
		return nil, ErrNewState
	}

	return &State{ptr: ptr}, nil
}

func (k *Keymap) NumLayouts() uint32 {
	return uint32(C.xkb_keymap_num_layouts(k.ptr))
}

func (k *Keymap) LayoutName(idx uint32) string {
	name := C.xkb_keymap_layout_get_name(k.ptr, C.xkb_layout_index_t(idx))
	if name == nil {
		return ""
	}
	return C.GoString(name)
}

func (k *Keymap) Close() {
	if k.ptr != nil {
		C.xkb_keymap_unref(k.ptr)
		k.ptr = nil
	}
}

type State struct {
	ptr *C.struct_xkb_state
}

func (s *State) UpdateKey(code uint32, dir keyboard.KeyDirection) {
	d := C.enum_xkb_key_direction(C.XKB_KEY_UP)
	if dir == keyboard.KeyDown {
		d = C.XKB_KEY_DOWN
	}
	C.xkb_state_update_key(s.ptr, C.xkb_keycode_t(code), d)
}

func (s *State) UpdateMask(depressedMods, latchedMods, lockedMods, depressedLayout, latchedLayout, lockedLayout uint32) {
	C.xkb_state_update_mask(s.ptr,
		C.xkb_mod_mask_t(depressedMods),
		C.xkb_mod_mask_t(latchedMods),
		C.xkb_mod_mask_t(lockedMods),
		C.xkb_layout_index_t(depressedLayout),
		C.xkb_layout_index_t(latchedLayout),
		C.xkb_layout_index_t(lockedLayout))
}

func (s *State) KeySym(code uint32) uint32 {
	return uint32(C.xkb_state_key_get_one_sym(s.ptr, C.xkb_keycode_t(code)))
}

func (s *State) KeySymName(code uint32) string {
	return KeysymName(s.KeySym(code))
}

func (s *State) KeyUTF8(code uint32) string {
	n := C.xkb_state_key_get_utf8(s.ptr, C.xkb_keycode_t(code), nil, 0)
	if n <= 0 {
		return ""
	}

	buf := make([]byte, int(n)+1)
	C.xkb_state_key_get_utf8(s.ptr, C.xkb_keycode_t(code),
		(*C.char)(unsafe.Pointer(&buf[0])), C.size_t(len(buf)))
	return string(buf[:n])
}

func (s *State) Layout() uint32 {
	return uint32(C.xkb_state_serialize_layout(s.ptr, C.XKB_STATE_LAYOUT_EFFECTIVE))
}

// ModNameActive reports whether the named modifier is effectively active.
// Unknown names are reported as inactive.
func (s *State) ModNameActive(name string) bool {
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))

	return C.xkb_state_mod_name_is_active(s.ptr, cname, C.XKB_STATE_MODS_EFFECTIVE) > 0
}

func (s *State) Close() {
	if s.ptr != nil {
		C.xkb_state_unref(s.ptr)
		s.ptr = nil
	}
}

// KeysymName returns the name of sym, e.g. "Shift_L".
func KeysymName(sym uint32) string {
	var buf [64]C.char
	n := C.xkb_keysym_get_name(C.xkb_keysym_t(sym), &buf[0], C.size_t(len(buf)))
	if n < 0 {
		return ""
	}
	return C.GoString(&buf[0])
}
