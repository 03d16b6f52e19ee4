package keyboard

// KeyDirection is the direction fed into a State on a key event.
type KeyDirection int

const (
	KeyUp KeyDirection = iota
	KeyDown
)

// Backend creates keymap contexts. It is implemented by the xkb package and
// by fakes in tests.
type Backend interface {
	NewContext() (Context, error)
}

type Context interface {
	// NewKeymap compiles a text keymap description.
	NewKeymap(text []byte) (Keymap, error)
	Close()
}

type Keymap interface {
	NewState() (State, error)
	// LayoutName returns the name of the layout at idx, or "" if it has none.
	LayoutName(idx uint32) string
	Close()
}

// State tracks pressed keys and active modifiers for a keymap. Key codes are
// xkb key codes, i.e. already adjusted by KeycodeOffset.
type State interface {
	UpdateKey(code uint32, dir KeyDirection)
	UpdateMask(depressedMods, latchedMods, lockedMods, depressedLayout, latchedLayout, lockedLayout uint32)

	KeySym(code uint32) uint32
	KeySymName(code uint32) string
	KeyUTF8(code uint32) string
	// Layout returns the index of the effective layout.
	Layout() uint32
	ModNameActive(name string) bool

	Close()
}
