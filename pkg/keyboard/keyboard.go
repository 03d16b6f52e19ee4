package keyboard

import (
	"fmt"
)

// KeycodeOffset converts the evdev key codes sent by the compositor into the
// xkb key codes the keymap expects.
const KeycodeOffset = 8

type KeyState uint32

const (
	KeyStateReleased KeyState = 0
	KeyStatePressed  KeyState = 1
)

func (s KeyState) direction() (KeyDirection, error) {
	switch s {
	case KeyStatePressed:
		return KeyDown, nil
	case KeyStateReleased:
		return KeyUp, nil
	}
	return 0, fmt.Errorf("%w: %d", ErrUnknownKeyState, uint32(s))
}

// Device is the protocol-side handle of a keyboard. Keyboards are matched by
// comparing Device values, so implementations must be comparable.
type Device interface {
	Name() string
	Release() error
}

// Keyboard tracks the keymap and symbolic state of one Device.
//
// keymap and state are either both nil or both set, with state derived from
// keymap.
type Keyboard struct {
	device  Device
	context Context
	keymap  Keymap
	state   State
}

func newKeyboard(device Device, backend Backend) (*Keyboard, error) {
	ctx, err := backend.NewContext()
	if err != nil {
		return nil, fmt.Errorf("create keymap context: %w", err)
	}

	return &Keyboard{
		device:  device,
		context: ctx,
	}, nil
}

func (k *Keyboard) Device() Device {
	return k.device
}

func (k *Keyboard) HasKeymap() bool {
	return k.state != nil
}

// SetKeymap compiles the keymap of the given format stored in the first size
// bytes of fd. The fd is not closed.
func (k *Keyboard) SetKeymap(format KeymapFormat, fd int, size uint32) error {
	if format != KeymapFormatXkbV1 {
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}

	return withMappedKeymap(fd, size, k.LoadKeymap)
}

// LoadKeymap replaces the current keymap and state with ones compiled from
// text. The previous keymap is dropped even if compilation fails.
func (k *Keyboard) LoadKeymap(text []byte) error {
	k.dropKeymap()

	keymap, err := k.context.NewKeymap(text)
	if err != nil {
		return fmt.Errorf("compile keymap: %w", err)
	}

	state, err := keymap.NewState()
	if err != nil {
		keymap.Close()
		return fmt.Errorf("create state: %w", err)
	}

	k.keymap = keymap
	k.state = state
	return nil
}

func (k *Keyboard) dropKeymap() {
	if k.state != nil {
		k.state.Close()
		k.state = nil
	}

	if k.keymap != nil {
		k.keymap.Close()
		k.keymap = nil
	}
}

// UpdateKey feeds a key event with an evdev key code into the state.
func (k *Keyboard) UpdateKey(key uint32, state KeyState) error {
	if k.state == nil {
		return ErrNoKeymap
	}

	dir, err := state.direction()
	if err != nil {
		return err
	}

	k.state.UpdateKey(key+KeycodeOffset, dir)
	return nil
}

// UpdateModifiers applies the modifier masks and layout group sent by the
// compositor.
func (k *Keyboard) UpdateModifiers(depressed, latched, locked, group uint32) error {
	if k.state == nil {
		return ErrNoKeymap
	}

	k.state.UpdateMask(depressed, latched, locked, 0, 0, group)
	return nil
}

// KeySym returns the keysym produced by the xkb key code in the current
// state, or 0 without a keymap.
func (k *Keyboard) KeySym(code uint32) uint32 {
	if k.state == nil {
		return 0
	}
	return k.state.KeySym(code)
}

func (k *Keyboard) KeySymName(code uint32) string {
	if k.state == nil {
		return ""
	}
	return k.state.KeySymName(code)
}

func (k *Keyboard) KeyUTF8(code uint32) string {
	if k.state == nil {
		return ""
	}
	return k.state.KeyUTF8(code)
}

// LayoutName returns the name of the active layout.
func (k *Keyboard) LayoutName() string {
	if k.state == nil {
		return ""
	}
	return k.keymap.LayoutName(k.state.Layout())
}

func (k *Keyboard) ModActive(name string) bool {
	if k.state == nil {
		return false
	}
	return k.state.ModNameActive(name)
}

// Close releases the state, keymap, context and device, in that order.
func (k *Keyboard) Close() error {
	k.dropKeymap()

	if k.context != nil {
		k.context.Close()
		k.context = nil
	}

	if err := k.device.Release(); err != nil {
		return fmt.Errorf("release device %q: %w", k.device.Name(), err)
	}

	return nil
}
