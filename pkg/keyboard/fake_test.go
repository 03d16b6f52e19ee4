package keyboard

import (
	"errors"
	"fmt"
)

// fakeBackend records every construction and release so tests can check
// ordering and leaks.
type fakeBackend struct {
	events     []string
	contextErr error
	keymapErr  error
	keymaps    int
	states     []*fakeState
}

func (b *fakeBackend) NewContext() (Context, error) {
	if b.contextErr != nil {
		return nil, b.contextErr
	}
	b.events = append(b.events, "context.new")
	return &fakeContext{b: b}, nil
}

// open returns created minus released objects.
func (b *fakeBackend) open() int {
	n := 0
	for _, ev := range b.events {
		switch {
		case len(ev) > 4 && ev[len(ev)-4:] == ".new":
			n++
		case len(ev) > 6 && ev[len(ev)-6:] == ".close":
			n--
		}
	}
	return n
}

type fakeContext struct {
	b *fakeBackend
}

func (c *fakeContext) NewKeymap(text []byte) (Keymap, error) {
	if c.b.keymapErr != nil {
		return nil, c.b.keymapErr
	}
	if len(text) == 0 {
		return nil, errors.New("empty keymap text")
	}
	c.b.keymaps++
	id := c.b.keymaps
	c.b.events = append(c.b.events, fmt.Sprintf("keymap%d.new", id))
	return &fakeKeymap{b: c.b, id: id, text: string(text)}, nil
}

func (c *fakeContext) Close() {
	c.b.events = append(c.b.events, "context.close")
}

type fakeKeymap struct {
	b    *fakeBackend
	id   int
	text string
}

func (k *fakeKeymap) NewState() (State, error) {
	k.b.events = append(k.b.events, fmt.Sprintf("state%d.new", k.id))
	s := &fakeState{b: k.b, id: k.id, pressed: make(map[uint32]bool)}
	k.b.states = append(k.b.states, s)
	return s, nil
}

func (k *fakeKeymap) LayoutName(idx uint32) string {
	return fmt.Sprintf("layout %d", idx)
}

func (k *fakeKeymap) Close() {
	k.b.events = append(k.b.events, fmt.Sprintf("keymap%d.close", k.id))
}

type fakeState struct {
	b       *fakeBackend
	id      int
	pressed map[uint32]bool
	masks   [6]uint32
	updates int
}

func (s *fakeState) UpdateKey(code uint32, dir KeyDirection) {
	s.pressed[code] = dir == KeyDown
	s.updates++
}

func (s *fakeState) UpdateMask(depressedMods, latchedMods, lockedMods, depressedLayout, latchedLayout, lockedLayout uint32) {
	s.masks = [6]uint32{depressedMods, latchedMods, lockedMods, depressedLayout, latchedLayout, lockedLayout}
	s.updates++
}

func (s *fakeState) KeySym(code uint32) uint32 {
	return code + 0x1000
}

func (s *fakeState) KeySymName(code uint32) string {
	return fmt.Sprintf("sym%d", code)
}

func (s *fakeState) KeyUTF8(code uint32) string {
	if code == 38 {
		return "a"
	}
	return ""
}

func (s *fakeState) Layout() uint32 {
	return s.masks[5]
}

func (s *fakeState) ModNameActive(name string) bool {
	return name == "Shift" && s.masks[0]&1 != 0
}

func (s *fakeState) Close() {
	s.b.events = append(s.b.events, fmt.Sprintf("state%d.close", s.id))
}

type fakeDevice struct {
	name       string
	released   int
	releaseErr error
}

func (d *fakeDevice) Name() string {
	return d.name
}

func (d *fakeDevice) Release() error {
	d.released++
	return d.releaseErr
}
