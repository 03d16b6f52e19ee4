package keyboard

import (
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// EventFunc receives key presses and releases. code is the xkb key code and
// the keyboard state already reflects the event.
type EventFunc func(c *Collection, kb *Keyboard, code uint32, pressed bool)

// Collection owns the Keyboards of all tracked devices and routes protocol
// events to them. It is not safe for concurrent use; all calls are expected to
// come from the protocol dispatch loop.
type Collection struct {
	keyboards []*Keyboard
	backend   Backend
	onEvent   EventFunc
	log       *zap.SugaredLogger
}

func NewCollection(backend Backend, onEvent EventFunc, log *zap.SugaredLogger) *Collection {
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	return &Collection{
		backend: backend,
		onEvent: onEvent,
		log:     log,
	}
}

// Find returns the Keyboard for dev, or nil if dev is not tracked.
func (c *Collection) Find(dev Device) *Keyboard {
	for _, kb := range c.keyboards {
		if kb.device == dev {
			return kb
		}
	}
	return nil
}

func (c *Collection) Len() int {
	return len(c.keyboards)
}

func (c *Collection) Keyboards() []*Keyboard {
	out := make([]*Keyboard, len(c.keyboards))
	copy(out, c.keyboards)
	return out
}

func (c *Collection) Add(dev Device) (*Keyboard, error) {
	if c.Find(dev) != nil {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateDevice, dev.Name())
	}

	kb, err := newKeyboard(dev, c.backend)
	if err != nil {
		return nil, fmt.Errorf("new keyboard %q: %w", dev.Name(), err)
	}

	c.keyboards = append(c.keyboards, kb)
	c.log.Debugw("keyboard added", "device", dev.Name())
	return kb, nil
}

func (c *Collection) Remove(dev Device) error {
	for i, kb := range c.keyboards {
		if kb.device != dev {
			continue
		}

		c.keyboards = append(c.keyboards[:i], c.keyboards[i+1:]...)
		c.log.Debugw("keyboard removed", "device", dev.Name())
		return kb.Close()
	}

	return fmt.Errorf("%w: %s", ErrUnknownDevice, dev.Name())
}

func (c *Collection) lookup(dev Device) (*Keyboard, error) {
	kb := c.Find(dev)
	if kb == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDevice, dev.Name())
	}
	return kb, nil
}

func (c *Collection) HandleKeymap(dev Device, format KeymapFormat, fd int, size uint32) error {
	kb, err := c.lookup(dev)
	if err != nil {
		return err
	}

	if err := kb.SetKeymap(format, fd, size); err != nil {
		return fmt.Errorf("set keymap for %q: %w", dev.Name(), err)
	}

	c.log.Debugw("keymap loaded", "device", dev.Name(), "size", size, "layout", kb.LayoutName())
	return nil
}

func (c *Collection) HandleKey(dev Device, key uint32, state KeyState) error {
	kb, err := c.lookup(dev)
	if err != nil {
		return err
	}

	if err := kb.UpdateKey(key, state); err != nil {
		return fmt.Errorf("update key %d for %q: %w", key, dev.Name(), err)
	}

	if c.onEvent != nil {
		c.onEvent(c, kb, key+KeycodeOffset, state == KeyStatePressed)
	}
	return nil
}

func (c *Collection) HandleModifiers(dev Device, depressed, latched, locked, group uint32) error {
	kb, err := c.lookup(dev)
	if err != nil {
		return err
	}

	if err := kb.UpdateModifiers(depressed, latched, locked, group); err != nil {
		return fmt.Errorf("update modifiers for %q: %w", dev.Name(), err)
	}
	return nil
}

// HandleEnter, HandleLeave and HandleRepeatInfo are accepted but focus and
// key repeat are not tracked.

func (c *Collection) HandleEnter(dev Device, keys []uint32) {
	c.log.Debugw("keyboard enter", "device", dev.Name(), "pressed", len(keys))
}

func (c *Collection) HandleLeave(dev Device) {
	c.log.Debugw("keyboard leave", "device", dev.Name())
}

func (c *Collection) HandleRepeatInfo(dev Device, rate, delay int32) {
	c.log.Debugw("keyboard repeat info", "device", dev.Name(), "rate", rate, "delay", delay)
}

// Close closes every keyboard and empties the collection.
func (c *Collection) Close() error {
	var err error
	for _, kb := range c.keyboards {
		err = multierr.Append(err, kb.Close())
	}
	c.keyboards = nil
	return err
}
