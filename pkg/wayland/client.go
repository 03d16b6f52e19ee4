// Package wayland connects keyboard.Collection to the keyboards of a Wayland
// display.
package wayland

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/rajveermalviya/go-wayland/wayland/client"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sys/unix"

	"codeberg.org/miketth/wlkbd/pkg/keyboard"
)

type Client struct {
	display  *client.Display
	registry *client.Registry
	seats    map[uint32]*seat

	keyboards *keyboard.Collection
	log       *zap.SugaredLogger

	// err is the first error raised by an event handler. It stops Run.
	err          error
	disconnected atomic.Bool
}

// Connect connects to the display (empty for $WAYLAND_DISPLAY) and adds the
// keyboards of all seats to keyboards.
func Connect(addr string, keyboards *keyboard.Collection, log *zap.SugaredLogger) (*Client, error) {
	display, err := client.Connect(addr)
	if err != nil {
		return nil, fmt.Errorf("connect to display: %w", err)
	}

	c := &Client{
		display:   display,
		seats:     make(map[uint32]*seat),
		keyboards: keyboards,
		log:       log,
	}

	display.SetErrorHandler(func(e client.DisplayErrorEvent) {
		c.check(fmt.Errorf("display error %d: %s", e.Code, e.Message))
	})

	registry, err := display.GetRegistry()
	if err != nil {
		_ = display.Context().Close()
		return nil, fmt.Errorf("get registry: %w", err)
	}
	c.registry = registry
	registry.SetGlobalHandler(c.handleGlobal)
	registry.SetGlobalRemoveHandler(c.handleGlobalRemove)

	// first round trip binds the seats, second one delivers their capabilities
	for i := 0; i < 2; i++ {
		if err := c.roundTrip(); err != nil {
			_ = c.Close()
			return nil, fmt.Errorf("initial round trip: %w", err)
		}
	}

	return c, nil
}

// Run dispatches events until ctx is cancelled or a handler fails.
func (c *Client) Run(ctx context.Context) error {
	stop := context.AfterFunc(ctx, c.disconnect)
	defer stop()

	for {
		if err := c.display.Context().Dispatch(); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("dispatch: %w", err)
		}

		if c.err != nil {
			return c.err
		}
	}
}

// Close releases all keyboards and seats and closes the connection.
func (c *Client) Close() error {
	err := c.keyboards.Close()

	if !c.disconnected.Load() {
		for _, s := range c.seats {
			err = multierr.Append(err, s.release())
		}
	}
	c.seats = make(map[uint32]*seat)

	c.disconnect()
	return err
}

func (c *Client) disconnect() {
	if c.disconnected.Swap(true) {
		return
	}
	if err := c.display.Context().Close(); err != nil {
		c.log.Debugw("close display connection", "error", err)
	}
}

func (c *Client) check(err error) {
	if err == nil {
		return
	}

	c.log.Errorw("keyboard event failed", "error", err)
	if c.err == nil {
		c.err = err
	}
}

func (c *Client) roundTrip() error {
	callback, err := c.display.Sync()
	if err != nil {
		return fmt.Errorf("sync: %w", err)
	}
	defer func() {
		_ = callback.Destroy()
	}()

	done := false
	callback.SetDoneHandler(func(client.CallbackDoneEvent) {
		done = true
	})

	for !done {
		if err := c.display.Context().Dispatch(); err != nil {
			return fmt.Errorf("dispatch: %w", err)
		}
	}

	return c.err
}

func (c *Client) handleGlobal(e client.RegistryGlobalEvent) {
	if e.Interface != "wl_seat" {
		return
	}

	version := seatVersion(e.Version)
	proxy := client.NewSeat(c.display.Context())
	if err := c.registry.Bind(e.Name, e.Interface, version, proxy); err != nil {
		c.check(fmt.Errorf("bind wl_seat %d: %w", e.Name, err))
		return
	}

	s := newSeat(e.Name, version, proxy)
	c.seats[e.Name] = s

	proxy.SetNameHandler(func(ev client.SeatNameEvent) {
		s.label = ev.Name
	})
	proxy.SetCapabilitiesHandler(func(ev client.SeatCapabilitiesEvent) {
		c.handleCapabilities(s, ev.Capabilities)
	})

	c.log.Debugw("bound seat", "global", e.Name, "version", version)
}

func (c *Client) handleGlobalRemove(e client.RegistryGlobalRemoveEvent) {
	s, ok := c.seats[e.Name]
	if !ok {
		return
	}
	delete(c.seats, e.Name)

	if s.device != nil {
		c.detachKeyboard(s)
	}
	c.check(s.release())
}

func (c *Client) handleCapabilities(s *seat, capabilities uint32) {
	switch has := hasKeyboard(capabilities); {
	case has && s.device == nil:
		c.attachKeyboard(s)
	case !has && s.device != nil:
		c.detachKeyboard(s)
	}
}

func (c *Client) attachKeyboard(s *seat) {
	proxy, err := s.proxy.GetKeyboard()
	if err != nil {
		c.check(fmt.Errorf("get keyboard for %s: %w", s.label, err))
		return
	}

	dev := &device{proxy: proxy, seat: s, client: c}
	if _, err := c.keyboards.Add(dev); err != nil {
		c.check(multierr.Append(err, dev.Release()))
		return
	}
	s.device = dev

	proxy.SetKeymapHandler(func(e client.KeyboardKeymapEvent) {
		defer closeFd(e.Fd, c.log)
		c.check(c.keyboards.HandleKeymap(dev, keyboard.KeymapFormat(e.Format), e.Fd, e.Size))
	})
	proxy.SetEnterHandler(func(e client.KeyboardEnterEvent) {
		c.keyboards.HandleEnter(dev, decodeKeys(e.Keys))
	})
	proxy.SetLeaveHandler(func(client.KeyboardLeaveEvent) {
		c.keyboards.HandleLeave(dev)
	})
	proxy.SetKeyHandler(func(e client.KeyboardKeyEvent) {
		c.check(c.keyboards.HandleKey(dev, e.Key, keyboard.KeyState(e.State)))
	})
	proxy.SetModifiersHandler(func(e client.KeyboardModifiersEvent) {
		c.check(c.keyboards.HandleModifiers(dev, e.ModsDepressed, e.ModsLatched, e.ModsLocked, e.Group))
	})
	proxy.SetRepeatInfoHandler(func(e client.KeyboardRepeatInfoEvent) {
		c.keyboards.HandleRepeatInfo(dev, e.Rate, e.Delay)
	})

	c.log.Infow("keyboard attached", "seat", s.label)
}

func (c *Client) detachKeyboard(s *seat) {
	dev := s.device
	s.device = nil

	c.check(c.keyboards.Remove(dev))
	c.log.Infow("keyboard detached", "seat", s.label)
}

func closeFd(fd int, log *zap.SugaredLogger) {
	if err := unix.Close(fd); err != nil {
		log.Debugw("close keymap fd", "fd", fd, "error", err)
	}
}
