package wlkbd

import (
	"strings"

	evdev "github.com/holoplot/go-evdev"
	"go.uber.org/zap"

	"codeberg.org/miketth/wlkbd/pkg/keyboard"
)

// Recorder logs key events and counts key presses per device.
type Recorder struct {
	store   PressStore
	layouts LayoutResolver
	log     *zap.SugaredLogger
}

// NewRecorder creates a Recorder. store and layouts may be nil.
func NewRecorder(store PressStore, layouts LayoutResolver, log *zap.SugaredLogger) *Recorder {
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	return &Recorder{
		store:   store,
		layouts: layouts,
		log:     log,
	}
}

// HandleKey is a keyboard.EventFunc.
func (r *Recorder) HandleKey(_ *keyboard.Collection, kb *keyboard.Keyboard, code uint32, pressed bool) {
	device := kb.Device().Name()
	sym := kb.KeySymName(code)

	r.log.Debugw("key",
		"device", device,
		"code", code,
		"key", KeyName(code),
		"sym", sym,
		"text", kb.KeyUTF8(code),
		"layout", r.layoutCode(kb.LayoutName()),
		"pressed", pressed,
	)

	if !pressed || r.store == nil {
		return
	}

	if err := r.store.RecordPress(device, code, sym); err != nil {
		r.log.Errorw("record key press", "device", device, "code", code, "error", err)
	}
}

// layoutCode turns a layout description such as "English (US)" into "us",
// or returns the description when it is not in the registry.
func (r *Recorder) layoutCode(description string) string {
	if r.layouts == nil || description == "" {
		return description
	}

	layout, ok := r.layouts.Lookup(description)
	if !ok {
		return description
	}
	if layout.Variant == "" {
		return layout.Code
	}
	return layout.Code + "(" + layout.Variant + ")"
}

// KeyName returns the evdev name of an xkb key code, e.g. "KEY_A" for 38.
func KeyName(code uint32) string {
	if code < keyboard.KeycodeOffset {
		return ""
	}

	name, ok := evdev.KEYToString[evdev.EvCode(code-keyboard.KeycodeOffset)]
	if !ok {
		return ""
	}
	// some codes have aliases joined with "/"
	name, _, _ = strings.Cut(name, "/")
	return name
}
