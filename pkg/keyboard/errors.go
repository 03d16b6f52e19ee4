package keyboard

import "errors"

var (
	ErrUnknownDevice     = errors.New("device is not tracked")
	ErrDuplicateDevice   = errors.New("device is already tracked")
	ErrUnsupportedFormat = errors.New("unsupported keymap format")
	ErrEmptyKeymap       = errors.New("empty keymap")
	ErrNoKeymap          = errors.New("keyboard has no keymap")
	ErrUnknownKeyState   = errors.New("unknown key state")
)
