package wlkbd

// KeyPress is the number of times a key was pressed on a device.
type KeyPress struct {
	Code  uint32
	Sym   string
	Count int
}

type PressStore interface {
	RecordPress(device string, code uint32, sym string) error
	GetPresses(device string) (map[uint32]KeyPress, error)
	GetDevices() ([]string, error)
}

type Layout struct {
	Code    string
	Variant string
}

type LayoutResolver interface {
	Lookup(description string) (Layout, bool)
}
