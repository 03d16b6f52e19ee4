package xkblayouts

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"

	"codeberg.org/miketth/wlkbd/pkg/wlkbd"
)

// DefaultPath is where evdev.xml is installed by xkeyboard-config.
const DefaultPath = "/usr/share/X11/xkb/rules/evdev.xml"

func ParseRegistry(path string) (*Registry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	return DecodeRegistry(file)
}

func DecodeRegistry(r io.Reader) (*Registry, error) {
	registry := &Registry{}
	if err := xml.NewDecoder(r).Decode(registry); err != nil {
		return nil, fmt.Errorf("decode xml: %w", err)
	}

	return registry, nil
}

// Lookup finds the layout or variant whose description matches. Keymaps name
// their layouts by description, e.g. "German (no dead keys)".
func (r *Registry) Lookup(description string) (wlkbd.Layout, bool) {
	for _, l := range r.LayoutList.Layout {
		if l.ConfigItem.Description == description {
			return wlkbd.Layout{Code: l.ConfigItem.Name}, true
		}

		for _, v := range l.VariantList.Variant {
			if v.ConfigItem.Description == description {
				return wlkbd.Layout{Code: l.ConfigItem.Name, Variant: v.ConfigItem.Name}, true
			}
		}
	}

	return wlkbd.Layout{}, false
}
