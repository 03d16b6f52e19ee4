package xkblayouts

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/miketth/wlkbd/pkg/wlkbd"
)

const evdevXML = `<?xml version="1.0" encoding="UTF-8"?>
<xkbConfigRegistry version="1.1">
  <modelList/>
  <layoutList>
    <layout>
      <configItem>
        <name>us</name>
        <shortDescription>en</shortDescription>
        <description>English (US)</description>
      </configItem>
      <variantList>
        <variant>
          <configItem>
            <name>intl</name>
            <description>English (US, intl., with dead keys)</description>
          </configItem>
        </variant>
      </variantList>
    </layout>
    <layout>
      <configItem>
        <name>de</name>
        <description>German</description>
      </configItem>
      <variantList>
        <variant>
          <configItem>
            <name>nodeadkeys</name>
            <description>German (no dead keys)</description>
          </configItem>
        </variant>
      </variantList>
    </layout>
  </layoutList>
</xkbConfigRegistry>
`

func TestLookup(t *testing.T) {
	registry, err := DecodeRegistry(strings.NewReader(evdevXML))
	require.NoError(t, err)

	tests := []struct {
		description string
		want        wlkbd.Layout
		found       bool
	}{
		{"English (US)", wlkbd.Layout{Code: "us"}, true},
		{"English (US, intl., with dead keys)", wlkbd.Layout{Code: "us", Variant: "intl"}, true},
		{"German", wlkbd.Layout{Code: "de"}, true},
		{"German (no dead keys)", wlkbd.Layout{Code: "de", Variant: "nodeadkeys"}, true},
		{"Klingon", wlkbd.Layout{}, false},
		{"", wlkbd.Layout{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			got, found := registry.Lookup(tt.description)
			assert.Equal(t, tt.found, found)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseRegistry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "evdev.xml")
	require.NoError(t, os.WriteFile(path, []byte(evdevXML), 0o644))

	registry, err := ParseRegistry(path)
	require.NoError(t, err)
	assert.Len(t, registry.LayoutList.Layout, 2)
}

func TestParseRegistryErrors(t *testing.T) {
	_, err := ParseRegistry(filepath.Join(t.TempDir(), "missing.xml"))
	assert.Error(t, err)

	_, err = DecodeRegistry(strings.NewReader("<xkbConfigRegistry><layoutList>"))
	assert.Error(t, err)
}
