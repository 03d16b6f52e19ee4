package keyboard

import (
	"fmt"

	"golang.org/x/sys/unix"
)

type KeymapFormat uint32

const (
	KeymapFormatNoKeymap KeymapFormat = 0
	KeymapFormatXkbV1    KeymapFormat = 1
)

func (f KeymapFormat) String() string {
	switch f {
	case KeymapFormatNoKeymap:
		return "no_keymap"
	case KeymapFormatXkbV1:
		return "xkb_v1"
	}
	return fmt.Sprintf("unknown(%d)", uint32(f))
}

// withMappedKeymap maps size bytes of fd for the duration of fn.
func withMappedKeymap(fd int, size uint32, fn func(text []byte) error) error {
	if size == 0 {
		return ErrEmptyKeymap
	}

	buf, err := unix.Mmap(fd, 0, int(size), unix.PROT_READ, unix.MAP_PRIVATE)
	if err != nil {
		return fmt.Errorf("mmap keymap: %w", err)
	}

	err = fn(buf)

	if unmapErr := unix.Munmap(buf); unmapErr != nil && err == nil {
		err = fmt.Errorf("munmap keymap: %w", unmapErr)
	}

	return err
}
