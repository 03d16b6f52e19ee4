package main

import (
	"cmp"
	"fmt"
	"io"
	"slices"
	"text/tabwriter"

	"codeberg.org/miketth/wlkbd/pkg/wlkbd"
)

// printPresses writes the top most pressed keys of a device, most pressed
// first. top <= 0 prints all of them.
func printPresses(w io.Writer, device string, presses map[uint32]wlkbd.KeyPress, top int) {
	sorted := make([]wlkbd.KeyPress, 0, len(presses))
	for _, press := range presses {
		sorted = append(sorted, press)
	}
	slices.SortFunc(sorted, func(a, b wlkbd.KeyPress) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Code, b.Code)
	})
	if top > 0 && len(sorted) > top {
		sorted = sorted[:top]
	}

	total := 0
	for _, press := range presses {
		total += press.Count
	}

	fmt.Fprintf(w, "%s (%d presses)\n", device, total)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, press := range sorted {
		fmt.Fprintf(tw, "  %d\t%s\t%s\t%d\n", press.Code, wlkbd.KeyName(press.Code), press.Sym, press.Count)
	}
	_ = tw.Flush()
}
