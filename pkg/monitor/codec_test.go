//go:build linux
// +build linux

package monitor

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestEncodeMask(t *testing.T) {
	for _, tc := range []struct {
		name string
		mask uint64
		want string
	}{
		{"open", unix.FAN_OPEN, "O"},
		{"access", unix.FAN_ACCESS, "R"},
		{"modify", unix.FAN_MODIFY, "W"},
		{"close write", unix.FAN_CLOSE_WRITE, "C"},
		{"close nowrite", unix.FAN_CLOSE_NOWRITE, "c"},
		{"create", unix.FAN_CREATE, "+"},
		{"delete", unix.FAN_DELETE, "D"},
		{"moved from", unix.FAN_MOVED_FROM, "<"},
		{"moved to", unix.FAN_MOVED_TO, ">"},
		{"open and access", unix.FAN_OPEN | unix.FAN_ACCESS, "OR"},
		{"empty mask", 0, "?"},
		{"only unrecognized bits", unix.FAN_ONDIR, "?"},
		{"unrecognized bits ignored", unix.FAN_OPEN | unix.FAN_ONDIR, "O"},
		{"full set", unix.FAN_OPEN | unix.FAN_ACCESS | unix.FAN_MODIFY |
			unix.FAN_CLOSE_WRITE | unix.FAN_CLOSE_NOWRITE | unix.FAN_CREATE |
			unix.FAN_DELETE | unix.FAN_MOVED_FROM | unix.FAN_MOVED_TO, "ORWCc+D<>"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, EncodeMask(tc.mask))
			// pure function: same mask, same code
			require.Equal(t, EncodeMask(tc.mask), EncodeMask(tc.mask))
		})
	}
}
