//go:build linux
// +build linux

package monitor

import "golang.org/x/sys/unix"

// maskSymbols maps event mask bits to their single-character codes. The table
// order fixes the position of each character in the rendered code; adding a
// row is all it takes to cover a new mask bit.
var maskSymbols = []struct {
	bit uint64
	sym byte
}{
	{unix.FAN_OPEN, 'O'},
	{unix.FAN_ACCESS, 'R'},
	{unix.FAN_MODIFY, 'W'},
	{unix.FAN_CLOSE_WRITE, 'C'},
	{unix.FAN_CLOSE_NOWRITE, 'c'},
	{unix.FAN_CREATE, '+'},
	{unix.FAN_DELETE, 'D'},
	{unix.FAN_MOVED_FROM, '<'},
	{unix.FAN_MOVED_TO, '>'},
}

// EncodeMask renders an event bitmask as a short symbolic code, one character
// per recognized bit. Unrecognized bits are ignored; a mask with no
// recognized bit renders as "?".
func EncodeMask(mask uint64) string {
	code := make([]byte, 0, len(maskSymbols))
	for _, ms := range maskSymbols {
		if mask&ms.bit != 0 {
			code = append(code, ms.sym)
		}
	}
	if len(code) == 0 {
		return "?"
	}
	return string(code)
}
