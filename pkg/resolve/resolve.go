// Package resolve turns the raw identifiers carried by kernel events — a pid
// and an open file descriptor — into human-meaningful strings. Both lookups
// go through procfs and are inherently racy: the process or file may be gone
// by the time the event is handled. They are best-effort and never fatal.
package resolve

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/prometheus/procfs"
)

const (
	// UnknownProcess is substituted when a process name cannot be resolved.
	UnknownProcess = "unknown"
	// UnknownPath is substituted when a descriptor cannot be resolved to a path.
	UnknownPath = "[unknown]"
)

// Resolver looks up process names from a proc filesystem.
type Resolver struct {
	fs procfs.FS
}

// New returns a resolver reading from the proc filesystem mounted at the
// given path, usually procfs.DefaultMountPoint.
func New(procMount string) (*Resolver, error) {
	fs, err := procfs.NewFS(procMount)
	if err != nil {
		return nil, errors.Wrapf(err, "opening procfs at %s", procMount)
	}
	return &Resolver{fs: fs}, nil
}

// ProcessName returns the command name recorded for pid. Non-positive pids
// indicate a malformed or absent originator and resolve to UnknownProcess
// without any lookup; so does any lookup failure, since the process may have
// exited between event delivery and resolution.
func (r *Resolver) ProcessName(pid int32) string {
	if pid <= 0 {
		return UnknownProcess
	}
	proc, err := r.fs.Proc(int(pid))
	if err != nil {
		return UnknownProcess
	}
	comm, err := proc.Comm()
	if err != nil || comm == "" {
		return UnknownProcess
	}
	return comm
}

// FDPath resolves an open descriptor of this process to the path it
// referenced at open time, via the per-process descriptor table.
func FDPath(fd int) (string, error) {
	path, err := os.Readlink(fmt.Sprintf("/proc/self/fd/%d", fd))
	if err != nil {
		return "", errors.Wrapf(err, "resolving fd %d", fd)
	}
	return path, nil
}
