//go:build linux
// +build linux

package fanotify

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/syndtr/gocapability/capability"
	"golang.org/x/sys/unix"
)

var (
	// ErrCapSysAdmin indicates caller is missing CAP_SYS_ADMIN permissions
	ErrCapSysAdmin = errors.New("require CAP_SYS_ADMIN capability")
	// ErrNilListener indicates the listener is nil
	ErrNilListener = errors.New("nil listener")
	// ErrListenerClosed indicates the listener has been closed and no
	// further events will be delivered
	ErrListenerClosed = errors.New("listener closed")
)

const (
	initFlags  = unix.FAN_CLASS_NOTIF | unix.FAN_CLOEXEC
	eventFlags = unix.O_RDONLY | unix.O_LARGEFILE | unix.O_CLOEXEC
)

// DefaultMountMask is the event mask armed on each marked mount: file opens,
// read accesses, and propagation of both to children of marked directories.
const DefaultMountMask = unix.FAN_OPEN | unix.FAN_ACCESS | unix.FAN_EVENT_ON_CHILD

// Listener represents a fanotify notification group that holds the set of
// mounts for which events shall be created.
type Listener struct {
	// fd returned by fanotify_init
	fd int
	// mounts already marked; marking is idempotent per path
	marks map[string]bool
	// stopper unblocks a pending ReadEvents when the listener is closed
	stopper struct {
		r *os.File
		w *os.File
	}
	closeOnce sync.Once
}

// NewListener initializes a fanotify notification group and returns a
// listener from which events can be read. Mounts are added to the watch set
// with AddMount.
//
// NOTE that this call requires CAP_SYS_ADMIN privilege
func NewListener() (*Listener, error) {
	capSysAdmin, err := checkCapSysAdmin()
	if err != nil {
		return nil, err
	}
	if !capSysAdmin {
		return nil, ErrCapSysAdmin
	}
	fd, err := unix.FanotifyInit(initFlags, eventFlags)
	if err != nil {
		return nil, fmt.Errorf("fanotify_init: %w", err)
	}
	r, w, err := os.Pipe()
	if err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("stopper pipe: %w", err)
	}
	listener := &Listener{
		fd:    fd,
		marks: make(map[string]bool),
	}
	listener.stopper.r = r
	listener.stopper.w = w
	return listener, nil
}

// AddMount marks the mount containing path for watching with the given event
// mask. The path is opened as a directory-scoped path reference so the mark
// applies to the whole mount. Marking the same path again is a no-op.
//
// Marks are never removed; they are released by the kernel when the
// notification group is closed.
func (l *Listener) AddMount(path string, mask uint64) error {
	if l == nil {
		return ErrNilListener
	}
	if l.marks[path] {
		return nil
	}
	dirfd, err := unix.Open(path, unix.O_PATH|unix.O_DIRECTORY|unix.O_CLOEXEC, 0)
	if err != nil {
		return fmt.Errorf("open mountpoint %s: %w", path, err)
	}
	defer unix.Close(dirfd)
	if err := unix.FanotifyMark(l.fd, unix.FAN_MARK_ADD|unix.FAN_MARK_MOUNT, mask, dirfd, "."); err != nil {
		return fmt.Errorf("fanotify_mark %s: %w", path, err)
	}
	l.marks[path] = true
	return nil
}

// Close stops the listener and closes the notification group. A goroutine
// blocked in ReadEvents is woken through the stopper and observes
// ErrListenerClosed. Pending events and all marks are discarded by the
// kernel. Close is safe to call more than once and from a goroutine other
// than the reader.
func (l *Listener) Close() {
	if l == nil {
		return
	}
	l.closeOnce.Do(func() {
		// stop the listener, then release the group
		unix.Write(int(l.stopper.w.Fd()), []byte("stop"))
		unix.Close(l.fd)
	})
}

// return true if process has CAP_SYS_ADMIN privilege
// else return false
func checkCapSysAdmin() (bool, error) {
	capabilities, err := capability.NewPid2(os.Getpid())
	if err != nil {
		return false, err
	}
	if err := capabilities.Load(); err != nil {
		return false, err
	}
	capSysAdmin := capabilities.Get(capability.EFFECTIVE, capability.CAP_SYS_ADMIN)
	return capSysAdmin, nil
}
