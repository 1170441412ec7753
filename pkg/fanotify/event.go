//go:build linux
// +build linux

package fanotify

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

const (
	sizeOfFanotifyEventMetadata = uint32(unsafe.Sizeof(unix.FanotifyEventMetadata{}))
)

// Event is a single notification from the kernel for an object under a
// marked mount.
type Event struct {
	// Mask holds bit mask representing the operation
	Mask uint64
	// Pid is the id of the process that triggered the event
	Pid int32
	// Fd is an open file descriptor for the accessed object, or FAN_NOFD
	// when the kernel attached none (e.g. queue overflow notifications)
	Fd int32
}

// HasFile reports whether the event carries an open file descriptor.
func (e Event) HasFile() bool {
	return e.Fd >= 0
}

// Close releases the event's file descriptor. The receiver of an event owns
// the descriptor and must close it exactly once on every path.
func (e Event) Close() error {
	if !e.HasFile() {
		return nil
	}
	return unix.Close(int(e.Fd))
}

func fanotifyEventOK(meta *unix.FanotifyEventMetadata, n int) bool {
	return (n >= int(sizeOfFanotifyEventMetadata) &&
		meta.Event_len >= sizeOfFanotifyEventMetadata &&
		int(meta.Event_len) <= n)
}

// ReadEvents blocks until at least one event is pending and returns the
// non-empty batch delivered by the kernel, preserving kernel order. The
// notification fd is polled together with the listener's stopper, so a
// concurrent Close unblocks the wait and yields ErrListenerClosed.
// Interrupted polls and reads are retried internally; any other failure is
// returned to the caller.
func (l *Listener) ReadEvents() ([]Event, error) {
	if l == nil {
		return nil, ErrNilListener
	}
	var buf [4096 * sizeOfFanotifyEventMetadata]byte
	for {
		var fds [2]unix.PollFd
		// Fanotify Fd
		fds[0].Fd = int32(l.fd)
		fds[0].Events = unix.POLLIN
		// Stopper/Cancellation Fd
		fds[1].Fd = int32(l.stopper.r.Fd())
		fds[1].Events = unix.POLLIN
		pn, err := unix.Poll(fds[:], -1)
		if err == unix.EINTR || pn == 0 {
			continue
		}
		if err != nil {
			return nil, err
		}
		if fds[1].Revents&unix.POLLIN != 0 {
			// found data on the stopper
			return nil, ErrListenerClosed
		}
		if fds[0].Revents&(unix.POLLERR|unix.POLLHUP|unix.POLLNVAL) != 0 {
			return nil, ErrListenerClosed
		}
		if fds[0].Revents&unix.POLLIN == 0 {
			continue
		}
		n, err := unix.Read(l.fd, buf[:])
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return nil, err
		}
		if n < int(sizeOfFanotifyEventMetadata) {
			// nothing usable was pending after all; keep waiting
			continue
		}
		events := make([]Event, 0, n/int(sizeOfFanotifyEventMetadata))
		i := 0
		for i+int(sizeOfFanotifyEventMetadata) <= n {
			metadata := (*unix.FanotifyEventMetadata)(unsafe.Pointer(&buf[i]))
			if !fanotifyEventOK(metadata, n-i) {
				break
			}
			if metadata.Vers != unix.FANOTIFY_METADATA_VERSION {
				panic("metadata structure from the kernel does not match the structure definition at compile time")
			}
			events = append(events, Event{
				Mask: metadata.Mask,
				Pid:  metadata.Pid,
				Fd:   metadata.Fd,
			})
			i += int(metadata.Event_len)
		}
		if len(events) == 0 {
			continue
		}
		return events, nil
	}
}
