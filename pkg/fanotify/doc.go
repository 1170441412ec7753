// Package fanotify wraps the Linux fanotify API for mount-level filesystem
// monitoring.
//
// A Listener owns a single fanotify notification group. Entire mounts are
// marked for watching with child-event propagation enabled, so a filesystem
// tree is observed through one subscription per mount rather than one watch
// per path. Events carry the originating pid and, when the kernel attaches
// one, an open file descriptor for the accessed object.
//
// Creating a Listener requires the CAP_SYS_ADMIN capability.
package fanotify
