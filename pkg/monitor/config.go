//go:build linux
// +build linux

package monitor

import (
	"flag"
	"time"

	"github.com/grafana/dskit/backoff"
	"github.com/grafana/dskit/flagext"
	"github.com/pkg/errors"

	"fsmon/pkg/fanotify"
	"fsmon/pkg/mounts"
)

const defaultQueueSize = 512

// Config holds the fixed startup configuration of the monitor. The event
// mask and retry pause are not exposed as flags; they are injectable for the
// surrounding application but constant for the shipped binary.
type Config struct {
	Filesystems flagext.StringSliceCSV
	QueueSize   int
	EventMask   uint64
	Backoff     backoff.Config
}

// RegisterFlags registers flags and applies defaults.
func (cfg *Config) RegisterFlags(f *flag.FlagSet) {
	cfg.Filesystems = append(flagext.StringSliceCSV(nil), mounts.DefaultFilesystems...)
	f.Var(&cfg.Filesystems, "monitor.filesystems", "Comma-separated filesystem types eligible for monitoring.")
	f.IntVar(&cfg.QueueSize, "monitor.queue-size", defaultQueueSize, "Capacity of the event hand-off queue between the kernel reader and the printer.")
	cfg.EventMask = fanotify.DefaultMountMask
	// min == max keeps the retry pause fixed; MaxRetries 0 retries forever
	cfg.Backoff = backoff.Config{
		MinBackoff: 250 * time.Millisecond,
		MaxBackoff: 250 * time.Millisecond,
		MaxRetries: 0,
	}
}

// Validate checks the configuration.
func (cfg *Config) Validate() error {
	if cfg.QueueSize <= 0 {
		return errors.New("queue size must be positive")
	}
	if len(cfg.Filesystems) == 0 {
		return errors.New("at least one filesystem type must be eligible")
	}
	if cfg.EventMask == 0 {
		return errors.New("event mask must not be empty")
	}
	return nil
}
