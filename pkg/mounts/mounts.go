// Package mounts enumerates mounted filesystems eligible for monitoring.
package mounts

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// DefaultProcMounts is the live mount table exposed by the kernel.
const DefaultProcMounts = "/proc/mounts"

// DefaultFilesystems lists the filesystem types accepted for monitoring.
// Pseudo filesystems (proc, sysfs, cgroup, ...) are excluded by omission.
var DefaultFilesystems = []string{"ext4", "xfs", "btrfs", "vfat"}

// Mount is one accepted record from the mount table.
type Mount struct {
	Device string
	Path   string
	FSType string
}

// Enumerator filters the mount table down to the allow-listed filesystem
// types. The zero value is not usable; construct with NewEnumerator.
type Enumerator struct {
	procMounts  string
	filesystems map[string]struct{}
	logger      log.Logger
}

// NewEnumerator returns an enumerator reading the default mount table and
// accepting the given filesystem types.
func NewEnumerator(filesystems []string, logger log.Logger) *Enumerator {
	allowed := make(map[string]struct{}, len(filesystems))
	for _, fs := range filesystems {
		allowed[fs] = struct{}{}
	}
	return &Enumerator{
		procMounts:  DefaultProcMounts,
		filesystems: allowed,
		logger:      logger,
	}
}

// List returns one Mount per accepted record of the live mount table. An
// unreadable table degrades to an empty result; monitoring nothing is
// preferable to failing outright, and the caller reports the empty set.
func (e *Enumerator) List() []Mount {
	f, err := os.Open(e.procMounts)
	if err != nil {
		level.Warn(e.logger).Log("msg", "cannot read mount table", "path", e.procMounts, "err", err)
		return nil
	}
	defer f.Close()
	return e.parse(f)
}

// parse keeps records whose third field is an accepted filesystem type.
// Records with fewer than 3 whitespace-separated fields are skipped.
func (e *Enumerator) parse(r io.Reader) []Mount {
	var accepted []Mount
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 3 {
			continue
		}
		if _, ok := e.filesystems[fields[2]]; !ok {
			continue
		}
		accepted = append(accepted, Mount{
			Device: fields[0],
			Path:   fields[1],
			FSType: fields[2],
		})
	}
	return accepted
}
