//go:build linux
// +build linux

package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/procfs"

	"fsmon/pkg/fanotify"
	"fsmon/pkg/monitor"
	"fsmon/pkg/mounts"
	"fsmon/pkg/resolve"
)

func main() {
	var cfg monitor.Config
	cfg.RegisterFlags(flag.CommandLine)
	flag.Parse()

	logger := log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))
	logger = log.With(logger, "ts", log.DefaultTimestampUTC, "caller", log.DefaultCaller)

	if err := cfg.Validate(); err != nil {
		level.Error(logger).Log("msg", "invalid configuration", "err", err)
		os.Exit(1)
	}

	listener, err := fanotify.NewListener()
	if err != nil {
		level.Error(logger).Log("msg", "initializing fanotify", "err", err)
		os.Exit(1)
	}
	defer listener.Close()

	resolver, err := resolve.New(procfs.DefaultMountPoint)
	if err != nil {
		level.Error(logger).Log("msg", "opening procfs", "err", err)
		os.Exit(1)
	}

	targets := mounts.NewEnumerator(cfg.Filesystems, logger).List()
	if len(targets) == 0 {
		level.Info(logger).Log("msg", "no suitable mounts found to monitor")
		return
	}

	marked := 0
	for _, mt := range targets {
		if err := listener.AddMount(mt.Path, cfg.EventMask); err != nil {
			level.Warn(logger).Log("msg", "failed to mark mount", "mount", mt.Path, "device", mt.Device, "err", err)
			continue
		}
		level.Info(logger).Log("msg", "watching mount", "mount", mt.Path, "device", mt.Device, "fstype", mt.FSType)
		marked++
	}
	if marked == 0 {
		level.Info(logger).Log("msg", "no mounts could be marked, nothing to monitor")
		return
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// a signal must also wake the reader blocked on the kernel fd
	go func() {
		<-ctx.Done()
		listener.Close()
	}()

	m := monitor.New(cfg, listener, resolver, logger, prometheus.DefaultRegisterer)
	if err := m.Run(ctx); err != nil {
		level.Error(logger).Log("msg", "monitor stopped", "err", err)
		os.Exit(1)
	}
	level.Info(logger).Log("msg", "shutting down")
}
