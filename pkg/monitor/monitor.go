//go:build linux
// +build linux

// Package monitor drives the event pipeline: a producer goroutine drains the
// kernel notification group and forwards events into a bounded channel; the
// consumer resolves identities and prints one line per event.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/grafana/dskit/backoff"
	"github.com/prometheus/client_golang/prometheus"

	"fsmon/pkg/fanotify"
	"fsmon/pkg/resolve"
)

// Source yields batches of kernel events. ReadEvents blocks until a
// non-empty batch is available and returns fanotify.ErrListenerClosed once
// the source has been shut down; any other error is treated as transient.
// *fanotify.Listener is the production implementation.
type Source interface {
	ReadEvents() ([]fanotify.Event, error)
}

// Monitor connects a Source to the output writer through a bounded channel.
type Monitor struct {
	cfg      Config
	source   Source
	resolver *resolve.Resolver
	logger   log.Logger
	metrics  *metrics

	// out receives one line per decoded event; stdout in production
	out io.Writer
}

// New builds a monitor. Diagnostics go to logger, decoded events to stdout.
func New(cfg Config, source Source, resolver *resolve.Resolver, logger log.Logger, reg prometheus.Registerer) *Monitor {
	return &Monitor{
		cfg:      cfg,
		source:   source,
		resolver: resolver,
		logger:   logger,
		metrics:  newMetrics(reg),
		out:      os.Stdout,
	}
}

// Run executes the pipeline until ctx is cancelled. The producer goroutine
// blocks on kernel reads and on channel sends when the queue is full, so a
// slow consumer stalls the producer and overflow is absorbed by the kernel
// queue. The channel is FIFO with a single producer: events reach the
// consumer in kernel order, within and across batches.
func (m *Monitor) Run(ctx context.Context) error {
	events := make(chan fanotify.Event, m.cfg.QueueSize)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(events)
		m.produce(ctx, events)
	}()

	m.consume(events)
	wg.Wait()
	return nil
}

// produce loops on blocking reads, forwarding every event of each batch. A
// failed read is logged and retried after a fixed pause, indefinitely; a
// closed source ends the loop. The context is checked before each read and
// during sends so shutdown cannot stall on a full queue.
func (m *Monitor) produce(ctx context.Context, events chan<- fanotify.Event) {
	retry := backoff.New(ctx, m.cfg.Backoff)
	for ctx.Err() == nil {
		batch, err := m.source.ReadEvents()
		if errors.Is(err, fanotify.ErrListenerClosed) {
			return
		}
		if err != nil {
			m.metrics.readErrors.Inc()
			level.Warn(m.logger).Log("msg", "fanotify read failed", "err", err)
			retry.Wait()
			continue
		}
		retry.Reset()
		for i, ev := range batch {
			select {
			case events <- ev:
			case <-ctx.Done():
				// the consumer will never see the rest of the batch;
				// release its descriptors here
				for _, rest := range batch[i:] {
					rest.Close()
				}
				return
			}
		}
	}
}

// consume drains the channel until the producer closes it.
func (m *Monitor) consume(events <-chan fanotify.Event) {
	for ev := range events {
		m.metrics.eventsTotal.Inc()
		m.print(ev)
	}
}

// print renders a single event as "name(pid): code path". Events without an
// attached descriptor carry nothing to resolve a path from and are dropped.
func (m *Monitor) print(ev fanotify.Event) {
	if !ev.HasFile() {
		m.metrics.eventsNoFile.Inc()
		return
	}
	defer ev.Close()

	name := m.resolver.ProcessName(ev.Pid)
	code := EncodeMask(ev.Mask)
	path, err := resolve.FDPath(int(ev.Fd))
	if err != nil {
		m.metrics.resolveFailures.Inc()
		level.Debug(m.logger).Log("msg", "path resolution failed", "fd", ev.Fd, "err", err)
		path = resolve.UnknownPath
	}
	fmt.Fprintf(m.out, "%s(%d): %-3s %s\n", name, ev.Pid, code, path)
}
