// Package transport implements the loopback event channel between
// intercepted compiler processes and the orchestrator's collector.
package transport

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"sync/atomic"
	"time"

	"github.com/banksean/bear/internal/event"
)

// Collector binds a TCP listener on 127.0.0.1 and accepts one
// connection per reported Event. It runs a single accept loop; per-
// connection work is synchronous because connections are short-lived.
type Collector struct {
	listener net.Listener
	shutdown atomic.Bool
}

// NewCollector binds a loopback listener on an ephemeral port.
func NewCollector() (*Collector, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("bind loopback collector: %w", err)
	}
	return &Collector{listener: listener}, nil
}

// Address returns the "host:port" children should report events to.
func (c *Collector) Address() string {
	return c.listener.Addr().String()
}

// Collect runs the accept loop, sending every successfully decoded
// Event to dst, until Stop is called or the listener is closed out
// from under it. Transport errors on individual connections are
// logged and non-fatal: the build continues and other events are
// still captured. Collect returns when the listener closes.
func (c *Collector) Collect(ctx context.Context, dst chan<- event.Event) error {
	for {
		if c.shutdown.Load() {
			return nil
		}

		conn, err := c.listener.Accept()
		if err != nil {
			if c.shutdown.Load() {
				return nil
			}
			return fmt.Errorf("collector accept: %w", err)
		}

		ev, err := event.ReadFrom(conn)
		conn.Close()
		if err != nil {
			// After Stop, a connection with no frame is Stop's own
			// self-dial rather than a reporter error.
			if c.shutdown.Load() {
				return nil
			}
			slog.ErrorContext(ctx, "Collector.Collect: reporter connection error", "error", err)
			continue
		}

		select {
		case dst <- ev:
		case <-ctx.Done():
			return nil
		}
	}
}

// Stop unblocks a blocked Accept by dialing the listener once, then
// tells Collect to exit on its next iteration.
func (c *Collector) Stop() error {
	c.shutdown.Store(true)
	conn, err := net.DialTimeout("tcp", c.listener.Addr().String(), time.Second)
	if err != nil {
		// The listener may already be gone; that's fine, Collect will
		// observe the accept error and return.
		return nil
	}
	return conn.Close()
}

// Close releases the listener. Call after Collect has returned.
func (c *Collector) Close() error {
	return c.listener.Close()
}

// Reporter sends a single Event to a remote Collector. It is
// stateless with respect to connections: every call opens a fresh TCP
// connection, writes one framed event, and closes it.
type Reporter struct {
	Destination string
}

// NewReporter creates a Reporter targeting the given collector address.
// It does not open a connection until Report is called.
func NewReporter(destination string) *Reporter {
	return &Reporter{Destination: destination}
}

// Report opens a connection to the collector, writes ev, and closes
// the connection. Connection failures (e.g. during a shutdown race)
// are returned to the caller, which — in the preload shim and wrapper
// executable — must treat them as non-fatal: reporting must never
// break the compiler invocation being observed.
func (r *Reporter) Report(ev event.Event) error {
	conn, err := net.DialTimeout("tcp", r.Destination, 5*time.Second)
	if err != nil {
		return fmt.Errorf("dial collector: %w", err)
	}
	defer conn.Close()

	if _, err := event.WriteInto(conn, ev); err != nil {
		return fmt.Errorf("report event: %w", err)
	}
	return nil
}
