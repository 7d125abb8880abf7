// Package remote implements gateway.Backend over the compositor control socket
package remote

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/bnema/seatctl/internal/gateway"
	"github.com/bnema/seatctl/internal/logger"
	"github.com/bnema/seatctl/internal/seat"
	"github.com/bnema/seatctl/internal/surface"
	"github.com/bnema/seatctl/internal/wire"
)

// Client talks to a compositor control socket. A broken connection is redialed
// on the next request.
type Client struct {
	mu          sync.Mutex
	socketPath  string
	dialTimeout time.Duration
	conn        net.Conn
}

// NewClient creates a client for socketPath. Nothing is dialed until the first request.
func NewClient(socketPath string, dialTimeout time.Duration) *Client {
	if dialTimeout <= 0 {
		dialTimeout = 2 * time.Second
	}
	return &Client{
		socketPath:  socketPath,
		dialTimeout: dialTimeout,
	}
}

// Dial connects immediately, reporting an unreachable socket up front
func (c *Client) Dial(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := c.connLocked(ctx)
	return err
}

// Close closes the connection. Requests already sent are flushed with a final
// sync round-trip first, so the compositor has applied them when Close returns.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return nil
	}
	c.conn.SetDeadline(time.Now().Add(c.dialTimeout))
	if err := wire.WriteMessage(c.conn, wire.NewSyncMessage()); err == nil {
		if _, err := wire.ReadMessage(c.conn); err != nil {
			logger.Debugf("Flush before close failed: %v", err)
		}
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

func (c *Client) connLocked(ctx context.Context) (net.Conn, error) {
	if c.conn != nil {
		return c.conn, nil
	}

	d := net.Dialer{Timeout: c.dialTimeout}
	conn, err := d.DialContext(ctx, "unix", c.socketPath)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to compositor at %s: %w", c.socketPath, err)
	}
	logger.Debug("Connected to compositor control socket", "path", c.socketPath)
	c.conn = conn
	return conn, nil
}

// dropLocked discards a connection after an I/O error
func (c *Client) dropLocked() {
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}

// Sync sends a sync request and waits for the snapshot. Because the socket
// preserves order, the snapshot includes the effect of every earlier request.
func (c *Client) Sync(ctx context.Context) (gateway.Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	conn, err := c.connLocked(ctx)
	if err != nil {
		return gateway.Snapshot{}, err
	}

	if dl, ok := ctx.Deadline(); ok {
		conn.SetDeadline(dl)
	} else {
		conn.SetDeadline(time.Time{})
	}
	// Unblock the read if ctx is cancelled
	stop := context.AfterFunc(ctx, func() {
		conn.SetDeadline(time.Unix(1, 0))
	})
	defer stop()

	if err := wire.WriteMessage(conn, wire.NewSyncMessage()); err != nil {
		c.dropLocked()
		return gateway.Snapshot{}, err
	}

	reply, err := wire.ReadMessage(conn)
	if err != nil {
		c.dropLocked()
		if ctx.Err() != nil {
			return gateway.Snapshot{}, ctx.Err()
		}
		return gateway.Snapshot{}, err
	}

	switch reply.Kind {
	case wire.KindSnapshot:
		return *reply.Snapshot, nil
	case wire.KindError:
		return gateway.Snapshot{}, fmt.Errorf("compositor error: %s", reply.Error)
	default:
		c.dropLocked()
		return gateway.Snapshot{}, fmt.Errorf("unexpected reply kind %q", reply.Kind)
	}
}

// NotifyAcceptanceChange implements gateway.Notifier
func (c *Client) NotifyAcceptanceChange(seatName string, id surface.ID, accepted bool) error {
	return c.send(wire.NewAcceptanceMessage(seatName, id, accepted))
}

// NotifyFocusChange implements gateway.Notifier
func (c *Client) NotifyFocusChange(id surface.ID, mask seat.Capability, set bool) error {
	return c.send(wire.NewFocusMessage(id, mask, set))
}

// NotifyFocusAtomic implements gateway.Notifier
func (c *Client) NotifyFocusAtomic(dst, src []surface.ID, mask seat.Capability) error {
	return c.send(wire.NewFocusAtomicMessage(dst, src, mask))
}

var errNotConnected = errors.New("not connected to compositor")

// send writes a fire-and-forget request on the current connection. Requests are
// never sent on a fresh connection: the sync that validated them happened on
// the old one.
func (c *Client) send(msg *wire.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return errNotConnected
	}
	c.conn.SetWriteDeadline(time.Now().Add(c.dialTimeout))
	if err := wire.WriteMessage(c.conn, msg); err != nil {
		c.dropLocked()
		return err
	}
	return nil
}
