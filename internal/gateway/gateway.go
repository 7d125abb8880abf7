// Package gateway provides exclusive, freshly synchronized access to the
// compositor's seat and surface state.
//
// Every control operation runs between Acquire and Release. Acquire blocks until
// no other holder exists, then performs a round-trip with the compositor so the
// registries handed out reflect every request sent before it. The registries
// belong to the returned Context and must not be used after Release.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bnema/seatctl/internal/logger"
	"github.com/bnema/seatctl/internal/seat"
	"github.com/bnema/seatctl/internal/surface"
)

var (
	// ErrAcquireTimeout is returned when the configured acquire timeout expires
	ErrAcquireTimeout = errors.New("timed out acquiring compositor context")

	// ErrReleased is returned when a released Context is used
	ErrReleased = errors.New("compositor context already released")
)

// Snapshot is the compositor-acknowledged state at one sync point
type Snapshot struct {
	Seats    []seat.Seat
	Surfaces []surface.Surface
}

// Syncer performs a round-trip with the compositor
type Syncer interface {
	Sync(ctx context.Context) (Snapshot, error)
}

// Notifier sends fire-and-forget change requests to the compositor. Their effect
// becomes visible in the Snapshot returned by the next Sync.
type Notifier interface {
	NotifyAcceptanceChange(seatName string, id surface.ID, accepted bool) error
	NotifyFocusChange(id surface.ID, mask seat.Capability, set bool) error
	NotifyFocusAtomic(dst, src []surface.ID, mask seat.Capability) error
}

// Backend is the transport a Gateway drives
type Backend interface {
	Syncer
	Notifier
}

// Gateway serializes access to a Backend
type Gateway struct {
	backend Backend
	slot    chan struct{}
	timeout time.Duration
}

// Option configures a Gateway
type Option func(*Gateway)

// WithAcquireTimeout bounds how long Acquire may block. Zero waits forever.
func WithAcquireTimeout(d time.Duration) Option {
	return func(g *Gateway) {
		g.timeout = d
	}
}

// New creates a gateway over the given backend
func New(backend Backend, opts ...Option) *Gateway {
	g := &Gateway{
		backend: backend,
		slot:    make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Acquire blocks until the gateway is free and the compositor state is fresh
func (g *Gateway) Acquire(ctx context.Context) (*Context, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	start := time.Now()
	select {
	case g.slot <- struct{}{}:
	case <-ctx.Done():
		return nil, g.ctxErr(ctx)
	}

	snap, err := g.backend.Sync(ctx)
	if err != nil {
		<-g.slot
		if ctx.Err() != nil {
			return nil, g.ctxErr(ctx)
		}
		return nil, fmt.Errorf("failed to sync with compositor: %w", err)
	}

	seats, err := seat.NewRegistry(snap.Seats)
	if err != nil {
		<-g.slot
		return nil, fmt.Errorf("invalid seat snapshot: %w", err)
	}
	surfaces, err := surface.NewRegistry(snap.Surfaces)
	if err != nil {
		<-g.slot
		return nil, fmt.Errorf("invalid surface snapshot: %w", err)
	}

	logger.Debug("Acquired compositor context",
		"seats", seats.Len(), "surfaces", surfaces.Len(), "wait", time.Since(start))

	return &Context{
		gw:       g,
		seats:    seats,
		surfaces: surfaces,
	}, nil
}

func (g *Gateway) ctxErr(ctx context.Context) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrAcquireTimeout, ctx.Err())
	}
	return ctx.Err()
}

// Release gives the context back. Releasing twice is a no-op.
func (g *Gateway) Release(c *Context) {
	if c == nil || c.gw != g {
		return
	}
	c.once.Do(func() {
		c.released.Store(true)
		<-g.slot
	})
}

// Do acquires a context, runs fn and releases the context on every exit path
func (g *Gateway) Do(ctx context.Context, fn func(*Context) error) error {
	c, err := g.Acquire(ctx)
	if err != nil {
		return err
	}
	defer g.Release(c)
	return fn(c)
}

// Context is exclusive, synchronized access to compositor state
type Context struct {
	gw       *Gateway
	seats    *seat.Registry
	surfaces *surface.Registry

	once     sync.Once
	released atomic.Bool
}

// Seats returns the seat registry as of acquisition
func (c *Context) Seats() *seat.Registry {
	return c.seats
}

// Surfaces returns the surface registry as of acquisition
func (c *Context) Surfaces() *surface.Registry {
	return c.surfaces
}

// NotifyAcceptanceChange asks the compositor to add or remove a seat from a surface
func (c *Context) NotifyAcceptanceChange(seatName string, id surface.ID, accepted bool) error {
	if c.released.Load() {
		return ErrReleased
	}
	return c.gw.backend.NotifyAcceptanceChange(seatName, id, accepted)
}

// NotifyFocusChange asks the compositor to set or clear focus classes on a surface
func (c *Context) NotifyFocusChange(id surface.ID, mask seat.Capability, set bool) error {
	if c.released.Load() {
		return ErrReleased
	}
	return c.gw.backend.NotifyFocusChange(id, mask, set)
}

// NotifyFocusAtomic asks the compositor to move focus from src to dst in one step
func (c *Context) NotifyFocusAtomic(dst, src []surface.ID, mask seat.Capability) error {
	if c.released.Load() {
		return ErrReleased
	}
	return c.gw.backend.NotifyFocusAtomic(dst, src, mask)
}
