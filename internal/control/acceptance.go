package control

import (
	"context"
	"fmt"

	"github.com/bnema/seatctl/internal/gateway"
	"github.com/bnema/seatctl/internal/logger"
	"github.com/bnema/seatctl/internal/surface"
)

// AcceptanceDiff is the set of seats to add to and remove from a surface
type AcceptanceDiff struct {
	Accept []string
	Revoke []string
}

// Empty reports whether the diff changes nothing
func (d AcceptanceDiff) Empty() bool {
	return len(d.Accept) == 0 && len(d.Revoke) == 0
}

// DiffAcceptance computes the minimal change turning current into desired.
// Accept follows the order of desired, Revoke the order of current; duplicate
// names in desired are collapsed.
func DiffAcceptance(current, desired []string) AcceptanceDiff {
	have := make(map[string]bool, len(current))
	for _, name := range current {
		have[name] = true
	}
	want := make(map[string]bool, len(desired))

	var d AcceptanceDiff
	for _, name := range desired {
		if want[name] {
			continue
		}
		want[name] = true
		if !have[name] {
			d.Accept = append(d.Accept, name)
		}
	}
	for _, name := range current {
		if !want[name] {
			d.Revoke = append(d.Revoke, name)
		}
	}
	return d
}

// SetAcceptance makes the surface accept input from exactly the given seats.
// Every seat must exist; an unknown seat fails the whole request before anything
// is sent. Seats already in the desired state produce no request.
func (c *Controller) SetAcceptance(ctx context.Context, id surface.ID, seats []string) error {
	return c.gw.Do(ctx, func(gc *gateway.Context) error {
		surf, ok := gc.Surfaces().Find(id)
		if !ok {
			logger.Warn("Cannot set input acceptance", "surface", id, "err", ErrUnknownSurface)
			return fmt.Errorf("%w: %d", ErrUnknownSurface, id)
		}

		for _, name := range seats {
			if !gc.Seats().Has(name) {
				logger.Warn("Cannot set input acceptance", "surface", id, "seat", name, "err", ErrUnknownSeat)
				return fmt.Errorf("%w: %q", ErrUnknownSeat, name)
			}
		}

		diff := DiffAcceptance(surf.AcceptedSeats, seats)
		for _, name := range diff.Accept {
			if err := gc.NotifyAcceptanceChange(name, id, true); err != nil {
				return fmt.Errorf("failed to accept seat %q on surface %d: %w", name, id, err)
			}
			logger.Debug("Requested input acceptance", "surface", id, "seat", name)
		}
		for _, name := range diff.Revoke {
			if err := gc.NotifyAcceptanceChange(name, id, false); err != nil {
				return fmt.Errorf("failed to revoke seat %q on surface %d: %w", name, id, err)
			}
			logger.Debug("Requested input revocation", "surface", id, "seat", name)
		}
		return nil
	})
}

// Acceptance returns the seats the surface currently accepts input from.
// The returned slice is owned by the caller.
func (c *Controller) Acceptance(ctx context.Context, id surface.ID) ([]string, error) {
	var out []string
	err := c.gw.Do(ctx, func(gc *gateway.Context) error {
		surf, ok := gc.Surfaces().Find(id)
		if !ok {
			return fmt.Errorf("%w: %d", ErrUnknownSurface, id)
		}
		out = make([]string, len(surf.AcceptedSeats))
		copy(out, surf.AcceptedSeats)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Surfaces returns a copy of every known surface in registry order
func (c *Controller) Surfaces(ctx context.Context) ([]surface.Surface, error) {
	var out []surface.Surface
	err := c.gw.Do(ctx, func(gc *gateway.Context) error {
		out = gc.Surfaces().All()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
