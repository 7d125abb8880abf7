package control

import (
	"context"
	"fmt"

	"github.com/bnema/seatctl/internal/gateway"
	"github.com/bnema/seatctl/internal/logger"
	"github.com/bnema/seatctl/internal/seat"
	"github.com/bnema/seatctl/internal/surface"
)

// FocusEntry is one surface's focus state
type FocusEntry struct {
	Surface surface.ID
	Focus   seat.Capability
}

// SetFocus sets or clears the focus classes in mask on each surface, in order.
// Pointer and touch focus can only be set on a single surface. Every id must
// exist; an unknown id fails the request before anything is sent.
func (c *Controller) SetFocus(ctx context.Context, ids []surface.ID, mask seat.Capability, set bool) error {
	if len(ids) == 0 {
		return fmt.Errorf("%w: no surfaces given", ErrInvalidArgument)
	}
	if set && mask.Has(seat.Exclusive) && len(ids) > 1 {
		logger.Warn("Rejected focus request", "surfaces", ids, "mask", mask, "err", ErrExclusivityViolation)
		return ErrExclusivityViolation
	}

	return c.gw.Do(ctx, func(gc *gateway.Context) error {
		for _, id := range ids {
			if !gc.Surfaces().Has(id) {
				logger.Warn("Cannot set input focus", "surface", id, "err", ErrUnknownSurface)
				return fmt.Errorf("%w: %d", ErrUnknownSurface, id)
			}
		}

		for _, id := range ids {
			if err := gc.NotifyFocusChange(id, mask, set); err != nil {
				return fmt.Errorf("failed to change focus of surface %d: %w", id, err)
			}
			logger.Debug("Requested focus change", "surface", id, "mask", mask, "set", set)
		}
		return nil
	})
}

// SetFocusAtomic moves the focus classes in mask from the src surfaces to the
// dst surfaces as one compositor step. Unknown ids are dropped; if nothing known
// remains, ErrNoOp is returned and nothing is sent.
func (c *Controller) SetFocusAtomic(ctx context.Context, dst, src []surface.ID, mask seat.Capability) error {
	if len(dst) == 0 && len(src) == 0 {
		return fmt.Errorf("%w: no surfaces given", ErrInvalidArgument)
	}
	if mask.Has(seat.Exclusive) && len(dst) > 1 {
		logger.Warn("Rejected atomic focus request", "dst", dst, "mask", mask, "err", ErrExclusivityViolation)
		return ErrExclusivityViolation
	}

	return c.gw.Do(ctx, func(gc *gateway.Context) error {
		known := func(ids []surface.ID) []surface.ID {
			var out []surface.ID
			for _, id := range ids {
				if gc.Surfaces().Has(id) {
					out = append(out, id)
				} else {
					logger.Debug("Dropping unknown surface from focus transfer", "surface", id)
				}
			}
			return out
		}

		validDst, validSrc := known(dst), known(src)
		if len(validDst) == 0 && len(validSrc) == 0 {
			return ErrNoOp
		}

		if err := gc.NotifyFocusAtomic(validDst, validSrc, mask); err != nil {
			return fmt.Errorf("failed to transfer focus: %w", err)
		}
		logger.Debug("Requested atomic focus transfer", "dst", validDst, "src", validSrc, "mask", mask)
		return nil
	})
}

// Focus returns every known surface's focus mask in registry order
func (c *Controller) Focus(ctx context.Context) ([]FocusEntry, error) {
	var out []FocusEntry
	err := c.gw.Do(ctx, func(gc *gateway.Context) error {
		all := gc.Surfaces().All()
		out = make([]FocusEntry, len(all))
		for i, s := range all {
			out[i] = FocusEntry{Surface: s.ID, Focus: s.Focus}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
