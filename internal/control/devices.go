package control

import (
	"context"
	"fmt"

	"github.com/bnema/seatctl/internal/gateway"
	"github.com/bnema/seatctl/internal/seat"
)

// InputDevices returns the names of seats sharing at least one class with mask,
// in registry order. seat.All lists every seat.
func (c *Controller) InputDevices(ctx context.Context, mask seat.Capability) ([]string, error) {
	var names []string
	err := c.gw.Do(ctx, func(gc *gateway.Context) error {
		for _, s := range gc.Seats().WithCapability(mask) {
			names = append(names, s.Name)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return names, nil
}

// DeviceCapabilities returns the capability mask of the named seat
func (c *Controller) DeviceCapabilities(ctx context.Context, name string) (seat.Capability, error) {
	if name == "" {
		return 0, fmt.Errorf("%w: empty seat name", ErrInvalidArgument)
	}

	var caps seat.Capability
	err := c.gw.Do(ctx, func(gc *gateway.Context) error {
		var ok bool
		caps, ok = gc.Seats().CapabilitiesOf(name)
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownSeat, name)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return caps, nil
}

// Seats returns the seats sharing at least one class with mask, with their capabilities
func (c *Controller) Seats(ctx context.Context, mask seat.Capability) ([]seat.Seat, error) {
	var out []seat.Seat
	err := c.gw.Do(ctx, func(gc *gateway.Context) error {
		out = gc.Seats().WithCapability(mask)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
