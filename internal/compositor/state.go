// Package compositor is a reference implementation of the compositor side of the
// input control protocol. It keeps the authoritative seat and surface state,
// applies change requests to it and serves it over a unix socket.
package compositor

import (
	"context"
	"fmt"
	"sync"

	"github.com/bnema/seatctl/internal/gateway"
	"github.com/bnema/seatctl/internal/seat"
	"github.com/bnema/seatctl/internal/surface"
)

// State is the authoritative seat and surface state. It implements
// gateway.Backend so it can also be driven in-process.
type State struct {
	mu       sync.Mutex
	seats    []seat.Seat
	surfaces []*surface.Surface
}

// NewState creates an empty state
func NewState() *State {
	return &State{}
}

// AddSeat registers a seat, or updates its capabilities if it already exists
func (s *State) AddSeat(st seat.Seat) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.seats {
		if s.seats[i].Name == st.Name {
			s.seats[i].Capabilities = st.Capabilities
			return
		}
	}
	s.seats = append(s.seats, st)
}

// RemoveSeat unregisters a seat and drops it from every surface's acceptance set
func (s *State) RemoveSeat(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.seatIndex(name)
	if idx < 0 {
		return false
	}
	s.seats = append(s.seats[:idx], s.seats[idx+1:]...)

	for _, surf := range s.surfaces {
		surf.AcceptedSeats = removeName(surf.AcceptedSeats, name)
	}
	return true
}

// AddSurface registers a surface with no accepted seats and no focus
func (s *State) AddSurface(id surface.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.surface(id) != nil {
		return fmt.Errorf("surface %d already exists", id)
	}
	s.surfaces = append(s.surfaces, &surface.Surface{ID: id})
	return nil
}

// RemoveSurface unregisters a surface
func (s *State) RemoveSurface(id surface.ID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, surf := range s.surfaces {
		if surf.ID == id {
			s.surfaces = append(s.surfaces[:i], s.surfaces[i+1:]...)
			return true
		}
	}
	return false
}

// Sync returns a deep copy of the current state
func (s *State) Sync(ctx context.Context) (gateway.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := gateway.Snapshot{
		Seats:    make([]seat.Seat, len(s.seats)),
		Surfaces: make([]surface.Surface, len(s.surfaces)),
	}
	copy(snap.Seats, s.seats)
	for i, surf := range s.surfaces {
		snap.Surfaces[i] = surf.Clone()
	}
	return snap, nil
}

// NotifyAcceptanceChange adds or removes a seat from a surface's acceptance set
func (s *State) NotifyAcceptanceChange(seatName string, id surface.ID, accepted bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	surf := s.surface(id)
	if surf == nil {
		return fmt.Errorf("no such surface %d", id)
	}
	if s.seatIndex(seatName) < 0 {
		return fmt.Errorf("no such seat %q", seatName)
	}

	if accepted {
		if !surf.Accepts(seatName) {
			surf.AcceptedSeats = append(surf.AcceptedSeats, seatName)
		}
		return nil
	}
	surf.AcceptedSeats = removeName(surf.AcceptedSeats, seatName)
	return nil
}

// NotifyFocusChange sets or clears focus classes on a surface. Setting pointer
// or touch focus takes that class away from every other surface.
func (s *State) NotifyFocusChange(id surface.ID, mask seat.Capability, set bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	surf := s.surface(id)
	if surf == nil {
		return fmt.Errorf("no such surface %d", id)
	}

	if !set {
		surf.Focus &^= mask
		return nil
	}

	if exclusive := mask & seat.Exclusive; exclusive != 0 {
		for _, other := range s.surfaces {
			if other.ID != id {
				other.Focus &^= exclusive
			}
		}
	}
	surf.Focus |= mask
	return nil
}

// NotifyFocusAtomic removes mask from every src surface and adds it to every dst
// surface under one lock, so no sync can observe an intermediate state
func (s *State) NotifyFocusAtomic(dst, src []surface.ID, mask seat.Capability) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var dstSurfs, srcSurfs []*surface.Surface
	for _, id := range dst {
		if surf := s.surface(id); surf != nil {
			dstSurfs = append(dstSurfs, surf)
		}
	}
	for _, id := range src {
		if surf := s.surface(id); surf != nil {
			srcSurfs = append(srcSurfs, surf)
		}
	}
	if len(dstSurfs) == 0 && len(srcSurfs) == 0 {
		return fmt.Errorf("no known surface in transfer")
	}

	for _, surf := range srcSurfs {
		surf.Focus &^= mask
	}
	if exclusive := mask & seat.Exclusive; exclusive != 0 && len(dstSurfs) > 0 {
		for _, other := range s.surfaces {
			other.Focus &^= exclusive
		}
	}
	for _, surf := range dstSurfs {
		surf.Focus |= mask
	}
	return nil
}

func (s *State) seatIndex(name string) int {
	for i, st := range s.seats {
		if st.Name == name {
			return i
		}
	}
	return -1
}

func (s *State) surface(id surface.ID) *surface.Surface {
	for _, surf := range s.surfaces {
		if surf.ID == id {
			return surf
		}
	}
	return nil
}

func removeName(names []string, name string) []string {
	out := names[:0]
	for _, n := range names {
		if n != name {
			out = append(out, n)
		}
	}
	return out
}
