// Package surface holds the client-side view of compositor surfaces: which seats
// each surface accepts input from and which input classes it currently has focus for.
package surface

import (
	"fmt"

	"github.com/bnema/seatctl/internal/seat"
)

// ID identifies a surface on the compositor
type ID uint32

// Surface is one compositor surface as of the last sync
type Surface struct {
	ID            ID
	AcceptedSeats []string
	Focus         seat.Capability
}

// Accepts reports whether the surface accepts input from the named seat
func (s Surface) Accepts(name string) bool {
	for _, n := range s.AcceptedSeats {
		if n == name {
			return true
		}
	}
	return false
}

// Clone returns a deep copy
func (s Surface) Clone() Surface {
	c := s
	if s.AcceptedSeats != nil {
		c.AcceptedSeats = append([]string(nil), s.AcceptedSeats...)
	}
	return c
}

// Registry is a read-only, ordered view of the surfaces known at one sync point
type Registry struct {
	surfaces []Surface
	index    map[ID]int
}

// NewRegistry builds a registry from a snapshot. Surfaces are deep-copied so the
// caller's slices are never aliased. Duplicate ids are rejected.
func NewRegistry(surfaces []Surface) (*Registry, error) {
	r := &Registry{
		surfaces: make([]Surface, 0, len(surfaces)),
		index:    make(map[ID]int, len(surfaces)),
	}
	for _, s := range surfaces {
		if _, dup := r.index[s.ID]; dup {
			return nil, fmt.Errorf("duplicate surface id %d", s.ID)
		}
		r.index[s.ID] = len(r.surfaces)
		r.surfaces = append(r.surfaces, s.Clone())
	}
	return r, nil
}

// Find returns a copy of the surface with the given id
func (r *Registry) Find(id ID) (Surface, bool) {
	i, ok := r.index[id]
	if !ok {
		return Surface{}, false
	}
	return r.surfaces[i].Clone(), true
}

// Has reports whether the id is known
func (r *Registry) Has(id ID) bool {
	_, ok := r.index[id]
	return ok
}

// All returns copies of every surface in registry order
func (r *Registry) All() []Surface {
	out := make([]Surface, len(r.surfaces))
	for i, s := range r.surfaces {
		out[i] = s.Clone()
	}
	return out
}

// Len returns the number of surfaces
func (r *Registry) Len() int {
	return len(r.surfaces)
}
