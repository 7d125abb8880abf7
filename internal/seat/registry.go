package seat

import "fmt"

// Registry is a read-only, ordered view of the seats known at one sync point.
// Iteration order is the order the seats were supplied in.
type Registry struct {
	seats []Seat
	index map[string]int
}

// NewRegistry builds a registry from a snapshot. Duplicate names are rejected.
func NewRegistry(seats []Seat) (*Registry, error) {
	r := &Registry{
		seats: make([]Seat, 0, len(seats)),
		index: make(map[string]int, len(seats)),
	}
	for _, s := range seats {
		if _, dup := r.index[s.Name]; dup {
			return nil, fmt.Errorf("duplicate seat name %q", s.Name)
		}
		r.index[s.Name] = len(r.seats)
		r.seats = append(r.seats, s)
	}
	return r, nil
}

// Find returns the seat with the given name
func (r *Registry) Find(name string) (Seat, bool) {
	i, ok := r.index[name]
	if !ok {
		return Seat{}, false
	}
	return r.seats[i], true
}

// Has reports whether a seat with the given name exists
func (r *Registry) Has(name string) bool {
	_, ok := r.index[name]
	return ok
}

// CapabilitiesOf returns the capability mask of the named seat
func (r *Registry) CapabilitiesOf(name string) (Capability, bool) {
	s, ok := r.Find(name)
	return s.Capabilities, ok
}

// WithCapability returns the seats sharing at least one class with mask
func (r *Registry) WithCapability(mask Capability) []Seat {
	var out []Seat
	for _, s := range r.seats {
		if s.Capabilities.Has(mask) {
			out = append(out, s)
		}
	}
	return out
}

// All returns a copy of every seat in registry order
func (r *Registry) All() []Seat {
	out := make([]Seat, len(r.seats))
	copy(out, r.seats)
	return out
}

// Len returns the number of seats
func (r *Registry) Len() int {
	return len(r.seats)
}
