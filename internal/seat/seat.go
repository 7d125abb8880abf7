// Package seat models the compositor's input seats and the capability bitmask
// describing which input classes each seat provides.
package seat

import (
	"fmt"
	"strings"
)

// Capability is a bitmask of input device classes
type Capability uint32

const (
	Keyboard Capability = 1 << 0
	Pointer  Capability = 1 << 1
	Touch    Capability = 1 << 2

	// All matches every capability, including classes this package does not name
	All Capability = 0xFFFFFFFF
)

// Exclusive is the set of classes for which only one surface may hold focus
const Exclusive = Pointer | Touch

var capabilityNames = []struct {
	cap  Capability
	name string
}{
	{Pointer, "pointer"},
	{Keyboard, "keyboard"},
	{Touch, "touch"},
}

// Has reports whether c shares at least one class with mask
func (c Capability) Has(mask Capability) bool {
	return c&mask != 0
}

// String renders the capability as "pointer|keyboard"
func (c Capability) String() string {
	if c == 0 {
		return "none"
	}
	if c == All {
		return "all"
	}

	var parts []string
	rest := c
	for _, n := range capabilityNames {
		if c&n.cap != 0 {
			parts = append(parts, n.name)
			rest &^= n.cap
		}
	}
	if rest != 0 {
		parts = append(parts, fmt.Sprintf("0x%x", uint32(rest)))
	}
	return strings.Join(parts, "|")
}

// ParseCapability parses a comma or pipe separated list of class names.
// An empty string yields All.
func ParseCapability(s string) (Capability, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return All, nil
	}

	var c Capability
	for _, field := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == '|' }) {
		cap, err := parseOne(strings.TrimSpace(field))
		if err != nil {
			return 0, err
		}
		c |= cap
	}
	return c, nil
}

// ParseCapabilities ORs together a list of class names
func ParseCapabilities(names []string) (Capability, error) {
	var c Capability
	for _, name := range names {
		cap, err := parseOne(strings.TrimSpace(name))
		if err != nil {
			return 0, err
		}
		c |= cap
	}
	return c, nil
}

func parseOne(name string) (Capability, error) {
	switch strings.ToLower(name) {
	case "keyboard", "kbd":
		return Keyboard, nil
	case "pointer", "mouse":
		return Pointer, nil
	case "touch":
		return Touch, nil
	case "all", "*":
		return All, nil
	default:
		return 0, fmt.Errorf("unknown capability %q (must be keyboard, pointer, touch or all)", name)
	}
}

// Seat is a named input source
type Seat struct {
	Name         string
	Capabilities Capability
}
