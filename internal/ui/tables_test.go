package ui

import (
	"testing"

	"github.com/bnema/seatctl/internal/control"
	"github.com/bnema/seatctl/internal/seat"
	"github.com/bnema/seatctl/internal/surface"
	"github.com/stretchr/testify/assert"
)

func TestSeatTable(t *testing.T) {
	out := SeatTable([]seat.Seat{
		{Name: "seat0", Capabilities: seat.Pointer | seat.Keyboard},
		{Name: "touchpanel", Capabilities: seat.Touch},
	})

	for _, want := range []string{"SEAT", "POINTER", "KEYBOARD", "TOUCH", "seat0", "touchpanel", IconSuccess} {
		assert.Contains(t, out, want)
	}
}

func TestSurfaceRow(t *testing.T) {
	row := SurfaceRow(surface.Surface{ID: 7, AcceptedSeats: []string{"seat0", "seat1"}, Focus: seat.Pointer})
	assert.Equal(t, []string{"7", "seat0, seat1", IconFocus + " pointer"}, row)

	row = SurfaceRow(surface.Surface{ID: 8})
	assert.Equal(t, []string{"8", "-", IconNoFocus}, row)
}

func TestSurfaceTable(t *testing.T) {
	out := SurfaceTable([]surface.Surface{{ID: 42, AcceptedSeats: []string{"seat0"}}})
	assert.Contains(t, out, "ACCEPTED SEATS")
	assert.Contains(t, out, "42")
	assert.Contains(t, out, "seat0")
}

func TestFocusTable(t *testing.T) {
	out := FocusTable([]control.FocusEntry{
		{Surface: 3, Focus: seat.Keyboard},
		{Surface: 4},
	})
	assert.Contains(t, out, "keyboard")
	assert.Contains(t, out, "3")
	assert.Contains(t, out, IconNoFocus)
}

func TestFormatFocus(t *testing.T) {
	assert.Equal(t, IconNoFocus, FormatFocus(0))
	assert.Equal(t, IconFocus+" pointer|touch", FormatFocus(seat.Pointer|seat.Touch))
}
