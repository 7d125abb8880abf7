package ui

import (
	"testing"

	"github.com/bnema/seatctl/internal/seat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeatOptions(t *testing.T) {
	seats := []seat.Seat{
		{Name: "seat0", Capabilities: seat.Pointer | seat.Keyboard},
		{Name: "seat1", Capabilities: seat.Touch},
	}

	options := SeatOptions(seats, []string{"seat1"})
	require.Len(t, options, 2)
	assert.Equal(t, "seat0", options[0].Value)
	assert.Equal(t, "seat0 (pointer|keyboard)", options[0].Key)
	assert.Equal(t, "seat1", options[1].Value)
}

func TestPickSeatsWithoutSeats(t *testing.T) {
	_, err := PickSeats(7, nil, nil)
	assert.Error(t, err)
}
