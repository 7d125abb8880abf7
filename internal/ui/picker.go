package ui

import (
	"errors"
	"fmt"

	"github.com/bnema/seatctl/internal/seat"
	"github.com/bnema/seatctl/internal/surface"
	"github.com/charmbracelet/huh"
)

// ErrCancelled is returned when the user aborts a prompt
var ErrCancelled = errors.New("cancelled by user")

// SeatOptions builds picker options for every seat, preselecting current ones
func SeatOptions(seats []seat.Seat, current []string) []huh.Option[string] {
	selected := make(map[string]bool, len(current))
	for _, name := range current {
		selected[name] = true
	}

	options := make([]huh.Option[string], 0, len(seats))
	for _, s := range seats {
		label := fmt.Sprintf("%s (%s)", s.Name, s.Capabilities)
		options = append(options, huh.NewOption(label, s.Name).Selected(selected[s.Name]))
	}
	return options
}

// PickSeats asks which seats the surface should accept input from
func PickSeats(id surface.ID, seats []seat.Seat, current []string) ([]string, error) {
	if len(seats) == 0 {
		return nil, fmt.Errorf("no seats available")
	}

	chosen := append([]string(nil), current...)
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title(fmt.Sprintf("Input acceptance for surface %d", id)).
				Description("Select the seats this surface accepts input from").
				Options(SeatOptions(seats, current)...).
				Value(&chosen),
		),
	)

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return nil, ErrCancelled
		}
		return nil, fmt.Errorf("seat selection failed: %w", err)
	}
	return chosen, nil
}
