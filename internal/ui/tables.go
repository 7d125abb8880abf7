package ui

import (
	"fmt"
	"strings"

	"github.com/bnema/seatctl/internal/control"
	"github.com/bnema/seatctl/internal/seat"
	"github.com/bnema/seatctl/internal/surface"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

func styledTable(headers []string, rows [][]string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(ColorSubtle)).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return lipgloss.NewStyle().
					Foreground(ColorPrimary).
					Bold(true).
					Padding(0, 1)
			case col == 0:
				return lipgloss.NewStyle().
					Foreground(ColorInfo).
					Bold(true).
					Padding(0, 1)
			default:
				return lipgloss.NewStyle().
					Foreground(ColorText).
					Padding(0, 1)
			}
		}).
		Headers(headers...).
		Rows(rows...)
}

// SeatTable renders seats with their capabilities
func SeatTable(seats []seat.Seat) string {
	rows := make([][]string, 0, len(seats))
	for _, s := range seats {
		rows = append(rows, []string{
			s.Name,
			capMark(s.Capabilities, seat.Pointer),
			capMark(s.Capabilities, seat.Keyboard),
			capMark(s.Capabilities, seat.Touch),
		})
	}
	return styledTable([]string{"SEAT", "POINTER", "KEYBOARD", "TOUCH"}, rows).String()
}

// SurfaceTable renders surfaces with their accepted seats and focus
func SurfaceTable(surfaces []surface.Surface) string {
	rows := make([][]string, 0, len(surfaces))
	for _, s := range surfaces {
		rows = append(rows, SurfaceRow(s))
	}
	return styledTable([]string{"SURFACE", "ACCEPTED SEATS", "FOCUS"}, rows).String()
}

// SurfaceRow formats one surface as table cells
func SurfaceRow(s surface.Surface) []string {
	accepted := "-"
	if len(s.AcceptedSeats) > 0 {
		accepted = strings.Join(s.AcceptedSeats, ", ")
	}
	return []string{fmt.Sprintf("%d", s.ID), accepted, FormatFocus(s.Focus)}
}

// FocusTable renders the focus state of every surface
func FocusTable(entries []control.FocusEntry) string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{fmt.Sprintf("%d", e.Surface), FormatFocus(e.Focus)})
	}
	return styledTable([]string{"SURFACE", "FOCUS"}, rows).String()
}

// FormatFocus renders a focus mask, or a dot when the surface has no focus
func FormatFocus(c seat.Capability) string {
	if c == 0 {
		return IconNoFocus
	}
	return IconFocus + " " + c.String()
}

func capMark(c, class seat.Capability) string {
	if c.Has(class) {
		return IconSuccess
	}
	return ""
}
