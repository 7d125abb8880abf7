package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bnema/seatctl/internal/seat"
	"github.com/bnema/seatctl/internal/ui"
	"github.com/spf13/cobra"
)

var acceptInteractive bool

var acceptCmd = &cobra.Command{
	Use:   "accept <surface> [seat...]",
	Short: "Set the seats a surface accepts input from",
	Long: `Make the surface accept input from exactly the listed seats. Seats not listed
stop delivering input to it; listing no seats revokes every seat. With -i the
seats are picked interactively.`,
	Example: `  seatctl accept 7 seat0 seat1
  seatctl accept 7
  seatctl accept 7 -i`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseSurfaceID(args[0])
		if err != nil {
			return err
		}
		seats := args[1:]

		ctl, done := newController()
		defer done()
		ctx := cmd.Context()

		if acceptInteractive {
			all, err := ctl.Seats(ctx, seat.All)
			if err != nil {
				return err
			}
			current, err := ctl.Acceptance(ctx, id)
			if err != nil {
				return err
			}
			seats, err = ui.PickSeats(id, all, current)
			if errors.Is(err, ui.ErrCancelled) {
				fmt.Fprintln(cmd.OutOrStdout(), ui.SubtleStyle.Render("Cancelled"))
				return nil
			}
			if err != nil {
				return err
			}
		}

		if err := ctl.SetAcceptance(ctx, id, seats); err != nil {
			return err
		}

		msg := fmt.Sprintf("surface %d accepts input from no seats", id)
		if len(seats) > 0 {
			msg = fmt.Sprintf("surface %d accepts input from %s", id, strings.Join(seats, ", "))
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.FormatResult(true, msg))
		return nil
	},
}

var acceptanceCmd = &cobra.Command{
	Use:   "acceptance <surface>",
	Short: "Show the seats a surface accepts input from",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseSurfaceID(args[0])
		if err != nil {
			return err
		}

		ctl, done := newController()
		defer done()

		seats, err := ctl.Acceptance(cmd.Context(), id)
		if err != nil {
			return err
		}
		for _, name := range seats {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	},
}

var surfacesCmd = &cobra.Command{
	Use:   "surfaces",
	Short: "List surfaces with their accepted seats and focus",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctl, done := newController()
		defer done()

		surfaces, err := ctl.Surfaces(cmd.Context())
		if err != nil {
			return err
		}
		if len(surfaces) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), ui.SubtleStyle.Render("No surfaces"))
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.SurfaceTable(surfaces))
		return nil
	},
}

func init() {
	acceptCmd.Flags().BoolVarP(&acceptInteractive, "interactive", "i", false, "Pick seats interactively")

	rootCmd.AddCommand(acceptCmd)
	rootCmd.AddCommand(acceptanceCmd)
	rootCmd.AddCommand(surfacesCmd)
}
