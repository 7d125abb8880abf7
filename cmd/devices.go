package cmd

import (
	"fmt"

	"github.com/bnema/seatctl/internal/seat"
	"github.com/bnema/seatctl/internal/ui"
	"github.com/spf13/cobra"
)

var (
	devicesCaps  string
	devicesNames bool
)

var devicesCmd = &cobra.Command{
	Use:     "devices",
	Aliases: []string{"seats"},
	Short:   "List input seats",
	Long: `List the seats known to the compositor. With --caps only seats providing at
least one of the given classes are shown.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		mask, err := seat.ParseCapability(devicesCaps)
		if err != nil {
			return err
		}

		ctl, done := newController()
		defer done()

		out := cmd.OutOrStdout()
		if devicesNames {
			names, err := ctl.InputDevices(cmd.Context(), mask)
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Fprintln(out, name)
			}
			return nil
		}

		seats, err := ctl.Seats(cmd.Context(), mask)
		if err != nil {
			return err
		}
		if len(seats) == 0 {
			fmt.Fprintln(out, ui.SubtleStyle.Render("No seats"))
			return nil
		}
		fmt.Fprintln(out, ui.SeatTable(seats))
		return nil
	},
}

var capsCmd = &cobra.Command{
	Use:   "caps <seat>",
	Short: "Show the capabilities of a seat",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctl, done := newController()
		defer done()

		caps, err := ctl.DeviceCapabilities(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", args[0], caps)
		return nil
	},
}

func init() {
	devicesCmd.Flags().StringVar(&devicesCaps, "caps", "", "Only seats with any of these classes (keyboard,pointer,touch)")
	devicesCmd.Flags().BoolVar(&devicesNames, "names", false, "Print seat names only")

	rootCmd.AddCommand(devicesCmd)
	rootCmd.AddCommand(capsCmd)
}
