package cmd

import (
	"time"

	"github.com/bnema/seatctl/internal/ui"
	"github.com/spf13/cobra"
)

var watchInterval time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Live view of seats, acceptance and focus",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctl, done := newController()
		defer done()

		return ui.RunWatch(ctl, watchInterval)
	},
}

func init() {
	watchCmd.Flags().DurationVarP(&watchInterval, "interval", "n", time.Second, "Refresh interval")
	rootCmd.AddCommand(watchCmd)
}
