package cmd

import (
	"fmt"

	"github.com/bnema/seatctl/internal/seat"
	"github.com/bnema/seatctl/internal/ui"
	"github.com/spf13/cobra"
)

var (
	focusCaps string
	swapDst   []string
	swapSrc   []string
)

var focusCmd = &cobra.Command{
	Use:   "focus",
	Short: "Query and change input focus",
}

var focusSetCmd = &cobra.Command{
	Use:   "set <surface...>",
	Short: "Give surfaces input focus",
	Long: `Give every listed surface focus for the selected classes. Pointer and touch
focus can only be held by one surface; setting them on several surfaces at once
is rejected.`,
	Example: `  seatctl focus set 7 --caps keyboard
  seatctl focus set 7,9 --caps keyboard`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFocus(cmd, args, true)
	},
}

var focusUnsetCmd = &cobra.Command{
	Use:   "unset <surface...>",
	Short: "Remove input focus from surfaces",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFocus(cmd, args, false)
	},
}

var focusSwapCmd = &cobra.Command{
	Use:   "swap",
	Short: "Move focus between surfaces in one request",
	Long: `Remove focus from the --src surfaces and give it to the --dst surfaces in a
single atomic request. Unknown surfaces are skipped.`,
	Example: `  seatctl focus swap --src 7 --dst 9 --caps pointer`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		mask, err := seat.ParseCapability(focusCaps)
		if err != nil {
			return err
		}
		dst, err := parseSurfaceIDs(swapDst)
		if err != nil {
			return err
		}
		src, err := parseSurfaceIDs(swapSrc)
		if err != nil {
			return err
		}

		ctl, done := newController()
		defer done()

		if err := ctl.SetFocusAtomic(cmd.Context(), dst, src, mask); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.FormatResult(true,
			fmt.Sprintf("%s focus moved from %v to %v", mask, src, dst)))
		return nil
	},
}

var focusListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the focus state of every surface",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctl, done := newController()
		defer done()

		entries, err := ctl.Focus(cmd.Context())
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), ui.SubtleStyle.Render("No surfaces"))
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.FocusTable(entries))
		return nil
	},
}

func runFocus(cmd *cobra.Command, args []string, set bool) error {
	mask, err := seat.ParseCapability(focusCaps)
	if err != nil {
		return err
	}
	ids, err := parseSurfaceIDs(args)
	if err != nil {
		return err
	}

	ctl, done := newController()
	defer done()

	if err := ctl.SetFocus(cmd.Context(), ids, mask, set); err != nil {
		return err
	}

	verb := "removed from"
	if set {
		verb = "given to"
	}
	fmt.Fprintln(cmd.OutOrStdout(), ui.FormatResult(true, fmt.Sprintf("%s focus %s %v", mask, verb, ids)))
	return nil
}

func init() {
	focusCmd.PersistentFlags().StringVar(&focusCaps, "caps", "all", "Input classes (keyboard,pointer,touch,all)")
	focusSwapCmd.Flags().StringSliceVar(&swapDst, "dst", nil, "Surfaces receiving focus")
	focusSwapCmd.Flags().StringSliceVar(&swapSrc, "src", nil, "Surfaces losing focus")

	focusCmd.AddCommand(focusSetCmd)
	focusCmd.AddCommand(focusUnsetCmd)
	focusCmd.AddCommand(focusSwapCmd)
	focusCmd.AddCommand(focusListCmd)
	rootCmd.AddCommand(focusCmd)
}
