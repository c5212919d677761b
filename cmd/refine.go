package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var refineCmd = &cobra.Command{
	Use:   "refine",
	Short: "Rename generically named courts using reverse geocoding",
	Long: `Reverse geocodes every court that still has a generic name and renames it
after the nearest park, school, road or neighbourhood.

` + nominatimSpacingNote,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initHarvest(ctx, "refine")
		if err != nil {
			return err
		}
		defer env.Close()

		return printResult(os.Stdout, "refine", env.Refiner.RefineAllCourts(ctx))
	},
}

func init() {
	rootCmd.AddCommand(refineCmd)
}
