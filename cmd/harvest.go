package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var harvestTargets string

var harvestCmd = &cobra.Command{
	Use:   "harvest [city]",
	Short: "Import pickleball courts for a city from OpenStreetMap",
	Long: `Geocodes the city, queries Overpass for pickleball and tennis features inside
its bounding box and inserts or updates one court per accepted feature.

With --targets, each city listed in the YAML file is harvested in turn.

` + nominatimSpacingNote,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cities, err := harvestCities(args, harvestTargets)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initHarvest(ctx, "harvest")
		if err != nil {
			return err
		}
		defer env.Close()

		var failed []string
		for _, city := range cities {
			if ctx.Err() != nil {
				break
			}
			res := env.Harvester.HarvestCity(ctx, city)
			if err := printResult(os.Stdout, "harvest "+city, res); err != nil {
				zap.L().Warn("harvest failed", zap.String("city", city))
				failed = append(failed, city)
			}
		}
		if err := ctx.Err(); err != nil {
			return eris.Wrap(err, "harvest interrupted")
		}
		if len(failed) > 0 {
			return eris.Errorf("harvest failed for %d of %d cities: %v", len(failed), len(cities), failed)
		}
		return nil
	},
}

// harvestCities returns the argument city, or the cities from the targets file.
func harvestCities(args []string, targetsPath string) ([]string, error) {
	switch {
	case len(args) == 1 && targetsPath != "":
		return nil, eris.New("give either a city or --targets, not both")
	case len(args) == 1:
		return []string{args[0]}, nil
	case targetsPath != "":
		t, err := loadTargets(targetsPath)
		if err != nil {
			return nil, err
		}
		return t.Cities, nil
	default:
		return nil, eris.New("a city or --targets file is required")
	}
}

func init() {
	harvestCmd.Flags().StringVar(&harvestTargets, "targets", "", "YAML file listing cities to harvest")
	rootCmd.AddCommand(harvestCmd)
}
