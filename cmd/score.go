package main

import (
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/shadepath/shadepath/internal/route"
	"github.com/shadepath/shadepath/pkg/routesapi"
	"github.com/shadepath/shadepath/pkg/sunpos"
)

var (
	scoreOrigin string
	scoreDest   string
	scoreMode   string
	scoreTime   string
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score route alternatives between two places and print the ranking",
	RunE: func(cmd *cobra.Command, args []string) error {
		if scoreOrigin == "" || scoreDest == "" {
			return eris.New("--origin and --dest are required")
		}

		departAt := time.Now().UTC()
		if scoreTime != "" {
			parsed, err := time.Parse(time.RFC3339, scoreTime)
			if err != nil {
				return eris.Wrap(err, "parse --time (want RFC 3339)")
			}
			departAt = parsed.UTC()
		}

		ctx := cmd.Context()
		env, err := initEnv(ctx, cfg)
		if err != nil {
			return err
		}
		defer env.Close()

		raw, err := env.Routes.ComputeRoutes(ctx, routesapi.Request{
			Origin:      routesapi.Address(scoreOrigin),
			Destination: routesapi.Address(scoreDest),
			TravelMode:  scoreMode,
		})
		if err != nil {
			return err
		}
		if len(raw) == 0 {
			fmt.Println("No routes found.")
			return nil
		}

		routes, err := route.FromRoutesAPI(raw, scoreMode)
		if err != nil {
			return err
		}

		start := routes[0].Start
		buildings, err := env.Buildings.BuildingsAround(start.Lat, start.Lon, cfg.OSM.BuildingRadiusM)
		if err != nil {
			return err
		}

		stations, err := env.Weather.Rainfall(ctx)
		if err != nil {
			zap.L().Warn("rainfall fetch failed, treating as dry", zap.Error(err))
			stations = nil
		}

		sun := sunpos.At(departAt, start.Lat, start.Lon)
		shadows := env.Projector.Project(buildings, sun)

		results := env.Scorer.Score(routes, shadows, stations)

		fmt.Printf("Routes from %s to %s at %s:\n\n", scoreOrigin, scoreDest, departAt.Format(time.RFC3339))
		for i, res := range results {
			fmt.Printf("Route %d: %s\n", i+1, res.Summary)
			fmt.Printf("  Total Shadow Ratio: %.1f%%\n", res.ShadowRatio*100)
			fmt.Printf("  Protected: %.1fm shadow, %.1fm shelter / %.1fm total\n",
				res.ShadowLengthM, res.ShelteredLengthM, res.TotalLengthM)
			if res.IsRainLikely {
				fmt.Println("  Rain likely along this route")
			}
			for _, step := range res.Steps {
				fmt.Printf("    - %s (%s): %.1f%% shadow\n",
					step.Instruction, step.DistanceText, step.ShadowRatio*100)
			}
			fmt.Println()
		}
		best := results[0]
		fmt.Printf("Best Route: %s with %.1f%% shadow coverage.\n", best.Summary, best.ShadowRatio*100)

		return nil
	},
}

func init() {
	scoreCmd.Flags().StringVar(&scoreOrigin, "origin", "", "origin address or place name")
	scoreCmd.Flags().StringVar(&scoreDest, "dest", "", "destination address or place name")
	scoreCmd.Flags().StringVar(&scoreMode, "mode", "WALK", "travel mode (WALK, TRANSIT, DRIVE, TWO_WHEELER)")
	scoreCmd.Flags().StringVar(&scoreTime, "time", "", "departure time, RFC 3339 (default now)")
	rootCmd.AddCommand(scoreCmd)
}
