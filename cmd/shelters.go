package main

import (
	"fmt"
	"math"

	"github.com/peterstace/simplefeatures/geom"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/shadepath/shadepath/internal/geo"
	"github.com/shadepath/shadepath/internal/shelter"
)

var sheltersFile string

var sheltersCmd = &cobra.Command{
	Use:   "shelters",
	Short: "Inspect a covered-walkway shapefile",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := sheltersFile
		if path == "" {
			path = cfg.Shelter.ShapefilePath
		}
		if path == "" {
			return eris.New("no shapefile given (--file or shelter.shapefile_path)")
		}

		features, err := shelter.LoadShapefile(path)
		if err != nil {
			return err
		}

		var totalAreaM2, totalLengthM float64
		minX, minY := math.Inf(1), math.Inf(1)
		maxX, maxY := math.Inf(-1), math.Inf(-1)
		for _, f := range features {
			totalAreaM2 += f.Geometry.Area()
			totalLengthM += geo.LinearLength(f.Geometry)
			if lo, hi, ok := f.Geometry.Envelope().MinMaxXYs(); ok {
				minX, minY = math.Min(minX, lo.X), math.Min(minY, lo.Y)
				maxX, maxY = math.Max(maxX, hi.X), math.Max(maxY, hi.Y)
			}
		}

		fmt.Printf("Shelter dataset: %s\n", path)
		fmt.Printf("  Features:     %d\n", len(features))
		fmt.Printf("  Covered area: %.0f m2\n", totalAreaM2)
		fmt.Printf("  Linear spans: %.0f m\n", totalLengthM)
		if len(features) > 0 && !math.IsInf(minX, 1) {
			sw := geo.UnprojectXY(geom.XY{X: minX, Y: minY})
			ne := geo.UnprojectXY(geom.XY{X: maxX, Y: maxY})
			fmt.Printf("  Bounding box: (%.5f, %.5f) to (%.5f, %.5f)\n", sw.Lat, sw.Lon, ne.Lat, ne.Lon)
		}

		return nil
	},
}

func init() {
	sheltersCmd.Flags().StringVar(&sheltersFile, "file", "", "path to shelter shapefile (default from config)")
	rootCmd.AddCommand(sheltersCmd)
}
