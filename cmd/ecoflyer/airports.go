package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dharmasatrya/ecoflyer/internal/airports"
	"github.com/dharmasatrya/ecoflyer/internal/models"
)

var airportsCmd = &cobra.Command{
	Use:   "airports",
	Short: "List the airports a search would use",
	Long: `Airports prints the origin airports around a location and the destination
airports inside the distance band of a trip length, in table order.`,
	RunE: runAirports,
}

func init() {
	airportsCmd.Flags().Float64("lat", 0, "latitude of the starting point")
	airportsCmd.Flags().Float64("long", 0, "longitude of the starting point")
	airportsCmd.Flags().String("len", models.TripLong, "trip length: trip-short, trip-medium or trip-long")
	airportsCmd.Flags().Bool("json", false, "output codes as JSON")
	_ = airportsCmd.MarkFlagRequired("lat")
	_ = airportsCmd.MarkFlagRequired("long")

	rootCmd.AddCommand(airportsCmd)
}

func runAirports(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	table, err := airports.Load(cfg.AirportsFile, cfg.MaxAirportCodes)
	if err != nil {
		return err
	}

	lat, _ := cmd.Flags().GetFloat64("lat")
	long, _ := cmd.Flags().GetFloat64("long")
	tripLength, _ := cmd.Flags().GetString("len")
	minKm, maxKm := models.SearchRequest{TripLength: tripLength}.RadiusBand()

	origins := table.Filter(lat, long, cfg.OriginRadiusKm, 0)
	destinations := table.Filter(lat, long, maxKm, minKm)

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return writeJSON(os.Stdout, map[string][]string{
			"origins":      origins,
			"destinations": destinations,
		})
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Origins (0-%.0f km)\t%d\n", cfg.OriginRadiusKm, len(origins))
	fmt.Fprintf(w, "Destinations (%.0f-%.0f km)\t%d\n", minKm, maxKm, len(destinations))
	w.Flush()
	fmt.Println()
	fmt.Println("from:", table.Codes(lat, long, cfg.OriginRadiusKm, 0))
	fmt.Println("to:  ", table.Codes(lat, long, maxKm, minKm))
	return nil
}
