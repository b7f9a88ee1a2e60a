package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dharmasatrya/ecoflyer/internal/aggregator"
	"github.com/dharmasatrya/ecoflyer/internal/app"
	"github.com/dharmasatrya/ecoflyer/internal/models"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Rank destinations by trip emissions",
	Long: `Search runs the full pipeline for one request: airports near the location,
round trips in the chosen distance band, per-flight emissions, and a ranking
of destinations by their lowest-emission trip. The result is printed as JSON.`,
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().Float64("lat", 0, "latitude of the starting point")
	searchCmd.Flags().Float64("long", 0, "longitude of the starting point")
	searchCmd.Flags().String("len", models.TripLong, "trip length: trip-short, trip-medium or trip-long")
	searchCmd.Flags().String("out", "", "outbound date (YYYY-MM-DD or DD/MM/YYYY)")
	searchCmd.Flags().String("out-end", "", "end of the outbound date range")
	searchCmd.Flags().String("ret", "", "return date (YYYY-MM-DD or DD/MM/YYYY)")
	searchCmd.Flags().String("ret-end", "", "end of the return date range")
	searchCmd.Flags().Float64("price", 0, "maximum price in EUR (0 for no limit)")
	searchCmd.Flags().Bool("no-cache", false, "skip the response cache and job store")
	_ = searchCmd.MarkFlagRequired("lat")
	_ = searchCmd.MarkFlagRequired("long")
	_ = searchCmd.MarkFlagRequired("out")
	_ = searchCmd.MarkFlagRequired("ret")

	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if noCache, _ := cmd.Flags().GetBool("no-cache"); noCache {
		cfg.CacheEnabled = false
		cfg.JobsEnabled = false
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	lat, _ := cmd.Flags().GetFloat64("lat")
	long, _ := cmd.Flags().GetFloat64("long")
	req := models.SearchRequest{LatLong: models.LatLong{Lat: models.Number(lat), Long: models.Number(long)}}
	req.TripLength, _ = cmd.Flags().GetString("len")
	req.OutboundDate, _ = cmd.Flags().GetString("out")
	req.OutboundDateEndRange, _ = cmd.Flags().GetString("out-end")
	req.ReturnDate, _ = cmd.Flags().GetString("ret")
	req.ReturnDateEndRange, _ = cmd.Flags().GetString("ret-end")
	if price, _ := cmd.Flags().GetFloat64("price"); price > 0 {
		p := models.Number(price)
		req.Price = &p
	}

	if err := req.Validate(); err != nil {
		return err
	}

	a, err := app.New(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	if body, found := a.Cache.Get(cmd.Context(), req); found {
		fmt.Fprintln(os.Stderr, "Served from cache")
		_, err := os.Stdout.Write(append(body, '\n'))
		return err
	}

	result, err := a.Aggregator.Search(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("%s: %w", aggregator.UserMessage(err), err)
	}

	if body, err := json.Marshal(result.Destinations); err == nil {
		if err := a.Cache.Set(cmd.Context(), req, body); err != nil {
			fmt.Fprintln(os.Stderr, "Cache write failed:", err)
		}
	}

	fmt.Fprintf(os.Stderr, "%d itineraries, %d legs queried, %d options dropped, %d destinations ranked in %v\n",
		result.Itineraries, result.LegsQueried, result.Stats.DroppedOptions, len(result.Destinations), result.Elapsed)
	return writeJSON(os.Stdout, result.Destinations)
}
