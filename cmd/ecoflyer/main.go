// Command ecoflyer runs low-emission destination searches from the terminal
// and inspects the airport table and async jobs.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/dharmasatrya/ecoflyer/internal/config"
)

// version is set at build time via ldflags.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "ecoflyer",
	Short: "Find destinations reachable with the lowest flight emissions",
	Long: `ecoflyer searches round trips from the airports near a location, asks the
Travel Impact Model for per-flight emissions and ranks destinations by the
emissions of their best trip.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file (default: ./ecoflyer.yaml)")
}

func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	return config.Load(path)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
