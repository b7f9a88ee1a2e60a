package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dharmasatrya/ecoflyer/internal/cache"
	"github.com/dharmasatrya/ecoflyer/internal/jobstore"
)

var jobCmd = &cobra.Command{
	Use:   "job",
	Short: "Inspect asynchronous search jobs",
}

var jobStatusCmd = &cobra.Command{
	Use:   "status <id>",
	Short: "Print the status of a job from the job store",
	Args:  cobra.ExactArgs(1),
	RunE:  runJobStatus,
}

func init() {
	jobCmd.AddCommand(jobStatusCmd)
	rootCmd.AddCommand(jobCmd)
}

func runJobStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	client, err := cache.Connect(cmd.Context(), cache.RedisConfig{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Username: cfg.RedisUser,
		Password: cfg.RedisPass,
	})
	if err != nil {
		return fmt.Errorf("connecting to Redis: %w", err)
	}
	defer client.Close()

	status, err := jobstore.New(client, cfg.JobsTTL).Status(cmd.Context(), args[0])
	if errors.Is(err, jobstore.ErrNotFound) {
		return fmt.Errorf("no job %s", args[0])
	}
	if err != nil {
		return err
	}
	return writeJSON(os.Stdout, status)
}
