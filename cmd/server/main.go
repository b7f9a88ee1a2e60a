package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"

	"github.com/dharmasatrya/ecoflyer/internal/app"
	"github.com/dharmasatrya/ecoflyer/internal/config"
	"github.com/dharmasatrya/ecoflyer/internal/handler"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "server",
		Short:         "Serve the emissions search API",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE:          serve,
	}
	cmd.PersistentFlags().String("config", "", "config file (default: ./ecoflyer.yaml)")
	cmd.Flags().String("port", "", "listen port, overrides PORT")
	return cmd
}

func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, fmt.Errorf("loading config: %w", err)
	}
	if port, _ := cmd.Flags().GetString("port"); port != "" {
		cfg.Port = port
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func serve(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	a, err := app.New(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("initializing: %w", err)
	}
	defer a.Close()

	e := newServer(a)

	go func() {
		log.Printf("Starting ecoflyer server on port %s", cfg.Port)
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(ctx)
}

// newServer builds the echo instance with middleware and routes. Job routes
// are only registered when the job store is enabled.
func newServer(a *app.App) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.RequestID())

	searchHandler := handler.NewSearchHandler(a.Aggregator, a.Cache)

	api := e.Group("/api")
	api.GET("/emissions", searchHandler.Search)
	api.GET("/ping", handler.PingHandler)
	e.GET("/health", handler.HealthHandler)

	if a.Jobs != nil {
		jobHandler := handler.NewJobHandler(a.Aggregator, a.Jobs)
		api.POST("/requests", jobHandler.Submit)
		api.POST("/requests/:id", jobHandler.Submit)
		api.GET("/results/:id", jobHandler.Result)
		e.GET("/processRequest/:id", jobHandler.Process)
	} else {
		log.Println("Job routes disabled")
	}
	return e
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		log.Fatalf("Server: %v", err)
	}
}
