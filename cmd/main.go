package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/yungbote/voyagerverse-backend/internal/app"
	"github.com/yungbote/voyagerverse-backend/internal/platform/envutil"
	"github.com/yungbote/voyagerverse-backend/internal/platform/logger"
	"github.com/yungbote/voyagerverse-backend/internal/scenario"
)

var (
	addr string

	rootCmd = &cobra.Command{
		Use:   "voyagerverse",
		Short: "Adaptive itinerary re-planning service",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// A missing .env is normal outside local development.
			_ = godotenv.Load()
		},
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE:  runServe,
	}

	scenarioCmd = &cobra.Command{
		Use:   "scenario",
		Short: "Run the Tom & Priya heat-wave scenario and print the result as JSON",
		RunE:  runScenario,
	}
)

func init() {
	serveCmd.Flags().StringVar(&addr, "addr", "", "listen address (defaults to :$PORT)")
	rootCmd.AddCommand(serveCmd, scenarioCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}
	defer a.Close()

	if err := a.Run(ctx, addr); err != nil {
		a.Log.Error("Server stopped", "error", err)
		return err
	}
	a.Log.Info("Server stopped")
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	log, err := logger.New(envutil.String("LOG_MODE", "development"))
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	f, err := scenario.TomAndPriya()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
	defer cancel()
	res, err := scenario.Run(ctx, log, app.Collaborators(log), f, nil)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}
