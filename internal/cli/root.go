// Package cli implements the gourmet-guide command line.
package cli

import (
	"context"
	"fmt"

	"gourmet-guide/internal/app"
	"gourmet-guide/internal/config"
	"gourmet-guide/internal/database"
	"gourmet-guide/internal/llm"
	"gourmet-guide/internal/metrics"
	"gourmet-guide/internal/planner"

	"github.com/spf13/cobra"
)

var version = "dev"

var envFile string

var rootCmd = &cobra.Command{
	Use:   "gourmet-guide",
	Short: "Generate meal plans from the ingredients you have",
	Long: `gourmet-guide asks a language model for a day-by-day meal plan built
from a list of ingredients, renders it for browsers and chat, and exports it
as a PDF.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "optional file of environment variables")
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// newApp wires the model client, the planner and the metrics store. The
// returned cleanup releases all of them.
func newApp(ctx context.Context, cfg *config.Config) (*app.App, func(), error) {
	gen, closer, err := llm.NewFromConfig(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize %s client: %w", cfg.LLMProvider, err)
	}

	db, err := database.Open(cfg.MetricsDBPath)
	if err != nil {
		closer.Close()
		return nil, nil, fmt.Errorf("failed to initialize metrics database: %w", err)
	}

	p := planner.NewPlanner(gen, cfg.GenerationTimeout)
	a := app.NewApp(p, app.WithMetrics(metrics.NewStore(db.SQL), cfg.MetricsDBPath))

	cleanup := func() {
		a.Wait()
		db.Close()
		closer.Close()
	}
	return a, cleanup, nil
}
