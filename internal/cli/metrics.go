package cli

import (
	"fmt"

	"gourmet-guide/internal/database"
	"gourmet-guide/internal/metrics"

	"github.com/spf13/cobra"
)

var (
	cleanupDays int
	reportDays  int
)

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Show recent usage and process health",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		store, closeDB, path, err := openMetrics()
		if err != nil {
			return err
		}
		defer closeDB()

		usage, err := store.GetDailyUsage(cmd.Context(), reportDays)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), metrics.Report(usage, metrics.GetSysHealth(path)))
		return nil
	},
}

var metricsCleanupCmd = &cobra.Command{
	Use:   "metrics-cleanup",
	Short: "Remove old metric records",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		store, closeDB, _, err := openMetrics()
		if err != nil {
			return err
		}
		defer closeDB()

		affected, err := store.Cleanup(cmd.Context(), cleanupDays)
		if err != nil {
			return fmt.Errorf("cleanup failed: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Successfully removed %d old metric records.\n", affected)
		return nil
	},
}

func init() {
	metricsCmd.Flags().IntVar(&reportDays, "days", 7, "report the last N days")
	metricsCleanupCmd.Flags().IntVar(&cleanupDays, "days", 30, "keep records for the last N days")
	rootCmd.AddCommand(metricsCmd, metricsCleanupCmd)
}

func openMetrics() (*metrics.Store, func(), string, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, "", err
	}
	db, err := database.Open(cfg.MetricsDBPath)
	if err != nil {
		return nil, nil, "", fmt.Errorf("failed to open metrics store: %w", err)
	}
	return metrics.NewStore(db.SQL), func() { db.Close() }, cfg.MetricsDBPath, nil
}
