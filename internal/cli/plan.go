package cli

import (
	"fmt"
	"os"
	"strings"

	"gourmet-guide/internal/mealplan"
	"gourmet-guide/internal/planner"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
)

var (
	planDays int
	planPDF  string
	planRaw  bool
)

var planCmd = &cobra.Command{
	Use:   "plan <ingredients>",
	Short: "Generate a meal plan and print it",
	Long: `Requests a plan for the given ingredients and prints it rendered for the
terminal. Use --raw to print the reply exactly as the model sent it and --pdf
to also write the PDF export.`,
	Example: `  gourmet-guide plan "rice, chicken, broccoli" --days 3 --pdf plan.pdf`,
	Args:    cobra.MinimumNArgs(1),
	RunE:    runPlan,
}

func init() {
	planCmd.Flags().IntVarP(&planDays, "days", "d", 7, "number of days to plan")
	planCmd.Flags().StringVar(&planPDF, "pdf", "", "write the plan as a PDF to this file")
	planCmd.Flags().BoolVar(&planRaw, "raw", false, "print the unrendered reply")
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	a, cleanup, err := newApp(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	req := planner.Request{Ingredients: strings.Join(args, " "), Days: planDays}
	raw, err := a.GeneratePlan(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("failed to generate plan: %w", err)
	}

	if planRaw || mealplan.IsRejection(raw) {
		fmt.Fprintln(cmd.OutOrStdout(), raw)
	} else {
		fmt.Fprint(cmd.OutOrStdout(), renderMarkdown(raw))
	}

	if planPDF == "" || mealplan.IsRejection(raw) {
		return nil
	}
	return writePDF(cmd, a.ExportPDF, planPDF, raw)
}

// renderMarkdown styles a reply for the terminal, falling back to the raw
// text when the renderer is unavailable.
func renderMarkdown(raw string) string {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(80))
	if err != nil {
		return raw
	}
	out, err := r.Render(raw)
	if err != nil {
		return raw
	}
	return out
}

func writePDF(cmd *cobra.Command, export exportFunc, path, raw string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := export(f, raw); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", path)
	return nil
}
