package cli

import (
	"fmt"
	"io"
	"os"

	"gourmet-guide/internal/app"

	"github.com/spf13/cobra"
)

type exportFunc func(w io.Writer, raw string) error

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export <reply-file>",
	Short: "Export a saved plan reply as a PDF",
	Long:  `Reads a raw plan reply from a file, or from stdin when the file is "-", and writes it as an A4 PDF.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "meal_plan.pdf", "PDF file to write")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	var (
		raw []byte
		err error
	)
	if args[0] == "-" {
		raw, err = io.ReadAll(cmd.InOrStdin())
	} else {
		raw, err = os.ReadFile(args[0])
	}
	if err != nil {
		return fmt.Errorf("failed to read reply: %w", err)
	}

	// Exporting needs neither a model nor the metrics store.
	a := app.NewApp(nil)
	return writePDF(cmd, a.ExportPDF, exportOutput, string(raw))
}
