package export

import (
	"fmt"
	"io"
	"sync"
	"time"

	"gourmet-guide/internal/mealplan"

	"github.com/go-pdf/fpdf"
)

const (
	fontFamily = "Helvetica"
	// ptToMM converts a font size to millimetres; ascent is roughly 80% of it.
	ptToMM = 25.4 / 72
)

// Epoch is stamped as the creation date so identical plans give identical files.
var Epoch = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

func fontStyle(f Font) string {
	if f.Bold {
		return "B"
	}
	return ""
}

// FPDFMeasurer measures text with fpdf's core font metrics.
type FPDFMeasurer struct {
	mu  sync.Mutex
	pdf *fpdf.Fpdf
	tr  func(string) string
}

// NewFPDFMeasurer creates a Helvetica measurer working in millimetres.
func NewFPDFMeasurer() *FPDFMeasurer {
	pdf := fpdf.New("P", "mm", "A4", "")
	return &FPDFMeasurer{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
}

// StringWidth implements Measurer.
func (m *FPDFMeasurer) StringWidth(text string, f Font) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pdf.SetFont(fontFamily, fontStyle(f), f.Size)
	return m.pdf.GetStringWidth(m.tr(text))
}

// WritePDF renders a laid-out document. Page size comes from geo.
func WritePDF(w io.Writer, doc Document, geo Geometry, created time.Time) error {
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: geo.PageWidth, Ht: geo.PageHeight},
	})
	pdf.SetMargins(geo.Margins.Left, geo.Margins.Top, geo.Margins.Right)
	pdf.SetAutoPageBreak(false, geo.Margins.Bottom)
	pdf.SetCreationDate(created)
	pdf.SetModificationDate(created)
	pdf.SetCatalogSort(true)
	if doc.Title != "" {
		pdf.SetTitle(doc.Title, true)
	}

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pages := doc.Pages
	if pages < 1 {
		pages = 1
	}

	next := 0
	for page := 0; page < pages; page++ {
		pdf.AddPage()
		for ; next < len(doc.Runs) && doc.Runs[next].Page == page; next++ {
			run := doc.Runs[next]
			pdf.SetFont(fontFamily, fontStyle(run.Font), run.Font.Size)
			pdf.Text(run.X, run.Y+run.Font.Size*ptToMM*0.8, tr(run.Text))
		}
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to write pdf: %w", err)
	}
	return nil
}

// Exporter turns parsed plans into PDF files.
type Exporter struct {
	Geometry  Geometry
	Measurer  Measurer
	CreatedAt time.Time
}

// NewExporter returns an A4 exporter using fpdf metrics.
func NewExporter() *Exporter {
	return &Exporter{
		Geometry:  A4(),
		Measurer:  NewFPDFMeasurer(),
		CreatedAt: Epoch,
	}
}

// Layout lays doc out with the exporter's geometry and measurer.
func (e *Exporter) Layout(doc mealplan.Document) Document {
	return Layout(doc, e.Geometry, e.Measurer)
}

// Export writes doc as a PDF to w.
func (e *Exporter) Export(w io.Writer, doc mealplan.Document) error {
	return WritePDF(w, e.Layout(doc), e.Geometry, e.CreatedAt)
}
