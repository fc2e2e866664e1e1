package export

import (
	"bytes"
	"testing"

	"gourmet-guide/internal/mealplan"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFPDFMeasurer(t *testing.T) {
	m := NewFPDFMeasurer()

	plain := m.StringWidth("Chicken salad", Font{Size: BodySize})
	bold := m.StringWidth("Chicken salad", Font{Size: BodySize, Bold: true})
	large := m.StringWidth("Chicken salad", Font{Size: TitleSize})

	assert.Greater(t, plain, 0.0)
	assert.Greater(t, bold, plain)
	assert.InDelta(t, plain*TitleSize/BodySize, large, 1e-6)
	assert.Zero(t, m.StringWidth("", Font{Size: BodySize}))
}

func TestExporter_Export(t *testing.T) {
	e := NewExporter()
	doc := mealplan.Parse(exampleReply)

	var first, second bytes.Buffer
	require.NoError(t, e.Export(&first, doc))
	require.NoError(t, e.Export(&second, doc))

	assert.True(t, bytes.HasPrefix(first.Bytes(), []byte("%PDF-")))
	assert.Contains(t, first.String(), "%%EOF")
	assert.Equal(t, first.Bytes(), second.Bytes(), "same plan should give the same file")
}

func TestExporter_MultiPage(t *testing.T) {
	e := NewExporter()
	doc := planOfDays(30, "Grilled chicken with steamed broccoli and brown rice - 650 calories")

	laid := e.Layout(doc)
	require.Greater(t, laid.Pages, 1)

	var buf bytes.Buffer
	require.NoError(t, WritePDF(&buf, laid, e.Geometry, Epoch))
	pages := bytes.Count(buf.Bytes(), []byte("/Type /Page")) - bytes.Count(buf.Bytes(), []byte("/Type /Pages"))
	assert.Equal(t, laid.Pages, pages)
}

func TestExporter_EmptyPlan(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewExporter().Export(&buf, mealplan.Document{}))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}
