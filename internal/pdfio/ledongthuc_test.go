package pdfio

import (
	"testing"

	"github.com/ledongthuc/pdf"
	"github.com/stretchr/testify/require"
)

func TestBuildRowsMergesBaselines(t *testing.T) {
	texts := []pdf.Text{
		{Font: "Times", FontSize: 12, X: 72, Y: 700, W: 30, S: "Hello"},
		{Font: "Times", FontSize: 12, X: 104, Y: 700, W: 30, S: "world"},
		{Font: "Times", FontSize: 12, X: 72, Y: 680, W: 40, S: "below"},
	}
	rows := buildRows(texts)
	require.Len(t, rows, 2)

	require.Equal(t, "Hello world", rows[0].text.String())
	require.Equal(t, 72.0, rows[0].minX)
	require.Equal(t, 134.0, rows[0].maxX)

	require.Equal(t, "below", rows[1].text.String())
}

func TestBuildRowsBiggestFontWinsRow(t *testing.T) {
	texts := []pdf.Text{
		{Font: "Times", FontSize: 12, X: 72, Y: 700, W: 30, S: "small"},
		{Font: "Times-Bold", FontSize: 18, X: 110, Y: 694, W: 30, S: "BIG"},
	}
	rows := buildRows(texts)
	require.Len(t, rows, 1)
	require.Equal(t, 18.0, rows[0].size)
	require.Equal(t, "Times-Bold", rows[0].font)
}

func TestGroupRowsMergesAdjacentRows(t *testing.T) {
	mkRow := func(y float64, font, s string) *textRow {
		r := &textRow{y: y, minX: 72, maxX: 200, font: font, size: 12}
		r.text.WriteString(s)
		return r
	}
	rows := []*textRow{
		mkRow(100, "Times", "First line"),
		mkRow(115, "Times", "second line"),
		mkRow(160, "Times", "far below"),
	}

	spans := groupRows(rows, 7)
	require.Len(t, spans, 2)

	require.Equal(t, "First line\nsecond line", spans[0].Text)
	require.Equal(t, 7, spans[0].Page)
	require.Equal(t, 100.0, spans[0].BBox.Y)
	require.Equal(t, 27.0, spans[0].BBox.Height)

	require.Equal(t, "far below", spans[1].Text)
}

func TestSameBlock(t *testing.T) {
	prev := textRow{y: 100, size: 12, font: "Times"}

	require.True(t, sameBlock(prev, textRow{y: 115, font: "Times"}))
	require.False(t, sameBlock(prev, textRow{y: 130, font: "Times"}))
	require.False(t, sameBlock(prev, textRow{y: 115, font: "Helvetica"}))
	require.False(t, sameBlock(prev, textRow{y: 90, font: "Times"}))
}

func TestTopDownY(t *testing.T) {
	require.Equal(t, 80.0, topDownY(700, 12))
	require.Equal(t, 0.0, topDownY(800, 12))
}

func TestIsBoldFont(t *testing.T) {
	require.True(t, isBoldFont("Times-Bold"))
	require.True(t, isBoldFont("Arial-Black"))
	require.False(t, isBoldFont("Helvetica"))
}
