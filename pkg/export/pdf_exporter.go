package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

const (
	pageWidth    = 190.0
	headerHeight = 8.0
	rowHeight    = 7.0
	bottomMargin = 15.0
)

// PDFExporter renders documents into paginated A4 tables.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render lays out each section as a table. Long tables break across pages and
// repeat their header row on every new page.
func (e *PDFExporter) Render(doc Document) ([]byte, error) {
	if len(doc.Sections) == 0 {
		return nil, fmt.Errorf("pdf requires at least one section")
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.SetAutoPageBreak(true, bottomMargin)
	pdf.AliasNbPages("{nb}")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont("Arial", "I", 8)
		pdf.CellFormat(0, 8, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	if doc.Title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, NormalizeText(doc.Title), "", 1, "C", false, 0, "")
	}
	if doc.Subtitle != "" {
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(0, 6, NormalizeText(doc.Subtitle), "", 1, "C", false, 0, "")
	}
	pdf.Ln(4)

	for _, section := range doc.Sections {
		if len(section.Data.Headers) == 0 {
			return nil, fmt.Errorf("pdf section %q has no headers", section.Heading)
		}
		writeSection(pdf, section)
		pdf.Ln(6)
	}

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSection(pdf *gofpdf.Fpdf, section Section) {
	_, pageHeight := pdf.GetPageSize()
	limit := pageHeight - bottomMargin
	colWidth := pageWidth / float64(len(section.Data.Headers))

	if section.Heading != "" {
		if pdf.GetY()+10+headerHeight+rowHeight > limit {
			pdf.AddPage()
		}
		pdf.SetFont("Arial", "B", 11)
		pdf.CellFormat(0, 8, NormalizeText(section.Heading), "", 1, "L", false, 0, "")
	}

	header := func() {
		pdf.SetFont("Arial", "B", 10)
		pdf.SetFillColor(230, 230, 230)
		for _, h := range section.Data.Headers {
			pdf.CellFormat(colWidth, headerHeight, NormalizeText(h), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 9)
	}
	header()

	for _, row := range section.Data.Rows {
		if pdf.GetY()+rowHeight > limit {
			pdf.AddPage()
			header()
		}
		for _, h := range section.Data.Headers {
			text := NormalizeText(row[h])
			text = truncateToWidth(pdf, text, colWidth-2)
			pdf.CellFormat(colWidth, rowHeight, text, "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}
}

func truncateToWidth(pdf *gofpdf.Fpdf, text string, width float64) string {
	if pdf.GetStringWidth(text) <= width {
		return text
	}
	runes := []rune(text)
	for len(runes) > 0 && pdf.GetStringWidth(string(runes)+"...") > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "..."
}
