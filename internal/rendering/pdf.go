package rendering

import (
	"bytes"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/jonathan/ats-optimizer/internal/types"
)

// pdfEpoch is written as the document creation and modification date so that
// identical input renders to identical bytes.
var pdfEpoch = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

const pdfFont = "Helvetica"

// fpdfMeasurer measures body text with the core Helvetica metrics. Runes outside
// ASCII are measured as "o", which is close enough for wrapping accented Latin text.
type fpdfMeasurer struct {
	pdf   *fpdf.Fpdf
	cache map[rune]float64
}

func newFpdfMeasurer(pdf *fpdf.Fpdf, size float64) *fpdfMeasurer {
	pdf.SetFont(pdfFont, "", size)
	return &fpdfMeasurer{pdf: pdf, cache: make(map[rune]float64)}
}

func (m *fpdfMeasurer) TextWidth(text string) float64 {
	total := 0.0
	for _, r := range text {
		w, ok := m.cache[r]
		if !ok {
			probe := string(r)
			if r > 0x7e || r < 0x20 {
				probe = "o"
			}
			w = m.pdf.GetStringWidth(probe)
			m.cache[r] = w
		}
		total += w
	}
	return total
}

func newPDF(p PageParams) *fpdf.Fpdf {
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: p.Width, Ht: p.Height},
	})
	pdf.SetCreationDate(pdfEpoch)
	pdf.SetModificationDate(pdfEpoch)
	pdf.SetCatalogSort(true)
	pdf.SetCompression(true)
	pdf.SetAutoPageBreak(false, p.FooterMargin)
	pdf.SetMargins(p.Margin, p.Margin, p.Margin)
	pdf.SetTitle("Résumé", true)
	pdf.SetCreator("ats-optimizer", false)
	return pdf
}

// FixedLayout paginates set and draws it into a PDF.
func FixedLayout(set []types.Section, p PageParams) ([]byte, error) {
	if err := p.Check(); err != nil {
		return nil, &RenderError{Format: FormatPDF, Message: "invalid page parameters", Cause: err}
	}

	pdf := newPDF(p)
	layout := Paginate(set, p, newFpdfMeasurer(pdf, p.BodyFontSize))
	drawLayout(pdf, layout)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, &RenderError{Format: FormatPDF, Message: "failed to write document", Cause: err}
	}
	return buf.Bytes(), nil
}

func drawLayout(pdf *fpdf.Fpdf, layout Layout) {
	p := layout.Params
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	for _, page := range layout.Pages {
		pdf.AddPage()
		for _, item := range page.Items {
			switch item.Kind {
			case ItemTitle:
				pdf.SetFont(pdfFont, "B", p.TitleFontSize)
				pdf.SetTextColor(30, 41, 59)
				pdf.Text(p.Margin, item.Y, tr(item.Text))
			case ItemRule:
				pdf.SetDrawColor(226, 232, 240)
				pdf.Line(p.Margin, item.Y, p.Width-p.Margin, item.Y)
			case ItemLine:
				if item.Text == "" {
					continue
				}
				pdf.SetFont(pdfFont, "", p.BodyFontSize)
				pdf.SetTextColor(51, 65, 85)
				pdf.Text(p.Margin, item.Y, tr(item.Text))
			}
		}
	}
}
