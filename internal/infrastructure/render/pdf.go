// Package render produces deliverable statement artifacts.
package render

import (
	"bytes"
	"context"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"

	"imprint/internal/core/types"
	"imprint/internal/domain/statements"
)

// PDFRenderer renders royalty statements as A4 PDFs.
type PDFRenderer struct{}

// NewPDFRenderer creates a PDF statement renderer.
func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{}
}

// ContentType implements statements.Renderer.
func (r *PDFRenderer) ContentType() string {
	return "application/pdf"
}

// Render implements statements.Renderer.
func (r *PDFRenderer) Render(ctx context.Context, st *statements.Statement) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "B", 14)
	pdf.AddPage()

	pdf.Cell(0, 8, "Royalty Statement")
	pdf.Ln(10)

	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Statement: %s", st.Number))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Payee: %s", st.Payee.Name))
	pdf.Ln(5)
	if st.Payee.Address != "" {
		pdf.Cell(0, 6, st.Payee.Address)
		pdf.Ln(5)
	}
	pdf.Cell(0, 6, fmt.Sprintf("Period: %s to %s",
		st.PeriodStart.Format("2006-01-02"),
		st.PeriodEnd.Format("2006-01-02"),
	))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", st.CreatedAt.Format("2006-01-02")))
	pdf.Ln(8)

	// Per-format breakdown table
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(32, 6, "Format", "1", 0, "C", false, 0, "")
	pdf.CellFormat(24, 6, "Sold", "1", 0, "C", false, 0, "")
	pdf.CellFormat(24, 6, "Returned", "1", 0, "C", false, 0, "")
	pdf.CellFormat(38, 6, "Gross Revenue", "1", 0, "C", false, 0, "")
	pdf.CellFormat(38, 6, "Royalty", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 10)
	for _, fb := range st.Calculations.FormatBreakdowns {
		pdf.CellFormat(32, 6, string(fb.Format), "1", 0, "L", false, 0, "")
		pdf.CellFormat(24, 6, fmt.Sprintf("%d", fb.QuantitySold), "1", 0, "R", false, 0, "")
		pdf.CellFormat(24, 6, fmt.Sprintf("%d", fb.QuantityReturned), "1", 0, "R", false, 0, "")
		pdf.CellFormat(38, 6, money(fb.GrossRevenue), "1", 0, "R", false, 0, "")
		pdf.CellFormat(38, 6, money(fb.FormatRoyalty), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}
	pdf.Ln(4)

	// Totals block
	calc := st.Calculations
	r.totalLine(pdf, "Returns deduction", calc.ReturnsDeduction)
	r.totalLine(pdf, "Gross royalty", calc.GrossRoyalty)

	if calc.SplitCalculation != nil {
		pdf.Cell(0, 6, fmt.Sprintf("Co-ownership share: %s%% of %s",
			calc.SplitCalculation.OwnershipPercentage.String(),
			money(calc.SplitCalculation.TitleTotalRoyalty),
		))
		pdf.Ln(5)
	}

	ar := calc.AdvanceRecoupment
	r.totalLine(pdf, "Advance", ar.OriginalAdvance)
	r.totalLine(pdf, "Previously recouped", ar.PreviouslyRecouped)
	r.totalLine(pdf, "Recouped this period", ar.ThisPeriodsRecoupment)
	r.totalLine(pdf, "Advance remaining", ar.RemainingAdvance)

	pdf.SetFont("Arial", "B", 11)
	r.totalLine(pdf, "Net payable", calc.NetPayable)
	pdf.SetFont("Arial", "", 10)

	if lc := calc.LifetimeContext; lc != nil {
		pdf.Ln(3)
		pdf.Cell(0, 6, fmt.Sprintf("Lifetime sales: %d before, %d after this period", lc.SalesBefore, lc.SalesAfter))
		pdf.Ln(5)
		if lc.UnitsToNextTier != nil {
			pdf.Cell(0, 6, fmt.Sprintf("Units to next royalty tier: %d", *lc.UnitsToNextTier))
			pdf.Ln(5)
		}
	}

	if len(calc.Warnings) > 0 {
		pdf.Ln(3)
		pdf.SetFont("Arial", "I", 9)
		for _, w := range calc.Warnings {
			pdf.Cell(0, 5, fmt.Sprintf("Note: %s", w.Message))
			pdf.Ln(4)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *PDFRenderer) totalLine(pdf *gofpdf.Fpdf, label string, amount types.MinorUnits) {
	pdf.Cell(90, 6, label)
	pdf.CellFormat(38, 6, money(amount), "", 0, "R", false, 0, "")
	pdf.Ln(5)
}

// money formats minor units with two decimal places.
func money(m types.MinorUnits) string {
	return m.Decimal().Div(decimalHundred).StringFixed(2)
}

var decimalHundred = decimal.NewFromInt(100)

// Ensure interface compliance.
var _ statements.Renderer = (*PDFRenderer)(nil)
