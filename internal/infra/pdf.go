package infra

// pdf.go — end-of-shift reconciliation report using go-pdf/fpdf.
// A5 portrait with:
//   - Business header and shift identification
//   - Sales breakdown per payment method
//   - Expected vs counted cash with the variance classification
//   - Cashier notes when the drawer did not balance
//
// The output file is saved to storagePath/shift_{id}.pdf.

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

// ShiftReport carries everything the PDF needs. The worker fills it from the
// job payload so report generation never touches the database.
type ShiftReport struct {
	ShiftSessionID    string
	CashierID         string
	RegisterID        int
	OpeningCash       decimal.Decimal
	CashSales         decimal.Decimal
	CardSales         decimal.Decimal
	TransferSales     decimal.Decimal
	EwalletSales      decimal.Decimal
	CreditSales       decimal.Decimal
	TotalSales        decimal.Decimal
	TotalTransactions int64
	ExpectedCash      decimal.Decimal
	ActualCash        decimal.Decimal
	Variance          decimal.Decimal
	Classification    string
	Notes             *string
	OpenedAt          time.Time
	ClosedAt          time.Time
}

// GenerateShiftReportPDF renders the reconciliation report for a closed shift.
// storagePath is the directory where the PDF will be written (created if
// needed). Returns the absolute path to the generated file.
func GenerateShiftReportPDF(report *ShiftReport, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	fileName := fmt.Sprintf("shift_%s.pdf", report.ShiftSessionID)
	filePath := filepath.Join(storagePath, fileName)

	pdf := fpdf.New("P", "mm", "A5", "")
	pdf.SetMargins(12, 12, 12)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 24

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(contentW, 8, "WarungPOS", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW, 5, "End-of-Shift Reconciliation Report", "", 1, "C", false, 0, "")
	pdf.Ln(3)

	// ── Shift info ───────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(contentW, 5, fmt.Sprintf("Shift: %s", report.ShiftSessionID), "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 5, fmt.Sprintf("Register: %d    Cashier: %s", report.RegisterID, report.CashierID), "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 5, fmt.Sprintf("Opened: %s", report.OpenedAt.Format("02/01/2006 15:04")), "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 5, fmt.Sprintf("Closed: %s", report.ClosedAt.Format("02/01/2006 15:04")), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.Line(12, pdf.GetY(), pageW-12, pdf.GetY())
	pdf.Ln(3)

	// ── Sales breakdown ───────────────────────────────────────────────────────
	labelW := contentW * 0.6
	valueW := contentW * 0.4

	row := func(label string, value decimal.Decimal) {
		pdf.CellFormat(labelW, 5, label, "", 0, "L", false, 0, "")
		pdf.CellFormat(valueW, 5, "Rp "+value.StringFixed(2), "", 1, "R", false, 0, "")
	}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(contentW, 6, fmt.Sprintf("Sales (%d transactions)", report.TotalTransactions), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	row("Cash", report.CashSales)
	row("Card", report.CardSales)
	row("Transfer", report.TransferSales)
	row("E-wallet", report.EwalletSales)
	row("Credit", report.CreditSales)
	pdf.SetFont("Helvetica", "B", 8)
	row("Total sales", report.TotalSales)
	pdf.Ln(2)

	pdf.Line(12, pdf.GetY(), pageW-12, pdf.GetY())
	pdf.Ln(3)

	// ── Reconciliation ────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(contentW, 6, "Cash reconciliation", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	row("Opening cash", report.OpeningCash)
	row("Cash sales", report.CashSales)
	row("Expected in drawer", report.ExpectedCash)
	row("Counted", report.ActualCash)
	pdf.SetFont("Helvetica", "B", 9)
	row(fmt.Sprintf("Variance (%s)", report.Classification), report.Variance)

	if report.Notes != nil && *report.Notes != "" {
		pdf.Ln(3)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.MultiCell(contentW, 4, "Notes: "+*report.Notes, "", "L", false)
	}

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}

	return filePath, nil
}
