package services

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"feepay-module/config"
	"feepay-module/models"

	"github.com/jung-kurt/gofpdf"
)

// NewReceiptID generates a display receipt identifier. Uniqueness for the
// ledger comes from the razorpay_payment_id constraint, not from this token.
func NewReceiptID() string {
	return fmt.Sprintf("RCP-%d", time.Now().UnixMilli())
}

// GenerateReceiptPDF renders a payment receipt and returns the file path.
func GenerateReceiptPDF(rec *models.PaymentRecord) (string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 18)
	pdf.Cell(0, 10, "Payment Receipt")
	pdf.Ln(14)

	pdf.SetFont("Arial", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Receipt No: %s", rec.ReceiptID))
	pdf.Ln(8)
	pdf.Cell(0, 8, fmt.Sprintf("Date: %s", rec.RecordedAt.Format("02 Jan 2006 15:04")))
	pdf.Ln(12)

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(60, 8, "Student ID")
	pdf.SetFont("Arial", "", 12)
	pdf.Cell(0, 8, rec.StudentID)
	pdf.Ln(8)

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(60, 8, "Course ID")
	pdf.SetFont("Arial", "", 12)
	pdf.Cell(0, 8, rec.CourseID)
	pdf.Ln(8)

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(60, 8, "Payment Method")
	pdf.SetFont("Arial", "", 12)
	pdf.Cell(0, 8, rec.PaymentMethod)
	pdf.Ln(8)

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(60, 8, "Payment Reference")
	pdf.SetFont("Arial", "", 12)
	pdf.Cell(0, 8, rec.PaymentID)
	pdf.Ln(12)

	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(60, 10, "Amount Paid")
	pdf.Cell(0, 10, fmt.Sprintf("Rs. %.2f", rec.AmountPaid))
	pdf.Ln(16)

	pdf.SetFont("Arial", "I", 10)
	pdf.Cell(0, 8, "This is a system generated receipt.")

	dir := config.AppConfig.ReceiptDir
	if dir == "" {
		dir = "receipts"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("error creating receipt directory: %w", err)
	}

	fileName := filepath.Join(dir, fmt.Sprintf("%s.pdf", rec.ReceiptID))
	if err := pdf.OutputFileAndClose(fileName); err != nil {
		return "", fmt.Errorf("error generating receipt PDF: %w", err)
	}

	return fileName, nil
}
