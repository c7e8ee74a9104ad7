package services

import (
	"bytes"
	"context"
	"fmt"

	"feepay-module/models"

	"github.com/xuri/excelize/v2"
)

var exportHeaders = []string{
	"Receipt ID", "Student ID", "Course ID", "Amount Paid",
	"Payment Method", "Payment ID", "Order ID", "Status", "Recorded At",
}

// ExportPaymentsExcel renders the payment ledger as an xlsx workbook.
func ExportPaymentsExcel(ctx context.Context, store *PaymentStore, limit int) (*bytes.Buffer, error) {
	payments, err := store.ListPayments(ctx, limit)
	if err != nil {
		return nil, err
	}
	return buildPaymentsWorkbook(payments)
}

// buildPaymentsWorkbook lays the records out on a single sheet with a
// header row.
func buildPaymentsWorkbook(payments []models.PaymentRecord) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Payments"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	for i, header := range exportHeaders {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to compute header cell: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
	}

	for row, rec := range payments {
		values := []interface{}{
			rec.ReceiptID, rec.StudentID, rec.CourseID, rec.AmountPaid,
			rec.PaymentMethod, rec.PaymentID, rec.OrderID, rec.Status,
			rec.RecordedAt.Format("2006-01-02 15:04:05"),
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return nil, fmt.Errorf("failed to compute cell: %w", err)
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, fmt.Errorf("failed to write row: %w", err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to render workbook: %w", err)
	}

	return buf, nil
}
