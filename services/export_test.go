package services

import (
	"testing"
	"time"

	"feepay-module/models"

	"github.com/stretchr/testify/assert"
	"github.com/xuri/excelize/v2"
)

func TestBuildPaymentsWorkbook(t *testing.T) {
	payments := []models.PaymentRecord{
		{
			ReceiptID:     "RCP-1",
			StudentID:     "S1",
			CourseID:      "C1",
			AmountPaid:    500.00,
			PaymentMethod: "UPI",
			PaymentID:     "pay_1",
			OrderID:       "order_1",
			Status:        "completed",
			RecordedAt:    time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC),
		},
		{
			ReceiptID:     "RCP-2",
			StudentID:     "S2",
			AmountPaid:    1870.00,
			PaymentMethod: "CASH",
			PaymentID:     "MANUAL-abc",
			Status:        "completed",
			RecordedAt:    time.Date(2026, 8, 2, 11, 0, 0, 0, time.UTC),
		},
	}

	buf, err := buildPaymentsWorkbook(payments)
	assert.NoError(t, err)
	assert.Greater(t, buf.Len(), 0)

	f, err := excelize.OpenReader(buf)
	assert.NoError(t, err)
	defer f.Close()

	header, err := f.GetCellValue("Payments", "A1")
	assert.NoError(t, err)
	assert.Equal(t, "Receipt ID", header)

	receipt, err := f.GetCellValue("Payments", "A2")
	assert.NoError(t, err)
	assert.Equal(t, "RCP-1", receipt)

	method, err := f.GetCellValue("Payments", "E3")
	assert.NoError(t, err)
	assert.Equal(t, "CASH", method)
}

func TestBuildPaymentsWorkbookEmpty(t *testing.T) {
	buf, err := buildPaymentsWorkbook(nil)
	assert.NoError(t, err)
	assert.Greater(t, buf.Len(), 0)
}
