package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Without a database the admin handlers get a nil store and must refuse
// cleanly instead of panicking.
func TestRecordPaymentWithoutStore(t *testing.T) {
	handler := RecordPayment(nil)

	body, _ := json.Marshal(RecordPaymentRequest{
		StudentID: "S1",
		Amount:    1870.00,
	})
	req := httptest.NewRequest(http.MethodPost, "/record-payment", bytes.NewBuffer(body))
	rr := httptest.NewRecorder()
	handler(rr, req)

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)

	var resp map[string]string
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "Payment records unavailable", resp["error"])
}

func TestListPaymentsWithoutStore(t *testing.T) {
	handler := ListPayments(nil)

	req := httptest.NewRequest(http.MethodGet, "/payments", nil)
	rr := httptest.NewRecorder()
	handler(rr, req)

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestExportPaymentsWithoutStore(t *testing.T) {
	handler := ExportPayments(nil)

	req := httptest.NewRequest(http.MethodGet, "/payments/export", nil)
	rr := httptest.NewRecorder()
	handler(rr, req)

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestDownloadReceiptWithoutStore(t *testing.T) {
	handler := DownloadReceipt(nil)

	req := httptest.NewRequest(http.MethodGet, "/receipt?receipt_id=RCP-1", nil)
	rr := httptest.NewRecorder()
	handler(rr, req)

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestRecordPaymentMethodNotAllowed(t *testing.T) {
	handler := RecordPayment(nil)

	req := httptest.NewRequest(http.MethodGet, "/record-payment", nil)
	rr := httptest.NewRecorder()
	handler(rr, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}
