package services

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"testing"

	"feepay-module/config"
	"feepay-module/models"

	"github.com/stretchr/testify/assert"
)

const testWebhookSecret = "test_webhook_secret"

func webhookSign(payload []byte) string {
	h := hmac.New(sha256.New, []byte(testWebhookSecret))
	h.Write(payload)
	return hex.EncodeToString(h.Sum(nil))
}

func withWebhookSecret(t *testing.T) {
	t.Helper()
	prev := config.AppConfig.RazorpayWebhookSecret
	config.AppConfig.RazorpayWebhookSecret = testWebhookSecret
	t.Cleanup(func() { config.AppConfig.RazorpayWebhookSecret = prev })
}

func TestVerifyWebhookSignature(t *testing.T) {
	withWebhookSecret(t)

	payload := []byte(`{"event":"payment.captured"}`)
	assert.True(t, VerifyWebhookSignature(payload, webhookSign(payload)))
	assert.False(t, VerifyWebhookSignature(payload, "bad-signature"))
	assert.False(t, VerifyWebhookSignature([]byte(`tampered`), webhookSign(payload)))
}

func TestVerifyWebhookSignatureWithoutSecret(t *testing.T) {
	prev := config.AppConfig.RazorpayWebhookSecret
	config.AppConfig.RazorpayWebhookSecret = ""
	defer func() { config.AppConfig.RazorpayWebhookSecret = prev }()

	payload := []byte(`{}`)
	assert.False(t, VerifyWebhookSignature(payload, webhookSign(payload)))
}

func TestWebhookHandlerMethodNotAllowed(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/razorpay-webhook", nil)
	rr := httptest.NewRecorder()
	RazorpayWebhookHandler(rr, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestWebhookHandlerRejectsInvalidSignature(t *testing.T) {
	withWebhookSecret(t)

	body := []byte(`{"id":"evt_1","event":"payment.captured","payload":{}}`)
	req := httptest.NewRequest(http.MethodPost, "/razorpay-webhook", bytes.NewBuffer(body))
	req.Header.Set("X-Razorpay-Signature", "forged")
	rr := httptest.NewRecorder()
	RazorpayWebhookHandler(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestWebhookHandlerAcknowledgesUnhandledEvent(t *testing.T) {
	withWebhookSecret(t)

	body := []byte(`{"id":"evt_2","event":"refund.processed","payload":{}}`)
	req := httptest.NewRequest(http.MethodPost, "/razorpay-webhook", bytes.NewBuffer(body))
	req.Header.Set("X-Razorpay-Signature", webhookSign(body))
	rr := httptest.NewRecorder()
	RazorpayWebhookHandler(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "acknowledged")
}

func TestPaymentRecordedEvent(t *testing.T) {
	rec := &models.PaymentRecord{
		ReceiptID:     "RCP-1",
		StudentID:     "S1",
		CourseID:      "C1",
		AmountPaid:    500.00,
		PaymentMethod: "UPI",
		PaymentID:     "pay_1",
		OrderID:       "order_1",
		Status:        "completed",
	}

	evt := paymentRecordedEvent(rec, "payment.captured")

	assert.Equal(t, "payment.recorded", evt["event"])
	assert.Equal(t, "pay_1", evt["payment_id"])
	assert.Equal(t, "order_1", evt["order_id"])
	assert.Equal(t, "RCP-1", evt["receipt_id"])
	assert.Equal(t, 500.00, evt["amount"])
	assert.Equal(t, "payment.captured", evt["source"])
	assert.NotEmpty(t, evt["ts"])
}

func TestWebhookHandlerRejectsMalformedEntity(t *testing.T) {
	withWebhookSecret(t)

	body := []byte(`{"id":"evt_3","event":"payment.captured","payload":{"payment":"nope"}}`)
	req := httptest.NewRequest(http.MethodPost, "/razorpay-webhook", bytes.NewBuffer(body))
	req.Header.Set("X-Razorpay-Signature", webhookSign(body))
	rr := httptest.NewRecorder()
	RazorpayWebhookHandler(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
