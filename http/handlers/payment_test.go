package handlers

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"feepay-module/errors"
	"feepay-module/gateway"
	"feepay-module/http/middleware"
	"feepay-module/services"

	"github.com/stretchr/testify/assert"
)

const testKeySecret = "handler_test_secret"

type stubFetcher struct {
	payment *gateway.Payment
	err     error
	calls   int
}

func (s *stubFetcher) FetchPayment(ctx context.Context, paymentID string) (*gateway.Payment, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.payment, nil
}

func signFor(orderID, paymentID string) string {
	h := hmac.New(sha256.New, []byte(testKeySecret))
	fmt.Fprintf(h, "%s|%s", orderID, paymentID)
	return hex.EncodeToString(h.Sum(nil))
}

func verifyHandler(fetcher *stubFetcher) http.HandlerFunc {
	svc := services.NewPaymentService(testKeySecret, fetcher, nil)
	return middleware.EnableCORS(VerifyPayment(svc))
}

func TestVerifyPaymentPreflight(t *testing.T) {
	handler := verifyHandler(&stubFetcher{})

	req := httptest.NewRequest(http.MethodOptions, "/verify-payment", nil)
	rr := httptest.NewRecorder()
	handler(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "Content-Type", rr.Header().Get("Access-Control-Allow-Headers"))
	assert.Equal(t, "GET, POST, OPTIONS", rr.Header().Get("Access-Control-Allow-Methods"))
	assert.Empty(t, rr.Body.String())
}

func TestVerifyPaymentMethodNotAllowed(t *testing.T) {
	handler := verifyHandler(&stubFetcher{})

	req := httptest.NewRequest(http.MethodGet, "/verify-payment", nil)
	rr := httptest.NewRecorder()
	handler(rr, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestVerifyPaymentInvalidBody(t *testing.T) {
	handler := verifyHandler(&stubFetcher{})

	req := httptest.NewRequest(http.MethodPost, "/verify-payment", bytes.NewBufferString("{not json"))
	rr := httptest.NewRecorder()
	handler(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestVerifyPaymentMissingFields(t *testing.T) {
	fetcher := &stubFetcher{}
	handler := verifyHandler(fetcher)

	body, _ := json.Marshal(map[string]string{
		"razorpay_order_id": "order_1",
	})
	req := httptest.NewRequest(http.MethodPost, "/verify-payment", bytes.NewBuffer(body))
	rr := httptest.NewRecorder()
	handler(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)

	var resp map[string]string
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "Missing payment details", resp["error"])
	assert.Equal(t, 0, fetcher.calls)
}

func TestVerifyPaymentInvalidSignature(t *testing.T) {
	fetcher := &stubFetcher{}
	handler := verifyHandler(fetcher)

	body, _ := json.Marshal(map[string]string{
		"razorpay_payment_id": "pay_1",
		"razorpay_order_id":   "order_1",
		"razorpay_signature":  "forged",
	})
	req := httptest.NewRequest(http.MethodPost, "/verify-payment", bytes.NewBuffer(body))
	rr := httptest.NewRecorder()
	handler(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)

	var resp map[string]string
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "Invalid payment signature", resp["error"])
	assert.Equal(t, 0, fetcher.calls)
}

func TestVerifyPaymentGatewayFailure(t *testing.T) {
	fetcher := &stubFetcher{err: errors.E(errors.Upstream, "not found")}
	handler := verifyHandler(fetcher)

	body, _ := json.Marshal(map[string]string{
		"razorpay_payment_id": "pay_1",
		"razorpay_order_id":   "order_1",
		"razorpay_signature":  signFor("order_1", "pay_1"),
	})
	req := httptest.NewRequest(http.MethodPost, "/verify-payment", bytes.NewBuffer(body))
	rr := httptest.NewRecorder()
	handler(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)

	var resp map[string]string
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "not found", resp["error"])
}

func TestVerifyPaymentSuccess(t *testing.T) {
	fetcher := &stubFetcher{payment: &gateway.Payment{
		ID:     "pay_1",
		Amount: 50000,
		Status: "captured",
	}}
	handler := verifyHandler(fetcher)

	body, _ := json.Marshal(map[string]string{
		"razorpay_payment_id": "pay_1",
		"razorpay_order_id":   "order_1",
		"razorpay_signature":  signFor("order_1", "pay_1"),
		"student_id":          "S1",
		"course_id":           "C1",
	})
	req := httptest.NewRequest(http.MethodPost, "/verify-payment", bytes.NewBuffer(body))
	rr := httptest.NewRecorder()
	handler(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))

	var resp VerifyPaymentResponse
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.ReceiptID)
	assert.Equal(t, 500.00, resp.AmountPaid)
	assert.Equal(t, "pay_1", resp.PaymentID)
	assert.Equal(t, 1, fetcher.calls)
}
