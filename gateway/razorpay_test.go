package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"feepay-module/errors"

	"github.com/stretchr/testify/assert"
)

func newTestClient(serverURL string) *Client {
	c := NewClient("rzp_test_key", "rzp_test_secret")
	c.BaseURL = serverURL
	return c
}

func TestFetchPaymentSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/payments/pay_1", r.URL.Path)

		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "rzp_test_key", user)
		assert.Equal(t, "rzp_test_secret", pass)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"pay_1","amount":150000,"currency":"INR","status":"captured","method":"upi","order_id":"order_1","email":"payer@example.com"}`))
	}))
	defer srv.Close()

	payment, err := newTestClient(srv.URL).FetchPayment(context.Background(), "pay_1")

	assert.NoError(t, err)
	assert.Equal(t, "pay_1", payment.ID)
	assert.Equal(t, int64(150000), payment.Amount)
	assert.Equal(t, "captured", payment.Status)
	assert.Equal(t, "upi", payment.Method)
	assert.Equal(t, "payer@example.com", payment.Email)
}

func TestFetchPaymentNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":{"code":"BAD_REQUEST_ERROR","description":"not found"}}`))
	}))
	defer srv.Close()

	payment, err := newTestClient(srv.URL).FetchPayment(context.Background(), "pay_missing")

	assert.Nil(t, payment)
	assert.Equal(t, errors.Upstream, errors.KindOf(err))
	assert.Equal(t, "not found", errors.MessageOf(err))
}

func TestFetchPaymentErrorWithoutDescription(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`upstream exploded`))
	}))
	defer srv.Close()

	payment, err := newTestClient(srv.URL).FetchPayment(context.Background(), "pay_1")

	assert.Nil(t, payment)
	assert.Equal(t, errors.Upstream, errors.KindOf(err))
	assert.Equal(t, "failed to fetch payment", errors.MessageOf(err))
}

func TestFetchPaymentInvalidJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<!doctype html><html>gateway maintenance</html>`))
	}))
	defer srv.Close()

	payment, err := newTestClient(srv.URL).FetchPayment(context.Background(), "pay_1")

	assert.Nil(t, payment)
	assert.Equal(t, errors.Upstream, errors.KindOf(err))
	assert.Equal(t, "invalid response from razorpay", errors.MessageOf(err))
}

func TestFetchPaymentConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	payment, err := newTestClient(srv.URL).FetchPayment(context.Background(), "pay_1")

	assert.Nil(t, payment)
	assert.Equal(t, errors.Upstream, errors.KindOf(err))
}
