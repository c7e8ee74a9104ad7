package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"feepay-module/config"
	"feepay-module/errors"
	"feepay-module/gateway"
	"feepay-module/logger"
	"feepay-module/models"

	"github.com/razorpay/razorpay-go"
)

// PaymentRecorder persists payment records. Inserts are rejected with a
// Conflict error when a record for the same razorpay_payment_id already
// exists.
type PaymentRecorder interface {
	InsertPayment(ctx context.Context, rec *models.PaymentRecord) error
}

// PaymentService converts an untrusted client claim of "I paid" into a
// durable payment record, without ever trusting client-supplied amounts.
type PaymentService struct {
	keySecret string
	gateway   gateway.Fetcher
	store     PaymentRecorder
}

// NewPaymentService creates a PaymentService. A nil store puts the service
// in degraded mode: verification still succeeds, nothing is recorded.
func NewPaymentService(keySecret string, fetcher gateway.Fetcher, store PaymentRecorder) *PaymentService {
	return &PaymentService{
		keySecret: keySecret,
		gateway:   fetcher,
		store:     store,
	}
}

// VerifyResult is the outcome of a successful verification. RecordErr holds
// the persistence failure, if any; the HTTP handler decides whether to
// surface it (it deliberately does not - the payment is real regardless of
// whether our own bookkeeping write went through).
type VerifyResult struct {
	ReceiptID  string
	AmountPaid float64
	PaymentID  string
	Recorded   bool
	RecordErr  error
}

// VerifyAndRecord validates a payment confirmation, fetches the
// authoritative amount from Razorpay and records the payment at most once
// per razorpay_payment_id.
func (s *PaymentService) VerifyAndRecord(ctx context.Context, conf models.PaymentConfirmation) (*VerifyResult, error) {
	// Precondition check, not a security control
	if conf.PaymentID == "" || conf.OrderID == "" || conf.Signature == "" {
		return nil, errors.E(errors.Invalid, "missing payment details")
	}

	// Sole authentication boundary against forged payment claims
	if !s.VerifySignature(conf.OrderID, conf.PaymentID, conf.Signature) {
		return nil, errors.E(errors.Unauthorized, "invalid payment signature")
	}

	payment, err := s.gateway.FetchPayment(ctx, conf.PaymentID)
	if err != nil {
		return nil, err
	}

	// Razorpay reports the amount in paise; the ledger keeps rupees.
	// This derived amount is the only amount ever persisted or returned.
	amountPaid := float64(payment.Amount) / 100

	result := &VerifyResult{
		ReceiptID:  NewReceiptID(),
		AmountPaid: amountPaid,
		PaymentID:  conf.PaymentID,
	}

	var rec *models.PaymentRecord
	if s.store != nil {
		method := payment.Method
		if method == "" {
			method = "UPI"
		}

		rec = &models.PaymentRecord{
			ReceiptID:     result.ReceiptID,
			StudentID:     conf.StudentID,
			CourseID:      conf.CourseID,
			AmountPaid:    amountPaid,
			PaymentMethod: method,
			PaymentID:     conf.PaymentID,
			OrderID:       conf.OrderID,
			Status:        "completed",
		}

		if err := s.store.InsertPayment(ctx, rec); err != nil {
			result.RecordErr = err
		} else {
			result.Recorded = true
		}
	}

	if result.Recorded {
		s.publishPaymentVerified(conf, result)
		s.queueReceiptEmail(payment.Email, rec)
	}

	return result, nil
}

// VerifySignature recomputes the checkout HMAC over "orderID|paymentID" and
// compares it to the client-supplied signature in constant time.
func (s *PaymentService) VerifySignature(orderID, paymentID, signature string) bool {
	if s.keySecret == "" {
		return false
	}

	h := hmac.New(sha256.New, []byte(s.keySecret))
	fmt.Fprintf(h, "%s|%s", orderID, paymentID)
	expected := hex.EncodeToString(h.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signature))
}

// publishPaymentVerified publishes a payment.verified event (best-effort)
func (s *PaymentService) publishPaymentVerified(conf models.PaymentConfirmation, result *VerifyResult) {
	go func() {
		evt := map[string]interface{}{
			"event":      "payment.verified",
			"student_id": conf.StudentID,
			"course_id":  conf.CourseID,
			"order_id":   conf.OrderID,
			"payment_id": conf.PaymentID,
			"receipt_id": result.ReceiptID,
			"amount":     result.AmountPaid,
			"currency":   "INR",
			"status":     "completed",
			"ts":         time.Now().UTC().Format(time.RFC3339),
		}
		if err := Publish("payments", fmt.Sprintf("payment-%s", conf.PaymentID), evt); err != nil {
			logger.Warn("Failed to publish payment.verified event: %v", err)
		}
	}()
}

// queueReceiptEmail queues a receipt email for the payer (best-effort).
// Razorpay reports the payer email on the payment entity.
func (s *PaymentService) queueReceiptEmail(email string, rec *models.PaymentRecord) {
	if email == "" || rec == nil {
		return
	}
	go func() {
		if err := sendReceiptWithPDF(email, rec); err != nil {
			logger.Warn("Failed to queue receipt email for %s: %v", rec.ReceiptID, err)
		}
	}()
}

// InitiatePaymentRequest represents payment initiation request
type InitiatePaymentRequest struct {
	StudentID string  `json:"student_id"`
	CourseID  string  `json:"course_id"`
	Amount    float64 `json:"amount"`
}

// CreateRazorpayOrder creates a Razorpay order for the browser checkout
// widget. Amount is in rupees.
func CreateRazorpayOrder(req InitiatePaymentRequest) (*models.RazorpayOrder, error) {
	keyID := config.AppConfig.RazorpayKeyID
	keySecret := config.AppConfig.RazorpayKeySecret

	if keyID == "" || keySecret == "" {
		return nil, errors.E(errors.Internal, "razorpay credentials not configured")
	}

	if req.Amount <= 0 {
		return nil, errors.E(errors.Invalid, "invalid amount: must be greater than 0")
	}

	client := razorpay.NewClient(keyID, keySecret)

	receipt := fmt.Sprintf("rcpt_%s_%d", req.StudentID, time.Now().Unix())
	data := map[string]interface{}{
		"amount":   int(req.Amount * 100), // Convert to paise
		"currency": "INR",
		"receipt":  receipt,
	}

	resp, err := client.Order.Create(data, nil)
	if err != nil {
		return nil, errors.E(errors.Upstream, "error creating razorpay order", err)
	}

	orderID, ok := resp["id"].(string)
	if !ok {
		return nil, errors.E(errors.Upstream, "razorpay order response missing id")
	}

	return &models.RazorpayOrder{
		OrderID:  orderID,
		Amount:   req.Amount,
		Currency: "INR",
		Receipt:  receipt,
	}, nil
}
