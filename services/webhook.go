package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"feepay-module/config"
	"feepay-module/db"
	"feepay-module/errors"
	"feepay-module/logger"
	"feepay-module/models"

	"github.com/google/uuid"
)

// RazorpayWebhookPayload represents the structure of a Razorpay webhook
type RazorpayWebhookPayload struct {
	ID        string                 `json:"id"`
	Event     string                 `json:"event"`
	CreatedAt int64                  `json:"created_at"`
	Contains  []string               `json:"contains"`
	Payload   map[string]interface{} `json:"payload"`
}

// VerifyWebhookSignature verifies the HMAC signature of an incoming webhook
// against the raw request body.
func VerifyWebhookSignature(payload []byte, signature string) bool {
	webhookSecret := config.AppConfig.RazorpayWebhookSecret
	if webhookSecret == "" {
		return false
	}

	h := hmac.New(sha256.New, []byte(webhookSecret))
	h.Write(payload)
	expectedSignature := hex.EncodeToString(h.Sum(nil))

	return hmac.Equal([]byte(expectedSignature), []byte(signature))
}

// RazorpayWebhookHandler handles incoming Razorpay webhooks. Captured
// payments are recorded through the same insert-only ledger as the
// verification flow, so a webhook retry or a webhook racing a browser
// verification still yields a single record per payment id.
func RazorpayWebhookHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		json.NewEncoder(w).Encode(map[string]string{"error": "Method not allowed"})
		return
	}

	bodyBytes, err := io.ReadAll(r.Body)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "Failed to read request body"})
		return
	}
	defer r.Body.Close()

	signature := r.Header.Get("X-Razorpay-Signature")
	signatureValid := VerifyWebhookSignature(bodyBytes, signature)
	if !signatureValid {
		logger.Warn("Webhook rejected: invalid signature")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "Invalid webhook signature"})
		return
	}

	var payload RazorpayWebhookPayload
	if err := json.Unmarshal(bodyBytes, &payload); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "Invalid payload format"})
		return
	}

	logger.Info("Webhook received: %s", payload.Event)

	if err := logWebhookToDB(payload, signatureValid); err != nil {
		logger.Error("Webhook log error: %v", err)
	}

	switch payload.Event {
	case "payment.captured", "order.paid":
		handlePaymentCaptured(w, payload)
	case "payment.failed":
		logger.Warn("Payment failed webhook: %s", payload.ID)
		markWebhookProcessed(payload.ID, "PROCESSED", "")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{"status": "processed", "event": payload.Event})
	default:
		// Acknowledge all webhooks even if we don't handle them
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{"status": "acknowledged", "event": payload.Event})
	}
}

// handlePaymentCaptured records a captured payment in the ledger.
func handlePaymentCaptured(w http.ResponseWriter, payload RazorpayWebhookPayload) {
	entity, ok := paymentEntity(payload)
	if !ok {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "Invalid payment data structure"})
		return
	}

	paymentID, _ := entity["id"].(string)
	orderID, _ := entity["order_id"].(string)

	var amount int64
	switch v := entity["amount"].(type) {
	case float64:
		amount = int64(v)
	case int:
		amount = int64(v)
	}

	if paymentID == "" || orderID == "" {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "Missing payment_id or order_id"})
		return
	}

	method, _ := entity["method"].(string)
	if method == "" {
		method = "UPI"
	}

	// Checkout notes carry the business identifiers through the gateway
	var studentID, courseID string
	if notes, ok := entity["notes"].(map[string]interface{}); ok {
		studentID, _ = notes["student_id"].(string)
		courseID, _ = notes["course_id"].(string)
	}

	rec := &models.PaymentRecord{
		ReceiptID:     NewReceiptID(),
		StudentID:     studentID,
		CourseID:      courseID,
		AmountPaid:    float64(amount) / 100,
		PaymentMethod: method,
		PaymentID:     paymentID,
		OrderID:       orderID,
		Status:        "completed",
	}

	if db.DB != nil {
		err := NewPaymentStore().InsertPayment(context.Background(), rec)
		switch {
		case err == nil:
			logger.Info("Webhook recorded payment - Order: %s, Payment: %s, Amount: %.2f", orderID, paymentID, rec.AmountPaid)
			publishPaymentRecorded(rec, payload.Event)
		case errors.KindOf(err) == errors.Conflict:
			// Duplicate delivery or the browser verification won the race
			logger.Info("Webhook payment already recorded - Payment: %s", paymentID)
		default:
			logger.Error("Webhook record error: %v", err)
			markWebhookProcessed(payload.ID, "FAILED", err.Error())
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]string{"error": "Failed to record payment"})
			return
		}
	}

	markWebhookProcessed(payload.ID, "PROCESSED", "")

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":     "processed",
		"event":      payload.Event,
		"order_id":   orderID,
		"payment_id": paymentID,
	})
}

// paymentRecordedEvent shapes the payments-topic event emitted when a
// webhook delivery lands a new ledger record.
func paymentRecordedEvent(rec *models.PaymentRecord, source string) map[string]interface{} {
	return map[string]interface{}{
		"event":      "payment.recorded",
		"student_id": rec.StudentID,
		"course_id":  rec.CourseID,
		"order_id":   rec.OrderID,
		"payment_id": rec.PaymentID,
		"receipt_id": rec.ReceiptID,
		"amount":     rec.AmountPaid,
		"currency":   "INR",
		"status":     rec.Status,
		"source":     source,
		"ts":         time.Now().UTC().Format(time.RFC3339),
	}
}

// publishPaymentRecorded publishes a payment.recorded event (best-effort).
func publishPaymentRecorded(rec *models.PaymentRecord, source string) {
	go func() {
		if err := Publish("payments", fmt.Sprintf("payment-%s", rec.PaymentID), paymentRecordedEvent(rec, source)); err != nil {
			logger.Warn("Failed to publish payment.recorded event: %v", err)
		}
	}()
}

// paymentEntity digs the payment entity out of a webhook payload.
func paymentEntity(payload RazorpayWebhookPayload) (map[string]interface{}, bool) {
	paymentMap, ok := payload.Payload["payment"].(map[string]interface{})
	if !ok {
		return nil, false
	}
	entity, ok := paymentMap["entity"].(map[string]interface{})
	return entity, ok
}

// logWebhookToDB logs the webhook delivery with ON CONFLICT idempotency on
// webhook_id (Razorpay redelivers the same webhook id on retries).
func logWebhookToDB(payload RazorpayWebhookPayload, signatureValid bool) error {
	if db.DB == nil {
		return nil
	}

	payloadJSON, err := json.Marshal(payload.Payload)
	if err != nil {
		return fmt.Errorf("error marshaling payload: %w", err)
	}

	webhookID := payload.ID
	if webhookID == "" {
		webhookID = fmt.Sprintf("webhook_%s", uuid.NewString())
	}

	_, err = db.DB.Exec(
		`INSERT INTO razorpay_webhooks (webhook_id, event_type, payload, status, retry_count, signature_valid)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (webhook_id) DO UPDATE
		 SET updated_at = CURRENT_TIMESTAMP, retry_count = razorpay_webhooks.retry_count + 1, signature_valid = EXCLUDED.signature_valid`,
		webhookID, payload.Event, string(payloadJSON), "RECEIVED", 0, signatureValid)
	if err != nil {
		return fmt.Errorf("error inserting webhook: %w", err)
	}

	return nil
}

// markWebhookProcessed updates the processing status of a logged webhook.
func markWebhookProcessed(webhookID, status, errorMsg string) {
	if db.DB == nil || webhookID == "" {
		return
	}

	if len(errorMsg) > 500 {
		errorMsg = errorMsg[:500]
	}

	_, err := db.DB.Exec(
		`UPDATE razorpay_webhooks SET status = $1, processed_at = CURRENT_TIMESTAMP, error_message = $2 WHERE webhook_id = $3`,
		status, errorMsg, webhookID)
	if err != nil {
		logger.Error("Error updating webhook status for %s: %v", webhookID, err)
	}
}
