package handlers

import (
	"encoding/json"
	"net/http"

	"feepay-module/errors"
	"feepay-module/http/response"
	"feepay-module/logger"
	"feepay-module/models"
	"feepay-module/services"
)

// VerifyPaymentResponse is the success body returned to the checkout page.
type VerifyPaymentResponse struct {
	Success    bool    `json:"success"`
	ReceiptID  string  `json:"receipt_id"`
	AmountPaid float64 `json:"amount_paid"`
	PaymentID  string  `json:"payment_id"`
}

// VerifyPayment returns the handler for POST /verify-payment. It is the
// trust boundary between the browser's claim and the ledger.
func VerifyPayment(svc *services.PaymentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			response.SendError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}

		var conf models.PaymentConfirmation
		if err := json.NewDecoder(r.Body).Decode(&conf); err != nil {
			response.SendError(w, http.StatusBadRequest, "Invalid request")
			return
		}

		result, err := svc.VerifyAndRecord(r.Context(), conf)
		if err != nil {
			switch errors.KindOf(err) {
			case errors.Invalid:
				response.SendError(w, http.StatusBadRequest, "Missing payment details")
			case errors.Unauthorized:
				response.SendError(w, http.StatusBadRequest, "Invalid payment signature")
			case errors.Upstream:
				response.SendError(w, http.StatusInternalServerError, errors.MessageOf(err))
			default:
				response.SendError(w, http.StatusInternalServerError, "Payment verification failed")
			}
			return
		}

		// The payment is real (the gateway confirmed it), so the client sees
		// success even when our own bookkeeping write failed. Duplicate
		// submissions land here too: the unique constraint rejects the second
		// insert and the client still gets its receipt.
		if result.RecordErr != nil {
			if errors.KindOf(result.RecordErr) == errors.Conflict {
				logger.Info("Payment %s already recorded, returning receipt anyway", result.PaymentID)
			} else {
				logger.Error("Failed to record payment %s: %v", result.PaymentID, result.RecordErr)
			}
		}

		response.SendJSON(w, http.StatusOK, VerifyPaymentResponse{
			Success:    true,
			ReceiptID:  result.ReceiptID,
			AmountPaid: result.AmountPaid,
			PaymentID:  result.PaymentID,
		})
	}
}

// InitiatePayment handles POST /initiate-payment: creates a Razorpay order
// for the browser checkout widget.
func InitiatePayment(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		response.SendError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req services.InitiatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.SendError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	order, err := services.CreateRazorpayOrder(req)
	if err != nil {
		switch errors.KindOf(err) {
		case errors.Invalid:
			response.SendError(w, http.StatusBadRequest, errors.MessageOf(err))
		default:
			logger.Error("Error creating razorpay order: %v", err)
			response.SendError(w, http.StatusInternalServerError, "Error creating order")
		}
		return
	}

	response.SendJSON(w, http.StatusOK, order)
}
