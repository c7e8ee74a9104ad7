package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"feepay-module/errors"
	"feepay-module/http/response"
	"feepay-module/logger"
	"feepay-module/models"
	"feepay-module/services"

	"github.com/google/uuid"
)

// RecordPaymentRequest is a manual (offline) payment entered by staff.
type RecordPaymentRequest struct {
	StudentID     string  `json:"student_id"`
	CourseID      string  `json:"course_id"`
	Amount        float64 `json:"amount"`
	PaymentMethod string  `json:"payment_method"`
}

// RecordPayment handles POST /record-payment: staff recording cash or
// bank-transfer payments that never went through the gateway. The ledger
// entry gets a synthetic payment id so the uniqueness constraint still
// applies.
func RecordPayment(store *services.PaymentStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			response.SendError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		if store == nil {
			response.SendError(w, http.StatusServiceUnavailable, "Payment records unavailable")
			return
		}

		var req RecordPaymentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.SendError(w, http.StatusBadRequest, "Invalid request")
			return
		}

		if req.StudentID == "" || req.Amount <= 0 {
			response.SendError(w, http.StatusBadRequest, "student_id and a positive amount are required")
			return
		}

		method := req.PaymentMethod
		if method == "" {
			method = "CASH"
		}

		rec := &models.PaymentRecord{
			ReceiptID:     services.NewReceiptID(),
			StudentID:     req.StudentID,
			CourseID:      req.CourseID,
			AmountPaid:    req.Amount,
			PaymentMethod: method,
			PaymentID:     fmt.Sprintf("MANUAL-%s", uuid.NewString()),
			Status:        "completed",
		}

		if err := store.InsertPayment(r.Context(), rec); err != nil {
			logger.Error("Error recording manual payment: %v", err)
			response.SendError(w, http.StatusInternalServerError, "Error recording payment")
			return
		}

		response.SendJSON(w, http.StatusOK, map[string]interface{}{
			"success":    true,
			"receipt_id": rec.ReceiptID,
			"payment_id": rec.PaymentID,
		})
	}
}

// ListPayments handles GET /payments: the ledger, newest first.
func ListPayments(store *services.PaymentStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			response.SendError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		if store == nil {
			response.SendError(w, http.StatusServiceUnavailable, "Payment records unavailable")
			return
		}

		limit := 100
		if l := r.URL.Query().Get("limit"); l != "" {
			if v, err := strconv.Atoi(l); err == nil {
				limit = v
			}
		}

		payments, err := store.ListPayments(r.Context(), limit)
		if err != nil {
			logger.Error("Error listing payments: %v", err)
			response.SendError(w, http.StatusInternalServerError, "Error listing payments")
			return
		}

		response.SendJSON(w, http.StatusOK, map[string]interface{}{
			"count":    len(payments),
			"payments": payments,
		})
	}
}

// ExportPayments handles GET /payments/export: the ledger as an xlsx
// download for the accounts team.
func ExportPayments(store *services.PaymentStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			response.SendError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		if store == nil {
			response.SendError(w, http.StatusServiceUnavailable, "Payment records unavailable")
			return
		}

		buf, err := services.ExportPaymentsExcel(r.Context(), store, 500)
		if err != nil {
			logger.Error("Error exporting payments: %v", err)
			response.SendError(w, http.StatusInternalServerError, "Error exporting payments")
			return
		}

		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="payments.xlsx"`)
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(buf.Bytes()); err != nil {
			logger.Error("Error writing export response: %v", err)
		}
	}
}

// DownloadReceipt handles GET /receipt?receipt_id=: renders the PDF receipt
// for a recorded payment.
func DownloadReceipt(store *services.PaymentStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			response.SendError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		if store == nil {
			response.SendError(w, http.StatusServiceUnavailable, "Payment records unavailable")
			return
		}

		receiptID := r.URL.Query().Get("receipt_id")
		if receiptID == "" {
			response.SendError(w, http.StatusBadRequest, "receipt_id is required")
			return
		}

		rec, err := store.GetPaymentByReceipt(r.Context(), receiptID)
		if err != nil {
			if errors.KindOf(err) == errors.NotFound {
				response.SendError(w, http.StatusNotFound, "Receipt not found")
				return
			}
			logger.Error("Error loading receipt %s: %v", receiptID, err)
			response.SendError(w, http.StatusInternalServerError, "Error loading receipt")
			return
		}

		fileName, err := services.GenerateReceiptPDF(rec)
		if err != nil {
			logger.Error("Error generating receipt PDF: %v", err)
			response.SendError(w, http.StatusInternalServerError, "Error generating receipt")
			return
		}

		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.pdf"`, rec.ReceiptID))
		http.ServeFile(w, r, fileName)
	}
}
