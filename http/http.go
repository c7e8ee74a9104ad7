package http

import (
	"net/http"

	"feepay-module/config"
	"feepay-module/db"
	"feepay-module/gateway"
	"feepay-module/http/handlers"
	"feepay-module/http/middleware"
	"feepay-module/http/response"
	"feepay-module/services"
)

// SetupRoutes wires the payment verifier and registers all HTTP routes.
func SetupRoutes() {
	razorpayClient := gateway.NewClient(
		config.AppConfig.RazorpayKeyID,
		config.AppConfig.RazorpayKeySecret,
	)
	// Without a database the verifier runs with a nil recorder: payments
	// verify but nothing is written. The recorder must stay an untyped nil
	// in that case so the degraded-mode check in the service holds.
	var store *services.PaymentStore
	var recorder services.PaymentRecorder
	if db.DB != nil {
		store = services.NewPaymentStore()
		recorder = store
	}
	verifier := services.NewPaymentService(
		config.AppConfig.RazorpayKeySecret,
		razorpayClient,
		recorder,
	)

	// Payment APIs (called from the checkout pages)
	http.HandleFunc("/initiate-payment", middleware.EnableCORS(handlers.InitiatePayment))
	http.HandleFunc("/verify-payment", middleware.EnableCORS(handlers.VerifyPayment(verifier)))

	// Gateway webhook (server-to-server, no CORS)
	http.HandleFunc("/razorpay-webhook", services.RazorpayWebhookHandler)

	// Admin APIs
	http.HandleFunc("/record-payment", middleware.EnableCORS(handlers.RecordPayment(store)))
	http.HandleFunc("/payments", middleware.EnableCORS(handlers.ListPayments(store)))
	http.HandleFunc("/payments/export", middleware.EnableCORS(handlers.ExportPayments(store)))
	http.HandleFunc("/receipt", middleware.EnableCORS(handlers.DownloadReceipt(store)))

	// DLQ Management APIs
	http.HandleFunc("/api/dlq/messages", middleware.EnableCORS(handlers.GetDLQMessages))
	http.HandleFunc("/api/dlq/messages/retry/", middleware.EnableCORS(handlers.RetryDLQMessage))

	// Health check
	http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		response.SendJSON(w, http.StatusOK, map[string]interface{}{
			"status": "ok",
			"kafka":  services.IsConnected(),
		})
	})
}
