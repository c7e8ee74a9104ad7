package services

import (
	"fmt"
	"time"

	"feepay-module/logger"
	"feepay-module/models"
)

// buildEmailEvent shapes an email.send event for the emails topic.
func buildEmailEvent(to, subject, body string, attachment ...string) map[string]interface{} {
	emailPayload := map[string]interface{}{
		"event":     "email.send",
		"recipient": to,
		"subject":   subject,
		"body":      body,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if len(attachment) > 0 && attachment[0] != "" {
		emailPayload["attachment"] = attachment[0]
	}

	return emailPayload
}

// SendEmail publishes an email event to Kafka for async processing.
// The email is NOT sent directly - the consumer worker handles the actual
// SMTP delivery.
func SendEmail(to, subject, body string, attachment ...string) error {
	logger.Info("Queueing email - Recipient: %s, Subject: %s", to, subject)

	emailPayload := buildEmailEvent(to, subject, body, attachment...)

	if err := Publish("emails", fmt.Sprintf("email-%s", to), emailPayload); err != nil {
		logger.Error("Failed to publish email event: %v", err)
		return fmt.Errorf("failed to queue email: %w", err)
	}

	return nil
}

// sendReceiptWithPDF renders the PDF receipt and queues the receipt email
// with it attached. A rendering failure degrades to a plain email.
func sendReceiptWithPDF(to string, rec *models.PaymentRecord) error {
	fileName, err := GenerateReceiptPDF(rec)
	if err != nil {
		logger.Warn("Failed to render receipt PDF for %s: %v", rec.ReceiptID, err)
		return SendReceiptEmail(to, rec.ReceiptID, rec.AmountPaid)
	}
	return SendReceiptEmail(to, rec.ReceiptID, rec.AmountPaid, fileName)
}

// SendReceiptEmail queues a payment receipt email. An optional attachment
// path is forwarded on the event for the SMTP worker.
func SendReceiptEmail(to, receiptID string, amountPaid float64, attachment ...string) error {
	emailBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background-color: #4CAF50; color: white; padding: 20px; text-align: center; border-radius: 5px; }
        .content { background-color: #f9f9f9; padding: 20px; margin-top: 20px; border-radius: 5px; }
        .receipt-info { background-color: #e8f5e9; padding: 15px; margin: 15px 0; border-left: 4px solid #4CAF50; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header"><h2>Payment Received</h2></div>
        <div class="content">
            <p>Thank you, your payment has been received.</p>
            <div class="receipt-info">
                <p><strong>Receipt No:</strong> %s</p>
                <p><strong>Amount Paid:</strong> Rs. %.2f</p>
            </div>
            <p>Keep this receipt number for your records.</p>
            <p>Best regards,<br/>Accounts Team</p>
        </div>
    </div>
</body>
</html>
	`, receiptID, amountPaid)

	subject := fmt.Sprintf("Payment Receipt %s", receiptID)

	return SendEmail(to, subject, emailBody, attachment...)
}
