package models

import "time"

// PaymentConfirmation is the untrusted claim a browser posts after completing
// a Razorpay checkout. Every field is attacker-controlled until the signature
// has been verified.
type PaymentConfirmation struct {
	PaymentID string `json:"razorpay_payment_id"`
	OrderID   string `json:"razorpay_order_id"`
	Signature string `json:"razorpay_signature"`
	StudentID string `json:"student_id"`
	CourseID  string `json:"course_id"`
}

// PaymentRecord is the durable ledger entry, written exactly once per
// razorpay_payment_id.
type PaymentRecord struct {
	ID            int       `json:"id"`
	ReceiptID     string    `json:"receipt_id"`
	StudentID     string    `json:"student_id"`
	CourseID      string    `json:"course_id"`
	AmountPaid    float64   `json:"amount_paid"`
	PaymentMethod string    `json:"payment_method"`
	PaymentID     string    `json:"razorpay_payment_id"`
	OrderID       string    `json:"razorpay_order_id"`
	Status        string    `json:"status"`
	RecordedAt    time.Time `json:"recorded_at"`
}

type RazorpayOrder struct {
	OrderID  string  `json:"order_id"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
	Receipt  string  `json:"receipt"`
}
