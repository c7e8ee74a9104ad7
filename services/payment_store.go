package services

import (
	"context"
	"database/sql"

	"feepay-module/db"
	"feepay-module/errors"
	"feepay-module/models"

	"github.com/lib/pq"
)

// uniqueViolation is the Postgres error code raised when the UNIQUE
// constraint on razorpay_payment_id rejects a duplicate insert.
const uniqueViolation = "23505"

// PaymentStore is the Postgres-backed payment ledger. Records are
// insert-only; this component never mutates or deletes them.
type PaymentStore struct {
	db *sql.DB
}

// NewPaymentStore returns a ledger backed by the shared connection pool.
func NewPaymentStore() *PaymentStore {
	return &PaymentStore{db: db.DB}
}

// InsertPayment writes a new payment record. A duplicate
// razorpay_payment_id returns a Conflict error and leaves the existing
// record untouched.
func (s *PaymentStore) InsertPayment(ctx context.Context, rec *models.PaymentRecord) error {
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO payments
		 (receipt_id, student_id, course_id, amount_paid, payment_method, razorpay_payment_id, razorpay_order_id, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, recorded_at`,
		rec.ReceiptID, rec.StudentID, rec.CourseID, rec.AmountPaid,
		rec.PaymentMethod, rec.PaymentID, rec.OrderID, rec.Status,
	).Scan(&rec.ID, &rec.RecordedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && string(pqErr.Code) == uniqueViolation {
			return errors.E(errors.Conflict, "payment already recorded", err)
		}
		return errors.E(errors.Internal, "error saving payment record", err)
	}

	return nil
}

// GetPaymentByReceipt looks up a payment record by its receipt id.
func (s *PaymentStore) GetPaymentByReceipt(ctx context.Context, receiptID string) (*models.PaymentRecord, error) {
	rec := &models.PaymentRecord{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, receipt_id, student_id, course_id, amount_paid, payment_method,
		        razorpay_payment_id, razorpay_order_id, status, recorded_at
		 FROM payments WHERE receipt_id = $1
		 ORDER BY id LIMIT 1`,
		receiptID,
	).Scan(&rec.ID, &rec.ReceiptID, &rec.StudentID, &rec.CourseID, &rec.AmountPaid,
		&rec.PaymentMethod, &rec.PaymentID, &rec.OrderID, &rec.Status, &rec.RecordedAt)

	if err == sql.ErrNoRows {
		return nil, errors.E(errors.NotFound, "receipt not found")
	}
	if err != nil {
		return nil, errors.E(errors.Internal, "error loading payment record", err)
	}

	return rec, nil
}

// ListPayments returns the newest payment records first, capped at limit.
func (s *PaymentStore) ListPayments(ctx context.Context, limit int) ([]models.PaymentRecord, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, receipt_id, student_id, course_id, amount_paid, payment_method,
		        razorpay_payment_id, razorpay_order_id, status, recorded_at
		 FROM payments ORDER BY recorded_at DESC, id DESC LIMIT $1`,
		limit)
	if err != nil {
		return nil, errors.E(errors.Internal, "error listing payments", err)
	}
	defer rows.Close()

	var payments []models.PaymentRecord
	for rows.Next() {
		var rec models.PaymentRecord
		if err := rows.Scan(&rec.ID, &rec.ReceiptID, &rec.StudentID, &rec.CourseID, &rec.AmountPaid,
			&rec.PaymentMethod, &rec.PaymentID, &rec.OrderID, &rec.Status, &rec.RecordedAt); err != nil {
			return nil, errors.E(errors.Internal, "error scanning payment record", err)
		}
		payments = append(payments, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.E(errors.Internal, "error iterating payment records", err)
	}

	return payments, nil
}
