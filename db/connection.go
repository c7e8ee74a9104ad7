package db

import (
	"database/sql"
	"fmt"

	"feepay-module/config"

	_ "github.com/lib/pq"
)

var DB *sql.DB

func InitDB() error {
	var err error
	connStr := config.GetDBConnString()

	DB, err = sql.Open("postgres", connStr)
	if err != nil {
		return fmt.Errorf("error opening database: %w", err)
	}

	// Test the connection
	err = DB.Ping()
	if err != nil {
		return fmt.Errorf("error connecting to database: %w", err)
	}

	// Create tables
	if err := createTables(); err != nil {
		return fmt.Errorf("error creating tables: %w", err)
	}

	return nil
}

func createTables() error {
	// The UNIQUE constraint on razorpay_payment_id is the only safety net
	// against duplicate recording under concurrent or retried verification
	// requests. Do not remove it.
	paymentTable := `
	CREATE TABLE IF NOT EXISTS payments (
		id SERIAL PRIMARY KEY,
		receipt_id TEXT NOT NULL,
		student_id TEXT,
		course_id TEXT,
		amount_paid NUMERIC(12,2) NOT NULL,
		payment_method TEXT DEFAULT 'UPI',
		razorpay_payment_id TEXT NOT NULL UNIQUE,
		razorpay_order_id TEXT,
		status TEXT NOT NULL DEFAULT 'completed',
		recorded_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);`

	webhookTable := `
	CREATE TABLE IF NOT EXISTS razorpay_webhooks (
		id SERIAL PRIMARY KEY,
		webhook_id TEXT NOT NULL UNIQUE,
		event_type TEXT,
		payload JSONB,
		status TEXT DEFAULT 'RECEIVED',
		retry_count INTEGER DEFAULT 0,
		signature_valid BOOLEAN DEFAULT FALSE,
		error_message TEXT,
		processed_at TIMESTAMP,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);`

	dlqTable := `
	CREATE TABLE IF NOT EXISTS dlq_messages (
		id TEXT PRIMARY KEY,
		topic TEXT NOT NULL,
		key TEXT,
		payload JSONB,
		error_message TEXT,
		status TEXT DEFAULT 'FAILED',
		retry_count INTEGER DEFAULT 0,
		resolution_notes TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);`

	if _, err := DB.Exec(paymentTable); err != nil {
		return fmt.Errorf("error creating payments table: %w", err)
	}

	if _, err := DB.Exec(webhookTable); err != nil {
		return fmt.Errorf("error creating razorpay_webhooks table: %w", err)
	}

	if _, err := DB.Exec(dlqTable); err != nil {
		return fmt.Errorf("error creating dlq_messages table: %w", err)
	}

	return nil
}
