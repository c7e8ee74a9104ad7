package kafka

import (
	"context"
	"time"

	"feepay-module/db"
	"feepay-module/logger"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// StoreDLQMessage stores a failed message in the dlq_messages table.
func StoreDLQMessage(topic, key string, value []byte, errorMsg string) error {
	if db.DB == nil {
		logger.Warn("Database connection not available for DLQ storage")
		return nil
	}

	_, err := db.DB.Exec(
		`INSERT INTO dlq_messages (id, topic, key, payload, error_message)
		 VALUES ($1, $2, $3, $4::jsonb, $5)
		 ON CONFLICT (id) DO NOTHING`,
		uuid.NewString(), topic, key, value, errorMsg)
	if err != nil {
		logger.Error("Error storing DLQ message: %v", err)
		return err
	}

	logger.Info("DLQ message stored. Topic: %s, Key: %s", topic, key)
	return nil
}

// DLQMessage is an admin view of a dead-lettered message.
type DLQMessage struct {
	ID           string    `json:"id"`
	Topic        string    `json:"topic"`
	Key          string    `json:"key"`
	Payload      []byte    `json:"payload"`
	ErrorMessage string    `json:"error_message"`
	Status       string    `json:"status"`
	RetryCount   int       `json:"retry_count"`
	CreatedAt    time.Time `json:"created_at"`
}

// GetDLQMessages retrieves unresolved DLQ messages, newest first.
func GetDLQMessages(limit int) ([]DLQMessage, error) {
	if db.DB == nil {
		return nil, nil
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	rows, err := db.DB.Query(
		`SELECT id, topic, key, payload, error_message, status, retry_count, created_at
		 FROM dlq_messages
		 WHERE status <> 'RESOLVED'
		 ORDER BY created_at DESC
		 LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []DLQMessage
	for rows.Next() {
		var m DLQMessage
		if err := rows.Scan(&m.ID, &m.Topic, &m.Key, &m.Payload, &m.ErrorMessage, &m.Status, &m.RetryCount, &m.CreatedAt); err != nil {
			logger.Error("Error scanning DLQ message: %v", err)
			continue
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// RetryDLQMessage replays a dead-lettered message. Email events are
// re-dispatched through the consumer path; everything else is republished
// to its original topic.
func RetryDLQMessage(messageID string) error {
	if db.DB == nil {
		return nil
	}

	var topic, key string
	var payload []byte
	err := db.DB.QueryRow(
		`SELECT topic, key, payload FROM dlq_messages WHERE id = $1`,
		messageID).Scan(&topic, &key, &payload)
	if err != nil {
		logger.Error("Error retrieving DLQ message for retry: %v", err)
		return err
	}

	succeeded := false
	if topic == "emails" {
		succeeded = HandleMessage(kafka.Message{
			Topic: topic,
			Key:   []byte(key),
			Value: payload,
		})
	} else {
		succeeded = republish(topic, key, payload) == nil
	}

	if succeeded {
		_, err = db.DB.Exec(
			`UPDATE dlq_messages
			 SET retry_count = retry_count + 1, status = 'RESOLVED',
			     resolution_notes = 'retried successfully', updated_at = CURRENT_TIMESTAMP
			 WHERE id = $1`, messageID)
		logger.Info("DLQ message %s resolved after retry", messageID)
	} else {
		_, err = db.DB.Exec(
			`UPDATE dlq_messages
			 SET retry_count = retry_count + 1, updated_at = CURRENT_TIMESTAMP
			 WHERE id = $1`, messageID)
		logger.Warn("DLQ message %s retry failed", messageID)
	}
	return err
}

// republish writes a raw payload back to its original topic, bypassing the
// DLQ fallback to avoid re-dead-lettering in a loop.
func republish(topic, key string, payload []byte) error {
	producerMutex.Lock()
	defer producerMutex.Unlock()

	if producer == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return producer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: payload,
	})
}
