package kafka

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"feepay-module/config"
	"feepay-module/logger"

	"github.com/segmentio/kafka-go"
)

var (
	consumer        *kafka.Reader
	consumerMutex   sync.Mutex
	consumerRunning bool
	stopCh          chan bool
	// emailProcessor handles email.send events read off the emails topic
	emailProcessor func(map[string]interface{}) error
)

// InitConsumer initializes a Kafka reader for the emails topic.
func InitConsumer() error {
	consumerMutex.Lock()
	defer consumerMutex.Unlock()

	if config.AppConfig.KafkaBrokers == "" {
		logger.Info("Kafka consumer is disabled (KAFKA_BROKERS is empty)")
		return nil
	}

	validBrokers := brokerList()
	if len(validBrokers) == 0 {
		logger.Warn("No valid Kafka brokers configured for consumer")
		return nil
	}

	consumer = kafka.NewReader(kafka.ReaderConfig{
		Brokers:          validBrokers,
		Topic:            "emails",
		GroupID:          "feepay-consumer-group",
		StartOffset:      -1,
		CommitInterval:   time.Second,
		MaxBytes:         10e6,
		SessionTimeout:   20 * time.Second,
		ReadBackoffMin:   100 * time.Millisecond,
		ReadBackoffMax:   1 * time.Second,
		QueueCapacity:    100,
		RebalanceTimeout: 60 * time.Second,
	})

	stopCh = make(chan bool)
	logger.Info("Kafka consumer initialized. Brokers=%v, Topic=emails", validBrokers)
	return nil
}

// RegisterEmailProcessor registers the callback that handles email.send events
func RegisterEmailProcessor(fn func(map[string]interface{}) error) {
	consumerMutex.Lock()
	defer consumerMutex.Unlock()
	emailProcessor = fn
}

// StartConsumer starts consuming messages in a separate goroutine.
// Runs continuously until StopConsumer() is called.
func StartConsumer() {
	consumerMutex.Lock()
	if consumer == nil {
		consumerMutex.Unlock()
		logger.Warn("Consumer not initialized, cannot start")
		return
	}
	if consumerRunning {
		consumerMutex.Unlock()
		logger.Warn("Consumer already running")
		return
	}
	consumerRunning = true
	consumerMutex.Unlock()

	go consumeMessages()
	logger.Info("Kafka consumer started")
}

// consumeMessages continuously reads messages from Kafka and processes them
func consumeMessages() {
	defer func() {
		consumerMutex.Lock()
		consumerRunning = false
		consumerMutex.Unlock()
	}()

	// Allow time for broker to stabilize
	time.Sleep(2 * time.Second)

	for {
		select {
		case <-stopCh:
			logger.Info("Consumer stop signal received")
			return
		default:
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			msg, err := consumer.ReadMessage(ctx)
			cancel()

			if err != nil {
				// Expected while the topic is idle or the group is forming
				if err == context.DeadlineExceeded || err.Error() == "EOF" {
					continue
				}
				if strings.Contains(err.Error(), "Group Coordinator Not Available") {
					continue
				}
				logger.Warn("Kafka consumer read error: %v", err)
				time.Sleep(time.Second)
				continue
			}

			if ok := HandleMessage(msg); !ok {
				logger.Info("Storing failed message in DLQ. Topic: %s", msg.Topic)
				if dlqErr := StoreDLQMessage(msg.Topic, string(msg.Key), msg.Value, "consumer processing failed"); dlqErr != nil {
					logger.Error("Failed to store message in DLQ: %v", dlqErr)
				}
			}
		}
	}
}

// HandleMessage dispatches a consumed message to its processor and reports
// whether processing succeeded. Also used when replaying DLQ messages.
func HandleMessage(msg kafka.Message) bool {
	var event map[string]interface{}
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		logger.Error("Error unmarshaling Kafka message: %v", err)
		return false
	}

	eventType, _ := event["event"].(string)

	switch eventType {
	case "email.send":
		consumerMutex.Lock()
		processor := emailProcessor
		consumerMutex.Unlock()

		if processor == nil {
			logger.Warn("No email processor registered, dropping email.send event")
			return false
		}
		if err := processor(event); err != nil {
			logger.Error("Email processor failed: %v", err)
			return false
		}
		return true
	default:
		// Acknowledge events this worker does not handle
		return true
	}
}

// StopConsumer stops the consumer goroutine and closes the reader
func StopConsumer() error {
	consumerMutex.Lock()
	defer consumerMutex.Unlock()

	if !consumerRunning && consumer == nil {
		return nil
	}

	if stopCh != nil && consumerRunning {
		close(stopCh)
	}

	if consumer != nil {
		err := consumer.Close()
		consumer = nil
		return err
	}
	return nil
}

// IsConsumerRunning reports whether the consumer goroutine is active
func IsConsumerRunning() bool {
	consumerMutex.Lock()
	defer consumerMutex.Unlock()
	return consumerRunning
}
