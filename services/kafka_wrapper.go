package services

import (
	"feepay-module/services/kafka"
)

func InitProducer() {
	kafka.InitProducer()
}

func Publish(topic, key string, value interface{}) error {
	return kafka.Publish(topic, key, value)
}

func IsConnected() bool {
	return kafka.IsConnected()
}

func Close() error {
	return kafka.Close()
}

func InitConsumer() error {
	return kafka.InitConsumer()
}

func StartConsumer() {
	kafka.StartConsumer()
}

func StopConsumer() error {
	return kafka.StopConsumer()
}

func RegisterEmailProcessor(fn func(map[string]interface{}) error) {
	kafka.RegisterEmailProcessor(fn)
}

func GetDLQMessages(limit int) ([]kafka.DLQMessage, error) {
	return kafka.GetDLQMessages(limit)
}

func RetryDLQMessage(messageID string) error {
	return kafka.RetryDLQMessage(messageID)
}
