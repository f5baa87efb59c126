package sink

import (
	"context"
	"fmt"

	"github.com/segmentio/kafka-go"
	"github.com/vizfeed/beacon/cfg"
	"github.com/vizfeed/beacon/publisher"
)

const (
	DefaultKafkaBatchBytes = 1 << 20 // 1MB
)

func init() {
	publisher.RegisterSink("kafka", func(config cfg.SinkConfiguration) (publisher.Sink, error) {
		kafkaConfig := KafkaConfig{
			Brokers:          config.Brokers,
			BatchBytes:       DefaultKafkaBatchBytes,
			RequiredAcks:     kafka.RequireOne,
			AutoCreateTopics: true,
		}
		return NewKafkaSink(kafkaConfig)
	})
}

// KafkaSink implements the Sink interface for Kafka publishing
type KafkaSink struct {
	writer *kafka.Writer
}

// KafkaConfig holds configuration for KafkaSink
type KafkaConfig struct {
	Brokers          []string           // Kafka broker addresses
	BatchBytes       int64              // Max batch bytes (default: 1MB)
	RequiredAcks     kafka.RequiredAcks // Ack requirement (default: RequireOne)
	AutoCreateTopics bool               // Auto-create topics if they don't exist
}

// DefaultKafkaConfig returns a KafkaConfig with sensible defaults
func DefaultKafkaConfig(brokers []string) KafkaConfig {
	return KafkaConfig{
		Brokers:          brokers,
		BatchBytes:       DefaultKafkaBatchBytes,
		RequiredAcks:     kafka.RequireOne,
		AutoCreateTopics: true,
	}
}

// NewKafkaSink creates a new KafkaSink with the given configuration
func NewKafkaSink(config KafkaConfig) (*KafkaSink, error) {
	if len(config.Brokers) == 0 {
		return nil, fmt.Errorf("kafka sink requires at least one broker address")
	}

	if config.BatchBytes == 0 {
		config.BatchBytes = DefaultKafkaBatchBytes
	}

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(config.Brokers...),
		Balancer:               &kafka.Hash{}, // Partition by key for consistent routing
		BatchSize:              1,             // One snapshot batch per tick, no buffering
		BatchBytes:             config.BatchBytes,
		RequiredAcks:           config.RequiredAcks,
		Async:                  false,
		AllowAutoTopicCreation: config.AutoCreateTopics,
	}

	return &KafkaSink{writer: writer}, nil
}

// Publish sends a marker batch to Kafka.
// topic: Kafka topic name
// key: batch content hash (partition key)
// value: encoded batch payload
//
// Note: Uses context.Background() because the broadcast loop treats any
// publish failure as a dropped tick; the next tick re-attempts with the
// then-current snapshot, so there is no higher-level timeout to honor.
func (k *KafkaSink) Publish(topic, key string, value []byte) error {
	msg := kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: value,
	}

	return k.writer.WriteMessages(context.Background(), msg)
}

// Close releases resources held by the KafkaSink
func (k *KafkaSink) Close() error {
	if k.writer == nil {
		return nil
	}
	return k.writer.Close()
}
