package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/kishorebabuysk/VF-Backend/common/metrics"

	"github.com/IBM/sarama"
)

// KafkaPublisher writes every event to one topic keyed by entity id, with the
// event type in a header.
type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

func NewKafkaPublisher(brokers []string, topic string, logger *slog.Logger, m *metrics.Metrics) (*KafkaPublisher, error) {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Return.Successes = true

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, err
	}

	logger.Info("kafka publisher initialized", "brokers", brokers, "topic", topic)

	return newKafkaPublisher(producer, topic, logger, m), nil
}

func newKafkaPublisher(producer sarama.SyncProducer, topic string, logger *slog.Logger, m *metrics.Metrics) *KafkaPublisher {
	return &KafkaPublisher{
		producer: producer,
		topic:    topic,
		logger:   logger,
		metrics:  m,
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, eventType, key string, payload interface{}) error {
	start := time.Now()

	valueBytes, err := json.Marshal(newEvent(eventType, payload))
	if err != nil {
		p.logger.ErrorContext(ctx, "failed to marshal event", "error", err)
		return err
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(valueBytes),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event-type"), Value: []byte(eventType)},
		},
	}

	partition, offset, err := p.producer.SendMessage(msg)
	p.metrics.Messaging.RecordPublish(ctx, "kafka", p.topic, time.Since(start), err)
	if err != nil {
		p.logger.ErrorContext(ctx, "failed to send event to kafka", "type", eventType, "error", err)
		return err
	}

	p.logger.DebugContext(ctx, "event sent to kafka", "topic", p.topic, "partition", partition, "offset", offset, "key", key)
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}
