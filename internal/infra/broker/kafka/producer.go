package kafka

import (
	"context"

	"github.com/IBM/sarama"
)

// Producer publishes reservation events drained from the outbox. Delivery is
// synchronous so the outbox worker only marks a record sent after the broker
// acknowledged it.
type Producer struct {
	producer sarama.SyncProducer
}

// NewProducer connects a sync producer with idempotent, acks-all delivery.
// Those settings are forced even when a custom config is passed in: the
// outbox relies on them for at-least-once without reordering.
func NewProducer(brokers []string, cfg *sarama.Config) (*Producer, error) {
	if cfg == nil {
		cfg = sarama.NewConfig()
	}
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Idempotent = true
	cfg.Producer.Return.Successes = true
	p, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, err
	}
	return &Producer{producer: p}, nil
}

func (p *Producer) Publish(_ context.Context, topic string, key string, payload []byte, headers map[string]string) error {
	msg := &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(payload),
	}
	for k, v := range headers {
		msg.Headers = append(msg.Headers, sarama.RecordHeader{Key: []byte(k), Value: []byte(v)})
	}
	_, _, err := p.producer.SendMessage(msg)
	return err
}

func (p *Producer) Close() error {
	if p.producer == nil {
		return nil
	}
	return p.producer.Close()
}
