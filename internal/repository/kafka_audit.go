package repository

import (
	"context"

	"LevelBias/internal/domain/models"
	"LevelBias/internal/domain/repository"
	pkgkafka "LevelBias/pkg/kafka"
)

// KafkaAuditPublisher implements AuditPublisher on a Kafka topic. Weight
// changes are rare, so each event goes out as its own message keyed by
// instrument.
type KafkaAuditPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaAuditPublisher creates the Kafka audit publisher.
func NewKafkaAuditPublisher(producer *pkgkafka.Producer, topic string) repository.AuditPublisher {
	return &KafkaAuditPublisher{producer: producer, topic: topic}
}

func (p *KafkaAuditPublisher) Publish(ctx context.Context, e *models.WeightChangeEvent) error {
	return p.producer.Publish(ctx, p.topic, []byte(e.Instrument), map[string]interface{}{
		"instrument": e.Instrument,
		"action":     e.Action,
		"weights":    e.Weights,
		"changed_by": e.ChangedBy,
		"ts":         e.Timestamp.UnixMilli(),
	})
}

func (p *KafkaAuditPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
