package repository

import (
	"context"

	"LevelBias/internal/domain/models"
)

// PredictionStore persists analysis results. Persistence is a collaborator
// concern: the engine itself never writes anywhere.
type PredictionStore interface {
	Init(ctx context.Context) error // ensure tables, health checks
	Store(ctx context.Context, r *models.PredictionResult) error
	Health(ctx context.Context) error
	Close() error
}

// WeightStore holds the per-instrument base-weight maps.
type WeightStore interface {
	Weights(instrument string) (map[string]float64, error)
	SetWeights(instrument string, weights map[string]float64) error
}

// AuditPublisher records weight-configuration changes on a durable log.
type AuditPublisher interface {
	Publish(ctx context.Context, e *models.WeightChangeEvent) error
	Close() error
}

// Broadcaster pushes freshly computed results to live subscribers.
type Broadcaster interface {
	Broadcast(r *models.PredictionResult)
}

// Metrics records operational measurements.
type Metrics interface {
	RecordPrediction(instrument string, bias string)
	RecordError(kind string)
	RecordLastPrice(symbol string, price float64)
	RecordLatency(op string, seconds float64)
}
