package usecase

import (
	"context"
	"fmt"

	"LevelBias/internal/domain/models"
	domrepo "LevelBias/internal/domain/repository"
	applogger "LevelBias/pkg/logger"
	"LevelBias/pkg/queue"
)

// PredictionPersistJob drains prediction.store messages off the queue and
// writes them to ClickHouse. Keeps the request path free of insert latency.
type PredictionPersistJob struct {
	store domrepo.PredictionStore
	l     *applogger.Logger
}

func NewPredictionPersistJob(store domrepo.PredictionStore, l *applogger.Logger) *PredictionPersistJob {
	return &PredictionPersistJob{store: store, l: l}
}

func (j *PredictionPersistJob) Name() string { return "prediction_persist" }

func (j *PredictionPersistJob) Type() string { return MsgTypePredictionStore }

func (j *PredictionPersistJob) Handle(ctx context.Context, payload interface{}) error {
	result, err := queue.ParsePayload[models.PredictionResult](payload)
	if err != nil {
		return fmt.Errorf("parse prediction payload: %w", err)
	}
	if err := j.store.Store(ctx, result); err != nil {
		if j.l != nil {
			j.l.Error("prediction store insert failed",
				applogger.String("instrument", result.Metadata.Instrument),
				applogger.Error(err),
			)
		}
		return fmt.Errorf("store prediction: %w", err)
	}
	return nil
}
