package usecase

import (
	"context"
	"fmt"
	"math"
	"time"

	"LevelBias/internal/domain/models"
	domrepo "LevelBias/internal/domain/repository"
	"LevelBias/internal/services/prediction"
	applogger "LevelBias/pkg/logger"
)

// weightSumTolerance bounds how far a submitted weight map's sum may drift
// from 1.0. Built-in catalogs are exempt: some rely on runtime
// renormalization and are restored through Reset, which skips validation.
const weightSumTolerance = 0.001

// WeightsUseCase manages per-instrument base-weight configuration.
type WeightsUseCase struct {
	store domrepo.WeightStore
	audit domrepo.AuditPublisher
	l     *applogger.Logger
}

func NewWeightsUseCase(store domrepo.WeightStore, audit domrepo.AuditPublisher) *WeightsUseCase {
	return &WeightsUseCase{store: store, audit: audit}
}

// SetLogger injects a structured logger.
func (uc *WeightsUseCase) SetLogger(l *applogger.Logger) { uc.l = l }

type WeightsView struct {
	Instrument string             `json:"instrument"`
	Weights    map[string]float64 `json:"weights"`
	Sum        float64            `json:"sum"`
	Levels     int                `json:"levels"`
}

// Get returns the active weight map for an instrument.
func (uc *WeightsUseCase) Get(ctx context.Context, instrument string) (*WeightsView, error) {
	if instrument == "" {
		return nil, fmt.Errorf("instrument required")
	}
	w, err := uc.store.Weights(instrument)
	if err != nil {
		return nil, fmt.Errorf("load weights: %w", err)
	}
	return newWeightsView(instrument, w), nil
}

// Set validates and persists a full weight map replacement. Every name
// must exist in the instrument's catalog and the sum must land within
// tolerance of 1.0. Validation failure leaves the stored map untouched.
func (uc *WeightsUseCase) Set(ctx context.Context, instrument string, weights map[string]float64, changedBy string) (*WeightsView, error) {
	if instrument == "" {
		return nil, fmt.Errorf("instrument required")
	}
	if len(weights) == 0 {
		return nil, fmt.Errorf("weights required")
	}

	known := prediction.DefaultWeights(instrument)
	sum := 0.0
	for name, w := range weights {
		if _, ok := known[name]; !ok {
			return nil, fmt.Errorf("unknown level %q for instrument %s", name, instrument)
		}
		if w < 0 {
			return nil, fmt.Errorf("negative weight for level %q", name)
		}
		sum += w
	}
	if len(weights) != len(known) {
		return nil, fmt.Errorf("incomplete weight map: got %d levels, catalog has %d", len(weights), len(known))
	}
	if math.Abs(sum-1.0) > weightSumTolerance {
		return nil, fmt.Errorf("weights sum to %.4f, expected 1.0 within %.3f", sum, weightSumTolerance)
	}

	if err := uc.store.SetWeights(instrument, weights); err != nil {
		return nil, fmt.Errorf("persist weights: %w", err)
	}
	uc.publishAudit(ctx, instrument, "set", weights, changedBy)
	return newWeightsView(instrument, weights), nil
}

// Reset restores the built-in catalog weights for an instrument. No sum
// validation: catalog defaults are the source of truth.
func (uc *WeightsUseCase) Reset(ctx context.Context, instrument string, changedBy string) (*WeightsView, error) {
	if instrument == "" {
		return nil, fmt.Errorf("instrument required")
	}
	defaults := prediction.DefaultWeights(instrument)
	if err := uc.store.SetWeights(instrument, defaults); err != nil {
		return nil, fmt.Errorf("persist weights: %w", err)
	}
	uc.publishAudit(ctx, instrument, "reset", defaults, changedBy)
	return newWeightsView(instrument, defaults), nil
}

// publishAudit is best-effort: a down audit log never blocks a weight change.
func (uc *WeightsUseCase) publishAudit(ctx context.Context, instrument, action string, weights map[string]float64, changedBy string) {
	if uc.audit == nil {
		return
	}
	e := &models.WeightChangeEvent{
		Instrument: instrument,
		Action:     action,
		Weights:    weights,
		ChangedBy:  changedBy,
		Timestamp:  time.Now().UTC(),
	}
	if err := uc.audit.Publish(ctx, e); err != nil && uc.l != nil {
		uc.l.Warn("weight audit publish failed",
			applogger.String("instrument", instrument),
			applogger.String("action", action),
			applogger.Error(err),
		)
	}
}

func newWeightsView(instrument string, weights map[string]float64) *WeightsView {
	sum := 0.0
	for _, w := range weights {
		sum += w
	}
	return &WeightsView{
		Instrument: instrument,
		Weights:    weights,
		Sum:        math.Round(sum*10000) / 10000,
		Levels:     len(weights),
	}
}
