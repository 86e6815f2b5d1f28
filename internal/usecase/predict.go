package usecase

import (
	"context"
	"fmt"
	"time"

	"LevelBias/internal/domain/models"
	domrepo "LevelBias/internal/domain/repository"
	levelcache "LevelBias/internal/service/cache"
	instr "LevelBias/internal/services/instrument"
	"LevelBias/internal/services/prediction"
	applogger "LevelBias/pkg/logger"
	"LevelBias/pkg/queue"
)

// MsgTypePredictionStore is the queue message type for async persistence.
const MsgTypePredictionStore = "prediction.store"

// PredictUseCase wires the prediction engine to its collaborators: candle
// history, weight configuration, level cache, persistence and metrics.
type PredictUseCase struct {
	candles   domrepo.CandleStore
	weights   domrepo.WeightStore
	levels    *levelcache.LevelCache
	queue     queue.QueueService
	predStore domrepo.PredictionStore
	metrics   domrepo.Metrics
	bcast     domrepo.Broadcaster
	l         *applogger.Logger
	timeout   time.Duration
	defaultN  int
}

func NewPredictUseCase(
	candles domrepo.CandleStore,
	weights domrepo.WeightStore,
	levels *levelcache.LevelCache,
	q queue.QueueService,
	metrics domrepo.Metrics,
) *PredictUseCase {
	return &PredictUseCase{
		candles: candles,
		weights: weights,
		levels:  levels,
		queue:   q,
		metrics:  metrics,
		timeout:  15 * time.Second,
		defaultN: 10080,
	}
}

// SetLogger injects a structured logger.
func (uc *PredictUseCase) SetLogger(l *applogger.Logger) { uc.l = l }

// SetBroadcaster injects the live result broadcaster.
func (uc *PredictUseCase) SetBroadcaster(b domrepo.Broadcaster) { uc.bcast = b }

// SetPredictionStore injects a direct store used when no queue is
// configured. With a queue present persistence stays async.
func (uc *PredictUseCase) SetPredictionStore(s domrepo.PredictionStore) { uc.predStore = s }

// SetDefaultN overrides the candle count used when a request omits n.
func (uc *PredictUseCase) SetDefaultN(n int) {
	if n > 0 {
		uc.defaultN = n
	}
}

type PredictParams struct {
	Symbol     string
	Instrument string // empty: identified from symbol
	Timezone   string // empty: instrument default
	Timestamp  string // empty: last candle time
	N          int
	Timeframe  domrepo.Timeframe
}

// Predict fetches the latest candle history and runs one analysis. An
// empty history is not an error; it yields the engine's empty result.
func (uc *PredictUseCase) Predict(ctx context.Context, p PredictParams) (*models.PredictionResult, error) {
	if p.Symbol == "" {
		return nil, fmt.Errorf("symbol required")
	}
	if p.N <= 0 {
		p.N = uc.defaultN
	}
	if p.N > 50000 {
		p.N = 50000
	}

	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()
	start := time.Now()

	code := p.Instrument
	if code == "" {
		code = instr.Identify(p.Symbol).Code
	}

	baseWeights, err := uc.weights.Weights(code)
	if err != nil {
		uc.recordError("weights_load")
		return nil, fmt.Errorf("load weights: %w", err)
	}

	opts := []prediction.Option{prediction.WithBaseWeights(baseWeights)}
	if p.Timezone != "" {
		opts = append(opts, prediction.WithTimezone(p.Timezone))
	}
	engine, err := prediction.NewEngine(code, opts...)
	if err != nil {
		uc.recordError("engine_init")
		return nil, fmt.Errorf("build engine: %w", err)
	}

	candles, err := uc.candles.GetLatestNCandles(ctx, p.Symbol, p.N, p.Timeframe)
	if err != nil {
		uc.recordError("candles_fetch")
		return nil, fmt.Errorf("fetch candles: %w", err)
	}

	cached := map[prediction.LevelName]float64{}
	if uc.levels != nil {
		for name, price := range uc.levels.FreshPrices(code, time.Now()) {
			cached[prediction.LevelName(name)] = price
		}
	}

	result := engine.Analyze(candles, prediction.AnalyzeParams{
		Timestamp:    p.Timestamp,
		CachedLevels: cached,
	})

	if uc.levels != nil && len(result.Levels) > 0 {
		resolved := make(map[string]float64, len(result.Levels))
		for _, l := range result.Levels {
			resolved[l.Name] = l.Price
		}
		if err := uc.levels.Update(code, resolved, result.Metadata.Timestamp); err != nil && uc.l != nil {
			uc.l.Warn("level cache update failed",
				applogger.String("instrument", code),
				applogger.Error(err),
			)
		}
	}

	if uc.queue != nil {
		if err := uc.queue.PublishMessage(ctx, MsgTypePredictionStore, result); err != nil {
			uc.recordError("persist_enqueue")
			if uc.l != nil {
				uc.l.Warn("prediction persist enqueue failed",
					applogger.String("instrument", code),
					applogger.Error(err),
				)
			}
		}
	} else if uc.predStore != nil {
		if err := uc.predStore.Store(ctx, result); err != nil {
			uc.recordError("persist_store")
			if uc.l != nil {
				uc.l.Warn("prediction store failed",
					applogger.String("instrument", code),
					applogger.Error(err),
				)
			}
		}
	}

	if uc.bcast != nil {
		uc.bcast.Broadcast(result)
	}

	if uc.metrics != nil {
		uc.metrics.RecordPrediction(code, string(result.Analysis.Bias))
		if result.Metadata.CurrentPrice > 0 {
			uc.metrics.RecordLastPrice(p.Symbol, result.Metadata.CurrentPrice)
		}
		uc.metrics.RecordLatency("predict", time.Since(start).Seconds())
	}

	if uc.l != nil {
		uc.l.Info("prediction computed",
			applogger.String("symbol", p.Symbol),
			applogger.String("instrument", code),
			applogger.String("bias", string(result.Analysis.Bias)),
			applogger.Float64("confidence", result.Analysis.Confidence),
			applogger.Int("data_points", result.Metadata.DataPoints),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return result, nil
}

func (uc *PredictUseCase) recordError(kind string) {
	if uc.metrics != nil {
		uc.metrics.RecordError(kind)
	}
}
