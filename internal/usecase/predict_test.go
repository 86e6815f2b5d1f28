package usecase

import (
	"context"
	"testing"
	"time"

	"LevelBias/internal/domain/models"
	domrepo "LevelBias/internal/domain/repository"
	levelcache "LevelBias/internal/service/cache"
)

type fakeCandleStore struct {
	candles []models.Candle
	lastN   int
}

func (s *fakeCandleStore) GetCandles(_ context.Context, _ string, _, _ time.Time, _ domrepo.Timeframe) ([]models.Candle, error) {
	return s.candles, nil
}

func (s *fakeCandleStore) GetLatestNCandles(_ context.Context, _ string, n int, _ domrepo.Timeframe) ([]models.Candle, error) {
	s.lastN = n
	return s.candles, nil
}

type fakePredictionStore struct {
	stored []*models.PredictionResult
}

func (s *fakePredictionStore) Init(context.Context) error { return nil }
func (s *fakePredictionStore) Store(_ context.Context, r *models.PredictionResult) error {
	s.stored = append(s.stored, r)
	return nil
}
func (s *fakePredictionStore) Health(context.Context) error { return nil }
func (s *fakePredictionStore) Close() error                 { return nil }

type fakeMetrics struct {
	predictions int
	errors      int
	lastPrice   float64
}

func (m *fakeMetrics) RecordPrediction(string, string)     { m.predictions++ }
func (m *fakeMetrics) RecordError(string)                  { m.errors++ }
func (m *fakeMetrics) RecordLastPrice(_ string, p float64) { m.lastPrice = p }
func (m *fakeMetrics) RecordLatency(string, float64)       {}

type fakeBroadcaster struct {
	sent []*models.PredictionResult
}

func (b *fakeBroadcaster) Broadcast(r *models.PredictionResult) { b.sent = append(b.sent, r) }

func testCandles(t *testing.T) []models.Candle {
	t.Helper()
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("load tz: %v", err)
	}
	// One candle late in the session so conditional levels are gated in.
	at := time.Date(2025, time.January, 6, 15, 0, 0, 0, ny)
	return []models.Candle{{
		Bucket: at, Symbol: "NQ_data",
		Open: 21000, High: 21010, Low: 20990, Close: 21005, Volume: 1200,
	}}
}

func newTestPredictUC(store *fakeCandleStore, pred *fakePredictionStore, m *fakeMetrics) (*PredictUseCase, *levelcache.LevelCache) {
	lc := levelcache.NewLevelCache(levelcache.NewTTLCache())
	uc := NewPredictUseCase(store, newFakeWeightStore(), lc, nil, m)
	uc.SetPredictionStore(pred)
	return uc, lc
}

func TestPredictEndToEnd(t *testing.T) {
	candles := &fakeCandleStore{candles: testCandles(t)}
	pred := &fakePredictionStore{}
	m := &fakeMetrics{}
	uc, lc := newTestPredictUC(candles, pred, m)
	bcast := &fakeBroadcaster{}
	uc.SetBroadcaster(bcast)

	res, err := uc.Predict(context.Background(), PredictParams{
		Symbol:    "NQ_data",
		Timeframe: domrepo.TF1m,
	})
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}

	if res.Metadata.Instrument != "US100" {
		t.Errorf("instrument = %q, want US100 identified from symbol", res.Metadata.Instrument)
	}
	if res.Metadata.CurrentPrice != 21005 {
		t.Errorf("current price = %v", res.Metadata.CurrentPrice)
	}
	if res.Weights.AvailableLevels == 0 {
		t.Fatal("expected available levels from single-candle fallbacks")
	}
	if candles.lastN != 10080 {
		t.Errorf("default n = %d, want 10080", candles.lastN)
	}

	if len(pred.stored) != 1 {
		t.Fatalf("prediction store calls = %d, want 1", len(pred.stored))
	}
	if len(bcast.sent) != 1 {
		t.Fatalf("broadcasts = %d, want 1", len(bcast.sent))
	}
	if m.predictions != 1 || m.errors != 0 {
		t.Errorf("metrics: predictions=%d errors=%d", m.predictions, m.errors)
	}
	if m.lastPrice != 21005 {
		t.Errorf("last price metric = %v", m.lastPrice)
	}

	// The run must have seeded the level cache.
	fresh := lc.FreshPrices("US100", res.Metadata.Timestamp)
	if len(fresh) == 0 {
		t.Error("level cache not updated after analysis")
	}
}

func TestPredictExplicitInstrumentWins(t *testing.T) {
	candles := &fakeCandleStore{candles: testCandles(t)}
	uc, _ := newTestPredictUC(candles, &fakePredictionStore{}, &fakeMetrics{})

	res, err := uc.Predict(context.Background(), PredictParams{
		Symbol:     "NQ_data",
		Instrument: "UK100",
		Timeframe:  domrepo.TF1m,
	})
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if res.Metadata.Instrument != "UK100" {
		t.Errorf("instrument = %q, want UK100", res.Metadata.Instrument)
	}
	if res.Metadata.Timezone != "Europe/London" {
		t.Errorf("timezone = %q", res.Metadata.Timezone)
	}
}

func TestPredictEmptyHistory(t *testing.T) {
	candles := &fakeCandleStore{}
	pred := &fakePredictionStore{}
	m := &fakeMetrics{}
	uc, _ := newTestPredictUC(candles, pred, m)

	res, err := uc.Predict(context.Background(), PredictParams{
		Symbol:    "NQ_data",
		Timeframe: domrepo.TF1m,
	})
	if err != nil {
		t.Fatalf("empty history must not error: %v", err)
	}
	if res.Analysis.Bias != models.DirectionBullish || res.Analysis.Confidence != 0 {
		t.Errorf("empty result = %+v", res.Analysis)
	}
	if res.Weights.AvailableLevels != 0 {
		t.Errorf("available levels = %d, want 0", res.Weights.AvailableLevels)
	}
}

func TestPredictRequiresSymbol(t *testing.T) {
	uc, _ := newTestPredictUC(&fakeCandleStore{}, &fakePredictionStore{}, &fakeMetrics{})
	if _, err := uc.Predict(context.Background(), PredictParams{}); err == nil {
		t.Fatal("expected error for missing symbol")
	}
}

func TestPredictCapsN(t *testing.T) {
	candles := &fakeCandleStore{candles: testCandles(t)}
	uc, _ := newTestPredictUC(candles, &fakePredictionStore{}, &fakeMetrics{})

	if _, err := uc.Predict(context.Background(), PredictParams{
		Symbol:    "NQ_data",
		N:         99999999,
		Timeframe: domrepo.TF1m,
	}); err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if candles.lastN != 50000 {
		t.Errorf("n = %d, want capped at 50000", candles.lastN)
	}
}
