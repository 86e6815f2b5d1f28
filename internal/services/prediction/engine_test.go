package prediction

import (
	"math"
	"reflect"
	"testing"
	"time"

	"LevelBias/internal/domain/models"
)

func newTestEngine(t *testing.T, instrument string, opts ...Option) *Engine {
	t.Helper()
	e, err := NewEngine(instrument, opts...)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return e
}

func TestAnalyzeSingleFlatCandle(t *testing.T) {
	loc := mustLoadLocation(t, "America/New_York")
	// 15:00 local, past every gating hour, so all 20 levels join.
	now := time.Date(2025, 1, 7, 15, 0, 0, 0, loc)
	candles := []models.Candle{{Bucket: now, Open: 100, High: 100, Low: 100, Close: 100}}

	e := newTestEngine(t, "US100")
	res := e.Analyze(candles, AnalyzeParams{})

	if res.Weights.AvailableLevels != 20 || res.Weights.TotalLevels != 20 {
		t.Fatalf("availability = %d/%d, want 20/20", res.Weights.AvailableLevels, res.Weights.TotalLevels)
	}
	if res.Analysis.Bias != models.DirectionBullish {
		t.Fatalf("bias = %s, want BULLISH", res.Analysis.Bias)
	}
	if res.Analysis.Confidence != 0 {
		t.Fatalf("confidence = %v, want 0", res.Analysis.Confidence)
	}
	if res.Analysis.BullishWeight != 0 || res.Analysis.BearishWeight != 0 {
		t.Fatalf("weights = %v/%v, want 0/0", res.Analysis.BullishWeight, res.Analysis.BearishWeight)
	}
	var normalizedSum float64
	for _, l := range res.Levels {
		if l.Direction != models.DirectionNeutral {
			t.Fatalf("%s direction = %s, want NEUTRAL", l.Name, l.Direction)
		}
		if l.Price != 100 {
			t.Fatalf("%s price = %v, want 100", l.Name, l.Price)
		}
		if l.Depreciation != 1.0 {
			t.Fatalf("%s depreciation = %v, want 1.0", l.Name, l.Depreciation)
		}
		normalizedSum += l.NormalizedWeight
	}
	// Reported weights carry 4dp display rounding.
	if math.Abs(normalizedSum-1.0) > 0.002 {
		t.Fatalf("normalized weights sum to %v, want ~1.0", normalizedSum)
	}
	if res.Metadata.DataPoints != 1 || res.Metadata.CurrentPrice != 100 {
		t.Fatalf("metadata = %+v", res.Metadata)
	}
}

func TestAnalyzeUptrendFullyBullish(t *testing.T) {
	loc := mustLoadLocation(t, "America/New_York")
	// Two weeks of rising minute bars ending Tuesday 15:00 local.
	end := time.Date(2025, 1, 14, 15, 0, 0, 0, loc)
	start := end.AddDate(0, 0, -14)
	n := int(end.Sub(start)/time.Minute) + 1
	candles := flatSeries(start, n, 100, 0.001)

	e := newTestEngine(t, "US100")
	res := e.Analyze(candles, AnalyzeParams{})

	if res.Analysis.Bias != models.DirectionBullish {
		t.Fatalf("bias = %s, want BULLISH", res.Analysis.Bias)
	}
	if res.Analysis.BearishWeight != 0 {
		t.Fatalf("bearish weight = %v, want 0", res.Analysis.BearishWeight)
	}
	if res.Analysis.BullishWeight <= 0 {
		t.Fatalf("bullish weight = %v, want > 0", res.Analysis.BullishWeight)
	}
	if res.Analysis.Confidence != 100.0 {
		t.Fatalf("confidence = %v, want 100", res.Analysis.Confidence)
	}
}

func TestAnalyzeDepreciationFloorAtFivePercent(t *testing.T) {
	loc := mustLoadLocation(t, "America/New_York")
	midnight := time.Date(2025, 1, 7, 0, 0, 0, 0, loc)
	now := time.Date(2025, 1, 7, 15, 0, 0, 0, loc)
	candles := []models.Candle{
		{Bucket: midnight, Open: 100, High: 100, Low: 100, Close: 100},
		{Bucket: now, Open: 106, High: 106, Low: 106, Close: 106},
	}

	e := newTestEngine(t, "US100")
	res := e.Analyze(candles, AnalyzeParams{})

	for _, l := range res.Levels {
		if l.Name != string(LevelDailyMidnight) {
			continue
		}
		// |106-100|/106 > 5% away, floor exactly.
		if l.Depreciation != 0.1 {
			t.Fatalf("daily_midnight depreciation = %v, want 0.1", l.Depreciation)
		}
		if l.Direction != models.DirectionBullish {
			t.Fatalf("daily_midnight direction = %s, want BULLISH", l.Direction)
		}
		return
	}
	t.Fatalf("daily_midnight missing from result")
}

func TestAnalyzeConditionalGating(t *testing.T) {
	loc := mustLoadLocation(t, "America/New_York")
	start := time.Date(2025, 1, 7, 0, 0, 0, 0, loc)

	hasLevel := func(res *models.PredictionResult, name LevelName) bool {
		for _, l := range res.Levels {
			if l.Name == string(name) {
				return true
			}
		}
		return false
	}

	e := newTestEngine(t, "US100")

	before := time.Date(2025, 1, 7, 13, 30, 0, 0, loc)
	n := int(before.Sub(start)/time.Minute) + 1
	res := e.Analyze(flatSeries(start, n, 100, 0.01), AnalyzeParams{})
	if hasLevel(res, LevelNYRangeHigh) || hasLevel(res, LevelNYRangeLow) {
		t.Fatalf("ny_range levels included before 14:00 local")
	}
	if res.Weights.AvailableLevels != 18 {
		t.Fatalf("available = %d before gate, want 18", res.Weights.AvailableLevels)
	}

	after := time.Date(2025, 1, 7, 14, 5, 0, 0, loc)
	n = int(after.Sub(start)/time.Minute) + 1
	res = e.Analyze(flatSeries(start, n, 100, 0.01), AnalyzeParams{})
	if !hasLevel(res, LevelNYRangeHigh) || !hasLevel(res, LevelNYRangeLow) {
		t.Fatalf("ny_range levels missing after 14:00 local")
	}
	if res.Weights.AvailableLevels != 20 {
		t.Fatalf("available = %d after gate, want 20", res.Weights.AvailableLevels)
	}
}

func TestAnalyzeUK100NeverSeesOverseasRanges(t *testing.T) {
	ldn := mustLoadLocation(t, "Europe/London")
	start := time.Date(2025, 1, 6, 0, 0, 0, 0, ldn)
	end := time.Date(2025, 1, 7, 18, 0, 0, 0, ldn)
	n := int(end.Sub(start)/time.Minute) + 1
	candles := flatSeries(start, n, 8000, 0.01)

	e := newTestEngine(t, "UK100")
	res := e.Analyze(candles, AnalyzeParams{})

	if res.Metadata.Timezone != "Europe/London" {
		t.Fatalf("timezone = %s, want Europe/London", res.Metadata.Timezone)
	}
	for _, l := range res.Levels {
		switch LevelName(l.Name) {
		case LevelAsianRangeHigh, LevelAsianRangeLow, LevelNYRangeHigh, LevelNYRangeLow,
			LevelChicagoRangeHigh, LevelChicagoRangeLow:
			t.Fatalf("UK100 result contains %s", l.Name)
		}
	}
	if res.Weights.TotalLevels != 15 {
		t.Fatalf("total levels = %d, want 15", res.Weights.TotalLevels)
	}
}

func TestAnalyzeEmptyHistory(t *testing.T) {
	e := newTestEngine(t, "US100")
	res := e.Analyze(nil, AnalyzeParams{})

	if res.Analysis.Bias != models.DirectionBullish {
		t.Fatalf("empty bias = %s, want BULLISH", res.Analysis.Bias)
	}
	if res.Analysis.Confidence != 0 {
		t.Fatalf("empty confidence = %v, want 0", res.Analysis.Confidence)
	}
	if len(res.Levels) != 0 {
		t.Fatalf("empty result has %d levels", len(res.Levels))
	}
	if res.Weights.TotalLevels != 20 || res.Weights.AvailableLevels != 0 {
		t.Fatalf("empty weights = %+v", res.Weights)
	}
	if res.Metadata.DataPoints != 0 {
		t.Fatalf("empty data points = %d", res.Metadata.DataPoints)
	}
}

func TestAnalyzeIdempotent(t *testing.T) {
	loc := mustLoadLocation(t, "America/New_York")
	start := time.Date(2025, 1, 6, 0, 0, 0, 0, loc)
	end := time.Date(2025, 1, 7, 15, 0, 0, 0, loc)
	n := int(end.Sub(start)/time.Minute) + 1
	candles := flatSeries(start, n, 100, 0.01)

	e := newTestEngine(t, "US100")
	a := e.Analyze(candles, AnalyzeParams{})
	b := e.Analyze(candles, AnalyzeParams{})
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("repeated analysis differs:\n%+v\n%+v", a, b)
	}
}

func TestAnalyzeTimestampFallback(t *testing.T) {
	loc := mustLoadLocation(t, "America/New_York")
	now := time.Date(2025, 1, 7, 15, 0, 0, 0, loc)
	candles := []models.Candle{{Bucket: now, Open: 100, High: 100, Low: 100, Close: 100}}

	e := newTestEngine(t, "US100")
	res := e.Analyze(candles, AnalyzeParams{Timestamp: "definitely-not-a-time"})
	if !res.Metadata.Timestamp.Equal(now) {
		t.Fatalf("timestamp = %v, want last candle %v", res.Metadata.Timestamp, now)
	}

	res = e.Analyze(candles, AnalyzeParams{Timestamp: "2025-01-07 13:00"})
	want := time.Date(2025, 1, 7, 13, 0, 0, 0, loc)
	if !res.Metadata.Timestamp.Equal(want) {
		t.Fatalf("timestamp = %v, want %v", res.Metadata.Timestamp, want)
	}
}

func TestAnalyzeCachedLevelsDoNotOverrideResolved(t *testing.T) {
	loc := mustLoadLocation(t, "America/New_York")
	now := time.Date(2025, 1, 7, 15, 0, 0, 0, loc)
	candles := []models.Candle{{Bucket: now, Open: 100, High: 100, Low: 100, Close: 100}}

	e := newTestEngine(t, "US100")
	res := e.Analyze(candles, AnalyzeParams{
		CachedLevels: map[LevelName]float64{LevelDailyMidnight: 42},
	})
	for _, l := range res.Levels {
		if l.Name == string(LevelDailyMidnight) && l.Price != 100 {
			t.Fatalf("cached price overrode current-window resolution: %v", l.Price)
		}
	}
}

func TestAnalyzeTimezoneOverride(t *testing.T) {
	e := newTestEngine(t, "US100", WithTimezone("Europe/Berlin"))
	if e.Timezone() != "Europe/Berlin" {
		t.Fatalf("timezone = %s, want Europe/Berlin", e.Timezone())
	}
	if _, err := NewEngine("US100", WithTimezone("Not/AZone")); err == nil {
		t.Fatalf("expected error for invalid timezone")
	}
}

func TestAnalyzeBaseWeightOverride(t *testing.T) {
	loc := mustLoadLocation(t, "America/New_York")
	now := time.Date(2025, 1, 7, 15, 0, 0, 0, loc)
	candles := []models.Candle{{Bucket: now, Open: 100, High: 100, Low: 100, Close: 100}}

	e := newTestEngine(t, "US100", WithBaseWeights(map[string]float64{"daily_midnight": 0.25}))
	res := e.Analyze(candles, AnalyzeParams{})
	for _, l := range res.Levels {
		if l.Name == string(LevelDailyMidnight) && l.BaseWeight != 0.25 {
			t.Fatalf("base weight = %v, want 0.25", l.BaseWeight)
		}
	}
}
