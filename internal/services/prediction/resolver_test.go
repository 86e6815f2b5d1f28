package prediction

import (
	"testing"
	"time"

	"LevelBias/internal/domain/models"
)

func mustLoadLocation(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	if err != nil {
		t.Fatalf("load location %s: %v", name, err)
	}
	return loc
}

// flatSeries builds minute candles where open=high=low=close, increasing by
// step per candle. Monotonic prices make window extrema easy to predict.
func flatSeries(start time.Time, n int, base, step float64) []models.Candle {
	out := make([]models.Candle, n)
	for i := range out {
		p := base + float64(i)*step
		out[i] = models.Candle{
			Bucket: start.Add(time.Duration(i) * time.Minute),
			Open:   p,
			High:   p,
			Low:    p,
			Close:  p,
		}
	}
	return out
}

func openAt(t *testing.T, candles []models.Candle, ts time.Time) float64 {
	t.Helper()
	for i := range candles {
		if candles[i].Bucket.Equal(ts) {
			return candles[i].Open
		}
	}
	t.Fatalf("no candle at %v", ts)
	return 0
}

func TestResolveLevelsSessionWindows(t *testing.T) {
	loc := mustLoadLocation(t, "America/New_York")
	// Monday 2025-01-06 00:00 ET through Tuesday 15:00 ET, one-minute bars.
	start := time.Date(2025, 1, 6, 0, 0, 0, 0, loc)
	now := time.Date(2025, 1, 7, 15, 0, 0, 0, loc)
	n := int(now.Sub(start)/time.Minute) + 1
	candles := flatSeries(start, n, 100, 0.01)
	last := candles[n-1]

	levels := resolveLevels(candles, now, "US100", loc)

	tuesday := time.Date(2025, 1, 7, 0, 0, 0, 0, loc)
	cases := []struct {
		name LevelName
		want float64
	}{
		{LevelDailyMidnight, openAt(t, candles, tuesday)},
		{LevelPreviousHourly, candles[n-2].Open},
		{Level2hOpen, candles[n-120].Open},
		{Level4hOpen, candles[n-240].Open},
		{LevelNYOpen, openAt(t, candles, tuesday.Add(9*time.Hour+30*time.Minute))},
		{LevelNYPreopen, openAt(t, candles, tuesday.Add(4*time.Hour))},
		// Monotonic series: window max is the last bar of the window,
		// window min the first.
		{LevelPrevDayHigh, openAt(t, candles, tuesday.Add(-time.Minute))},
		{LevelPrevDayLow, candles[0].Low},
		{LevelWeeklyOpen, candles[0].Open},
		{LevelWeeklyHigh, last.High},
		{LevelWeeklyLow, candles[0].Low},
		{LevelMonthlyOpen, candles[0].Open},
		{LevelAsianRangeHigh, openAt(t, candles, tuesday.Add(-time.Minute))},
		{LevelAsianRangeLow, openAt(t, candles, tuesday.Add(-4*time.Hour))},
		{LevelLondonRangeHigh, openAt(t, candles, tuesday.Add(11*time.Hour-time.Minute))},
		{LevelLondonRangeLow, openAt(t, candles, tuesday.Add(3*time.Hour))},
		{LevelNYRangeHigh, openAt(t, candles, tuesday.Add(14*time.Hour-time.Minute))},
		{LevelNYRangeLow, openAt(t, candles, tuesday.Add(9*time.Hour+30*time.Minute))},
	}
	for _, c := range cases {
		got, ok := levels[c.name]
		if !ok {
			t.Fatalf("%s not resolved", c.name)
		}
		if got != c.want {
			t.Fatalf("%s = %v, want %v", c.name, got, c.want)
		}
	}

	// The history starts on Monday, so the previous week has no candles
	// and the window degrades to the latest high/low.
	if levels[LevelPrevWeekHigh] != last.High || levels[LevelPrevWeekLow] != last.Low {
		t.Fatalf("prev week = %v/%v, want fallback %v/%v",
			levels[LevelPrevWeekHigh], levels[LevelPrevWeekLow], last.High, last.Low)
	}
}

func TestResolveLevelsSingleCandleFallbacks(t *testing.T) {
	loc := mustLoadLocation(t, "America/New_York")
	now := time.Date(2025, 1, 7, 15, 0, 0, 0, loc)
	candles := []models.Candle{{Bucket: now, Open: 100, High: 100, Low: 100, Close: 100}}

	levels := resolveLevels(candles, now, "US100", loc)
	for _, name := range []LevelName{
		LevelDailyMidnight, LevelPreviousHourly, Level2hOpen, Level4hOpen,
		LevelNYOpen, LevelNYPreopen, LevelPrevDayHigh, LevelPrevDayLow,
		LevelWeeklyOpen, LevelWeeklyHigh, LevelWeeklyLow,
		LevelPrevWeekHigh, LevelPrevWeekLow, LevelMonthlyOpen,
		LevelAsianRangeHigh, LevelAsianRangeLow,
		LevelLondonRangeHigh, LevelLondonRangeLow,
		LevelNYRangeHigh, LevelNYRangeLow,
	} {
		got, ok := levels[name]
		if !ok {
			t.Fatalf("%s not resolved from single candle", name)
		}
		if got != 100 {
			t.Fatalf("%s = %v, want 100", name, got)
		}
	}
}

func TestResolveLevelsEmptyHistory(t *testing.T) {
	loc := mustLoadLocation(t, "America/New_York")
	levels := resolveLevels(nil, time.Now().In(loc), "US100", loc)
	if len(levels) != 0 {
		t.Fatalf("empty history resolved %d levels, want 0", len(levels))
	}
}

func TestResolveLevelsChicagoSession(t *testing.T) {
	ct := mustLoadLocation(t, "America/Chicago")
	start := time.Date(2025, 1, 6, 0, 0, 0, 0, ct)
	now := time.Date(2025, 1, 7, 15, 0, 0, 0, ct)
	n := int(now.Sub(start)/time.Minute) + 1
	candles := flatSeries(start, n, 5000, 0.01)

	levels := resolveLevels(candles, now, "ES", ct)

	tuesday := time.Date(2025, 1, 7, 0, 0, 0, 0, ct)
	if got := levels[LevelChicagoOpen]; got != openAt(t, candles, tuesday.Add(8*time.Hour+30*time.Minute)) {
		t.Fatalf("chicago_open = %v", got)
	}
	// Pre-open runs from the previous day 17:00 CT.
	if got := levels[LevelChicagoPreopen]; got != openAt(t, candles, tuesday.Add(-7*time.Hour)) {
		t.Fatalf("chicago_preopen = %v", got)
	}
	if got := levels[LevelChicagoRangeHigh]; got != openAt(t, candles, tuesday.Add(14*time.Hour-time.Minute)) {
		t.Fatalf("chicago_range_high = %v", got)
	}
	if _, ok := levels[LevelNYOpen]; ok {
		t.Fatalf("ES resolution produced ny_open")
	}
}

func TestResolveLevelsLondonOpen(t *testing.T) {
	ldn := mustLoadLocation(t, "Europe/London")
	start := time.Date(2025, 1, 7, 0, 0, 0, 0, ldn)
	now := time.Date(2025, 1, 7, 12, 0, 0, 0, ldn)
	n := int(now.Sub(start)/time.Minute) + 1
	candles := flatSeries(start, n, 8000, 0.01)

	levels := resolveLevels(candles, now, "UK100", ldn)
	if got := levels[LevelLondonOpen]; got != openAt(t, candles, start.Add(8*time.Hour)) {
		t.Fatalf("london_open = %v", got)
	}
}
