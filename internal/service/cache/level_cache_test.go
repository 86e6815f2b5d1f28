package cache

import (
	"testing"
	"time"
)

func TestFreshIntradayOpens(t *testing.T) {
	base := time.Date(2025, 1, 7, 10, 0, 0, 0, time.UTC)
	cases := []struct {
		level string
		age   time.Duration
		want  bool
	}{
		{"4h_open", 3 * time.Hour, true},
		{"4h_open", 5 * time.Hour, false},
		{"2h_open", 90 * time.Minute, true},
		{"2h_open", 3 * time.Hour, false},
		{"previous_hourly", 30 * time.Minute, true},
		{"previous_hourly", 2 * time.Hour, false},
	}
	for _, c := range cases {
		if got := Fresh(c.level, base, base.Add(c.age)); got != c.want {
			t.Fatalf("Fresh(%s, +%v) = %v, want %v", c.level, c.age, got, c.want)
		}
	}
}

func TestFreshCalendarBoundaries(t *testing.T) {
	morning := time.Date(2025, 1, 7, 0, 30, 0, 0, time.UTC)
	sameDayLater := time.Date(2025, 1, 7, 23, 0, 0, 0, time.UTC)
	nextDay := time.Date(2025, 1, 8, 0, 30, 0, 0, time.UTC)

	if !Fresh("daily_midnight", morning, sameDayLater) {
		t.Fatalf("daily_midnight should survive the day")
	}
	if Fresh("daily_midnight", morning, nextDay) {
		t.Fatalf("daily_midnight should expire at next midnight")
	}

	// Previous-day levels are valid exactly when recorded yesterday.
	if !Fresh("prev_day_high", morning, nextDay) {
		t.Fatalf("prev_day_high recorded yesterday should be valid")
	}
	if Fresh("prev_day_high", morning, sameDayLater) {
		t.Fatalf("prev_day_high recorded today should not be valid")
	}

	// Weekly levels expire at the next Monday.
	monday := time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC)
	friday := time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)
	nextMonday := time.Date(2025, 1, 13, 9, 0, 0, 0, time.UTC)
	if !Fresh("weekly_open", monday, friday) {
		t.Fatalf("weekly_open should be valid within the week")
	}
	if Fresh("weekly_open", monday, nextMonday) {
		t.Fatalf("weekly_open should expire at next Monday")
	}
	if !Fresh("prev_week_high", monday, nextMonday) {
		t.Fatalf("prev_week_high from last week should be valid")
	}

	if !Fresh("monthly_open", monday, time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("monthly_open should be valid within the month")
	}
	if Fresh("monthly_open", monday, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("monthly_open should expire next month")
	}
}

func TestFreshSessionRanges(t *testing.T) {
	recorded := time.Date(2025, 1, 7, 0, 10, 0, 0, time.UTC)
	if !Fresh("asian_range_high", recorded, time.Date(2025, 1, 7, 0, 50, 0, 0, time.UTC)) {
		t.Fatalf("asian range should be valid before 01:00")
	}
	if Fresh("asian_range_high", recorded, time.Date(2025, 1, 7, 2, 0, 0, 0, time.UTC)) {
		t.Fatalf("asian range should expire after 01:00")
	}

	recorded = time.Date(2025, 1, 7, 9, 0, 0, 0, time.UTC)
	if !Fresh("london_range_low", recorded, time.Date(2025, 1, 7, 10, 59, 0, 0, time.UTC)) {
		t.Fatalf("london range should be valid before 11:00")
	}
	if Fresh("london_range_low", recorded, time.Date(2025, 1, 7, 11, 30, 0, 0, time.UTC)) {
		t.Fatalf("london range should expire after 11:00")
	}

	if !Fresh("ny_range_high", recorded, time.Date(2025, 1, 7, 13, 59, 0, 0, time.UTC)) {
		t.Fatalf("ny range should be valid before 14:00")
	}
	if Fresh("ny_range_high", recorded, time.Date(2025, 1, 7, 14, 5, 0, 0, time.UTC)) {
		t.Fatalf("ny range should expire after 14:00")
	}
}

func TestLevelCacheRoundTrip(t *testing.T) {
	c := NewLevelCache(NewTTLCache())
	at := time.Date(2025, 1, 7, 10, 0, 0, 0, time.UTC)

	if err := c.Update("US100", map[string]float64{
		"daily_midnight": 21500.5,
		"weekly_open":    21420.0,
	}, at); err != nil {
		t.Fatalf("update: %v", err)
	}

	got := c.FreshPrices("US100", at.Add(time.Hour))
	if got["daily_midnight"] != 21500.5 || got["weekly_open"] != 21420.0 {
		t.Fatalf("fresh prices = %v", got)
	}

	// Next day the daily level is stale, the weekly one survives.
	got = c.FreshPrices("US100", at.AddDate(0, 0, 1))
	if _, ok := got["daily_midnight"]; ok {
		t.Fatalf("daily_midnight should have expired")
	}
	if got["weekly_open"] != 21420.0 {
		t.Fatalf("weekly_open should still be fresh, got %v", got)
	}
}

func TestLevelCacheClear(t *testing.T) {
	c := NewLevelCache(NewTTLCache())
	at := time.Date(2025, 1, 7, 10, 0, 0, 0, time.UTC)
	if err := c.Update("ES", map[string]float64{"weekly_open": 6000}, at); err != nil {
		t.Fatalf("update: %v", err)
	}
	if n := c.Clear("ES"); n != 1 {
		t.Fatalf("clear removed %d, want 1", n)
	}
	if got := c.FreshPrices("ES", at); len(got) != 0 {
		t.Fatalf("cache not empty after clear: %v", got)
	}
}

func TestLevelCacheCleanup(t *testing.T) {
	c := NewLevelCache(NewTTLCache())
	old := time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC)
	now := time.Date(2025, 1, 7, 0, 0, 0, 0, time.UTC)
	if err := c.Update("US100", map[string]float64{"weekly_open": 1}, old); err != nil {
		t.Fatalf("update: %v", err)
	}
	if n := c.Cleanup("US100", now, 30*24*time.Hour); n != 1 {
		t.Fatalf("cleanup removed %d, want 1", n)
	}
}
