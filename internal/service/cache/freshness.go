package cache

import "time"

// Fresh reports whether a cached level price recorded at cachedAt is still
// usable at now. Each level family expires with its own period: intraday
// opens by elapsed time, daily levels at the next midnight, weekly levels
// at the next Monday, ranges when their session window has passed.
func Fresh(levelName string, cachedAt, now time.Time) bool {
	age := now.Sub(cachedAt)
	if age < 0 {
		return false
	}

	switch levelName {
	case "4h_open":
		return age <= 4*time.Hour
	case "2h_open":
		return age <= 2*time.Hour
	case "previous_hourly":
		return age <= time.Hour

	case "daily_midnight", "ny_open", "ny_preopen", "chicago_open", "chicago_preopen", "london_open":
		return sameDay(cachedAt, now)

	case "prev_day_high", "prev_day_low":
		return sameDay(cachedAt, now.AddDate(0, 0, -1))

	case "weekly_open", "weekly_high", "weekly_low":
		return weekStart(cachedAt).Equal(weekStart(now))

	case "prev_week_high", "prev_week_low":
		return weekStart(cachedAt).Equal(weekStart(now).AddDate(0, 0, -7))

	case "monthly_open":
		return cachedAt.Year() == now.Year() && cachedAt.Month() == now.Month()

	case "asian_range_high", "asian_range_low":
		return sameDay(cachedAt, now) && now.Hour() < 1

	case "london_range_high", "london_range_low":
		return sameDay(cachedAt, now) && now.Hour() < 11

	case "ny_range_high", "ny_range_low", "chicago_range_high", "chicago_range_low":
		return sameDay(cachedAt, now) && now.Hour() < 14
	}

	return age <= 7*24*time.Hour
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func weekStart(t time.Time) time.Time {
	daysSinceMonday := (int(t.Weekday()) + 6) % 7
	y, m, d := t.AddDate(0, 0, -daysSinceMonday).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
