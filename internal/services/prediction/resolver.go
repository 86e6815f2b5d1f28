package prediction

import (
	"time"

	"LevelBias/internal/domain/models"
)

// resolveLevels derives a price for every level family the catalogs know
// from the candle history. Window boundaries are computed in the instrument
// timezone. A window with no candles degrades to the most recent OHLC value,
// so every family resolves as long as the history is non-empty.
func resolveLevels(candles []models.Candle, now time.Time, instrument string, loc *time.Location) map[LevelName]float64 {
	out := make(map[LevelName]float64, 25)
	if len(candles) == 0 {
		return out
	}

	last := candles[len(candles)-1]
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)

	// Daily midnight: open of the first candle of the local day.
	if open, ok := firstOpenFrom(candles, todayStart); ok {
		out[LevelDailyMidnight] = open
	} else {
		out[LevelDailyMidnight] = last.Open
	}

	// One candle back; degrades to the last open on single-candle histories.
	if len(candles) > 1 {
		out[LevelPreviousHourly] = candles[len(candles)-2].Open
	} else {
		out[LevelPreviousHourly] = last.Open
	}

	// Row-offset approximations assuming minute granularity.
	out[Level2hOpen] = openRowsBack(candles, 120)
	out[Level4hOpen] = openRowsBack(candles, 240)

	switch instrument {
	case "US100":
		sessionStart := todayStart.Add(9*time.Hour + 30*time.Minute)
		sessionEnd := time.Date(now.Year(), now.Month(), now.Day(), 16, 0, 0, 0, loc)
		preopenStart := time.Date(now.Year(), now.Month(), now.Day(), 4, 0, 0, 0, loc)

		out[LevelNYOpen] = firstOpenInOr(candles, sessionStart, sessionEnd, last.Open)
		out[LevelNYPreopen] = firstOpenInOr(candles, preopenStart, sessionStart, last.Open)
	case "ES", "US500":
		// Chicago session boundaries are fixed in CT regardless of the
		// configured analysis timezone.
		ct := chicagoLocation()
		nowCT := now.In(ct)
		sessionStart := time.Date(nowCT.Year(), nowCT.Month(), nowCT.Day(), 8, 30, 0, 0, ct)
		sessionEnd := time.Date(nowCT.Year(), nowCT.Month(), nowCT.Day(), 15, 30, 0, 0, ct)
		preopenStart := time.Date(nowCT.Year(), nowCT.Month(), nowCT.Day(), 17, 0, 0, 0, ct).AddDate(0, 0, -1)

		out[LevelChicagoOpen] = firstOpenInOr(candles, sessionStart, sessionEnd, last.Open)
		out[LevelChicagoPreopen] = firstOpenInOr(candles, preopenStart, sessionStart, last.Open)
	default:
		// London opens at 08:00 local with no explicit close in this model.
		sessionStart := todayStart.Add(8 * time.Hour)
		if open, ok := firstOpenFrom(candles, sessionStart); ok {
			out[LevelLondonOpen] = open
		} else {
			out[LevelLondonOpen] = last.Open
		}
	}

	// Previous local day.
	yesterdayStart := todayStart.AddDate(0, 0, -1)
	if hi, lo, ok := rangeIn(candles, yesterdayStart, todayStart); ok {
		out[LevelPrevDayHigh] = hi
		out[LevelPrevDayLow] = lo
	} else {
		out[LevelPrevDayHigh] = last.High
		out[LevelPrevDayLow] = last.Low
	}

	// Current week from Monday local midnight.
	daysSinceMonday := (int(now.Weekday()) + 6) % 7
	weekStart := todayStart.AddDate(0, 0, -daysSinceMonday)
	if open, ok := firstOpenFrom(candles, weekStart); ok {
		out[LevelWeeklyOpen] = open
		hi, lo, _ := rangeFrom(candles, weekStart)
		out[LevelWeeklyHigh] = hi
		out[LevelWeeklyLow] = lo
	} else {
		out[LevelWeeklyOpen] = last.Open
		out[LevelWeeklyHigh] = last.High
		out[LevelWeeklyLow] = last.Low
	}

	// Monday-to-Monday window immediately before the current week.
	prevWeekStart := weekStart.AddDate(0, 0, -7)
	if hi, lo, ok := rangeIn(candles, prevWeekStart, weekStart); ok {
		out[LevelPrevWeekHigh] = hi
		out[LevelPrevWeekLow] = lo
	} else {
		out[LevelPrevWeekHigh] = last.High
		out[LevelPrevWeekLow] = last.Low
	}

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
	if open, ok := firstOpenFrom(candles, monthStart); ok {
		out[LevelMonthlyOpen] = open
	} else {
		out[LevelMonthlyOpen] = last.Open
	}

	// Asian range: previous-day 20:00 local through local midnight.
	asianStart := time.Date(yesterdayStart.Year(), yesterdayStart.Month(), yesterdayStart.Day(), 20, 0, 0, 0, loc)
	if hi, lo, ok := rangeIn(candles, asianStart, todayStart); ok {
		out[LevelAsianRangeHigh] = hi
		out[LevelAsianRangeLow] = lo
	} else {
		out[LevelAsianRangeHigh] = last.High
		out[LevelAsianRangeLow] = last.Low
	}

	// London range: 03:00-11:00 local.
	londonStart := todayStart.Add(3 * time.Hour)
	londonEnd := todayStart.Add(11 * time.Hour)
	if hi, lo, ok := rangeIn(candles, londonStart, londonEnd); ok {
		out[LevelLondonRangeHigh] = hi
		out[LevelLondonRangeLow] = lo
	} else {
		out[LevelLondonRangeHigh] = last.High
		out[LevelLondonRangeLow] = last.Low
	}

	// Midday trading range: NY for US100, Chicago otherwise.
	if instrument == "US100" {
		rangeStart := todayStart.Add(9*time.Hour + 30*time.Minute)
		rangeEnd := time.Date(now.Year(), now.Month(), now.Day(), 14, 0, 0, 0, loc)
		if hi, lo, ok := rangeIn(candles, rangeStart, rangeEnd); ok {
			out[LevelNYRangeHigh] = hi
			out[LevelNYRangeLow] = lo
		} else {
			out[LevelNYRangeHigh] = last.High
			out[LevelNYRangeLow] = last.Low
		}
	} else {
		ct := chicagoLocation()
		nowCT := now.In(ct)
		rangeStart := time.Date(nowCT.Year(), nowCT.Month(), nowCT.Day(), 8, 30, 0, 0, ct)
		rangeEnd := time.Date(nowCT.Year(), nowCT.Month(), nowCT.Day(), 14, 0, 0, 0, ct)
		if hi, lo, ok := rangeIn(candles, rangeStart, rangeEnd); ok {
			out[LevelChicagoRangeHigh] = hi
			out[LevelChicagoRangeLow] = lo
		} else {
			out[LevelChicagoRangeHigh] = last.High
			out[LevelChicagoRangeLow] = last.Low
		}
	}

	return out
}

func chicagoLocation() *time.Location {
	loc, err := time.LoadLocation("America/Chicago")
	if err != nil {
		return time.UTC
	}
	return loc
}

// openRowsBack returns the open n rows before the end, the earliest open
// when the history is shorter.
func openRowsBack(candles []models.Candle, n int) float64 {
	if len(candles) > n {
		return candles[len(candles)-n].Open
	}
	return candles[0].Open
}

// firstOpenFrom returns the open of the first candle at or after from.
func firstOpenFrom(candles []models.Candle, from time.Time) (float64, bool) {
	for i := range candles {
		if !candles[i].Bucket.Before(from) {
			return candles[i].Open, true
		}
	}
	return 0, false
}

// firstOpenInOr returns the open of the first candle in [from, to),
// or fallback when the window is empty.
func firstOpenInOr(candles []models.Candle, from, to time.Time, fallback float64) float64 {
	for i := range candles {
		if !candles[i].Bucket.Before(from) && candles[i].Bucket.Before(to) {
			return candles[i].Open
		}
	}
	return fallback
}

// rangeIn returns max high and min low over candles in [from, to).
func rangeIn(candles []models.Candle, from, to time.Time) (hi, lo float64, ok bool) {
	for i := range candles {
		b := candles[i].Bucket
		if b.Before(from) || !b.Before(to) {
			continue
		}
		if !ok {
			hi, lo, ok = candles[i].High, candles[i].Low, true
			continue
		}
		if candles[i].High > hi {
			hi = candles[i].High
		}
		if candles[i].Low < lo {
			lo = candles[i].Low
		}
	}
	return hi, lo, ok
}

// rangeFrom returns max high and min low over candles at or after from.
func rangeFrom(candles []models.Candle, from time.Time) (hi, lo float64, ok bool) {
	for i := range candles {
		if candles[i].Bucket.Before(from) {
			continue
		}
		if !ok {
			hi, lo, ok = candles[i].High, candles[i].Low, true
			continue
		}
		if candles[i].High > hi {
			hi = candles[i].High
		}
		if candles[i].Low < lo {
			lo = candles[i].Low
		}
	}
	return hi, lo, ok
}
