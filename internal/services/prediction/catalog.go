package prediction

// LevelName identifies a reference level within an instrument catalog.
// The set of names is closed; weight values are the only tunable part.
type LevelName string

const (
	LevelDailyMidnight    LevelName = "daily_midnight"
	LevelPreviousHourly   LevelName = "previous_hourly"
	Level2hOpen           LevelName = "2h_open"
	Level4hOpen           LevelName = "4h_open"
	LevelNYOpen           LevelName = "ny_open"
	LevelNYPreopen        LevelName = "ny_preopen"
	LevelChicagoOpen      LevelName = "chicago_open"
	LevelChicagoPreopen   LevelName = "chicago_preopen"
	LevelLondonOpen       LevelName = "london_open"
	LevelPrevDayHigh      LevelName = "prev_day_high"
	LevelPrevDayLow       LevelName = "prev_day_low"
	LevelWeeklyOpen       LevelName = "weekly_open"
	LevelWeeklyHigh       LevelName = "weekly_high"
	LevelWeeklyLow        LevelName = "weekly_low"
	LevelPrevWeekHigh     LevelName = "prev_week_high"
	LevelPrevWeekLow      LevelName = "prev_week_low"
	LevelMonthlyOpen      LevelName = "monthly_open"
	LevelAsianRangeHigh   LevelName = "asian_range_high"
	LevelAsianRangeLow    LevelName = "asian_range_low"
	LevelLondonRangeHigh  LevelName = "london_range_high"
	LevelLondonRangeLow   LevelName = "london_range_low"
	LevelNYRangeHigh      LevelName = "ny_range_high"
	LevelNYRangeLow       LevelName = "ny_range_low"
	LevelChicagoRangeHigh LevelName = "chicago_range_high"
	LevelChicagoRangeLow  LevelName = "chicago_range_low"
)

// Availability tells whether a level is always eligible or gated by local hour.
type Availability int

const (
	AlwaysAvailable Availability = iota
	Conditional
)

func (a Availability) String() string {
	if a == Conditional {
		return "CONDITIONAL"
	}
	return "ALWAYS_AVAILABLE"
}

// LevelTemplate is the immutable catalog entry for one reference level.
// Conditional levels become eligible once the analysis-local hour reaches GatingHour.
type LevelTemplate struct {
	Name         LevelName
	BaseWeight   float64
	Availability Availability
	GatingHour   int
}

func always(name LevelName, w float64) LevelTemplate {
	return LevelTemplate{Name: name, BaseWeight: w, Availability: AlwaysAvailable}
}

func gated(name LevelName, w float64, hour int) LevelTemplate {
	return LevelTemplate{Name: name, BaseWeight: w, Availability: Conditional, GatingHour: hour}
}

// us100Levels: 14 always-available plus 6 session-range conditional levels.
var us100Levels = []LevelTemplate{
	always(LevelDailyMidnight, 0.1339),
	always(LevelPreviousHourly, 0.0822),
	always(Level2hOpen, 0.0520),
	always(Level4hOpen, 0.0650),
	always(LevelNYOpen, 0.0779),
	always(LevelNYPreopen, 0.0391),
	always(LevelPrevDayHigh, 0.0260),
	always(LevelPrevDayLow, 0.0260),
	always(LevelWeeklyOpen, 0.0650),
	always(LevelWeeklyHigh, 0.0260),
	always(LevelWeeklyLow, 0.0260),
	always(LevelPrevWeekHigh, 0.0520),
	always(LevelPrevWeekLow, 0.0520),
	always(LevelMonthlyOpen, 0.0391),
	gated(LevelAsianRangeHigh, 0.0279, 0),
	gated(LevelAsianRangeLow, 0.0279, 0),
	gated(LevelLondonRangeHigh, 0.0520, 11),
	gated(LevelLondonRangeLow, 0.0520, 11),
	gated(LevelNYRangeHigh, 0.0391, 14),
	gated(LevelNYRangeLow, 0.0391, 14),
}

// esLevels mirrors US100 with Chicago session levels in place of NY.
var esLevels = []LevelTemplate{
	always(LevelDailyMidnight, 0.1339),
	always(LevelPreviousHourly, 0.0822),
	always(Level2hOpen, 0.0520),
	always(Level4hOpen, 0.0650),
	always(LevelChicagoOpen, 0.0779),
	always(LevelChicagoPreopen, 0.0391),
	always(LevelPrevDayHigh, 0.0260),
	always(LevelPrevDayLow, 0.0260),
	always(LevelWeeklyOpen, 0.0650),
	always(LevelWeeklyHigh, 0.0260),
	always(LevelWeeklyLow, 0.0260),
	always(LevelPrevWeekHigh, 0.0520),
	always(LevelPrevWeekLow, 0.0520),
	always(LevelMonthlyOpen, 0.0391),
	gated(LevelAsianRangeHigh, 0.0279, 0),
	gated(LevelAsianRangeLow, 0.0279, 0),
	gated(LevelLondonRangeHigh, 0.0520, 11),
	gated(LevelLondonRangeLow, 0.0520, 11),
	gated(LevelChicagoRangeHigh, 0.0391, 14),
	gated(LevelChicagoRangeLow, 0.0391, 14),
}

// uk100Levels has 15 levels, all always-available. No Asian or NY/Chicago
// session ranges for the London-listed index.
var uk100Levels = []LevelTemplate{
	always(LevelDailyMidnight, 0.1339),
	always(LevelPreviousHourly, 0.0822),
	always(Level2hOpen, 0.0520),
	always(Level4hOpen, 0.0650),
	always(LevelLondonOpen, 0.0779),
	always(LevelPrevDayHigh, 0.0260),
	always(LevelPrevDayLow, 0.0260),
	always(LevelWeeklyOpen, 0.0650),
	always(LevelWeeklyHigh, 0.0260),
	always(LevelWeeklyLow, 0.0260),
	always(LevelPrevWeekHigh, 0.0520),
	always(LevelPrevWeekLow, 0.0520),
	always(LevelMonthlyOpen, 0.0391),
	always(LevelLondonRangeHigh, 0.0520),
	always(LevelLondonRangeLow, 0.0520),
}

// instrumentTimezones maps instrument codes to their local market timezone.
var instrumentTimezones = map[string]string{
	"US100": "America/New_York",
	"ES":    "America/Chicago",
	"US500": "America/Chicago",
	"UK100": "Europe/London",
	"GER40": "Europe/Berlin",
}

// DefaultTimezone returns the instrument-local timezone name,
// America/New_York for unknown instruments.
func DefaultTimezone(instrument string) string {
	if tz, ok := instrumentTimezones[instrument]; ok {
		return tz
	}
	return "America/New_York"
}

// CatalogFor returns a copy of the level catalog for an instrument.
// ES and US500 are the same contract; unknown instruments fall back to US100.
// Entries in overrides replace the matching template base weights.
func CatalogFor(instrument string, overrides map[string]float64) []LevelTemplate {
	var src []LevelTemplate
	switch instrument {
	case "ES", "US500":
		src = esLevels
	case "UK100":
		src = uk100Levels
	default:
		src = us100Levels
	}

	out := make([]LevelTemplate, len(src))
	copy(out, src)
	if len(overrides) > 0 {
		for i := range out {
			if w, ok := overrides[string(out[i].Name)]; ok {
				out[i].BaseWeight = w
			}
		}
	}
	return out
}

// DefaultWeights returns the catalog base weights keyed by level name.
func DefaultWeights(instrument string) map[string]float64 {
	catalog := CatalogFor(instrument, nil)
	out := make(map[string]float64, len(catalog))
	for _, t := range catalog {
		out[string(t.Name)] = t.BaseWeight
	}
	return out
}
