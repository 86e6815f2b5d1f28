package prediction

import (
	"fmt"
	"time"

	"LevelBias/internal/domain/models"
	"LevelBias/pkg/util"
)

// Engine computes a directional bias for one instrument from a candle
// history. It holds only immutable configuration, so a single Engine is
// safe for concurrent Analyze calls.
type Engine struct {
	instrument string
	timezone   string
	loc        *time.Location
	catalog    []LevelTemplate
}

type engineOptions struct {
	timezone    string
	baseWeights map[string]float64
}

type Option func(*engineOptions)

// WithTimezone overrides the instrument-default analysis timezone.
func WithTimezone(tz string) Option {
	return func(o *engineOptions) { o.timezone = tz }
}

// WithBaseWeights overrides catalog base weights per level name.
// The weight configuration collaborator validates the sum; the engine
// only renormalizes over the available subset.
func WithBaseWeights(weights map[string]float64) Option {
	return func(o *engineOptions) { o.baseWeights = weights }
}

// NewEngine builds an engine for an instrument. Unknown instruments use
// the US100 catalog and timezone.
func NewEngine(instrument string, opts ...Option) (*Engine, error) {
	o := &engineOptions{}
	for _, opt := range opts {
		opt(o)
	}

	tz := o.timezone
	if tz == "" {
		tz = DefaultTimezone(instrument)
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", tz, err)
	}

	return &Engine{
		instrument: instrument,
		timezone:   tz,
		loc:        loc,
		catalog:    CatalogFor(instrument, o.baseWeights),
	}, nil
}

// Instrument returns the engine's instrument code.
func (e *Engine) Instrument() string { return e.instrument }

// Timezone returns the engine's analysis timezone name.
func (e *Engine) Timezone() string { return e.timezone }

// AnalyzeParams are the optional per-call inputs.
type AnalyzeParams struct {
	// Timestamp overrides the analysis instant. Unparseable values fall
	// back to the last candle's time.
	Timestamp string

	// CachedLevels supplies previously observed prices for levels the
	// current window cannot resolve. Current-window resolution wins.
	CachedLevels map[LevelName]float64
}

// Analyze runs resolver, availability, normalization, depreciation and
// aggregation over the candle history and returns a fresh result.
// Empty histories and empty available sets produce the empty result,
// never an error.
func (e *Engine) Analyze(candles []models.Candle, p AnalyzeParams) *models.PredictionResult {
	if len(candles) == 0 {
		return e.emptyResult(p.Timestamp)
	}

	now := e.analysisTime(candles, p.Timestamp)
	currentPrice := candles[len(candles)-1].Close

	resolved := resolveLevels(candles, now, e.instrument, e.loc)
	for name, price := range p.CachedLevels {
		if _, ok := resolved[name]; !ok {
			resolved[name] = price
		}
	}

	available := e.availableLevels(now, resolved)
	if len(available) == 0 {
		return e.emptyResult(p.Timestamp)
	}

	normalizeWeights(available)
	applyDepreciation(available, currentPrice)
	bias, confidence, bullish, bearish := aggregate(available)

	levels := make([]models.LevelReport, 0, len(available))
	for _, l := range available {
		levels = append(levels, l.report())
	}

	return &models.PredictionResult{
		Metadata: models.PredictionMetadata{
			Instrument:   e.instrument,
			Timezone:     e.timezone,
			Timestamp:    now,
			CurrentPrice: round2(currentPrice),
			DataPoints:   len(candles),
		},
		Analysis: models.PredictionAnalysis{
			Bias:          bias,
			Confidence:    round2(confidence),
			BullishWeight: round4(bullish),
			BearishWeight: round4(bearish),
		},
		Weights: models.WeightUtilization{
			AvailableLevels: len(available),
			TotalLevels:     len(e.catalog),
			Utilization:     round4(float64(len(available)) / float64(len(e.catalog))),
		},
		Levels: levels,
	}
}

// analysisTime picks the analysis instant: the caller timestamp when it
// parses, otherwise the last candle's time, converted to the instrument
// timezone.
func (e *Engine) analysisTime(candles []models.Candle, timestamp string) time.Time {
	if timestamp != "" {
		if t, ok := util.ParseTimeIn(timestamp, e.loc); ok {
			return t.In(e.loc)
		}
	}
	return candles[len(candles)-1].Bucket.In(e.loc)
}

// availableLevels instantiates the per-call level set in catalog order.
// Conditional levels join once the local hour reaches their gating hour.
func (e *Engine) availableLevels(now time.Time, resolved map[LevelName]float64) []*analysisLevel {
	available := make([]*analysisLevel, 0, len(e.catalog))
	for _, tmpl := range e.catalog {
		price, ok := resolved[tmpl.Name]
		if !ok {
			continue
		}
		if tmpl.Availability == Conditional && now.Hour() < tmpl.GatingHour {
			continue
		}
		available = append(available, &analysisLevel{LevelTemplate: tmpl, price: price})
	}
	return available
}

// emptyResult is returned for empty histories and empty available sets.
// Both vote sums are zero, so the tie-break default applies.
func (e *Engine) emptyResult(timestamp string) *models.PredictionResult {
	now := time.Now().In(e.loc)
	if timestamp != "" {
		if t, ok := util.ParseTimeIn(timestamp, e.loc); ok {
			now = t.In(e.loc)
		}
	}
	return &models.PredictionResult{
		Metadata: models.PredictionMetadata{
			Instrument: e.instrument,
			Timezone:   e.timezone,
			Timestamp:  now,
		},
		Analysis: models.PredictionAnalysis{
			Bias: models.DirectionBullish,
		},
		Weights: models.WeightUtilization{
			TotalLevels: len(e.catalog),
		},
		Levels: []models.LevelReport{},
	}
}
