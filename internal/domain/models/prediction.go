package models

import (
	"fmt"
	"strings"
	"time"
)

// Direction classifies price position relative to a reference level,
// and doubles as the overall bias label.
type Direction string

const (
	DirectionBullish Direction = "BULLISH"
	DirectionBearish Direction = "BEARISH"
	DirectionNeutral Direction = "NEUTRAL"
)

// LevelReport is the per-level projection included in a prediction result.
// Numeric fields are rounded for display: prices 2dp, weights 4dp, distances 3dp.
type LevelReport struct {
	Name             string    `json:"name"`
	Kind             string    `json:"type"`
	Price            float64   `json:"price"`
	Position         string    `json:"position"`
	DistancePercent  float64   `json:"distance_percent"`
	BaseWeight       float64   `json:"base_weight"`
	NormalizedWeight float64   `json:"normalized_weight"`
	Depreciation     float64   `json:"depreciation"`
	EffectiveWeight  float64   `json:"effective_weight"`
	Direction        Direction `json:"direction"`
}

type PredictionMetadata struct {
	Instrument   string    `json:"instrument"`
	Timezone     string    `json:"timezone"`
	Timestamp    time.Time `json:"timestamp"`
	CurrentPrice float64   `json:"current_price"`
	DataPoints   int       `json:"data_points"`
}

type PredictionAnalysis struct {
	Bias          Direction `json:"bias"`
	Confidence    float64   `json:"confidence"`
	BullishWeight float64   `json:"bullish_weight"`
	BearishWeight float64   `json:"bearish_weight"`
}

type WeightUtilization struct {
	AvailableLevels int     `json:"available_levels"`
	TotalLevels     int     `json:"total_levels"`
	Utilization     float64 `json:"utilization"`
}

// PredictionResult is the complete output of one analysis call.
// It is built fresh per call and never mutated after being returned.
type PredictionResult struct {
	Metadata PredictionMetadata `json:"metadata"`
	Analysis PredictionAnalysis `json:"analysis"`
	Weights  WeightUtilization  `json:"weights"`
	Levels   []LevelReport      `json:"levels"`
}

// CSV renders the level list as a CSV document.
func (r *PredictionResult) CSV() string {
	var b strings.Builder
	b.WriteString("name,price,position,distance_percent,effective_weight,direction")
	for _, l := range r.Levels {
		b.WriteString(fmt.Sprintf("\n%s,%g,%s,%g,%g,%s",
			l.Name, l.Price, l.Position, l.DistancePercent, l.EffectiveWeight, l.Direction))
	}
	return b.String()
}

// Summary renders a human-readable analysis summary.
func (r *PredictionResult) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "PREDICTION ANALYSIS - %s\n", r.Metadata.Instrument)
	fmt.Fprintf(&b, "Timestamp: %s\n", r.Metadata.Timestamp.Format(time.RFC3339))
	fmt.Fprintf(&b, "Current Price: $%.2f\n", r.Metadata.CurrentPrice)
	fmt.Fprintf(&b, "Data Points: %d\n", r.Metadata.DataPoints)
	fmt.Fprintf(&b, "Directional Bias: %s\n", r.Analysis.Bias)
	fmt.Fprintf(&b, "Confidence Score: %.2f%%\n", r.Analysis.Confidence)
	fmt.Fprintf(&b, "Bullish Weight: %.4f\n", r.Analysis.BullishWeight)
	fmt.Fprintf(&b, "Bearish Weight: %.4f\n", r.Analysis.BearishWeight)
	fmt.Fprintf(&b, "Available Levels: %d/%d\n", r.Weights.AvailableLevels, r.Weights.TotalLevels)
	fmt.Fprintf(&b, "Utilization Rate: %.2f%%\n", r.Weights.Utilization*100)
	return b.String()
}
