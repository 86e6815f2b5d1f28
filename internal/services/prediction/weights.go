package prediction

import (
	"math"

	"LevelBias/internal/domain/models"
)

const (
	// directionTolerance is the relative band (fraction of the level price)
	// inside which price and level count as equal.
	directionTolerance = 0.0001

	// depreciationFloor is the minimum relevance multiplier for far levels.
	depreciationFloor = 0.1

	// depreciationSpanPct is the distance at which the floor is reached.
	depreciationSpanPct = 5.0
)

// analysisLevel is the per-call working state for one catalog level.
// Instances live only for the duration of a single Analyze call.
type analysisLevel struct {
	LevelTemplate

	price            float64
	normalizedWeight float64
	depreciation     float64
	effectiveWeight  float64
	distancePercent  float64
	direction        models.Direction
	position         string
}

// normalizeWeights rescales base weights so the available set sums to 1.0.
func normalizeWeights(available []*analysisLevel) {
	var total float64
	for _, l := range available {
		total += l.BaseWeight
	}
	if total == 0 {
		return
	}
	for _, l := range available {
		l.normalizedWeight = l.BaseWeight / total
	}
}

// depreciate maps distance-from-price to a relevance multiplier:
// 1.0 at the level, linear decay to the 0.1 floor at 5% and beyond.
func depreciate(distancePercent float64) float64 {
	switch {
	case distancePercent <= 0:
		return 1.0
	case distancePercent >= depreciationSpanPct:
		return depreciationFloor
	default:
		return 1.0 - (distancePercent/depreciationSpanPct)*0.9
	}
}

// distancePct is the absolute distance from the level as a percentage
// of the current price.
func distancePct(currentPrice, levelPrice float64) float64 {
	if currentPrice == 0 {
		return 0
	}
	return math.Abs((currentPrice-levelPrice)/currentPrice) * 100
}

// classify determines price position relative to a level. The tolerance band
// keeps near-equal floats from flip-flopping between directions.
func classify(currentPrice, levelPrice float64) (models.Direction, string) {
	threshold := math.Abs(levelPrice) * directionTolerance
	switch {
	case currentPrice > levelPrice+threshold:
		return models.DirectionBullish, "BELOW"
	case currentPrice < levelPrice-threshold:
		return models.DirectionBearish, "ABOVE"
	default:
		return models.DirectionNeutral, "AT"
	}
}

// applyDepreciation fills distance, depreciation, effective weight and
// direction for every available level.
func applyDepreciation(available []*analysisLevel, currentPrice float64) {
	for _, l := range available {
		l.distancePercent = distancePct(currentPrice, l.price)
		l.depreciation = depreciate(l.distancePercent)
		l.effectiveWeight = l.normalizedWeight * l.depreciation
		l.direction, l.position = classify(currentPrice, l.price)
	}
}
