package prediction

import (
	"math"

	"LevelBias/internal/domain/models"
)

// aggregate sums effective weights by direction and derives the bias label
// and confidence. Neutral levels count toward utilization but not the vote.
// Ties, including the all-zero case, resolve to BULLISH.
func aggregate(available []*analysisLevel) (bias models.Direction, confidence, bullish, bearish float64) {
	for _, l := range available {
		switch l.direction {
		case models.DirectionBullish:
			bullish += l.effectiveWeight
		case models.DirectionBearish:
			bearish += l.effectiveWeight
		}
	}

	bias = models.DirectionBullish
	if bearish > bullish {
		bias = models.DirectionBearish
	}

	total := bullish + bearish
	if total > 0 {
		confidence = math.Max(bullish, bearish) / total * 100
	}
	return bias, confidence, bullish, bearish
}

func round2(x float64) float64 { return math.Round(x*100) / 100 }
func round3(x float64) float64 { return math.Round(x*1000) / 1000 }
func round4(x float64) float64 { return math.Round(x*10000) / 10000 }

// report projects one analysed level into its display form.
func (l *analysisLevel) report() models.LevelReport {
	return models.LevelReport{
		Name:             string(l.Name),
		Kind:             l.Availability.String(),
		Price:            round2(l.price),
		Position:         l.position,
		DistancePercent:  round3(l.distancePercent),
		BaseWeight:       round4(l.BaseWeight),
		NormalizedWeight: round4(l.normalizedWeight),
		Depreciation:     round3(l.depreciation),
		EffectiveWeight:  round4(l.effectiveWeight),
		Direction:        l.direction,
	}
}
