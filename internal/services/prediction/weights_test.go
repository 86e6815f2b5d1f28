package prediction

import (
	"math"
	"testing"

	"LevelBias/internal/domain/models"
)

func TestDepreciationCurve(t *testing.T) {
	cases := []struct {
		distance float64
		want     float64
	}{
		{0, 1.0},
		{-1, 1.0},
		{2.5, 0.55},
		{5.0, 0.1},
		{7.3, 0.1},
		{100, 0.1},
	}
	for _, c := range cases {
		if got := depreciate(c.distance); math.Abs(got-c.want) > 1e-9 {
			t.Fatalf("depreciate(%v) = %v, want %v", c.distance, got, c.want)
		}
	}
}

func TestDepreciationBoundsAndMonotonicity(t *testing.T) {
	prev := math.Inf(1)
	for d := 0.0; d <= 10.0; d += 0.05 {
		got := depreciate(d)
		if got < 0.1 || got > 1.0 {
			t.Fatalf("depreciate(%v) = %v out of [0.1, 1.0]", d, got)
		}
		if got > prev {
			t.Fatalf("depreciation increased at distance %v: %v > %v", d, got, prev)
		}
		prev = got
	}
}

func TestClassifyToleranceBand(t *testing.T) {
	// 0.01% of a 100 level is a 0.01 band.
	cases := []struct {
		current  float64
		dir      models.Direction
		position string
	}{
		{100.005, models.DirectionNeutral, "AT"},
		{99.995, models.DirectionNeutral, "AT"},
		{100.02, models.DirectionBullish, "BELOW"},
		{99.98, models.DirectionBearish, "ABOVE"},
	}
	for _, c := range cases {
		dir, pos := classify(c.current, 100)
		if dir != c.dir || pos != c.position {
			t.Fatalf("classify(%v, 100) = %s/%s, want %s/%s", c.current, dir, pos, c.dir, c.position)
		}
	}
}

func TestDistancePct(t *testing.T) {
	if got := distancePct(100, 95); math.Abs(got-5.0) > 1e-9 {
		t.Fatalf("distancePct(100, 95) = %v, want 5", got)
	}
	if got := distancePct(100, 105); math.Abs(got-5.0) > 1e-9 {
		t.Fatalf("distancePct(100, 105) = %v, want 5", got)
	}
	if got := distancePct(0, 100); got != 0 {
		t.Fatalf("distancePct with zero price = %v, want 0", got)
	}
}

func TestNormalizeWeightsSumsToOne(t *testing.T) {
	// Any proper subset of the catalog must renormalize to 1.0.
	catalog := CatalogFor("US100", nil)
	for cut := 1; cut <= len(catalog); cut++ {
		levels := make([]*analysisLevel, 0, cut)
		for _, tmpl := range catalog[:cut] {
			levels = append(levels, &analysisLevel{LevelTemplate: tmpl})
		}
		normalizeWeights(levels)
		var sum float64
		for _, l := range levels {
			sum += l.normalizedWeight
		}
		if math.Abs(sum-1.0) > 1e-4 {
			t.Fatalf("subset of %d levels normalized to %v, want 1.0", cut, sum)
		}
	}
}

func TestAggregateTieResolvesBullish(t *testing.T) {
	levels := []*analysisLevel{
		{effectiveWeight: 0.3, direction: models.DirectionBullish},
		{effectiveWeight: 0.3, direction: models.DirectionBearish},
		{effectiveWeight: 0.4, direction: models.DirectionNeutral},
	}
	bias, confidence, bullish, bearish := aggregate(levels)
	if bias != models.DirectionBullish {
		t.Fatalf("tie bias = %s, want BULLISH", bias)
	}
	if bullish != 0.3 || bearish != 0.3 {
		t.Fatalf("weights = %v/%v, want 0.3/0.3", bullish, bearish)
	}
	if math.Abs(confidence-50) > 1e-9 {
		t.Fatalf("tie confidence = %v, want 50", confidence)
	}
}

func TestAggregateAllNeutral(t *testing.T) {
	levels := []*analysisLevel{
		{effectiveWeight: 0.5, direction: models.DirectionNeutral},
		{effectiveWeight: 0.5, direction: models.DirectionNeutral},
	}
	bias, confidence, bullish, bearish := aggregate(levels)
	if bias != models.DirectionBullish || confidence != 0 || bullish != 0 || bearish != 0 {
		t.Fatalf("all-neutral aggregate = %s/%v/%v/%v, want BULLISH/0/0/0", bias, confidence, bullish, bearish)
	}
}

func TestAggregateVoteSumBounded(t *testing.T) {
	levels := []*analysisLevel{
		{effectiveWeight: 0.4, direction: models.DirectionBullish},
		{effectiveWeight: 0.2, direction: models.DirectionBearish},
		{effectiveWeight: 0.1, direction: models.DirectionNeutral},
	}
	_, _, bullish, bearish := aggregate(levels)
	var total float64
	for _, l := range levels {
		total += l.effectiveWeight
	}
	if bullish+bearish > total {
		t.Fatalf("vote sum %v exceeds effective total %v", bullish+bearish, total)
	}
}
