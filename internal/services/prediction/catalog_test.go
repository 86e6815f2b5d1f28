package prediction

import (
	"math"
	"testing"
)

func TestCatalogWeightsSumToOne(t *testing.T) {
	// UK100 ships an intentionally short weight set and relies on the
	// runtime renormalization, so only the full catalogs are checked here.
	for _, instrument := range []string{"US100", "ES", "US500"} {
		var sum float64
		for _, tmpl := range CatalogFor(instrument, nil) {
			sum += tmpl.BaseWeight
		}
		if math.Abs(sum-1.0) > 1e-3 {
			t.Fatalf("%s: base weights sum to %v, want 1.0", instrument, sum)
		}
	}
}

func TestCatalogSizes(t *testing.T) {
	if n := len(CatalogFor("US100", nil)); n != 20 {
		t.Fatalf("US100 catalog has %d levels, want 20", n)
	}
	if n := len(CatalogFor("ES", nil)); n != 20 {
		t.Fatalf("ES catalog has %d levels, want 20", n)
	}
	if n := len(CatalogFor("UK100", nil)); n != 15 {
		t.Fatalf("UK100 catalog has %d levels, want 15", n)
	}
}

func TestUnknownInstrumentFallsBackToUS100(t *testing.T) {
	got := CatalogFor("XAUUSD", nil)
	want := CatalogFor("US100", nil)
	if len(got) != len(want) {
		t.Fatalf("unknown instrument catalog size %d, want %d", len(got), len(want))
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("level %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestUK100HasNoOverseasSessionRanges(t *testing.T) {
	excluded := map[LevelName]bool{
		LevelAsianRangeHigh:   true,
		LevelAsianRangeLow:    true,
		LevelNYRangeHigh:      true,
		LevelNYRangeLow:       true,
		LevelChicagoRangeHigh: true,
		LevelChicagoRangeLow:  true,
	}
	for _, tmpl := range CatalogFor("UK100", nil) {
		if excluded[tmpl.Name] {
			t.Fatalf("UK100 catalog unexpectedly contains %s", tmpl.Name)
		}
		if tmpl.Availability != AlwaysAvailable {
			t.Fatalf("UK100 level %s is conditional, want always available", tmpl.Name)
		}
	}
}

func TestCatalogOverridesReplaceBaseWeights(t *testing.T) {
	catalog := CatalogFor("US100", map[string]float64{"daily_midnight": 0.2})
	for _, tmpl := range catalog {
		if tmpl.Name == LevelDailyMidnight && tmpl.BaseWeight != 0.2 {
			t.Fatalf("daily_midnight weight %v, want 0.2", tmpl.BaseWeight)
		}
	}
	// Templates are copied, the shared catalog must be untouched.
	for _, tmpl := range CatalogFor("US100", nil) {
		if tmpl.Name == LevelDailyMidnight && tmpl.BaseWeight != 0.1339 {
			t.Fatalf("shared template mutated: %v", tmpl.BaseWeight)
		}
	}
}

func TestConditionalGatingHours(t *testing.T) {
	hours := map[LevelName]int{}
	for _, tmpl := range CatalogFor("US100", nil) {
		if tmpl.Availability == Conditional {
			hours[tmpl.Name] = tmpl.GatingHour
		}
	}
	want := map[LevelName]int{
		LevelAsianRangeHigh:  0,
		LevelAsianRangeLow:   0,
		LevelLondonRangeHigh: 11,
		LevelLondonRangeLow:  11,
		LevelNYRangeHigh:     14,
		LevelNYRangeLow:      14,
	}
	if len(hours) != len(want) {
		t.Fatalf("US100 has %d conditional levels, want %d", len(hours), len(want))
	}
	for name, h := range want {
		if hours[name] != h {
			t.Fatalf("%s gating hour %d, want %d", name, hours[name], h)
		}
	}
}
