package usecase

import (
	"context"
	"testing"

	"LevelBias/internal/domain/models"
	"LevelBias/internal/services/prediction"
)

type fakeWeightStore struct {
	m map[string]map[string]float64
}

func newFakeWeightStore() *fakeWeightStore {
	return &fakeWeightStore{m: map[string]map[string]float64{}}
}

func (s *fakeWeightStore) Weights(instrument string) (map[string]float64, error) {
	if w, ok := s.m[instrument]; ok {
		return w, nil
	}
	return prediction.DefaultWeights(instrument), nil
}

func (s *fakeWeightStore) SetWeights(instrument string, weights map[string]float64) error {
	s.m[instrument] = weights
	return nil
}

type fakeAudit struct {
	events []*models.WeightChangeEvent
}

func (a *fakeAudit) Publish(_ context.Context, e *models.WeightChangeEvent) error {
	a.events = append(a.events, e)
	return nil
}

func (a *fakeAudit) Close() error { return nil }

func TestWeightsSetAcceptsCatalogShapedMap(t *testing.T) {
	store := newFakeWeightStore()
	audit := &fakeAudit{}
	uc := NewWeightsUseCase(store, audit)

	// Catalog defaults sum close enough to 1.0 to pass validation.
	in := prediction.DefaultWeights("US100")
	view, err := uc.Set(context.Background(), "US100", in, "ops")
	if err != nil {
		t.Fatalf("Set: %v", err)
	}
	if view.Levels != len(in) {
		t.Errorf("view levels = %d, want %d", view.Levels, len(in))
	}
	if len(audit.events) != 1 || audit.events[0].Action != "set" {
		t.Fatalf("audit events = %+v, want one set event", audit.events)
	}
	if audit.events[0].ChangedBy != "ops" {
		t.Errorf("changed_by = %q", audit.events[0].ChangedBy)
	}
}

func TestWeightsSetRejectsBadSum(t *testing.T) {
	store := newFakeWeightStore()
	audit := &fakeAudit{}
	uc := NewWeightsUseCase(store, audit)

	in := prediction.DefaultWeights("US100")
	in["daily_midnight"] += 0.05

	if _, err := uc.Set(context.Background(), "US100", in, ""); err == nil {
		t.Fatal("expected sum validation error")
	}
	if len(store.m) != 0 {
		t.Error("rejected set must not persist")
	}
	if len(audit.events) != 0 {
		t.Error("rejected set must not publish audit")
	}
}

func TestWeightsSetRejectsUnknownLevel(t *testing.T) {
	uc := NewWeightsUseCase(newFakeWeightStore(), nil)

	in := prediction.DefaultWeights("US100")
	delete(in, "daily_midnight")
	in["made_up_level"] = 0.0425

	if _, err := uc.Set(context.Background(), "US100", in, ""); err == nil {
		t.Fatal("expected unknown level error")
	}
}

func TestWeightsSetRejectsIncompleteMap(t *testing.T) {
	uc := NewWeightsUseCase(newFakeWeightStore(), nil)

	if _, err := uc.Set(context.Background(), "US100", map[string]float64{"daily_midnight": 1.0}, ""); err == nil {
		t.Fatal("expected incomplete map error")
	}
}

func TestWeightsResetBypassesSumValidation(t *testing.T) {
	store := newFakeWeightStore()
	audit := &fakeAudit{}
	uc := NewWeightsUseCase(store, audit)

	// UK100 catalog weights deliberately sum well below 1.0; the engine
	// renormalizes at analysis time. Reset must still restore them.
	view, err := uc.Reset(context.Background(), "UK100", "ops")
	if err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if view.Sum > 0.999 && view.Sum < 1.001 {
		t.Errorf("UK100 defaults unexpectedly sum to ~1.0: %v", view.Sum)
	}
	if len(audit.events) != 1 || audit.events[0].Action != "reset" {
		t.Fatalf("audit events = %+v, want one reset event", audit.events)
	}

	got, _ := store.Weights("UK100")
	want := prediction.DefaultWeights("UK100")
	if len(got) != len(want) {
		t.Errorf("stored %d levels, want %d", len(got), len(want))
	}
}

func TestWeightsGetFallsBackToDefaults(t *testing.T) {
	uc := NewWeightsUseCase(newFakeWeightStore(), nil)

	view, err := uc.Get(context.Background(), "ES")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if view.Levels != len(prediction.DefaultWeights("ES")) {
		t.Errorf("ES view levels = %d", view.Levels)
	}
	if view.Instrument != "ES" {
		t.Errorf("instrument = %q", view.Instrument)
	}
}
