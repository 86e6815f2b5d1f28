package repository

import (
	"os"
	"path/filepath"
	"testing"

	"LevelBias/internal/services/prediction"
)

func TestFileWeightStoreDefaultsWhenEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weights.yaml")
	s, err := NewFileWeightStore(path)
	if err != nil {
		t.Fatalf("NewFileWeightStore: %v", err)
	}

	got, err := s.Weights("US100")
	if err != nil {
		t.Fatalf("Weights: %v", err)
	}
	want := prediction.DefaultWeights("US100")
	if len(got) != len(want) {
		t.Fatalf("default weights: got %d levels, want %d", len(got), len(want))
	}
	for name, w := range want {
		if got[name] != w {
			t.Errorf("level %s: got %v, want %v", name, got[name], w)
		}
	}
}

func TestFileWeightStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weights.yaml")
	s, err := NewFileWeightStore(path)
	if err != nil {
		t.Fatalf("NewFileWeightStore: %v", err)
	}

	in := map[string]float64{"daily_midnight": 0.5, "weekly_high": 0.5}
	if err := s.SetWeights("US100", in); err != nil {
		t.Fatalf("SetWeights: %v", err)
	}

	// Reload from disk through a fresh store.
	s2, err := NewFileWeightStore(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	got, err := s2.Weights("US100")
	if err != nil {
		t.Fatalf("Weights after reload: %v", err)
	}
	if got["daily_midnight"] != 0.5 || got["weekly_high"] != 0.5 || len(got) != 2 {
		t.Errorf("reloaded weights = %v, want %v", got, in)
	}

	// Other instruments still fall back to catalog defaults.
	uk, err := s2.Weights("UK100")
	if err != nil {
		t.Fatalf("Weights UK100: %v", err)
	}
	if len(uk) != len(prediction.DefaultWeights("UK100")) {
		t.Errorf("UK100 should keep catalog defaults, got %d levels", len(uk))
	}
}

func TestFileWeightStoreReturnsCopies(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weights.yaml")
	s, err := NewFileWeightStore(path)
	if err != nil {
		t.Fatalf("NewFileWeightStore: %v", err)
	}

	in := map[string]float64{"daily_midnight": 1.0}
	if err := s.SetWeights("US100", in); err != nil {
		t.Fatalf("SetWeights: %v", err)
	}
	in["daily_midnight"] = 99 // must not leak into the store

	got, _ := s.Weights("US100")
	if got["daily_midnight"] != 1.0 {
		t.Errorf("store shares caller map: got %v", got["daily_midnight"])
	}
	got["daily_midnight"] = 42
	again, _ := s.Weights("US100")
	if again["daily_midnight"] != 1.0 {
		t.Errorf("store shares returned map: got %v", again["daily_midnight"])
	}
}

func TestFileWeightStoreBadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weights.yaml")
	if err := os.WriteFile(path, []byte("{not yaml: ["), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewFileWeightStore(path); err == nil {
		t.Fatal("expected parse error for malformed weight file")
	}
}
