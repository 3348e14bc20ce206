package model

import (
	"math"
	"path/filepath"
	"testing"
)

func TestPredictProbaBounds(t *testing.T) {
	c := NewClassifier(2, 0.1)

	p, err := c.PredictProba([]float64{100, -100})
	if err != nil {
		t.Fatalf("PredictProba failed: %v", err)
	}
	if p < 0 || p > 1 {
		t.Errorf("probability = %v, want [0, 1]", p)
	}

	// Untrained model is indifferent.
	p, err = c.PredictProba([]float64{0, 0})
	if err != nil {
		t.Fatalf("PredictProba failed: %v", err)
	}
	if math.Abs(p-0.5) > 1e-12 {
		t.Errorf("untrained probability = %v, want 0.5", p)
	}
}

func TestPredictProbaDimensionMismatch(t *testing.T) {
	c := NewClassifier(3, 0.1)
	if _, err := c.PredictProba([]float64{1, 2}); err == nil {
		t.Error("expected dimension mismatch error")
	}
}

func TestPartialFitSeparableData(t *testing.T) {
	c := NewClassifier(2, 0.5)

	inputs := [][]float64{{1, 0}, {0, 1}}
	labels := []int{1, 0}
	for i := 0; i < 200; i++ {
		if err := c.PartialFit(inputs, labels); err != nil {
			t.Fatalf("PartialFit failed: %v", err)
		}
	}

	pPos, err := c.PredictProba([]float64{1, 0})
	if err != nil {
		t.Fatalf("PredictProba failed: %v", err)
	}
	pNeg, err := c.PredictProba([]float64{0, 1})
	if err != nil {
		t.Fatalf("PredictProba failed: %v", err)
	}

	if pPos <= 0.8 {
		t.Errorf("positive-class probability = %v, want > 0.8", pPos)
	}
	if pNeg >= 0.2 {
		t.Errorf("negative-class probability = %v, want < 0.2", pNeg)
	}
	if c.Steps != 400 {
		t.Errorf("Steps = %d, want 400", c.Steps)
	}
}

func TestPartialFitValidation(t *testing.T) {
	c := NewClassifier(2, 0.1)

	if err := c.PartialFit([][]float64{{1, 2}}, []int{1, 0}); err == nil {
		t.Error("expected batch size mismatch error")
	}
	if err := c.PartialFit([][]float64{{1, 2, 3}}, []int{1}); err == nil {
		t.Error("expected dimension mismatch error")
	}
	if err := c.PartialFit([][]float64{{1, 2}}, []int{2}); err == nil {
		t.Error("expected label validation error")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "classifier.model")

	c := NewClassifier(2, 0.5)
	if err := c.PartialFit([][]float64{{1, 0}, {0, 1}}, []int{1, 0}); err != nil {
		t.Fatalf("PartialFit failed: %v", err)
	}
	if err := c.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.Dim() != c.Dim() || loaded.Bias != c.Bias || loaded.Steps != c.Steps {
		t.Errorf("loaded classifier differs: %+v vs %+v", loaded, c)
	}
	for i := range c.Weights {
		if loaded.Weights[i] != c.Weights[i] {
			t.Errorf("weight %d = %v, want %v", i, loaded.Weights[i], c.Weights[i])
		}
	}
}

func TestLoadMissingArtifact(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.model")); err == nil {
		t.Error("expected error for missing artifact")
	}
}
