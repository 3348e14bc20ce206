// Package model implements the classifier artifact consumed by the
// model evaluation strategy: a logistic-regression model fitted
// incrementally with stochastic gradient descent, serialized to a single
// file. The training pipeline writes it; the engine only reads it.
package model

import (
	"encoding/gob"
	"fmt"
	"math"
	"os"

	"gonum.org/v1/gonum/floats"
)

// DefaultLearningRate is the SGD step size used when none is given.
const DefaultLearningRate = 0.01

// Classifier is a binary logistic-regression classifier. The favorable
// class is 1; PredictProba returns its probability.
type Classifier struct {
	Weights      []float64
	Bias         float64
	LearningRate float64
	Steps        uint64
}

// NewClassifier creates an untrained classifier for feature vectors of
// the given dimension.
func NewClassifier(dim int, learningRate float64) *Classifier {
	if learningRate <= 0 {
		learningRate = DefaultLearningRate
	}
	return &Classifier{
		Weights:      make([]float64, dim),
		LearningRate: learningRate,
	}
}

// Dim returns the expected feature vector length.
func (c *Classifier) Dim() int {
	return len(c.Weights)
}

// PartialFit runs one SGD pass over a mini-batch. Labels must be 0 or 1.
func (c *Classifier) PartialFit(inputs [][]float64, labels []int) error {
	if len(inputs) != len(labels) {
		return fmt.Errorf("batch size mismatch: %d inputs, %d labels", len(inputs), len(labels))
	}

	for i, x := range inputs {
		if len(x) != len(c.Weights) {
			return fmt.Errorf("feature vector %d has dimension %d, want %d", i, len(x), len(c.Weights))
		}
		if labels[i] != 0 && labels[i] != 1 {
			return fmt.Errorf("label %d is %d, want 0 or 1", i, labels[i])
		}

		// Log-loss gradient: (p - y) * x
		p := sigmoid(floats.Dot(c.Weights, x) + c.Bias)
		grad := p - float64(labels[i])

		floats.AddScaled(c.Weights, -c.LearningRate*grad, x)
		c.Bias -= c.LearningRate * grad
		c.Steps++
	}
	return nil
}

// PredictProba returns the probability of the favorable class for a
// single feature vector.
func (c *Classifier) PredictProba(x []float64) (float64, error) {
	if len(x) != len(c.Weights) {
		return 0, fmt.Errorf("feature vector has dimension %d, want %d", len(x), len(c.Weights))
	}
	return sigmoid(floats.Dot(c.Weights, x) + c.Bias), nil
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

// Save serializes the classifier. Like the position cache, the artifact
// is written to a temporary file and renamed into place so a crash never
// leaves a torn model behind.
func (c *Classifier) Save(path string) error {
	tmp := path + ".tmp"

	file, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create model artifact %s: %w", tmp, err)
	}

	if err := gob.NewEncoder(file).Encode(c); err != nil {
		file.Close()
		os.Remove(tmp)
		return fmt.Errorf("failed to encode model artifact %s: %w", tmp, err)
	}
	if err := file.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to close model artifact %s: %w", tmp, err)
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace model artifact %s: %w", path, err)
	}
	return nil
}

// Load reads a classifier artifact. Unlike the position cache, a missing
// artifact is an error: callers ask for model-based evaluation
// explicitly, and silently degrading would only fail later and further
// from the cause.
func Load(path string) (*Classifier, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open model artifact %s: %w", path, err)
	}
	defer file.Close()

	var c Classifier
	if err := gob.NewDecoder(file).Decode(&c); err != nil {
		return nil, fmt.Errorf("failed to decode model artifact %s: %w", path, err)
	}
	if len(c.Weights) == 0 {
		return nil, fmt.Errorf("model artifact %s has no weights", path)
	}
	return &c, nil
}
