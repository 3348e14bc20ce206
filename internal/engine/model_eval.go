package engine

import (
	dragon "github.com/Bubblyworld/dragontoothmg"

	"github.com/calev/chessmind/internal/feature"
	"github.com/calev/chessmind/internal/model"
)

// ModelEvaluator scores positions with an externally trained classifier.
// The valuation is the probability the classifier assigns to the
// favorable (White wins) class. Unlike the heuristic strategy it does
// not consult or populate the position cache; cache semantics are
// defined for heuristic valuations only.
type ModelEvaluator struct {
	classifier *model.Classifier
}

// NewModelEvaluator loads the classifier artifact at path. A missing or
// unreadable artifact is a configuration error surfaced immediately,
// before any search touches a board.
func NewModelEvaluator(path string) (*ModelEvaluator, error) {
	classifier, err := model.Load(path)
	if err != nil {
		return nil, err
	}
	return &ModelEvaluator{classifier: classifier}, nil
}

// Evaluate builds the feature vector for the board and returns the
// classifier's probability of the favorable class.
func (e *ModelEvaluator) Evaluate(b *dragon.Board) (float64, error) {
	return e.classifier.PredictProba(feature.Vector(b))
}
