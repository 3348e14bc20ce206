package engine

import (
	dragon "github.com/Bubblyworld/dragontoothmg"

	"github.com/calev/chessmind/internal/feature"
)

// blackScale derives the black-side material weights from the white-side
// ones. It is deliberately not -1: black material is discounted slightly,
// and this asymmetry is part of the evaluation contract.
const blackScale = -0.97

// whiteMaterial holds the white material weights in the fixed piece
// order: pawn, knight, bishop, rook, queen, king.
var whiteMaterial = [6]float64{1, 3, 3.3, 4.2, 9, 15}

// Weights is the immutable configuration of the heuristic evaluation.
type Weights struct {
	// Material values for the 12 piece kinds, white then black, in the
	// same fixed order as feature.PieceCounts.
	Material [12]float64

	Mobility    float64
	PawnAdvance float64
	Entropy     float64
}

// DefaultWeights returns the standard evaluation weights. Black material
// values are the white values scaled by blackScale.
func DefaultWeights() Weights {
	w := Weights{
		Mobility:    0.1,
		PawnAdvance: 0.05,
		Entropy:     0.25,
	}
	for i, v := range whiteMaterial {
		w.Material[i] = v
		w.Material[i+6] = blackScale * v
	}
	return w
}

// Evaluator scores a board from White's perspective: positive favors
// White, negative favors Black.
type Evaluator interface {
	Evaluate(b *dragon.Board) (float64, error)
}

// HeuristicEvaluator is the closed-form evaluation strategy: weighted
// material, mobility scaled by move concentration, and pawn advancement.
// Valuations are memoized in a PositionCache keyed by the canonical
// position hash.
type HeuristicEvaluator struct {
	weights Weights
	cache   *PositionCache

	// computations counts evaluations that were actually computed
	// rather than answered from the cache.
	computations uint64
}

// NewHeuristicEvaluator creates a heuristic evaluator backed by cache.
func NewHeuristicEvaluator(weights Weights, cache *PositionCache) *HeuristicEvaluator {
	return &HeuristicEvaluator{weights: weights, cache: cache}
}

// Weights returns the evaluator's weight configuration.
func (e *HeuristicEvaluator) Weights() Weights {
	return e.weights
}

// Computations returns how many valuations were computed from scratch.
func (e *HeuristicEvaluator) Computations() uint64 {
	return e.computations
}

// Evaluate scores the board. The position cache is consulted first; on a
// miss the valuation is computed, inserted and returned. The board is
// left untouched (the mobility probe nulls the move and undoes it).
func (e *HeuristicEvaluator) Evaluate(b *dragon.Board) (float64, error) {
	key := b.Hash()
	if value, ok := e.cache.Lookup(key); ok {
		return value, nil
	}

	e.computations++

	valuation := 0.0
	counts := feature.PieceCounts(b)
	for i, count := range counts {
		valuation += float64(count) * e.weights.Material[i]
	}

	wMob, bMob, wConc, bConc := feature.MobilityConcentration(b)
	valuation += e.weights.Mobility * (float64(wMob)*wConc - float64(bMob)*bConc)

	wAdv, bAdv := feature.PawnAdvancement(b)
	valuation += e.weights.PawnAdvance * float64(wAdv-bAdv)

	if err := e.cache.Insert(key, valuation); err != nil {
		return 0, err
	}
	return valuation, nil
}
