package engine

import (
	"sort"

	dragon "github.com/Bubblyworld/dragontoothmg"
)

// MoveOrderer orders legal moves by a shallow one-ply valuation so that
// the search visits the most promising moves first. Ordering is purely a
// pruning accelerator: it never changes the minimax value of a node.
type MoveOrderer struct {
	eval *HeuristicEvaluator
}

// NewMoveOrderer creates a move orderer using the given heuristic
// evaluator for its one-ply scores.
func NewMoveOrderer(eval *HeuristicEvaluator) *MoveOrderer {
	return &MoveOrderer{eval: eval}
}

// Order returns the moves sorted by the valuation of the position each
// one leads to: descending when White is to move (the maximizer wants
// high valuations first), ascending for Black. Every move is applied and
// undone on the spot, so the board comes back unchanged.
func (mo *MoveOrderer) Order(b *dragon.Board, moves []dragon.Move) ([]dragon.Move, error) {
	type scoredMove struct {
		move  dragon.Move
		score float64
	}

	scored := make([]scoredMove, 0, len(moves))
	for _, move := range moves {
		unapply := b.Apply(move)
		score, err := mo.eval.Evaluate(b)
		unapply()
		if err != nil {
			return nil, err
		}
		scored = append(scored, scoredMove{move: move, score: score})
	}

	whiteToMove := b.Wtomove
	sort.SliceStable(scored, func(i, j int) bool {
		if whiteToMove {
			return scored[i].score > scored[j].score
		}
		return scored[i].score < scored[j].score
	})

	ordered := make([]dragon.Move, len(scored))
	for i, sm := range scored {
		ordered[i] = sm.move
	}
	return ordered, nil
}
