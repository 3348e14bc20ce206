package engine

import (
	"math"

	dragon "github.com/Bubblyworld/dragontoothmg"
)

// Unbounded alpha/beta window for a root search.
var (
	AlphaInfinity = math.Inf(-1)
	BetaInfinity  = math.Inf(1)
)

// AlphaBetaSearcher is a depth-bounded minimax search with fail-soft
// alpha-beta pruning. Leaves are scored by the configured Evaluator;
// interior nodes visit children in MoveOrderer order. The searcher
// borrows the caller's board: every Apply is paired with exactly one
// unapply on every exit path, so the board is bit-identical before and
// after any call.
type AlphaBetaSearcher struct {
	eval    Evaluator
	orderer *MoveOrderer

	nodes uint64
}

// NewAlphaBetaSearcher creates a searcher with the given leaf evaluator
// and move orderer.
func NewAlphaBetaSearcher(eval Evaluator, orderer *MoveOrderer) *AlphaBetaSearcher {
	return &AlphaBetaSearcher{eval: eval, orderer: orderer}
}

// Nodes returns the number of nodes visited since the last Reset.
func (s *AlphaBetaSearcher) Nodes() uint64 {
	return s.nodes
}

// Reset clears the node counter.
func (s *AlphaBetaSearcher) Reset() {
	s.nodes = 0
}

// Search returns the minimax value of the position at the given depth
// within the (alpha, beta) window. White maximizes and Black minimizes;
// a node with no legal moves returns the incoming bound. Pruning only
// reduces the number of visited nodes, never the returned value.
func (s *AlphaBetaSearcher) Search(b *dragon.Board, depth int, alpha, beta float64) (float64, error) {
	s.nodes++

	if depth == 0 {
		return s.eval.Evaluate(b)
	}

	moves, err := s.orderer.Order(b, b.GenerateLegalMoves())
	if err != nil {
		return 0, err
	}

	if b.Wtomove {
		for _, move := range moves {
			unapply := b.Apply(move)
			value, err := s.Search(b, depth-1, alpha, beta)
			unapply()
			if err != nil {
				return 0, err
			}

			if value > alpha {
				alpha = value
			}
			if alpha >= beta {
				return alpha, nil
			}
		}
		return alpha, nil
	}

	for _, move := range moves {
		unapply := b.Apply(move)
		value, err := s.Search(b, depth-1, alpha, beta)
		unapply()
		if err != nil {
			return 0, err
		}

		if value < beta {
			beta = value
		}
		if alpha >= beta {
			return beta, nil
		}
	}
	return beta, nil
}
