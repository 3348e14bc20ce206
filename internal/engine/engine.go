// Package engine is the decision core of the chess agent: a hashed
// position cache, two interchangeable evaluation strategies, shallow
// move ordering and a depth-bounded alpha-beta search.
package engine

import (
	"errors"
	"fmt"

	dragon "github.com/Bubblyworld/dragontoothmg"
)

// ErrNoLegalMoves reports that the side to move has no legal moves, i.e.
// the position is checkmate or stalemate. There is nothing to select
// among, so no move is returned.
var ErrNoLegalMoves = errors.New("no legal moves: position is checkmate or stalemate")

// EvalMode selects the evaluation strategy.
type EvalMode int

const (
	EvalHeuristic EvalMode = iota
	EvalModel
)

// String implements fmt.Stringer.
func (m EvalMode) String() string {
	switch m {
	case EvalHeuristic:
		return "heuristic"
	case EvalModel:
		return "model"
	default:
		return fmt.Sprintf("EvalMode(%d)", int(m))
	}
}

// Config configures an Engine.
type Config struct {
	// CachePath is the position cache file. The file not existing yet is
	// fine; it is created on the first persist.
	CachePath string

	// ModelPath locates the classifier artifact. Required when Mode is
	// EvalModel, ignored otherwise.
	ModelPath string

	// Mode selects the leaf evaluation strategy.
	Mode EvalMode
}

// Engine selects moves: it runs the alpha-beta search over each root
// move and keeps the one that is best for the side to move, persisting
// the position cache after every decision.
type Engine struct {
	cache     *PositionCache
	heuristic *HeuristicEvaluator
	searcher  *AlphaBetaSearcher
}

// New creates an engine from the configuration. The position cache is
// loaded from disk (an absent file yields an empty cache); in model mode
// the classifier artifact must load successfully or New fails before any
// search can begin.
func New(cfg Config) (*Engine, error) {
	cache := NewPositionCache(cfg.CachePath)
	if err := cache.Load(); err != nil {
		return nil, err
	}

	heuristic := NewHeuristicEvaluator(DefaultWeights(), cache)
	orderer := NewMoveOrderer(heuristic)

	var eval Evaluator = heuristic
	if cfg.Mode == EvalModel {
		modelEval, err := NewModelEvaluator(cfg.ModelPath)
		if err != nil {
			return nil, fmt.Errorf("model evaluation requested: %w", err)
		}
		eval = modelEval
	}

	return &Engine{
		cache:     cache,
		heuristic: heuristic,
		searcher:  NewAlphaBetaSearcher(eval, orderer),
	}, nil
}

// Cache exposes the engine's position cache.
func (e *Engine) Cache() *PositionCache {
	return e.cache
}

// Nodes returns the node count of the last search.
func (e *Engine) Nodes() uint64 {
	return e.searcher.Nodes()
}

// BestMove searches every root move to the given depth and returns the
// one with the best value from the root mover's perspective: White picks
// the maximum searched value, Black the minimum. The board is borrowed
// for the duration of the call and returned bit-identical. The position
// cache is persisted before returning; persistence errors propagate.
func (e *Engine) BestMove(b *dragon.Board, depth int) (dragon.Move, float64, error) {
	var none dragon.Move
	moves := b.GenerateLegalMoves()
	if len(moves) == 0 {
		return none, 0, ErrNoLegalMoves
	}

	e.searcher.Reset()

	whiteToMove := b.Wtomove
	var best dragon.Move
	var bestValue float64
	for i, move := range moves {
		unapply := b.Apply(move)
		value, err := e.searcher.Search(b, depth-1, AlphaInfinity, BetaInfinity)
		unapply()
		if err != nil {
			return none, 0, err
		}

		better := value > bestValue
		if !whiteToMove {
			better = value < bestValue
		}
		if i == 0 || better {
			best = move
			bestValue = value
		}
	}

	if err := e.cache.Persist(); err != nil {
		return none, 0, err
	}
	return best, bestValue, nil
}
