package engine

import (
	"math"
	"testing"

	dragon "github.com/Bubblyworld/dragontoothmg"
)

// plainMinimax is an exhaustive reference traversal with no pruning and
// no move ordering. The searcher must return exactly its value.
func plainMinimax(t *testing.T, eval Evaluator, b *dragon.Board, depth int) float64 {
	t.Helper()

	if depth == 0 {
		value, err := eval.Evaluate(b)
		if err != nil {
			t.Fatalf("Evaluate failed: %v", err)
		}
		return value
	}

	moves := b.GenerateLegalMoves()
	if b.Wtomove {
		best := AlphaInfinity
		for _, move := range moves {
			unapply := b.Apply(move)
			value := plainMinimax(t, eval, b, depth-1)
			unapply()
			if value > best {
				best = value
			}
		}
		return best
	}

	best := BetaInfinity
	for _, move := range moves {
		unapply := b.Apply(move)
		value := plainMinimax(t, eval, b, depth-1)
		unapply()
		if value < best {
			best = value
		}
	}
	return best
}

func TestSearchPruningEquivalence(t *testing.T) {
	fens := []string{
		dragon.Startpos,
		"r1bqkbnr/pppp1ppp/2n5/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R w KQkq - 2 3",
		"rnbqkbnr/pppp1ppp/8/4p3/4P3/8/PPPP1PPP/RNBQKBNR b KQkq - 0 2",
	}

	for _, fen := range fens {
		t.Run(fen, func(t *testing.T) {
			eval := newTestHeuristic(t)
			searcher := NewAlphaBetaSearcher(eval, NewMoveOrderer(eval))

			board := dragon.ParseFen(fen)
			pruned, err := searcher.Search(&board, 2, AlphaInfinity, BetaInfinity)
			if err != nil {
				t.Fatalf("Search failed: %v", err)
			}

			reference := dragon.ParseFen(fen)
			exhaustive := plainMinimax(t, eval, &reference, 2)

			if pruned != exhaustive {
				t.Errorf("pruned value %v differs from exhaustive minimax %v", pruned, exhaustive)
			}
		})
	}
}

func TestSearchNoLegalMovesReturnsBound(t *testing.T) {
	// A side to move with no legal moves terminates the line at the
	// incoming bound: a mated White folds to alpha, a stalemated Black
	// to beta.
	tests := []struct {
		name     string
		fen      string
		infinity float64
	}{
		{"white checkmated", "rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 1 3", AlphaInfinity},
		{"black stalemated", "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1", BetaInfinity},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			eval := newTestHeuristic(t)
			searcher := NewAlphaBetaSearcher(eval, NewMoveOrderer(eval))

			board := dragon.ParseFen(tc.fen)
			value, err := searcher.Search(&board, 2, AlphaInfinity, BetaInfinity)
			if err != nil {
				t.Fatalf("Search failed: %v", err)
			}
			if value != tc.infinity {
				t.Errorf("terminal search value = %v, want %v", value, tc.infinity)
			}
		})
	}
}

func TestSearchMateInOne(t *testing.T) {
	// Re8 is mate: the reply node has no legal moves, so the mating
	// line scores the full +Inf bound for White at the root.
	eval := newTestHeuristic(t)
	searcher := NewAlphaBetaSearcher(eval, NewMoveOrderer(eval))

	board := dragon.ParseFen("6k1/5ppp/8/8/8/8/8/4R2K w - - 0 1")
	value, err := searcher.Search(&board, 2, AlphaInfinity, BetaInfinity)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if !math.IsInf(value, 1) {
		t.Errorf("mate-in-1 search value = %v, want +Inf", value)
	}
}

func TestSearchRestoresBoard(t *testing.T) {
	eval := newTestHeuristic(t)
	searcher := NewAlphaBetaSearcher(eval, NewMoveOrderer(eval))

	board := dragon.ParseFen("r1bqkbnr/pppp1ppp/2n5/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R w KQkq - 2 3")
	beforeHash := board.Hash()
	beforeFEN := board.ToFen()

	if _, err := searcher.Search(&board, 3, AlphaInfinity, BetaInfinity); err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	if board.Hash() != beforeHash {
		t.Errorf("hash changed: %016x -> %016x", beforeHash, board.Hash())
	}
	if board.ToFen() != beforeFEN {
		t.Errorf("FEN changed: %q -> %q", beforeFEN, board.ToFen())
	}
}

func TestSearchDepthZeroIsLeafEvaluation(t *testing.T) {
	eval := newTestHeuristic(t)
	searcher := NewAlphaBetaSearcher(eval, NewMoveOrderer(eval))

	board := dragon.ParseFen(dragon.Startpos)
	searched, err := searcher.Search(&board, 0, AlphaInfinity, BetaInfinity)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	direct, err := eval.Evaluate(&board)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if searched != direct {
		t.Errorf("depth-0 search = %v, want leaf evaluation %v", searched, direct)
	}
}

func TestSearchCountsNodes(t *testing.T) {
	eval := newTestHeuristic(t)
	searcher := NewAlphaBetaSearcher(eval, NewMoveOrderer(eval))

	board := dragon.ParseFen(dragon.Startpos)
	if _, err := searcher.Search(&board, 2, AlphaInfinity, BetaInfinity); err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if searcher.Nodes() == 0 {
		t.Error("node counter did not advance")
	}

	searcher.Reset()
	if searcher.Nodes() != 0 {
		t.Errorf("Nodes after Reset = %d, want 0", searcher.Nodes())
	}
}
