// Package feature extracts numeric features from chess positions.
// The rules engine (board representation, legal moves, make/unmake,
// position hashing) is supplied by dragontoothmg; this package only
// reads positions and always leaves the board exactly as it found it.
package feature

import (
	"math/bits"

	dragon "github.com/Bubblyworld/dragontoothmg"
)

// VectorSize is the length of the model feature vector:
// 12 piece counts plus white and black mobility.
const VectorSize = 14

// PieceCounts counts the occurrences of all 12 piece kinds on the board.
// Order is fixed: pawn, knight, bishop, rook, queen, king for White,
// then the same six for Black.
func PieceCounts(b *dragon.Board) [12]int {
	return [12]int{
		bits.OnesCount64(b.White.Pawns),
		bits.OnesCount64(b.White.Knights),
		bits.OnesCount64(b.White.Bishops),
		bits.OnesCount64(b.White.Rooks),
		bits.OnesCount64(b.White.Queens),
		bits.OnesCount64(b.White.Kings),
		bits.OnesCount64(b.Black.Pawns),
		bits.OnesCount64(b.Black.Knights),
		bits.OnesCount64(b.Black.Bishops),
		bits.OnesCount64(b.Black.Rooks),
		bits.OnesCount64(b.Black.Queens),
		bits.OnesCount64(b.Black.Kings),
	}
}

// Mobility returns the legal-move counts for both sides. The side to
// move is counted directly; the opponent is counted after a null move
// (pass) which is undone before returning, so the ply never advances.
func Mobility(b *dragon.Board) (white, black int) {
	mover := len(b.GenerateLegalMoves())
	unapply := b.ApplyNullMove()
	waiter := len(b.GenerateLegalMoves())
	unapply()

	if b.Wtomove {
		return mover, waiter
	}
	return waiter, mover
}

// MobilityConcentration returns both sides' legal-move counts together
// with their move-concentration statistic: the mover's legal moves are
// grouped by origin square and the group sizes are multiplied. The raw
// product is the contract here; it is not a normalized entropy.
func MobilityConcentration(b *dragon.Board) (wMob, bMob int, wConc, bConc float64) {
	moverMoves := b.GenerateLegalMoves()
	moverConc := concentration(moverMoves)

	unapply := b.ApplyNullMove()
	waiterMoves := b.GenerateLegalMoves()
	waiterConc := concentration(waiterMoves)
	unapply()

	if b.Wtomove {
		return len(moverMoves), len(waiterMoves), moverConc, waiterConc
	}
	return len(waiterMoves), len(moverMoves), waiterConc, moverConc
}

// concentration multiplies the sizes of the per-origin-square move groups.
func concentration(moves []dragon.Move) float64 {
	groups := make(map[uint8]int, len(moves))
	for _, m := range moves {
		groups[m.From()]++
	}

	product := 1.0
	for _, count := range groups {
		product *= float64(count)
	}
	return product
}

// PawnAdvancement sums, per side, each pawn's rank distance from its
// starting rank. White pawns start on rank 2, black pawns on rank 7.
func PawnAdvancement(b *dragon.Board) (white, black int) {
	for bb := b.White.Pawns; bb != 0; bb &= bb - 1 {
		sq := bits.TrailingZeros64(bb)
		white += sq/8 - 1
	}
	for bb := b.Black.Pawns; bb != 0; bb &= bb - 1 {
		sq := bits.TrailingZeros64(bb)
		black += 6 - sq/8
	}
	return white, black
}

// Vector builds the model feature vector: the 12 piece counts in the
// fixed order above followed by white and black mobility.
func Vector(b *dragon.Board) []float64 {
	counts := PieceCounts(b)
	wMob, bMob := Mobility(b)

	v := make([]float64, 0, VectorSize)
	for _, c := range counts {
		v = append(v, float64(c))
	}
	v = append(v, float64(wMob), float64(bMob))
	return v
}
