// Package referee decides whether a piece's movement pattern allows it to land
// on a square, given the pieces currently on the board.
//
// The referee only looks at geometry and occupancy. Check, castling, promotion
// and draw rules belong to the caller, as does rejecting a move that lands on
// a piece of the mover's own team or does not move at all. Every function here
// is a pure predicate over an immutable snapshot and is safe for concurrent use.
package referee

import (
	"golang.org/x/exp/constraints"

	"github.com/hailam/chessreferee/internal/board"
)

// IsValidMove reports whether a piece of the given kind and team standing on
// origin may move to dest. Unrecognized kinds and teams and off-board squares
// yield false.
func IsValidMove(origin, dest board.Square, kind board.PieceKind, team board.Team, snap board.Snapshot) bool {
	if !origin.Valid() || !dest.Valid() || !team.Valid() {
		return false
	}

	switch kind {
	case board.Pawn:
		return isValidPawnMove(origin, dest, team, snap)
	case board.Knight:
		return isValidKnightMove(origin, dest)
	case board.Bishop:
		return isValidBishopMove(origin, dest, snap)
	case board.Rook:
		return isValidRookMove(origin, dest, snap)
	case board.Queen:
		return isValidQueenMove(origin, dest, snap)
	case board.King:
		return isValidKingMove(origin, dest)
	default:
		return false
	}
}

// Destinations returns every square the piece may move to, a1 first, rank by
// rank. The origin itself is never included.
func Destinations(origin board.Square, kind board.PieceKind, team board.Team, snap board.Snapshot) []board.Square {
	var out []board.Square
	for _, sq := range board.Squares() {
		if sq == origin {
			continue
		}
		if IsValidMove(origin, sq, kind, team, snap) {
			out = append(out, sq)
		}
	}
	return out
}

func isValidPawnMove(origin, dest board.Square, team board.Team, snap board.Snapshot) bool {
	dir := team.Direction()
	df := dest.File - origin.File
	dr := dest.Rank - origin.Rank

	// Single step forward
	if df == 0 && dr == dir && !IsOccupied(dest, snap) {
		return true
	}

	// Double step from the starting rank, both squares must be empty
	if df == 0 && dr == 2*dir && origin.Rank == team.PawnRank() &&
		!IsOccupied(dest, snap) && !IsOccupied(origin.Offset(0, dir), snap) {
		return true
	}

	if abs(df) != 1 || dr != dir {
		return false
	}

	// Diagonal capture
	if IsOccupiedByOpponent(dest, snap, team) {
		return true
	}

	// En passant
	return !IsOccupied(dest, snap) && IsEnPassantCapture(origin, dest, board.Pawn, team, snap)
}

func isValidKnightMove(origin, dest board.Square) bool {
	df := abs(dest.File - origin.File)
	dr := abs(dest.Rank - origin.Rank)
	return (df == 1 && dr == 2) || (df == 2 && dr == 1)
}

// isValidBishopMove walks the diagonal up to, not including, dest.
func isValidBishopMove(origin, dest board.Square, snap board.Snapshot) bool {
	df := dest.File - origin.File
	dr := dest.Rank - origin.Rank
	if abs(df) != abs(dr) {
		return false
	}

	stepF, stepR := sign(df), sign(dr)
	for i := 1; i < abs(df); i++ {
		if IsOccupied(origin.Offset(i*stepF, i*stepR), snap) {
			return false
		}
	}
	return true
}

// isValidRookMove scans the squares strictly between origin and dest.
func isValidRookMove(origin, dest board.Square, snap board.Snapshot) bool {
	df := dest.File - origin.File
	dr := dest.Rank - origin.Rank

	var steps int
	switch {
	case df != 0 && dr == 0:
		steps = abs(df)
	case df == 0 && dr != 0:
		steps = abs(dr)
	default:
		return false
	}

	stepF, stepR := sign(df), sign(dr)
	for i := 1; i < steps; i++ {
		if IsOccupied(origin.Offset(i*stepF, i*stepR), snap) {
			return false
		}
	}
	return true
}

func isValidQueenMove(origin, dest board.Square, snap board.Snapshot) bool {
	return isValidBishopMove(origin, dest, snap) || isValidRookMove(origin, dest, snap)
}

// isValidKingMove accepts the zero move; callers filter it.
func isValidKingMove(origin, dest board.Square) bool {
	return abs(dest.File-origin.File) <= 1 && abs(dest.Rank-origin.Rank) <= 1
}

func abs[T constraints.Signed](x T) T {
	if x < 0 {
		return -x
	}
	return x
}

func sign[T constraints.Signed](x T) T {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}
