package referee

import "github.com/hailam/chessreferee/internal/board"

// IsOccupied returns true if any piece stands on sq.
func IsOccupied(sq board.Square, snap board.Snapshot) bool {
	_, ok := snap.At(sq)
	return ok
}

// IsOccupiedByOpponent returns true if a piece of the other team stands on sq.
func IsOccupiedByOpponent(sq board.Square, snap board.Snapshot, team board.Team) bool {
	p, ok := snap.At(sq)
	return ok && p.Team != team
}

// IsEnPassantCapture reports whether a pawn moving from origin to dest would
// capture en passant: a one-file diagonal step forward, with a flagged piece
// on the square directly behind dest.
func IsEnPassantCapture(origin, dest board.Square, kind board.PieceKind, team board.Team, snap board.Snapshot) bool {
	if kind != board.Pawn {
		return false
	}

	dir := team.Direction()
	if abs(dest.File-origin.File) != 1 || dest.Rank-origin.Rank != dir {
		return false
	}

	passed, ok := snap.At(dest.Offset(0, -dir))
	return ok && passed.EnPassant
}
