// Package game keeps the state the referee deliberately does not own: whose
// turn it is, which pawn may be taken en passant, and what a move captures.
package game

import (
	"errors"
	"fmt"

	"github.com/hailam/chessreferee/internal/board"
	"github.com/hailam/chessreferee/internal/referee"
)

// Move rejection reasons.
var (
	ErrNoPiece     = errors.New("no piece on origin square")
	ErrNotYourTurn = errors.New("not your turn")
	ErrNoMove      = errors.New("piece does not move")
	ErrOwnPiece    = errors.New("destination holds own piece")
	ErrIllegalMove = errors.New("piece cannot move there")
)

// Result describes an applied move.
type Result struct {
	Piece     board.Piece // the piece as it stood before moving
	From, To  board.Square
	Captured  *board.Piece
	EnPassant bool
}

// Game is a mutable game state built on immutable snapshots.
// It is not safe for concurrent use.
type Game struct {
	pos  board.Position
	last *Result
}

// New creates a game at the starting position.
func New() *Game {
	return &Game{pos: board.StartPosition()}
}

// FromPosition creates a game at an arbitrary position.
func FromPosition(pos board.Position) *Game {
	return &Game{pos: pos}
}

// FromFEN creates a game from a FEN string.
func FromFEN(fen string) (*Game, error) {
	pos, err := board.ParseFEN(fen)
	if err != nil {
		return nil, err
	}
	return FromPosition(pos), nil
}

// Position returns the current position. The snapshot inside it is immutable.
func (g *Game) Position() board.Position {
	return g.pos
}

// SideToMove returns the team whose turn it is.
func (g *Game) SideToMove() board.Team {
	return g.pos.SideToMove
}

// LastMove returns the most recently applied move.
func (g *Game) LastMove() (Result, bool) {
	if g.last == nil {
		return Result{}, false
	}
	return *g.last, true
}

// Check returns nil if the move from -> to would be accepted by Move.
func (g *Game) Check(from, to board.Square) error {
	p, ok := g.pos.At(from)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoPiece, from)
	}
	if p.Team != g.pos.SideToMove {
		return fmt.Errorf("%w: %s to move", ErrNotYourTurn, g.pos.SideToMove)
	}
	if from == to {
		return fmt.Errorf("%w: %s", ErrNoMove, from)
	}
	if target, ok := g.pos.At(to); ok && target.Team == p.Team {
		return fmt.Errorf("%w: %s", ErrOwnPiece, target)
	}
	if !referee.IsValidMove(from, to, p.Kind, p.Team, g.pos.Snapshot) {
		return fmt.Errorf("%w: %s %s-%s", ErrIllegalMove, p.Kind, from, to)
	}
	return nil
}

// Destinations returns the squares the piece on from may move to this turn:
// the referee's destinations minus squares held by its own team.
func (g *Game) Destinations(from board.Square) []board.Square {
	p, ok := g.pos.At(from)
	if !ok || p.Team != g.pos.SideToMove {
		return nil
	}
	var out []board.Square
	for _, to := range referee.Destinations(from, p.Kind, p.Team, g.pos.Snapshot) {
		if g.Check(from, to) == nil {
			out = append(out, to)
		}
	}
	return out
}

// Move validates and applies a move.
//
// Flags set on the previous turn are cleared, and a pawn that advances two
// ranks is flagged so the opponent may take it en passant on the next turn.
func (g *Game) Move(from, to board.Square) (Result, error) {
	if err := g.Check(from, to); err != nil {
		return Result{}, err
	}

	mover, _ := g.pos.At(from)
	res := Result{Piece: mover, From: from, To: to}

	captureSq := to
	if target, ok := g.pos.At(to); ok {
		res.Captured = &target
	} else if referee.IsEnPassantCapture(from, to, mover.Kind, mover.Team, g.pos.Snapshot) {
		captureSq = to.Offset(0, -mover.Team.Direction())
		passed, _ := g.pos.At(captureSq)
		res.Captured = &passed
		res.EnPassant = true
	}

	pieces := make([]board.Piece, 0, g.pos.Len())
	for p := range g.pos.All() {
		if p.Position == from {
			continue
		}
		if res.Captured != nil && p.Position == captureSq {
			continue
		}
		p.EnPassant = false
		pieces = append(pieces, p)
	}

	moved := mover
	moved.Position = to
	moved.EnPassant = mover.Kind == board.Pawn && to.Rank-from.Rank == 2*mover.Team.Direction()
	pieces = append(pieces, moved)

	next := g.pos
	next.Snapshot = board.NewSnapshot(pieces...)
	next.SideToMove = mover.Team.Other()
	if mover.Kind == board.Pawn || res.Captured != nil {
		next.HalfMoveClock = 0
	} else {
		next.HalfMoveClock++
	}
	if mover.Team == board.Away {
		next.FullMoveNumber++
	}

	g.pos = next
	g.last = &res
	return res, nil
}

// Reset returns to the starting position.
func (g *Game) Reset() {
	g.pos = board.StartPosition()
	g.last = nil
}
