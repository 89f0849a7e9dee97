package referee

import (
	"sync"
	"testing"

	"github.com/hailam/chessreferee/internal/board"
)

func sq(file, rank int) board.Square {
	return board.NewSquare(file, rank)
}

func piece(kind board.PieceKind, team board.Team, file, rank int) board.Piece {
	return board.NewPiece(kind, team, sq(file, rank))
}

func TestOccupancy(t *testing.T) {
	snap := board.NewSnapshot(
		piece(board.Rook, board.Home, 0, 0),
		piece(board.Pawn, board.Away, 4, 6),
	)

	if !IsOccupied(sq(0, 0), snap) || !IsOccupied(sq(4, 6), snap) {
		t.Error("occupied squares reported empty")
	}
	if IsOccupied(sq(4, 4), snap) {
		t.Error("empty square reported occupied")
	}
	if !IsOccupiedByOpponent(sq(4, 6), snap, board.Home) {
		t.Error("away pawn should be an opponent of home")
	}
	if IsOccupiedByOpponent(sq(0, 0), snap, board.Home) {
		t.Error("own rook reported as opponent")
	}
	if IsOccupiedByOpponent(sq(4, 4), snap, board.Home) {
		t.Error("empty square reported as opponent")
	}
}

func TestIsEnPassantCapture(t *testing.T) {
	flagged := board.Piece{Position: sq(3, 3), Kind: board.Pawn, Team: board.Away, EnPassant: true}
	snap := board.NewSnapshot(flagged, piece(board.Pawn, board.Home, 4, 3))

	tests := []struct {
		name   string
		origin board.Square
		dest   board.Square
		kind   board.PieceKind
		team   board.Team
		want   bool
	}{
		{"capture left", sq(4, 3), sq(3, 4), board.Pawn, board.Home, true},
		{"not a pawn", sq(4, 3), sq(3, 4), board.Bishop, board.Home, false},
		{"wrong direction", sq(4, 3), sq(3, 2), board.Pawn, board.Home, false},
		{"straight ahead", sq(3, 2), sq(3, 3), board.Pawn, board.Home, false},
		{"no flagged piece behind", sq(4, 3), sq(5, 4), board.Pawn, board.Home, false},
		{"two files over", sq(5, 3), sq(3, 4), board.Pawn, board.Home, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsEnPassantCapture(tt.origin, tt.dest, tt.kind, tt.team, snap)
			if got != tt.want {
				t.Errorf("IsEnPassantCapture(%s, %s) = %v, want %v", tt.origin, tt.dest, got, tt.want)
			}
		})
	}
}

func TestPawnMoves(t *testing.T) {
	t.Run("StepAndDoubleStep", func(t *testing.T) {
		var empty board.Snapshot
		if !IsValidMove(sq(4, 1), sq(4, 2), board.Pawn, board.Home, empty) {
			t.Error("e2-e3 should be valid on an empty board")
		}
		if !IsValidMove(sq(4, 1), sq(4, 3), board.Pawn, board.Home, empty) {
			t.Error("e2-e4 should be valid on an empty board")
		}
		if IsValidMove(sq(4, 1), sq(4, 4), board.Pawn, board.Home, empty) {
			t.Error("e2-e5 should be invalid")
		}
		if IsValidMove(sq(4, 1), sq(4, 0), board.Pawn, board.Home, empty) {
			t.Error("home pawn must not move backwards")
		}
		if !IsValidMove(sq(4, 6), sq(4, 4), board.Pawn, board.Away, empty) {
			t.Error("e7-e5 should be valid for away")
		}
		if IsValidMove(sq(4, 2), sq(4, 4), board.Pawn, board.Home, empty) {
			t.Error("double step is only allowed from the starting rank")
		}
	})

	t.Run("BlockedDoubleStep", func(t *testing.T) {
		for _, team := range []board.Team{board.Home, board.Away} {
			snap := board.NewSnapshot(piece(board.Knight, team, 4, 2))
			if IsValidMove(sq(4, 1), sq(4, 3), board.Pawn, board.Home, snap) {
				t.Errorf("e2-e4 through a %s piece on e3 should be invalid", team)
			}
		}
		snap := board.NewSnapshot(piece(board.Knight, board.Away, 4, 3))
		if IsValidMove(sq(4, 1), sq(4, 3), board.Pawn, board.Home, snap) {
			t.Error("e2-e4 onto an occupied square should be invalid")
		}
	})

	t.Run("NoForwardCapture", func(t *testing.T) {
		snap := board.NewSnapshot(piece(board.Pawn, board.Away, 4, 4))
		if IsValidMove(sq(4, 3), sq(4, 4), board.Pawn, board.Home, snap) {
			t.Error("pawns cannot capture straight ahead")
		}
	})

	t.Run("DiagonalCapture", func(t *testing.T) {
		opp := board.NewSnapshot(piece(board.Pawn, board.Away, 5, 5))
		if !IsValidMove(sq(4, 4), sq(5, 5), board.Pawn, board.Home, opp) {
			t.Error("capture of opponent on f6 should be valid")
		}
		own := board.NewSnapshot(piece(board.Pawn, board.Home, 5, 5))
		if IsValidMove(sq(4, 4), sq(5, 5), board.Pawn, board.Home, own) {
			t.Error("capture of own piece should be invalid")
		}
		var empty board.Snapshot
		if IsValidMove(sq(4, 4), sq(5, 5), board.Pawn, board.Home, empty) {
			t.Error("diagonal step onto an empty square should be invalid")
		}
	})

	t.Run("EnPassant", func(t *testing.T) {
		passed := board.Piece{Position: sq(3, 3), Kind: board.Pawn, Team: board.Away, EnPassant: true}
		snap := board.NewSnapshot(passed, piece(board.Pawn, board.Home, 4, 3))
		if !IsValidMove(sq(4, 3), sq(3, 4), board.Pawn, board.Home, snap) {
			t.Error("en passant capture should be valid")
		}

		passed.EnPassant = false
		snap = board.NewSnapshot(passed, piece(board.Pawn, board.Home, 4, 3))
		if IsValidMove(sq(4, 3), sq(3, 4), board.Pawn, board.Home, snap) {
			t.Error("capture without the flag should be invalid")
		}

		awayPassed := board.Piece{Position: sq(2, 4), Kind: board.Pawn, Team: board.Home, EnPassant: true}
		snap = board.NewSnapshot(awayPassed, piece(board.Pawn, board.Away, 1, 4))
		if !IsValidMove(sq(1, 4), sq(2, 3), board.Pawn, board.Away, snap) {
			t.Error("away en passant capture should be valid")
		}
	})
}

func TestBishopMoves(t *testing.T) {
	var empty board.Snapshot
	if !IsValidMove(sq(2, 2), sq(5, 5), board.Bishop, board.Home, empty) {
		t.Error("c3-f6 should be valid on an empty board")
	}
	if !IsValidMove(sq(5, 5), sq(2, 2), board.Bishop, board.Home, empty) {
		t.Error("f6-c3 should be valid on an empty board")
	}
	if !IsValidMove(sq(2, 2), sq(0, 4), board.Bishop, board.Home, empty) {
		t.Error("c3-a5 should be valid on an empty board")
	}
	if IsValidMove(sq(2, 2), sq(2, 5), board.Bishop, board.Home, empty) {
		t.Error("bishop cannot move vertically")
	}

	blocked := board.NewSnapshot(piece(board.Pawn, board.Home, 4, 4))
	if IsValidMove(sq(2, 2), sq(5, 5), board.Bishop, board.Home, blocked) {
		t.Error("c3-f6 through e5 should be blocked")
	}

	for _, team := range []board.Team{board.Home, board.Away} {
		onDest := board.NewSnapshot(piece(board.Pawn, team, 5, 5))
		if !IsValidMove(sq(2, 2), sq(5, 5), board.Bishop, board.Home, onDest) {
			t.Errorf("destination occupancy (%s) is not the bishop rule's concern", team)
		}
	}

	if !IsValidMove(sq(2, 2), sq(2, 2), board.Bishop, board.Home, empty) {
		t.Error("the zero move is accepted by the bishop rule")
	}
}

func TestRookMoves(t *testing.T) {
	var empty board.Snapshot
	if !IsValidMove(sq(0, 0), sq(0, 7), board.Rook, board.Home, empty) {
		t.Error("a1-a8 should be valid on an empty board")
	}
	if !IsValidMove(sq(7, 3), sq(0, 3), board.Rook, board.Home, empty) {
		t.Error("h4-a4 should be valid on an empty board")
	}
	if IsValidMove(sq(0, 0), sq(1, 1), board.Rook, board.Home, empty) {
		t.Error("rook cannot move diagonally")
	}
	if IsValidMove(sq(0, 0), sq(0, 0), board.Rook, board.Home, empty) {
		t.Error("the rook rule rejects the zero move")
	}

	for k := 1; k < 7; k++ {
		snap := board.NewSnapshot(piece(board.Pawn, board.Away, 0, k))
		if IsValidMove(sq(0, 0), sq(0, 7), board.Rook, board.Home, snap) {
			t.Errorf("a1-a8 should be blocked by a piece on rank %d", k+1)
		}
	}

	// Pieces off the line do not block.
	snap := board.NewSnapshot(piece(board.Pawn, board.Away, 1, 3), piece(board.Pawn, board.Home, 0, 7))
	if !IsValidMove(sq(0, 0), sq(0, 7), board.Rook, board.Home, snap) {
		t.Error("a1-a8 should be valid with only the destination and b4 occupied")
	}

	row := board.NewSnapshot(piece(board.Knight, board.Home, 3, 3))
	if IsValidMove(sq(7, 3), sq(0, 3), board.Rook, board.Home, row) {
		t.Error("h4-a4 should be blocked by d4")
	}
}

func TestQueenMoves(t *testing.T) {
	snap := board.NewSnapshot(piece(board.Pawn, board.Away, 4, 4), piece(board.Pawn, board.Away, 3, 5))

	tests := []struct {
		dest board.Square
		want bool
	}{
		{sq(5, 5), false}, // through e5
		{sq(3, 7), false}, // through d6
		{sq(3, 5), true},  // onto d6
		{sq(7, 3), true},  // along the rank
		{sq(0, 0), true},  // back down the diagonal
		{sq(5, 4), false}, // knight jump
	}

	for _, tt := range tests {
		got := IsValidMove(sq(3, 3), tt.dest, board.Queen, board.Home, snap)
		if got != tt.want {
			t.Errorf("queen d4-%s = %v, want %v", tt.dest, got, tt.want)
		}
	}
}

func TestKnightMoves(t *testing.T) {
	// Every square around the knight is occupied, jumps still count.
	var pieces []board.Piece
	for _, s := range board.Squares() {
		if s != sq(1, 1) && s != sq(3, 2) {
			pieces = append(pieces, board.NewPiece(board.Pawn, board.Away, s))
		}
	}
	full := board.NewSnapshot(pieces...)

	if !IsValidMove(sq(1, 1), sq(3, 2), board.Knight, board.Home, full) {
		t.Error("b2-d3 should be valid regardless of occupancy")
	}
	var empty board.Snapshot
	if !IsValidMove(sq(1, 1), sq(3, 2), board.Knight, board.Home, empty) {
		t.Error("b2-d3 should be valid on an empty board")
	}
	if IsValidMove(sq(1, 1), sq(3, 3), board.Knight, board.Home, empty) {
		t.Error("b2-d4 is not a knight move")
	}

	got := Destinations(sq(0, 0), board.Knight, board.Home, empty)
	want := []board.Square{sq(2, 1), sq(1, 2)}
	if len(got) != len(want) {
		t.Fatalf("knight destinations from a1 = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("knight destinations from a1 = %v, want %v", got, want)
		}
	}
}

func TestKingMoves(t *testing.T) {
	var empty board.Snapshot
	if !IsValidMove(sq(4, 4), sq(5, 5), board.King, board.Home, empty) {
		t.Error("e5-f6 should be valid")
	}
	if IsValidMove(sq(4, 4), sq(6, 6), board.King, board.Home, empty) {
		t.Error("e5-g7 should be invalid")
	}
	if !IsValidMove(sq(4, 4), sq(4, 4), board.King, board.Home, empty) {
		t.Error("the zero move is accepted by the king rule")
	}
	if n := len(Destinations(sq(4, 4), board.King, board.Home, empty)); n != 8 {
		t.Errorf("king on e5 has %d destinations, want 8", n)
	}
}

func TestMalformedInput(t *testing.T) {
	var empty board.Snapshot
	if IsValidMove(sq(0, 0), sq(1, 2), board.PieceKind(42), board.Home, empty) {
		t.Error("unknown piece kind should be invalid")
	}
	if IsValidMove(sq(7, 7), sq(9, 8), board.Knight, board.Home, empty) {
		t.Error("off-board destination should be invalid")
	}
	if IsValidMove(sq(-1, 0), sq(0, 0), board.King, board.Home, empty) {
		t.Error("off-board origin should be invalid")
	}
	if IsValidMove(sq(1, 0), sq(2, 2), board.Knight, board.Team(7), empty) {
		t.Error("unknown team should be invalid")
	}
}

func TestDestinationsAgreeWithIsValidMove(t *testing.T) {
	pos := board.StartPosition()
	for p := range pos.All() {
		dests := Destinations(p.Position, p.Kind, p.Team, pos.Snapshot)
		for _, d := range dests {
			if d == p.Position {
				t.Errorf("%s: destinations include the origin", p)
			}
			if !IsValidMove(p.Position, d, p.Kind, p.Team, pos.Snapshot) {
				t.Errorf("%s: destination %s rejected by IsValidMove", p, d)
			}
		}
	}
}

func TestDeterministicAndConcurrent(t *testing.T) {
	pos := board.StartPosition()
	want := make(map[board.Square][]board.Square)
	for p := range pos.All() {
		want[p.Position] = Destinations(p.Position, p.Kind, p.Team, pos.Snapshot)
	}

	var wg sync.WaitGroup
	errs := make(chan string, 64)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for p := range pos.All() {
				got := Destinations(p.Position, p.Kind, p.Team, pos.Snapshot)
				if len(got) != len(want[p.Position]) {
					errs <- p.String()
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)

	for e := range errs {
		t.Errorf("destinations changed between calls for %s", e)
	}
}
