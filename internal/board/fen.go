package board

import (
	"fmt"
	"strconv"
	"strings"
)

// StartFEN is the FEN string for the starting position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// Position is a snapshot plus the bookkeeping a FEN string carries.
// Castling rights are accepted on input and dropped; castling is not modelled.
type Position struct {
	Snapshot
	SideToMove     Team
	HalfMoveClock  int
	FullMoveNumber int
}

// StartPosition returns the standard starting position.
func StartPosition() Position {
	pos, err := ParseFEN(StartFEN)
	if err != nil {
		panic(err)
	}
	return pos
}

// ParseFEN parses a FEN string. The en passant target square, if present, is
// turned into the EnPassant flag of the pawn that just passed it.
func ParseFEN(fen string) (Position, error) {
	parts := strings.Fields(fen)
	if len(parts) < 4 {
		return Position{}, fmt.Errorf("invalid FEN: need at least 4 fields, got %d", len(parts))
	}

	pos := Position{FullMoveNumber: 1}

	// Parse piece placement (field 0)
	pieces, err := parsePiecePlacement(parts[0])
	if err != nil {
		return Position{}, err
	}

	// Parse side to move (field 1)
	switch parts[1] {
	case "w":
		pos.SideToMove = Home
	case "b":
		pos.SideToMove = Away
	default:
		return Position{}, fmt.Errorf("invalid side to move: %s", parts[1])
	}

	// Castling rights (field 2) are validated but not kept
	if parts[2] != "-" && strings.Trim(parts[2], "KQkq") != "" {
		return Position{}, fmt.Errorf("invalid castling rights: %s", parts[2])
	}

	// Parse en passant square (field 3)
	if parts[3] != "-" {
		target, err := ParseSquare(parts[3])
		if err != nil {
			return Position{}, fmt.Errorf("invalid en passant square: %s", parts[3])
		}
		if err := flagPassedPawn(pieces, target); err != nil {
			return Position{}, err
		}
	}

	// Parse half-move clock (field 4, optional)
	if len(parts) > 4 {
		hmc, err := strconv.Atoi(parts[4])
		if err != nil {
			return Position{}, fmt.Errorf("invalid half-move clock: %s", parts[4])
		}
		pos.HalfMoveClock = hmc
	}

	// Parse full-move number (field 5, optional)
	if len(parts) > 5 {
		fmn, err := strconv.Atoi(parts[5])
		if err != nil {
			return Position{}, fmt.Errorf("invalid full-move number: %s", parts[5])
		}
		pos.FullMoveNumber = fmn
	}

	pos.Snapshot = NewSnapshot(pieces...)
	return pos, nil
}

// parsePiecePlacement parses the piece placement section of a FEN string.
func parsePiecePlacement(placement string) ([]Piece, error) {
	ranks := strings.Split(placement, "/")
	if len(ranks) != 8 {
		return nil, fmt.Errorf("invalid piece placement: need 8 ranks, got %d", len(ranks))
	}

	var pieces []Piece
	for i, rankStr := range ranks {
		rank := 7 - i // FEN starts from rank 8
		file := 0

		for _, c := range rankStr {
			if file > 7 {
				return nil, fmt.Errorf("too many squares in rank %d", rank+1)
			}

			if c >= '1' && c <= '8' {
				file += int(c - '0')
				continue
			}

			kind, team, ok := PieceFromChar(byte(c))
			if !ok {
				return nil, fmt.Errorf("invalid piece character: %c", c)
			}
			pieces = append(pieces, NewPiece(kind, team, NewSquare(file, rank)))
			file++
		}

		if file != 8 {
			return nil, fmt.Errorf("invalid number of squares in rank %d: got %d", rank+1, file)
		}
	}

	return pieces, nil
}

// flagPassedPawn sets EnPassant on the pawn standing just past target.
func flagPassedPawn(pieces []Piece, target Square) error {
	var team Team
	switch target.Rank {
	case 2:
		team = Home
	case 5:
		team = Away
	default:
		return fmt.Errorf("invalid en passant square: %s", target)
	}

	pawnSq := target.Offset(0, team.Direction())
	for i := range pieces {
		p := &pieces[i]
		if p.Position == pawnSq && p.Kind == Pawn && p.Team == team {
			p.EnPassant = true
			return nil
		}
	}
	return fmt.Errorf("no pawn behind en passant square %s", target)
}

// EnPassantTarget returns the square behind the flagged pawn, if there is one.
func (s Snapshot) EnPassantTarget() (Square, bool) {
	for p := range s.All() {
		if p.EnPassant {
			return p.Position.Offset(0, -p.Team.Direction()), true
		}
	}
	return Square{}, false
}

// FEN returns the FEN representation of the position. Castling rights are always "-".
func (p Position) FEN() string {
	var sb strings.Builder

	// Piece placement
	for rank := 7; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < 8; file++ {
			piece, ok := p.At(NewSquare(file, rank))
			if !ok {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteString(strconv.Itoa(empty))
				empty = 0
			}
			sb.WriteByte(piece.Char())
		}
		if empty > 0 {
			sb.WriteString(strconv.Itoa(empty))
		}
		if rank > 0 {
			sb.WriteByte('/')
		}
	}

	// Side to move
	sb.WriteByte(' ')
	if p.SideToMove == Home {
		sb.WriteByte('w')
	} else {
		sb.WriteByte('b')
	}

	sb.WriteString(" - ")

	// En passant
	if target, ok := p.EnPassantTarget(); ok {
		sb.WriteString(target.String())
	} else {
		sb.WriteByte('-')
	}

	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(p.HalfMoveClock))
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(p.FullMoveNumber))

	return sb.String()
}
