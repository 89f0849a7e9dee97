package board

import (
	"fmt"
	"strings"
)

// Team represents the side a piece belongs to.
// Home advances towards increasing rank, Away towards decreasing rank.
type Team uint8

const (
	Home Team = iota
	Away
)

// Other returns the opposite team.
func (t Team) Other() Team {
	return t ^ 1
}

// Direction returns the rank delta of a single pawn step: +1 for Home, -1 for Away.
func (t Team) Direction() int {
	if t == Home {
		return 1
	}
	return -1
}

// PawnRank returns the rank the team's pawns start on.
func (t Team) PawnRank() int {
	if t == Home {
		return 1
	}
	return 6
}

// Valid returns true for Home and Away.
func (t Team) Valid() bool {
	return t <= Away
}

// String returns the team name.
func (t Team) String() string {
	switch t {
	case Home:
		return "home"
	case Away:
		return "away"
	default:
		return "none"
	}
}

// ParseTeam accepts "home"/"away" and the FEN-ish aliases "white"/"w" and "black"/"b".
func ParseTeam(s string) (Team, error) {
	switch strings.ToLower(s) {
	case "home", "white", "w":
		return Home, nil
	case "away", "black", "b":
		return Away, nil
	}
	return Home, fmt.Errorf("invalid team: %q", s)
}

func (t Team) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("invalid team: %d", t)
	}
	return []byte(t.String()), nil
}

func (t *Team) UnmarshalText(text []byte) error {
	parsed, err := ParseTeam(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// PieceKind represents the type of a chess piece.
type PieceKind uint8

const (
	Pawn PieceKind = iota
	Knight
	Bishop
	Rook
	Queen
	King
)

// Valid returns true for the six recognized kinds.
func (k PieceKind) Valid() bool {
	return k <= King
}

// String returns the piece kind name.
func (k PieceKind) String() string {
	switch k {
	case Pawn:
		return "pawn"
	case Knight:
		return "knight"
	case Bishop:
		return "bishop"
	case Rook:
		return "rook"
	case Queen:
		return "queen"
	case King:
		return "king"
	default:
		return "none"
	}
}

// Char returns the FEN character for the kind (lowercase).
func (k PieceKind) Char() byte {
	chars := []byte{'p', 'n', 'b', 'r', 'q', 'k'}
	if !k.Valid() {
		return ' '
	}
	return chars[k]
}

// ParseKind accepts a kind name ("knight") or its FEN letter in either case ("N").
func ParseKind(s string) (PieceKind, error) {
	lower := strings.ToLower(s)
	for k := Pawn; k <= King; k++ {
		if lower == k.String() || (len(lower) == 1 && lower[0] == k.Char()) {
			return k, nil
		}
	}
	return Pawn, fmt.Errorf("invalid piece kind: %q", s)
}

func (k PieceKind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("invalid piece kind: %d", k)
	}
	return []byte(k.String()), nil
}

func (k *PieceKind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Piece is one entry of a board roster.
// EnPassant is set by the game manager on the turn right after a pawn's double
// step and cleared on the turn after that.
type Piece struct {
	Position  Square    `json:"square"`
	Kind      PieceKind `json:"kind"`
	Team      Team      `json:"team"`
	EnPassant bool      `json:"enPassant,omitempty"`
}

// NewPiece creates a piece without the en-passant flag.
func NewPiece(kind PieceKind, team Team, sq Square) Piece {
	return Piece{Position: sq, Kind: kind, Team: team}
}

// Char returns the FEN character for the piece.
// Uppercase for Home, lowercase for Away.
func (p Piece) Char() byte {
	c := p.Kind.Char()
	if p.Team == Home && c != ' ' {
		c -= 'a' - 'A'
	}
	return c
}

// String returns e.g. "home knight g1".
func (p Piece) String() string {
	return fmt.Sprintf("%s %s %s", p.Team, p.Kind, p.Position)
}

// PieceFromChar converts a FEN character to a piece kind and team.
func PieceFromChar(c byte) (PieceKind, Team, bool) {
	team := Away
	if c >= 'A' && c <= 'Z' {
		team = Home
		c += 'a' - 'A'
	}
	for k := Pawn; k <= King; k++ {
		if k.Char() == c {
			return k, team, true
		}
	}
	return Pawn, Home, false
}
