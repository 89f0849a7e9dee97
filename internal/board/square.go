// Package board holds the value types the referee reasons about: squares,
// teams, piece kinds, pieces and immutable board snapshots.
package board

import "fmt"

// Square is a board coordinate. File 0 is the a-file, rank 0 is the first rank.
// Both are in [0,7] for squares on the board. Text and JSON encodings use
// algebraic notation.
type Square struct {
	File int
	Rank int
}

// NewSquare creates a square from file and rank (0-indexed).
func NewSquare(file, rank int) Square {
	return Square{File: file, Rank: rank}
}

// Valid returns true if both coordinates are on the board.
func (sq Square) Valid() bool {
	return sq.File >= 0 && sq.File <= 7 && sq.Rank >= 0 && sq.Rank <= 7
}

// Offset returns the square df files and dr ranks away. The result may be off the board.
func (sq Square) Offset(df, dr int) Square {
	return Square{File: sq.File + df, Rank: sq.Rank + dr}
}

// String returns the algebraic notation for the square (e.g., "e4").
func (sq Square) String() string {
	if !sq.Valid() {
		return fmt.Sprintf("(%d,%d)", sq.File, sq.Rank)
	}
	return fmt.Sprintf("%c%c", 'a'+sq.File, '1'+sq.Rank)
}

// ParseSquare parses algebraic notation (e.g., "e4") into a Square.
func ParseSquare(s string) (Square, error) {
	if len(s) != 2 {
		return Square{}, fmt.Errorf("invalid square: %q", s)
	}

	file := int(s[0]) - 'a'
	rank := int(s[1]) - '1'

	sq := NewSquare(file, rank)
	if !sq.Valid() {
		return Square{}, fmt.Errorf("invalid square: %q", s)
	}
	return sq, nil
}

// Squares returns all 64 squares, a1 first, rank by rank.
func Squares() []Square {
	out := make([]Square, 0, 64)
	for rank := 0; rank < 8; rank++ {
		for file := 0; file < 8; file++ {
			out = append(out, NewSquare(file, rank))
		}
	}
	return out
}

// MarshalText encodes the square in algebraic notation.
func (sq Square) MarshalText() ([]byte, error) {
	if !sq.Valid() {
		return nil, fmt.Errorf("square off the board: %s", sq)
	}
	return []byte(sq.String()), nil
}

// UnmarshalText decodes algebraic notation.
func (sq *Square) UnmarshalText(text []byte) error {
	parsed, err := ParseSquare(string(text))
	if err != nil {
		return err
	}
	*sq = parsed
	return nil
}
