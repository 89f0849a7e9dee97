package board

import (
	"encoding/json"
	"fmt"
	"iter"
)

// Snapshot is an immutable roster of the pieces on the board at one instant.
// The zero value is an empty board. A Snapshot may be shared freely between
// goroutines; nothing mutates it after construction.
type Snapshot struct {
	pieces []Piece
}

// NewSnapshot copies pieces into a new snapshot. If two pieces name the same
// square the later one wins, so a snapshot never holds two pieces on one square.
func NewSnapshot(pieces ...Piece) Snapshot {
	out := make([]Piece, 0, len(pieces))
	for _, p := range pieces {
		replaced := false
		for i := range out {
			if out[i].Position == p.Position {
				out[i] = p
				replaced = true
				break
			}
		}
		if !replaced {
			out = append(out, p)
		}
	}
	return Snapshot{pieces: out}
}

// At returns the piece on sq, if any.
func (s Snapshot) At(sq Square) (Piece, bool) {
	for _, p := range s.pieces {
		if p.Position == sq {
			return p, true
		}
	}
	return Piece{}, false
}

// Len returns the number of pieces.
func (s Snapshot) Len() int {
	return len(s.pieces)
}

// Pieces returns a copy of the roster.
func (s Snapshot) Pieces() []Piece {
	out := make([]Piece, len(s.pieces))
	copy(out, s.pieces)
	return out
}

// All iterates over the roster without copying it.
func (s Snapshot) All() iter.Seq[Piece] {
	return func(yield func(Piece) bool) {
		for _, p := range s.pieces {
			if !yield(p) {
				return
			}
		}
	}
}

// Validate reports pieces that are off the board or carry an unknown kind or team.
func (s Snapshot) Validate() error {
	for _, p := range s.pieces {
		if !p.Position.Valid() {
			return fmt.Errorf("piece off the board: %s", p.Position)
		}
		if !p.Kind.Valid() {
			return fmt.Errorf("unknown piece kind %d on %s", p.Kind, p.Position)
		}
		if !p.Team.Valid() {
			return fmt.Errorf("unknown team %d on %s", p.Team, p.Position)
		}
	}
	return nil
}

// MarshalJSON encodes the snapshot as an array of pieces.
func (s Snapshot) MarshalJSON() ([]byte, error) {
	if s.pieces == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(s.pieces)
}

// UnmarshalJSON decodes an array of pieces. Two pieces on one square is an error.
func (s *Snapshot) UnmarshalJSON(data []byte) error {
	var pieces []Piece
	if err := json.Unmarshal(data, &pieces); err != nil {
		return err
	}
	seen := make(map[Square]bool, len(pieces))
	for _, p := range pieces {
		if seen[p.Position] {
			return fmt.Errorf("two pieces on %s", p.Position)
		}
		seen[p.Position] = true
	}
	*s = NewSnapshot(pieces...)
	return nil
}
