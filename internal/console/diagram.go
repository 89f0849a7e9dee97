package console

import (
	"fmt"

	"github.com/fatih/color"

	"github.com/hailam/chessreferee/internal/board"
)

var (
	homeColor   = color.New(color.FgHiWhite, color.Bold)
	awayColor   = color.New(color.FgHiRed, color.Bold)
	passedColor = color.New(color.FgHiYellow, color.Bold, color.Underline)
	frameColor  = color.New(color.FgHiBlack)
)

// writeDiagram prints the board with rank 8 on top, followed by the FEN.
// Colors follow fatih/color's global switch, so piped output stays plain.
func (c *Console) writeDiagram() {
	pos := c.game.Position()

	frameColor.Fprintln(c.out, "  +-----------------+")
	for rank := 7; rank >= 0; rank-- {
		frameColor.Fprintf(c.out, "%d |", rank+1)
		for file := 0; file < 8; file++ {
			fmt.Fprint(c.out, " ")
			p, ok := pos.At(board.NewSquare(file, rank))
			if !ok {
				frameColor.Fprint(c.out, ".")
				continue
			}
			pieceColor(p).Fprintf(c.out, "%c", p.Char())
		}
		frameColor.Fprintln(c.out, " |")
	}
	frameColor.Fprintln(c.out, "  +-----------------+")
	frameColor.Fprintln(c.out, "    a b c d e f g h")
	fmt.Fprintf(c.out, "fen %s\n", pos.FEN())
}

func pieceColor(p board.Piece) *color.Color {
	switch {
	case p.EnPassant:
		return passedColor
	case p.Team == board.Home:
		return homeColor
	default:
		return awayColor
	}
}
