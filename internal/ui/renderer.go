package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/hailam/chessreferee/internal/board"
)

// Theme defines the color scheme for the board.
type Theme struct {
	LightSquare    color.RGBA
	DarkSquare     color.RGBA
	SelectedSquare color.RGBA
	DestColor      color.RGBA
	CaptureColor   color.RGBA
	LastMoveColor  color.RGBA
	PassedColor    color.RGBA
	Background     color.RGBA
	TextColor      color.RGBA
}

// DefaultTheme returns the default color theme.
func DefaultTheme() *Theme {
	return &Theme{
		LightSquare:    color.RGBA{240, 217, 181, 255}, // Tan
		DarkSquare:     color.RGBA{181, 136, 99, 255},  // Brown
		SelectedSquare: color.RGBA{247, 247, 105, 180}, // Yellow highlight
		DestColor:      color.RGBA{130, 151, 105, 200}, // Green dots
		CaptureColor:   color.RGBA{200, 90, 70, 200},   // Red rings
		LastMoveColor:  color.RGBA{180, 190, 100, 90},
		PassedColor:    color.RGBA{90, 140, 220, 160}, // Pawn open to en passant
		Background:     color.RGBA{40, 44, 52, 255},
		TextColor:      color.RGBA{220, 220, 220, 255},
	}
}

// Renderer handles all drawing operations.
type Renderer struct {
	sprites    *SpriteManager
	theme      *Theme
	boardSize  int
	squareSize int
	flipped    bool // Away at the bottom
}

// NewRenderer creates a new renderer.
func NewRenderer(boardSize, squareSize int) *Renderer {
	return &Renderer{
		sprites:    NewSpriteManager(squareSize),
		theme:      DefaultTheme(),
		boardSize:  boardSize,
		squareSize: squareSize,
	}
}

// SetFlipped puts rank 8 at the bottom when true.
func (r *Renderer) SetFlipped(flipped bool) {
	r.flipped = flipped
}

// Flipped reports whether the board is drawn from Away's side.
func (r *Renderer) Flipped() bool {
	return r.flipped
}

// DrawBoard draws the chess board squares and coordinate labels.
func (r *Renderer) DrawBoard(screen *ebiten.Image) {
	size := float32(r.squareSize)
	for _, sq := range board.Squares() {
		x, y := r.SquareToScreen(sq)
		c := r.theme.LightSquare
		if (sq.File+sq.Rank)%2 == 0 {
			c = r.theme.DarkSquare
		}
		vector.DrawFilledRect(screen, float32(x), float32(y), size, size, c, false)
	}
	r.drawCoordinates(screen)
}

// drawCoordinates labels the bottom row with files and the left column with ranks.
func (r *Renderer) drawCoordinates(screen *ebiten.Image) {
	face := GetFaceWithSize(coordFontSize)
	if face == nil {
		return
	}

	for i := 0; i < 8; i++ {
		file, rank := i, i
		if r.flipped {
			file, rank = 7-i, 7-i
		}

		// Files along the bottom edge, right-aligned in each square
		label := string(rune('a' + file))
		w, h := MeasureText(label, face)
		op := &text.DrawOptions{}
		op.GeoM.Translate(float64((i+1)*r.squareSize)-w-3, float64(r.boardSize)-h-2)
		op.ColorScale.ScaleWithColor(r.labelColor(i, 0))
		text.Draw(screen, label, face, op)

		// Ranks along the left edge, top of each square
		label = string(rune('1' + rank))
		op = &text.DrawOptions{}
		op.GeoM.Translate(3, float64((7-i)*r.squareSize)+2)
		op.ColorScale.ScaleWithColor(r.labelColor(0, i))
		text.Draw(screen, label, face, op)
	}
}

// labelColor picks the contrasting square color for the screen cell (col, row-from-bottom).
func (r *Renderer) labelColor(col, row int) color.RGBA {
	if (col+row)%2 == 0 {
		return r.theme.LightSquare
	}
	return r.theme.DarkSquare
}

// DrawHighlights draws the last move, the selection, and the destinations of
// the selected piece. Destinations holding a piece get a ring instead of a dot.
func (r *Renderer) DrawHighlights(screen *ebiten.Image, snap board.Snapshot, selected *board.Square, dests []board.Square, lastFrom, lastTo *board.Square) {
	if lastFrom != nil && lastTo != nil {
		r.highlightSquare(screen, *lastFrom, r.theme.LastMoveColor)
		r.highlightSquare(screen, *lastTo, r.theme.LastMoveColor)
	}

	for p := range snap.All() {
		if p.EnPassant {
			r.outlineSquare(screen, p.Position, r.theme.PassedColor)
		}
	}

	if selected != nil {
		r.highlightSquare(screen, *selected, r.theme.SelectedSquare)
	}

	for _, sq := range dests {
		if _, occupied := snap.At(sq); occupied {
			r.drawCaptureIndicator(screen, sq)
		} else {
			r.drawDestIndicator(screen, sq)
		}
	}
}

// highlightSquare draws a colored overlay on a square.
func (r *Renderer) highlightSquare(screen *ebiten.Image, sq board.Square, c color.RGBA) {
	x, y := r.SquareToScreen(sq)
	size := float32(r.squareSize)
	vector.DrawFilledRect(screen, float32(x), float32(y), size, size, c, false)
}

func (r *Renderer) outlineSquare(screen *ebiten.Image, sq board.Square, c color.RGBA) {
	x, y := r.SquareToScreen(sq)
	size := float32(r.squareSize)
	vector.StrokeRect(screen, float32(x)+2, float32(y)+2, size-4, size-4, 3, c, false)
}

// drawDestIndicator draws a dot on an empty destination.
func (r *Renderer) drawDestIndicator(screen *ebiten.Image, sq board.Square) {
	x, y := r.SquareToScreen(sq)
	half := float32(r.squareSize) / 2
	vector.DrawFilledCircle(screen, float32(x)+half, float32(y)+half, half*0.3, r.theme.DestColor, true)
}

// drawCaptureIndicator draws a ring on an occupied destination.
func (r *Renderer) drawCaptureIndicator(screen *ebiten.Image, sq board.Square) {
	x, y := r.SquareToScreen(sq)
	half := float32(r.squareSize) / 2
	vector.StrokeCircle(screen, float32(x)+half, float32(y)+half, half*0.9, 4, r.theme.CaptureColor, true)
}

// DrawPieces draws every piece except the one on skip (the piece being dragged).
func (r *Renderer) DrawPieces(screen *ebiten.Image, snap board.Snapshot, skip *board.Square, anims *AnimationManager) {
	for p := range snap.All() {
		if skip != nil && p.Position == *skip {
			continue
		}
		x, y := r.SquareToScreen(p.Position)
		dx := 0.0
		if anims != nil {
			dx = anims.ShakeOffset(p.Position)
		}
		r.sprites.DrawPieceAt(screen, p, float64(x)+dx, float64(y))
	}
}

// DrawDraggedPiece draws the piece being dragged centered on the cursor.
func (r *Renderer) DrawDraggedPiece(screen *ebiten.Image, p board.Piece, mouseX, mouseY int) {
	half := r.squareSize / 2
	r.sprites.DrawPieceAt(screen, p, float64(mouseX-half), float64(mouseY-half))
}

// DrawStatus writes a line of text in the bar below the board.
func (r *Renderer) DrawStatus(screen *ebiten.Image, msg string) {
	vector.DrawFilledRect(screen, 0, float32(r.boardSize), float32(r.boardSize), StatusHeight, r.theme.Background, false)
	face := GetRegularFace()
	if face == nil {
		return
	}
	_, h := MeasureText(msg, face)
	op := &text.DrawOptions{}
	op.GeoM.Translate(10, float64(r.boardSize)+(StatusHeight-h)/2)
	op.ColorScale.ScaleWithColor(r.theme.TextColor)
	text.Draw(screen, msg, face, op)
}

// SquareToScreen converts a board square to the top-left pixel of its cell.
func (r *Renderer) SquareToScreen(sq board.Square) (int, int) {
	col, row := sq.File, 7-sq.Rank // rank 1 at the bottom
	if r.flipped {
		col, row = 7-sq.File, sq.Rank
	}
	return col * r.squareSize, row * r.squareSize
}

// ScreenToSquare converts screen coordinates to a board square.
func (r *Renderer) ScreenToSquare(x, y int) (board.Square, bool) {
	if x < 0 || x >= r.boardSize || y < 0 || y >= r.boardSize {
		return board.Square{}, false
	}
	col, row := x/r.squareSize, y/r.squareSize
	if r.flipped {
		return board.NewSquare(7-col, row), true
	}
	return board.NewSquare(col, 7-row), true
}

// SquareSize returns the size of one square in pixels.
func (r *Renderer) SquareSize() int {
	return r.squareSize
}

// Theme returns the current theme.
func (r *Renderer) Theme() *Theme {
	return r.theme
}
