package ui

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/hailam/chessreferee/internal/board"
	"github.com/hailam/chessreferee/internal/game"
	"github.com/hailam/chessreferee/internal/storage"
)

// UI Constants
const (
	BoardSize    = 640
	SquareSize   = BoardSize / 8
	StatusHeight = 32
	ScreenWidth  = BoardSize
	ScreenHeight = BoardSize + StatusHeight
)

// AutosaveName is the saved-position name used by the S key.
const AutosaveName = "gui-autosave"

// Game implements ebiten.Game interface.
type Game struct {
	game *game.Game

	// Selection and drag state
	selected   *board.Square
	dests      []board.Square
	dragging   bool
	dragPiece  board.Piece
	dragOrigin board.Square

	storage *storage.Storage
	prefs   *storage.Preferences

	renderer *Renderer
	input    *InputHandler
	feedback *FeedbackManager
}

// NewGame creates the board window state. A nil storage is tolerated; the
// board then starts from the initial position and nothing persists.
func NewGame() *Game {
	g := &Game{
		renderer: NewRenderer(BoardSize, SquareSize),
		input:    NewInputHandler(),
		feedback: NewFeedbackManager(),
	}

	var err error
	g.storage, err = storage.NewStorage()
	if err != nil {
		log.Printf("Warning: Failed to initialize storage: %v", err)
	}

	g.loadPreferences()
	return g
}

// loadPreferences restores flip, highlights and the last position.
func (g *Game) loadPreferences() {
	g.prefs = storage.DefaultPreferences()
	if g.storage != nil {
		prefs, err := g.storage.LoadPreferences()
		if err != nil {
			log.Printf("Warning: Failed to load preferences: %v", err)
		} else {
			g.prefs = prefs
		}
	}

	g.renderer.SetFlipped(g.prefs.FlipBoard)

	g.game = game.New()
	if g.prefs.LastFEN != "" {
		resumed, err := game.FromFEN(g.prefs.LastFEN)
		if err != nil {
			log.Printf("Warning: Ignoring stored position %q: %v", g.prefs.LastFEN, err)
		} else {
			g.game = resumed
		}
	}
}

// savePreferences writes the current settings and position to storage.
func (g *Game) savePreferences() {
	if g.storage == nil {
		return
	}
	g.prefs.FlipBoard = g.renderer.Flipped()
	g.prefs.LastFEN = g.game.Position().FEN()
	g.prefs.LastPlayed = time.Now()
	if err := g.storage.SavePreferences(g.prefs); err != nil {
		log.Printf("Warning: Failed to save preferences: %v", err)
	}
}

// Update handles game logic updates.
func (g *Game) Update() error {
	ptr := g.input.Update()
	g.feedback.Update()

	g.handleKeys()
	g.handleBoardInput(ptr)
	g.updateCursor(ptr)
	return nil
}

func (g *Game) handleKeys() {
	switch {
	case IsKeyJustPressed(ebiten.KeyN):
		g.NewGameAction()
	case IsKeyJustPressed(ebiten.KeyF):
		g.renderer.SetFlipped(!g.renderer.Flipped())
		g.savePreferences()
	case IsKeyJustPressed(ebiten.KeyH):
		g.prefs.ShowHighlights = !g.prefs.ShowHighlights
		g.savePreferences()
	case IsKeyJustPressed(ebiten.KeyS):
		g.SaveAction()
	}
}

// updateCursor shows a grab cursor over pieces of the side to move.
func (g *Game) updateCursor(ptr Pointer) {
	shape := ebiten.CursorShapeDefault
	if g.dragging {
		shape = ebiten.CursorShapeMove
	} else if sq, ok := g.renderer.ScreenToSquare(ptr.X, ptr.Y); ok {
		if p, ok := g.game.Position().At(sq); ok && p.Team == g.game.SideToMove() {
			shape = ebiten.CursorShapePointer
		}
	}
	ebiten.SetCursorShape(shape)
}

// Draw renders the game.
func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(g.renderer.Theme().Background)

	snap := g.game.Position().Snapshot
	g.renderer.DrawBoard(screen)

	if g.prefs.ShowHighlights {
		var from, to *board.Square
		if last, ok := g.game.LastMove(); ok {
			from, to = &last.From, &last.To
		}
		g.renderer.DrawHighlights(screen, snap, g.selected, g.dests, from, to)
	}

	var skip *board.Square
	if g.dragging {
		skip = &g.dragOrigin
	}
	g.renderer.DrawPieces(screen, snap, skip, g.feedback.Animations())

	if g.dragging {
		ptr := g.input.Pointer()
		g.renderer.DrawDraggedPiece(screen, g.dragPiece, ptr.X, ptr.Y)
	}

	g.feedback.Draw(screen, g.renderer)
	g.renderer.DrawStatus(screen, g.statusLine())
}

func (g *Game) statusLine() string {
	side := "White"
	if g.game.SideToMove() == board.Away {
		side = "Black"
	}
	hl := "on"
	if !g.prefs.ShowHighlights {
		hl = "off"
	}
	return fmt.Sprintf("%s to move   highlights %s   N new  F flip  H highlights  S save", side, hl)
}

// Layout returns the game's screen dimensions.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return ScreenWidth, ScreenHeight
}

// handleBoardInput processes mouse interactions with the board. A piece can
// be dragged to its destination or clicked and then the destination clicked.
func (g *Game) handleBoardInput(ptr Pointer) {
	if ptr.Pressed {
		sq, ok := g.renderer.ScreenToSquare(ptr.X, ptr.Y)
		if !ok {
			g.clearSelection()
			return
		}

		p, occupied := g.game.Position().At(sq)
		if occupied && p.Team == g.game.SideToMove() {
			g.selectSquare(sq)
			g.dragging = true
			g.dragPiece = p
			g.dragOrigin = sq
			return
		}

		if g.selected != nil {
			g.attemptMove(*g.selected, sq)
			return
		}

		if occupied {
			g.feedback.OnRejected(sq, sq, game.ErrNotYourTurn)
		}
		return
	}

	if g.dragging && (ptr.Released || !ptr.Down) {
		g.dragging = false
		sq, ok := g.renderer.ScreenToSquare(ptr.X, ptr.Y)
		if !ok {
			g.clearSelection()
			return
		}
		// Dropping back on the origin keeps the selection for click-to-move
		if sq == g.dragOrigin {
			return
		}
		g.attemptMove(g.dragOrigin, sq)
	}
}

// selectSquare selects a square and computes its destinations.
func (g *Game) selectSquare(sq board.Square) {
	g.selected = &sq
	g.dests = g.game.Destinations(sq)
}

// clearSelection clears the current selection.
func (g *Game) clearSelection() {
	g.selected = nil
	g.dests = nil
	g.dragging = false
}

// attemptMove asks the game manager to apply from -> to and reports the outcome.
func (g *Game) attemptMove(from, to board.Square) {
	defer g.clearSelection()

	p, _ := g.game.Position().At(from)
	res, err := g.game.Move(from, to)
	g.recordVerdict(p.Kind, err)
	if err != nil {
		g.feedback.OnRejected(from, to, err)
		return
	}
	g.feedback.OnMoved(res)
	g.savePreferences()
}

// recordVerdict counts referee decisions. Turn and empty-square rejections
// never reach the referee and are not counted.
func (g *Game) recordVerdict(kind board.PieceKind, err error) {
	if g.storage == nil {
		return
	}
	if err != nil && !errors.Is(err, game.ErrIllegalMove) {
		return
	}
	if err := g.storage.RecordVerdict(kind, err == nil); err != nil {
		log.Printf("Warning: Failed to record verdict: %v", err)
	}
}

// NewGameAction resets to the initial position.
func (g *Game) NewGameAction() {
	g.clearSelection()
	g.game.Reset()
	g.feedback.OnReset()
	g.savePreferences()
}

// SaveAction stores the current position under AutosaveName.
func (g *Game) SaveAction() {
	if g.storage == nil {
		g.feedback.Notify("Storage unavailable", false)
		return
	}
	if _, err := g.storage.SavePosition(AutosaveName, g.game.Position().FEN()); err != nil {
		log.Printf("Warning: Failed to save position: %v", err)
		g.feedback.Notify("Save failed", false)
		return
	}
	g.feedback.Notify("Saved as "+AutosaveName, true)
}

// Close saves preferences and releases storage.
func (g *Game) Close() {
	if g.storage == nil {
		return
	}
	g.savePreferences()
	if err := g.storage.Close(); err != nil {
		log.Printf("Warning: Failed to close storage: %v", err)
	}
}
