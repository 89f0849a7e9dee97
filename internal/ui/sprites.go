// Package ui implements the drag-and-drop referee board using Ebitengine.
package ui

import (
	"embed"
	"fmt"
	"image"
	"log"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"

	"github.com/hailam/chessreferee/internal/board"
)

//go:embed assets/pieces/*.svg
var pieceAssets embed.FS

// Each SVG is a template; #FILL and #STROKE are replaced per team.
var teamPaint = map[board.Team]*strings.Replacer{
	board.Home: strings.NewReplacer("#FILL", "#f8f8f0", "#STROKE", "#202020"),
	board.Away: strings.NewReplacer("#FILL", "#303030", "#STROKE", "#e8e8e0"),
}

type spriteKey struct {
	kind board.PieceKind
	team board.Team
}

// SpriteManager manages piece sprites.
type SpriteManager struct {
	pieces      map[spriteKey]*ebiten.Image
	size        int     // Display size (e.g., 80)
	renderScale float64 // Render at higher resolution for quality (e.g., 3.0)
}

// NewSpriteManager creates a new sprite manager with pieces of the given size.
func NewSpriteManager(size int) *SpriteManager {
	sm := &SpriteManager{
		pieces:      make(map[spriteKey]*ebiten.Image),
		size:        size,
		renderScale: 3.0,
	}
	sm.loadPieces()
	return sm
}

// loadPieces rasterizes every kind for both teams.
func (sm *SpriteManager) loadPieces() {
	renderSize := int(float64(sm.size) * sm.renderScale)

	for kind := board.Pawn; kind <= board.King; kind++ {
		path := fmt.Sprintf("assets/pieces/%s.svg", kind)
		data, err := pieceAssets.ReadFile(path)
		if err != nil {
			log.Printf("Failed to read piece asset %s: %v", path, err)
			continue
		}

		for team, paint := range teamPaint {
			rgba, err := rasterize(paint.Replace(string(data)), renderSize)
			if err != nil {
				log.Printf("Failed to parse SVG %s (%s): %v", path, team, err)
				continue
			}
			sm.pieces[spriteKey{kind, team}] = ebiten.NewImageFromImage(rgba)
		}
	}
}

// rasterize renders an SVG document into a size x size RGBA image.
func rasterize(svg string, size int) (*image.RGBA, error) {
	icon, err := oksvg.ReadIconStream(strings.NewReader(svg))
	if err != nil {
		return nil, err
	}
	icon.SetTarget(0, 0, float64(size), float64(size))

	rgba := image.NewRGBA(image.Rect(0, 0, size, size))
	scanner := rasterx.NewScannerGV(size, size, rgba, rgba.Bounds())
	raster := rasterx.NewDasher(size, size, scanner)
	icon.Draw(raster, 1.0)
	return rgba, nil
}

// DrawPieceAt draws a piece with its top-left corner at the given pixel coordinates.
func (sm *SpriteManager) DrawPieceAt(screen *ebiten.Image, p board.Piece, x, y float64) {
	sprite := sm.pieces[spriteKey{p.Kind, p.Team}]
	if sprite == nil {
		return
	}
	op := &ebiten.DrawImageOptions{}
	scale := 1.0 / sm.renderScale
	op.GeoM.Scale(scale, scale)
	op.GeoM.Translate(x, y)
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(sprite, op)
}

// Size returns the size of piece sprites.
func (sm *SpriteManager) Size() int {
	return sm.size
}
