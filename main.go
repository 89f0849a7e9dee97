// ChessReferee - a drag-and-drop board that asks the referee before every move
package main

import (
	"log"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/hailam/chessreferee/internal/ui"
)

func main() {
	game := ui.NewGame()
	defer game.Close()

	ebiten.SetWindowSize(ui.ScreenWidth, ui.ScreenHeight)
	ebiten.SetWindowTitle("Chess Referee")

	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
