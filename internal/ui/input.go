package ui

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// Pointer is the left mouse button and cursor as seen in one frame.
type Pointer struct {
	X, Y     int
	Down     bool // held this frame
	Pressed  bool // went down this frame
	Released bool // went up this frame
}

// InputHandler samples the pointer once per frame so every handler in an
// Update sees the same state.
type InputHandler struct {
	current Pointer
}

// NewInputHandler creates a new input handler.
func NewInputHandler() *InputHandler {
	return &InputHandler{}
}

// Update samples the pointer. Call this once per frame.
func (ih *InputHandler) Update() Pointer {
	x, y := ebiten.CursorPosition()
	ih.current = Pointer{
		X:        x,
		Y:        y,
		Down:     ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft),
		Pressed:  inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft),
		Released: inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft),
	}
	return ih.current
}

// Pointer returns the state sampled by the last Update.
func (ih *InputHandler) Pointer() Pointer {
	return ih.current
}

// IsKeyJustPressed returns true if the key went down this frame.
func IsKeyJustPressed(key ebiten.Key) bool {
	return inpututil.IsKeyJustPressed(key)
}
