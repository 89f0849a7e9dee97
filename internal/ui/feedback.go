package ui

import (
	"errors"
	"image/color"
	"math"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/hailam/chessreferee/internal/board"
	"github.com/hailam/chessreferee/internal/game"
)

// ToastType represents the type of toast notification.
type ToastType int

const (
	ToastInfo ToastType = iota
	ToastWarning
	ToastSuccess
)

// toastPalette holds background and text colors per toast type.
var toastPalette = map[ToastType][2]color.RGBA{
	ToastInfo:    {{50, 100, 150, 220}, {255, 255, 255, 255}},
	ToastWarning: {{180, 140, 20, 220}, {40, 30, 0, 255}},
	ToastSuccess: {{50, 150, 50, 220}, {255, 255, 255, 255}},
}

// Toast represents a notification message.
type Toast struct {
	Message   string
	Type      ToastType
	StartTime time.Time
	Duration  time.Duration
}

// ToastManager manages toast notifications.
type ToastManager struct {
	toasts   []*Toast
	maxStack int
}

// NewToastManager creates a new toast manager.
func NewToastManager() *ToastManager {
	return &ToastManager{maxStack: 3}
}

// Show displays a new toast notification.
func (tm *ToastManager) Show(message string, toastType ToastType, duration time.Duration) {
	tm.toasts = append(tm.toasts, &Toast{
		Message:   message,
		Type:      toastType,
		StartTime: time.Now(),
		Duration:  duration,
	})
	if len(tm.toasts) > tm.maxStack {
		tm.toasts = tm.toasts[1:]
	}
}

// Update removes expired toasts.
func (tm *ToastManager) Update() {
	now := time.Now()
	active := tm.toasts[:0]
	for _, t := range tm.toasts {
		if now.Sub(t.StartTime) < t.Duration {
			active = append(active, t)
		}
	}
	tm.toasts = active
}

// Draw renders all active toasts centered over the board.
func (tm *ToastManager) Draw(screen *ebiten.Image) {
	face := GetBoldFace()
	if face == nil {
		return
	}

	y := 40.0
	for _, t := range tm.toasts {
		elapsed := time.Since(t.StartTime).Seconds()
		duration := t.Duration.Seconds()

		alpha := 1.0
		const fade = 0.2
		if elapsed < fade {
			alpha = elapsed / fade
		} else if elapsed > duration-fade {
			alpha = (duration - elapsed) / fade
		}
		alpha = max(0, min(1, alpha))

		pal := toastPalette[t.Type]
		bg, fg := pal[0], pal[1]
		bg.A = uint8(float64(bg.A) * alpha)
		fg.A = uint8(float64(fg.A) * alpha)

		w, h := MeasureText(t.Message, face)
		const padding = 12.0
		boxW, boxH := w+padding*2, h+padding*2
		x := float64(BoardSize)/2 - boxW/2

		vector.DrawFilledRect(screen, float32(x), float32(y), float32(boxW), float32(boxH), bg, false)

		op := &text.DrawOptions{}
		op.GeoM.Translate(x+padding, y+padding)
		op.ColorScale.ScaleWithColor(fg)
		text.Draw(screen, t.Message, face, op)

		y += boxH + 8
	}
}

type shake struct {
	square   board.Square
	start    time.Time
	duration time.Duration
}

type flash struct {
	square   board.Square
	start    time.Time
	duration time.Duration
	color    color.RGBA
}

// AnimationManager runs the shake and flash effects shown on rejection.
type AnimationManager struct {
	shakes  []shake
	flashes []flash
}

// NewAnimationManager creates a new animation manager.
func NewAnimationManager() *AnimationManager {
	return &AnimationManager{}
}

// StartShake begins a shake animation on a square.
func (am *AnimationManager) StartShake(sq board.Square) {
	am.shakes = append(am.shakes, shake{sq, time.Now(), 300 * time.Millisecond})
}

// StartFlash begins a flash animation on a square.
func (am *AnimationManager) StartFlash(sq board.Square, c color.RGBA) {
	am.flashes = append(am.flashes, flash{sq, time.Now(), 400 * time.Millisecond, c})
}

// Update removes expired animations.
func (am *AnimationManager) Update() {
	now := time.Now()
	shakes := am.shakes[:0]
	for _, s := range am.shakes {
		if now.Sub(s.start) < s.duration {
			shakes = append(shakes, s)
		}
	}
	am.shakes = shakes

	flashes := am.flashes[:0]
	for _, f := range am.flashes {
		if now.Sub(f.start) < f.duration {
			flashes = append(flashes, f)
		}
	}
	am.flashes = flashes
}

// ShakeOffset returns the horizontal displacement for a piece on sq.
func (am *AnimationManager) ShakeOffset(sq board.Square) float64 {
	for _, s := range am.shakes {
		if s.square == sq {
			return shakeAt(time.Since(s.start).Seconds() / s.duration.Seconds())
		}
	}
	return 0
}

// shakeAt is a damped sine over progress in [0, 1).
func shakeAt(progress float64) float64 {
	if progress < 0 || progress >= 1 {
		return 0
	}
	const intensity, decay, freq = 8.0, 5.0, 40.0
	return intensity * math.Exp(-decay*progress) * math.Sin(freq*progress)
}

// DrawFlashes renders all active flash overlays.
func (am *AnimationManager) DrawFlashes(screen *ebiten.Image, r *Renderer) {
	size := float32(r.SquareSize())
	for _, f := range am.flashes {
		progress := time.Since(f.start).Seconds() / f.duration.Seconds()
		if progress >= 1 {
			continue
		}
		c := f.color
		c.A = uint8(float64(c.A) * (1 - progress))
		x, y := r.SquareToScreen(f.square)
		vector.DrawFilledRect(screen, float32(x), float32(y), size, size, c, false)
	}
}

// rejectionMessage turns a game rejection into the text shown to the player.
func rejectionMessage(err error) string {
	switch {
	case errors.Is(err, game.ErrNotYourTurn):
		return "Not your turn"
	case errors.Is(err, game.ErrOwnPiece):
		return "Square occupied by your piece"
	case errors.Is(err, game.ErrIllegalMove):
		return "Invalid move for this piece"
	case errors.Is(err, game.ErrNoPiece):
		return "No piece there"
	default:
		return "Invalid move"
	}
}

// FeedbackManager coordinates toasts, animations and sound.
type FeedbackManager struct {
	toasts     *ToastManager
	animations *AnimationManager
	audio      *AudioManager
}

// NewFeedbackManager creates a new feedback manager.
func NewFeedbackManager() *FeedbackManager {
	return &FeedbackManager{
		toasts:     NewToastManager(),
		animations: NewAnimationManager(),
		audio:      NewAudioManager(),
	}
}

// Update updates all feedback systems.
func (fm *FeedbackManager) Update() {
	fm.toasts.Update()
	fm.animations.Update()
}

// Draw renders all feedback overlays.
func (fm *FeedbackManager) Draw(screen *ebiten.Image, r *Renderer) {
	fm.animations.DrawFlashes(screen, r)
	fm.toasts.Draw(screen)
}

// Animations returns the animation manager for renderer integration.
func (fm *FeedbackManager) Animations() *AnimationManager {
	return fm.animations
}

// OnRejected reports a move the referee or game refused.
func (fm *FeedbackManager) OnRejected(from, to board.Square, err error) {
	fm.toasts.Show(rejectionMessage(err), ToastWarning, 2*time.Second)
	fm.animations.StartShake(from)
	fm.animations.StartFlash(to, color.RGBA{255, 80, 80, 150})
	fm.audio.Play(SoundInvalid)
}

// OnMoved plays the sound for an applied move.
func (fm *FeedbackManager) OnMoved(res game.Result) {
	switch {
	case res.EnPassant:
		fm.audio.Play(SoundEnPassant)
		fm.toasts.Show("En passant", ToastInfo, 1500*time.Millisecond)
	case res.Captured != nil:
		fm.audio.Play(SoundCapture)
	default:
		fm.audio.Play(SoundMove)
	}
}

// Notify shows an informational toast.
func (fm *FeedbackManager) Notify(msg string, success bool) {
	t := ToastInfo
	if success {
		t = ToastSuccess
	}
	fm.toasts.Show(msg, t, 2*time.Second)
}

// OnReset plays the new-game chime.
func (fm *FeedbackManager) OnReset() {
	fm.audio.Play(SoundReset)
	fm.toasts.Show("New game", ToastInfo, 1500*time.Millisecond)
}
