package ui

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2/audio"
)

// SoundType represents different sound effects.
type SoundType int

const (
	SoundMove SoundType = iota
	SoundCapture
	SoundEnPassant
	SoundInvalid
	SoundReset
)

const sampleRate = 44100

// AudioManager handles sound effect playback.
type AudioManager struct {
	context *audio.Context
	sounds  map[SoundType][]byte
	enabled bool
	volume  float64
}

// NewAudioManager creates a new audio manager.
func NewAudioManager() *AudioManager {
	return &AudioManager{
		context: audio.NewContext(sampleRate),
		sounds:  generateSounds(),
		enabled: true,
		volume:  0.5,
	}
}

// generateSounds builds the procedural sound for each event.
func generateSounds() map[SoundType][]byte {
	click := func(freq, amp float64) func(t, _ float64) float64 {
		return func(t, _ float64) float64 {
			// Decaying sine plus a little hiss for a wooden knock
			noise := 0.3 * (math.Sin(t*sampleRate*0.3) + math.Sin(t*sampleRate*0.7))
			return (math.Sin(2*math.Pi*freq*t) + noise) * math.Exp(-t*30) * amp
		}
	}

	return map[SoundType][]byte{
		SoundMove:    synth(0.08, click(440, 0.3)),
		SoundCapture: synth(0.12, click(330, 0.5)),
		SoundEnPassant: concat(
			synth(0.06, click(400, 0.35)),
			silence(0.05),
			synth(0.06, click(440, 0.3)),
		),
		SoundInvalid: synth(0.1, func(t, progress float64) float64 {
			wave := math.Sin(2*math.Pi*150*t) + 0.3*math.Sin(4*math.Pi*150*t)
			return wave * (1 - progress) * 0.15
		}),
		SoundReset: synth(0.4, func(t, progress float64) float64 {
			env := 1.0
			switch {
			case progress < 0.1:
				env = progress / 0.1
			case progress > 0.7:
				env = (1 - progress) / 0.3
			}
			// C major triad
			sum := math.Sin(2*math.Pi*261.63*t) + math.Sin(2*math.Pi*329.63*t) + math.Sin(2*math.Pi*392.00*t)
			return sum / 3 * env * 0.4
		}),
	}
}

// synth renders wave as 16-bit little-endian stereo PCM. wave receives the
// time in seconds and the progress through the sound in [0, 1).
func synth(duration float64, wave func(t, progress float64) float64) []byte {
	samples := int(sampleRate * duration)
	data := make([]byte, samples*4)
	for i := range samples {
		t := float64(i) / sampleRate
		s := max(-1, min(1, wave(t, t/duration)))
		v := int16(s * math.MaxInt16)
		data[i*4] = byte(v)
		data[i*4+1] = byte(v >> 8)
		data[i*4+2] = byte(v)
		data[i*4+3] = byte(v >> 8)
	}
	return data
}

func silence(duration float64) []byte {
	return make([]byte, int(sampleRate*duration)*4)
}

func concat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// Play plays a sound effect.
func (am *AudioManager) Play(sound SoundType) {
	if !am.enabled {
		return
	}
	data, ok := am.sounds[sound]
	if !ok {
		return
	}

	// A new player per call lets sounds overlap
	player := am.context.NewPlayerFromBytes(data)
	player.SetVolume(am.volume)
	player.Play()
}

// SetEnabled enables or disables audio.
func (am *AudioManager) SetEnabled(enabled bool) {
	am.enabled = enabled
}

// IsEnabled returns whether audio is enabled.
func (am *AudioManager) IsEnabled() bool {
	return am.enabled
}
