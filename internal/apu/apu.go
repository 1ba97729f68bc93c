package apu

import (
	"encoding/binary"
	"sync"
	"sync/atomic"
)

const (
	DefaultSampleRate = 48000
	DefaultTone       = 440.0 // Hz
	DefaultVolume     = 0.2
)

// APU is a square-wave beeper. StartBeep/StopBeep are called from the
// emulation goroutine; Read is called from the audio player goroutine.
type APU struct {
	playing atomic.Bool
	muted   atomic.Bool

	mu         sync.Mutex
	sampleRate int
	tone       float64
	volume     float64
	phase      float64 // 0..1, advanced per output frame
}

// New returns a beeper producing 16-bit stereo PCM at sampleRate.
func New(sampleRate int) *APU {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	return &APU{
		sampleRate: sampleRate,
		tone:       DefaultTone,
		volume:     DefaultVolume,
	}
}

// SampleRate returns the output rate in Hz.
func (a *APU) SampleRate() int { return a.sampleRate }

// StartBeep starts the tone. Repeated calls while playing have no effect.
func (a *APU) StartBeep() { a.playing.Store(true) }

// StopBeep silences the tone. Repeated calls while stopped have no effect.
func (a *APU) StopBeep() { a.playing.Store(false) }

// Playing reports whether the tone is on.
func (a *APU) Playing() bool { return a.playing.Load() }

func (a *APU) SetMuted(m bool) { a.muted.Store(m) }
func (a *APU) Muted() bool { return a.muted.Load() }

// SetVolume sets the amplitude in [0, 1].
func (a *APU) SetVolume(v float64) {
	a.mu.Lock()
	a.volume = min(max(v, 0), 1)
	a.mu.Unlock()
}

// SetTone sets the square-wave frequency in Hz.
func (a *APU) SetTone(hz float64) {
	if hz <= 0 {
		return
	}
	a.mu.Lock()
	a.tone = hz
	a.mu.Unlock()
}

// Read fills p with little-endian int16 stereo frames (4 bytes each). It
// never blocks and always returns a whole number of frames, or silence for
// buffers shorter than one frame.
func (a *APU) Read(p []byte) (int, error) {
	if len(p) < 4 {
		clear(p)
		return len(p), nil
	}
	frames := len(p) / 4
	if !a.playing.Load() || a.muted.Load() {
		clear(p[:frames*4])
		return frames * 4, nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	amp := int16(a.volume * 32767)
	step := a.tone / float64(a.sampleRate)
	for i := 0; i < frames; i++ {
		s := amp
		if a.phase >= 0.5 {
			s = -amp
		}
		binary.LittleEndian.PutUint16(p[i*4:], uint16(s))
		binary.LittleEndian.PutUint16(p[i*4+2:], uint16(s))
		a.phase += step
		if a.phase >= 1 {
			a.phase -= 1
		}
	}
	return frames * 4, nil
}

// Silent is a Beeper for headless runs.
type Silent struct{}

func (Silent) StartBeep() {}
func (Silent) StopBeep() {}
