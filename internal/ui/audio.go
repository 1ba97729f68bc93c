package ui

import (
	"fmt"
	"time"

	"github.com/hajimehoshi/ebiten/v2/audio"
)

// startAudio streams the beeper through an ebiten audio player. Only one
// audio context may exist per process.
func (a *App) startAudio() error {
	if a.beeper == nil {
		return nil
	}
	a.beeper.SetVolume(a.cfg.Volume)
	a.beeper.SetMuted(a.cfg.Muted)

	ctx := audio.CurrentContext()
	if ctx == nil {
		ctx = audio.NewContext(a.beeper.SampleRate())
	}
	p, err := ctx.NewPlayer(a.beeper)
	if err != nil {
		return fmt.Errorf("audio player: %w", err)
	}
	// Short buffer keeps the beep in step with the sound timer.
	p.SetBufferSize(40 * time.Millisecond)
	p.Play()
	a.player = p
	return nil
}

func (a *App) toggleMute() {
	if a.beeper == nil {
		return
	}
	muted := !a.beeper.Muted()
	a.beeper.SetMuted(muted)
	if muted {
		a.toast("Sound off")
	} else {
		a.toast("Sound on")
	}
}
