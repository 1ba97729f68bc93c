package ui

import (
	"fmt"
	"image"
	"image/color"
	"path/filepath"
	"time"

	"github.com/FabianRolfMatthiasNoll/Chip8Emulator/internal/apu"
	"github.com/FabianRolfMatthiasNoll/Chip8Emulator/internal/cpu"
	"github.com/FabianRolfMatthiasNoll/Chip8Emulator/internal/emu"
	"github.com/FabianRolfMatthiasNoll/Chip8Emulator/internal/video"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/retroenv/retrogolib/log"
)

type App struct {
	cfg    Config
	m      *emu.Machine
	beeper *apu.APU
	player *audio.Player
	logger *log.Logger

	tex  *ebiten.Image
	dim  *ebiten.Image // menu/halt overlay, sized to the screen
	w, h int           // current display resolution

	paused bool
	halted string // reason shown when the CPU stopped

	// ROM menu
	showMenu bool
	romList  []string
	romSel   int
	romOff   int
	variant  cpu.Variant

	toastMsg   string
	toastUntil time.Time
}

// NewApp creates the window for m. beeper may be nil to run without sound.
func NewApp(cfg Config, m *emu.Machine, beeper *apu.APU) *App {
	cfg.Defaults()
	a := &App{
		cfg:     cfg,
		m:       m,
		beeper:  beeper,
		variant: m.Variant(),
	}
	d := m.Display()
	a.w, a.h = d.Width, d.Height
	ebiten.SetWindowTitle(a.title())
	ebiten.SetWindowSize(a.w*cfg.Scale, a.h*cfg.Scale)
	if m.ROMName() == "" {
		a.openMenu()
	}
	return a
}

func (a *App) SetLogger(l *log.Logger) { a.logger = l }

// Run opens the window and blocks until it is closed.
func (a *App) Run() error {
	if err := a.startAudio(); err != nil {
		// run silently rather than refusing to start
		a.logWarn("Audio unavailable", err)
	}
	return ebiten.RunGame(a)
}

func (a *App) title() string {
	if name := a.m.ROMName(); name != "" {
		return fmt.Sprintf("%s - [%s] %s", a.cfg.Title, name, a.m.Variant())
	}
	return a.cfg.Title
}

func (a *App) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		if a.showMenu && a.m.ROMName() != "" {
			a.showMenu = false
			return nil
		}
		return ebiten.Termination
	}
	if a.showMenu {
		a.updateRomMenu()
		return nil
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyF1) {
		a.openMenu()
		return nil
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		a.paused = !a.paused
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF2) {
		a.reset()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF12) {
		a.saveScreenshot()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyM) {
		a.toggleMute()
	}

	a.m.SetKeys(pollKeys())

	step := !a.paused || inpututil.IsKeyJustPressed(ebiten.KeyN)
	if step && a.halted == "" {
		a.stepFrame()
	}
	a.syncResolution()
	return nil
}

func (a *App) stepFrame() {
	err := a.m.StepFrame()
	switch {
	case err != nil:
		a.halted = err.Error()
	case a.m.Exited():
		a.halted = "Program exited"
	default:
		return
	}
	if a.beeper != nil {
		a.beeper.StopBeep()
	}
}

func (a *App) reset() {
	if err := a.m.Reset(); err != nil {
		a.toast("Reset failed: " + err.Error())
		return
	}
	a.halted = ""
	a.toast("Reset")
}

// syncResolution resizes the window when the program switches display mode.
func (a *App) syncResolution() {
	d := a.m.Display()
	if d.Width == a.w && d.Height == a.h {
		return
	}
	a.w, a.h = d.Width, d.Height
	a.tex = nil
	ebiten.SetWindowSize(a.w*a.cfg.Scale, a.h*a.cfg.Scale)
}

func (a *App) Draw(screen *ebiten.Image) {
	if a.tex == nil {
		a.tex = ebiten.NewImage(a.w, a.h)
	}
	fb := a.m.Framebuffer()
	if len(fb) == a.w*a.h*4 {
		a.tex.WritePixels(fb)
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(a.cfg.Scale), float64(a.cfg.Scale))
	screen.DrawImage(a.tex, op)

	if a.showMenu {
		a.drawDim(screen)
		a.drawRomMenu(screen)
		return
	}
	switch {
	case a.halted != "":
		a.drawDim(screen)
		ebitenutil.DebugPrintAt(screen, "Halted: "+a.halted, 10, 10)
		ebitenutil.DebugPrintAt(screen, "F2: Reset  F1: ROMs  Esc: Quit", 10, 24)
	case a.paused:
		ebitenutil.DebugPrintAt(screen, "Paused (N: step frame)", 10, 10)
	}
	a.drawToast(screen)
}

// drawDim darkens the game view. The overlay is rebuilt only when the
// screen size changes.
func (a *App) drawDim(screen *ebiten.Image) {
	b := screen.Bounds()
	if a.dim == nil || !sameSize(a.dim.Bounds(), b) {
		if a.dim != nil {
			a.dim.Deallocate()
		}
		a.dim = ebiten.NewImage(b.Dx(), b.Dy())
		a.dim.Fill(color.RGBA{0, 0, 0, 160})
	}
	screen.DrawImage(a.dim, nil)
}

func sameSize(a, b image.Rectangle) bool {
	return a.Dx() == b.Dx() && a.Dy() == b.Dy()
}

func (a *App) Layout(outW, outH int) (int, int) {
	return a.w * a.cfg.Scale, a.h * a.cfg.Scale
}

func (a *App) saveScreenshot() {
	name := a.m.ROMName()
	if name == "" {
		name = "screen"
	}
	ts := time.Now().Format("20060102_150405")
	path := filepath.Join(a.cfg.ShotDir, fmt.Sprintf("%s_%s.png", name, ts))
	if err := video.SavePNG(path, a.m.Display(), a.m.Palette(), a.cfg.Scale); err != nil {
		a.toast("Screenshot failed: " + err.Error())
		return
	}
	a.toast("Saved " + filepath.Base(path))
}

func (a *App) toast(msg string) {
	a.toastMsg = msg
	a.toastUntil = time.Now().Add(2 * time.Second)
	if a.logger != nil {
		a.logger.Debug(msg)
	}
}

func (a *App) drawToast(screen *ebiten.Image) {
	if a.toastMsg == "" || time.Now().After(a.toastUntil) {
		return
	}
	ebitenutil.DebugPrintAt(screen, a.toastMsg, 10, screen.Bounds().Dy()-20)
}

func (a *App) logWarn(msg string, err error) {
	if a.logger != nil {
		a.logger.Warn(msg, log.Err(err))
	}
}
