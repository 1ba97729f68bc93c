package ui

import (
	"path/filepath"

	"github.com/FabianRolfMatthiasNoll/Chip8Emulator/internal/cpu"
	"github.com/FabianRolfMatthiasNoll/Chip8Emulator/internal/rom"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

const (
	menuBaseY  = 54
	lineHeight = 14
)

func (a *App) openMenu() {
	list, err := rom.Find(a.cfg.ROMsDir)
	if err != nil {
		a.logWarn("Scanning ROM directory failed", err)
	}
	a.romList = list
	a.romSel, a.romOff = 0, 0
	if len(list) > 0 {
		a.variant = rom.GuessVariant(list[0])
	}
	a.showMenu = true
}

func (a *App) menuRows() int {
	rows := (a.h*a.cfg.Scale - menuBaseY) / lineHeight
	return max(rows, 1)
}

func (a *App) updateRomMenu() {
	if inpututil.IsKeyJustPressed(ebiten.Key1) {
		a.variant = cpu.Chip8
	}
	if inpututil.IsKeyJustPressed(ebiten.Key2) {
		a.variant = cpu.SuperChip
	}
	n := len(a.romList)
	if n == 0 {
		return
	}

	moved := false
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowUp) && a.romSel > 0 {
		a.romSel--
		moved = true
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowDown) && a.romSel < n-1 {
		a.romSel++
		moved = true
	}
	if moved {
		a.variant = rom.GuessVariant(a.romList[a.romSel])
	}
	// keep the selection inside the visible window
	rows := a.menuRows()
	if a.romSel < a.romOff {
		a.romOff = a.romSel
	}
	if a.romSel >= a.romOff+rows {
		a.romOff = a.romSel - rows + 1
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		a.loadSelected()
	}
}

func (a *App) loadSelected() {
	path := a.romList[a.romSel]
	if err := a.m.SetVariant(a.variant); err != nil {
		a.toast("Variant switch failed: " + err.Error())
		return
	}
	if err := a.m.LoadROMFromFile(path); err != nil {
		a.toast("ROM load failed: " + err.Error())
		return
	}
	a.halted = ""
	a.paused = false
	a.showMenu = false
	ebiten.SetWindowTitle(a.title())
	a.toast("Loaded ROM: " + filepath.Base(path))
}
