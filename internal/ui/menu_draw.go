package ui

import (
	"fmt"
	"path/filepath"

	"github.com/FabianRolfMatthiasNoll/Chip8Emulator/internal/cpu"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// ebitenutil's debug font is 6 pixels wide.
const glyphWidth = 6

func (a *App) maxCharsForText(x int) int {
	return max((a.w*a.cfg.Scale-x)/glyphWidth, 1)
}

func truncateText(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}

func (a *App) drawRomMenu(screen *ebiten.Image) {
	maxChars := a.maxCharsForText(10)
	ebitenutil.DebugPrintAt(screen, truncateText("Select ROM (Enter: load, Esc: back/quit)", maxChars), 10, 10)

	c8, sc := " ", " "
	if a.variant == cpu.SuperChip {
		sc = "*"
	} else {
		c8 = "*"
	}
	mode := fmt.Sprintf("[%s] 1: CHIP-8   [%s] 2: SUPER-CHIP", c8, sc)
	ebitenutil.DebugPrintAt(screen, truncateText(mode, maxChars), 10, 24)
	ebitenutil.DebugPrintAt(screen, truncateText("Dir: "+a.cfg.ROMsDir, maxChars), 10, 38)

	if len(a.romList) == 0 {
		ebitenutil.DebugPrintAt(screen, "No ROMs found", 10, menuBaseY)
		return
	}
	rows := a.menuRows()
	end := min(a.romOff+rows, len(a.romList))
	for i, p := range a.romList[a.romOff:end] {
		prefix := "  "
		if a.romOff+i == a.romSel {
			prefix = "> "
		}
		name := truncateText(filepath.Base(p), maxChars-2)
		ebitenutil.DebugPrintAt(screen, prefix+name, 10, menuBaseY+i*lineHeight)
	}
	// scroll indicators
	if a.romOff > 0 {
		ebitenutil.DebugPrintAt(screen, "^", 2, menuBaseY)
	}
	if end < len(a.romList) {
		ebitenutil.DebugPrintAt(screen, "v", 2, menuBaseY+(rows-1)*lineHeight)
	}
}
