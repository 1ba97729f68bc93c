package rom

import (
	"path/filepath"
	"strings"

	"github.com/FabianRolfMatthiasNoll/Chip8Emulator/internal/cpu"
)

// superChipTitles are normalized names of well-known SUPER-CHIP programs.
var superChipTitles = map[string]bool{
	"ALIEN":    true,
	"ANT":      true,
	"BLINKY":   true,
	"CAR":      true,
	"FIELD":    true,
	"JOUST":    true,
	"JOUST23":  true,
	"PIPER":    true,
	"SPACEFIG": true,
	"UBOAT":    true,
	"WORM3":    true,
}

// superChipMarkers catch collections that tag the variant in the file name.
var superChipMarkers = []string{"SCHIP", "SUPERCHIP", "SUPER-CHIP", "[SC]"}

// GuessVariant picks an instruction set from the file name of a ROM. It
// falls back to CHIP-8.
func GuessVariant(path string) cpu.Variant {
	base := filepath.Base(path)
	if strings.EqualFold(filepath.Ext(base), ".sc8") {
		return cpu.SuperChip
	}
	title := strings.ToUpper(strings.TrimSuffix(base, filepath.Ext(base)))
	if superChipTitles[title] {
		return cpu.SuperChip
	}
	for _, m := range superChipMarkers {
		if strings.Contains(title, m) {
			return cpu.SuperChip
		}
	}
	return cpu.Chip8
}
