package cpu

import (
	"fmt"
	"strings"
)

// Variant selects the instruction set the CPU interprets.
type Variant int

const (
	Chip8 Variant = iota
	SuperChip
)

func (v Variant) String() string {
	switch v {
	case Chip8:
		return "CHIP-8"
	case SuperChip:
		return "SUPER-CHIP"
	default:
		return fmt.Sprintf("Variant(%d)", int(v))
	}
}

// ParseVariant accepts the names used on the command line ("chip8", "schip", ...).
func ParseVariant(s string) (Variant, error) {
	switch strings.ToLower(strings.ReplaceAll(s, "-", "")) {
	case "chip8", "c8", "":
		return Chip8, nil
	case "schip", "superchip", "sc8":
		return SuperChip, nil
	}
	return 0, fmt.Errorf("unknown variant %q (want chip8 or schip)", s)
}

// Quirks are the per-variant behaviour switches. Instruction bodies consult
// these fields and never the Variant itself.
type Quirks struct {
	ResetFlagOnLogic     bool // 8xy1/8xy2/8xy3 zero VF afterwards
	IncrementIndexOnBulk bool // Fx55/Fx65 leave I at I+x+1
	ShiftUsesVY          bool // 8xy6/8xyE shift VY into VX instead of VX in place
	JumpUsesVX           bool // Bnnn adds VX (x = high nibble of nnn) instead of V0
	Extended             bool // SUPER-CHIP opcodes and high-resolution mode
}

var variantQuirks = map[Variant]Quirks{
	Chip8: {
		ResetFlagOnLogic:     true,
		IncrementIndexOnBulk: true,
		ShiftUsesVY:          true,
	},
	SuperChip: {
		JumpUsesVX: true,
		Extended:   true,
	},
}

// QuirksFor returns the switch set of v. Unknown variants get the CHIP-8 set.
func QuirksFor(v Variant) Quirks {
	if q, ok := variantQuirks[v]; ok {
		return q
	}
	return variantQuirks[Chip8]
}
