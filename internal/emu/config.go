package emu

import (
	"github.com/FabianRolfMatthiasNoll/Chip8Emulator/internal/cpu"
	"github.com/FabianRolfMatthiasNoll/Chip8Emulator/internal/video"
)

// Config contains settings that affect emulation behavior.
type Config struct {
	Variant              cpu.Variant
	InstructionsPerFrame int    // 0 picks the variant default
	Trace                bool   // log every executed instruction
	Seed                 uint64 // RNG seed for Cxnn; 0 seeds from the clock
	Palette              video.Palette
}

// Defaults returns the configuration used when no flags are given.
func Defaults() Config {
	return Config{
		Variant: cpu.Chip8,
		Palette: video.DefaultPalette,
	}
}

// DefaultInstructionsPerFrame is the per-variant execution speed at 60 frames
// per second.
func DefaultInstructionsPerFrame(v cpu.Variant) int {
	if v == cpu.SuperChip {
		return 30
	}
	return 11
}

func (c Config) instructionsPerFrame() int {
	if c.InstructionsPerFrame > 0 {
		return c.InstructionsPerFrame
	}
	return DefaultInstructionsPerFrame(c.Variant)
}
