package main

import (
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/FabianRolfMatthiasNoll/Chip8Emulator/internal/apu"
	"github.com/FabianRolfMatthiasNoll/Chip8Emulator/internal/cpu"
	"github.com/FabianRolfMatthiasNoll/Chip8Emulator/internal/emu"
	"github.com/FabianRolfMatthiasNoll/Chip8Emulator/internal/rom"
	"github.com/FabianRolfMatthiasNoll/Chip8Emulator/internal/ui"
	"github.com/FabianRolfMatthiasNoll/Chip8Emulator/internal/video"
	"github.com/retroenv/retrogolib/log"
)

type CLIFlags struct {
	ROMPath string
	Variant string
	Scale   int
	Title   string
	IPF     int
	Seed    uint64
	FG, BG  string
	Trace   bool
	Debug   bool
	ROMsDir string
	Mute    bool

	// headless
	Headless bool
	Frames   int
	PNGOut   string
	Expect   string // expected display CRC32 hex (e.g., "1a2b3c4d")
}

func parseFlags() CLIFlags {
	var f CLIFlags
	flag.StringVar(&f.ROMPath, "rom", "", "path to ROM (.ch8/.sc8); opens the ROM menu when empty")
	flag.StringVar(&f.Variant, "variant", "", "instruction set: chip8 or schip (default: guess from file name)")
	flag.IntVar(&f.Scale, "scale", 10, "window scale")
	flag.StringVar(&f.Title, "title", "chip8emu", "window title")
	flag.IntVar(&f.IPF, "ipf", 0, "instructions per frame (0: 11 for CHIP-8, 30 for SUPER-CHIP)")
	flag.Uint64Var(&f.Seed, "seed", 0, "random number seed (0: time based)")
	flag.StringVar(&f.FG, "fg", "FFFFFF", "foreground color RRGGBB")
	flag.StringVar(&f.BG, "bg", "000000", "background color RRGGBB")
	flag.BoolVar(&f.Trace, "trace", false, "log every executed instruction (needs -debug)")
	flag.BoolVar(&f.Debug, "debug", false, "enable debug logging")
	flag.StringVar(&f.ROMsDir, "roms", "roms", "directory listed by the ROM menu")
	flag.BoolVar(&f.Mute, "mute", false, "start with sound off")

	// headless options
	flag.BoolVar(&f.Headless, "headless", false, "run without a window")
	flag.IntVar(&f.Frames, "frames", 300, "frames to run in headless mode")
	flag.StringVar(&f.PNGOut, "outpng", "", "write last display to PNG at path")
	flag.StringVar(&f.Expect, "expect", "", "assert display CRC32 (hex)")
	flag.Parse()
	return f
}

func createLogger(debug bool) *log.Logger {
	cfg := log.DefaultConfig()
	if debug {
		cfg.Level = log.DebugLevel
	}
	return log.NewWithConfig(cfg)
}

func emuConfig(f CLIFlags) (emu.Config, error) {
	cfg := emu.Defaults()
	cfg.InstructionsPerFrame = f.IPF
	cfg.Trace = f.Trace
	cfg.Seed = f.Seed

	cfg.Variant = rom.GuessVariant(f.ROMPath)
	if f.Variant != "" {
		v, err := cpu.ParseVariant(f.Variant)
		if err != nil {
			return cfg, err
		}
		cfg.Variant = v
	}

	var err error
	if cfg.Palette.FG, err = video.ParseColor(f.FG); err != nil {
		return cfg, fmt.Errorf("-fg: %w", err)
	}
	if cfg.Palette.BG, err = video.ParseColor(f.BG); err != nil {
		return cfg, fmt.Errorf("-bg: %w", err)
	}
	return cfg, nil
}

func runHeadless(logger *log.Logger, m *emu.Machine, frames int, pngPath, expectCRC string) error {
	if frames <= 0 {
		frames = 1
	}

	start := time.Now()
	ran := 0
	for ran < frames && !m.Exited() {
		if err := m.StepFrame(); err != nil {
			return err
		}
		ran++
	}
	dur := time.Since(start)

	d := m.Display()
	crc := video.Checksum(d)
	logger.Info("Headless run finished",
		log.Int("frames", ran),
		log.String("elapsed", dur.Truncate(time.Millisecond).String()),
		log.String("mode", d.Mode.String()),
		log.String("crc32", fmt.Sprintf("%08x", crc)))

	if pngPath != "" {
		if err := video.SavePNG(pngPath, d, m.Palette(), 1); err != nil {
			return fmt.Errorf("write PNG: %w", err)
		}
		logger.Info("Wrote screenshot", log.String("path", pngPath))
	}

	if expectCRC != "" {
		// allow with/without 0x, upper/lowercase
		want := strings.TrimPrefix(strings.ToLower(expectCRC), "0x")
		got := fmt.Sprintf("%08x", crc)
		if got != want {
			return fmt.Errorf("checksum mismatch: got %s, want %s", got, want)
		}
	}
	return nil
}

func main() {
	f := parseFlags()
	logger := createLogger(f.Debug)

	cfg, err := emuConfig(f)
	if err != nil {
		logger.Fatal(err.Error())
	}

	var beeper cpu.Beeper = apu.Silent{}
	var tone *apu.APU
	if !f.Headless {
		tone = apu.New(apu.DefaultSampleRate)
		beeper = tone
	}

	m := emu.New(cfg, beeper)
	m.SetLogger(logger)
	if f.ROMPath != "" {
		if err := m.LoadROMFromFile(f.ROMPath); err != nil {
			logger.Fatal("Loading ROM failed: " + err.Error())
		}
	}

	if f.Headless {
		if f.ROMPath == "" {
			logger.Fatal("-rom is required with -headless")
		}
		if err := runHeadless(logger, m, f.Frames, f.PNGOut, f.Expect); err != nil {
			logger.Fatal("Headless run failed: " + err.Error())
		}
		return
	}

	uiCfg := ui.Config{
		Title:   f.Title,
		Scale:   f.Scale,
		ROMsDir: f.ROMsDir,
		Muted:   f.Mute,
	}
	app := ui.NewApp(uiCfg, m, tone)
	app.SetLogger(logger)
	if err := app.Run(); err != nil {
		logger.Fatal("Window closed with error: " + err.Error())
	}
}
