package emu

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/FabianRolfMatthiasNoll/Chip8Emulator/internal/cpu"
	"github.com/FabianRolfMatthiasNoll/Chip8Emulator/internal/rom"
	"github.com/FabianRolfMatthiasNoll/Chip8Emulator/internal/video"
	"github.com/retroenv/retrogolib/log"
)

var ErrNoROM = errors.New("no ROM loaded")

// Machine drives one CPU at frame granularity. All methods are safe for
// concurrent use.
type Machine struct {
	mu     sync.Mutex
	cfg    Config
	cpu    *cpu.CPU
	beeper cpu.Beeper
	logger *log.Logger
	rom    *rom.ROM
	fb     []byte // RGBA, sized for the current mode
	frames uint64
}

func New(cfg Config, beeper cpu.Beeper) *Machine {
	m := &Machine{cfg: cfg, beeper: beeper}
	m.cpu = m.newCPU()
	return m
}

func (m *Machine) newCPU() *cpu.CPU {
	c := cpu.New(m.beeper, m.cfg.Variant)
	c.SetLogger(m.logger)
	if m.cfg.Seed != 0 {
		c.SetRand(rand.New(rand.NewPCG(m.cfg.Seed, m.cfg.Seed^0x9E3779B97F4A7C15)))
	}
	return c
}

// SetLogger sets the logger for diagnostics and trace output.
func (m *Machine) SetLogger(l *log.Logger) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logger = l
	m.cpu.SetLogger(l)
}

// LoadROM resets the machine and copies r into memory.
func (m *Machine) LoadROM(r *rom.ROM) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.load(r)
}

func (m *Machine) load(r *rom.ROM) error {
	if r == nil {
		return ErrNoROM
	}
	m.cpu = m.newCPU()
	if err := m.cpu.Load(r.Data); err != nil {
		return fmt.Errorf("%s: %w", r.Name, err)
	}
	m.rom = r
	m.frames = 0
	if m.logger != nil {
		m.logger.Info("Loaded ROM",
			log.String("name", r.Name),
			log.Int("size", r.Size()),
			log.String("crc32", fmt.Sprintf("%08X", r.CRC32)),
			log.Stringer("variant", m.cfg.Variant))
	}
	return nil
}

// LoadROMFromFile replaces the current program with a ROM from disk.
func (m *Machine) LoadROMFromFile(path string) error {
	r, err := rom.Load(path)
	if err != nil {
		return err
	}
	return m.LoadROM(r)
}

// SetVariant switches the instruction set. A loaded ROM is restarted.
func (m *Machine) SetVariant(v cpu.Variant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cfg.Variant = v
	if m.rom == nil {
		m.cpu = m.newCPU()
		return nil
	}
	return m.load(m.rom)
}

// Reset restarts the current ROM from power-on state.
func (m *Machine) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.load(m.rom)
}

// StepFrame runs one 60 Hz frame: up to InstructionsPerFrame instructions
// followed by one timer tick. Execution stops early on exit or fault; the
// fault is returned and repeated on every later call.
func (m *Machine) StepFrame() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c := m.cpu
	if f := c.Fault(); f != nil {
		return f
	}
	if c.Exited() {
		return nil
	}
	n := m.cfg.instructionsPerFrame()
	for i := 0; i < n; i++ {
		if m.cfg.Trace {
			m.trace()
		}
		if err := c.Step(); err != nil {
			if m.logger != nil {
				m.logger.Error("CPU halted", err)
			}
			return err
		}
		if c.Exited() {
			if m.logger != nil {
				m.logger.Info("Program exited", log.Int("frame", int(m.frames)))
			}
			break
		}
	}
	c.TickTimers()
	m.frames++
	return nil
}

func (m *Machine) trace() {
	if m.logger == nil {
		return
	}
	c := m.cpu
	op := c.Bus().ReadWord(c.PC)
	m.logger.Debug(cpu.DisassembleWith(op, c.Quirks()),
		log.String("pc", fmt.Sprintf("%03X", c.PC)),
		log.String("op", fmt.Sprintf("%04X", op)),
		log.String("i", fmt.Sprintf("%03X", c.I)))
}

// SetKeys replaces the state of all 16 keys.
func (m *Machine) SetKeys(keys [cpu.NumKeys]bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, down := range keys {
		m.cpu.SetKey(k, down)
	}
}

func (m *Machine) SetKey(key int, pressed bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cpu.SetKey(key, pressed)
}

// Display returns a snapshot of the screen.
func (m *Machine) Display() cpu.Display {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cpu.Display()
}

// Framebuffer renders the screen as RGBA with the configured palette. The
// returned slice is reused by the next call.
func (m *Machine) Framebuffer() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fb = video.Render(m.cpu.Display(), m.cfg.Palette, m.fb)
	return m.fb
}

func (m *Machine) Palette() video.Palette { return m.cfg.Palette }

func (m *Machine) Exited() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cpu.Exited()
}

// Err returns the fault that halted the CPU, or nil.
func (m *Machine) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if f := m.cpu.Fault(); f != nil {
		return f
	}
	return nil
}

func (m *Machine) Variant() cpu.Variant {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cfg.Variant
}

func (m *Machine) InstructionsPerFrame() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cfg.instructionsPerFrame()
}

// ROMName returns the name of the loaded ROM, or "" when none is loaded.
func (m *Machine) ROMName() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.rom == nil {
		return ""
	}
	return m.rom.Name
}

// Frames returns the number of frames run since the ROM was loaded.
func (m *Machine) Frames() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.frames
}
