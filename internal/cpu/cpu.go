package cpu

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/FabianRolfMatthiasNoll/Chip8Emulator/internal/bus"
	"github.com/retroenv/retrogolib/log"
)

const (
	NumRegisters = 16
	NumKeys      = 16
	StackSize    = 16
	numRPLFlags  = 8
)

// Beeper is the audio capability driven by the sound timer. Both calls must
// be idempotent.
type Beeper interface {
	StartBeep()
	StopBeep()
}

type nopBeeper struct{}

func (nopBeeper) StartBeep() {}
func (nopBeeper) StopBeep() {}

// CPU implements the CHIP-8 / SUPER-CHIP interpreter.
type CPU struct {
	V  [NumRegisters]byte
	I  uint16
	PC uint16
	DT byte // delay timer
	ST byte // sound timer

	stack [StackSize]uint16
	sp    int

	keys     [NumKeys]bool
	prevKeys [NumKeys]bool

	rpl [numRPLFlags]byte

	fb *framebuffer

	variant Variant
	quirks  Quirks

	exited bool
	fault  *Fault

	bus    *bus.Bus
	audio  Beeper
	rng    *rand.Rand
	logger *log.Logger
	warned map[uint16]bool
}

// New creates a CPU for variant in its reset state. audio may be nil.
func New(audio Beeper, variant Variant) *CPU {
	if audio == nil {
		audio = nopBeeper{}
	}
	seed := uint64(time.Now().UnixNano())
	c := &CPU{
		bus:     bus.New(),
		audio:   audio,
		variant: variant,
		quirks:  QuirksFor(variant),
		rng:     rand.New(rand.NewPCG(seed, seed>>1)),
		warned:  make(map[uint16]bool),
	}
	c.Reset()
	return c
}

// SetLogger sets the logger used for diagnostics. A nil logger disables them.
func (c *CPU) SetLogger(l *log.Logger) { c.logger = l }

// SetRand replaces the random source used by Cxnn.
func (c *CPU) SetRand(r *rand.Rand) { c.rng = r }

// Bus exposes memory for tests and tools.
func (c *CPU) Bus() *bus.Bus { return c.bus }

func (c *CPU) Variant() Variant { return c.variant }
func (c *CPU) Quirks() Quirks { return c.quirks }

// Exited reports whether the program executed the exit opcode.
func (c *CPU) Exited() bool { return c.exited }

// Fault returns the fatal error that halted the CPU, if any.
func (c *CPU) Fault() *Fault { return c.fault }

// SP returns the number of return addresses on the stack.
func (c *CPU) SP() int { return c.sp }

// Reset returns the machine to power-on state. Variant and quirks are kept.
func (c *CPU) Reset() {
	c.V = [NumRegisters]byte{}
	c.I = 0
	c.PC = bus.LoadAddr
	c.DT, c.ST = 0, 0
	c.stack = [StackSize]uint16{}
	c.sp = 0
	c.keys = [NumKeys]bool{}
	c.prevKeys = [NumKeys]bool{}
	c.rpl = [numRPLFlags]byte{}
	c.fb = newFramebuffer(LoRes)
	c.exited = false
	c.fault = nil
	c.bus.Reset()
	c.audio.StopBeep()
}

// Load copies program into memory at the load address.
func (c *CPU) Load(program []byte) error {
	if err := c.bus.LoadProgram(program); err != nil {
		return fmt.Errorf("load program: %w", err)
	}
	return nil
}

// Step executes one instruction. It returns a *Fault on a fatal error; the
// CPU then stays halted. After the exit opcode Step does nothing.
func (c *CPU) Step() error {
	if c.fault != nil {
		return c.fault
	}
	if c.exited {
		return nil
	}

	pc := c.PC
	op := opcode(c.bus.ReadWord(pc))
	c.PC += 2

	if err := families[op.family()](c, op); err != nil {
		c.PC = pc
		c.fault = &Fault{Opcode: uint16(op), PC: pc, Err: err}
		return c.fault
	}
	return nil
}

// TickTimers runs one 60 Hz timer period. The beeper is asked to start on
// every tick the sound timer is nonzero and to stop once it is zero.
func (c *CPU) TickTimers() {
	if c.DT > 0 {
		c.DT--
	}
	if c.ST > 0 {
		c.audio.StartBeep()
		c.ST--
	}
	if c.ST == 0 {
		c.audio.StopBeep()
	}
}

// SetKey records the state of key (0-15). The previous state is kept for
// release-edge detection by Fx0A.
func (c *CPU) SetKey(key int, pressed bool) {
	if key < 0 || key >= NumKeys {
		return
	}
	c.prevKeys[key] = c.keys[key]
	c.keys[key] = pressed
}

// Display returns a copy of the framebuffer.
func (c *CPU) Display() Display { return c.fb.snapshot() }

// Mode returns the current resolution.
func (c *CPU) Mode() DisplayMode { return c.fb.mode }

func (c *CPU) push(addr uint16) error {
	if c.sp >= StackSize {
		return ErrStackOverflow
	}
	c.stack[c.sp] = addr
	c.sp++
	return nil
}

func (c *CPU) pop() (uint16, error) {
	if c.sp == 0 {
		return 0, ErrStackUnderflow
	}
	c.sp--
	return c.stack[c.sp], nil
}

// reserved logs a recognized opcode without defined behaviour, once per opcode.
func (c *CPU) reserved(op opcode) {
	if c.warned[uint16(op)] {
		return
	}
	c.warned[uint16(op)] = true
	if c.logger != nil {
		c.logger.Warn("Ignoring unimplemented opcode",
			log.String("opcode", fmt.Sprintf("0x%04X", uint16(op))),
			log.String("address", fmt.Sprintf("0x%03X", c.PC-2)))
	}
}
