package cpu

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/FabianRolfMatthiasNoll/Chip8Emulator/internal/bus"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

func TestALU_Arithmetic(t *testing.T) {
	tests := []struct {
		name   string
		op     byte // low nibble of 8xyN
		vx, vy byte
		want   byte
		flag   byte
	}{
		{"add no carry", 0x4, 200, 55, 255, 0},
		{"add carry", 0x4, 200, 56, 0, 1},
		{"add carry wraps", 0x4, 0xFF, 0xFF, 0xFE, 1},
		{"sub no borrow", 0x5, 10, 3, 7, 1},
		{"sub equal operands", 0x5, 9, 9, 0, 1},
		{"sub borrow", 0x5, 3, 10, 249, 0},
		{"subn no borrow", 0x7, 3, 10, 7, 1},
		{"subn borrow", 0x7, 10, 3, 249, 0},
		{"or", 0x1, 0xF0, 0x0F, 0xFF, 0},
		{"and", 0x2, 0xF3, 0x3F, 0x33, 0},
		{"xor", 0x3, 0xFF, 0x0F, 0xF0, 0},
		{"ld", 0x0, 0x12, 0x34, 0x34, 0x77},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newCPUWithProgram(t, Chip8, 0x81, 0x20|tt.op)
			c.V[1], c.V[2], c.V[0xF] = tt.vx, tt.vy, 0x77
			assert.NoError(t, c.Step())
			assert.Equal(t, tt.want, c.V[1])
			assert.Equal(t, tt.flag, c.V[0xF])
		})
	}
}

func TestALU_FlagWrittenLast(t *testing.T) {
	// ADD VF, V1 with a carry: VF must end up as the flag, not the sum
	c := newCPUWithProgram(t, Chip8, 0x8F, 0x14)
	c.V[0xF], c.V[1] = 0xF0, 0x20
	assert.NoError(t, c.Step())
	assert.Equal(t, byte(1), c.V[0xF])

	// SUB VF, V1 without borrow
	c = newCPUWithProgram(t, Chip8, 0x8F, 0x15)
	c.V[0xF], c.V[1] = 0x30, 0x10
	assert.NoError(t, c.Step())
	assert.Equal(t, byte(1), c.V[0xF])

	// SHR VF on SUPER-CHIP shifts VF in place, flag overwrites the result
	c = newCPUWithProgram(t, SuperChip, 0x8F, 0x06)
	c.V[0xF] = 0x02
	assert.NoError(t, c.Step())
	assert.Equal(t, byte(0), c.V[0xF])
}

func TestALU_LogicFlagQuirk(t *testing.T) {
	for _, v := range []Variant{Chip8, SuperChip} {
		c := newCPUWithProgram(t, v, 0x81, 0x21)
		c.V[1], c.V[2], c.V[0xF] = 0x01, 0x02, 0x55
		assert.NoError(t, c.Step())
		assert.Equal(t, byte(0x03), c.V[1])
		if QuirksFor(v).ResetFlagOnLogic {
			assert.Equal(t, byte(0), c.V[0xF], v.String())
		} else {
			assert.Equal(t, byte(0x55), c.V[0xF], v.String())
		}
	}
}

func TestALU_ShiftQuirk(t *testing.T) {
	tests := []struct {
		name    string
		variant Variant
		op      byte
		want    byte
		flag    byte
	}{
		// V1 = 0x81, V2 = 0x06
		{"chip8 shr uses vy", Chip8, 0x6, 0x03, 0},
		{"chip8 shl uses vy", Chip8, 0xE, 0x0C, 0},
		{"schip shr in place", SuperChip, 0x6, 0x40, 1},
		{"schip shl in place", SuperChip, 0xE, 0x02, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newCPUWithProgram(t, tt.variant, 0x81, 0x20|tt.op)
			c.V[1], c.V[2] = 0x81, 0x06
			assert.NoError(t, c.Step())
			assert.Equal(t, tt.want, c.V[1])
			assert.Equal(t, tt.flag, c.V[0xF])
		})
	}
}

func TestSkips(t *testing.T) {
	tests := []struct {
		name string
		code []byte
		skip bool
	}{
		{"SE imm taken", []byte{0x31, 0x05}, true},
		{"SE imm not taken", []byte{0x31, 0x06}, false},
		{"SNE imm taken", []byte{0x41, 0x06}, true},
		{"SNE imm not taken", []byte{0x41, 0x05}, false},
		{"SE reg taken", []byte{0x51, 0x20}, true},
		{"SE reg not taken", []byte{0x51, 0x30}, false},
		{"SNE reg taken", []byte{0x91, 0x30}, true},
		{"SNE reg not taken", []byte{0x91, 0x20}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newCPUWithProgram(t, Chip8, tt.code...)
			c.V[1], c.V[2], c.V[3] = 5, 5, 6
			assert.NoError(t, c.Step())
			want := uint16(0x202)
			if tt.skip {
				want = 0x204
			}
			assert.Equal(t, want, c.PC)
		})
	}
}

func TestAddImmediateKeepsFlag(t *testing.T) {
	c := newCPUWithProgram(t, Chip8, 0x71, 0x02)
	c.V[1], c.V[0xF] = 0xFF, 0x09
	assert.NoError(t, c.Step())
	assert.Equal(t, byte(0x01), c.V[1])
	assert.Equal(t, byte(0x09), c.V[0xF])
}

func TestJumpOffsetQuirk(t *testing.T) {
	// B3 00: jump to 0x300 plus V0 or V3
	for _, tt := range []struct {
		variant Variant
		want    uint16
	}{
		{Chip8, 0x301},
		{SuperChip, 0x303},
	} {
		c := newCPUWithProgram(t, tt.variant, 0xB3, 0x00)
		c.V[0], c.V[3] = 1, 3
		assert.NoError(t, c.Step())
		assert.Equal(t, tt.want, c.PC, tt.variant.String())
	}
}

func TestRandomIsMasked(t *testing.T) {
	c := newCPUWithProgram(t, Chip8,
		0xC1, 0x0F,
		0xC2, 0x00,
	)
	c.SetRand(rand.New(rand.NewPCG(1, 2)))
	assert.NoError(t, c.Step())
	assert.NoError(t, c.Step())
	assert.Equal(t, byte(0), c.V[1]&0xF0)
	assert.Equal(t, byte(0), c.V[2])
}

func TestRandomIsDeterministicForSeed(t *testing.T) {
	run := func() byte {
		c := newCPUWithProgram(t, Chip8, 0xC1, 0xFF)
		c.SetRand(rand.New(rand.NewPCG(42, 7)))
		assert.NoError(t, c.Step())
		return c.V[1]
	}
	assert.Equal(t, run(), run())
}

func TestBCD(t *testing.T) {
	tests := []struct {
		value byte
		want  [3]byte
	}{
		{255, [3]byte{2, 5, 5}},
		{7, [3]byte{0, 0, 7}},
		{100, [3]byte{1, 0, 0}},
		{42, [3]byte{0, 4, 2}},
	}

	for _, tt := range tests {
		c := newCPUWithProgram(t, Chip8, 0xF1, 0x33)
		c.V[1] = tt.value
		c.I = 0x300
		assert.NoError(t, c.Step())
		got := [3]byte{c.Bus().Read(0x300), c.Bus().Read(0x301), c.Bus().Read(0x302)}
		assert.Equal(t, tt.want, got)
		assert.Equal(t, uint16(0x300), c.I)
	}
}

func TestBulkTransferQuirk(t *testing.T) {
	tests := []struct {
		variant Variant
		wantI   uint16
	}{
		{Chip8, 0x303},
		{SuperChip, 0x300},
	}

	for _, tt := range tests {
		t.Run(tt.variant.String(), func(t *testing.T) {
			// LD [I], V2 ; LD I, 0x300 ; LD V2, [I]
			c := newCPUWithProgram(t, tt.variant, 0xF2, 0x55, 0xA3, 0x00, 0xF2, 0x65)
			c.I = 0x300
			c.V[0], c.V[1], c.V[2], c.V[3] = 0xAA, 0xBB, 0xCC, 0xDD
			assert.NoError(t, c.Step())
			assert.Equal(t, tt.wantI, c.I)
			assert.Equal(t, byte(0xCC), c.Bus().Read(0x302))
			assert.Equal(t, byte(0x00), c.Bus().Read(0x303))

			c.V = [NumRegisters]byte{}
			assert.NoError(t, c.Step())
			assert.NoError(t, c.Step())
			assert.Equal(t, byte(0xAA), c.V[0])
			assert.Equal(t, byte(0xCC), c.V[2])
			assert.Equal(t, byte(0x00), c.V[3])
			assert.Equal(t, tt.wantI, c.I)
		})
	}
}

func TestTimerAndIndexOps(t *testing.T) {
	// LD DT,V1 ; LD ST,V2 ; LD V3,DT ; ADD I,V1 ; LD F,V4
	c := newCPUWithProgram(t, Chip8,
		0xF1, 0x15,
		0xF2, 0x18,
		0xF3, 0x07,
		0xF1, 0x1E,
		0xF4, 0x29,
	)
	c.V[1], c.V[2], c.V[4] = 0x10, 0x20, 0x0A
	c.I = 0x100
	mustStep(t, c, 3)
	assert.Equal(t, byte(0x10), c.DT)
	assert.Equal(t, byte(0x20), c.ST)
	assert.Equal(t, byte(0x10), c.V[3])

	assert.NoError(t, c.Step())
	assert.Equal(t, uint16(0x110), c.I)
	assert.NoError(t, c.Step())
	assert.Equal(t, bus.FontAddress(0xA), c.I)
}

func TestHiresGlyphAndFlags(t *testing.T) {
	// LD HF,V1 ; LD R,V2 ; LD V2,R
	c := newCPUWithProgram(t, SuperChip, 0xF1, 0x30, 0xF2, 0x75, 0xF2, 0x85)
	c.V[1] = 7
	c.V[0], c.V[2] = 0x11, 0x33
	assert.NoError(t, c.Step())
	assert.Equal(t, bus.HiresFontAddress(7), c.I)

	assert.NoError(t, c.Step())
	c.V[0], c.V[1], c.V[2] = 0, 0, 0
	assert.NoError(t, c.Step())
	assert.Equal(t, byte(0x11), c.V[0])
	assert.Equal(t, byte(7), c.V[1])
	assert.Equal(t, byte(0x33), c.V[2])

	base := newCPUWithProgram(t, Chip8, 0xF1, 0x30)
	assert.True(t, errors.Is(base.Step(), ErrUnsupported))
}

func TestKeySkips(t *testing.T) {
	c := newCPUWithProgram(t, Chip8, 0xE1, 0x9E, 0x00, 0x00, 0xE1, 0xA1)
	c.V[1] = 0x0B
	c.SetKey(0xB, true)
	assert.NoError(t, c.Step())
	assert.Equal(t, uint16(0x204), c.PC)

	assert.NoError(t, c.Step())
	assert.Equal(t, uint16(0x206), c.PC)
}

func TestWaitKeyNeedsReleaseEdge(t *testing.T) {
	c := newCPUWithProgram(t, Chip8, 0xF5, 0x0A)

	// nothing pressed: re-executes
	for i := 0; i < 3; i++ {
		assert.NoError(t, c.Step())
		assert.Equal(t, uint16(0x200), c.PC)
	}

	// press only: still waiting
	c.SetKey(0x7, true)
	assert.NoError(t, c.Step())
	assert.Equal(t, uint16(0x200), c.PC)

	// held across polls: still waiting
	c.SetKey(0x7, true)
	assert.NoError(t, c.Step())
	assert.Equal(t, uint16(0x200), c.PC)

	// release edge completes the wait
	c.SetKey(0x7, false)
	assert.NoError(t, c.Step())
	assert.Equal(t, uint16(0x202), c.PC)
	assert.Equal(t, byte(0x7), c.V[5])
}

func TestWaitKeyEdgeConsumedOnce(t *testing.T) {
	// two key-waits in a row, one release between them
	c := newCPUWithProgram(t, Chip8, 0xF0, 0x0A, 0xF1, 0x0A)
	c.SetKey(0x3, true)
	c.SetKey(0x3, false)
	assert.NoError(t, c.Step())
	assert.Equal(t, uint16(0x202), c.PC)
	assert.NoError(t, c.Step())
	assert.Equal(t, uint16(0x202), c.PC)
}

func TestUnknownOpcodes(t *testing.T) {
	codes := [][]byte{
		{0x01, 0x23}, // SYS
		{0x51, 0x21},
		{0x91, 0x2F},
		{0x81, 0x28},
		{0xE1, 0x00},
		{0xF1, 0xFF},
	}
	for _, code := range codes {
		c := newCPUWithProgram(t, SuperChip, code...)
		assert.True(t, errors.Is(c.Step(), ErrUnknownOpcode), Disassemble(uint16(code[0])<<8|uint16(code[1])))
	}
}

func TestReservedOpcodeIsNoop(t *testing.T) {
	// SCD 4 ; SCR ; SCL ; SCD 4 again
	c := newCPUWithProgram(t, SuperChip, 0x00, 0xC4, 0x00, 0xFB, 0x00, 0xFC, 0x00, 0xC4)
	c.SetLogger(log.NewTestLogger(t))
	mustStep(t, c, 4)
	assert.Equal(t, uint16(0x208), c.PC)
	assert.Equal(t, 3, len(c.warned))

	base := newCPUWithProgram(t, Chip8, 0x00, 0xC4)
	assert.True(t, errors.Is(base.Step(), ErrUnsupported))
}

func TestMachineCodeCallIsFatal(t *testing.T) {
	for _, v := range []Variant{Chip8, SuperChip} {
		c := newCPUWithProgram(t, v, 0x01, 0x23)
		err := c.Step()
		assert.True(t, errors.Is(err, ErrUnknownOpcode), v.String())
		assert.Equal(t, uint16(0x200), c.PC, v.String())
		assert.True(t, c.Fault() != nil, v.String())
	}
}

func TestNopOpcode(t *testing.T) {
	c := newCPUWithProgram(t, Chip8, 0x00, 0x00)
	assert.NoError(t, c.Step())
	assert.Equal(t, uint16(0x202), c.PC)
}

func TestDisassemble(t *testing.T) {
	tests := []struct {
		op   uint16
		want string
	}{
		{0x00E0, "CLS"},
		{0x00EE, "RET"},
		{0x00C3, "SCD 3"},
		{0x00FF, "HIGH"},
		{0x1234, "JP 0x234"},
		{0x2ABC, "CALL 0xABC"},
		{0x3A12, "SE VA, 0x12"},
		{0x5120, "SE V1, V2"},
		{0x6F0F, "LD VF, 0x0F"},
		{0x8124, "ADD V1, V2"},
		{0x812E, "SHL V1, V2"},
		{0x8129, "DW 0x8129"},
		{0xA2F0, "LD I, 0x2F0"},
		{0xB300, "JP V0, 0x300"},
		{0xD015, "DRW V0, V1, 5"},
		{0xE39E, "SKP V3"},
		{0xF40A, "LD V4, K"},
		{0xF233, "LD B, V2"},
		{0xF565, "LD V5, [I]"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Disassemble(tt.op))
	}
}

func TestDisassembleJumpOffsetQuirk(t *testing.T) {
	assert.Equal(t, "JP V0, 0x300", DisassembleWith(0xB300, QuirksFor(Chip8)))
	assert.Equal(t, "JP V3, 0x300", DisassembleWith(0xB300, QuirksFor(SuperChip)))
	assert.Equal(t, "JP V0, 0x0F0", DisassembleWith(0xB0F0, QuirksFor(SuperChip)))
}
