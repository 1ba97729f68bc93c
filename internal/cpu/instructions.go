package cpu

import (
	"github.com/FabianRolfMatthiasNoll/Chip8Emulator/internal/bus"
)

func b2u(b bool) byte {
	if b {
		return 1
	}
	return 0
}

func (c *CPU) skipIf(cond bool) {
	if cond {
		c.PC += 2
	}
}

// 0xxx: display control, subroutine return and the SUPER-CHIP screen ops.
func (c *CPU) execSystem(op opcode) error {
	switch {
	case op == 0x0000:
		return nil
	case op == 0x00E0:
		c.fb.clear()
		return nil
	case op == 0x00EE:
		addr, err := c.pop()
		if err != nil {
			return err
		}
		c.PC = addr
		return nil
	}

	extended := op&0xFFF0 == 0x00C0 || (op >= 0x00FB && op <= 0x00FF)
	if !extended {
		return ErrUnknownOpcode
	}
	if !c.quirks.Extended {
		return ErrUnsupported
	}
	switch op {
	case 0x00FD:
		c.exited = true
	case 0x00FE:
		c.fb = newFramebuffer(LoRes)
	case 0x00FF:
		c.fb = newFramebuffer(HiRes)
	default: // 00Cn, 00FB, 00FC scrolling
		c.reserved(op)
	}
	return nil
}

func (c *CPU) execJump(op opcode) error {
	c.PC = op.nnn()
	return nil
}

func (c *CPU) execCall(op opcode) error {
	if err := c.push(c.PC); err != nil {
		return err
	}
	c.PC = op.nnn()
	return nil
}

func (c *CPU) execSkipEqImm(op opcode) error {
	c.skipIf(c.V[op.x()] == op.nn())
	return nil
}

func (c *CPU) execSkipNeImm(op opcode) error {
	c.skipIf(c.V[op.x()] != op.nn())
	return nil
}

func (c *CPU) execSkipEqReg(op opcode) error {
	if op.n() != 0 {
		return ErrUnknownOpcode
	}
	c.skipIf(c.V[op.x()] == c.V[op.y()])
	return nil
}

func (c *CPU) execSkipNeReg(op opcode) error {
	if op.n() != 0 {
		return ErrUnknownOpcode
	}
	c.skipIf(c.V[op.x()] != c.V[op.y()])
	return nil
}

func (c *CPU) execLoadImm(op opcode) error {
	c.V[op.x()] = op.nn()
	return nil
}

// 7xnn never touches VF.
func (c *CPU) execAddImm(op opcode) error {
	c.V[op.x()] += op.nn()
	return nil
}

func (c *CPU) execALU(op opcode) error {
	fn, ok := alu[op.n()]
	if !ok {
		return ErrUnknownOpcode
	}
	fn(c, op.x(), op.y())
	return nil
}

// ALU operations. Every flag result is written to VF after the result
// register so that x == 0xF or y == 0xF ends with the flag.

func (c *CPU) ld(x, y int) { c.V[x] = c.V[y] }

func (c *CPU) or(x, y int) {
	c.V[x] |= c.V[y]
	c.resetFlagAfterLogic()
}

func (c *CPU) and(x, y int) {
	c.V[x] &= c.V[y]
	c.resetFlagAfterLogic()
}

func (c *CPU) xor(x, y int) {
	c.V[x] ^= c.V[y]
	c.resetFlagAfterLogic()
}

func (c *CPU) resetFlagAfterLogic() {
	if c.quirks.ResetFlagOnLogic {
		c.V[0xF] = 0
	}
}

func (c *CPU) add(x, y int) {
	sum := uint16(c.V[x]) + uint16(c.V[y])
	c.V[x] = byte(sum)
	c.V[0xF] = b2u(sum > 0xFF)
}

// VF is 1 when no borrow occurred.
func (c *CPU) sub(x, y int) {
	vx, vy := c.V[x], c.V[y]
	c.V[x] = vx - vy
	c.V[0xF] = b2u(vx >= vy)
}

func (c *CPU) subn(x, y int) {
	vx, vy := c.V[x], c.V[y]
	c.V[x] = vy - vx
	c.V[0xF] = b2u(vy >= vx)
}

func (c *CPU) shiftSource(x, y int) byte {
	if c.quirks.ShiftUsesVY {
		return c.V[y]
	}
	return c.V[x]
}

func (c *CPU) shr(x, y int) {
	v := c.shiftSource(x, y)
	c.V[x] = v >> 1
	c.V[0xF] = v & 0x01
}

func (c *CPU) shl(x, y int) {
	v := c.shiftSource(x, y)
	c.V[x] = v << 1
	c.V[0xF] = v >> 7
}

func (c *CPU) execLoadIndex(op opcode) error {
	c.I = op.nnn()
	return nil
}

func (c *CPU) execJumpOffset(op opcode) error {
	reg := 0
	if c.quirks.JumpUsesVX {
		reg = op.x()
	}
	c.PC = op.nnn() + uint16(c.V[reg])
	return nil
}

func (c *CPU) execRandom(op opcode) error {
	c.V[op.x()] = byte(c.rng.Uint32()) & op.nn()
	return nil
}

// execDraw XORs a sprite from memory at I onto the framebuffer. The origin
// wraps around the screen, the sprite body is clipped at the edges.
func (c *CPU) execDraw(op opcode) error {
	fb := c.fb
	x0 := int(c.V[op.x()]) % fb.w
	y0 := int(c.V[op.y()]) % fb.h

	rows, wide := op.n(), false
	if rows == 0 && fb.mode == HiRes {
		rows, wide = 16, true
	}

	collision := false
	for r := 0; r < rows; r++ {
		py := y0 + r
		if py >= fb.h {
			break
		}
		var bits uint16
		width := 8
		if wide {
			bits = c.bus.ReadWord(c.I + uint16(2*r))
			width = 16
		} else {
			bits = uint16(c.bus.Read(c.I+uint16(r))) << 8
		}
		for col := 0; col < width; col++ {
			px := x0 + col
			if px >= fb.w {
				break
			}
			if bits&(0x8000>>col) == 0 {
				continue
			}
			if fb.toggle(px, py) {
				collision = true
			}
		}
	}
	c.V[0xF] = b2u(collision)
	return nil
}

func (c *CPU) execKeySkip(op opcode) error {
	key := c.V[op.x()] & 0x0F
	switch op.nn() {
	case 0x9E:
		c.skipIf(c.keys[key])
	case 0xA1:
		c.skipIf(!c.keys[key])
	default:
		return ErrUnknownOpcode
	}
	return nil
}

func (c *CPU) execMisc(op opcode) error {
	e, ok := misc[op.nn()]
	if !ok {
		return ErrUnknownOpcode
	}
	if e.extended && !c.quirks.Extended {
		return ErrUnsupported
	}
	e.fn(c, op.x())
	return nil
}

func (c *CPU) readDelay(x int) { c.V[x] = c.DT }
func (c *CPU) setDelay(x int) { c.DT = c.V[x] }
func (c *CPU) setSound(x int) { c.ST = c.V[x] }
func (c *CPU) addIndex(x int) { c.I += uint16(c.V[x]) }

// waitKey completes on a key release edge; otherwise it rewinds PC so the
// same instruction runs again on the next Step. The consumed edge is
// cleared so one release satisfies one wait.
func (c *CPU) waitKey(x int) {
	for k := 0; k < NumKeys; k++ {
		if c.prevKeys[k] && !c.keys[k] {
			c.prevKeys[k] = false
			c.V[x] = byte(k)
			return
		}
	}
	c.PC -= 2
}

func (c *CPU) loadGlyph(x int) { c.I = bus.FontAddress(c.V[x]) }
func (c *CPU) loadHiresGlyph(x int) { c.I = bus.HiresFontAddress(c.V[x]) }

func (c *CPU) bcd(x int) {
	v := c.V[x]
	c.bus.Write(c.I, v/100)
	c.bus.Write(c.I+1, (v/10)%10)
	c.bus.Write(c.I+2, v%10)
}

func (c *CPU) storeRegs(x int) {
	for i := 0; i <= x; i++ {
		c.bus.Write(c.I+uint16(i), c.V[i])
	}
	if c.quirks.IncrementIndexOnBulk {
		c.I += uint16(x) + 1
	}
}

func (c *CPU) loadRegs(x int) {
	for i := 0; i <= x; i++ {
		c.V[i] = c.bus.Read(c.I + uint16(i))
	}
	if c.quirks.IncrementIndexOnBulk {
		c.I += uint16(x) + 1
	}
}

// RPL user flags only exist for V0..V7.
func (c *CPU) storeFlags(x int) {
	copy(c.rpl[:], c.V[:min(x, numRPLFlags-1)+1])
}

func (c *CPU) loadFlags(x int) {
	copy(c.V[:], c.rpl[:min(x, numRPLFlags-1)+1])
}
