package cpu

// opcode is one big-endian instruction word.
type opcode uint16

func (o opcode) family() int { return int(o >> 12) }
func (o opcode) x() int { return int(o>>8) & 0xF }
func (o opcode) y() int { return int(o>>4) & 0xF }
func (o opcode) n() int { return int(o) & 0xF }
func (o opcode) nn() byte { return byte(o) }
func (o opcode) nnn() uint16 { return uint16(o) & 0x0FFF }

// families dispatches on the leading nibble.
var families = [16]func(*CPU, opcode) error{
	0x0: (*CPU).execSystem,
	0x1: (*CPU).execJump,
	0x2: (*CPU).execCall,
	0x3: (*CPU).execSkipEqImm,
	0x4: (*CPU).execSkipNeImm,
	0x5: (*CPU).execSkipEqReg,
	0x6: (*CPU).execLoadImm,
	0x7: (*CPU).execAddImm,
	0x8: (*CPU).execALU,
	0x9: (*CPU).execSkipNeReg,
	0xA: (*CPU).execLoadIndex,
	0xB: (*CPU).execJumpOffset,
	0xC: (*CPU).execRandom,
	0xD: (*CPU).execDraw,
	0xE: (*CPU).execKeySkip,
	0xF: (*CPU).execMisc,
}

// alu holds the 8xyN operations, indexed by N.
var alu = map[int]func(*CPU, int, int){
	0x0: (*CPU).ld,
	0x1: (*CPU).or,
	0x2: (*CPU).and,
	0x3: (*CPU).xor,
	0x4: (*CPU).add,
	0x5: (*CPU).sub,
	0x6: (*CPU).shr,
	0x7: (*CPU).subn,
	0xE: (*CPU).shl,
}

// misc holds the Fxnn operations, indexed by nn. extended marks SUPER-CHIP only entries.
var misc = map[byte]struct {
	fn       func(*CPU, int)
	extended bool
}{
	0x07: {fn: (*CPU).readDelay},
	0x0A: {fn: (*CPU).waitKey},
	0x15: {fn: (*CPU).setDelay},
	0x18: {fn: (*CPU).setSound},
	0x1E: {fn: (*CPU).addIndex},
	0x29: {fn: (*CPU).loadGlyph},
	0x30: {fn: (*CPU).loadHiresGlyph, extended: true},
	0x33: {fn: (*CPU).bcd},
	0x55: {fn: (*CPU).storeRegs},
	0x65: {fn: (*CPU).loadRegs},
	0x75: {fn: (*CPU).storeFlags, extended: true},
	0x85: {fn: (*CPU).loadFlags, extended: true},
}
