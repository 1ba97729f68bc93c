package cpu

import "fmt"

// Disassemble renders op in the common Cowgod mnemonic syntax using the
// CHIP-8 quirks. Unknown words render as a DW data directive.
func Disassemble(op uint16) string {
	return DisassembleWith(op, QuirksFor(Chip8))
}

// DisassembleWith renders op for a CPU running with q. Only Bnnn depends on
// the quirks: with JumpUsesVX it reads as JP Vx, nnn.
func DisassembleWith(op uint16, q Quirks) string {
	o := opcode(op)
	x, y, n, nn, nnn := o.x(), o.y(), o.n(), o.nn(), o.nnn()

	switch o.family() {
	case 0x0:
		switch {
		case op == 0x00E0:
			return "CLS"
		case op == 0x00EE:
			return "RET"
		case op&0xFFF0 == 0x00C0:
			return fmt.Sprintf("SCD %d", n)
		case op == 0x00FB:
			return "SCR"
		case op == 0x00FC:
			return "SCL"
		case op == 0x00FD:
			return "EXIT"
		case op == 0x00FE:
			return "LOW"
		case op == 0x00FF:
			return "HIGH"
		}
		return fmt.Sprintf("SYS 0x%03X", nnn)
	case 0x1:
		return fmt.Sprintf("JP 0x%03X", nnn)
	case 0x2:
		return fmt.Sprintf("CALL 0x%03X", nnn)
	case 0x3:
		return fmt.Sprintf("SE V%X, 0x%02X", x, nn)
	case 0x4:
		return fmt.Sprintf("SNE V%X, 0x%02X", x, nn)
	case 0x5:
		if n == 0 {
			return fmt.Sprintf("SE V%X, V%X", x, y)
		}
	case 0x6:
		return fmt.Sprintf("LD V%X, 0x%02X", x, nn)
	case 0x7:
		return fmt.Sprintf("ADD V%X, 0x%02X", x, nn)
	case 0x8:
		if m, ok := aluMnemonics[n]; ok {
			return fmt.Sprintf("%s V%X, V%X", m, x, y)
		}
	case 0x9:
		if n == 0 {
			return fmt.Sprintf("SNE V%X, V%X", x, y)
		}
	case 0xA:
		return fmt.Sprintf("LD I, 0x%03X", nnn)
	case 0xB:
		if q.JumpUsesVX {
			return fmt.Sprintf("JP V%X, 0x%03X", x, nnn)
		}
		return fmt.Sprintf("JP V0, 0x%03X", nnn)
	case 0xC:
		return fmt.Sprintf("RND V%X, 0x%02X", x, nn)
	case 0xD:
		return fmt.Sprintf("DRW V%X, V%X, %d", x, y, n)
	case 0xE:
		switch nn {
		case 0x9E:
			return fmt.Sprintf("SKP V%X", x)
		case 0xA1:
			return fmt.Sprintf("SKNP V%X", x)
		}
	case 0xF:
		if f, ok := miscMnemonics[nn]; ok {
			return fmt.Sprintf(f, x)
		}
	}
	return fmt.Sprintf("DW 0x%04X", op)
}

var aluMnemonics = map[int]string{
	0x0: "LD",
	0x1: "OR",
	0x2: "AND",
	0x3: "XOR",
	0x4: "ADD",
	0x5: "SUB",
	0x6: "SHR",
	0x7: "SUBN",
	0xE: "SHL",
}

var miscMnemonics = map[byte]string{
	0x07: "LD V%X, DT",
	0x0A: "LD V%X, K",
	0x15: "LD DT, V%X",
	0x18: "LD ST, V%X",
	0x1E: "ADD I, V%X",
	0x29: "LD F, V%X",
	0x30: "LD HF, V%X",
	0x33: "LD B, V%X",
	0x55: "LD [I], V%X",
	0x65: "LD V%X, [I]",
	0x75: "LD R, V%X",
	0x85: "LD V%X, R",
}
