package bus

import (
	"errors"
	"fmt"
)

// Memory layout.
const (
	Size      = 0x1000 // 4 KiB address space
	AddrMask  = Size - 1
	LoadAddr  = 0x200 // programs start here; everything below is interpreter space
	FontAddr  = 0x000 // low-res hex digits, 5 bytes each
	HiresAddr = 0x100 // high-res decimal digits, 10 bytes each

	FontGlyphSize  = 5
	HiresGlyphSize = 10

	// MaxProgramSize is the largest program that fits between LoadAddr and the end of RAM.
	MaxProgramSize = Size - LoadAddr
)

// ErrProgramTooLarge is returned when a program would run past the end of memory.
var ErrProgramTooLarge = errors.New("program does not fit in memory")

var font = [16 * FontGlyphSize]byte{
	0xF0, 0x90, 0x90, 0x90, 0xF0, // 0
	0x20, 0x60, 0x20, 0x20, 0x70, // 1
	0xF0, 0x10, 0xF0, 0x80, 0xF0, // 2
	0xF0, 0x10, 0xF0, 0x10, 0xF0, // 3
	0x90, 0x90, 0xF0, 0x10, 0x10, // 4
	0xF0, 0x80, 0xF0, 0x10, 0xF0, // 5
	0xF0, 0x80, 0xF0, 0x90, 0xF0, // 6
	0xF0, 0x10, 0x20, 0x40, 0x40, // 7
	0xF0, 0x90, 0xF0, 0x90, 0xF0, // 8
	0xF0, 0x90, 0xF0, 0x10, 0xF0, // 9
	0xF0, 0x90, 0xF0, 0x90, 0x90, // A
	0xE0, 0x90, 0xE0, 0x90, 0xE0, // B
	0xF0, 0x80, 0x80, 0x80, 0xF0, // C
	0xE0, 0x90, 0x90, 0x90, 0xE0, // D
	0xF0, 0x80, 0xF0, 0x80, 0xF0, // E
	0xF0, 0x80, 0xF0, 0x80, 0x80, // F
}

// SUPER-CHIP 8x10 digits.
var hiresFont = [10 * HiresGlyphSize]byte{
	0x3C, 0x7E, 0xE7, 0xC3, 0xC3, 0xC3, 0xC3, 0xE7, 0x7E, 0x3C, // 0
	0x18, 0x38, 0x58, 0x18, 0x18, 0x18, 0x18, 0x18, 0x18, 0x3C, // 1
	0x3E, 0x7F, 0xC3, 0x06, 0x0C, 0x18, 0x30, 0x60, 0xFF, 0xFF, // 2
	0x3C, 0x7E, 0xC3, 0x03, 0x0E, 0x0E, 0x03, 0xC3, 0x7E, 0x3C, // 3
	0x06, 0x0E, 0x1E, 0x36, 0x66, 0xC6, 0xFF, 0xFF, 0x06, 0x06, // 4
	0xFF, 0xFF, 0xC0, 0xC0, 0xFC, 0xFE, 0x03, 0xC3, 0x7E, 0x3C, // 5
	0x3E, 0x7C, 0xC0, 0xC0, 0xFC, 0xFE, 0xC3, 0xC3, 0x7E, 0x3C, // 6
	0xFF, 0xFF, 0x03, 0x06, 0x0C, 0x18, 0x30, 0x60, 0x60, 0x60, // 7
	0x3C, 0x7E, 0xC3, 0xC3, 0x7E, 0x7E, 0xC3, 0xC3, 0x7E, 0x3C, // 8
	0x3C, 0x7E, 0xC3, 0xC3, 0x7F, 0x3F, 0x03, 0x03, 0x3E, 0x7C, // 9
}

// Bus is the flat 4 KiB RAM shared by the interpreter and the loaded program.
type Bus struct {
	ram [Size]byte
}

// New returns memory with both glyph sets installed.
func New() *Bus {
	b := &Bus{}
	b.Reset()
	return b
}

// Reset zeroes RAM and re-copies the built-in glyphs.
func (b *Bus) Reset() {
	b.ram = [Size]byte{}
	copy(b.ram[FontAddr:], font[:])
	copy(b.ram[HiresAddr:], hiresFont[:])
}

// LoadProgram copies p into RAM starting at LoadAddr.
func (b *Bus) LoadProgram(p []byte) error {
	if len(p) > MaxProgramSize {
		return fmt.Errorf("%w: %d bytes, max %d", ErrProgramTooLarge, len(p), MaxProgramSize)
	}
	copy(b.ram[LoadAddr:], p)
	return nil
}

// Read returns the byte at addr. Addresses wrap at 4 KiB.
func (b *Bus) Read(addr uint16) byte {
	return b.ram[addr&AddrMask]
}

// Write stores value at addr. Addresses wrap at 4 KiB.
func (b *Bus) Write(addr uint16, value byte) {
	b.ram[addr&AddrMask] = value
}

// ReadWord returns the big-endian 16-bit word at addr.
func (b *Bus) ReadWord(addr uint16) uint16 {
	return uint16(b.Read(addr))<<8 | uint16(b.Read(addr+1))
}

// FontAddress returns the address of the low-res glyph for digit d (low nibble).
func FontAddress(d byte) uint16 {
	return FontAddr + uint16(d&0x0F)*FontGlyphSize
}

// HiresFontAddress returns the address of the high-res glyph for decimal digit d.
func HiresFontAddress(d byte) uint16 {
	return HiresAddr + uint16(d%10)*HiresGlyphSize
}
