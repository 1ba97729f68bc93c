package video

import (
	"fmt"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"os"
	"strconv"
	"strings"

	"github.com/FabianRolfMatthiasNoll/Chip8Emulator/internal/cpu"
)

// Palette maps lit and unlit pixels to colors.
type Palette struct {
	FG color.RGBA
	BG color.RGBA
}

// DefaultPalette draws white pixels on black.
var DefaultPalette = Palette{
	FG: color.RGBA{0xFF, 0xFF, 0xFF, 0xFF},
	BG: color.RGBA{0x00, 0x00, 0x00, 0xFF},
}

// ParseColor accepts "RRGGBB" or "#RRGGBB".
func ParseColor(s string) (color.RGBA, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid color %q: want RRGGBB", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return color.RGBA{R: byte(v >> 16), G: byte(v >> 8), B: byte(v), A: 0xFF}, nil
}

// Render writes d as RGBA bytes (4 per pixel, row-major). dst is reused when
// it has enough capacity.
func Render(d cpu.Display, pal Palette, dst []byte) []byte {
	n := d.Width * d.Height * 4
	if cap(dst) < n {
		dst = make([]byte, n)
	}
	dst = dst[:n]
	for i, on := range d.Pixels {
		c := pal.BG
		if on {
			c = pal.FG
		}
		o := i * 4
		dst[o+0], dst[o+1], dst[o+2], dst[o+3] = c.R, c.G, c.B, c.A
	}
	return dst
}

// Checksum hashes the display dimensions and packed pixel bits. Equal
// displays in the same mode give equal checksums.
func Checksum(d cpu.Display) uint32 {
	packed := make([]byte, 2, 2+(len(d.Pixels)+7)/8)
	packed[0], packed[1] = byte(d.Width), byte(d.Height)
	var acc byte
	for i, on := range d.Pixels {
		if on {
			acc |= 0x80 >> (i & 7)
		}
		if i&7 == 7 {
			packed = append(packed, acc)
			acc = 0
		}
	}
	if len(d.Pixels)&7 != 0 {
		packed = append(packed, acc)
	}
	return crc32.ChecksumIEEE(packed)
}

// Image returns d as an unscaled RGBA image.
func Image(d cpu.Display, pal Palette) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, d.Width, d.Height))
	img.Pix = Render(d, pal, img.Pix)
	return img
}

// SavePNG writes d to path, each pixel enlarged to scale×scale.
func SavePNG(path string, d cpu.Display, pal Palette, scale int) error {
	if scale < 1 {
		scale = 1
	}
	src := Image(d, pal)
	dst := image.NewRGBA(image.Rect(0, 0, d.Width*scale, d.Height*scale))
	for y := 0; y < dst.Rect.Dy(); y++ {
		for x := 0; x < dst.Rect.Dx(); x++ {
			dst.SetRGBA(x, y, src.RGBAAt(x/scale, y/scale))
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create screenshot: %w", err)
	}
	if err := png.Encode(f, dst); err != nil {
		f.Close()
		return fmt.Errorf("encode screenshot: %w", err)
	}
	return f.Close()
}
