package cpu

// DisplayMode is the framebuffer resolution.
type DisplayMode int

const (
	LoRes DisplayMode = iota // 64x32
	HiRes                    // 128x64, SUPER-CHIP only
)

func (m DisplayMode) String() string {
	if m == HiRes {
		return "hires"
	}
	return "lores"
}

// Screen dimensions per mode.
const (
	LoResWidth  = 64
	LoResHeight = 32
	HiResWidth  = 128
	HiResHeight = 64
)

// Dimensions returns width and height of mode m.
func (m DisplayMode) Dimensions() (w, h int) {
	if m == HiRes {
		return HiResWidth, HiResHeight
	}
	return LoResWidth, LoResHeight
}

// Display is a read-only snapshot of the framebuffer. Pixels is row-major,
// len(Pixels) == Width*Height.
type Display struct {
	Pixels []bool
	Width  int
	Height int
	Mode   DisplayMode
}

// At reports whether the pixel at (x, y) is set. Out of range reads are unset.
func (d Display) At(x, y int) bool {
	if x < 0 || y < 0 || x >= d.Width || y >= d.Height {
		return false
	}
	return d.Pixels[y*d.Width+x]
}

type framebuffer struct {
	pix  []bool
	w, h int
	mode DisplayMode
}

// newFramebuffer allocates a cleared buffer for mode. Mode switches replace
// the whole buffer rather than resizing in place.
func newFramebuffer(mode DisplayMode) *framebuffer {
	w, h := mode.Dimensions()
	return &framebuffer{pix: make([]bool, w*h), w: w, h: h, mode: mode}
}

func (f *framebuffer) clear() {
	for i := range f.pix {
		f.pix[i] = false
	}
}

// toggle flips the pixel at (x, y) and reports whether it was set before.
func (f *framebuffer) toggle(x, y int) bool {
	i := y*f.w + x
	was := f.pix[i]
	f.pix[i] = !was
	return was
}

func (f *framebuffer) snapshot() Display {
	pix := make([]bool, len(f.pix))
	copy(pix, f.pix)
	return Display{Pixels: pix, Width: f.w, Height: f.h, Mode: f.mode}
}
