package ui

// Config contains window/input/audio related settings.
type Config struct {
	Title   string  // window title
	Scale   int     // integer upscaling factor
	ROMsDir string  // directory to browse for ROMs
	Volume  float64 // beeper amplitude in [0, 1]
	Muted   bool
	ShotDir string // where F12 screenshots are written
}

// Defaults fills missing fields with reasonable defaults.
func (c *Config) Defaults() {
	if c.Title == "" {
		c.Title = "chip8emu"
	}
	if c.Scale <= 0 {
		c.Scale = 10
	}
	if c.ROMsDir == "" {
		c.ROMsDir = "roms"
	}
	if c.Volume <= 0 {
		c.Volume = 0.2
	}
	if c.ShotDir == "" {
		c.ShotDir = "."
	}
}
