package rom

import (
	"errors"
	"fmt"
	"hash/crc32"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/FabianRolfMatthiasNoll/Chip8Emulator/internal/bus"
)

var (
	ErrEmpty    = errors.New("ROM is empty")
	ErrTooLarge = errors.New("ROM does not fit in memory")
)

// Extensions recognized by Find.
var Extensions = []string{".ch8", ".c8", ".sc8", ".rom"}

// ROM is a program image ready to be copied to the load address.
type ROM struct {
	Name  string // base file name without extension
	Path  string // empty for in-memory ROMs
	Data  []byte
	CRC32 uint32
}

// New validates data and wraps it as a ROM.
func New(name string, data []byte) (*ROM, error) {
	if len(data) == 0 {
		return nil, ErrEmpty
	}
	if len(data) > bus.MaxProgramSize {
		return nil, fmt.Errorf("%w: %d bytes, max %d", ErrTooLarge, len(data), bus.MaxProgramSize)
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	return &ROM{
		Name:  name,
		Data:  buf,
		CRC32: crc32.ChecksumIEEE(buf),
	}, nil
}

// Load reads a ROM file from disk.
func Load(path string) (*ROM, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read ROM: %w", err)
	}
	base := filepath.Base(path)
	r, err := New(strings.TrimSuffix(base, filepath.Ext(base)), data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", base, err)
	}
	r.Path = path
	return r, nil
}

// Size returns the program length in bytes.
func (r *ROM) Size() int { return len(r.Data) }

func hasROMExt(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Find recursively collects ROM files under dir, sorted by path.
func Find(dir string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if hasROMExt(d.Name()) {
			out = append(out, path)
		}
		return nil
	})
	sort.Strings(out)
	return out, err
}
