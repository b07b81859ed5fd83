// Package iconcache stores app icons as PNG files named after the app's
// display name.
//
// Two packages sharing a display name share one icon file: whichever is
// saved first wins and later saves reuse it.
package iconcache

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register gif
	_ "image/jpeg" // register jpeg
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/natefinch/atomic"
	_ "golang.org/x/image/bmp" // register bmp
	"golang.org/x/image/draw"
)

// DefaultSize is the edge length icons are scaled to.
const DefaultSize = 64

// ErrEmptyName is returned when an icon has no name to be stored under.
var ErrEmptyName = errors.New("icon name must not be empty")

// Cache is a directory of PNG icons.
type Cache struct {
	dir    string
	size   int
	mu     sync.Mutex
	logger *slog.Logger
}

// New creates a Cache rooted at dir. A size <= 0 uses DefaultSize.
func New(dir string, size int) *Cache {
	if size <= 0 {
		size = DefaultSize
	}
	return &Cache{
		dir:    dir,
		size:   size,
		logger: slog.Default(),
	}
}

// Dir returns the cache directory.
func (c *Cache) Dir() string { return c.dir }

// Size returns the edge length icons are scaled to.
func (c *Cache) Size() int { return c.size }

// PathFor returns the file an icon with the given name is stored in.
func (c *Cache) PathFor(name string) string {
	return filepath.Join(c.dir, fileName(name))
}

// Save decodes the image read from r, scales it to the cache size and
// writes it as PNG under name. If a file for name already exists it is
// returned untouched and r is not read. The whole sequence holds the
// cache lock.
func (c *Cache) Save(name string, r io.Reader) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", ErrEmptyName
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	path := c.PathFor(name)
	if _, err := os.Stat(path); err == nil {
		return path, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("checking icon %s: %w", path, err)
	}

	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return "", fmt.Errorf("creating icon directory %s: %w", c.dir, err)
	}

	src, format, err := image.Decode(r)
	if err != nil {
		return "", fmt.Errorf("decoding icon for %q: %w", name, err)
	}

	dst := image.NewRGBA(image.Rect(0, 0, c.size, c.size))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return "", fmt.Errorf("encoding icon for %q: %w", name, err)
	}
	if err := atomic.WriteFile(path, bytes.NewReader(buf.Bytes())); err != nil {
		return "", fmt.Errorf("writing icon %s: %w", path, err)
	}

	if err := verify(path); err != nil {
		_ = os.Remove(path)
		return "", err
	}

	c.logger.Debug("icon cached", "name", name, "path", path, "source_format", format)
	return path, nil
}

// verify decodes the written file back to make sure it is a readable PNG.
func verify(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("reopening icon %s: %w", path, err)
	}
	defer f.Close()

	if _, err := png.Decode(f); err != nil {
		return fmt.Errorf("verifying icon %s: %w", path, err)
	}
	return nil
}

// fileName maps a display name to "{name}.png". Only characters that
// cannot appear in a file name are replaced.
func fileName(name string) string {
	r := strings.NewReplacer(
		"/", "_", `\`, "_", ":", "_", "*", "_", "?", "_",
		`"`, "_", "<", "_", ">", "_", "|", "_",
	)
	return r.Replace(strings.TrimSpace(name)) + ".png"
}
