package replay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/nhle/toastcenter/internal/capture"
)

// iconExts are tried in order when looking up a logo file.
var iconExts = []string{".png", ".jpg", ".jpeg", ".gif", ".bmp"}

// IconDir serves app logos from files named after the app's display name.
// The requested size is ignored; the icon cache scales.
type IconDir struct {
	Dir string
}

var _ capture.IconSource = IconDir{}

// Logo opens the first "<Dir>/<DisplayName><ext>" that exists.
func (d IconDir) Logo(_ context.Context, app capture.AppInfo, _ int) (io.ReadCloser, error) {
	if d.Dir == "" || app.DisplayName == "" {
		return nil, fmt.Errorf("no logo for %q", app.DisplayName)
	}
	for _, ext := range iconExts {
		f, err := os.Open(filepath.Join(d.Dir, app.DisplayName+ext))
		if err == nil {
			return f, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("opening logo for %q: %w", app.DisplayName, err)
		}
	}
	return nil, fmt.Errorf("no logo for %q in %s: %w", app.DisplayName, d.Dir, fs.ErrNotExist)
}
