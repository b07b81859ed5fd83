package iconcache

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, w, h int, c color.Color) *bytes.Buffer {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return &buf
}

func decodeFile(t *testing.T, path string) image.Image {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	return img
}

func TestSaveScalesToSize(t *testing.T) {
	c := New(t.TempDir(), 0)
	require.Equal(t, DefaultSize, c.Size())

	path, err := c.Save("DevTool", encodePNG(t, 256, 128, color.White))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(c.Dir(), "DevTool.png"), path)

	img := decodeFile(t, path)
	assert.Equal(t, image.Rect(0, 0, 64, 64), img.Bounds())
}

func TestSaveAcceptsJPEG(t *testing.T) {
	c := New(t.TempDir(), 32)

	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 10, 10)), nil))

	path, err := c.Save("Camera", &buf)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 32, 32), decodeFile(t, path).Bounds())
}

func TestSaveFirstWriterWins(t *testing.T) {
	c := New(t.TempDir(), 8)

	first, err := c.Save("Mail", encodePNG(t, 4, 4, color.RGBA{R: 255, A: 255}))
	require.NoError(t, err)
	before, err := os.ReadFile(first)
	require.NoError(t, err)

	second, err := c.Save("Mail", encodePNG(t, 4, 4, color.RGBA{B: 255, A: 255}))
	require.NoError(t, err)
	assert.Equal(t, first, second)

	after, err := os.ReadFile(second)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestSaveConcurrentSameName(t *testing.T) {
	c := New(t.TempDir(), 16)

	var wg sync.WaitGroup
	paths := make([]string, 8)
	errs := make([]error, 8)
	for i := range paths {
		i := i
		buf := encodePNG(t, 20, 20, color.Black)
		wg.Add(1)
		go func() {
			defer wg.Done()
			paths[i], errs[i] = c.Save("Chat", buf)
		}()
	}
	wg.Wait()

	for i := range paths {
		require.NoError(t, errs[i])
		assert.Equal(t, c.PathFor("Chat"), paths[i])
	}
	entries, err := os.ReadDir(c.Dir())
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestSaveRejectsInvalidImage(t *testing.T) {
	c := New(t.TempDir(), 16)

	_, err := c.Save("Broken", strings.NewReader("not an image"))
	require.Error(t, err)
	assert.NoFileExists(t, c.PathFor("Broken"))
}

func TestSaveRejectsEmptyName(t *testing.T) {
	c := New(t.TempDir(), 16)
	_, err := c.Save("  ", encodePNG(t, 1, 1, color.White))
	assert.ErrorIs(t, err, ErrEmptyName)
}

func TestFileNameReplacesSeparators(t *testing.T) {
	assert.Equal(t, "a_b_c.png", fileName(`a/b\c`))
	assert.Equal(t, "Visual Studio Code.png", fileName(" Visual Studio Code "))
}
