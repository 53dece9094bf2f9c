package tileset

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fdeitylink/kerotools/internal/config"
)

type fakeSession struct {
	active bool
	dir    string
}

func (s *fakeSession) Active() bool     { return s.active }
func (s *fakeSession) ImageDir() string { return s.dir }

func writePNG(t *testing.T, dir, name string, w, h int) {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 0xFF, A: 0xFF})
		}
	}

	f, err := os.Create(filepath.Join(dir, name+".png"))
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func newTestCache(t *testing.T) (*Cache, *fakeSession) {
	session := &fakeSession{active: true, dir: t.TempDir()}
	return NewCache(session, config.Default().Tileset), session
}

func TestGet_WithinArea(t *testing.T) {
	c, session := newTestCache(t)
	writePNG(t, session.dir, "forest", 64, 32)

	img, err := c.Get("forest")
	require.NoError(t, err)
	require.Equal(t, 64, img.Bounds().Dx())
	require.Equal(t, 32, img.Bounds().Dy())

	again, err := c.Get("forest")
	require.NoError(t, err)
	require.Same(t, img, again, "second Get should hit the cache")
}

func TestGet_CropsOversized(t *testing.T) {
	c, session := newTestCache(t)
	writePNG(t, session.dir, "big", 200, 100)

	img, err := c.Get("big")
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 0, 128, 100), img.Bounds())

	r, g, _, _ := img.At(127, 99).RGBA()
	require.Equal(t, uint32(127), r>>8)
	require.Equal(t, uint32(99), g>>8)
}

func TestGet_Missing(t *testing.T) {
	c, _ := newTestCache(t)

	img, err := c.Get("nothing")
	require.NoError(t, err)
	require.True(t, img.Bounds().Empty())
}

func TestGet_Undecodable(t *testing.T) {
	c, session := newTestCache(t)
	require.NoError(t, os.WriteFile(filepath.Join(session.dir, "junk.png"), []byte("not a png"), 0644))

	_, err := c.Get("junk")
	require.Error(t, err)
}

func TestGet_InactivePanics(t *testing.T) {
	c, session := newTestCache(t)
	session.active = false
	require.Panics(t, func() { _, _ = c.Get("forest") })
}

func TestGridSize(t *testing.T) {
	c, session := newTestCache(t)
	writePNG(t, session.dir, "full", 128, 128)
	writePNG(t, session.dir, "partial", 44, 17)
	writePNG(t, session.dir, "tiny", 4, 4)

	tests := []struct {
		name string
		w, h uint16
	}{
		{"full", 16, 16},
		{"partial", 5, 2},
		{"tiny", 0, 0},
		{"missing", 0, 0},
	}

	for _, tc := range tests {
		w, h, err := c.GridSize(tc.name)
		require.NoError(t, err, tc.name)
		require.Equal(t, tc.w, w, tc.name)
		require.Equal(t, tc.h, h, tc.name)
	}
}

func TestWipe(t *testing.T) {
	c, session := newTestCache(t)
	writePNG(t, session.dir, "forest", 16, 16)

	_, err := c.Get("forest")
	require.NoError(t, err)

	c.Wipe()
	writePNG(t, session.dir, "forest", 32, 16)

	img, err := c.Get("forest")
	require.NoError(t, err)
	require.Equal(t, 32, img.Bounds().Dx())
}
