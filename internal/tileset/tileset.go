// Package tileset caches the tileset images of a loaded mod.
package tileset

import (
	"errors"
	"fmt"
	"image"
	_ "image/png" // tilesets are PNG
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/image/draw"

	"github.com/fdeitylink/kerotools/internal/config"
	"github.com/fdeitylink/kerotools/internal/gamedata"
	"github.com/fdeitylink/kerotools/internal/logger"
)

// Session is the part of a loaded mod the cache depends on.
type Session interface {
	Active() bool
	ImageDir() string
}

// emptyImage stands in for tilesets whose image is missing or has no pixels.
var emptyImage image.Image = image.NewRGBA(image.Rectangle{})

// Cache holds decoded tileset images for one mod session.
type Cache struct {
	session Session
	geom    config.TilesetConfig

	mu     sync.Mutex
	images map[string]image.Image
}

// NewCache returns a cache reading images from session's image folder.
func NewCache(session Session, geom config.TilesetConfig) *Cache {
	return &Cache{
		session: session,
		geom:    geom,
		images:  make(map[string]image.Image),
	}
}

// Get returns the image for tileset name, decoding it on first use.
// Images larger than the tileset area are cropped to it. A missing image
// yields an empty image.
func (c *Cache) Get(name string) (image.Image, error) {
	if !c.session.Active() {
		panic("tileset: Get called without a loaded mod")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if img, ok := c.images[name]; ok {
		return img, nil
	}

	path := filepath.Join(c.session.ImageDir(), name+gamedata.ImageExtension)
	img, err := c.load(path)
	if err != nil {
		logger.Error("loading tileset image", zap.String("path", path), zap.Error(err))
		return nil, err
	}

	c.images[name] = img
	return img, nil
}

func (c *Cache) load(path string) (image.Image, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Debug("tileset image missing", zap.String("path", path))
		return emptyImage, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}

	b := src.Bounds()
	if b.Empty() {
		return emptyImage, nil
	}

	maxW, maxH := c.geom.PixelWidth(), c.geom.PixelHeight()
	if b.Dx() <= maxW && b.Dy() <= maxH {
		return src, nil
	}

	// Tilesets are sometimes saved larger than the area the engine reads.
	dst := image.NewRGBA(image.Rect(0, 0, min(b.Dx(), maxW), min(b.Dy(), maxH)))
	draw.Copy(dst, image.Point{}, src, image.Rectangle{Min: b.Min, Max: b.Min.Add(dst.Bounds().Size())}, draw.Src, nil)

	logger.Debug("tileset image cropped",
		zap.String("path", path),
		zap.Int("width", b.Dx()),
		zap.Int("height", b.Dy()))
	return dst, nil
}

// GridSize returns the attribute grid dimensions matching tileset name's image:
// one cell per whole tile.
func (c *Cache) GridSize(name string) (width, height uint16, err error) {
	img, err := c.Get(name)
	if err != nil {
		return 0, 0, err
	}
	b := img.Bounds()
	w, h := b.Dx()/c.geom.TileSize, b.Dy()/c.geom.TileSize
	if w == 0 || h == 0 {
		return 0, 0, nil
	}
	return uint16(w), uint16(h), nil
}

// Wipe drops every cached image.
func (c *Cache) Wipe() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.images = make(map[string]image.Image)
}
