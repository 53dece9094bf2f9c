package formats

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/fdeitylink/kerotools/pkg/encoding"
)

// PxAttrExtension is the file extension of tile attribute files.
const PxAttrExtension = ".pxattr"

// pxAttrMagicText is stored as an 8-byte null-terminated Shift-JIS field.
const (
	pxAttrMagicText = "pxMAP01"
	pxAttrMagicSize = 8
)

var pxAttrMagic = encoding.UTF8ToFixedString(pxAttrMagicText, pxAttrMagicSize)

// PXATTR format errors.
var (
	ErrInvalidPxAttrMagic = errors.New("invalid PXATTR magic: expected 'pxMAP01\\0'")
	ErrInvalidGridSize    = errors.New("cell count does not match grid dimensions")
)

// AttributeGrid holds one attribute byte per tile of a tileset, row-major.
// A grid with zero tiles is the empty grid used for tilesets without attributes.
type AttributeGrid struct {
	Width  uint16
	Height uint16
	Cells  []uint8
}

// NewAttributeGrid returns a zero-filled grid. If either dimension is zero
// the empty grid is returned, so width and height are never mixed zero and non-zero.
func NewAttributeGrid(width, height uint16) *AttributeGrid {
	if width == 0 || height == 0 {
		return &AttributeGrid{}
	}
	return &AttributeGrid{
		Width:  width,
		Height: height,
		Cells:  make([]uint8, int(width)*int(height)),
	}
}

// Empty reports whether the grid has no tiles.
func (g *AttributeGrid) Empty() bool {
	return int(g.Width)*int(g.Height) == 0
}

// InBounds reports whether (x, y) addresses a cell of the grid.
func (g *AttributeGrid) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < int(g.Width) && y < int(g.Height)
}

// At returns the attribute at (x, y).
// The second result is false if the coordinates are out of bounds.
func (g *AttributeGrid) At(x, y int) (uint8, bool) {
	if !g.InBounds(x, y) {
		return 0, false
	}
	return g.Cells[y*int(g.Width)+x], true
}

// Set stores the attribute at (x, y). It panics if the coordinates are out of bounds.
func (g *AttributeGrid) Set(x, y int, value uint8) {
	if !g.InBounds(x, y) {
		panic(fmt.Sprintf("pxattr: cell (%d, %d) out of range for %dx%d grid", x, y, g.Width, g.Height))
	}
	g.Cells[y*int(g.Width)+x] = value
}

// Row returns the cells of row y. The slice aliases the grid.
func (g *AttributeGrid) Row(y int) []uint8 {
	start := y * int(g.Width)
	return g.Cells[start : start+int(g.Width)]
}

// Clone returns a deep copy of the grid.
func (g *AttributeGrid) Clone() *AttributeGrid {
	c := &AttributeGrid{Width: g.Width, Height: g.Height}
	if g.Cells != nil {
		c.Cells = make([]uint8, len(g.Cells))
		copy(c.Cells, g.Cells)
	}
	return c
}

// CountByValue returns the number of cells holding each attribute value.
func (g *AttributeGrid) CountByValue() map[uint8]int {
	counts := make(map[uint8]int)
	for _, v := range g.Cells {
		counts[v]++
	}
	return counts
}

// ParsePxAttr parses a PXATTR file from raw bytes.
func ParsePxAttr(data []byte) (*AttributeGrid, error) {
	return decodePxAttr(bytes.NewReader(data), "")
}

// ReadPxAttrFile parses a PXATTR file from disk.
// A missing file is not an error: it yields the empty grid.
func ReadPxAttrFile(path string) (*AttributeGrid, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &AttributeGrid{}, nil
	}
	if err != nil {
		return nil, &IOError{Op: "open", Path: path, Err: err}
	}
	defer f.Close()

	return decodePxAttr(f, path)
}

func decodePxAttr(r io.Reader, path string) (*AttributeGrid, error) {
	if err := checkMagic(r, pxAttrMagic, ErrInvalidPxAttrMagic, path); err != nil {
		return nil, err
	}

	var dims [4]byte
	if err := readFull(r, dims[:]); err != nil {
		return nil, &IOError{Op: "read", Path: path, Err: fmt.Errorf("reading dimensions: %w", err)}
	}
	width := binary.LittleEndian.Uint16(dims[0:2])
	height := binary.LittleEndian.Uint16(dims[2:4])

	cellCount := int(width) * int(height)
	if cellCount == 0 {
		return &AttributeGrid{}, nil
	}

	// One reserved byte precedes the cells of a non-empty grid.
	var reserved [1]byte
	if err := readFull(r, reserved[:]); err != nil {
		return nil, &IOError{Op: "read", Path: path, Err: fmt.Errorf("reading reserved byte: %w", err)}
	}

	grid := &AttributeGrid{
		Width:  width,
		Height: height,
		Cells:  make([]uint8, cellCount),
	}
	if err := readFull(r, grid.Cells); err != nil {
		return nil, &IOError{Op: "read", Path: path, Err: fmt.Errorf("reading %d cells: %w", cellCount, err)}
	}

	return grid, nil
}

// MarshalBinary encodes the grid in the PXATTR layout.
//
// The empty grid is written as magic plus zero dimensions with no reserved
// byte, while a populated grid carries the reserved byte before its cells.
// Existing game files depend on this asymmetry.
func (g *AttributeGrid) MarshalBinary() ([]byte, error) {
	return g.appendBinary(make([]byte, 0, pxAttrMagicSize+5+len(g.Cells)))
}

func (g *AttributeGrid) appendBinary(buf []byte) ([]byte, error) {
	buf = append(buf, pxAttrMagic...)

	if g.Empty() {
		return append(buf, 0, 0, 0, 0), nil
	}
	if len(g.Cells) != int(g.Width)*int(g.Height) {
		return nil, fmt.Errorf("%w: %d cells for %dx%d", ErrInvalidGridSize, len(g.Cells), g.Width, g.Height)
	}

	buf = binary.LittleEndian.AppendUint16(buf, g.Width)
	buf = binary.LittleEndian.AppendUint16(buf, g.Height)
	buf = append(buf, 0)
	return append(buf, g.Cells...), nil
}

// Encode writes the grid to w in the PXATTR layout.
func (g *AttributeGrid) Encode(w io.Writer) error {
	data, err := g.MarshalBinary()
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// WritePxAttrFile writes the grid to path, creating or truncating the file.
func WritePxAttrFile(path string, g *AttributeGrid) error {
	data, err := g.MarshalBinary()
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return writeFile(path, data)
}
