package formats

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image/color"
	"io"
	"os"

	"github.com/fdeitylink/kerotools/pkg/encoding"
)

// PxPackExtension is the file extension of map files.
const PxPackExtension = ".pxpack"

// PXPACK layout constants.
const (
	PxPackLayerCount   = 3
	PxPackMapNameCount = 4

	// PxPackNameMaxLen bounds map, tileset, spritesheet and entity names,
	// in Shift-JIS bytes.
	PxPackNameMaxLen = 15
	// PxPackDescriptionMaxLen bounds the map description, in Shift-JIS bytes.
	PxPackDescriptionMaxLen = 31
)

var pxPackMagic = []byte("PXPACK121127a**\x00")

// PXPACK format errors.
var (
	ErrInvalidPxPackMagic = errors.New("invalid PXPACK magic: expected 'PXPACK121127a**\\0'")
	ErrFieldTooLong       = errors.New("field too long")
)

// PxPack is a decoded map file.
type PxPack struct {
	Head PxPackHead
	// Layers hold tile indices into the matching Head.Tilesets entry. They
	// use the PXATTR grid layout, so an empty layer is the empty grid.
	Layers   [PxPackLayerCount]*AttributeGrid
	Entities []PxPackEntity
}

// PxPackHead is the map header.
type PxPackHead struct {
	Description string
	MapNames    [PxPackMapNameCount]string
	Spritesheet string
	Unknown     [5]byte
	Background  color.RGBA
	Tilesets    [PxPackLayerCount]PxPackTileset
}

// PxPackTileset names the tileset of one layer.
type PxPackTileset struct {
	Name string
	// Visibility is 0 for a hidden layer and 2 for a visible one.
	Visibility uint8
	ScrollType uint8
}

// PxPackEntity is one entity placed on the map.
type PxPackEntity struct {
	Flag    uint8
	Type    uint8
	Unknown uint8
	X, Y    uint16
	Data    [2]byte
	Name    string
}

// headColor is the fixed block after the spritesheet name.
type headColor struct {
	Unknown [5]byte
	R, G, B uint8
}

// entityRecord is the fixed part of an entity, followed by its name.
type entityRecord struct {
	Flag    uint8
	Type    uint8
	Unknown uint8
	X, Y    uint16
	Data    [2]byte
}

// NewPxPack returns a map with empty layers, no entities and a black background.
func NewPxPack() *PxPack {
	p := &PxPack{}
	p.Head.Background = color.RGBA{A: 0xFF}
	for i := range p.Layers {
		p.Layers[i] = &AttributeGrid{}
	}
	return p
}

// TilesetNames returns the distinct non-empty tileset names of the map's layers, in layer order.
func (p *PxPack) TilesetNames() []string {
	var names []string
	seen := make(map[string]bool)
	for _, ts := range p.Head.Tilesets {
		if ts.Name == "" || seen[ts.Name] {
			continue
		}
		seen[ts.Name] = true
		names = append(names, ts.Name)
	}
	return names
}

// ParsePxPack parses a PXPACK file from raw bytes.
func ParsePxPack(data []byte) (*PxPack, error) {
	return decodePxPack(bytes.NewReader(data), "")
}

// ReadPxPackFile parses a PXPACK file from disk.
func ReadPxPackFile(path string) (*PxPack, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &IOError{Op: "open", Path: path, Err: err}
	}
	defer f.Close()

	return decodePxPack(f, path)
}

func decodePxPack(r io.Reader, path string) (*PxPack, error) {
	if err := checkMagic(r, pxPackMagic, ErrInvalidPxPackMagic, path); err != nil {
		return nil, err
	}

	truncated := func(what string, err error) error {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return &IOError{Op: "read", Path: path, Err: fmt.Errorf("reading %s: %w", what, err)}
	}

	p := &PxPack{}
	h := &p.Head

	var err error
	if h.Description, err = readPxString(r); err != nil {
		return nil, truncated("description", err)
	}
	for i := range h.MapNames {
		if h.MapNames[i], err = readPxString(r); err != nil {
			return nil, truncated(fmt.Sprintf("map name %d", i), err)
		}
	}
	if h.Spritesheet, err = readPxString(r); err != nil {
		return nil, truncated("spritesheet name", err)
	}

	var hc headColor
	if err := binary.Read(r, binary.LittleEndian, &hc); err != nil {
		return nil, truncated("background color", err)
	}
	h.Unknown = hc.Unknown
	h.Background = color.RGBA{R: hc.R, G: hc.G, B: hc.B, A: 0xFF}

	for i := range h.Tilesets {
		name, err := readPxString(r)
		if err != nil {
			return nil, truncated(fmt.Sprintf("tileset name %d", i), err)
		}
		var flags [2]byte
		if err := readFull(r, flags[:]); err != nil {
			return nil, truncated(fmt.Sprintf("tileset %d flags", i), err)
		}
		h.Tilesets[i] = PxPackTileset{Name: name, Visibility: flags[0], ScrollType: flags[1]}
	}

	for i := range p.Layers {
		layer, err := decodePxAttr(r, path)
		if err != nil {
			return nil, fmt.Errorf("layer %d: %w", i, err)
		}
		p.Layers[i] = layer
	}

	var count uint16
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, truncated("entity count", err)
	}

	if count > 0 {
		p.Entities = make([]PxPackEntity, 0, count)
	}
	for i := 0; i < int(count); i++ {
		var rec entityRecord
		if err := binary.Read(r, binary.LittleEndian, &rec); err != nil {
			return nil, truncated(fmt.Sprintf("entity %d", i), err)
		}
		name, err := readPxString(r)
		if err != nil {
			return nil, truncated(fmt.Sprintf("entity %d name", i), err)
		}
		p.Entities = append(p.Entities, PxPackEntity{
			Flag:    rec.Flag,
			Type:    rec.Type,
			Unknown: rec.Unknown,
			X:       rec.X,
			Y:       rec.Y,
			Data:    rec.Data,
			Name:    name,
		})
	}

	return p, nil
}

// readPxString reads a Shift-JIS string prefixed by its byte length.
func readPxString(r io.Reader) (string, error) {
	var n [1]byte
	if _, err := io.ReadFull(r, n[:]); err != nil {
		return "", err
	}
	if n[0] == 0 {
		return "", nil
	}
	buf := make([]byte, n[0])
	if err := readFull(r, buf); err != nil {
		return "", err
	}
	return encoding.ShiftJISToUTF8(buf), nil
}

// appendPxString appends s as a length-prefixed Shift-JIS string of at most limit bytes.
func appendPxString(buf []byte, s string, limit int, what string) ([]byte, error) {
	b := encoding.UTF8ToShiftJIS(s)
	if len(b) > limit {
		return nil, fmt.Errorf("%w: %s %q is %d bytes, limit %d", ErrFieldTooLong, what, s, len(b), limit)
	}
	buf = append(buf, byte(len(b)))
	return append(buf, b...), nil
}

// MarshalBinary encodes the map in the PXPACK layout.
func (p *PxPack) MarshalBinary() ([]byte, error) {
	h := &p.Head
	buf := append([]byte(nil), pxPackMagic...)

	var err error
	if buf, err = appendPxString(buf, h.Description, PxPackDescriptionMaxLen, "description"); err != nil {
		return nil, err
	}
	for i, name := range h.MapNames {
		if buf, err = appendPxString(buf, name, PxPackNameMaxLen, fmt.Sprintf("map name %d", i)); err != nil {
			return nil, err
		}
	}
	if buf, err = appendPxString(buf, h.Spritesheet, PxPackNameMaxLen, "spritesheet name"); err != nil {
		return nil, err
	}

	buf = append(buf, h.Unknown[:]...)
	buf = append(buf, h.Background.R, h.Background.G, h.Background.B)

	for i, ts := range h.Tilesets {
		if buf, err = appendPxString(buf, ts.Name, PxPackNameMaxLen, fmt.Sprintf("tileset name %d", i)); err != nil {
			return nil, err
		}
		buf = append(buf, ts.Visibility, ts.ScrollType)
	}

	for i, layer := range p.Layers {
		if layer == nil {
			layer = &AttributeGrid{}
		}
		if buf, err = layer.appendBinary(buf); err != nil {
			return nil, fmt.Errorf("layer %d: %w", i, err)
		}
	}

	if len(p.Entities) > 0xFFFF {
		return nil, fmt.Errorf("%w: %d entities, limit %d", ErrFieldTooLong, len(p.Entities), 0xFFFF)
	}
	buf = binary.LittleEndian.AppendUint16(buf, uint16(len(p.Entities)))
	for i, e := range p.Entities {
		buf = append(buf, e.Flag, e.Type, e.Unknown)
		buf = binary.LittleEndian.AppendUint16(buf, e.X)
		buf = binary.LittleEndian.AppendUint16(buf, e.Y)
		buf = append(buf, e.Data[:]...)
		if buf, err = appendPxString(buf, e.Name, PxPackNameMaxLen, fmt.Sprintf("entity %d name", i)); err != nil {
			return nil, err
		}
	}

	return buf, nil
}

// WritePxPackFile writes the map to path, creating or truncating the file.
func WritePxPackFile(path string, p *PxPack) error {
	data, err := p.MarshalBinary()
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return writeFile(path, data)
}
