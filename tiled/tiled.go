// Package tiled reads maps saved by the Tiled editor in its JSON format.
// Only orthogonal maps with embedded tilesets are supported.
package tiled

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
)

var (
	ErrLayerNotFound    = errors.New("tiled: layer not found")
	ErrPropertyNotFound = errors.New("tiled: property not found")
	ErrPropertyType     = errors.New("tiled: property has the wrong type")
)

// Layer types as written by Tiled
const (
	TileLayer   = "tilelayer"
	ObjectGroup = "objectgroup"
)

// gid bits Tiled uses for flipped tiles
const (
	flipMask = 0xE0000000
	gidMask  = ^uint32(flipMask)
)

type Map struct {
	Width      int       `json:"width"`
	Height     int       `json:"height"`
	TileWidth  int       `json:"tilewidth"`
	TileHeight int       `json:"tileheight"`
	Layers     []Layer   `json:"layers"`
	Tilesets   []Tileset `json:"tilesets"`
}

type Layer struct {
	Name    string   `json:"name"`
	Type    string   `json:"type"`
	Visible bool     `json:"visible"`
	Width   int      `json:"width"`
	Height  int      `json:"height"`
	Data    []uint32 `json:"data"`
	Objects []Object `json:"objects"`
}

type Tileset struct {
	FirstGID    uint32 `json:"firstgid"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	ImageWidth  int    `json:"imagewidth"`
	ImageHeight int    `json:"imageheight"`
	TileWidth   int    `json:"tilewidth"`
	TileHeight  int    `json:"tileheight"`
	TileCount   int    `json:"tilecount"`
	Columns     int    `json:"columns"`
	Margin      int    `json:"margin"`
	Spacing     int    `json:"spacing"`
}

type Object struct {
	ID         int        `json:"id"`
	Name       string     `json:"name"`
	Type       string     `json:"type"`
	X          float64    `json:"x"`
	Y          float64    `json:"y"`
	Width      float64    `json:"width"`
	Height     float64    `json:"height"`
	Properties Properties `json:"properties"`
}

// Properties are custom object properties keyed by name. Values keep
// their textual form so they can be read back as any type.
type Properties map[string]string

type rawProperty struct {
	Name  string          `json:"name"`
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`
}

func (p *Properties) UnmarshalJSON(data []byte) error {
	var raw []rawProperty
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	props := make(Properties, len(raw))
	for _, r := range raw {
		var s string
		if err := json.Unmarshal(r.Value, &s); err == nil {
			props[r.Name] = s
			continue
		}
		props[r.Name] = string(bytes.TrimSpace(r.Value))
	}
	*p = props
	return nil
}

// Load reads and parses the map file at path
func Load(path string) (*Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("tiled: load %s: %w", path, err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

func Parse(data []byte) (*Map, error) {
	var m Map
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("tiled: unmarshal map: %w", err)
	}
	return &m, nil
}

// PixelSize is the size of the map in world pixels
func (m *Map) PixelSize() (width, height float64) {
	return float64(m.Width * m.TileWidth), float64(m.Height * m.TileHeight)
}

// Layer returns the first layer named name
func (m *Map) Layer(name string) (*Layer, error) {
	for i := range m.Layers {
		if m.Layers[i].Name == name {
			return &m.Layers[i], nil
		}
	}
	return nil, fmt.Errorf("tiled: layer %q: %w", name, ErrLayerNotFound)
}

// Objects returns the objects of a named object layer
func (m *Map) Objects(name string) ([]Object, error) {
	layer, err := m.Layer(name)
	if err != nil {
		return nil, err
	}
	if layer.Type != ObjectGroup {
		return nil, fmt.Errorf("tiled: layer %q is a %s, not an object group", name, layer.Type)
	}
	return layer.Objects, nil
}

// Tile describes where to find one tile's pixels
type Tile struct {
	Tileset *Tileset
	SrcX    int
	SrcY    int
	W, H    int
	FlipH   bool
	FlipV   bool
}

// Tile resolves a gid from a tile layer. ok is false for empty cells and
// gids no tileset covers.
func (m *Map) Tile(gid uint32) (Tile, bool) {
	id := gid & gidMask
	if id == 0 {
		return Tile{}, false
	}

	var ts *Tileset
	for i := range m.Tilesets {
		if m.Tilesets[i].FirstGID <= id && (ts == nil || m.Tilesets[i].FirstGID > ts.FirstGID) {
			ts = &m.Tilesets[i]
		}
	}
	if ts == nil || ts.Columns == 0 {
		return Tile{}, false
	}

	local := int(id - ts.FirstGID)
	if ts.TileCount > 0 && local >= ts.TileCount {
		return Tile{}, false
	}
	col, row := local%ts.Columns, local/ts.Columns
	return Tile{
		Tileset: ts,
		SrcX:    ts.Margin + col*(ts.TileWidth+ts.Spacing),
		SrcY:    ts.Margin + row*(ts.TileHeight+ts.Spacing),
		W:       ts.TileWidth,
		H:       ts.TileHeight,
		FlipH:   gid&0x80000000 != 0,
		FlipV:   gid&0x40000000 != 0,
	}, true
}

// String returns a property value
func (o *Object) String(name string) (string, error) {
	v, ok := o.Properties[name]
	if !ok {
		return "", fmt.Errorf("tiled: object %d %q: property %q: %w", o.ID, o.Name, name, ErrPropertyNotFound)
	}
	return v, nil
}

// Float parses a property as a number
func (o *Object) Float(name string) (float64, error) {
	v, err := o.String(name)
	if err != nil {
		return 0, err
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("tiled: object %d %q: property %q=%q: %w", o.ID, o.Name, name, v, ErrPropertyType)
	}
	return f, nil
}

// Int parses a property as an integer
func (o *Object) Int(name string) (int, error) {
	v, err := o.String(name)
	if err != nil {
		return 0, err
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("tiled: object %d %q: property %q=%q: %w", o.ID, o.Name, name, v, ErrPropertyType)
	}
	return i, nil
}

// FloatOr is Float with a default for missing properties. Malformed values
// are still errors.
func (o *Object) FloatOr(name string, def float64) (float64, error) {
	if _, ok := o.Properties[name]; !ok {
		return def, nil
	}
	return o.Float(name)
}
