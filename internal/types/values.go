package types

import (
	"fmt"
	"image"
	"math"
)

// Color is an 8-bit RGBA color as stored on widget properties.
type Color struct {
	R uint8 `yaml:"r"`
	G uint8 `yaml:"g"`
	B uint8 `yaml:"b"`
	A uint8 `yaml:"a"`
}

func (c Color) String() string {
	return fmt.Sprintf("%d,%d,%d,%d", c.R, c.G, c.B, c.A)
}

// Rect is an axis-aligned rectangle. Render areas use normalized
// coordinates with a bottom-left origin; everything else is in pixels.
type Rect struct {
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// FullScreen is the default render area.
var FullScreen = Rect{X: 0, Y: 0, Width: 1, Height: 1}

// Valid reports whether the rectangle has a positive, finite extent.
func (r Rect) Valid() bool {
	for _, v := range []float64{r.X, r.Y, r.Width, r.Height} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return r.Width > 0 && r.Height > 0
}

func (r Rect) String() string {
	return fmt.Sprintf("%g,%g,%g,%g", r.X, r.Y, r.Width, r.Height)
}

type Vector2 struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

func (v Vector2) String() string {
	return fmt.Sprintf("%g,%g", v.X, v.Y)
}

// RectOffset is a padding/margin quadruple.
type RectOffset struct {
	Left   int `yaml:"left"`
	Right  int `yaml:"right"`
	Top    int `yaml:"top"`
	Bottom int `yaml:"bottom"`
}

func (o RectOffset) String() string {
	return fmt.Sprintf("%d,%d,%d,%d", o.Left, o.Right, o.Top, o.Bottom)
}

// SpriteRef points at one sprite inside a packed atlas.
type SpriteRef struct {
	Atlas  string
	Sprite string
}

func (s SpriteRef) String() string {
	if s.Atlas == "" {
		return s.Sprite
	}
	return s.Atlas + "/" + s.Sprite
}

// SpriteSource is one input to the atlas packer.
type SpriteSource struct {
	Name string
	Path string
}

// SpriteInfo locates a packed sprite inside its atlas texture.
type SpriteInfo struct {
	Name   string
	Region image.Rectangle
}

// Atlas is a named, packed sprite sheet. Atlases are compared by
// pointer identity when used as property values.
type Atlas struct {
	Name    string
	Texture *image.RGBA
	Sprites map[string]SpriteInfo
	order   []string
}

func NewAtlas(name string, texture *image.RGBA) *Atlas {
	return &Atlas{Name: name, Texture: texture, Sprites: map[string]SpriteInfo{}}
}

// AddSprite registers a packed sprite, keeping insertion order.
func (a *Atlas) AddSprite(info SpriteInfo) {
	if _, ok := a.Sprites[info.Name]; !ok {
		a.order = append(a.order, info.Name)
	}
	a.Sprites[info.Name] = info
}

// SpriteNames returns sprite names in packing order.
func (a *Atlas) SpriteNames() []string {
	out := make([]string, len(a.order))
	copy(out, a.order)
	return out
}

func (a *Atlas) HasSprite(name string) bool {
	_, ok := a.Sprites[name]
	return ok
}

func (a *Atlas) String() string {
	if a == nil {
		return "<nil>"
	}
	return a.Name
}
