package core

import (
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"quartz-skins/internal/ports"
	"quartz-skins/internal/skinerr"
	"quartz-skins/internal/types"
)

// Reference resolution skin authors lay out render areas against.
const (
	ReferenceWidth  = 1920.0
	ReferenceHeight = 1080.0
)

// ColorLookup resolves named colors of the owning skin document.
type ColorLookup interface {
	LookupColor(name string) (types.Color, bool)
}

// CoercionContext carries everything a value conversion may consult.
type CoercionContext struct {
	// Node identifies the rule being coerced in diagnostics.
	Node    string
	Raw     bool
	Colors  ColorLookup
	Atlases map[string]*types.Atlas
}

// Coerce converts raw rule text into the value desc expects. It never
// touches the target.
func Coerce(desc ports.PropertyDescriptor, raw string, cctx CoercionContext) (any, error) {
	text := strings.TrimSpace(raw)
	switch desc.Kind {
	case types.KindBool:
		return ParseBool(text, cctx.Node)
	case types.KindInt:
		value, err := strconv.Atoi(text)
		if err != nil {
			return nil, malformed(cctx.Node, "integer", text)
		}
		return value, nil
	case types.KindFloat:
		value, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, malformed(cctx.Node, "number", text)
		}
		return value, nil
	case types.KindString:
		return text, nil
	case types.KindColor:
		return ParseColor(text, cctx.Node)
	case types.KindNamedColor:
		if cctx.Raw {
			return ParseColor(text, cctx.Node)
		}
		if cctx.Colors == nil {
			return nil, skinerr.Newf(skinerr.ColorNotFound, cctx.Node, "no color table to resolve %q", text)
		}
		color, ok := cctx.Colors.LookupColor(text)
		if !ok {
			return nil, skinerr.Newf(skinerr.ColorNotFound, cctx.Node, "failed to find definition for color %q", text)
		}
		return color, nil
	case types.KindRect:
		return ParseRect(text, cctx.Node)
	case types.KindVector2:
		parts, err := parseFloats(text, 2, cctx.Node, "vector2")
		if err != nil {
			return nil, err
		}
		return types.Vector2{X: parts[0], Y: parts[1]}, nil
	case types.KindRectOffset:
		parts, err := parseInts(text, 4, cctx.Node, "rect offset")
		if err != nil {
			return nil, err
		}
		return types.RectOffset{Left: parts[0], Right: parts[1], Top: parts[2], Bottom: parts[3]}, nil
	case types.KindEnum:
		if desc.Parse == nil {
			return nil, skinerr.Newf(skinerr.UnsupportedType, cctx.Node, "enum property %q has no literal parser", desc.Name)
		}
		value, err := desc.Parse(text)
		if err != nil {
			return nil, skinerr.Wrap(skinerr.MalformedValue, cctx.Node, "invalid enum literal "+strconv.Quote(text), err)
		}
		return value, nil
	case types.KindAtlas:
		return lookupAtlas(text, cctx)
	case types.KindSprite:
		atlasName, spriteName, ok := strings.Cut(text, "/")
		if !ok || atlasName == "" || spriteName == "" {
			return nil, malformed(cctx.Node, "sprite reference (atlas/sprite)", text)
		}
		atlas, err := lookupAtlas(atlasName, cctx)
		if err != nil {
			return nil, err
		}
		if !atlas.HasSprite(spriteName) {
			return nil, skinerr.Newf(skinerr.SpriteNotFound, cctx.Node, "failed to find sprite %q in atlas %q", spriteName, atlasName)
		}
		return types.SpriteRef{Atlas: atlasName, Sprite: spriteName}, nil
	default:
		return nil, skinerr.Newf(skinerr.UnsupportedType, cctx.Node, "unsupported property type %q", desc.Kind)
	}
}

func lookupAtlas(name string, cctx CoercionContext) (*types.Atlas, error) {
	atlas, ok := cctx.Atlases[name]
	if !ok || atlas == nil {
		return nil, skinerr.Newf(skinerr.AtlasNotFound, cctx.Node, "failed to find atlas %q in skin", name)
	}
	return atlas, nil
}

// ParseBool accepts "true"/"false" in any case.
func ParseBool(text string, node string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	default:
		return false, malformed(node, "boolean", text)
	}
}

// ParseColor accepts "#RRGGBB" (opaque) or "r,g,b,a" byte quadruples.
func ParseColor(text string, node string) (types.Color, error) {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "#") {
		if len(text) != 7 {
			return types.Color{}, malformed(node, "#RRGGBB color", text)
		}
		parsed, err := colorful.Hex(strings.ToLower(text))
		if err != nil {
			return types.Color{}, skinerr.Wrap(skinerr.MalformedValue, node, "invalid hex color "+strconv.Quote(text), err)
		}
		r, g, b := parsed.RGB255()
		return types.Color{R: r, G: g, B: b, A: 255}, nil
	}
	parts := strings.Split(text, ",")
	if len(parts) != 4 {
		return types.Color{}, malformed(node, "color with four components", text)
	}
	var channels [4]uint8
	for i, part := range parts {
		value, err := strconv.ParseUint(strings.TrimSpace(part), 10, 8)
		if err != nil {
			return types.Color{}, malformed(node, "color byte", part)
		}
		channels[i] = uint8(value)
	}
	return types.Color{R: channels[0], G: channels[1], B: channels[2], A: channels[3]}, nil
}

// ParseRect reads "x,y,width,height".
func ParseRect(text string, node string) (types.Rect, error) {
	parts, err := parseFloats(text, 4, node, "rectangle")
	if err != nil {
		return types.Rect{}, err
	}
	return types.Rect{X: parts[0], Y: parts[1], Width: parts[2], Height: parts[3]}, nil
}

// NormalizeRenderArea maps a top-left origin rectangle laid out on the
// reference resolution into normalized bottom-left origin coordinates.
func NormalizeRenderArea(area types.Rect) types.Rect {
	width := area.Width / ReferenceWidth
	height := area.Height / ReferenceHeight
	return types.Rect{
		X:      area.X / ReferenceWidth,
		Y:      1.0 - area.Y/ReferenceHeight - height,
		Width:  width,
		Height: height,
	}
}

func parseFloats(text string, count int, node string, what string) ([]float64, error) {
	parts := strings.Split(text, ",")
	if len(parts) != count {
		return nil, malformed(node, what, text)
	}
	values := make([]float64, count)
	for i, part := range parts {
		value, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, malformed(node, what, text)
		}
		values[i] = value
	}
	return values, nil
}

func parseInts(text string, count int, node string, what string) ([]int, error) {
	parts := strings.Split(text, ",")
	if len(parts) != count {
		return nil, malformed(node, what, text)
	}
	values := make([]int, count)
	for i, part := range parts {
		value, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, malformed(node, what, text)
		}
		values[i] = value
	}
	return values, nil
}

func malformed(node string, what string, text string) error {
	return skinerr.Newf(skinerr.MalformedValue, node, "expected %s, got %q", what, text)
}
