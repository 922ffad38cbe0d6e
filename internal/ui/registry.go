package ui

import (
	"fmt"
	"sort"

	"quartz-skins/internal/ports"
	"quartz-skins/internal/types"
)

type HorizontalAlignment string

const (
	AlignLeft   HorizontalAlignment = "Left"
	AlignCenter HorizontalAlignment = "Center"
	AlignRight  HorizontalAlignment = "Right"
)

type SpriteMode string

const (
	SpriteModeStretch SpriteMode = "Stretch"
	SpriteModeFill    SpriteMode = "Fill"
	SpriteModeScale   SpriteMode = "Scale"
)

// PropertyRegistry maps a host type name to its property accessors. It
// is built once and never mutated afterwards.
type PropertyRegistry struct {
	byType map[string]map[string]ports.PropertyDescriptor
}

// Registry holds the property surface of every widget type in this
// package.
var Registry = buildRegistry()

func (r PropertyRegistry) LookupProperty(typeName string, name string) (ports.PropertyDescriptor, bool) {
	props, ok := r.byType[typeName]
	if !ok {
		return ports.PropertyDescriptor{}, false
	}
	desc, ok := props[name]
	return desc, ok
}

// Properties returns the descriptors of typeName sorted by name.
func (r PropertyRegistry) Properties(typeName string) []ports.PropertyDescriptor {
	props := r.byType[typeName]
	out := make([]ports.PropertyDescriptor, 0, len(props))
	for _, desc := range props {
		out = append(out, desc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func prop[T any, V any](kind types.PropertyKind, name string, get func(T) V, set func(T, V)) ports.PropertyDescriptor {
	desc := ports.PropertyDescriptor{Name: name, Kind: kind}
	desc.Get = func(target ports.Target) (any, error) {
		typed, ok := target.(T)
		if !ok {
			return nil, fmt.Errorf("property %q does not apply to %s", name, target.TypeName())
		}
		return get(typed), nil
	}
	if set != nil {
		desc.Set = func(target ports.Target, value any) error {
			typed, ok := target.(T)
			if !ok {
				return fmt.Errorf("property %q does not apply to %s", name, target.TypeName())
			}
			converted, ok := value.(V)
			if !ok {
				return fmt.Errorf("property %q expects %T, got %T", name, *new(V), value)
			}
			set(typed, converted)
			return nil
		}
	}
	return desc
}

func enumProp[T any, V ~string](name string, allowed []V, get func(T) V, set func(T, V)) ports.PropertyDescriptor {
	desc := prop(types.KindEnum, name, get, set)
	desc.Parse = func(text string) (any, error) {
		for _, candidate := range allowed {
			if string(candidate) == text {
				return candidate, nil
			}
		}
		return nil, fmt.Errorf("unknown %s literal %q", name, text)
	}
	return desc
}

var (
	alignments  = []HorizontalAlignment{AlignLeft, AlignCenter, AlignRight}
	spriteModes = []SpriteMode{SpriteModeStretch, SpriteModeFill, SpriteModeScale}
)

type buttonNode interface {
	button() *Button
}

func componentProperties() []ports.PropertyDescriptor {
	return []ports.PropertyDescriptor{
		prop(types.KindBool, "isVisible",
			func(n node) bool { return n.base().Visible },
			func(n node, v bool) { n.base().Visible = v }),
		prop(types.KindBool, "isInteractive",
			func(n node) bool { return n.base().Interactive },
			func(n node, v bool) { n.base().Interactive = v }),
		prop(types.KindVector2, "size",
			func(n node) types.Vector2 { return n.base().Size },
			func(n node, v types.Vector2) { n.base().Size = v }),
		prop(types.KindFloat, "width",
			func(n node) float64 { return n.base().Size.X },
			func(n node, v float64) { n.base().Size.X = v }),
		prop(types.KindFloat, "height",
			func(n node) float64 { return n.base().Size.Y },
			func(n node, v float64) { n.base().Size.Y = v }),
		prop(types.KindVector2, "relativePosition",
			func(n node) types.Vector2 { return n.base().RelativePosition },
			func(n node, v types.Vector2) { n.base().RelativePosition = v }),
		prop[node, types.Vector2](types.KindVector2, "absolutePosition",
			func(n node) types.Vector2 { return n.base().AbsolutePosition() },
			nil),
		prop(types.KindNamedColor, "color",
			func(n node) types.Color { return n.base().Color },
			func(n node, v types.Color) { n.base().Color = v }),
		prop(types.KindFloat, "opacity",
			func(n node) float64 { return n.base().Opacity },
			func(n node, v float64) { n.base().Opacity = v }),
		prop(types.KindInt, "zOrder",
			func(n node) int { return n.base().ZOrder },
			func(n node, v int) { n.base().ZOrder = v }),
		prop(types.KindString, "tooltip",
			func(n node) string { return n.base().Tooltip },
			func(n node, v string) { n.base().Tooltip = v }),
	}
}

func panelProperties() []ports.PropertyDescriptor {
	return []ports.PropertyDescriptor{
		prop(types.KindAtlas, "atlas",
			func(p *Panel) *types.Atlas { return p.Atlas },
			func(p *Panel, v *types.Atlas) { p.Atlas = v }),
		prop(types.KindString, "backgroundSprite",
			func(p *Panel) string { return p.BackgroundSprite },
			func(p *Panel, v string) { p.BackgroundSprite = v }),
		prop(types.KindRectOffset, "padding",
			func(p *Panel) types.RectOffset { return p.Padding },
			func(p *Panel, v types.RectOffset) { p.Padding = v }),
		prop(types.KindBool, "autoLayout",
			func(p *Panel) bool { return p.AutoLayout },
			func(p *Panel, v bool) { p.AutoLayout = v }),
	}
}

func labelProperties() []ports.PropertyDescriptor {
	return []ports.PropertyDescriptor{
		prop(types.KindString, "text",
			func(l *Label) string { return l.Text },
			func(l *Label, v string) { l.Text = v }),
		prop(types.KindNamedColor, "textColor",
			func(l *Label) types.Color { return l.TextColor },
			func(l *Label, v types.Color) { l.TextColor = v }),
		prop(types.KindFloat, "textScale",
			func(l *Label) float64 { return l.TextScale },
			func(l *Label, v float64) { l.TextScale = v }),
		enumProp("textAlignment", alignments,
			func(l *Label) HorizontalAlignment { return l.TextAlignment },
			func(l *Label, v HorizontalAlignment) { l.TextAlignment = v }),
		prop(types.KindRectOffset, "padding",
			func(l *Label) types.RectOffset { return l.Padding },
			func(l *Label, v types.RectOffset) { l.Padding = v }),
	}
}

func buttonSprite(name string, field func(b *Button) *string) ports.PropertyDescriptor {
	return prop(types.KindString, name,
		func(n buttonNode) string { return *field(n.button()) },
		func(n buttonNode, v string) { *field(n.button()) = v })
}

func buttonProperties() []ports.PropertyDescriptor {
	return []ports.PropertyDescriptor{
		prop(types.KindAtlas, "atlas",
			func(n buttonNode) *types.Atlas { return n.button().Atlas },
			func(n buttonNode, v *types.Atlas) { n.button().Atlas = v }),
		prop(types.KindString, "text",
			func(n buttonNode) string { return n.button().Text },
			func(n buttonNode, v string) { n.button().Text = v }),
		prop(types.KindNamedColor, "textColor",
			func(n buttonNode) types.Color { return n.button().TextColor },
			func(n buttonNode, v types.Color) { n.button().TextColor = v }),
		prop(types.KindNamedColor, "hoveredTextColor",
			func(n buttonNode) types.Color { return n.button().HoveredTextColor },
			func(n buttonNode, v types.Color) { n.button().HoveredTextColor = v }),
		prop(types.KindFloat, "textScale",
			func(n buttonNode) float64 { return n.button().TextScale },
			func(n buttonNode, v float64) { n.button().TextScale = v }),
		buttonSprite("normalBgSprite", func(b *Button) *string { return &b.NormalBgSprite }),
		buttonSprite("hoveredBgSprite", func(b *Button) *string { return &b.HoveredBgSprite }),
		buttonSprite("pressedBgSprite", func(b *Button) *string { return &b.PressedBgSprite }),
		buttonSprite("focusedBgSprite", func(b *Button) *string { return &b.FocusedBgSprite }),
		buttonSprite("disabledBgSprite", func(b *Button) *string { return &b.DisabledBgSprite }),
		buttonSprite("normalFgSprite", func(b *Button) *string { return &b.NormalFgSprite }),
		buttonSprite("hoveredFgSprite", func(b *Button) *string { return &b.HoveredFgSprite }),
		buttonSprite("pressedFgSprite", func(b *Button) *string { return &b.PressedFgSprite }),
		enumProp("foregroundSpriteMode", spriteModes,
			func(n buttonNode) SpriteMode { return n.button().ForegroundSpriteMode },
			func(n buttonNode, v SpriteMode) { n.button().ForegroundSpriteMode = v }),
		enumProp("horizontalAlignment", alignments,
			func(n buttonNode) HorizontalAlignment { return n.button().HorizontalAlignment },
			func(n buttonNode, v HorizontalAlignment) { n.button().HorizontalAlignment = v }),
	}
}

func spriteProperties() []ports.PropertyDescriptor {
	return []ports.PropertyDescriptor{
		prop(types.KindAtlas, "atlas",
			func(s *Sprite) *types.Atlas { return s.Atlas },
			func(s *Sprite, v *types.Atlas) { s.Atlas = v }),
		prop(types.KindString, "spriteName",
			func(s *Sprite) string { return s.SpriteName },
			func(s *Sprite, v string) { s.SpriteName = v }),
		prop(types.KindSprite, "icon",
			func(s *Sprite) types.SpriteRef { return s.Icon },
			func(s *Sprite, v types.SpriteRef) { s.Icon = v }),
		prop(types.KindFloat, "fillAmount",
			func(s *Sprite) float64 { return s.FillAmount },
			func(s *Sprite, v float64) { s.FillAmount = v }),
	}
}

func multiStateProperties() []ports.PropertyDescriptor {
	return []ports.PropertyDescriptor{
		prop(types.KindInt, "activeStateIndex",
			func(m *MultiStateButton) int { return m.ActiveStateIndex },
			func(m *MultiStateButton, v int) { m.ActiveStateIndex = v }),
	}
}

func stateSprite(name string, field func(s *SpriteSetState) *string) ports.PropertyDescriptor {
	return prop(types.KindString, name,
		func(s *SpriteSetState) string { return *field(s) },
		func(s *SpriteSetState, v string) { *field(s) = v })
}

func spriteSetStateProperties() []ports.PropertyDescriptor {
	return []ports.PropertyDescriptor{
		stateSprite("normal", func(s *SpriteSetState) *string { return &s.Normal }),
		stateSprite("hovered", func(s *SpriteSetState) *string { return &s.Hovered }),
		stateSprite("focused", func(s *SpriteSetState) *string { return &s.Focused }),
		stateSprite("pressed", func(s *SpriteSetState) *string { return &s.Pressed }),
		stateSprite("disabled", func(s *SpriteSetState) *string { return &s.Disabled }),
	}
}

func buildRegistry() PropertyRegistry {
	layers := map[string][][]ports.PropertyDescriptor{
		TypeComponent:        {componentProperties()},
		TypePanel:            {componentProperties(), panelProperties()},
		TypeLabel:            {componentProperties(), labelProperties()},
		TypeButton:           {componentProperties(), buttonProperties()},
		TypeSprite:           {componentProperties(), spriteProperties()},
		TypeMultiStateButton: {componentProperties(), buttonProperties(), multiStateProperties()},
		TypeSpriteSetState:   {spriteSetStateProperties()},
	}
	registry := PropertyRegistry{byType: map[string]map[string]ports.PropertyDescriptor{}}
	for typeName, groups := range layers {
		props := map[string]ports.PropertyDescriptor{}
		for _, group := range groups {
			for _, desc := range group {
				desc.Owner = typeName
				props[desc.Name] = desc
			}
		}
		registry.byType[typeName] = props
	}
	return registry
}
