package ui

import (
	"quartz-skins/internal/ports"
	"quartz-skins/internal/types"
)

const (
	TypeComponent        = "UIComponent"
	TypePanel            = "UIPanel"
	TypeLabel            = "UILabel"
	TypeButton           = "UIButton"
	TypeSprite           = "UISprite"
	TypeMultiStateButton = "UIMultiStateButton"
	TypeSpriteSetState   = "SpriteSetState"
)

type node interface {
	ports.Widget
	base() *Component
}

// Component carries the properties every widget has.
type Component struct {
	handle   ports.Handle
	typeName string
	name     string
	parent   ports.Widget
	children []ports.Widget

	Visible          bool
	Interactive      bool
	Size             types.Vector2
	RelativePosition types.Vector2
	Color            types.Color
	Opacity          float64
	ZOrder           int
	Tooltip          string
}

func (c *Component) Handle() ports.Handle { return c.handle }
func (c *Component) TypeName() string     { return c.typeName }
func (c *Component) Name() string         { return c.name }
func (c *Component) base() *Component     { return c }

// Parent returns nil for root components.
func (c *Component) Parent() ports.Widget { return c.parent }

func (c *Component) Children() []ports.Widget {
	out := make([]ports.Widget, len(c.children))
	copy(out, c.children)
	return out
}

func (c *Component) FindChild(name string) (ports.Widget, bool) {
	return findByName(c.children, name)
}

// AbsolutePosition is derived from the parent chain and cannot be set.
func (c *Component) AbsolutePosition() types.Vector2 {
	position := c.RelativePosition
	for parent := c.parent; parent != nil; {
		owner := parent.(node).base()
		position.X += owner.RelativePosition.X
		position.Y += owner.RelativePosition.Y
		parent = owner.parent
	}
	return position
}

type Panel struct {
	Component
	Atlas            *types.Atlas
	BackgroundSprite string
	Padding          types.RectOffset
	AutoLayout       bool
}

type Label struct {
	Component
	Text          string
	TextColor     types.Color
	TextScale     float64
	TextAlignment HorizontalAlignment
	Padding       types.RectOffset
}

type Button struct {
	Component
	Atlas                *types.Atlas
	Text                 string
	TextColor            types.Color
	HoveredTextColor     types.Color
	TextScale            float64
	NormalBgSprite       string
	HoveredBgSprite      string
	PressedBgSprite      string
	FocusedBgSprite      string
	DisabledBgSprite     string
	NormalFgSprite       string
	HoveredFgSprite      string
	PressedFgSprite      string
	ForegroundSpriteMode SpriteMode
	HorizontalAlignment  HorizontalAlignment
}

func (b *Button) button() *Button { return b }

type Sprite struct {
	Component
	Atlas      *types.Atlas
	SpriteName string
	Icon       types.SpriteRef
	FillAmount float64
}

// SpriteSetState is the sprite set of one state of a multi-state button.
type SpriteSetState struct {
	handle   ports.Handle
	Normal   string
	Hovered  string
	Focused  string
	Pressed  string
	Disabled string
}

func (s *SpriteSetState) Handle() ports.Handle { return s.handle }
func (s *SpriteSetState) TypeName() string     { return TypeSpriteSetState }

type MultiStateButton struct {
	Button
	ActiveStateIndex int
	background       []*SpriteSetState
	foreground       []*SpriteSetState
}

func (m *MultiStateButton) SpriteStates(kind types.SpriteSetKind) ([]ports.Target, bool) {
	var set []*SpriteSetState
	switch kind {
	case types.SpriteSetBackground:
		set = m.background
	case types.SpriteSetForeground:
		set = m.foreground
	default:
		return nil, false
	}
	out := make([]ports.Target, len(set))
	for i, state := range set {
		out[i] = state
	}
	return out, true
}

// AddState appends one background and one foreground sprite set.
func (t *Tree) AddState(button *MultiStateButton) {
	background := &SpriteSetState{}
	background.handle = t.allocate(background)
	foreground := &SpriteSetState{}
	foreground.handle = t.allocate(foreground)
	button.background = append(button.background, background)
	button.foreground = append(button.foreground, foreground)
}

// StateCount returns the number of states of the button.
func (m *MultiStateButton) StateCount() int {
	return len(m.background)
}

func (t *Tree) initComponent(c *Component, self ports.Target, typeName string, name string) {
	c.handle = t.allocate(self)
	c.typeName = typeName
	c.name = name
	c.Visible = true
	c.Interactive = true
	c.Opacity = 1
	c.Color = types.Color{R: 255, G: 255, B: 255, A: 255}
}

var factories = map[string]func(t *Tree, name string) ports.Widget{
	TypeComponent: func(t *Tree, name string) ports.Widget {
		w := &Component{}
		t.initComponent(w, w, TypeComponent, name)
		return w
	},
	TypePanel: func(t *Tree, name string) ports.Widget {
		w := &Panel{}
		t.initComponent(&w.Component, w, TypePanel, name)
		return w
	},
	TypeLabel: func(t *Tree, name string) ports.Widget {
		w := &Label{TextScale: 1, TextAlignment: AlignLeft}
		t.initComponent(&w.Component, w, TypeLabel, name)
		return w
	},
	TypeButton: func(t *Tree, name string) ports.Widget {
		w := &Button{TextScale: 1, ForegroundSpriteMode: SpriteModeStretch, HorizontalAlignment: AlignCenter}
		t.initComponent(&w.Component, w, TypeButton, name)
		return w
	},
	TypeSprite: func(t *Tree, name string) ports.Widget {
		w := &Sprite{FillAmount: 1}
		t.initComponent(&w.Component, w, TypeSprite, name)
		return w
	},
	TypeMultiStateButton: func(t *Tree, name string) ports.Widget {
		w := &MultiStateButton{}
		w.TextScale = 1
		w.ForegroundSpriteMode = SpriteModeStretch
		w.HorizontalAlignment = AlignCenter
		t.initComponent(&w.Component, w, TypeMultiStateButton, name)
		t.AddState(w)
		return w
	},
}

var _ ports.MultiStateWidget = (*MultiStateButton)(nil)
