package types

// ContextClass names the host context a module applies to.
type ContextClass string

const (
	ContextMainMenu    ContextClass = "MainMenu"
	ContextInGame      ContextClass = "InGame"
	ContextMapEditor   ContextClass = "MapEditor"
	ContextAssetEditor ContextClass = "AssetEditor"
)

// ContextClasses lists every context class in override discovery order.
var ContextClasses = []ContextClass{
	ContextMainMenu,
	ContextAssetEditor,
	ContextMapEditor,
	ContextInGame,
}

// ParseContextClass returns the class for an exact tag match.
func ParseContextClass(value string) (ContextClass, bool) {
	for _, class := range ContextClasses {
		if string(class) == value {
			return class, true
		}
	}
	return "", false
}

// AspectRatio is the coarse viewport shape class used by `aspect` rules.
type AspectRatio string

const (
	AspectAny   AspectRatio = "any"
	Aspect4x3   AspectRatio = "4:3"
	Aspect16x9  AspectRatio = "16:9"
	Aspect16x10 AspectRatio = "16:10"
	Aspect21x9  AspectRatio = "21:9"
)

// PropertyKind is the declared semantic type of a widget property.
type PropertyKind string

const (
	KindBool       PropertyKind = "bool"
	KindInt        PropertyKind = "int"
	KindFloat      PropertyKind = "float"
	KindString     PropertyKind = "string"
	KindColor      PropertyKind = "color"
	KindNamedColor PropertyKind = "named-color"
	KindRect       PropertyKind = "rect"
	KindVector2    PropertyKind = "vector2"
	KindRectOffset PropertyKind = "rect-offset"
	KindEnum       PropertyKind = "enum"
	KindAtlas      PropertyKind = "atlas"
	KindSprite     PropertyKind = "sprite"
)

// SpriteSetKind selects which per-state sprite collection a SpriteState
// leaf targets on a multi-state button.
type SpriteSetKind string

const (
	SpriteSetBackground SpriteSetKind = "background"
	SpriteSetForeground SpriteSetKind = "foreground"
)
