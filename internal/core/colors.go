package core

import "quartz-skins/internal/types"

// ColorTable holds a document's named colors in definition order.
type ColorTable struct {
	names  []string
	colors map[string]types.Color
}

func NewColorTable() *ColorTable {
	return &ColorTable{colors: map[string]types.Color{}}
}

// Define adds a color. It returns false, leaving the first definition in
// place, when the name is already taken.
func (t *ColorTable) Define(name string, color types.Color) bool {
	if _, exists := t.colors[name]; exists {
		return false
	}
	t.names = append(t.names, name)
	t.colors[name] = color
	return true
}

func (t *ColorTable) LookupColor(name string) (types.Color, bool) {
	color, ok := t.colors[name]
	return color, ok
}

func (t *ColorTable) Names() []string {
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

func (t *ColorTable) Len() int {
	return len(t.names)
}

func (t *ColorTable) Clear() {
	t.names = nil
	t.colors = map[string]types.Color{}
}

var _ ColorLookup = (*ColorTable)(nil)
