// Package ui is an in-memory host widget tree. It mirrors the shape of the
// game UI the skin engine was built against: a root view holding named
// components, each exposing a static registry of typed properties. The CLI
// loads it from scene snapshots and the tests mutate it directly.
package ui

import (
	"fmt"
	"sort"

	"quartz-skins/internal/ports"
	"quartz-skins/internal/types"
)

// Tree owns every widget and sprite-state target and hands out handles.
type Tree struct {
	next    ports.Handle
	roots   []ports.Widget
	targets map[ports.Handle]ports.Target
}

func NewTree() *Tree {
	return &Tree{targets: map[ports.Handle]ports.Target{}}
}

func (t *Tree) allocate(target ports.Target) ports.Handle {
	t.next++
	t.targets[t.next] = target
	return t.next
}

// Add creates a widget of typeName named name under parent. A nil parent
// adds a root component.
func (t *Tree) Add(parent ports.Widget, typeName string, name string) (ports.Widget, error) {
	factory, ok := factories[typeName]
	if !ok {
		return nil, fmt.Errorf("unknown widget type %q", typeName)
	}
	widget := factory(t, name)
	if parent == nil {
		t.roots = append(t.roots, widget)
		return widget, nil
	}
	owner, ok := parent.(node)
	if !ok {
		return nil, fmt.Errorf("parent %q does not belong to this tree", parent.Name())
	}
	base := owner.base()
	widget.(node).base().parent = parent
	base.children = append(base.children, widget)
	return widget, nil
}

// MustAdd is Add for fixtures where the type is known to exist.
func (t *Tree) MustAdd(parent ports.Widget, typeName string, name string) ports.Widget {
	widget, err := t.Add(parent, typeName, name)
	if err != nil {
		panic(err)
	}
	return widget
}

// Remove destroys a widget and its subtree. Handles of removed targets
// stop resolving.
func (t *Tree) Remove(widget ports.Widget) {
	n, ok := widget.(node)
	if !ok {
		return
	}
	base := n.base()
	if base.parent != nil {
		parent := base.parent.(node).base()
		parent.children = removeWidget(parent.children, widget)
	} else {
		t.roots = removeWidget(t.roots, widget)
	}
	t.forget(widget)
}

func (t *Tree) forget(widget ports.Widget) {
	delete(t.targets, widget.Handle())
	if states, ok := widget.(ports.MultiStateWidget); ok {
		for _, kind := range []types.SpriteSetKind{types.SpriteSetBackground, types.SpriteSetForeground} {
			set, _ := states.SpriteStates(kind)
			for _, state := range set {
				delete(t.targets, state.Handle())
			}
		}
	}
	for _, child := range widget.Children() {
		t.forget(child)
	}
}

func removeWidget(list []ports.Widget, widget ports.Widget) []ports.Widget {
	out := list[:0]
	for _, candidate := range list {
		if candidate.Handle() != widget.Handle() {
			out = append(out, candidate)
		}
	}
	return out
}

func (t *Tree) Roots() []ports.Widget {
	out := make([]ports.Widget, len(t.roots))
	copy(out, t.roots)
	return out
}

func (t *Tree) FindRoot(name string) (ports.Widget, bool) {
	return findByName(t.roots, name)
}

func (t *Tree) Lookup(handle ports.Handle) (ports.Target, bool) {
	target, ok := t.targets[handle]
	return target, ok
}

// Find resolves a slash-separated path of widget names from the roots.
func (t *Tree) Find(path ...string) (ports.Widget, bool) {
	if len(path) == 0 {
		return nil, false
	}
	current, ok := t.FindRoot(path[0])
	for _, name := range path[1:] {
		if !ok {
			return nil, false
		}
		current, ok = current.FindChild(name)
	}
	return current, ok
}

// LookupProperty implements ports.PropertySource over the static
// registry.
func (t *Tree) LookupProperty(typeName string, name string) (ports.PropertyDescriptor, bool) {
	return Registry.LookupProperty(typeName, name)
}

func (t *Tree) Properties(typeName string) []ports.PropertyDescriptor {
	return Registry.Properties(typeName)
}

// TypeNames lists every widget type the tree can construct.
func TypeNames() []string {
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func findByName(list []ports.Widget, name string) (ports.Widget, bool) {
	for _, widget := range list {
		if widget.Name() == name {
			return widget, true
		}
	}
	return nil, false
}

var (
	_ ports.WidgetTree     = (*Tree)(nil)
	_ ports.PropertySource = (*Tree)(nil)
)
