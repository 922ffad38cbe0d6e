package ports

import "quartz-skins/internal/types"

// Handle is a stable identity for a mutable host object. Undo entries
// refer to targets through handles so that a destroyed widget is detected
// at rollback time instead of being written through a stale reference.
type Handle uint64

// Target is anything whose properties a skin can write: widgets and the
// per-state sprite sets of multi-state buttons.
type Target interface {
	Handle() Handle
	TypeName() string
}

// Widget is one named node of the host widget tree.
type Widget interface {
	Target
	Name() string
	Children() []Widget
	FindChild(name string) (Widget, bool)
}

// MultiStateWidget is implemented by widgets exposing indexed per-state
// sprite collections.
type MultiStateWidget interface {
	Widget
	SpriteStates(kind types.SpriteSetKind) ([]Target, bool)
}

// WidgetTree is the host collaborator the applicator mutates.
type WidgetTree interface {
	// Roots returns the direct children of the host root view.
	Roots() []Widget
	FindRoot(name string) (Widget, bool)
	// Lookup resolves a handle captured earlier; false once the target
	// has been destroyed.
	Lookup(handle Handle) (Target, bool)
}
