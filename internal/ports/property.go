package ports

import "quartz-skins/internal/types"

// PropertyDescriptor is a typed accessor for one named property of one
// host type. A nil Set marks the property read-only.
type PropertyDescriptor struct {
	Owner string
	Name  string
	Kind  types.PropertyKind
	Get   func(target Target) (any, error)
	Set   func(target Target, value any) error
	// Parse converts an enumerant literal for KindEnum properties.
	Parse func(text string) (any, error)
}

func (d PropertyDescriptor) Writable() bool {
	return d.Set != nil
}

// PropertySource is the host's static type surface: every host type
// publishes an enumerable property registry.
type PropertySource interface {
	LookupProperty(typeName string, name string) (PropertyDescriptor, bool)
	Properties(typeName string) []PropertyDescriptor
}
