package types

import "strings"

// Node is a parsed XML element. Skin and module documents are both read
// into this shape and interpreted by the core.
type Node struct {
	Tag      string
	Attrs    map[string]string
	Text     string
	Children []*Node
	// Path identifies the element for diagnostics, e.g.
	// "UIView/Component[name=Panel]/textColor".
	Path string
}

// Attr returns a trimmed attribute value and whether it was present.
func (n *Node) Attr(name string) (string, bool) {
	if n == nil || n.Attrs == nil {
		return "", false
	}
	value, ok := n.Attrs[name]
	return strings.TrimSpace(value), ok
}

// Child returns the first direct child with the given tag.
func (n *Node) Child(tag string) *Node {
	if n == nil {
		return nil
	}
	for _, child := range n.Children {
		if child.Tag == tag {
			return child
		}
	}
	return nil
}

// SkinMetadata describes a discovered skin without loading it.
type SkinMetadata struct {
	Name   string
	Author string
	// Dir is the skin directory containing skin.xml.
	Dir    string
	Legacy bool
}
