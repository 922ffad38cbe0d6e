package core

import (
	"strconv"

	"github.com/rs/zerolog/log"

	"quartz-skins/internal/policies"
	"quartz-skins/internal/ports"
	"quartz-skins/internal/skinerr"
	"quartz-skins/internal/types"
)

const (
	moduleRootTag  = "UIView"
	targetTag      = "Component"
	spriteStateTag = "SpriteState"
)

type RuleKind int

const (
	RuleTarget RuleKind = iota
	RuleProperty
	RuleSpriteState
)

// Rule is one node of a module's rule tree: a widget target, a property
// leaf, or a per-state sprite leaf.
type Rule struct {
	Kind RuleKind
	// Name is the widget name for targets and the property name for
	// property leaves.
	Name     string
	Value    string
	Optional bool
	Sticky   bool
	Raw      bool
	Aspect   types.AspectRatio
	// Index and SpriteSet are set for SpriteState leaves.
	Index     int
	SpriteSet types.SpriteSetKind
	Children  []*Rule
	Path      string
}

// Module is one parsed override document. It is immutable once parsed.
type Module struct {
	SourcePath string
	Roots      []*Rule
}

// WalkOptions tunes how missing widgets are handled.
type WalkOptions struct {
	// IgnoreMissingWidgets turns MissingWidget failures into logged skips.
	IgnoreMissingWidgets bool
}

// ParseModule builds a rule tree from a module document.
func ParseModule(sourcePath string, root *types.Node) (*Module, error) {
	if root == nil || root.Tag != moduleRootTag {
		tag := ""
		if root != nil {
			tag = root.Tag
		}
		return nil, skinerr.Newf(skinerr.MalformedDocument, sourcePath,
			"module root element must be %q, got %q", moduleRootTag, tag)
	}
	module := &Module{SourcePath: sourcePath}
	for _, child := range root.Children {
		if child.Tag != targetTag {
			return nil, skinerr.New(skinerr.MalformedDocument, child.Path,
				"setting properties on the UIView object is not allowed")
		}
		rule, err := parseTarget(child)
		if err != nil {
			return nil, err
		}
		module.Roots = append(module.Roots, rule)
	}
	return module, nil
}

func parseTarget(node *types.Node) (*Rule, error) {
	name, ok := node.Attr("name")
	if !ok || name == "" {
		return nil, skinerr.New(skinerr.MissingOrInvalidAttribute, node.Path, "missing or malformed attribute \"name\"")
	}
	optional, err := boolAttr(node, "optional")
	if err != nil {
		return nil, err
	}
	rule := &Rule{Kind: RuleTarget, Name: name, Optional: optional, Path: node.Path}
	for _, child := range node.Children {
		var parsed *Rule
		switch child.Tag {
		case targetTag:
			parsed, err = parseTarget(child)
		case spriteStateTag:
			parsed, err = parseSpriteState(child)
		default:
			parsed, err = parseProperty(child)
		}
		if err != nil {
			return nil, err
		}
		rule.Children = append(rule.Children, parsed)
	}
	return rule, nil
}

func parseProperty(node *types.Node) (*Rule, error) {
	if len(node.Children) > 0 {
		return nil, skinerr.Newf(skinerr.MalformedDocument, node.Path,
			"property %q must not contain nested elements", node.Tag)
	}
	rule := &Rule{Kind: RuleProperty, Name: node.Tag, Value: node.Text, Path: node.Path, Aspect: types.AspectAny}
	var err error
	if rule.Optional, err = boolAttr(node, "optional"); err != nil {
		return nil, err
	}
	if rule.Sticky, err = boolAttr(node, "sticky"); err != nil {
		return nil, err
	}
	if rule.Raw, err = boolAttr(node, "raw"); err != nil {
		return nil, err
	}
	if value, ok := node.Attr("aspect"); ok {
		aspect, valid := policies.ParseAspect(value)
		if !valid {
			return nil, skinerr.Newf(skinerr.MissingOrInvalidAttribute, node.Path,
				"invalid value for attribute \"aspect\": %q", value)
		}
		rule.Aspect = aspect
	}
	return rule, nil
}

func parseSpriteState(node *types.Node) (*Rule, error) {
	rawIndex, ok := node.Attr("index")
	if !ok {
		return nil, skinerr.New(skinerr.MissingOrInvalidAttribute, node.Path, "missing or malformed attribute \"index\"")
	}
	index, err := strconv.Atoi(rawIndex)
	if err != nil {
		return nil, skinerr.Newf(skinerr.MissingOrInvalidAttribute, node.Path, "attribute \"index\" is not an integer: %q", rawIndex)
	}
	if index < 0 {
		return nil, skinerr.Newf(skinerr.IndexOutOfRange, node.Path, "SpriteState index must not be negative: %d", index)
	}
	kind, _ := node.Attr("type")
	spriteSet := types.SpriteSetKind(kind)
	if spriteSet != types.SpriteSetBackground && spriteSet != types.SpriteSetForeground {
		return nil, skinerr.Newf(skinerr.MissingOrInvalidAttribute, node.Path,
			"invalid value for SpriteState attribute \"type\" (only \"foreground\" and \"background\" are allowed): %q", kind)
	}
	rule := &Rule{Kind: RuleSpriteState, Name: node.Tag, Index: index, SpriteSet: spriteSet, Path: node.Path}
	for _, child := range node.Children {
		leaf, err := parseProperty(child)
		if err != nil {
			return nil, err
		}
		rule.Children = append(rule.Children, leaf)
	}
	return rule, nil
}

func boolAttr(node *types.Node, name string) (bool, error) {
	value, ok := node.Attr(name)
	if !ok {
		return false, nil
	}
	parsed, err := ParseBool(value, node.Path)
	if err != nil {
		return false, skinerr.Wrap(skinerr.MissingOrInvalidAttribute, node.Path,
			"missing or malformed attribute value "+strconv.Quote(name), err)
	}
	return parsed, nil
}

// Walk resolves every target rule against the live tree and calls visit
// for each leaf with the widget it applies to. The first error, from the
// walk or from visit, stops the walk.
func (m *Module) Walk(tree ports.WidgetTree, opts WalkOptions, visit func(rule *Rule, widget ports.Widget) error) error {
	for _, root := range m.Roots {
		widget, ok := tree.FindRoot(root.Name)
		if !ok {
			if err := m.missing(root, moduleRootTag, opts); err != nil {
				return err
			}
			continue
		}
		if err := m.walkTarget(root, widget, opts, visit); err != nil {
			return err
		}
	}
	return nil
}

func (m *Module) walkTarget(rule *Rule, widget ports.Widget, opts WalkOptions, visit func(rule *Rule, widget ports.Widget) error) error {
	for _, child := range rule.Children {
		if child.Kind != RuleTarget {
			if err := visit(child, widget); err != nil {
				return err
			}
			continue
		}
		next, ok := widget.FindChild(child.Name)
		if !ok {
			if err := m.missing(child, widget.Name(), opts); err != nil {
				return err
			}
			continue
		}
		if err := m.walkTarget(child, next, opts, visit); err != nil {
			return err
		}
	}
	return nil
}

func (m *Module) missing(rule *Rule, parent string, opts WalkOptions) error {
	if rule.Optional || opts.IgnoreMissingWidgets {
		log.Debug().
			Str("module", m.SourcePath).
			Str("widget", rule.Name).
			Str("parent", parent).
			Bool("optional", rule.Optional).
			Msg("skipping missing widget")
		return nil
	}
	return skinerr.Newf(skinerr.MissingWidget, rule.Path,
		"missing UI component %q with parent %q", rule.Name, parent)
}
