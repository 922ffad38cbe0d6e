package core

import (
	"context"
	"reflect"

	"github.com/rs/zerolog/log"

	"quartz-skins/internal/policies"
	"quartz-skins/internal/ports"
	"quartz-skins/internal/skinerr"
	"quartz-skins/internal/types"
)

// Resources are the lookup tables of the skin being applied.
type Resources struct {
	Colors  ColorLookup
	Atlases map[string]*types.Atlas
}

// ModuleOutcome is the result of applying one module.
type ModuleOutcome struct {
	Module  string
	Writes  int
	Skipped int
	Err     error
}

// ApplyReport summarizes one Apply call. When Err is set every write of
// the call has already been reverted.
type ApplyReport struct {
	Aspect   types.AspectRatio
	Outcomes []ModuleOutcome
	Err      error
}

func (r ApplyReport) OK() bool {
	return r.Err == nil
}

// Writes totals the writes of every module.
func (r ApplyReport) Writes() int {
	total := 0
	for _, outcome := range r.Outcomes {
		total += outcome.Writes
	}
	return total
}

type captureKey struct {
	handle   ports.Handle
	property string
}

// capturedValue is the value a property had before the first write of the
// current pass. logged is set once its undo entry exists.
type capturedValue struct {
	original any
	logged   bool
}

type undoEntry struct {
	handle   ports.Handle
	owner    string
	desc     ports.PropertyDescriptor
	original any
}

type stickyBinding struct {
	rule   *Rule
	handle ports.Handle
}

// Applicator writes module rules onto the widget tree and keeps the undo
// log needed to revert them.
type Applicator struct {
	resolver *PropertyResolver
	tree     ports.WidgetTree
	viewport ports.Viewport
	aspects  policies.AspectPolicy
	walk     WalkOptions

	resources Resources
	aspect    types.AspectRatio
	undo      []undoEntry
	originals map[captureKey]capturedValue
	sticky    []stickyBinding
}

func NewApplicator(resolver *PropertyResolver, tree ports.WidgetTree, viewport ports.Viewport, aspects policies.AspectPolicy, walk WalkOptions) *Applicator {
	return &Applicator{
		resolver:  resolver,
		tree:      tree,
		viewport:  viewport,
		aspects:   aspects,
		walk:      walk,
		originals: map[captureKey]capturedValue{},
	}
}

// Pending returns the number of undo entries waiting for Rollback.
func (a *Applicator) Pending() int {
	return len(a.undo)
}

// StickyBindings returns the number of recorded sticky rules.
func (a *Applicator) StickyBindings() int {
	return len(a.sticky)
}

func (a *Applicator) currentAspect() types.AspectRatio {
	if a.viewport == nil {
		return a.aspects.Fallback
	}
	return a.aspects.Classify(a.viewport.Size())
}

// Apply writes every module in order. The first failing module stops the
// pass and reverts everything written by this call.
func (a *Applicator) Apply(ctx context.Context, modules []*Module, resources Resources) ApplyReport {
	logger := log.Ctx(ctx)
	if len(a.undo) > 0 {
		logger.Debug().Int("entries", len(a.undo)).Msg("reverting outstanding writes before apply")
		a.Rollback(ctx)
	}
	a.resources = resources
	a.sticky = nil
	a.undo = nil
	a.originals = map[captureKey]capturedValue{}
	a.aspect = a.currentAspect()

	report := ApplyReport{Aspect: a.aspect}
	for _, module := range modules {
		outcome := a.applyModule(module)
		report.Outcomes = append(report.Outcomes, outcome)
		if outcome.Err != nil {
			logger.Error().
				Err(outcome.Err).
				Str("module", module.SourcePath).
				Msg("failed to apply skin module")
			report.Err = outcome.Err
			a.Rollback(ctx)
			return report
		}
		logger.Debug().
			Str("module", module.SourcePath).
			Int("writes", outcome.Writes).
			Int("skipped", outcome.Skipped).
			Msg("skin module applied")
	}
	return report
}

func (a *Applicator) applyModule(module *Module) ModuleOutcome {
	outcome := ModuleOutcome{Module: module.SourcePath}
	outcome.Err = module.Walk(a.tree, a.walk, func(rule *Rule, widget ports.Widget) error {
		var (
			written bool
			err     error
		)
		if rule.Kind == RuleSpriteState {
			var writes int
			writes, err = a.applySpriteState(rule, widget)
			outcome.Writes += writes
			return err
		}
		written, err = a.applyGeneric(rule, widget)
		if err != nil {
			return err
		}
		if written {
			outcome.Writes++
		} else {
			outcome.Skipped++
		}
		return nil
	})
	return outcome
}

func (a *Applicator) applyGeneric(rule *Rule, widget ports.Widget) (bool, error) {
	if rule.Sticky {
		a.sticky = append(a.sticky, stickyBinding{rule: rule, handle: widget.Handle()})
	}
	if !a.aspects.Applies(rule.Aspect, a.aspect) {
		return false, nil
	}
	desc, value, ok, err := a.prepare(rule, widget)
	if err != nil || !ok {
		return false, err
	}
	return a.writeWithUndo(widget, desc, value, rule.Path)
}

func (a *Applicator) applySpriteState(rule *Rule, widget ports.Widget) (int, error) {
	button, ok := widget.(ports.MultiStateWidget)
	if !ok {
		return 0, skinerr.Newf(skinerr.MissingComponentProperty, rule.Path,
			"component %q of type %s has no sprite states", widget.Name(), widget.TypeName())
	}
	states, ok := button.SpriteStates(rule.SpriteSet)
	if !ok {
		return 0, skinerr.Newf(skinerr.MissingComponentProperty, rule.Path,
			"component %q has no %s sprite states", widget.Name(), rule.SpriteSet)
	}
	if rule.Index >= len(states) {
		return 0, skinerr.Newf(skinerr.IndexOutOfRange, rule.Path,
			"invalid value for SpriteState attribute \"index\", object has only %d states: %d", len(states), rule.Index)
	}
	state := states[rule.Index]
	writes := 0
	for _, leaf := range rule.Children {
		desc, value, ok, err := a.prepare(leaf, state)
		if err != nil {
			return writes, err
		}
		if !ok {
			continue
		}
		written, err := a.writeWithUndo(state, desc, value, leaf.Path)
		if err != nil {
			return writes, err
		}
		if written {
			writes++
		}
	}
	return writes, nil
}

// prepare resolves and coerces one property leaf. ok is false when an
// optional rule could not be resolved.
func (a *Applicator) prepare(rule *Rule, target ports.Target) (ports.PropertyDescriptor, any, bool, error) {
	desc, found := a.resolver.Resolve(target.TypeName(), rule.Name)
	if !found {
		if rule.Optional {
			return desc, nil, false, nil
		}
		return desc, nil, false, skinerr.Newf(skinerr.MissingComponentProperty, rule.Path,
			"missing property %q on component type %s", rule.Name, target.TypeName())
	}
	if !desc.Writable() {
		if rule.Optional {
			return desc, nil, false, nil
		}
		return desc, nil, false, skinerr.Newf(skinerr.ReadOnlyProperty, rule.Path,
			"property %q of %s is read-only", rule.Name, target.TypeName())
	}
	value, err := Coerce(desc, rule.Value, CoercionContext{
		Node:    rule.Path,
		Raw:     rule.Raw,
		Colors:  a.resources.Colors,
		Atlases: a.resources.Atlases,
	})
	if err != nil {
		return desc, nil, false, err
	}
	return desc, value, true, nil
}

func (a *Applicator) writeWithUndo(target ports.Target, desc ports.PropertyDescriptor, value any, path string) (bool, error) {
	key := captureKey{handle: target.Handle(), property: desc.Name}
	capture, captured := a.originals[key]
	if !captured {
		current, err := desc.Get(target)
		if err != nil {
			return false, skinerr.Wrap(skinerr.UnsupportedType, path, "failed to read property "+desc.Name, err)
		}
		capture = capturedValue{original: current}
		a.originals[key] = capture
	}
	if sameValue(capture.original, value) {
		return false, nil
	}
	if err := desc.Set(target, value); err != nil {
		return false, skinerr.Wrap(skinerr.UnsupportedType, path, "failed to write property "+desc.Name, err)
	}
	if !capture.logged {
		a.undo = append(a.undo, undoEntry{handle: target.Handle(), owner: target.TypeName(), desc: desc, original: capture.original})
		capture.logged = true
		a.originals[key] = capture
	}
	return true, nil
}

// ApplyStickyProperties re-writes every recorded sticky rule whose aspect
// matches the current viewport. It never records undo entries.
func (a *Applicator) ApplyStickyProperties(ctx context.Context) int {
	logger := log.Ctx(ctx)
	a.aspect = a.currentAspect()
	writes := 0
	for _, binding := range a.sticky {
		if !a.aspects.Applies(binding.rule.Aspect, a.aspect) {
			continue
		}
		target, ok := a.tree.Lookup(binding.handle)
		if !ok {
			logger.Debug().Str("node", binding.rule.Path).Msg("sticky target no longer exists")
			continue
		}
		desc, value, ok, err := a.prepare(binding.rule, target)
		if err != nil {
			logger.Error().Err(err).Str("node", binding.rule.Path).Msg("failed to apply sticky property")
			continue
		}
		if !ok {
			continue
		}
		if err := desc.Set(target, value); err != nil {
			logger.Error().Err(err).Str("node", binding.rule.Path).Msg("failed to apply sticky property")
			continue
		}
		writes++
	}
	return writes
}

// Rollback restores every captured original in reverse capture order.
// Entries that fail are logged and the rest are still restored.
func (a *Applicator) Rollback(ctx context.Context) int {
	logger := log.Ctx(ctx)
	restored := 0
	for i := len(a.undo) - 1; i >= 0; i-- {
		entry := a.undo[i]
		target, ok := a.tree.Lookup(entry.handle)
		if !ok {
			logger.Warn().
				Uint64("handle", uint64(entry.handle)).
				Str("type", entry.owner).
				Str("property", entry.desc.Name).
				Msg("rollback target no longer exists, skipping")
			continue
		}
		if err := entry.desc.Set(target, entry.original); err != nil {
			logger.Error().
				Err(err).
				Str("type", entry.owner).
				Str("property", entry.desc.Name).
				Msg("failed to restore property during rollback")
			continue
		}
		restored++
	}
	if len(a.undo) > 0 {
		logger.Debug().Int("restored", restored).Int("entries", len(a.undo)).Msg("rolled back skin changes")
	}
	a.undo = nil
	a.originals = map[captureKey]capturedValue{}
	a.sticky = nil
	return restored
}

func sameValue(left any, right any) bool {
	if left == nil || right == nil {
		return left == right
	}
	if reflect.TypeOf(left) != reflect.TypeOf(right) || !reflect.TypeOf(left).Comparable() {
		return false
	}
	return left == right
}
