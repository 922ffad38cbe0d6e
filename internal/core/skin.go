package core

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	assert "github.com/ZanzyTHEbar/assert-lib"
	"github.com/ZanzyTHEbar/errbuilder-go"
	pep440 "github.com/aquasecurity/go-pep440-version"
	"github.com/rs/zerolog/log"

	"quartz-skins/internal/policies"
	"quartz-skins/internal/ports"
	"quartz-skins/internal/skinerr"
	"quartz-skins/internal/types"
)

const (
	LegacyRootTag = "SapphireSkin"
	RootTag       = "QuartzSkin"

	// SupportedFormat is the range of QuartzSkin format versions this
	// engine reads.
	SupportedFormat = ">=1.0,<2"

	renderAreaKey = "InGameRenderArea"
)

// Engine bundles the collaborators a skin needs. It replaces process-wide
// singletons: every skin gets its collaborators from here.
type Engine struct {
	Resolver  *PropertyResolver
	Tree      ports.WidgetTree
	Viewport  ports.Viewport
	Packer    ports.AtlasPacker
	Documents ports.DocumentPort
	// Watchers creates the WatchSet used when hot reload is enabled.
	Watchers ports.WatchSetFactory
	Notifier ports.Notifier
	// OverrideDir holds per-context override modules named
	// {skinName}_{ContextClass}.xml. Empty disables overrides.
	OverrideDir          string
	IgnoreMissingWidgets bool
	Aspects              policies.AspectPolicy
}

type SkinState int

const (
	SkinUnloaded SkinState = iota
	SkinLoaded
	SkinDisposed
)

func (s SkinState) String() string {
	switch s {
	case SkinUnloaded:
		return "unloaded"
	case SkinLoaded:
		return "loaded"
	case SkinDisposed:
		return "disposed"
	default:
		return fmt.Sprintf("SkinState(%d)", int(s))
	}
}

// Skin is one loaded skin document and the applicator that writes it.
type Skin struct {
	env  Engine
	path string
	dir  string

	name   string
	author string
	legacy bool

	state      SkinState
	valid      bool
	loadErr    error
	autoReload bool

	colors     *ColorTable
	atlases    map[string]*types.Atlas
	renderArea types.Rect
	modules    map[types.ContextClass][]*Module
	watch      ports.WatchSet

	applicator  *Applicator
	lastContext types.ContextClass
	hasContext  bool
}

// NewSkin prepares an unloaded skin for the skin.xml at path.
func NewSkin(path string, env Engine) *Skin {
	return &Skin{
		env:        env,
		path:       path,
		dir:        filepath.Dir(path),
		colors:     NewColorTable(),
		atlases:    map[string]*types.Atlas{},
		renderArea: types.FullScreen,
		modules:    emptyModules(),
		applicator: NewApplicator(env.Resolver, env.Tree, env.Viewport, env.Aspects,
			WalkOptions{IgnoreMissingWidgets: env.IgnoreMissingWidgets}),
	}
}

// LoadSkin creates a skin and loads it. The returned skin is never nil;
// check Valid before applying it.
func LoadSkin(ctx context.Context, path string, env Engine, autoReload bool) (*Skin, error) {
	skin := NewSkin(path, env)
	err := skin.Load(ctx, autoReload)
	return skin, err
}

func emptyModules() map[types.ContextClass][]*Module {
	modules := make(map[types.ContextClass][]*Module, len(types.ContextClasses))
	for _, class := range types.ContextClasses {
		modules[class] = nil
	}
	return modules
}

func (s *Skin) Name() string            { return s.name }
func (s *Skin) Author() string          { return s.author }
func (s *Skin) Path() string            { return s.path }
func (s *Skin) Dir() string             { return s.dir }
func (s *Skin) Legacy() bool            { return s.legacy }
func (s *Skin) State() SkinState        { return s.state }
func (s *Skin) Valid() bool             { return s.state == SkinLoaded && s.valid }
func (s *Skin) RenderArea() types.Rect  { return s.renderArea }
func (s *Skin) Colors() *ColorTable     { return s.colors }
func (s *Skin) AutoReload() bool        { return s.autoReload }
func (s *Skin) Applicator() *Applicator { return s.applicator }
func (s *Skin) LoadError() error        { return s.loadErr }

func (s *Skin) Atlas(name string) (*types.Atlas, bool) {
	atlas, ok := s.atlases[name]
	return atlas, ok
}

// AtlasNames returns the names of the packed atlases, sorted.
func (s *Skin) AtlasNames() []string {
	names := make([]string, 0, len(s.atlases))
	for name := range s.atlases {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Modules returns the modules applied for class, overrides last.
func (s *Skin) Modules(class types.ContextClass) []*Module {
	out := make([]*Module, len(s.modules[class]))
	copy(out, s.modules[class])
	return out
}

// LastContext returns the context class of the most recent Apply.
func (s *Skin) LastContext() (types.ContextClass, bool) {
	return s.lastContext, s.hasContext
}

// Load tears down any previous state and rebuilds the skin from disk. On
// failure the skin is left loaded but invalid with empty tables.
func (s *Skin) Load(ctx context.Context, autoReload bool) error {
	assert.NotEmpty(ctx, s.path, "skin path must be set")
	logger := log.Ctx(ctx)
	s.teardown(ctx)
	s.state = SkinLoaded
	s.valid = false
	s.loadErr = nil
	s.autoReload = autoReload

	if autoReload && s.env.Watchers != nil {
		watch, err := s.env.Watchers()
		if err != nil {
			logger.Warn().Err(err).Str("skin", s.path).Msg("hot reload unavailable")
		} else {
			s.watch = watch
		}
	}

	if err := s.load(ctx); err != nil {
		s.loadErr = err
		s.clearTables()
		return err
	}
	s.valid = true
	logger.Debug().
		Str("skin", s.name).
		Str("author", s.author).
		Int("colors", s.colors.Len()).
		Int("atlases", len(s.atlases)).
		Msg("skin loaded")
	return nil
}

func (s *Skin) load(ctx context.Context) error {
	s.watchFile(ctx, s.path)
	root, err := s.readDocument(s.path)
	if err != nil {
		return err
	}
	if err := s.readRoot(root); err != nil {
		return err
	}
	if err := s.loadSettings(ctx, root); err != nil {
		return err
	}
	if err := s.loadSprites(ctx, root); err != nil {
		return err
	}
	if err := s.loadColors(ctx, root); err != nil {
		return err
	}
	return s.loadModules(ctx, root)
}

func (s *Skin) readDocument(path string) (*types.Node, error) {
	if s.env.Documents == nil {
		return nil, skinerr.New(skinerr.MalformedDocument, path, "no document reader configured")
	}
	root, err := s.env.Documents.ReadDocument(path)
	if err != nil {
		if _, classified := skinerr.KindOf(err); classified {
			return nil, err
		}
		return nil, skinerr.Wrap(skinerr.MalformedDocument, path, "failed to read document", err)
	}
	return root, nil
}

func (s *Skin) readRoot(root *types.Node) error {
	meta, err := metadataFromRoot(root, s.path)
	if err != nil {
		return err
	}
	s.name = meta.Name
	s.author = meta.Author
	s.legacy = meta.Legacy
	return nil
}

func metadataFromRoot(root *types.Node, path string) (types.SkinMetadata, error) {
	meta := types.SkinMetadata{Dir: filepath.Dir(path)}
	switch {
	case root == nil:
		return meta, skinerr.Newf(skinerr.MalformedDocument, path, "skin missing root %s node", RootTag)
	case root.Tag == LegacyRootTag:
		meta.Legacy = true
	case root.Tag == RootTag:
		if err := checkFormatVersion(root); err != nil {
			return meta, err
		}
	default:
		return meta, skinerr.Newf(skinerr.MalformedDocument, root.Path,
			"skin missing root %s or %s node, got %q", RootTag, LegacyRootTag, root.Tag)
	}
	name, err := requiredAttr(root, "name")
	if err != nil {
		return meta, err
	}
	author, err := requiredAttr(root, "author")
	if err != nil {
		return meta, err
	}
	meta.Name = name
	meta.Author = author
	return meta, nil
}

func checkFormatVersion(root *types.Node) error {
	raw, err := requiredAttr(root, "version")
	if err != nil {
		return err
	}
	version, err := pep440.Parse(raw)
	if err != nil {
		return skinerr.Wrap(skinerr.MissingOrInvalidAttribute, root.Path, "invalid skin format version "+raw, err)
	}
	supported, err := pep440.NewSpecifiers(SupportedFormat)
	if err != nil {
		return skinerr.Wrap(skinerr.UnsupportedType, root.Path, "invalid supported format range", err)
	}
	if !supported.Check(version) {
		return skinerr.Newf(skinerr.UnsupportedType, root.Path,
			"skin format version %s is not supported (want %s)", raw, SupportedFormat)
	}
	return nil
}

func requiredAttr(node *types.Node, name string) (string, error) {
	value, ok := node.Attr(name)
	if !ok || value == "" {
		return "", skinerr.Newf(skinerr.MissingOrInvalidAttribute, node.Path, "missing or malformed attribute %q", name)
	}
	return value, nil
}

// ReadMetadata reads name, author and directory of a skin without
// loading it.
func ReadMetadata(documents ports.DocumentPort, path string) (types.SkinMetadata, error) {
	root, err := documents.ReadDocument(path)
	if err != nil {
		return types.SkinMetadata{}, err
	}
	return metadataFromRoot(root, path)
}

func (s *Skin) loadSettings(ctx context.Context, root *types.Node) error {
	settings := root.Child("SkinSettings")
	if settings == nil {
		log.Ctx(ctx).Debug().Str("skin", s.name).Msg("skin defines no settings")
		return nil
	}
	for _, child := range settings.Children {
		if child.Text == "" {
			return skinerr.Newf(skinerr.MissingOrInvalidValue, child.Path, "empty value for settings key %q", child.Tag)
		}
		if child.Tag != renderAreaKey {
			log.Ctx(ctx).Warn().Str("key", child.Tag).Msg("ignoring unknown skin setting")
			continue
		}
		rect, err := ParseRect(child.Text, child.Path)
		if err != nil {
			return err
		}
		area := NormalizeRenderArea(rect)
		if !area.Valid() {
			return skinerr.Newf(skinerr.MissingOrInvalidValue, child.Path, "render area %s has no extent", rect)
		}
		s.renderArea = area
		log.Ctx(ctx).Debug().Str("area", area.String()).Msg("render area set")
	}
	return nil
}

func (s *Skin) loadSprites(ctx context.Context, root *types.Node) error {
	logger := log.Ctx(ctx)
	for _, atlasNode := range root.Children {
		if atlasNode.Tag != "SpriteAtlas" {
			continue
		}
		atlasName, err := requiredAttr(atlasNode, "name")
		if err != nil {
			return err
		}
		if _, exists := s.atlases[atlasName]; exists {
			logger.Warn().
				Str("skin", s.name).
				Str("atlas", atlasName).
				Str("node", atlasNode.Path).
				Msg("duplicate atlas name, ignoring second definition")
			s.notify("Duplicate atlas", fmt.Sprintf("Atlas %q of skin %q is defined twice, the first definition is used.", atlasName, s.name))
			continue
		}
		sources := make([]types.SpriteSource, 0, len(atlasNode.Children))
		for _, spriteNode := range atlasNode.Children {
			spriteName, err := requiredAttr(spriteNode, "name")
			if err != nil {
				return err
			}
			if spriteNode.Text == "" {
				return skinerr.Newf(skinerr.MissingOrInvalidValue, spriteNode.Path, "empty path for sprite %q", spriteName)
			}
			full := s.resolvePath(spriteNode.Text)
			if _, err := os.Stat(full); err != nil {
				return skinerr.Wrap(skinerr.MissingOrInvalidValue, spriteNode.Path,
					fmt.Sprintf("sprite at path %q not found", full), err)
			}
			s.watchFile(ctx, full)
			sources = append(sources, types.SpriteSource{Name: spriteName, Path: full})
		}
		if s.env.Packer == nil {
			return skinerr.New(skinerr.UnsupportedType, atlasNode.Path, "no atlas packer configured")
		}
		atlas, err := s.env.Packer.Pack(atlasName, sources)
		if err != nil {
			if skinerr.Is(err, skinerr.TooManySpritesInAtlas) {
				logger.Error().Err(err).Str("atlas", atlasName).Msg("too many sprites in atlas, move some sprites to a new atlas")
				s.notify("Too many sprites", fmt.Sprintf("Atlas %q of skin %q holds too many sprites.", atlasName, s.name))
				continue
			}
			return skinerr.Wrap(skinerr.MalformedValue, atlasNode.Path, fmt.Sprintf("failed to generate atlas %q", atlasName), err)
		}
		s.atlases[atlasName] = atlas
		logger.Debug().Str("atlas", atlasName).Int("sprites", len(sources)).Msg("atlas generated")
	}
	return nil
}

func (s *Skin) loadColors(ctx context.Context, root *types.Node) error {
	defs := make([]*types.Node, 0)
	for _, child := range root.Children {
		switch child.Tag {
		case "Color":
			defs = append(defs, child)
		case "Colors":
			for _, nested := range child.Children {
				if nested.Tag == "Color" {
					defs = append(defs, nested)
				}
			}
		}
	}
	for _, def := range defs {
		name, err := requiredAttr(def, "name")
		if err != nil {
			return err
		}
		if def.Text == "" {
			return skinerr.Newf(skinerr.MissingOrInvalidValue, def.Path, "empty color value for color %q", name)
		}
		color, err := ParseColor(def.Text, def.Path)
		if err != nil {
			return err
		}
		if !s.colors.Define(name, color) {
			log.Ctx(ctx).Warn().
				Str("skin", s.name).
				Str("color", name).
				Str("node", def.Path).
				Msg("duplicate color name, ignoring second definition")
			continue
		}
	}
	return nil
}

func (s *Skin) loadModules(ctx context.Context, root *types.Node) error {
	for _, child := range root.Children {
		if child.Tag != "Module" {
			continue
		}
		rawClass, _ := child.Attr("class")
		class, ok := types.ParseContextClass(rawClass)
		if !ok {
			return skinerr.Newf(skinerr.MissingOrInvalidAttribute, child.Path, "invalid module class %q", rawClass)
		}
		if child.Text == "" {
			return skinerr.Newf(skinerr.MissingOrInvalidValue, child.Path, "empty module path for class %s", class)
		}
		if err := s.addModule(ctx, class, s.resolvePath(child.Text)); err != nil {
			return err
		}
	}
	if s.env.OverrideDir == "" {
		return nil
	}
	for _, class := range types.ContextClasses {
		overridePath := filepath.Join(s.env.OverrideDir, fmt.Sprintf("%s_%s.xml", s.name, class))
		if _, err := os.Stat(overridePath); err != nil {
			continue
		}
		log.Ctx(ctx).Warn().Str("skin", s.name).Str("path", overridePath).Msg("found skin override")
		if err := s.addModule(ctx, class, overridePath); err != nil {
			return err
		}
	}
	return nil
}

func (s *Skin) addModule(ctx context.Context, class types.ContextClass, path string) error {
	s.watchFile(ctx, path)
	root, err := s.readDocument(path)
	if err != nil {
		return err
	}
	module, err := ParseModule(path, root)
	if err != nil {
		return err
	}
	s.modules[class] = append(s.modules[class], module)
	log.Ctx(ctx).Debug().Str("module", path).Str("class", string(class)).Msg("module added")
	return nil
}

func (s *Skin) resolvePath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(s.dir, path)
}

func (s *Skin) watchFile(ctx context.Context, path string) {
	if s.watch == nil {
		return
	}
	if err := s.watch.Watch(path); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("path", path).Msg("failed to watch file")
	}
}

// SafeReload reloads the skin, logging any failure and marking the skin
// invalid instead of returning it.
func (s *Skin) SafeReload(ctx context.Context, autoReload bool) bool {
	if err := s.Load(ctx, autoReload); err != nil {
		log.Ctx(ctx).Error().Err(err).Str("skin", s.path).Msg("failed to load skin")
		s.notify("Skin failed to load", fmt.Sprintf("%s: %v", s.path, err))
		return false
	}
	return true
}

// Apply writes the modules of class. A failed apply leaves no change
// behind and marks the skin invalid.
func (s *Skin) Apply(ctx context.Context, class types.ContextClass) (ApplyReport, error) {
	logger := log.Ctx(ctx)
	if !s.Valid() {
		logger.Warn().Str("skin", s.path).Msg("trying to apply an invalid skin")
		return ApplyReport{}, errInvalidSkin(s.path)
	}
	s.lastContext = class
	s.hasContext = true
	report := s.applicator.Apply(ctx, s.modules[class], Resources{Colors: s.colors, Atlases: s.atlases})
	if !report.OK() {
		s.applicator.Rollback(ctx)
		s.valid = false
		logger.Warn().Str("skin", s.name).Msg("failed to apply skin module, all changes have been reverted")
		s.notify("Skin failed to apply", report.Err.Error())
		return report, report.Err
	}
	if s.env.Viewport != nil {
		s.env.Viewport.SetRenderArea(s.renderArea)
	}
	logger.Debug().Str("skin", s.name).Str("context", string(class)).Int("writes", report.Writes()).Msg("skin applied")
	return report, nil
}

// ApplyStickyProperties refreshes sticky rules for the current viewport.
func (s *Skin) ApplyStickyProperties(ctx context.Context) int {
	if !s.Valid() {
		return 0
	}
	return s.applicator.ApplyStickyProperties(ctx)
}

// Rollback reverts every applied write and resets the render area.
func (s *Skin) Rollback(ctx context.Context) error {
	if !s.Valid() {
		log.Ctx(ctx).Warn().Str("skin", s.path).Msg("trying to roll back an invalid skin")
		return errInvalidSkin(s.path)
	}
	s.applicator.Rollback(ctx)
	if s.env.Viewport != nil {
		s.env.Viewport.ResetRenderArea()
	}
	return nil
}

// ReloadIfChanged reloads and re-applies the skin when a watched file
// changed since the last call. It reports whether a reload happened.
func (s *Skin) ReloadIfChanged(ctx context.Context) bool {
	if s.watch == nil || !s.watch.HasChanges() {
		return false
	}
	log.Ctx(ctx).Info().Str("skin", s.path).Msg("skin sources changed, reloading")
	if !s.SafeReload(ctx, s.autoReload) {
		return true
	}
	if s.hasContext {
		_, _ = s.Apply(ctx, s.lastContext)
	}
	return true
}

// Dispose reverts the skin and releases everything it holds.
func (s *Skin) Dispose(ctx context.Context) {
	s.teardown(ctx)
	s.state = SkinDisposed
	s.valid = false
}

func (s *Skin) teardown(ctx context.Context) {
	if s.applicator.Pending() > 0 {
		s.applicator.Rollback(ctx)
	}
	s.clearTables()
	if s.env.Viewport != nil && s.state == SkinLoaded {
		s.env.Viewport.ResetRenderArea()
	}
	if s.watch != nil {
		if err := s.watch.Close(); err != nil {
			log.Ctx(ctx).Warn().Err(err).Str("skin", s.path).Msg("failed to close watch set")
		}
		s.watch = nil
	}
}

func (s *Skin) clearTables() {
	if s.env.Packer != nil {
		for _, atlas := range s.atlases {
			s.env.Packer.Release(atlas)
		}
	}
	s.atlases = map[string]*types.Atlas{}
	s.colors.Clear()
	s.modules = emptyModules()
	s.renderArea = types.FullScreen
}

func (s *Skin) notify(title string, message string) {
	if s.env.Notifier != nil {
		s.env.Notifier.Notify(title, message)
	}
}

// ErrInvalidSkin is returned by operations gated on a valid skin.
var ErrInvalidSkin = errors.New("skin is not valid")

func errInvalidSkin(path string) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeFailedPrecondition).
		WithMsg(fmt.Sprintf("skin %s is not valid", path)).
		WithCause(ErrInvalidSkin)
}
