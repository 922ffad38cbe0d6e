package app

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"quartz-skins/internal/adapters"
	"quartz-skins/internal/core"
	"quartz-skins/internal/policies"
	"quartz-skins/internal/ports"
	"quartz-skins/internal/types"
	"quartz-skins/internal/ui"
)

// Host is the widget tree and camera a skin is applied to.
type Host struct {
	Tree       ports.WidgetTree
	Properties ports.PropertySource
	Viewport   ports.Viewport
}

// Service is the skin manager. It owns at most one active skin and the
// context class it is applied under.
type Service struct {
	Documents ports.DocumentPort
	Discovery ports.SkinDiscoveryPort
	Watchers  ports.WatchSetFactory
	Packer    ports.AtlasPacker
	Notifier  ports.Notifier
	Scenes    adapters.SceneFileAdapter
	Aspects   policies.AspectPolicy
	Config    Config

	host     Host
	resolver *core.PropertyResolver
	scene    *ui.Tree
	viewport *adapters.RecordingViewport
	active   *core.Skin
	context  types.ContextClass
}

func NewService(cfg Config) *Service {
	if cfg.Context == "" {
		cfg.Context = types.ContextMainMenu
	}
	return &Service{
		Documents: adapters.NewXMLDocumentAdapter(),
		Discovery: adapters.NewSkinDiscoveryAdapter(),
		Watchers:  adapters.NewFileWatchSetFactory(),
		Packer:    adapters.NewImageAtlasPacker(cfg.MaxAtlasSprites, cfg.MaxAtlasSize),
		Notifier:  adapters.NewTerminalNotifier(os.Stderr),
		Scenes:    adapters.NewSceneFileAdapter(),
		Aspects:   policies.NewAspectPolicy(),
		Config:    cfg,
		context:   cfg.Context,
	}
}

// Attach points the service at a host. The active skin is disposed first
// since its undo log refers to the previous host.
func (s *Service) Attach(ctx context.Context, host Host) error {
	if host.Tree == nil || host.Properties == nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("host widget tree and property source are required")
	}
	s.dispose(ctx)
	s.host = host
	s.resolver = core.NewPropertyResolver(host.Properties)
	return nil
}

// OpenScene loads a scene snapshot and attaches it as the host.
func (s *Service) OpenScene(ctx context.Context, path string) error {
	scene, err := s.Scenes.Load(path)
	if err != nil {
		return err
	}
	width, height := scene.Width, scene.Height
	if s.Config.ScreenWidth > 0 && s.Config.ScreenHeight > 0 {
		width, height = s.Config.ScreenWidth, s.Config.ScreenHeight
	}
	viewport := adapters.NewRecordingViewport(width, height)
	if err := s.Attach(ctx, Host{Tree: scene.Tree, Properties: scene.Tree, Viewport: viewport}); err != nil {
		return err
	}
	s.scene = scene.Tree
	s.viewport = viewport
	log.Ctx(ctx).Debug().Str("scene", path).Int("width", width).Int("height", height).Msg("scene attached")
	return nil
}

// DumpScene writes the attached scene, including applied skin values.
func (s *Service) DumpScene(path string) error {
	if s.scene == nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg("no scene attached")
	}
	width, height := s.viewport.Size()
	return s.Scenes.Dump(path, s.Scenes.Snapshot(s.scene, width, height))
}

// Viewport returns the recording viewport of an attached scene.
func (s *Service) Viewport() *adapters.RecordingViewport {
	return s.viewport
}

func (s *Service) Active() *core.Skin {
	return s.active
}

func (s *Service) Context() types.ContextClass {
	return s.context
}

func (s *Service) engine() core.Engine {
	return core.Engine{
		Resolver:             s.resolver,
		Tree:                 s.host.Tree,
		Viewport:             s.host.Viewport,
		Packer:               s.Packer,
		Documents:            s.Documents,
		Watchers:             s.Watchers,
		Notifier:             s.Notifier,
		OverrideDir:          s.Config.OverrideDir,
		IgnoreMissingWidgets: s.Config.IgnoreMissingComponents,
		Aspects:              s.Aspects,
	}
}

func (s *Service) requireHost() error {
	if s.resolver == nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg("no host attached")
	}
	return nil
}

// ListSkins discovers installed skins. Skins whose metadata cannot be read
// are reported and skipped.
func (s *Service) ListSkins(ctx context.Context) ([]SkinInfo, error) {
	logger := log.Ctx(ctx)
	if len(s.Config.ModDirs) == 0 {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("at least one mod directory is required")
	}
	paths, err := s.Discovery.FindSkinDocuments(s.Config.ModDirs)
	if err != nil {
		return nil, err
	}
	var skins []SkinInfo
	for _, path := range paths {
		metadata, err := core.ReadMetadata(s.Documents, path)
		if err != nil {
			logger.Warn().Err(err).Str("skin", path).Msg("failed to read skin metadata, skipping")
			s.notify("Skin metadata unreadable", path+": "+err.Error())
			continue
		}
		skins = append(skins, SkinInfo{
			SkinMetadata: metadata,
			Path:         path,
			Active:       s.active != nil && s.active.Path() == path,
		})
	}
	logger.Debug().Int("skins", len(skins)).Msg("skins discovered")
	return skins, nil
}

// Select disposes the active skin, loads the skin at path and applies it
// to the current context. Selecting the active skin again does nothing.
func (s *Service) Select(ctx context.Context, path string) (SelectResult, error) {
	if err := s.requireHost(); err != nil {
		return SelectResult{}, err
	}
	documentPath, err := skinDocumentPath(path)
	if err != nil {
		return SelectResult{}, err
	}
	if s.active != nil && s.active.Path() == documentPath && s.active.State() == core.SkinLoaded {
		return s.result(false, 0), nil
	}
	s.dispose(ctx)

	skin, err := core.LoadSkin(ctx, documentPath, s.engine(), s.Config.AutoReload)
	s.active = skin
	s.Config.SelectedSkin = skin.Dir()
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("skin", documentPath).Msg("skin is invalid, will not apply")
		s.notify("Skin failed to load", documentPath+": "+err.Error())
		return s.result(false, 0), err
	}
	return s.applyActive(ctx)
}

// SelectVanilla disposes the active skin, restoring the host's own look.
func (s *Service) SelectVanilla(ctx context.Context) {
	s.dispose(ctx)
	s.Config.SelectedSkin = ""
}

// ReloadActive reloads the active skin from disk and applies it again.
func (s *Service) ReloadActive(ctx context.Context) (SelectResult, error) {
	if s.active == nil {
		return SelectResult{}, nil
	}
	if !s.active.SafeReload(ctx, s.Config.AutoReload) {
		log.Ctx(ctx).Warn().Str("skin", s.active.Path()).Msg("skin is invalid, will not apply")
		return s.result(false, 0), s.active.LoadError()
	}
	return s.applyActive(ctx)
}

// SetAutoReload toggles hot reload. The active skin is reloaded so that
// its watch set matches the new setting.
func (s *Service) SetAutoReload(ctx context.Context, enabled bool) (SelectResult, error) {
	s.Config.AutoReload = enabled
	return s.ReloadActive(ctx)
}

// SwitchContext reverts the active skin and applies it under class.
func (s *Service) SwitchContext(ctx context.Context, class types.ContextClass) (SelectResult, error) {
	log.Ctx(ctx).Debug().Str("from", string(s.context)).Str("to", string(class)).Msg("switching context")
	if s.active != nil && s.active.Valid() {
		if err := s.active.Rollback(ctx); err != nil {
			return s.result(false, 0), err
		}
	}
	s.context = class
	s.Config.Context = class
	if s.active == nil || !s.active.Valid() {
		return s.result(false, 0), nil
	}
	return s.applyActive(ctx)
}

// Tick is called once per frame: sticky rules follow the viewport and,
// with hot reload enabled, changed sources are reloaded.
func (s *Service) Tick(ctx context.Context) TickResult {
	if s.active == nil {
		return TickResult{}
	}
	result := TickResult{Sticky: s.active.ApplyStickyProperties(ctx)}
	if s.Config.AutoReload {
		result.Reloaded = s.active.ReloadIfChanged(ctx)
	}
	return result
}

// Startup selects the configured skin when apply-on-startup is enabled.
func (s *Service) Startup(ctx context.Context) (SelectResult, error) {
	selected := strings.TrimSpace(s.Config.SelectedSkin)
	if !s.Config.ApplyOnStartup || selected == "" {
		return SelectResult{}, nil
	}
	skins, err := s.ListSkins(ctx)
	if err != nil {
		return SelectResult{}, err
	}
	for _, skin := range skins {
		if sameSkin(skin, selected) {
			return s.Select(ctx, skin.Path)
		}
	}
	log.Ctx(ctx).Warn().Str("skin", selected).Msg("selected skin is not installed")
	return SelectResult{}, nil
}

// Close disposes the active skin.
func (s *Service) Close(ctx context.Context) {
	s.dispose(ctx)
}

func (s *Service) applyActive(ctx context.Context) (SelectResult, error) {
	report, err := s.active.Apply(ctx, s.context)
	if err != nil {
		return s.result(false, 0), err
	}
	return s.result(true, report.Writes()), nil
}

func (s *Service) result(applied bool, writes int) SelectResult {
	if s.active == nil {
		return SelectResult{Context: s.context}
	}
	return SelectResult{
		Name:    s.active.Name(),
		Path:    s.active.Path(),
		Context: s.context,
		Valid:   s.active.Valid(),
		Applied: applied,
		Writes:  writes,
	}
}

func (s *Service) dispose(ctx context.Context) {
	if s.active == nil {
		return
	}
	s.active.Dispose(ctx)
	s.active = nil
}

func (s *Service) notify(title string, message string) {
	if s.Notifier != nil {
		s.Notifier.Notify(title, message)
	}
}

// skinDocumentPath accepts a skin.xml path or the directory holding it.
func skinDocumentPath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("skin path is required")
	}
	info, err := os.Stat(path)
	if err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("skin not found: " + path).
			WithCause(err)
	}
	if info.IsDir() {
		path = filepath.Join(path, adapters.SkinDocument)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("invalid skin path " + path).
			WithCause(err)
	}
	return abs, nil
}

func sameSkin(skin SkinInfo, selected string) bool {
	selected = filepath.Clean(selected)
	return filepath.Clean(skin.Path) == selected || filepath.Clean(skin.Dir) == selected
}
