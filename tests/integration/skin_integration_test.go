package integration

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quartz-skins/internal/adapters"
	"quartz-skins/internal/app"
	"quartz-skins/internal/types"
	"quartz-skins/internal/ui"
	"quartz-skins/tests/testutil"
)

type fixtureHost struct {
	tree     *ui.Tree
	viewport *adapters.RecordingViewport
	scenes   adapters.SceneFileAdapter
}

func (h fixtureHost) snapshot() types.SceneSpec {
	width, height := h.viewport.Size()
	return h.scenes.Snapshot(h.tree, width, height)
}

func (h fixtureHost) widget(t *testing.T, path ...string) any {
	t.Helper()
	widget, ok := h.tree.Find(path...)
	require.True(t, ok, "widget %s not found", strings.Join(path, "/"))
	return widget
}

func (h fixtureHost) title(t *testing.T) *ui.Label {
	t.Helper()
	label, ok := h.widget(t, "MenuContainer", "Title").(*ui.Label)
	require.True(t, ok)
	return label
}

func (h fixtureHost) infoPanel(t *testing.T) *ui.Panel {
	t.Helper()
	panel, ok := h.widget(t, "InfoPanel").(*ui.Panel)
	require.True(t, ok)
	return panel
}

func newFixtureService(t *testing.T, mods string) (*app.Service, fixtureHost) {
	t.Helper()
	scenes := adapters.NewSceneFileAdapter()
	scene, err := scenes.Load(filepath.Join(testutil.RepoRoot(t), "fixtures", "scene.yaml"))
	require.NoError(t, err)
	viewport := adapters.NewRecordingViewport(scene.Width, scene.Height)

	service := app.NewService(app.Config{
		ModDirs:         []string{mods},
		AutoReload:      true,
		MaxAtlasSprites: 64,
		MaxAtlasSize:    1024,
	})
	service.Notifier = adapters.NewTerminalNotifier(io.Discard)
	require.NoError(t, service.Attach(t.Context(), app.Host{
		Tree:       scene.Tree,
		Properties: scene.Tree,
		Viewport:   viewport,
	}))
	t.Cleanup(func() { service.Close(t.Context()) })
	return service, fixtureHost{tree: scene.Tree, viewport: viewport, scenes: scenes}
}

// TestSkinLifecycle drives the fixture skins through discovery, selection,
// sticky refresh, a context switch, a hot reload picked up by the file
// watcher and finally a return to the vanilla look.
func TestSkinLifecycle(t *testing.T) {
	ctx := t.Context()
	mods := testutil.CopyFixtures(t, "mods")
	service, host := newFixtureService(t, mods)
	vanilla := host.snapshot()

	skins, err := service.ListSkins(ctx)
	require.NoError(t, err)
	require.Len(t, skins, 2)
	assert.Equal(t, "Classic", skins[0].Name)
	assert.True(t, skins[0].Legacy)
	assert.Equal(t, "Midnight", skins[1].Name)
	assert.False(t, skins[1].Legacy)

	result, err := service.Select(ctx, skins[1].Path)
	require.NoError(t, err)
	assert.True(t, result.Applied)
	assert.True(t, result.Valid)
	assert.Positive(t, result.Writes)

	title := host.title(t)
	assert.Equal(t, "MIDNIGHT", title.Text)
	assert.Equal(t, types.Color{R: 255, G: 136, B: 0, A: 255}, title.TextColor)
	assert.InDelta(t, 1.5, title.TextScale, 1e-9)

	play, ok := host.widget(t, "MenuContainer", "PlayButton").(*ui.Button)
	require.True(t, ok)
	assert.Equal(t, types.Color{R: 255, G: 200, B: 120, A: 255}, play.HoveredTextColor)
	assert.Equal(t, types.Color{R: 230, G: 230, B: 230, A: 255}, play.TextColor)

	selector, ok := host.widget(t, "MenuContainer", "ModeSelector").(*ui.MultiStateButton)
	require.True(t, ok)
	background, _ := selector.SpriteStates(types.SpriteSetBackground)
	foreground, _ := selector.SpriteStates(types.SpriteSetForeground)
	assert.Equal(t, "ModeNormal", background[0].(*ui.SpriteSetState).Normal)
	assert.Equal(t, "ModeHovered", background[0].(*ui.SpriteSetState).Hovered)
	assert.Equal(t, "ModeAltNormal", foreground[1].(*ui.SpriteSetState).Normal)
	assert.NotEqual(t, types.FullScreen, host.viewport.Area)

	host.viewport.Resize(1024, 768)
	tick := service.Tick(ctx)
	assert.Positive(t, tick.Sticky)
	assert.False(t, tick.Reloaded)
	assert.InDelta(t, 1.1, title.TextScale, 1e-9)

	result, err = service.SwitchContext(ctx, types.ContextInGame)
	require.NoError(t, err)
	assert.True(t, result.Applied)
	assert.Equal(t, "Cities", title.Text)
	assert.Equal(t, 10, host.infoPanel(t).ZOrder)
	// The 21:9 rule does not match a 4:3 viewport.
	assert.Equal(t, types.Vector2{}, host.infoPanel(t).RelativePosition)

	modulePath := filepath.Join(mods, "midnight", "_QuartzSkin", "modules", "in_game.xml")
	data, err := os.ReadFile(modulePath)
	require.NoError(t, err)
	testutil.WriteFile(t, modulePath, strings.Replace(string(data), "<zOrder>10</zOrder>", "<zOrder>20</zOrder>", 1))
	panel := host.infoPanel(t)
	// A write may surface as several events, so wait for the final state.
	require.Eventually(t, func() bool {
		service.Tick(ctx)
		return service.Active().Valid() && panel.ZOrder == 20
	}, 5*time.Second, 20*time.Millisecond)

	service.SelectVanilla(ctx)
	assert.Nil(t, service.Active())
	assert.Equal(t, types.FullScreen, host.viewport.Area)
	host.viewport.Resize(1920, 1080)
	if diff := cmp.Diff(vanilla, host.snapshot()); diff != "" {
		t.Fatalf("vanilla look not restored (-want +got):\n%s", diff)
	}
}

// TestLegacySkinAndBrokenReload selects the Sapphire skin, breaks its
// module on disk and then repairs it, expecting the watcher to recover.
func TestLegacySkinAndBrokenReload(t *testing.T) {
	ctx := t.Context()
	mods := testutil.CopyFixtures(t, "mods")
	service, host := newFixtureService(t, mods)
	classic := filepath.Join(mods, "classic", "_SapphireSkin")

	result, err := service.Select(ctx, classic)
	require.NoError(t, err)
	assert.Equal(t, "Classic", result.Name)
	assert.Equal(t, types.Color{R: 212, G: 175, B: 55, A: 255}, host.title(t).TextColor)

	modulePath := filepath.Join(classic, "main_menu.xml")
	original, err := os.ReadFile(modulePath)
	require.NoError(t, err)
	testutil.WriteFile(t, modulePath, strings.Replace(string(original), "gold", "missing", 1))
	require.Eventually(t, func() bool {
		return service.Tick(ctx).Reloaded
	}, 5*time.Second, 20*time.Millisecond)
	require.NotNil(t, service.Active())
	assert.False(t, service.Active().Valid())
	assert.Equal(t, types.Color{R: 255, G: 255, B: 255, A: 255}, host.title(t).TextColor)

	testutil.WriteFile(t, modulePath, string(original))
	require.Eventually(t, func() bool {
		service.Tick(ctx)
		return service.Active().Valid()
	}, 5*time.Second, 20*time.Millisecond)
	assert.Equal(t, types.Color{R: 212, G: 175, B: 55, A: 255}, host.title(t).TextColor)
}
