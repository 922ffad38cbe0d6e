package core

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quartz-skins/internal/skinerr"
	"quartz-skins/internal/types"
	"quartz-skins/internal/ui"
)

func testResources() Resources {
	colors := NewColorTable()
	colors.Define("accent", types.Color{R: 200, G: 100, B: 0, A: 255})
	colors.Define("muted", types.Color{R: 90, G: 90, B: 90, A: 255})
	atlas := types.NewAtlas("ui", nil)
	atlas.AddSprite(types.SpriteInfo{Name: "play"})
	return Resources{Colors: colors, Atlases: map[string]*types.Atlas{"ui": atlas}}
}

func TestApplyThenRollbackRestoresEveryProperty(t *testing.T) {
	f := newFixture(t)
	before := f.snapshot()
	first := mustModule(t, "first.xml", `<UIView>
  <Component name="MainPanel">
    <atlas>ui</atlas>
    <Component name="Title">
      <textColor>accent</textColor>
      <text>Welcome</text>
    </Component>
    <Component name="Icon"><icon>ui/play</icon></Component>
  </Component>
</UIView>`)
	second := mustModule(t, "second.xml", `<UIView>
  <Component name="MainPanel">
    <Component name="Title">
      <textColor>muted</textColor>
      <text>Hello</text>
    </Component>
  </Component>
  <Component name="Toolbar"><isVisible>false</isVisible></Component>
</UIView>`)

	applicator := f.applicator(nil)
	report := applicator.Apply(testContext(), []*Module{first, second}, testResources())
	require.NoError(t, report.Err)
	require.Len(t, report.Outcomes, 2)
	assert.Equal(t, "Hello", f.title.Text)
	assert.Equal(t, types.Color{R: 90, G: 90, B: 90, A: 255}, f.title.TextColor)
	assert.Equal(t, types.SpriteRef{Atlas: "ui", Sprite: "play"}, f.icon.Icon)
	assert.False(t, f.toolbar.Visible)

	applicator.Rollback(testContext())
	if diff := cmp.Diff(before, f.snapshot()); diff != "" {
		t.Fatalf("rollback did not restore the tree (-before +after):\n%s", diff)
	}
	assert.Zero(t, applicator.Pending())
	assert.Zero(t, applicator.Rollback(testContext()))
}

func TestApplyFailureInLaterModuleRevertsEarlierModules(t *testing.T) {
	f := newFixture(t)
	before := f.snapshot()
	good := mustModule(t, "good.xml", `<UIView>
  <Component name="MainPanel">
    <Component name="Title"><text>Changed</text></Component>
  </Component>
  <Component name="Toolbar"><zOrder>9</zOrder></Component>
</UIView>`)
	broken := mustModule(t, "broken.xml", `<UIView>
  <Component name="MainPanel">
    <Component name="PlayButton"><text>Go</text></Component>
    <Component name="Missing"><text>x</text></Component>
  </Component>
</UIView>`)

	applicator := f.applicator(nil)
	report := applicator.Apply(testContext(), []*Module{good, broken}, testResources())
	require.Error(t, report.Err)
	assert.True(t, skinerr.Is(report.Err, skinerr.MissingWidget))
	require.Len(t, report.Outcomes, 2)
	assert.NoError(t, report.Outcomes[0].Err)
	assert.Error(t, report.Outcomes[1].Err)

	if diff := cmp.Diff(before, f.snapshot()); diff != "" {
		t.Fatalf("failed apply left changes behind (-before +after):\n%s", diff)
	}
	assert.Zero(t, applicator.Pending())
}

func TestApplySkipsWritesEqualToCapturedOriginal(t *testing.T) {
	f := newFixture(t)
	source := newCountingSource(f.tree)
	applicator := f.applicator(source)
	module := mustModule(t, "same.xml", `<UIView>
  <Component name="MainPanel">
    <Component name="Title">
      <text>Start</text>
      <text>Play</text>
    </Component>
  </Component>
</UIView>`)
	keepOriginal := mustModule(t, "keep.xml", `<UIView>
  <Component name="MainPanel">
    <Component name="Title"><text>Play</text></Component>
  </Component>
</UIView>`)

	report := applicator.Apply(testContext(), []*Module{keepOriginal, module}, testResources())
	require.NoError(t, report.Err)
	assert.Equal(t, 1, source.sets["text"])
	assert.Equal(t, 1, applicator.Pending())
	assert.Equal(t, 1, report.Writes())
	assert.Equal(t, "Start", f.title.Text)

	applicator.Rollback(testContext())
	assert.Equal(t, "Play", f.title.Text)
}

func TestStickyPropertiesFollowAspectChanges(t *testing.T) {
	f := newFixture(t)
	applicator := f.applicator(nil)
	module := mustModule(t, "sticky.xml", `<UIView>
  <Component name="MainPanel">
    <Component name="Title">
      <textScale sticky="true" aspect="16:9">1.5</textScale>
      <textScale sticky="true" aspect="4:3">0.8</textScale>
    </Component>
  </Component>
</UIView>`)

	report := applicator.Apply(testContext(), []*Module{module}, testResources())
	require.NoError(t, report.Err)
	assert.Equal(t, types.Aspect16x9, report.Aspect)
	assert.Equal(t, 1.5, f.title.TextScale)
	assert.Equal(t, 2, applicator.StickyBindings())
	pending := applicator.Pending()

	f.viewport.width, f.viewport.height = 1024, 768
	assert.Equal(t, 1, applicator.ApplyStickyProperties(testContext()))
	assert.Equal(t, 0.8, f.title.TextScale)
	assert.Equal(t, pending, applicator.Pending())

	applicator.Rollback(testContext())
	assert.Equal(t, 1.0, f.title.TextScale)
	assert.Zero(t, applicator.StickyBindings())
}

func TestUnknownColorFailsWithoutMutation(t *testing.T) {
	f := newFixture(t)
	before := f.snapshot()
	module := mustModule(t, "colors.xml", `<UIView>
  <Component name="MainPanel">
    <Component name="PlayButton"><text>Go</text></Component>
    <Component name="Title"><textColor>nope</textColor></Component>
  </Component>
</UIView>`)

	report := f.applicator(nil).Apply(testContext(), []*Module{module}, testResources())
	require.Error(t, report.Err)
	assert.True(t, skinerr.Is(report.Err, skinerr.ColorNotFound))
	if diff := cmp.Diff(before, f.snapshot()); diff != "" {
		t.Fatalf("unexpected mutation (-before +after):\n%s", diff)
	}
}

func TestRawColorBypassesColorTable(t *testing.T) {
	f := newFixture(t)
	module := mustModule(t, "raw.xml", `<UIView>
  <Component name="MainPanel">
    <Component name="Title"><textColor raw="true">#FF0000</textColor></Component>
    <Component name="PlayButton"><textColor raw="true">255,0,0,255</textColor></Component>
  </Component>
</UIView>`)

	report := f.applicator(nil).Apply(testContext(), []*Module{module}, testResources())
	require.NoError(t, report.Err)
	assert.Equal(t, f.title.TextColor, f.play.TextColor)
	assert.Equal(t, types.Color{R: 255, A: 255}, f.title.TextColor)
}

func TestSpriteStateWritesIndividualStates(t *testing.T) {
	f := newFixture(t)
	before := f.snapshot()
	module := mustModule(t, "states.xml", `<UIView>
  <Component name="MainPanel">
    <Component name="Modes">
      <SpriteState index="1" type="background">
        <normal>bg-normal</normal>
        <hovered>bg-hovered</hovered>
      </SpriteState>
      <SpriteState index="0" type="foreground">
        <pressed>fg-pressed</pressed>
      </SpriteState>
    </Component>
  </Component>
</UIView>`)

	applicator := f.applicator(nil)
	report := applicator.Apply(testContext(), []*Module{module}, testResources())
	require.NoError(t, report.Err)
	assert.Equal(t, 3, report.Writes())

	background, _ := f.modes.SpriteStates(types.SpriteSetBackground)
	foreground, _ := f.modes.SpriteStates(types.SpriteSetForeground)
	assert.Equal(t, "bg-normal", background[1].(*ui.SpriteSetState).Normal)
	assert.Equal(t, "bg-hovered", background[1].(*ui.SpriteSetState).Hovered)
	assert.Equal(t, "", background[0].(*ui.SpriteSetState).Normal)
	assert.Equal(t, "fg-pressed", foreground[0].(*ui.SpriteSetState).Pressed)

	applicator.Rollback(testContext())
	if diff := cmp.Diff(before, f.snapshot()); diff != "" {
		t.Fatalf("sprite states not restored (-before +after):\n%s", diff)
	}
}

func TestSpriteStateFailures(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		kind skinerr.Kind
	}{
		{
			name: "index out of range",
			doc:  `<UIView><Component name="MainPanel"><Component name="Modes"><SpriteState index="2" type="background"><normal>x</normal></SpriteState></Component></Component></UIView>`,
			kind: skinerr.IndexOutOfRange,
		},
		{
			name: "not a multi-state button",
			doc:  `<UIView><Component name="MainPanel"><Component name="Title"><SpriteState index="0" type="background"><normal>x</normal></SpriteState></Component></Component></UIView>`,
			kind: skinerr.MissingComponentProperty,
		},
		{
			name: "unknown state property",
			doc:  `<UIView><Component name="MainPanel"><Component name="Modes"><SpriteState index="0" type="background"><glowing>x</glowing></SpriteState></Component></Component></UIView>`,
			kind: skinerr.MissingComponentProperty,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			report := f.applicator(nil).Apply(testContext(), []*Module{mustModule(t, "s.xml", tt.doc)}, testResources())
			require.Error(t, report.Err)
			assert.True(t, skinerr.Is(report.Err, tt.kind), "got %v", report.Err)
		})
	}
}

func TestPropertyResolutionFailures(t *testing.T) {
	f := newFixture(t)
	applicator := f.applicator(nil)

	missing := mustModule(t, "m.xml", `<UIView><Component name="Toolbar"><glow>1</glow></Component></UIView>`)
	report := applicator.Apply(testContext(), []*Module{missing}, testResources())
	assert.True(t, skinerr.Is(report.Err, skinerr.MissingComponentProperty))

	readOnly := mustModule(t, "r.xml", `<UIView><Component name="Toolbar"><absolutePosition>1,1</absolutePosition></Component></UIView>`)
	report = applicator.Apply(testContext(), []*Module{readOnly}, testResources())
	assert.True(t, skinerr.Is(report.Err, skinerr.ReadOnlyProperty))

	optional := mustModule(t, "o.xml", `<UIView>
  <Component name="Toolbar">
    <glow optional="true">1</glow>
    <absolutePosition optional="true">1,1</absolutePosition>
    <zOrder>3</zOrder>
  </Component>
  <Component name="Sidebar" optional="true"><zOrder>1</zOrder></Component>
</UIView>`)
	report = applicator.Apply(testContext(), []*Module{optional}, testResources())
	require.NoError(t, report.Err)
	assert.Equal(t, 3, f.toolbar.ZOrder)
}

func TestRollbackSkipsDestroyedWidgets(t *testing.T) {
	f := newFixture(t)
	applicator := f.applicator(nil)
	module := mustModule(t, "m.xml", `<UIView>
  <Component name="MainPanel">
    <Component name="Title"><text>Gone</text></Component>
  </Component>
  <Component name="Toolbar"><zOrder>4</zOrder></Component>
</UIView>`)

	report := applicator.Apply(testContext(), []*Module{module}, testResources())
	require.NoError(t, report.Err)
	f.tree.Remove(f.title)

	assert.Equal(t, 1, applicator.Rollback(testContext()))
	assert.Equal(t, 0, f.toolbar.ZOrder)
	assert.Zero(t, applicator.Rollback(testContext()))
}

func TestApplyRevertsOutstandingWritesFirst(t *testing.T) {
	f := newFixture(t)
	applicator := f.applicator(nil)
	first := mustModule(t, "a.xml", `<UIView><Component name="Toolbar"><zOrder>4</zOrder></Component></UIView>`)
	second := mustModule(t, "b.xml", `<UIView><Component name="Toolbar"><zOrder>8</zOrder></Component></UIView>`)

	require.NoError(t, applicator.Apply(testContext(), []*Module{first}, testResources()).Err)
	require.NoError(t, applicator.Apply(testContext(), []*Module{second}, testResources()).Err)
	assert.Equal(t, 8, f.toolbar.ZOrder)

	applicator.Rollback(testContext())
	assert.Equal(t, 0, f.toolbar.ZOrder)
}
