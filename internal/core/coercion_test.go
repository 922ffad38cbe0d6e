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

func descriptor(t *testing.T, typeName string, name string) CoercionContext {
	t.Helper()
	return CoercionContext{Node: typeName + "/" + name}
}

func TestParseColorForms(t *testing.T) {
	hex, err := ParseColor("#FF0000", "test")
	require.NoError(t, err)
	quad, err := ParseColor("255,0,0,255", "test")
	require.NoError(t, err)
	if diff := cmp.Diff(hex, quad); diff != "" {
		t.Fatalf("hex and byte forms differ (-hex +quad):\n%s", diff)
	}

	lower, err := ParseColor("#1a2b3c", "test")
	require.NoError(t, err)
	assert.Equal(t, types.Color{R: 0x1a, G: 0x2b, B: 0x3c, A: 255}, lower)

	for _, bad := range []string{"#FFF", "#GG0000", "1,2,3", "1,2,3,256", "red"} {
		_, err := ParseColor(bad, "test")
		assert.True(t, skinerr.Is(err, skinerr.MalformedValue), bad)
	}
}

func TestCoerceNamedColor(t *testing.T) {
	colors := NewColorTable()
	colors.Define("accent", types.Color{R: 10, G: 20, B: 30, A: 255})
	desc, ok := ui.Registry.LookupProperty(ui.TypeLabel, "textColor")
	require.True(t, ok)

	value, err := Coerce(desc, " accent ", CoercionContext{Node: "n", Colors: colors})
	require.NoError(t, err)
	assert.Equal(t, types.Color{R: 10, G: 20, B: 30, A: 255}, value)

	_, err = Coerce(desc, "missing", CoercionContext{Node: "n", Colors: colors})
	require.Error(t, err)
	assert.True(t, skinerr.Is(err, skinerr.ColorNotFound))
	assert.Equal(t, "n", skinerr.NodeOf(err))

	value, err = Coerce(desc, "#00FF00", CoercionContext{Node: "n", Raw: true, Colors: colors})
	require.NoError(t, err)
	assert.Equal(t, types.Color{G: 255, A: 255}, value)
}

func TestCoerceScalars(t *testing.T) {
	tests := []struct {
		typeName string
		property string
		raw      string
		want     any
	}{
		{ui.TypeLabel, "isVisible", "TRUE", true},
		{ui.TypeLabel, "isVisible", "false", false},
		{ui.TypeLabel, "zOrder", "7", 7},
		{ui.TypeLabel, "textScale", "1.25", 1.25},
		{ui.TypeLabel, "text", "  Hello  ", "Hello"},
		{ui.TypeLabel, "size", "200, 40", types.Vector2{X: 200, Y: 40}},
		{ui.TypePanel, "padding", "1,2,3,4", types.RectOffset{Left: 1, Right: 2, Top: 3, Bottom: 4}},
		{ui.TypeLabel, "textAlignment", "Right", ui.AlignRight},
		{ui.TypeButton, "foregroundSpriteMode", "Scale", ui.SpriteModeScale},
	}
	for _, tt := range tests {
		desc, ok := ui.Registry.LookupProperty(tt.typeName, tt.property)
		require.True(t, ok, tt.property)
		got, err := Coerce(desc, tt.raw, descriptor(t, tt.typeName, tt.property))
		require.NoError(t, err, tt.property)
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Fatalf("unexpected %s value (-want +got):\n%s", tt.property, diff)
		}
	}
}

func TestCoerceMalformedValues(t *testing.T) {
	tests := []struct {
		typeName string
		property string
		raw      string
	}{
		{ui.TypeLabel, "isVisible", "yes"},
		{ui.TypeLabel, "zOrder", "1.5"},
		{ui.TypeLabel, "textScale", "1,5"},
		{ui.TypeLabel, "size", "1"},
		{ui.TypePanel, "padding", "1,2,3"},
		{ui.TypeLabel, "textAlignment", "right"},
		{ui.TypeSprite, "icon", "no-slash"},
	}
	for _, tt := range tests {
		desc, ok := ui.Registry.LookupProperty(tt.typeName, tt.property)
		require.True(t, ok, tt.property)
		_, err := Coerce(desc, tt.raw, descriptor(t, tt.typeName, tt.property))
		require.Error(t, err, tt.property)
		assert.True(t, skinerr.Is(err, skinerr.MalformedValue), "%s: %v", tt.property, err)
	}
}

func TestCoerceAtlasAndSpriteReferences(t *testing.T) {
	atlas := types.NewAtlas("ui", nil)
	atlas.AddSprite(types.SpriteInfo{Name: "play"})
	cctx := CoercionContext{Node: "n", Atlases: map[string]*types.Atlas{"ui": atlas}}

	atlasDesc, _ := ui.Registry.LookupProperty(ui.TypePanel, "atlas")
	value, err := Coerce(atlasDesc, "ui", cctx)
	require.NoError(t, err)
	assert.Same(t, atlas, value)

	_, err = Coerce(atlasDesc, "other", cctx)
	assert.True(t, skinerr.Is(err, skinerr.AtlasNotFound))

	iconDesc, _ := ui.Registry.LookupProperty(ui.TypeSprite, "icon")
	value, err = Coerce(iconDesc, "ui/play", cctx)
	require.NoError(t, err)
	assert.Equal(t, types.SpriteRef{Atlas: "ui", Sprite: "play"}, value)

	_, err = Coerce(iconDesc, "ui/stop", cctx)
	assert.True(t, skinerr.Is(err, skinerr.SpriteNotFound))
	_, err = Coerce(iconDesc, "other/play", cctx)
	assert.True(t, skinerr.Is(err, skinerr.AtlasNotFound))
}

func TestCoerceUnsupportedKind(t *testing.T) {
	desc, _ := ui.Registry.LookupProperty(ui.TypeLabel, "text")
	desc.Kind = types.PropertyKind("matrix")
	_, err := Coerce(desc, "1", CoercionContext{Node: "n"})
	assert.True(t, skinerr.Is(err, skinerr.UnsupportedType))
}

func TestNormalizeRenderArea(t *testing.T) {
	full := NormalizeRenderArea(types.Rect{X: 0, Y: 0, Width: 1920, Height: 1080})
	if diff := cmp.Diff(types.FullScreen, full); diff != "" {
		t.Fatalf("unexpected full screen area (-want +got):\n%s", diff)
	}

	strip := NormalizeRenderArea(types.Rect{X: 0, Y: 1000, Width: 200, Height: 80})
	assert.InDelta(t, 0, strip.X, 1e-9)
	assert.InDelta(t, 1-1000.0/1080-80.0/1080, strip.Y, 1e-9)
	assert.InDelta(t, 0.0741, strip.Y, 1e-4)
	assert.InDelta(t, 0.0741, strip.Height, 1e-4)
	assert.InDelta(t, 0.1042, strip.Width, 1e-4)
}
