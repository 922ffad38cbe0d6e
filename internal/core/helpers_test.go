package core

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"quartz-skins/internal/policies"
	"quartz-skins/internal/ports"
	"quartz-skins/internal/skinerr"
	"quartz-skins/internal/types"
	"quartz-skins/internal/ui"
)

type fileDocuments struct{}

func (fileDocuments) ReadDocument(path string) (*types.Node, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return types.DecodeNode(file)
}

type fakeViewport struct {
	width  int
	height int
	area   types.Rect
	sets   int
	resets int
}

func (v *fakeViewport) Size() (int, int) { return v.width, v.height }

func (v *fakeViewport) SetRenderArea(area types.Rect) {
	v.area = area
	v.sets++
}

func (v *fakeViewport) ResetRenderArea() {
	v.area = types.FullScreen
	v.resets++
}

type fakePacker struct {
	max      int
	released []string
}

func (p *fakePacker) Pack(name string, sprites []types.SpriteSource) (*types.Atlas, error) {
	if p.max > 0 && len(sprites) > p.max {
		return nil, skinerr.Newf(skinerr.TooManySpritesInAtlas, name, "atlas %q holds %d sprites, limit is %d", name, len(sprites), p.max)
	}
	atlas := types.NewAtlas(name, nil)
	for _, sprite := range sprites {
		atlas.AddSprite(types.SpriteInfo{Name: sprite.Name})
	}
	return atlas, nil
}

func (p *fakePacker) Release(atlas *types.Atlas) {
	p.released = append(p.released, atlas.Name)
}

type fakeWatchSet struct {
	paths   []string
	changed bool
	closed  bool
}

func (w *fakeWatchSet) Watch(path string) error {
	w.paths = append(w.paths, path)
	return nil
}

func (w *fakeWatchSet) HasChanges() bool {
	changed := w.changed
	w.changed = false
	return changed
}

func (w *fakeWatchSet) Close() error {
	w.closed = true
	return nil
}

type fakeNotifier struct {
	titles []string
}

func (n *fakeNotifier) Notify(title string, message string) {
	n.titles = append(n.titles, title)
}

// countingSource counts writes per property name.
type countingSource struct {
	inner   ports.PropertySource
	lookups int
	sets    map[string]int
}

func newCountingSource(inner ports.PropertySource) *countingSource {
	return &countingSource{inner: inner, sets: map[string]int{}}
}

func (s *countingSource) LookupProperty(typeName string, name string) (ports.PropertyDescriptor, bool) {
	s.lookups++
	desc, ok := s.inner.LookupProperty(typeName, name)
	if !ok || desc.Set == nil {
		return desc, ok
	}
	set := desc.Set
	desc.Set = func(target ports.Target, value any) error {
		s.sets[name]++
		return set(target, value)
	}
	return desc, true
}

func (s *countingSource) Properties(typeName string) []ports.PropertyDescriptor {
	return s.inner.Properties(typeName)
}

type fixture struct {
	tree     *ui.Tree
	viewport *fakeViewport
	packer   *fakePacker
	title    *ui.Label
	play     *ui.Button
	modes    *ui.MultiStateButton
	icon     *ui.Sprite
	toolbar  *ui.Panel
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	tree := ui.NewTree()
	main := tree.MustAdd(nil, ui.TypePanel, "MainPanel")
	title := tree.MustAdd(main, ui.TypeLabel, "Title").(*ui.Label)
	title.Text = "Play"
	play := tree.MustAdd(main, ui.TypeButton, "PlayButton").(*ui.Button)
	modes := tree.MustAdd(main, ui.TypeMultiStateButton, "Modes").(*ui.MultiStateButton)
	tree.AddState(modes)
	icon := tree.MustAdd(main, ui.TypeSprite, "Icon").(*ui.Sprite)
	toolbar := tree.MustAdd(nil, ui.TypePanel, "Toolbar").(*ui.Panel)
	return &fixture{
		tree:     tree,
		viewport: &fakeViewport{width: 1920, height: 1080},
		packer:   &fakePacker{max: 4},
		title:    title,
		play:     play,
		modes:    modes,
		icon:     icon,
		toolbar:  toolbar,
	}
}

func (f *fixture) engine() Engine {
	return Engine{
		Resolver:  NewPropertyResolver(f.tree),
		Tree:      f.tree,
		Viewport:  f.viewport,
		Packer:    f.packer,
		Documents: fileDocuments{},
		Aspects:   policies.NewAspectPolicy(),
	}
}

func (f *fixture) applicator(source ports.PropertySource) *Applicator {
	if source == nil {
		source = f.tree
	}
	return NewApplicator(NewPropertyResolver(source), f.tree, f.viewport, policies.NewAspectPolicy(), WalkOptions{})
}

// snapshot captures every property of every widget and sprite state.
func (f *fixture) snapshot() map[string]string {
	out := map[string]string{}
	var visit func(prefix string, widget ports.Widget)
	record := func(prefix string, target ports.Target) {
		for _, desc := range f.tree.Properties(target.TypeName()) {
			value, err := desc.Get(target)
			if err != nil {
				continue
			}
			out[prefix+"."+desc.Name] = fmt.Sprint(value)
		}
	}
	visit = func(prefix string, widget ports.Widget) {
		path := prefix + "/" + widget.Name()
		record(path, widget)
		if states, ok := widget.(ports.MultiStateWidget); ok {
			for _, kind := range []types.SpriteSetKind{types.SpriteSetBackground, types.SpriteSetForeground} {
				set, _ := states.SpriteStates(kind)
				for i, state := range set {
					record(fmt.Sprintf("%s/%s[%d]", path, kind, i), state)
				}
			}
		}
		for _, child := range widget.Children() {
			visit(path, child)
		}
	}
	for _, root := range f.tree.Roots() {
		visit("", root)
	}
	return out
}

func mustModule(t *testing.T, name string, text string) *Module {
	t.Helper()
	root, err := types.DecodeNode(strings.NewReader(text))
	require.NoError(t, err)
	module, err := ParseModule(name, root)
	require.NoError(t, err)
	return module
}

func writeFile(t *testing.T, dir string, name string, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func testContext() context.Context {
	return context.Background()
}
