package adapters

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"quartz-skins/internal/core"
	"quartz-skins/internal/ports"
	"quartz-skins/internal/types"
	"quartz-skins/internal/ui"
)

// Scene is a host widget tree loaded from a snapshot.
type Scene struct {
	Tree   *ui.Tree
	Width  int
	Height int
}

type SceneFileAdapter struct{}

func NewSceneFileAdapter() SceneFileAdapter {
	return SceneFileAdapter{}
}

func (a SceneFileAdapter) Load(path string) (Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Scene{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("scene file not found").
			WithCause(err)
	}
	var spec types.SceneSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return Scene{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to parse scene yaml").
			WithCause(err)
	}
	return BuildScene(spec)
}

// BuildScene creates a widget tree from a snapshot. Atlas and sprite
// references are skipped since a snapshot carries no atlases.
func BuildScene(spec types.SceneSpec) (Scene, error) {
	tree := ui.NewTree()
	for _, widget := range spec.Widgets {
		if err := addSceneWidget(tree, nil, widget, widget.Name); err != nil {
			return Scene{}, err
		}
	}
	width, height := spec.Viewport.Width, spec.Viewport.Height
	if width <= 0 || height <= 0 {
		width, height = int(core.ReferenceWidth), int(core.ReferenceHeight)
	}
	return Scene{Tree: tree, Width: width, Height: height}, nil
}

func addSceneWidget(tree *ui.Tree, parent ports.Widget, spec types.SceneWidget, path string) error {
	typeName := spec.Type
	if typeName == "" {
		typeName = ui.TypeComponent
	}
	widget, err := tree.Add(parent, typeName, spec.Name)
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("invalid scene widget " + path).
			WithCause(err)
	}
	if err := setSceneProperties(widget, spec.Properties, path); err != nil {
		return err
	}
	if button, ok := widget.(*ui.MultiStateButton); ok {
		if err := loadSceneStates(tree, button, spec, path); err != nil {
			return err
		}
	}
	for _, child := range spec.Children {
		if err := addSceneWidget(tree, widget, child, path+"/"+child.Name); err != nil {
			return err
		}
	}
	return nil
}

func loadSceneStates(tree *ui.Tree, button *ui.MultiStateButton, spec types.SceneWidget, path string) error {
	count := max(len(spec.BackgroundStates), len(spec.ForegroundStates))
	for button.StateCount() < count {
		tree.AddState(button)
	}
	sets := map[types.SpriteSetKind][]map[string]string{
		types.SpriteSetBackground: spec.BackgroundStates,
		types.SpriteSetForeground: spec.ForegroundStates,
	}
	for kind, values := range sets {
		states, _ := button.SpriteStates(kind)
		for i, props := range values {
			if err := setSceneProperties(states[i], props, fmt.Sprintf("%s/%s[%d]", path, kind, i)); err != nil {
				return err
			}
		}
	}
	return nil
}

func setSceneProperties(target ports.Target, props map[string]string, path string) error {
	for name, raw := range props {
		desc, ok := ui.Registry.LookupProperty(target.TypeName(), name)
		if !ok || !desc.Writable() {
			return errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("scene widget %s has no writable property %q", path, name))
		}
		if desc.Kind == types.KindAtlas || desc.Kind == types.KindSprite {
			log.Debug().Str("widget", path).Str("property", name).Msg("skipping atlas reference in scene")
			continue
		}
		value, err := core.Coerce(desc, raw, core.CoercionContext{Node: path + "/" + name, Raw: true})
		if err != nil {
			return err
		}
		if err := desc.Set(target, value); err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to set scene property " + name).
				WithCause(err)
		}
	}
	return nil
}

// Snapshot captures the writable properties of every widget in tree.
func (a SceneFileAdapter) Snapshot(tree *ui.Tree, width int, height int) types.SceneSpec {
	spec := types.SceneSpec{Viewport: types.SceneViewport{Width: width, Height: height}}
	for _, root := range tree.Roots() {
		spec.Widgets = append(spec.Widgets, snapshotWidget(root))
	}
	return spec
}

func (a SceneFileAdapter) Dump(path string, spec types.SceneSpec) error {
	data, err := yaml.Marshal(spec)
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to encode scene yaml").
			WithCause(err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to create scene directory").
				WithCause(err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to write scene file").
			WithCause(err)
	}
	return nil
}

func snapshotWidget(widget ports.Widget) types.SceneWidget {
	out := types.SceneWidget{
		Name:       widget.Name(),
		Type:       widget.TypeName(),
		Properties: snapshotProperties(widget),
	}
	if states, ok := widget.(ports.MultiStateWidget); ok {
		background, _ := states.SpriteStates(types.SpriteSetBackground)
		for _, state := range background {
			out.BackgroundStates = append(out.BackgroundStates, snapshotProperties(state))
		}
		foreground, _ := states.SpriteStates(types.SpriteSetForeground)
		for _, state := range foreground {
			out.ForegroundStates = append(out.ForegroundStates, snapshotProperties(state))
		}
	}
	for _, child := range widget.Children() {
		out.Children = append(out.Children, snapshotWidget(child))
	}
	return out
}

func snapshotProperties(target ports.Target) map[string]string {
	props := map[string]string{}
	for _, desc := range ui.Registry.Properties(target.TypeName()) {
		if !desc.Writable() {
			continue
		}
		value, err := desc.Get(target)
		if err != nil {
			continue
		}
		text, ok := formatSceneValue(value)
		if !ok {
			continue
		}
		props[desc.Name] = text
	}
	return props
}

func formatSceneValue(value any) (string, bool) {
	switch typed := value.(type) {
	case *types.Atlas:
		if typed == nil {
			return "", false
		}
		return typed.Name, true
	case types.SpriteRef:
		if typed.Sprite == "" {
			return "", false
		}
		return typed.String(), true
	case float64:
		return strconv.FormatFloat(typed, 'g', -1, 64), true
	case fmt.Stringer:
		return typed.String(), true
	default:
		text := fmt.Sprint(value)
		return text, text != ""
	}
}
