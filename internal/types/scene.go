package types

// SceneSpec is the YAML snapshot of a host widget tree. Skin authors dump
// the live tree to find widget names; the CLI loads snapshots as the host
// for dry runs.
type SceneSpec struct {
	Viewport SceneViewport `yaml:"viewport"`
	Widgets  []SceneWidget `yaml:"widgets"`
}

type SceneViewport struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

type SceneWidget struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
	// Properties holds literal property values; named colors are not
	// resolved here.
	Properties       map[string]string   `yaml:"properties,omitempty"`
	BackgroundStates []map[string]string `yaml:"background_states,omitempty"`
	ForegroundStates []map[string]string `yaml:"foreground_states,omitempty"`
	Children         []SceneWidget       `yaml:"children,omitempty"`
}
