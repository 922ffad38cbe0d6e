package app

import "quartz-skins/internal/types"

// Config mirrors the keys of quartz.yaml.
type Config struct {
	ModDirs                 []string
	OverrideDir             string
	AutoReload              bool
	ApplyOnStartup          bool
	SelectedSkin            string
	IgnoreMissingComponents bool
	MaxAtlasSprites         int
	MaxAtlasSize            int
	ScreenWidth             int
	ScreenHeight            int
	Context                 types.ContextClass
}

// SkinInfo describes one installed skin.
type SkinInfo struct {
	types.SkinMetadata
	Path   string
	Active bool
}

type SelectResult struct {
	Name    string
	Path    string
	Context types.ContextClass
	Valid   bool
	Applied bool
	Writes  int
}

type TickResult struct {
	Sticky   int
	Reloaded bool
}

type ValidateRequest struct {
	SkinPath string
	// Contexts to dry-run against the attached scene. Empty means every
	// context class that has modules.
	Contexts []types.ContextClass
}

type ValidateResult struct {
	Name     string
	Author   string
	Legacy   bool
	Colors   int
	Atlases  []string
	Modules  map[types.ContextClass]int
	Contexts []ContextCheck
}

// ContextCheck is the outcome of applying and rolling back one context.
type ContextCheck struct {
	Context  types.ContextClass
	Writes   int
	Restored int
	Err      error
}

// OK reports whether every checked context applied cleanly.
func (r ValidateResult) OK() bool {
	for _, check := range r.Contexts {
		if check.Err != nil {
			return false
		}
	}
	return true
}
