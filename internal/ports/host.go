package ports

import "quartz-skins/internal/types"

// Viewport is the camera/screen collaborator. Size drives aspect-ratio
// classification; the render area is pushed after a successful apply.
type Viewport interface {
	Size() (width int, height int)
	SetRenderArea(area types.Rect)
	ResetRenderArea()
}

// AtlasPacker packs sprite files into one named atlas resource.
type AtlasPacker interface {
	// Pack fails with a TooManySpritesInAtlas error when the sprites do
	// not fit the packer's limits.
	Pack(name string, sprites []types.SpriteSource) (*types.Atlas, error)
	Release(atlas *types.Atlas)
}

// Notifier surfaces author-facing diagnostics without blocking.
type Notifier interface {
	Notify(title string, message string)
}
