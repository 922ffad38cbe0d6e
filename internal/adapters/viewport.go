package adapters

import (
	"github.com/rs/zerolog/log"

	"quartz-skins/internal/ports"
	"quartz-skins/internal/types"
)

// RecordingViewport is a headless camera. It keeps the current render
// area and the history of pushes so dry runs can report them.
type RecordingViewport struct {
	Width  int
	Height int
	Area   types.Rect
	Pushes []types.Rect
}

func NewRecordingViewport(width int, height int) *RecordingViewport {
	return &RecordingViewport{Width: width, Height: height, Area: types.FullScreen}
}

func (v *RecordingViewport) Size() (int, int) {
	return v.Width, v.Height
}

func (v *RecordingViewport) SetRenderArea(area types.Rect) {
	log.Debug().Str("area", area.String()).Msg("render area set")
	v.Area = area
	v.Pushes = append(v.Pushes, area)
}

func (v *RecordingViewport) ResetRenderArea() {
	log.Debug().Msg("render area reset")
	v.Area = types.FullScreen
	v.Pushes = append(v.Pushes, types.FullScreen)
}

// Resize changes the reported size; sticky rules re-evaluate on the next
// tick.
func (v *RecordingViewport) Resize(width int, height int) {
	v.Width = width
	v.Height = height
}

var _ ports.Viewport = (*RecordingViewport)(nil)
