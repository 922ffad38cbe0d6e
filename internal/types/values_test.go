package types

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRectValid(t *testing.T) {
	tests := []struct {
		name string
		rect Rect
		want bool
	}{
		{"full screen", FullScreen, true},
		{"offset", Rect{X: 0.25, Y: -0.5, Width: 0.5, Height: 0.1}, true},
		{"zero width", Rect{Width: 0, Height: 1}, false},
		{"negative height", Rect{Width: 1, Height: -1}, false},
		{"nan origin", Rect{X: math.NaN(), Width: 1, Height: 1}, false},
		{"infinite origin", Rect{Y: math.Inf(-1), Width: 1, Height: 1}, false},
		{"infinite extent", Rect{Width: 1, Height: math.Inf(1)}, false},
		{"nan extent", Rect{Width: math.NaN(), Height: 1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.rect.Valid())
		})
	}
}
