package adapters

import (
	"image"
	"image/draw"
	"image/png"
	"os"
	"sort"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"quartz-skins/internal/ports"
	"quartz-skins/internal/skinerr"
	"quartz-skins/internal/types"
)

const (
	DefaultMaxAtlasSprites = 256
	DefaultMaxAtlasSize    = 2048
	atlasPadding           = 1
)

// ImageAtlasPacker packs PNG sprites into one RGBA texture using shelf
// packing, tallest sprites first.
type ImageAtlasPacker struct {
	MaxSprites int
	MaxSize    int
	live       int
}

func NewImageAtlasPacker(maxSprites int, maxSize int) *ImageAtlasPacker {
	if maxSprites <= 0 {
		maxSprites = DefaultMaxAtlasSprites
	}
	if maxSize <= 0 {
		maxSize = DefaultMaxAtlasSize
	}
	return &ImageAtlasPacker{MaxSprites: maxSprites, MaxSize: maxSize}
}

type decodedSprite struct {
	name  string
	image image.Image
}

func (p *ImageAtlasPacker) Pack(name string, sprites []types.SpriteSource) (*types.Atlas, error) {
	if len(sprites) > p.MaxSprites {
		return nil, skinerr.Newf(skinerr.TooManySpritesInAtlas, name,
			"atlas %q has %d sprites, the limit is %d", name, len(sprites), p.MaxSprites)
	}
	decoded := make([]decodedSprite, 0, len(sprites))
	for _, sprite := range sprites {
		img, err := decodePNG(sprite.Path)
		if err != nil {
			return nil, err
		}
		decoded = append(decoded, decodedSprite{name: sprite.Name, image: img})
	}

	order := make([]int, len(decoded))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return decoded[order[i]].image.Bounds().Dy() > decoded[order[j]].image.Bounds().Dy()
	})

	regions := make([]image.Rectangle, len(decoded))
	x, y, shelf, width := 0, 0, 0, 0
	for _, index := range order {
		bounds := decoded[index].image.Bounds()
		w, h := bounds.Dx(), bounds.Dy()
		if x+w > p.MaxSize {
			x = 0
			y += shelf + atlasPadding
			shelf = 0
		}
		if x+w > p.MaxSize || y+h > p.MaxSize {
			return nil, skinerr.Newf(skinerr.TooManySpritesInAtlas, name,
				"sprites of atlas %q do not fit into %dx%d", name, p.MaxSize, p.MaxSize)
		}
		regions[index] = image.Rect(x, y, x+w, y+h)
		x += w + atlasPadding
		if h > shelf {
			shelf = h
		}
		if x > width {
			width = x
		}
	}

	texture := image.NewRGBA(image.Rect(0, 0, max(width, 1), max(y+shelf, 1)))
	atlas := types.NewAtlas(name, texture)
	for i, sprite := range decoded {
		draw.Draw(texture, regions[i], sprite.image, sprite.image.Bounds().Min, draw.Src)
		atlas.AddSprite(types.SpriteInfo{Name: sprite.name, Region: regions[i]})
	}
	p.live++
	return atlas, nil
}

func (p *ImageAtlasPacker) Release(atlas *types.Atlas) {
	if atlas == nil || atlas.Texture == nil {
		return
	}
	atlas.Texture = nil
	p.live--
}

// Live returns the number of packed atlases not yet released.
func (p *ImageAtlasPacker) Live() int {
	return p.live
}

func decodePNG(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("failed to open sprite " + path).
			WithCause(err)
	}
	defer file.Close()
	img, err := png.Decode(file)
	if err != nil {
		return nil, skinerr.Wrap(skinerr.MalformedValue, path, "failed to decode sprite", err)
	}
	return img, nil
}

var _ ports.AtlasPacker = (*ImageAtlasPacker)(nil)
