package export

import (
	"errors"
	"image"
	"image/color"
	"image/color/palette"
	"image/gif"
	"io"
	"math"

	"github.com/san-kum/ballsim/internal/dynamo"
	"github.com/san-kum/ballsim/internal/sim"
)

// Rasterize draws balls as outlined discs on the background color, scaled
// by scale pixels per world unit.
func Rasterize(balls []sim.Snapshot, bounds dynamo.Bounds, scale float64) *image.Paletted {
	w, h := max(int(bounds.Width*scale), 1), max(int(bounds.Height*scale), 1)
	img := image.NewPaletted(image.Rect(0, 0, w, h), palette.Plan9)

	bg := uint8(img.Palette.Index(dynamo.Background.RGBA()))
	for i := range img.Pix {
		img.Pix[i] = bg
	}
	outline := uint8(img.Palette.Index(color.Black))
	half := OutlineWidth * scale / 2

	for _, b := range balls {
		if b.CurrentRadius <= 0 {
			continue
		}
		fill := uint8(img.Palette.Index(b.Color.RGBA()))
		cx, cy, r := b.X*scale, b.Y*scale, b.CurrentRadius*scale
		outer := r + half

		for y := int(math.Floor(cy - outer)); y <= int(math.Ceil(cy+outer)); y++ {
			for x := int(math.Floor(cx - outer)); x <= int(math.Ceil(cx+outer)); x++ {
				d := math.Hypot(float64(x)+0.5-cx, float64(y)+0.5-cy)
				switch {
				case d <= r-half:
					img.SetColorIndex(x, y, fill)
				case d <= outer:
					img.SetColorIndex(x, y, outline)
				}
			}
		}
	}
	return img
}

// WriteGIF encodes frames as a looping animation with delay hundredths of
// a second between frames.
func WriteGIF(w io.Writer, frames []*image.Paletted, delay int) error {
	if len(frames) == 0 {
		return errors.New("export: no frames to encode")
	}
	anim := gif.GIF{LoopCount: 0}
	for _, frame := range frames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, delay)
	}
	return gif.EncodeAll(w, &anim)
}
