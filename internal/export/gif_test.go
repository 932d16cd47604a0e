package export

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"testing"

	"github.com/san-kum/ballsim/internal/dynamo"
	"github.com/san-kum/ballsim/internal/sim"
)

func TestRasterize(t *testing.T) {
	red := dynamo.RGB(255, 0, 0)
	balls := []sim.Snapshot{{X: 50, Y: 50, CurrentRadius: 20, Color: red}}
	img := Rasterize(balls, dynamo.Bounds{Width: 100, Height: 100}, 1)

	if img.Bounds().Dx() != 100 || img.Bounds().Dy() != 100 {
		t.Fatalf("unexpected size %v", img.Bounds())
	}

	same := func(x, y int, want color.Color) bool {
		return img.ColorIndexAt(x, y) == uint8(img.Palette.Index(want))
	}
	if !same(50, 50, red.RGBA()) {
		t.Error("center should be filled with the ball color")
	}
	if !same(50, 30, color.Black) {
		t.Error("edge should carry the outline")
	}
	if !same(2, 2, dynamo.Background.RGBA()) {
		t.Error("corner should be background")
	}
}

func TestWriteGIF(t *testing.T) {
	bounds := dynamo.Bounds{Width: 40, Height: 30}
	frames := []sim.Snapshot{{X: 10, Y: 10, CurrentRadius: 5, Color: dynamo.White}}

	var buf bytes.Buffer
	err := WriteGIF(&buf, []*image.Paletted{Rasterize(frames, bounds, 1), Rasterize(nil, bounds, 1)}, 2)
	if err != nil {
		t.Fatalf("write: %v", err)
	}

	anim, err := gif.DecodeAll(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(anim.Image) != 2 || anim.Delay[0] != 2 {
		t.Errorf("unexpected animation: %d frames", len(anim.Image))
	}

	if err := WriteGIF(&buf, nil, 2); err == nil {
		t.Error("expected error for empty animation")
	}
}
