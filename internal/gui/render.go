package gui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/san-kum/ballsim/internal/dynamo"
	"github.com/san-kum/ballsim/internal/export"
	"github.com/san-kum/ballsim/internal/physics"
)

func toRL(c dynamo.Color) rl.Color {
	rgba := c.RGBA()
	return rl.NewColor(rgba.R, rgba.G, rgba.B, rgba.A)
}

func (a *App) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(toRL(dynamo.Background))

	for _, b := range a.Sim.Balls() {
		a.drawBall(b)
	}
	if a.ShowHUD {
		a.DrawHUD()
		a.DrawTelemetry()
	}

	rl.EndDrawing()
}

// drawBall fills the disc and strokes its edge with a black ring as wide as
// the SVG outline.
func (a *App) drawBall(b *physics.Ball) {
	r := float32(b.CurrentRadius())
	if r <= 0 {
		return
	}
	p := b.Position()
	center := rl.NewVector2(float32(p.X), float32(p.Y))
	half := float32(export.OutlineWidth / 2)

	rl.DrawCircleV(center, r, toRL(b.Color()))
	rl.DrawRing(center, max(r-half, 0), r+half, 0, 360, 48, rl.Black)
}

func (a *App) DrawHUD() {
	rl.DrawRectangle(10, 10, 230, 176, ColPanel)

	a.drawText(a.Title, 20, 18, 20, ColText)
	status := "RUNNING"
	if !a.Running {
		status = "PAUSED"
	}
	a.drawText(fmt.Sprintf("%s  x%g", status, a.Speed), 20, 42, 14, ColTextDim)

	lines := []string{
		fmt.Sprintf("balls     %d/%d", a.Sim.Len(), a.Sim.MaxBalls()),
		fmt.Sprintf("time      %.1fs", a.Sim.Time()/1000),
		fmt.Sprintf("contacts  %d", a.Contacts),
		fmt.Sprintf("wall hits %d", a.WallHits),
		fmt.Sprintf("%d FPS", rl.GetFPS()),
	}
	for i, line := range lines {
		a.drawText(line, 20, 64+i*18, 14, ColText)
	}

	if a.Audio != nil && a.Audio.Active() {
		low, mid, high := a.Audio.Bands()
		for i, v := range []float64{low, mid, high} {
			w := int32(min(v, 1) * 60)
			rl.DrawRectangle(int32(20+i*70), 160, w, 8, ColGraph)
		}
	} else {
		a.drawText("audio off", 20, 156, 14, ColTextDim)
	}

	h := int32(rl.GetScreenHeight())
	a.drawText("click spawn/dispose  SPACE pause  R reset  C clear  N add  +/- speed  H hud  Q quit", 10, int(h-22), 14, ColTextDim)
}

// DrawTelemetry plots the kinetic energy history in the top-right corner.
func (a *App) DrawTelemetry() {
	if len(a.Telemetry) < 2 {
		return
	}
	const gw, gh = 240, 80
	x0 := float32(rl.GetScreenWidth()) - gw - 10
	y0 := float32(10)
	rl.DrawRectangle(int32(x0), int32(y0), gw, gh, ColPanel)

	lo, hi := a.Telemetry[0], a.Telemetry[0]
	for _, v := range a.Telemetry {
		lo, hi = min(lo, v), max(hi, v)
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}

	step := float32(gw) / float32(len(a.Telemetry)-1)
	point := func(i int) rl.Vector2 {
		y := y0 + gh - 4 - float32((a.Telemetry[i]-lo)/span)*(gh-8)
		return rl.NewVector2(x0+float32(i)*step, y)
	}
	for i := 1; i < len(a.Telemetry); i++ {
		rl.DrawLineV(point(i-1), point(i), ColGraph)
	}
	a.drawText("kinetic energy", int(x0)+6, int(y0)+4, 12, ColTextDim)

	if a.err != nil {
		a.drawText(a.err.Error(), int(x0), int(y0)+gh+6, 12, ColWarn)
	}
}

func (a *App) drawText(text string, x, y int, size int, color rl.Color) {
	rl.DrawTextEx(a.Font, text, rl.NewVector2(float32(x), float32(y)), float32(size), 1, color)
}
