package gui

import (
	"errors"
	"io"
	"os"

	"github.com/charmbracelet/log"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/san-kum/ballsim/internal/audio"
	"github.com/san-kum/ballsim/internal/control"
	"github.com/san-kum/ballsim/internal/dynamo"
	"github.com/san-kum/ballsim/internal/experiment"
	"github.com/san-kum/ballsim/internal/physics"
	"github.com/san-kum/ballsim/internal/sim"
)

var (
	ColText    = rl.NewColor(20, 20, 40, 255)
	ColTextDim = rl.NewColor(90, 100, 130, 255)
	ColPanel   = rl.NewColor(255, 255, 255, 160)
	ColGraph   = rl.NewColor(40, 90, 200, 255)
	ColWarn    = rl.NewColor(200, 40, 40, 255)
)

const (
	fontPath   = "/usr/share/fonts/liberation/LiberationMono-Regular.ttf"
	maxFrameMs = 100.0
	maxHistory = 300
	minSpeed   = 0.125
	maxSpeed   = 8.0
)

type Options struct {
	Title  string
	Width  int
	Height int
	FPS    int
	Audio  bool
	Logger *log.Logger
}

type App struct {
	Sim     *sim.Simulation
	Build   experiment.Builder
	Queue   *control.Queue
	Bounds  dynamo.Bounds
	Title   string
	Running bool
	Speed   float64
	ShowHUD bool

	Contacts  int
	WallHits  int
	Telemetry []float64

	Font  rl.Font
	Audio *audio.Processor

	logger *log.Logger
	err    error
}

func initWindow(o Options) {
	rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagMsaa4xHint)
	rl.InitWindow(int32(o.Width), int32(o.Height), o.Title)
	rl.SetTargetFPS(int32(o.FPS))
	rl.SetExitKey(0)
}

// loadFont loads Liberation Mono when it is installed and falls back to the
// raylib default font otherwise.
func loadFont() rl.Font {
	if _, err := os.Stat(fontPath); err != nil {
		return rl.GetFontDefault()
	}
	font := rl.LoadFontEx(fontPath, 32, nil, 0)
	rl.SetTextureFilter(font.Texture, rl.FilterBilinear)
	return font
}

// NewApp builds the first simulation for a window of the given size. It
// needs an open window for the font.
func NewApp(build experiment.Builder, o Options) (*App, error) {
	logger := o.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	app := &App{
		Build:     build,
		Queue:     control.NewQueue(),
		Bounds:    dynamo.Bounds{Width: float64(o.Width), Height: float64(o.Height)},
		Title:     o.Title,
		Running:   true,
		Speed:     1,
		ShowHUD:   true,
		Telemetry: make([]float64, 0, maxHistory),
		Font:      loadFont(),
		logger:    logger,
	}

	if o.Audio {
		proc := audio.NewProcessor(logger)
		if err := proc.Start(); err != nil {
			logger.Warn("continuing without audio", "err", err)
		} else {
			app.Audio = proc
		}
	}

	if err := app.reset(); err != nil {
		app.Close()
		return nil, err
	}
	return app, nil
}

// Run opens a window and blocks until it is closed.
func Run(build experiment.Builder, o Options) error {
	if o.Width <= 0 || o.Height <= 0 {
		o.Width, o.Height = 800, 600
	}
	if o.FPS <= 0 {
		o.FPS = 60
	}
	initWindow(o)
	defer rl.CloseWindow()

	app, err := NewApp(build, o)
	if err != nil {
		return err
	}
	defer app.Close()
	return app.RunLoop()
}

func (a *App) RunLoop() error {
	for !rl.WindowShouldClose() {
		if !a.Update() {
			break
		}
		a.Draw()
	}
	return a.err
}

func (a *App) Close() {
	if a.Audio != nil {
		if err := a.Audio.Stop(); err != nil {
			a.logger.Warn("audio shutdown", "err", err)
		}
		a.Audio = nil
	}
}

func (a *App) reset() error {
	s, err := a.Build(a.Bounds)
	if err != nil {
		return err
	}
	s.SetLogger(a.logger)
	if a.Audio != nil {
		s.AddObserver(a.Audio)
	}
	a.Sim = s
	a.Queue.Take()
	a.Contacts, a.WallHits = 0, 0
	a.Telemetry = a.Telemetry[:0]
	a.err = nil
	a.Running = true
	return nil
}

// Update handles input and advances the simulation by the real frame time.
// It reports false when the user asked to quit.
func (a *App) Update() bool {
	if rl.IsKeyPressed(rl.KeyQ) || rl.IsKeyPressed(rl.KeyEscape) {
		return false
	}

	if rl.IsWindowResized() {
		a.Bounds = dynamo.Bounds{Width: float64(rl.GetScreenWidth()), Height: float64(rl.GetScreenHeight())}
		a.logger.Debug("resize", "width", a.Bounds.Width, "height", a.Bounds.Height)
	}

	if rl.IsMouseButtonPressed(rl.MouseLeftButton) {
		m := rl.GetMousePosition()
		a.Queue.Click(dynamo.V(float64(m.X), float64(m.Y)))
	}

	switch {
	case rl.IsKeyPressed(rl.KeySpace):
		a.Running = !a.Running
	case rl.IsKeyPressed(rl.KeyR):
		if err := a.reset(); err != nil {
			a.err = err
			return false
		}
	case rl.IsKeyPressed(rl.KeyC):
		a.Queue.Clear()
	case rl.IsKeyPressed(rl.KeyN):
		if _, err := a.Sim.SpawnRandom(1, a.Bounds); err != nil {
			a.logger.Warn("spawn", "err", err)
		}
	case rl.IsKeyPressed(rl.KeyH):
		a.ShowHUD = !a.ShowHUD
	case rl.IsKeyPressed(rl.KeyEqual), rl.IsKeyPressed(rl.KeyKpAdd):
		a.Speed = min(a.Speed*2, maxSpeed)
	case rl.IsKeyPressed(rl.KeyMinus), rl.IsKeyPressed(rl.KeyKpSubtract):
		a.Speed = max(a.Speed/2, minSpeed)
	}

	if _, err := a.Sim.Drain(a.Queue, a.Bounds); err != nil {
		a.logger.Warn("input", "err", err)
	}
	if !a.Running {
		return true
	}

	dt := min(float64(rl.GetFrameTime())*1000, maxFrameMs)
	r, err := a.Sim.Step(dt*a.Speed, a.Bounds)
	if err != nil {
		var serr *dynamo.SimulationError
		if errors.As(err, &serr) {
			a.logger.Error("simulation diverged", "frame", serr.Frame, "ball", serr.Ball, "err", err)
			a.err = err
			return false
		}
		a.logger.Warn("step skipped", "err", err)
		return true
	}

	a.Contacts += r.Contacts
	a.WallHits += r.WallHits
	a.Telemetry = append(a.Telemetry, physics.TotalKineticEnergy(a.Sim.Balls()))
	if len(a.Telemetry) > maxHistory {
		a.Telemetry = a.Telemetry[1:]
	}
	return true
}
