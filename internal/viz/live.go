package viz

import (
	"errors"
	"fmt"
	"image"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/ballsim/internal/control"
	"github.com/san-kum/ballsim/internal/dynamo"
	"github.com/san-kum/ballsim/internal/experiment"
	"github.com/san-kum/ballsim/internal/export"
	"github.com/san-kum/ballsim/internal/physics"
	"github.com/san-kum/ballsim/internal/sim"
)

const (
	width           = 80
	height          = 24
	statsWidth      = 45
	historyCapacity = 600

	// DefaultScale is the number of world units covered by one braille dot.
	DefaultScale = 8.0

	maxTickMs  = 100.0
	minSpeed   = 0.125
	maxSpeed   = 8.0
	gifScale   = 0.5
	gifDelay   = 2
	gifMaxSize = 900
)

type TickMsg time.Time

// Model contains simulation state, visualization buffers, and UI context.
type Model struct {
	sim    *sim.Simulation
	build  experiment.Builder
	queue  *control.Queue
	bounds dynamo.Bounds
	scale  float64

	width, height int
	canvas        *Canvas
	theme         Theme
	title         string

	running  bool
	speed    float64
	last     time.Time
	fps      float64
	report   sim.Report
	contacts int
	wallHits int

	energyHistory []float64
	popHistory    []float64

	recording bool
	frames    []*image.Paletted
	GIFPath   string

	showHelp bool
	err      error
}

// NewModel builds the first simulation for a default-sized canvas. build
// runs again on every reset.
func NewModel(title string, build experiment.Builder, scale float64) (Model, error) {
	if scale <= 0 {
		scale = DefaultScale
	}
	m := Model{
		build:         build,
		queue:         control.NewQueue(),
		scale:         scale,
		width:         width,
		height:        height,
		canvas:        NewCanvas(width, height),
		theme:         Themes[0],
		title:         title,
		running:       true,
		speed:         1,
		energyHistory: make([]float64, 0, historyCapacity),
		popHistory:    make([]float64, 0, historyCapacity),
		GIFPath:       "ballsim.gif",
	}
	m.bounds = m.canvasBounds()

	s, err := build(m.bounds)
	if err != nil {
		return Model{}, err
	}
	m.sim = s
	return m, nil
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Queue exposes the input queue so other front-ends can inject commands.
func (m Model) Queue() *control.Queue       { return m.queue }
func (m Model) Simulation() *sim.Simulation { return m.sim }
func (m Model) Bounds() dynamo.Bounds       { return m.bounds }
func (m Model) Err() error                  { return m.err }

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.MouseMsg:
		if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
			if p, ok := m.CellToWorld(msg.X, msg.Y); ok {
				m.queue.Click(p)
			}
		}
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
	case TickMsg:
		now := time.Time(msg)
		dt := 1000.0 / 60
		if !m.last.IsZero() {
			dt = min(max(float64(now.Sub(m.last).Microseconds())/1000, 0), maxTickMs)
			if dt > 0 {
				m.fps = 0.9*m.fps + 0.1*(1000/dt)
			}
		}
		m.last = now
		m.advance(dt)
		if m.recording {
			m.captureFrame()
		}
		return m, tick()
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		if m.recording {
			m.saveGIF()
		}
		return m, tea.Quit
	case " ":
		m.running = !m.running
	case "r":
		m.reset()
	case "c":
		m.queue.Clear()
	case "n":
		if _, err := m.sim.SpawnRandom(1, m.bounds); err != nil {
			m.err = err
		}
	case "t":
		m.theme = NextTheme(m.theme)
	case "+", "=":
		m.speed = min(m.speed*2, maxSpeed)
	case "-", "_":
		m.speed = max(m.speed/2, minSpeed)
	case "g":
		if m.recording {
			m.saveGIF()
			m.recording = false
			m.frames = nil
		} else {
			m.recording = true
			m.frames = make([]*image.Paletted, 0)
		}
	case "?":
		m.showHelp = !m.showHelp
	}
	return m, nil
}

// advance drains queued input and, unless paused, steps the simulation by
// dt milliseconds of wall time scaled by the speed multiplier.
func (m *Model) advance(dt float64) {
	if _, err := m.sim.Drain(m.queue, m.bounds); err != nil {
		m.err = err
	}
	if !m.running {
		return
	}

	r, err := m.sim.Step(dt*m.speed, m.bounds)
	if err != nil {
		m.err = err
		m.running = false
		return
	}
	m.report = r
	m.contacts += r.Contacts
	m.wallHits += r.WallHits

	balls := m.sim.Balls()
	m.energyHistory = appendCapped(m.energyHistory, physics.TotalKineticEnergy(balls))
	m.popHistory = appendCapped(m.popHistory, float64(len(balls)))
}

func appendCapped(h []float64, v float64) []float64 {
	h = append(h, v)
	if len(h) > historyCapacity {
		h = h[1:]
	}
	return h
}

// reset rebuilds the simulation for the current bounds.
func (m *Model) reset() {
	s, err := m.build(m.bounds)
	if err != nil {
		m.err = err
		return
	}
	m.sim = s
	m.queue.Take()
	m.energyHistory = m.energyHistory[:0]
	m.popHistory = m.popHistory[:0]
	m.contacts, m.wallHits = 0, 0
	m.report = sim.Report{}
	m.err = nil
	m.running = true
}

// resize fits the canvas beside the stats panel and derives new world
// bounds from it. Balls outside the new bounds are pushed back by the walls.
func (m *Model) resize(w, h int) {
	m.width = max(w-statsWidth-6, 10)
	m.height = max(h-2, 5)
	m.canvas = NewCanvas(m.width, m.height)
	m.bounds = m.canvasBounds()
}

func (m Model) canvasBounds() dynamo.Bounds {
	dw, dh := m.canvas.Dots()
	return dynamo.Bounds{Width: float64(dw) * m.scale, Height: float64(dh) * m.scale}
}

// CellToWorld maps a terminal cell to the world point under its center.
// Cells in the canvas padding or outside the canvas report false.
func (m Model) CellToWorld(x, y int) (dynamo.Vec, bool) {
	col, row := x-2, y-1
	if col < 0 || row < 0 || col >= m.canvas.Width || row >= m.canvas.Height {
		return dynamo.Vec{}, false
	}
	return dynamo.Vec{
		X: (float64(col)*2 + 1) * m.scale,
		Y: (float64(row)*4 + 2) * m.scale,
	}, true
}

func (m *Model) draw() {
	m.canvas.Clear()
	for _, b := range m.sim.Balls() {
		if b.CurrentRadius() <= 0 {
			continue
		}
		color := BallColor(b.Color())
		if m.theme.Mono != "" {
			color = m.theme.Mono
		}
		p := b.Position()
		m.canvas.FillCircle(p.X/m.scale, p.Y/m.scale, b.CurrentRadius()/m.scale, color)
	}
}

func (m *Model) captureFrame() {
	if len(m.frames) >= gifMaxSize {
		return
	}
	m.frames = append(m.frames, export.Rasterize(sim.Snap(m.sim.Balls()), m.bounds, gifScale))
}

func (m *Model) saveGIF() {
	if len(m.frames) == 0 {
		return
	}
	f, err := os.Create(m.GIFPath)
	if err != nil {
		m.err = err
		return
	}
	err = export.WriteGIF(f, m.frames, gifDelay)
	m.err = errors.Join(err, f.Close())
}

// View renders the TUI interface.
func (m Model) View() string {
	m.draw()
	canvasView := canvasStyle.Render(m.canvas.String())

	var s strings.Builder
	s.WriteString(lipgloss.NewStyle().Bold(true).Render(GradientText(strings.ToUpper(m.title), m.theme.Primary, m.theme.Accent)) + "\n\n")

	status := lipgloss.NewStyle().Foreground(m.theme.Accent).Render("RUNNING")
	if !m.running {
		status = lipgloss.NewStyle().Foreground(m.theme.Muted).Render("PAUSED")
	}
	if m.recording {
		status += lipgloss.NewStyle().Foreground(m.theme.Warning).Render(fmt.Sprintf("  ● REC %d", len(m.frames)))
	}
	s.WriteString(status + "\n")

	if len(m.energyHistory) > 1 {
		chart := asciigraph.Plot(m.energyHistory, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Kinetic energy"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}

	n, capacity := m.sim.Len(), m.sim.MaxBalls()
	s.WriteString(stat("Time", "%.2fs", m.sim.Time()/1000))
	s.WriteString(stat("Frame", "%d", m.sim.Frame()))
	s.WriteString(stat("Balls", "%d/%d", n, capacity))
	s.WriteString(labelStyle.Render("") + ProgressBar(float64(n)/float64(capacity), 20) + "\n")
	energy := 0.0
	if len(m.energyHistory) > 0 {
		energy = m.energyHistory[len(m.energyHistory)-1]
	}
	s.WriteString(stat("Energy", "%.3g", energy))
	s.WriteString(stat("Contacts", "%d", m.contacts))
	s.WriteString(stat("Wall hits", "%d", m.wallHits))
	s.WriteString(stat("FPS", "%.0f", m.fps))
	s.WriteString(stat("Step", "%.1fms", m.report.Dt))
	s.WriteString(stat("Speed", "%gx", m.speed))
	s.WriteString(stat("World", "%.0fx%.0f", m.bounds.Width, m.bounds.Height))
	s.WriteString(stat("Theme", "%s", m.theme.Name))
	s.WriteString("\n" + labelStyle.Render("Population") + SparklineChart(m.popHistory, 28) + "\n")

	if m.err != nil {
		s.WriteString("\n" + lipgloss.NewStyle().Foreground(m.theme.Warning).Render(m.err.Error()) + "\n")
	}

	s.WriteString(helpStyle.Render("─────────────────────\nclick:spawn/dispose  SP:pause\nR:reset C:clear N:add Q:quit\nT:theme G:record ?:help"))
	statsView := statsStyle.Render(s.String())
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsView)
	if m.showHelp {
		return `
╔══════════════════════════════════════╗
║           KEYBOARD SHORTCUTS         ║
╠══════════════════════════════════════╣
║  Click    - Spawn or dispose a ball  ║
║  Space    - Pause/Resume simulation  ║
║  R        - Reset scenario           ║
║  C        - Clear all balls          ║
║  N        - Add a random ball        ║
║  +/-      - Double/halve speed       ║
║  G        - Toggle GIF recording     ║
║  T        - Cycle themes             ║
║  Q        - Quit                     ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝
` + "\n\n" + mainView
	}
	return mainView
}

// Run starts the live view with mouse support in the alternate screen.
func Run(m Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion()).Run()
	return err
}
