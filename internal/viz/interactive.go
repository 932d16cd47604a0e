package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/ballsim/internal/config"
	"github.com/san-kum/ballsim/internal/experiment"
)

var (
	heading  = lipgloss.NewStyle().Foreground(lipgloss.Color("#00cccc")).Bold(true)
	subtitle = lipgloss.NewStyle().Foreground(lipgloss.Color("#666688"))
	pointer  = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ffff")).Bold(true)
	current  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Bold(true)
	detail   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff88ff"))
	idle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#555566"))
	faint    = lipgloss.NewStyle().Foreground(lipgloss.Color("#444455"))
	key      = lipgloss.NewStyle().Foreground(lipgloss.Color("#00aaaa")).Bold(true)
)

const (
	stateMenu = iota
	statePreset
	stateSim
)

// fromConfig is the preset entry that keeps the loaded configuration and
// only swaps its scenario.
const fromConfig = "(config)"

type model struct {
	state, cursor int
	base          *config.Config
	registry      *experiment.Registry
	scenarios     []string
	selected      string
	presets       []string
	presetCursor  int
	scale         float64
	err           error
	liveModel     Model
}

// NewInteractiveApp opens a menu of registered scenarios and their presets.
// base supplies every setting a preset does not override.
func NewInteractiveApp(base *config.Config, registry *experiment.Registry, scale float64) *model {
	return &model{
		state:     stateMenu,
		base:      base,
		registry:  registry,
		scenarios: registry.List(),
		scale:     scale,
	}
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.state == stateSim {
		newLive, cmd := m.liveModel.Update(msg)
		m.liveModel = newLive.(Model)
		return m, cmd
	}
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch m.state {
		case stateMenu:
			return m.menuKey(msg)
		case statePreset:
			return m.presetKey(msg)
		}
	}
	return m, nil
}

func (m model) menuKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.scenarios)-1 {
			m.cursor++
		}
	case "enter", " ":
		m.selected = m.scenarios[m.cursor]
		m.presets = append([]string{fromConfig}, config.ListPresets(m.selected)...)
		m.state, m.presetCursor, m.err = statePreset, 0, nil
	}
	return m, nil
}

func (m model) presetKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc", "h":
		m.state = stateMenu
	case "up", "k":
		if m.presetCursor > 0 {
			m.presetCursor--
		}
	case "down", "j":
		if m.presetCursor < len(m.presets)-1 {
			m.presetCursor++
		}
	case "enter", " ", "s":
		return m.start()
	}
	return m, nil
}

// chosen returns the configuration for the highlighted preset.
func (m model) chosen() *config.Config {
	name := m.presets[m.presetCursor]
	if cfg := config.GetPreset(m.selected, name); cfg != nil {
		return cfg
	}
	cfg := m.base.Clone()
	cfg.Scenario = m.selected
	return cfg
}

func (m model) start() (model, tea.Cmd) {
	cfg := m.chosen()
	live, err := NewModel(m.selected, experiment.ForBounds(cfg, m.registry, nil), m.scale)
	if err != nil {
		m.err = err
		return m, nil
	}
	m.liveModel, m.state = live, stateSim
	return m, tea.Batch(live.Init(), tea.WindowSize())
}

func (m model) View() string {
	switch m.state {
	case stateMenu:
		return m.viewMenu()
	case statePreset:
		return m.viewPresets()
	case stateSim:
		return m.liveModel.View()
	}
	return ""
}

func (m model) header(title, sub string) string {
	return "\n\n    " + heading.Render(title) + "\n    " + subtitle.Render(sub) + "\n    " + subtitle.Render("─────────────────────────") + "\n\n"
}

func (m model) entry(selected bool, name, desc string) string {
	if selected {
		return fmt.Sprintf("    %s %s  %s\n", pointer.Render("▸"), current.Render(fmt.Sprintf("%-12s", name)), detail.Render(desc))
	}
	return fmt.Sprintf("    %s  %s\n", idle.Render(fmt.Sprintf("  %-12s", name)), faint.Render(desc))
}

func hints(pairs ...string) string {
	var b strings.Builder
	b.WriteString("\n    ")
	for i := 0; i+1 < len(pairs); i += 2 {
		b.WriteString(key.Render(pairs[i]) + idle.Render(" "+pairs[i+1]+"  "))
	}
	return b.String() + "\n"
}

func (m model) viewMenu() string {
	var b strings.Builder
	b.WriteString(m.header("BALLSIM", "bouncing ball playground"))
	for i, name := range m.scenarios {
		b.WriteString(m.entry(i == m.cursor, name, m.registry.Describe(name)))
	}
	b.WriteString(hints("j/k", "navigate", "enter", "select", "q", "quit"))
	return b.String()
}

func (m model) viewPresets() string {
	var b strings.Builder
	b.WriteString(m.header(strings.ToUpper(m.selected), m.registry.Describe(m.selected)))
	for i, name := range m.presets {
		cfg := m.chosenAt(i)
		desc := fmt.Sprintf("%d balls, max %d, %.0fx%.0f", cfg.World.InitBalls, cfg.World.MaxBalls, cfg.World.Width, cfg.World.Height)
		b.WriteString(m.entry(i == m.presetCursor, name, desc))
	}
	if m.err != nil {
		b.WriteString("\n    " + lipgloss.NewStyle().Foreground(lipgloss.Color("#ff4444")).Render(m.err.Error()) + "\n")
	}
	b.WriteString(hints("j/k", "select", "enter", "start", "esc", "back", "q", "quit"))
	return b.String()
}

func (m model) chosenAt(i int) *config.Config {
	m.presetCursor = i
	return m.chosen()
}

func RunInteractive(base *config.Config, registry *experiment.Registry, scale float64) error {
	_, err := tea.NewProgram(NewInteractiveApp(base, registry, scale), tea.WithAltScreen(), tea.WithMouseCellMotion()).Run()
	return err
}
