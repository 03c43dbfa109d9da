// Package ui provides the terminal user interface using Bubble Tea.
package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/litescript/ls-globe/internal/cluster"
	"github.com/litescript/ls-globe/internal/engine"
	"github.com/litescript/ls-globe/internal/geo"
	"github.com/litescript/ls-globe/internal/interact"
	"github.com/litescript/ls-globe/internal/logging"
	"github.com/litescript/ls-globe/internal/render"
	"github.com/litescript/ls-globe/internal/state"
	"github.com/litescript/ls-globe/internal/version"
)

const (
	headerLines = 2
	footerLines = 1

	// detailWidth is the width of the side panel, shown only when the
	// terminal is wide enough to keep a usable globe next to it.
	detailWidth    = 36
	minGlobeWidth  = 40
	rotateStep     = 10.0 // degrees per arrow key
	animInterval   = 80 * time.Millisecond
	snapshotPeriod = 500 * time.Millisecond
)

// Msg types for Bubble Tea
type (
	// TickMsg triggers a state snapshot refresh.
	TickMsg time.Time

	// AnimTickMsg advances the loading animation.
	AnimTickMsg time.Time

	// FrameMsg drives one engine tick. Token is the loop generation it
	// was scheduled for; frames from a stopped loop are dropped.
	FrameMsg struct {
		Token uint64
		Time  time.Time
	}

	// DataUpdateMsg signals a new directory snapshot is available.
	DataUpdateMsg struct {
		Snapshot state.Snapshot
	}

	// ErrorMsg signals a fetch error.
	ErrorMsg struct {
		Error error
	}
)

// Options configures the model.
type Options struct {
	FrameInterval time.Duration
	Logger        *logging.Logger
}

// Model is the root Bubble Tea model.
type Model struct {
	state *state.Manager
	eng   *engine.Engine
	rend  *render.Renderer
	log   *logging.Logger

	width    int
	height   int
	ready    bool
	animTick int
	interval time.Duration

	token     uint64
	pointerIn bool

	snapshot   state.Snapshot
	generation uint64
	fetchErr   error

	cluster   *cluster.CityCluster
	statusMsg string
	showHelp  bool

	// last frame stats
	visible   int
	clustered bool
	distance  float64
	mode      string
}

// New creates the root model around an engine and the renderer it draws
// with.
func New(stateMgr *state.Manager, eng *engine.Engine, rend *render.Renderer, opts Options) Model {
	if opts.FrameInterval <= 0 {
		opts.FrameInterval = time.Second / 30
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	return Model{
		state:    stateMgr,
		eng:      eng,
		rend:     rend,
		log:      opts.Logger,
		interval: opts.FrameInterval,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(),
		animTickCmd(),
	)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if cmd := m.handleKey(msg); cmd != nil {
			cmds = append(cmds, cmd)
		}

	case tea.MouseMsg:
		m.handleMouse(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.resize()
		cmds = append(cmds, m.startLoop())

	case TickMsg:
		cmds = append(cmds, tickCmd())
		if m.state != nil {
			cmds = append(cmds, m.applySnapshot(m.state.Snapshot()))
		}

	case AnimTickMsg:
		if m.eng.Loading() {
			m.animTick++
			cmds = append(cmds, animTickCmd())
		}

	case FrameMsg:
		if cmd := m.frame(msg); cmd != nil {
			cmds = append(cmds, cmd)
		}

	case DataUpdateMsg:
		cmds = append(cmds, m.applySnapshot(msg.Snapshot))

	case ErrorMsg:
		m.fetchErr = msg.Error
	}

	return m, tea.Batch(cmds...)
}

// applySnapshot hands a new data generation to the engine. The first one
// ends the loading state and starts the loop.
func (m *Model) applySnapshot(snap state.Snapshot) tea.Cmd {
	m.snapshot = snap
	m.fetchErr = snap.LastError
	if snap.Generation == 0 || snap.Generation == m.generation {
		return nil
	}
	m.generation = snap.Generation
	kept, dropped := m.eng.SetData(snap.Points)
	m.log.Debug("generation %d: %d academics, %d dropped", snap.Generation, kept, dropped)
	return m.startLoop()
}

// startLoop starts the render loop if it is not already running and the
// engine can draw.
func (m *Model) startLoop() tea.Cmd {
	if !m.ready || m.eng.Running() {
		return nil
	}
	token, ok := m.eng.Start()
	if !ok {
		return nil
	}
	m.token = token
	return frameCmd(token, m.interval)
}

func (m *Model) frame(msg FrameMsg) tea.Cmd {
	if !m.eng.Accept(msg.Token) {
		return nil
	}
	f, ok := m.eng.Tick(msg.Time)
	if !ok {
		if err := m.eng.Err(); err != nil {
			m.statusMsg = "render stopped"
		}
		return nil
	}

	m.visible = f.Visible()
	m.clustered = f.Clustered
	m.distance = f.Camera.Distance
	m.mode = f.Mode.String()
	m.recordEvents(f.Events)
	return frameCmd(msg.Token, m.interval)
}

// recordEvents mirrors selections into shared state.
func (m *Model) recordEvents(events []interact.Event) {
	for _, ev := range events {
		switch ev.Kind {
		case interact.PointSelect:
			p := ev.Point
			m.cluster = nil
			m.snapshot.Selected = &p
			if m.state != nil {
				m.state.Select(p)
			}
			m.statusMsg = ""
		case interact.Navigate:
			if m.state != nil {
				m.state.Navigate(ev.Point)
			}
			m.statusMsg = fmt.Sprintf("profile: %s (%s)", ev.Point.Name, ev.Point.ID)
		case interact.ClusterSelect:
			cl := *ev.Cluster
			m.cluster = &cl
			if m.state != nil {
				m.state.ClearSelection()
				m.state.SelectCluster(cl.Label(), cl.Count)
			}
			m.snapshot.Selected = nil
		}
	}
	if float64(m.globeWidth()) != m.eng.Viewport().Width {
		m.resize()
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "q", "ctrl+c":
		m.eng.Stop()
		return tea.Quit
	case "?":
		m.showHelp = !m.showHelp
		return nil
	}
	// nothing to steer until the first points arrive
	if m.eng.Loading() {
		return nil
	}

	in := m.eng.Input()
	switch msg.String() {
	case "+", "=":
		in.Wheel(1)
	case "-", "_":
		in.Wheel(-1)
	case "left", "h":
		in.Rotate(-rotateStep, 0)
	case "right", "l":
		in.Rotate(rotateStep, 0)
	case "up", "k":
		in.Rotate(0, rotateStep)
	case "down", "j":
		in.Rotate(0, -rotateStep)
	case "tab", "f":
		m.eng.SetFlat(!m.eng.Flat())
	case "esc":
		m.cluster = nil
		m.snapshot.Selected = nil
		if m.state != nil {
			m.state.ClearSelection()
		}
		m.resize()
	}
	return nil
}

// handleMouse translates terminal mouse events into engine input. Cells
// are addressed by their centers. Input on the loading screen is ignored.
func (m *Model) handleMouse(msg tea.MouseMsg) {
	if m.eng.Loading() {
		m.pointerIn = false
		return
	}
	in := m.eng.Input()
	pos := geo.Vec2{X: float64(msg.X) + 0.5, Y: float64(msg.Y-headerLines) + 0.5}
	inside := msg.X >= 0 && msg.X < m.globeWidth() && msg.Y >= headerLines && msg.Y < headerLines+m.globeHeight()

	if !inside {
		if m.pointerIn {
			in.PointerLeave()
			m.pointerIn = false
		}
		return
	}
	m.pointerIn = true
	now := time.Now()

	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		in.Wheel(1)
	case msg.Button == tea.MouseButtonWheelDown:
		in.Wheel(-1)
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		in.PointerDown(pos, now)
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonRight:
		in.Secondary(pos)
	case msg.Action == tea.MouseActionRelease:
		in.PointerUp(pos, now)
	case msg.Action == tea.MouseActionMotion:
		in.PointerMove(pos)
	}
}

func (m Model) detailOpen() bool {
	return (m.snapshot.Selected != nil || m.cluster != nil) && m.width >= detailWidth+minGlobeWidth
}

func (m Model) globeWidth() int {
	if m.detailOpen() {
		return m.width - detailWidth
	}
	return m.width
}

func (m Model) globeHeight() int {
	return max(1, m.height-headerLines-footerLines)
}

func (m *Model) resize() {
	if !m.ready {
		return
	}
	m.eng.Resize(float64(m.globeWidth()), float64(m.globeHeight()))
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var content string
	switch {
	case m.eng.Err() != nil:
		content = m.renderFallback()
	case m.eng.Loading():
		content = m.renderLoading()
	default:
		content = m.rend.View()
		if m.detailOpen() {
			content = lipgloss.JoinHorizontal(lipgloss.Top, content, m.renderDetail())
		}
	}
	if m.showHelp {
		content = m.renderHelp()
	}

	return m.renderHeader() + "\n" + content + "\n" + m.renderFooter()
}

func (m Model) renderHeader() string {
	muted := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	title := renderTitle("LS-GLOBE") + muted.Render(fmt.Sprintf("  academic directory · v%s", version.Version))
	return title + "\n" + m.renderStatusLine()
}

// renderTitle blends the title from blue to pink.
func renderTitle(text string) string {
	from, _ := colorful.Hex("#3B82F6")
	to, _ := colorful.Hex("#EC4899")
	runes := []rune(text)
	var b strings.Builder
	b.WriteString(" ")
	for i, r := range runes {
		t := 0.0
		if len(runes) > 1 {
			t = float64(i) / float64(len(runes)-1)
		}
		c := from.BlendLuv(to, t).Clamped()
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(c.Hex())).Bold(true).Render(string(r)))
	}
	return b.String()
}

func (m Model) renderStatusLine() string {
	dim := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	accent := lipgloss.NewStyle().Foreground(lipgloss.Color("#9D4EDD")).Bold(true)

	n := m.eng.Registry().Len()
	parts := []string{accent.Render(fmt.Sprintf(" %d academics loaded", n))}
	if d := m.eng.Registry().Dropped(); d > 0 {
		parts = append(parts, dim.Render(fmt.Sprintf("%d skipped", d)))
	}
	if !m.eng.Loading() && m.eng.Err() == nil {
		view := "globe"
		if m.eng.Flat() {
			view = "flat"
		}
		markers := "points"
		if m.clustered {
			markers = "cities"
		}
		parts = append(parts, dim.Render(fmt.Sprintf("%s · %s · %d visible · alt %.1f · %s",
			view, markers, m.visible, m.distance-1, m.mode)))
	}
	return strings.Join(parts, dim.Render("  |  "))
}

func (m Model) renderFooter() string {
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#E84A27"))
	accentStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#7B2CBF"))

	spinnerFrames := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	spinner := spinnerFrames[m.animTick%len(spinnerFrames)]

	var status string
	switch {
	case m.fetchErr != nil:
		status = errorStyle.Render("ERROR: " + m.fetchErr.Error())
	case !m.snapshot.NextRefresh.IsZero():
		countdown := time.Until(m.snapshot.NextRefresh).Round(time.Second)
		if countdown < 0 {
			countdown = 0
		}
		status = dimStyle.Render(fmt.Sprintf("refresh in %ds", int(countdown.Seconds())))
	case m.eng.Loading():
		status = accentStyle.Render(spinner) + dimStyle.Render(" loading")
	default:
		status = dimStyle.Render(m.snapshot.Source)
	}

	help := dimStyle.Render("drag: rotate | wheel/+/-: zoom | click: select | tab: flat | ?: help | q: quit")
	footer := " " + status + "  " + dimStyle.Render("|") + "  " + help
	if m.statusMsg != "" {
		footer += "  " + dimStyle.Render(m.statusMsg)
	}
	return footer
}

func (m Model) renderLoading() string {
	accent := lipgloss.NewStyle().Foreground(lipgloss.Color("#7B2CBF"))
	spinnerFrames := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	line := accent.Render(spinnerFrames[m.animTick%len(spinnerFrames)]) + " " + m.renderShimmerText("Loading academics...")
	return lipgloss.Place(m.width, m.globeHeight(), lipgloss.Center, lipgloss.Center, line)
}

// renderFallback replaces the globe once the render loop has failed. It
// lists the directory by city instead.
func (m Model) renderFallback() string {
	errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#E84A27"))
	dim := lipgloss.NewStyle().Foreground(lipgloss.Color("250"))

	var b strings.Builder
	b.WriteString(errStyle.Render(" The globe cannot be drawn: " + m.eng.Err().Error()))
	b.WriteString("\n\n")
	lines := cluster.Summary(cluster.Cluster(m.eng.Registry().Points()))
	limit := max(0, m.globeHeight()-3)
	for i, l := range lines {
		if i >= limit {
			break
		}
		b.WriteString(dim.Render(" " + l))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) renderHelp() string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("60")).
		Padding(0, 2)
	lines := []string{
		"drag            rotate the globe",
		"wheel, + / -    zoom",
		"arrows, hjkl    rotate by 10°",
		"click           fly to academic or city",
		"right click     open profile",
		"long press      open profile",
		"tab, f          toggle flat map",
		"esc             clear selection",
		"?               close help",
		"q               quit",
	}
	return lipgloss.Place(m.width, m.globeHeight(), lipgloss.Center, lipgloss.Center, box.Render(strings.Join(lines, "\n")))
}

// renderShimmerText renders text with a subtle moving shine effect.
func (m Model) renderShimmerText(text string) string {
	runes := []rune(text)
	textLen := len(runes)
	if textLen == 0 {
		return ""
	}

	pos := m.animTick % (textLen + 8)

	var result strings.Builder
	for i, r := range runes {
		dist := i - pos + 4
		if dist < 0 {
			dist = -dist
		}

		var r8, g8, b8 int
		switch {
		case dist <= 1:
			r8, g8, b8 = 180, 160, 220
		case dist <= 3:
			r8, g8, b8 = 140, 120, 180
		case dist <= 5:
			r8, g8, b8 = 110, 90, 150
		default:
			r8, g8, b8 = 80, 70, 120
		}

		hexColor := fmt.Sprintf("#%02X%02X%02X", r8, g8, b8)
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(hexColor))
		result.WriteString(style.Render(string(r)))
	}
	return result.String()
}

func tickCmd() tea.Cmd {
	return tea.Tick(snapshotPeriod, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func animTickCmd() tea.Cmd {
	return tea.Tick(animInterval, func(t time.Time) tea.Msg {
		return AnimTickMsg(t)
	})
}

func frameCmd(token uint64, interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return FrameMsg{Token: token, Time: t}
	})
}

// SendDataUpdate creates a command that sends a data update message.
func SendDataUpdate(snapshot state.Snapshot) tea.Cmd {
	return func() tea.Msg {
		return DataUpdateMsg{Snapshot: snapshot}
	}
}

// SendError creates a command that sends an error message.
func SendError(err error) tea.Cmd {
	return func() tea.Msg {
		return ErrorMsg{Error: err}
	}
}
