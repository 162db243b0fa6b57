// Package tui provides a Bubble Tea terminal user interface for chmirad.
package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/handiism/chmirad/internal/cadence"
	"github.com/handiism/chmirad/internal/config"
	"github.com/handiism/chmirad/internal/download"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#4ECDC4")).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#95E1A3"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFE66D"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8DADC"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4ECDC4")).
			Padding(1, 2)

	productStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#F8B500"))
)

// State represents the current UI state.
type State int

const (
	StateInput State = iota
	StateInitializing
	StateDownloading
	StateComplete
	StateError
)

const maxLogs = 10

// Input fields, in tab order.
const (
	fieldHours = iota
	fieldStep
	fieldCount
)

// Model is the Bubble Tea model for the TUI.
type Model struct {
	state    State
	inputs   []textinput.Model
	focus    int
	spinner  spinner.Model
	progress progress.Model
	settings *config.Settings
	logs     *eventLog
	err      error

	products []string
	selected int

	// Download context
	ctx    context.Context
	cancel context.CancelFunc

	// Download manager reference
	manager *download.Manager
	session *download.Session
	request rangeRequest

	// run identifies the current download; messages from an abandoned run
	// carry an older id and are dropped.
	run int

	// Download progress
	filesTotal    int32
	filesDone     int32
	receivedBytes int64
	stats         download.Stats
	failures      []download.Outcome

	// Options
	verbose bool

	width  int
	height int
}

// rangeRequest is a validated input form.
type rangeRequest struct {
	Product     string
	Hours       float64
	StepMinutes int
}

// NewModel creates a new TUI model. products lists the selectable product
// ids; settings provides the defaults.
func NewModel(settings *config.Settings, products []string) Model {
	if settings == nil {
		settings = config.DefaultSettings()
	}

	hours := textinput.New()
	hours.Placeholder = "1"
	hours.SetValue("1")
	hours.CharLimit = 6
	hours.Width = 10
	hours.Focus()

	step := textinput.New()
	step.Placeholder = strconv.Itoa(settings.StepMinutes)
	step.SetValue(strconv.Itoa(settings.StepMinutes))
	step.CharLimit = 4
	step.Width = 10

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#4ECDC4"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 50

	selected := 0
	for i, id := range products {
		if id == settings.Product {
			selected = i
		}
	}

	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		state:    StateInput,
		inputs:   []textinput.Model{hours, step},
		spinner:  sp,
		progress: prog,
		settings: settings,
		logs:     newEventLog(maxLogs),
		products: products,
		selected: selected,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// Message types
type (
	// InitDoneMsg is sent when the manager and session are ready.
	InitDoneMsg struct {
		Run     int
		Manager *download.Manager
		Session *download.Session
		Err     error
	}

	// DownloadDoneMsg is sent when the range completes.
	DownloadDoneMsg struct {
		Run      int
		Outcomes []download.Outcome
		Err      error
	}

	// TickMsg is for periodic progress updates.
	TickMsg struct{}
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = min(max(msg.Width-20, 20), 80)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.cancel()
			return m, tea.Quit

		case "esc":
			if m.state == StateInput {
				return m, tea.Quit
			}
			if m.state == StateDownloading || m.state == StateInitializing {
				m.cancel()
				m.state = StateError
				m.err = fmt.Errorf("cancelled by user")
			}

		case "enter":
			if m.state == StateInput {
				req, err := m.readRequest()
				if err != nil {
					m.err = err
					return m, nil
				}
				m.err = nil
				m.request = req
				m.run++
				m.state = StateInitializing
				return m, tea.Batch(m.initializeDownload(), m.spinner.Tick)
			}

		case "left":
			if m.state == StateInput && len(m.products) > 0 {
				m.selected = (m.selected - 1 + len(m.products)) % len(m.products)
				return m, nil
			}

		case "right":
			if m.state == StateInput && len(m.products) > 0 {
				m.selected = (m.selected + 1) % len(m.products)
				return m, nil
			}

		case "tab", "shift+tab", "up", "down":
			if m.state == StateInput {
				m.inputs[m.focus].Blur()
				if msg.String() == "tab" || msg.String() == "down" {
					m.focus = (m.focus + 1) % fieldCount
				} else {
					m.focus = (m.focus - 1 + fieldCount) % fieldCount
				}
				cmds = append(cmds, m.inputs[m.focus].Focus())
				return m, tea.Batch(cmds...)
			}

		case "v":
			if m.state == StateInput {
				m.verbose = !m.verbose
				return m, nil
			}

		case "q":
			if m.state == StateComplete || m.state == StateError {
				return m, tea.Quit
			}

		case "r":
			if m.state == StateComplete || m.state == StateError {
				// Reset for a new range; the product choice is kept.
				m.state = StateInput
				m.logs = newEventLog(maxLogs)
				m.err = nil
				m.filesDone = 0
				m.filesTotal = 0
				m.receivedBytes = 0
				m.stats = download.Stats{}
				m.failures = nil
				m.manager = nil
				m.session = nil
				m.run++
				m.ctx, m.cancel = context.WithCancel(context.Background())
				return m, nil
			}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case InitDoneMsg:
		if msg.Run != m.run {
			return m, nil
		}
		if msg.Err != nil {
			m.state = StateError
			m.err = msg.Err
		} else if m.state == StateInitializing {
			m.manager = msg.Manager
			m.session = msg.Session
			m.state = StateDownloading
			// Start the actual download and tick for progress updates
			cmds = append(cmds, m.startDownload(), m.tickProgress())
		}

	case DownloadDoneMsg:
		if msg.Run != m.run || (m.state != StateDownloading && m.state != StateError) {
			return m, nil
		}
		m.stats = download.Summarize(msg.Outcomes)
		m.failures = download.Failures(msg.Outcomes)
		if m.manager != nil {
			m.receivedBytes, m.filesDone, m.filesTotal = m.manager.GetProgress()
		}
		switch {
		case m.ctx.Err() != nil:
			m.state = StateError
			m.err = fmt.Errorf("cancelled by user")
		case msg.Err != nil:
			m.state = StateError
			m.err = msg.Err
		default:
			m.state = StateComplete
		}

	case TickMsg:
		// Update progress from manager
		if m.manager != nil && m.state == StateDownloading {
			m.receivedBytes, m.filesDone, m.filesTotal = m.manager.GetProgress()

			var percent float64
			if m.filesTotal > 0 {
				percent = float64(m.filesDone) / float64(m.filesTotal)
			}
			progressCmd := m.progress.SetPercent(percent)
			cmds = append(cmds, progressCmd, m.tickProgress())
		}

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		cmds = append(cmds, cmd)
	}

	// Update the focused text input
	if m.state == StateInput {
		var cmd tea.Cmd
		m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// readRequest validates the input form.
func (m Model) readRequest() (rangeRequest, error) {
	if len(m.products) == 0 {
		return rangeRequest{}, fmt.Errorf("no products available")
	}

	hours, err := strconv.ParseFloat(strings.TrimSpace(m.inputs[fieldHours].Value()), 64)
	if err != nil || hours <= 0 {
		return rangeRequest{}, fmt.Errorf("hours back must be a positive number")
	}

	step, err := strconv.Atoi(strings.TrimSpace(m.inputs[fieldStep].Value()))
	if err != nil || step <= 0 {
		return rangeRequest{}, fmt.Errorf("step must be a positive number of minutes")
	}

	return rangeRequest{Product: m.products[m.selected], Hours: hours, StepMinutes: step}, nil
}

// tickProgress returns a command to tick progress updates.
func (m Model) tickProgress() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	// Header
	b.WriteString(titleStyle.Render("CHMI Radar Downloader"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Cache radar composites from the CHMI open data archive"))
	b.WriteString("\n\n")

	switch m.state {
	case StateInput:
		b.WriteString(m.viewInput())
	case StateInitializing:
		b.WriteString(m.viewInitializing())
	case StateDownloading:
		b.WriteString(m.viewDownloading())
	case StateComplete:
		b.WriteString(m.viewComplete())
	case StateError:
		b.WriteString(m.viewError())
	}

	// Footer
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.getHelpText()))

	return b.String()
}

func (m Model) viewInput() string {
	var b strings.Builder

	b.WriteString(subtitleStyle.Render("Product:"))
	b.WriteString("  ")
	if len(m.products) > 0 {
		b.WriteString(productStyle.Render(fmt.Sprintf("< %s >", m.products[m.selected])))
	}
	b.WriteString("\n\n")

	b.WriteString(subtitleStyle.Render("Hours back:"))
	b.WriteString(" ")
	b.WriteString(m.inputs[fieldHours].View())
	b.WriteString("\n")
	b.WriteString(subtitleStyle.Render("Step (min):"))
	b.WriteString(" ")
	b.WriteString(m.inputs[fieldStep].View())
	b.WriteString("\n\n")

	verboseCheck := "[ ]"
	if m.verbose {
		verboseCheck = "[x]"
	}
	b.WriteString(infoStyle.Render("Options:"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  %s Verbose output (v)\n", verboseCheck))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("Cache directory: %s", m.settings.CacheDirectory)))
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(m.err.Error()))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) viewInitializing() string {
	var b strings.Builder

	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(subtitleStyle.Render("Preparing cache directory..."))
	b.WriteString("\n")

	return b.String()
}

func (m Model) viewDownloading() string {
	var b strings.Builder

	b.WriteString(productStyle.Render(fmt.Sprintf("%s, last %gh every %d min",
		m.request.Product, m.request.Hours, m.request.StepMinutes)))
	b.WriteString("\n\n")

	// Progress bar
	var percent float64
	if m.filesTotal > 0 {
		percent = float64(m.filesDone) / float64(m.filesTotal)
	}
	b.WriteString(m.progress.ViewAs(percent))
	b.WriteString("\n")

	b.WriteString(infoStyle.Render(fmt.Sprintf(
		"Files: %d/%d | Downloaded: %.2f MB",
		m.filesDone,
		m.filesTotal,
		float64(m.receivedBytes)/1024/1024,
	)))
	b.WriteString("\n\n")

	// Logs
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewComplete() string {
	var b strings.Builder

	box := boxStyle.Render(fmt.Sprintf(
		"Download Complete\n\n"+
			"Product: %s\n"+
			"Fetched: %d\n"+
			"Skipped: %d\n"+
			"Failed: %d\n"+
			"Size: %.2f MB",
		m.request.Product,
		m.stats.Fetched,
		m.stats.Skipped,
		m.stats.Failed,
		float64(m.stats.Bytes)/1024/1024,
	))
	b.WriteString(box)
	b.WriteString("\n")

	for i, o := range m.failures {
		if i == 5 {
			b.WriteString(dimStyle.Render(fmt.Sprintf("  ... and %d more", len(m.failures)-5)))
			b.WriteString("\n")
			break
		}
		b.WriteString(errorStyle.Render(fmt.Sprintf("  x %s: %v", o.Time.Format("2006-01-02 15:04"), o.Err)))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) viewError() string {
	var b strings.Builder

	b.WriteString(errorStyle.Render("Error occurred:"))
	b.WriteString("\n\n")
	if m.err != nil {
		b.WriteString(fmt.Sprintf("  %s", m.err.Error()))
	}

	return b.String()
}

func (m Model) renderLogs() string {
	var b strings.Builder

	for _, log := range m.logs.Snapshot() {
		var style lipgloss.Style
		prefix := "-"
		switch log.Level {
		case download.LevelError:
			style = errorStyle
			prefix = "x"
		case download.LevelWarning:
			style = warningStyle
			prefix = "!"
		case download.LevelSuccess:
			style = successStyle
			prefix = "+"
		case download.LevelInfo:
			style = infoStyle
			prefix = ">"
		default:
			style = dimStyle
		}
		b.WriteString(style.Render(prefix + " " + log.Message))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) getHelpText() string {
	switch m.state {
	case StateInput:
		return "enter: start | left/right: product | tab: next field | v: verbose | esc: quit"
	case StateInitializing, StateDownloading:
		return "esc: cancel"
	case StateComplete, StateError:
		return "r: new download | q: quit"
	}
	return ""
}

// initializeDownload creates the manager and the session.
func (m Model) initializeDownload() tea.Cmd {
	settings := *m.settings
	settings.Product = m.request.Product
	settings.StepMinutes = m.request.StepMinutes
	logs := m.logs
	run := m.run
	verbose := m.verbose

	return func() tea.Msg {
		// The TUI polls the log buffer on every tick.
		manager, err := download.NewManager(&settings, func(event download.ProgressEvent) {
			if event.Level == download.LevelVerbose && !verbose {
				return
			}
			logs.Add(event)
		})
		if err != nil {
			return InitDoneMsg{Run: run, Err: err}
		}

		session, err := manager.NewSession(settings.Product, settings.CacheDirectory)
		if err != nil {
			return InitDoneMsg{Run: run, Err: err}
		}

		return InitDoneMsg{Run: run, Manager: manager, Session: session}
	}
}

// startDownload runs the range in background.
func (m Model) startDownload() tea.Cmd {
	ctx := m.ctx
	manager := m.manager
	session := m.session
	req := m.request
	run := m.run

	return func() tea.Msg {
		if manager == nil || session == nil {
			return DownloadDoneMsg{Run: run, Err: fmt.Errorf("no manager")}
		}

		window := time.Duration(req.Hours * float64(time.Hour))
		start, end := cadence.Window(time.Now(), window)
		outcomes, err := manager.DownloadRange(ctx, session, start, end, req.StepMinutes)
		return DownloadDoneMsg{Run: run, Outcomes: outcomes, Err: err}
	}
}

// Run starts the TUI application.
func Run(settings *config.Settings, products []string) error {
	p := tea.NewProgram(NewModel(settings, products), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
