// Package tui provides a terminal user interface for digital-composer
package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Kingdread/digital-composer/pkg/composer"
	"github.com/Kingdread/digital-composer/pkg/midifile"
	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

// Sheet-music colors: ink on paper with a brass accent
var (
	brass     = lipgloss.Color("#D4A017")
	paper     = lipgloss.Color("#F5F0E1")
	inkGray   = lipgloss.Color("#9A9A9A")
	darkStaff = lipgloss.Color("#2B2B2B")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(brass).
			Background(darkStaff).
			Padding(0, 2).
			MarginBottom(1)

	menuStyle = lipgloss.NewStyle().
			Foreground(inkGray).
			PaddingLeft(2)

	selectedStyle = lipgloss.NewStyle().
			Foreground(brass).
			Bold(true).
			PaddingLeft(2)

	descriptionStyle = lipgloss.NewStyle().
				Foreground(paper).
				PaddingLeft(4)

	statusStyle = lipgloss.NewStyle().
			Foreground(paper).
			PaddingTop(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(brass).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")).
			MarginTop(1)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(brass).
			Padding(1, 2)
)

// State represents the current TUI state
type State int

const (
	StateMenu State = iota
	StateFilePicker
	StateWorking
	StateResult
)

// Action is what a menu item does when selected
type Action int

const (
	ActionCompose Action = iota
	ActionInspect
	ActionTrack
	ActionDegree
	ActionLength
	ActionStall
	ActionExit
)

// MenuItem represents a menu option
type MenuItem struct {
	Title       string
	Description string
	Action      Action
}

var menuItems = []MenuItem{
	{Title: "Compose", Description: "Pick a MIDI file and compose a new melody from it", Action: ActionCompose},
	{Title: "Inspect tracks", Description: "Pick a MIDI file and list its tracks", Action: ActionInspect},
	{Title: "Track", Description: "Track to learn from (←/→ to change)", Action: ActionTrack},
	{Title: "Degree", Description: "Number of preceding notes the next one depends on (←/→)", Action: ActionDegree},
	{Title: "Length", Description: "Notes to compose (←/→ by 10)", Action: ActionLength},
	{Title: "On stall", Description: "What to do when a phrase has no continuation (←/→)", Action: ActionStall},
	{Title: "Exit", Description: "Exit the application", Action: ActionExit},
}

const (
	maxDegree = 8
	maxLength = 10000
)

// Model represents the TUI model
type Model struct {
	state        State
	menuIndex    int
	filePicker   filepicker.Model
	spinner      spinner.Model
	opts         composer.Options
	action       Action
	selectedFile string
	outputFile   string
	tracks       []midifile.TrackSummary
	err          error
	logger       *log.Logger
	width        int
	height       int
}

// workDoneMsg signals that composing or inspecting finished
type workDoneMsg struct {
	outputFile string
	tracks     []midifile.TrackSummary
	err        error
}

// Init initializes the TUI model
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick)
}

// New creates a new TUI model
func New(opts composer.Options, logger *log.Logger) Model {
	// Initialize file picker
	fp := filepicker.New()
	fp.AllowedTypes = []string{".mid", ".midi"}
	fp.CurrentDirectory, _ = os.Getwd()

	// Initialize spinner
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(brass)

	if logger == nil {
		logger = log.Default()
	}

	return Model{
		state:      StateMenu,
		menuIndex:  0,
		filePicker: fp,
		spinner:    s,
		opts:       opts,
		logger:     logger,
	}
}

// Options returns the composition options as currently set
func (m Model) Options() composer.Options {
	return m.opts
}

// Update handles TUI updates
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Handle file picker state first - it needs to receive all messages
	if m.state == StateFilePicker {
		// Check for escape/quit keys first
		if keyMsg, ok := msg.(tea.KeyMsg); ok {
			switch keyMsg.String() {
			case "esc":
				m.state = StateMenu
				return m, nil
			case "q", "ctrl+c":
				return m, tea.Quit
			}
		}

		// Pass all other messages to the file picker
		var cmd tea.Cmd
		m.filePicker, cmd = m.filePicker.Update(msg)

		// Check if file was selected
		if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
			m.selectedFile = path
			m.state = StateWorking
			return m, tea.Batch(m.spinner.Tick, m.performWork())
		}

		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.filePicker.SetHeight(msg.Height - 10)
		return m, nil

	case tea.KeyMsg:
		switch m.state {
		case StateMenu:
			return m.updateMenu(msg)
		case StateResult:
			return m.updateResult(msg)
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case workDoneMsg:
		m.state = StateResult
		m.outputFile = msg.outputFile
		m.tracks = msg.tracks
		m.err = msg.err
		return m, nil
	}

	return m, nil
}

func (m Model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	item := menuItems[m.menuIndex]
	switch msg.String() {
	case "up", "k":
		if m.menuIndex > 0 {
			m.menuIndex--
		}
	case "down", "j":
		if m.menuIndex < len(menuItems)-1 {
			m.menuIndex++
		}
	case "left", "h":
		m.adjust(item.Action, -1)
	case "right", "l":
		m.adjust(item.Action, 1)
	case "enter":
		switch item.Action {
		case ActionExit:
			return m, tea.Quit
		case ActionCompose, ActionInspect:
			m.action = item.Action
			m.state = StateFilePicker
			return m, m.filePicker.Init()
		default:
			m.adjust(item.Action, 1)
		}
	case "q", "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

// adjust changes the setting behind action by one step in direction dir.
func (m *Model) adjust(action Action, dir int) {
	switch action {
	case ActionTrack:
		if dir > 0 && m.opts.Track < 0xFFFF {
			m.opts.Track++
		} else if dir < 0 && m.opts.Track > 0 {
			m.opts.Track--
		}
	case ActionDegree:
		m.opts.Degree = clamp(m.opts.Degree+dir, 1, maxDegree)
	case ActionLength:
		m.opts.Length = clamp(m.opts.Length+10*dir, 10, maxLength)
	case ActionStall:
		if m.opts.OnStall == composer.StallReseed {
			m.opts.OnStall = composer.StallFail
		} else {
			m.opts.OnStall = composer.StallReseed
		}
	}
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

func (m Model) updateResult(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc":
		m.state = StateMenu
		m.err = nil
		m.selectedFile = ""
		m.outputFile = ""
		m.tracks = nil
		return m, nil
	case "q", "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) performWork() tea.Cmd {
	input := m.selectedFile
	opts := m.opts
	action := m.action
	logger := m.logger
	return func() tea.Msg {
		if action == ActionInspect {
			data, err := os.ReadFile(input)
			if err != nil {
				return workDoneMsg{err: err}
			}
			tracks, err := midifile.Inspect(data)
			return workDoneMsg{tracks: tracks, err: err}
		}
		output := outputPath(input)
		if err := composer.New(opts, logger).ComposeFile(input, output); err != nil {
			return workDoneMsg{err: err}
		}
		return workDoneMsg{outputFile: output}
	}
}

// outputPath places the composition next to its input
func outputPath(input string) string {
	base := strings.TrimSuffix(input, filepath.Ext(input))
	return base + "-composition.mid"
}

// View renders the TUI
func (m Model) View() string {
	var s strings.Builder

	// Header
	s.WriteString(titleStyle.Render(" ♪ DIGITAL COMPOSER ♪ "))
	s.WriteString("\n")

	switch m.state {
	case StateMenu:
		s.WriteString(m.viewMenu())
	case StateFilePicker:
		s.WriteString(m.viewFilePicker())
	case StateWorking:
		s.WriteString(m.viewWorking())
	case StateResult:
		s.WriteString(m.viewResult())
	}

	// Footer help
	s.WriteString("\n")
	s.WriteString(helpStyle.Render("↑/↓: navigate • ←/→: change • enter: select • q: quit"))

	return s.String()
}

func (m Model) settingValue(action Action) string {
	switch action {
	case ActionTrack:
		return fmt.Sprint(m.opts.Track)
	case ActionDegree:
		return fmt.Sprint(m.opts.Degree)
	case ActionLength:
		return fmt.Sprint(m.opts.Length)
	case ActionStall:
		return string(m.opts.OnStall)
	}
	return ""
}

func (m Model) viewMenu() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(" MENU "))
	s.WriteString("\n\n")

	for i, item := range menuItems {
		title := item.Title
		if v := m.settingValue(item.Action); v != "" {
			title = fmt.Sprintf("%s: %s", item.Title, v)
		}
		if i == m.menuIndex {
			s.WriteString(selectedStyle.Render(fmt.Sprintf("▸ %s", title)))
			s.WriteString("\n")
			s.WriteString(descriptionStyle.Render(item.Description))
		} else {
			s.WriteString(menuStyle.Render(fmt.Sprintf("  %s", title)))
		}
		s.WriteString("\n")
	}

	return boxStyle.Render(s.String())
}

func (m Model) viewFilePicker() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(" SELECT MIDI FILE "))
	s.WriteString("\n\n")
	s.WriteString(m.filePicker.View())
	s.WriteString("\n")
	s.WriteString(helpStyle.Render("esc: back to menu"))

	return s.String()
}

func (m Model) viewWorking() string {
	var s strings.Builder

	if m.action == ActionInspect {
		s.WriteString(titleStyle.Render(" INSPECTING "))
		s.WriteString("\n\n")
		s.WriteString(fmt.Sprintf("%s Reading %s...\n", m.spinner.View(), filepath.Base(m.selectedFile)))
		return boxStyle.Render(s.String())
	}

	s.WriteString(titleStyle.Render(" COMPOSING "))
	s.WriteString("\n\n")
	s.WriteString(fmt.Sprintf("%s Learning from %s...\n", m.spinner.View(), filepath.Base(m.selectedFile)))
	s.WriteString(statusStyle.Render(fmt.Sprintf("  track %d • degree %d • %d notes", m.opts.Track, m.opts.Degree, m.opts.Length)))

	return boxStyle.Render(s.String())
}

func (m Model) viewResult() string {
	var s strings.Builder

	switch {
	case m.err != nil:
		s.WriteString(titleStyle.Render(" ERROR "))
		s.WriteString("\n\n")
		s.WriteString(errorStyle.Render(fmt.Sprintf("✗ Failed: %s", m.err.Error())))
	case m.action == ActionInspect:
		s.WriteString(titleStyle.Render(" TRACKS "))
		s.WriteString("\n\n")
		s.WriteString(fmt.Sprintf("File: %s\n\n", filepath.Base(m.selectedFile)))
		for _, t := range m.tracks {
			s.WriteString(t.String())
			s.WriteString("\n")
		}
	default:
		s.WriteString(titleStyle.Render(" SUCCESS "))
		s.WriteString("\n\n")
		s.WriteString(successStyle.Render("✓ Composition complete!"))
		s.WriteString("\n\n")
		s.WriteString(fmt.Sprintf("Input:  %s\n", filepath.Base(m.selectedFile)))
		s.WriteString(fmt.Sprintf("Output: %s", filepath.Base(m.outputFile)))
	}

	s.WriteString("\n\n")
	s.WriteString(helpStyle.Render("Press enter to continue"))

	return boxStyle.Render(s.String())
}

// Run starts the TUI application
func Run(opts composer.Options, logger *log.Logger) error {
	p := tea.NewProgram(New(opts, logger), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
