// Package tui provides a terminal score editor for measureedit
package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Southclaws/fault/fmsg"
	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/james-see/measureedit/pkg/config"
	"github.com/james-see/measureedit/pkg/converter"
	"github.com/james-see/measureedit/pkg/notation"
	"github.com/james-see/measureedit/pkg/render"
	"github.com/james-see/measureedit/pkg/score"
)

// Acid-inspired color scheme
var (
	acidGreen  = lipgloss.Color("#39FF14")
	acidYellow = lipgloss.Color("#FFFF00")
	silverGray = lipgloss.Color("#C0C0C0")
	darkGray   = lipgloss.Color("#333333")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(acidGreen).
			Background(darkGray).
			Padding(0, 2).
			MarginBottom(1)

	menuStyle = lipgloss.NewStyle().
			Foreground(silverGray).
			PaddingLeft(2)

	selectedStyle = lipgloss.NewStyle().
			Foreground(acidGreen).
			Bold(true).
			PaddingLeft(2)

	statusStyle = lipgloss.NewStyle().
			Foreground(acidYellow).
			PaddingTop(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(acidGreen).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")).
			MarginTop(1)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(acidGreen).
			Padding(1, 2)
)

// State represents the current TUI state
type State int

const (
	StateEdit State = iota
	StateExportMenu
	StateFilePicker
	StateExporting
	StateResult
)

// ExportItem is an entry of the export menu
type ExportItem struct {
	Title       string
	Description string
	Format      converter.Format
	Ext         string
}

var exportItems = []ExportItem{
	{Title: "MIDI", Description: "Standard MIDI file, one track", Format: converter.FormatMIDI, Ext: ".mid"},
	{Title: "PDF", Description: "Engraved staves on A4 pages", Format: converter.FormatPDF, Ext: ".pdf"},
	{Title: "Text", Description: "The staves as shown here", Format: converter.FormatText, Ext: ".txt"},
	{Title: "Back", Description: "Return to the editor"},
}

// Duration bases selectable with the number keys
var durationBases = []string{"w", "h", "q", "8", "16", "32", "64"}

const (
	pitchLetters = "CDEFGAB"
	maxStep      = 9*7 + 6 // B/9
)

// sheet owns the text canvases the score's measures draw on
type sheet struct {
	canvases []*render.TextCanvas
}

func (sh *sheet) surface(int) notation.Renderer {
	c := render.NewTextCanvas(true)
	sh.canvases = append(sh.canvases, c)
	return c
}

// Model represents the TUI model
type Model struct {
	state State
	score *score.Score
	conv  *converter.Converter
	sheet *sheet

	// cursor
	measure int
	event   int

	// pending note
	step       int
	accidental string
	base       int
	dotted     bool

	status string
	err    error

	menuIndex  int
	export     ExportItem
	filePicker filepicker.Model
	spinner    spinner.Model
	outputFile string

	help   help.Model
	width  int
	height int
}

// exportDoneMsg signals export completion
type exportDoneMsg struct {
	outputFile string
	err        error
}

// Init initializes the TUI model
func (m Model) Init() tea.Cmd {
	return nil
}

// New creates a TUI model over a fresh score built from cfg
func New(cfg config.Config) (Model, error) {
	clef, err := notation.ParseClef(cfg.Clef)
	if err != nil {
		return Model{}, err
	}

	sh := &sheet{}
	s, err := score.New(cfg.X, cfg.Y, cfg.MeasureWidth, cfg.TimeSignature,
		score.WithRenderers(sh.surface),
		score.WithClef(clef),
		score.WithPadding(cfg.NotePadding, cfg.MeasurePadding),
	)
	if err != nil {
		return Model{}, err
	}

	// Initialize file picker for the export directory
	fp := filepicker.New()
	fp.DirAllowed = true
	fp.FileAllowed = false
	fp.CurrentDirectory, _ = os.Getwd()

	// Initialize spinner
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(acidGreen)

	m := Model{
		state:      StateEdit,
		score:      s,
		conv:       converter.New(converter.Options{Tempo: cfg.Tempo}),
		sheet:      sh,
		step:       clef.BottomLine().StaffStep() + 4,
		base:       2,
		filePicker: fp,
		spinner:    sp,
		help:       help.New(),
	}
	m.highlight()
	return m, nil
}

// Score returns the edited score
func (m Model) Score() *score.Score {
	return m.score
}

// Update handles TUI updates
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Handle file picker state first - it needs to receive all messages
	if m.state == StateFilePicker {
		// Check for escape/quit keys first
		if keyMsg, ok := msg.(tea.KeyMsg); ok {
			switch keyMsg.String() {
			case "esc":
				m.state = StateEdit
				return m, nil
			case "q", "ctrl+c":
				return m, tea.Quit
			}
		}

		// Pass all other messages to the file picker
		var cmd tea.Cmd
		m.filePicker, cmd = m.filePicker.Update(msg)

		// Check if a directory was selected
		if didSelect, dir := m.filePicker.DidSelectFile(msg); didSelect {
			m.state = StateExporting
			return m, tea.Batch(m.spinner.Tick, m.performExport(dir))
		}

		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.filePicker.SetHeight(msg.Height - 10)
		return m, nil

	case tea.KeyMsg:
		switch m.state {
		case StateEdit:
			return m.updateEdit(msg)
		case StateExportMenu:
			return m.updateExportMenu(msg)
		case StateResult:
			return m.updateResult(msg)
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case exportDoneMsg:
		m.state = StateResult
		m.outputFile = msg.outputFile
		m.err = msg.err
		return m, nil
	}

	return m, nil
}

func (m Model) updateEdit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, keys.Left):
		m.move(-1)
	case key.Matches(msg, keys.Right):
		m.move(1)
	case key.Matches(msg, keys.Up):
		m.step = min(m.step+1, maxStep)
	case key.Matches(msg, keys.Down):
		m.step = max(m.step-1, 0)
	case key.Matches(msg, keys.Sharp):
		m.accidental = "#"
	case key.Matches(msg, keys.Flat):
		m.accidental = "b"
	case key.Matches(msg, keys.Natural):
		m.accidental = ""
	case key.Matches(msg, keys.Duration):
		m.base = int(msg.String()[0] - '1')
	case key.Matches(msg, keys.Dot):
		m.dotted = !m.dotted
	case key.Matches(msg, keys.Add):
		id := m.currentID()
		pitch := m.pitch()
		m.result(m.score.AddNoteInMeasure(m.measure, []string{pitch}, m.durationCode(), id),
			fmt.Sprintf("added %s %s", pitch, m.durationCode()))
	case key.Matches(msg, keys.Change):
		m.result(m.score.ModifyDurationInMeasure(m.measure, m.durationCode(), m.currentID()),
			fmt.Sprintf("duration set to %s", m.durationCode()))
	case key.Matches(msg, keys.Measure):
		if _, err := m.score.AddMeasure(); err != nil {
			m.result(err, "")
			break
		}
		m.measure = m.score.Len() - 1
		m.event = 0
		m.result(nil, fmt.Sprintf("measure %d added", m.score.Len()))
	case key.Matches(msg, keys.Export):
		m.state = StateExportMenu
		m.menuIndex = 0
		return m, nil
	}

	m.clamp()
	m.highlight()
	return m, nil
}

func (m Model) updateExportMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.menuIndex > 0 {
			m.menuIndex--
		}
	case "down", "j":
		if m.menuIndex < len(exportItems)-1 {
			m.menuIndex++
		}
	case "enter":
		if m.menuIndex == len(exportItems)-1 {
			m.state = StateEdit
			return m, nil
		}
		m.export = exportItems[m.menuIndex]
		m.state = StateFilePicker
		return m, m.filePicker.Init()
	case "esc":
		m.state = StateEdit
	case "q", "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) updateResult(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc":
		m.state = StateEdit
		m.outputFile = ""
		return m, nil
	case "q", "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) performExport(dir string) tea.Cmd {
	s, conv, item := m.score, m.conv, m.export
	return func() tea.Msg {
		outputFile := filepath.Join(dir, "score"+item.Ext)
		if err := conv.ExportFile(s, outputFile); err != nil {
			return exportDoneMsg{err: err}
		}
		return exportDoneMsg{outputFile: outputFile}
	}
}

// move steps the cursor across events and measure boundaries
func (m *Model) move(delta int) {
	cur, err := m.score.Measure(m.measure)
	if err != nil {
		return
	}
	next := m.event + delta
	switch {
	case next < 0:
		if m.measure > 0 {
			m.measure--
			prev, _ := m.score.Measure(m.measure)
			m.event = prev.Len() - 1
		}
	case next >= cur.Len():
		if m.measure < m.score.Len()-1 {
			m.measure++
			m.event = 0
		}
	default:
		m.event = next
	}
}

// clamp keeps the cursor on an event after splits and merges
func (m *Model) clamp() {
	m.measure = min(max(m.measure, 0), m.score.Len()-1)
	cur, _ := m.score.Measure(m.measure)
	m.event = min(max(m.event, 0), cur.Len()-1)
}

func (m Model) currentID() string {
	cur, err := m.score.Measure(m.measure)
	if err != nil {
		return ""
	}
	e, err := cur.EventAt(m.event)
	if err != nil {
		return ""
	}
	return e.ID
}

func (m Model) pitch() string {
	return fmt.Sprintf("%c%s/%d", pitchLetters[m.step%7], m.accidental, m.step/7)
}

func (m Model) durationCode() string {
	code := durationBases[m.base]
	if m.dotted {
		code += "d"
	}
	return code
}

func (m *Model) result(err error, ok string) {
	m.err = err
	if err == nil {
		m.status = ok
	}
}

// highlight marks the cursor event on every canvas and redraws
func (m *Model) highlight() {
	id := m.currentID()
	for _, c := range m.sheet.canvases {
		c.Highlight = id
	}
	if err := m.score.Redraw(); err != nil {
		m.result(err, "")
	}
}

// errorMessage prefers the user-facing issue of a fault error
func errorMessage(err error) string {
	if issue := fmsg.GetIssue(err); issue != "" {
		return issue
	}
	return err.Error()
}

// View renders the TUI
func (m Model) View() string {
	var s strings.Builder

	// Header
	s.WriteString(asciiLogo())
	s.WriteString("\n")

	switch m.state {
	case StateEdit:
		s.WriteString(m.viewEdit())
	case StateExportMenu:
		s.WriteString(m.viewExportMenu())
	case StateFilePicker:
		s.WriteString(m.viewFilePicker())
	case StateExporting:
		s.WriteString(m.viewExporting())
	case StateResult:
		s.WriteString(m.viewResult())
	}

	return s.String()
}

func (m Model) viewEdit() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(fmt.Sprintf(" %s SCORE ", m.score.TimeSignature())))
	s.WriteString("\n\n")
	s.WriteString(render.JoinMeasures(m.sheet.canvases...))
	s.WriteString("\n\n")

	cur, _ := m.score.Measure(m.measure)
	e, _ := cur.EventAt(m.event)
	what := strings.Join(e.Pitches, " ")
	if e.IsRest() {
		what = "rest"
	}
	s.WriteString(menuStyle.Render(fmt.Sprintf("measure %d/%d  event %d/%d  %s %s",
		m.measure+1, m.score.Len(), m.event+1, cur.Len(), e.Duration, what)))
	s.WriteString("\n")
	s.WriteString(selectedStyle.Render(fmt.Sprintf("▸ %s %s", m.pitch(), m.durationCode())))
	s.WriteString("\n")

	if m.err != nil {
		s.WriteString(errorStyle.Render(fmt.Sprintf("✗ %s", errorMessage(m.err))))
	} else if m.status != "" {
		s.WriteString(statusStyle.Render(m.status))
	}
	s.WriteString("\n")
	s.WriteString(helpStyle.Render(m.help.View(keys)))

	return s.String()
}

func (m Model) viewExportMenu() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(" EXPORT SCORE "))
	s.WriteString("\n\n")

	for i, item := range exportItems {
		if i == m.menuIndex {
			s.WriteString(selectedStyle.Render(fmt.Sprintf("▸ %s", item.Title)))
			s.WriteString("\n")
			s.WriteString(lipgloss.NewStyle().Foreground(acidYellow).PaddingLeft(4).Render(item.Description))
		} else {
			s.WriteString(menuStyle.Render(fmt.Sprintf("  %s", item.Title)))
		}
		s.WriteString("\n")
	}
	s.WriteString(helpStyle.Render("↑/↓: navigate • enter: select • esc: back"))

	return boxStyle.Render(s.String())
}

func (m Model) viewFilePicker() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(fmt.Sprintf(" SELECT DIRECTORY FOR %s ", strings.ToUpper(m.export.Title))))
	s.WriteString("\n\n")
	s.WriteString(m.filePicker.View())
	s.WriteString("\n")
	s.WriteString(helpStyle.Render("enter: export here • esc: back to editor"))

	return s.String()
}

func (m Model) viewExporting() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(" EXPORTING "))
	s.WriteString("\n\n")
	s.WriteString(fmt.Sprintf("%s Writing score%s...\n", m.spinner.View(), m.export.Ext))

	return boxStyle.Render(s.String())
}

func (m Model) viewResult() string {
	var s strings.Builder

	if m.err != nil {
		s.WriteString(titleStyle.Render(" ERROR "))
		s.WriteString("\n\n")
		s.WriteString(errorStyle.Render(fmt.Sprintf("✗ Export failed: %s", errorMessage(m.err))))
	} else {
		s.WriteString(titleStyle.Render(" SUCCESS "))
		s.WriteString("\n\n")
		s.WriteString(successStyle.Render("✓ Export complete!"))
		s.WriteString("\n\n")
		s.WriteString(fmt.Sprintf("Output: %s", m.outputFile))
	}

	s.WriteString("\n\n")
	s.WriteString(helpStyle.Render("Press enter to continue"))

	return boxStyle.Render(s.String())
}

func asciiLogo() string {
	logo := `
  _ __ ___   ___  __ _ ___ _   _ _ __ ___  ___  __| (_) |_
 | '_ ' _ \ / _ \/ _' / __| | | | '__/ _ \/ _ \/ _' | | __|
 | | | | | |  __/ (_| \__ \ |_| | | |  __/  __/ (_| | | |_
 |_| |_| |_|\___|\__,_|___/\__,_|_|  \___|\___|\__,_|_|\__|
`
	return lipgloss.NewStyle().Foreground(acidGreen).Render(logo)
}

// Run starts the TUI application
func Run(cfg config.Config) error {
	m, err := New(cfg)
	if err != nil {
		return err
	}
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()
	return err
}
