package tui

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sokinpui/hotedit/hotedit"
)

// ErrAborted is returned when the user quits the review without accepting.
var ErrAborted = errors.New("edit aborted")

// --- Styles ---
var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63")) // Mauve
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("197"))           // Red
	faintStyle  = lipgloss.NewStyle().Faint(true)
	bodyStyle   = lipgloss.NewStyle().PaddingLeft(2)
)

const chromeHeight = 4 // header, blank line, blank line, help

// --- Messages ---
type editedMsg struct{ text string }

type editErrMsg struct{ err error }

// editCommand runs one edit session while bubbletea has released the terminal.
// Unchanged validation compares against original, the text the review
// started from, not the text of the previous pass.
type editCommand struct {
	cfg      hotedit.Config
	original string
	initial  string
	result   string
}

func (c *editCommand) SetStdin(r io.Reader)  { c.cfg.Stdin = r }
func (c *editCommand) SetStdout(w io.Writer) { c.cfg.Stdout = w }
func (c *editCommand) SetStderr(w io.Writer) { c.cfg.Stderr = w }

func (c *editCommand) Run() error {
	cfg := c.cfg
	cfg.ValidateUnchanged = false
	text, err := hotedit.New(cfg).Invoke(c.initial)
	if err != nil {
		return err
	}
	if c.cfg.ValidateUnchanged && text == c.original {
		return hotedit.ErrUnchanged
	}
	c.result = text
	return nil
}

// --- Model ---
type Model struct {
	cfg      hotedit.Config
	initial  string
	text     string
	edited   bool
	viewport viewport.Model
	ready    bool
	state    state
	err      error
	accepted bool
}

type state int

const (
	stateEditing state = iota
	stateReview
	stateError
)

func New(cfg hotedit.Config, initial string) Model {
	return Model{
		cfg:     cfg,
		initial: initial,
		text:    initial,
		state:   stateEditing,
	}
}

func (m Model) Init() tea.Cmd {
	return m.edit()
}

// edit suspends the program and edits the current text.
func (m Model) edit() tea.Cmd {
	c := &editCommand{cfg: m.cfg, original: m.initial, initial: m.text}
	return tea.Exec(c, func(err error) tea.Msg {
		if err != nil {
			return editErrMsg{err}
		}
		return editedMsg{c.result}
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		height := msg.Height - chromeHeight
		if height < 1 {
			height = 1
		}
		if !m.ready {
			m.viewport = viewport.New(msg.Width, height)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = height
		}
		m.viewport.SetContent(m.text)
		return m, nil

	case editedMsg:
		m.state = stateReview
		m.text = msg.text
		m.edited = true
		m.err = nil
		if m.ready {
			m.viewport.SetContent(m.text)
			m.viewport.GotoTop()
		}
		return m, nil

	case editErrMsg:
		m.state = stateError
		m.err = msg.err
		return m, nil

	case tea.KeyMsg:
		if m.state == stateEditing {
			return m, nil
		}
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "e":
			m.state = stateEditing
			return m, m.edit()
		case "enter", "y":
			if m.edited {
				m.accepted = true
				return m, tea.Quit
			}
			return m, nil
		}
	}

	if m.ready && m.state == stateReview {
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) View() string {
	switch m.state {
	case stateEditing:
		return faintStyle.Render("Waiting for the editor...")
	case stateError:
		var b strings.Builder
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n\n")
		if m.edited {
			b.WriteString(faintStyle.Render("e edit again • enter accept previous result • q abort"))
		} else {
			b.WriteString(faintStyle.Render("e edit again • q abort"))
		}
		return b.String()
	default:
		return m.renderReview()
	}
}

func (m Model) renderReview() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Edited text"))
	b.WriteString("\n\n")
	if m.ready {
		b.WriteString(m.viewport.View())
	} else {
		b.WriteString(bodyStyle.Render(m.text))
	}
	b.WriteString("\n\n")
	b.WriteString(faintStyle.Render("e edit again • enter accept • q abort"))
	return b.String()
}

// Result returns the accepted text, the last edit error, or ErrAborted.
func (m Model) Result() (string, error) {
	if m.accepted {
		return m.text, nil
	}
	if m.err != nil {
		return "", m.err
	}
	return "", ErrAborted
}

// Run edits initial and lets the user review the result until they accept or abort.
func Run(cfg hotedit.Config, initial string) (string, error) {
	p := tea.NewProgram(New(cfg, initial), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return "", fmt.Errorf("error running review: %w", err)
	}
	return final.(Model).Result()
}
