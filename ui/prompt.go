package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Prompt reads user queries one line at a time with a bubbletea text input.
// Up and down recall earlier entries.
type Prompt struct {
	in      io.Reader
	out     io.Writer
	history []string
}

func NewPrompt(in io.Reader, out io.Writer) *Prompt {
	return &Prompt{in: in, out: out}
}

// ReadLine blocks until the user submits a line. It returns io.EOF on ctrl+d
// and on ctrl+c at an empty prompt; ctrl+c on a non-empty line clears it.
func (p *Prompt) ReadLine() (string, error) {
	m := newPromptModel(p.history)

	program := tea.NewProgram(m, tea.WithInput(p.in), tea.WithOutput(p.out))
	final, err := program.Run()
	if err != nil {
		return "", fmt.Errorf("prompt failed: %w", err)
	}

	result := final.(promptModel)
	if result.eof {
		return "", io.EOF
	}

	line := strings.TrimSpace(result.input.Value())
	fmt.Fprintln(p.out, UserStyle.Render("> ")+line)
	if line != "" {
		p.history = append(p.history, line)
	}
	return line, nil
}

type promptModel struct {
	input   textinput.Model
	history []string
	cursor  int
	done    bool
	eof     bool
}

func newPromptModel(history []string) promptModel {
	ti := textinput.New()
	ti.Prompt = UserStyle.Render("> ")
	ti.Placeholder = "Ask anything, /exit to quit"
	ti.CharLimit = 0
	ti.Focus()

	return promptModel{input: ti, history: history, cursor: len(history)}
}

func (m promptModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m promptModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyEnter:
			m.done = true
			return m, tea.Quit
		case tea.KeyCtrlD:
			m.eof = true
			return m, tea.Quit
		case tea.KeyCtrlC:
			if m.input.Value() == "" {
				m.eof = true
				return m, tea.Quit
			}
			m.input.SetValue("")
			return m, nil
		case tea.KeyUp:
			if m.cursor > 0 {
				m.cursor--
				m.input.SetValue(m.history[m.cursor])
				m.input.CursorEnd()
			}
			return m, nil
		case tea.KeyDown:
			if m.cursor < len(m.history) {
				m.cursor++
				if m.cursor == len(m.history) {
					m.input.SetValue("")
				} else {
					m.input.SetValue(m.history[m.cursor])
				}
				m.input.CursorEnd()
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m promptModel) View() string {
	if m.done || m.eof {
		return ""
	}
	return m.input.View()
}
