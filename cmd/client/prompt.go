package main

import (
	"errors"
	"io"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

var ErrPromptCancelled = errors.New("prompt cancelled")

// passwordPrompt reads one secret with the echo masked. The value is kept exactly as typed.
type passwordPrompt struct {
	input     textinput.Model
	done      bool
	cancelled bool
}

func newPasswordPrompt(label string) passwordPrompt {
	input := textinput.New()
	input.Prompt = label
	input.Placeholder = "Password"
	input.EchoMode = textinput.EchoPassword
	input.EchoCharacter = '•'
	input.CharLimit = 128
	input.Width = 30
	input.Focus()
	return passwordPrompt{input: input}
}

func (p passwordPrompt) Init() tea.Cmd { return textinput.Blink }

func (p passwordPrompt) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyEnter:
			p.done = true
			return p, tea.Quit
		case tea.KeyEsc, tea.KeyCtrlC:
			p.cancelled = true
			return p, tea.Quit
		}
	}
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return p, cmd
}

func (p passwordPrompt) View() string {
	if p.done || p.cancelled {
		return ""
	}
	return p.input.View() + "\n"
}

func (p passwordPrompt) result() (string, error) {
	if p.cancelled || !p.done {
		return "", ErrPromptCancelled
	}
	return p.input.Value(), nil
}

func prompt(in io.Reader, out io.Writer, label string) (string, error) {
	final, err := tea.NewProgram(newPasswordPrompt(label), tea.WithInput(in), tea.WithOutput(out)).Run()
	if err != nil {
		return "", err
	}
	return final.(passwordPrompt).result()
}
