// Package ui is the terminal view of the chat: groups, messages, composer,
// theme and session controls. It only drives the client components, all
// state lives in them.
package ui

import (
	"context"
	"groupchat/composer"
	"groupchat/contract"
	"groupchat/directory"
	"groupchat/domain"
	"groupchat/projection"
	"groupchat/session"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

type focus int

const (
	focusComposer focus = iota
	focusGroups
	focusNewGroup
)

// Deps are the components the view drives.
type Deps struct {
	Ctx       context.Context
	Log       *slog.Logger
	Session   *session.Holder
	Directory *directory.Directory
	Feed      *projection.Feed
	Composer  *composer.Composer
	Searcher  contract.Searcher
	Theme     domain.Theme
	// Location of the message times, time.Local when nil.
	Location *time.Location
}

type Model struct {
	ctx       context.Context
	log       *slog.Logger
	session   *session.Holder
	directory *directory.Directory
	feed      *projection.Feed
	composer  *composer.Composer
	searcher  contract.Searcher
	location  *time.Location

	styles   Styles
	input    textinput.Model
	newGroup textinput.Model
	viewport viewport.Model

	focus       focus
	cursor      int
	width       int
	height      int
	status      string
	statusError bool
	results     []domain.Message
	resultQuery string
}

func NewModel(deps Deps) Model {
	input := textinput.New()
	input.Placeholder = "Write a message, /search <text> to search"
	input.Prompt = "> "
	input.Focus()

	newGroup := textinput.New()
	newGroup.Placeholder = "Group name"
	newGroup.Prompt = "+ "

	location := deps.Location
	if location == nil {
		location = time.Local
	}
	return Model{
		ctx:       withContext(deps.Ctx),
		log:       deps.Log,
		session:   deps.Session,
		directory: deps.Directory,
		feed:      deps.Feed,
		composer:  deps.Composer,
		searcher:  deps.Searcher,
		location:  location,
		styles:    NewStyles(deps.Theme),
		input:     input,
		newGroup:  newGroup,
		viewport:  viewport.New(0, 0),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadGroups(), textinput.Blink)
}

// Theme is the palette currently shown.
func (m Model) Theme() domain.Theme {
	return m.styles.Theme
}

func (m Model) setStatus(text string) Model {
	m.status = text
	m.statusError = false
	return m
}

func (m Model) setError(err error) Model {
	m.status = err.Error()
	m.statusError = true
	return m
}

func (m Model) setFocus(f focus) Model {
	m.focus = f
	m.input.Blur()
	m.newGroup.Blur()
	switch f {
	case focusComposer:
		m.input.Focus()
	case focusNewGroup:
		m.newGroup.Focus()
	}
	return m
}
