package ui

import (
	"fmt"
	"groupchat/domain"
	"groupchat/domain/event"
	"groupchat/errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

const searchCommand = "/search "

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = max(msg.Width, 0)
		m.height = max(msg.Height, 0)
		m = m.resize()
		return m.refresh(), nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case groupsLoadedMsg:
		if msg.err != nil {
			m = m.setError(msg.err)
		}
		return m, nil

	case groupCreatedMsg:
		if msg.err != nil {
			return m.setError(msg.err), nil
		}
		m.newGroup.SetValue("")
		m = m.setFocus(focusComposer).setStatus(fmt.Sprintf("Group %q created", msg.group.Name))
		m.cursor = m.indexOf(msg.group.ID)
		return m.clearResults(), m.loadHistory(msg.group.ID)

	case historyLoadedMsg:
		if msg.err != nil {
			m = m.setError(msg.err)
		}
		return m.refresh(), nil

	case messageSentMsg:
		if msg.err != nil {
			return m.setError(msg.err), nil
		}
		m.input.SetValue("")
		return m.setStatus("").refresh(), nil

	case LiveMessageMsg:
		return m.refresh(), nil

	case AuthChangedMsg:
		if msg.Event.Change == event.SignedOut {
			m.directory.Reset()
			m.feed.Reset()
			m.results = nil
			m = m.setStatus("Signed out")
			return m.refresh(), tea.Quit
		}
		return m, nil

	case signedOutMsg:
		m.directory.Reset()
		m.feed.Reset()
		if msg.err != nil {
			m = m.setError(msg.err)
		} else {
			m = m.setStatus("Signed out")
		}
		return m.refresh(), tea.Quit

	case searchResultMsg:
		if msg.err != nil {
			return m.setError(msg.err), nil
		}
		m.results = msg.messages
		m.resultQuery = msg.query
		m = m.setStatus(fmt.Sprintf("%d result(s) for %q, esc to close", len(msg.messages), msg.query))
		return m.refresh(), nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, keys.ToggleTheme):
		m.styles = NewStyles(m.styles.Theme.Toggle())
		return m.refresh(), nil
	case key.Matches(msg, keys.SignOut):
		return m, m.signOut()
	case key.Matches(msg, keys.NewGroup):
		return m.setFocus(focusNewGroup), nil
	case key.Matches(msg, keys.Focus):
		if m.focus == focusComposer {
			return m.setFocus(focusGroups), nil
		}
		return m.setFocus(focusComposer), nil
	case key.Matches(msg, keys.Cancel):
		if m.focus == focusNewGroup {
			m.newGroup.SetValue("")
			return m.setFocus(focusComposer), nil
		}
		return m.clearResults().refresh(), nil
	}

	switch m.focus {
	case focusGroups:
		return m.handleGroupsKey(msg)
	case focusNewGroup:
		if key.Matches(msg, keys.Enter) {
			return m, m.createGroup(m.newGroup.Value())
		}
		var cmd tea.Cmd
		m.newGroup, cmd = m.newGroup.Update(msg)
		return m, cmd
	default:
		return m.handleComposerKey(msg)
	}
}

func (m Model) handleGroupsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	groups := m.directory.Groups()
	switch {
	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, keys.Down):
		if m.cursor < len(groups)-1 {
			m.cursor++
		}
	case key.Matches(msg, keys.Enter):
		if m.cursor >= len(groups) {
			return m, nil
		}
		group := groups[m.cursor]
		m.directory.Select(group.ID)
		m = m.clearResults().setFocus(focusComposer).setStatus("")
		return m.refresh(), m.loadHistory(group.ID)
	default:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleComposerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, keys.Enter) {
		text := strings.TrimSpace(m.input.Value())
		if query, ok := strings.CutPrefix(text, searchCommand); ok {
			groupID, selected := m.directory.Selected()
			if !selected {
				return m.setError(errors.ErrNoGroupSelected), nil
			}
			m.input.SetValue("")
			m.composer.SetText("")
			return m, m.search(groupID, strings.TrimSpace(query))
		}
		// Submit rejects empty text, missing user or group without a request
		return m, m.submit()
	}

	switch msg.Type {
	case tea.KeyPgUp, tea.KeyPgDown:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.composer.SetText(m.input.Value())
	return m, cmd
}

func (m Model) clearResults() Model {
	m.results = nil
	m.resultQuery = ""
	return m
}

func (m Model) indexOf(id domain.GroupID) int {
	for i, group := range m.directory.Groups() {
		if group.ID == id {
			return i
		}
	}
	return 0
}
