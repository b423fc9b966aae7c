package ui

import (
	"context"
	"groupchat/domain"
	"groupchat/domain/event"

	tea "github.com/charmbracelet/bubbletea"
)

// LiveMessageMsg is sent to the program by the realtime bridge once the feed
// has taken the pushed message.
type LiveMessageMsg struct {
	Event event.MessageInserted
}

// AuthChangedMsg is sent to the program on every session change.
type AuthChangedMsg struct {
	Event event.AuthStateChanged
}

type groupsLoadedMsg struct {
	err error
}

type groupCreatedMsg struct {
	group domain.Group
	err   error
}

type historyLoadedMsg struct {
	groupID domain.GroupID
	err     error
}

type messageSentMsg struct {
	message domain.Message
	err     error
}

type signedOutMsg struct {
	err error
}

type searchResultMsg struct {
	query    string
	messages []domain.Message
	err      error
}

func (m Model) loadGroups() tea.Cmd {
	return func() tea.Msg {
		_, err := m.directory.ListGroups(m.ctx)
		return groupsLoadedMsg{err: err}
	}
}

func (m Model) createGroup(name string) tea.Cmd {
	return func() tea.Msg {
		group, err := m.directory.CreateGroup(m.ctx, name)
		return groupCreatedMsg{group: group, err: err}
	}
}

func (m Model) loadHistory(groupID domain.GroupID) tea.Cmd {
	return func() tea.Msg {
		return historyLoadedMsg{groupID: groupID, err: m.feed.LoadHistory(m.ctx, groupID)}
	}
}

func (m Model) submit() tea.Cmd {
	return func() tea.Msg {
		message, err := m.composer.Submit(m.ctx)
		return messageSentMsg{message: message, err: err}
	}
}

func (m Model) signOut() tea.Cmd {
	return func() tea.Msg {
		return signedOutMsg{err: m.session.SignOut(m.ctx)}
	}
}

func (m Model) search(groupID domain.GroupID, query string) tea.Cmd {
	return func() tea.Msg {
		messages, err := m.searcher.SearchMessages(m.ctx, groupID, query)
		return searchResultMsg{query: query, messages: messages, err: err}
	}
}

func withContext(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
