package ui

import (
	"fmt"
	"groupchat/domain"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	sidebarWidth = 24
	headerHeight = 1
	// composer box, typing line and status line
	footerHeight = 5
	timeLayout   = "15:04"
)

func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}
	body := lipgloss.JoinHorizontal(lipgloss.Top, m.sidebarView(), m.viewport.View())
	return lipgloss.JoinVertical(lipgloss.Left,
		m.headerView(),
		body,
		m.composerView(),
		m.statusView(),
	)
}

func (m Model) headerView() string {
	email := "not signed in"
	if user, ok := m.session.CurrentUser(); ok {
		email = user.Email
	}
	hints := make([]string, 0, len(keys.hints()))
	for _, binding := range keys.hints() {
		help := binding.Help()
		hints = append(hints, help.Key+" "+help.Desc)
	}
	title := fmt.Sprintf("Group chat | %s | %s theme | %s", email, m.styles.Theme, strings.Join(hints, " · "))
	return m.styles.Header.Width(m.width).MaxHeight(headerHeight).Render(title)
}

func (m Model) sidebarView() string {
	selected, hasSelection := m.directory.Selected()
	var b strings.Builder
	b.WriteString(m.styles.Muted.Render("Groups"))
	b.WriteString("\n")

	groups := m.directory.Groups()
	if len(groups) == 0 {
		b.WriteString(m.styles.Muted.Render("none yet"))
		b.WriteString("\n")
	}
	for i, group := range groups {
		style := m.styles.Group
		if hasSelection && group.ID == selected {
			style = m.styles.GroupActive
		}
		if m.focus == focusGroups && i == m.cursor {
			style = style.Inherit(m.styles.GroupCursor)
		}
		b.WriteString(style.Render(truncate(group.Name, sidebarWidth-2)))
		b.WriteString("\n")
	}
	if m.focus == focusNewGroup {
		b.WriteString(m.newGroup.View())
	}
	return m.styles.Sidebar.Width(sidebarWidth).Height(m.bodyHeight()).Render(b.String())
}

func (m Model) composerView() string {
	typing := ""
	if m.composer.Typing() {
		typing = m.styles.Typing.Render("Typing...")
	}
	send := m.styles.SendDisabled.Render("[enter] send")
	if m.composer.CanSend() {
		send = m.styles.SendEnabled.Render("[enter] send")
	}
	box := m.styles.Composer.Width(max(m.width-2, 0)).Render(m.input.View())
	return lipgloss.JoinVertical(lipgloss.Left, box, typing+"  "+send)
}

func (m Model) statusView() string {
	if m.status == "" {
		return ""
	}
	if m.statusError {
		return m.styles.Error.Render(m.status)
	}
	return m.styles.Status.Render(m.status)
}

// messagesView renders the feed, or the search results while a search is shown.
// Own messages are right aligned.
func (m Model) messagesView(width int) string {
	if _, ok := m.feed.Selected(); !ok && m.results == nil {
		return m.styles.Muted.Render("Select a group with tab, or create one with ctrl+n")
	}
	messages := m.feed.Messages()
	if m.results != nil {
		messages = m.results
	}
	if len(messages) == 0 {
		return m.styles.Muted.Render("No messages")
	}

	user, signedIn := m.session.CurrentUser()
	bubbleWidth := max(width*2/3, 10)
	lines := make([]string, 0, len(messages))
	for _, message := range messages {
		own := signedIn && message.UserID == user.ID
		style := m.styles.Bubble
		align := lipgloss.Left
		if own {
			style = m.styles.OwnBubble
			align = lipgloss.Right
		}
		bubble := lipgloss.JoinVertical(align,
			style.MaxWidth(bubbleWidth).Render(message.Content),
			m.styles.Footer.Render(m.footer(message)),
		)
		lines = append(lines, lipgloss.PlaceHorizontal(width, align, bubble))
	}
	return strings.Join(lines, "\n")
}

func (m Model) footer(message domain.Message) string {
	author := message.AuthorEmail
	if author == "" {
		author = "unknown"
	}
	return fmt.Sprintf("%s - %s", author, message.CreatedAt.In(m.location).Format(timeLayout))
}

func (m Model) bodyHeight() int {
	return max(m.height-headerHeight-footerHeight, 1)
}

func (m Model) resize() Model {
	m.viewport.Width = max(m.width-sidebarWidth-2, 10)
	m.viewport.Height = m.bodyHeight()
	m.input.Width = max(m.width-6, 10)
	return m
}

// refresh re-renders the messages into the viewport and keeps the newest visible.
func (m Model) refresh() Model {
	m.viewport.SetContent(m.styles.Messages.Render(m.messagesView(m.viewport.Width - 1)))
	if m.results == nil {
		m.viewport.GotoBottom()
	} else {
		m.viewport.GotoTop()
	}
	return m
}

func truncate(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:max(width-1, 0)]) + "…"
}
