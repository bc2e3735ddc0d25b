package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

var (
	appStyle    = lipgloss.NewStyle().Padding(1, 2)
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("170")).Bold(true)
	focusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	filterStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("241"))
)

type keyMap struct {
	Quit      key.Binding
	Refresh   key.Binding
	Add       key.Binding
	Edit      key.Binding
	Toggle    key.Binding
	Delete    key.Binding
	Copy      key.Binding
	Completed key.Binding
	Sort      key.Binding
	Order     key.Binding
	Tags      key.Binding
	DueStart  key.Binding
	DueEnd    key.Binding
	Clear     key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Refresh:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Add:       key.NewBinding(key.WithKeys("a", "n"), key.WithHelp("a/n", "add")),
		Edit:      key.NewBinding(key.WithKeys("e", "enter"), key.WithHelp("e", "edit")),
		Toggle:    key.NewBinding(key.WithKeys("x", " "), key.WithHelp("x", "toggle done")),
		Delete:    key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		Copy:      key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy")),
		Completed: key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "status filter")),
		Sort:      key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort field")),
		Order:     key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "sort order")),
		Tags:      key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "tags")),
		DueStart:  key.NewBinding(key.WithKeys("["), key.WithHelp("[", "due from")),
		DueEnd:    key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "due to")),
		Clear:     key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear filters")),
	}
}

func (k keyMap) short() []key.Binding {
	return []key.Binding{k.Add, k.Edit, k.Toggle, k.Delete, k.Completed, k.Tags, k.Clear}
}

func (k keyMap) full() []key.Binding {
	return []key.Binding{
		k.Add, k.Edit, k.Toggle, k.Delete, k.Copy, k.Refresh,
		k.Completed, k.Sort, k.Order, k.Tags, k.DueStart, k.DueEnd, k.Clear,
	}
}

func (m Model) statusLine() string {
	switch {
	case m.status == "" && m.tasks.Loading():
		return statusStyle.Render("loading…")
	case m.status == "":
		return ""
	case m.statusErr:
		return errorStyle.Render(m.status)
	default:
		return statusStyle.Render(m.status)
	}
}

func (m Model) filterBar() string {
	line := "Filter: " + m.filters.Describe()
	if len(m.tags) > 0 {
		line += "\n" + statusStyle.Render("tags in use: "+strings.Join(m.tags, ", "))
	}
	return filterStyle.Render(line)
}

func (m Model) View() string {
	switch m.state {
	case stateForm:
		hint := "tab: next field • ctrl+x: toggle completed • ctrl+s: save • esc: cancel"
		if m.form.submitting {
			hint = "saving…"
		}
		return appStyle.Render(m.form.view() + "\n" + m.statusLine() + "\n" + statusStyle.Render(hint))

	case statePrompt:
		label := map[promptKind]string{
			promptTags:     "Show tasks with any of these tags",
			promptDueStart: "Due on or after",
			promptDueEnd:   "Due on or before",
		}[m.promptKind]
		return appStyle.Render(
			titleStyle.Render(label) + "\n\n" +
				m.prompt.View() + "\n\n" +
				m.statusLine() + "\n" +
				statusStyle.Render("enter: apply • esc: cancel"),
		)

	case stateConfirm:
		t, _ := m.selected()
		return appStyle.Render(
			focusStyle.Render("Delete task?") + "\n\n  " + t.Title + "\n\n" +
				statusStyle.Render("y: delete • n/esc: cancel"),
		)
	}

	return appStyle.Render(m.filterBar() + "\n" + m.list.View() + "\n" + m.statusLine())
}
