// # cmd/typeref/ui.go
package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"typeref/internal/core/app"
	"typeref/internal/engine/rewrite"
)

var (
	titleStyle = lipgloss.NewStyle().
			MarginLeft(2).
			Foreground(lipgloss.Color("#3B82F6")).
			Bold(true).
			Render

	docStyle = lipgloss.NewStyle().Margin(1, 2)

	unresolvedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F87171")).
			Bold(true)

	rewrittenStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#64748B")).
			Italic(true)
)

type item struct {
	title, desc  string
	isUnresolved bool
}

func (i item) Title() string       { return i.title }
func (i item) Description() string { return i.desc }
func (i item) FilterValue() string { return i.title + i.desc }

type model struct {
	list       list.Model
	rewritten  int
	unresolved int
	lastUpdate time.Time
	fileCount  int
	moduleCnt  int
}

type updateMsg struct {
	update app.Update
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		h, v := docStyle.GetFrameSize()
		m.list.SetSize(msg.Width-h, msg.Height-v-4)
	case updateMsg:
		result := msg.update.Result
		m.rewritten = result.ImportsRewritten
		m.unresolved = result.ImportsUnresolved
		m.fileCount = result.FilesScanned
		m.moduleCnt = result.ModulesIndexed
		m.lastUpdate = time.Now()

		items := []list.Item{}
		for _, rw := range msg.update.Rewrites {
			items = append(items, item{
				title:        itemTitle(rw),
				desc:         fmt.Sprintf("%s -> %s in %s", rw.Original, rw.Replacement, filepath.Base(rw.File)),
				isUnresolved: !resolved(rw),
			})
		}
		m.list.SetItems(items)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m model) View() string {
	status := statusStyle.Render(fmt.Sprintf("Last update: %v | %d files | %d modules",
		m.lastUpdate.Format("15:04:05"), m.fileCount, m.moduleCnt))

	var summary string
	if m.unresolved == 0 {
		summary = rewrittenStyle.Render(fmt.Sprintf("✅ %d References Rewritten", m.rewritten))
	} else {
		summary = fmt.Sprintf("⚠️  %s | %s",
			rewrittenStyle.Render(fmt.Sprintf("%d Rewritten", m.rewritten)),
			unresolvedStyle.Render(fmt.Sprintf("%d Unresolved", m.unresolved)))
	}

	header := fmt.Sprintf("%s\n%s | %s\n", titleStyle("Type Reference Monitor"), status, summary)
	return docStyle.Render(header + "\n" + m.list.View())
}

func initialModel() model {
	l := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Import Rewrites"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)

	return model{
		list:       l,
		lastUpdate: time.Now(),
	}
}

func itemTitle(rw rewrite.ImportRewrite) string {
	if resolved(rw) {
		return "Rewritten Reference"
	}
	return "Unresolved Import"
}

func resolved(rw rewrite.ImportRewrite) bool {
	return strings.HasPrefix(strings.TrimLeft(rw.Replacement, "!?"), "module:")
}

func runUI(a *app.App) error {
	m := initialModel()
	p := tea.NewProgram(m, tea.WithAltScreen())

	a.SetUpdateCallback(func(u app.Update) {
		p.Send(updateMsg{update: u})
	})

	// Push the initial run so the UI is populated before the first change.
	go func() {
		if result, ok := a.LastResult(); ok {
			p.Send(updateMsg{update: app.Update{Result: result}})
		}
	}()

	_, err := p.Run()
	return err
}
