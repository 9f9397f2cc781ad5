package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"aerogate/internal/accesslog"
)

// DefaultRefresh is how often the watcher polls the server.
const DefaultRefresh = 3 * time.Second

// FetchFunc loads every access-log entry, newest first.
type FetchFunc func(ctx context.Context) ([]accesslog.Entry, error)

// WatchKeyMap defines key bindings for the log watcher. Interrupt quits even
// while the search box has focus.
type WatchKeyMap struct {
	Filter    key.Binding
	Search    key.Binding
	Refresh   key.Binding
	Quit      key.Binding
	Interrupt key.Binding
	Accept    key.Binding
	Cancel    key.Binding
}

var WatchKeys = WatchKeyMap{
	Filter: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "filter"),
	),
	Search: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "search"),
	),
	Refresh: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "refresh"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	Interrupt: key.NewBinding(
		key.WithKeys("ctrl+c"),
	),
	Accept: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "apply"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "clear"),
	),
}

type logsMsg struct {
	entries []accesslog.Entry
	err     error
	at      time.Time
}

// tickMsg schedules the next poll. Only the tick matching the model's current
// generation fires a refresh, so a manual refresh never adds a second loop.
type tickMsg struct{ gen int }

// WatchModel polls the access log and shows it filtered by outcome and search text.
type WatchModel struct {
	fetch     FetchFunc
	interval  time.Duration
	server    string
	entries   []accesslog.Entry
	filter    accesslog.Filter
	input     textinput.Model
	searching bool
	err       error
	updated   time.Time
	width     int
	gen       int
}

// NewWatchModel creates a watcher. A non-positive interval uses DefaultRefresh.
func NewWatchModel(server string, fetch FetchFunc, interval time.Duration) *WatchModel {
	if interval <= 0 {
		interval = DefaultRefresh
	}
	input := textinput.New()
	input.Placeholder = "name, id or terminal"
	input.Prompt = "/ "
	return &WatchModel{
		fetch:    fetch,
		interval: interval,
		server:   server,
		filter:   accesslog.Filter{Status: accesslog.ShowAll},
		input:    input,
	}
}

// Filter returns the active filter.
func (m *WatchModel) Filter() accesslog.Filter { return m.filter }

// Visible returns the rows currently shown.
func (m *WatchModel) Visible() []accesslog.Entry { return m.filter.Apply(m.entries) }

// Init loads the first page.
func (m *WatchModel) Init() tea.Cmd {
	return m.refresh()
}

func (m *WatchModel) refresh() tea.Cmd {
	fetch := m.fetch
	timeout := m.interval
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		entries, err := fetch(ctx)
		return logsMsg{entries: entries, err: err, at: time.Now()}
	}
}

func (m *WatchModel) tick() tea.Cmd {
	m.gen++
	gen := m.gen
	return tea.Tick(m.interval, func(time.Time) tea.Msg { return tickMsg{gen: gen} })
}

// Update handles messages for the watcher
func (m *WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case logsMsg:
		m.err = msg.err
		if msg.err == nil {
			m.entries = msg.entries
			m.updated = msg.at
		}
		return m, m.tick()

	case tickMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		return m, m.refresh()

	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg)
		}
		switch {
		case key.Matches(msg, WatchKeys.Quit):
			return m, tea.Quit
		case key.Matches(msg, WatchKeys.Filter):
			m.filter.Status = m.filter.Status.Next()
			return m, nil
		case key.Matches(msg, WatchKeys.Search):
			m.searching = true
			return m, m.input.Focus()
		case key.Matches(msg, WatchKeys.Refresh):
			return m, m.refresh()
		}
	}
	return m, nil
}

func (m *WatchModel) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, WatchKeys.Interrupt):
		return m, tea.Quit
	case key.Matches(msg, WatchKeys.Accept):
		m.searching = false
		m.input.Blur()
		return m, nil
	case key.Matches(msg, WatchKeys.Cancel):
		m.searching = false
		m.input.Blur()
		m.input.SetValue("")
		m.filter.Query = ""
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.filter.Query = m.input.Value()
	return m, cmd
}

// View renders the watcher
func (m *WatchModel) View() string {
	var b strings.Builder
	b.WriteString(Title.Render("Lounge access log"))
	b.WriteString("\n")
	b.WriteString(Subtitle.Render(m.server))
	b.WriteString("\n\n")

	b.WriteString(SummaryLine(accesslog.Counts(m.entries)))
	b.WriteString("\n")
	b.WriteString(m.filterLine())
	b.WriteString("\n\n")

	b.WriteString(LogTable(m.Visible()))
	b.WriteString("\n")
	if m.searching {
		b.WriteString(m.input.View())
		b.WriteString("\n")
	}
	if m.err != nil {
		b.WriteString(ErrorText.Render("refresh failed: " + m.err.Error()))
		b.WriteString("\n")
	}
	b.WriteString(m.statusBar())
	return b.String()
}

func (m *WatchModel) filterLine() string {
	parts := make([]string, 0, len(accesslog.StatusFilters))
	for _, f := range accesslog.StatusFilters {
		label := strings.ToUpper(string(f))
		if f == m.filter.Status {
			parts = append(parts, StatusKey.Render(label))
		} else {
			parts = append(parts, MutedText.Render(label))
		}
	}
	line := strings.Join(parts, " ")
	if q := strings.TrimSpace(m.filter.Query); q != "" {
		line += MutedText.Render(fmt.Sprintf("  search: %q", q))
	}
	return line
}

func (m *WatchModel) statusBar() string {
	updated := "never"
	if !m.updated.IsZero() {
		updated = m.updated.Format("15:04:05")
	}
	help := []key.Binding{WatchKeys.Filter, WatchKeys.Search, WatchKeys.Refresh, WatchKeys.Quit}
	parts := make([]string, 0, len(help)+1)
	for _, h := range help {
		parts = append(parts, h.Help().Key+" "+h.Help().Desc)
	}
	parts = append(parts, "updated "+updated)
	return StatusBar.Render(strings.Join(parts, " · "))
}
