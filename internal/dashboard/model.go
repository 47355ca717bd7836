// Package dashboard is the terminal dashboard: profile header, activity feed
// and a toast stack driven by a notify.Queue.
package dashboard

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/chiefduck/ratewatch/internal/activity"
	"github.com/chiefduck/ratewatch/internal/notify"
	"github.com/chiefduck/ratewatch/internal/profiles"
)

const (
	tickInterval = 100 * time.Millisecond
	fetchTimeout = 10 * time.Second
)

// Fetcher loads dashboard data; *Client implements it.
type Fetcher interface {
	Profile(ctx context.Context) (profiles.Header, error)
	Activities(ctx context.Context, limit int) ([]activity.Item, error)
}

// dataLoadedMsg carries the result of one refresh.
type dataLoadedMsg struct {
	header profiles.Header
	items  []activity.Item
	err    error
}

// tickMsg drives the toast queue.
type tickMsg time.Time

type Model struct {
	fetcher Fetcher
	limit   int
	queue   *notify.Queue
	keys    KeyMap
	help    help.Model
	spinner spinner.Model

	header  profiles.Header
	items   []activity.Item
	loading bool
	loaded  bool
	err     error
	width   int
}

// New builds the model. A nil queue gets one on the wall clock.
func New(fetcher Fetcher, queue *notify.Queue, limit int) Model {
	if queue == nil {
		queue = notify.NewQueue(notify.Options{})
	}
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(colorBlue)
	return Model{
		fetcher: fetcher,
		limit:   limit,
		queue:   queue,
		keys:    DefaultKeyMap(),
		help:    help.New(),
		spinner: sp,
		header:  profiles.BuildHeader(profiles.Profile{}),
		loading: true,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetch(), scheduleTick())
}

func (m Model) fetch() tea.Cmd {
	fetcher, limit := m.fetcher, m.limit
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		header, err := fetcher.Profile(ctx)
		if err != nil {
			return dataLoadedMsg{err: fmt.Errorf("load profile: %w", err)}
		}
		items, err := fetcher.Activities(ctx, limit)
		if err != nil {
			return dataLoadedMsg{err: fmt.Errorf("load activity: %w", err)}
		}
		return dataLoadedMsg{header: header, items: items}
	}
}

func scheduleTick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Refresh):
			if m.loading {
				return m, nil
			}
			m.loading = true
			return m, tea.Batch(m.spinner.Tick, m.fetch())
		case key.Matches(msg, m.keys.Dismiss):
			m.dismissNewest()
			return m, nil
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}
		return m, nil

	case dataLoadedMsg:
		wasLoaded := m.loaded
		m.loading = false
		m.err = msg.err
		if msg.err != nil {
			m.queue.Add(notify.Toast{Type: notify.TypeError, Message: msg.err.Error()})
			return m, nil
		}
		m.header = msg.header
		m.items = msg.items
		m.loaded = true
		if wasLoaded {
			m.queue.Add(notify.Toast{Type: notify.TypeSuccess, Message: "Dashboard refreshed"})
		}
		return m, nil

	case tickMsg:
		m.queue.Advance()
		return m, scheduleTick()

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// dismissNewest starts the exit of the most recent visible toast.
func (m *Model) dismissNewest() {
	toasts := m.queue.List()
	for i := len(toasts) - 1; i >= 0; i-- {
		if toasts[i].State == notify.StateVisible {
			m.queue.Dismiss(toasts[i].ID)
			return
		}
	}
}

func (m Model) View() string {
	sections := []string{m.viewHeader(), m.viewFeed()}
	if toasts := m.viewToasts(); toasts != "" {
		sections = append(sections, toasts)
	}
	sections = append(sections, m.help.View(m.keys))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) viewHeader() string {
	title := headerStyle.Render("RateWatch")
	who := lipgloss.JoinVertical(lipgloss.Left,
		m.header.DisplayName,
		companyStyle.Render(m.header.Company),
	)
	row := lipgloss.JoinHorizontal(lipgloss.Center, title, "  ", avatarStyle.Render(m.header.Initials), " ", who)
	if m.loading {
		row = lipgloss.JoinHorizontal(lipgloss.Center, row, "  ", m.spinner.View())
	}
	return row
}

func (m Model) viewFeed() string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Render("Recent Activity"))
	b.WriteString("\n")
	switch {
	case !m.loaded && m.loading:
		b.WriteString(companyStyle.Render("loading…"))
	case len(m.items) == 0:
		b.WriteString(companyStyle.Render("No recent activity"))
	default:
		for i, item := range m.items {
			if i > 0 {
				b.WriteString("\n")
			}
			icon := lipgloss.NewStyle().Foreground(toneColor(item.Tone)).Render(iconGlyph(item.Icon))
			fmt.Fprintf(&b, "%s %s  %s", icon, item.Message, timestampStyle.Render(item.Timestamp))
		}
	}
	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(m.err.Error()))
	}
	style := panelStyle
	if m.width > 4 {
		style = style.Width(m.width - 4)
	}
	return style.Render(b.String())
}

func (m Model) viewToasts() string {
	toasts := m.queue.List()
	if len(toasts) == 0 {
		return ""
	}
	rendered := make([]string, 0, len(toasts))
	for _, t := range toasts {
		style := toastStyle.BorderForeground(toastColor(t.Type))
		text := t.Message
		if t.Exiting() {
			style = style.Faint(true)
		}
		rendered = append(rendered, style.Render(text))
	}
	return lipgloss.JoinVertical(lipgloss.Right, rendered...)
}

// Run starts the dashboard on the alternate screen until the user quits or
// ctx ends.
func Run(ctx context.Context, fetcher Fetcher, limit int) error {
	p := tea.NewProgram(New(fetcher, nil, limit), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
