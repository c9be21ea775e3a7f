// Package model provides Bubble Tea models for CLI commands.
package model

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/bnema/webbridge/internal/application/port"
	"github.com/bnema/webbridge/internal/cli/styles"
	"github.com/bnema/webbridge/internal/domain/entity"
	"github.com/bnema/webbridge/internal/logging"
)

const defaultCallsLimit = 200

// CallsModel is the Bubble Tea model for the interactive call journal browser.
type CallsModel struct {
	// UI components
	help  help.Model
	keys  callsKeyMap
	table table.Model

	// State
	calls         []entity.CallRecord
	shown         []entity.CallRecord
	failuresOnly  bool
	showDetail    bool
	width         int
	height        int
	err           error
	statusMessage string

	// Dependencies
	ctx     context.Context
	journal port.CallJournalReader
	session entity.SessionID
	limit   int
	theme   *styles.Theme
}

// callsKeyMap defines keybindings for the calls browser.
type callsKeyMap struct {
	Up       key.Binding
	Down     key.Binding
	Detail   key.Binding
	Failures key.Binding
	Refresh  key.Binding
	Help     key.Binding
	Quit     key.Binding
}

// ShortHelp returns keybindings for the short help view.
func (k callsKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Detail, k.Failures, k.Quit}
}

// FullHelp returns keybindings for the full help view.
func (k callsKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Detail},
		{k.Failures, k.Refresh},
		{k.Help, k.Quit},
	}
}

func defaultCallsKeyMap() callsKeyMap {
	return callsKeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("↓/j", "down"),
		),
		Detail: key.NewBinding(
			key.WithKeys("enter", "tab"),
			key.WithHelp("enter", "details"),
		),
		Failures: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "failures only"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r", "R"),
			key.WithHelp("r", "refresh"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// CallsModelConfig holds configuration for the calls model.
type CallsModelConfig struct {
	Journal port.CallJournalReader
	// Session restricts the listing to one host run when set.
	Session entity.SessionID
	Limit   int
}

// NewCallsModel creates a new call journal browser.
func NewCallsModel(ctx context.Context, theme *styles.Theme, cfg CallsModelConfig) CallsModel {
	limit := cfg.Limit
	if limit <= 0 {
		limit = defaultCallsLimit
	}

	return CallsModel{
		help:    help.New(),
		keys:    defaultCallsKeyMap(),
		table:   styles.NewStyledTable(theme, styles.CallsTableColumns(), nil, 80, 15),
		width:   80,
		height:  24,
		ctx:     ctx,
		journal: cfg.Journal,
		session: cfg.Session,
		limit:   limit,
		theme:   theme,
	}
}

// Init implements tea.Model.
func (m CallsModel) Init() tea.Cmd {
	return m.loadCalls
}

// callsLoadedMsg is sent when journal rows are loaded.
type callsLoadedMsg struct {
	calls []entity.CallRecord
	err   error
}

func (m CallsModel) loadCalls() tea.Msg {
	log := logging.FromContext(m.ctx)
	log.Debug().Str("session_id", string(m.session)).Msg("loading calls")

	if m.journal == nil {
		return callsLoadedMsg{err: fmt.Errorf("call journal not available")}
	}

	var (
		calls []entity.CallRecord
		err   error
	)
	if m.session != "" {
		calls, err = m.journal.RecentForSession(m.ctx, m.session, m.limit)
	} else {
		calls, err = m.journal.Recent(m.ctx, m.limit)
	}
	if err != nil {
		log.Error().Err(err).Msg("failed to load calls")
		return callsLoadedMsg{err: err}
	}

	log.Debug().Int("count", len(calls)).Msg("loaded calls")
	return callsLoadedMsg{calls: calls}
}

// Update implements tea.Model.
func (m CallsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.table.SetWidth(msg.Width)
		m.table.SetHeight(m.tableHeight())
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case callsLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.calls = msg.calls
		m.applyFilter()
		return m, nil
	}

	return m, nil
}

func (m CallsModel) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Detail):
		m.showDetail = !m.showDetail
		m.table.SetHeight(m.tableHeight())
		return m, nil

	case key.Matches(msg, m.keys.Failures):
		m.failuresOnly = !m.failuresOnly
		m.applyFilter()
		if m.failuresOnly {
			m.statusMessage = "Showing failed calls only"
		} else {
			m.statusMessage = ""
		}
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		m.statusMessage = ""
		return m, m.loadCalls

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *CallsModel) applyFilter() {
	m.shown = m.shown[:0]
	for _, c := range m.calls {
		if m.failuresOnly && c.Status == entity.StatusOK {
			continue
		}
		m.shown = append(m.shown, c)
	}
	m.table.SetRows(styles.CallRows(m.shown))
	m.table.SetCursor(0)
}

func (m CallsModel) tableHeight() int {
	// header, stats, status and help lines
	h := m.height - 8
	if m.showDetail {
		h -= 6
	}
	if h < 3 {
		h = 3
	}
	return h
}

// Selected returns the call under the cursor.
func (m CallsModel) Selected() (entity.CallRecord, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.shown) {
		return entity.CallRecord{}, false
	}
	return m.shown[i], true
}

// View implements tea.Model.
func (m CallsModel) View() string {
	t := m.theme
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")

	if m.err != nil {
		b.WriteString(t.ErrorStyle.Render(fmt.Sprintf("%s Error: %v", styles.IconX, m.err)))
		b.WriteString("\n\n")
	}

	if m.statusMessage != "" {
		b.WriteString(t.Subtle.Render(m.statusMessage))
		b.WriteString("\n\n")
	}

	if len(m.shown) == 0 {
		b.WriteString(t.Subtle.Render("  No journaled calls found."))
		b.WriteString("\n")
	} else {
		b.WriteString(m.table.View())
		b.WriteString("\n")
		if m.showDetail {
			b.WriteString(m.renderDetail())
		}
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))

	return b.String()
}

func (m CallsModel) renderHeader() string {
	t := m.theme

	iconStyle := lipgloss.NewStyle().Foreground(t.Accent)
	titleStyle := t.Title.MarginLeft(1)

	title := "Calls"
	if m.session != "" {
		title += " of " + string(m.session)
	}

	var failed int
	for _, c := range m.calls {
		if c.Status != entity.StatusOK {
			failed++
		}
	}

	stats := t.Subtle.Render(fmt.Sprintf("  %s %d ok  %s %d failed",
		styles.IconCheck, len(m.calls)-failed,
		styles.IconX, failed,
	))
	if m.failuresOnly {
		stats += " " + t.Badge.Render(styles.IconFilter+" failures")
	}

	return iconStyle.Render(styles.IconDatabase) + titleStyle.Render(title) + stats
}

func (m CallsModel) renderDetail() string {
	c, ok := m.Selected()
	if !ok {
		return ""
	}
	t := m.theme

	field := func(k, v string) string {
		return fmt.Sprintf("  %s %s\n", t.Subtle.Render(fmt.Sprintf("%-9s", k)), v)
	}

	var b strings.Builder
	b.WriteString(field("function", t.Highlight.Render(c.Function)))
	b.WriteString(field("status", t.StatusStyle(string(c.Status)).Render(string(c.Status))))
	b.WriteString(field("view", fmt.Sprintf("%d", c.ViewID)))
	b.WriteString(field("session", string(c.SessionID)))
	b.WriteString(field("at", c.CreatedAt.Local().Format("2006-01-02 15:04:05.000")))
	if c.Error != "" {
		b.WriteString(field("error", t.ErrorStyle.Render(c.Error)))
	}
	return b.String()
}
