// Package tui implements the terminal console for the EPE ingestion
// pipeline: a login gate, a sidebar of views, and one submodel per
// interactive workflow. All rendering goes through the pure helpers in
// render.go; all network work runs in commands.
package tui

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	log "github.com/sirupsen/logrus"

	"github.com/epe-tools/epeconsole/internal/api"
	"github.com/epe-tools/epeconsole/internal/buildinfo"
	"github.com/epe-tools/epeconsole/internal/config"
	"github.com/epe-tools/epeconsole/internal/session"
)

// viewDataMsg delivers a completed fetch for one view. gen stamps the
// request so responses from a superseded view switch are dropped instead
// of overwriting newer data.
type viewDataMsg struct {
	gen     int
	view    View
	summary *api.Summary
	usage   *api.UsageStats
	rows    []json.RawMessage
	bundle  *api.ConfigsBundle
}

type viewErrMsg struct {
	gen  int
	view View
	err  error
}

// mutationMsg reports a completed write. Unless noReload is set, success
// triggers a full reload of the current view so the screen always shows
// backend truth, never an optimistic local edit.
type mutationMsg struct {
	label    string
	err      error
	noReload bool
}

// mutationCmd wraps a gateway write into a command producing mutationMsg.
func mutationCmd(label string, call func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		return mutationMsg{label: label, err: call(context.Background())}
	}
}

// configUpdatedMsg is injected from the fsnotify watcher when the config
// file changes on disk.
type configUpdatedMsg struct {
	cfg *config.Config
}

// Model is the root bubbletea model.
type Model struct {
	cfg    *config.Config
	client *api.Client
	store  *session.Store
	keys   KeyMap

	authenticated bool
	login         loginModel

	view    View
	gen     int
	loading bool
	loadErr error

	summary *api.Summary
	usage   *api.UsageStats
	rows    []json.RawMessage

	review  reviewModel
	configs configsModel
	testai  testAIModel

	spin   spinner.Model
	status string

	width  int
	height int
}

// New builds the root model. The session store decides whether the login
// gate shows: a durable token is trusted until the backend rejects it.
func New(cfg *config.Config, client *api.Client, store *session.Store) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(Accent)

	return Model{
		cfg:           cfg,
		client:        client,
		store:         store,
		keys:          DefaultKeyMap(),
		authenticated: store.Authenticated(),
		loading:       store.Authenticated(),
		login:         newLoginModel(client),
		review:        newReviewModel(client, cfg.HistoryLimit),
		configs:       newConfigsModel(client),
		testai:        newTestAIModel(client, cfg.HistoryLimit),
		spin:          sp,
		width:         100,
		height:        30,
	}
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spin.Tick}
	if m.authenticated {
		cmds = append(cmds, m.loadView(m.view, m.gen))
	}
	return tea.Batch(cmds...)
}

// loadView returns the fetch command for a view, stamped with gen.
// Test AI has no primary fetch; its history loads via EnterCmd.
func (m Model) loadView(v View, gen int) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx := context.Background()
		switch v {
		case ViewSummary:
			s, err := client.FetchSummary(ctx)
			if err != nil {
				return viewErrMsg{gen: gen, view: v, err: err}
			}
			return viewDataMsg{gen: gen, view: v, summary: &s}
		case ViewUsage:
			u, err := client.FetchUsage(ctx)
			if err != nil {
				return viewErrMsg{gen: gen, view: v, err: err}
			}
			return viewDataMsg{gen: gen, view: v, usage: &u}
		case ViewEmails:
			rows, err := client.FetchEmails(ctx)
			if err != nil {
				return viewErrMsg{gen: gen, view: v, err: err}
			}
			return viewDataMsg{gen: gen, view: v, rows: rows}
		case ViewDocuments:
			rows, err := client.FetchDocuments(ctx)
			if err != nil {
				return viewErrMsg{gen: gen, view: v, err: err}
			}
			return viewDataMsg{gen: gen, view: v, rows: rows}
		case ViewReview:
			rows, err := client.FetchReview(ctx)
			if err != nil {
				return viewErrMsg{gen: gen, view: v, err: err}
			}
			return viewDataMsg{gen: gen, view: v, rows: rows}
		case ViewConfigs:
			bundle, err := client.FetchConfigs(ctx)
			if err != nil {
				return viewErrMsg{gen: gen, view: v, err: err}
			}
			return viewDataMsg{gen: gen, view: v, bundle: bundle}
		}
		return viewDataMsg{gen: gen, view: v}
	}
}

// switchView moves to a view and kicks off its load, invalidating any
// in-flight fetch for the previous one.
func (m *Model) switchView(v View) tea.Cmd {
	m.view = v
	m.gen++
	m.loadErr = nil
	m.status = ""

	if v == ViewTestAI {
		m.loading = false
		return m.testai.EnterCmd()
	}
	m.loading = true
	return tea.Batch(m.loadView(v, m.gen), m.spin.Tick)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case configUpdatedMsg:
		m.cfg = msg.cfg
		m.client.SetBaseURL(msg.cfg.BaseURL)
		m.client.SetRequestLog(msg.cfg.RequestLog)
		log.Info("configuration reloaded")
		return m, nil

	case loginResultMsg:
		var cmd tea.Cmd
		m.login, cmd = m.login.Update(msg)
		if msg.err == nil && msg.token != "" {
			if err := m.store.Set(msg.token); err != nil {
				log.WithError(err).Warn("persist session token")
			}
			m.authenticated = true
			return m, tea.Batch(cmd, m.switchView(ViewSummary))
		}
		return m, cmd

	case viewDataMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		m.loading = false
		m.loadErr = nil
		switch msg.view {
		case ViewSummary:
			m.summary = msg.summary
		case ViewUsage:
			m.usage = msg.usage
		case ViewEmails, ViewDocuments:
			m.rows = msg.rows
		case ViewReview:
			m.review.SetRows(msg.rows)
		case ViewConfigs:
			m.configs.SetBundle(msg.bundle)
		}
		return m, nil

	case viewErrMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		m.loading = false
		m.loadErr = msg.err
		if apiErr, ok := msg.err.(*api.APIError); ok && apiErr.Status == 401 {
			return m, m.logoutCmd()
		}
		return m, nil

	case mutationMsg:
		if msg.err != nil {
			m.status = ErrorText(fmt.Sprintf("%s: %s", msg.label, msg.err))
			if apiErr, ok := msg.err.(*api.APIError); ok && apiErr.Status == 401 {
				return m, m.logoutCmd()
			}
			return m, nil
		}
		m.status = Success(msg.label + ": ok")
		if msg.noReload {
			return m, nil
		}
		m.gen++
		m.loading = true
		return m, tea.Batch(m.loadView(m.view, m.gen), m.spin.Tick)

	case reviewHistoryMsg:
		var cmd tea.Cmd
		m.review, cmd = m.review.Update(msg)
		return m, cmd

	case testResultMsg, testHistoryMsg:
		var cmd tea.Cmd
		m.testai, cmd = m.testai.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	if !m.authenticated {
		var cmd tea.Cmd
		m.login, cmd = m.login.Update(msg)
		return m, cmd
	}

	// While a form is active, every key except the escape hatches above
	// belongs to the submodel.
	if m.activeEditing() {
		return m.forwardKey(msg)
	}

	switch {
	case msg.String() >= "1" && msg.String() <= "7":
		idx := int(msg.String()[0] - '1')
		views := AllViews()
		if idx < len(views) && views[idx] != m.view {
			return m, m.switchView(views[idx])
		}
		return m, nil
	case msg.String() == "ctrl+n":
		views := AllViews()
		return m, m.switchView(views[(int(m.view)+1)%len(views)])
	case msg.String() == "ctrl+p":
		views := AllViews()
		return m, m.switchView(views[(int(m.view)-1+len(views))%len(views)])
	case msg.String() == "r":
		return m, m.switchView(m.view)
	case msg.String() == "ctrl+l":
		return m, m.logoutCmd()
	case msg.String() == "q":
		return m, tea.Quit
	}

	return m.forwardKey(msg)
}

func (m Model) activeEditing() bool {
	switch m.view {
	case ViewReview:
		return m.review.Editing()
	case ViewConfigs:
		return m.configs.Editing()
	case ViewTestAI:
		return m.testai.Editing()
	}
	return false
}

func (m Model) forwardKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case ViewReview:
		m.review, cmd = m.review.Update(msg)
	case ViewConfigs:
		m.configs, cmd = m.configs.Update(msg)
	case ViewTestAI:
		m.testai, cmd = m.testai.Update(msg)
	}
	return m, cmd
}

// logoutCmd clears the durable token and drops back to the login gate.
// Also the landing spot when the backend answers 401: the stored token is
// stale and retrying with it would loop.
func (m *Model) logoutCmd() tea.Cmd {
	if err := m.store.Clear(); err != nil {
		log.WithError(err).Warn("clear session token")
	}
	m.authenticated = false
	m.login = newLoginModel(m.client)
	m.gen++
	m.loading = false
	m.loadErr = nil
	m.status = ""
	return nil
}

func (m Model) View() string {
	if !m.authenticated {
		content := m.login.View(m.width)
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}

	sidebar := m.renderSidebar()
	content := m.renderContent()
	body := lipgloss.JoinHorizontal(lipgloss.Top, sidebar, content)
	return body + "\n" + m.renderFooter()
}

func (m Model) renderSidebar() string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render("EPE"))
	b.WriteString("\n\n")
	for i, v := range AllViews() {
		line := fmt.Sprintf("%d %s", i+1, v.Title())
		if v == m.view {
			b.WriteString(CursorStyle.Render("> " + line))
		} else {
			b.WriteString(Muted("  " + line))
		}
		b.WriteString("\n")
	}
	return SidebarBorder.Height(m.height - 4).Render(b.String())
}

func (m Model) renderContent() string {
	contentWidth := m.width - 20
	if contentWidth < 40 {
		contentWidth = 40
	}

	var body string
	switch {
	case m.loading:
		body = m.spin.View() + Muted(" loading...")
	case m.loadErr != nil:
		body = RenderError(m.loadErr)
	default:
		switch m.view {
		case ViewSummary:
			if m.summary == nil {
				body = RenderNoData()
			} else {
				body = RenderSummary(*m.summary, contentWidth)
			}
		case ViewUsage:
			if m.usage == nil {
				body = RenderNoData()
			} else {
				body = RenderUsage(*m.usage, contentWidth)
			}
		case ViewEmails:
			body = RenderTable(emailColumns, m.rows, contentWidth)
		case ViewDocuments:
			body = RenderTable(documentColumns, m.rows, contentWidth)
		case ViewReview:
			body = m.review.View(contentWidth)
		case ViewConfigs:
			body = m.configs.View(contentWidth)
		case ViewTestAI:
			body = m.testai.View(contentWidth)
		}
	}

	header := TitleStyle.Render(m.view.Title())
	return PanelBorder.Width(contentWidth).Height(m.height - 4).Render(header + "\n\n" + body)
}

func (m Model) renderFooter() string {
	left := HelpLine(m.keys.Refresh, m.keys.Logout, m.keys.Quit) +
		HelpStyle.Render("  1-7 views")
	right := Dim("v" + buildinfo.Version)
	if m.status != "" {
		left = m.status + "  " + left
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	return " " + left + strings.Repeat(" ", gap) + right
}
