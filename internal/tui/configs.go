package tui

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/epe-tools/epeconsole/internal/api"
)

type configsPanel int

const (
	panelAccounts configsPanel = iota
	panelRules
	panelPrompts
	panelSchemas
	panelRoutes
	panelProfiles
	panelNotifications
)

var panelTitles = []string{
	"Accounts", "Rules", "Prompts", "Schemas", "Routes", "Profiles", "Notifications",
}

// configsModel drives the configuration view: seven panels over one
// atomically fetched bundle, each panel with its own create/update form.
type configsModel struct {
	client *api.Client
	bundle *api.ConfigsBundle

	panel   configsPanel
	cursor  int
	editing bool
	form    *Form
	errText string
}

func newConfigsModel(client *api.Client) configsModel {
	return configsModel{client: client}
}

// SetBundle installs a freshly fetched configuration bundle.
func (m *configsModel) SetBundle(b *api.ConfigsBundle) {
	m.bundle = b
	if m.cursor >= len(m.panelRows()) {
		m.cursor = 0
	}
}

// Editing reports whether keystrokes belong to the active form.
func (m configsModel) Editing() bool { return m.editing }

func (m configsModel) panelRows() []json.RawMessage {
	if m.bundle == nil {
		return nil
	}
	switch m.panel {
	case panelAccounts:
		return m.bundle.Accounts
	case panelRules:
		return m.bundle.Rules
	case panelPrompts:
		return m.bundle.Prompts
	case panelSchemas:
		return m.bundle.Schemas
	case panelRoutes:
		return m.bundle.Routes
	case panelProfiles:
		return m.bundle.Profiles
	}
	return nil
}

func (m configsModel) panelColumns() []Column {
	switch m.panel {
	case panelAccounts:
		return accountColumns
	case panelRules:
		return ruleColumns
	case panelPrompts:
		return promptColumns
	case panelSchemas:
		return schemaColumns
	case panelRoutes:
		return routeColumns
	case panelProfiles:
		return profileColumns
	}
	return nil
}

func (m configsModel) formLabels() []string {
	switch m.panel {
	case panelAccounts:
		return []string{"Name", "IMAP host", "IMAP port", "IMAP username", "IMAP password", "Use SSL (yes/no)", "Sync interval (min)"}
	case panelRules:
		return []string{"Rule name", "Definition (JSON)"}
	case panelPrompts:
		return []string{"Name", "Prompt"}
	case panelSchemas:
		return []string{"Doc type", "Schema (JSON)"}
	case panelRoutes:
		return []string{"Doc type", "Category", "Priority", "Department", "Emails (comma separated)", "Webhook URL"}
	case panelProfiles:
		return []string{"Doc type", "Category", "Department", "Priority"}
	case panelNotifications:
		return []string{"Emails (comma separated)", "Email webhook URL", "WhatsApp numbers (comma separated)", "WhatsApp webhook URL", "Telegram users (comma separated)", "Telegram webhook URL"}
	}
	return nil
}

func (m configsModel) selectedAccountID() string {
	if m.panel != panelAccounts || m.bundle == nil {
		return ""
	}
	if m.cursor < 0 || m.cursor >= len(m.bundle.Accounts) {
		return ""
	}
	return CellText(m.bundle.Accounts[m.cursor], "id")
}

func (m configsModel) Update(msg tea.Msg) (configsModel, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if m.editing {
		switch key.String() {
		case "esc":
			m.editing = false
			m.errText = ""
			return m, nil
		case "ctrl+s":
			return m.submit()
		}
		return m, m.form.Update(key)
	}

	switch key.String() {
	case "tab", "l", "right":
		m.panel = (m.panel + 1) % configsPanel(len(panelTitles))
		m.cursor = 0
	case "shift+tab", "left":
		m.panel = (m.panel - 1 + configsPanel(len(panelTitles))) % configsPanel(len(panelTitles))
		m.cursor = 0
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.panelRows())-1 {
			m.cursor++
		}
	case "n":
		m.form = NewForm(m.formLabels()...)
		if m.panel == panelAccounts {
			m.form.SetPassword(4)
		}
		if m.panel == panelNotifications {
			m.prefillNotifications()
		}
		m.editing = true
		m.errText = ""
	case "ctrl+t":
		if id := m.selectedAccountID(); id != "" && id != "-" {
			client := m.client
			return m, func() tea.Msg {
				ok, err := client.TestAccount(context.Background(), id)
				if err == nil && !ok {
					err = fmt.Errorf("connection test failed")
				}
				return mutationMsg{label: fmt.Sprintf("test %s", id), err: err, noReload: true}
			}
		}
	case "ctrl+y":
		if id := m.selectedAccountID(); id != "" && id != "-" {
			client := m.client
			return m, func() tea.Msg {
				status, err := client.SyncAccount(context.Background(), id)
				if err == nil {
					return mutationMsg{label: fmt.Sprintf("sync %s: %s", id, status), noReload: true}
				}
				return mutationMsg{label: fmt.Sprintf("sync %s", id), err: err, noReload: true}
			}
		}
	}
	return m, nil
}

// prefillNotifications seeds the singleton form from the fetched settings
// so saving does not silently blank untouched targets.
func (m *configsModel) prefillNotifications() {
	if m.bundle == nil || len(m.bundle.Notifications) == 0 {
		return
	}
	var n api.NotificationSettings
	if err := json.Unmarshal(m.bundle.Notifications, &n); err != nil {
		return
	}
	m.form.SetValue(0, strings.Join(n.Emails, ", "))
	m.form.SetValue(1, n.EmailWebhookURL)
	m.form.SetValue(2, strings.Join(n.WhatsappNumbers, ", "))
	m.form.SetValue(3, n.WhatsappWebhookURL)
	m.form.SetValue(4, strings.Join(n.TelegramUsers, ", "))
	m.form.SetValue(5, n.TelegramWebhookURL)
}

func (m configsModel) submit() (configsModel, tea.Cmd) {
	label, call, err := m.buildSubmit()
	if err != nil {
		m.errText = err.Error()
		return m, nil
	}
	m.editing = false
	m.errText = ""
	return m, mutationCmd(label, call)
}

// buildSubmit validates the active form and returns the gateway call for
// it. Validation failures never reach the gateway.
func (m configsModel) buildSubmit() (string, func(context.Context) error, error) {
	client := m.client
	switch m.panel {
	case panelAccounts:
		for i, name := range []string{"name", "imap host", "imap port", "imap username", "imap password"} {
			if err := RequireField(name, m.form.Value(i)); err != nil {
				return "", nil, err
			}
		}
		port, err := strconv.Atoi(m.form.Value(2))
		if err != nil {
			return "", nil, &ValidationError{Field: "imap port", Reason: "must be a number"}
		}
		interval, err := strconv.Atoi(m.form.Value(6))
		if err != nil || !api.ValidSyncInterval(interval) {
			return "", nil, &ValidationError{Field: "sync interval", Reason: "must be one of 5, 15, 30, 60, 240, 720"}
		}
		p := api.AccountPayload{
			Name:                m.form.Value(0),
			IMAPHost:            m.form.Value(1),
			IMAPPort:            port,
			IMAPUsername:        m.form.Value(3),
			IMAPPassword:        m.form.Value(4),
			UseSSL:              parseYesNo(m.form.Value(5)),
			SyncIntervalMinutes: interval,
		}
		return "save account " + p.Name, func(ctx context.Context) error { return client.SaveAccount(ctx, p) }, nil

	case panelRules:
		if err := RequireField("rule name", m.form.Value(0)); err != nil {
			return "", nil, err
		}
		def, err := ParseJSONField("definition", m.form.Value(1))
		if err != nil {
			return "", nil, err
		}
		if def == nil {
			return "", nil, &ValidationError{Field: "definition", Reason: "required"}
		}
		p := api.RulePayload{RuleName: m.form.Value(0), Definition: def}
		return "save rule " + p.RuleName, func(ctx context.Context) error { return client.SaveRule(ctx, p) }, nil

	case panelPrompts:
		if err := RequireField("name", m.form.Value(0)); err != nil {
			return "", nil, err
		}
		if err := RequireField("prompt", m.form.Value(1)); err != nil {
			return "", nil, err
		}
		p := api.PromptPayload{Name: m.form.Value(0), Prompt: m.form.Value(1)}
		return "save prompt " + p.Name, func(ctx context.Context) error { return client.SavePrompt(ctx, p) }, nil

	case panelSchemas:
		if err := RequireField("doc type", m.form.Value(0)); err != nil {
			return "", nil, err
		}
		schema, err := ParseJSONField("schema", m.form.Value(1))
		if err != nil {
			return "", nil, err
		}
		if schema == nil {
			return "", nil, &ValidationError{Field: "schema", Reason: "required"}
		}
		p := api.SchemaPayload{DocType: m.form.Value(0), Schema: schema}
		return "save schema " + p.DocType, func(ctx context.Context) error { return client.SaveSchema(ctx, p) }, nil

	case panelRoutes:
		emails := splitCSV(m.form.Value(4))
		if len(emails) == 0 && m.form.Value(5) == "" {
			return "", nil, &ValidationError{Field: "route", Reason: "needs emails or a webhook URL"}
		}
		p := api.RoutePayload{
			DocType:    m.form.Value(0),
			Category:   m.form.Value(1),
			Priority:   m.form.Value(2),
			Department: m.form.Value(3),
			Emails:     emails,
			WebhookURL: m.form.Value(5),
		}
		return "save route", func(ctx context.Context) error { return client.SaveRoute(ctx, p) }, nil

	case panelProfiles:
		if err := RequireField("doc type", m.form.Value(0)); err != nil {
			return "", nil, err
		}
		p := api.ProfilePayload{
			DocType:    m.form.Value(0),
			Category:   m.form.Value(1),
			Department: m.form.Value(2),
			Priority:   m.form.Value(3),
		}
		return "save profile " + p.DocType, func(ctx context.Context) error { return client.SaveProfile(ctx, p) }, nil

	case panelNotifications:
		n := api.NotificationSettings{
			Emails:             splitCSV(m.form.Value(0)),
			EmailWebhookURL:    m.form.Value(1),
			WhatsappNumbers:    splitCSV(m.form.Value(2)),
			WhatsappWebhookURL: m.form.Value(3),
			TelegramUsers:      splitCSV(m.form.Value(4)),
			TelegramWebhookURL: m.form.Value(5),
		}
		return "save notifications", func(ctx context.Context) error { return client.SaveNotifications(ctx, n) }, nil
	}
	return "", nil, &ValidationError{Field: "panel", Reason: "unknown"}
}

func parseYesNo(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "y", "true", "1":
		return true
	}
	return false
}

func (m configsModel) View(width int) string {
	var b strings.Builder

	var tabs []string
	for i, title := range panelTitles {
		if configsPanel(i) == m.panel {
			tabs = append(tabs, SectionStyle.Render(title))
		} else {
			tabs = append(tabs, Dim(title))
		}
	}
	b.WriteString(strings.Join(tabs, Dim(" | ")))
	b.WriteString("\n\n")

	if m.editing {
		heading := "New " + strings.TrimSuffix(panelTitles[m.panel], "s")
		if m.panel == panelNotifications {
			heading = "Edit Notifications"
		}
		b.WriteString(SectionStyle.Render(heading))
		b.WriteString("\n\n")
		b.WriteString(m.form.View())
		b.WriteString("\n\n")
		if m.errText != "" {
			b.WriteString(ErrorText(m.errText))
			b.WriteString("\n")
		}
		b.WriteString(HelpStyle.Render("ctrl+s save  esc cancel  tab next field"))
		return b.String()
	}

	if m.panel == panelNotifications {
		raw := json.RawMessage(nil)
		if m.bundle != nil {
			raw = m.bundle.Notifications
		}
		b.WriteString(RenderJSONPane("Notification targets", raw, width))
		b.WriteString("\n\n")
		b.WriteString(HelpStyle.Render("n edit  tab next panel"))
		return b.String()
	}

	rows := m.panelRows()
	if len(rows) == 0 {
		b.WriteString(RenderNoData())
	} else {
		b.WriteString(renderCursorTable(m.panelColumns(), rows, m.cursor, width))
	}
	b.WriteString("\n\n")
	help := "n new  tab next panel  r refresh"
	if m.panel == panelAccounts {
		help = "n new  ctrl+t test  ctrl+y sync  tab next panel  r refresh"
	}
	b.WriteString(HelpStyle.Render(help))
	return b.String()
}
