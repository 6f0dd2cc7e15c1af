package tui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	log "github.com/sirupsen/logrus"

	"github.com/epe-tools/epeconsole/internal/api"
)

// loginResultMsg carries the outcome of a login attempt.
type loginResultMsg struct {
	token string
	err   error
}

// loginModel is the credential gate shown before any view is reachable.
type loginModel struct {
	client     *api.Client
	form       *Form
	submitting bool
	errText    string
}

func newLoginModel(client *api.Client) loginModel {
	form := NewForm("Email", "Password")
	form.SetPassword(1)
	return loginModel{client: client, form: form}
}

func (m loginModel) Update(msg tea.Msg) (loginModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.submitting {
			return m, nil
		}
		if msg.String() == "enter" {
			email := m.form.Value(0)
			password := m.form.Value(1)
			if email == "" || password == "" {
				m.errText = "email and password are required"
				return m, nil
			}
			m.submitting = true
			m.errText = ""
			return m, loginCmd(m.client, email, password)
		}
	case loginResultMsg:
		m.submitting = false
		if msg.err != nil {
			m.errText = msg.err.Error()
			log.WithError(msg.err).Warn("login failed")
			return m, nil
		}
		m.form.SetValue(1, "")
		return m, nil
	}
	return m, m.form.Update(msg)
}

func loginCmd(client *api.Client, email, password string) tea.Cmd {
	return func() tea.Msg {
		token, err := client.Login(context.Background(), email, password)
		return loginResultMsg{token: token, err: err}
	}
}

func (m loginModel) View(width int) string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render("EPE Console"))
	b.WriteString("\n")
	b.WriteString(SubtitleStyle.Render(m.client.BaseURL()))
	b.WriteString("\n\n")
	b.WriteString(m.form.View())
	b.WriteString("\n\n")
	switch {
	case m.submitting:
		b.WriteString(Muted("signing in..."))
	case m.errText != "":
		b.WriteString(ErrorText(m.errText))
	default:
		b.WriteString(HelpLine(DefaultKeyMap().Select, DefaultKeyMap().Quit))
	}

	return PanelBorder.Width(min(width-2, 60)).Render(b.String())
}
