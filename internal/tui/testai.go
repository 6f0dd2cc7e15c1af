package tui

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tidwall/gjson"

	"github.com/epe-tools/epeconsole/internal/api"
)

// testResultMsg carries one ad-hoc analysis outcome.
type testResultMsg struct {
	result json.RawMessage
	err    error
}

// testHistoryMsg carries the prior-runs listing.
type testHistoryMsg struct {
	rows []json.RawMessage
	err  error
}

// testAIModel drives the dry-run analysis view: upload a local file with
// synthetic email context and inspect the pipeline's verdict without
// persisting anything.
type testAIModel struct {
	client       *api.Client
	historyLimit int

	form    *Form
	focused bool
	busy    bool
	errText string

	result json.RawMessage

	history    []json.RawMessage
	historyErr error
}

func newTestAIModel(client *api.Client, historyLimit int) testAIModel {
	return testAIModel{
		client:       client,
		historyLimit: historyLimit,
		form:         NewForm("File path", "Subject", "Sender", "Body text"),
		focused:      true,
	}
}

// EnterCmd fires the history fetch when the view is entered. The form is
// usable immediately; history fills in when it lands.
func (m *testAIModel) EnterCmd() tea.Cmd {
	client := m.client
	limit := m.historyLimit
	return func() tea.Msg {
		rows, err := client.FetchTestHistory(context.Background(), limit)
		return testHistoryMsg{rows: rows, err: err}
	}
}

// Editing reports whether keystrokes belong to the form.
func (m testAIModel) Editing() bool { return m.focused }

func (m testAIModel) Update(msg tea.Msg) (testAIModel, tea.Cmd) {
	switch msg := msg.(type) {
	case testResultMsg:
		m.busy = false
		if msg.err != nil {
			m.errText = msg.err.Error()
			return m, nil
		}
		m.result = msg.result
		m.errText = ""
		return m, m.EnterCmd()
	case testHistoryMsg:
		m.history = msg.rows
		m.historyErr = msg.err
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m testAIModel) handleKey(msg tea.KeyMsg) (testAIModel, tea.Cmd) {
	if !m.focused {
		if msg.String() == "i" || msg.String() == "enter" {
			m.focused = true
		}
		return m, nil
	}

	switch msg.String() {
	case "esc":
		m.focused = false
		return m, nil
	case "ctrl+s":
		return m.submit()
	}
	return m, m.form.Update(msg)
}

func (m testAIModel) submit() (testAIModel, tea.Cmd) {
	if m.busy {
		return m, nil
	}
	path := m.form.Value(0)
	if err := RequireField("file path", path); err != nil {
		m.errText = err.Error()
		return m, nil
	}
	m.busy = true
	m.errText = ""

	req := api.TestAnalyzeRequest{
		Filename: filepath.Base(path),
		Subject:  m.form.Value(1),
		Sender:   m.form.Value(2),
		BodyText: m.form.Value(3),
	}
	client := m.client
	return m, func() tea.Msg {
		content, err := os.ReadFile(path)
		if err != nil {
			return testResultMsg{err: fmt.Errorf("read %s: %w", path, err)}
		}
		req.Content = content
		result, err := client.TestAnalyze(context.Background(), req)
		return testResultMsg{result: result, err: err}
	}
}

func (m testAIModel) View(width int) string {
	var b strings.Builder
	b.WriteString(m.form.View())
	b.WriteString("\n\n")

	switch {
	case m.busy:
		b.WriteString(Muted("analyzing..."))
	case m.errText != "":
		b.WriteString(ErrorText(m.errText))
	case len(m.result) > 0:
		b.WriteString(renderTestResult(m.result, width))
	}
	b.WriteString("\n\n")

	b.WriteString(SectionStyle.Render("Recent runs"))
	b.WriteString("\n")
	switch {
	case m.historyErr != nil:
		b.WriteString(RenderError(m.historyErr))
	case m.history == nil:
		b.WriteString(Muted("loading..."))
	default:
		b.WriteString(RenderTable(testHistoryColumns, m.history, width))
	}
	b.WriteString("\n\n")
	b.WriteString(HelpStyle.Render("ctrl+s analyze  tab next field  esc unfocus"))
	return b.String()
}

// renderTestResult lays out the analysis verdict: headline cards, then
// the classification and extraction payloads side by side.
func renderTestResult(result json.RawMessage, width int) string {
	cards := renderCards([]metricCard{
		{"File", orDash(gjson.GetBytes(result, "filename").String())},
		{"Doc type", orDash(gjson.GetBytes(result, "doc_type").String())},
		{"Valid", yesNo(gjson.GetBytes(result, "valid"))},
		{"Needs review", yesNo(gjson.GetBytes(result, "needs_review"))},
	}, width)

	paneWidth := width/2 - 1
	if paneWidth < 24 {
		paneWidth = 24
	}
	classification := RenderJSONPane("Classification", rawOrNil(result, "classification"), paneWidth)
	extraction := RenderJSONPane("Extraction", rawOrNil(result, "extraction"), paneWidth)
	panes := lipgloss.JoinHorizontal(lipgloss.Top, classification, extraction)

	out := cards + "\n" + panes

	if errs := gjson.GetBytes(result, "errors"); errs.IsArray() && len(errs.Array()) > 0 {
		var lines []string
		for _, e := range errs.Array() {
			lines = append(lines, ErrorText("  "+e.String()))
		}
		out += "\n" + SectionStyle.Render("Validation errors") + "\n" + strings.Join(lines, "\n")
	}

	if preview := gjson.GetBytes(result, "text_preview").String(); preview != "" {
		out += "\n" + SectionStyle.Render("Text preview") + "\n" + Muted(truncate(preview, 600))
	}
	return out
}

func yesNo(v gjson.Result) string {
	if !v.Exists() {
		return "-"
	}
	if v.Bool() {
		return "yes"
	}
	return "no"
}

func rawOrNil(data json.RawMessage, path string) json.RawMessage {
	v := gjson.GetBytes(data, path)
	if !v.Exists() {
		return nil
	}
	return json.RawMessage(v.Raw)
}
