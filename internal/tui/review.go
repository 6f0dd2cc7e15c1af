package tui

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/epe-tools/epeconsole/internal/api"
)

// reviewHistoryMsg carries one document's audit trail.
type reviewHistoryMsg struct {
	documentID string
	rows       []json.RawMessage
	err        error
}

type reviewMode int

const (
	reviewList reviewMode = iota
	reviewApprove
	reviewHistory
)

// reviewModel drives the human-review queue: approve with optional
// overrides, reprocess, and per-document history.
type reviewModel struct {
	client       *api.Client
	historyLimit int

	rows   []json.RawMessage
	cursor int
	mode   reviewMode

	approveID string
	form      *Form
	errText   string

	historyID   string
	historyRows []json.RawMessage
	historyErr  error
}

func newReviewModel(client *api.Client, historyLimit int) reviewModel {
	return reviewModel{
		client:       client,
		historyLimit: historyLimit,
		form:         NewForm("Category", "Department", "Priority", "Reason", "Extraction (JSON)"),
	}
}

// SetRows installs a fresh pending listing and clamps the cursor.
func (m *reviewModel) SetRows(rows []json.RawMessage) {
	m.rows = rows
	if m.cursor >= len(rows) {
		m.cursor = 0
	}
}

// Editing reports whether keystrokes belong to the approve form.
func (m reviewModel) Editing() bool { return m.mode == reviewApprove }

func (m reviewModel) selectedID() string {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return ""
	}
	return CellText(m.rows[m.cursor], "id")
}

func (m reviewModel) Update(msg tea.Msg) (reviewModel, tea.Cmd) {
	switch msg := msg.(type) {
	case reviewHistoryMsg:
		if msg.documentID != m.historyID {
			return m, nil
		}
		m.historyRows = msg.rows
		m.historyErr = msg.err
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m reviewModel) handleKey(msg tea.KeyMsg) (reviewModel, tea.Cmd) {
	if m.mode == reviewApprove {
		switch msg.String() {
		case "esc":
			m.mode = reviewList
			m.errText = ""
			return m, nil
		case "ctrl+s":
			return m.submitApprove()
		}
		return m, m.form.Update(msg)
	}

	switch msg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}
	case "esc":
		m.mode = reviewList
	case "a":
		if id := m.selectedID(); id != "" && id != "-" {
			m.mode = reviewApprove
			m.approveID = id
			m.errText = ""
			m.form.Reset()
		}
	case "p":
		if id := m.selectedID(); id != "" && id != "-" {
			client := m.client
			return m, mutationCmd(fmt.Sprintf("reprocess %s", id), func(ctx context.Context) error {
				return client.ReprocessReview(ctx, id)
			})
		}
	case "h":
		if id := m.selectedID(); id != "" && id != "-" {
			m.mode = reviewHistory
			m.historyID = id
			m.historyRows = nil
			m.historyErr = nil
			client := m.client
			limit := m.historyLimit
			return m, func() tea.Msg {
				rows, err := client.FetchReviewHistory(context.Background(), id, limit)
				return reviewHistoryMsg{documentID: id, rows: rows, err: err}
			}
		}
	}
	return m, nil
}

func (m reviewModel) submitApprove() (reviewModel, tea.Cmd) {
	extraction, err := ParseJSONField("extraction", m.form.Value(4))
	if err != nil {
		m.errText = err.Error()
		return m, nil
	}
	opts := api.ApproveOptions{
		Category:   m.form.Value(0),
		Department: m.form.Value(1),
		Priority:   m.form.Value(2),
		Reason:     m.form.Value(3),
		Extraction: extraction,
	}
	id := m.approveID
	client := m.client
	m.mode = reviewList
	m.errText = ""
	return m, mutationCmd(fmt.Sprintf("approve %s", id), func(ctx context.Context) error {
		return client.ApproveReview(ctx, id, opts)
	})
}

func (m reviewModel) View(width int) string {
	switch m.mode {
	case reviewApprove:
		var b strings.Builder
		b.WriteString(SectionStyle.Render("Approve " + m.approveID))
		b.WriteString("\n\n")
		b.WriteString(m.form.View())
		b.WriteString("\n\n")
		if m.errText != "" {
			b.WriteString(ErrorText(m.errText))
			b.WriteString("\n")
		}
		b.WriteString(HelpStyle.Render("ctrl+s save  esc cancel  tab next field"))
		return b.String()
	case reviewHistory:
		var b strings.Builder
		b.WriteString(SectionStyle.Render("History " + m.historyID))
		b.WriteString("\n\n")
		switch {
		case m.historyErr != nil:
			b.WriteString(RenderError(m.historyErr))
		case m.historyRows == nil:
			b.WriteString(Muted("loading..."))
		default:
			b.WriteString(RenderTable(historyColumns, m.historyRows, width))
		}
		b.WriteString("\n\n")
		b.WriteString(HelpStyle.Render("esc back"))
		return b.String()
	}

	var b strings.Builder
	if len(m.rows) == 0 {
		b.WriteString(RenderNoData())
	} else {
		b.WriteString(renderCursorTable(reviewColumns, m.rows, m.cursor, width))
	}
	b.WriteString("\n\n")
	b.WriteString(HelpStyle.Render("a approve  p reprocess  h history  r refresh"))
	return b.String()
}

// renderCursorTable is RenderTable with a selection marker column.
func renderCursorTable(cols []Column, rows []json.RawMessage, cursor, width int) string {
	table := RenderTable(cols, rows, width-2)
	lines := strings.Split(table, "\n")
	for i := range lines {
		marker := "  "
		if i == cursor+2 { // header + divider
			marker = CursorStyle.Render("> ")
		}
		lines[i] = marker + lines[i]
	}
	return strings.Join(lines, "\n")
}
