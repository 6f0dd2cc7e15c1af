package tui

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/tidwall/gjson"

	"github.com/epe-tools/epeconsole/internal/api"
)

// Renderers are pure: fetched data and a width in, a display string out.
// Model state never leaks in here, which keeps every view testable
// without a terminal.

// Column describes one tabular column: the gjson path used to resolve the
// cell value and the header label. Nested fields flatten naturally
// ("classification.category").
type Column struct {
	Key   string
	Label string
}

// StatusClass buckets pipeline status strings for display.
type StatusClass string

const (
	StatusDone       StatusClass = "done"
	StatusFailed     StatusClass = "failed"
	StatusReview     StatusClass = "review"
	StatusProcessing StatusClass = "processing"
)

// ClassifyStatus maps a raw status string to its display class using
// case-insensitive substring matching, checked in priority order; anything
// unrecognized counts as processing.
func ClassifyStatus(status string) StatusClass {
	s := strings.ToLower(status)
	switch {
	case strings.Contains(s, "done"):
		return StatusDone
	case strings.Contains(s, "failed"):
		return StatusFailed
	case strings.Contains(s, "review"):
		return StatusReview
	default:
		return StatusProcessing
	}
}

func badgeFor(class StatusClass, text string) string {
	switch class {
	case StatusDone:
		return badgeDone.Render(text)
	case StatusFailed:
		return badgeFailed.Render(text)
	case StatusReview:
		return badgeReview.Render(text)
	default:
		return badgeProcessing.Render(text)
	}
}

// CellText resolves one cell of a raw JSON row. Missing or null values
// render as a dash, booleans as yes/no, objects and arrays as compact JSON.
func CellText(row json.RawMessage, key string) string {
	v := gjson.GetBytes(row, key)
	switch {
	case !v.Exists(), v.Type == gjson.Null:
		return "-"
	case v.Type == gjson.True:
		return "yes"
	case v.Type == gjson.False:
		return "no"
	case v.IsObject(), v.IsArray():
		return v.Raw
	default:
		return v.String()
	}
}

func truncate(s string, max int) string {
	if max < 4 {
		max = 4
	}
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

// RenderNoData is the placeholder shown instead of an empty table.
func RenderNoData() string {
	return Dim("no data")
}

// RenderError renders a single failure line for a view or region.
func RenderError(err error) string {
	return ErrorText("error: " + err.Error())
}

// RenderTable renders one row per item under a header row. An empty row
// set yields the no-data placeholder, never an empty table.
func RenderTable(cols []Column, rows []json.RawMessage, width int) string {
	if len(rows) == 0 {
		return RenderNoData()
	}
	if width < 20 {
		width = 20
	}

	colWidth := width / len(cols)
	if colWidth < 8 {
		colWidth = 8
	}
	if colWidth > 32 {
		colWidth = 32
	}
	cellContent := colWidth - 1

	var b strings.Builder
	for _, col := range cols {
		b.WriteString(TableHeaderStyle.Width(colWidth).Render(truncate(strings.ToUpper(col.Label), cellContent)))
	}
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(BorderDim).Render(strings.Repeat("─", colWidth*len(cols))))
	b.WriteString("\n")

	cellStyle := lipgloss.NewStyle().Foreground(Text).Width(colWidth)
	for _, row := range rows {
		for _, col := range cols {
			if strings.Contains(col.Key, "status") {
				// Classify on the full value, truncate only for display;
				// badge padding eats two columns of the cell.
				full := CellText(row, col.Key)
				badge := badgeFor(ClassifyStatus(full), truncate(full, cellContent-2))
				b.WriteString(lipgloss.NewStyle().Width(colWidth).Render(badge))
			} else {
				b.WriteString(cellStyle.Render(truncate(CellText(row, col.Key), cellContent)))
			}
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

type metricCard struct {
	label string
	value string
}

func renderCards(cards []metricCard, width int) string {
	perRow := 3
	if width < 70 {
		perRow = 2
	}
	if width < 40 {
		perRow = 1
	}
	cardWidth := (width-perRow)/perRow - 4
	if cardWidth < 14 {
		cardWidth = 14
	}

	labelStyle := lipgloss.NewStyle().Foreground(TextMuted)
	valueStyle := lipgloss.NewStyle().Foreground(Accent).Bold(true)

	var rows []string
	for i := 0; i < len(cards); i += perRow {
		end := i + perRow
		if end > len(cards) {
			end = len(cards)
		}
		var row []string
		for _, c := range cards[i:end] {
			content := labelStyle.Render(c.label) + "\n" + valueStyle.Render(c.value)
			row = append(row, CardBorder.Width(cardWidth).Render(content))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
	}
	return strings.Join(rows, "\n")
}

func formatPercent(v float64) string {
	return fmt.Sprintf("%.2f%%", v)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// RenderSummary renders the dashboard summary metric cards.
func RenderSummary(s api.Summary, width int) string {
	return renderCards([]metricCard{
		{"Emails", fmt.Sprintf("%d", s.Emails)},
		{"Documents", fmt.Sprintf("%d", s.Documents)},
		{"Done documents", fmt.Sprintf("%d", s.DoneDocuments)},
		{"Needs review", fmt.Sprintf("%d", s.NeedsReview)},
		{"Review rate", formatPercent(s.ReviewRate)},
		{"Approval rate", formatPercent(s.ApprovalRate)},
	}, width)
}

// RenderUsage renders the usage metric cards for the current period.
func RenderUsage(u api.UsageStats, width int) string {
	return renderCards([]metricCard{
		{"Period", orDash(u.Period)},
		{"Emails processed", fmt.Sprintf("%d", u.EmailsProcessed)},
		{"LLM calls", fmt.Sprintf("%d", u.LLMCalls)},
		{"Manual reviews", fmt.Sprintf("%d", u.ManualReviews)},
		{"Success rate", formatPercent(u.SuccessRate)},
		{"Avg processing", fmt.Sprintf("%.2fs", u.AvgProcessingSeconds)},
	}, width)
}

// RenderJSONPane renders a titled, pretty-printed JSON block. Values that
// are not valid JSON are shown verbatim.
func RenderJSONPane(title string, raw json.RawMessage, width int) string {
	body := strings.TrimSpace(string(raw))
	if body == "" {
		body = "-"
	} else {
		var buf bytes.Buffer
		if err := json.Indent(&buf, raw, "", "  "); err == nil {
			body = buf.String()
		}
	}
	pane := SectionStyle.Render(title) + "\n" + lipgloss.NewStyle().Foreground(Text).Render(body)
	return CardBorder.Width(width - 4).Render(pane)
}
