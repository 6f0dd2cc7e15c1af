package tui

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/epe-tools/epeconsole/internal/api"
)

func summaryFixture() api.Summary {
	return api.Summary{
		Emails:        12,
		Documents:     30,
		DoneDocuments: 25,
		NeedsReview:   5,
		ReviewRate:    16.67,
		ApprovalRate:  80,
	}
}

func summaryZero() api.Summary { return api.Summary{} }

func usageFixture() api.UsageStats {
	return api.UsageStats{
		Period:               "2026-08",
		EmailsProcessed:      150,
		LLMCalls:             320,
		ManualReviews:        18,
		SuccessRate:          95.5,
		AvgProcessingSeconds: 3.2,
	}
}

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		status string
		want   StatusClass
	}{
		{"DONE", StatusDone},
		{"done", StatusDone},
		{"done_with_warnings", StatusDone},
		{"FAILED", StatusFailed},
		{"extraction_failed", StatusFailed},
		{"NEEDS_REVIEW", StatusReview},
		{"review", StatusReview},
		{"review_failed", StatusFailed},
		{"PROCESSING", StatusProcessing},
		{"QUEUED", StatusProcessing},
		{"", StatusProcessing},
		{"something_else", StatusProcessing},
	}
	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyStatus(tt.status))
		})
	}
}

func TestCellText(t *testing.T) {
	row := json.RawMessage(`{
		"id": "doc-1",
		"count": 42,
		"rate": 0.92,
		"needs_review": true,
		"is_active": false,
		"reason": null,
		"classification": {"category": "fiscal", "tags": ["a", "b"]}
	}`)

	tests := []struct {
		key  string
		want string
	}{
		{"id", "doc-1"},
		{"count", "42"},
		{"needs_review", "yes"},
		{"is_active", "no"},
		{"reason", "-"},
		{"missing_entirely", "-"},
		{"classification.category", "fiscal"},
		{"classification.tags", `["a", "b"]`},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, CellText(row, tt.key))
		})
	}
}

func TestCellTextObjectStaysJSON(t *testing.T) {
	row := json.RawMessage(`{"definition": {"sender_contains": "billing@"}}`)
	got := CellText(row, "definition")
	assert.True(t, json.Valid([]byte(got)))
	assert.Contains(t, got, "sender_contains")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "exactly-te", truncate("exactly-te", 10))
	assert.Equal(t, "this is...", truncate("this is too long", 10))
	assert.Equal(t, "a...", truncate("abcdefg", 1))
}

func TestRenderTableEmpty(t *testing.T) {
	out := RenderTable(emailColumns, nil, 80)
	assert.Contains(t, out, "no data")

	out = RenderTable(emailColumns, []json.RawMessage{}, 80)
	assert.Contains(t, out, "no data")
}

func TestRenderTable(t *testing.T) {
	rows := []json.RawMessage{
		json.RawMessage(`{"id":"e1","subject":"invoice","sender":"a@b.c","status":"DONE","trace_id":"t1"}`),
		json.RawMessage(`{"id":"e2","subject":"contract","status":"FAILED"}`),
	}
	out := RenderTable(emailColumns, rows, 100)

	assert.Contains(t, out, "invoice")
	assert.Contains(t, out, "contract")
	assert.Contains(t, out, "DONE")
	assert.Contains(t, out, "FAILED")
	// Missing sender on the second row renders as a dash.
	assert.Contains(t, out, "-")
	assert.Contains(t, out, "SUBJECT")
}

func TestRenderTableIsPure(t *testing.T) {
	rows := []json.RawMessage{json.RawMessage(`{"id":"e1","status":"DONE"}`)}
	first := RenderTable(emailColumns, rows, 80)
	second := RenderTable(emailColumns, rows, 80)
	assert.Equal(t, first, second)
}

func TestRenderSummary(t *testing.T) {
	out := RenderSummary(summaryFixture(), 120)
	assert.Contains(t, out, "12")
	assert.Contains(t, out, "30")
	assert.Contains(t, out, "16.67%")
	assert.Contains(t, out, "80.00%")
	assert.Contains(t, out, "Needs review")
}

func TestRenderSummaryZeroValues(t *testing.T) {
	out := RenderSummary(summaryZero(), 120)
	assert.Contains(t, out, "0")
	assert.Contains(t, out, "0.00%")
}

func TestRenderUsage(t *testing.T) {
	out := RenderUsage(usageFixture(), 120)
	assert.Contains(t, out, "2026-08")
	assert.Contains(t, out, "150")
	assert.Contains(t, out, "95.50%")
	assert.Contains(t, out, "3.20s")
}

func TestRenderUsageMissingPeriod(t *testing.T) {
	u := usageFixture()
	u.Period = ""
	out := RenderUsage(u, 120)
	assert.Contains(t, out, "-")
}

func TestRenderJSONPane(t *testing.T) {
	out := RenderJSONPane("Extraction", json.RawMessage(`{"total":199.9}`), 60)
	assert.Contains(t, out, "Extraction")
	assert.Contains(t, out, "total")
	// Pretty-printed, so the nested key sits on its own indented line.
	assert.Contains(t, out, "  \"total\"")
}

func TestRenderJSONPaneInvalidShownVerbatim(t *testing.T) {
	out := RenderJSONPane("Raw", json.RawMessage(`not json at all`), 60)
	assert.Contains(t, out, "not json at all")
}

func TestRenderJSONPaneEmpty(t *testing.T) {
	out := RenderJSONPane("Empty", nil, 60)
	assert.Contains(t, out, "-")
}

func TestRenderErrorIncludesDetail(t *testing.T) {
	out := RenderError(assert.AnError)
	assert.Contains(t, out, "error:")
	assert.Contains(t, out, assert.AnError.Error())
}

func TestRenderReviewTableFlattensClassification(t *testing.T) {
	rows := []json.RawMessage{
		json.RawMessage(`{"id":"d1","doc_type":"invoice","status":"needs_review","trace_id":"t1","classification":{"category":"fiscal","confidence":0.91}}`),
		json.RawMessage(`{"id":"d2","doc_type":"payslip","status":"needs_review","trace_id":"t2","classification":{"category":"rh","confidence":0.66}}`),
	}
	out := RenderTable(reviewColumns, rows, 120)

	assert.Contains(t, out, "CATEGORY")
	assert.Contains(t, out, "CONFIDENCE")
	assert.Contains(t, out, "fiscal")
	assert.Contains(t, out, "rh")
	assert.Contains(t, out, "0.91")
	assert.Contains(t, out, "0.66")
}

func TestRenderHistoryTableEventFields(t *testing.T) {
	rows := []json.RawMessage{
		json.RawMessage(`{"event_type":"approved","created_at":"2026-08-01T10:00:00Z","payload":{"approver_email":"ops@example.com","changed_fields":["category","priority"]}}`),
		json.RawMessage(`{"event_type":"reprocess_requested","created_at":"2026-08-02T09:00:00Z","payload":{"requester_email":"lead@example.com"}}`),
	}
	out := RenderTable(historyColumns, rows, 140)

	assert.Contains(t, out, "approved")
	assert.Contains(t, out, "ops@example.com")
	assert.Contains(t, out, "category")
	assert.Contains(t, out, "2026-08-01T10:00:00Z")
	assert.Contains(t, out, "lead@example.com")
}

func TestConfigListingsShowActiveFlag(t *testing.T) {
	rows := []json.RawMessage{
		json.RawMessage(`{"id":"r1","rule_name":"invoices","definition":{"sender_contains":"billing@"},"is_active":true}`),
	}
	out := RenderTable(ruleColumns, rows, 100)
	assert.Contains(t, out, "ACTIVE")
	assert.Contains(t, out, "yes")

	for _, cols := range [][]Column{ruleColumns, promptColumns, schemaColumns} {
		assert.Equal(t, "is_active", cols[len(cols)-1].Key)
	}
}

func TestRenderCursorTableMarker(t *testing.T) {
	rows := []json.RawMessage{
		json.RawMessage(`{"id":"d1","status":"review"}`),
		json.RawMessage(`{"id":"d2","status":"review"}`),
	}
	out := renderCursorTable(reviewColumns, rows, 1, 80)
	lines := strings.Split(out, "\n")
	// Header, divider, then the two data rows; cursor sits on the second.
	assert.Contains(t, lines[3], ">")
	assert.NotContains(t, lines[2], ">")
}
