package tui

// View identifies one console screen. The sidebar order follows the
// declaration order here.
type View int

const (
	ViewSummary View = iota
	ViewUsage
	ViewEmails
	ViewDocuments
	ViewReview
	ViewConfigs
	ViewTestAI
)

type viewInfo struct {
	id    string
	title string
}

var viewRegistry = map[View]viewInfo{
	ViewSummary:   {"summary", "Summary"},
	ViewUsage:     {"usage", "Usage"},
	ViewEmails:    {"emails", "Emails"},
	ViewDocuments: {"documents", "Documents"},
	ViewReview:    {"review", "Review"},
	ViewConfigs:   {"configs", "Configs"},
	ViewTestAI:    {"test-ai", "Test AI"},
}

// AllViews lists the screens in sidebar order.
func AllViews() []View {
	return []View{ViewSummary, ViewUsage, ViewEmails, ViewDocuments, ViewReview, ViewConfigs, ViewTestAI}
}

// ID returns the stable view identifier.
func (v View) ID() string {
	if info, ok := viewRegistry[v]; ok {
		return info.id
	}
	return "unknown"
}

// Title returns the display title. A view missing from the registry shows
// its raw identifier rather than crashing the frame.
func (v View) Title() string {
	if info, ok := viewRegistry[v]; ok {
		return info.title
	}
	return v.ID()
}

// Column sets for the tabular views. Keys are gjson paths over the raw
// rows, so fields the backend omits render as dashes and nested
// classification output flattens without a typed struct per listing.
var (
	emailColumns = []Column{
		{"id", "ID"},
		{"subject", "Subject"},
		{"sender", "Sender"},
		{"status", "Status"},
		{"trace_id", "Trace"},
	}

	documentColumns = []Column{
		{"id", "ID"},
		{"doc_type", "Type"},
		{"classification.category", "Category"},
		{"status", "Status"},
		{"needs_review", "Review"},
		{"trace_id", "Trace"},
	}

	reviewColumns = []Column{
		{"id", "ID"},
		{"doc_type", "Type"},
		{"classification.category", "Category"},
		{"classification.confidence", "Confidence"},
		{"status", "Status"},
		{"trace_id", "Trace"},
	}

	historyColumns = []Column{
		{"event_type", "Event"},
		{"payload.approver_email", "Approver"},
		{"payload.requester_email", "Requester"},
		{"payload.changed_fields", "Changed"},
		{"created_at", "At"},
	}

	accountColumns = []Column{
		{"id", "ID"},
		{"name", "Name"},
		{"imap_host", "Host"},
		{"imap_port", "Port"},
		{"imap_username", "User"},
		{"use_ssl", "SSL"},
		{"is_active", "Active"},
		{"sync_interval_minutes", "Sync (min)"},
	}

	ruleColumns = []Column{
		{"id", "ID"},
		{"rule_name", "Rule"},
		{"definition", "Definition"},
		{"is_active", "Active"},
	}

	promptColumns = []Column{
		{"id", "ID"},
		{"name", "Name"},
		{"prompt", "Prompt"},
		{"is_active", "Active"},
	}

	schemaColumns = []Column{
		{"id", "ID"},
		{"doc_type", "Type"},
		{"schema", "Schema"},
		{"is_active", "Active"},
	}

	routeColumns = []Column{
		{"id", "ID"},
		{"doc_type", "Type"},
		{"category", "Category"},
		{"priority", "Priority"},
		{"department", "Dept"},
		{"emails", "Emails"},
		{"webhook_url", "Webhook"},
	}

	profileColumns = []Column{
		{"id", "ID"},
		{"doc_type", "Type"},
		{"category", "Category"},
		{"department", "Dept"},
		{"priority", "Priority"},
	}

	testHistoryColumns = []Column{
		{"filename", "File"},
		{"doc_type", "Type"},
		{"valid", "Valid"},
		{"needs_review", "Review"},
		{"created_at", "At"},
	}
)
