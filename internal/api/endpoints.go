package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	"golang.org/x/sync/errgroup"
)

// Summary holds the dashboard summary metrics.
type Summary struct {
	Emails        int64   `json:"emails"`
	Documents     int64   `json:"documents"`
	DoneDocuments int64   `json:"done_documents"`
	NeedsReview   int64   `json:"needs_review"`
	ReviewRate    float64 `json:"review_rate"`
	ApprovalRate  float64 `json:"approval_rate"`
}

// UsageStats holds the dashboard usage metrics for the current period.
type UsageStats struct {
	Period               string  `json:"period"`
	EmailsProcessed      int64   `json:"emails_processed"`
	LLMCalls             int64   `json:"llm_calls"`
	ManualReviews        int64   `json:"manual_reviews"`
	SuccessRate          float64 `json:"success_rate"`
	AvgProcessingSeconds float64 `json:"avg_processing_seconds"`
}

// ConfigsBundle aggregates the seven configuration listings the configs
// view renders. All parts are fetched before any is shown.
type ConfigsBundle struct {
	Rules         []json.RawMessage
	Prompts       []json.RawMessage
	Schemas       []json.RawMessage
	Routes        []json.RawMessage
	Accounts      []json.RawMessage
	Profiles      []json.RawMessage
	Notifications json.RawMessage
}

// FetchSummary fetches the dashboard summary.
func (c *Client) FetchSummary(ctx context.Context) (Summary, error) {
	var s Summary
	data, err := c.Get(ctx, "/api/v1/dashboard/summary")
	if err != nil {
		return s, err
	}
	err = json.Unmarshal(data, &s)
	return s, err
}

// FetchUsage fetches the dashboard usage metrics.
func (c *Client) FetchUsage(ctx context.Context) (UsageStats, error) {
	var u UsageStats
	data, err := c.Get(ctx, "/api/v1/dashboard/usage")
	if err != nil {
		return u, err
	}
	err = json.Unmarshal(data, &u)
	return u, err
}

// fetchRows fetches a path that returns a JSON array of objects and keeps
// each row raw for the tabular renderer.
func (c *Client) fetchRows(ctx context.Context, path string) ([]json.RawMessage, error) {
	data, err := c.Get(ctx, path)
	if err != nil {
		return nil, err
	}
	var rows []json.RawMessage
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return rows, nil
}

// FetchEmails lists ingested emails.
func (c *Client) FetchEmails(ctx context.Context) ([]json.RawMessage, error) {
	return c.fetchRows(ctx, "/api/v1/emails")
}

// FetchDocuments lists processed documents.
func (c *Client) FetchDocuments(ctx context.Context) ([]json.RawMessage, error) {
	return c.fetchRows(ctx, "/api/v1/documents")
}

// FetchReview lists documents pending a human decision.
func (c *Client) FetchReview(ctx context.Context) ([]json.RawMessage, error) {
	return c.fetchRows(ctx, "/api/v1/review")
}

// FetchReviewHistory fetches the audit trail for one document.
func (c *Client) FetchReviewHistory(ctx context.Context, documentID string, limit int) ([]json.RawMessage, error) {
	return c.fetchRows(ctx, fmt.Sprintf("/api/v1/review/%s/history?limit=%d", documentID, limit))
}

// FetchTestHistory fetches prior ad-hoc analysis runs.
func (c *Client) FetchTestHistory(ctx context.Context, limit int) ([]json.RawMessage, error) {
	return c.fetchRows(ctx, fmt.Sprintf("/api/v1/documents/test-history?limit=%d", limit))
}

// FetchConfigs fetches all seven configuration listings concurrently and
// joins all-or-nothing: one failed part fails the whole bundle so the
// configs view never renders a partial mix.
func (c *Client) FetchConfigs(ctx context.Context) (*ConfigsBundle, error) {
	bundle := &ConfigsBundle{}
	g, ctx := errgroup.WithContext(ctx)

	listings := []struct {
		path string
		dest *[]json.RawMessage
	}{
		{"/api/v1/configs/rules", &bundle.Rules},
		{"/api/v1/configs/prompts", &bundle.Prompts},
		{"/api/v1/configs/schemas", &bundle.Schemas},
		{"/api/v1/configs/routes", &bundle.Routes},
		{"/api/v1/email-accounts", &bundle.Accounts},
		{"/api/v1/configs/document-profiles", &bundle.Profiles},
	}
	for _, l := range listings {
		g.Go(func() error {
			rows, err := c.fetchRows(ctx, l.path)
			if err != nil {
				return err
			}
			*l.dest = rows
			return nil
		})
	}
	g.Go(func() error {
		data, err := c.Get(ctx, "/api/v1/configs/notifications")
		if err != nil {
			return err
		}
		bundle.Notifications = data
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return bundle, nil
}

// RulePayload creates or updates a classification rule.
type RulePayload struct {
	RuleName   string          `json:"rule_name"`
	Definition json.RawMessage `json:"definition"`
}

// SaveRule submits a whole-object rule create/update.
func (c *Client) SaveRule(ctx context.Context, p RulePayload) error {
	_, err := c.PostJSON(ctx, "/api/v1/configs/rules", p)
	return err
}

// PromptPayload creates or updates a classifier prompt.
type PromptPayload struct {
	Name   string `json:"name"`
	Prompt string `json:"prompt"`
}

// SavePrompt submits a prompt create/update.
func (c *Client) SavePrompt(ctx context.Context, p PromptPayload) error {
	_, err := c.PostJSON(ctx, "/api/v1/configs/prompts", p)
	return err
}

// SchemaPayload creates or updates an extraction schema.
type SchemaPayload struct {
	DocType string          `json:"doc_type"`
	Schema  json.RawMessage `json:"schema"`
}

// SaveSchema submits an extraction-schema create/update.
func (c *Client) SaveSchema(ctx context.Context, p SchemaPayload) error {
	_, err := c.PostJSON(ctx, "/api/v1/configs/schemas", p)
	return err
}

// RoutePayload maps document attributes to notification targets.
type RoutePayload struct {
	DocType    string   `json:"doc_type,omitempty"`
	Category   string   `json:"category,omitempty"`
	Priority   string   `json:"priority,omitempty"`
	Department string   `json:"department,omitempty"`
	Emails     []string `json:"emails"`
	WebhookURL string   `json:"webhook_url,omitempty"`
}

// SaveRoute submits a routing-rule create/update.
func (c *Client) SaveRoute(ctx context.Context, p RoutePayload) error {
	_, err := c.PostJSON(ctx, "/api/v1/configs/routes", p)
	return err
}

// AccountPayload creates or updates a mailbox account. The IMAP password
// is write-only: listings never echo it back.
type AccountPayload struct {
	Name                string `json:"name"`
	IMAPHost            string `json:"imap_host"`
	IMAPPort            int    `json:"imap_port"`
	IMAPUsername        string `json:"imap_username"`
	IMAPPassword        string `json:"imap_password"`
	UseSSL              bool   `json:"use_ssl"`
	SyncIntervalMinutes int    `json:"sync_interval_minutes"`
}

// allowedSyncIntervals mirrors the backend's accepted values; anything
// else is rejected there with invalid_sync_interval.
var allowedSyncIntervals = map[int]bool{5: true, 15: true, 30: true, 60: true, 240: true, 720: true}

// ValidSyncInterval reports whether the backend accepts the interval.
func ValidSyncInterval(minutes int) bool {
	return allowedSyncIntervals[minutes]
}

// SaveAccount submits a mailbox-account create/update.
func (c *Client) SaveAccount(ctx context.Context, p AccountPayload) error {
	_, err := c.PostJSON(ctx, "/api/v1/email-accounts", p)
	return err
}

// TestAccount asks the backend to probe the account's IMAP connection.
func (c *Client) TestAccount(ctx context.Context, accountID string) (bool, error) {
	data, err := c.PostRaw(ctx, "/api/v1/email-accounts/"+accountID+"/test", []byte("{}"))
	if err != nil {
		return false, err
	}
	return gjson.GetBytes(data, "ok").Bool(), nil
}

// SyncAccount queues an immediate mailbox sync and returns the backend's
// status word (normally "QUEUED").
func (c *Client) SyncAccount(ctx context.Context, accountID string) (string, error) {
	data, err := c.PostRaw(ctx, "/api/v1/email-accounts/"+accountID+"/sync", []byte("{}"))
	if err != nil {
		return "", err
	}
	return gjson.GetBytes(data, "status").String(), nil
}

// ProfilePayload creates or updates a document profile.
type ProfilePayload struct {
	DocType    string `json:"doc_type"`
	Category   string `json:"category"`
	Department string `json:"department"`
	Priority   string `json:"priority"`
}

// SaveProfile submits a document-profile create/update.
func (c *Client) SaveProfile(ctx context.Context, p ProfilePayload) error {
	_, err := c.PostJSON(ctx, "/api/v1/configs/document-profiles", p)
	return err
}

// NotificationSettings is the singleton notification-target configuration.
type NotificationSettings struct {
	Emails             []string `json:"emails"`
	EmailWebhookURL    string   `json:"email_webhook_url"`
	WhatsappNumbers    []string `json:"whatsapp_numbers"`
	WhatsappWebhookURL string   `json:"whatsapp_webhook_url"`
	TelegramUsers      []string `json:"telegram_users"`
	TelegramWebhookURL string   `json:"telegram_webhook_url"`
}

// SaveNotifications submits the whole notification settings object.
func (c *Client) SaveNotifications(ctx context.Context, n NotificationSettings) error {
	_, err := c.PostJSON(ctx, "/api/v1/configs/notifications", n)
	return err
}

// ApproveOptions carries the optional overrides an operator may attach to
// an approval. Empty fields are omitted from the payload entirely.
type ApproveOptions struct {
	Category   string
	Department string
	Priority   string
	Reason     string
	Extraction json.RawMessage
}

// ApproveReview approves a flagged document, with optional overrides.
func (c *Client) ApproveReview(ctx context.Context, documentID string, opts ApproveOptions) error {
	body := []byte(`{}`)
	var err error
	set := func(key, val string) {
		if err != nil || val == "" {
			return
		}
		body, err = sjson.SetBytes(body, key, val)
	}
	set("category", opts.Category)
	set("department", opts.Department)
	set("priority", opts.Priority)
	set("reason", opts.Reason)
	if err == nil && len(opts.Extraction) > 0 {
		body, err = sjson.SetRawBytes(body, "extraction", opts.Extraction)
	}
	if err != nil {
		return fmt.Errorf("encode approve payload: %w", err)
	}
	_, err = c.PostRaw(ctx, "/api/v1/review/"+documentID+"/approve", body)
	return err
}

// ReprocessReview sends a flagged document back through the pipeline.
func (c *Client) ReprocessReview(ctx context.Context, documentID string) error {
	_, err := c.PostRaw(ctx, "/api/v1/review/"+documentID+"/reprocess", []byte("{}"))
	return err
}

// TestAnalyzeRequest is the ad-hoc analysis input: a file plus the email
// context it would have arrived with.
type TestAnalyzeRequest struct {
	Filename string
	Content  []byte
	Subject  string
	Sender   string
	BodyText string
}

// TestAnalyze uploads a file for a dry-run through the classification and
// extraction engines. The result is kept raw; the renderer picks fields out.
func (c *Client) TestAnalyze(ctx context.Context, req TestAnalyzeRequest) (json.RawMessage, error) {
	fields := map[string]string{
		"subject":   req.Subject,
		"sender":    req.Sender,
		"body_text": req.BodyText,
	}
	return c.PostMultipart(ctx, "/api/v1/documents/test-analyze", fields, "file", req.Filename, req.Content)
}
