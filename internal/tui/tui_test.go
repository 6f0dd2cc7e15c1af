package tui

import (
	"encoding/json"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/epe-tools/epeconsole/internal/api"
	"github.com/epe-tools/epeconsole/internal/config"
	"github.com/epe-tools/epeconsole/internal/session"
)

func testModel(t *testing.T) Model {
	t.Helper()
	cfg := &config.Config{BaseURL: "http://127.0.0.1:1", HistoryLimit: 20}
	store := session.NewStore(filepath.Join(t.TempDir(), "epe_token"))
	client := api.NewClient(cfg.BaseURL, store.Token)
	return New(cfg, client, store)
}

func keyMsg(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestViewRegistry(t *testing.T) {
	views := AllViews()
	require.Len(t, views, 7)
	assert.Equal(t, "summary", ViewSummary.ID())
	assert.Equal(t, "test-ai", ViewTestAI.ID())
	assert.Equal(t, "Documents", ViewDocuments.Title())

	// An unregistered view renders its raw identifier instead of crashing.
	assert.Equal(t, "unknown", View(99).Title())
}

func TestStaleViewDataDropped(t *testing.T) {
	m := testModel(t)
	m.authenticated = true
	m.view = ViewEmails
	m.gen = 2
	m.loading = true

	// A response stamped with a superseded generation must not land.
	next, _ := m.Update(viewDataMsg{gen: 1, view: ViewEmails,
		rows: []json.RawMessage{json.RawMessage(`{"id":"stale"}`)}})
	m = next.(Model)
	assert.Nil(t, m.rows)
	assert.True(t, m.loading)

	next, _ = m.Update(viewDataMsg{gen: 2, view: ViewEmails,
		rows: []json.RawMessage{json.RawMessage(`{"id":"fresh"}`)}})
	m = next.(Model)
	require.Len(t, m.rows, 1)
	assert.False(t, m.loading)
}

func TestStaleViewErrorDropped(t *testing.T) {
	m := testModel(t)
	m.authenticated = true
	m.gen = 5

	next, _ := m.Update(viewErrMsg{gen: 4, view: ViewSummary, err: assert.AnError})
	m = next.(Model)
	assert.Nil(t, m.loadErr)

	next, _ = m.Update(viewErrMsg{gen: 5, view: ViewSummary, err: assert.AnError})
	m = next.(Model)
	assert.Equal(t, assert.AnError, m.loadErr)
}

func TestSwitchViewInvalidatesInflight(t *testing.T) {
	m := testModel(t)
	m.authenticated = true
	before := m.gen

	next, cmd := m.Update(keyMsg("3"))
	m = next.(Model)

	assert.Equal(t, ViewEmails, m.view)
	assert.Greater(t, m.gen, before)
	assert.True(t, m.loading)
	assert.NotNil(t, cmd)
}

func TestMutationSuccessReloadsView(t *testing.T) {
	m := testModel(t)
	m.authenticated = true
	m.view = ViewConfigs
	before := m.gen

	next, cmd := m.Update(mutationMsg{label: "save rule my-rule"})
	m = next.(Model)

	assert.Contains(t, m.status, "save rule my-rule")
	assert.Contains(t, m.status, "ok")
	assert.Greater(t, m.gen, before)
	assert.True(t, m.loading)
	assert.NotNil(t, cmd)
}

func TestMutationErrorNoReload(t *testing.T) {
	m := testModel(t)
	m.authenticated = true
	before := m.gen

	next, cmd := m.Update(mutationMsg{label: "save rule", err: assert.AnError})
	m = next.(Model)

	assert.Contains(t, m.status, "save rule")
	assert.Equal(t, before, m.gen)
	assert.False(t, m.loading)
	assert.Nil(t, cmd)
}

func TestMutationNoReloadFlag(t *testing.T) {
	m := testModel(t)
	m.authenticated = true
	before := m.gen

	next, _ := m.Update(mutationMsg{label: "test acc-1", noReload: true})
	m = next.(Model)

	assert.Contains(t, m.status, "test acc-1")
	assert.Equal(t, before, m.gen)
	assert.False(t, m.loading)
}

func TestUnauthorizedDropsToLogin(t *testing.T) {
	m := testModel(t)
	require.NoError(t, m.store.Set("stale-token"))
	m.authenticated = true

	next, _ := m.Update(viewErrMsg{gen: m.gen, view: ViewSummary,
		err: &api.APIError{Status: 401, Body: "token expired"}})
	m = next.(Model)

	assert.False(t, m.authenticated)
	assert.Empty(t, m.store.Token())
}

func TestLoginSuccessPersistsToken(t *testing.T) {
	m := testModel(t)
	require.False(t, m.authenticated)

	next, cmd := m.Update(loginResultMsg{token: "tok-fresh"})
	m = next.(Model)

	assert.True(t, m.authenticated)
	assert.Equal(t, "tok-fresh", m.store.Token())
	assert.NotNil(t, cmd)
	assert.Equal(t, ViewSummary, m.view)
}

func TestLoginFailureStaysOnGate(t *testing.T) {
	m := testModel(t)

	next, _ := m.Update(loginResultMsg{err: &api.APIError{Status: 401, Body: "bad credentials"}})
	m = next.(Model)

	assert.False(t, m.authenticated)
	assert.Empty(t, m.store.Token())
}

func TestLogoutClearsSession(t *testing.T) {
	m := testModel(t)
	require.NoError(t, m.store.Set("tok-1"))
	m.authenticated = true

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlL})
	m = next.(Model)

	assert.False(t, m.authenticated)
	assert.Empty(t, m.store.Token())
}

func TestConfigReloadTogglesRequestLog(t *testing.T) {
	m := testModel(t)
	m.authenticated = true

	next, _ := m.Update(configUpdatedMsg{cfg: &config.Config{
		BaseURL:    "http://127.0.0.1:1",
		RequestLog: true,
	}})
	m = next.(Model)
	assert.True(t, m.cfg.RequestLog)
}

func TestQuitKeys(t *testing.T) {
	m := testModel(t)
	m.authenticated = true

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())

	_, cmd = m.Update(keyMsg("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}
