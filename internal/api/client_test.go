package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func staticToken(tok string) func() string {
	return func() string { return tok }
}

func TestSendInjectsHeaders(t *testing.T) {
	var gotAuth, gotRequestID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-Id")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, staticToken("tok-abc"))
	_, err := c.Get(context.Background(), "/api/v1/dashboard/summary")
	require.NoError(t, err)

	assert.Equal(t, "Bearer tok-abc", gotAuth)
	assert.NotEmpty(t, gotRequestID)
}

func TestSendOmitsAuthWithoutToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, staticToken(""))
	_, err := c.Get(context.Background(), "/anything")
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
}

func TestAPIErrorFromStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail":"document not found"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	_, err := c.Get(context.Background(), "/api/v1/review/missing")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, `HTTP 404 - {"detail":"document not found"}`, apiErr.Error())
}

func TestLogin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/auth/login", r.URL.Path)
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "ops@example.com", r.PostFormValue("username"))
		assert.Equal(t, "hunter2", r.PostFormValue("password"))
		_, _ = w.Write([]byte(`{"access_token":"tok-xyz"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	token, err := c.Login(context.Background(), "ops@example.com", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, "tok-xyz", token)
}

func TestLoginRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":"invalid credentials"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	_, err := c.Login(context.Background(), "ops@example.com", "wrong")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
}

func TestLoginMissingToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	_, err := c.Login(context.Background(), "ops@example.com", "hunter2")
	assert.Error(t, err)
}

func TestPostJSON(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = w.Write([]byte(`{"id":"1"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, staticToken("tok"))
	_, err := c.PostJSON(context.Background(), "/api/v1/configs/prompts", map[string]string{"name": "greeting"})
	require.NoError(t, err)
	assert.Equal(t, "greeting", gotBody["name"])
}

func TestPostMultipart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "invoice march", r.FormValue("subject"))
		assert.Equal(t, "billing@example.com", r.FormValue("sender"))

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer func() { _ = file.Close() }()
		assert.Equal(t, "invoice.pdf", header.Filename)
		_, _ = w.Write([]byte(`{"filename":"invoice.pdf"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, staticToken("tok"))
	fields := map[string]string{"subject": "invoice march", "sender": "billing@example.com"}
	_, err := c.PostMultipart(context.Background(), "/api/v1/documents/test-analyze",
		fields, "file", "invoice.pdf", []byte("%PDF-1.4"))
	require.NoError(t, err)
}

func TestBaseURLTrimsTrailingSlash(t *testing.T) {
	c := NewClient("http://localhost:8000/", nil)
	assert.Equal(t, "http://localhost:8000", c.BaseURL())
}
