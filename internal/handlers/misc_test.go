package handlers_test

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/flatfly/flatfly-api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArticles(t *testing.T) {
	e := newEnv(t)
	db := e.store.DB()
	older := &models.Article{Title: "Moving to Prague", Date: "1. 5. 2025", ContentEN: "en", ContentRU: "ru", ContentCZ: "cz", ImageKey: "articles/prague.jpg"}
	require.NoError(t, db.Create(older).Error)
	newer := &models.Article{Title: "Finding a roommate", CreatedAt: older.CreatedAt.Add(time.Minute)}
	require.NoError(t, db.Create(newer).Error)

	resp, out := e.do(e.client(), http.MethodGet, "/api/articles/", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	articles := out["articles"].([]any)
	require.Len(t, articles, 2)
	assert.Equal(t, "Finding a roommate", articles[0].(map[string]any)["title"])
	assert.Nil(t, articles[0].(map[string]any)["image"])

	resp, got := e.do(e.client(), http.MethodGet, fmt.Sprintf("/api/articles/%d/", older.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "https://cdn.test/articles/prague.jpg", got["image"])
	assert.Equal(t, map[string]any{"en": "en", "ru": "ru", "cz": "cz"}, got["content"])

	resp, got = e.do(e.client(), http.MethodGet, "/api/articles/404/", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Article not found", got["error"])
}

func TestContact(t *testing.T) {
	e := newEnv(t)
	c := e.client()

	resp, out := e.do(c, http.MethodPost, "/api/contact/", map[string]any{"name": "Jana"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "All fields are required", out["error"])

	resp, out = e.do(c, http.MethodPost, "/api/contact/", map[string]any{"name": "Jana", "email": "jana.example.com", "message": "Hi"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid email", out["error"])
	assert.Empty(t, e.mailer.messages())

	resp, out = e.do(c, http.MethodPost, "/api/contact/", map[string]any{"name": "Jana", "email": "jana@example.com", "message": "Hi there"})
	require.Equal(t, http.StatusOK, resp.StatusCode, out)
	assert.Equal(t, "Message sent successfully", out["detail"])
	sent := e.mailer.messages()
	require.Len(t, sent, 1)
	assert.Equal(t, []string{"team@flatfly.cz"}, sent[0].To)
	assert.Equal(t, "jana@example.com", sent[0].ReplyTo)
	assert.Contains(t, sent[0].Body, "Hi there")

	e.mailer.err = errBoom
	resp, _ = e.do(c, http.MethodPost, "/api/contact/", map[string]any{"name": "Jana", "email": "jana@example.com", "message": "again"})
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestRouterFallbacks(t *testing.T) {
	e := newEnv(t)
	c := e.client()

	resp, out := e.do(c, http.MethodGet, "/api/does-not-exist/", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.NotEmpty(t, out["error"])

	resp, out = e.do(c, http.MethodDelete, "/api/me/", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	assert.Equal(t, "Method not allowed", out["detail"])

	resp, out = e.do(c, http.MethodGet, "/apartments", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "<html>flatfly</html>", out["_body"])

	resp, _ = e.do(c, http.MethodGet, "/api/listings/abc/", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRateLimit(t *testing.T) {
	e := newEnvWithLimit(t, 2)
	c := e.client()
	for i := 0; i < 2; i++ {
		resp, _ := e.do(c, http.MethodGet, "/api/articles/", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}
	resp, _ := e.do(c, http.MethodGet, "/api/articles/", nil)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
}
