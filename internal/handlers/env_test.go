package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/flatfly/flatfly-api/internal/auth"
	"github.com/flatfly/flatfly-api/internal/handlers"
	"github.com/flatfly/flatfly-api/internal/imaging"
	"github.com/flatfly/flatfly-api/internal/mail"
	"github.com/flatfly/flatfly-api/internal/server"
	"github.com/flatfly/flatfly-api/internal/storage"
	"github.com/flatfly/flatfly-api/internal/store"
	"github.com/flatfly/flatfly-api/internal/testutil"
	"github.com/markbates/goth"
	"github.com/stretchr/testify/require"
)

type fakeImages struct{}

func (fakeImages) Normalize(data []byte, maxSide int) (*imaging.Image, error) {
	if !bytes.HasPrefix(data, []byte("IMG")) {
		return nil, imaging.ErrNotImage
	}
	return &imaging.Image{Data: data, Ext: "jpg", MimeType: "image/jpeg"}, nil
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []mail.Message
	err  error
}

func (m *fakeMailer) Send(_ context.Context, msg mail.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *fakeMailer) messages() []mail.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]mail.Message(nil), m.sent...)
}

type fakeVerifier struct {
	claims *auth.IDClaims
	err    error
	seen   string
}

func (v *fakeVerifier) Verify(_ context.Context, raw string) (*auth.IDClaims, error) {
	v.seen = raw
	if v.err != nil {
		return nil, v.err
	}
	return v.claims, nil
}

type fakeFlow struct {
	user goth.User
	err  error
}

func (f *fakeFlow) Begin(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "https://accounts.google.com/o/oauth2/auth?state=test", http.StatusTemporaryRedirect)
}

func (f *fakeFlow) Complete(http.ResponseWriter, *http.Request) (goth.User, error) {
	return f.user, f.err
}

type env struct {
	t       *testing.T
	srv     *httptest.Server
	h       *handlers.Handler
	store   *store.Store
	objects *storage.Memory
	mailer  *fakeMailer
	google  *fakeFlow
	gToken  *fakeVerifier
	aToken  *fakeVerifier
}

func newEnv(t *testing.T) *env {
	return newEnvWithLimit(t, 0)
}

func newEnvWithLimit(t *testing.T, perMinute int) *env {
	t.Helper()
	e := &env{
		t:       t,
		store:   store.New(testutil.NewDB(t)),
		objects: storage.NewMemory("https://cdn.test/%s"),
		mailer:  &fakeMailer{},
		google:  &fakeFlow{},
		gToken:  &fakeVerifier{},
		aToken:  &fakeVerifier{},
	}

	templates := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(templates, "index.html"), []byte("<html>flatfly</html>"), 0o644))

	sessions := auth.NewSessions(auth.NewCookieStore("test-session-secret-0123456789ab", false))
	e.h = handlers.New(handlers.Options{
		Store:          e.store,
		Sessions:       sessions,
		Reset:          auth.NewResetTokens("test-reset-secret", time.Hour),
		Objects:        e.objects,
		Images:         fakeImages{},
		Mail:           e.mailer,
		Google:         e.google,
		GoogleToken:    e.gToken,
		AppleToken:     e.aToken,
		ContactEmail:   "team@flatfly.cz",
		FrontendURL:    "https://flatfly.cz/",
		MaxUploadBytes: 1 << 20,
	})
	e.srv = httptest.NewServer(server.NewRouter(e.h, sessions, server.RouterOptions{
		RateLimitPerMinute: perMinute,
		StaticDir:          t.TempDir(),
		TemplateDir:        templates,
	}))
	t.Cleanup(e.srv.Close)
	return e
}

// client returns an anonymous browser with its own cookie jar.
func (e *env) client() *http.Client {
	jar, err := cookiejar.New(nil)
	require.NoError(e.t, err)
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func (e *env) send(c *http.Client, req *http.Request) (*http.Response, map[string]any) {
	e.t.Helper()
	resp, err := c.Do(req)
	require.NoError(e.t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(e.t, err)
	out := map[string]any{}
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(e.t, json.Unmarshal(raw, &out), string(raw))
	} else {
		out["_body"] = string(raw)
	}
	return resp, out
}

func (e *env) do(c *http.Client, method, path string, body any) (*http.Response, map[string]any) {
	e.t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(e.t, err)
		r = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, e.srv.URL+path, r)
	require.NoError(e.t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return e.send(c, req)
}

func (e *env) upload(c *http.Client, path, field string, data []byte) (*http.Response, map[string]any) {
	e.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if field != "" {
		part, err := mw.CreateFormFile(field, "photo.jpg")
		require.NoError(e.t, err)
		_, err = part.Write(data)
		require.NoError(e.t, err)
	} else {
		require.NoError(e.t, mw.WriteField("other", "value"))
	}
	require.NoError(e.t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, e.srv.URL+path, &buf)
	require.NoError(e.t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return e.send(c, req)
}

// register signs up a new email account and returns its logged-in client.
func (e *env) register(name, email string) *http.Client {
	e.t.Helper()
	c := e.client()
	resp, body := e.do(c, http.MethodPost, "/api/auth/register/", map[string]any{
		"name": name, "email": email, "password": "s3cret-pass",
	})
	require.Equal(e.t, http.StatusOK, resp.StatusCode, body)
	return c
}

func num(v any) uint {
	f, _ := v.(float64)
	return uint(f)
}

var errBoom = errors.New("boom")
