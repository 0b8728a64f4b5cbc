package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"dcportal/internal/auth"
	"dcportal/internal/config"
	"dcportal/internal/handlers"
	"dcportal/internal/models"
	"dcportal/internal/router"
	"dcportal/internal/store"
	"dcportal/internal/uploads"
)

// fakeMailer records sends and can fail selectively per address.
type fakeMailer struct {
	verifyErr error
	failFor   map[string]error
	sent      []sentMail
}

type sentMail struct {
	to         string
	subject    string
	body       string
	attachment string
}

func (m *fakeMailer) Verify(ctx context.Context) error { return m.verifyErr }

func (m *fakeMailer) Send(ctx context.Context, to, subject, body, attachmentName string, attachment []byte) error {
	if err := m.failFor[to]; err != nil {
		return err
	}
	m.sent = append(m.sent, sentMail{to: to, subject: subject, body: body, attachment: attachmentName})
	return nil
}

// fakeStamper avoids real PDF work; output encodes its inputs for assertions.
type fakeStamper struct{}

func (fakeStamper) Stamp(template []byte, name, code string) ([]byte, error) {
	return []byte(fmt.Sprintf("PDF|%s|%s", name, code)), nil
}

type testEnv struct {
	handler http.Handler
	store   store.Store
	mailer  *fakeMailer
	cfg     *config.Config
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	templatesDir := t.TempDir()
	for _, f := range []string{"dli-basic.pdf", "dli-advanced.pdf", "discipleship.pdf"} {
		require.NoError(t, os.WriteFile(filepath.Join(templatesDir, f), []byte("%PDF-1.4 template"), 0o644))
	}

	cfg := &config.Config{
		TemplatesDir:  templatesDir,
		VerifyBaseURL: "http://localhost:8080",
		JWTSecret:     "test-secret",
		SessionTTL:    time.Hour,
	}

	st, err := store.OpenFile(t.TempDir())
	require.NoError(t, err)

	up := uploads.NewService(t.TempDir(), t.TempDir(), nil, time.Hour, nil)
	m := &fakeMailer{failFor: map[string]error{}}

	h := handlers.New(cfg, nil, st, up, m, fakeStamper{})
	return &testEnv{
		handler: router.RegisterRouter(h, zap.NewNop(), []byte(cfg.JWTSecret)),
		store:   st,
		mailer:  m,
		cfg:     cfg,
	}
}

func (e *testEnv) postJSON(t *testing.T, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) createUser(t *testing.T, email, name, password string) {
	t.Helper()
	salt, err := auth.NewSalt()
	require.NoError(t, err)
	hash, err := auth.HashPassword(password, salt)
	require.NoError(t, err)
	require.NoError(t, e.store.UpsertUser(context.Background(), &models.User{
		Email: email, Name: name, Salt: salt, Hash: hash,
	}))
}

func (e *testEnv) uploadRows(t *testing.T, courseType string, rows []map[string]string) string {
	t.Helper()
	rec := e.postJSON(t, "/api/upload", map[string]any{
		"type": courseType,
		"name": "batch.csv",
		"data": rows,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.ID)
	return resp.ID
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}
