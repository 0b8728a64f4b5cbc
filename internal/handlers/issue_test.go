package handlers_test

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"net/http"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dcportal/internal/codes"
)

func TestIssueEmailBatch(t *testing.T) {
	env := newTestEnv(t)
	id := env.uploadRows(t, "dli-basic", []map[string]string{
		{"Name": "Jane Doe", "Email": "jane@example.com"},
		{"Name": "No Email"},
		{"Name": "John Smith", "Email": "john@example.com"},
	})

	rec := env.postJSON(t, "/api/issue/email", map[string]string{"id": id})
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "Emails processed: 2 sent, 1 failed", body["message"])

	results, ok := body["results"].([]any)
	require.True(t, ok)
	require.Len(t, results, 3)

	// The second row has no email: recorded as a failure, batch continues.
	second := results[1].(map[string]any)
	assert.Equal(t, false, second["ok"])
	assert.Equal(t, "no email provided", second["error"])

	third := results[2].(map[string]any)
	assert.Equal(t, true, third["ok"])
	assert.Equal(t, "john@example.com", third["to"])

	require.Len(t, env.mailer.sent, 2)
	assert.Equal(t, "jane@example.com", env.mailer.sent[0].to)
	assert.Equal(t, "1-Jane_Doe.pdf", env.mailer.sent[0].attachment)
}

func TestIssueEmailSendFailureDoesNotAbortBatch(t *testing.T) {
	env := newTestEnv(t)
	env.mailer.failFor["bad@example.com"] = io.ErrUnexpectedEOF
	id := env.uploadRows(t, "dli-basic", []map[string]string{
		{"Name": "Bad", "Email": "bad@example.com"},
		{"Name": "Good", "Email": "good@example.com"},
	})

	rec := env.postJSON(t, "/api/issue/email", map[string]string{"id": id})
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "Emails processed: 1 sent, 1 failed", body["message"])
	require.Len(t, env.mailer.sent, 1)
	assert.Equal(t, "good@example.com", env.mailer.sent[0].to)
}

func TestIssueEmailSMTPVerifyFailure(t *testing.T) {
	env := newTestEnv(t)
	env.mailer.verifyErr = io.ErrClosedPipe
	id := env.uploadRows(t, "dli-basic", []map[string]string{
		{"Name": "Jane Doe", "Email": "jane@example.com"},
	})

	rec := env.postJSON(t, "/api/issue/email", map[string]string{"id": id})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	// Nothing was sent and no certificate was issued.
	assert.Empty(t, env.mailer.sent)
}

func TestIssueEmailUnknownUpload(t *testing.T) {
	env := newTestEnv(t)
	rec := env.postJSON(t, "/api/issue/email", map[string]string{"id": "missing"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.postJSON(t, "/api/issue/email", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestIssueZipStreamsArchiveAndPersistsRecords(t *testing.T) {
	env := newTestEnv(t)
	id := env.uploadRows(t, "dli-advanced", []map[string]string{
		{"Name": "Jane Doe", "Email": "jane@example.com"},
	})

	rec := env.postJSON(t, "/api/issue/zip", map[string]string{"id": id})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/zip", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="certificates-`+id+`.zip"`, rec.Header().Get("Content-Disposition"))

	zr, err := zip.NewReader(bytes.NewReader(rec.Body.Bytes()), int64(rec.Body.Len()))
	require.NoError(t, err)
	require.Len(t, zr.File, 1)
	assert.Equal(t, "1-Jane_Doe.pdf", zr.File[0].Name)

	f, err := zr.File[0].Open()
	require.NoError(t, err)
	content, err := io.ReadAll(f)
	require.NoError(t, err)
	f.Close()

	// The fake stamper encodes name and code; recover the code and check
	// the persisted records against it.
	parts := bytes.Split(content, []byte("|"))
	require.Len(t, parts, 3)
	code := string(parts[2])
	assert.True(t, codes.IsValid(code))

	cert, err := env.store.FindCertificateByCode(context.Background(), code)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", cert.Name)
	assert.Equal(t, "jane@example.com", cert.Email)
	assert.Equal(t, "download", cert.Method)
	assert.Equal(t, "DLI Advanced", cert.CourseName)
	assert.Equal(t, id, cert.UploadID)

	trainee, err := env.store.FindTraineeByID(context.Background(), code)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", trainee.Name)
	assert.Equal(t, "DLI Advanced", trainee.CourseName)
}

func TestIssueUsesDefaultTemplateForUnknownType(t *testing.T) {
	env := newTestEnv(t)
	id := env.uploadRows(t, "some-unknown-type", []map[string]string{
		{"Name": "Jane Doe", "Email": "jane@example.com"},
	})

	rec := env.postJSON(t, "/api/issue/email", map[string]string{"id": id})
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Emails processed: 1 sent, 0 failed", body["message"])
}

func TestUploadThenIssueYieldsExactlyOneCertificate(t *testing.T) {
	env := newTestEnv(t)
	id := env.uploadRows(t, "dli-basic", []map[string]string{
		{"Name": "Solo Trainee", "Email": "solo@example.com"},
	})

	rec := env.postJSON(t, "/api/issue/email", map[string]string{"id": id})
	require.Equal(t, http.StatusOK, rec.Code)

	require.Len(t, env.mailer.sent, 1)
	results := decodeBody(t, rec)["results"].([]any)
	require.Len(t, results, 1)

	// The confirmation email carries the issued code.
	code := codeRe.FindString(env.mailer.sent[0].body)
	require.NotEmpty(t, code)

	verify := env.postJSON(t, "/api/verify", map[string]string{"id": code})
	body := decodeBody(t, verify)
	assert.Equal(t, true, body["found"])
	assert.Equal(t, "Solo Trainee", body["name"])
}

var codeRe = regexp.MustCompile(`DC[0-9]{8}`)
