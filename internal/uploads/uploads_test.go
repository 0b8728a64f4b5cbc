package uploads

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dcportal/internal/models"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	return NewService(t.TempDir(), t.TempDir(), nil, time.Hour, nil)
}

func TestSaveAndGetRoundTrip(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	rec := &models.UploadRecord{
		Type: "dli-basic",
		Name: "batch.csv",
		Data: []map[string]string{{"Name": "Jane Doe", "Email": "jane@example.com"}},
	}
	require.NoError(t, svc.Save(ctx, rec))
	require.NotEmpty(t, rec.ID)
	assert.False(t, rec.CreatedAt.IsZero())

	got, err := svc.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, got.ID)
	assert.Equal(t, "dli-basic", got.Type)
	require.Len(t, got.Data, 1)
	assert.Equal(t, "Jane Doe", got.Data[0]["Name"])
}

func TestGetUnknownID(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.Get(context.Background(), "does-not-exist")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Get(context.Background(), "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetLegacyBareArrayFormat(t *testing.T) {
	dir := t.TempDir()
	svc := NewService(dir, t.TempDir(), nil, time.Hour, nil)

	rows := []map[string]string{{"Name": "Legacy", "Email": "legacy@example.com"}}
	b, err := json.Marshal(rows)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "legacy-id.json"), b, 0o644))

	got, err := svc.Get(context.Background(), "legacy-id")
	require.NoError(t, err)
	assert.Equal(t, "legacy-id", got.ID)
	require.Len(t, got.Data, 1)
	assert.Equal(t, "Legacy", got.Data[0]["Name"])
}

func TestSaveFallsBackWhenPrimaryUnwritable(t *testing.T) {
	// Point the primary at a path occupied by a regular file so MkdirAll
	// fails, forcing the fallback directory.
	tmp := t.TempDir()
	blocked := filepath.Join(tmp, "blocked")
	require.NoError(t, os.WriteFile(blocked, []byte("x"), 0o644))

	fallback := t.TempDir()
	svc := NewService(filepath.Join(blocked, "uploads"), fallback, nil, time.Hour, nil)
	ctx := context.Background()

	rec := &models.UploadRecord{Data: []map[string]string{{"Name": "Fallback"}}}
	require.NoError(t, svc.Save(ctx, rec))

	_, err := os.Stat(filepath.Join(fallback, rec.ID+".json"))
	require.NoError(t, err)

	got, err := svc.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "Fallback", got.Data[0]["Name"])
}
