package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dcportal/internal/models"
)

var errPrimaryDown = errors.New("primary unreachable")

// failingStore simulates an unreachable remote backend.
type failingStore struct{}

func (failingStore) UpsertCertificate(context.Context, *models.Certificate) error { return errPrimaryDown }
func (failingStore) FindCertificateByCode(context.Context, string) (*models.Certificate, error) {
	return nil, errPrimaryDown
}
func (failingStore) CertificateCodeExists(context.Context, string) (bool, error) {
	return false, errPrimaryDown
}
func (failingStore) UpsertTrainee(context.Context, *models.Trainee) error { return errPrimaryDown }
func (failingStore) FindTraineeByID(context.Context, string) (*models.Trainee, error) {
	return nil, errPrimaryDown
}
func (failingStore) UpsertUser(context.Context, *models.User) error { return errPrimaryDown }
func (failingStore) FindUserByEmail(context.Context, string) (*models.User, error) {
	return nil, errPrimaryDown
}
func (failingStore) Ping(context.Context) error { return errPrimaryDown }
func (failingStore) Close() error               { return nil }

func TestFallbackUsesLocalWhenPrimaryDown(t *testing.T) {
	local := newFileStore(t)
	f := NewFallback(failingStore{}, local, nil)
	ctx := context.Background()

	cert := &models.Certificate{Code: "DC44444444", Name: "Fallback"}
	require.NoError(t, f.UpsertCertificate(ctx, cert))

	// The write landed in the local tier and reads come back from it.
	got, err := f.FindCertificateByCode(ctx, "dc44444444")
	require.NoError(t, err)
	assert.Equal(t, "Fallback", got.Name)

	exists, err := f.CertificateCodeExists(ctx, "DC44444444")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, f.Ping(ctx))
}

func TestFallbackPrefersHealthyPrimary(t *testing.T) {
	primary := newFileStore(t)
	local := newFileStore(t)
	f := NewFallback(primary, local, nil)
	ctx := context.Background()

	require.NoError(t, f.UpsertTrainee(ctx, &models.Trainee{DCID: "DC55555555", Name: "Primary"}))

	// The record lives in the primary, not the local tier.
	_, err := primary.FindTraineeByID(ctx, "DC55555555")
	require.NoError(t, err)
	_, err = local.FindTraineeByID(ctx, "DC55555555")
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := f.FindTraineeByID(ctx, "DC55555555")
	require.NoError(t, err)
	assert.Equal(t, "Primary", got.Name)
}

func TestFallbackChecksLocalForCodesIssuedOffline(t *testing.T) {
	primary := newFileStore(t)
	local := newFileStore(t)
	f := NewFallback(primary, local, nil)
	ctx := context.Background()

	// A code written directly to the local tier (issued while the primary
	// was down) must still count as taken.
	require.NoError(t, local.UpsertCertificate(ctx, &models.Certificate{Code: "DC66666666"}))

	exists, err := f.CertificateCodeExists(ctx, "DC66666666")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestFallbackNotFoundConsultsBothTiers(t *testing.T) {
	primary := newFileStore(t)
	local := newFileStore(t)
	f := NewFallback(primary, local, nil)

	_, err := f.FindCertificateByCode(context.Background(), "DC77777777")
	assert.ErrorIs(t, err, ErrNotFound)
}
