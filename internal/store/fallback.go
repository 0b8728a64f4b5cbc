package store

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"dcportal/internal/models"
)

// Fallback pairs a remote primary with the local file store. Writes and
// reads go to the primary first; on failure the file store takes over and is
// authoritative while the primary is down. There is no reconciliation
// between the two tiers. Not-found on the primary also consults the local
// tier, since a record written while the primary was unreachable only exists
// locally.
type Fallback struct {
	primary Store
	local   *FileStore
	log     *zap.Logger
}

func NewFallback(primary Store, local *FileStore, log *zap.Logger) *Fallback {
	if log == nil {
		log = zap.NewNop()
	}
	return &Fallback{primary: primary, local: local, log: log}
}

func (f *Fallback) UpsertCertificate(ctx context.Context, cert *models.Certificate) error {
	if err := f.primary.UpsertCertificate(ctx, cert); err != nil {
		f.warn("upsert certificate", err)
		return f.local.UpsertCertificate(ctx, cert)
	}
	return nil
}

func (f *Fallback) FindCertificateByCode(ctx context.Context, code string) (*models.Certificate, error) {
	cert, err := f.primary.FindCertificateByCode(ctx, code)
	if err == nil {
		return cert, nil
	}
	if !errors.Is(err, ErrNotFound) {
		f.warn("find certificate", err)
	}
	return f.local.FindCertificateByCode(ctx, code)
}

func (f *Fallback) CertificateCodeExists(ctx context.Context, code string) (bool, error) {
	exists, err := f.primary.CertificateCodeExists(ctx, code)
	if err != nil {
		f.warn("certificate code lookup", err)
		return f.local.CertificateCodeExists(ctx, code)
	}
	if exists {
		return true, nil
	}
	// A code issued while the primary was down lives only in the local tier.
	return f.local.CertificateCodeExists(ctx, code)
}

func (f *Fallback) UpsertTrainee(ctx context.Context, t *models.Trainee) error {
	if err := f.primary.UpsertTrainee(ctx, t); err != nil {
		f.warn("upsert trainee", err)
		return f.local.UpsertTrainee(ctx, t)
	}
	return nil
}

func (f *Fallback) FindTraineeByID(ctx context.Context, dcID string) (*models.Trainee, error) {
	t, err := f.primary.FindTraineeByID(ctx, dcID)
	if err == nil {
		return t, nil
	}
	if !errors.Is(err, ErrNotFound) {
		f.warn("find trainee", err)
	}
	return f.local.FindTraineeByID(ctx, dcID)
}

func (f *Fallback) UpsertUser(ctx context.Context, u *models.User) error {
	if err := f.primary.UpsertUser(ctx, u); err != nil {
		f.warn("upsert user", err)
		return f.local.UpsertUser(ctx, u)
	}
	return nil
}

func (f *Fallback) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	u, err := f.primary.FindUserByEmail(ctx, email)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, ErrNotFound) {
		f.warn("find user", err)
	}
	return f.local.FindUserByEmail(ctx, email)
}

func (f *Fallback) Ping(ctx context.Context) error {
	if err := f.primary.Ping(ctx); err != nil {
		f.warn("ping", err)
		return f.local.Ping(ctx)
	}
	return nil
}

func (f *Fallback) Close() error {
	err := f.primary.Close()
	if lerr := f.local.Close(); err == nil {
		err = lerr
	}
	return err
}

func (f *Fallback) warn(op string, err error) {
	f.log.Warn("primary store failed, using local fallback",
		zap.String("op", op),
		zap.Error(err))
}
