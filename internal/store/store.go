// Package store provides the single persistence contract for the portal and
// its swappable backends: Postgres, SQLite (both via GORM), and a flat-file
// JSON store. A remote backend can be wrapped with the file store as a
// fallback tier (see Fallback).
package store

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"dcportal/internal/config"
	"dcportal/internal/models"
)

// ErrNotFound is returned by all Find* methods when no record matches.
var ErrNotFound = errors.New("record not found")

type Store interface {
	UpsertCertificate(ctx context.Context, cert *models.Certificate) error
	FindCertificateByCode(ctx context.Context, code string) (*models.Certificate, error)
	CertificateCodeExists(ctx context.Context, code string) (bool, error)

	UpsertTrainee(ctx context.Context, t *models.Trainee) error
	FindTraineeByID(ctx context.Context, dcID string) (*models.Trainee, error)

	UpsertUser(ctx context.Context, u *models.User) error
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)

	Ping(ctx context.Context) error
	Close() error
}

// Open builds the store selected by the configuration. The postgres backend
// is wrapped with a local file fallback so the portal keeps issuing and
// verifying while the remote database is unreachable.
func Open(cfg *config.Config, log *zap.Logger) (Store, error) {
	switch cfg.StorageBackend {
	case "postgres":
		primary, err := OpenPostgres(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		local, err := OpenFile(cfg.DataDir)
		if err != nil {
			return nil, fmt.Errorf("open file fallback: %w", err)
		}
		return NewFallback(primary, local, log), nil
	case "sqlite":
		return OpenSQLite(cfg.SQLitePath)
	case "file":
		return OpenFile(cfg.DataDir)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}
