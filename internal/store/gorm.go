package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"dcportal/internal/models"
)

// GormStore backs the portal with a relational database. The schema is the
// canonical snake_case one produced by GORM's default naming; there is no
// runtime probing of alternate column conventions.
type GormStore struct {
	db *gorm.DB
}

func OpenPostgres(dsn string) (*GormStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetConnMaxLifetime(time.Hour)
	return newGormStore(db)
}

func OpenSQLite(path string) (*GormStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	return newGormStore(db)
}

func newGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&models.User{}, &models.Certificate{}, &models.Trainee{}); err != nil {
		return nil, fmt.Errorf("auto-migrate: %w", err)
	}
	return &GormStore{db: db}, nil
}

func (s *GormStore) UpsertCertificate(ctx context.Context, cert *models.Certificate) error {
	cert.Code = NormalizeCode(cert.Code)
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}},
		UpdateAll: true,
	}).Create(cert).Error
}

func (s *GormStore) FindCertificateByCode(ctx context.Context, code string) (*models.Certificate, error) {
	var cert models.Certificate
	err := s.db.WithContext(ctx).Where("code = ?", NormalizeCode(code)).First(&cert).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &cert, nil
}

func (s *GormStore) CertificateCodeExists(ctx context.Context, code string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Certificate{}).
		Where("code = ?", NormalizeCode(code)).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *GormStore) UpsertTrainee(ctx context.Context, t *models.Trainee) error {
	t.DCID = NormalizeCode(t.DCID)
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "dc_id"}},
		UpdateAll: true,
	}).Create(t).Error
}

func (s *GormStore) FindTraineeByID(ctx context.Context, dcID string) (*models.Trainee, error) {
	var t models.Trainee
	err := s.db.WithContext(ctx).Where("dc_id = ?", NormalizeCode(dcID)).First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *GormStore) UpsertUser(ctx context.Context, u *models.User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		UpdateAll: true,
	}).Create(u).Error
}

func (s *GormStore) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// NormalizeCode uppercases and trims a certificate code / trainee dc_id so
// lookups are case-insensitive across every backend.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
