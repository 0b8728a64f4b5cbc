// Package uploads stores parsed CSV submissions as JSON records keyed by a
// generated identifier. Records land in a primary directory with a tmp-dir
// fallback for read-only filesystems, and are mirrored into Redis with a TTL
// when a cache is configured. Records are never deleted.
package uploads

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"dcportal/internal/models"
)

// ErrNotFound is returned when no stored upload matches the identifier.
var ErrNotFound = errors.New("upload not found")

type Service struct {
	primaryDir  string
	fallbackDir string
	cache       *redis.Client // nil when no cache is configured
	ttl         time.Duration
	log         *zap.Logger
}

func NewService(primaryDir, fallbackDir string, cache *redis.Client, ttl time.Duration, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		primaryDir:  primaryDir,
		fallbackDir: fallbackDir,
		cache:       cache,
		ttl:         ttl,
		log:         log,
	}
}

// Save assigns an id and timestamp if missing and persists the record. The
// Redis mirror is best-effort; a cache failure never fails the save.
func (s *Service) Save(ctx context.Context, rec *models.UploadRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	b, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return err
	}

	if err := writeToDir(s.primaryDir, rec.ID, b); err != nil {
		s.log.Warn("primary uploads dir unwritable, using fallback",
			zap.String("dir", s.primaryDir), zap.Error(err))
		if err := writeToDir(s.fallbackDir, rec.ID, b); err != nil {
			return fmt.Errorf("persist upload %s: %w", rec.ID, err)
		}
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey(rec.ID), b, s.ttl).Err(); err != nil {
			s.log.Warn("upload cache write failed", zap.String("id", rec.ID), zap.Error(err))
		}
	}
	return nil
}

// Get looks up an upload record: Redis first, then the primary directory,
// then the fallback directory. Legacy files holding a bare row array are
// still accepted.
func (s *Service) Get(ctx context.Context, id string) (*models.UploadRecord, error) {
	if id == "" {
		return nil, ErrNotFound
	}

	if s.cache != nil {
		if b, err := s.cache.Get(ctx, cacheKey(id)).Bytes(); err == nil {
			if rec, err := decode(id, b); err == nil {
				return rec, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.log.Warn("upload cache read failed", zap.String("id", id), zap.Error(err))
		}
	}

	for _, dir := range []string{s.primaryDir, s.fallbackDir} {
		b, err := os.ReadFile(filepath.Join(dir, id+".json"))
		if err != nil {
			continue
		}
		rec, err := decode(id, b)
		if err != nil {
			s.log.Warn("corrupt upload record", zap.String("id", id), zap.Error(err))
			continue
		}
		return rec, nil
	}
	return nil, ErrNotFound
}

func decode(id string, b []byte) (*models.UploadRecord, error) {
	var rec models.UploadRecord
	if err := json.Unmarshal(b, &rec); err == nil && rec.Data != nil {
		if rec.ID == "" {
			rec.ID = id
		}
		return &rec, nil
	}
	// Legacy format: a bare array of rows.
	var rows []map[string]string
	if err := json.Unmarshal(b, &rows); err != nil {
		return nil, err
	}
	return &models.UploadRecord{ID: id, Data: rows}, nil
}

func writeToDir(dir, id string, b []byte) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, id+".json"), b, 0o644)
}

func cacheKey(id string) string {
	return "upload:" + id
}
