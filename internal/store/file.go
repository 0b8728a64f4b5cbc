package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"dcportal/internal/models"
)

// FileStore keeps each collection in one JSON array file under the data
// directory (users.json, certificates.json, trainees.json). Writes are
// load-scan-replace-persist, serialized by a per-collection mutex. It is the
// always-available tier; multi-process deployments should use a database
// backend instead.
type FileStore struct {
	dir string

	certMu    sync.Mutex
	traineeMu sync.Mutex
	userMu    sync.Mutex
}

func OpenFile(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) UpsertCertificate(ctx context.Context, cert *models.Certificate) error {
	s.certMu.Lock()
	defer s.certMu.Unlock()

	cert.Code = NormalizeCode(cert.Code)
	var certs []models.Certificate
	if err := s.load("certificates.json", &certs); err != nil {
		return err
	}
	replaced := false
	for i := range certs {
		if NormalizeCode(certs[i].Code) == cert.Code {
			certs[i] = *cert
			replaced = true
			break
		}
	}
	if !replaced {
		certs = append(certs, *cert)
	}
	return s.persist("certificates.json", certs)
}

func (s *FileStore) FindCertificateByCode(ctx context.Context, code string) (*models.Certificate, error) {
	s.certMu.Lock()
	defer s.certMu.Unlock()

	var certs []models.Certificate
	if err := s.load("certificates.json", &certs); err != nil {
		return nil, err
	}
	key := NormalizeCode(code)
	for i := range certs {
		if NormalizeCode(certs[i].Code) == key {
			return &certs[i], nil
		}
	}
	return nil, ErrNotFound
}

func (s *FileStore) CertificateCodeExists(ctx context.Context, code string) (bool, error) {
	_, err := s.FindCertificateByCode(ctx, code)
	if err == ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *FileStore) UpsertTrainee(ctx context.Context, t *models.Trainee) error {
	s.traineeMu.Lock()
	defer s.traineeMu.Unlock()

	t.DCID = NormalizeCode(t.DCID)
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	var trainees []models.Trainee
	if err := s.load("trainees.json", &trainees); err != nil {
		return err
	}
	replaced := false
	for i := range trainees {
		if NormalizeCode(trainees[i].DCID) == t.DCID {
			trainees[i] = *t
			replaced = true
			break
		}
	}
	if !replaced {
		trainees = append(trainees, *t)
	}
	return s.persist("trainees.json", trainees)
}

func (s *FileStore) FindTraineeByID(ctx context.Context, dcID string) (*models.Trainee, error) {
	s.traineeMu.Lock()
	defer s.traineeMu.Unlock()

	var trainees []models.Trainee
	if err := s.load("trainees.json", &trainees); err != nil {
		return nil, err
	}
	key := NormalizeCode(dcID)
	for i := range trainees {
		if NormalizeCode(trainees[i].DCID) == key {
			return &trainees[i], nil
		}
	}
	return nil, ErrNotFound
}

func (s *FileStore) UpsertUser(ctx context.Context, u *models.User) error {
	s.userMu.Lock()
	defer s.userMu.Unlock()

	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	var users []models.User
	if err := s.load("users.json", &users); err != nil {
		return err
	}
	replaced := false
	for i := range users {
		if users[i].Email == u.Email {
			u.ID = users[i].ID
			users[i] = *u
			replaced = true
			break
		}
	}
	if !replaced {
		u.ID = uint(len(users) + 1)
		users = append(users, *u)
	}
	return s.persist("users.json", users)
}

func (s *FileStore) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	s.userMu.Lock()
	defer s.userMu.Unlock()

	var users []models.User
	if err := s.load("users.json", &users); err != nil {
		return nil, err
	}
	key := strings.ToLower(strings.TrimSpace(email))
	for i := range users {
		if users[i].Email == key {
			return &users[i], nil
		}
	}
	return nil, ErrNotFound
}

func (s *FileStore) Ping(ctx context.Context) error {
	_, err := os.Stat(s.dir)
	return err
}

func (s *FileStore) Close() error { return nil }

func (s *FileStore) load(name string, out any) error {
	b, err := os.ReadFile(filepath.Join(s.dir, name))
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if len(b) == 0 {
		return nil
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	return nil
}

func (s *FileStore) persist(name string, in any) error {
	b, err := json.MarshalIndent(in, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(s.dir, name), b, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}
