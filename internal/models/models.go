package models

import "time"

// User is a portal operator account. Created out-of-band (cmd/createuser),
// never through the HTTP API.
type User struct {
	ID    uint   `gorm:"primaryKey" json:"id,omitempty"`
	Email string `gorm:"uniqueIndex" json:"email"`
	Name  string `json:"name"`
	Salt  string `json:"salt"`
	Hash  string `json:"hash"`
}

// Certificate is written once per issued row and looked up during
// verification. Code is the public "DC########" identifier, unique under
// case-insensitive comparison (stored uppercase).
type Certificate struct {
	ID         uint              `gorm:"primaryKey" json:"-"`
	Code       string            `gorm:"uniqueIndex" json:"code"`
	UploadID   string            `json:"uploadId"`
	Name       string            `json:"name"`
	Email      string            `json:"email"`
	Filename   string            `json:"filename"`
	IssuedAt   time.Time         `json:"issuedAt"`
	Method     string            `json:"method,omitempty"`     // email | download
	Type       string            `json:"type,omitempty"`       // course type, e.g. dli-basic
	CourseName string            `json:"courseName,omitempty"` // derived display string
	Data       map[string]string `gorm:"serializer:json" json:"data,omitempty"`
}

// Trainee is the latest issuance for a person, keyed by DCID (same value as
// the certificate code). Verification prefers this record over Certificate.
type Trainee struct {
	ID         uint      `gorm:"primaryKey" json:"-"`
	DCID       string    `gorm:"column:dc_id;uniqueIndex" json:"dc_id"`
	Name       string    `json:"name"`
	Email      string    `json:"email,omitempty"`
	CourseName string    `json:"courseName,omitempty"`
	Location   string    `json:"location,omitempty"`
	Phone      string    `json:"phone,omitempty"`
	Date       string    `json:"date,omitempty"` // ISO 8601
	CreatedAt  time.Time `json:"created_at,omitempty"`
}

// UploadRecord is a stored parse of a submitted CSV. It lives in the upload
// store (JSON file, optionally mirrored to Redis), not in the relational
// backend.
type UploadRecord struct {
	ID        string              `json:"id"`
	Type      string              `json:"type,omitempty"`
	Name      string              `json:"name,omitempty"`
	Data      []map[string]string `json:"data"`
	CreatedAt time.Time           `json:"createdAt"`
}
