package handlers

import (
	"archive/zip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"go.uber.org/zap"

	"dcportal/internal/codes"
	"dcportal/internal/course"
	"dcportal/internal/models"
	"dcportal/internal/uploads"
)

// templateFiles maps a course type to its PDF template under the templates
// dir. Unknown types fall back to dli-basic.
var templateFiles = map[string]string{
	"dli-basic":    "dli-basic.pdf",
	"dli-advanced": "dli-advanced.pdf",
	"discipleship": "discipleship.pdf",
}

const defaultCourseType = "dli-basic"

type issueRequest struct {
	ID string `json:"id"`
}

type rowResult struct {
	To    string `json:"to"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// IssueEmail: POST /api/issue/email. Stamps and emails one certificate per
// row. A failed row is recorded in the results and never aborts the batch.
func (h *Handlers) IssueEmail(w http.ResponseWriter, r *http.Request) {
	rec, template, courseType, ok := h.loadBatch(w, r)
	if !ok {
		return
	}

	if err := h.mailer.Verify(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	results := make([]rowResult, 0, len(rec.Data))
	for i, row := range rec.Data {
		fullName := fullNameOf(row)
		to := emailOf(row)
		if to == "" {
			results = append(results, rowResult{To: "", OK: false, Error: "no email provided"})
			continue
		}

		pdfBytes, cert, err := h.issueRow(r.Context(), rec, row, courseType, template, i, "email")
		if err != nil {
			results = append(results, rowResult{To: to, OK: false, Error: err.Error()})
			continue
		}

		subject := "Your Certificate from DC Certificate Portal"
		body := fmt.Sprintf("Dear %s,\n\nPlease find attached your certificate.\nYour certificate code is %s.\n\nBest regards,\nDC Certificate Team", fullName, cert.Code)
		if err := h.mailer.Send(r.Context(), to, subject, body, cert.Filename, pdfBytes); err != nil {
			h.log.Warn("certificate email failed", zap.String("to", to), zap.Error(err))
			results = append(results, rowResult{To: to, OK: false, Error: err.Error()})
			continue
		}
		results = append(results, rowResult{To: to, OK: true})
	}

	okCount := 0
	for _, res := range results {
		if res.OK {
			okCount++
		}
	}
	writeJSONResp(w, http.StatusOK, map[string]any{
		"message": fmt.Sprintf("Emails processed: %d sent, %d failed", okCount, len(results)-okCount),
		"results": results,
	})
}

// IssueZip: POST /api/issue/zip. Streams a ZIP of stamped certificates, one
// entry per row. Failed rows are logged and skipped so the archive still
// completes.
func (h *Handlers) IssueZip(w http.ResponseWriter, r *http.Request) {
	rec, template, courseType, ok := h.loadBatch(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "certificates-"+rec.ID+".zip"))
	w.WriteHeader(http.StatusOK)

	zw := zip.NewWriter(w)
	defer func() {
		if err := zw.Close(); err != nil {
			h.log.Error("zip finalize failed", zap.Error(err))
		}
	}()

	for i, row := range rec.Data {
		pdfBytes, cert, err := h.issueRow(r.Context(), rec, row, courseType, template, i, "download")
		if err != nil {
			h.log.Warn("certificate row failed", zap.Int("row", i), zap.String("name", fullNameOf(row)), zap.Error(err))
			continue
		}
		entry, err := zw.Create(cert.Filename)
		if err != nil {
			h.log.Error("zip entry failed", zap.String("filename", cert.Filename), zap.Error(err))
			return
		}
		if _, err := entry.Write(pdfBytes); err != nil {
			h.log.Error("zip write failed", zap.String("filename", cert.Filename), zap.Error(err))
			return
		}
	}
}

// loadBatch parses the request, fetches the upload record, and reads the
// course template. It writes the error response itself when ok is false.
func (h *Handlers) loadBatch(w http.ResponseWriter, r *http.Request) (*models.UploadRecord, []byte, string, bool) {
	var req issueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == "" {
		writeError(w, http.StatusBadRequest, "id required")
		return nil, nil, "", false
	}

	rec, err := h.uploads.Get(r.Context(), req.ID)
	if errors.Is(err, uploads.ErrNotFound) {
		writeError(w, http.StatusNotFound, "upload not found")
		return nil, nil, "", false
	}
	if err != nil {
		h.log.Error("upload read failed", zap.String("id", req.ID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to read upload")
		return nil, nil, "", false
	}

	courseType := rec.Type
	if _, known := templateFiles[courseType]; !known {
		courseType = defaultCourseType
	}
	template, err := os.ReadFile(filepath.Join(h.cfg.TemplatesDir, templateFiles[courseType]))
	if err != nil {
		h.log.Error("template read failed", zap.String("type", courseType), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "template not found")
		return nil, nil, "", false
	}
	return rec, template, courseType, true
}

// issueRow generates a code, stamps the template, and persists the
// certificate and trainee records for one row.
func (h *Handlers) issueRow(ctx context.Context, rec *models.UploadRecord, row map[string]string, courseType string, template []byte, idx int, method string) ([]byte, *models.Certificate, error) {
	fullName := fullNameOf(row)

	code, err := codes.Generate(ctx, h.store)
	if err != nil {
		return nil, nil, err
	}

	pdfBytes, err := h.stamper.Stamp(template, fullName, code)
	if err != nil {
		return nil, nil, fmt.Errorf("pdf generation failed: %w", err)
	}

	issuedAt := time.Now().UTC()
	courseName := course.Display(courseType, row)
	cert := &models.Certificate{
		Code:       code,
		UploadID:   rec.ID,
		Name:       fullName,
		Email:      emailOf(row),
		Filename:   fmt.Sprintf("%d-%s.pdf", idx+1, safeName(fullName)),
		IssuedAt:   issuedAt,
		Method:     method,
		Type:       courseType,
		CourseName: courseName,
		Data:       row,
	}
	if err := h.store.UpsertCertificate(ctx, cert); err != nil {
		return nil, nil, fmt.Errorf("save certificate: %w", err)
	}

	trainee := &models.Trainee{
		DCID:       code,
		Name:       fullName,
		Email:      cert.Email,
		CourseName: courseName,
		Location:   firstNonEmpty(row, "Location", "location"),
		Phone:      firstNonEmpty(row, "Phone", "phone", "Phone Number", "phone_number"),
		Date:       traineeDate(row, issuedAt),
	}
	if err := h.store.UpsertTrainee(ctx, trainee); err != nil {
		return nil, nil, fmt.Errorf("save trainee: %w", err)
	}

	return pdfBytes, cert, nil
}

var nameCandidates = []string{"Full Name", "FullName", "Name", "name", "full_name", "first_name", "firstname"}

func fullNameOf(row map[string]string) string {
	for _, key := range nameCandidates {
		if row[key] != "" {
			return row[key]
		}
	}
	first := firstNonEmpty(row, "First Name", "first")
	last := firstNonEmpty(row, "Last Name", "last_name", "last")
	if combined := trimJoin(first, last); combined != "" {
		return combined
	}
	if email := emailOf(row); email != "" {
		return email
	}
	return "participant"
}

func emailOf(row map[string]string) string {
	return firstNonEmpty(row, "Email", "email")
}

func firstNonEmpty(row map[string]string, keys ...string) string {
	for _, key := range keys {
		if row[key] != "" {
			return row[key]
		}
	}
	return ""
}

func trimJoin(first, last string) string {
	switch {
	case first == "":
		return last
	case last == "":
		return first
	default:
		return first + " " + last
	}
}

// traineeDate prefers an explicit date column, else the issuance time.
func traineeDate(row map[string]string, issuedAt time.Time) string {
	if d := firstNonEmpty(row, "Date", "date"); d != "" {
		return d
	}
	return issuedAt.Format(time.RFC3339)
}

var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

func safeName(name string) string {
	return unsafeNameChars.ReplaceAllString(name, "_")
}
