package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"go-applicant-tracker/internal/domain"
	"go-applicant-tracker/pkg/apperror"
	"go-applicant-tracker/pkg/audit"
	"go-applicant-tracker/pkg/logger"
	"go-applicant-tracker/pkg/pdfinfo"
	"go-applicant-tracker/pkg/security"
	"go-applicant-tracker/pkg/security/antivirus"
	"go-applicant-tracker/pkg/storage"
)

// UploadGate decides whether a client may upload right now
type UploadGate interface {
	Allow(ctx context.Context, ip string) (bool, int, error)
}

type resumeUsecase struct {
	store    storage.ResumeStore
	gate     UploadGate
	maxBytes int64
	audit    *audit.Logger
	scanner  antivirus.Scanner
	now      func() time.Time
}

type ResumeOption func(*resumeUsecase)

// WithScanner scans every upload before it is stored. A scan that cannot
// complete rejects the upload.
func WithScanner(s antivirus.Scanner) ResumeOption {
	return func(u *resumeUsecase) {
		if s != nil {
			u.scanner = s
		}
	}
}

// NewResumeUsecase wires resume uploads to store. gate may be nil.
func NewResumeUsecase(store storage.ResumeStore, gate UploadGate, maxBytes int64, auditLog *audit.Logger, opts ...ResumeOption) domain.ResumeUsecase {
	u := &resumeUsecase{
		store:    store,
		gate:     gate,
		maxBytes: maxBytes,
		audit:    auditLog,
		scanner:  antivirus.Nop{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

func (u *resumeUsecase) Upload(ctx context.Context, req domain.UploadResumeRequest) (*domain.Resume, error) {
	if u.gate != nil {
		allowed, retry, err := u.gate.Allow(ctx, req.ClientIP)
		if err != nil {
			logger.Log.Warn("upload limiter degraded", "error", err.Error())
		}
		if !allowed {
			u.audit.Record(ctx, audit.Event{Action: audit.ActionUploadLimited, IP: req.ClientIP,
				Details: map[string]any{"retry_after": retry}})
			return nil, apperror.TooManyRequests(fmt.Sprintf("Too many uploads. Try again in %d seconds.", retry))
		}
	}

	if !security.IsPDFName(req.OriginalName, req.ContentType) {
		return nil, apperror.Unsupported("Please select a PDF file only")
	}

	// the extension check runs against the stored name so a PDF sent as application/pdf without .pdf still passes
	result := security.ValidatePDF(ensurePDFExt(req.OriginalName), req.Data, u.maxBytes)
	if !result.Valid {
		switch {
		case errors.Is(result.Err, security.ErrFileTooLarge):
			return nil, apperror.New(http.StatusRequestEntityTooLarge, "File is too large", result.Err)
		case errors.Is(result.Err, security.ErrEmptyFile):
			return nil, apperror.BadRequest("File is empty")
		default:
			return nil, apperror.Unsupported("Please select a PDF file only")
		}
	}

	info, err := pdfinfo.Inspect(req.Data)
	if err != nil {
		return nil, apperror.New(http.StatusUnprocessableEntity, "The file could not be read as a PDF", err)
	}

	verdict, err := u.scanner.Scan(ctx, req.OriginalName, req.Data)
	if err != nil {
		return nil, apperror.New(http.StatusServiceUnavailable, "Resume could not be scanned, try again later", err)
	}
	if verdict.Infected {
		u.audit.Record(ctx, audit.Event{Action: audit.ActionResumeRejected, IP: req.ClientIP,
			Details: map[string]any{"threat": verdict.ThreatName, "scanner": verdict.Scanner}})
		return nil, apperror.New(http.StatusUnprocessableEntity, "The file was rejected by the malware scan", nil)
	}

	name := req.DesiredName
	if strings.TrimSpace(name) == "" {
		stem := strings.TrimSuffix(filepath.Base(req.OriginalName), filepath.Ext(req.OriginalName))
		name = fmt.Sprintf("%s_%d.pdf", stem, u.now().UnixMilli())
	}
	name = security.SanitizeFilename(name)

	path, err := u.store.Save(ctx, name, req.Data)
	if err != nil {
		return nil, fmt.Errorf("store resume: %w", err)
	}

	original := filepath.Base(strings.ReplaceAll(req.OriginalName, `\`, "/"))
	if original == "." || original == "/" {
		original = path
	}

	u.audit.Record(ctx, audit.Event{Action: audit.ActionResumeUploaded, IP: req.ClientIP,
		Details: map[string]any{"path": path, "pages": info.PageCount, "bytes": len(req.Data),
			"has_text": info.HasText, "storage": u.store.Name()}})

	return &domain.Resume{Path: path, Name: original, PageCount: info.PageCount}, nil
}

func (u *resumeUsecase) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	rc, err := u.store.Open(ctx, path)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) || errors.Is(err, storage.ErrInvalidName) {
			return nil, apperror.NotFound("Resume not found")
		}
		return nil, fmt.Errorf("open resume: %w", err)
	}
	return rc, nil
}

// Delete removes a stored resume. The applicant record, if any, is untouched.
func (u *resumeUsecase) Delete(ctx context.Context, path string) error {
	if err := u.store.Delete(ctx, path); err != nil {
		if errors.Is(err, storage.ErrNotFound) || errors.Is(err, storage.ErrInvalidName) {
			return apperror.NotFound("Resume not found")
		}
		return fmt.Errorf("delete resume: %w", err)
	}
	u.audit.Record(ctx, audit.Event{Action: audit.ActionResumeDeleted,
		Details: map[string]any{"path": path, "storage": u.store.Name()}})
	return nil
}

func ensurePDFExt(name string) string {
	if strings.EqualFold(filepath.Ext(name), ".pdf") {
		return name
	}
	return name + ".pdf"
}
