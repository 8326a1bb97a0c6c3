package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go-applicant-tracker/internal/consensus"
	"go-applicant-tracker/internal/domain"
	"go-applicant-tracker/internal/export"
	"go-applicant-tracker/pkg/apperror"
	"go-applicant-tracker/pkg/audit"
	"go-applicant-tracker/pkg/logger"
	"go-applicant-tracker/pkg/storage"
	"go-applicant-tracker/pkg/validation"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type applicantUsecase struct {
	repo     domain.ApplicantRepository
	validate *validator.Validate
	audit    *audit.Logger
	resumes  storage.ResumeStore
	now      func() time.Time
}

type ApplicantOption func(*applicantUsecase)

// WithResumeCleanup removes the stored resume of every deleted applicant
func WithResumeCleanup(store storage.ResumeStore) ApplicantOption {
	return func(u *applicantUsecase) { u.resumes = store }
}

func NewApplicantUsecase(repo domain.ApplicantRepository, validate *validator.Validate, auditLog *audit.Logger, opts ...ApplicantOption) domain.ApplicantUsecase {
	if validate == nil {
		validate = validation.New()
	}
	u := &applicantUsecase{repo: repo, validate: validate, audit: auditLog, now: time.Now}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

func (u *applicantUsecase) List(ctx context.Context, filter domain.ApplicantFilter) ([]domain.Applicant, error) {
	applicants, err := u.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list applicants: %w", err)
	}
	return applicants, nil
}

func (u *applicantUsecase) Get(ctx context.Context, id string) (*domain.Applicant, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperror.NotFound("Applicant not found")
	}
	a, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get applicant: %w", err)
	}
	if a == nil {
		return nil, apperror.NotFound("Applicant not found")
	}
	return a, nil
}

func (u *applicantUsecase) Create(ctx context.Context, req domain.CreateApplicantRequest) (*domain.Applicant, error) {
	req.FullName = strings.TrimSpace(req.FullName)
	req.LinkedInURL = strings.TrimSpace(req.LinkedInURL)
	if err := u.validate.Struct(req); err != nil {
		return nil, apperror.Validation(validation.FormatValidationErrors(err))
	}

	a := &domain.Applicant{
		ID:             uuid.NewString(),
		FullName:       req.FullName,
		LinkedInURL:    req.LinkedInURL,
		ExpectedSalary: strings.TrimSpace(req.ExpectedSalary),
		Notes:          req.Notes,
		CreatedAt:      u.now().UTC(),
		Comments:       []domain.Comment{},
	}
	if req.ResumePath != "" {
		a.Resume = &domain.Resume{Path: req.ResumePath, Name: req.ResumeName, PageCount: req.ResumePages}
	}

	if err := u.repo.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("create applicant: %w", err)
	}

	u.audit.Record(ctx, audit.Event{Action: audit.ActionApplicantCreated, Applicant: a.ID})
	return a, nil
}

func (u *applicantUsecase) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperror.NotFound("Applicant not found")
	}

	var removed []domain.Applicant
	if u.resumes != nil {
		a, err := u.repo.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("get applicant: %w", err)
		}
		if a == nil {
			return apperror.NotFound("Applicant not found")
		}
		removed = append(removed, *a)
	}

	deleted, err := u.repo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete applicant: %w", err)
	}
	if !deleted {
		return apperror.NotFound("Applicant not found")
	}

	u.audit.Record(ctx, audit.Event{Action: audit.ActionApplicantDeleted, Applicant: id, Count: 1})
	u.removeResumes(ctx, removed)
	return nil
}

func (u *applicantUsecase) DeleteMany(ctx context.Context, req domain.BulkDeleteRequest) (int64, error) {
	if err := u.validate.Struct(req); err != nil {
		return 0, apperror.Validation(validation.FormatValidationErrors(err))
	}

	ids := dedupe(req.IDs)
	removed, err := u.withResumes(ctx, ids)
	if err != nil {
		return 0, err
	}

	n, err := u.repo.DeleteMany(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("bulk delete applicants: %w", err)
	}

	u.audit.Record(ctx, audit.Event{Action: audit.ActionApplicantsDeleted, Count: n,
		Details: map[string]any{"requested": len(req.IDs)}})
	u.removeResumes(ctx, removed)
	return n, nil
}

func (u *applicantUsecase) Clear(ctx context.Context) (int64, error) {
	removed, err := u.withResumes(ctx, nil)
	if err != nil {
		return 0, err
	}

	n, err := u.repo.Clear(ctx)
	if err != nil {
		return 0, fmt.Errorf("clear applicants: %w", err)
	}

	u.audit.Record(ctx, audit.Event{Action: audit.ActionApplicantsCleared, Count: n})
	u.removeResumes(ctx, removed)
	return n, nil
}

// withResumes returns the applicants among ids that have a stored resume,
// or every such applicant when ids is nil. It does nothing without a
// resume store.
func (u *applicantUsecase) withResumes(ctx context.Context, ids []string) ([]domain.Applicant, error) {
	if u.resumes == nil {
		return nil, nil
	}
	all, err := u.repo.List(ctx, domain.ApplicantFilter{})
	if err != nil {
		return nil, fmt.Errorf("list applicants: %w", err)
	}

	var wanted map[string]bool
	if ids != nil {
		wanted = make(map[string]bool, len(ids))
		for _, id := range ids {
			wanted[id] = true
		}
	}

	var out []domain.Applicant
	for _, a := range all {
		if a.HasResume() && (wanted == nil || wanted[strings.ToLower(a.ID)]) {
			out = append(out, a)
		}
	}
	return out, nil
}

// removeResumes deletes stored files after their applicants are gone.
// Failures are logged and audited but never undo the deletion.
func (u *applicantUsecase) removeResumes(ctx context.Context, applicants []domain.Applicant) {
	for _, a := range applicants {
		if !a.HasResume() {
			continue
		}
		err := u.resumes.Delete(ctx, a.Resume.Path)
		if err == nil || errors.Is(err, storage.ErrNotFound) {
			continue
		}
		logger.Log.Error("Failed to remove resume", "applicant_id", a.ID, "path", a.Resume.Path, "error", err)
		u.audit.Record(ctx, audit.Event{Action: audit.ActionResumeCleanupFailed, Applicant: a.ID,
			Details: map[string]any{"path": a.Resume.Path, "storage": u.resumes.Name(), "error": err.Error()}})
	}
}

// AddComment appends a reviewer decision. Earlier comments are never touched.
func (u *applicantUsecase) AddComment(ctx context.Context, applicantID string, req domain.AddCommentRequest) (*domain.Comment, error) {
	if err := u.validate.Struct(req); err != nil {
		return nil, apperror.Validation(validation.FormatValidationErrors(err))
	}
	if _, err := u.Get(ctx, applicantID); err != nil {
		return nil, err
	}

	now := u.now()
	c := &domain.Comment{
		ID:          uuid.NewString(),
		ApplicantID: applicantID,
		Reviewer:    req.Reviewer,
		Decision:    req.Decision,
		Note:        strings.TrimSpace(req.Note),
		Timestamp:   now.Local().Format(domain.TimestampLayout),
		CreatedAt:   now.UTC(),
	}
	if err := u.repo.AddComment(ctx, c); err != nil {
		return nil, fmt.Errorf("add comment: %w", err)
	}

	u.audit.Record(ctx, audit.Event{Action: audit.ActionCommentAdded, Applicant: applicantID, Reviewer: c.Reviewer,
		Details: map[string]any{"decision": string(c.Decision)}})
	return c, nil
}

func (u *applicantUsecase) Consensus(ctx context.Context, applicantID string) (*domain.ConsensusSummary, error) {
	a, err := u.Get(ctx, applicantID)
	if err != nil {
		return nil, err
	}
	summary := consensus.Summarize(*a)
	return &summary, nil
}

func (u *applicantUsecase) Stats(ctx context.Context) (*domain.ApplicantStats, error) {
	applicants, err := u.List(ctx, domain.ApplicantFilter{})
	if err != nil {
		return nil, err
	}

	stats := &domain.ApplicantStats{Total: len(applicants)}
	for _, a := range applicants {
		if a.HasResume() {
			stats.WithResume++
		}
		if a.LinkedInURL != "" {
			stats.WithLinkedIn++
		}
	}
	return stats, nil
}

// Export encodes every applicant and returns the payload with its download filename
func (u *applicantUsecase) Export(ctx context.Context, format domain.ExportFormat) ([]byte, string, error) {
	if format == "" {
		format = domain.ExportCSV
	}
	if format != domain.ExportCSV && format != domain.ExportXLSX {
		return nil, "", apperror.BadRequest("format must be csv or xlsx")
	}

	applicants, err := u.List(ctx, domain.ApplicantFilter{})
	if err != nil {
		return nil, "", err
	}

	data, err := export.Write(format, applicants)
	if err != nil {
		if errors.Is(err, export.ErrNoApplicants) {
			return nil, "", apperror.NotFound(export.EmptyMessage)
		}
		return nil, "", fmt.Errorf("export applicants: %w", err)
	}
	return data, export.Filename(format, u.now()), nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.ToLower(id)
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
