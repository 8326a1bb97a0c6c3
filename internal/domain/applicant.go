package domain

import (
	"context"
	"io"
	"time"
)

// Resume points at a stored PDF and remembers the name it was uploaded with
type Resume struct {
	Path      string `json:"path"`
	Name      string `json:"name"`
	PageCount int    `json:"page_count,omitempty"`
}

// Applicant is a candidate record with its full comment history
type Applicant struct {
	ID             string    `json:"id"`
	FullName       string    `json:"full_name" validate:"not_blank,max=200"`
	LinkedInURL    string    `json:"linkedin_url,omitempty" validate:"omitempty,url,max=500"`
	ExpectedSalary string    `json:"expected_salary,omitempty" validate:"max=100"`
	Resume         *Resume   `json:"resume,omitempty"`
	Notes          string    `json:"notes,omitempty" validate:"max=5000"`
	CreatedAt      time.Time `json:"created_at"`
	Comments       []Comment `json:"comments"`
}

// HasResume reports whether a stored resume is attached
func (a Applicant) HasResume() bool {
	return a.Resume != nil && a.Resume.Path != ""
}

// ResumeName returns the original resume filename or an empty string
func (a Applicant) ResumeName() string {
	if a.Resume == nil {
		return ""
	}
	return a.Resume.Name
}

// CreateApplicantRequest is the payload accepted by POST /applicants
type CreateApplicantRequest struct {
	FullName       string `json:"full_name" validate:"not_blank,max=200"`
	LinkedInURL    string `json:"linkedin_url" validate:"omitempty,url,max=500"`
	ExpectedSalary string `json:"expected_salary" validate:"max=100"`
	Notes          string `json:"notes" validate:"max=5000"`
	ResumePath     string `json:"resume_path" validate:"required_with=ResumeName,max=500"`
	ResumeName     string `json:"resume_name" validate:"required_with=ResumePath,max=255"`
	ResumePages    int    `json:"resume_pages" validate:"min=0"`
}

// BulkDeleteRequest is the payload accepted by POST /applicants/bulk-delete
type BulkDeleteRequest struct {
	IDs []string `json:"ids" validate:"required,min=1,dive,uuid"`
}

// ApplicantStats summarizes the applicant collection for the dashboard
type ApplicantStats struct {
	Total        int `json:"total"`
	WithResume   int `json:"with_resume"`
	WithLinkedIn int `json:"with_linkedin"`
}

// ApplicantFilter narrows a list query
type ApplicantFilter struct {
	Search string
}

// ConsensusSummary is the aggregated decision view of one applicant
type ConsensusSummary struct {
	ApplicantID    string                `json:"applicant_id"`
	Decisions      map[Reviewer]Decision `json:"decisions"`
	Considering    int                   `json:"considering"`
	NotConsidering int                   `json:"not_considering"`
	Polarity       string                `json:"polarity"`
	Intensity      float64               `json:"intensity"`
	Color          string                `json:"color"`
}

// ExportFormat selects the export encoding
type ExportFormat string

const (
	ExportCSV  ExportFormat = "csv"
	ExportXLSX ExportFormat = "xlsx"
)

// ApplicantRepository persists applicants and their comments.
//
// AddComment is append-only: earlier comments from the same reviewer are kept.
type ApplicantRepository interface {
	List(ctx context.Context, filter ApplicantFilter) ([]Applicant, error)
	GetByID(ctx context.Context, id string) (*Applicant, error)
	Create(ctx context.Context, applicant *Applicant) error
	Delete(ctx context.Context, id string) (bool, error)
	DeleteMany(ctx context.Context, ids []string) (int64, error)
	Clear(ctx context.Context) (int64, error)
	AddComment(ctx context.Context, comment *Comment) error
	Ping(ctx context.Context) error
}

// ApplicantUsecase is the business surface of the applicant store
type ApplicantUsecase interface {
	List(ctx context.Context, filter ApplicantFilter) ([]Applicant, error)
	Get(ctx context.Context, id string) (*Applicant, error)
	Create(ctx context.Context, req CreateApplicantRequest) (*Applicant, error)
	Delete(ctx context.Context, id string) error
	DeleteMany(ctx context.Context, req BulkDeleteRequest) (int64, error)
	Clear(ctx context.Context) (int64, error)
	AddComment(ctx context.Context, applicantID string, req AddCommentRequest) (*Comment, error)
	Consensus(ctx context.Context, applicantID string) (*ConsensusSummary, error)
	Stats(ctx context.Context) (*ApplicantStats, error)
	Export(ctx context.Context, format ExportFormat) ([]byte, string, error)
}

// ResumeUsecase handles resume uploads and downloads
type ResumeUsecase interface {
	Upload(ctx context.Context, req UploadResumeRequest) (*Resume, error)
	Open(ctx context.Context, path string) (io.ReadCloser, error)
	Delete(ctx context.Context, path string) error
}

// UploadResumeRequest carries one uploaded file
type UploadResumeRequest struct {
	OriginalName string
	DesiredName  string
	ContentType  string
	Data         []byte
	ClientIP     string
}
