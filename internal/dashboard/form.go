package dashboard

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"go-applicant-tracker/internal/domain"
)

// User-facing notice texts
const (
	MsgNameRequired      = "Please fill in required field (Name)"
	MsgPDFOnly           = "Please select a PDF file only"
	MsgCommentIncomplete = "Please select both person and decision"
	MsgApplicantAdded    = "Applicant added successfully!"
	MsgAddedNotRefreshed = "Applicant added, but the list could not be refreshed"
	MsgUploadFailed      = "Failed to upload resume"
	MsgSaveFailed        = "Failed to save applicant"
	MsgDeleteFailed      = "Failed to delete applicant"
	MsgClearFailed       = "Failed to clear applicants"
	MsgCommentFailed     = "Failed to add comment"
	MsgLoadFailed        = "Failed to fetch applicants"
	MsgNoExport          = "No applicants to export"
)

const pdfContentType = "application/pdf"

var whitespace = regexp.MustCompile(`\s+`)

// AttachResume accepts a picked file only when it is a PDF. Otherwise the
// attachment is cleared and a notice is returned.
func AttachResume(form FormState, name, contentType string, data []byte) (FormState, *Notice) {
	mediaType := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	if mediaType != pdfContentType {
		form.Resume = nil
		return form, &Notice{Kind: NoticeError, Text: MsgPDFOnly}
	}
	form.Resume = &Attachment{Name: name, ContentType: pdfContentType, Data: data}
	return form, nil
}

// ValidateForm checks what must hold before anything is sent
func ValidateForm(form FormState) *Notice {
	if strings.TrimSpace(form.FullName) == "" {
		return &Notice{Kind: NoticeError, Text: MsgNameRequired}
	}
	return nil
}

// ResumeFileName is the stored name requested for an uploaded resume:
// the full name with whitespace runs turned into underscores, then the
// upload time in epoch milliseconds.
func ResumeFileName(fullName string, now time.Time) string {
	base := whitespace.ReplaceAllString(strings.TrimSpace(fullName), "_")
	return fmt.Sprintf("%s_%d.pdf", base, now.UnixMilli())
}

// CreateRequest builds the store payload from the form and an optional
// uploaded resume
func CreateRequest(form FormState, resume *domain.Resume) domain.CreateApplicantRequest {
	req := domain.CreateApplicantRequest{
		FullName:       strings.TrimSpace(form.FullName),
		LinkedInURL:    strings.TrimSpace(form.LinkedInURL),
		ExpectedSalary: strings.TrimSpace(form.ExpectedSalary),
		Notes:          strings.TrimSpace(form.Notes),
	}
	if resume != nil {
		req.ResumePath = resume.Path
		req.ResumeName = resume.Name
		req.ResumePages = resume.PageCount
	}
	return req
}
