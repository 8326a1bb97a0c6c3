package dashboard

import (
	"strings"

	"go-applicant-tracker/internal/consensus"
	"go-applicant-tracker/internal/domain"
)

// PreviewState is the inline resume viewer. It only moves from previewing
// to fallback; a new selection starts over.
type PreviewState string

const (
	PreviewNone       PreviewState = "none"
	PreviewPreviewing PreviewState = "previewing"
	PreviewFallback   PreviewState = "fallback"
)

type FieldKind string

const (
	FieldSalary   FieldKind = "salary"
	FieldLinkedIn FieldKind = "linkedin"
	FieldNotes    FieldKind = "notes"
	FieldResume   FieldKind = "resume"
)

// Field is one labelled value of an applicant
type Field struct {
	Kind  FieldKind
	Label string
	Value string
}

// Fields lists only the applicant fields that carry a value
func Fields(a domain.Applicant) []Field {
	var fields []Field
	add := func(kind FieldKind, label, value string) {
		if strings.TrimSpace(value) != "" {
			fields = append(fields, Field{Kind: kind, Label: label, Value: value})
		}
	}
	add(FieldSalary, "Expected Salary", a.ExpectedSalary)
	add(FieldLinkedIn, "LinkedIn Profile", a.LinkedInURL)
	add(FieldNotes, "Notes", a.Notes)
	if a.HasResume() {
		add(FieldResume, "Resume", a.ResumeName())
	}
	return fields
}

// DisplayedComments is the comment list of the detail page: one per
// reviewer, newest first. The full history stays on the applicant.
func DisplayedComments(a domain.Applicant) []domain.Comment {
	return consensus.LatestComments(a.Comments)
}

// ValidateComment reports the notice to show when a comment is incomplete
func ValidateComment(req domain.AddCommentRequest) *Notice {
	if req.Reviewer == "" || req.Decision == "" || !req.Reviewer.Valid() || !req.Decision.Valid() {
		return &Notice{Kind: NoticeError, Text: MsgCommentIncomplete}
	}
	return nil
}

// ResumeLinker turns a stored resume path into URLs
type ResumeLinker interface {
	ResumeURL(path string, download bool) string
}

// Detail is the view model of the selected applicant
type Detail struct {
	Applicant   domain.Applicant
	Fields      []Field
	Comments    []domain.Comment
	Consensus   consensus.Result
	Preview     PreviewState
	OpenURL     string
	DownloadURL string
}

// DetailOf builds the detail view of the selected applicant
func DetailOf(s State, links ResumeLinker) (Detail, bool) {
	a, ok := s.Selected()
	if !ok {
		return Detail{}, false
	}

	d := Detail{
		Applicant: a,
		Fields:    Fields(a),
		Comments:  DisplayedComments(a),
		Consensus: consensus.Aggregate(a.Comments),
		Preview:   s.Preview,
	}
	if a.HasResume() && links != nil {
		d.OpenURL = links.ResumeURL(a.Resume.Path, false)
		d.DownloadURL = links.ResumeURL(a.Resume.Path, true)
	}
	return d, true
}
