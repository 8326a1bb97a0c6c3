// Package dashboard holds the hiring dashboard state and the rules that
// turn it into list, table and detail views. Nothing here renders; a UI
// reads State, dispatches actions and calls the Controller for anything
// that needs the applicant store.
package dashboard

import (
	"go-applicant-tracker/internal/domain"
)

// ViewMode selects how the applicant list is shown
type ViewMode string

const (
	ViewCards ViewMode = "cards"
	ViewTable ViewMode = "table"
)

type NoticeKind string

const (
	NoticeInfo  NoticeKind = "info"
	NoticeError NoticeKind = "error"
)

// Notice is a blocking message the user must acknowledge
type Notice struct {
	Kind NoticeKind
	Text string
}

// Attachment is a file picked in the add-applicant form
type Attachment struct {
	Name        string
	ContentType string
	Data        []byte
}

// FormState is the add-applicant form
type FormState struct {
	FullName       string
	LinkedInURL    string
	ExpectedSalary string
	Notes          string
	Resume         *Attachment
}

// State is the whole dashboard. Treat it as a value: Reduce never mutates
// the state it is given.
type State struct {
	Applicants []domain.Applicant
	Search     string
	View       ViewMode
	SelectedID string
	Preview    PreviewState
	Form       FormState
	Notice     *Notice
}

// NewState is the empty dashboard in card mode
func NewState() State {
	return State{View: ViewCards, Preview: PreviewNone}
}

// Selected returns the selected applicant, if any
func (s State) Selected() (domain.Applicant, bool) {
	if s.SelectedID == "" {
		return domain.Applicant{}, false
	}
	for _, a := range s.Applicants {
		if a.ID == s.SelectedID {
			return a, true
		}
	}
	return domain.Applicant{}, false
}

// Action is a state transition
type Action interface {
	apply(s State) State
}

// Reduce returns the state that results from applying a to s
func Reduce(s State, a Action) State {
	if a == nil {
		return s
	}
	return a.apply(s)
}

// Loaded replaces the applicant list with a fresh copy from the store.
// A selection pointing at an applicant that no longer exists is dropped.
type Loaded struct {
	Applicants []domain.Applicant
}

func (a Loaded) apply(s State) State {
	s.Applicants = append([]domain.Applicant(nil), a.Applicants...)
	if _, ok := s.Selected(); !ok {
		s.SelectedID = ""
		s.Preview = PreviewNone
	}
	return s
}

type SetSearch struct {
	Term string
}

func (a SetSearch) apply(s State) State {
	s.Search = a.Term
	return s
}

// ToggleView switches between cards and table
type ToggleView struct{}

func (ToggleView) apply(s State) State {
	if s.View == ViewTable {
		s.View = ViewCards
	} else {
		s.View = ViewTable
	}
	return s
}

// Select makes ID the only selected applicant. Selecting a different
// applicant starts a fresh resume preview.
type Select struct {
	ID string
}

func (a Select) apply(s State) State {
	if a.ID == s.SelectedID {
		return s
	}
	s.SelectedID = a.ID
	s.Preview = PreviewNone
	if sel, ok := s.Selected(); ok && sel.HasResume() {
		s.Preview = PreviewPreviewing
	} else if !ok {
		s.SelectedID = ""
	}
	return s
}

type ClearSelection struct{}

func (ClearSelection) apply(s State) State {
	s.SelectedID = ""
	s.Preview = PreviewNone
	return s
}

// ResumeLoadFailed latches the preview into its fallback
type ResumeLoadFailed struct{}

func (ResumeLoadFailed) apply(s State) State {
	if s.Preview == PreviewPreviewing {
		s.Preview = PreviewFallback
	}
	return s
}

// EditForm replaces the text fields of the form and keeps the attachment
type EditForm struct {
	FullName       string
	LinkedInURL    string
	ExpectedSalary string
	Notes          string
}

func (a EditForm) apply(s State) State {
	s.Form.FullName = a.FullName
	s.Form.LinkedInURL = a.LinkedInURL
	s.Form.ExpectedSalary = a.ExpectedSalary
	s.Form.Notes = a.Notes
	return s
}

// AttachFile runs the PDF check on a picked file. A rejected file clears
// the form's attachment and raises a notice.
type AttachFile struct {
	Name        string
	ContentType string
	Data        []byte
}

func (a AttachFile) apply(s State) State {
	form, notice := AttachResume(s.Form, a.Name, a.ContentType, a.Data)
	s.Form = form
	if notice != nil {
		s.Notice = notice
	}
	return s
}

type ResetForm struct{}

func (ResetForm) apply(s State) State {
	s.Form = FormState{}
	return s
}

type ShowNotice struct {
	Notice Notice
}

func (a ShowNotice) apply(s State) State {
	n := a.Notice
	s.Notice = &n
	return s
}

type DismissNotice struct{}

func (DismissNotice) apply(s State) State {
	s.Notice = nil
	return s
}

// CommentAdded appends a stored comment to its applicant's history
type CommentAdded struct {
	Comment domain.Comment
}

func (a CommentAdded) apply(s State) State {
	applicants := make([]domain.Applicant, len(s.Applicants))
	copy(applicants, s.Applicants)
	for i := range applicants {
		if applicants[i].ID != a.Comment.ApplicantID {
			continue
		}
		comments := make([]domain.Comment, 0, len(applicants[i].Comments)+1)
		comments = append(comments, applicants[i].Comments...)
		applicants[i].Comments = append(comments, a.Comment)
	}
	s.Applicants = applicants
	return s
}
