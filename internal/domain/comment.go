package domain

import "time"

// Reviewer is one of the fixed team members allowed to record a decision
type Reviewer string

const (
	ReviewerMiz      Reviewer = "MIZ"
	ReviewerJeanette Reviewer = "JEANETTE"
	ReviewerManish   Reviewer = "MANISH"
	ReviewerAyesha   Reviewer = "AYESHA"
)

// Reviewers lists every reviewer in display order
var Reviewers = []Reviewer{ReviewerMiz, ReviewerJeanette, ReviewerManish, ReviewerAyesha}

func (r Reviewer) Valid() bool {
	for _, known := range Reviewers {
		if r == known {
			return true
		}
	}
	return false
}

// Decision is a reviewer's verdict on an applicant
type Decision string

const (
	DecisionConsidering    Decision = "Considering"
	DecisionNotConsidering Decision = "Not Considering"
)

// Decisions lists every decision value
var Decisions = []Decision{DecisionConsidering, DecisionNotConsidering}

func (d Decision) Valid() bool {
	return d == DecisionConsidering || d == DecisionNotConsidering
}

// TimestampLayout is the display shape of a comment timestamp: DD/MM/YYYY, HH:MM:SS
const TimestampLayout = "02/01/2006, 15:04:05"

// Comment is one timestamped reviewer decision on an applicant.
// CreatedAt is the ordering instant; Timestamp is for display only.
type Comment struct {
	ID          string    `json:"id"`
	ApplicantID string    `json:"applicant_id"`
	Reviewer    Reviewer  `json:"reviewer"`
	Decision    Decision  `json:"decision"`
	Note        string    `json:"note,omitempty"`
	Timestamp   string    `json:"timestamp"`
	CreatedAt   time.Time `json:"created_at"`
}

// AddCommentRequest is the payload accepted by POST /applicants/:id/comments
type AddCommentRequest struct {
	Reviewer Reviewer `json:"reviewer" validate:"required,reviewer"`
	Decision Decision `json:"decision" validate:"required,decision"`
	Note     string   `json:"note" validate:"max=2000"`
}

// ReviewerOptions is the reference data served to form dropdowns
type ReviewerOptions struct {
	Reviewers []Reviewer `json:"reviewers"`
	Decisions []Decision `json:"decisions"`
}
