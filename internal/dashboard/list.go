package dashboard

import (
	"sort"
	"strings"

	"go-applicant-tracker/internal/consensus"
	"go-applicant-tracker/internal/domain"
)

// SalaryPlaceholder fills the salary column when no expectation was given
const SalaryPlaceholder = "First 14"

// Badge is the per-reviewer mark in the table
type Badge string

const (
	BadgeConsidering    Badge = "✓"
	BadgeNotConsidering Badge = "✗"
)

func badgeFor(d domain.Decision) (Badge, bool) {
	switch d {
	case domain.DecisionConsidering:
		return BadgeConsidering, true
	case domain.DecisionNotConsidering:
		return BadgeNotConsidering, true
	}
	return "", false
}

// Visible returns the applicants whose full name contains the search term,
// ignoring case, sorted alphabetically by full name
func Visible(s State) []domain.Applicant {
	term := strings.ToLower(s.Search)

	out := make([]domain.Applicant, 0, len(s.Applicants))
	for _, a := range s.Applicants {
		if term == "" || strings.Contains(strings.ToLower(a.FullName), term) {
			out = append(out, a)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].FullName) < strings.ToLower(out[j].FullName)
	})
	return out
}

// Row is one line of the table view
type Row struct {
	Applicant domain.Applicant
	Signal    consensus.Signal
	Color     string
	Badges    map[domain.Reviewer]Badge
	Salary    string
	Selected  bool
}

// TableRows builds the table view. Every row is coloured by the team
// consensus and carries a badge for each reviewer who has decided.
func TableRows(s State) []Row {
	visible := Visible(s)
	rows := make([]Row, 0, len(visible))
	for _, a := range visible {
		res := consensus.Aggregate(a.Comments)

		badges := make(map[domain.Reviewer]Badge, len(res.Decisions))
		for reviewer, decision := range res.Decisions {
			if b, ok := badgeFor(decision); ok {
				badges[reviewer] = b
			}
		}

		salary := a.ExpectedSalary
		if strings.TrimSpace(salary) == "" {
			salary = SalaryPlaceholder
		}

		rows = append(rows, Row{
			Applicant: a,
			Signal:    res.Signal,
			Color:     res.Signal.Color(),
			Badges:    badges,
			Salary:    salary,
			Selected:  a.ID == s.SelectedID,
		})
	}
	return rows
}

// Card is one tile of the card view
type Card struct {
	ID           string
	FullName     string
	Fields       []Field
	CommentCount int
	Selected     bool
}

func Cards(s State) []Card {
	visible := Visible(s)
	cards := make([]Card, 0, len(visible))
	for _, a := range visible {
		cards = append(cards, Card{
			ID:           a.ID,
			FullName:     a.FullName,
			Fields:       Fields(a),
			CommentCount: len(consensus.LatestComments(a.Comments)),
			Selected:     a.ID == s.SelectedID,
		})
	}
	return cards
}

// Stats counts the whole collection, not just the visible part
func Stats(applicants []domain.Applicant) domain.ApplicantStats {
	stats := domain.ApplicantStats{Total: len(applicants)}
	for _, a := range applicants {
		if a.HasResume() {
			stats.WithResume++
		}
		if strings.TrimSpace(a.LinkedInURL) != "" {
			stats.WithLinkedIn++
		}
	}
	return stats
}
