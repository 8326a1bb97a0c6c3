// Package consensus derives each reviewer's latest decision from an
// applicant's comment history and turns the tally into a row signal.
package consensus

import (
	"math"
	"sort"
	"strconv"
	"time"

	"go-applicant-tracker/internal/domain"
)

// Polarity is the direction of the team consensus
type Polarity string

const (
	Neutral  Polarity = "neutral"
	Positive Polarity = "positive"
	Negative Polarity = "negative"
)

const (
	stepPerVote  = 0.15
	maxIntensity = 0.6
)

// Signal is the consensus direction plus an opacity-like intensity in [0, 0.6]
type Signal struct {
	Polarity  Polarity `json:"polarity"`
	Intensity float64  `json:"intensity"`
}

// Color renders the signal as a CSS background value
func (s Signal) Color() string {
	alpha := strconv.FormatFloat(s.Intensity, 'f', -1, 64)
	switch s.Polarity {
	case Positive:
		return "rgba(34, 197, 94, " + alpha + ")"
	case Negative:
		return "rgba(239, 68, 68, " + alpha + ")"
	default:
		return "transparent"
	}
}

// Result holds the latest decision per reviewer and the derived signal
type Result struct {
	Decisions      map[domain.Reviewer]domain.Decision
	Latest         map[domain.Reviewer]domain.Comment
	Considering    int
	NotConsidering int
	Signal         Signal
}

// Aggregate computes the latest decision of every reviewer present in
// comments and the resulting consensus. Input order does not matter except
// to break ties between identical instants.
func Aggregate(comments []domain.Comment) Result {
	res := Result{
		Decisions: make(map[domain.Reviewer]domain.Decision),
		Latest:    make(map[domain.Reviewer]domain.Comment),
	}

	for _, c := range LatestComments(comments) {
		res.Latest[c.Reviewer] = c
		res.Decisions[c.Reviewer] = c.Decision
		switch c.Decision {
		case domain.DecisionConsidering:
			res.Considering++
		case domain.DecisionNotConsidering:
			res.NotConsidering++
		}
	}

	res.Signal = signalFor(res.Considering, res.NotConsidering)
	return res
}

// LatestComments returns one comment per reviewer, the most recent one,
// ordered newest first.
func LatestComments(comments []domain.Comment) []domain.Comment {
	sorted := SortNewestFirst(comments)

	seen := make(map[domain.Reviewer]bool, len(domain.Reviewers))
	latest := make([]domain.Comment, 0, len(domain.Reviewers))
	for _, c := range sorted {
		if seen[c.Reviewer] {
			continue
		}
		seen[c.Reviewer] = true
		latest = append(latest, c)
	}
	return latest
}

// SortNewestFirst returns a copy of comments ordered by Instant, newest
// first. Equal instants keep their input order.
func SortNewestFirst(comments []domain.Comment) []domain.Comment {
	sorted := make([]domain.Comment, len(comments))
	copy(sorted, comments)
	sort.SliceStable(sorted, func(i, j int) bool {
		return Instant(sorted[i]).After(Instant(sorted[j]))
	})
	return sorted
}

// Instant is the ordering time of a comment. Comments written before
// CreatedAt existed fall back to their display timestamp; anything that
// cannot be parsed is treated as the oldest possible instant.
func Instant(c domain.Comment) time.Time {
	if !c.CreatedAt.IsZero() {
		return c.CreatedAt
	}
	t, err := ParseTimestamp(c.Timestamp)
	if err != nil {
		return time.Time{}
	}
	return t
}

// ParseTimestamp parses the display form DD/MM/YYYY, HH:MM:SS. The shape is
// strict: any deviation is an error.
func ParseTimestamp(s string) (time.Time, error) {
	return time.ParseInLocation(domain.TimestampLayout, s, time.Local)
}

// Summarize aggregates an applicant's comments into the API view
func Summarize(a domain.Applicant) domain.ConsensusSummary {
	res := Aggregate(a.Comments)
	return domain.ConsensusSummary{
		ApplicantID:    a.ID,
		Decisions:      res.Decisions,
		Considering:    res.Considering,
		NotConsidering: res.NotConsidering,
		Polarity:       string(res.Signal.Polarity),
		Intensity:      res.Signal.Intensity,
		Color:          res.Signal.Color(),
	}
}

func signalFor(considering, notConsidering int) Signal {
	switch {
	case considering > notConsidering:
		return Signal{Polarity: Positive, Intensity: intensity(considering)}
	case notConsidering > considering:
		return Signal{Polarity: Negative, Intensity: intensity(notConsidering)}
	default:
		return Signal{Polarity: Neutral}
	}
}

func intensity(votes int) float64 {
	v := math.Min(float64(votes)*stepPerVote, maxIntensity)
	return math.Round(v*100) / 100
}
