// Package score ranks leads with an additive point system.
package score

import (
	"strings"
	"unicode/utf8"

	"github.com/shakilbd009/lead-finder/internal/model"
)

const (
	base     = 10
	maxScore = 100
)

type Reason struct {
	Rule   string `json:"rule" yaml:"rule"`
	Points int    `json:"points" yaml:"points"`
}

type Result struct {
	Score   int      `json:"score" yaml:"score"`
	Label   string   `json:"label" yaml:"label"`
	Reasons []Reason `json:"reasons" yaml:"reasons"`
}

var statusPoints = map[model.Status]int{
	model.StatusActive:    10,
	model.StatusContacted: 8,
	model.StatusPending:   5,
}

// Calculate scores a lead snapshot. It is pure and cheap, so callers
// recompute it whenever the lead changes instead of caching it.
func Calculate(l model.Lead) Result {
	company := strings.ToLower(l.Company)
	location := strings.ToLower(l.Location)

	total := 0
	var reasons []Reason
	add := func(rule string, points int) {
		total += points
		reasons = append(reasons, Reason{Rule: rule, Points: points})
	}

	add("base", base)
	if strings.Contains(company, "inc") {
		add("company: inc", 5)
	}
	if strings.Contains(company, "corp") {
		add("company: corp", 5)
	}
	if strings.Contains(company, "tech") {
		add("company: tech", 3)
	}
	if strings.Contains(location, "remote") {
		add("location: remote", 8)
	}
	if strings.Contains(location, "san francisco") || strings.Contains(location, "new york") {
		add("location: major city", 5)
	}
	if p, ok := statusPoints[l.Status]; ok {
		add("status: "+string(l.Status), p)
	}
	if l.ResponseReceived {
		add("response received", 15)
	}
	if utf8.RuneCountInString(l.Notes) > 50 {
		add("detailed notes", 5)
	}
	if l.FollowUpDate != nil && *l.FollowUpDate != "" {
		add("follow-up scheduled", 3)
	}
	if l.ContactInfo.Email != "" {
		add("contact: email", 5)
	}
	if l.ContactInfo.LinkedIn != "" {
		add("contact: linkedin", 3)
	}
	if n := len(l.Tags); n > 0 {
		add("tags", 2*n)
	}

	total = clamp(total)
	return Result{Score: total, Label: LabelFor(total), Reasons: reasons}
}

func LabelFor(score int) string {
	switch {
	case score >= 80:
		return "High Priority"
	case score >= 60:
		return "Medium Priority"
	case score >= 40:
		return "Low Priority"
	default:
		return "Very Low Priority"
	}
}

func clamp(n int) int {
	if n < 0 {
		return 0
	}
	if n > maxScore {
		return maxScore
	}
	return n
}
