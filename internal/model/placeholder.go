package model

import "time"

const placeholderID = "demo-lead"

// Placeholder builds the complete demo record shown when a lead could not
// be loaded. Every display field is populated.
func Placeholder(id string, now time.Time) Lead {
	if id == "" {
		id = placeholderID
	}
	ts := now.UTC().Format(time.RFC3339)
	return Lead{
		ID:          id,
		Position:    "Senior Software Engineer",
		Company:     "TechCorp Inc",
		Location:    "San Francisco, CA",
		URL:         "https://example.com/jobs/senior-software-engineer",
		Status:      StatusNew,
		Tags:        []string{"React", "Node.js", "Remote"},
		Description: "Build and scale customer-facing web applications with a small product team.",
		Salary:      "$120,000 - $160,000",
		Requirements: []string{
			"5+ years of software engineering experience",
			"Strong TypeScript and Go skills",
			"Experience with cloud infrastructure",
		},
		Benefits: []string{
			"Health insurance",
			"Remote-friendly schedule",
			"Equity package",
		},
		ContactInfo: ContactInfo{
			Email:    "hiring@techcorp.example",
			Phone:    "+1 555 0100",
			LinkedIn: "https://www.linkedin.com/company/techcorp",
		},
		Notes:        "Sample lead shown because the real record could not be loaded.",
		CreatedAt:    ts,
		UpdatedAt:    ts,
		Platform:     "linkedin",
		CustomFields: []CustomField{{Key: "source", Value: "demo"}},
		Placeholder:  true,
	}
}
