package model

import (
	"fmt"
	"strings"
)

type Status string

const (
	StatusNew       Status = "new"
	StatusActive    Status = "active"
	StatusContacted Status = "contacted"
	StatusPending   Status = "pending"
	StatusRejected  Status = "rejected"
)

var ValidStatuses = map[Status]bool{
	StatusNew:       true,
	StatusActive:    true,
	StatusContacted: true,
	StatusPending:   true,
	StatusRejected:  true,
}

// NotAvailable is shown for display fields the server left empty.
const NotAvailable = "N/A"

type ContactInfo struct {
	Email    string `json:"email,omitempty" yaml:"email,omitempty"`
	Phone    string `json:"phone,omitempty" yaml:"phone,omitempty"`
	LinkedIn string `json:"linkedin,omitempty" yaml:"linkedin,omitempty"`
}

type CustomField struct {
	Key   string `json:"key" yaml:"key"`
	Value string `json:"value" yaml:"value"`
}

// Lead is the canonical in-memory form of a tracked job opportunity.
// Values produced by Normalize never carry nil slices.
type Lead struct {
	ID               string        `json:"id" yaml:"id"`
	Position         string        `json:"position" yaml:"position"`
	Company          string        `json:"company" yaml:"company"`
	Location         string        `json:"location" yaml:"location"`
	URL              string        `json:"url" yaml:"url"`
	Status           Status        `json:"status" yaml:"status"`
	Tags             []string      `json:"tags" yaml:"tags"`
	Description      string        `json:"description" yaml:"description"`
	Salary           string        `json:"salary" yaml:"salary"`
	Requirements     []string      `json:"requirements" yaml:"requirements"`
	Benefits         []string      `json:"benefits" yaml:"benefits"`
	ContactInfo      ContactInfo   `json:"contact_info" yaml:"contact_info"`
	Notes            string        `json:"notes" yaml:"notes"`
	CreatedAt        string        `json:"created_at" yaml:"created_at"`
	UpdatedAt        string        `json:"updated_at" yaml:"updated_at"`
	Platform         string        `json:"platform" yaml:"platform"`
	ResponseReceived bool          `json:"response_received" yaml:"response_received"`
	ResponseDate     string        `json:"response_date,omitempty" yaml:"response_date,omitempty"`
	FollowUpDate     *string       `json:"follow_up_date" yaml:"follow_up_date"`
	CustomFields     []CustomField `json:"custom_fields" yaml:"custom_fields"`

	// Placeholder marks synthetic demo data produced when the real record
	// could not be read.
	Placeholder bool `json:"-" yaml:"-"`
}

// Clone returns a deep copy.
func (l Lead) Clone() Lead {
	out := l
	out.Tags = append([]string{}, l.Tags...)
	out.Requirements = append([]string{}, l.Requirements...)
	out.Benefits = append([]string{}, l.Benefits...)
	out.CustomFields = append([]CustomField{}, l.CustomFields...)
	if l.FollowUpDate != nil {
		v := *l.FollowUpDate
		out.FollowUpDate = &v
	}
	return out
}

// HasTag reports whether tag is present, compared exactly.
func (l Lead) HasTag(tag string) bool {
	for _, t := range l.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// CreateRequest is the body of POST /api/leads. Tags may arrive either
// comma-joined or as an array.
type CreateRequest struct {
	Position string   `json:"position"`
	Company  string   `json:"company"`
	Location string   `json:"location"`
	URL      string   `json:"url"`
	Tags     FlexList `json:"tags"`
	Status   string   `json:"status"`
	Platform string   `json:"platform"`
}

func (r CreateRequest) Validate() error {
	if strings.TrimSpace(r.Position) == "" {
		return fmt.Errorf("position is required")
	}
	if strings.TrimSpace(r.Company) == "" {
		return fmt.Errorf("company is required")
	}
	return ValidateStatus(r.Status)
}

type StatsResponse struct {
	ByStatus         map[Status]int `json:"by_status"`
	Total            int            `json:"total"`
	ResponsesTotal   int            `json:"responses_total"`
	FollowUpsPending int            `json:"follow_ups_pending"`
}

func ValidateStatus(status string) error {
	if status != "" && !ValidStatuses[Status(status)] {
		return fmt.Errorf("invalid status %q, valid values: new, active, contacted, pending, rejected", status)
	}
	return nil
}

type ListOptions struct {
	Status string
	Tag    string
	Limit  int
	Offset int
}
