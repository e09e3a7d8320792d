package model

import (
	"strings"
	"testing"
)

func TestCreateRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     CreateRequest
		wantErr string
	}{
		{
			name: "happy path",
			req:  CreateRequest{Position: "Engineer", Company: "Acme"},
		},
		{
			name:    "missing position",
			req:     CreateRequest{Company: "Acme"},
			wantErr: "position is required",
		},
		{
			name:    "blank company",
			req:     CreateRequest{Position: "Engineer", Company: "   "},
			wantErr: "company is required",
		},
		{
			name:    "invalid status",
			req:     CreateRequest{Position: "Engineer", Company: "Acme", Status: "bogus"},
			wantErr: `invalid status "bogus"`,
		},
		{
			name: "valid status",
			req:  CreateRequest{Position: "Engineer", Company: "Acme", Status: "contacted"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error containing %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %q", tt.wantErr, err.Error())
			}
		})
	}
}

func TestValidateStatus(t *testing.T) {
	tests := []struct {
		name    string
		status  string
		wantErr bool
	}{
		{name: "valid status", status: "active", wantErr: false},
		{name: "invalid status", status: "applied", wantErr: true},
		{name: "empty string allowed", status: "", wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStatus(tt.status)
			if tt.wantErr && err == nil {
				t.Fatal("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		})
	}
}

func TestLeadClone(t *testing.T) {
	due := "2026-11-01T09:00:00Z"
	l := Lead{Tags: []string{"a"}, FollowUpDate: &due}

	c := l.Clone()
	c.Tags[0] = "b"
	*c.FollowUpDate = "changed"

	if l.Tags[0] != "a" {
		t.Fatalf("clone shares tags: %v", l.Tags)
	}
	if *l.FollowUpDate != due {
		t.Fatalf("clone shares follow_up_date: %s", *l.FollowUpDate)
	}
}

func TestPatchValidate(t *testing.T) {
	tests := []struct {
		name    string
		patch   Patch
		wantErr string
	}{
		{name: "empty", patch: Patch{}},
		{name: "status", patch: Patch{"status": "pending"}},
		{name: "bad status", patch: Patch{"status": "archived"}, wantErr: "invalid status"},
		{name: "empty status", patch: Patch{"status": ""}, wantErr: "cannot be empty"},
		{name: "numeric status", patch: Patch{"status": 3.0}, wantErr: "status must be a string"},
		{name: "clear follow-up", patch: Patch{"follow_up_date": nil}},
		{name: "follow-up", patch: Patch{"follow_up_date": "2026-11-01T09:00:00Z"}},
		{name: "bad follow-up", patch: Patch{"follow_up_date": "tomorrow"}, wantErr: "RFC3339"},
		{name: "response flag", patch: Patch{"response_received": "yes"}, wantErr: "boolean"},
		{name: "tags string", patch: Patch{"tags": "a, b"}},
		{name: "tags array", patch: Patch{"tags": []any{"a"}}},
		{name: "tags number", patch: Patch{"tags": 1.0}, wantErr: "tags must be"},
		{name: "contact", patch: Patch{"contact_info": map[string]any{"email": "x@y.com"}}},
		{name: "contact string", patch: Patch{"contact_info": "x@y.com"}, wantErr: "contact_info"},
		{name: "custom fields object", patch: Patch{"custom_fields": map[string]any{}}, wantErr: "custom_fields"},
		{name: "notes number", patch: Patch{"notes": 5.0}, wantErr: "notes must be a string"},
		{name: "unknown field ignored", patch: Patch{"favourite": 1.0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.patch.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestEditable(t *testing.T) {
	for _, f := range []string{"status", "notes", "tags", "follow_up_date", "custom_fields"} {
		if !Editable(f) {
			t.Errorf("%s should be editable", f)
		}
	}
	for _, f := range []string{"id", "created_at", "updated_at"} {
		if Editable(f) {
			t.Errorf("%s should not be editable", f)
		}
	}
}
