package model

import (
	"encoding/json"
	"fmt"
	"slices"
	"sort"
	"time"
)

// Patch is a partial Lead keyed by wire field names. A nil value clears a
// nullable field such as follow_up_date.
type Patch map[string]any

func (p Patch) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Merge overlays patch on current and normalizes the result, so list
// fields in the patch may be given as strings or slices.
func Merge(current Lead, patch Patch) Lead {
	m := toMap(current)
	for k, v := range toMap(patch) {
		m[k] = v
	}
	out := fromMap(m)
	out.Placeholder = current.Placeholder
	return out
}

// Fields returns the current values of the named fields as a Patch.
// Applying it with Merge restores those fields.
func (l Lead) Fields(keys ...string) Patch {
	m := toMap(l)
	p := make(Patch, len(keys))
	for _, k := range keys {
		p[k] = m[k]
	}
	return p
}

// toMap converts v into its decoded JSON object form. Lead and Patch only
// hold JSON-encodable values so marshalling does not fail.
func toMap(v any) map[string]any {
	m := map[string]any{}
	b, err := json.Marshal(v)
	if err != nil {
		return m
	}
	_ = json.Unmarshal(b, &m)
	return m
}

var (
	textFields     = []string{"position", "company", "location", "url", "description", "salary", "notes", "platform", "response_date"}
	listFields     = []string{"tags", "requirements", "benefits"}
	editableFields = map[string]bool{
		"status": true, "response_received": true, "follow_up_date": true,
		"contact_info": true, "custom_fields": true,
	}
)

func init() {
	for _, f := range textFields {
		editableFields[f] = true
	}
	for _, f := range listFields {
		editableFields[f] = true
	}
}

// Editable reports whether a wire field may be changed by a partial update.
func Editable(field string) bool {
	return editableFields[field]
}

// Validate checks the types of the known fields of a decoded patch.
// Unknown fields are ignored.
func (p Patch) Validate() error {
	for _, k := range p.Keys() {
		v := p[k]
		switch {
		case k == "status":
			s, ok := v.(string)
			if !ok {
				return fmt.Errorf("status must be a string")
			}
			if s == "" {
				return fmt.Errorf("status cannot be empty")
			}
			if err := ValidateStatus(s); err != nil {
				return err
			}
		case k == "response_received":
			if _, ok := v.(bool); !ok {
				return fmt.Errorf("response_received must be a boolean")
			}
		case k == "follow_up_date":
			if v == nil {
				continue
			}
			s, ok := v.(string)
			if !ok {
				return fmt.Errorf("follow_up_date must be a string or null")
			}
			if _, err := time.Parse(time.RFC3339, s); err != nil {
				return fmt.Errorf("follow_up_date must be RFC3339 (e.g. 2026-01-01T00:00:00Z)")
			}
		case k == "contact_info":
			if _, ok := v.(map[string]any); !ok {
				return fmt.Errorf("contact_info must be an object")
			}
		case k == "custom_fields":
			if _, ok := v.([]any); !ok {
				return fmt.Errorf("custom_fields must be an array")
			}
		case slices.Contains(listFields, k):
			switch v.(type) {
			case string, []any:
			default:
				return fmt.Errorf("%s must be a string or an array of strings", k)
			}
		case slices.Contains(textFields, k):
			if _, ok := v.(string); !ok {
				return fmt.Errorf("%s must be a string", k)
			}
		}
	}
	return nil
}

// ContactFrom and CustomFieldsFrom coerce decoded JSON values the same
// way Normalize does.
func ContactFrom(v any) ContactInfo { return contactFrom(v) }

func CustomFieldsFrom(v any) []CustomField { return customFieldsFrom(v) }
