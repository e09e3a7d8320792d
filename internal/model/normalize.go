package model

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Normalize converts a loosely typed server payload into a fully defaulted
// Lead. It accepts a decoded JSON object, raw JSON bytes, or a Lead. A nil
// or otherwise unusable input yields the placeholder record. Normalize
// never panics on malformed sub-fields; they fall back to their defaults.
func Normalize(raw any) Lead {
	switch v := raw.(type) {
	case map[string]any:
		return fromMap(v)
	case Lead:
		return normalizeLead(v)
	case *Lead:
		if v == nil {
			return Placeholder("", time.Now())
		}
		return normalizeLead(*v)
	case json.RawMessage:
		return Decode(v)
	case []byte:
		return Decode(v)
	default:
		return Placeholder("", time.Now())
	}
}

// Decode parses data and normalizes it. Undecodable input yields the
// placeholder record.
func Decode(data []byte) Lead {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil || m == nil {
		return Placeholder("", time.Now())
	}
	return fromMap(m)
}

func fromMap(m map[string]any) Lead {
	return normalizeLead(Lead{
		ID:               text(m["id"]),
		Position:         text(m["position"]),
		Company:          text(m["company"]),
		Location:         text(m["location"]),
		URL:              text(m["url"]),
		Status:           Status(strings.ToLower(strings.TrimSpace(text(m["status"])))),
		Tags:             ListFrom(m["tags"]),
		Description:      text(m["description"]),
		Salary:           text(m["salary"]),
		Requirements:     ListFrom(m["requirements"]),
		Benefits:         ListFrom(m["benefits"]),
		ContactInfo:      contactFrom(m["contact_info"]),
		Notes:            text(m["notes"]),
		CreatedAt:        text(m["created_at"]),
		UpdatedAt:        text(m["updated_at"]),
		Platform:         text(m["platform"]),
		ResponseReceived: flag(m["response_received"]),
		ResponseDate:     text(m["response_date"]),
		FollowUpDate:     optionalText(m["follow_up_date"]),
		CustomFields:     customFieldsFrom(m["custom_fields"]),
	})
}

func normalizeLead(l Lead) Lead {
	l = l.Clone()
	l.Position = orNotAvailable(l.Position)
	l.Company = orNotAvailable(l.Company)
	l.Location = orNotAvailable(l.Location)
	if !ValidStatuses[l.Status] {
		l.Status = StatusNew
	}
	if l.FollowUpDate != nil && strings.TrimSpace(*l.FollowUpDate) == "" {
		l.FollowUpDate = nil
	}
	return l
}

func orNotAvailable(s string) string {
	if strings.TrimSpace(s) == "" {
		return NotAvailable
	}
	return s
}

func text(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

func optionalText(v any) *string {
	s := text(v)
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

func flag(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		b, _ := strconv.ParseBool(strings.TrimSpace(t))
		return b
	default:
		return false
	}
}

func contactFrom(v any) ContactInfo {
	m, ok := v.(map[string]any)
	if !ok {
		return ContactInfo{}
	}
	return ContactInfo{
		Email:    text(m["email"]),
		Phone:    text(m["phone"]),
		LinkedIn: text(m["linkedin"]),
	}
}

// customFieldsFrom accepts the documented [{key, value}] form and also a
// plain object, whose keys are taken in sorted order.
func customFieldsFrom(v any) []CustomField {
	out := []CustomField{}
	switch t := v.(type) {
	case []any:
		for _, e := range t {
			m, ok := e.(map[string]any)
			if !ok {
				continue
			}
			key := text(m["key"])
			if key == "" {
				continue
			}
			out = append(out, CustomField{Key: key, Value: text(m["value"])})
		}
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			out = append(out, CustomField{Key: k, Value: text(t[k])})
		}
	}
	return out
}
