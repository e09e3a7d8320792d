package model

import (
	"encoding/json"
	"strings"
)

// FlexList can unmarshal from either a comma-joined string or a []string.
// It only exists at the decoding boundary; Lead holds plain slices.
type FlexList []string

func (f *FlexList) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		*f = FlexList{}
		return nil
	}
	*f = FlexList(ListFrom(v))
	return nil
}

// SplitList splits s on commas, trims every token and drops empty ones.
func SplitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}

// JoinList is the write-side form for endpoints that take a string.
func JoinList(items []string) string {
	return strings.Join(items, ", ")
}

// ListFrom turns a decoded JSON value into a list. Strings are split,
// arrays are kept as they are minus non-string elements, anything else
// yields an empty list.
func ListFrom(v any) []string {
	switch t := v.(type) {
	case string:
		return SplitList(t)
	case []string:
		return append([]string{}, t...)
	case FlexList:
		return append([]string{}, t...)
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return []string{}
	}
}
