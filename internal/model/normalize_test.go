package model

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"
)

func TestSplitList(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{in: "a, b ,", want: []string{"a", "b"}},
		{in: "", want: []string{}},
		{in: " , ,", want: []string{}},
		{in: "React,Node.js", want: []string{"React", "Node.js"}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := SplitList(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("SplitList(%q) = %#v, want %#v", tt.in, got, tt.want)
			}
		})
	}
}

func TestFlexListUnmarshal(t *testing.T) {
	tests := []struct {
		name string
		body string
		want FlexList
	}{
		{name: "string", body: `{"tags":"go, sql ,"}`, want: FlexList{"go", "sql"}},
		{name: "array", body: `{"tags":["go","sql"]}`, want: FlexList{"go", "sql"}},
		{name: "mixed array", body: `{"tags":["go",3,null]}`, want: FlexList{"go"}},
		{name: "number", body: `{"tags":42}`, want: FlexList{}},
		{name: "null", body: `{"tags":null}`, want: FlexList{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req CreateRequest
			if err := json.Unmarshal([]byte(tt.body), &req); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if !reflect.DeepEqual(req.Tags, tt.want) {
				t.Fatalf("got %#v, want %#v", req.Tags, tt.want)
			}
		})
	}
}

func TestNormalizeTagCoercionIsIdempotent(t *testing.T) {
	l := Normalize(map[string]any{"tags": []any{"a", "b"}})
	if !reflect.DeepEqual(l.Tags, []string{"a", "b"}) {
		t.Fatalf("expected [a b], got %#v", l.Tags)
	}
	again := Normalize(l)
	if !reflect.DeepEqual(again, l) {
		t.Fatalf("second normalization changed the lead:\n%#v\n%#v", again, l)
	}

	fromString := Normalize(map[string]any{"tags": "a, b ,"})
	if !reflect.DeepEqual(fromString.Tags, []string{"a", "b"}) {
		t.Fatalf("expected [a b], got %#v", fromString.Tags)
	}
}

func TestNormalizeEmptyObjectDefaults(t *testing.T) {
	l := Normalize(map[string]any{})

	if l.Placeholder {
		t.Fatal("empty object must not become a placeholder")
	}
	if l.Position != NotAvailable || l.Company != NotAvailable || l.Location != NotAvailable {
		t.Fatalf("expected N/A display fields, got %q %q %q", l.Position, l.Company, l.Location)
	}
	if l.Status != StatusNew {
		t.Fatalf("expected status new, got %q", l.Status)
	}
	for name, list := range map[string][]string{"tags": l.Tags, "requirements": l.Requirements, "benefits": l.Benefits} {
		if list == nil || len(list) != 0 {
			t.Fatalf("expected empty non-nil %s, got %#v", name, list)
		}
	}
	if l.CustomFields == nil || len(l.CustomFields) != 0 {
		t.Fatalf("expected empty custom_fields, got %#v", l.CustomFields)
	}
	if l.ContactInfo != (ContactInfo{}) {
		t.Fatalf("expected empty contact_info, got %#v", l.ContactInfo)
	}
	if l.ResponseReceived || l.FollowUpDate != nil || l.Notes != "" || l.URL != "" {
		t.Fatalf("unexpected non-default values: %#v", l)
	}
}

func TestNormalizeAbsentInputYieldsPlaceholder(t *testing.T) {
	for name, raw := range map[string]any{
		"nil":        nil,
		"nil lead":   (*Lead)(nil),
		"bad json":   []byte(`{not json`),
		"json array": json.RawMessage(`[1,2]`),
		"scalar":     "oops",
	} {
		t.Run(name, func(t *testing.T) {
			l := Normalize(raw)
			if !l.Placeholder {
				t.Fatal("expected placeholder")
			}
			for field, v := range map[string]string{
				"id": l.ID, "position": l.Position, "company": l.Company,
				"location": l.Location, "url": l.URL, "description": l.Description,
				"salary": l.Salary, "notes": l.Notes, "platform": l.Platform,
				"created_at": l.CreatedAt, "contact email": l.ContactInfo.Email,
			} {
				if v == "" || v == NotAvailable {
					t.Errorf("placeholder field %s is empty", field)
				}
			}
			if len(l.Tags) == 0 || len(l.Requirements) == 0 || len(l.Benefits) == 0 {
				t.Error("placeholder lists must be populated")
			}
		})
	}
}

func TestNormalizeMalformedFields(t *testing.T) {
	l := Decode([]byte(`{
		"id": 42,
		"position": "  ",
		"status": "ACTIVE",
		"tags": {"x": 1},
		"requirements": "go, k8s",
		"benefits": ["401k", 7],
		"contact_info": "nope",
		"response_received": "true",
		"follow_up_date": "",
		"custom_fields": [{"key": "team", "value": "infra"}, {"value": "orphan"}, "junk"]
	}`))

	if l.ID != "42" {
		t.Errorf("expected numeric id to become \"42\", got %q", l.ID)
	}
	if l.Position != NotAvailable {
		t.Errorf("expected blank position to default, got %q", l.Position)
	}
	if l.Status != StatusActive {
		t.Errorf("expected status active, got %q", l.Status)
	}
	if len(l.Tags) != 0 {
		t.Errorf("expected object tags to become empty, got %#v", l.Tags)
	}
	if !reflect.DeepEqual(l.Requirements, []string{"go", "k8s"}) {
		t.Errorf("unexpected requirements %#v", l.Requirements)
	}
	if !reflect.DeepEqual(l.Benefits, []string{"401k"}) {
		t.Errorf("unexpected benefits %#v", l.Benefits)
	}
	if l.ContactInfo != (ContactInfo{}) {
		t.Errorf("expected empty contact info, got %#v", l.ContactInfo)
	}
	if !l.ResponseReceived {
		t.Error("expected response_received true")
	}
	if l.FollowUpDate != nil {
		t.Errorf("expected blank follow_up_date to be nil, got %q", *l.FollowUpDate)
	}
	if !reflect.DeepEqual(l.CustomFields, []CustomField{{Key: "team", Value: "infra"}}) {
		t.Errorf("unexpected custom fields %#v", l.CustomFields)
	}
}

func TestNormalizeUnknownStatusDefaultsToNew(t *testing.T) {
	l := Normalize(map[string]any{"status": "archived"})
	if l.Status != StatusNew {
		t.Fatalf("expected new, got %q", l.Status)
	}
}

func TestNormalizeEndToEndRecord(t *testing.T) {
	l := Decode([]byte(`{"id":"42","company":"Acme Inc","location":"Remote","status":"active",
		"tags":"react, node","response_received":true,"contact_info":{"email":"x@y.com"}}`))

	if !reflect.DeepEqual(l.Tags, []string{"react", "node"}) {
		t.Fatalf("expected [react node], got %#v", l.Tags)
	}
	if l.Company != "Acme Inc" || l.ContactInfo.Email != "x@y.com" {
		t.Fatalf("unexpected record %#v", l)
	}
}

func TestMerge(t *testing.T) {
	base := Normalize(map[string]any{"id": "1", "position": "Dev", "tags": "a,b", "follow_up_date": "2026-11-01T09:00:00Z"})

	got := Merge(base, Patch{"status": StatusContacted, "tags": []string{"a", "b", "c"}, "follow_up_date": nil})

	if got.Status != StatusContacted {
		t.Errorf("expected contacted, got %q", got.Status)
	}
	if !reflect.DeepEqual(got.Tags, []string{"a", "b", "c"}) {
		t.Errorf("unexpected tags %#v", got.Tags)
	}
	if got.FollowUpDate != nil {
		t.Errorf("expected follow_up_date cleared")
	}
	if got.Position != "Dev" || got.ID != "1" {
		t.Errorf("untouched fields changed: %#v", got)
	}
	if !reflect.DeepEqual(base.Tags, []string{"a", "b"}) {
		t.Errorf("merge mutated its input: %#v", base.Tags)
	}
}

func TestFieldsRestoresSnapshot(t *testing.T) {
	snapshot := Normalize(map[string]any{"id": "1", "notes": "old", "tags": []any{"x"}})
	patch := Patch{"notes": "new", "tags": []string{}, "response_date": "2026-10-15T00:00:00Z"}

	changed := Merge(snapshot, patch)
	restored := Merge(changed, snapshot.Fields(patch.Keys()...))

	if !reflect.DeepEqual(restored, snapshot) {
		t.Fatalf("expected snapshot back:\n got %#v\nwant %#v", restored, snapshot)
	}
}

func TestPlaceholderKeepsID(t *testing.T) {
	now := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	l := Placeholder("abc", now)
	if l.ID != "abc" || l.CreatedAt != "2026-10-15T12:00:00Z" {
		t.Fatalf("unexpected placeholder %#v", l)
	}
}
