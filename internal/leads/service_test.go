package leads

import (
	"context"
	"errors"
	"testing"

	"github.com/shakilbd009/lead-finder/internal/client"
	"github.com/shakilbd009/lead-finder/internal/model"
)

func TestDetailFallsBackToPlaceholder(t *testing.T) {
	api := newFakeAPI()
	api.getErr = errors.New("dial tcp: connection refused")
	svc := NewService(api, nil)

	got, err := svc.Detail(ctx, "42")
	if err != nil {
		t.Fatalf("expected placeholder instead of error, got %v", err)
	}
	if !got.Placeholder || got.ID != "42" {
		t.Fatalf("expected placeholder for 42, got %#v", got)
	}
}

func TestDetailReportsUnauthorized(t *testing.T) {
	api := newFakeAPI()
	api.getErr = client.ErrUnauthorized
	svc := NewService(api, nil)

	if _, err := svc.Detail(ctx, "42"); !errors.Is(err, client.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestDetailReportsCancelledContext(t *testing.T) {
	api := newFakeAPI()
	api.getErr = context.Canceled
	svc := NewService(api, nil)

	cctx, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := svc.Detail(cctx, "42"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestListReportsErrors(t *testing.T) {
	api := newFakeAPI()
	api.listErr = errors.New("bad gateway")
	svc := NewService(api, nil)

	if _, err := svc.List(ctx); err == nil {
		t.Fatal("list view must surface errors")
	}
}

func TestDetailsKeepsOrder(t *testing.T) {
	a := model.Normalize(map[string]any{"id": "a", "position": "A"})
	b := model.Normalize(map[string]any{"id": "b", "position": "B"})
	svc := NewService(newFakeAPI(a, b), nil)

	got, err := svc.Details(ctx, []string{"b", "missing", "a"})
	if err != nil {
		t.Fatalf("Details failed: %v", err)
	}
	if got[0].Position != "B" || got[2].Position != "A" {
		t.Fatalf("unexpected order %v", got)
	}
	if !got[1].Placeholder {
		t.Fatal("expected placeholder for the missing lead")
	}
}

func TestOpenReturnsEditableSession(t *testing.T) {
	api := newFakeAPI(testLead())
	svc := NewService(api, nil)

	s, err := svc.Open(ctx, "42")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	got, err := s.AddTag(ctx, "Kubernetes")
	if err != nil {
		t.Fatalf("AddTag failed: %v", err)
	}
	if len(got.Tags) != 3 {
		t.Fatalf("expected 3 tags, got %v", got.Tags)
	}
}

func TestOpenUnknownLeadIsNotFound(t *testing.T) {
	svc := NewService(newFakeAPI(testLead()), nil)

	if _, err := svc.Open(ctx, "missing"); !errors.Is(err, client.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestOpenUnreachableLeadIsReadOnly(t *testing.T) {
	api := newFakeAPI(testLead())
	api.getErr = errors.New("dial tcp: connection refused")
	svc := NewService(api, nil)

	s, err := svc.Open(ctx, "42")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if _, err := s.SetStatus(ctx, model.StatusActive); !errors.Is(err, ErrPlaceholder) {
		t.Fatalf("expected ErrPlaceholder, got %v", err)
	}
}

func TestSave(t *testing.T) {
	svc := NewService(newFakeAPI(), nil)
	got, err := svc.Save(ctx, model.CreateRequest{Position: "Dev", Company: "Acme", Tags: model.FlexList{"go"}})
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if got.ID != "new" || len(got.Tags) != 1 {
		t.Fatalf("unexpected lead %#v", got)
	}
}
