package leads

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/shakilbd009/lead-finder/internal/model"
	"github.com/shakilbd009/lead-finder/internal/reminder"
)

var (
	ErrEmptyTag     = errors.New("tag is empty")
	ErrDuplicateTag = errors.New("tag already present")
	ErrTagComma     = errors.New("tag cannot contain a comma")
	ErrPlaceholder  = errors.New("lead is demo data and cannot be changed")
	ErrClosed       = errors.New("lead was deleted")
)

// Remote persists lead mutations. *client.Client satisfies it.
type Remote interface {
	UpdateLead(ctx context.Context, id string, patch model.Patch) (model.Lead, error)
	DeleteLead(ctx context.Context, id string) error
}

// Notifier delivers local reminders.
type Notifier interface {
	// Granted reports whether the user allowed notifications.
	Granted() bool
	Notify(title, body string) error
}

type SessionOption func(*Session)

func WithReminders(s *reminder.Scheduler, n Notifier) SessionOption {
	return func(sess *Session) {
		sess.reminders = s
		sess.notifier = n
	}
}

func WithLogger(logger *slog.Logger) SessionOption {
	return func(sess *Session) { sess.log = logger }
}

func withClock(now func() time.Time) SessionOption {
	return func(sess *Session) { sess.now = now }
}

// Session holds one lead and applies mutations to it optimistically.
//
// Every mutation replaces the local state before the remote call
// returns. On success the server's record replaces the state wholesale;
// on failure the patched fields are restored from the pre-mutation
// snapshot and the error is returned. Mutations are not sequenced against
// each other, so with several in flight the last response wins.
type Session struct {
	mu           sync.Mutex
	lead         model.Lead
	remote       Remote
	editingNotes bool
	closed       bool

	reminders *reminder.Scheduler
	notifier  Notifier
	now       func() time.Time
	log       *slog.Logger
}

func NewSession(lead model.Lead, remote Remote, opts ...SessionOption) *Session {
	s := &Session{
		lead:   model.Normalize(lead),
		remote: remote,
		now:    time.Now,
		log:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Lead returns a copy of the current state.
func (s *Session) Lead() model.Lead {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lead.Clone()
}

func (s *Session) EditingNotes() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editingNotes
}

// mutation captures what is needed to undo one optimistic change.
type mutation struct {
	id       string
	patch    model.Patch
	snapshot model.Lead
}

// Apply merges patch into the local lead, persists it, and reconciles
// with the server's answer.
func (s *Session) Apply(ctx context.Context, patch model.Patch) (model.Lead, error) {
	m, err := s.begin(patch)
	if err != nil {
		return s.Lead(), err
	}
	updated, err := s.remote.UpdateLead(ctx, m.id, patch)
	return s.finish(m, updated, err)
}

func (s *Session) begin(patch model.Patch) (mutation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.writableLocked(); err != nil {
		return mutation{}, err
	}
	m := mutation{id: s.lead.ID, patch: patch, snapshot: s.lead}
	s.lead = model.Merge(s.lead, patch)
	return m, nil
}

func (s *Session) finish(m mutation, updated model.Lead, err error) (model.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		if !s.closed {
			s.lead = model.Merge(s.lead, m.snapshot.Fields(m.patch.Keys()...))
		}
		s.log.Warn("lead update failed, rolled back", "id", m.id, "fields", m.patch.Keys(), "error", err)
		return s.lead.Clone(), err
	}
	if !s.closed {
		s.lead = model.Normalize(updated)
	}
	return s.lead.Clone(), nil
}

func (s *Session) writableLocked() error {
	if s.closed {
		return ErrClosed
	}
	if s.lead.Placeholder {
		return ErrPlaceholder
	}
	return nil
}

func (s *Session) SetStatus(ctx context.Context, status model.Status) (model.Lead, error) {
	if !model.ValidStatuses[status] {
		return s.Lead(), model.ValidateStatus(string(status))
	}
	return s.Apply(ctx, model.Patch{"status": status})
}

func (s *Session) EditNotes() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.editingNotes = true
}

// SaveNotes persists notes and leaves edit mode once the server accepts
// them. After a failure edit mode stays on so the text can be retried.
func (s *Session) SaveNotes(ctx context.Context, notes string) (model.Lead, error) {
	lead, err := s.Apply(ctx, model.Patch{"notes": notes})
	if err != nil {
		return lead, err
	}
	s.mu.Lock()
	s.editingNotes = false
	s.mu.Unlock()
	return lead, nil
}

func (s *Session) AddTag(ctx context.Context, tag string) (model.Lead, error) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return s.Lead(), ErrEmptyTag
	}
	// tags travel comma-joined, so a comma would split it on the way back
	if strings.Contains(tag, ",") {
		return s.Lead(), ErrTagComma
	}
	current := s.Lead()
	if current.HasTag(tag) {
		return current, ErrDuplicateTag
	}
	return s.Apply(ctx, model.Patch{"tags": append(current.Tags, tag)})
}

func (s *Session) RemoveTag(ctx context.Context, tag string) (model.Lead, error) {
	current := s.Lead()
	kept := make([]string, 0, len(current.Tags))
	for _, t := range current.Tags {
		if t != tag {
			kept = append(kept, t)
		}
	}
	return s.Apply(ctx, model.Patch{"tags": kept})
}

// SaveFollowUp sets the reminder date, or clears it when at is nil. Once
// the server accepts a future date and notifications are granted, one
// reminder is scheduled for exactly that instant. Any other accepted
// value cancels the pending reminder.
func (s *Session) SaveFollowUp(ctx context.Context, at *time.Time) (model.Lead, error) {
	var value any
	if at != nil {
		value = at.UTC().Format(time.RFC3339)
	}
	lead, err := s.Apply(ctx, model.Patch{"follow_up_date": value})
	if err != nil {
		return lead, err
	}
	if s.reminders == nil {
		return lead, nil
	}

	// a reminder for the previous date must not outlive it
	if at == nil || s.notifier == nil || !s.notifier.Granted() || !at.After(s.now()) {
		s.reminders.Cancel(lead.ID)
		return lead, nil
	}
	title := "Follow up: " + lead.Position
	body := fmt.Sprintf("Time to follow up with %s", lead.Company)
	s.reminders.Schedule(lead.ID, *at, func() {
		if err := s.notifier.Notify(title, body); err != nil {
			s.log.Warn("reminder delivery failed", "id", lead.ID, "error", err)
		}
	})
	return lead, nil
}

// MarkResponseReceived records a reply from the company. There is no way
// back; calling it again is a no-op.
func (s *Session) MarkResponseReceived(ctx context.Context) (model.Lead, error) {
	if current := s.Lead(); current.ResponseReceived {
		return current, nil
	}
	return s.Apply(ctx, model.Patch{
		"response_received": true,
		"response_date":     s.now().UTC().Format(time.RFC3339),
	})
}

// Delete removes the lead remotely and closes the session. Views holding
// the session must navigate away afterwards.
func (s *Session) Delete(ctx context.Context) error {
	s.mu.Lock()
	if err := s.writableLocked(); err != nil {
		s.mu.Unlock()
		return err
	}
	id := s.lead.ID
	s.mu.Unlock()

	if err := s.remote.DeleteLead(ctx, id); err != nil {
		return err
	}

	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	if s.reminders != nil {
		s.reminders.Cancel(id)
	}
	return nil
}
