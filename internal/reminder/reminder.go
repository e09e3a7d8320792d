// Package reminder schedules one-shot follow-up reminders.
package reminder

import (
	"log/slog"
	"sync"
	"time"
)

type Scheduler struct {
	mu     sync.Mutex
	timers map[string]*time.Timer
	now    func() time.Time
	log    *slog.Logger
}

func New(logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		timers: make(map[string]*time.Timer),
		now:    time.Now,
		log:    logger,
	}
}

// Schedule arranges for fn to run once at the instant at, replacing any
// pending reminder under key. It reports false and does nothing when at is
// not in the future.
func (s *Scheduler) Schedule(key string, at time.Time, fn func()) bool {
	d := at.Sub(s.now())
	if d <= 0 {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.timers[key]; ok {
		old.Stop()
	}
	var t *time.Timer
	t = time.AfterFunc(d, func() {
		s.mu.Lock()
		current := s.timers[key] == t
		if current {
			delete(s.timers, key)
		}
		s.mu.Unlock()

		// a replaced timer that fired before Stop took effect must stay silent
		if current {
			s.log.Info("reminder fired", "key", key, "at", at.Format(time.RFC3339))
			fn()
		}
	})
	s.timers[key] = t
	s.log.Debug("reminder scheduled", "key", key, "in", d.String())
	return true
}

func (s *Scheduler) Cancel(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.timers[key]
	if !ok {
		return false
	}
	t.Stop()
	delete(s.timers, key)
	return true
}

func (s *Scheduler) Pending(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.timers[key]
	return ok
}

// Stop cancels every pending reminder.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, t := range s.timers {
		t.Stop()
		delete(s.timers, key)
	}
}
