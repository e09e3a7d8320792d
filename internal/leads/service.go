// Package leads is the read and write side of lead views: it applies the
// fallback policy for reads and hands out optimistic Sessions for writes.
package leads

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/shakilbd009/lead-finder/internal/client"
	"github.com/shakilbd009/lead-finder/internal/model"
)

const detailConcurrency = 4

// API is the subset of the lead API the views use.
type API interface {
	Remote
	ListLeads(ctx context.Context) ([]model.Lead, error)
	GetLead(ctx context.Context, id string) (model.Lead, error)
	CreateLead(ctx context.Context, req model.CreateRequest) (model.Lead, error)
}

type Service struct {
	api         API
	sessionOpts []SessionOption
	log         *slog.Logger
	now         func() time.Time
}

func NewService(api API, logger *slog.Logger, opts ...SessionOption) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		api:         api,
		sessionOpts: append([]SessionOption{WithLogger(logger)}, opts...),
		log:         logger,
		now:         time.Now,
	}
}

// List returns every lead. Unlike Detail it reports failures to the caller
// so the list view can show them.
func (s *Service) List(ctx context.Context) ([]model.Lead, error) {
	return s.api.ListLeads(ctx)
}

// Detail returns the lead, or the placeholder record when it cannot be
// read. Only an expired login and a cancelled context are reported.
func (s *Service) Detail(ctx context.Context, id string) (model.Lead, error) {
	lead, err := s.api.GetLead(ctx, id)
	return s.orPlaceholder(ctx, id, lead, err)
}

func (s *Service) orPlaceholder(ctx context.Context, id string, lead model.Lead, err error) (model.Lead, error) {
	if err == nil {
		return lead, nil
	}
	if errors.Is(err, client.ErrUnauthorized) {
		return model.Lead{}, err
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return model.Lead{}, ctxErr
	}
	s.log.Warn("lead unavailable, showing placeholder", "id", id, "error", err)
	return model.Placeholder(id, s.now()), nil
}

// Details fetches several leads concurrently, preserving the order of ids.
func (s *Service) Details(ctx context.Context, ids []string) ([]model.Lead, error) {
	out := make([]model.Lead, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(detailConcurrency)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			lead, err := s.Detail(gctx, id)
			if err != nil {
				return err
			}
			out[i] = lead
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Open loads a lead and wraps it in a Session for editing. A lead the
// server does not know is reported as client.ErrNotFound; other read
// failures yield a read-only placeholder session, as Detail does.
func (s *Service) Open(ctx context.Context, id string) (*Session, error) {
	lead, err := s.api.GetLead(ctx, id)
	if errors.Is(err, client.ErrNotFound) {
		return nil, err
	}
	lead, err = s.orPlaceholder(ctx, id, lead, err)
	if err != nil {
		return nil, err
	}
	return NewSession(lead, s.api, s.sessionOpts...), nil
}

// Save persists a search or scrape result as a new lead.
func (s *Service) Save(ctx context.Context, req model.CreateRequest) (model.Lead, error) {
	return s.api.CreateLead(ctx, req)
}
