package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/nyc-coffee-inspections/internal/domain"
	"github.com/couchcryptid/nyc-coffee-inspections/internal/observability"
	"github.com/couchcryptid/nyc-coffee-inspections/internal/scope"
)

// Transformer converts a fetched batch of raw records into normalized records.
type Transformer interface {
	Transform(ctx context.Context, raws []domain.RawRecord) []domain.Record
}

// Outcome labels reported for detail lookups.
const (
	OutcomeFound       = "found"
	OutcomeNotFound    = "not_found"
	OutcomeUnavailable = "unavailable"
)

const (
	initialBackoff = time.Second
	maxBackoff     = time.Minute
)

// Detail is the result of resolving one establishment by name.
type Detail struct {
	Record  domain.Record
	Found   bool
	Status  scope.Status
	Outcome string
}

// Pipeline fetches records from the source, normalizes them, and publishes
// them into scopes. It owns the long-lived list scope.
type Pipeline struct {
	source      domain.RecordSource
	transformer Transformer
	logger      *slog.Logger
	metrics     *observability.Metrics
	clock       clockwork.Clock
	list        *scope.Scope
	ready       atomic.Bool
	limit       int
	interval    time.Duration
}

// New creates a Pipeline. limit is the bulk fetch size and interval the
// delay between successful list refreshes.
func New(source domain.RecordSource, t Transformer, logger *slog.Logger, metrics *observability.Metrics, clock clockwork.Clock, limit int, interval time.Duration) *Pipeline {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Pipeline{
		source:      source,
		transformer: t,
		logger:      logger,
		metrics:     metrics,
		clock:       clock,
		list:        scope.New(scope.KindList, logger, clock, metrics),
		limit:       limit,
		interval:    interval,
	}
}

// List returns the list scope.
func (p *Pipeline) List() *scope.Scope {
	return p.list
}

// CheckReadiness returns nil once the list scope has loaded successfully at
// least once, or an error describing why the service is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("list collection has not loaded yet")
	}
	return nil
}

// Refresh reloads the list scope from the source.
func (p *Pipeline) Refresh(ctx context.Context) (scope.Snapshot, error) {
	snap, err := p.list.Load(ctx, func(ctx context.Context) ([]domain.Record, error) {
		return p.collect(ctx, domain.Query{Limit: p.limit})
	})
	if err != nil {
		return snap, err
	}
	if snap.Status == scope.StatusReady {
		p.ready.Store(true)
	}
	return snap, nil
}

// Run refreshes the list scope until the context is cancelled. A failed
// refresh is retried with exponential backoff instead of waiting a full
// interval. The list scope is closed when Run returns.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("refresh loop started", "interval", p.interval, "limit", p.limit)
	p.metrics.RefreshRunning.Set(1)
	defer p.metrics.RefreshRunning.Set(0)
	defer p.list.Close()

	retry := p.newBackoff()
	for {
		if ctx.Err() != nil {
			p.logger.Info("refresh loop stopping", "reason", ctx.Err())
			return nil
		}

		wait := p.interval
		snap, err := p.Refresh(ctx)
		switch {
		case errors.Is(err, scope.ErrClosed):
			return nil
		case err != nil:
			p.logger.Warn("list refresh skipped", "error", err)
		case snap.Status == scope.StatusUnavailable:
			wait = min(retry.NextBackOff(), p.interval)
			p.logger.Warn("list refresh failed, retrying", "retry_in", wait)
		default:
			retry.Reset()
			p.logger.Info("list refreshed", "records", len(snap.Records), "version", snap.Version)
		}

		if !p.sleep(ctx, wait) {
			p.logger.Info("refresh loop stopping", "reason", ctx.Err())
			return nil
		}
	}
}

// Detail opens a detail scope for name, loads the single-name query into it,
// and resolves the first exact match. The scope is closed when Detail
// returns or when ctx is done, whichever comes first; a fetch that finishes
// after that is discarded.
func (p *Pipeline) Detail(ctx context.Context, name string) (Detail, error) {
	s := scope.New(scope.KindDetail, p.logger, p.clock, p.metrics)
	defer s.Close()
	stop := context.AfterFunc(ctx, s.Close)
	defer stop()

	snap, err := s.Load(ctx, func(ctx context.Context) ([]domain.Record, error) {
		return p.collect(ctx, domain.Query{Name: name, Limit: p.limit})
	})
	if err != nil {
		return Detail{}, fmt.Errorf("load detail scope: %w", err)
	}

	d := Detail{Status: snap.Status}
	d.Record, d.Found = domain.Resolve(snap.Records, name)
	switch {
	case d.Found:
		d.Outcome = OutcomeFound
	case snap.Status == scope.StatusUnavailable:
		d.Outcome = OutcomeUnavailable
	default:
		d.Outcome = OutcomeNotFound
	}
	p.metrics.DetailLookups.WithLabelValues(d.Outcome).Inc()
	return d, nil
}

func (p *Pipeline) collect(ctx context.Context, q domain.Query) ([]domain.Record, error) {
	raws, err := p.source.Fetch(ctx, q)
	if err != nil {
		p.metrics.SourceErrors.Inc()
		return nil, fmt.Errorf("fetch records: %w", err)
	}
	p.metrics.RecordsNormalized.Add(float64(len(raws)))
	return p.transformer.Transform(ctx, raws), nil
}

func (p *Pipeline) sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}

	timer := p.clock.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.Chan():
		return true
	}
}

// newBackoff returns a retry schedule starting at one second, doubling up
// to one minute, with no overall deadline.
func (p *Pipeline) newBackoff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = initialBackoff
	b.MaxInterval = maxBackoff
	b.Multiplier = 2
	b.RandomizationFactor = 0.1
	b.MaxElapsedTime = 0
	b.Clock = p.clock
	b.Reset()
	return b
}
