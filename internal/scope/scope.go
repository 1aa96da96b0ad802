// Package scope owns fetched record collections. A Scope is the lifetime
// boundary of one collection: the list view holds one long-lived scope and
// every detail lookup opens its own short-lived scope.
package scope

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/nyc-coffee-inspections/internal/domain"
)

var (
	// ErrClosed is returned by Load when the scope was closed before or
	// while the fetch ran. A result arriving after Close is discarded.
	ErrClosed = errors.New("scope closed")

	// ErrFetchInFlight is returned by Load when another fetch is outstanding.
	ErrFetchInFlight = errors.New("fetch already in flight")
)

// Kind names the view a scope serves.
type Kind string

const (
	KindList   Kind = "list"
	KindDetail Kind = "detail"
)

// Status describes the state of a scope's collection.
type Status int

const (
	StatusLoading Status = iota
	StatusReady
	StatusUnavailable
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// Snapshot is an immutable view of a scope's collection. Records must not
// be modified by callers; a reload publishes a new Snapshot instead.
type Snapshot struct {
	Records  []domain.Record
	Status   Status
	Version  uint64
	LoadedAt time.Time
}

// FetchFunc produces a normalized collection.
type FetchFunc func(ctx context.Context) ([]domain.Record, error)

// Observer is notified about every fetch outcome. It may be nil.
type Observer interface {
	FetchCompleted(kind Kind, status Status, size int, elapsed time.Duration)
	FetchDiscarded(kind Kind)
}

// Scope holds one collection and guards it against stale fetch results.
type Scope struct {
	id       string
	kind     Kind
	logger   *slog.Logger
	clock    clockwork.Clock
	observer Observer

	snap     atomic.Pointer[Snapshot]
	fetching atomic.Bool

	mu      sync.Mutex // serializes Close against publishing a result
	closed  bool
	version uint64
}

// New creates an open scope in the loading state.
func New(kind Kind, logger *slog.Logger, clock clockwork.Clock, observer Observer) *Scope {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	s := &Scope{
		id:       uuid.NewString(),
		kind:     kind,
		clock:    clock,
		observer: observer,
	}
	s.logger = logger.With("scope", string(kind), "scope_id", s.id)
	s.snap.Store(&Snapshot{Status: StatusLoading})
	return s
}

func (s *Scope) ID() string { return s.id }
func (s *Scope) Kind() Kind { return s.kind }

// Snapshot returns the current collection.
func (s *Scope) Snapshot() Snapshot {
	return *s.snap.Load()
}

// Alive reports whether the scope has not been closed.
func (s *Scope) Alive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed
}

// Close tears the scope down. Fetches still running keep running, but
// their results are dropped. Close is idempotent.
func (s *Scope) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

// Load runs fetch and replaces the collection with its result. A failed
// fetch publishes an empty collection with StatusUnavailable; the error is
// logged, not returned. Load returns ErrClosed when the scope is (or
// becomes) closed and ErrFetchInFlight when another Load is running.
func (s *Scope) Load(ctx context.Context, fetch FetchFunc) (Snapshot, error) {
	if !s.Alive() {
		return s.Snapshot(), ErrClosed
	}
	if !s.fetching.CompareAndSwap(false, true) {
		return s.Snapshot(), ErrFetchInFlight
	}
	defer s.fetching.Store(false)

	start := s.clock.Now()
	records, err := fetch(ctx)
	elapsed := s.clock.Since(start)

	status := StatusReady
	if err != nil {
		status = StatusUnavailable
		records = nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		s.logger.Debug("discarding fetch result for closed scope", "records", len(records))
		if s.observer != nil {
			s.observer.FetchDiscarded(s.kind)
		}
		return *s.snap.Load(), ErrClosed
	}

	if err != nil {
		s.logger.Warn("record source unavailable, collection cleared", "error", err)
	}

	s.version++
	next := &Snapshot{
		Records:  records,
		Status:   status,
		Version:  s.version,
		LoadedAt: s.clock.Now(),
	}
	s.snap.Store(next)

	if s.observer != nil {
		s.observer.FetchCompleted(s.kind, status, len(records), elapsed)
	}
	s.logger.Debug("collection replaced", "status", status.String(), "records", len(records), "version", next.Version)

	return *next, nil
}
