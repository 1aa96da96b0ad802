//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpadapter "github.com/couchcryptid/nyc-coffee-inspections/internal/adapter/http"
	"github.com/couchcryptid/nyc-coffee-inspections/internal/adapter/socrata"
	"github.com/couchcryptid/nyc-coffee-inspections/internal/config"
	"github.com/couchcryptid/nyc-coffee-inspections/internal/domain"
	"github.com/couchcryptid/nyc-coffee-inspections/internal/observability"
	"github.com/couchcryptid/nyc-coffee-inspections/internal/pipeline"
	"github.com/couchcryptid/nyc-coffee-inspections/internal/view"
)

const mockDataPath = "../../data/mock/coffee_tea_inspections.json"

// fakeSocrata serves the mock fixture with the query semantics of the real
// resource endpoint: cuisine_description, dba and $limit filters.
type fakeSocrata struct {
	rows     []domain.RawRecord
	requests atomic.Int32
	down     atomic.Bool
}

func newFakeSocrata(t *testing.T) *fakeSocrata {
	t.Helper()
	f, err := os.Open(mockDataPath)
	require.NoError(t, err)
	defer f.Close()

	rows, err := domain.DecodeRawRecords(f)
	require.NoError(t, err)
	return &fakeSocrata{rows: rows}
}

func (s *fakeSocrata) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.requests.Add(1)
	if s.down.Load() {
		http.Error(w, `{"message":"service unavailable"}`, http.StatusServiceUnavailable)
		return
	}

	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("$limit"))
	out := []domain.RawRecord{}
	for _, row := range s.rows {
		if limit > 0 && len(out) == limit {
			break
		}
		if c := q.Get("cuisine_description"); c != "" && row["cuisine_description"] != c {
			continue
		}
		if n := q.Get("dba"); n != "" && row["dba"] != n {
			continue
		}
		out = append(out, row)
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}

type stack struct {
	upstream *fakeSocrata
	api      *httptest.Server
	pipeline *pipeline.Pipeline
}

func startStack(t *testing.T) *stack {
	t.Helper()
	upstream := newFakeSocrata(t)
	socrataSrv := httptest.NewServer(upstream)
	t.Cleanup(socrataSrv.Close)

	t.Setenv("SOURCE_URL", socrataSrv.URL+"/resource/43nn-pn8j.json")
	t.Setenv("REFRESH_INTERVAL", "1h")
	cfg, err := config.Load()
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	metrics := observability.NewMetricsForTesting()
	clock := clockwork.NewRealClock()

	client := socrata.NewClient(cfg.SourceURL, cfg.SourceCategory, cfg.SourceTimeout, logger,
		socrata.WithRateLimit(cfg.SourceRateLimit*10))
	source := socrata.NewCachedSource(client, cfg.SourceCacheSize, cfg.SourceCacheTTL, clock, metrics)
	p := pipeline.New(source, pipeline.NewTransformer(logger), logger, metrics, clock, cfg.SourceLimit, cfg.RefreshInterval)

	api := httptest.NewServer(httpadapter.NewServer(cfg.HTTPAddr, p, view.NewBuilder(), logger))
	t.Cleanup(api.Close)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		require.NoError(t, <-done)
	})

	return &stack{upstream: upstream, api: api, pipeline: p}
}

func getJSON(t *testing.T, target string, v any) int {
	t.Helper()
	resp, err := http.Get(target)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	return resp.StatusCode
}

func TestService_EndToEnd(t *testing.T) {
	s := startStack(t)

	require.Eventually(t, func() bool {
		return s.pipeline.CheckReadiness(context.Background()) == nil
	}, 10*time.Second, 10*time.Millisecond)

	var ready map[string]string
	assert.Equal(t, http.StatusOK, getJSON(t, s.api.URL+"/readyz", &ready))

	var list view.List
	require.Equal(t, http.StatusOK, getJSON(t, s.api.URL+"/api/shops", &list))
	assert.Equal(t, "ready", list.Status)
	assert.Equal(t, 16, list.Total)
	assert.Equal(t, 9, list.GradeA)
	assert.Equal(t, "13.93", list.Average.Display)
	assert.Equal(t, "10011", list.TopZipCodes[0].Zipcode)

	var filtered view.List
	require.Equal(t, http.StatusOK, getJSON(t, s.api.URL+"/api/shops?search=cafe", &filtered))
	assert.Equal(t, view.ModeFiltered, filtered.Mode)
	assert.Len(t, filtered.Shops, 2)

	before := s.upstream.requests.Load()
	for range 3 {
		var d view.Detail
		require.Equal(t, http.StatusOK, getJSON(t, s.api.URL+"/api/shops/"+url.PathEscape("BLUE BOTTLE COFFEE"), &d))
		require.NotNil(t, d.Shop)
		assert.Equal(t, "A", d.Shop.Grade, "first row for a shared name wins")
		assert.Equal(t, "(510) 555-1234", d.Shop.Phone)
	}
	assert.Equal(t, before+1, s.upstream.requests.Load(), "repeated detail lookups are served from cache")
}

func TestService_UpstreamOutage(t *testing.T) {
	s := startStack(t)
	require.Eventually(t, func() bool {
		return s.pipeline.CheckReadiness(context.Background()) == nil
	}, 10*time.Second, 10*time.Millisecond)

	s.upstream.down.Store(true)

	var d view.Detail
	status := getJSON(t, s.api.URL+"/api/shops/"+url.PathEscape("NOT CACHED YET"), &d)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, view.DetailUnavailable, d.Status)

	var list view.List
	require.Equal(t, http.StatusOK, getJSON(t, s.api.URL+"/api/shops", &list))
	assert.Equal(t, "ready", list.Status, "the list keeps its last good collection until the next refresh")
}
