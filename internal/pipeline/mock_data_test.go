package pipeline_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/nyc-coffee-inspections/internal/adapter/fixture"
	"github.com/couchcryptid/nyc-coffee-inspections/internal/domain"
	"github.com/couchcryptid/nyc-coffee-inspections/internal/pipeline"
	"github.com/couchcryptid/nyc-coffee-inspections/internal/scope"
)

const mockDataPath = "../../data/mock/coffee_tea_inspections.json"

func TestPipeline_WithMockData(t *testing.T) {
	p, _ := newTestPipeline(fixture.NewFileSource(mockDataPath), clockwork.NewFakeClock())

	snap, err := p.Refresh(context.Background())
	require.NoError(t, err)
	require.Equal(t, scope.StatusReady, snap.Status)
	require.Len(t, snap.Records, 16)

	summary := domain.Summarize(snap.Records)
	assert.Equal(t, 16, summary.Total)
	assert.Equal(t, domain.GradeDistribution{A: 9, B: 4, C: 1}, summary.Grades)
	assert.Equal(t, 15, summary.Average.Count, "the non-numeric score is excluded")
	assert.InDelta(t, 209.0/15.0, summary.Average.Value, 1e-9)

	wantZips := []domain.ZipCount{
		{Zipcode: "10011", Count: 3},
		{Zipcode: "10014", Count: 2},
		{Zipcode: "11249", Count: 1},
		{Zipcode: "11222", Count: 1},
		{Zipcode: "10001", Count: 1},
	}
	if diff := cmp.Diff(wantZips, summary.TopZips); diff != "" {
		t.Errorf("top zips mismatch (-want +got):\n%s", diff)
	}

	popular := domain.SelectView(snap.Records, nil, "", "")
	assert.Len(t, popular, 9, "only nine grade-A records exist")

	filtered := domain.ViewState{SearchTerm: "coffee", GradeFilter: domain.GradeB}.Apply(snap.Records)
	require.Len(t, filtered, 2)
	assert.Equal(t, "VARIETY COFFEE ROASTERS", filtered[0].DisplayName())
	assert.Equal(t, "BLUE BOTTLE COFFEE", filtered[1].DisplayName())
}

func TestPipeline_WithMockData_Detail(t *testing.T) {
	p, _ := newTestPipeline(fixture.NewFileSource(mockDataPath), clockwork.NewFakeClock())

	d, err := p.Detail(context.Background(), "TEA AND SYMPATHY")
	require.NoError(t, err)
	require.True(t, d.Found)

	r := d.Record
	assert.Equal(t, "+1 212 989 9735", r.DisplayPhone(), "eleven digits are shown unchanged")
	assert.Equal(t, "108 GREENWICH AVE 10011", r.Address())
	assert.Equal(t, "2023-10-05", r.DisplayInspectionDate())
	assert.Equal(t, "B", r.DisplayGrade())

	d, err = p.Detail(context.Background(), "PLOWSHARES COFFEE")
	require.NoError(t, err)
	require.True(t, d.Found)
	assert.Equal(t, domain.NotAvailable, d.Record.DisplayPhone())
	assert.Equal(t, domain.NoViolations, d.Record.DisplayViolations())

	d, err = p.Detail(context.Background(), "NOT A REAL SHOP")
	require.NoError(t, err)
	assert.Equal(t, pipeline.OutcomeNotFound, d.Outcome)
}
