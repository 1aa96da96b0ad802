// Package view assembles the JSON payloads served to the presentation
// layer from a scope snapshot.
package view

import (
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/sahilm/fuzzy"

	"github.com/couchcryptid/nyc-coffee-inspections/internal/domain"
	"github.com/couchcryptid/nyc-coffee-inspections/internal/pipeline"
	"github.com/couchcryptid/nyc-coffee-inspections/internal/scope"
)

// List modes.
const (
	ModeFiltered = "filtered"
	ModePopular  = "popular"
)

// Detail statuses.
const (
	DetailFound       = pipeline.OutcomeFound
	DetailNotFound    = pipeline.OutcomeNotFound
	DetailUnavailable = pipeline.OutcomeUnavailable
)

const maxSuggestions = 3

// Shop is one establishment as shown to the user.
type Shop struct {
	Name           string   `json:"name"`
	Address        string   `json:"address"`
	Borough        string   `json:"borough"`
	Phone          string   `json:"phone"`
	Grade          string   `json:"grade"`
	Score          *float64 `json:"score"`
	InspectionDate string   `json:"inspection_date"`
	Violations     string   `json:"violations"`
}

// Average is the average health score. Value is nil when no record has a
// score; Display then reads "NaN".
type Average struct {
	Value   *float64 `json:"value"`
	Display string   `json:"display"`
	Count   int      `json:"count"`
}

// Band is one row of the health score guide.
type Band struct {
	Range   string `json:"range"`
	Grade   string `json:"grade"`
	Meaning string `json:"meaning"`
}

// List is the payload for the browse page.
type List struct {
	Status      string                   `json:"status"`
	Version     uint64                   `json:"version"`
	LoadedAt    *time.Time               `json:"loaded_at,omitempty"`
	Total       int                      `json:"total"`
	GradeA      int                      `json:"grade_a"`
	Grades      domain.GradeDistribution `json:"grades"`
	Average     Average                  `json:"average_score"`
	TopZipCodes []domain.ZipCount        `json:"top_zipcodes"`
	ScoreGuide  []Band                   `json:"score_guide"`
	SearchTerm  string                   `json:"search"`
	GradeFilter string                   `json:"grade_filter"`
	Mode        string                   `json:"mode"`
	Heading     string                   `json:"heading"`
	Shops       []Shop                   `json:"shops"`
}

// Detail is the payload for a single establishment.
type Detail struct {
	Status      string   `json:"status"`
	Name        string   `json:"name"`
	Shop        *Shop    `json:"shop,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
}

type cachedSummary struct {
	version uint64
	summary domain.Summary
}

// Builder turns snapshots into payloads. Aggregates depend only on the
// collection, so they are computed once per snapshot version.
type Builder struct {
	summarize func([]domain.Record) domain.Summary
	cached    atomic.Pointer[cachedSummary]
}

// NewBuilder creates a Builder.
func NewBuilder() *Builder {
	return &Builder{summarize: domain.Summarize}
}

// List builds the browse payload for the given view state.
func (b *Builder) List(snap scope.Snapshot, state domain.ViewState) List {
	summary := b.summary(snap)

	shown := state.Apply(snap.Records)
	mode := ModePopular
	if state.Active() {
		mode = ModeFiltered
	}

	out := List{
		Status:      snap.Status.String(),
		Version:     snap.Version,
		Total:       summary.Total,
		GradeA:      summary.Grades.A,
		Grades:      summary.Grades,
		Average:     NewAverage(summary.Average),
		TopZipCodes: summary.TopZips,
		ScoreGuide:  ScoreGuide(),
		SearchTerm:  state.SearchTerm,
		GradeFilter: string(state.GradeFilter),
		Mode:        mode,
		Heading:     heading(len(shown), mode),
		Shops:       make([]Shop, 0, len(shown)),
	}
	if out.TopZipCodes == nil {
		out.TopZipCodes = []domain.ZipCount{}
	}
	if !snap.LoadedAt.IsZero() {
		loaded := snap.LoadedAt
		out.LoadedAt = &loaded
	}
	for _, r := range shown {
		out.Shops = append(out.Shops, NewShop(r))
	}
	return out
}

// Detail builds the single-establishment payload. When the lookup misses,
// names from the list collection that fuzzily match are offered instead.
func (b *Builder) Detail(name string, d pipeline.Detail, list scope.Snapshot) Detail {
	out := Detail{Status: d.Outcome, Name: name}
	switch d.Outcome {
	case DetailFound:
		shop := NewShop(d.Record)
		out.Shop = &shop
	case DetailNotFound:
		out.Suggestions = Suggest(list.Records, name, maxSuggestions)
	}
	return out
}

func (b *Builder) summary(snap scope.Snapshot) domain.Summary {
	if c := b.cached.Load(); c != nil && c.version == snap.Version {
		return c.summary
	}
	s := b.summarize(snap.Records)
	b.cached.Store(&cachedSummary{version: snap.Version, summary: s})
	return s
}

// NewShop renders a record with placeholders for absent fields.
func NewShop(r domain.Record) Shop {
	s := Shop{
		Name:           r.DisplayName(),
		Address:        r.Address(),
		Borough:        r.DisplayBorough(),
		Phone:          r.DisplayPhone(),
		Grade:          r.DisplayGrade(),
		InspectionDate: r.DisplayInspectionDate(),
		Violations:     r.DisplayViolations(),
	}
	if score, ok := r.HealthScore(); ok {
		s.Score = &score
	}
	return s
}

// NewAverage renders a score average with two decimals.
func NewAverage(a domain.ScoreAverage) Average {
	if !a.Computable() {
		return Average{Display: "NaN"}
	}
	v := a.Value
	return Average{
		Value:   &v,
		Display: strconv.FormatFloat(v, 'f', 2, 64),
		Count:   a.Count,
	}
}

// ScoreGuide renders the static health score guide.
func ScoreGuide() []Band {
	bands := domain.ScoreGuide()
	out := make([]Band, 0, len(bands))
	for _, b := range bands {
		out = append(out, Band{Range: b.Label(), Grade: string(b.Grade), Meaning: b.Meaning})
	}
	return out
}

// Suggest returns up to n distinct record names that fuzzily match name,
// best match first.
func Suggest(records []domain.Record, name string, n int) []string {
	if name == "" || n <= 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(records))
	names := make([]string, 0, len(records))
	for _, r := range records {
		v, ok := r.Name()
		if !ok {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		names = append(names, v)
	}

	matches := fuzzy.Find(name, names)
	out := make([]string, 0, min(n, len(matches)))
	for _, m := range matches {
		if len(out) == n {
			break
		}
		out = append(out, m.Str)
	}
	return out
}

func heading(n int, mode string) string {
	if mode == ModeFiltered {
		return fmt.Sprintf("Showing %d filtered results", n)
	}
	return fmt.Sprintf("Showing %d popular coffee shops", n)
}
