package domain

import (
	"context"
	"strings"
)

// Placeholders shown in place of absent values.
const (
	UnknownName     = "Unknown Name"
	NotAvailable    = "Not Available"
	NoViolations    = "No major violations listed."
	DefaultViewSize = 10
	TopZipLimit     = 5
)

// RawRecord is one untyped row as decoded from the record source.
type RawRecord map[string]any

// Grade is an inspection letter grade. The zero value means absent.
type Grade string

const (
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
)

// Valid reports whether g is one of A, B or C.
func (g Grade) Valid() bool {
	switch g {
	case GradeA, GradeB, GradeC:
		return true
	default:
		return false
	}
}

// Record is a validated, immutable inspection record. Fields are only
// readable through accessors, which report presence alongside the value.
type Record struct {
	name           string
	building       string
	street         string
	zipcode        string
	phone          string
	borough        string
	grade          Grade
	score          float64
	hasScore       bool
	inspectionDate string
	violation      string
}

func (r Record) Name() (string, bool)           { return r.name, r.name != "" }
func (r Record) Building() (string, bool)       { return r.building, r.building != "" }
func (r Record) Street() (string, bool)         { return r.street, r.street != "" }
func (r Record) Zipcode() (string, bool)        { return r.zipcode, r.zipcode != "" }
func (r Record) Phone() (string, bool)          { return r.phone, r.phone != "" }
func (r Record) Borough() (string, bool)        { return r.borough, r.borough != "" }
func (r Record) Grade() (Grade, bool)           { return r.grade, r.grade != "" }
func (r Record) HealthScore() (float64, bool)   { return r.score, r.hasScore }
func (r Record) InspectionDate() (string, bool) { return r.inspectionDate, r.inspectionDate != "" }
func (r Record) Violation() (string, bool)      { return r.violation, r.violation != "" }

// DisplayName returns the establishment name or UnknownName.
func (r Record) DisplayName() string {
	return orPlaceholder(r.name, UnknownName)
}

// DisplayPhone returns the formatted phone number. See FormatPhone.
func (r Record) DisplayPhone() string {
	return FormatPhone(r.Phone())
}

func (r Record) DisplayGrade() string {
	return orPlaceholder(string(r.grade), NotAvailable)
}

func (r Record) DisplayBorough() string {
	return orPlaceholder(r.borough, NotAvailable)
}

func (r Record) DisplayInspectionDate() string {
	return orPlaceholder(r.inspectionDate, NotAvailable)
}

func (r Record) DisplayViolations() string {
	return orPlaceholder(r.violation, NoViolations)
}

// Address joins building, street and zipcode with single spaces, skipping
// absent parts. Returns "" when all three are absent.
func (r Record) Address() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{r.building, r.street, r.zipcode} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

func orPlaceholder(value, placeholder string) string {
	if value == "" {
		return placeholder
	}
	return value
}

// Query selects records from a RecordSource. A zero Limit means the source
// default; a non-empty Name restricts the result to that exact dba.
type Query struct {
	Name  string
	Limit int
}

// RecordSource returns raw inspection records for a query. The collection
// is unordered and may be empty.
type RecordSource interface {
	Fetch(ctx context.Context, q Query) ([]RawRecord, error)
}
