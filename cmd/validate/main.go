// Command validate checks an inspection fixture file for data quality. It
// reports rows that the normalizer will silently default (bad grades,
// non-numeric scores, missing names), scores that disagree with the
// published grade guide, and hard errors such as duplicate rows or
// unreadable inspection dates.
//
// Usage:
//
//	go run ./cmd/validate -json data/mock/coffee_tea_inspections.json
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/couchcryptid/nyc-coffee-inspections/internal/domain"
)

// phase tracks errors and warnings for one validation phase. Only errors
// fail the run.
type phase struct {
	name     string
	errors   []string
	warnings []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) warnf(format string, args ...any) {
	p.warnings = append(p.warnings, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	path := flag.String("json", "", "path to the inspection JSON fixture")
	flag.Parse()

	if *path == "" {
		flag.Usage()
		os.Exit(1)
	}
	os.Exit(run(*path))
}

func run(path string) int {
	fmt.Println("=== Inspection Fixture Validation ===")
	fmt.Println()

	f, err := os.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: open fixture: %v\n", err)
		return 1
	}
	defer f.Close()

	raws, err := domain.DecodeRawRecords(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		return 1
	}
	records := domain.NormalizeAll(raws)

	phases := []*phase{
		validateRowIdentity(raws),
		validateNormalization(raws, records),
		validateGradeGuide(records),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		if len(p.warnings) > 0 {
			status += fmt.Sprintf(" \033[33m(%d warnings)\033[0m", len(p.warnings))
		}
		fmt.Printf("  %-36s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Records: %d rows\n", len(raws))

	for _, p := range phases {
		if p.passed() && len(p.warnings) == 0 {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [E%d] %s\n", i+1, e)
		}
		for i, w := range p.warnings {
			fmt.Printf("  [W%d] %s\n", i+1, w)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// validateRowIdentity flags rows repeated with the same establishment id and
// inspection timestamp, and inspection dates that are not ISO dates.
func validateRowIdentity(raws []domain.RawRecord) *phase {
	p := &phase{name: "Row identity"}
	seen := make(map[string]int, len(raws))

	for i, raw := range raws {
		camis, _ := raw["camis"].(string)
		date, _ := raw["inspection_date"].(string)

		if camis != "" && date != "" {
			key := camis + "|" + date
			if first, dup := seen[key]; dup {
				p.errorf("row %d duplicates row %d (camis %s, %s)", i, first, camis, date)
			} else {
				seen[key] = i
			}
		}

		if date == "" {
			continue
		}
		day := domain.Normalize(raw).DisplayInspectionDate()
		if _, err := time.Parse(time.DateOnly, day); err != nil {
			p.errorf("row %d: inspection_date %q is not a date", i, date)
		}
	}
	return p
}

// validateNormalization warns about values that normalization drops.
func validateNormalization(raws []domain.RawRecord, records []domain.Record) *phase {
	p := &phase{name: "Normalization defaults"}

	for i, raw := range raws {
		r := records[i]
		if _, ok := r.Name(); !ok {
			p.warnf("row %d: no dba, shown as %q", i, domain.UnknownName)
		}
		if v, present := raw["grade"]; present && v != nil && v != "" {
			if _, ok := r.Grade(); !ok {
				p.warnf("row %d: grade %v dropped", i, v)
			}
		}
		if v, present := raw["score"]; present && v != nil && v != "" {
			if _, ok := r.HealthScore(); !ok {
				p.warnf("row %d: score %v dropped", i, v)
			}
		}
		if phone, ok := r.Phone(); ok && domain.FormatPhone(phone, true) == phone {
			p.warnf("row %d: phone %q is not a 10-digit number, shown unformatted", i, phone)
		}
	}
	return p
}

// validateGradeGuide warns when a graded record's score falls outside the
// guide band for its grade. Re-inspections make this legitimate, so these
// are never errors.
func validateGradeGuide(records []domain.Record) *phase {
	p := &phase{name: "Score guide consistency"}

	for i, r := range records {
		grade, hasGrade := r.Grade()
		score, hasScore := r.HealthScore()
		if !hasGrade || !hasScore {
			continue
		}
		if want := domain.GradeForScore(score); want != grade {
			p.warnf("row %d (%s): score %.0f maps to %s, reported %s", i, r.DisplayName(), score, want, grade)
		}
	}
	return p
}
