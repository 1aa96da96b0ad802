// Command genmock snapshots live inspection rows from NYC Open Data into a
// JSON fixture usable as SOURCE_FILE. It runs the rows through the domain
// normalizer and prints the resulting summary so the fixture can be checked
// against what the service would show.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -limit 200 \
//	  -out data/mock/coffee_tea_inspections.json
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/couchcryptid/nyc-coffee-inspections/internal/adapter/socrata"
	"github.com/couchcryptid/nyc-coffee-inspections/internal/domain"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	sourceURL := flag.String("url", "https://data.cityofnewyork.us/resource/43nn-pn8j.json", "Socrata resource URL")
	category := flag.String("category", "Coffee/Tea", "cuisine_description filter")
	limit := flag.Int("limit", 200, "number of rows to fetch")
	out := flag.String("out", "", "output path for the JSON fixture")
	token := flag.String("token", os.Getenv("SOURCE_APP_TOKEN"), "optional Socrata app token")
	flag.Parse()

	if *out == "" || *limit < 1 {
		flag.Usage()
		return fmt.Errorf("missing required flag -out or invalid -limit")
	}

	var opts []socrata.Option
	if *token != "" {
		opts = append(opts, socrata.WithAppToken(*token))
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	client := socrata.NewClient(*sourceURL, *category, 30*time.Second, logger, opts...)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	raws, err := client.Fetch(ctx, domain.Query{Limit: *limit})
	if err != nil {
		return fmt.Errorf("fetch rows: %w", err)
	}
	log.Printf("fetched %d rows", len(raws))

	if err := writeJSON(*out, raws); err != nil {
		return fmt.Errorf("writing fixture: %w", err)
	}
	log.Printf("wrote fixture: %s", *out)

	printStats(domain.NormalizeAll(raws))
	return nil
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

func printStats(records []domain.Record) {
	s := domain.Summarize(records)

	fmt.Println("\n=== Fixture Summary ===")
	fmt.Printf("records: %d\n", s.Total)
	fmt.Printf("grades: A=%d B=%d C=%d ungraded=%d\n", s.Grades.A, s.Grades.B, s.Grades.C, s.Total-s.Grades.Total())
	if s.Average.Computable() {
		fmt.Printf("average score: %.2f over %d scored records\n", s.Average.Value, s.Average.Count)
	} else {
		fmt.Println("average score: NaN")
	}
	fmt.Println("top zip codes:")
	for _, z := range s.TopZips {
		fmt.Printf("  %s: %d\n", z.Zipcode, z.Count)
	}
	fmt.Printf("popular view: %d records\n", len(domain.SelectView(records, nil, "", "")))
}
