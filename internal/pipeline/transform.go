package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/nyc-coffee-inspections/internal/domain"
)

// RecordTransformer implements Transformer with the domain normalizer.
type RecordTransformer struct {
	logger *slog.Logger
}

// NewTransformer creates a RecordTransformer.
func NewTransformer(logger *slog.Logger) *RecordTransformer {
	return &RecordTransformer{logger: logger}
}

func (t *RecordTransformer) Transform(ctx context.Context, raws []domain.RawRecord) []domain.Record {
	records := domain.NormalizeAll(raws)

	var unnamed, ungraded int
	for _, r := range records {
		if _, ok := r.Name(); !ok {
			unnamed++
		}
		if _, ok := r.Grade(); !ok {
			ungraded++
		}
	}
	t.logger.DebugContext(ctx, "records normalized",
		"records", len(records),
		"unnamed", unnamed,
		"ungraded", ungraded,
	)
	return records
}
