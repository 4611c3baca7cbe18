package storage

import (
	"context"
	"errors"

	"riskScope/internal/model"
)

// Storage defines a sink for analysis records.
type Storage interface {
	PutRecords(ctx context.Context, records []model.AnalysisRecord) error
}

// Fanout writes every batch to all sinks. A failing sink does not stop the
// others; their errors are joined.
type Fanout []Storage

func (f Fanout) PutRecords(ctx context.Context, records []model.AnalysisRecord) error {
	var errs []error
	for _, sink := range f {
		if sink == nil {
			continue
		}
		if err := sink.PutRecords(ctx, records); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
