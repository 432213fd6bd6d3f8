// Package reader provides the item readers for the refresh pipeline.
package reader

import (
	"context"
	"io"

	"github.com/tigerroll/vacationspots/internal/core/model"
	"github.com/tigerroll/vacationspots/internal/core/port"
	"github.com/tigerroll/vacationspots/internal/domain/entity"
	"github.com/tigerroll/vacationspots/internal/harmonize"
	"github.com/tigerroll/vacationspots/internal/support/exception"
	"github.com/tigerroll/vacationspots/internal/support/logger"
)

const ModuleCandidateReader = "CandidateReader"

// CandidateReader materializes the harmonized candidate destinations in
// Open and hands them out one at a time.
type CandidateReader struct {
	harmonizer   *harmonize.Harmonizer
	candidates   []*entity.CandidateDestination
	currentIndex int
}

// NewCandidateReader creates a CandidateReader.
func NewCandidateReader(harmonizer *harmonize.Harmonizer) *CandidateReader {
	return &CandidateReader{harmonizer: harmonizer}
}

// Open runs harmonization and buffers the result.
func (r *CandidateReader) Open(ctx context.Context, ec model.ExecutionContext) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	candidates, err := r.harmonizer.BuildCandidates(ctx)
	if err != nil {
		return exception.NewBatchError(ModuleCandidateReader, "failed to harmonize candidate destinations", err, false, true)
	}
	r.candidates = candidates
	r.currentIndex = 0
	logger.Debugf("CandidateReader: buffered %d candidates.", len(candidates))
	return nil
}

// Read returns the next candidate, or io.EOF once all are consumed.
func (r *CandidateReader) Read(ctx context.Context) (*entity.CandidateDestination, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if r.currentIndex >= len(r.candidates) {
		return nil, io.EOF
	}
	item := r.candidates[r.currentIndex]
	r.currentIndex++
	return item, nil
}

// Close releases the buffered candidates.
func (r *CandidateReader) Close(ctx context.Context) error {
	r.candidates = nil
	r.currentIndex = 0
	return nil
}

var _ port.ItemReader[entity.CandidateDestination] = (*CandidateReader)(nil)
