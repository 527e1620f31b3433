package tasks

import (
	"context"
	"fmt"
	"sync"

	"github.com/desertthunder/mixtape/internal/match"
	"github.com/desertthunder/mixtape/internal/models"
	"github.com/desertthunder/mixtape/internal/shared"
	"golang.org/x/time/rate"
)

// VerifyOpts contains configuration for batch verification.
type VerifyOpts struct {
	MaxBatch  int     // Largest accepted batch (default: 100)
	Workers   int     // Concurrent workers (default: 5)
	RateLimit float64 // Catalog requests per second (default: 5)
}

// verifyJob carries one candidate and its batch position through the pool.
type verifyJob struct {
	index     int
	candidate models.CandidateTrack
}

// Verify reconciles a candidate batch against the catalog concurrently.
//
// The worker pool bounds catalog fan-out and a rate limiter paces lookups, but
// results are reassembled in input order so the response is deterministic. A
// candidate whose lookup fails is rejected rather than failing the batch;
// only a cancelled context aborts the whole operation.
func (e *PipelineEngine) Verify(ctx context.Context, prog chan<- ProgressUpdate, candidates []models.CandidateTrack, opts VerifyOpts) (*models.VerificationResponse, error) {
	if e.catalog == nil {
		return nil, fmt.Errorf("%w: catalog not initialized", shared.ErrServiceUnavailable)
	}

	if opts.MaxBatch <= 0 {
		opts.MaxBatch = 100
	}
	if opts.Workers <= 0 {
		opts.Workers = 5
	}
	if opts.Workers > 10 {
		opts.Workers = 10
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}

	if len(candidates) > opts.MaxBatch {
		return nil, fmt.Errorf("%w: batch of %d exceeds limit of %d", shared.ErrValidation, len(candidates), opts.MaxBatch)
	}

	response := &models.VerificationResponse{
		Verified: []models.Track{},
		Rejected: []string{},
	}
	if len(candidates) == 0 {
		return response, nil
	}

	e.sendProgress(prog, verifyingUpdate(0, len(candidates), nil))

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	outcomes := make([]models.VerificationOutcome, len(candidates))

	jobs := make(chan verifyJob, len(candidates))

	var wg sync.WaitGroup
	for i := 0; i < opts.Workers; i++ {
		wg.Add(1)
		go e.verifyWorker(ctx, &wg, jobs, outcomes, limiter)
	}

	for i, candidate := range candidates {
		e.sendProgress(prog, verifyingUpdate(i+1, len(candidates), &candidate))
		jobs <- verifyJob{index: i, candidate: candidate}
	}
	close(jobs)

	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for _, outcome := range outcomes {
		if outcome.Verified {
			response.Verified = append(response.Verified, outcome.Track)
		} else {
			response.Rejected = append(response.Rejected, outcome.Label)
		}
	}

	e.sendProgress(prog, verifiedUpdate(len(response.Verified), len(response.Rejected)))
	return response, nil
}

// verifyWorker resolves candidates from the jobs channel into outcomes.
func (e *PipelineEngine) verifyWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	jobs <-chan verifyJob,
	outcomes []models.VerificationOutcome,
	limiter *rate.Limiter,
) {
	defer wg.Done()

	for job := range jobs {
		select {
		case <-ctx.Done():
			outcomes[job.index] = models.RejectedOutcome(job.candidate.Label())
			continue
		default:
		}

		outcomes[job.index] = e.verifyCandidate(ctx, job.candidate, limiter)
	}
}

// verifyCandidate resolves one candidate against the catalog.
func (e *PipelineEngine) verifyCandidate(ctx context.Context, candidate models.CandidateTrack, limiter *rate.Limiter) models.VerificationOutcome {
	if err := limiter.Wait(ctx); err != nil {
		return models.RejectedOutcome(candidate.Label())
	}

	searchCtx, cancel := context.WithTimeout(ctx, e.timeouts.CatalogTimeout())
	results, err := e.catalog.Search(searchCtx, candidate.Artist, candidate.Title)
	cancel()
	if err != nil {
		return models.RejectedOutcome(candidate.Label())
	}

	outcome := match.Match(candidate, results)
	if outcome.Verified && e.recorder != nil {
		// Bookkeeping only; a failed record never fails the candidate.
		_ = e.recorder.Record(e.catalog.Name(), lookupKey(candidate), outcome.Track)
	}

	return outcome
}

// lookupKey derives the record key from the candidate's normalized identity.
func lookupKey(candidate models.CandidateTrack) string {
	return match.Normalize(candidate.Artist) + "|" + match.Normalize(candidate.Title)
}
