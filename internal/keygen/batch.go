package keygen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/udisondev/textrsa/internal/crypto"
)

// Result is the outcome of one Batch request. Err is set only for
// parameters GenerateKeys rejected; ID and Key are zero in that case.
type Result struct {
	Request Request
	ID      uuid.UUID
	Key     crypto.KeyPair
	Err     error
}

// Batch generates and stores every request, at most concurrency at a time.
// Results are returned in request order. Invalid parameters are reported
// per result; any other failure (store, sealing, cancellation) aborts the
// batch and is returned.
func (s *Service) Batch(ctx context.Context, reqs []Request) ([]Result, error) {
	results := make([]Result, len(reqs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, req := range reqs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			id, kp, err := s.GenerateAndStore(gctx, req)
			switch {
			case errors.Is(err, crypto.ErrInvalidInput):
				results[i] = Result{Request: req, Err: err}
				return nil
			case err != nil:
				return err
			}

			results[i] = Result{Request: req, ID: id, Key: kp}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("batch generation: %w", err)
	}

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	slog.Info("batch generation finished", "requested", len(reqs), "rejected", failed)

	return results, nil
}
