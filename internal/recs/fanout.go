package recs

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"triplefeature/recsservice/internal/domain"
	"triplefeature/recsservice/internal/metrics"
)

type fetchOutcome struct {
	movies []domain.Movie
	err    error
}

// fetchFromProviders queries every enabled provider in parallel and collects
// whatever arrives within the per-provider deadline. A slow provider is not
// cancelled; its late result is simply dropped, mirroring the deadline on the
// caller side rather than racing the provider's own HTTP timeout.
func (s *Service) fetchFromProviders(ctx context.Context, query string, exclude []string) ([]domain.Movie, []domain.ProviderStatus) {
	statuses := make([]domain.ProviderStatus, len(s.providers))
	buckets := make([][]domain.Movie, len(s.providers))

	var wg sync.WaitGroup
	for i, provider := range s.providers {
		name := provider.Name()
		statuses[i] = domain.ProviderStatus{Name: name}

		if !provider.Enabled() {
			statuses[i].Error = "not configured"
			continue
		}
		if blocked, until, lastErr := s.isProviderBlocked(name, time.Now()); blocked {
			statuses[i].Error = fmt.Sprintf("provider temporarily unhealthy until %s: %s", until.UTC().Format(time.RFC3339), lastErr)
			continue
		}

		wg.Add(1)
		go func(index int, current Provider) {
			defer wg.Done()

			outcome := make(chan fetchOutcome, 1)
			startedAt := time.Now()
			go func() {
				movies, err := current.Fetch(ctx, query, exclude)
				outcome <- fetchOutcome{movies: movies, err: err}
			}()

			timer := time.NewTimer(s.deadline)
			defer timer.Stop()

			select {
			case result := <-outcome:
				elapsed := time.Since(startedAt)
				s.recordProviderResult(current.Name(), query, result.err, elapsed, time.Now())
				statuses[index].OK = result.err == nil
				if result.err != nil {
					statuses[index].Error = result.err.Error()
					slog.Warn("provider fetch failed",
						slog.String("provider", current.Name()),
						slog.Int64("elapsedMs", elapsed.Milliseconds()),
						slog.String("error", result.err.Error()),
					)
					return
				}
				statuses[index].Count = len(result.movies)
				buckets[index] = result.movies
				metrics.ProviderMoviesTotal.WithLabelValues(current.Name()).Add(float64(len(result.movies)))
			case <-timer.C:
				s.recordProviderResult(current.Name(), query, context.DeadlineExceeded, s.deadline, time.Now())
				statuses[index].Error = "deadline exceeded"
				slog.Warn("provider fetch timed out",
					slog.String("provider", current.Name()),
					slog.Int64("deadlineMs", s.deadline.Milliseconds()),
				)
			case <-ctx.Done():
				statuses[index].Error = "request cancelled"
			}
		}(i, provider)
	}
	wg.Wait()

	// Flatten in registration order so first-wins dedupe stays deterministic.
	movies := make([]domain.Movie, 0, 16)
	for _, bucket := range buckets {
		movies = append(movies, bucket...)
	}
	return movies, statuses
}
