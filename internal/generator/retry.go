package generator

import (
	"context"
	"errors"
	"time"

	"github.com/watnow/routeloop/internal/directions"
	"github.com/watnow/routeloop/internal/geo"
	"github.com/watnow/routeloop/internal/model"
)

// errBudgetExhausted is returned when the per-request directions call
// ceiling (§5) has already been reached.
var errBudgetExhausted = errors.New("generator: directions call budget exhausted")

// callDirectionsWithRetry invokes client once, then retries up to
// maxRetries times with exponential backoff for retriable failure kinds
// ({Transport, Upstream5xx, RateLimited}), abandoning immediately on a
// non-retriable failure, per §4.5 step 3f. Every attempt, including
// retries, is metered against budget.
func callDirectionsWithRetry(ctx context.Context, client directions.Client, waypoints []geo.Coordinates, mode model.TransportMode, budget *callBudget, maxRetries int) (directions.Result, error) {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if !budget.TryConsume() {
			if lastErr != nil {
				return directions.Result{}, lastErr
			}
			return directions.Result{}, errBudgetExhausted
		}

		result, err := client.GetDirections(ctx, waypoints, mode)
		if err == nil {
			return result, nil
		}
		lastErr = err

		var de *directions.Error
		if !errors.As(err, &de) || !de.Kind.Retriable() {
			return directions.Result{}, err
		}
		if attempt == maxRetries {
			return directions.Result{}, err
		}

		backoff := time.Duration(1<<uint(attempt)) * 100 * time.Millisecond
		select {
		case <-ctx.Done():
			return directions.Result{}, ctx.Err()
		case <-time.After(backoff):
		}
	}
	return directions.Result{}, lastErr
}
