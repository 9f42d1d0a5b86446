package fanout

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_ExecutesEveryTaskAndPairsIndices(t *testing.T) {
	tasks := make([]Task[int], 5)
	for i := range tasks {
		i := i
		tasks[i] = func(ctx context.Context) (int, error) {
			return i * 10, nil
		}
	}

	results := Run(context.Background(), 2, tasks)
	require.Len(t, results, 5)

	seen := make(map[int]int)
	for _, r := range results {
		require.NoError(t, r.Err)
		seen[r.Index] = r.Value
	}
	for i := 0; i < 5; i++ {
		assert.Equal(t, i*10, seen[i])
	}
}

func TestRun_RespectsMaxConcurrency(t *testing.T) {
	var inFlight, maxSeen int32
	tasks := make([]Task[struct{}], 10)
	for i := range tasks {
		tasks[i] = func(ctx context.Context) (struct{}, error) {
			cur := atomic.AddInt32(&inFlight, 1)
			defer atomic.AddInt32(&inFlight, -1)
			for {
				prev := atomic.LoadInt32(&maxSeen)
				if cur <= prev || atomic.CompareAndSwapInt32(&maxSeen, prev, cur) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			return struct{}{}, nil
		}
	}

	Run(context.Background(), 3, tasks)
	assert.LessOrEqual(t, int(maxSeen), 3)
}

func TestRun_ZeroOrNegativeConcurrencyTreatedAsOne(t *testing.T) {
	tasks := []Task[int]{
		func(ctx context.Context) (int, error) { return 1, nil },
		func(ctx context.Context) (int, error) { return 2, nil },
	}
	results := Run(context.Background(), 0, tasks)
	assert.Len(t, results, 2)
}

func TestRun_PropagatesTaskErrors(t *testing.T) {
	boom := errors.New("boom")
	tasks := []Task[int]{
		func(ctx context.Context) (int, error) { return 0, boom },
	}
	results := Run(context.Background(), 1, tasks)
	require.Len(t, results, 1)
	assert.ErrorIs(t, results[0].Err, boom)
}

func TestRun_AlreadyCancelledContextSkipsTasks(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var executed atomic.Bool
	tasks := []Task[int]{
		func(ctx context.Context) (int, error) {
			executed.Store(true)
			return 1, nil
		},
	}
	results := Run(ctx, 1, tasks)
	require.Len(t, results, 1)
	assert.Error(t, results[0].Err)
	assert.False(t, executed.Load())
}

func TestRunUntilFirstSuccess_ReturnsFirstAcceptedValue(t *testing.T) {
	tasks := []Task[int]{
		func(ctx context.Context) (int, error) { return 1, nil },
		func(ctx context.Context) (int, error) {
			time.Sleep(20 * time.Millisecond)
			return 2, nil
		},
	}
	value, ok := RunUntilFirstSuccess(context.Background(), 2, tasks, func(v int) bool { return v == 1 })
	assert.True(t, ok)
	assert.Equal(t, 1, value)
}

func TestRunUntilFirstSuccess_NoTaskSatisfiesAcceptReturnsFalse(t *testing.T) {
	tasks := []Task[int]{
		func(ctx context.Context) (int, error) { return 1, nil },
		func(ctx context.Context) (int, error) { return 2, nil },
	}
	_, ok := RunUntilFirstSuccess(context.Background(), 2, tasks, func(v int) bool { return v == 99 })
	assert.False(t, ok)
}

func TestRunUntilFirstSuccess_EmptyTaskListReturnsFalse(t *testing.T) {
	_, ok := RunUntilFirstSuccess[int](context.Background(), 2, nil, func(int) bool { return true })
	assert.False(t, ok)
}

func TestRunUntilFirstSuccess_ZeroOrNegativeConcurrencyTreatedAsOne(t *testing.T) {
	tasks := []Task[int]{
		func(ctx context.Context) (int, error) { return 1, nil },
		func(ctx context.Context) (int, error) { return 2, nil },
	}
	value, ok := RunUntilFirstSuccess(context.Background(), 0, tasks, func(v int) bool { return true })
	assert.True(t, ok)
	assert.Contains(t, []int{1, 2}, value)

	value, ok = RunUntilFirstSuccess(context.Background(), -3, tasks, func(v int) bool { return true })
	assert.True(t, ok)
	assert.Contains(t, []int{1, 2}, value)
}

func TestRunUntilFirstSuccess_CancelsOutstandingPeersOnAccept(t *testing.T) {
	var cancelledObserved atomic.Bool
	tasks := []Task[int]{
		func(ctx context.Context) (int, error) { return 7, nil },
		func(ctx context.Context) (int, error) {
			select {
			case <-time.After(200 * time.Millisecond):
				return 8, nil
			case <-ctx.Done():
				cancelledObserved.Store(true)
				return 0, ctx.Err()
			}
		},
	}
	value, ok := RunUntilFirstSuccess(context.Background(), 2, tasks, func(v int) bool { return v == 7 })
	assert.True(t, ok)
	assert.Equal(t, 7, value)
	assert.True(t, cancelledObserved.Load())
}
