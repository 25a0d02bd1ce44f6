package reactor

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ikilobyte/reactor/iface"
	"github.com/ikilobyte/reactor/util"
)

func TestFutureCompleteOnce(t *testing.T) {
	future := newFuture()
	endpoint := newEndpoint(-1, nil)

	require.False(t, future.IsDone())
	require.True(t, future.complete(endpoint))
	require.True(t, future.IsDone())
	require.False(t, future.IsCancelled())

	// later outcomes lose
	require.False(t, future.complete(newEndpoint(-1, nil)))
	require.False(t, future.fail(util.ErrTerminated))
	require.False(t, future.Cancel())

	got, err := future.Get(context.Background())
	require.NoError(t, err)
	require.Same(t, endpoint, got)
}

func TestFutureFail(t *testing.T) {
	future := newFuture()
	require.True(t, future.fail(util.ErrTerminated))

	got, err := future.Get(context.Background())
	require.ErrorIs(t, err, util.ErrTerminated)
	require.Nil(t, got)
}

func TestFutureCancel(t *testing.T) {
	future := newFuture()
	require.True(t, future.Cancel())
	require.True(t, future.IsCancelled())
	require.True(t, future.IsDone())

	// cancellation suppresses a late completion
	require.False(t, future.complete(newEndpoint(-1, nil)))

	got, err := future.Get(context.Background())
	require.ErrorIs(t, err, util.ErrCancelled)
	require.Nil(t, got)
}

func TestFutureGetHonorsContext(t *testing.T) {
	future := newFuture()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	got, err := future.Get(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Nil(t, got)
	require.False(t, future.IsDone())
}

func TestFutureOnComplete(t *testing.T) {
	future := newFuture()
	endpoint := newEndpoint(-1, nil)

	results := make(chan iface.IEndpoint, 2)
	future.OnComplete(func(endpoint iface.IEndpoint, err error) {
		require.NoError(t, err)
		results <- endpoint
	})

	require.True(t, future.complete(endpoint))
	require.Same(t, endpoint, <-results)

	// registering after settlement fires immediately
	future.OnComplete(func(endpoint iface.IEndpoint, err error) {
		require.NoError(t, err)
		results <- endpoint
	})
	require.Same(t, endpoint, <-results)
}

func TestFutureSettleRace(t *testing.T) {
	future := newFuture()
	endpoint := newEndpoint(-1, nil)

	const racers = 30
	var wg sync.WaitGroup
	wins := make(chan struct{}, racers)

	wg.Add(racers)
	for i := 0; i < racers; i++ {
		go func(i int) {
			defer wg.Done()
			var won bool
			switch i % 3 {
			case 0:
				won = future.complete(endpoint)
			case 1:
				won = future.fail(util.ErrTerminated)
			default:
				won = future.Cancel()
			}
			if won {
				wins <- struct{}{}
			}
		}(i)
	}
	wg.Wait()
	close(wins)

	n := 0
	for range wins {
		n++
	}
	require.Equal(t, 1, n)
	require.True(t, future.IsDone())
}
