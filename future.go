package reactor

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/ikilobyte/reactor/iface"
	"github.com/ikilobyte/reactor/util"
)

const (
	futurePending int32 = iota
	futureCompleted
	futureFailed
	futureCancelled
)

//Future one-shot container for the endpoint a Listen call will produce
type Future struct {
	state    atomic.Int32
	endpoint iface.IEndpoint
	err      error
	done     chan struct{}

	mu        sync.Mutex
	callbacks []func(endpoint iface.IEndpoint, err error)
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

//settle decides the outcome, first caller wins, the rest are no-ops
func (f *Future) settle(state int32, endpoint iface.IEndpoint, err error) bool {
	if !f.state.CompareAndSwap(futurePending, state) {
		return false
	}

	// result fields are published by the channel close
	f.endpoint = endpoint
	f.err = err
	close(f.done)

	f.mu.Lock()
	callbacks := f.callbacks
	f.callbacks = nil
	f.mu.Unlock()

	for _, fn := range callbacks {
		fn(endpoint, err)
	}
	return true
}

func (f *Future) complete(endpoint iface.IEndpoint) bool {
	return f.settle(futureCompleted, endpoint, nil)
}

func (f *Future) fail(err error) bool {
	return f.settle(futureFailed, nil, err)
}

//Get waits for the outcome, ctx bounds the wait
func (f *Future) Get(ctx context.Context) (iface.IEndpoint, error) {
	select {
	case <-f.done:
		return f.endpoint, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

//Done closed once the outcome is readable
func (f *Future) Done() <-chan struct{} {
	return f.done
}

//Cancel rejects the outcome, reports whether this call won the race
func (f *Future) Cancel() bool {
	return f.settle(futureCancelled, nil, util.ErrCancelled)
}

//IsDone ...
func (f *Future) IsDone() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

//IsCancelled ...
func (f *Future) IsCancelled() bool {
	return f.state.Load() == futureCancelled
}

//OnComplete runs fn once settled, immediately when that already happened
func (f *Future) OnComplete(fn func(endpoint iface.IEndpoint, err error)) {
	f.mu.Lock()
	select {
	case <-f.done:
		f.mu.Unlock()
		fn(f.endpoint, f.err)
		return
	default:
	}
	f.callbacks = append(f.callbacks, fn)
	f.mu.Unlock()
}
