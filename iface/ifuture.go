package iface

import "context"

//IFuture pending result of a Listen call, settled at most once
type IFuture interface {
	Get(ctx context.Context) (IEndpoint, error)
	Done() <-chan struct{}
	Cancel() bool
	IsDone() bool
	IsCancelled() bool
	OnComplete(fn func(endpoint IEndpoint, err error))
}
