package iface

import (
	"time"

	"github.com/ikilobyte/reactor/common"
)

//ConnectionFunc invoked on the reactor goroutine for every accepted connection
type ConnectionFunc = func(connect IConnect)

//IAcceptor single-goroutine accept reactor, drives any number of listening sockets
type IAcceptor interface {
	Execute() error
	Listen(address string) (IFuture, error)
	Pause() error
	Resume() error
	GetEndpoints() []IEndpoint
	GetStatus() common.Status
	Shutdown()
	AwaitShutdown(timeout time.Duration) error
}
