package reactor

import (
	"net"
	"sync/atomic"

	"golang.org/x/sys/unix"
)

//Endpoint a listening socket registered with the reactor
type Endpoint struct {
	fd      int
	address net.Addr // address the socket is actually bound to
	closed  atomic.Bool
}

func newEndpoint(fd int, address net.Addr) *Endpoint {
	return &Endpoint{fd: fd, address: address}
}

//GetAddress ...
func (e *Endpoint) GetAddress() net.Addr {
	return e.address
}

//IsClosed ...
func (e *Endpoint) IsClosed() bool {
	return e.closed.Load()
}

//Close closes the listening socket, repeat calls are no-ops
func (e *Endpoint) Close() error {
	if !e.closed.CompareAndSwap(false, true) {
		return nil
	}
	return unix.Close(e.fd)
}
