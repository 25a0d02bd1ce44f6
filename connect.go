package reactor

import (
	"net"
	"sync/atomic"

	"golang.org/x/sys/unix"
)

//Connect an accepted connection handed to the connection callback
type Connect struct {
	id      int
	fd      int
	address net.Addr
	closed  atomic.Bool
}

func newConnect(id int, fd int, address net.Addr) *Connect {
	return &Connect{
		id:      id,
		fd:      fd,
		address: address,
	}
}

//GetID connection sequence number, unique within one reactor
func (c *Connect) GetID() int {
	return c.id
}

//GetFd ...
func (c *Connect) GetFd() int {
	return c.fd
}

//GetAddress remote peer address
func (c *Connect) GetAddress() net.Addr {
	return c.address
}

func (c *Connect) Read(bs []byte) (int, error) {
	return unix.Read(c.fd, bs)
}

func (c *Connect) Write(bs []byte) (int, error) {
	return unix.Write(c.fd, bs)
}

//Close ...
func (c *Connect) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	return unix.Close(c.fd)
}
