//go:build linux
// +build linux

package eventloop

import (
	"sync"
	"time"

	"github.com/ikilobyte/reactor/iface"
	"golang.org/x/sys/unix"
)

type Poller struct {
	epfd      int    // eventpoll fd
	eventfd   int    // wakeup fd
	eventbuff []byte // written as-is on wakeup, never mutated
	readbuff  []byte
	events    []unix.EpollEvent

	mu     sync.Mutex // serializes Wakeup against Close
	closed bool
}

//NewPoller creates the epoll instance and its wakeup eventfd
func NewPoller() (*Poller, error) {

	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, err
	}

	eventfd, err := unix.Eventfd(0, unix.EFD_NONBLOCK|unix.EFD_CLOEXEC)
	if err != nil {
		_ = unix.Close(epfd)
		return nil, err
	}

	if err := unix.EpollCtl(epfd, unix.EPOLL_CTL_ADD, eventfd, &unix.EpollEvent{
		Events: unix.EPOLLIN,
		Fd:     int32(eventfd),
	}); err != nil {
		_ = unix.Close(eventfd)
		_ = unix.Close(epfd)
		return nil, err
	}

	return &Poller{
		epfd:      epfd,
		eventfd:   eventfd,
		eventbuff: []byte{0, 0, 0, 0, 0, 0, 0, 1},
		readbuff:  make([]byte, 8),
		events:    make([]unix.EpollEvent, 128),
	}, nil
}

//AddRead subscribes fd for readability, token travels in the Pad field
func (p *Poller) AddRead(fd, token int) error {
	return unix.EpollCtl(p.epfd, unix.EPOLL_CTL_ADD, fd, &unix.EpollEvent{
		Events: unix.EPOLLIN,
		Fd:     int32(fd),
		Pad:    int32(token),
	})
}

//Remove unsubscribes fd, must run on the reactor goroutine
func (p *Poller) Remove(fd int) error {
	return unix.EpollCtl(p.epfd, unix.EPOLL_CTL_DEL, fd, nil)
}

//Wait collects ready descriptors, timeout < 0 blocks until an event or wakeup
func (p *Poller) Wait(timeout time.Duration) ([]iface.Event, error) {

	msec := -1
	if timeout >= 0 {
		msec = int(timeout.Milliseconds())
		if msec == 0 && timeout > 0 {
			msec = 1
		}
	}

	var n int
	var err error
	for {
		n, err = unix.EpollWait(p.epfd, p.events, msec)
		if err != nil {
			if err == unix.EAGAIN || err == unix.EINTR {
				continue
			}
			return nil, err
		}
		break
	}

	var ready []iface.Event
	for i := 0; i < n; i++ {
		event := p.events[i]
		fd := int(event.Fd)

		// drain the wakeup counter, it carries no payload
		if fd == p.eventfd {
			_, _ = unix.Read(p.eventfd, p.readbuff)
			continue
		}

		typ := iface.EventAccept
		if event.Events&(unix.EPOLLERR|unix.EPOLLHUP) != 0 {
			typ = iface.EventError
		}
		ready = append(ready, iface.Event{Fd: fd, Token: int(event.Pad), Type: typ})
	}

	return ready, nil
}

//Wakeup makes a concurrent Wait return early, safe from any goroutine
func (p *Poller) Wakeup() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	_, err := unix.Write(p.eventfd, p.eventbuff)
	if err == unix.EAGAIN {
		// counter already nonzero, a wakeup is pending
		return nil
	}
	return err
}

//Close releases the epoll and wakeup descriptors
func (p *Poller) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true
	_ = unix.Close(p.eventfd)
	return unix.Close(p.epfd)
}
