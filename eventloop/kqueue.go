//go:build darwin
// +build darwin

package eventloop

import (
	"sync"
	"time"

	"github.com/ikilobyte/reactor/iface"
	"golang.org/x/sys/unix"
)

type Poller struct {
	epfd   int // kqueue fd
	events []unix.Kevent_t

	// fd -> token, kqueue events cannot carry it back. An fd closed
	// without Remove keeps its entry until a later AddRead reuses the
	// number and overwrites it.
	tokens map[int]int

	mu     sync.Mutex // serializes Wakeup against Close
	closed bool
}

//NewPoller creates the kqueue instance, ident 0 user event is the wakeup channel
func NewPoller() (*Poller, error) {

	fd, err := unix.Kqueue()
	if err != nil {
		return nil, err
	}

	if _, err := unix.Kevent(fd, []unix.Kevent_t{
		{Ident: 0, Filter: unix.EVFILT_USER, Flags: unix.EV_ADD | unix.EV_CLEAR},
	}, nil, nil); err != nil {
		_ = unix.Close(fd)
		return nil, err
	}

	return &Poller{
		epfd:   fd,
		events: make([]unix.Kevent_t, 128),
		tokens: make(map[int]int),
	}, nil
}

//AddRead subscribes fd for readability, must run on the reactor goroutine
func (p *Poller) AddRead(fd, token int) error {
	_, err := unix.Kevent(p.epfd, []unix.Kevent_t{
		{
			Ident:  uint64(fd),
			Filter: unix.EVFILT_READ,
			Flags:  unix.EV_ADD,
		},
	}, nil, nil)
	if err != nil {
		return err
	}
	p.tokens[fd] = token
	return nil
}

//Remove unsubscribes fd, must run on the reactor goroutine
func (p *Poller) Remove(fd int) error {
	delete(p.tokens, fd)
	_, err := unix.Kevent(p.epfd, []unix.Kevent_t{
		{
			Ident:  uint64(fd),
			Filter: unix.EVFILT_READ,
			Flags:  unix.EV_DELETE,
		},
	}, nil, nil)
	return err
}

//Wait collects ready descriptors, timeout < 0 blocks until an event or wakeup
func (p *Poller) Wait(timeout time.Duration) ([]iface.Event, error) {

	var ts *unix.Timespec
	if timeout >= 0 {
		t := unix.NsecToTimespec(timeout.Nanoseconds())
		ts = &t
	}

	var n int
	var err error
	for {
		n, err = unix.Kevent(p.epfd, nil, p.events, ts)
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

		// wakeup only, EV_CLEAR resets the user event
		if event.Filter == unix.EVFILT_USER {
			continue
		}

		fd := int(event.Ident)
		token, ok := p.tokens[fd]
		if !ok {
			// deregistered in the meantime
			continue
		}

		typ := iface.EventAccept
		if event.Flags&(unix.EV_ERROR|unix.EV_EOF) != 0 {
			typ = iface.EventError
		}
		ready = append(ready, iface.Event{Fd: fd, Token: token, Type: typ})
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
	_, err := unix.Kevent(p.epfd, []unix.Kevent_t{{
		Ident:  0,
		Filter: unix.EVFILT_USER,
		Fflags: unix.NOTE_TRIGGER,
	}}, nil, nil)
	return err
}

//Close releases the kqueue descriptor
func (p *Poller) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true
	return unix.Close(p.epfd)
}
