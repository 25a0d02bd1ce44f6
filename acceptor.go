package reactor

import (
	"sync/atomic"
	"time"

	"github.com/ikilobyte/reactor/common"
	"github.com/ikilobyte/reactor/eventloop"
	"github.com/ikilobyte/reactor/iface"
	"github.com/ikilobyte/reactor/util"
	"golang.org/x/sys/unix"
)

//Acceptor the reactor core, one goroutine drives every listening socket
type Acceptor struct {
	options      *Options
	poller       iface.IPoller
	requestQueue *util.Queue  // cross-goroutine Listen handoff
	endpointMgr  *EndpointMgr // endpoints visible to the outside
	callback     iface.ConnectionFunc

	status atomic.Int32 // common.Status
	paused atomic.Bool
	done   chan struct{} // closed once fully shut down

	// reactor goroutine only
	registrations map[int]*Endpoint // token -> endpoint
	nextToken     int
	connID        int
}

var _ iface.IAcceptor = (*Acceptor)(nil)

//New creates a reactor delivering accepted connections to callback
func New(callback iface.ConnectionFunc, opts ...Option) (*Acceptor, error) {

	if callback == nil {
		return nil, util.ErrNilCallback
	}

	poller, err := eventloop.NewPoller()
	if err != nil {
		return nil, err
	}

	return &Acceptor{
		options:       parseOption(opts...),
		poller:        poller,
		requestQueue:  util.NewQueue(),
		endpointMgr:   newEndpointMgr(),
		callback:      callback,
		done:          make(chan struct{}),
		registrations: make(map[int]*Endpoint),
		connID:        -1,
	}, nil
}

//Execute runs the event loop on the calling goroutine until Shutdown
func (a *Acceptor) Execute() error {

	if !a.casStatus(common.Inactive, common.Active) {
		if a.GetStatus() == common.Active {
			return util.ErrAlreadyRunning
		}
		return util.ErrShutdown
	}

	defer a.doShutdown()

	for {
		events, err := a.poller.Wait(a.options.SelectInterval)
		if err != nil {
			util.Logger.Errorf("acceptor wait error: %v", err)
			return err
		}

		if a.GetStatus() >= common.ShuttingDown {
			return nil
		}

		a.processEvents(events)
	}
}

func (a *Acceptor) processEvents(events []iface.Event) {

	if !a.paused.Load() {
		a.processListenRequests()
	}

	for _, event := range events {
		a.processEvent(event)
	}

	a.sweepRegistrations()
}

//processListenRequests drains the registration queue, opening one socket per entry
func (a *Acceptor) processListenRequests() {

	for {
		item := a.requestQueue.Pop()
		if item == nil {
			return
		}
		request := item.(*listenRequest)

		// cancelled before the loop got here, never open the socket
		if request.future != nil && request.future.IsCancelled() {
			continue
		}

		fd, address, err := openListener(request.address, a.options)
		if err != nil {
			a.failRequest(request, err)
			continue
		}

		token := a.nextToken
		a.nextToken++

		if err := a.poller.AddRead(fd, token); err != nil {
			_ = unix.Close(fd)
			a.failRequest(request, err)
			continue
		}

		endpoint := newEndpoint(fd, address)
		a.registrations[token] = endpoint
		a.endpointMgr.Add(endpoint)

		if request.future != nil {
			// a lost race against Cancel leaves the endpoint open and listed
			request.future.complete(endpoint)
		}
	}
}

//failRequest delivers err through the future, or the exception hook when there is none
func (a *Acceptor) failRequest(request *listenRequest, err error) {
	if request.future != nil {
		request.future.fail(err)
		return
	}
	a.exception(err)
}

func (a *Acceptor) processEvent(event iface.Event) {

	endpoint, ok := a.registrations[event.Token]
	if !ok {
		// already swept
		return
	}

	if endpoint.IsClosed() {
		// closed behind our back, drop the leftover registration
		delete(a.registrations, event.Token)
		a.endpointMgr.Remove(endpoint)
		return
	}

	switch event.Type {
	case iface.EventAccept:
		a.acceptLoop(endpoint)
	case iface.EventError:
		a.closeEndpoint(event.Token, endpoint)
	default:
		util.Logger.Errorf("acceptor unknown event type: %d", event.Type)
	}
}

//acceptLoop accepts until the backlog is empty
func (a *Acceptor) acceptLoop(endpoint *Endpoint) {

	for {
		connFd, sa, err := unix.Accept(endpoint.fd)
		if err != nil {
			switch err {
			case unix.EAGAIN:
				return
			case unix.EINTR, unix.ECONNABORTED:
				// aborted in the backlog, keep draining
				continue
			case unix.EBADF, unix.EINVAL:
				// listener closed under us, the next sweep drops it
				return
			default:
				a.exception(err)
				return
			}
		}

		if err := setConnSockopts(connFd, a.options); err != nil {
			_ = unix.Close(connFd)
			continue
		}

		connect := newConnect(a.incrementID(), connFd, util.SockaddrToTCPOrUnixAddr(sa))
		a.callback(connect)
	}
}

//sweepRegistrations prunes entries whose endpoint was closed elsewhere
func (a *Acceptor) sweepRegistrations() {
	for token, endpoint := range a.registrations {
		if endpoint.IsClosed() {
			delete(a.registrations, token)
			a.endpointMgr.Remove(endpoint)
		}
	}
}

//closeEndpoint full teardown on the reactor goroutine
func (a *Acceptor) closeEndpoint(token int, endpoint *Endpoint) {
	delete(a.registrations, token)
	a.endpointMgr.Remove(endpoint)
	_ = a.poller.Remove(endpoint.fd)
	_ = endpoint.Close()
}

//Listen binds a listening socket on the reactor goroutine, the future
//resolves once that happened
func (a *Acceptor) Listen(address string) (iface.IFuture, error) {

	if a.GetStatus() >= common.ShuttingDown {
		return nil, util.ErrShutdown
	}

	future := newFuture()
	a.requestQueue.Push(&listenRequest{address: address, future: future})
	_ = a.poller.Wakeup()
	return future, nil
}

//Pause closes all listening sockets, keeping their addresses for Resume
func (a *Acceptor) Pause() error {

	if !a.paused.CompareAndSwap(false, true) {
		return nil
	}

	var first error
	for _, endpoint := range a.endpointMgr.ClearAll() {
		if endpoint.IsClosed() {
			continue
		}
		address := endpoint.address.String()
		if err := endpoint.Close(); err != nil && first == nil {
			first = err
		}
		a.requestQueue.Push(&listenRequest{address: address})
	}
	return first
}

//Resume reopens every endpoint closed by Pause
func (a *Acceptor) Resume() error {
	if !a.paused.CompareAndSwap(true, false) {
		return nil
	}
	return a.poller.Wakeup()
}

//GetEndpoints snapshots the endpoints currently open
func (a *Acceptor) GetEndpoints() []iface.IEndpoint {
	return a.endpointMgr.Snapshot()
}

//GetStatus ...
func (a *Acceptor) GetStatus() common.Status {
	return common.Status(a.status.Load())
}

//Shutdown asks the loop to stop, safe to call more than once
func (a *Acceptor) Shutdown() {

	if a.casStatus(common.Inactive, common.ShutDown) {
		// Execute never ran, nobody else will drain the queue
		a.drainRequests()
		_ = a.poller.Close()
		close(a.done)
		return
	}

	if a.casStatus(common.Active, common.ShuttingDown) {
		_ = a.poller.Wakeup()
	}
}

//AwaitShutdown blocks until fully shut down, timeout < 0 waits forever
func (a *Acceptor) AwaitShutdown(timeout time.Duration) error {

	if timeout < 0 {
		<-a.done
		return nil
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-a.done:
		return nil
	case <-timer.C:
		return util.ErrTimeout
	}
}

//doShutdown terminal cleanup, runs once on the reactor goroutine
func (a *Acceptor) doShutdown() {

	// stops late Shutdown callers from waking a poller about to close
	a.status.Store(int32(common.ShuttingDown))

	a.drainRequests()

	for _, endpoint := range a.endpointMgr.ClearAll() {
		_ = a.poller.Remove(endpoint.fd)
		_ = endpoint.Close()
	}
	a.registrations = make(map[int]*Endpoint)

	_ = a.poller.Close()
	a.status.Store(int32(common.ShutDown))
	close(a.done)
}

//drainRequests fails whatever is still queued
func (a *Acceptor) drainRequests() {
	for {
		item := a.requestQueue.Pop()
		if item == nil {
			return
		}
		request := item.(*listenRequest)
		if request.future != nil {
			request.future.fail(util.ErrTerminated)
		}
	}
}

func (a *Acceptor) exception(err error) {
	if a.options.OnException != nil {
		a.options.OnException(err)
		return
	}
	util.Logger.Errorf("acceptor error: %v", err)
}

func (a *Acceptor) incrementID() int {
	a.connID += 1
	return a.connID
}

func (a *Acceptor) casStatus(from, to common.Status) bool {
	return a.status.CompareAndSwap(int32(from), int32(to))
}
