package reactor

import (
	"time"

	"github.com/ikilobyte/reactor/util"
)

//Options runtime configuration, zero values fall back to defaults
type Options struct {
	SelectInterval time.Duration   // poll timeout driving queue processing, default 1s
	SoReuseAddr    bool            // rebind ports in TIME_WAIT, default true
	RcvBufSize     int             // listener SO_RCVBUF, 0 keeps the system default
	Backlog        int             // accept backlog, default taken from somaxconn
	TCPNoDelay     bool            // disable Nagle on accepted connections, default true
	TCPKeepAlive   time.Duration   // keepalive probe timing for accepted connections, 0 disables
	OnException    func(err error) // receives errors that have no future to fail
}

type Option = func(opts *Options)

//parseOption applies opts over the defaults
func parseOption(opts ...Option) *Options {
	options := &Options{
		SelectInterval: time.Second,
		SoReuseAddr:    true,
		TCPNoDelay:     true,
	}
	for _, opt := range opts {
		opt(options)
	}

	if options.SelectInterval <= 0 {
		options.SelectInterval = time.Second
	}
	if options.Backlog <= 0 {
		options.Backlog = util.MaxListenerBacklog()
	}
	return options
}

//WithSelectInterval how long one poll may block before the queue is checked again
func WithSelectInterval(interval time.Duration) Option {
	return func(opts *Options) {
		opts.SelectInterval = interval
	}
}

//WithSoReuseAddr SO_REUSEADDR on listening sockets
func WithSoReuseAddr(reuse bool) Option {
	return func(opts *Options) {
		opts.SoReuseAddr = reuse
	}
}

//WithRcvBufSize SO_RCVBUF on listening sockets
func WithRcvBufSize(size int) Option {
	return func(opts *Options) {
		opts.RcvBufSize = size
	}
}

//WithBacklog accept backlog length
func WithBacklog(backlog int) Option {
	return func(opts *Options) {
		opts.Backlog = backlog
	}
}

//WithTCPNoDelay TCP_NODELAY on accepted connections
func WithTCPNoDelay(noDelay bool) Option {
	return func(opts *Options) {
		opts.TCPNoDelay = noDelay
	}
}

//WithTCPKeepAlive keepalive probe timing on accepted connections
func WithTCPKeepAlive(duration time.Duration) Option {
	return func(opts *Options) {
		opts.TCPKeepAlive = duration
	}
}

//WithOnException handler for errors that cannot be delivered through a future
func WithOnException(fn func(err error)) Option {
	return func(opts *Options) {
		opts.OnException = fn
	}
}
