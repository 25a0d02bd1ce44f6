//go:build darwin
// +build darwin

package reactor

import (
	"net"
	"time"

	"github.com/ikilobyte/reactor/util"
	"golang.org/x/sys/unix"
)

//openListener creates the listening socket with raw syscalls, the net package
//does not expose the fd the poller needs
func openListener(address string, options *Options) (int, net.Addr, error) {

	domain, sa, err := util.ResolveSockaddr(address)
	if err != nil {
		return 0, nil, err
	}

	fd, err := unix.Socket(domain, unix.SOCK_STREAM, unix.IPPROTO_TCP)
	if err != nil {
		return 0, nil, err
	}
	unix.CloseOnExec(fd)

	if options.SoReuseAddr {
		if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
			_ = unix.Close(fd)
			return 0, nil, err
		}
	}

	if options.RcvBufSize > 0 {
		if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_RCVBUF, options.RcvBufSize); err != nil {
			_ = unix.Close(fd)
			return 0, nil, err
		}
	}

	if err := unix.SetNonblock(fd, true); err != nil {
		_ = unix.Close(fd)
		return 0, nil, err
	}

	if err := unix.Bind(fd, sa); err != nil {
		_ = unix.Close(fd)
		return 0, nil, err
	}

	if err := unix.Listen(fd, options.Backlog); err != nil {
		_ = unix.Close(fd)
		return 0, nil, err
	}

	// the kernel picks the port when address asked for :0
	bound, err := unix.Getsockname(fd)
	if err != nil {
		_ = unix.Close(fd)
		return 0, nil, err
	}

	return fd, util.SockaddrToTCPOrUnixAddr(bound), nil
}

//setConnSockopts post-accept socket attributes
func setConnSockopts(fd int, options *Options) error {

	if err := unix.SetNonblock(fd, true); err != nil {
		return err
	}

	if options.TCPNoDelay {
		if err := unix.SetsockoptInt(fd, unix.IPPROTO_TCP, unix.TCP_NODELAY, 1); err != nil {
			return err
		}
	}

	if secs := int(options.TCPKeepAlive / time.Second); secs >= 1 {
		return setKeepAlive(fd, secs)
	}
	return nil
}

//setKeepAlive probe timing
func setKeepAlive(fd, secs int) error {

	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_KEEPALIVE, 1); err != nil {
		return err
	}

	switch err := unix.SetsockoptInt(fd, unix.IPPROTO_TCP, unix.TCP_KEEPINTVL, secs); err {
	case nil, unix.ENOPROTOOPT: // OS X 10.7 and earlier don't support this option
	default:
		return err
	}

	return unix.SetsockoptInt(fd, unix.IPPROTO_TCP, unix.TCP_KEEPALIVE, secs)
}
