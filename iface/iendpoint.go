package iface

import "net"

type IEndpoint interface {
	GetAddress() net.Addr
	IsClosed() bool
	Close() error
}
