package iface

import "net"

type IConnect interface {
	GetID() int
	GetFd() int
	GetAddress() net.Addr
	Read(bs []byte) (int, error)
	Write(bs []byte) (int, error)
	Close() error
}
