package iface

import "time"

type EventType int

const (
	EventAccept EventType = iota // descriptor readable, connections pending
	EventError                   // descriptor in error state
)

//Event readiness notification for one registered descriptor
type Event struct {
	Fd    int
	Token int
	Type  EventType
}

type IPoller interface {
	AddRead(fd, token int) error
	Remove(fd int) error
	Wait(timeout time.Duration) ([]Event, error)
	Wakeup() error
	Close() error
}
