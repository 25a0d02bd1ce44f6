package util

import "errors"

var ErrShutdown = errors.New("reactor has been shut down")
var ErrTerminated = errors.New("reactor terminated")
var ErrAlreadyRunning = errors.New("reactor already running")
var ErrCancelled = errors.New("listen request cancelled")
var ErrNilCallback = errors.New("connection callback is nil")
var ErrTimeout = errors.New("await timeout")
