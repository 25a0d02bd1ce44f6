package common

//Status reactor lifecycle states, ordered: comparisons with >= are meaningful
type Status int32

const (
	Inactive Status = iota
	Active
	ShuttingDown
	ShutDown
)

func (s Status) String() string {
	switch s {
	case Inactive:
		return "INACTIVE"
	case Active:
		return "ACTIVE"
	case ShuttingDown:
		return "SHUTTING_DOWN"
	case ShutDown:
		return "SHUT_DOWN"
	default:
		return "UNKNOWN"
	}
}
