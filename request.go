package reactor

//listenRequest a pending Listen carried through the registration queue,
//future is nil for the re-listen entries queued by Pause
type listenRequest struct {
	address string
	future  *Future
}
