package reactor

import (
	"sync"

	"github.com/ikilobyte/reactor/iface"
)

//EndpointMgr tracks the endpoints currently registered with the reactor
type EndpointMgr struct {
	endpoints sync.Map // *Endpoint -> struct{}
}

func newEndpointMgr() *EndpointMgr {
	return &EndpointMgr{}
}

//Add ...
func (m *EndpointMgr) Add(endpoint *Endpoint) {
	m.endpoints.Store(endpoint, struct{}{})
}

//Remove ...
func (m *EndpointMgr) Remove(endpoint *Endpoint) {
	m.endpoints.Delete(endpoint)
}

//Len counts tracked endpoints
func (m *EndpointMgr) Len() int {
	n := 0
	m.endpoints.Range(func(_, _ interface{}) bool {
		n++
		return true
	})
	return n
}

//Snapshot lists open endpoints, closed ones are dropped on the way
func (m *EndpointMgr) Snapshot() []iface.IEndpoint {
	var list []iface.IEndpoint
	m.endpoints.Range(func(key, _ interface{}) bool {
		endpoint := key.(*Endpoint)
		if endpoint.IsClosed() {
			m.endpoints.Delete(key)
			return true
		}
		list = append(list, endpoint)
		return true
	})
	return list
}

//ClearAll removes every endpoint and returns those removed
func (m *EndpointMgr) ClearAll() []*Endpoint {
	var list []*Endpoint
	m.endpoints.Range(func(key, _ interface{}) bool {
		endpoint := key.(*Endpoint)
		m.endpoints.Delete(key)
		list = append(list, endpoint)
		return true
	})
	return list
}
