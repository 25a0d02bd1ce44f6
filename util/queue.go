package util

import (
	"sync/atomic"
)

//Queue multi-producer single-consumer queue. Push is safe from any goroutine
//and never blocks; Pop must only be called by the single consumer.
type Queue struct {
	head atomic.Pointer[qnode] // producers CAS here, newest first
	out  *qnode                // consumer-side chain, oldest first
	size atomic.Int64
}

type qnode struct {
	value interface{}
	next  *qnode
}

func NewQueue() *Queue {
	return &Queue{}
}

//Push adds an item and returns the new length
func (q *Queue) Push(item interface{}) int {
	node := &qnode{value: item}
	for {
		head := q.head.Load()
		node.next = head
		if q.head.CompareAndSwap(head, node) {
			break
		}
	}
	return int(q.size.Add(1))
}

//Pop removes the oldest item, nil when empty
func (q *Queue) Pop() interface{} {
	if q.out == nil {
		// take over everything pushed so far and restore FIFO order
		grabbed := q.head.Swap(nil)
		for grabbed != nil {
			next := grabbed.next
			grabbed.next = q.out
			q.out = grabbed
			grabbed = next
		}
	}

	if q.out == nil {
		return nil
	}

	node := q.out
	q.out = node.next
	node.next = nil
	q.size.Add(-1)
	return node.value
}

//Len approximate length
func (q *Queue) Len() int {
	return int(q.size.Load())
}
