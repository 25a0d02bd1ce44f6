package util

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestQueueFIFO(t *testing.T) {
	q := NewQueue()
	for i := 0; i < 10; i++ {
		q.Push(i)
	}
	require.Equal(t, 10, q.Len())

	for i := 0; i < 10; i++ {
		require.Equal(t, i, q.Pop())
	}
	require.Nil(t, q.Pop())
	require.Equal(t, 0, q.Len())
}

func TestQueueInterleaved(t *testing.T) {
	q := NewQueue()
	q.Push(1)
	q.Push(2)
	require.Equal(t, 1, q.Pop())
	q.Push(3)
	require.Equal(t, 2, q.Pop())
	require.Equal(t, 3, q.Pop())
	require.Nil(t, q.Pop())
}

func TestQueueConcurrentProducers(t *testing.T) {
	const producers = 8
	const perProducer = 1000

	q := NewQueue()
	var wg sync.WaitGroup
	wg.Add(producers)
	for p := 0; p < producers; p++ {
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				q.Push([2]int{p, i})
			}
		}(p)
	}
	wg.Wait()

	// every item drains exactly once, and each producer's items stay in order
	lastSeen := [producers]int{}
	for p := range lastSeen {
		lastSeen[p] = -1
	}
	total := 0
	for {
		item := q.Pop()
		if item == nil {
			break
		}
		pair := item.([2]int)
		require.Greater(t, pair[1], lastSeen[pair[0]], "producer %d out of order", pair[0])
		lastSeen[pair[0]] = pair[1]
		total++
	}
	require.Equal(t, producers*perProducer, total)
}
