package eventloop

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/ikilobyte/reactor/iface"
)

func TestPollerReadiness(t *testing.T) {
	poller, err := NewPoller()
	require.NoError(t, err)
	defer poller.Close()

	pfds := make([]int, 2)
	require.NoError(t, unix.Pipe(pfds))
	defer unix.Close(pfds[0])
	defer unix.Close(pfds[1])

	require.NoError(t, poller.AddRead(pfds[0], 7))

	// nothing readable yet
	events, err := poller.Wait(30 * time.Millisecond)
	require.NoError(t, err)
	require.Empty(t, events)

	_, err = unix.Write(pfds[1], []byte("x"))
	require.NoError(t, err)

	events, err = poller.Wait(time.Second)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, pfds[0], events[0].Fd)
	require.Equal(t, 7, events[0].Token)
	require.Equal(t, iface.EventAccept, events[0].Type)
}

func TestPollerRemove(t *testing.T) {
	poller, err := NewPoller()
	require.NoError(t, err)
	defer poller.Close()

	pfds := make([]int, 2)
	require.NoError(t, unix.Pipe(pfds))
	defer unix.Close(pfds[0])
	defer unix.Close(pfds[1])

	require.NoError(t, poller.AddRead(pfds[0], 1))
	require.NoError(t, poller.Remove(pfds[0]))

	_, err = unix.Write(pfds[1], []byte("x"))
	require.NoError(t, err)

	events, err := poller.Wait(30 * time.Millisecond)
	require.NoError(t, err)
	require.Empty(t, events)
}

func TestPollerFdReuse(t *testing.T) {
	poller, err := NewPoller()
	require.NoError(t, err)
	defer poller.Close()

	pfds := make([]int, 2)
	require.NoError(t, unix.Pipe(pfds))
	require.NoError(t, poller.AddRead(pfds[0], 1))

	// closed without Remove, the kernel drops the registration with the fd
	require.NoError(t, unix.Close(pfds[0]))
	require.NoError(t, unix.Close(pfds[1]))

	// new pipe takes the lowest free descriptors, the same numbers come back
	reused := make([]int, 2)
	require.NoError(t, unix.Pipe(reused))
	defer unix.Close(reused[0])
	defer unix.Close(reused[1])
	require.Equal(t, pfds[0], reused[0])

	require.NoError(t, poller.AddRead(reused[0], 2))

	_, err = unix.Write(reused[1], []byte("x"))
	require.NoError(t, err)

	events, err := poller.Wait(time.Second)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, 2, events[0].Token, "a reused fd must surface its new token")
	require.Equal(t, iface.EventAccept, events[0].Type)
}

func TestPollerWakeup(t *testing.T) {
	poller, err := NewPoller()
	require.NoError(t, err)
	defer poller.Close()

	type result struct {
		events []iface.Event
		err    error
	}
	results := make(chan result, 1)
	go func() {
		events, err := poller.Wait(-1)
		results <- result{events, err}
	}()

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, poller.Wakeup())

	select {
	case got := <-results:
		require.NoError(t, got.err)
		require.Empty(t, got.events, "wakeup must not surface as an event")
	case <-time.After(2 * time.Second):
		t.Fatal("Wait did not return after Wakeup")
	}
}

func TestPollerWakeupCoalesces(t *testing.T) {
	poller, err := NewPoller()
	require.NoError(t, err)
	defer poller.Close()

	for i := 0; i < 10; i++ {
		require.NoError(t, poller.Wakeup())
	}

	events, err := poller.Wait(30 * time.Millisecond)
	require.NoError(t, err)
	require.Empty(t, events)

	// all pending wakeups were consumed by one wait
	start := time.Now()
	_, err = poller.Wait(50 * time.Millisecond)
	require.NoError(t, err)
	require.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
}

func TestPollerCloseIdempotent(t *testing.T) {
	poller, err := NewPoller()
	require.NoError(t, err)

	require.NoError(t, poller.Close())
	require.NoError(t, poller.Close())
	require.NoError(t, poller.Wakeup())
}
