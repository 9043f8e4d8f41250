package websocket

import (
	"sync"
	"testing"
)

func TestSendMessageAfterChannelCloseFails(t *testing.T) {
	hub, _, _ := newTestHub()
	c := NewClient(hub, nil, "alice")

	c.closeSendChannel()

	if err := c.SendMessage(NewQueueEmptyMessage("m1", "alice")); err != ErrClientDisconnected {
		t.Fatalf("SendMessage after close = %v, want ErrClientDisconnected", err)
	}
}

// Sends racing the hub loop's channel close must never panic; the loser
// of the race gets ErrClientDisconnected instead.
func TestConcurrentSendAndCloseIsSafe(t *testing.T) {
	hub, _, _ := newTestHub()
	c := NewClient(hub, nil, "alice")
	msg := NewQueueEmptyMessage("m1", "alice")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.SendMessage(msg)
			}
		}()
	}
	c.closeSendChannel()
	wg.Wait()
}
