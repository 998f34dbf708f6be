package events

import (
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEvent(base byte) PoolAdded {
	return PoolAdded{
		BaseToken: common.BytesToAddress([]byte{base}),
		FeeTier:   3000,
		Pool:      common.BytesToAddress([]byte{base, 0x01}),
		At:        time.Now(),
	}
}

func TestNotifier(t *testing.T) {

	t.Run("PublishReachesAllSubscribers", func(t *testing.T) {
		n := NewNotifier(4)
		ch1, unsub1 := n.Subscribe()
		ch2, unsub2 := n.Subscribe()
		defer unsub1()
		defer unsub2()

		ev := testEvent(0xAA)
		dropped := n.Publish(ev)
		assert.Zero(t, dropped)

		got1 := <-ch1
		got2 := <-ch2
		assert.Equal(t, ev, got1)
		assert.Equal(t, ev, got2)
	})

	t.Run("FullSubscriberDropsInsteadOfBlocking", func(t *testing.T) {
		n := NewNotifier(1)
		ch, unsub := n.Subscribe()
		defer unsub()

		assert.Zero(t, n.Publish(testEvent(0x01)))
		// Buffer is now full; the next publish must not block.
		done := make(chan int)
		go func() { done <- n.Publish(testEvent(0x02)) }()

		select {
		case dropped := <-done:
			assert.Equal(t, 1, dropped)
		case <-time.After(time.Second):
			t.Fatal("Publish blocked on a full subscriber")
		}

		got := <-ch
		assert.Equal(t, common.BytesToAddress([]byte{0x01}), got.BaseToken)
	})

	t.Run("UnsubscribeClosesChannel", func(t *testing.T) {
		n := NewNotifier(1)
		ch, unsub := n.Subscribe()
		unsub()

		_, open := <-ch
		assert.False(t, open)
		// Double unsubscribe is a no-op.
		unsub()
		assert.Zero(t, n.Publish(testEvent(0x03)))
	})

	t.Run("CloseIsTerminal", func(t *testing.T) {
		n := NewNotifier(1)
		ch, _ := n.Subscribe()
		n.Close()

		_, open := <-ch
		require.False(t, open)

		// Subscriptions after close come back already closed.
		late, _ := n.Subscribe()
		_, open = <-late
		assert.False(t, open)
		assert.Zero(t, n.Publish(testEvent(0x04)))
	})
}
