package events

import (
	"io"
	"log/slog"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Iwinswap/iwinswap-amm-engine-go/protocols/cpmm"
)

func swapEvent(n int64) cpmm.Swap {
	return cpmm.Swap{
		Trader:    common.HexToAddress("0x01"),
		AssetIn:   common.HexToAddress("0xaa"),
		AssetOut:  common.HexToAddress("0xbb"),
		AmountIn:  big.NewInt(n),
		AmountOut: big.NewInt(n - 1),
	}
}

func TestBroadcaster(t *testing.T) {
	t.Run("DeliversToAllSubscribers", func(t *testing.T) {
		b := NewBroadcaster(4)
		sub1, cancel1 := b.Subscribe()
		sub2, cancel2 := b.Subscribe()
		defer cancel1()
		defer cancel2()

		b.Publish(swapEvent(10))

		e1 := <-sub1
		e2 := <-sub2
		assert.Equal(t, cpmm.EventTypeSwap, e1.EventType())
		assert.Equal(t, cpmm.EventTypeSwap, e2.EventType())
	})

	t.Run("SlowSubscriberDropsInsteadOfBlocking", func(t *testing.T) {
		b := NewBroadcaster(1)
		sub, cancel := b.Subscribe()
		defer cancel()

		// Second publish exceeds the buffer; it must not block.
		b.Publish(swapEvent(1))
		b.Publish(swapEvent(2))

		first := <-sub
		swap, ok := first.(cpmm.Swap)
		require.True(t, ok)
		assert.Equal(t, int64(1), swap.AmountIn.Int64())

		select {
		case e := <-sub:
			t.Fatalf("expected the overflow event to be dropped, got %v", e)
		default:
		}
	})

	t.Run("CancelClosesChannel", func(t *testing.T) {
		b := NewBroadcaster(4)
		sub, cancel := b.Subscribe()
		require.Equal(t, 1, b.Len())

		cancel()
		assert.Equal(t, 0, b.Len())

		_, open := <-sub
		assert.False(t, open, "channel should be closed after cancel")

		// cancel is idempotent
		cancel()
	})

	t.Run("PublishWithNoSubscribers", func(t *testing.T) {
		b := NewBroadcaster(4)
		b.Publish(swapEvent(1))
	})
}

func TestMultiSink(t *testing.T) {
	b1 := NewBroadcaster(4)
	b2 := NewBroadcaster(4)
	sub1, cancel1 := b1.Subscribe()
	sub2, cancel2 := b2.Subscribe()
	defer cancel1()
	defer cancel2()

	sink := MultiSink{b1, b2}
	sink.Publish(swapEvent(7))

	assert.Equal(t, cpmm.EventTypeSwap, (<-sub1).EventType())
	assert.Equal(t, cpmm.EventTypeSwap, (<-sub2).EventType())
}

func TestLogSink(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	sink := NewLogSink(logger)
	sink.Publish(swapEvent(3))
}
