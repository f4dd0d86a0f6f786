package cpmm

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Event type identifiers, used as the discriminator when events are
// serialized for downstream consumers.
const (
	EventTypeLiquidityAdded   = "liquidityAdded"
	EventTypeLiquidityRemoved = "liquidityRemoved"
	EventTypeSwap             = "swap"
)

// Event is a record emitted after a successful pool mutation.
//
// Events are informational observers only: nothing a sink does feeds back
// into pool state, and a pool never waits on its sink.
type Event interface {
	EventType() string
}

// Sink receives one event per successful mutating operation. Publish is
// called after the pool's state has been updated.
type Sink interface {
	Publish(Event)
}

// LiquidityAdded is emitted after a successful deposit.
type LiquidityAdded struct {
	Provider     common.Address `json:"provider"`
	AmountA      *big.Int       `json:"amountA"`
	AmountB      *big.Int       `json:"amountB"`
	SharesMinted *big.Int       `json:"sharesMinted"`
}

func (LiquidityAdded) EventType() string { return EventTypeLiquidityAdded }

// LiquidityRemoved is emitted after a successful withdrawal.
type LiquidityRemoved struct {
	Provider     common.Address `json:"provider"`
	AmountA      *big.Int       `json:"amountA"`
	AmountB      *big.Int       `json:"amountB"`
	SharesBurned *big.Int       `json:"sharesBurned"`
}

func (LiquidityRemoved) EventType() string { return EventTypeLiquidityRemoved }

// Swap is emitted after a successful swap in either direction.
type Swap struct {
	Trader    common.Address `json:"trader"`
	AssetIn   common.Address `json:"assetIn"`
	AssetOut  common.Address `json:"assetOut"`
	AmountIn  *big.Int       `json:"amountIn"`
	AmountOut *big.Int       `json:"amountOut"`
}

func (Swap) EventType() string { return EventTypeSwap }
