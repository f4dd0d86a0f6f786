// Package cpmm implements a two-asset constant-product liquidity pool: reserve
// accounting, proportional ownership shares, and the 0.3%-fee swap pricing
// formula. All quantities are non-negative integers; fixed-point scaling is
// the caller's concern.
package cpmm

import (
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Ledger is the custody collaborator for a single asset. The pool calls it
// synchronously; a returned error aborts the whole pool operation with no
// state change.
type Ledger interface {
	// Pull moves amount from the participant's external balance into pool custody.
	Pull(from common.Address, amount *big.Int) error
	// Push moves amount from pool custody to the participant.
	Push(to common.Address, amount *big.Int) error
}

// Config holds the collaborators and asset pair for a pool.
type Config struct {
	AssetA  common.Address
	AssetB  common.Address
	LedgerA Ledger
	LedgerB Ledger

	// Optional. A nil Sink drops events, a nil Metrics records nothing and a
	// nil Logger falls back to slog.Default().
	Sink    Sink
	Metrics *Metrics
	Logger  *slog.Logger
}

// validate checks if the configuration is valid.
func (c *Config) validate() error {
	if c.AssetA == c.AssetB {
		return errors.New("config: AssetA and AssetB must differ")
	}
	if c.LedgerA == nil {
		return errors.New("config: LedgerA is required")
	}
	if c.LedgerB == nil {
		return errors.New("config: LedgerB is required")
	}
	return nil
}

// Pool is the state-transition engine for a single asset pair.
//
// Every mutating operation runs inside one critical section, so
// "read reserves, compute delta, write reserves" is atomic with respect to
// all other operations on the same pool. Pools for different pairs are fully
// independent. All preconditions are validated and all amounts computed
// before any reserve or share field is written; a failure from either custody
// ledger aborts the operation with pool state unchanged.
type Pool struct {
	assetA common.Address
	assetB common.Address

	mu          sync.RWMutex
	reserveA    *big.Int
	reserveB    *big.Int
	totalShares *big.Int
	shares      map[common.Address]*big.Int

	ledgerA Ledger
	ledgerB Ledger
	sink    Sink
	metrics *Metrics
	logger  *slog.Logger
}

// NewPool creates an empty pool bound to the configured asset pair for its
// lifetime. The pool starts with zero reserves and zero shares; it can return
// to that state after full withdrawal but is never destroyed.
func NewPool(cfg Config) (*Pool, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Pool{
		assetA:      cfg.AssetA,
		assetB:      cfg.AssetB,
		reserveA:    new(big.Int),
		reserveB:    new(big.Int),
		totalShares: new(big.Int),
		shares:      make(map[common.Address]*big.Int),
		ledgerA:     cfg.LedgerA,
		ledgerB:     cfg.LedgerB,
		sink:        cfg.Sink,
		metrics:     cfg.Metrics,
		logger:      logger,
	}, nil
}

// Assets returns the pool's asset pair in (A, B) order.
func (p *Pool) Assets() (common.Address, common.Address) {
	return p.assetA, p.assetB
}

// AddLiquidity deposits amountA and amountB from the provider and mints
// ownership shares in return.
//
// The first deposit mints floor(sqrt(amountA * amountB)) shares and sets the
// implied price. Every later deposit mints floor(amountA * totalShares /
// reserveA): the mint is driven by the A-side ratio only, so a caller who
// deposits off the current reserve ratio donates the excess to existing
// holders without reward. There is no ratio check; matching the current
// reserves ratio is the caller's responsibility.
func (p *Pool) AddLiquidity(provider common.Address, amountA, amountB *big.Int) (minted *big.Int, err error) {
	start := time.Now()
	defer func() { p.metrics.observe(opAddLiquidity, start, err) }()

	if !isPositive(amountA) || !isPositive(amountB) {
		return nil, ErrInvalidAmount
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	minted = new(big.Int)
	if p.totalShares.Sign() == 0 {
		minted = sqrtFloor(new(big.Int).Mul(amountA, amountB))
	} else {
		minted.Mul(amountA, p.totalShares)
		minted.Div(minted, p.reserveA)
	}
	if minted.Sign() == 0 {
		return nil, ErrZeroMintedShares
	}

	if err := p.ledgerA.Pull(provider, amountA); err != nil {
		return nil, fmt.Errorf("pull asset A: %w", err)
	}
	if err := p.ledgerB.Pull(provider, amountB); err != nil {
		// Make the provider whole for the A-side pull that already happened.
		if refundErr := p.ledgerA.Push(provider, amountA); refundErr != nil {
			p.logger.Error("failed to refund asset A after aborted deposit",
				"provider", provider.Hex(), "amount", amountA.String(), "error", refundErr)
		}
		return nil, fmt.Errorf("pull asset B: %w", err)
	}

	p.reserveA.Add(p.reserveA, amountA)
	p.reserveB.Add(p.reserveB, amountB)
	p.totalShares.Add(p.totalShares, minted)

	bal, ok := p.shares[provider]
	if !ok {
		bal = new(big.Int)
		p.shares[provider] = bal
	}
	bal.Add(bal, minted)

	p.logger.Debug("liquidity added",
		"provider", provider.Hex(), "amountA", amountA.String(),
		"amountB", amountB.String(), "sharesMinted", minted.String())

	p.emit(LiquidityAdded{
		Provider:     provider,
		AmountA:      new(big.Int).Set(amountA),
		AmountB:      new(big.Int).Set(amountB),
		SharesMinted: new(big.Int).Set(minted),
	})

	return new(big.Int).Set(minted), nil
}

// RemoveLiquidity burns sharesBurned of the provider's shares and pays out
// the proportional slice of both reserves, floor-divided:
//
//	amountX = sharesBurned * reserveX / totalShares
//
// Burning all outstanding shares returns the pool to the empty state, after
// which the next deposit sets the price afresh.
func (p *Pool) RemoveLiquidity(provider common.Address, sharesBurned *big.Int) (amountA, amountB *big.Int, err error) {
	start := time.Now()
	defer func() { p.metrics.observe(opRemoveLiquidity, start, err) }()

	if !isPositive(sharesBurned) {
		return nil, nil, ErrInvalidAmount
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	bal, ok := p.shares[provider]
	if !ok || bal.Cmp(sharesBurned) < 0 {
		return nil, nil, ErrInsufficientShares
	}

	// totalShares > 0 is implied by the positive share balance above.
	amountA = new(big.Int).Mul(sharesBurned, p.reserveA)
	amountA.Div(amountA, p.totalShares)
	amountB = new(big.Int).Mul(sharesBurned, p.reserveB)
	amountB.Div(amountB, p.totalShares)

	// Pay out before committing so a custody failure leaves state untouched.
	if err := p.ledgerA.Push(provider, amountA); err != nil {
		return nil, nil, fmt.Errorf("push asset A: %w", err)
	}
	if err := p.ledgerB.Push(provider, amountB); err != nil {
		if refundErr := p.ledgerA.Pull(provider, amountA); refundErr != nil {
			p.logger.Error("failed to reclaim asset A after aborted withdrawal",
				"provider", provider.Hex(), "amount", amountA.String(), "error", refundErr)
		}
		return nil, nil, fmt.Errorf("push asset B: %w", err)
	}

	p.reserveA.Sub(p.reserveA, amountA)
	p.reserveB.Sub(p.reserveB, amountB)
	p.totalShares.Sub(p.totalShares, sharesBurned)
	bal.Sub(bal, sharesBurned)
	if bal.Sign() == 0 {
		delete(p.shares, provider)
	}

	p.logger.Debug("liquidity removed",
		"provider", provider.Hex(), "amountA", amountA.String(),
		"amountB", amountB.String(), "sharesBurned", sharesBurned.String())

	p.emit(LiquidityRemoved{
		Provider:     provider,
		AmountA:      new(big.Int).Set(amountA),
		AmountB:      new(big.Int).Set(amountB),
		SharesBurned: new(big.Int).Set(sharesBurned),
	})

	return amountA, amountB, nil
}

// SwapAForB trades amountIn of asset A for asset B at the constant-product
// price with the 0.3% fee retained in reserves.
func (p *Pool) SwapAForB(trader common.Address, amountIn *big.Int) (*big.Int, error) {
	return p.swap(trader, amountIn, true)
}

// SwapBForA trades amountIn of asset B for asset A at the constant-product
// price with the 0.3% fee retained in reserves.
func (p *Pool) SwapBForA(trader common.Address, amountIn *big.Int) (*big.Int, error) {
	return p.swap(trader, amountIn, false)
}

func (p *Pool) swap(trader common.Address, amountIn *big.Int, aForB bool) (amountOut *big.Int, err error) {
	start := time.Now()
	defer func() { p.metrics.observe(opSwap, start, err) }()

	if !isPositive(amountIn) {
		return nil, ErrInvalidAmount
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	reserveIn, reserveOut := p.reserveA, p.reserveB
	ledgerIn, ledgerOut := p.ledgerA, p.ledgerB
	assetIn, assetOut := p.assetA, p.assetB
	if !aForB {
		reserveIn, reserveOut = p.reserveB, p.reserveA
		ledgerIn, ledgerOut = p.ledgerB, p.ledgerA
		assetIn, assetOut = p.assetB, p.assetA
	}

	amountOut, err = GetAmountOut(amountIn, reserveIn, reserveOut)
	if err != nil {
		return nil, err
	}
	if amountOut.Sign() == 0 {
		return nil, ErrZeroOutput
	}

	if err := ledgerIn.Pull(trader, amountIn); err != nil {
		return nil, fmt.Errorf("pull %s: %w", assetIn.Hex(), err)
	}
	if err := ledgerOut.Push(trader, amountOut); err != nil {
		if refundErr := ledgerIn.Push(trader, amountIn); refundErr != nil {
			p.logger.Error("failed to refund input after aborted swap",
				"trader", trader.Hex(), "asset", assetIn.Hex(), "error", refundErr)
		}
		return nil, fmt.Errorf("push %s: %w", assetOut.Hex(), err)
	}

	// Only 99.7% of amountIn priced the output while 100% enters the reserve,
	// so reserveA * reserveB strictly increases here.
	reserveIn.Add(reserveIn, amountIn)
	reserveOut.Sub(reserveOut, amountOut)

	p.logger.Debug("swap executed",
		"trader", trader.Hex(), "assetIn", assetIn.Hex(), "assetOut", assetOut.Hex(),
		"amountIn", amountIn.String(), "amountOut", amountOut.String())

	p.emit(Swap{
		Trader:    trader,
		AssetIn:   assetIn,
		AssetOut:  assetOut,
		AmountIn:  new(big.Int).Set(amountIn),
		AmountOut: new(big.Int).Set(amountOut),
	})

	return amountOut, nil
}

// Price returns the reserve ratio reserveB * 10^18 / reserveA as a fixed-point
// value. It returns 0 when reserveA is zero; that is a sentinel for "no
// liquidity", not a real price.
func (p *Pool) Price() *big.Int {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.reserveA.Sign() == 0 {
		return new(big.Int)
	}
	price := new(big.Int).Mul(p.reserveB, priceScale)
	return price.Div(price, p.reserveA)
}

// Reserves returns a snapshot of the current reserves.
func (p *Pool) Reserves() (*big.Int, *big.Int) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return new(big.Int).Set(p.reserveA), new(big.Int).Set(p.reserveB)
}

// QuoteOut prices a hypothetical swap of amountIn of assetIn against the
// current reserves without touching state. The returned quote may be zero for
// sufficiently small inputs.
func (p *Pool) QuoteOut(assetIn common.Address, amountIn *big.Int) (*big.Int, error) {
	if !isPositive(amountIn) {
		return nil, ErrInvalidAmount
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	switch assetIn {
	case p.assetA:
		return GetAmountOut(amountIn, p.reserveA, p.reserveB)
	case p.assetB:
		return GetAmountOut(amountIn, p.reserveB, p.reserveA)
	default:
		return nil, ErrUnknownAsset
	}
}

// SharesOf returns the participant's share balance, zero if they hold none.
func (p *Pool) SharesOf(participant common.Address) *big.Int {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if bal, ok := p.shares[participant]; ok {
		return new(big.Int).Set(bal)
	}
	return new(big.Int)
}

// TotalShares returns the outstanding share count.
func (p *Pool) TotalShares() *big.Int {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return new(big.Int).Set(p.totalShares)
}

func (p *Pool) emit(e Event) {
	if p.sink != nil {
		p.sink.Publish(e)
	}
}

func isPositive(amount *big.Int) bool {
	return amount != nil && amount.Sign() > 0
}
